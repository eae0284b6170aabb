package custom

import (
	"errors"
	"fmt"
	"time"

	"github.com/vidlink-cli/vidlink/source"
	"github.com/vidlink-cli/vidlink/video"
	lua "github.com/yuin/gopher-lua"
)

// forEach walks t in insertion order. LTable.ForEach ranges over maps for hash keys.
func forEach(t *lua.LTable, cb func(k, v lua.LValue)) {
	for k, v := t.Next(lua.LNil); k != lua.LNil; k, v = t.Next(k) {
		cb(k, v)
	}
}

// getString reads a string or number field, "" otherwise.
func getString(table *lua.LTable, key string) string {
	val := table.RawGetString(key)
	switch val.Type() {
	case lua.LTString, lua.LTNumber:
		return val.String()
	default:
		return ""
	}
}

func getNumber(table *lua.LTable, key string) float64 {
	if n, ok := table.RawGetString(key).(lua.LNumber); ok {
		return float64(n)
	}
	return 0
}

// checkStatus accepts status = "ok" or status = true.
func checkStatus(table *lua.LTable) error {
	switch st := table.RawGetString("status").(type) {
	case lua.LString:
		if st == "ok" {
			return nil
		}
		if msg := getString(table, "mess"); msg != "" {
			return fmt.Errorf("status %q: %s", string(st), msg)
		}
		return fmt.Errorf("status %q", string(st))
	case lua.LBool:
		if st {
			return nil
		}
		return errors.New("status false")
	default:
		return errors.New("missing status")
	}
}

// analysisFromTable reads {status, vid, title, author, thumbnail, links = {format = {{q, q_text, size, k}, ...}}}.
// Formats keep the order they were inserted in the links table.
func analysisFromTable(table *lua.LTable) (*source.Analysis, error) {
	if err := checkStatus(table); err != nil {
		return nil, err
	}

	links, ok := table.RawGetString("links").(*lua.LTable)
	if !ok {
		return nil, errors.New("links must be a table")
	}

	catalog := video.NewCatalog()
	forEach(links, func(k, v lua.LValue) {
		format, ok := k.(lua.LString)
		if !ok {
			return
		}
		entries, ok := v.(*lua.LTable)
		if !ok {
			return
		}
		forEach(entries, func(_, e lua.LValue) {
			if entry, ok := entryFromTable(e); ok {
				catalog.Add(string(format), entry)
			}
		})
	})

	if catalog.Len() == 0 {
		return nil, errors.New("no links")
	}

	vid := getString(table, "vid")
	identity := video.Identity{
		ID:        vid,
		Title:     getString(table, "title"),
		Author:    getString(table, "author"),
		Thumbnail: getString(table, "thumbnail"),
	}
	if vid != "" {
		identity.URL = video.WatchURL(vid)
		if identity.Thumbnail == "" {
			identity.Thumbnail = video.ThumbnailURL(vid)
		}
	}

	var related []*video.Hit
	if rel, ok := table.RawGetString("related").(*lua.LTable); ok {
		related = hitsFromTable(rel)
	}

	return &source.Analysis{Identity: identity, Catalog: catalog, Related: related}, nil
}

func entryFromTable(v lua.LValue) (video.Entry, bool) {
	t, ok := v.(*lua.LTable)
	if !ok {
		return video.Entry{}, false
	}

	q, k := getString(t, "q"), getString(t, "k")
	if q == "" || k == "" {
		return video.Entry{}, false
	}

	return video.Entry{
		Quality: q,
		Label:   getString(t, "q_text"),
		Size:    getString(t, "size"),
		Token:   video.NewToken(k),
	}, true
}

// conversionFromTable reads {status, dlink, q_text, size, ftype, fquality}.
func conversionFromTable(table *lua.LTable) (*source.Conversion, error) {
	if err := checkStatus(table); err != nil {
		return nil, err
	}

	link := getString(table, "dlink")
	if link == "" {
		return nil, errors.New("no download link")
	}

	return &source.Conversion{
		Link:    link,
		Label:   getString(table, "q_text"),
		Size:    getString(table, "size"),
		Format:  getString(table, "ftype"),
		Quality: getString(table, "fquality"),
	}, nil
}

// hitFromTable reads {id, title, author, url, seconds, views}.
func hitFromTable(t *lua.LTable) (*video.Hit, error) {
	id := getString(t, "id")
	if id == "" {
		if u := getString(t, "url"); u != "" {
			id, _ = video.ExtractID(u)
		}
	}
	if id == "" {
		return nil, errors.New("hit must have an id or a recognizable url")
	}

	return &video.Hit{
		Identity: video.Identity{
			ID:        id,
			Title:     getString(t, "title"),
			Author:    getString(t, "author"),
			Thumbnail: video.ThumbnailURL(id),
			URL:       video.WatchURL(id),
		},
		Duration: time.Duration(getNumber(t, "seconds")) * time.Second,
		Views:    int64(getNumber(t, "views")),
	}, nil
}

func hitsFromTable(table *lua.LTable) []*video.Hit {
	var hits []*video.Hit
	forEach(table, func(_, v lua.LValue) {
		t, ok := v.(*lua.LTable)
		if !ok {
			return
		}
		if hit, err := hitFromTable(t); err == nil {
			hits = append(hits, hit)
		}
	})
	return hits
}
