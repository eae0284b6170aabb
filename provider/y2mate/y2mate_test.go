package y2mate

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/vidlink-cli/vidlink/network"
	"github.com/vidlink-cli/vidlink/pipeline"
	"github.com/vidlink-cli/vidlink/source"
	"github.com/vidlink-cli/vidlink/video"
	. "github.com/smartystreets/goconvey/convey"
)

const analyzeOK = `{
  "status": "ok",
  "mess": "",
  "page": "detail",
  "vid": "dQw4w9WgXcQ",
  "extractor": "youtube",
  "title": "Never Gonna Give You Up",
  "t": 213,
  "a": "Rick Astley",
  "links": {
    "mp4": {
      "137": {"size": "41.2 MB", "f": "mp4", "q": "1080p", "q_text": "1080p (.mp4) <span class=\"label label-primary\"><small>full-HD</small></span>", "k": "token-1080"},
      "22":  {"size": "18.1 MB", "f": "mp4", "q": "720p",  "q_text": "720p (.mp4)", "k": "token-720"},
      "18":  {"size": "9.4 MB",  "f": "mp4", "q": "360p",  "q_text": "360p (.mp4)", "k": "token-360"}
    },
    "mp3": {
      "mp3128": {"size": "3.3 MB", "f": "mp3", "q": "128kbps", "q_text": ".mp3 (128kbps)", "k": "token-mp3"}
    },
    "other": {}
  },
  "related": [{"title": "Related Videos", "contents": [{"v": "yPYZpwSpKmA", "t": "Together Forever"}]}]
}`

type recorder struct {
	forms []url.Values
	paths []string
}

func newServer(rec *recorder, analyze, convert string) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		form, _ := url.ParseQuery(string(body))
		rec.forms = append(rec.forms, form)
		rec.paths = append(rec.paths, r.URL.Path)

		switch r.URL.Path {
		case "/analyze":
			_, _ = w.Write([]byte(analyze))
		case "/convert":
			_, _ = w.Write([]byte(convert))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
}

func newSource(srv *httptest.Server) *Source {
	return New("y2mate", Endpoints{Analyze: srv.URL + "/analyze", Convert: srv.URL + "/convert"}, network.Client)
}

func TestAnalyze(t *testing.T) {
	identity := video.Identity{ID: "dQw4w9WgXcQ", URL: video.WatchURL("dQw4w9WgXcQ")}

	Convey("Given a healthy analyze endpoint", t, func() {
		rec := &recorder{}
		srv := newServer(rec, analyzeOK, "")
		defer srv.Close()

		analysis, err := newSource(srv).Analyze(context.Background(), identity)
		So(err, ShouldBeNil)

		Convey("It should submit the canonical URL, never the bare id", func() {
			So(rec.forms[0].Get("k_query"), ShouldEqual, "https://www.youtube.com/watch?v=dQw4w9WgXcQ")
			So(rec.forms[0].Get("k_page"), ShouldEqual, "home")
			So(rec.forms[0].Get("hl"), ShouldEqual, "en")
			So(rec.forms[0].Get("q_auto"), ShouldEqual, "0")
		})

		Convey("The catalog should keep response order and skip empty formats", func() {
			So(analysis.Catalog.Formats(), ShouldResemble, []string{"mp4", "mp3"})
			So(analysis.Catalog.Qualities("mp4"), ShouldResemble, []string{"1080p", "720p", "360p"})
		})

		Convey("Labels should be plain text", func() {
			entries, _ := analysis.Catalog.Entries("mp4")
			So(entries[0].Label, ShouldEqual, "1080p (.mp4) full-HD")
			So(entries[0].Token.Value(), ShouldEqual, "token-1080")
		})

		Convey("Provider identity fields should be reported", func() {
			So(analysis.Identity.Title, ShouldEqual, "Never Gonna Give You Up")
			So(analysis.Identity.Author, ShouldEqual, "Rick Astley")
			So(analysis.Identity.Thumbnail, ShouldEqual, "https://i.ytimg.com/vi/dQw4w9WgXcQ/0.jpg")
		})

		Convey("Related videos should be listed", func() {
			So(len(analysis.Related), ShouldEqual, 1)
			So(analysis.Related[0].ID, ShouldEqual, "yPYZpwSpKmA")
		})

		Convey("Auto should select the pinned 360p tier", func() {
			s := newSource(srv)
			entry, err := analysis.Catalog.Select("mp4", video.Auto, s.Defaults())
			So(err, ShouldBeNil)
			So(entry.Quality, ShouldEqual, "360p")
		})
	})

	Convey("Given failing analyze responses", t, func() {
		for name, body := range map[string]string{
			"status not ok":  `{"status":"error","mess":"Please try again"}`,
			"missing status": `{"links":{"mp4":{"18":{"q":"360p","k":"x"}}}}`,
			"empty body":     ``,
			"garbage":        `<html>cloudflare</html>`,
			"no links":       `{"status":"ok","links":{}}`,
		} {
			Convey("It should be AnalyzeFailed on "+name, func() {
				srv := newServer(&recorder{}, body, "")
				defer srv.Close()

				_, err := newSource(srv).Analyze(context.Background(), identity)
				So(errors.Is(err, video.ErrAnalyzeFailed), ShouldBeTrue)
			})
		}

		Convey("It should be AnalyzeFailed on a transport error", func() {
			srv := newServer(&recorder{}, analyzeOK, "")
			s := newSource(srv)
			srv.Close()

			_, err := s.Analyze(context.Background(), identity)
			So(errors.Is(err, video.ErrAnalyzeFailed), ShouldBeTrue)
		})
	})
}

func TestConvert(t *testing.T) {
	Convey("Given a convert endpoint", t, func() {
		Convey("A successful reply should yield the link", func() {
			rec := &recorder{}
			srv := newServer(rec, "", `{"status":"ok","c_status":"CONVERTED","vid":"dQw4w9WgXcQ","ftype":"mp4","fquality":"360","dlink":"https://dl.example/file.mp4"}`)
			defer srv.Close()

			conv, err := newSource(srv).Convert(context.Background(), "dQw4w9WgXcQ", video.NewToken("token-360"))
			So(err, ShouldBeNil)
			So(conv.Link, ShouldEqual, "https://dl.example/file.mp4")
			So(conv.Format, ShouldEqual, "mp4")
			So(conv.Quality, ShouldEqual, "360")
			So(rec.forms[0].Get("vid"), ShouldEqual, "dQw4w9WgXcQ")
			So(rec.forms[0].Get("k"), ShouldEqual, "token-360")
		})

		Convey("A reply without dlink should be ConvertFailed", func() {
			srv := newServer(&recorder{}, "", `{"status":"ok","c_status":"CONVERTING"}`)
			defer srv.Close()

			_, err := newSource(srv).Convert(context.Background(), "dQw4w9WgXcQ", video.NewToken("t"))
			So(errors.Is(err, video.ErrConvertFailed), ShouldBeTrue)
		})

		Convey("A zero token should be rejected without a request", func() {
			rec := &recorder{}
			srv := newServer(rec, "", "")
			defer srv.Close()

			_, err := newSource(srv).Convert(context.Background(), "dQw4w9WgXcQ", video.Token{})
			So(errors.Is(err, video.ErrConvertFailed), ShouldBeTrue)
			So(rec.paths, ShouldBeEmpty)
		})
	})
}

type lookupOnly struct{}

func (lookupOnly) Search(context.Context, string, int) ([]*video.Hit, error) {
	return nil, errors.New("search disabled")
}

func (lookupOnly) Lookup(_ context.Context, id string) (*video.Identity, error) {
	return &video.Identity{ID: id, Title: "Never Gonna Give You Up"}, nil
}

func TestPipeline(t *testing.T) {
	Convey("Given the pipeline in front of a y2mate endpoint", t, func() {
		srv := newServer(&recorder{}, analyzeOK, `{"status":"ok","c_status":"CONVERTED","ftype":"mp4","fquality":"360","dlink":"https://dl.example/file.mp4"}`)
		defer srv.Close()

		p := pipeline.New([]source.Source{newSource(srv)}, pipeline.WithDiscovery(lookupOnly{}))

		Convey("An auto request should name the default tier, not the provider's echo", func() {
			out, err := p.Resolve(context.Background(), pipeline.Request{URL: "https://youtu.be/dQw4w9WgXcQ"})
			So(err, ShouldBeNil)
			So(out.Provider, ShouldEqual, "y2mate")
			So(out.Result.Format, ShouldEqual, "mp4")
			So(out.Result.Quality, ShouldEqual, "360p")
			So(out.Result.Link, ShouldEqual, "https://dl.example/file.mp4")
		})
	})
}
