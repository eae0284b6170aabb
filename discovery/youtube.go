package discovery

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/buger/jsonparser"
	"github.com/sosodev/duration"
	"github.com/spf13/viper"
	"github.com/vidlink-cli/vidlink/auth"
	"github.com/vidlink-cli/vidlink/key"
	"github.com/vidlink-cli/vidlink/log"
	"github.com/vidlink-cli/vidlink/network"
	"github.com/vidlink-cli/vidlink/util"
	"github.com/vidlink-cli/vidlink/video"
)

const (
	initialDataMarker = "var ytInitialData = "
	videosOnlyFilter  = "EgIQAQ%3D%3D"
	defaultLimit      = 10
	maxPage           = 4 << 20
)

// Endpoints used by YouTube. Overridable for tests and mirrors.
type Endpoints struct {
	Results string
	DataAPI string
	OEmbed  string
}

// DefaultEndpoints are the public YouTube endpoints.
var DefaultEndpoints = Endpoints{
	Results: "https://www.youtube.com/results",
	DataAPI: "https://www.googleapis.com/youtube/v3",
	OEmbed:  "https://www.youtube.com/oembed",
}

// YouTube searches through the Data API when keys are configured and scrapes the results page otherwise.
// Metadata lookups go through oEmbed.
type YouTube struct {
	Client    network.Doer
	Endpoints Endpoints
	// Keys are tried in order. Empty means scraping only.
	Keys      []string
	Backoff   network.Backoff
	UserAgent string
}

// NewYouTube builds a YouTube discovery from configuration and the keyring.
func NewYouTube() *YouTube {
	y := &YouTube{
		Client:    network.Client,
		Endpoints: DefaultEndpoints,
		Backoff:   network.DefaultBackoff,
		UserAgent: network.UserAgent(),
	}

	for _, pair := range [][2]string{
		{viper.GetString(key.DiscoveryAPIKey), auth.Primary},
		{viper.GetString(key.DiscoveryAPIKeyFallback), auth.Fallback},
	} {
		k, err := auth.Lookup(pair[0], pair[1])
		if err != nil {
			log.Warnf("keyring %s: %s", pair[1], err)
			continue
		}
		if k != "" {
			y.Keys = append(y.Keys, k)
		}
	}

	return y
}

// Search returns up to limit hits for q, best first. When every API key fails the results page is scraped.
func (y *YouTube) Search(ctx context.Context, q string, limit int) ([]*video.Hit, error) {
	if limit <= 0 {
		limit = defaultLimit
	}

	var (
		hits []*video.Hit
		err  error
	)

	if len(y.Keys) > 0 {
		hits, err = y.searchAPI(ctx, q, limit)
		if err != nil {
			log.Warnf("data api search failed, scraping instead: %s", err)
		}
	}

	if len(y.Keys) == 0 || err != nil {
		hits, err = y.searchPage(ctx, q, limit)
	}

	if err != nil {
		return nil, err
	}

	return hits, nil
}

// Lookup fetches title, author and thumbnail for id through oEmbed.
func (y *YouTube) Lookup(ctx context.Context, id string) (*video.Identity, error) {
	params := url.Values{}
	params.Set("url", video.WatchURL(id))
	params.Set("format", "json")

	var payload struct {
		Title        string `json:"title"`
		AuthorName   string `json:"author_name"`
		ThumbnailURL string `json:"thumbnail_url"`
	}

	if err := y.getJSON(ctx, y.Endpoints.OEmbed+"?"+params.Encode(), &payload); err != nil {
		return nil, fmt.Errorf("oembed: %w", err)
	}

	return &video.Identity{
		ID:        id,
		Title:     payload.Title,
		Author:    payload.AuthorName,
		Thumbnail: payload.ThumbnailURL,
		URL:       video.WatchURL(id),
	}, nil
}

func (y *YouTube) get(ctx context.Context, rawURL string, accept string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", y.UserAgent)
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	req.Header.Set("Accept", accept)

	resp, err := network.Get(ctx, y.Client, y.Backoff, req)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		_ = resp.Body.Close()
		return nil, fmt.Errorf("%w: %s", &network.StatusError{Code: resp.StatusCode}, bytes.TrimSpace(body))
	}

	return resp, nil
}

func (y *YouTube) getJSON(ctx context.Context, rawURL string, v any) error {
	resp, err := y.get(ctx, rawURL, "application/json")
	if err != nil {
		return err
	}
	defer util.Ignore(resp.Body.Close)

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("decode: %w", err)
	}
	return nil
}

// searchAPI tries each key in turn.
func (y *YouTube) searchAPI(ctx context.Context, q string, limit int) ([]*video.Hit, error) {
	var lastErr error
	for i, k := range y.Keys {
		hits, err := y.searchAPIWithKey(ctx, q, limit, k)
		if err == nil {
			return hits, nil
		}
		lastErr = err
		log.Debugf("data api key %d failed: %s", i+1, err)
	}
	return nil, lastErr
}

type apiSearchResponse struct {
	Items []struct {
		ID struct {
			VideoID string `json:"videoId"`
		} `json:"id"`
		Snippet struct {
			Title        string `json:"title"`
			ChannelTitle string `json:"channelTitle"`
			Thumbnails   map[string]struct {
				URL string `json:"url"`
			} `json:"thumbnails"`
		} `json:"snippet"`
	} `json:"items"`
}

type apiVideosResponse struct {
	Items []struct {
		ID             string `json:"id"`
		ContentDetails struct {
			Duration string `json:"duration"`
		} `json:"contentDetails"`
		Statistics struct {
			ViewCount string `json:"viewCount"`
		} `json:"statistics"`
	} `json:"items"`
}

func (y *YouTube) searchAPIWithKey(ctx context.Context, q string, limit int, apiKey string) ([]*video.Hit, error) {
	params := url.Values{}
	params.Set("part", "snippet")
	params.Set("q", q)
	params.Set("type", "video")
	params.Set("maxResults", strconv.Itoa(limit))
	params.Set("key", apiKey)

	var search apiSearchResponse
	if err := y.getJSON(ctx, y.Endpoints.DataAPI+"/search?"+params.Encode(), &search); err != nil {
		return nil, fmt.Errorf("data api search: %w", err)
	}

	hits := make([]*video.Hit, 0, len(search.Items))
	byID := make(map[string]*video.Hit, len(search.Items))
	for _, item := range search.Items {
		id := item.ID.VideoID
		if id == "" {
			continue
		}

		thumb := video.ThumbnailURL(id)
		if t, ok := item.Snippet.Thumbnails["high"]; ok && t.URL != "" {
			thumb = t.URL
		}

		hit := &video.Hit{Identity: video.Identity{
			ID:        id,
			Title:     item.Snippet.Title,
			Author:    item.Snippet.ChannelTitle,
			Thumbnail: thumb,
			URL:       video.WatchURL(id),
		}}
		hits = append(hits, hit)
		byID[id] = hit
	}

	if len(hits) == 0 {
		return hits, nil
	}

	// Durations and views only come from the videos endpoint. Missing them is not fatal.
	params = url.Values{}
	params.Set("part", "contentDetails,statistics")
	params.Set("id", strings.Join(keysOf(hits), ","))
	params.Set("key", apiKey)

	var details apiVideosResponse
	if err := y.getJSON(ctx, y.Endpoints.DataAPI+"/videos?"+params.Encode(), &details); err != nil {
		log.Debugf("data api videos: %s", err)
		return hits, nil
	}

	for _, item := range details.Items {
		hit, ok := byID[item.ID]
		if !ok {
			continue
		}
		hit.Duration = parseISODuration(item.ContentDetails.Duration)
		hit.Views, _ = strconv.ParseInt(item.Statistics.ViewCount, 10, 64)
	}

	return hits, nil
}

func keysOf(hits []*video.Hit) []string {
	ids := make([]string, len(hits))
	for i, h := range hits {
		ids[i] = h.ID
	}
	return ids
}

func (y *YouTube) searchPage(ctx context.Context, q string, limit int) ([]*video.Hit, error) {
	rawURL := y.Endpoints.Results + "?search_query=" + url.QueryEscape(q) + "&sp=" + videosOnlyFilter

	resp, err := y.get(ctx, rawURL, "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	if err != nil {
		return nil, fmt.Errorf("results page: %w", err)
	}
	defer util.Ignore(resp.Body.Close)

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPage))
	if err != nil {
		return nil, fmt.Errorf("read results page: %w", err)
	}

	idx := bytes.Index(body, []byte(initialDataMarker))
	if idx < 0 {
		return nil, errors.New("ytInitialData not found in results page")
	}

	data := extractJSON(body[idx+len(initialDataMarker):])
	if data == nil {
		return nil, errors.New("malformed ytInitialData")
	}

	return walkRenderers(data, limit), nil
}

// extractJSON returns the complete JSON object starting at b[0] by tracking brace depth.
func extractJSON(b []byte) []byte {
	if len(b) == 0 || b[0] != '{' {
		return nil
	}

	var (
		depth   int
		inStr   bool
		escaped bool
	)

	for i, c := range b {
		if inStr {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inStr = false
			}
			continue
		}

		switch c {
		case '"':
			inStr = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return b[:i+1]
			}
		}
	}

	return nil
}

type runs struct {
	Runs []struct {
		Text string `json:"text"`
	} `json:"runs"`
	SimpleText string `json:"simpleText"`
}

func (r runs) String() string {
	if r.SimpleText != "" {
		return r.SimpleText
	}
	var b strings.Builder
	for _, run := range r.Runs {
		b.WriteString(run.Text)
	}
	return b.String()
}

type videoRenderer struct {
	VideoID   string `json:"videoId"`
	Title     runs   `json:"title"`
	OwnerText runs   `json:"ownerText"`
	Length    runs   `json:"lengthText"`
	ViewCount runs   `json:"viewCountText"`
	Thumbnail struct {
		Thumbnails []struct {
			URL string `json:"url"`
		} `json:"thumbnails"`
	} `json:"thumbnail"`
}

func (v *videoRenderer) hit() *video.Hit {
	thumb := video.ThumbnailURL(v.VideoID)
	if n := len(v.Thumbnail.Thumbnails); n > 0 && v.Thumbnail.Thumbnails[n-1].URL != "" {
		thumb = v.Thumbnail.Thumbnails[n-1].URL
	}

	return &video.Hit{
		Identity: video.Identity{
			ID:        v.VideoID,
			Title:     v.Title.String(),
			Author:    v.OwnerText.String(),
			Thumbnail: thumb,
			URL:       video.WatchURL(v.VideoID),
		},
		Duration: parseClock(v.Length.String()),
		Views:    parseViews(v.ViewCount.String()),
	}
}

// walkRenderers collects videoRenderer entries depth first in document order.
func walkRenderers(data []byte, limit int) []*video.Hit {
	var hits []*video.Hit

	var walk func(raw []byte, kind jsonparser.ValueType)
	walk = func(raw []byte, kind jsonparser.ValueType) {
		if len(hits) >= limit {
			return
		}

		switch kind {
		case jsonparser.Object:
			if r, t, _, err := jsonparser.Get(raw, "videoRenderer"); err == nil && t == jsonparser.Object {
				var vr videoRenderer
				if json.Unmarshal(r, &vr) == nil && vr.VideoID != "" {
					hits = append(hits, vr.hit())
					return
				}
			}

			_ = jsonparser.ObjectEach(raw, func(_ []byte, value []byte, t jsonparser.ValueType, _ int) error {
				walk(value, t)
				if len(hits) >= limit {
					return errLimitReached
				}
				return nil
			})
		case jsonparser.Array:
			_, _ = jsonparser.ArrayEach(raw, func(value []byte, t jsonparser.ValueType, _ int, err error) {
				if err == nil {
					walk(value, t)
				}
			})
		}
	}

	if root, t, _, err := jsonparser.Get(data); err == nil {
		walk(root, t)
	}
	return hits
}

var errLimitReached = errors.New("limit reached")

// parseISODuration parses the ISO 8601 durations reported by the Data API, e.g. PT1H2M3S.
func parseISODuration(s string) time.Duration {
	d, err := duration.Parse(s)
	if err != nil {
		return 0
	}
	return d.ToTimeDuration()
}

// parseClock parses "h:mm:ss" or "m:ss".
func parseClock(s string) time.Duration {
	var d time.Duration
	for _, part := range strings.Split(strings.TrimSpace(s), ":") {
		n, err := strconv.Atoi(part)
		if err != nil {
			return 0
		}
		d = d*60 + time.Duration(n)
	}
	return d * time.Second
}

// parseViews parses "1,234,567 views".
func parseViews(s string) int64 {
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, s)
	n, _ := strconv.ParseInt(digits, 10, 64)
	return n
}
