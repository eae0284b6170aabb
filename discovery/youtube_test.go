package discovery

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/vidlink-cli/vidlink/network"
	. "github.com/smartystreets/goconvey/convey"
)

const resultsPage = `<html><script>var ytInitialData = {"contents":{"twoColumnSearchResultsRenderer":{"primaryContents":{"sectionListRenderer":{"contents":[{"itemSectionRenderer":{"contents":[
{"videoRenderer":{"videoId":"jfKfPfyJRdk","title":{"runs":[{"text":"lofi hip hop radio \"beats\" {live}"}]},"ownerText":{"runs":[{"text":"Lofi Girl"}]},"lengthText":{"simpleText":"1:02:03"},"viewCountText":{"simpleText":"1,234 views"},"thumbnail":{"thumbnails":[{"url":"https://i.ytimg.com/small.jpg"},{"url":"https://i.ytimg.com/big.jpg"}]}}},
{"videoRenderer":{"videoId":"5qap5aO4i9A","title":{"runs":[{"text":"second"}]},"ownerText":{"runs":[{"text":"Someone"}]},"lengthText":{"simpleText":"3:25"},"viewCountText":{"simpleText":"42 views"}}}
]}}]}}}}};</script></html>`

func newTestYouTube(srv *httptest.Server) *YouTube {
	return &YouTube{
		Client: network.Client,
		Endpoints: Endpoints{
			Results: srv.URL + "/results",
			DataAPI: srv.URL + "/v3",
			OEmbed:  srv.URL + "/oembed",
		},
		Backoff:   network.Backoff{InitialWait: time.Millisecond, MaxWait: time.Millisecond, Multiplier: 1},
		UserAgent: "vidlink-test",
	}
}

func TestYouTubeScrape(t *testing.T) {
	Convey("Given a results page carrying ytInitialData", t, func() {
		var gotQuery string
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotQuery = r.URL.Query().Get("search_query")
			_, _ = w.Write([]byte(resultsPage))
		}))
		defer srv.Close()

		y := newTestYouTube(srv)

		Convey("Search should return hits in page order", func() {
			hits, err := y.Search(context.Background(), "lofi hip hop", 5)
			So(err, ShouldBeNil)
			So(gotQuery, ShouldEqual, "lofi hip hop")
			So(len(hits), ShouldEqual, 2)

			first := hits[0]
			So(first.ID, ShouldEqual, "jfKfPfyJRdk")
			So(first.Title, ShouldEqual, `lofi hip hop radio "beats" {live}`)
			So(first.Author, ShouldEqual, "Lofi Girl")
			So(first.Thumbnail, ShouldEqual, "https://i.ytimg.com/big.jpg")
			So(first.Duration, ShouldEqual, time.Hour+2*time.Minute+3*time.Second)
			So(first.Views, ShouldEqual, 1234)

			So(hits[1].Thumbnail, ShouldEqual, "https://i.ytimg.com/vi/5qap5aO4i9A/0.jpg")
		})

		Convey("Search should honour the limit", func() {
			hits, err := y.Search(context.Background(), "lofi", 1)
			So(err, ShouldBeNil)
			So(len(hits), ShouldEqual, 1)
		})
	})

	Convey("Given a page without ytInitialData", t, func() {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte("<html>consent wall</html>"))
		}))
		defer srv.Close()

		Convey("Search should fail", func() {
			_, err := newTestYouTube(srv).Search(context.Background(), "lofi", 5)
			So(err, ShouldNotBeNil)
		})
	})
}

func TestYouTubeDataAPI(t *testing.T) {
	Convey("Given a Data API where the first key is over quota", t, func() {
		var usedKeys []string
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			k := r.URL.Query().Get("key")
			usedKeys = append(usedKeys, r.URL.Path+":"+k)
			if k == "exhausted" {
				w.WriteHeader(http.StatusForbidden)
				_, _ = w.Write([]byte(`{"error":"quotaExceeded"}`))
				return
			}
			switch r.URL.Path {
			case "/v3/search":
				_, _ = w.Write([]byte(`{"items":[{"id":{"videoId":"jfKfPfyJRdk"},"snippet":{"title":"lofi","channelTitle":"Lofi Girl","thumbnails":{"high":{"url":"https://i.ytimg.com/hq.jpg"}}}}]}`))
			case "/v3/videos":
				_, _ = w.Write([]byte(`{"items":[{"id":"jfKfPfyJRdk","contentDetails":{"duration":"PT1H2M3S"},"statistics":{"viewCount":"987"}}]}`))
			default:
				w.WriteHeader(http.StatusNotFound)
			}
		}))
		defer srv.Close()

		y := newTestYouTube(srv)
		y.Keys = []string{"exhausted", "spare"}

		Convey("Search should fall back to the second key", func() {
			hits, err := y.Search(context.Background(), "lofi", 3)
			So(err, ShouldBeNil)
			So(len(hits), ShouldEqual, 1)
			So(hits[0].Author, ShouldEqual, "Lofi Girl")
			So(hits[0].Thumbnail, ShouldEqual, "https://i.ytimg.com/hq.jpg")
			So(hits[0].Duration, ShouldEqual, time.Hour+2*time.Minute+3*time.Second)
			So(hits[0].Views, ShouldEqual, 987)
			So(usedKeys[0], ShouldEqual, "/v3/search:exhausted")
			So(usedKeys, ShouldContain, "/v3/search:spare")
		})
	})
}

func TestYouTubeLookup(t *testing.T) {
	Convey("Given an oEmbed endpoint", t, func() {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Query().Get("url") != "https://www.youtube.com/watch?v=dQw4w9WgXcQ" {
				w.WriteHeader(http.StatusNotFound)
				return
			}
			_, _ = fmt.Fprint(w, `{"title":"Never Gonna Give You Up","author_name":"Rick Astley","thumbnail_url":"https://i.ytimg.com/vi/dQw4w9WgXcQ/hqdefault.jpg"}`)
		}))
		defer srv.Close()

		y := newTestYouTube(srv)

		Convey("Lookup should map the metadata", func() {
			identity, err := y.Lookup(context.Background(), "dQw4w9WgXcQ")
			So(err, ShouldBeNil)
			So(identity.Title, ShouldEqual, "Never Gonna Give You Up")
			So(identity.Author, ShouldEqual, "Rick Astley")
			So(identity.URL, ShouldEqual, "https://www.youtube.com/watch?v=dQw4w9WgXcQ")
		})

		Convey("Lookup of an unknown id should fail", func() {
			_, err := y.Lookup(context.Background(), "xxxxxxxxxxx")
			So(err, ShouldNotBeNil)
		})
	})
}

func TestParsers(t *testing.T) {
	Convey("Duration and view parsers", t, func() {
		So(parseISODuration("PT4M13S"), ShouldEqual, 4*time.Minute+13*time.Second)
		So(parseISODuration("P1DT1S"), ShouldEqual, 24*time.Hour+time.Second)
		So(parseISODuration("PT1.5S"), ShouldEqual, 1500*time.Millisecond)
		So(parseISODuration("P1W"), ShouldEqual, 7*24*time.Hour)
		So(parseISODuration("garbage"), ShouldEqual, 0)
		So(parseClock("3:25"), ShouldEqual, 3*time.Minute+25*time.Second)
		So(parseClock(""), ShouldEqual, 0)
		So(parseViews("1,234,567 views"), ShouldEqual, 1234567)
		So(extractJSON([]byte(`{"a":"}\"{"} trailing`)), ShouldResemble, []byte(`{"a":"}\"{"}`))
	})
}

func TestWalkRenderers(t *testing.T) {
	Convey("Given renderers spread outside the usual containers", t, func() {
		data := []byte(`{"zeta":{"videoRenderer":{"videoId":"aaaaaaaaaaa"}},"alpha":[{"x":{"videoRenderer":{"videoId":"bbbbbbbbbbb"}}},{"videoRenderer":{"videoId":"ccccccccccc"}}],"mid":{"videoRenderer":{"videoId":"ddddddddddd"}}}`)

		Convey("Hits should follow document order on every walk", func() {
			for i := 0; i < 20; i++ {
				hits := walkRenderers(data, 10)
				ids := make([]string, 0, len(hits))
				for _, h := range hits {
					ids = append(ids, h.ID)
				}
				So(ids, ShouldResemble, []string{"aaaaaaaaaaa", "bbbbbbbbbbb", "ccccccccccc", "ddddddddddd"})
			}
		})

		Convey("The walk should stop at the limit", func() {
			hits := walkRenderers(data, 2)
			So(hits, ShouldHaveLength, 2)
			So(hits[1].ID, ShouldEqual, "bbbbbbbbbbb")
		})
	})
}
