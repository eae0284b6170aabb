package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/vidlink-cli/vidlink/filesystem"
	"github.com/vidlink-cli/vidlink/pipeline"
	"github.com/vidlink-cli/vidlink/source"
	"github.com/vidlink-cli/vidlink/video"
	. "github.com/smartystreets/goconvey/convey"
)

type stubDiscovery struct{}

func (stubDiscovery) Search(_ context.Context, q string, _ int) ([]*video.Hit, error) {
	return []*video.Hit{{Identity: video.Identity{ID: "dQw4w9WgXcQ", Title: q}}}, nil
}

func (stubDiscovery) Lookup(_ context.Context, id string) (*video.Identity, error) {
	return &video.Identity{ID: id, Title: "looked up"}, nil
}

type stubSource struct {
	name string
	fail bool
}

func (s *stubSource) Name() string             { return s.name }
func (s *stubSource) ID() string               { return s.name }
func (s *stubSource) Defaults() video.Defaults { return video.Defaults{"mp4": "360p"} }

func (s *stubSource) Analyze(_ context.Context, identity video.Identity) (*source.Analysis, error) {
	if s.fail {
		return nil, video.Errorf(video.AnalyzeFailed, "blocked")
	}
	catalog := video.NewCatalog()
	catalog.Add("mp4", video.Entry{Quality: "720p", Token: video.NewToken("k720")})
	catalog.Add("mp4", video.Entry{Quality: "360p", Token: video.NewToken("k360")})
	return &source.Analysis{Identity: identity, Catalog: catalog}, nil
}

func (s *stubSource) Convert(_ context.Context, _ string, token video.Token) (*source.Conversion, error) {
	return &source.Conversion{Link: "https://cdn.example/" + token.Value()}, nil
}

func factoryOf(sources ...source.Source) Factory {
	filesystem.SetMemMapFs()
	return func() (*pipeline.Pipeline, func(), error) {
		return pipeline.New(sources, pipeline.WithDiscovery(stubDiscovery{})), func() {}, nil
	}
}

func post(s *Server, path, body string) (*httptest.ResponseRecorder, map[string]any) {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)

	var decoded map[string]any
	_ = json.Unmarshal(rec.Body.Bytes(), &decoded)
	return rec, decoded
}

func TestDownload(t *testing.T) {
	Convey("Given a server with a working provider", t, func() {
		s := New(factoryOf(&stubSource{name: "one"}), Options{})

		Convey("When downloading by url with auto quality", func() {
			rec, body := post(s, "/api/download", `{"url":"https://youtu.be/dQw4w9WgXcQ"}`)

			Convey("Then the default tier link is returned", func() {
				So(rec.Code, ShouldEqual, http.StatusOK)
				So(body["success"], ShouldEqual, true)

				data := body["data"].(map[string]any)
				So(data["provider"], ShouldEqual, "one")
				So(data["result"].(map[string]any)["link"], ShouldEqual, "https://cdn.example/k360")
			})

			Convey("And a request id is attached", func() {
				So(rec.Header().Get("X-Request-Id"), ShouldNotBeEmpty)
			})
		})

		Convey("When neither url nor query is given", func() {
			rec, body := post(s, "/api/download", `{}`)

			Convey("Then it is a bad request", func() {
				So(rec.Code, ShouldEqual, http.StatusBadRequest)
				So(body["success"], ShouldEqual, false)
				So(body["reason"], ShouldEqual, string(video.InvalidInput))
			})
		})

		Convey("When the body is not JSON", func() {
			rec, _ := post(s, "/api/download", `{`)

			Convey("Then it is a bad request", func() {
				So(rec.Code, ShouldEqual, http.StatusBadRequest)
			})
		})

		Convey("When the quality is not offered", func() {
			rec, body := post(s, "/api/download", `{"query":"song","quality":"4320p"}`)

			Convey("Then every provider is reported as exhausted", func() {
				So(rec.Code, ShouldEqual, http.StatusBadGateway)
				attempts := body["attempts"].([]any)
				So(attempts, ShouldHaveLength, 1)
				So(attempts[0].(map[string]any)["reason"], ShouldEqual, string(video.QualityUnavailable))
			})
		})
	})

	Convey("Given a server whose first provider fails", t, func() {
		s := New(factoryOf(&stubSource{name: "bad", fail: true}, &stubSource{name: "good"}), Options{})

		rec, body := post(s, "/api/download", `{"query":"song","format":"mp4","quality":"720p"}`)

		Convey("Then the next provider answers", func() {
			So(rec.Code, ShouldEqual, http.StatusOK)
			data := body["data"].(map[string]any)
			So(data["provider"], ShouldEqual, "good")
			So(data["result"].(map[string]any)["quality"], ShouldEqual, "720p")
		})
	})

	Convey("Given a factory that cannot build a pipeline", t, func() {
		s := New(func() (*pipeline.Pipeline, func(), error) {
			return nil, nil, errors.New("provider not found: ghost")
		}, Options{})

		rec, _ := post(s, "/api/download", `{"query":"song"}`)

		Convey("Then it is an internal error", func() {
			So(rec.Code, ShouldEqual, http.StatusInternalServerError)
		})
	})
}

func TestAnalyze(t *testing.T) {
	Convey("Given a server", t, func() {
		s := New(factoryOf(&stubSource{name: "one"}), Options{})

		rec, body := post(s, "/api/analyze", `{"url":"https://www.youtube.com/watch?v=dQw4w9WgXcQ"}`)

		Convey("Then the catalog is returned in provider order", func() {
			So(rec.Code, ShouldEqual, http.StatusOK)
			data := body["data"].(map[string]any)
			So(data["identity"].(map[string]any)["title"], ShouldEqual, "looked up")

			mp4 := data["catalog"].(map[string]any)["mp4"].([]any)
			So(mp4[0].(map[string]any)["quality"], ShouldEqual, "720p")
		})

		Convey("Then tokens are never exposed", func() {
			So(rec.Body.String(), ShouldNotContainSubstring, "k720")
		})
	})
}

func TestMiddleware(t *testing.T) {
	Convey("Given a rate limited server", t, func() {
		s := New(factoryOf(&stubSource{name: "one"}), Options{RateLimit: 0.001, Burst: 1})

		first, _ := post(s, "/api/analyze", `{"query":"a"}`)
		second, body := post(s, "/api/analyze", `{"query":"a"}`)

		Convey("Then requests over the burst are rejected", func() {
			So(first.Code, ShouldEqual, http.StatusOK)
			So(second.Code, ShouldEqual, http.StatusTooManyRequests)
			So(body["success"], ShouldEqual, false)
		})
	})

	Convey("Given a CORS preflight", t, func() {
		s := New(factoryOf(), Options{})

		req := httptest.NewRequest(http.MethodOptions, "/api/download", nil)
		req.Header.Set("Origin", "https://example.com")
		req.Header.Set("Access-Control-Request-Method", http.MethodPost)
		rec := httptest.NewRecorder()
		s.ServeHTTP(rec, req)

		Convey("Then any origin is allowed", func() {
			So(rec.Code, ShouldEqual, http.StatusNoContent)
			So(rec.Header().Get("Access-Control-Allow-Origin"), ShouldEqual, "*")
		})
	})

	Convey("Given a GET request", t, func() {
		s := New(factoryOf(), Options{})

		req := httptest.NewRequest(http.MethodGet, "/api/download", nil)
		rec := httptest.NewRecorder()
		s.ServeHTTP(rec, req)

		Convey("Then the method is not allowed", func() {
			So(rec.Code, ShouldEqual, http.StatusMethodNotAllowed)
		})
	})
}

func TestLevel(t *testing.T) {
	Convey("Log levels map onto gommon levels", t, func() {
		So(level("debug"), ShouldEqual, level("trace"))
		So(level("WARN"), ShouldEqual, level("warning"))
		So(level(""), ShouldEqual, level("info"))
	})
}
