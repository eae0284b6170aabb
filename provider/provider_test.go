package provider

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/vidlink-cli/vidlink/config"
	"github.com/vidlink-cli/vidlink/filesystem"
	"github.com/vidlink-cli/vidlink/key"
	"github.com/vidlink-cli/vidlink/source"
	"github.com/vidlink-cli/vidlink/where"
	. "github.com/smartystreets/goconvey/convey"
	"github.com/zalando/go-keyring"
)

const luaScript = `
function Analyze(url) return { status = "ok", links = { mp4 = { { q = "360p", k = "x" } } } } end
function Convert(vid, k) return { status = "ok", dlink = "https://cdn/x" } end
`

func setup() {
	keyring.MockInit()
	filesystem.SetMemMapFs()
	_ = config.Setup()
}

func TestGet(t *testing.T) {
	Convey("Given the provider registry", t, func() {
		setup()

		Convey("When trying to get an invalid provider", func() {
			_, ok := Get("kek")
			Convey("Then ok should be false", func() {
				So(ok, ShouldBeFalse)
			})
		})

		Convey("When getting a builtin", func() {
			p, ok := Get(Y2mate)
			Convey("Then it is found and not custom", func() {
				So(ok, ShouldBeTrue)
				So(p.IsCustom, ShouldBeFalse)
				So(p.String(), ShouldEqual, Y2mate)
			})
		})

		Convey("When a Lua script is installed", func() {
			path := filepath.Join(where.Sources(), "mine"+CustomProviderExtension)
			So(filesystem.API().WriteFile(path, []byte(luaScript), 0o644), ShouldBeNil)
			So(filesystem.API().WriteFile(filepath.Join(where.Sources(), "notes.txt"), []byte("x"), 0o644), ShouldBeNil)

			Convey("Then only the script is listed", func() {
				customs := Customs()
				So(customs, ShouldHaveLength, 1)
				So(customs[0].Name, ShouldEqual, "mine")
				So(customs[0].IsCustom, ShouldBeTrue)
			})

			Convey("Then it can be created", func() {
				p, ok := Get("mine")
				So(ok, ShouldBeTrue)

				src, err := p.CreateSource()
				So(err, ShouldBeNil)
				So(src.Name(), ShouldEqual, "mine")
				Release([]source.Source{src})
			})
		})
	})
}

func TestOrdered(t *testing.T) {
	Convey("Given the configured provider order", t, func() {
		setup()

		Convey("When every name is known", func() {
			providers, err := Ordered(viper.GetStringSlice(key.DefaultSources))

			Convey("Then the order is kept", func() {
				So(err, ShouldBeNil)
				So(providers, ShouldHaveLength, 3)
				So(providers[0].Name, ShouldEqual, Y2mate)
				So(providers[1].Name, ShouldEqual, Y2mateMirror)
				So(providers[2].Name, ShouldEqual, "native")
			})

			Convey("And sources are created in the same order", func() {
				sources, err := Sources(providers)
				So(err, ShouldBeNil)
				So(sources, ShouldHaveLength, 3)
				So(sources[1].Name(), ShouldEqual, Y2mateMirror)
			})
		})

		Convey("When a name repeats", func() {
			providers, err := Ordered([]string{Y2mate, Y2mate})

			Convey("Then it appears once", func() {
				So(err, ShouldBeNil)
				So(providers, ShouldHaveLength, 1)
			})
		})

		Convey("When a name is unknown", func() {
			_, err := Ordered([]string{Y2mate, "ghost"})

			Convey("Then it fails", func() {
				So(err, ShouldNotBeNil)
				So(err.Error(), ShouldContainSubstring, "ghost")
			})
		})
	})
}

func TestUpdate(t *testing.T) {
	Convey("Given a script server", t, func() {
		setup()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.URL.Path {
			case "/mine.lua":
				_, _ = w.Write([]byte(luaScript))
			case "/broken.lua":
				_, _ = w.Write([]byte("function ("))
			default:
				w.WriteHeader(http.StatusNotFound)
			}
		}))
		defer server.Close()

		Convey("When a script is fetched for the first time", func() {
			updated, err := Update(context.Background(), server.URL, []string{"mine"})

			Convey("Then it is written to the sources directory", func() {
				So(err, ShouldBeNil)
				So(updated, ShouldResemble, []string{"mine"})

				data, err := filesystem.API().ReadFile(filepath.Join(where.Sources(), "mine.lua"))
				So(err, ShouldBeNil)
				So(string(data), ShouldEqual, luaScript)
			})

			Convey("And fetching it again changes nothing", func() {
				updated, err := Update(context.Background(), server.URL, nil)
				So(err, ShouldBeNil)
				So(updated, ShouldBeEmpty)
			})
		})

		Convey("When a script does not compile or is missing", func() {
			updated, err := Update(context.Background(), server.URL, []string{"broken", "gone"})

			Convey("Then nothing is written and both failures are reported", func() {
				So(updated, ShouldBeEmpty)
				So(err, ShouldNotBeNil)
				So(err.Error(), ShouldContainSubstring, "broken")
				So(err.Error(), ShouldContainSubstring, "gone")

				exists, _ := filesystem.API().Exists(filepath.Join(where.Sources(), "broken.lua"))
				So(exists, ShouldBeFalse)
			})
		})

		Convey("When no url is configured", func() {
			_, err := Update(context.Background(), "", nil)

			Convey("Then it fails", func() {
				So(err, ShouldNotBeNil)
			})
		})
	})
}
