package version

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/vidlink-cli/vidlink/filesystem"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	filesystem.SetMemMapFs()
}

func TestCompare(t *testing.T) {
	Convey("Compare", t, func() {
		cases := []struct {
			a, b string
			want int
		}{
			{"1.0.0", "1.0.0", 0},
			{"v1.2.0", "1.1.9", 1},
			{"0.3.0", "0.10.0", -1},
			{"2.0.0", "v1.99.99", 1},
			{"0.4.0-rc1", "0.4.0", -1},
			{"0.4.0-rc2", "0.4.0-rc1", 1},
		}

		for _, c := range cases {
			got, err := Compare(c.a, c.b)
			So(err, ShouldBeNil)
			So(got, ShouldEqual, c.want)
		}

		Convey("Should reject malformed versions", func() {
			_, err := Compare("latest", "1.0.0")
			So(err, ShouldNotBeNil)

			_, err = Compare("1.2", "1.0.0")
			So(err, ShouldNotBeNil)
		})

		Convey("Newer should only announce strictly newer releases", func() {
			So(Newer("0.4.0", "0.3.0"), ShouldBeTrue)
			So(Newer("0.3.0", "0.3.0"), ShouldBeFalse)
			So(Newer("0.4.0-rc1", "0.4.0"), ShouldBeFalse)
			So(Newer("nightly", "0.3.0"), ShouldBeFalse)
		})
	})
}

func TestLatest(t *testing.T) {
	Convey("Given a releases endpoint", t, func() {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"tag_name":"v0.4.1"}`))
		}))
		defer srv.Close()

		old := ReleasesURL
		ReleasesURL = srv.URL
		Reset(func() { ReleasesURL = old })

		Convey("Latest should strip the v prefix", func() {
			ver, err := Latest(context.Background())
			So(err, ShouldBeNil)
			So(ver, ShouldEqual, "0.4.1")
		})

		Convey("An older build should be told about the release", func() {
			var out strings.Builder
			notify(context.Background(), &out, "0.3.0")
			So(out.String(), ShouldContainSubstring, "0.4.1")
			So(out.String(), ShouldContainSubstring, ReleasePage("0.4.1"))
		})

		Convey("A current build should hear nothing", func() {
			var out strings.Builder
			notify(context.Background(), &out, "0.4.1")
			So(out.String(), ShouldBeEmpty)
		})
	})
}
