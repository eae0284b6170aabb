package query

import (
	"testing"

	"github.com/vidlink-cli/vidlink/filesystem"
	"github.com/vidlink-cli/vidlink/key"
	. "github.com/smartystreets/goconvey/convey"
	"github.com/spf13/viper"
)

func init() {
	filesystem.SetMemMapFs()
	viper.Set(key.SearchShowQuerySuggestions, true)
}

func TestQuery(t *testing.T) {
	Convey("Given query history", t, func() {
		So(Forget(), ShouldBeNil)

		Convey("When remembering queries", func() {
			So(Remember("lofi hip hop", WeightSearch), ShouldBeNil)
			So(Remember("lofi beats", WeightResolve), ShouldBeNil)
			So(Remember("lofi beats", WeightResolve), ShouldBeNil)

			Convey("Then suggestions should be sorted by rank", func() {
				s := SuggestMany("lofi")
				So(s, ShouldResemble, []string{"lofi beats", "lofi hip hop"})
			})

			Convey("Then Suggest should return the best match", func() {
				So(Suggest("hip").MustGet(), ShouldEqual, "lofi hip hop")
			})

			Convey("Then a new query should invalidate cached suggestions", func() {
				_ = SuggestMany("lofi")
				So(Remember("lofi jazz", 10), ShouldBeNil)
				So(SuggestMany("lofi")[0], ShouldEqual, "lofi jazz")
			})
		})

		Convey("Blank queries should be ignored", func() {
			So(Remember("   ", WeightSearch), ShouldBeNil)
			So(SuggestMany(""), ShouldBeEmpty)
		})

		Convey("Suggestions can be disabled", func() {
			So(Remember("synthwave", WeightSearch), ShouldBeNil)
			viper.Set(key.SearchShowQuerySuggestions, false)
			Reset(func() { viper.Set(key.SearchShowQuerySuggestions, true) })
			So(Suggest("synth").IsAbsent(), ShouldBeTrue)
		})

		Convey("It sanitizes input", func() {
			So(sanitize("  LOFI  "), ShouldEqual, "lofi")
		})
	})
}
