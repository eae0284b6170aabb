package source

import (
	"testing"

	"github.com/vidlink-cli/vidlink/video"
	. "github.com/smartystreets/goconvey/convey"
)

func TestConversionResult(t *testing.T) {
	Convey("Given a selected entry", t, func() {
		entry := video.Entry{Quality: "360p", Label: "MP4 360p", Size: "9.4 MB", Token: video.NewToken("secret-token")}

		Convey("A bare conversion should inherit the entry", func() {
			r := (&Conversion{Link: "https://cdn.example/file.mp4"}).Result("mp4", entry)
			So(r, ShouldResemble, video.Result{
				Format:  "mp4",
				Quality: "360p",
				Link:    "https://cdn.example/file.mp4",
				Size:    "9.4 MB",
				Label:   "MP4 360p",
			})
		})

		Convey("Provider reported tags should not replace the selected ones", func() {
			r := (&Conversion{Link: "l", Format: "MP4", Quality: "360", Size: "9.5 MB", Label: "360p (.mp4)"}).Result("mp4", entry)
			So(r.Format, ShouldEqual, "mp4")
			So(r.Quality, ShouldEqual, "360p")
			So(r.Size, ShouldEqual, "9.5 MB")
			So(r.Label, ShouldEqual, "360p (.mp4)")
		})

		Convey("An empty format should name the default container", func() {
			r := (&Conversion{Link: "l"}).Result("", entry)
			So(r.Format, ShouldEqual, video.DefaultFormat)
		})
	})
}
