package video

import (
	"encoding/json"
	"errors"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func testCatalog() *Catalog {
	c := NewCatalog()
	c.Add("mp4", Entry{Quality: "720p", Label: "720p (HD)", Size: "40 MB", Token: NewToken("token-720-abcdef")})
	c.Add("mp4", Entry{Quality: "360p", Label: "360p", Size: "12 MB", Token: NewToken("token-360-abcdef")})
	c.Add("mp3", Entry{Quality: "320kbps", Label: "MP3 320kbps", Token: NewToken("token-320-abcdef")})
	c.Add("mp3", Entry{Quality: "128kbps", Label: "MP3 128kbps", Token: NewToken("token-128-abcdef")})
	return c
}

func TestCatalogSelect(t *testing.T) {
	defaults := Defaults{"mp4": "360p", "mp3": "128kbps"}

	Convey("Given a catalog", t, func() {
		c := testCatalog()

		Convey("Formats keep insertion order", func() {
			So(c.Formats(), ShouldResemble, []string{"mp4", "mp3"})
			So(c.Qualities("mp4"), ShouldResemble, []string{"720p", "360p"})
		})

		Convey("Auto picks the provider default tier", func() {
			e, err := c.Select("mp4", Auto, defaults)
			So(err, ShouldBeNil)
			So(e.Quality, ShouldEqual, "360p")

			e, err = c.Select("mp3", "", defaults)
			So(err, ShouldBeNil)
			So(e.Quality, ShouldEqual, "128kbps")
		})

		Convey("Auto is deterministic", func() {
			a, _ := c.Select("mp4", Auto, defaults)
			b, _ := c.Select("mp4", Auto, defaults)
			So(a, ShouldResemble, b)
		})

		Convey("Auto falls back to the first tier in catalog order", func() {
			e, err := c.Select("mp4", Auto, Defaults{"mp4": "1080p"})
			So(err, ShouldBeNil)
			So(e.Quality, ShouldEqual, "720p")

			e, err = c.Select("mp4", Auto, nil)
			So(err, ShouldBeNil)
			So(e.Quality, ShouldEqual, "720p")
		})

		Convey("Empty format means the primary video container", func() {
			e, err := c.Select("", "", defaults)
			So(err, ShouldBeNil)
			So(e.Quality, ShouldEqual, "360p")
		})

		Convey("An explicit tier must match exactly", func() {
			e, err := c.Select("mp4", "720p", defaults)
			So(err, ShouldBeNil)
			So(e.Token.Value(), ShouldEqual, "token-720-abcdef")

			_, err = c.Select("mp4", "4320p", defaults)
			So(errors.Is(err, ErrQualityUnavailable), ShouldBeTrue)

			_, err = c.Select("mp4", "720", defaults)
			So(errors.Is(err, ErrQualityUnavailable), ShouldBeTrue)
		})

		Convey("A missing format never falls through", func() {
			_, err := c.Select("webm", Auto, defaults)
			So(errors.Is(err, ErrFormatUnavailable), ShouldBeTrue)
			So(errors.Is(err, ErrQualityUnavailable), ShouldBeFalse)
		})

		Convey("Select does not modify the catalog", func() {
			before := c.Qualities("mp4")
			_, _ = c.Select("mp4", "720p", defaults)
			_, _ = c.Select("mp4", Auto, defaults)
			So(c.Qualities("mp4"), ShouldResemble, before)
		})

		Convey("Entries returns a copy", func() {
			entries, ok := c.Entries("mp4")
			So(ok, ShouldBeTrue)
			entries[0].Quality = "changed"
			So(c.Qualities("mp4")[0], ShouldEqual, "720p")
		})

		Convey("JSON keeps order and drops tokens", func() {
			data, err := json.Marshal(c)
			So(err, ShouldBeNil)
			So(string(data), ShouldStartWith, `{"mp4":[{"quality":"720p"`)
			So(string(data), ShouldNotContainSubstring, "token-")
		})
	})

	Convey("A catalog offering only 360p and 720p rejects 4320p", t, func() {
		c := NewCatalog()
		c.Add("mp4", Entry{Quality: "360p"})
		c.Add("mp4", Entry{Quality: "720p"})
		_, err := c.Select("mp4", "4320p", defaults)
		So(ReasonOf(err), ShouldEqual, QualityUnavailable)
	})
}

func TestToken(t *testing.T) {
	Convey("Token never prints its raw value", t, func() {
		tok := NewToken("joiNTI1NiIsInR5cCI6IkpXVCJ9")
		So(tok.String(), ShouldEqual, "joiN***")
		So(tok.GoString(), ShouldNotContainSubstring, "JXVCJ9")
		So(NewToken("short").String(), ShouldEqual, "***")
		So(Token{}.IsZero(), ShouldBeTrue)
	})
}

func TestIdentityMerge(t *testing.T) {
	Convey("Merge overlays non-empty fields", t, func() {
		base := Identity{ID: "dQw4w9WgXcQ", Title: "from discovery", Author: "someone"}
		merged := base.Merge(Identity{Title: "from provider"})
		So(merged.Title, ShouldEqual, "from provider")
		So(merged.Author, ShouldEqual, "someone")
		So(merged.URL, ShouldEqual, WatchURL("dQw4w9WgXcQ"))
		So(base.Title, ShouldEqual, "from discovery")
	})
}
