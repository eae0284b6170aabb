package video

import (
	"errors"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestExtractID(t *testing.T) {
	Convey("Given every supported url shape", t, func() {
		shapes := []string{
			"https://www.youtube.com/watch?v=dQw4w9WgXcQ",
			"http://youtube.com/watch?v=dQw4w9WgXcQ",
			"www.youtube.com/watch?feature=share&v=dQw4w9WgXcQ",
			"youtube.com/watch?v=dQw4w9WgXcQ&t=42",
			"https://m.youtube.com/watch?v=dQw4w9WgXcQ",
			"https://youtu.be/dQw4w9WgXcQ",
			"youtu.be/dQw4w9WgXcQ?si=abc",
			"https://www.youtube.com/embed/dQw4w9WgXcQ",
			"https://www.youtube-nocookie.com/embed/dQw4w9WgXcQ",
			"https://www.youtube.com/v/dQw4w9WgXcQ",
			"https://www.youtube.com/shorts/dQw4w9WgXcQ",
			"youtube.com/shorts/dQw4w9WgXcQ",
		}

		for _, shape := range shapes {
			Convey(shape, func() {
				id, ok := ExtractID(shape)
				So(ok, ShouldBeTrue)
				So(id, ShouldEqual, "dQw4w9WgXcQ")
			})
		}
	})

	Convey("Given text without an id", t, func() {
		for _, text := range []string{
			"lofi hip hop radio",
			"https://example.com/watch?v=dQw4w9WgXcQ",
			"https://youtu.be/short",
			"https://notyoutube.com/watch?v=dQw4w9WgXcQ",
			"https://evil.example/?r=youtu.be/dQw4w9WgXcQ",
			"https://evil.example/youtu.be/dQw4w9WgXcQ",
		} {
			_, ok := ExtractID(text)
			So(ok, ShouldBeFalse)
		}
	})
}

func TestParse(t *testing.T) {
	Convey("Parse", t, func() {
		Convey("A url with an id is a URL reference", func() {
			ref, err := Parse("https://youtu.be/dQw4w9WgXcQ", "")
			So(err, ShouldBeNil)
			So(ref.Kind, ShouldEqual, KindURL)
			So(ref.ID.MustGet(), ShouldEqual, "dQw4w9WgXcQ")
			So(ref.Normalized, ShouldNotBeEmpty)
		})

		Convey("URL wins when both are supplied", func() {
			for i := 0; i < 3; i++ {
				ref, err := Parse("https://www.youtube.com/watch?v=dQw4w9WgXcQ", "some other song")
				So(err, ShouldBeNil)
				So(ref.Kind, ShouldEqual, KindURL)
				So(ref.ID.MustGet(), ShouldEqual, "dQw4w9WgXcQ")
			}
		})

		Convey("A query is never inspected for an id", func() {
			ref, err := Parse("", "https://youtu.be/dQw4w9WgXcQ")
			So(err, ShouldBeNil)
			So(ref.Kind, ShouldEqual, KindQuery)
			So(ref.ID.IsAbsent(), ShouldBeTrue)
			So(ref.SearchText(), ShouldEqual, "https://youtu.be/dQw4w9WgXcQ")
		})

		Convey("A url without an id keeps the URL kind but has no id", func() {
			ref, err := Parse("https://www.youtube.com/playlist?list=PL123", "")
			So(err, ShouldBeNil)
			So(ref.Kind, ShouldEqual, KindURL)
			So(ref.ID.IsAbsent(), ShouldBeTrue)
		})

		Convey("A url without an id is searched by its normalized form", func() {
			ref, err := Parse("HTTPS://Example.COM:443/some//page", "")
			So(err, ShouldBeNil)
			So(ref.SearchText(), ShouldEqual, "https://example.com/some/page")
		})

		Convey("Missing input is InvalidInput", func() {
			_, err := Parse("  ", "")
			So(errors.Is(err, ErrInvalidInput), ShouldBeTrue)
			So(ReasonOf(err), ShouldEqual, InvalidInput)
		})
	})

	Convey("ParseText", t, func() {
		ref, err := ParseText("check https://youtu.be/dQw4w9WgXcQ out")
		So(err, ShouldBeNil)
		So(ref.Kind, ShouldEqual, KindURL)

		ref, err = ParseText("lofi hip hop radio")
		So(err, ShouldBeNil)
		So(ref.Kind, ShouldEqual, KindQuery)
	})
}
