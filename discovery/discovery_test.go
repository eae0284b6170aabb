package discovery

import (
	"context"
	"errors"
	"testing"

	"github.com/vidlink-cli/vidlink/filesystem"
	"github.com/vidlink-cli/vidlink/key"
	"github.com/vidlink-cli/vidlink/query"
	"github.com/vidlink-cli/vidlink/video"
	. "github.com/smartystreets/goconvey/convey"
	"github.com/spf13/viper"
)

func init() {
	filesystem.SetMemMapFs()
	viper.Set(key.SearchShowQuerySuggestions, true)
}

type fakeDiscovery struct {
	hits      []*video.Hit
	identity  *video.Identity
	searchErr error
	lookupErr error

	searches  []string
	lookups   []string
	lastLimit int
}

func (f *fakeDiscovery) Search(_ context.Context, q string, limit int) ([]*video.Hit, error) {
	f.searches = append(f.searches, q)
	f.lastLimit = limit
	return f.hits, f.searchErr
}

func (f *fakeDiscovery) Lookup(_ context.Context, id string) (*video.Identity, error) {
	f.lookups = append(f.lookups, id)
	return f.identity, f.lookupErr
}

func TestResolve(t *testing.T) {
	ctx := context.Background()

	Convey("Given a URL reference with an id", t, func() {
		ref, err := video.Parse("https://youtu.be/dQw4w9WgXcQ", "")
		So(err, ShouldBeNil)

		Convey("Resolve should look it up without searching", func() {
			d := &fakeDiscovery{identity: &video.Identity{Title: "Never Gonna Give You Up", Author: "Rick Astley"}}
			identity, err := Resolve(ctx, ref, d)
			So(err, ShouldBeNil)
			So(d.lookups, ShouldResemble, []string{"dQw4w9WgXcQ"})
			So(d.searches, ShouldBeEmpty)
			So(identity.ID, ShouldEqual, "dQw4w9WgXcQ")
			So(identity.Title, ShouldEqual, "Never Gonna Give You Up")
			So(identity.URL, ShouldEqual, "https://www.youtube.com/watch?v=dQw4w9WgXcQ")
		})

		Convey("A lookup failure should be ResolutionFailed and never fall back to search", func() {
			d := &fakeDiscovery{lookupErr: errors.New("boom")}
			_, err := Resolve(ctx, ref, d)
			So(errors.Is(err, video.ErrResolutionFailed), ShouldBeTrue)
			So(d.searches, ShouldBeEmpty)
		})

		Convey("A lookup without metadata should be ResolutionFailed", func() {
			d := &fakeDiscovery{}
			_, err := Resolve(ctx, ref, d)
			So(errors.Is(err, video.ErrResolutionFailed), ShouldBeTrue)
		})
	})

	Convey("Given a query reference", t, func() {
		ref, err := video.Parse("", "lofi hip hop radio")
		So(err, ShouldBeNil)

		Convey("Resolve should take the first hit", func() {
			d := &fakeDiscovery{hits: []*video.Hit{
				{Identity: video.Identity{ID: "jfKfPfyJRdk", Title: "lofi hip hop radio"}},
				{Identity: video.Identity{ID: "5qap5aO4i9A", Title: "other"}},
			}}
			identity, err := Resolve(ctx, ref, d)
			So(err, ShouldBeNil)
			So(identity.ID, ShouldEqual, "jfKfPfyJRdk")
			So(identity.URL, ShouldEqual, video.WatchURL("jfKfPfyJRdk"))
			So(d.searches, ShouldResemble, []string{"lofi hip hop radio"})
			So(d.lookups, ShouldBeEmpty)
		})

		Convey("Resolve should not record the query anywhere", func() {
			So(query.Forget(), ShouldBeNil)

			private, err := video.Parse("", "private request alpha")
			So(err, ShouldBeNil)

			d := &fakeDiscovery{hits: []*video.Hit{{Identity: video.Identity{ID: "jfKfPfyJRdk"}}}}
			_, err = Resolve(ctx, private, d)
			So(err, ShouldBeNil)
			So(query.SuggestMany("private"), ShouldBeEmpty)
		})

		Convey("No results should be ResolutionFailed", func() {
			d := &fakeDiscovery{}
			_, err := Resolve(ctx, ref, d)
			So(errors.Is(err, video.ErrResolutionFailed), ShouldBeTrue)
		})

		Convey("A search failure should be ResolutionFailed", func() {
			d := &fakeDiscovery{searchErr: errors.New("blocked")}
			_, err := Resolve(ctx, ref, d)
			So(video.ReasonOf(err), ShouldEqual, video.ResolutionFailed)
		})
	})

	Convey("Given a URL without an id", t, func() {
		ref, err := video.Parse("https://example.com/some/page", "")
		So(err, ShouldBeNil)

		Convey("Resolve should search with the normalized URL", func() {
			d := &fakeDiscovery{hits: []*video.Hit{{Identity: video.Identity{ID: "jfKfPfyJRdk"}}}}
			_, err := Resolve(ctx, ref, d)
			So(err, ShouldBeNil)
			So(d.searches, ShouldResemble, []string{"https://example.com/some/page"})
		})
	})
}
