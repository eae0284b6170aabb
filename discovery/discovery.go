// Package discovery turns references into video identities through search or metadata lookup.
package discovery

import (
	"context"
	"fmt"

	"github.com/vidlink-cli/vidlink/video"
)

// Searcher returns ranked results for free text.
type Searcher interface {
	Search(ctx context.Context, query string, limit int) ([]*video.Hit, error)
}

// Lookup fetches lightweight metadata for a known id.
type Lookup interface {
	Lookup(ctx context.Context, id string) (*video.Identity, error)
}

// Discovery bundles both capabilities.
type Discovery interface {
	Searcher
	Lookup
}

// Resolve produces the identity for ref.
//
// A URL carrying an id is looked up and never searched. Queries, and URLs without
// an id, are searched with the raw text and the first hit wins. Any failure is
// reported as ResolutionFailed; the other capability is not tried.
func Resolve(ctx context.Context, ref *video.Reference, d Discovery) (*video.Identity, error) {
	if id, ok := ref.ID.Get(); ok {
		identity, err := d.Lookup(ctx, id)
		if err != nil {
			return nil, video.Wrap(video.ResolutionFailed, err, fmt.Sprintf("lookup %s", id))
		}
		if identity == nil {
			return nil, video.Errorf(video.ResolutionFailed, "lookup %s: no metadata", id)
		}

		resolved := video.Identity{ID: id}.Merge(*identity)
		resolved.ID = id
		return &resolved, nil
	}

	text := ref.SearchText()
	hits, err := d.Search(ctx, text, 1)
	if err != nil {
		return nil, video.Wrap(video.ResolutionFailed, err, fmt.Sprintf("search %q", text))
	}

	if len(hits) == 0 || hits[0] == nil || hits[0].ID == "" {
		return nil, video.Errorf(video.ResolutionFailed, "no results for %q", text)
	}

	resolved := video.Identity{}.Merge(hits[0].Identity)
	return &resolved, nil
}
