package discovery

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"strconv"
	"strings"

	levenshtein "github.com/ka-weihe/fast-levenshtein"
	"github.com/samber/lo"
	"github.com/vidlink-cli/vidlink/video"
)

// Picker chooses one hit from a ranked result list.
type Picker func(query string, hits []*video.Hit) (*video.Hit, error)

// ErrNoHits is returned by pickers given an empty list.
var ErrNoHits = errors.New("no results")

// Pickers lists the named pickers accepted by ParsePicker, besides "index:N".
var Pickers = []string{"first", "last", "most", "least", "longest", "shortest", "random", "closest"}

// ParsePicker resolves a picker by name. "index:N" picks the Nth hit, one based.
func ParsePicker(kind string) (Picker, error) {
	kind = strings.ToLower(strings.TrimSpace(kind))

	if n, ok := strings.CutPrefix(kind, "index:"); ok {
		i, err := strconv.Atoi(n)
		if err != nil || i < 1 {
			return nil, fmt.Errorf("invalid index %q", n)
		}
		return pickIndex(i - 1), nil
	}

	switch kind {
	case "", "first":
		return pickIndex(0), nil
	case "last":
		return guard(func(_ string, hits []*video.Hit) *video.Hit { return hits[len(hits)-1] }), nil
	case "most":
		return guard(func(_ string, hits []*video.Hit) *video.Hit {
			return lo.MaxBy(hits, func(a, b *video.Hit) bool { return a.Views > b.Views })
		}), nil
	case "least":
		return guard(func(_ string, hits []*video.Hit) *video.Hit {
			return lo.MinBy(hits, func(a, b *video.Hit) bool { return a.Views < b.Views })
		}), nil
	case "longest":
		return guard(func(_ string, hits []*video.Hit) *video.Hit {
			return lo.MaxBy(hits, func(a, b *video.Hit) bool { return a.Duration > b.Duration })
		}), nil
	case "shortest":
		return guard(func(_ string, hits []*video.Hit) *video.Hit {
			return lo.MinBy(hits, func(a, b *video.Hit) bool { return a.Duration < b.Duration })
		}), nil
	case "random":
		return guard(func(_ string, hits []*video.Hit) *video.Hit { return hits[rand.IntN(len(hits))] }), nil
	case "closest":
		return guard(closest), nil
	default:
		return nil, fmt.Errorf("unknown picker %q, available: %s, index:N", kind, strings.Join(Pickers, ", "))
	}
}

func guard(pick func(string, []*video.Hit) *video.Hit) Picker {
	return func(query string, hits []*video.Hit) (*video.Hit, error) {
		if len(hits) == 0 {
			return nil, ErrNoHits
		}
		return pick(query, hits), nil
	}
}

func pickIndex(i int) Picker {
	return func(_ string, hits []*video.Hit) (*video.Hit, error) {
		if len(hits) == 0 {
			return nil, ErrNoHits
		}
		if i >= len(hits) {
			return nil, fmt.Errorf("index %d out of range (%d results)", i+1, len(hits))
		}
		return hits[i], nil
	}
}

// closest picks the hit whose title has the smallest edit distance to the query.
// Ties keep the earlier hit.
func closest(query string, hits []*video.Hit) *video.Hit {
	query = strings.ToLower(query)
	return lo.MinBy(hits, func(a, b *video.Hit) bool {
		return levenshtein.Distance(query, strings.ToLower(a.Title)) <
			levenshtein.Distance(query, strings.ToLower(b.Title))
	})
}
