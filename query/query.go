// Package query keeps a ranked history of search queries and offers fuzzy suggestions from it.
package query

import (
	"strings"
	"sync"

	"github.com/vidlink-cli/vidlink/filesystem"
	"github.com/vidlink-cli/vidlink/key"
	"github.com/vidlink-cli/vidlink/where"
	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/samber/lo"
	"github.com/samber/mo"
	"github.com/spf13/viper"
	"golang.org/x/exp/slices"
)

// Weights applied when a query is remembered.
const (
	WeightSearch  = 1
	WeightResolve = 2
)

type record struct {
	Rank  int    `json:"rank"`
	Query string `json:"query"`
}

var cacher = filesystem.Cache[map[string]*record](where.Queries(), 0)

var (
	mu          sync.Mutex
	suggestions = make(map[string][]*record)
)

// Remember records a search query in the history or bumps its rank by weight.
func Remember(q string, weight int) error {
	q = sanitize(q)
	if q == "" {
		return nil
	}

	mu.Lock()
	defer mu.Unlock()

	cached, expired, err := cacher.Get()
	if expired || err != nil || cached == nil {
		cached = make(map[string]*record)
	}

	if r, ok := cached[q]; ok {
		r.Rank += weight
	} else {
		cached[q] = &record{Rank: weight, Query: q}
	}

	clear(suggestions)
	return cacher.Set(cached)
}

// Suggest returns the best ranked historical query matching q.
func Suggest(q string) mo.Option[string] {
	many := SuggestMany(q)
	if len(many) == 0 {
		return mo.None[string]()
	}
	return mo.Some(many[0])
}

// SuggestMany returns historical queries fuzzily matching q, most popular first.
func SuggestMany(q string) []string {
	if !viper.GetBool(key.SearchShowQuerySuggestions) {
		return []string{}
	}

	q = sanitize(q)

	mu.Lock()
	defer mu.Unlock()

	records, ok := suggestions[q]
	if !ok {
		cached, expired, err := cacher.Get()
		if err != nil || expired || cached == nil {
			return []string{}
		}

		for _, r := range cached {
			if fuzzy.Match(q, r.Query) {
				records = append(records, r)
			}
		}

		slices.SortFunc(records, func(a, b *record) int {
			if a.Rank != b.Rank {
				return b.Rank - a.Rank
			}
			return strings.Compare(a.Query, b.Query)
		})

		suggestions[q] = records
	}

	return lo.Map(records, func(r *record, _ int) string {
		return r.Query
	})
}

// Forget drops the whole history.
func Forget() error {
	mu.Lock()
	defer mu.Unlock()

	clear(suggestions)
	return cacher.Set(make(map[string]*record))
}

func sanitize(q string) string {
	return strings.TrimSpace(strings.ToLower(q))
}
