// Package video defines the domain models shared by discovery, providers and the resolution pipeline.
package video

import (
	"encoding/json"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

const (
	// Auto requests the provider's default tier for the chosen format.
	Auto = "auto"
	// DefaultFormat is the primary video container.
	DefaultFormat = "mp4"
)

// Entry is one downloadable quality tier of a format.
type Entry struct {
	// Quality is the tag matched against the requested quality, e.g. "360p" or "128kbps".
	Quality string `json:"quality"`
	// Label is the human readable quality text.
	Label string `json:"label,omitempty"`
	// Size is the provider's approximate size label.
	Size string `json:"size,omitempty"`
	// Token is required by the convert step and is never serialized.
	Token Token `json:"-"`
}

// Defaults maps a format tag to the quality picked for Auto.
type Defaults map[string]string

// For returns the auto tier for format.
func (d Defaults) For(format string) (string, bool) {
	q, ok := d[format]
	return q, ok && q != ""
}

// Catalog is the ordered format -> quality table reported by a provider's analyze step.
// Every format present holds at least one entry.
type Catalog struct {
	formats *orderedmap.OrderedMap[string, []Entry]
}

// NewCatalog returns an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{formats: orderedmap.New[string, []Entry]()}
}

// Add appends an entry to format, creating the format on first use.
func (c *Catalog) Add(format string, e Entry) {
	if format == "" {
		return
	}
	entries, _ := c.formats.Get(format)
	c.formats.Set(format, append(entries, e))
}

// Len returns the number of formats.
func (c *Catalog) Len() int {
	return c.formats.Len()
}

// Formats returns the format tags in catalog order.
func (c *Catalog) Formats() []string {
	formats := make([]string, 0, c.formats.Len())
	for pair := c.formats.Oldest(); pair != nil; pair = pair.Next() {
		formats = append(formats, pair.Key)
	}
	return formats
}

// Entries returns a copy of the entries of format in catalog order.
func (c *Catalog) Entries(format string) ([]Entry, bool) {
	entries, ok := c.formats.Get(format)
	if !ok {
		return nil, false
	}
	return append([]Entry(nil), entries...), true
}

// Qualities returns the quality tags of format in catalog order.
func (c *Catalog) Qualities(format string) []string {
	entries, _ := c.formats.Get(format)
	tags := make([]string, len(entries))
	for i, e := range entries {
		tags[i] = e.Quality
	}
	return tags
}

// Select picks the entry for format and quality. Empty values fall back to DefaultFormat and Auto.
// Auto resolves to the defaults tier when the format carries it, otherwise to the first tier.
// The catalog is never modified and no other format is ever substituted.
func (c *Catalog) Select(format, quality string, defaults Defaults) (Entry, error) {
	if format == "" {
		format = DefaultFormat
	}
	if quality == "" {
		quality = Auto
	}

	entries, ok := c.formats.Get(format)
	if !ok || len(entries) == 0 {
		return Entry{}, Errorf(FormatUnavailable, "format %q not available", format)
	}

	if quality == Auto {
		if preferred, ok := defaults.For(format); ok {
			if e, found := find(entries, preferred); found {
				return e, nil
			}
		}
		return entries[0], nil
	}

	if e, found := find(entries, quality); found {
		return e, nil
	}
	return Entry{}, Errorf(QualityUnavailable, "quality %q not available for %s", quality, format)
}

func find(entries []Entry, quality string) (Entry, bool) {
	for _, e := range entries {
		if e.Quality == quality {
			return e, true
		}
	}
	return Entry{}, false
}

// MarshalJSON keeps catalog order. Tokens are omitted.
func (c *Catalog) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.formats)
}
