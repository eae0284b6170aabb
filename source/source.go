// Package source defines the contract every provider strategy implements.
package source

import (
	"context"
	"time"

	"github.com/vidlink-cli/vidlink/discovery"
	"github.com/vidlink-cli/vidlink/video"
)

// Source is one provider strategy speaking the two-phase analyze/convert protocol.
type Source interface {
	// Name returns the human readable provider name.
	Name() string

	// ID returns the unique identifier of the source.
	ID() string

	// Defaults returns the tier chosen for each format when the requested quality is auto.
	Defaults() video.Defaults

	// Analyze submits the canonical URL of identity and returns the offered catalog.
	// Failures carry the AnalyzeFailed reason.
	Analyze(ctx context.Context, identity video.Identity) (*Analysis, error)

	// Convert exchanges a token from the latest analysis for a locator.
	// Failures carry the ConvertFailed reason.
	Convert(ctx context.Context, videoID string, token video.Token) (*Conversion, error)
}

// Discoverer is implemented by sources that resolve identities their own way.
type Discoverer interface {
	Discovery() discovery.Discovery
}

// Analysis is what a provider reports for one identity.
type Analysis struct {
	// Identity holds provider reported fields. Non-empty ones supersede the discovered identity.
	Identity video.Identity
	Catalog  *video.Catalog
	Related  []*video.Hit
	// Timestamp is when the analysis completed.
	Timestamp time.Time
}

// Conversion is the provider's answer to a convert call.
// Format and Quality echo what the provider reports and never replace the selected tags.
type Conversion struct {
	Link    string
	Label   string
	Size    string
	Format  string
	Quality string
}

// Result combines the conversion with the entry it was requested for.
// The tags always name the selected entry; the provider may only refine label and size.
func (c *Conversion) Result(format string, entry video.Entry) video.Result {
	if format == "" {
		format = video.DefaultFormat
	}

	r := video.Result{
		Format:  format,
		Quality: entry.Quality,
		Link:    c.Link,
		Size:    entry.Size,
		Label:   entry.Label,
	}

	if c.Size != "" {
		r.Size = c.Size
	}
	if c.Label != "" {
		r.Label = c.Label
	}

	return r
}
