// Package video defines the domain models shared by discovery, providers and the resolution pipeline.
package video

import (
	"regexp"
	"strings"

	"github.com/goware/urlx"
	"github.com/samber/mo"
)

// Kind tells how a reference must be resolved.
type Kind int

const (
	KindURL Kind = iota + 1
	KindQuery
)

func (k Kind) String() string {
	switch k {
	case KindURL:
		return "url"
	case KindQuery:
		return "query"
	default:
		return "unknown"
	}
}

// MarshalText encodes the kind by name.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Reference is the normalized form of user input.
type Reference struct {
	// Raw is the trimmed user input.
	Raw string
	// Kind is either KindURL or KindQuery, never both.
	Kind Kind
	// ID is present only for URL references whose id could be extracted.
	ID mo.Option[string]
	// Normalized is the cleaned up URL for URL references.
	Normalized string
}

// idPattern matches watch, short domain, embed, /v/ and shorts URLs with or without protocol and www.
// The host must start the text or follow whitespace.
var idPattern = regexp.MustCompile(
	`(?:^|\s)(?:https?://)?(?:(?:www\.|m\.)?youtube(?:-nocookie)?\.com/(?:watch\?(?:.*&)?v=|embed/|v/|shorts/|live/)|youtu\.be/)([-_0-9A-Za-z]{11})`,
)

// ExtractID pulls the 11 character video id from any supported URL shape.
func ExtractID(s string) (string, bool) {
	m := idPattern.FindStringSubmatch(s)
	if len(m) < 2 {
		return "", false
	}
	return m[1], true
}

// Parse normalizes a url/query pair. A non-empty url always wins over the query.
// Query text is never inspected for an id.
func Parse(url, query string) (*Reference, error) {
	url, query = strings.TrimSpace(url), strings.TrimSpace(query)

	switch {
	case url != "":
		return fromURL(url)
	case query != "":
		return &Reference{Raw: query, Kind: KindQuery, ID: mo.None[string]()}, nil
	default:
		return nil, Errorf(InvalidInput, "url or query required")
	}
}

// ParseText classifies free text: text holding a recognizable id is a URL, anything else is a query.
func ParseText(text string) (*Reference, error) {
	text = strings.TrimSpace(text)
	if _, ok := ExtractID(text); ok {
		return Parse(text, "")
	}
	return Parse("", text)
}

func fromURL(raw string) (*Reference, error) {
	ref := &Reference{
		Raw:  raw,
		Kind: KindURL,
		ID:   mo.None[string](),
	}
	if id, ok := ExtractID(raw); ok {
		ref.ID = mo.Some(id)
	}

	parsed, err := urlx.Parse(raw)
	if err != nil {
		if id, ok := ref.ID.Get(); ok {
			ref.Normalized = WatchURL(id)
			return ref, nil
		}
		return nil, &Error{Reason: InvalidInput, Msg: "malformed url " + raw, Err: err}
	}

	if ref.Normalized, err = urlx.Normalize(parsed); err != nil {
		ref.Normalized = raw
	}
	return ref, nil
}

// SearchText is the text handed to discovery when the reference has no id.
// URL references are searched by their normalized form.
func (r *Reference) SearchText() string {
	if r.Kind == KindURL && r.Normalized != "" {
		return r.Normalized
	}
	return r.Raw
}

func (r *Reference) String() string {
	if id, ok := r.ID.Get(); ok {
		return r.Kind.String() + ":" + id
	}
	return r.Kind.String() + ":" + r.Raw
}
