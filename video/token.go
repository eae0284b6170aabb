// Package video defines the domain models shared by discovery, providers and the resolution pipeline.
package video

// Token is an opaque conversion token issued by a provider's analyze step.
// It is only valid for the convert call of the same attempt and is never printed in full.
type Token struct {
	value string
}

// NewToken wraps a raw provider token.
func NewToken(value string) Token {
	return Token{value: value}
}

// Value returns the raw token for the convert request.
func (t Token) Value() string {
	return t.value
}

// IsZero reports whether the token is empty.
func (t Token) IsZero() bool {
	return t.value == ""
}

// String returns a redacted form safe for logs.
func (t Token) String() string {
	switch {
	case t.value == "":
		return "<none>"
	case len(t.value) <= 8:
		return "***"
	default:
		return t.value[:4] + "***"
	}
}

// GoString keeps %#v from leaking the raw value.
func (t Token) GoString() string {
	return "video.Token(" + t.String() + ")"
}
