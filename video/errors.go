// Package video defines the domain models shared by discovery, providers and the resolution pipeline.
package video

import (
	"errors"
	"fmt"
)

// Reason classifies a resolution failure.
type Reason string

const (
	InvalidInput          Reason = "invalid input"
	ResolutionFailed      Reason = "resolution failed"
	AnalyzeFailed         Reason = "analyze failed"
	ConvertFailed         Reason = "convert failed"
	FormatUnavailable     Reason = "format unavailable"
	QualityUnavailable    Reason = "quality unavailable"
	AllProvidersExhausted Reason = "all providers exhausted"
)

// Error is a failure tagged with its Reason.
type Error struct {
	Reason Reason
	Msg    string
	Err    error
}

// Sentinels for errors.Is. They match any *Error carrying the same Reason.
var (
	ErrInvalidInput          = &Error{Reason: InvalidInput}
	ErrResolutionFailed      = &Error{Reason: ResolutionFailed}
	ErrAnalyzeFailed         = &Error{Reason: AnalyzeFailed}
	ErrConvertFailed         = &Error{Reason: ConvertFailed}
	ErrFormatUnavailable     = &Error{Reason: FormatUnavailable}
	ErrQualityUnavailable    = &Error{Reason: QualityUnavailable}
	ErrAllProvidersExhausted = &Error{Reason: AllProvidersExhausted}
)

func (e *Error) Error() string {
	switch {
	case e.Msg != "" && e.Err != nil:
		return fmt.Sprintf("%s: %s: %v", e.Reason, e.Msg, e.Err)
	case e.Msg != "":
		return fmt.Sprintf("%s: %s", e.Reason, e.Msg)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Reason, e.Err)
	default:
		return string(e.Reason)
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches sentinels by reason.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Msg == "" && t.Err == nil && t.Reason == e.Reason
}

// Errorf creates a new *Error with a formatted message.
func Errorf(reason Reason, format string, args ...any) *Error {
	return &Error{Reason: reason, Msg: fmt.Sprintf(format, args...)}
}

// Wrap tags err with reason. An err that already carries the same reason is returned as is.
func Wrap(reason Reason, err error, msg string) error {
	if err == nil {
		return nil
	}
	if ReasonOf(err) == reason {
		return err
	}
	return &Error{Reason: reason, Msg: msg, Err: err}
}

// FailureReason implements the reasoner contract used by ReasonOf.
func (e *Error) FailureReason() Reason {
	return e.Reason
}

type reasoner interface {
	FailureReason() Reason
}

// ReasonOf returns the reason of the outermost classified error in err's tree, or "" if there is none.
func ReasonOf(err error) Reason {
	var r reasoner
	if errors.As(err, &r) {
		return r.FailureReason()
	}
	return ""
}
