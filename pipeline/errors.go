package pipeline

import (
	"strings"

	"github.com/vidlink-cli/vidlink/video"
)

// Attempt records why one provider strategy failed.
type Attempt struct {
	Provider string `json:"provider"`
	Err      error  `json:"-"`
}

// Reason returns the classified failure reason of the attempt.
func (a Attempt) Reason() video.Reason {
	return video.ReasonOf(a.Err)
}

// ExhaustedError is returned when every provider strategy failed.
// Attempts holds exactly one entry per attempted strategy, in attempt order.
type ExhaustedError struct {
	Attempts []Attempt
}

func (e *ExhaustedError) Error() string {
	if len(e.Attempts) == 0 {
		return string(video.AllProvidersExhausted) + ": no providers configured"
	}

	var b strings.Builder
	b.WriteString(string(video.AllProvidersExhausted))
	for i, a := range e.Attempts {
		if i == 0 {
			b.WriteString(": ")
		} else {
			b.WriteString("; ")
		}
		b.WriteString(a.Provider)
		b.WriteString(": ")
		b.WriteString(a.Err.Error())
	}
	return b.String()
}

// Unwrap exposes the per-provider failures.
func (e *ExhaustedError) Unwrap() []error {
	errs := make([]error, len(e.Attempts))
	for i, a := range e.Attempts {
		errs[i] = a.Err
	}
	return errs
}

// Is matches video.ErrAllProvidersExhausted.
func (e *ExhaustedError) Is(target error) bool {
	return target == video.ErrAllProvidersExhausted
}

// FailureReason reports AllProvidersExhausted regardless of the nested reasons.
func (e *ExhaustedError) FailureReason() video.Reason {
	return video.AllProvidersExhausted
}
