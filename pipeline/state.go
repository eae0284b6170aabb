package pipeline

// State is a step of the per-provider attempt state machine.
type State int

const (
	StateStart State = iota
	StateAnalyzed
	StateQualitySelected
	StateConverted
	StateDone
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateStart:
		return "start"
	case StateAnalyzed:
		return "analyzed"
	case StateQualitySelected:
		return "quality selected"
	case StateConverted:
		return "converted"
	case StateDone:
		return "done"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Terminal reports whether no further transition follows s.
func (s State) Terminal() bool {
	return s == StateDone || s == StateFailed
}

// Event is emitted on every state transition of an attempt.
type Event struct {
	Provider string
	State    State
	// Err is set for StateFailed.
	Err error
}

// Observer receives attempt events. It is called synchronously from the resolving goroutine.
type Observer func(Event)
