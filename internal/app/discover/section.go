package discover

// Phase is the load state of one screen section.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseLoading
	PhaseLoaded
	PhaseFailed
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseLoading:
		return "loading"
	case PhaseLoaded:
		return "loaded"
	case PhaseFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Section holds the data and load state of one list on screen.
// Message is set only in PhaseFailed.
type Section[T any] struct {
	Phase   Phase
	Data    T
	Message string
}

// Loading keeps the current data visible while a new load runs.
func (s Section[T]) Loading() Section[T] {
	return Section[T]{Phase: PhaseLoading, Data: s.Data}
}

// Loaded returns a section showing data.
func Loaded[T any](data T) Section[T] {
	return Section[T]{Phase: PhaseLoaded, Data: data}
}

// Failed returns a section showing message instead of data.
func Failed[T any](message string) Section[T] {
	return Section[T]{Phase: PhaseFailed, Message: message}
}
