package session

import "time"

// State is the lifecycle phase of an attempt session.
type State int

const (
	StateLoading    State = iota // Fetching the quiz
	StateInProgress              // Answering questions
	StateSubmitting              // Submission in flight
	StateCompleted               // Graded attempt received
	StateFailed                  // Load failed or the attempt was denied
	StateAbandoned               // Discarded by the learner
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateInProgress:
		return "in_progress"
	case StateSubmitting:
		return "submitting"
	case StateCompleted:
		return "completed"
	case StateFailed:
		return "failed"
	case StateAbandoned:
		return "abandoned"
	}
	return "unknown"
}

// Terminal reports whether no further transition is possible.
func (s State) Terminal() bool {
	return s == StateCompleted || s == StateFailed || s == StateAbandoned
}

// EventType classifies controller events.
type EventType int

const (
	// EventTick is published once per second while a timed attempt runs.
	EventTick EventType = iota

	// EventExpired is published when the countdown reaches zero, right
	// before the forced submission.
	EventExpired

	// EventSubmitted carries the graded attempt.
	EventSubmitted

	// EventFailed carries a load or submit error. State tells whether the
	// session can retry (InProgress) or is finished (Failed).
	EventFailed
)

func (t EventType) String() string {
	switch t {
	case EventTick:
		return "tick"
	case EventExpired:
		return "expired"
	case EventSubmitted:
		return "submitted"
	case EventFailed:
		return "failed"
	}
	return "unknown"
}

// Event is published on the controller's event channel.
type Event struct {
	Type      EventType
	State     State
	Remaining time.Duration
	Err       error
}
