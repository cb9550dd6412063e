// Package gate decides whether a learner may start a new attempt.
package gate

import (
	"errors"
	"fmt"

	"github.com/wahaj323/quizengine/internal/quiz"
)

// Reason names why an attempt was denied.
type Reason string

const (
	ReasonNone        Reason = ""
	ReasonUnpublished Reason = "unpublished"
	ReasonLocked      Reason = "locked"
	ReasonExhausted   Reason = "no attempts remaining"
)

// ErrDenied matches every *DeniedError.
var ErrDenied = errors.New("attempt denied")

// DeniedError reports a gate denial to callers that work with errors.
type DeniedError struct {
	Reason    Reason
	Remaining int
}

func (e *DeniedError) Error() string {
	return fmt.Sprintf("attempt denied: %s", e.Reason)
}

func (e *DeniedError) Is(target error) bool { return target == ErrDenied }

// UnlockSet is the set of quiz ids a learner may attempt.
type UnlockSet map[string]struct{}

// NewUnlockSet builds an UnlockSet from ids.
func NewUnlockSet(ids ...string) UnlockSet {
	s := make(UnlockSet, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

// Contains reports whether quizID is unlocked.
func (s UnlockSet) Contains(quizID string) bool {
	_, ok := s[quizID]
	return ok
}

// Snapshot is the state one decision is made from. All fields must be read
// together so that a stale unlock set never meets a fresh attempt count.
type Snapshot struct {
	Quiz          quiz.Quiz
	Unlocked      UnlockSet
	PriorAttempts int
}

// Decision is the outcome of a gate check.
type Decision struct {
	Allowed bool
	Reason  Reason

	// Used is the number of prior attempts.
	Used int

	// Remaining is max(0, MaxAttempts-Used). It is meaningless when Unlimited.
	Remaining int
	Unlimited bool
}

// CanStart applies the gate rules in order: the quiz must be published, it
// must be unlocked for the learner, and a limited quiz must have attempts left.
func CanStart(q quiz.Quiz, unlocked UnlockSet, prior []quiz.Attempt) Decision {
	return Evaluate(Snapshot{Quiz: q, Unlocked: unlocked, PriorAttempts: len(prior)})
}

// Evaluate is CanStart over a pre-counted snapshot.
func Evaluate(s Snapshot) Decision {
	used := max(s.PriorAttempts, 0)
	d := Decision{Used: used}

	if !s.Quiz.Published {
		d.Reason = ReasonUnpublished
		return d
	}
	if !s.Unlocked.Contains(s.Quiz.ID) {
		d.Reason = ReasonLocked
		return d
	}
	if s.Quiz.Settings.Unlimited() {
		d.Unlimited = true
		d.Allowed = true
		return d
	}

	d.Remaining = max(s.Quiz.Settings.MaxAttempts-used, 0)
	if d.Remaining == 0 {
		d.Reason = ReasonExhausted
		return d
	}
	d.Allowed = true
	return d
}

// Message returns a sentence suitable for showing to the learner.
func (d Decision) Message() string {
	switch d.Reason {
	case ReasonNone:
		if d.Unlimited {
			return "Unlimited attempts."
		}
		if d.Remaining == 1 {
			return "1 attempt remaining."
		}
		return fmt.Sprintf("%d attempts remaining.", d.Remaining)
	case ReasonUnpublished:
		return "This quiz is not published yet."
	case ReasonLocked:
		return "This quiz is locked."
	case ReasonExhausted:
		return fmt.Sprintf("No attempts remaining (%d used).", d.Used)
	}
	return string(d.Reason)
}

// Err returns a *DeniedError for a denial, or nil when allowed.
func (d Decision) Err() error {
	if d.Allowed {
		return nil
	}
	return &DeniedError{Reason: d.Reason, Remaining: d.Remaining}
}

// RemainingOrUnlimited returns Remaining, or -1 for unlimited quizzes.
func (d Decision) RemainingOrUnlimited() int {
	if d.Unlimited {
		return -1
	}
	return d.Remaining
}

// Apply copies the decision onto a learner view of a quiz.
func (d Decision) Apply(v *quiz.View) {
	v.CanAttempt = d.Allowed
	v.Reason = ""
	if !d.Allowed {
		v.Reason = string(d.Reason)
	}
	v.AttemptsUsed = d.Used
	v.AttemptsRemaining = d.RemainingOrUnlimited()
}

// FromView rebuilds the decision a server attached to a learner view.
func FromView(v quiz.View) Decision {
	d := Decision{
		Allowed:   v.CanAttempt,
		Reason:    Reason(v.Reason),
		Used:      v.AttemptsUsed,
		Remaining: max(v.AttemptsRemaining, 0),
		Unlimited: v.AttemptsRemaining < 0,
	}
	if d.Allowed {
		d.Reason = ReasonNone
	}
	return d
}
