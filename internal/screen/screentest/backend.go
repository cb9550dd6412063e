// Package screentest provides an in-memory screen.Backend for screen and app
// tests.
package screentest

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/wahaj323/quizengine/internal/gate"
	"github.com/wahaj323/quizengine/internal/history"
	"github.com/wahaj323/quizengine/internal/quiz"
	"github.com/wahaj323/quizengine/internal/scoring"
	"github.com/wahaj323/quizengine/internal/store"
)

// Backend keeps full quizzes and grades submissions with the scoring engine.
// Every quiz it holds is unlocked for the user unless Lock is called.
type Backend struct {
	mu          sync.Mutex
	user        string
	quizzes     []quiz.Quiz
	locked      map[string]bool
	attempts    []quiz.Attempt
	submissions []quiz.Submission

	// SubmitErr is returned by the next SubmitAttempt, then cleared.
	SubmitErr error
	// ListErr is returned by ListQuizzes while set.
	ListErr error
}

// New returns a Backend for user holding quizzes.
func New(user string, quizzes ...quiz.Quiz) *Backend {
	b := &Backend{user: user, locked: make(map[string]bool)}
	for _, q := range quizzes {
		q.Recompute()
		b.quizzes = append(b.quizzes, q)
	}
	return b
}

// Lock denies the quiz to the user.
func (b *Backend) Lock(quizID string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.locked[quizID] = true
}

// Submissions returns what SubmitAttempt received, failed calls included.
func (b *Backend) Submissions() []quiz.Submission {
	b.mu.Lock()
	defer b.mu.Unlock()
	return slices.Clone(b.submissions)
}

// Attempts returns the stored attempts.
func (b *Backend) Attempts() []quiz.Attempt {
	b.mu.Lock()
	defer b.mu.Unlock()
	return slices.Clone(b.attempts)
}

func (b *Backend) UserID() string { return b.user }

func (b *Backend) GetQuiz(_ context.Context, quizID string) (quiz.View, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	q, ok := b.find(quizID)
	if !ok {
		return quiz.View{}, store.ErrNotFound
	}
	return b.view(q), nil
}

func (b *Backend) ListQuizzes(_ context.Context, courseID string) ([]quiz.View, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.ListErr != nil {
		return nil, b.ListErr
	}
	var out []quiz.View
	for _, q := range b.quizzes {
		if q.Published && (courseID == "" || q.CourseID == courseID) {
			out = append(out, b.view(q))
		}
	}
	return out, nil
}

func (b *Backend) SubmitAttempt(_ context.Context, quizID string, sub quiz.Submission) (quiz.Attempt, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.submissions = append(b.submissions, sub)
	if err := b.SubmitErr; err != nil {
		b.SubmitErr = nil
		return quiz.Attempt{}, err
	}
	q, ok := b.find(quizID)
	if !ok {
		return quiz.Attempt{}, store.ErrNotFound
	}
	if d := b.decide(q); !d.Allowed {
		return quiz.Attempt{}, d.Err()
	}

	a := quiz.Attempt{
		ID:          fmt.Sprintf("att-%d", len(b.attempts)+1),
		QuizID:      quizID,
		UserID:      b.user,
		Number:      len(b.prior(quizID)) + 1,
		StartedAt:   sub.StartedAt,
		SubmittedAt: sub.SubmittedAt,
	}
	spent := max(int(sub.SubmittedAt.Sub(sub.StartedAt)/time.Second), 0)
	scoring.Grade(q, quiz.BindAnswers(q, sub.Answers), spent).Apply(&a)
	b.attempts = append(b.attempts, a)
	return a, nil
}

func (b *Backend) History(context.Context) ([]quiz.Attempt, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return slices.Clone(b.attempts), nil
}

func (b *Backend) Summary(_ context.Context, quizID string) (history.Summary, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if quizID == "" {
		return history.Summarize(b.attempts), nil
	}
	return history.Summarize(b.prior(quizID)), nil
}

func (b *Backend) Review(_ context.Context, attemptID string) (scoring.Review, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	i := slices.IndexFunc(b.attempts, func(a quiz.Attempt) bool { return a.ID == attemptID })
	if i < 0 {
		return scoring.Review{}, store.ErrNotFound
	}
	q, ok := b.find(b.attempts[i].QuizID)
	if !ok {
		return scoring.Review{}, store.ErrNotFound
	}
	return scoring.BuildReview(q, b.attempts[i])
}

func (b *Backend) find(quizID string) (quiz.Quiz, bool) {
	i := slices.IndexFunc(b.quizzes, func(q quiz.Quiz) bool { return q.ID == quizID })
	if i < 0 {
		return quiz.Quiz{}, false
	}
	return b.quizzes[i], true
}

func (b *Backend) prior(quizID string) []quiz.Attempt {
	var out []quiz.Attempt
	for _, a := range b.attempts {
		if a.QuizID == quizID {
			out = append(out, a)
		}
	}
	return out
}

func (b *Backend) decide(q quiz.Quiz) gate.Decision {
	unlocked := gate.NewUnlockSet()
	if !b.locked[q.ID] {
		unlocked = gate.NewUnlockSet(q.ID)
	}
	return gate.CanStart(q, unlocked, b.prior(q.ID))
}

func (b *Backend) view(q quiz.Quiz) quiz.View {
	v := quiz.View{Quiz: q.ForLearner()}
	b.decide(q).Apply(&v)
	return v
}
