// Package assessment is the authoritative side of quiz taking: it evaluates
// the gate from one transactional snapshot, regrades submissions and keeps
// quiz definitions valid.
package assessment

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/wahaj323/quizengine/internal/gate"
	"github.com/wahaj323/quizengine/internal/history"
	"github.com/wahaj323/quizengine/internal/quiz"
	"github.com/wahaj323/quizengine/internal/scoring"
	"github.com/wahaj323/quizengine/internal/store"
)

var (
	// ErrQuizHasAttempts is returned when deleting a quiz learners attempted,
	// or when changing its questions.
	ErrQuizHasAttempts = errors.New("quiz has attempts")

	// ErrInvalidInput is returned for malformed arguments.
	ErrInvalidInput = errors.New("invalid input")
)

// SubmitGrace is how late a timed submission may arrive before it counts as
// late. Late attempts are still graded with the time capped at the limit.
const SubmitGrace = 5 * time.Second

// MaxFeedbackLength bounds teacher feedback.
const MaxFeedbackLength = 4000

// Recorder receives assessment metrics.
type Recorder interface {
	AttemptSubmitted(score int, passed bool, spent time.Duration)
	AttemptDenied(reason string)
	LateSubmission()
}

type nopRecorder struct{}

func (nopRecorder) AttemptSubmitted(int, bool, time.Duration) {}
func (nopRecorder) AttemptDenied(string)                      {}
func (nopRecorder) LateSubmission()                           {}

// Option configures a Service.
type Option func(*Service)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithLogger sets the logger.
func WithLogger(log *zap.Logger) Option {
	return func(s *Service) { s.log = log }
}

// WithRecorder sets the metrics recorder.
func WithRecorder(r Recorder) Option {
	return func(s *Service) { s.metrics = r }
}

// WithIDs replaces the UUID generator.
func WithIDs(newID func() string) Option {
	return func(s *Service) { s.newID = newID }
}

// Service implements the quiz operations on top of a store.
type Service struct {
	store   *store.Store
	now     func() time.Time
	log     *zap.Logger
	metrics Recorder
	newID   func() string
}

// New creates a Service.
func New(st *store.Store, opts ...Option) *Service {
	s := &Service{
		store:   st,
		now:     time.Now,
		log:     zap.NewNop(),
		metrics: nopRecorder{},
		newID:   uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// snapshot loads everything the gate needs inside tx.
func snapshot(ctx context.Context, tx *store.Tx, userID, quizID string) (gate.Snapshot, error) {
	q, err := tx.Quizzes().Get(ctx, quizID)
	if err != nil {
		return gate.Snapshot{}, err
	}
	unlocked, err := tx.Unlocks().List(ctx, userID)
	if err != nil {
		return gate.Snapshot{}, err
	}
	prior, err := tx.Attempts().CountForUserQuiz(ctx, userID, quizID)
	if err != nil {
		return gate.Snapshot{}, err
	}
	return gate.Snapshot{Quiz: q, Unlocked: gate.NewUnlockSet(unlocked...), PriorAttempts: prior}, nil
}

func learnerView(snap gate.Snapshot) quiz.View {
	v := quiz.View{Quiz: snap.Quiz.ForLearner()}
	gate.Evaluate(snap).Apply(&v)
	return v
}

// GetQuiz returns the learner copy of a quiz with the gate decision attached.
func (s *Service) GetQuiz(ctx context.Context, userID, quizID string) (quiz.View, error) {
	var v quiz.View
	err := s.store.WithTx(ctx, func(tx *store.Tx) error {
		snap, err := snapshot(ctx, tx, userID, quizID)
		if err != nil {
			return err
		}
		v = learnerView(snap)
		return nil
	})
	if err != nil {
		return quiz.View{}, fmt.Errorf("get quiz %s: %w", quizID, err)
	}
	return v, nil
}

// ListQuizzes returns the published quizzes of a course, or of every course
// when courseID is empty, as learner views.
func (s *Service) ListQuizzes(ctx context.Context, userID, courseID string) ([]quiz.View, error) {
	var views []quiz.View
	err := s.store.WithTx(ctx, func(tx *store.Tx) error {
		qs, err := tx.Quizzes().List(ctx, store.QuizFilter{CourseID: courseID, PublishedOnly: true})
		if err != nil {
			return err
		}
		ids, err := tx.Unlocks().List(ctx, userID)
		if err != nil {
			return err
		}
		unlocked := gate.NewUnlockSet(ids...)
		views = make([]quiz.View, 0, len(qs))
		for _, q := range qs {
			prior, err := tx.Attempts().CountForUserQuiz(ctx, userID, q.ID)
			if err != nil {
				return err
			}
			views = append(views, learnerView(gate.Snapshot{Quiz: q, Unlocked: unlocked, PriorAttempts: prior}))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list quizzes: %w", err)
	}
	return views, nil
}

// SubmitAttempt gates, regrades and stores one submission. The gate and the
// attempt number come from the same transaction as the insert, and the
// unique attempt number turns a concurrent double submission into
// store.ErrConflict.
func (s *Service) SubmitAttempt(ctx context.Context, userID, quizID string, sub quiz.Submission) (quiz.Attempt, error) {
	if strings.TrimSpace(userID) == "" {
		return quiz.Attempt{}, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}
	now := s.now().UTC()

	var (
		a        quiz.Attempt
		spent    time.Duration
		late     bool
		decision gate.Decision
	)
	err := s.store.WithTx(ctx, func(tx *store.Tx) error {
		snap, err := snapshot(ctx, tx, userID, quizID)
		if err != nil {
			return err
		}
		decision = gate.Evaluate(snap)
		if !decision.Allowed {
			return decision.Err()
		}

		q := snap.Quiz
		var end time.Time
		spent, end, late = authoritativeTime(q.Settings, sub, now)
		res := scoring.Grade(q, quiz.BindAnswers(q, sub.Answers), int(spent/time.Second))

		a = quiz.Attempt{
			ID:          s.newID(),
			QuizID:      q.ID,
			UserID:      userID,
			Number:      snap.PriorAttempts + 1,
			StartedAt:   sub.StartedAt.UTC(),
			SubmittedAt: end,
		}
		res.Apply(&a)
		return tx.Attempts().Create(ctx, a)
	})
	if err != nil {
		if errors.Is(err, gate.ErrDenied) {
			s.metrics.AttemptDenied(string(decision.Reason))
			s.log.Info("attempt denied",
				zap.String("user_id", userID),
				zap.String("quiz_id", quizID),
				zap.String("reason", string(decision.Reason)))
		}
		return quiz.Attempt{}, fmt.Errorf("submit attempt: %w", err)
	}

	if late {
		s.metrics.LateSubmission()
		s.log.Warn("late submission capped at time limit",
			zap.String("attempt_id", a.ID),
			zap.String("quiz_id", quizID))
	}
	s.metrics.AttemptSubmitted(a.Score, a.Passed, spent)
	s.log.Info("attempt graded",
		zap.String("attempt_id", a.ID),
		zap.String("user_id", userID),
		zap.String("quiz_id", quizID),
		zap.Int("number", a.Number),
		zap.Int("score", a.Score),
		zap.Bool("passed", a.Passed),
		zap.Int("time_spent", a.TimeSpent))
	return a, nil
}

// authoritativeTime returns the time spent, the effective submission time
// and whether a timed attempt arrived after its limit plus SubmitGrace. The
// client clock is trusted only up to the server's now.
func authoritativeTime(settings quiz.Settings, sub quiz.Submission, now time.Time) (time.Duration, time.Time, bool) {
	end := sub.SubmittedAt.UTC()
	if end.IsZero() || end.After(now) {
		end = now
	}
	if sub.StartedAt.IsZero() {
		return 0, end, false
	}

	spent := max(end.Sub(sub.StartedAt), 0)
	late := false
	if settings.Timed() {
		limit := settings.Duration()
		late = spent > limit+SubmitGrace
		spent = min(spent, limit)
	}
	return spent, end, late
}

// GetAttempt returns one attempt.
func (s *Service) GetAttempt(ctx context.Context, attemptID string) (quiz.Attempt, error) {
	return s.store.Attempts().Get(ctx, attemptID)
}

// QuizAttempts returns a learner's attempts at one quiz, oldest first.
func (s *Service) QuizAttempts(ctx context.Context, userID, quizID string) ([]quiz.Attempt, error) {
	return s.store.Attempts().ForUserQuiz(ctx, userID, quizID)
}

// History returns all of a learner's attempts, most recent first.
func (s *Service) History(ctx context.Context, userID string) ([]quiz.Attempt, error) {
	attempts, err := s.store.Attempts().ForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	history.SortRecent(attempts)
	return attempts, nil
}

// Summary aggregates a learner's attempts at quizID, or at every quiz when
// quizID is empty.
func (s *Service) Summary(ctx context.Context, userID, quizID string) (history.Summary, error) {
	var (
		attempts []quiz.Attempt
		err      error
	)
	if quizID == "" {
		attempts, err = s.History(ctx, userID)
	} else {
		attempts, err = s.QuizAttempts(ctx, userID, quizID)
	}
	if err != nil {
		return history.Summary{}, err
	}
	return history.Summarize(attempts), nil
}

// Review lays out an attempt of userID for review. Attempts of other users
// are reported as not found.
func (s *Service) Review(ctx context.Context, userID, attemptID string) (scoring.Review, error) {
	a, err := s.store.Attempts().Get(ctx, attemptID)
	if err != nil {
		return scoring.Review{}, err
	}
	if a.UserID != userID {
		return scoring.Review{}, fmt.Errorf("attempt %s: %w", attemptID, store.ErrNotFound)
	}
	q, err := s.store.Quizzes().Get(ctx, a.QuizID)
	if err != nil {
		return scoring.Review{}, err
	}
	return scoring.BuildReview(q, a)
}

// AddFeedback attaches teacher feedback to an attempt. Empty text removes it.
func (s *Service) AddFeedback(ctx context.Context, attemptID, text string) error {
	text = strings.TrimSpace(text)
	if len(text) > MaxFeedbackLength {
		return fmt.Errorf("%w: feedback exceeds %d characters", ErrInvalidInput, MaxFeedbackLength)
	}
	return s.store.Attempts().SetFeedback(ctx, attemptID, text)
}
