package assessment

import (
	"context"

	"github.com/wahaj323/quizengine/internal/history"
	"github.com/wahaj323/quizengine/internal/quiz"
	"github.com/wahaj323/quizengine/internal/scoring"
)

// Learner binds the service to one user. It satisfies session.Backend so a
// local TUI session talks to the same authoritative code as the HTTP API.
type Learner struct {
	svc    *Service
	userID string
}

// For returns the service as seen by userID.
func (s *Service) For(userID string) *Learner {
	return &Learner{svc: s, userID: userID}
}

// UserID returns the bound user.
func (l *Learner) UserID() string { return l.userID }

func (l *Learner) GetQuiz(ctx context.Context, quizID string) (quiz.View, error) {
	return l.svc.GetQuiz(ctx, l.userID, quizID)
}

func (l *Learner) ListQuizzes(ctx context.Context, courseID string) ([]quiz.View, error) {
	return l.svc.ListQuizzes(ctx, l.userID, courseID)
}

func (l *Learner) SubmitAttempt(ctx context.Context, quizID string, sub quiz.Submission) (quiz.Attempt, error) {
	return l.svc.SubmitAttempt(ctx, l.userID, quizID, sub)
}

func (l *Learner) History(ctx context.Context) ([]quiz.Attempt, error) {
	return l.svc.History(ctx, l.userID)
}

func (l *Learner) Summary(ctx context.Context, quizID string) (history.Summary, error) {
	return l.svc.Summary(ctx, l.userID, quizID)
}

func (l *Learner) Review(ctx context.Context, attemptID string) (scoring.Review, error) {
	return l.svc.Review(ctx, l.userID, attemptID)
}
