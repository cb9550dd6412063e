package screen

import (
	"context"

	tea "charm.land/bubbletea/v2"

	"github.com/wahaj323/quizengine/internal/history"
	"github.com/wahaj323/quizengine/internal/quiz"
	"github.com/wahaj323/quizengine/internal/scoring"
	"github.com/wahaj323/quizengine/internal/ui/layout"
)

// Screen defines the interface for all application screens.
type Screen interface {
	// Init returns an initial command when the screen is first created.
	Init() tea.Cmd

	// Update handles messages and returns updated screen + command.
	Update(msg tea.Msg) (Screen, tea.Cmd)

	// View renders the screen content (excluding header/footer).
	View(width, height int) string

	// Title returns the screen name for the header.
	Title() string
}

// KeyHintProvider is an optional interface that screens can implement
// to provide custom footer key hints.
type KeyHintProvider interface {
	KeyHints() []layout.KeyHint
}

// StatusProvider is an optional interface for screens that show a status
// on the right of the header, such as a countdown.
type StatusProvider interface {
	Status() string
}

// Backend is the learner's view of the assessment service. Both the local
// service and the HTTP client implement it.
type Backend interface {
	UserID() string
	GetQuiz(ctx context.Context, quizID string) (quiz.View, error)
	ListQuizzes(ctx context.Context, courseID string) ([]quiz.View, error)
	SubmitAttempt(ctx context.Context, quizID string, sub quiz.Submission) (quiz.Attempt, error)
	History(ctx context.Context) ([]quiz.Attempt, error)
	Summary(ctx context.Context, quizID string) (history.Summary, error)
	Review(ctx context.Context, attemptID string) (scoring.Review, error)
}
