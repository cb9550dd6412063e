package store

import (
	"context"
	"time"

	"github.com/wahaj323/quizengine/internal/quiz"
)

// QuizFilter narrows QuizRepo.List.
type QuizFilter struct {
	CourseID      string
	PublishedOnly bool
}

// QuizRepo stores quiz definitions.
type QuizRepo interface {
	// Save inserts q or replaces the stored definition with the same id.
	Save(ctx context.Context, q quiz.Quiz) error

	// Get returns ErrNotFound for an unknown id.
	Get(ctx context.Context, id string) (quiz.Quiz, error)

	// List returns quizzes ordered by title.
	List(ctx context.Context, f QuizFilter) ([]quiz.Quiz, error)

	SetPublished(ctx context.Context, id string, published bool, at time.Time) error
	Delete(ctx context.Context, id string) error
}

// AttemptRepo stores graded attempts. Attempts are immutable apart from
// their feedback.
type AttemptRepo interface {
	// Create returns ErrConflict when the (quiz, user, number) triple exists.
	Create(ctx context.Context, a quiz.Attempt) error
	Get(ctx context.Context, id string) (quiz.Attempt, error)

	// ForUserQuiz returns one learner's attempts at a quiz by number.
	ForUserQuiz(ctx context.Context, userID, quizID string) ([]quiz.Attempt, error)

	// ForUser returns all of a learner's attempts, most recent first.
	ForUser(ctx context.Context, userID string) ([]quiz.Attempt, error)

	CountForUserQuiz(ctx context.Context, userID, quizID string) (int, error)
	CountForQuiz(ctx context.Context, quizID string) (int, error)
	SetFeedback(ctx context.Context, id, feedback string) error
}

// UnlockRepo stores which quizzes each learner may attempt.
type UnlockRepo interface {
	// Grant is idempotent.
	Grant(ctx context.Context, userID, quizID string, at time.Time) error
	Revoke(ctx context.Context, userID, quizID string) error

	// List returns the unlocked quiz ids of a learner.
	List(ctx context.Context, userID string) ([]string, error)
}

// LLMRequest is one logged LLM call.
type LLMRequest struct {
	ID           int64
	CreatedAt    time.Time
	Provider     string
	Model        string
	Purpose      string
	InputTokens  int
	OutputTokens int
	LatencyMs    int64
	Success      bool
	ErrorMessage string
	RequestBody  string
	ResponseBody string
}

// LLMFilter narrows EventRepo.ListLLMRequests. Limit 0 means no limit.
type LLMFilter struct {
	Limit   int
	Purpose string
}

// LLMUsage aggregates logged calls per purpose and model.
type LLMUsage struct {
	Purpose      string
	Model        string
	Calls        int
	InputTokens  int64
	OutputTokens int64
	LatencyMs    int64
}

// EventRepo is the LLM request log.
type EventRepo interface {
	AppendLLMRequest(ctx context.Context, r LLMRequest) error

	// ListLLMRequests returns the newest requests first.
	ListLLMRequests(ctx context.Context, f LLMFilter) ([]LLMRequest, error)
	GetLLMRequest(ctx context.Context, id int64) (LLMRequest, error)
	LLMUsage(ctx context.Context) ([]LLMUsage, error)
}
