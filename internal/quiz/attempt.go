package quiz

import "time"

// Attempt is one graded submission of a quiz by a learner. Only Feedback may
// change after it is stored.
type Attempt struct {
	ID     string `json:"id"`
	QuizID string `json:"quiz_id"`
	UserID string `json:"user_id"`

	// Number is the 1-based ordinal of this attempt for the learner and quiz.
	Number int `json:"number"`

	Answers      []Answer `json:"answers"`
	Correct      []bool   `json:"correct"`
	Score        int      `json:"score"`
	EarnedPoints int      `json:"earned_points"`
	TotalPoints  int      `json:"total_points"`
	Passed       bool     `json:"passed"`

	// TimeSpent is in seconds.
	TimeSpent int `json:"time_spent"`

	StartedAt   time.Time `json:"started_at"`
	SubmittedAt time.Time `json:"submitted_at"`
	Feedback    string    `json:"feedback,omitempty"`
}

// Elapsed returns TimeSpent as a duration.
func (a Attempt) Elapsed() time.Duration {
	return time.Duration(a.TimeSpent) * time.Second
}

// Submission is what a client sends when it finishes an attempt.
type Submission struct {
	Answers     []Answer  `json:"answers"`
	StartedAt   time.Time `json:"started_at"`
	SubmittedAt time.Time `json:"submitted_at"`
}
