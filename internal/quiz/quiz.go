package quiz

import (
	"hash/fnv"
	"math/rand/v2"
	"slices"
	"time"
)

// Settings controls how a quiz is taken and graded.
type Settings struct {
	// TimeLimit is the attempt duration in minutes. 0 means untimed.
	TimeLimit int `json:"time_limit"`

	// PassingScore is the minimum percentage (0-100) for a pass.
	PassingScore int `json:"passing_score"`

	// MaxAttempts caps attempts per learner. 0 means unlimited.
	MaxAttempts int `json:"max_attempts"`

	ShowCorrectAnswers bool `json:"show_correct_answers"`
	ShuffleQuestions   bool `json:"shuffle_questions"`
	ShuffleOptions     bool `json:"shuffle_options"`
	AllowReview        bool `json:"allow_review"`
}

// DefaultSettings returns the settings a new quiz starts with.
func DefaultSettings() Settings {
	return Settings{
		PassingScore:       70,
		ShowCorrectAnswers: true,
		AllowReview:        true,
	}
}

// Timed reports whether attempts run against a countdown.
func (s Settings) Timed() bool {
	return s.TimeLimit > 0
}

// Duration returns the time limit as a duration, or 0 when untimed.
func (s Settings) Duration() time.Duration {
	if s.TimeLimit <= 0 {
		return 0
	}
	return time.Duration(s.TimeLimit) * time.Minute
}

// Unlimited reports whether learners may attempt the quiz any number of times.
func (s Settings) Unlimited() bool {
	return s.MaxAttempts <= 0
}

// Quiz is an ordered list of questions with its settings.
type Quiz struct {
	ID          string     `json:"id"`
	CourseID    string     `json:"course_id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Questions   []Question `json:"questions"`
	Settings    Settings   `json:"settings"`
	Published   bool       `json:"published"`

	// QuestionCount and TotalPoints are derived. Recompute refreshes them.
	QuestionCount int `json:"question_count"`
	TotalPoints   int `json:"total_points"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Recompute renumbers questions and refreshes the derived aggregates.
func (q *Quiz) Recompute() {
	total := 0
	for i := range q.Questions {
		q.Questions[i].Order = i
		if q.Questions[i].Points < 1 {
			q.Questions[i].Points = 1
		}
		total += q.Questions[i].Weight()
	}
	q.QuestionCount = len(q.Questions)
	q.TotalPoints = total
}

// SetQuestions replaces the question list and recomputes the aggregates.
func (q *Quiz) SetQuestions(questions []Question) {
	q.Questions = questions
	q.Recompute()
}

// Redacted reports whether any question had its answer key removed.
func (q Quiz) Redacted() bool {
	for _, qs := range q.Questions {
		if qs.redacted {
			return true
		}
	}
	return false
}

// ForLearner returns a copy of q without answer keys. Fill-in-the-blank
// questions keep their blank count, matching questions keep their items but
// no right item stays next to its left item.
func (q Quiz) ForLearner() Quiz {
	out := q
	out.Questions = make([]Question, len(q.Questions))
	for i, qs := range q.Questions {
		qs.redacted = true
		switch b := qs.Body.(type) {
		case MultipleChoice:
			qs.Body = MultipleChoice{Options: slices.Clone(b.Options), CorrectIndex: -1}
		case FillBlank:
			qs.Body = FillBlank{Blanks: make([]string, len(b.Blanks)), CaseSensitive: b.CaseSensitive}
		case TrueFalse:
			qs.Body = TrueFalse{}
		case Matching:
			rights := derange(b.Rights(), q.ID, i)
			pairs := make([]Pair, len(b.Pairs))
			for j, p := range b.Pairs {
				pairs[j] = Pair{Left: p.Left, Right: rights[j]}
			}
			qs.Body = Matching{Pairs: pairs}
		}
		qs.Explanation = ""
		out.Questions[i] = qs
	}
	return out
}

// derange shuffles items so that none keeps its position. The order is
// stable for a given quiz and question.
func derange(items []string, quizID string, question int) []string {
	h := fnv.New64a()
	h.Write([]byte(quizID))
	rng := rand.New(rand.NewPCG(h.Sum64(), uint64(question)))
	out := slices.Clone(items)
	// Sattolo's shuffle yields a single cycle, so every item moves.
	for i := len(out) - 1; i > 0; i-- {
		j := rng.IntN(i)
		out[i], out[j] = out[j], out[i]
	}
	return out
}

// View is a quiz as seen by one learner, with the access decision attached.
type View struct {
	Quiz

	// CanAttempt is the server's decision for this learner.
	CanAttempt bool `json:"can_attempt"`

	// Reason explains a denial. Empty when CanAttempt is true.
	Reason string `json:"reason,omitempty"`

	AttemptsUsed int `json:"attempts_used"`

	// AttemptsRemaining is -1 when attempts are unlimited.
	AttemptsRemaining int `json:"attempts_remaining"`
}
