// Package scoring grades submitted answers against a quiz definition.
package scoring

import "github.com/wahaj323/quizengine/internal/quiz"

// Result is the outcome of grading one submission.
type Result struct {
	// Correct holds one entry per question, in quiz order.
	Correct []bool `json:"correct"`

	EarnedPoints int  `json:"earned_points"`
	TotalPoints  int  `json:"total_points"`
	Score        int  `json:"score"`
	Passed       bool `json:"passed"`

	// TimeSpent is in seconds.
	TimeSpent int `json:"time_spent"`

	// Answers echoes the submission, one entry per question.
	Answers []quiz.Answer `json:"answers"`
}

// Grade scores answers against q. It is pure: the same inputs always yield
// the same Result. Answers are matched to questions by Index; when an index
// repeats, the last answer wins. Unanswered and malformed answers earn no
// points, and a quiz without questions scores 0.
func Grade(q quiz.Quiz, answers []quiz.Answer, timeSpent int) Result {
	byIndex := make(map[int]quiz.Answer, len(answers))
	for _, a := range answers {
		byIndex[a.Index] = a
	}

	res := Result{
		Correct:   make([]bool, len(q.Questions)),
		Answers:   make([]quiz.Answer, len(q.Questions)),
		TimeSpent: max(timeSpent, 0),
	}

	for i, question := range q.Questions {
		a, ok := byIndex[i]
		if !ok {
			a = quiz.Answer{Index: i}
		}
		res.Answers[i] = a

		w := question.Weight()
		res.TotalPoints += w
		if quiz.IsCorrect(question, a.Response) {
			res.Correct[i] = true
			res.EarnedPoints += w
		}
	}

	res.Score = Percentage(res.EarnedPoints, res.TotalPoints)
	res.Passed = res.TotalPoints > 0 && res.Score >= q.Settings.PassingScore
	return res
}

// Percentage returns earned/total as a whole percentage rounded half up.
// A zero total yields 0.
func Percentage(earned, total int) int {
	if total <= 0 || earned <= 0 {
		return 0
	}
	if earned > total {
		earned = total
	}
	return (earned*200 + total) / (total * 2)
}

// Apply copies the graded fields of r onto a.
func (r Result) Apply(a *quiz.Attempt) {
	a.Answers = r.Answers
	a.Correct = r.Correct
	a.Score = r.Score
	a.EarnedPoints = r.EarnedPoints
	a.TotalPoints = r.TotalPoints
	a.Passed = r.Passed
	a.TimeSpent = r.TimeSpent
}
