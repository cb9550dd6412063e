// Package history aggregates a learner's attempts for dashboards and reviews.
package history

import (
	"cmp"
	"slices"

	"github.com/wahaj323/quizengine/internal/quiz"
)

// Grade is a letter grade.
type Grade string

const (
	GradeA Grade = "A"
	GradeB Grade = "B"
	GradeC Grade = "C"
	GradeD Grade = "D"
	GradeF Grade = "F"
)

// LetterGrade maps a percentage to its band. Each band includes its lower edge.
func LetterGrade(score int) Grade {
	switch {
	case score >= 90:
		return GradeA
	case score >= 80:
		return GradeB
	case score >= 70:
		return GradeC
	case score >= 60:
		return GradeD
	}
	return GradeF
}

// Summary aggregates a list of attempts.
type Summary struct {
	Attempts int `json:"attempts"`
	Passed   int `json:"passed"`
	Failed   int `json:"failed"`

	// HasData is false for an empty list. Best and Average are zero then
	// and must not be shown as scores.
	HasData bool `json:"has_data"`
	Best    int  `json:"best,omitempty"`
	Average int  `json:"average,omitempty"`

	Latest *quiz.Attempt `json:"latest,omitempty"`
}

// Summarize computes best and rounded average score plus pass/fail counts.
func Summarize(attempts []quiz.Attempt) Summary {
	s := Summary{Attempts: len(attempts)}
	if len(attempts) == 0 {
		return s
	}

	s.HasData = true
	s.Best = attempts[0].Score
	sum := 0
	for i := range attempts {
		a := &attempts[i]
		sum += a.Score
		s.Best = max(s.Best, a.Score)
		if a.Passed {
			s.Passed++
		} else {
			s.Failed++
		}
		if s.Latest == nil || newer(*a, *s.Latest) {
			latest := *a
			s.Latest = &latest
		}
	}
	s.Average = roundedMean(sum, len(attempts))
	return s
}

// BestScore returns the best score, or false when there is no data.
func (s Summary) BestScore() (int, bool) {
	return s.Best, s.HasData
}

// AverageScore returns the rounded mean score, or false when there is no data.
func (s Summary) AverageScore() (int, bool) {
	return s.Average, s.HasData
}

// BestGrade returns the letter grade of the best score, or false when there
// is no data.
func (s Summary) BestGrade() (Grade, bool) {
	if !s.HasData {
		return "", false
	}
	return LetterGrade(s.Best), true
}

// ByQuiz summarizes attempts per quiz id.
func ByQuiz(attempts []quiz.Attempt) map[string]Summary {
	grouped := make(map[string][]quiz.Attempt)
	for _, a := range attempts {
		grouped[a.QuizID] = append(grouped[a.QuizID], a)
	}
	out := make(map[string]Summary, len(grouped))
	for id, list := range grouped {
		out[id] = Summarize(list)
	}
	return out
}

// SortRecent orders attempts most recent first: by submission time, then by
// attempt number.
func SortRecent(attempts []quiz.Attempt) {
	slices.SortStableFunc(attempts, func(a, b quiz.Attempt) int {
		if c := b.SubmittedAt.Compare(a.SubmittedAt); c != 0 {
			return c
		}
		return cmp.Compare(b.Number, a.Number)
	})
}

func newer(a, b quiz.Attempt) bool {
	if !a.SubmittedAt.Equal(b.SubmittedAt) {
		return a.SubmittedAt.After(b.SubmittedAt)
	}
	return a.Number > b.Number
}

// roundedMean divides half-up in integer arithmetic. Scores are never negative.
func roundedMean(sum, n int) int {
	return (2*sum + n) / (2 * n)
}
