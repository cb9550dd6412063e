// Package builder validates, imports, exports and drafts quiz definitions.
package builder

import (
	"errors"
	"fmt"
	"strings"

	"github.com/wahaj323/quizengine/internal/quiz"
)

// Mode selects how strict validation is.
type Mode int

const (
	// Draft accepts incomplete quizzes: empty titles, no questions, blank
	// options. Only definitions that cannot be stored are rejected.
	Draft Mode = iota

	// Publish requires a quiz a learner can actually take.
	Publish
)

func (m Mode) String() string {
	if m == Publish {
		return "publish"
	}
	return "draft"
}

// ErrInvalid matches every *ValidationError.
var ErrInvalid = errors.New("invalid quiz")

// ValidationError points the author at the first defect found.
type ValidationError struct {
	// Question is the 1-based question number, or 0 for quiz-level fields.
	Question int

	// Field names the offending field, e.g. "title" or "options[2]".
	Field string

	Message string
}

func (e *ValidationError) Error() string {
	if e.Question == 0 {
		return fmt.Sprintf("%s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("question %d: %s: %s", e.Question, e.Field, e.Message)
}

func (e *ValidationError) Is(target error) bool { return target == ErrInvalid }

// Validate checks q in the given mode and returns the first failure as a
// *ValidationError, or nil.
func Validate(q quiz.Quiz, mode Mode) error {
	if err := validateSettings(q.Settings); err != nil {
		return err
	}

	if mode == Publish {
		if strings.TrimSpace(q.Title) == "" {
			return &ValidationError{Field: "title", Message: "title is required"}
		}
		if len(q.Questions) == 0 {
			return &ValidationError{Field: "questions", Message: "at least one question is required"}
		}
	}

	for i, question := range q.Questions {
		if err := validateQuestion(question, mode); err != nil {
			err.Question = i + 1
			return err
		}
	}
	return nil
}

func validateSettings(s quiz.Settings) error {
	switch {
	case s.TimeLimit < 0:
		return &ValidationError{Field: "settings.time_limit", Message: "must not be negative"}
	case s.PassingScore < 0 || s.PassingScore > 100:
		return &ValidationError{Field: "settings.passing_score", Message: "must be between 0 and 100"}
	case s.MaxAttempts < 0:
		return &ValidationError{Field: "settings.max_attempts", Message: "must not be negative"}
	}
	return nil
}

func validateQuestion(q quiz.Question, mode Mode) *ValidationError {
	if q.Body == nil {
		return &ValidationError{Field: "type", Message: "question type is required"}
	}
	if q.Points < 0 {
		return &ValidationError{Field: "points", Message: "must not be negative"}
	}
	if mode == Draft {
		return nil
	}

	if strings.TrimSpace(q.Text) == "" {
		return &ValidationError{Field: "text", Message: "question text is required"}
	}

	switch b := q.Body.(type) {
	case quiz.MultipleChoice:
		if len(b.Options) == 0 {
			return &ValidationError{Field: "options", Message: "at least one option is required"}
		}
		for j, opt := range b.Options {
			if strings.TrimSpace(opt) == "" {
				return &ValidationError{Field: fmt.Sprintf("options[%d]", j+1), Message: "option text is required"}
			}
		}
		if b.CorrectIndex < 0 || b.CorrectIndex >= len(b.Options) {
			return &ValidationError{Field: "correct_index", Message: "must point at one of the options"}
		}

	case quiz.FillBlank:
		if len(b.Blanks) == 0 {
			return &ValidationError{Field: "blanks", Message: "at least one blank is required"}
		}
		for j, blank := range b.Blanks {
			if strings.TrimSpace(blank) == "" {
				return &ValidationError{Field: fmt.Sprintf("blanks[%d]", j+1), Message: "expected answer is required"}
			}
		}

	case quiz.TrueFalse:
		// A boolean is always populated.

	case quiz.Matching:
		if len(b.Pairs) == 0 {
			return &ValidationError{Field: "pairs", Message: "at least one pair is required"}
		}
		seen := make(map[string]bool, len(b.Pairs))
		for j, p := range b.Pairs {
			field := fmt.Sprintf("pairs[%d]", j+1)
			if strings.TrimSpace(p.Left) == "" || strings.TrimSpace(p.Right) == "" {
				return &ValidationError{Field: field, Message: "both sides of the pair are required"}
			}
			left := strings.TrimSpace(p.Left)
			if seen[left] {
				return &ValidationError{Field: field, Message: fmt.Sprintf("left item %q is used twice", left)}
			}
			seen[left] = true
		}
	}
	return nil
}
