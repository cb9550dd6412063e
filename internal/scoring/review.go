package scoring

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/wahaj323/quizengine/internal/quiz"
)

// ErrReviewDisabled is returned when the quiz does not allow reviewing attempts.
var ErrReviewDisabled = errors.New("review is disabled for this quiz")

// ReviewItem describes one question of a reviewed attempt.
type ReviewItem struct {
	Index   int         `json:"index"`
	Kind    quiz.Kind   `json:"type"`
	Text    string      `json:"text"`
	Points  int         `json:"points"`
	Answer  quiz.Answer `json:"answer"`
	Correct bool        `json:"correct"`

	// Options lists the choices of a multiple-choice question.
	Options []string `json:"options,omitempty"`

	// BlankMatches is set for fill-in-the-blank questions.
	BlankMatches []bool `json:"blank_matches,omitempty"`

	// Expected and Explanation are only filled when the quiz shows correct answers.
	Expected    quiz.Response `json:"expected,omitempty"`
	Explanation string        `json:"explanation,omitempty"`
}

// UnmarshalJSON binds Expected to the response type of the item's question.
func (it *ReviewItem) UnmarshalJSON(data []byte) error {
	type plain ReviewItem
	var w struct {
		plain
		Expected json.RawMessage `json:"expected,omitempty"`
	}
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	*it = ReviewItem(w.plain)
	it.Expected = nil
	if len(w.Expected) == 0 {
		return nil
	}
	r, err := quiz.DecodeResponse(it.Kind, w.Expected)
	if err != nil {
		return fmt.Errorf("review item %d: %w", it.Index, err)
	}
	it.Expected = r
	return nil
}

// Review is an attempt laid out question by question.
type Review struct {
	AttemptID          string       `json:"attempt_id"`
	QuizID             string       `json:"quiz_id"`
	Score              int          `json:"score"`
	Passed             bool         `json:"passed"`
	ShowCorrectAnswers bool         `json:"show_correct_answers"`
	Items              []ReviewItem `json:"items"`
}

// BuildReview pairs every question of q with the graded answer stored on a.
func BuildReview(q quiz.Quiz, a quiz.Attempt) (Review, error) {
	if !q.Settings.AllowReview {
		return Review{}, ErrReviewDisabled
	}

	show := q.Settings.ShowCorrectAnswers
	rv := Review{
		AttemptID:          a.ID,
		QuizID:             q.ID,
		Score:              a.Score,
		Passed:             a.Passed,
		ShowCorrectAnswers: show,
		Items:              make([]ReviewItem, len(q.Questions)),
	}

	for i, question := range q.Questions {
		item := ReviewItem{
			Index:  i,
			Kind:   question.Kind(),
			Text:   question.Text,
			Points: question.Weight(),
			Answer: quiz.Answer{Index: i},
		}
		if i < len(a.Answers) {
			item.Answer = a.Answers[i]
		}
		if i < len(a.Correct) {
			item.Correct = a.Correct[i]
		}
		if mc, ok := question.Body.(quiz.MultipleChoice); ok {
			item.Options = mc.Options
		}
		if question.Kind() == quiz.KindFillBlank {
			item.BlankMatches = quiz.BlankMatches(question, item.Answer.Response)
		}
		if show {
			item.Expected = Expected(question)
			item.Explanation = question.Explanation
		}
		rv.Items[i] = item
	}
	return rv, nil
}

// Expected returns the answer key of q as a response value.
func Expected(q quiz.Question) quiz.Response {
	switch b := q.Body.(type) {
	case quiz.MultipleChoice:
		return quiz.Choice(b.CorrectIndex)
	case quiz.FillBlank:
		return quiz.Blanks(b.Blanks)
	case quiz.TrueFalse:
		return quiz.Verdict(b.Answer)
	case quiz.Matching:
		return quiz.Pairings(b.Pairs)
	}
	return nil
}

// Format renders r the way FormatResponse does for the item's question.
func (it ReviewItem) Format(r quiz.Response) string {
	q := quiz.Question{Text: it.Text}
	if it.Kind == quiz.KindMCQ {
		q.Body = quiz.MultipleChoice{Options: it.Options, CorrectIndex: -1}
	}
	return FormatResponse(q, r)
}

// FormatResponse renders r for display next to question q.
func FormatResponse(q quiz.Question, r quiz.Response) string {
	switch v := r.(type) {
	case nil:
		return "(no answer)"
	case quiz.Choice:
		if b, ok := q.Body.(quiz.MultipleChoice); ok && int(v) >= 0 && int(v) < len(b.Options) {
			return fmt.Sprintf("%c) %s", 'A'+rune(v), b.Options[v])
		}
		return fmt.Sprintf("option %d", int(v)+1)
	case quiz.Blanks:
		return strings.Join(v, ", ")
	case quiz.Verdict:
		if v {
			return "True"
		}
		return "False"
	case quiz.Pairings:
		parts := make([]string, len(v))
		for i, p := range v {
			parts[i] = p.Left + " → " + p.Right
		}
		return strings.Join(parts, "; ")
	case quiz.Malformed:
		return "(unreadable answer)"
	}
	return "?"
}
