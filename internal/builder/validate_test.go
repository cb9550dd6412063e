package builder

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wahaj323/quizengine/internal/quiz"
)

func validQuiz() quiz.Quiz {
	q := quiz.Quiz{
		Title:    "German basics",
		Settings: quiz.DefaultSettings(),
	}
	q.SetQuestions([]quiz.Question{
		{Text: "Dog?", Body: quiz.MultipleChoice{Options: []string{"Katze", "Hund"}, CorrectIndex: 1}},
		{Text: "House is ___", Body: quiz.FillBlank{Blanks: []string{"Haus"}}},
		{Text: "Berlin is in Germany", Body: quiz.TrueFalse{Answer: true}},
		{Text: "Match", Body: quiz.Matching{Pairs: []quiz.Pair{{Left: "eins", Right: "one"}, {Left: "zwei", Right: "two"}}}},
	})
	return q
}

func TestValidate_Valid(t *testing.T) {
	q := validQuiz()
	assert.NoError(t, Validate(q, Publish))
	assert.NoError(t, Validate(q, Draft))
}

func TestValidate_Publish(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(q *quiz.Quiz)
		question int
		field    string
	}{
		{"missing title", func(q *quiz.Quiz) { q.Title = "  " }, 0, "title"},
		{"no questions", func(q *quiz.Quiz) { q.Questions = nil }, 0, "questions"},
		{"blank text", func(q *quiz.Quiz) { q.Questions[2].Text = "" }, 3, "text"},
		{"no options", func(q *quiz.Quiz) {
			q.Questions[0].Body = quiz.MultipleChoice{CorrectIndex: 0}
		}, 1, "options"},
		{"blank option", func(q *quiz.Quiz) {
			q.Questions[0].Body = quiz.MultipleChoice{Options: []string{"a", " "}, CorrectIndex: 0}
		}, 1, "options[2]"},
		{"correct index out of range", func(q *quiz.Quiz) {
			q.Questions[0].Body = quiz.MultipleChoice{Options: []string{"a", "b"}, CorrectIndex: 2}
		}, 1, "correct_index"},
		{"no blanks", func(q *quiz.Quiz) { q.Questions[1].Body = quiz.FillBlank{} }, 2, "blanks"},
		{"empty blank", func(q *quiz.Quiz) {
			q.Questions[1].Body = quiz.FillBlank{Blanks: []string{"a", ""}}
		}, 2, "blanks[2]"},
		{"no pairs", func(q *quiz.Quiz) { q.Questions[3].Body = quiz.Matching{} }, 4, "pairs"},
		{"half pair", func(q *quiz.Quiz) {
			q.Questions[3].Body = quiz.Matching{Pairs: []quiz.Pair{{Left: "a", Right: ""}}}
		}, 4, "pairs[1]"},
		{"duplicate left", func(q *quiz.Quiz) {
			q.Questions[3].Body = quiz.Matching{Pairs: []quiz.Pair{{Left: "a", Right: "1"}, {Left: " a", Right: "2"}}}
		}, 4, "pairs[2]"},
		{"passing score", func(q *quiz.Quiz) { q.Settings.PassingScore = 101 }, 0, "settings.passing_score"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := validQuiz()
			tt.mutate(&q)

			err := Validate(q, Publish)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalid))

			var ve *ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tt.question, ve.Question)
			assert.Equal(t, tt.field, ve.Field)
		})
	}
}

func TestValidate_DraftIsLenient(t *testing.T) {
	q := quiz.Quiz{Settings: quiz.DefaultSettings()}
	q.Questions = []quiz.Question{
		{Body: quiz.MultipleChoice{Options: []string{"", ""}}},
		{Body: quiz.Matching{Pairs: []quiz.Pair{{}, {}}}},
	}
	assert.NoError(t, Validate(q, Draft))

	err := Validate(q, Publish)
	require.Error(t, err)
}

func TestValidate_DraftRejectsBrokenDefinitions(t *testing.T) {
	q := quiz.Quiz{Settings: quiz.DefaultSettings()}
	q.Questions = []quiz.Question{{Text: "ok", Body: quiz.TrueFalse{}}, {Text: "no body"}}
	var ve *ValidationError
	require.ErrorAs(t, Validate(q, Draft), &ve)
	assert.Equal(t, 2, ve.Question)
	assert.Equal(t, "type", ve.Field)

	q.Questions = []quiz.Question{{Body: quiz.TrueFalse{}, Points: -2}}
	require.ErrorAs(t, Validate(q, Draft), &ve)
	assert.Equal(t, "points", ve.Field)

	q.Questions = nil
	q.Settings.MaxAttempts = -1
	require.ErrorAs(t, Validate(q, Draft), &ve)
	assert.Equal(t, "settings.max_attempts", ve.Field)
}

func TestValidationError_Message(t *testing.T) {
	assert.Equal(t, "question 3: options[2]: option text is required",
		(&ValidationError{Question: 3, Field: "options[2]", Message: "option text is required"}).Error())
	assert.Equal(t, "title: title is required",
		(&ValidationError{Field: "title", Message: "title is required"}).Error())
}
