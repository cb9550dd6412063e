package builder

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wahaj323/quizengine/internal/llm"
	"github.com/wahaj323/quizengine/internal/quiz"
)

const draftJSON = `{
  "title": "Tiere",
  "description": "Animal names in German.",
  "questions": [
    {"type": "mcq", "text": "Dog?", "explanation": "Der Hund.", "options": ["Katze", "Hund", "Maus"], "correct_index": 1, "blanks": [], "answer": false, "pairs": []},
    {"type": "fill_blank", "text": "Die ___ miaut.", "explanation": "", "options": [], "correct_index": 0, "blanks": ["Katze"], "answer": false, "pairs": []},
    {"type": "true_false", "text": "Maus means mouse.", "explanation": "", "options": [], "correct_index": 0, "blanks": [], "answer": true, "pairs": []},
    {"type": "matching", "text": "Match.", "explanation": "", "options": [], "correct_index": 0, "blanks": [], "answer": false, "pairs": [{"left": "Hund", "right": "dog"}, {"left": "Katze", "right": "cat"}]}
  ]
}`

func TestDraft(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Content: json.RawMessage(draftJSON)})
	d := NewDrafter(mock, DefaultDraftConfig())

	q, err := d.Draft(context.Background(), DraftInput{Topic: "animals", Count: 4, Level: "A1"})
	require.NoError(t, err)

	assert.Equal(t, "Tiere", q.Title)
	assert.False(t, q.Published)
	assert.Empty(t, q.ID)
	assert.Equal(t, quiz.DefaultSettings(), q.Settings)
	assert.Equal(t, 4, q.QuestionCount)
	assert.Equal(t, 4, q.TotalPoints)
	assert.Equal(t, quiz.MultipleChoice{Options: []string{"Katze", "Hund", "Maus"}, CorrectIndex: 1}, q.Questions[0].Body)
	assert.Equal(t, quiz.FillBlank{Blanks: []string{"Katze"}}, q.Questions[1].Body)
	assert.Equal(t, quiz.TrueFalse{Answer: true}, q.Questions[2].Body)
	assert.Equal(t, 3, q.Questions[3].Order)

	require.Len(t, mock.Calls, 1)
	req := mock.Calls[0]
	assert.Same(t, DraftSchema, req.Schema)
	assert.Contains(t, req.Messages[0].Content, "Topic: animals")
	assert.Contains(t, req.Messages[0].Content, "Level: A1")
	assert.Contains(t, req.Messages[0].Content, "Allowed types: mcq, fill_blank, true_false, matching")
}

func TestDraftRestrictsKinds(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Content: json.RawMessage(draftJSON)})
	d := NewDrafter(mock, DefaultDraftConfig())

	_, err := d.Draft(context.Background(), DraftInput{Topic: "animals", Count: 4, Kinds: []quiz.Kind{quiz.KindMCQ}})
	require.ErrorIs(t, err, ErrDraft)
	assert.Contains(t, err.Error(), "question 2")
	assert.True(t, strings.Contains(mock.Calls[0].Messages[0].Content, "Allowed types: mcq\n"))
}

func TestDraftRejectsInput(t *testing.T) {
	tests := []struct {
		name string
		in   DraftInput
	}{
		{"no topic", DraftInput{Topic: "  ", Count: 3}},
		{"zero count", DraftInput{Topic: "x", Count: 0}},
		{"too many", DraftInput{Topic: "x", Count: MaxDraftQuestions + 1}},
		{"unknown kind", DraftInput{Topic: "x", Count: 3, Kinds: []quiz.Kind{"essay"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := llm.NewMockProvider()
			_, err := NewDrafter(mock, DefaultDraftConfig()).Draft(context.Background(), tt.in)
			assert.ErrorIs(t, err, ErrDraft)
			assert.Zero(t, mock.CallCount())
		})
	}
}

func TestDraftBadOutput(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    error
	}{
		{"unknown type", `{"title":"t","description":"","questions":[{"type":"essay","text":"x"}]}`, ErrDraft},
		{"incomplete but draft-safe", `{"title":"t","description":"","questions":[{"type":"mcq","text":"x","options":["a"],"correct_index":0}]}`, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := llm.NewMockProvider(llm.MockResponse{Content: json.RawMessage(tt.content)})
			_, err := NewDrafter(mock, DefaultDraftConfig()).Draft(context.Background(), DraftInput{Topic: "x", Count: 1})
			if tt.want != nil {
				assert.ErrorIs(t, err, tt.want)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestDraftProviderError(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Err: &llm.ErrRateLimit{}})
	_, err := NewDrafter(mock, DefaultDraftConfig()).Draft(context.Background(), DraftInput{Topic: "x", Count: 1})
	require.Error(t, err)

	var rl *llm.ErrRateLimit
	assert.True(t, errors.As(err, &rl))
}
