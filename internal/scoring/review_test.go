package scoring

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wahaj323/quizengine/internal/quiz"
)

func reviewQuiz() quiz.Quiz {
	q := quiz.Quiz{ID: "rq", Settings: quiz.DefaultSettings()}
	q.SetQuestions([]quiz.Question{
		{Text: "Dog?", Explanation: "Hund", Body: quiz.MultipleChoice{Options: []string{"Katze", "Hund"}, CorrectIndex: 1}},
		{Text: "der ___ / die ___", Body: quiz.FillBlank{Blanks: []string{"Hund", "Katze"}}},
	})
	return q
}

func TestBuildReview(t *testing.T) {
	q := reviewQuiz()
	answers := []quiz.Answer{
		{Index: 0, Response: quiz.Choice(0)},
		{Index: 1, Response: quiz.Blanks{"hund", "Maus"}},
	}
	var a quiz.Attempt
	a.ID = "a1"
	Grade(q, answers, 12).Apply(&a)

	rv, err := BuildReview(q, a)
	require.NoError(t, err)
	require.Len(t, rv.Items, 2)

	assert.Equal(t, "a1", rv.AttemptID)
	assert.False(t, rv.Items[0].Correct)
	assert.Equal(t, quiz.Choice(1), rv.Items[0].Expected)
	assert.Equal(t, "Hund", rv.Items[0].Explanation)
	assert.Equal(t, []bool{true, false}, rv.Items[1].BlankMatches)
	assert.Equal(t, []string{"Katze", "Hund"}, rv.Items[0].Options)
	assert.Equal(t, "B) Hund", rv.Items[0].Format(rv.Items[0].Expected))
	assert.Equal(t, "A) Katze", rv.Items[0].Format(rv.Items[0].Answer.Response))
	assert.Equal(t, "Hund, Katze", rv.Items[1].Format(rv.Items[1].Expected))
}

func TestReviewItem_DecodesExpectedByKind(t *testing.T) {
	q := reviewQuiz()
	answers := []quiz.Answer{{Index: 0, Response: quiz.Choice(1)}}
	var a quiz.Attempt
	Grade(q, answers, 5).Apply(&a)
	rv, err := BuildReview(q, a)
	require.NoError(t, err)

	data, err := json.Marshal(rv)
	require.NoError(t, err)

	var got Review
	require.NoError(t, json.Unmarshal(data, &got))
	require.Len(t, got.Items, 2)
	assert.Equal(t, quiz.Choice(1), got.Items[0].Expected)
	assert.Equal(t, quiz.Blanks{"Hund", "Katze"}, got.Items[1].Expected)
	assert.Equal(t, quiz.Choice(1), got.Items[0].Answer.Response)
	assert.True(t, got.Items[0].Correct)

	var bad ReviewItem
	assert.Error(t, json.Unmarshal([]byte(`{"index":0,"type":"mcq","expected":"B"}`), &bad))
}

func TestBuildReview_HidesKeyWhenConfigured(t *testing.T) {
	q := reviewQuiz()
	q.Settings.ShowCorrectAnswers = false

	var a quiz.Attempt
	Grade(q, nil, 0).Apply(&a)

	rv, err := BuildReview(q, a)
	require.NoError(t, err)
	for _, item := range rv.Items {
		assert.Nil(t, item.Expected)
		assert.Empty(t, item.Explanation)
	}
}

func TestBuildReview_Disabled(t *testing.T) {
	q := reviewQuiz()
	q.Settings.AllowReview = false

	_, err := BuildReview(q, quiz.Attempt{})
	assert.ErrorIs(t, err, ErrReviewDisabled)
}

func TestFormatResponse(t *testing.T) {
	q := reviewQuiz()
	assert.Equal(t, "B) Hund", FormatResponse(q.Questions[0], quiz.Choice(1)))
	assert.Equal(t, "option 8", FormatResponse(q.Questions[0], quiz.Choice(7)))
	assert.Equal(t, "(no answer)", FormatResponse(q.Questions[0], nil))
	assert.Equal(t, "True", FormatResponse(q.Questions[0], quiz.Verdict(true)))
	assert.Equal(t, "a → b", FormatResponse(q.Questions[0], quiz.Pairings{{Left: "a", Right: "b"}}))
}

func TestBuildReview_StoredMalformedAnswerStaysUnreadable(t *testing.T) {
	q := reviewQuiz()
	data, err := json.Marshal([]quiz.Answer{{Index: 0, Response: quiz.Malformed{Raw: json.RawMessage(`"x"`)}}})
	require.NoError(t, err)
	var stored []quiz.Answer
	require.NoError(t, json.Unmarshal(data, &stored))

	a := quiz.Attempt{Answers: stored, Correct: make([]bool, len(q.Questions))}
	r, err := BuildReview(q, a)
	require.NoError(t, err)
	assert.Equal(t, "(unreadable answer)", r.Items[0].Format(r.Items[0].Answer.Response))
}
