package quiz

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleQuiz() Quiz {
	q := Quiz{
		ID:       "q1",
		Title:    "German basics",
		Settings: DefaultSettings(),
	}
	q.SetQuestions([]Question{
		{Text: "Dog?", Points: 2, Explanation: "Hund is dog", Body: MultipleChoice{Options: []string{"Katze", "Hund"}, CorrectIndex: 1}},
		{Text: "House: ___", Body: FillBlank{Blanks: []string{"Haus"}}},
		{Text: "Berlin is the capital", Body: TrueFalse{Answer: true}},
		{Text: "Match", Body: Matching{Pairs: []Pair{{"eins", "one"}, {"zwei", "two"}}}},
	})
	return q
}

func TestRecompute(t *testing.T) {
	q := sampleQuiz()
	assert.Equal(t, 4, q.QuestionCount)
	assert.Equal(t, 5, q.TotalPoints)
	for i, qs := range q.Questions {
		assert.Equal(t, i, qs.Order)
	}
}

func TestQuestionJSON_PreservesVariants(t *testing.T) {
	in := sampleQuiz()
	data, err := json.Marshal(in)
	require.NoError(t, err)

	var out Quiz
	require.NoError(t, json.Unmarshal(data, &out))
	require.Len(t, out.Questions, 4)

	for i := range in.Questions {
		assert.Equal(t, in.Questions[i].Body, out.Questions[i].Body, "question %d", i)
		assert.Equal(t, in.Questions[i].Points, out.Questions[i].Points)
	}
}

func TestQuestionJSON_DefaultsPoints(t *testing.T) {
	var q Question
	require.NoError(t, json.Unmarshal([]byte(`{"type":"true_false","text":"x","answer":false}`), &q))
	assert.Equal(t, 1, q.Points)
	assert.Equal(t, TrueFalse{Answer: false}, q.Body)
}

func TestQuestionJSON_UnknownType(t *testing.T) {
	var q Question
	err := json.Unmarshal([]byte(`{"type":"essay","text":"x"}`), &q)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "essay")
}

func TestForLearner_HidesAnswerKeys(t *testing.T) {
	learner := sampleQuiz().ForLearner()
	require.True(t, learner.Redacted())

	data, err := json.Marshal(learner)
	require.NoError(t, err)
	body := string(data)

	assert.NotContains(t, body, "correct_index")
	assert.NotContains(t, body, `"answer"`)
	assert.NotContains(t, body, "Haus")
	assert.NotContains(t, body, "Hund is dog")

	fb := learner.Questions[1].Body.(FillBlank)
	assert.Len(t, fb.Blanks, 1, "blank count survives redaction")

	m := learner.Questions[3].Body.(Matching)
	assert.ElementsMatch(t, []string{"one", "two"}, m.Rights())
	assert.Equal(t, []string{"eins", "zwei"}, m.Lefts())

	// The source quiz is untouched.
	orig := sampleQuiz()
	assert.Equal(t, 1, orig.Questions[0].Body.(MultipleChoice).CorrectIndex)
}

func TestAnswerJSON(t *testing.T) {
	answers := []Answer{
		{Index: 0, Response: Choice(1)},
		{Index: 1, Response: Blanks{"Haus"}},
		{Index: 2},
		{Index: 3, Response: Pairings{{"eins", "one"}}},
	}
	data, err := json.Marshal(answers)
	require.NoError(t, err)

	var out []Answer
	require.NoError(t, json.Unmarshal(data, &out))
	assert.Equal(t, answers, out)
	assert.False(t, out[2].Answered())
}

func TestBindAnswers(t *testing.T) {
	q := sampleQuiz()
	var answers []Answer
	require.NoError(t, json.Unmarshal([]byte(`[
		{"index":0,"answer":1},
		{"index":1,"answer":"haus"},
		{"index":2,"answer":"yes"},
		{"index":3,"answer":{"eins":"one","zwei":"two"}},
		{"index":9,"answer":1}
	]`), &answers))

	bound := BindAnswers(q, answers)
	require.Len(t, bound, 4, "out-of-range index is dropped")

	assert.Equal(t, Choice(1), bound[0].Response)
	assert.Equal(t, Blanks{"haus"}, bound[1].Response)
	assert.IsType(t, Malformed{}, bound[2].Response)
	assert.True(t, IsCorrect(q.Questions[3], bound[3].Response))
}

func TestBindAnswers_TypeMismatch(t *testing.T) {
	q := sampleQuiz()
	bound := BindAnswers(q, []Answer{{Index: 0, Response: Verdict(true)}})
	require.Len(t, bound, 1)
	assert.IsType(t, Malformed{}, bound[0].Response)
	assert.False(t, IsCorrect(q.Questions[0], bound[0].Response))
}

func TestAnswerJSON_DeclaredTypeMismatchIsMalformed(t *testing.T) {
	var a Answer
	require.NoError(t, json.Unmarshal([]byte(`{"index":0,"type":"mcq","answer":"b"}`), &a))
	assert.IsType(t, Malformed{}, a.Response)
}

func TestAnswerJSON_MalformedSurvivesRoundTrip(t *testing.T) {
	in := Answer{Index: 0, Response: Malformed{Raw: json.RawMessage(`"x"`)}}
	data, err := json.Marshal(in)
	require.NoError(t, err)
	assert.JSONEq(t, `{"index":0,"type":"malformed","answer":"x"}`, string(data))

	var out Answer
	require.NoError(t, json.Unmarshal(data, &out))
	require.IsType(t, Malformed{}, out.Response)
	assert.JSONEq(t, `"x"`, string(out.Response.(Malformed).Raw))
	assert.True(t, out.Answered())

	bound := BindAnswers(sampleQuiz(), []Answer{out})
	require.Len(t, bound, 1)
	assert.IsType(t, Malformed{}, bound[0].Response)
	assert.False(t, IsCorrect(sampleQuiz().Questions[0], bound[0].Response))
}

func TestForLearner_MovesEveryRightItem(t *testing.T) {
	q := Quiz{ID: "sorted", Settings: DefaultSettings()}
	q.SetQuestions([]Question{{Text: "Match", Body: Matching{Pairs: []Pair{
		{"a", "1"}, {"b", "2"}, {"c", "3"}, {"d", "4"}, {"e", "5"},
	}}}})

	first := q.ForLearner().Questions[0].Body.(Matching)
	want := q.Questions[0].Body.(Matching)
	assert.ElementsMatch(t, want.Rights(), first.Rights())
	assert.Equal(t, want.Lefts(), first.Lefts())
	for i, p := range first.Pairs {
		assert.NotEqual(t, want.Pairs[i].Right, p.Right, "right item %d stayed in place", i)
	}

	again := q.ForLearner().Questions[0].Body.(Matching)
	assert.Equal(t, first.Rights(), again.Rights(), "order is stable per quiz")
}
