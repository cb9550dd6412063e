package history

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wahaj323/quizengine/internal/quiz"
)

func TestLetterGrade(t *testing.T) {
	tests := []struct {
		score int
		want  Grade
	}{
		{100, GradeA},
		{90, GradeA},
		{89, GradeB},
		{80, GradeB},
		{79, GradeC},
		{70, GradeC},
		{69, GradeD},
		{60, GradeD},
		{59, GradeF},
		{0, GradeF},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, LetterGrade(tt.score), "score %d", tt.score)
	}
}

func TestSummarize_Empty(t *testing.T) {
	s := Summarize(nil)
	assert.False(t, s.HasData)
	assert.Equal(t, 0, s.Attempts)

	_, ok := s.BestScore()
	assert.False(t, ok, "empty history has no best score")
	_, ok = s.AverageScore()
	assert.False(t, ok)
	_, ok = s.BestGrade()
	assert.False(t, ok)
	assert.Nil(t, s.Latest)
}

func TestSummarize(t *testing.T) {
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	attempts := []quiz.Attempt{
		{ID: "a1", Number: 1, Score: 40, Passed: false, SubmittedAt: base},
		{ID: "a2", Number: 2, Score: 85, Passed: true, SubmittedAt: base.Add(time.Hour)},
		{ID: "a3", Number: 3, Score: 70, Passed: true, SubmittedAt: base.Add(2 * time.Hour)},
	}

	s := Summarize(attempts)
	require.True(t, s.HasData)
	assert.Equal(t, 3, s.Attempts)
	assert.Equal(t, 85, s.Best)
	assert.Equal(t, 65, s.Average)
	assert.Equal(t, 2, s.Passed)
	assert.Equal(t, 1, s.Failed)
	require.NotNil(t, s.Latest)
	assert.Equal(t, "a3", s.Latest.ID)

	g, ok := s.BestGrade()
	assert.True(t, ok)
	assert.Equal(t, GradeB, g)
}

func TestSummarize_ZeroScoreIsData(t *testing.T) {
	s := Summarize([]quiz.Attempt{{Score: 0}})
	best, ok := s.BestScore()
	assert.True(t, ok)
	assert.Equal(t, 0, best)
}

func TestSummarize_AverageRoundsHalfUp(t *testing.T) {
	s := Summarize([]quiz.Attempt{{Score: 50}, {Score: 51}})
	assert.Equal(t, 51, s.Average)

	s = Summarize([]quiz.Attempt{{Score: 10}, {Score: 10}, {Score: 11}})
	assert.Equal(t, 10, s.Average)
}

func TestByQuiz(t *testing.T) {
	attempts := []quiz.Attempt{
		{QuizID: "x", Score: 100, Passed: true},
		{QuizID: "y", Score: 20},
		{QuizID: "x", Score: 50},
	}
	got := ByQuiz(attempts)
	require.Len(t, got, 2)
	assert.Equal(t, 2, got["x"].Attempts)
	assert.Equal(t, 75, got["x"].Average)
	assert.Equal(t, 1, got["y"].Failed)
}

func TestSortRecent(t *testing.T) {
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	attempts := []quiz.Attempt{
		{ID: "old", Number: 1, SubmittedAt: base},
		{ID: "new", Number: 3, SubmittedAt: base.Add(time.Minute)},
		{ID: "tie-low", Number: 1, SubmittedAt: base.Add(time.Hour)},
		{ID: "tie-high", Number: 2, SubmittedAt: base.Add(time.Hour)},
	}
	SortRecent(attempts)

	ids := make([]string, len(attempts))
	for i, a := range attempts {
		ids[i] = a.ID
	}
	assert.Equal(t, []string{"tie-high", "tie-low", "new", "old"}, ids)
}
