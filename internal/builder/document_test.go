package builder

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wahaj323/quizengine/internal/quiz"
)

func TestExportImport(t *testing.T) {
	q := validQuiz()
	q.ID = "quiz-1"
	q.Settings.TimeLimit = 10

	var buf bytes.Buffer
	require.NoError(t, Export(&buf, q, time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)))
	assert.Contains(t, buf.String(), `"schema_version": "v1.1.0"`)

	got, err := Import(&buf)
	require.NoError(t, err)
	assert.Equal(t, q.Title, got.Title)
	assert.Equal(t, 10, got.Settings.TimeLimit)
	require.Len(t, got.Questions, 4)
	assert.Equal(t, quiz.MultipleChoice{Options: []string{"Katze", "Hund"}, CorrectIndex: 1}, got.Questions[0].Body)
	assert.Equal(t, 4, got.TotalPoints)
	assert.NoError(t, Validate(got, Publish))
}

func TestImport_DefaultsSettings(t *testing.T) {
	doc := `{"schema_version": "1.0.0", "quiz": {"title": "T", "questions": [
		{"type": "true_false", "text": "Sky is blue", "answer": true}
	]}}`
	got, err := Import(strings.NewReader(doc))
	require.NoError(t, err)
	assert.Equal(t, quiz.DefaultSettings(), got.Settings)
	assert.Equal(t, 1, got.QuestionCount)
}

func TestImport_Rejects(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want error
	}{
		{"not json", `{`, ErrDocument},
		{"missing quiz", `{"schema_version": "v1.0.0"}`, ErrDocument},
		{"unknown type", `{"schema_version": "v1", "quiz": {"title": "T", "questions": [{"type": "essay", "text": "x"}]}}`, ErrDocument},
		{"mcq without key", `{"schema_version": "v1", "quiz": {"title": "T", "questions": [{"type": "mcq", "text": "x", "options": ["a"]}]}}`, ErrDocument},
		{"passing score range", `{"schema_version": "v1", "quiz": {"title": "T", "questions": [], "settings": {"passing_score": 120}}}`, ErrDocument},
		{"future major", `{"schema_version": "v2.0.0", "quiz": {"title": "T", "questions": []}}`, ErrSchemaVersion},
		{"garbage version", `{"schema_version": "latest", "quiz": {"title": "T", "questions": []}}`, ErrSchemaVersion},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Import(strings.NewReader(tt.doc))
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
		})
	}
}

func TestExport_RejectsRedacted(t *testing.T) {
	q := validQuiz().ForLearner()
	assert.Error(t, Export(&bytes.Buffer{}, q, time.Now()))
}

func TestCheckVersion(t *testing.T) {
	assert.NoError(t, CheckVersion("v1.0.0"))
	assert.NoError(t, CheckVersion("1.4.2"))
	assert.NoError(t, CheckVersion("v1"))
	assert.ErrorIs(t, CheckVersion("v0.9.0"), ErrSchemaVersion)
}
