package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wahaj323/quizengine/internal/quiz"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(context.Background(), DriverSQLite, filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

var epoch = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

func testQuiz(id string) quiz.Quiz {
	q := quiz.Quiz{
		ID:       id,
		CourseID: "german-a1",
		Title:    "Animals",
		Settings: quiz.DefaultSettings(),
		Questions: []quiz.Question{
			{Text: "Dog?", Points: 2, Body: quiz.MultipleChoice{Options: []string{"Katze", "Hund"}, CorrectIndex: 1}},
			{Text: "Das ___ ist groß.", Body: quiz.FillBlank{Blanks: []string{"Haus"}}},
			{Text: "Katze means cat.", Body: quiz.TrueFalse{Answer: true}},
			{Text: "Match", Body: quiz.Matching{Pairs: []quiz.Pair{{Left: "eins", Right: "one"}, {Left: "zwei", Right: "two"}}}},
		},
		CreatedAt: epoch,
		UpdatedAt: epoch,
	}
	q.Recompute()
	return q
}

func testAttempt(quizID, userID string, number int, submitted time.Time) quiz.Attempt {
	return quiz.Attempt{
		ID:     uuid.NewString(),
		QuizID: quizID,
		UserID: userID,
		Number: number,
		Answers: []quiz.Answer{
			{Index: 0, Response: quiz.Choice(1)},
			{Index: 1, Response: quiz.Blanks{"haus"}},
			{Index: 3, Response: quiz.Pairings{{Left: "eins", Right: "one"}}},
		},
		Correct:      []bool{true, true, false, false},
		Score:        60,
		EarnedPoints: 3,
		TotalPoints:  5,
		TimeSpent:    42,
		StartedAt:    submitted.Add(-42 * time.Second),
		SubmittedAt:  submitted,
	}
}

func TestOpenAppliesPragmas(t *testing.T) {
	s := openTestStore(t)

	var fk int
	require.NoError(t, s.DB().QueryRow("PRAGMA foreign_keys").Scan(&fk))
	assert.Equal(t, 1, fk)

	var mode string
	require.NoError(t, s.DB().QueryRow("PRAGMA journal_mode").Scan(&mode))
	assert.Equal(t, "wal", mode)

	assert.Equal(t, 1, s.DB().Stats().MaxOpenConnections)
	require.NoError(t, s.Ping(context.Background()))
}

func TestOpenUnsupportedDriver(t *testing.T) {
	_, err := Open(context.Background(), "oracle", "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported")
}

func TestOpenIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "twice.db")
	ctx := context.Background()

	s, err := Open(ctx, "sqlite3", path)
	require.NoError(t, err)
	require.NoError(t, s.Quizzes().Save(ctx, testQuiz("q1")))
	require.NoError(t, s.Close())

	s, err = Open(ctx, "", path)
	require.NoError(t, err)
	defer s.Close()
	got, err := s.Quizzes().Get(ctx, "q1")
	require.NoError(t, err)
	assert.Equal(t, "Animals", got.Title)
}

func TestQuizRoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	want := testQuiz("q1")

	require.NoError(t, s.Quizzes().Save(ctx, want))
	got, err := s.Quizzes().Get(ctx, "q1")
	require.NoError(t, err)

	assert.Equal(t, want.Title, got.Title)
	assert.Equal(t, want.CourseID, got.CourseID)
	assert.Equal(t, want.Settings, got.Settings)
	assert.Equal(t, 4, got.QuestionCount)
	assert.Equal(t, 5, got.TotalPoints)
	assert.True(t, got.CreatedAt.Equal(epoch))
	require.Len(t, got.Questions, 4)
	assert.Equal(t, want.Questions[0].Body, got.Questions[0].Body)
	assert.Equal(t, want.Questions[3].Body, got.Questions[3].Body)
	assert.Equal(t, 2, got.Questions[0].Points)
}

func TestQuizSaveReplaces(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	q := testQuiz("q1")
	require.NoError(t, s.Quizzes().Save(ctx, q))

	q.Title = "Tiere"
	q.SetQuestions(q.Questions[:1])
	q.CreatedAt = epoch.Add(time.Hour)
	q.UpdatedAt = epoch.Add(time.Hour)
	require.NoError(t, s.Quizzes().Save(ctx, q))

	got, err := s.Quizzes().Get(ctx, "q1")
	require.NoError(t, err)
	assert.Equal(t, "Tiere", got.Title)
	assert.Equal(t, 1, got.QuestionCount)
	assert.True(t, got.CreatedAt.Equal(epoch), "created_at is kept on update")
	assert.True(t, got.UpdatedAt.Equal(epoch.Add(time.Hour)))
}

func TestQuizListFilters(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	a := testQuiz("a")
	a.Title = "Zahlen"
	a.Published = true
	b := testQuiz("b")
	b.Title = "Farben"
	c := testQuiz("c")
	c.CourseID = "spanish-a1"
	c.Published = true
	for _, q := range []quiz.Quiz{a, b, c} {
		require.NoError(t, s.Quizzes().Save(ctx, q))
	}

	ids := func(qs []quiz.Quiz) []string {
		var out []string
		for _, q := range qs {
			out = append(out, q.ID)
		}
		return out
	}

	all, err := s.Quizzes().List(ctx, QuizFilter{})
	require.NoError(t, err)
	assert.Equal(t, []string{"c", "b", "a"}, ids(all))

	course, err := s.Quizzes().List(ctx, QuizFilter{CourseID: "german-a1"})
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "a"}, ids(course))

	pub, err := s.Quizzes().List(ctx, QuizFilter{CourseID: "german-a1", PublishedOnly: true})
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, ids(pub))
}

func TestQuizPublishAndDelete(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.Quizzes().Save(ctx, testQuiz("q1")))

	at := epoch.Add(24 * time.Hour)
	require.NoError(t, s.Quizzes().SetPublished(ctx, "q1", true, at))
	got, err := s.Quizzes().Get(ctx, "q1")
	require.NoError(t, err)
	assert.True(t, got.Published)
	assert.True(t, got.UpdatedAt.Equal(at))

	err = s.Quizzes().SetPublished(ctx, "missing", true, at)
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.Quizzes().Delete(ctx, "q1"))
	_, err = s.Quizzes().Get(ctx, "q1")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, s.Quizzes().Delete(ctx, "q1"), ErrNotFound)
}

func TestAttemptRoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.Quizzes().Save(ctx, testQuiz("q1")))

	want := testAttempt("q1", "ana", 1, epoch.Add(time.Hour))
	require.NoError(t, s.Attempts().Create(ctx, want))

	got, err := s.Attempts().Get(ctx, want.ID)
	require.NoError(t, err)
	assert.Equal(t, want.Correct, got.Correct)
	assert.Equal(t, want.Score, got.Score)
	assert.Equal(t, 42, got.TimeSpent)
	assert.True(t, got.SubmittedAt.Equal(want.SubmittedAt))
	assert.Empty(t, got.Feedback)
	require.Len(t, got.Answers, 3)
	assert.Equal(t, quiz.Choice(1), got.Answers[0].Response)
	assert.Equal(t, quiz.Blanks{"haus"}, got.Answers[1].Response)
	assert.Equal(t, 3, got.Answers[2].Index)
	assert.Equal(t, quiz.Pairings{{Left: "eins", Right: "one"}}, got.Answers[2].Response)

	_, err = s.Attempts().Get(ctx, "nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAttemptNumberConflict(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.Quizzes().Save(ctx, testQuiz("q1")))

	require.NoError(t, s.Attempts().Create(ctx, testAttempt("q1", "ana", 1, epoch)))
	err := s.Attempts().Create(ctx, testAttempt("q1", "ana", 1, epoch))
	assert.ErrorIs(t, err, ErrConflict)

	require.NoError(t, s.Attempts().Create(ctx, testAttempt("q1", "ben", 1, epoch)))
}

func TestAttemptRequiresQuiz(t *testing.T) {
	s := openTestStore(t)
	err := s.Attempts().Create(context.Background(), testAttempt("ghost", "ana", 1, epoch))
	assert.Error(t, err)
}

func TestAttemptQueries(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.Quizzes().Save(ctx, testQuiz("q1")))
	require.NoError(t, s.Quizzes().Save(ctx, testQuiz("q2")))

	a1 := testAttempt("q1", "ana", 1, epoch)
	a2 := testAttempt("q1", "ana", 2, epoch.Add(2*time.Hour))
	b1 := testAttempt("q2", "ana", 1, epoch.Add(time.Hour))
	other := testAttempt("q1", "ben", 1, epoch.Add(3*time.Hour))
	for _, a := range []quiz.Attempt{a2, a1, b1, other} {
		require.NoError(t, s.Attempts().Create(ctx, a))
	}

	byQuiz, err := s.Attempts().ForUserQuiz(ctx, "ana", "q1")
	require.NoError(t, err)
	require.Len(t, byQuiz, 2)
	assert.Equal(t, 1, byQuiz[0].Number)
	assert.Equal(t, 2, byQuiz[1].Number)

	recent, err := s.Attempts().ForUser(ctx, "ana")
	require.NoError(t, err)
	require.Len(t, recent, 3)
	assert.Equal(t, []string{a2.ID, b1.ID, a1.ID}, []string{recent[0].ID, recent[1].ID, recent[2].ID})

	n, err := s.Attempts().CountForUserQuiz(ctx, "ana", "q1")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	n, err = s.Attempts().CountForQuiz(ctx, "q1")
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	n, err = s.Attempts().CountForUserQuiz(ctx, "carla", "q1")
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestAttemptFeedback(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.Quizzes().Save(ctx, testQuiz("q1")))
	a := testAttempt("q1", "ana", 1, epoch)
	require.NoError(t, s.Attempts().Create(ctx, a))

	require.NoError(t, s.Attempts().SetFeedback(ctx, a.ID, "Watch the articles."))
	got, err := s.Attempts().Get(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, "Watch the articles.", got.Feedback)

	require.NoError(t, s.Attempts().SetFeedback(ctx, a.ID, ""))
	got, err = s.Attempts().Get(ctx, a.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Feedback)

	assert.ErrorIs(t, s.Attempts().SetFeedback(ctx, "nope", "x"), ErrNotFound)
}

func TestUnlocks(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.Quizzes().Save(ctx, testQuiz("q1")))
	require.NoError(t, s.Quizzes().Save(ctx, testQuiz("q2")))

	require.NoError(t, s.Unlocks().Grant(ctx, "ana", "q1", epoch))
	require.NoError(t, s.Unlocks().Grant(ctx, "ana", "q1", epoch.Add(time.Hour)), "grant is idempotent")
	require.NoError(t, s.Unlocks().Grant(ctx, "ana", "q2", epoch.Add(time.Minute)))

	ids, err := s.Unlocks().List(ctx, "ana")
	require.NoError(t, err)
	assert.Equal(t, []string{"q1", "q2"}, ids)

	require.NoError(t, s.Unlocks().Revoke(ctx, "ana", "q1"))
	assert.ErrorIs(t, s.Unlocks().Revoke(ctx, "ana", "q1"), ErrNotFound)

	ids, err = s.Unlocks().List(ctx, "ana")
	require.NoError(t, err)
	assert.Equal(t, []string{"q2"}, ids)

	ids, err = s.Unlocks().List(ctx, "ben")
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestUnlocksCascadeOnQuizDelete(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.Quizzes().Save(ctx, testQuiz("q1")))
	require.NoError(t, s.Unlocks().Grant(ctx, "ana", "q1", epoch))

	require.NoError(t, s.Quizzes().Delete(ctx, "q1"))
	ids, err := s.Unlocks().List(ctx, "ana")
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestLLMRequestLog(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	events := s.Events()

	reqs := []LLMRequest{
		{CreatedAt: epoch, Provider: "openai", Model: "gpt-4o-mini", Purpose: "quiz-draft", InputTokens: 100, OutputTokens: 40, LatencyMs: 900, Success: true},
		{CreatedAt: epoch.Add(time.Minute), Provider: "openai", Model: "gpt-4o-mini", Purpose: "quiz-draft", InputTokens: 120, OutputTokens: 60, LatencyMs: 1100, Success: true},
		{CreatedAt: epoch.Add(2 * time.Minute), Provider: "openai", Model: "gpt-4o-mini", Purpose: "feedback", InputTokens: 50, LatencyMs: 300, ErrorMessage: "rate limited"},
	}
	for _, r := range reqs {
		require.NoError(t, events.AppendLLMRequest(ctx, r))
	}

	all, err := events.ListLLMRequests(ctx, LLMFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "feedback", all[0].Purpose)
	assert.Equal(t, "rate limited", all[0].ErrorMessage)
	assert.False(t, all[0].Success)

	limited, err := events.ListLLMRequests(ctx, LLMFilter{Limit: 1, Purpose: "quiz-draft"})
	require.NoError(t, err)
	require.Len(t, limited, 1)
	assert.Equal(t, 120, limited[0].InputTokens)

	one, err := events.GetLLMRequest(ctx, limited[0].ID)
	require.NoError(t, err)
	assert.True(t, one.CreatedAt.Equal(epoch.Add(time.Minute)))

	_, err = events.GetLLMRequest(ctx, 999)
	assert.ErrorIs(t, err, ErrNotFound)

	usage, err := events.LLMUsage(ctx)
	require.NoError(t, err)
	require.Len(t, usage, 2)
	assert.Equal(t, LLMUsage{Purpose: "feedback", Model: "gpt-4o-mini", Calls: 1, InputTokens: 50, LatencyMs: 300}, usage[0])
	assert.Equal(t, LLMUsage{Purpose: "quiz-draft", Model: "gpt-4o-mini", Calls: 2, InputTokens: 220, OutputTokens: 100, LatencyMs: 2000}, usage[1])
}

func TestWithTx(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	boom := errors.New("boom")

	err := s.WithTx(ctx, func(tx *Tx) error {
		require.NoError(t, tx.Quizzes().Save(ctx, testQuiz("rolled-back")))
		return boom
	})
	assert.ErrorIs(t, err, boom)
	_, err = s.Quizzes().Get(ctx, "rolled-back")
	assert.ErrorIs(t, err, ErrNotFound)

	err = s.WithTx(ctx, func(tx *Tx) error {
		if err := tx.Quizzes().Save(ctx, testQuiz("kept")); err != nil {
			return err
		}
		return tx.Unlocks().Grant(ctx, "ana", "kept", epoch)
	})
	require.NoError(t, err)
	ids, err := s.Unlocks().List(ctx, "ana")
	require.NoError(t, err)
	assert.Equal(t, []string{"kept"}, ids)
}

func TestWithTxRollsBackOnPanic(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	assert.Panics(t, func() {
		_ = s.WithTx(ctx, func(tx *Tx) error {
			_ = tx.Quizzes().Save(ctx, testQuiz("p"))
			panic("boom")
		})
	})
	_, err := s.Quizzes().Get(ctx, "p")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestNormalizeDriver(t *testing.T) {
	tests := map[string]string{
		"":           DriverSQLite,
		"SQLite3":    DriverSQLite,
		" postgres ": DriverPostgres,
		"pgx":        DriverPostgres,
		"mysql":      "mysql",
	}
	for in, want := range tests {
		assert.Equal(t, want, normalizeDriver(in), in)
	}
}

func TestDefaultDBPath(t *testing.T) {
	dir := t.TempDir()

	t.Setenv("QUIZENGINE_DB", filepath.Join(dir, "explicit", "x.db"))
	p, err := DefaultDBPath()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "explicit", "x.db"), p)
	assert.DirExists(t, filepath.Join(dir, "explicit"))

	t.Setenv("QUIZENGINE_DB", "")
	t.Setenv("XDG_DATA_HOME", dir)
	p, err = DefaultDBPath()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "quizengine", "quizengine.db"), p)
}
