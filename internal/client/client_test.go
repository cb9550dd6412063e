package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wahaj323/quizengine/internal/api"
	"github.com/wahaj323/quizengine/internal/assessment"
	"github.com/wahaj323/quizengine/internal/config"
	"github.com/wahaj323/quizengine/internal/gate"
	"github.com/wahaj323/quizengine/internal/quiz"
	"github.com/wahaj323/quizengine/internal/scoring"
	"github.com/wahaj323/quizengine/internal/session"
	"github.com/wahaj323/quizengine/internal/store"
)

var _ session.Backend = (*Client)(nil)

type testServer struct {
	url  string
	svc  *assessment.Service
	auth *api.Auth
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	st, err := store.Open(context.Background(), store.DriverSQLite, filepath.Join(t.TempDir(), "client.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	svc := assessment.New(st)
	auth := api.NewAuth(config.AuthConfig{Secret: "s3cret", Issuer: "quizengine", TTL: time.Hour})
	srv := httptest.NewServer(api.New(svc, auth, config.ServerConfig{
		RequestTimeout: 5 * time.Second,
		CORSOrigins:    []string{"*"},
		SubmitRate:     100,
		SubmitBurst:    100,
	}).Handler())
	t.Cleanup(srv.Close)
	return &testServer{url: srv.URL, svc: svc, auth: auth}
}

func (s *testServer) client(t *testing.T, user string) *Client {
	t.Helper()
	tok, err := s.auth.Issue(user, api.RoleLearner)
	require.NoError(t, err)
	c, err := New(config.ClientConfig{URL: s.url + "/", Token: tok, Timeout: 5 * time.Second}, user)
	require.NoError(t, err)
	return c
}

func (s *testServer) publish(t *testing.T, mutate func(*quiz.Quiz), users ...string) quiz.Quiz {
	t.Helper()
	q := quiz.Quiz{CourseID: "german-a1", Title: "Tiere", Settings: quiz.DefaultSettings()}
	q.Settings.MaxAttempts = 1
	q.Settings.AllowReview = true
	q.Settings.ShowCorrectAnswers = true
	q.SetQuestions([]quiz.Question{
		{Text: "Dog?", Explanation: "Der Hund.", Body: quiz.MultipleChoice{Options: []string{"Katze", "Hund"}, CorrectIndex: 1}},
	})
	if mutate != nil {
		mutate(&q)
	}
	ctx := context.Background()
	saved, err := s.svc.SaveQuiz(ctx, q, true)
	require.NoError(t, err)
	for _, u := range users {
		require.NoError(t, s.svc.Unlock(ctx, u, saved.ID))
	}
	return saved
}

func answer(choice int) quiz.Submission {
	now := time.Now()
	return quiz.Submission{
		Answers:     []quiz.Answer{{Index: 0, Response: quiz.Choice(choice)}},
		StartedAt:   now.Add(-10 * time.Second),
		SubmittedAt: now,
	}
}

func TestNew_RequiresURL(t *testing.T) {
	_, err := New(config.ClientConfig{}, "ana")
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestLearnerRoundTrip(t *testing.T) {
	srv := newTestServer(t)
	q := srv.publish(t, nil, "ana")
	c := srv.client(t, "ana")
	ctx := context.Background()
	assert.Equal(t, "ana", c.UserID())

	views, err := c.ListQuizzes(ctx, "german-a1")
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.True(t, views[0].CanAttempt)
	assert.Equal(t, 1, views[0].AttemptsRemaining)
	assert.True(t, views[0].Questions[0].Redacted())
	assert.Equal(t, -1, views[0].Questions[0].Body.(quiz.MultipleChoice).CorrectIndex)

	others, err := c.ListQuizzes(ctx, "french-a1")
	require.NoError(t, err)
	assert.Empty(t, others)

	v, err := c.GetQuiz(ctx, q.ID)
	require.NoError(t, err)
	assert.Equal(t, "Tiere", v.Title)

	a, err := c.SubmitAttempt(ctx, q.ID, answer(1))
	require.NoError(t, err)
	assert.Equal(t, 100, a.Score)
	assert.True(t, a.Passed)
	assert.Equal(t, 1, a.Number)

	_, err = c.SubmitAttempt(ctx, q.ID, answer(1))
	var denied *gate.DeniedError
	require.ErrorAs(t, err, &denied)
	assert.Equal(t, gate.ReasonExhausted, denied.Reason)
	assert.Equal(t, 0, denied.Remaining)
	assert.ErrorIs(t, err, gate.ErrDenied)

	attempts, err := c.History(ctx)
	require.NoError(t, err)
	require.Len(t, attempts, 1)
	assert.Equal(t, a.ID, attempts[0].ID)

	sum, err := c.Summary(ctx, q.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, sum.Attempts)
	assert.Equal(t, 100, sum.Best)
	all, err := c.Summary(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, 1, all.Passed)

	got, err := c.Attempt(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, []bool{true}, got.Correct)

	rv, err := c.Review(ctx, a.ID)
	require.NoError(t, err)
	require.Len(t, rv.Items, 1)
	assert.Equal(t, quiz.Choice(1), rv.Items[0].Expected)
	assert.Equal(t, quiz.Choice(1), rv.Items[0].Answer.Response)
	assert.Equal(t, "Der Hund.", rv.Items[0].Explanation)
}

func TestErrorsUnwrapToDomainErrors(t *testing.T) {
	srv := newTestServer(t)
	q := srv.publish(t, func(q *quiz.Quiz) { q.Settings.AllowReview = false }, "ana")
	ana := srv.client(t, "ana")
	ctx := context.Background()

	_, err := ana.GetQuiz(ctx, "missing")
	assert.ErrorIs(t, err, store.ErrNotFound)
	var apiErr *Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.Status)
	assert.Equal(t, api.CodeNotFound, apiErr.Body.Code)

	a, err := ana.SubmitAttempt(ctx, q.ID, answer(0))
	require.NoError(t, err)
	_, err = ana.Review(ctx, a.ID)
	assert.ErrorIs(t, err, scoring.ErrReviewDisabled)

	// ben has no unlock and may not see ana's attempt.
	ben := srv.client(t, "ben")
	_, err = ben.SubmitAttempt(ctx, q.ID, answer(1))
	var denied *gate.DeniedError
	require.ErrorAs(t, err, &denied)
	assert.Equal(t, gate.ReasonLocked, denied.Reason)
	_, err = ben.Attempt(ctx, a.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)

	anon, err := New(config.ClientConfig{URL: srv.url}, "")
	require.NoError(t, err)
	_, err = anon.History(ctx)
	assert.ErrorIs(t, err, api.ErrUnauthorized)
}

func TestSessionOverHTTP(t *testing.T) {
	srv := newTestServer(t)
	q := srv.publish(t, nil, "ana")
	c := srv.client(t, "ana")

	ctl := session.New(c, q.ID)
	require.NoError(t, ctl.Load(context.Background()))
	require.NoError(t, ctl.SetAnswer(quiz.Choice(1)))
	require.NoError(t, ctl.Submit(context.Background(), false))

	a, ok := ctl.Result()
	require.True(t, ok)
	assert.Equal(t, 100, a.Score)
	assert.Equal(t, session.StateCompleted, ctl.State())
}
