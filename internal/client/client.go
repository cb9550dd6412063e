// Package client talks to a quizengine server over its JSON API. A Client
// offers the same learner operations as assessment.Learner, so the terminal
// UI can run against either.
package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-resty/resty/v2"

	"github.com/wahaj323/quizengine/internal/api"
	"github.com/wahaj323/quizengine/internal/assessment"
	"github.com/wahaj323/quizengine/internal/builder"
	"github.com/wahaj323/quizengine/internal/config"
	"github.com/wahaj323/quizengine/internal/gate"
	"github.com/wahaj323/quizengine/internal/history"
	"github.com/wahaj323/quizengine/internal/quiz"
	"github.com/wahaj323/quizengine/internal/scoring"
	"github.com/wahaj323/quizengine/internal/store"
)

// ErrNotConfigured is returned by New without a server URL.
var ErrNotConfigured = errors.New("no server url configured")

// Error is a non-2xx API response. It unwraps to the typed error the server
// classified it from, so errors.Is(err, store.ErrNotFound) and errors.As
// with a *gate.DeniedError behave as they do in-process.
type Error struct {
	Status int
	Body   api.ErrorBody
}

func (e *Error) Error() string {
	msg := e.Body.Error
	if msg == "" {
		msg = http.StatusText(e.Status)
	}
	return fmt.Sprintf("server: %s (%d %s)", msg, e.Status, e.Body.Code)
}

func (e *Error) Unwrap() error {
	b := e.Body
	switch b.Code {
	case api.CodeDenied:
		d := &gate.DeniedError{Reason: gate.Reason(b.Reason)}
		if b.Remaining != nil {
			d.Remaining = *b.Remaining
		}
		return d
	case api.CodeInvalidQuiz:
		return &builder.ValidationError{Question: b.Question, Field: b.Field, Message: b.Error}
	case api.CodeNotFound:
		return store.ErrNotFound
	case api.CodeConflict:
		return store.ErrConflict
	case api.CodeHasAttempts:
		return assessment.ErrQuizHasAttempts
	case api.CodeReviewDisabled:
		return scoring.ErrReviewDisabled
	case api.CodeBadRequest:
		return assessment.ErrInvalidInput
	case api.CodeUnauthorized:
		return api.ErrUnauthorized
	case api.CodeTimeout:
		return context.DeadlineExceeded
	}
	return nil
}

// Client is bound to one bearer token, and so to one user.
type Client struct {
	r      *resty.Client
	userID string
}

// New builds a client for cfg.URL. userID labels the client locally; the
// server identifies the caller by the token alone.
func New(cfg config.ClientConfig, userID string) (*Client, error) {
	if cfg.URL == "" {
		return nil, ErrNotConfigured
	}
	r := resty.New().
		SetBaseURL(strings.TrimRight(cfg.URL, "/")+"/api/v1").
		SetHeader("Accept", "application/json").
		SetError(&api.ErrorBody{})
	if cfg.Token != "" {
		r.SetAuthToken(cfg.Token)
	}
	if cfg.Timeout > 0 {
		r.SetTimeout(cfg.Timeout)
	}
	return &Client{r: r, userID: userID}, nil
}

func (c *Client) UserID() string { return c.userID }

func (c *Client) GetQuiz(ctx context.Context, quizID string) (quiz.View, error) {
	var v quiz.View
	err := c.get(ctx, &v, "/quizzes/{id}", map[string]string{"id": quizID}, nil)
	return v, err
}

func (c *Client) ListQuizzes(ctx context.Context, courseID string) ([]quiz.View, error) {
	var views []quiz.View
	var query map[string]string
	if courseID != "" {
		query = map[string]string{"course_id": courseID}
	}
	err := c.get(ctx, &views, "/quizzes", nil, query)
	return views, err
}

// SubmitAttempt posts once. Submissions are never retried here: a lost
// response to a stored attempt would otherwise spend a second attempt.
func (c *Client) SubmitAttempt(ctx context.Context, quizID string, sub quiz.Submission) (quiz.Attempt, error) {
	var a quiz.Attempt
	body := api.SubmitRequest{Answers: sub.Answers, StartedAt: sub.StartedAt, SubmittedAt: sub.SubmittedAt}
	resp, err := c.r.R().
		SetContext(ctx).
		SetPathParam("id", quizID).
		SetBody(body).
		SetResult(&a).
		Post("/quizzes/{id}/attempts")
	if err := check(resp, err); err != nil {
		return quiz.Attempt{}, fmt.Errorf("submit %s: %w", quizID, err)
	}
	return a, nil
}

func (c *Client) History(ctx context.Context) ([]quiz.Attempt, error) {
	var attempts []quiz.Attempt
	err := c.get(ctx, &attempts, "/me/history", nil, nil)
	return attempts, err
}

// Summary aggregates every quiz when quizID is empty.
func (c *Client) Summary(ctx context.Context, quizID string) (history.Summary, error) {
	var s history.Summary
	if quizID == "" {
		err := c.get(ctx, &s, "/me/summary", nil, nil)
		return s, err
	}
	err := c.get(ctx, &s, "/quizzes/{id}/summary", map[string]string{"id": quizID}, nil)
	return s, err
}

func (c *Client) Attempt(ctx context.Context, attemptID string) (quiz.Attempt, error) {
	var a quiz.Attempt
	err := c.get(ctx, &a, "/attempts/{id}", map[string]string{"id": attemptID}, nil)
	return a, err
}

func (c *Client) Review(ctx context.Context, attemptID string) (scoring.Review, error) {
	var rv scoring.Review
	err := c.get(ctx, &rv, "/attempts/{id}/review", map[string]string{"id": attemptID}, nil)
	return rv, err
}

func (c *Client) get(ctx context.Context, out any, path string, params, query map[string]string) error {
	resp, err := c.r.R().
		SetContext(ctx).
		SetPathParams(params).
		SetQueryParams(query).
		SetResult(out).
		Get(path)
	if err := check(resp, err); err != nil {
		return fmt.Errorf("GET %s: %w", path, err)
	}
	return nil
}

// check turns a transport failure or an error status into an error.
func check(resp *resty.Response, err error) error {
	if err != nil {
		return err
	}
	if !resp.IsError() {
		return nil
	}
	e := &Error{Status: resp.StatusCode()}
	if body, ok := resp.Error().(*api.ErrorBody); ok && body != nil {
		e.Body = *body
	}
	return e
}
