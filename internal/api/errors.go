package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/wahaj323/quizengine/internal/assessment"
	"github.com/wahaj323/quizengine/internal/builder"
	"github.com/wahaj323/quizengine/internal/gate"
	"github.com/wahaj323/quizengine/internal/llm"
	"github.com/wahaj323/quizengine/internal/scoring"
	"github.com/wahaj323/quizengine/internal/store"
)

// Error codes of ErrorBody.Code.
const (
	CodeBadRequest     = "bad_request"
	CodeUnauthorized   = "unauthorized"
	CodeForbidden      = "forbidden"
	CodeDenied         = "attempt_denied"
	CodeReviewDisabled = "review_disabled"
	CodeNotFound       = "not_found"
	CodeConflict       = "conflict"
	CodeHasAttempts    = "quiz_has_attempts"
	CodeInvalidQuiz    = "invalid_quiz"
	CodeRateLimited    = "rate_limited"
	CodeUpstream       = "upstream_error"
	CodeUnavailable    = "unavailable"
	CodeTimeout        = "timeout"
	CodeInternal       = "internal"
)

var (
	errForbidden   = errors.New("forbidden")
	errRateLimited = errors.New("too many submissions")
	errNoDrafter   = errors.New("quiz drafting is not configured")
	errBadRequest  = errors.New("bad request")
)

// ErrorBody is the JSON shape of every error response. Reason and Remaining
// accompany attempt denials; Question and Field accompany quiz validation
// failures.
type ErrorBody struct {
	Error     string `json:"error"`
	Code      string `json:"code"`
	Reason    string `json:"reason,omitempty"`
	Remaining *int   `json:"remaining,omitempty"`
	Question  int    `json:"question,omitempty"`
	Field     string `json:"field,omitempty"`
}

// classify maps an error to its status and body.
func classify(err error) (int, ErrorBody) {
	var (
		verr    *builder.ValidationError
		denied  *gate.DeniedError
		fields  validator.ValidationErrors
		limited *llm.ErrRateLimit
		down    *llm.ErrProviderUnavailable
		invalid *llm.ErrInvalidResponse
	)
	switch {
	case errors.As(err, &verr):
		return http.StatusUnprocessableEntity, ErrorBody{Error: verr.Message, Code: CodeInvalidQuiz, Question: verr.Question, Field: verr.Field}
	case errors.As(err, &denied):
		remaining := denied.Remaining
		return http.StatusForbidden, ErrorBody{Error: err.Error(), Code: CodeDenied, Reason: string(denied.Reason), Remaining: &remaining}
	case errors.As(err, &fields):
		fe := fields[0]
		return http.StatusBadRequest, ErrorBody{Error: fe.Field() + " failed " + fe.Tag() + " validation", Code: CodeBadRequest, Field: fe.Field()}
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized, ErrorBody{Error: "invalid or missing bearer token", Code: CodeUnauthorized}
	case errors.Is(err, errForbidden):
		return http.StatusForbidden, ErrorBody{Error: "teacher role required", Code: CodeForbidden}
	case errors.Is(err, scoring.ErrReviewDisabled):
		return http.StatusForbidden, ErrorBody{Error: err.Error(), Code: CodeReviewDisabled}
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound, ErrorBody{Error: err.Error(), Code: CodeNotFound}
	case errors.Is(err, assessment.ErrQuizHasAttempts):
		return http.StatusConflict, ErrorBody{Error: err.Error(), Code: CodeHasAttempts}
	case errors.Is(err, store.ErrConflict):
		return http.StatusConflict, ErrorBody{Error: err.Error(), Code: CodeConflict}
	case errors.Is(err, errRateLimited):
		return http.StatusTooManyRequests, ErrorBody{Error: err.Error(), Code: CodeRateLimited}
	case errors.Is(err, assessment.ErrInvalidInput), errors.Is(err, builder.ErrDraft), errors.Is(err, errBadRequest):
		return http.StatusBadRequest, ErrorBody{Error: err.Error(), Code: CodeBadRequest}
	case errors.Is(err, errNoDrafter):
		return http.StatusServiceUnavailable, ErrorBody{Error: err.Error(), Code: CodeUnavailable}
	case errors.As(err, &limited), errors.As(err, &down), errors.As(err, &invalid):
		return http.StatusBadGateway, ErrorBody{Error: err.Error(), Code: CodeUpstream}
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, ErrorBody{Error: "request timed out", Code: CodeTimeout}
	}
	return http.StatusInternalServerError, ErrorBody{Error: "internal error", Code: CodeInternal}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, body := classify(err)
	if status >= http.StatusInternalServerError {
		s.log.Error("request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", status),
			zap.Error(err))
	}
	writeJSON(w, status, body)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
