package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/wahaj323/quizengine/internal/assessment"
	"github.com/wahaj323/quizengine/internal/builder"
	"github.com/wahaj323/quizengine/internal/history"
	"github.com/wahaj323/quizengine/internal/quiz"
)

const maxBodyBytes = 1 << 20

// SubmitRequest is the body of POST /quizzes/{id}/attempts.
type SubmitRequest struct {
	Answers     []quiz.Answer `json:"answers" validate:"max=500"`
	StartedAt   time.Time     `json:"started_at"`
	SubmittedAt time.Time     `json:"submitted_at"`
}

func (r SubmitRequest) Submission() quiz.Submission {
	return quiz.Submission{Answers: r.Answers, StartedAt: r.StartedAt, SubmittedAt: r.SubmittedAt}
}

// FeedbackRequest is the body of POST /attempts/{id}/feedback.
type FeedbackRequest struct {
	Text string `json:"text" validate:"max=4000"`
}

// DraftRequest is the body of POST /quizzes/draft.
type DraftRequest struct {
	Topic    string   `json:"topic" validate:"required,max=200"`
	Count    int      `json:"count" validate:"required,min=1,max=30"`
	Types    []string `json:"types" validate:"dive,oneof=mcq fill_blank true_false matching"`
	Level    string   `json:"level" validate:"max=100"`
	Notes    string   `json:"notes" validate:"max=2000"`
	CourseID string   `json:"course_id" validate:"max=100"`
	Save     bool     `json:"save"`
}

// SummaryResponse is a history summary with the letter grade of the best
// score.
type SummaryResponse struct {
	history.Summary
	BestGrade history.Grade `json:"best_grade,omitempty"`
}

func newSummaryResponse(s history.Summary) SummaryResponse {
	out := SummaryResponse{Summary: s}
	if g, ok := s.BestGrade(); ok {
		out.BestGrade = g
	}
	return out
}

// UnlocksResponse lists the quizzes a user may attempt.
type UnlocksResponse struct {
	UserID  string   `json:"user_id"`
	QuizIDs []string `json:"quiz_ids"`
}

type listQuery struct {
	CourseID string `json:"course_id" validate:"max=100"`
}

type pathID struct {
	ID string `validate:"required,max=200,printascii"`
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		if name == "" {
			return strings.ToLower(f.Name)
		}
		return name
	})
	return v
}

// decode reads a JSON body into dst and validates it.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("%w: invalid JSON body: %w", errBadRequest, err)
	}
	return s.validate.Struct(dst)
}

// id validates a path parameter.
func (s *Server) id(value string) (string, error) {
	if err := s.validate.Struct(pathID{ID: value}); err != nil {
		return "", fmt.Errorf("%w: invalid id %q", assessment.ErrInvalidInput, value)
	}
	return value, nil
}

func draftInput(r DraftRequest) builder.DraftInput {
	var kinds []quiz.Kind
	for _, t := range r.Types {
		kinds = append(kinds, quiz.Kind(t))
	}
	return builder.DraftInput{Topic: r.Topic, Count: r.Count, Kinds: kinds, Level: r.Level, Notes: r.Notes}
}
