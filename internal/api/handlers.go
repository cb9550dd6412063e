package api

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/wahaj323/quizengine/internal/quiz"
	"github.com/wahaj323/quizengine/internal/store"
)

func principal(r *http.Request) Principal {
	p, _ := PrincipalFrom(r.Context())
	return p
}

func (s *Server) param(r *http.Request, key string) (string, error) {
	return s.id(chi.URLParam(r, key))
}

// subject is the user whose data a request reads: the caller, or for a
// teacher the user named by ?user_id=.
func (s *Server) subject(r *http.Request) (string, error) {
	p := principal(r)
	if u := r.URL.Query().Get("user_id"); u != "" && p.Teacher() {
		return s.id(u)
	}
	return p.UserID, nil
}

func (s *Server) courseQuery(r *http.Request) (string, error) {
	q := listQuery{CourseID: r.URL.Query().Get("course_id")}
	if err := s.validate.Struct(q); err != nil {
		return "", err
	}
	return q.CourseID, nil
}

func nonNil[T any](v []T) []T {
	if v == nil {
		return []T{}
	}
	return v
}

// Learner routes.

func (s *Server) listQuizzes(w http.ResponseWriter, r *http.Request) {
	course, err := s.courseQuery(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	views, err := s.svc.ListQuizzes(r.Context(), principal(r).UserID, course)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(views))
}

func (s *Server) getQuiz(w http.ResponseWriter, r *http.Request) {
	id, err := s.param(r, "quizID")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	v, err := s.svc.GetQuiz(r.Context(), principal(r).UserID, id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (s *Server) submitAttempt(w http.ResponseWriter, r *http.Request) {
	id, err := s.param(r, "quizID")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var req SubmitRequest
	if err := s.decode(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	a, err := s.svc.SubmitAttempt(r.Context(), principal(r).UserID, id, req.Submission())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, a)
}

func (s *Server) quizAttempts(w http.ResponseWriter, r *http.Request) {
	id, err := s.param(r, "quizID")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	user, err := s.subject(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	attempts, err := s.svc.QuizAttempts(r.Context(), user, id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(attempts))
}

// summary serves both /quizzes/{quizID}/summary and /me/summary, which has
// no quiz id and aggregates every quiz.
func (s *Server) summary(w http.ResponseWriter, r *http.Request) {
	var quizID string
	if raw := chi.URLParam(r, "quizID"); raw != "" {
		id, err := s.id(raw)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		quizID = id
	}
	user, err := s.subject(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	sum, err := s.svc.Summary(r.Context(), user, quizID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newSummaryResponse(sum))
}

func (s *Server) getAttempt(w http.ResponseWriter, r *http.Request) {
	id, err := s.param(r, "attemptID")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	a, err := s.svc.GetAttempt(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if p := principal(r); !p.Teacher() && a.UserID != p.UserID {
		s.writeError(w, r, fmt.Errorf("attempt %s: %w", id, store.ErrNotFound))
		return
	}
	writeJSON(w, http.StatusOK, a)
}

func (s *Server) review(w http.ResponseWriter, r *http.Request) {
	id, err := s.param(r, "attemptID")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	owner := principal(r).UserID
	if principal(r).Teacher() {
		a, err := s.svc.GetAttempt(r.Context(), id)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		owner = a.UserID
	}
	rv, err := s.svc.Review(r.Context(), owner, id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rv)
}

func (s *Server) history(w http.ResponseWriter, r *http.Request) {
	attempts, err := s.svc.History(r.Context(), principal(r).UserID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(attempts))
}

// Teacher routes.

func (s *Server) authorQuizzes(w http.ResponseWriter, r *http.Request) {
	course, err := s.courseQuery(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	qs, err := s.svc.Quizzes(r.Context(), course)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(qs))
}

func (s *Server) authorQuiz(w http.ResponseWriter, r *http.Request) {
	id, err := s.param(r, "quizID")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	q, err := s.svc.Quiz(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, q)
}

func publishQuery(r *http.Request) (bool, error) {
	raw := r.URL.Query().Get("publish")
	if raw == "" {
		return false, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("%w: publish must be a boolean", errBadRequest)
	}
	return v, nil
}

func (s *Server) createQuiz(w http.ResponseWriter, r *http.Request) {
	publish, err := publishQuery(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var q quiz.Quiz
	if err := s.decode(w, r, &q); err != nil {
		s.writeError(w, r, err)
		return
	}
	saved, err := s.svc.SaveQuiz(r.Context(), q, publish)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, saved)
}

func (s *Server) updateQuiz(w http.ResponseWriter, r *http.Request) {
	id, err := s.param(r, "quizID")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	publish, err := publishQuery(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var q quiz.Quiz
	if err := s.decode(w, r, &q); err != nil {
		s.writeError(w, r, err)
		return
	}
	if q.ID != "" && q.ID != id {
		s.writeError(w, r, fmt.Errorf("%w: body id %q does not match path", errBadRequest, q.ID))
		return
	}
	q.ID = id
	saved, err := s.svc.SaveQuiz(r.Context(), q, publish)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, saved)
}

func (s *Server) draftQuiz(w http.ResponseWriter, r *http.Request) {
	if s.drafter == nil {
		s.writeError(w, r, errNoDrafter)
		return
	}
	var req DraftRequest
	if err := s.decode(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	in := draftInput(req)
	q, err := s.drafter.Draft(r.Context(), in)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	q.CourseID = req.CourseID
	if !req.Save {
		writeJSON(w, http.StatusOK, q)
		return
	}
	saved, err := s.svc.SaveQuiz(r.Context(), q, false)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, saved)
}

func (s *Server) deleteQuiz(w http.ResponseWriter, r *http.Request) {
	id, err := s.param(r, "quizID")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.svc.DeleteQuiz(r.Context(), id); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) setPublished(published bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := s.param(r, "quizID")
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		q, err := s.svc.SetPublished(r.Context(), id, published)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, q)
	}
}

func (s *Server) addFeedback(w http.ResponseWriter, r *http.Request) {
	id, err := s.param(r, "attemptID")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var req FeedbackRequest
	if err := s.decode(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.svc.AddFeedback(r.Context(), id, req.Text); err != nil {
		s.writeError(w, r, err)
		return
	}
	a, err := s.svc.GetAttempt(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

func (s *Server) listUnlocks(w http.ResponseWriter, r *http.Request) {
	user, err := s.param(r, "userID")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	ids, err := s.svc.Unlocked(r.Context(), user)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, UnlocksResponse{UserID: user, QuizIDs: nonNil(ids)})
}

func (s *Server) unlock(w http.ResponseWriter, r *http.Request) {
	s.changeUnlock(w, r, true)
}

func (s *Server) lock(w http.ResponseWriter, r *http.Request) {
	s.changeUnlock(w, r, false)
}

func (s *Server) changeUnlock(w http.ResponseWriter, r *http.Request, grant bool) {
	user, err := s.param(r, "userID")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	quizID, err := s.param(r, "quizID")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if grant {
		err = s.svc.Unlock(r.Context(), user, quizID)
	} else {
		err = s.svc.Lock(r.Context(), user, quizID)
	}
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) userHistory(w http.ResponseWriter, r *http.Request) {
	user, err := s.param(r, "userID")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	attempts, err := s.svc.History(r.Context(), user)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(attempts))
}
