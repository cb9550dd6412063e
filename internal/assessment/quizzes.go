package assessment

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/wahaj323/quizengine/internal/builder"
	"github.com/wahaj323/quizengine/internal/quiz"
	"github.com/wahaj323/quizengine/internal/store"
)

// Quiz returns the full definition, answer keys included.
func (s *Service) Quiz(ctx context.Context, quizID string) (quiz.Quiz, error) {
	return s.store.Quizzes().Get(ctx, quizID)
}

// Quizzes lists full definitions for authors.
func (s *Service) Quizzes(ctx context.Context, courseID string) ([]quiz.Quiz, error) {
	return s.store.Quizzes().List(ctx, store.QuizFilter{CourseID: courseID})
}

// SaveQuiz validates and stores q. A quiz without an id is created. Saving
// with publish, or saving a quiz that is already published, requires the
// publish-safe rules; otherwise the draft rules apply. Once learners have
// attempted a quiz its questions are frozen and only title, course and
// settings may change. The stored quiz is returned.
func (s *Service) SaveQuiz(ctx context.Context, q quiz.Quiz, publish bool) (quiz.Quiz, error) {
	if q.Redacted() {
		return quiz.Quiz{}, fmt.Errorf("%w: quiz has no answer keys", ErrInvalidInput)
	}
	now := s.now().UTC()

	err := s.store.WithTx(ctx, func(tx *store.Tx) error {
		var existing *quiz.Quiz
		if q.ID == "" {
			q.ID = s.newID()
			q.CreatedAt = now
		} else {
			prev, err := tx.Quizzes().Get(ctx, q.ID)
			switch {
			case errors.Is(err, store.ErrNotFound):
				q.CreatedAt = now
			case err != nil:
				return err
			default:
				q.CreatedAt = prev.CreatedAt
				publish = publish || prev.Published
				existing = &prev
			}
		}

		q.Recompute()
		mode := builder.Draft
		if publish {
			mode = builder.Publish
		}
		if err := builder.Validate(q, mode); err != nil {
			return err
		}
		if existing != nil {
			if err := checkFrozen(ctx, tx, *existing, q); err != nil {
				return err
			}
		}
		q.Published = publish
		q.UpdatedAt = now
		return tx.Quizzes().Save(ctx, q)
	})
	if err != nil {
		return quiz.Quiz{}, fmt.Errorf("save quiz: %w", err)
	}
	return q, nil
}

// checkFrozen rejects question edits on a quiz that has attempts. Stored
// answers and correctness refer to questions by position.
func checkFrozen(ctx context.Context, tx *store.Tx, existing, updated quiz.Quiz) error {
	same, err := sameQuestions(existing.Questions, updated.Questions)
	if err != nil || same {
		return err
	}
	n, err := tx.Attempts().CountForQuiz(ctx, existing.ID)
	if err != nil {
		return err
	}
	if n > 0 {
		return fmt.Errorf("%w: questions cannot change after %d attempts", ErrQuizHasAttempts, n)
	}
	return nil
}

func sameQuestions(a, b []quiz.Question) (bool, error) {
	ja, err := json.Marshal(a)
	if err != nil {
		return false, err
	}
	jb, err := json.Marshal(b)
	if err != nil {
		return false, err
	}
	return bytes.Equal(ja, jb), nil
}

// SetPublished publishes or unpublishes a quiz. Publishing runs the
// publish-safe rules first.
func (s *Service) SetPublished(ctx context.Context, quizID string, published bool) (quiz.Quiz, error) {
	var q quiz.Quiz
	err := s.store.WithTx(ctx, func(tx *store.Tx) error {
		var err error
		q, err = tx.Quizzes().Get(ctx, quizID)
		if err != nil {
			return err
		}
		if published {
			if err := builder.Validate(q, builder.Publish); err != nil {
				return err
			}
		}
		q.Published = published
		q.UpdatedAt = s.now().UTC()
		return tx.Quizzes().SetPublished(ctx, quizID, published, q.UpdatedAt)
	})
	if err != nil {
		return quiz.Quiz{}, fmt.Errorf("set published: %w", err)
	}
	return q, nil
}

// DeleteQuiz removes a quiz nobody has attempted. Unlocks go with it.
func (s *Service) DeleteQuiz(ctx context.Context, quizID string) error {
	err := s.store.WithTx(ctx, func(tx *store.Tx) error {
		n, err := tx.Attempts().CountForQuiz(ctx, quizID)
		if err != nil {
			return err
		}
		if n > 0 {
			return fmt.Errorf("%w: %d attempts", ErrQuizHasAttempts, n)
		}
		return tx.Quizzes().Delete(ctx, quizID)
	})
	if err != nil {
		return fmt.Errorf("delete quiz %s: %w", quizID, err)
	}
	return nil
}

// Unlock lets userID attempt quizID.
func (s *Service) Unlock(ctx context.Context, userID, quizID string) error {
	if userID == "" {
		return fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}
	return s.store.WithTx(ctx, func(tx *store.Tx) error {
		if _, err := tx.Quizzes().Get(ctx, quizID); err != nil {
			return err
		}
		return tx.Unlocks().Grant(ctx, userID, quizID, s.now().UTC())
	})
}

// Lock revokes an unlock.
func (s *Service) Lock(ctx context.Context, userID, quizID string) error {
	return s.store.Unlocks().Revoke(ctx, userID, quizID)
}

// Unlocked lists the quiz ids userID may attempt.
func (s *Service) Unlocked(ctx context.Context, userID string) ([]string, error) {
	return s.store.Unlocks().List(ctx, userID)
}
