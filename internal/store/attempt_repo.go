package store

import (
	"context"
	"encoding/json"
	"fmt"

	entsql "entgo.io/ent/dialect/sql"

	"github.com/wahaj323/quizengine/internal/quiz"
)

var attemptColumns = []string{
	"id", "quiz_id", "user_id", "number", "answers", "correct", "score",
	"earned_points", "total_points", "passed", "time_spent",
	"started_at", "submitted_at", "feedback",
}

type attemptRepo struct {
	conn
}

func (r *attemptRepo) Create(ctx context.Context, a quiz.Attempt) error {
	answers, err := json.Marshal(nonNil(a.Answers))
	if err != nil {
		return fmt.Errorf("encode answers: %w", err)
	}
	correct, err := json.Marshal(nonNil(a.Correct))
	if err != nil {
		return fmt.Errorf("encode correctness: %w", err)
	}

	var feedback any
	if a.Feedback != "" {
		feedback = a.Feedback
	}
	query, args := r.build().Insert(AttemptsTable.Name).
		Columns(attemptColumns...).
		Values(a.ID, a.QuizID, a.UserID, a.Number, string(answers), string(correct), a.Score,
			a.EarnedPoints, a.TotalPoints, a.Passed, a.TimeSpent,
			millis(a.StartedAt), millis(a.SubmittedAt), feedback).
		Query()
	if _, err := r.q.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("create attempt %d of %s for %s: %w", a.Number, a.QuizID, a.UserID, mapError(err))
	}
	return nil
}

func (r *attemptRepo) Get(ctx context.Context, id string) (quiz.Attempt, error) {
	query, args := r.selectAttempts().Where(entsql.EQ("id", id)).Query()
	a, err := scanAttempt(r.q.QueryRowContext(ctx, query, args...))
	if err != nil {
		return quiz.Attempt{}, fmt.Errorf("get attempt %s: %w", id, mapError(err))
	}
	return a, nil
}

func (r *attemptRepo) ForUserQuiz(ctx context.Context, userID, quizID string) ([]quiz.Attempt, error) {
	sel := r.selectAttempts().
		Where(entsql.And(entsql.EQ("user_id", userID), entsql.EQ("quiz_id", quizID))).
		OrderBy("number")
	return r.list(ctx, sel)
}

func (r *attemptRepo) ForUser(ctx context.Context, userID string) ([]quiz.Attempt, error) {
	sel := r.selectAttempts().
		Where(entsql.EQ("user_id", userID)).
		OrderBy(entsql.Desc("submitted_at"), entsql.Desc("number"))
	return r.list(ctx, sel)
}

func (r *attemptRepo) CountForUserQuiz(ctx context.Context, userID, quizID string) (int, error) {
	return r.count(ctx, entsql.And(entsql.EQ("user_id", userID), entsql.EQ("quiz_id", quizID)))
}

func (r *attemptRepo) CountForQuiz(ctx context.Context, quizID string) (int, error) {
	return r.count(ctx, entsql.EQ("quiz_id", quizID))
}

func (r *attemptRepo) SetFeedback(ctx context.Context, id, feedback string) error {
	upd := r.build().Update(AttemptsTable.Name).Where(entsql.EQ("id", id))
	if feedback == "" {
		upd.SetNull("feedback")
	} else {
		upd.Set("feedback", feedback)
	}
	query, args := upd.Query()
	return r.execOne(ctx, "set feedback", id, query, args)
}

func (r *attemptRepo) selectAttempts() *entsql.Selector {
	return r.build().Select(attemptColumns...).From(r.build().Table(AttemptsTable.Name))
}

func (r *attemptRepo) count(ctx context.Context, p *entsql.Predicate) (int, error) {
	query, args := r.build().Select(entsql.Count("*")).
		From(r.build().Table(AttemptsTable.Name)).
		Where(p).
		Query()
	var n int
	if err := r.q.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count attempts: %w", err)
	}
	return n, nil
}

func (r *attemptRepo) list(ctx context.Context, sel *entsql.Selector) ([]quiz.Attempt, error) {
	query, args := sel.Query()
	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list attempts: %w", err)
	}
	defer rows.Close()

	var out []quiz.Attempt
	for rows.Next() {
		a, err := scanAttempt(rows)
		if err != nil {
			return nil, fmt.Errorf("scan attempt: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func scanAttempt(s scanner) (quiz.Attempt, error) {
	var (
		a                  quiz.Attempt
		answers, correct   string
		started, submitted int64
		feedback           *string
	)
	err := s.Scan(&a.ID, &a.QuizID, &a.UserID, &a.Number, &answers, &correct, &a.Score,
		&a.EarnedPoints, &a.TotalPoints, &a.Passed, &a.TimeSpent,
		&started, &submitted, &feedback)
	if err != nil {
		return quiz.Attempt{}, err
	}
	if err := json.Unmarshal([]byte(answers), &a.Answers); err != nil {
		return quiz.Attempt{}, fmt.Errorf("decode answers of %s: %w", a.ID, err)
	}
	if err := json.Unmarshal([]byte(correct), &a.Correct); err != nil {
		return quiz.Attempt{}, fmt.Errorf("decode correctness of %s: %w", a.ID, err)
	}
	a.StartedAt = fromMillis(started)
	a.SubmittedAt = fromMillis(submitted)
	if feedback != nil {
		a.Feedback = *feedback
	}
	return a, nil
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
