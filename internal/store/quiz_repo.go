package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"

	"github.com/wahaj323/quizengine/internal/quiz"
)

var quizColumns = []string{
	"id", "course_id", "title", "description", "questions", "settings",
	"published", "question_count", "total_points", "created_at", "updated_at",
}

type quizRepo struct {
	conn
}

func (r *quizRepo) Save(ctx context.Context, q quiz.Quiz) error {
	questions, err := json.Marshal(nonNil(q.Questions))
	if err != nil {
		return fmt.Errorf("encode questions: %w", err)
	}
	settings, err := json.Marshal(q.Settings)
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}

	query, args := r.build().Insert(QuizzesTable.Name).
		Columns(quizColumns...).
		Values(q.ID, q.CourseID, q.Title, q.Description, string(questions), string(settings),
			q.Published, q.QuestionCount, q.TotalPoints, millis(q.CreatedAt), millis(q.UpdatedAt)).
		OnConflict(
			entsql.ConflictColumns("id"),
			entsql.ResolveWith(func(u *entsql.UpdateSet) {
				for _, c := range quizColumns {
					if c != "id" && c != "created_at" {
						u.SetExcluded(c)
					}
				}
			}),
		).
		Query()
	if _, err := r.q.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("save quiz %s: %w", q.ID, mapError(err))
	}
	return nil
}

func (r *quizRepo) Get(ctx context.Context, id string) (quiz.Quiz, error) {
	query, args := r.build().Select(quizColumns...).
		From(r.build().Table(QuizzesTable.Name)).
		Where(entsql.EQ("id", id)).
		Query()
	q, err := scanQuiz(r.q.QueryRowContext(ctx, query, args...))
	if err != nil {
		return quiz.Quiz{}, fmt.Errorf("get quiz %s: %w", id, mapError(err))
	}
	return q, nil
}

func (r *quizRepo) List(ctx context.Context, f QuizFilter) ([]quiz.Quiz, error) {
	sel := r.build().Select(quizColumns...).
		From(r.build().Table(QuizzesTable.Name)).
		OrderBy("title", "id")
	var preds []*entsql.Predicate
	if f.CourseID != "" {
		preds = append(preds, entsql.EQ("course_id", f.CourseID))
	}
	if f.PublishedOnly {
		preds = append(preds, entsql.EQ("published", true))
	}
	if len(preds) > 0 {
		sel.Where(entsql.And(preds...))
	}

	query, args := sel.Query()
	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list quizzes: %w", err)
	}
	defer rows.Close()

	var out []quiz.Quiz
	for rows.Next() {
		q, err := scanQuiz(rows)
		if err != nil {
			return nil, fmt.Errorf("scan quiz: %w", err)
		}
		out = append(out, q)
	}
	return out, rows.Err()
}

func (r *quizRepo) SetPublished(ctx context.Context, id string, published bool, at time.Time) error {
	query, args := r.build().Update(QuizzesTable.Name).
		Set("published", published).
		Set("updated_at", millis(at)).
		Where(entsql.EQ("id", id)).
		Query()
	return r.execOne(ctx, "set published", id, query, args)
}

func (r *quizRepo) Delete(ctx context.Context, id string) error {
	query, args := r.build().Delete(QuizzesTable.Name).
		Where(entsql.EQ("id", id)).
		Query()
	return r.execOne(ctx, "delete quiz", id, query, args)
}

// execOne runs a write that must touch exactly one row.
func (c conn) execOne(ctx context.Context, op, id, query string, args []any) error {
	res, err := c.q.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%s %s: %w", op, id, mapError(err))
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s %s: %w", op, id, err)
	}
	if n == 0 {
		return fmt.Errorf("%s %s: %w", op, id, ErrNotFound)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanQuiz(s scanner) (quiz.Quiz, error) {
	var (
		q                  quiz.Quiz
		questions, setting string
		created, updated   int64
	)
	err := s.Scan(&q.ID, &q.CourseID, &q.Title, &q.Description, &questions, &setting,
		&q.Published, &q.QuestionCount, &q.TotalPoints, &created, &updated)
	if err != nil {
		return quiz.Quiz{}, err
	}
	if err := json.Unmarshal([]byte(questions), &q.Questions); err != nil {
		return quiz.Quiz{}, fmt.Errorf("decode questions of %s: %w", q.ID, err)
	}
	q.Settings = quiz.DefaultSettings()
	if err := json.Unmarshal([]byte(setting), &q.Settings); err != nil {
		return quiz.Quiz{}, fmt.Errorf("decode settings of %s: %w", q.ID, err)
	}
	q.CreatedAt = fromMillis(created)
	q.UpdatedAt = fromMillis(updated)
	return q, nil
}

// millis stores times as Unix milliseconds so both dialects round-trip them
// identically. The zero time is stored as 0.
func millis(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixMilli()
}

func fromMillis(ms int64) time.Time {
	if ms == 0 {
		return time.Time{}
	}
	return time.UnixMilli(ms).UTC()
}
