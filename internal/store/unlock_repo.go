package store

import (
	"context"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
)

type unlockRepo struct {
	conn
}

func (r *unlockRepo) Grant(ctx context.Context, userID, quizID string, at time.Time) error {
	query, args := r.build().Insert(UnlocksTable.Name).
		Columns("user_id", "quiz_id", "unlocked_at").
		Values(userID, quizID, millis(at)).
		OnConflict(
			entsql.ConflictColumns("user_id", "quiz_id"),
			entsql.DoNothing(),
		).
		Query()
	if _, err := r.q.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("unlock %s for %s: %w", quizID, userID, mapError(err))
	}
	return nil
}

func (r *unlockRepo) Revoke(ctx context.Context, userID, quizID string) error {
	query, args := r.build().Delete(UnlocksTable.Name).
		Where(entsql.And(entsql.EQ("user_id", userID), entsql.EQ("quiz_id", quizID))).
		Query()
	return r.execOne(ctx, "revoke unlock", quizID, query, args)
}

func (r *unlockRepo) List(ctx context.Context, userID string) ([]string, error) {
	query, args := r.build().Select("quiz_id").
		From(r.build().Table(UnlocksTable.Name)).
		Where(entsql.EQ("user_id", userID)).
		OrderBy("unlocked_at", "quiz_id").
		Query()
	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list unlocks of %s: %w", userID, err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan unlock: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
