package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	errorvalues "github.com/limbo/nexotime/internal/error_values"
	"github.com/limbo/nexotime/pkg/entity"
)

type CompletionsRepository struct {
	conn PgConnection
}

func NewCompletionsRepo(conn PgConnection) *CompletionsRepository {
	return &CompletionsRepository{
		conn: conn,
	}
}

// Upsert relies on the (user_id, habit_id, log_date) unique key, so
// concurrent writers of one triple converge on a single row.
func (cr *CompletionsRepository) Upsert(ctx context.Context, rec *entity.CompletionRecord) (*entity.CompletionRecord, error) {
	saved := *rec
	saved.Date = entity.Day(rec.Date)
	row := cr.conn.QueryRow(ctx,
		`INSERT INTO habit_logs (user_id, habit_id, log_date, completed) VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id, habit_id, log_date) DO UPDATE SET completed = EXCLUDED.completed
		RETURNING id, completed;`,
		rec.UserID,
		rec.HabitID,
		saved.Date,
		rec.Completed,
	)
	if err := row.Scan(&saved.ID, &saved.Completed); err != nil {
		if pgErrCode(err) == pgForeignKeyViolation {
			return nil, errorvalues.ErrHabitNotFound
		}
		return nil, errors.New("upserting completion error: " + err.Error())
	}
	return &saved, nil
}

func (cr *CompletionsRepository) ListByDateRange(ctx context.Context, uid uuid.UUID, from, to time.Time) ([]*entity.CompletionRecord, error) {
	rows, err := cr.conn.Query(ctx,
		`SELECT id, user_id, habit_id, log_date, completed FROM habit_logs WHERE user_id = $1 AND log_date >= $2 AND log_date <= $3;`,
		uid,
		entity.Day(from),
		entity.Day(to),
	)
	if err != nil {
		return nil, errors.New("getting completions for period error: " + err.Error())
	}
	defer rows.Close()
	result := make([]*entity.CompletionRecord, 0)
	for rows.Next() {
		rec := entity.CompletionRecord{}
		if err = rows.Scan(&rec.ID, &rec.UserID, &rec.HabitID, &rec.Date, &rec.Completed); err != nil {
			return nil, errors.New("completion row parsing error: " + err.Error())
		}
		rec.Date = entity.Day(rec.Date)
		result = append(result, &rec)
	}
	if err = rows.Err(); err != nil {
		return nil, errors.New("unexpected completion rows error: " + err.Error())
	}
	return result, nil
}
