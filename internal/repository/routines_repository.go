package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	errorvalues "github.com/limbo/nexotime/internal/error_values"
	"github.com/limbo/nexotime/pkg/entity"
)

type RoutinesRepository struct {
	conn PgConnection
}

func NewRoutinesRepo(conn PgConnection) *RoutinesRepository {
	return &RoutinesRepository{
		conn: conn,
	}
}

func (rr *RoutinesRepository) List(ctx context.Context, uid uuid.UUID, routineType string) ([]*entity.RoutineStep, error) {
	rows, err := rr.conn.Query(ctx,
		`SELECT id, user_id, type, step_order, description FROM routine_steps WHERE user_id = $1 AND type = $2 ORDER BY step_order, id;`,
		uid, routineType,
	)
	if err != nil {
		return nil, errors.New("listing routine error: " + err.Error())
	}
	defer rows.Close()
	steps := make([]*entity.RoutineStep, 0)
	for rows.Next() {
		s := entity.RoutineStep{}
		if err = rows.Scan(&s.ID, &s.UserID, &s.Type, &s.StepOrder, &s.Description); err != nil {
			return nil, errors.New("routine row parsing error: " + err.Error())
		}
		steps = append(steps, &s)
	}
	if err = rows.Err(); err != nil {
		return nil, errors.New("unexpected routine rows error: " + err.Error())
	}
	return steps, nil
}

func (rr *RoutinesRepository) Add(ctx context.Context, step *entity.RoutineStep) (*entity.RoutineStep, error) {
	created := *step
	row := rr.conn.QueryRow(ctx,
		`INSERT INTO routine_steps (user_id, type, step_order, description) VALUES ($1, $2, $3, $4) RETURNING id;`,
		step.UserID, step.Type, step.StepOrder, step.Description,
	)
	if err := row.Scan(&created.ID); err != nil {
		if pgErrCode(err) == pgForeignKeyViolation {
			return nil, errorvalues.ErrUserNotFound
		}
		return nil, errors.New("adding routine step error: " + err.Error())
	}
	return &created, nil
}

// Replace never leaves a partially replaced routine visible: deletion and
// inserts share one transaction. Replaces of the same (user, type) routine
// are serialized by a transaction-scoped advisory lock.
func (rr *RoutinesRepository) Replace(ctx context.Context, uid uuid.UUID, routineType string, descriptions []string) ([]*entity.RoutineStep, error) {
	tx, err := rr.conn.Begin(ctx)
	if err != nil {
		return nil, errors.New("beginning transaction error: " + err.Error())
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext($1 || ':' || $2));`, uid.String(), routineType)
	if err != nil {
		return nil, errors.New("locking routine error: " + err.Error())
	}
	_, err = tx.Exec(ctx, `DELETE FROM routine_steps WHERE user_id = $1 AND type = $2;`, uid, routineType)
	if err != nil {
		return nil, errors.New("clearing routine error: " + err.Error())
	}
	steps := make([]*entity.RoutineStep, 0, len(descriptions))
	for i, desc := range descriptions {
		step := entity.RoutineStep{
			UserID:      uid,
			Type:        routineType,
			StepOrder:   i + 1,
			Description: desc,
		}
		row := tx.QueryRow(ctx,
			`INSERT INTO routine_steps (user_id, type, step_order, description) VALUES ($1, $2, $3, $4) RETURNING id;`,
			uid, routineType, step.StepOrder, desc,
		)
		if err = row.Scan(&step.ID); err != nil {
			if pgErrCode(err) == pgForeignKeyViolation {
				return nil, errorvalues.ErrUserNotFound
			}
			return nil, errors.New("inserting routine step error: " + err.Error())
		}
		steps = append(steps, &step)
	}
	if err = tx.Commit(ctx); err != nil {
		return nil, errors.New("committing routine error: " + err.Error())
	}
	return steps, nil
}
