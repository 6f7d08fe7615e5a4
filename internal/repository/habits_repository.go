package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	errorvalues "github.com/limbo/nexotime/internal/error_values"
	"github.com/limbo/nexotime/pkg/entity"
)

type HabitsRepository struct {
	conn PgConnection
}

func NewHabitsRepo(conn PgConnection) *HabitsRepository {
	return &HabitsRepository{
		conn: conn,
	}
}

func (hr *HabitsRepository) Create(ctx context.Context, habit *entity.Habit) (*entity.Habit, error) {
	created := *habit
	created.Active = true
	row := hr.conn.QueryRow(ctx, `INSERT INTO habits (user_id, name, icon) VALUES ($1, $2, $3) RETURNING id;`,
		habit.UserID,
		habit.Name,
		habit.Icon,
	)
	if err := row.Scan(&created.ID); err != nil {
		if pgErrCode(err) == pgForeignKeyViolation {
			return nil, errorvalues.ErrUserNotFound
		}
		return nil, errors.New("creating habit db error: " + err.Error())
	}
	return &created, nil
}

func (hr *HabitsRepository) GetOwned(ctx context.Context, id, uid uuid.UUID) (*entity.Habit, error) {
	var habit entity.Habit
	row := hr.conn.QueryRow(ctx, `SELECT id, user_id, name, icon, active FROM habits WHERE id = $1 AND user_id = $2;`, id, uid)
	if err := row.Scan(&habit.ID, &habit.UserID, &habit.Name, &habit.Icon, &habit.Active); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errorvalues.ErrHabitNotFound
		}
		return nil, errors.New("getting habit by id error: " + err.Error())
	}
	return &habit, nil
}

func (hr *HabitsRepository) ListActive(ctx context.Context, uid uuid.UUID) ([]*entity.Habit, error) {
	habits := make([]*entity.Habit, 0)
	rows, err := hr.conn.Query(ctx, `SELECT id, user_id, name, icon, active
		FROM habits WHERE user_id = $1 AND active ORDER BY created_at, id;`, uid)
	if err != nil {
		return nil, errors.New("getting habits by uid error: " + err.Error())
	}
	defer rows.Close()
	for rows.Next() {
		h := entity.Habit{}
		err = rows.Scan(&h.ID, &h.UserID, &h.Name, &h.Icon, &h.Active)
		if err != nil {
			return nil, errors.New("unmarshalling habit error: " + err.Error())
		}
		habits = append(habits, &h)
	}
	if err = rows.Err(); err != nil {
		return nil, errors.New("unexpected error after scanning: " + err.Error())
	}
	return habits, nil
}

func (hr *HabitsRepository) Deactivate(ctx context.Context, id, uid uuid.UUID) error {
	ct, err := hr.conn.Exec(ctx, `UPDATE habits SET active = FALSE WHERE id = $1 AND user_id = $2;`, id, uid)
	if err != nil {
		return errors.New("error deactivating habit: " + err.Error())
	}
	if ct.RowsAffected() == 0 {
		return errorvalues.ErrHabitNotFound
	}
	return nil
}
