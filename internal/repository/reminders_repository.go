package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	errorvalues "github.com/limbo/nexotime/internal/error_values"
	"github.com/limbo/nexotime/pkg/entity"
)

type RemindersRepository struct {
	conn PgConnection
}

func NewRemindersRepo(conn PgConnection) *RemindersRepository {
	return &RemindersRepository{
		conn: conn,
	}
}

func (rr *RemindersRepository) List(ctx context.Context, uid uuid.UUID) ([]*entity.Reminder, error) {
	rows, err := rr.conn.Query(ctx, `SELECT id, user_id, type, time, active FROM reminders WHERE user_id = $1 ORDER BY time, id;`, uid)
	if err != nil {
		return nil, errors.New("listing reminders error: " + err.Error())
	}
	defer rows.Close()
	reminders := make([]*entity.Reminder, 0)
	for rows.Next() {
		r := entity.Reminder{}
		if err = rows.Scan(&r.ID, &r.UserID, &r.Type, &r.Time, &r.Active); err != nil {
			return nil, errors.New("reminder row parsing error: " + err.Error())
		}
		reminders = append(reminders, &r)
	}
	if err = rows.Err(); err != nil {
		return nil, errors.New("unexpected reminder rows error: " + err.Error())
	}
	return reminders, nil
}

func (rr *RemindersRepository) Create(ctx context.Context, reminder *entity.Reminder) (*entity.Reminder, error) {
	created := *reminder
	created.Active = true
	row := rr.conn.QueryRow(ctx,
		`INSERT INTO reminders (user_id, type, time) VALUES ($1, $2, $3) RETURNING id;`,
		reminder.UserID, reminder.Type, reminder.Time,
	)
	if err := row.Scan(&created.ID); err != nil {
		if pgErrCode(err) == pgForeignKeyViolation {
			return nil, errorvalues.ErrUserNotFound
		}
		return nil, errors.New("creating reminder error: " + err.Error())
	}
	return &created, nil
}

func (rr *RemindersRepository) Delete(ctx context.Context, id, uid uuid.UUID) error {
	ct, err := rr.conn.Exec(ctx, `DELETE FROM reminders WHERE id = $1 AND user_id = $2;`, id, uid)
	if err != nil {
		return errors.New("deleting reminder error: " + err.Error())
	}
	if ct.RowsAffected() == 0 {
		return errorvalues.ErrReminderNotFound
	}
	return nil
}
