package repository_test

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/google/uuid"
	errorvalues "github.com/limbo/nexotime/internal/error_values"
	"github.com/limbo/nexotime/internal/repository"
	"github.com/limbo/nexotime/pkg/entity"
	"github.com/pashagolub/pgxmock/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReminders(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	repo := repository.NewRemindersRepo(mock)
	ctx := context.Background()
	reminder := entity.Reminder{UserID: userID, Type: "morning", Time: "07:30"}
	rid := uuid.New()

	t.Run("create", func(t *testing.T) {
		mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO reminders (user_id, type, time) VALUES ($1, $2, $3) RETURNING id;`)).
			WithArgs(userID, reminder.Type, reminder.Time).
			WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(rid))
		created, err := repo.Create(ctx, &reminder)
		require.NoError(t, err)
		assert.Equal(t, rid, created.ID)
		assert.True(t, created.Active)
	})
	t.Run("list", func(t *testing.T) {
		mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, user_id, type, time, active FROM reminders WHERE user_id = $1 ORDER BY time, id;`)).
			WithArgs(userID).
			WillReturnRows(pgxmock.NewRows([]string{"id", "user_id", "type", "time", "active"}).
				AddRow(rid, userID, "morning", "07:30", true).
				AddRow(uuid.New(), userID, "night", "22:00", true))
		list, err := repo.List(ctx, userID)
		require.NoError(t, err)
		require.Len(t, list, 2)
		assert.Equal(t, "07:30", list[0].Time)
		assert.Equal(t, "night", list[1].Type)
	})

	deleteQuery := regexp.QuoteMeta(`DELETE FROM reminders WHERE id = $1 AND user_id = $2;`)
	testCases := []struct {
		Desc         string
		Error        error
		MockPrepFunc func()
	}{
		{
			Desc: "delete owned",
			MockPrepFunc: func() {
				mock.ExpectExec(deleteQuery).WithArgs(rid, userID).WillReturnResult(pgxmock.NewResult("DELETE", 1))
			},
		},
		{
			Desc:  "delete foreign or missing",
			Error: errorvalues.ErrReminderNotFound,
			MockPrepFunc: func() {
				mock.ExpectExec(deleteQuery).WithArgs(rid, userID).WillReturnResult(pgxmock.NewResult("DELETE", 0))
			},
		},
		{
			Desc:  "delete db error",
			Error: errors.New("deleting reminder error: db error"),
			MockPrepFunc: func() {
				mock.ExpectExec(deleteQuery).WithArgs(rid, userID).WillReturnError(errors.New("db error"))
			},
		},
	}
	for _, tc := range testCases {
		t.Run(tc.Desc, func(t *testing.T) {
			tc.MockPrepFunc()
			err := repo.Delete(ctx, rid, userID)
			if tc.Error != nil {
				assert.EqualError(t, err, tc.Error.Error())
			} else {
				assert.NoError(t, err)
			}
		})
	}
	assert.NoError(t, mock.ExpectationsWereMet())
}
