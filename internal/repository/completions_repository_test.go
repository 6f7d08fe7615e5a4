package repository_test

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	errorvalues "github.com/limbo/nexotime/internal/error_values"
	"github.com/limbo/nexotime/internal/repository"
	"github.com/limbo/nexotime/pkg/entity"
	"github.com/pashagolub/pgxmock/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpsertCompletion(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	repo := repository.NewCompletionsRepo(mock)
	query := regexp.QuoteMeta(`ON CONFLICT (user_id, habit_id, log_date) DO UPDATE SET completed = EXCLUDED.completed`)
	habitID := uuid.New()
	// afternoon timestamp is stored as its calendar date
	logged := time.Date(2025, 2, 19, 15, 30, 0, 0, time.UTC)
	day := time.Date(2025, 2, 19, 0, 0, 0, 0, time.UTC)
	testCases := []struct {
		Desc         string
		Error        error
		Completed    bool
		MockPrepFunc func()
	}{
		{
			Desc:      "first log inserts",
			Completed: true,
			MockPrepFunc: func() {
				mock.ExpectQuery(query).
					WithArgs(userID, habitID, day, true).
					WillReturnRows(pgxmock.NewRows([]string{"id", "completed"}).AddRow(int64(7), true))
			},
		},
		{
			Desc:      "second log updates same row",
			Completed: false,
			MockPrepFunc: func() {
				mock.ExpectQuery(query).
					WithArgs(userID, habitID, day, false).
					WillReturnRows(pgxmock.NewRows([]string{"id", "completed"}).AddRow(int64(7), false))
			},
		},
		{
			Desc:      "habit vanished",
			Error:     errorvalues.ErrHabitNotFound,
			Completed: true,
			MockPrepFunc: func() {
				mock.ExpectQuery(query).
					WithArgs(userID, habitID, day, true).
					WillReturnError(&pgconn.PgError{Code: "23503"})
			},
		},
		{
			Desc:      "db error",
			Error:     errors.New("upserting completion error: db error"),
			Completed: true,
			MockPrepFunc: func() {
				mock.ExpectQuery(query).
					WithArgs(userID, habitID, day, true).
					WillReturnError(errors.New("db error"))
			},
		},
	}
	for _, tc := range testCases {
		t.Run(tc.Desc, func(t *testing.T) {
			tc.MockPrepFunc()
			rec, err := repo.Upsert(context.Background(), &entity.CompletionRecord{
				UserID:    userID,
				HabitID:   habitID,
				Date:      logged,
				Completed: tc.Completed,
			})
			if tc.Error != nil {
				assert.EqualError(t, err, tc.Error.Error())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, int64(7), rec.ID)
			assert.Equal(t, day, rec.Date)
			assert.Equal(t, tc.Completed, rec.Completed)
		})
	}
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListCompletionsByDateRange(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	repo := repository.NewCompletionsRepo(mock)
	query := regexp.QuoteMeta(`FROM habit_logs WHERE user_id = $1 AND log_date >= $2 AND log_date <= $3;`)
	to := time.Date(2025, 2, 19, 0, 0, 0, 0, time.UTC)
	from := to.AddDate(0, 0, -6)
	habitID := uuid.New()
	records := []entity.CompletionRecord{
		{ID: 1, UserID: userID, HabitID: habitID, Date: from, Completed: true},
		{ID: 2, UserID: userID, HabitID: habitID, Date: to, Completed: false},
	}
	t.Run("success", func(t *testing.T) {
		rows := pgxmock.NewRows([]string{"id", "user_id", "habit_id", "log_date", "completed"})
		for _, r := range records {
			rows.AddRow(r.ID, r.UserID, r.HabitID, r.Date, r.Completed)
		}
		mock.ExpectQuery(query).WithArgs(userID, from, to).WillReturnRows(rows)
		result, err := repo.ListByDateRange(context.Background(), userID, from, to)
		require.NoError(t, err)
		require.Len(t, result, len(records))
		for i := range records {
			assert.Equal(t, records[i], *result[i])
		}
	})
	t.Run("db error", func(t *testing.T) {
		mock.ExpectQuery(query).WithArgs(userID, from, to).WillReturnError(errors.New("db error"))
		_, err := repo.ListByDateRange(context.Background(), userID, from, to)
		assert.EqualError(t, err, "getting completions for period error: db error")
	})
}
