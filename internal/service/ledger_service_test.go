package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	errorvalues "github.com/limbo/nexotime/internal/error_values"
	"github.com/limbo/nexotime/internal/repository/mocks"
	"github.com/limbo/nexotime/internal/service"
	"github.com/limbo/nexotime/pkg/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpsertCompletion(t *testing.T) {
	t.Parallel()
	ctrl := gomock.NewController(t)
	habitsRepo := mocks.NewMockHabitsRepositoryI(ctrl)
	completionsRepo := mocks.NewMockCompletionsRepositoryI(ctrl)
	ledger := service.NewLedgerService(habitsRepo, completionsRepo)
	uid, habitID := uuid.New(), uuid.New()
	day := time.Date(2025, 2, 19, 0, 0, 0, 0, time.UTC)

	testCases := []struct {
		Desc         string
		Date         time.Time
		Completed    bool
		Error        error
		MockPrepFunc func()
	}{
		{
			Desc:      "stores calendar date",
			Date:      day.Add(17 * time.Hour),
			Completed: true,
			MockPrepFunc: func() {
				habitsRepo.EXPECT().GetOwned(gomock.Any(), habitID, uid).Return(&entity.Habit{ID: habitID, UserID: uid}, nil)
				completionsRepo.EXPECT().Upsert(gomock.Any(), &entity.CompletionRecord{
					UserID: uid, HabitID: habitID, Date: day, Completed: true,
				}).Return(&entity.CompletionRecord{ID: 1, UserID: uid, HabitID: habitID, Date: day, Completed: true}, nil)
			},
		},
		{
			Desc:      "foreign or missing habit",
			Date:      day,
			Completed: true,
			Error:     errorvalues.ErrHabitNotFound,
			MockPrepFunc: func() {
				habitsRepo.EXPECT().GetOwned(gomock.Any(), habitID, uid).Return(nil, errorvalues.ErrHabitNotFound)
			},
		},
		{
			Desc:      "repository error",
			Date:      day,
			Completed: false,
			Error:     errors.New("completions repository error: db error"),
			MockPrepFunc: func() {
				habitsRepo.EXPECT().GetOwned(gomock.Any(), habitID, uid).Return(&entity.Habit{ID: habitID, UserID: uid}, nil)
				completionsRepo.EXPECT().Upsert(gomock.Any(), gomock.Any()).Return(nil, errors.New("db error"))
			},
		},
	}
	for _, tc := range testCases {
		tc.MockPrepFunc()
		rec, err := ledger.UpsertCompletion(context.Background(), uid, habitID, tc.Date, tc.Completed)
		if tc.Error != nil {
			assert.EqualError(t, err, tc.Error.Error(), tc.Desc)
			continue
		}
		require.NoError(t, err, tc.Desc)
		assert.Equal(t, day, rec.Date)
		assert.Equal(t, tc.Completed, rec.Completed)
	}
}

func TestDaySummary(t *testing.T) {
	t.Parallel()
	uid := uuid.New()
	day := time.Date(2025, 2, 19, 0, 0, 0, 0, time.UTC)
	habits := []*entity.Habit{
		{ID: uuid.New(), UserID: uid, Name: "Read", Icon: "📚", Active: true},
		{ID: uuid.New(), UserID: uid, Name: "Run", Icon: "🏃", Active: true},
		{ID: uuid.New(), UserID: uid, Name: "Meditate", Icon: "🧘", Active: true},
	}
	testCases := []struct {
		Desc       string
		Habits     []*entity.Habit
		Records    []*entity.CompletionRecord
		Completed  int
		Percentage float64
		Flags      []bool
	}{
		{
			Desc:   "two of three",
			Habits: habits,
			Records: []*entity.CompletionRecord{
				{HabitID: habits[0].ID, Date: day, Completed: true},
				{HabitID: habits[2].ID, Date: day, Completed: true},
			},
			Completed:  2,
			Percentage: 66.7,
			Flags:      []bool{true, false, true},
		},
		{
			Desc:   "record with completed=false counts as pending",
			Habits: habits,
			Records: []*entity.CompletionRecord{
				{HabitID: habits[1].ID, Date: day, Completed: false},
			},
			Completed:  0,
			Percentage: 0,
			Flags:      []bool{false, false, false},
		},
		{
			Desc:   "all done",
			Habits: habits[:1],
			Records: []*entity.CompletionRecord{
				{HabitID: habits[0].ID, Date: day, Completed: true},
			},
			Completed:  1,
			Percentage: 100,
			Flags:      []bool{true},
		},
		{
			Desc:       "no active habits",
			Habits:     []*entity.Habit{},
			Records:    []*entity.CompletionRecord{},
			Completed:  0,
			Percentage: 0,
			Flags:      []bool{},
		},
	}
	for _, tc := range testCases {
		t.Run(tc.Desc, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			habitsRepo := mocks.NewMockHabitsRepositoryI(ctrl)
			completionsRepo := mocks.NewMockCompletionsRepositoryI(ctrl)
			ledger := service.NewLedgerService(habitsRepo, completionsRepo)
			habitsRepo.EXPECT().ListActive(gomock.Any(), uid).Return(tc.Habits, nil)
			completionsRepo.EXPECT().ListByDateRange(gomock.Any(), uid, day, day).Return(tc.Records, nil)

			summary, err := ledger.DaySummary(context.Background(), uid, day.Add(9*time.Hour))
			require.NoError(t, err)
			assert.Equal(t, day, summary.Date)
			assert.Equal(t, len(tc.Habits), summary.Total)
			assert.Equal(t, tc.Completed, summary.Completed)
			assert.Equal(t, tc.Percentage, summary.Percentage)
			require.Len(t, summary.Habits, len(tc.Flags))
			for i, flag := range tc.Flags {
				assert.Equal(t, tc.Habits[i].ID, summary.Habits[i].HabitID)
				assert.Equal(t, flag, summary.Habits[i].Completed)
			}
		})
	}
}

func TestWeekSummary(t *testing.T) {
	t.Parallel()
	ctrl := gomock.NewController(t)
	habitsRepo := mocks.NewMockHabitsRepositoryI(ctrl)
	completionsRepo := mocks.NewMockCompletionsRepositoryI(ctrl)
	ledger := service.NewLedgerService(habitsRepo, completionsRepo)
	uid := uuid.New()
	end := time.Date(2025, 3, 2, 0, 0, 0, 0, time.UTC)
	start := time.Date(2025, 2, 24, 0, 0, 0, 0, time.UTC)
	read := &entity.Habit{ID: uuid.New(), UserID: uid, Name: "Read", Active: true}

	habitsRepo.EXPECT().ListActive(gomock.Any(), uid).Return([]*entity.Habit{read}, nil)
	completionsRepo.EXPECT().ListByDateRange(gomock.Any(), uid, start, end).Return([]*entity.CompletionRecord{
		{HabitID: read.ID, Date: end, Completed: true},
		{HabitID: read.ID, Date: start, Completed: true},
	}, nil)

	week, err := ledger.WeekSummary(context.Background(), uid, end)
	require.NoError(t, err)
	require.Len(t, week, 7)
	for i, day := range week {
		assert.Equal(t, end.AddDate(0, 0, -i), day.Date, "most recent first")
		assert.Equal(t, 1, day.Total)
	}
	assert.Equal(t, 100.0, week[0].Percentage)
	assert.Equal(t, 100.0, week[6].Percentage)
	for _, day := range week[1:6] {
		assert.Equal(t, 0.0, day.Percentage)
	}
}

func TestWeekSummaryRepositoryError(t *testing.T) {
	t.Parallel()
	ctrl := gomock.NewController(t)
	habitsRepo := mocks.NewMockHabitsRepositoryI(ctrl)
	completionsRepo := mocks.NewMockCompletionsRepositoryI(ctrl)
	ledger := service.NewLedgerService(habitsRepo, completionsRepo)
	uid := uuid.New()

	habitsRepo.EXPECT().ListActive(gomock.Any(), uid).Return(nil, errors.New("db error"))
	_, err := ledger.WeekSummary(context.Background(), uid, time.Now())
	assert.EqualError(t, err, "habits repository error: db error")
}

func TestPercentage(t *testing.T) {
	t.Parallel()
	cases := []struct {
		completed, total int
		want             float64
	}{
		{0, 0, 0},
		{0, 4, 0},
		{1, 3, 33.3},
		{2, 3, 66.7},
		{1, 8, 12.5},
		{1, 16, 6.2},
		{5, 16, 31.2},
		{9, 16, 56.2},
		{3, 16, 18.8},
		{3, 3, 100},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, service.Percentage(c.completed, c.total), "%d/%d", c.completed, c.total)
	}
}
