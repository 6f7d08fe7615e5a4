package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	errorvalues "github.com/limbo/nexotime/internal/error_values"
	"github.com/limbo/nexotime/internal/repository/mocks"
	"github.com/limbo/nexotime/internal/service"
	"github.com/limbo/nexotime/pkg/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateHabit(t *testing.T) {
	t.Parallel()
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockHabitsRepositoryI(ctrl)
	hs := service.NewHabitsService(repo)
	uid := uuid.New()
	hid := uuid.New()

	testCases := []struct {
		Desc         string
		Req          service.CreateHabitRequest
		Error        error
		MockPrepFunc func()
	}{
		{
			Desc: "default icon",
			Req:  service.CreateHabitRequest{Name: " Read "},
			MockPrepFunc: func() {
				repo.EXPECT().Create(gomock.Any(), &entity.Habit{UserID: uid, Name: "Read", Icon: entity.DefaultHabitIcon}).
					Return(&entity.Habit{ID: hid, UserID: uid, Name: "Read", Icon: entity.DefaultHabitIcon, Active: true}, nil)
			},
		},
		{
			Desc: "custom icon",
			Req:  service.CreateHabitRequest{Name: "Read", Icon: "📚"},
			MockPrepFunc: func() {
				repo.EXPECT().Create(gomock.Any(), &entity.Habit{UserID: uid, Name: "Read", Icon: "📚"}).
					Return(&entity.Habit{ID: hid, UserID: uid, Name: "Read", Icon: "📚", Active: true}, nil)
			},
		},
		{
			Desc:         "empty name",
			Req:          service.CreateHabitRequest{Name: "   "},
			Error:        errorvalues.ErrValidation,
			MockPrepFunc: func() {},
		},
		{
			Desc:  "owner vanished",
			Req:   service.CreateHabitRequest{Name: "Read"},
			Error: errorvalues.ErrUserNotFound,
			MockPrepFunc: func() {
				repo.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil, errorvalues.ErrUserNotFound)
			},
		},
	}
	for _, tc := range testCases {
		tc.MockPrepFunc()
		habit, err := hs.CreateHabit(context.Background(), uid, tc.Req)
		if tc.Error != nil {
			assert.ErrorIs(t, err, tc.Error, tc.Desc)
			continue
		}
		require.NoError(t, err, tc.Desc)
		assert.Equal(t, hid, habit.ID)
		assert.True(t, habit.Active)
	}
}

func TestListHabits(t *testing.T) {
	t.Parallel()
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockHabitsRepositoryI(ctrl)
	hs := service.NewHabitsService(repo)
	uid := uuid.New()
	habits := []*entity.Habit{{ID: uuid.New(), UserID: uid, Name: "Read", Active: true}}

	repo.EXPECT().ListActive(gomock.Any(), uid).Return(habits, nil)
	res, err := hs.ListHabits(context.Background(), uid)
	require.NoError(t, err)
	assert.Equal(t, habits, res)

	repo.EXPECT().ListActive(gomock.Any(), uid).Return(nil, errors.New("db error"))
	_, err = hs.ListHabits(context.Background(), uid)
	assert.EqualError(t, err, "habits repository error: db error")
}

func TestDeleteHabit(t *testing.T) {
	t.Parallel()
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockHabitsRepositoryI(ctrl)
	hs := service.NewHabitsService(repo)
	uid, hid := uuid.New(), uuid.New()

	testCases := []struct {
		Desc         string
		Error        error
		MockPrepFunc func()
	}{
		{
			Desc: "deactivated",
			MockPrepFunc: func() {
				repo.EXPECT().Deactivate(gomock.Any(), hid, uid).Return(nil)
			},
		},
		{
			Desc:  "not owned",
			Error: errorvalues.ErrHabitNotFound,
			MockPrepFunc: func() {
				repo.EXPECT().Deactivate(gomock.Any(), hid, uid).Return(errorvalues.ErrHabitNotFound)
			},
		},
		{
			Desc:  "repository error",
			Error: errors.New("habits repository error: db error"),
			MockPrepFunc: func() {
				repo.EXPECT().Deactivate(gomock.Any(), hid, uid).Return(errors.New("db error"))
			},
		},
	}
	for _, tc := range testCases {
		tc.MockPrepFunc()
		err := hs.DeleteHabit(context.Background(), hid, uid)
		if tc.Error != nil {
			assert.EqualError(t, err, tc.Error.Error(), tc.Desc)
		} else {
			assert.NoError(t, err, tc.Desc)
		}
	}
}
