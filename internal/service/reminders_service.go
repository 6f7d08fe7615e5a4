package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	errorvalues "github.com/limbo/nexotime/internal/error_values"
	"github.com/limbo/nexotime/internal/repository"
	"github.com/limbo/nexotime/pkg/entity"
)

// RemindersService only stores reminder preferences; nothing fires them.
type RemindersService struct {
	repo repository.RemindersRepositoryI
}

func NewRemindersService(remindersRepo repository.RemindersRepositoryI) *RemindersService {
	return &RemindersService{
		repo: remindersRepo,
	}
}

func (rs *RemindersService) ListReminders(ctx context.Context, uid uuid.UUID) ([]*entity.Reminder, error) {
	reminders, err := rs.repo.List(ctx, uid)
	if err != nil {
		return nil, errors.New("reminders repository error: " + err.Error())
	}
	return reminders, nil
}

func (rs *RemindersService) CreateReminder(ctx context.Context, uid uuid.UUID, req CreateReminderRequest) (*entity.Reminder, error) {
	if err := validate.Struct(req); err != nil {
		return nil, errorvalues.ErrInvalidReminder
	}
	reminder, err := rs.repo.Create(ctx, &entity.Reminder{
		UserID: uid,
		Type:   req.Type,
		Time:   req.Time,
	})
	if err != nil {
		if errors.Is(err, errorvalues.ErrUserNotFound) {
			return nil, err
		}
		return nil, errors.New("reminders repository error: " + err.Error())
	}
	return reminder, nil
}

func (rs *RemindersService) DeleteReminder(ctx context.Context, id, uid uuid.UUID) error {
	err := rs.repo.Delete(ctx, id, uid)
	if err != nil {
		if errors.Is(err, errorvalues.ErrReminderNotFound) {
			return err
		}
		return errors.New("reminders repository error: " + err.Error())
	}
	return nil
}
