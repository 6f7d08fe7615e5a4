package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	errorvalues "github.com/limbo/nexotime/internal/error_values"
	"github.com/limbo/nexotime/internal/repository"
	"github.com/limbo/nexotime/pkg/entity"
)

const maxStepDescription = 500

type RoutinesService struct {
	repo repository.RoutinesRepositoryI
}

func NewRoutinesService(routinesRepo repository.RoutinesRepositoryI) *RoutinesService {
	return &RoutinesService{
		repo: routinesRepo,
	}
}

func (rs *RoutinesService) GetRoutine(ctx context.Context, uid uuid.UUID, routineType string) ([]*entity.RoutineStep, error) {
	if !ValidRoutineType(routineType) {
		return nil, errorvalues.ErrInvalidRoutineType
	}
	steps, err := rs.repo.List(ctx, uid, routineType)
	if err != nil {
		return nil, errors.New("routines repository error: " + err.Error())
	}
	return steps, nil
}

func (rs *RoutinesService) AddStep(ctx context.Context, uid uuid.UUID, req AddStepRequest) (*entity.RoutineStep, error) {
	if !ValidRoutineType(req.Type) {
		return nil, errorvalues.ErrInvalidRoutineType
	}
	req.Description = strings.TrimSpace(req.Description)
	if err := validateStruct(req); err != nil {
		return nil, err
	}
	step, err := rs.repo.Add(ctx, &entity.RoutineStep{
		UserID:      uid,
		Type:        req.Type,
		StepOrder:   req.StepOrder,
		Description: req.Description,
	})
	if err != nil {
		if errors.Is(err, errorvalues.ErrUserNotFound) {
			return nil, err
		}
		return nil, errors.New("routines repository error: " + err.Error())
	}
	return step, nil
}

// ReplaceRoutine swaps the whole routine for descriptions, numbered from 1 in
// the given order. Blank descriptions are dropped.
func (rs *RoutinesService) ReplaceRoutine(ctx context.Context, uid uuid.UUID, routineType string, descriptions []string) ([]*entity.RoutineStep, error) {
	if !ValidRoutineType(routineType) {
		return nil, errorvalues.ErrInvalidRoutineType
	}
	cleaned := make([]string, 0, len(descriptions))
	for i, d := range descriptions {
		d = strings.TrimSpace(d)
		if d == "" {
			continue
		}
		if utf8.RuneCountInString(d) > maxStepDescription {
			return nil, fmt.Errorf("%w: step %d is longer than %d characters", errorvalues.ErrValidation, i+1, maxStepDescription)
		}
		cleaned = append(cleaned, d)
	}
	steps, err := rs.repo.Replace(ctx, uid, routineType, cleaned)
	if err != nil {
		if errors.Is(err, errorvalues.ErrUserNotFound) {
			return nil, err
		}
		return nil, errors.New("routines repository error: " + err.Error())
	}
	return steps, nil
}
