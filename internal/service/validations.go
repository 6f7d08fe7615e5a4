package service

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	errorvalues "github.com/limbo/nexotime/internal/error_values"
	"github.com/limbo/nexotime/pkg/entity"
)

// Package for custom validations
var (
	validate *validator.Validate
	once     sync.Once
)

var reminderTypes = map[string]struct{}{
	"morning": {},
	"habits":  {},
	"night":   {},
	"summary": {},
}

func InitValidator() {
	once.Do(func() {
		validate = validator.New()
		validate.RegisterValidation("routine_type", func(fl validator.FieldLevel) bool {
			return ValidRoutineType(fl.Field().String())
		})
		validate.RegisterValidation("reminder_type", func(fl validator.FieldLevel) bool {
			_, ok := reminderTypes[fl.Field().String()]
			return ok
		})
		// Zero padded 24h "HH:MM"
		validate.RegisterValidation("clock", func(fl validator.FieldLevel) bool {
			value := fl.Field().String()
			if len(value) != 5 {
				return false
			}
			_, err := time.Parse("15:04", value)
			return err == nil
		})
	})
}

func ValidRoutineType(t string) bool {
	return t == entity.RoutineMorning || t == entity.RoutineNight
}

// validateStruct reports validation failures under ErrValidation.
func validateStruct(s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) {
		fields := make([]string, 0, len(fieldErrs))
		for _, fe := range fieldErrs {
			fields = append(fields, fmt.Sprintf("%s failed on '%s'", fe.Field(), fe.Tag()))
		}
		return fmt.Errorf("%w: %s", errorvalues.ErrValidation, strings.Join(fields, "; "))
	}
	return errors.New("validation unexpected error: " + err.Error())
}
