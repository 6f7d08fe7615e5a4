package errorvalues

import (
	"errors"
	"fmt"
)

// Categories. Every sentinel below wraps exactly one of them, so surfaces
// classify outcomes with errors.Is against the category only.
var (
	ErrValidation   = errors.New("validation error")
	ErrUnauthorized = errors.New("unauthorized")
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
)

var (
	ErrUserExists       = fmt.Errorf("%w: user with such email already exists", ErrConflict)
	ErrUserNotFound     = fmt.Errorf("%w: user doesn't exist", ErrNotFound)
	ErrWrongCredentials = fmt.Errorf("%w: wrong email or password", ErrUnauthorized)
	ErrInvalidToken     = fmt.Errorf("%w: invalid or expired token", ErrUnauthorized)
	ErrWeakPassword     = fmt.Errorf("%w: password must be at least 6 characters", ErrValidation)

	ErrLinkCodeNotFound  = fmt.Errorf("%w: link code is invalid or already used", ErrNotFound)
	ErrAccountNotLinked  = fmt.Errorf("%w: no account linked to this chat", ErrNotFound)
	ErrChatAlreadyLinked = fmt.Errorf("%w: chat is already linked to another account", ErrConflict)

	ErrHabitNotFound = fmt.Errorf("%w: habit doesn't exist", ErrNotFound)

	ErrInvalidRoutineType = fmt.Errorf("%w: routine type must be 'morning' or 'night'", ErrValidation)
	ErrInvalidReminder    = fmt.Errorf("%w: invalid reminder", ErrValidation)
	ErrReminderNotFound   = fmt.Errorf("%w: reminder doesn't exist", ErrNotFound)
)

// Category returns the category sentinel err belongs to, or nil for
// unclassified (internal) errors.
func Category(err error) error {
	for _, c := range []error{ErrValidation, ErrUnauthorized, ErrNotFound, ErrConflict} {
		if errors.Is(err, c) {
			return c
		}
	}
	return nil
}
