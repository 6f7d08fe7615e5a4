package entity

import (
	"time"

	"github.com/google/uuid"
)

const (
	RoutineMorning = "morning"
	RoutineNight   = "night"

	DefaultHabitIcon = "✅"
)

type User struct {
	ID           uuid.UUID
	Email        string
	Name         string
	PasswordHash string
	// Empty when no chat is bound
	TelegramID string
	CreatedAt  time.Time
}

func (u *User) TelegramLinked() bool {
	return u.TelegramID != ""
}

type Habit struct {
	ID     uuid.UUID `json:"id"`
	UserID uuid.UUID `json:"-"`
	Name   string    `json:"name"`
	Icon   string    `json:"icon"`
	Active bool      `json:"active"`
}

type RoutineStep struct {
	ID          uuid.UUID `json:"id"`
	UserID      uuid.UUID `json:"-"`
	Type        string    `json:"type"`
	StepOrder   int       `json:"step_order"`
	Description string    `json:"description"`
}

type Reminder struct {
	ID     uuid.UUID `json:"id"`
	UserID uuid.UUID `json:"-"`
	Type   string    `json:"type"`
	Time   string    `json:"time"`
	Active bool      `json:"active"`
}

type CompletionRecord struct {
	ID        int64     `json:"id"`
	UserID    uuid.UUID `json:"-"`
	HabitID   uuid.UUID `json:"habit_id"`
	Date      time.Time `json:"date"`
	Completed bool      `json:"completed"`
}

type HabitStatus struct {
	HabitID   uuid.UUID `json:"habit_id"`
	Name      string    `json:"name"`
	Icon      string    `json:"icon"`
	Completed bool      `json:"completed"`
}

type DaySummary struct {
	Date       time.Time     `json:"date"`
	Total      int           `json:"total_habits"`
	Completed  int           `json:"completed"`
	Percentage float64       `json:"percentage"`
	Habits     []HabitStatus `json:"habits_detail"`
}

// Day truncates t to its calendar date in t's location and returns it as
// midnight UTC, which is how dates are stored.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
