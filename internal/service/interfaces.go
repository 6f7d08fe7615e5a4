package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/limbo/nexotime/pkg/entity"
)

//go:generate mockgen -source=interfaces.go -destination=mocks/service_mocks.go -package=mocks

type RegisterRequest struct {
	Email    string `validate:"required,email,max=255"`
	Password string `validate:"required,max=72"`
	Name     string `validate:"required,max=100"`
}

type CreateHabitRequest struct {
	Name string `validate:"required,max=100"`
	Icon string `validate:"max=16"`
}

type AddStepRequest struct {
	Type        string `validate:"routine_type"`
	StepOrder   int    `validate:"min=1"`
	Description string `validate:"required,max=500"`
}

type CreateReminderRequest struct {
	Type string `validate:"reminder_type"`
	Time string `validate:"clock"`
}

type UserServiceI interface {
	// Validates credentials, creates new account. Returns it with ID
	Register(ctx context.Context, req *RegisterRequest) (*entity.User, error)
	// Returns ErrWrongCredentials both for unknown email and wrong password
	Login(ctx context.Context, email, password string) (*entity.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*entity.User, error)
	// Deletes account with everything it owns after password confirmation
	DeleteAccount(ctx context.Context, id uuid.UUID, password string) error
}

type LinkServiceI interface {
	// Issues fresh 6-char code replacing the pending one
	IssueCode(ctx context.Context, uid uuid.UUID) (string, error)
	// Binds chatID to the owner of code. Code is single use
	RedeemCode(ctx context.Context, chatID, code string) (uuid.UUID, error)
	ResolveByChatID(ctx context.Context, chatID string) (uuid.UUID, error)
}

type HabitsServiceI interface {
	CreateHabit(ctx context.Context, uid uuid.UUID, req CreateHabitRequest) (*entity.Habit, error)
	ListHabits(ctx context.Context, uid uuid.UUID) ([]*entity.Habit, error)
	DeleteHabit(ctx context.Context, habitID, uid uuid.UUID) error
}

type LedgerServiceI interface {
	// Inserts or overwrites the (uid, habit, date) record
	UpsertCompletion(ctx context.Context, uid, habitID uuid.UUID, date time.Time, completed bool) (*entity.CompletionRecord, error)
	DaySummary(ctx context.Context, uid uuid.UUID, date time.Time) (*entity.DaySummary, error)
	// Seven day summaries from end backwards, most recent first
	WeekSummary(ctx context.Context, uid uuid.UUID, end time.Time) ([]*entity.DaySummary, error)
}

type RoutinesServiceI interface {
	GetRoutine(ctx context.Context, uid uuid.UUID, routineType string) ([]*entity.RoutineStep, error)
	AddStep(ctx context.Context, uid uuid.UUID, req AddStepRequest) (*entity.RoutineStep, error)
	ReplaceRoutine(ctx context.Context, uid uuid.UUID, routineType string, descriptions []string) ([]*entity.RoutineStep, error)
}

type RemindersServiceI interface {
	ListReminders(ctx context.Context, uid uuid.UUID) ([]*entity.Reminder, error)
	CreateReminder(ctx context.Context, uid uuid.UUID, req CreateReminderRequest) (*entity.Reminder, error)
	DeleteReminder(ctx context.Context, id, uid uuid.UUID) error
}

// AccountResolver turns a surface credential (bearer token, chat id) into
// the account id every service call is scoped to.
type AccountResolver interface {
	Resolve(ctx context.Context, key string) (uuid.UUID, error)
}

type TokenParser interface {
	Resolve(token string) (uuid.UUID, error)
}
