package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/limbo/nexotime/pkg/entity"
)

//go:generate mockgen -source=interfaces.go -destination=mocks/repository_mocks.go -package=mocks

type UsersRepositoryI interface {
	// Creates new user, returns it with generated ID
	Create(ctx context.Context, user *entity.User) (*entity.User, error)
	// Looks up user by email. Used for login
	FindByEmail(ctx context.Context, email string) (*entity.User, error)
	// Looks up user by uid. Used by bearer resolving
	FindByID(ctx context.Context, uid uuid.UUID) (*entity.User, error)
	// Looks up user bound to telegram chat identity
	FindByTelegramID(ctx context.Context, telegramID string) (*entity.User, error)
	// Overwrites pending link code of user
	SetLinkCode(ctx context.Context, uid uuid.UUID, code string) error
	// Binds telegramID to the owner of pending code and clears the code in one statement
	RedeemLinkCode(ctx context.Context, code, telegramID string) (uuid.UUID, error)
	// Deletes user with everything it owns
	Delete(ctx context.Context, uid uuid.UUID) error
}

type HabitsRepositoryI interface {
	Create(ctx context.Context, habit *entity.Habit) (*entity.Habit, error)
	// Searches habit with given id owned by uid, active or not
	GetOwned(ctx context.Context, id, uid uuid.UUID) (*entity.Habit, error)
	// Lists active habits of uid in creation order
	ListActive(ctx context.Context, uid uuid.UUID) ([]*entity.Habit, error)
	// Soft deletes habit
	Deactivate(ctx context.Context, id, uid uuid.UUID) error
}

type CompletionsRepositoryI interface {
	// Inserts record or overwrites completed flag of existing (user, habit, date) record
	Upsert(ctx context.Context, rec *entity.CompletionRecord) (*entity.CompletionRecord, error)
	// Lists records of uid with date in [from, to]
	ListByDateRange(ctx context.Context, uid uuid.UUID, from, to time.Time) ([]*entity.CompletionRecord, error)
}

type RoutinesRepositoryI interface {
	List(ctx context.Context, uid uuid.UUID, routineType string) ([]*entity.RoutineStep, error)
	Add(ctx context.Context, step *entity.RoutineStep) (*entity.RoutineStep, error)
	// Replaces all steps of routineType in one transaction, numbering them from 1
	Replace(ctx context.Context, uid uuid.UUID, routineType string, descriptions []string) ([]*entity.RoutineStep, error)
}

type RemindersRepositoryI interface {
	List(ctx context.Context, uid uuid.UUID) ([]*entity.Reminder, error)
	Create(ctx context.Context, reminder *entity.Reminder) (*entity.Reminder, error)
	Delete(ctx context.Context, id, uid uuid.UUID) error
}

type DBConfig interface {
	ConnString() string
}

type PgConnection interface {
	Ping(ctx context.Context) error
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Begin(ctx context.Context) (pgx.Tx, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type PGCfg struct {
	Address  string
	Username string
	Password string
	DB       string
	SSLMode  string
}

func (pgcfg *PGCfg) ConnString() string {
	sslMode := pgcfg.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	return fmt.Sprintf("postgresql://%s:%s@%s/%s?sslmode=%s", pgcfg.Username, pgcfg.Password, pgcfg.Address, pgcfg.DB, sslMode)
}
