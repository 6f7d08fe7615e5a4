package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	errorvalues "github.com/limbo/nexotime/internal/error_values"
	"github.com/limbo/nexotime/pkg/entity"
)

type UsersRepository struct {
	conn PgConnection
}

func NewUsersRepo(conn PgConnection) *UsersRepository {
	return &UsersRepository{
		conn: conn,
	}
}

func (ur *UsersRepository) Create(ctx context.Context, user *entity.User) (*entity.User, error) {
	if user == nil {
		return nil, errors.New("user is nil")
	}
	created := *user
	row := ur.conn.QueryRow(ctx,
		`INSERT INTO users (email, name, password_hash) VALUES ($1, $2, $3) RETURNING id, created_at;`,
		user.Email, user.Name, user.PasswordHash,
	)
	if err := row.Scan(&created.ID, &created.CreatedAt); err != nil {
		if pgErrCode(err) == pgUniqueViolation {
			return nil, errorvalues.ErrUserExists
		}
		return nil, errors.New("creating user db error: " + err.Error())
	}
	return &created, nil
}

func (ur *UsersRepository) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	row := ur.conn.QueryRow(ctx,
		`SELECT id, email, name, password_hash, COALESCE(telegram_id, ''), created_at FROM users WHERE email = $1;`,
		email,
	)
	return scanUser(row, "searching user by email error: ")
}

func (ur *UsersRepository) FindByID(ctx context.Context, uid uuid.UUID) (*entity.User, error) {
	row := ur.conn.QueryRow(ctx,
		`SELECT id, email, name, password_hash, COALESCE(telegram_id, ''), created_at FROM users WHERE id = $1;`,
		uid,
	)
	return scanUser(row, "searching user by id error: ")
}

func (ur *UsersRepository) FindByTelegramID(ctx context.Context, telegramID string) (*entity.User, error) {
	row := ur.conn.QueryRow(ctx,
		`SELECT id, email, name, password_hash, COALESCE(telegram_id, ''), created_at FROM users WHERE telegram_id = $1;`,
		telegramID,
	)
	user, err := scanUser(row, "searching user by telegram id error: ")
	if errors.Is(err, errorvalues.ErrUserNotFound) {
		return nil, errorvalues.ErrAccountNotLinked
	}
	return user, err
}

// SetLinkCode reports a collision with another account's pending code as
// ErrConflict so the caller can draw a new one.
func (ur *UsersRepository) SetLinkCode(ctx context.Context, uid uuid.UUID, code string) error {
	ct, err := ur.conn.Exec(ctx, `UPDATE users SET telegram_link_code = $1 WHERE id = $2;`, code, uid)
	if err != nil {
		if pgErrCode(err) == pgUniqueViolation {
			return errorvalues.ErrConflict
		}
		return errors.New("setting link code error: " + err.Error())
	}
	if ct.RowsAffected() == 0 {
		return errorvalues.ErrUserNotFound
	}
	return nil
}

// RedeemLinkCode matches, binds and clears in a single UPDATE, so two
// concurrent redemptions of one code can't both succeed: the second one
// re-checks the WHERE clause after the first commits and matches nothing.
func (ur *UsersRepository) RedeemLinkCode(ctx context.Context, code, telegramID string) (uuid.UUID, error) {
	var uid uuid.UUID
	row := ur.conn.QueryRow(ctx,
		`UPDATE users SET telegram_id = $1, telegram_link_code = NULL WHERE telegram_link_code = $2 RETURNING id;`,
		telegramID, code,
	)
	if err := row.Scan(&uid); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return uuid.UUID{}, errorvalues.ErrLinkCodeNotFound
		}
		if pgErrCode(err) == pgUniqueViolation {
			return uuid.UUID{}, errorvalues.ErrChatAlreadyLinked
		}
		return uuid.UUID{}, errors.New("redeeming link code error: " + err.Error())
	}
	return uid, nil
}

func (ur *UsersRepository) Delete(ctx context.Context, uid uuid.UUID) error {
	ct, err := ur.conn.Exec(ctx, `DELETE FROM users WHERE id = $1;`, uid)
	if err != nil {
		return errors.New("deleting user error: " + err.Error())
	}
	if ct.RowsAffected() == 0 {
		return errorvalues.ErrUserNotFound
	}
	return nil
}

func scanUser(row pgx.Row, errPrefix string) (*entity.User, error) {
	var user entity.User
	if err := row.Scan(&user.ID, &user.Email, &user.Name, &user.PasswordHash, &user.TelegramID, &user.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errorvalues.ErrUserNotFound
		}
		return nil, errors.New(errPrefix + err.Error())
	}
	return &user, nil
}
