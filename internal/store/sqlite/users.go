package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/brainiac5/brainiac-server/internal/domain"
	"github.com/brainiac5/brainiac-server/internal/store"
)

// userColumns is the ordered list of columns selected in user queries.
// Must match the scan order in scanUser.
const userColumns = `id, email, sealed_secret, created_at, updated_at, last_login_at`

func scanUser(scanner interface{ Scan(dest ...any) error }) (*domain.User, error) {
	var (
		u           domain.User
		createdAt   string
		updatedAt   string
		lastLoginAt sql.NullString
	)

	if err := scanner.Scan(&u.ID, &u.Email, &u.SealedSecret, &createdAt, &updatedAt, &lastLoginAt); err != nil {
		return nil, err
	}

	var err error
	u.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	u.UpdatedAt, err = parseTime(updatedAt)
	if err != nil {
		return nil, err
	}
	u.LastLoginAt, err = parseNullableTime(lastLoginAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// UpsertUser inserts a user or, when the email is already enrolled, replaces
// its sealed secret. On return user carries the stored ID and CreatedAt.
func (s *Store) UpsertUser(ctx context.Context, user *domain.User) error {
	if user.Email == "" || len(user.SealedSecret) == 0 {
		return store.ErrInvalidInput.WithMessage("user needs an email and a sealed secret")
	}

	row := s.db.QueryRowContext(ctx, `
		INSERT INTO users (id, email, sealed_secret, created_at, updated_at, last_login_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(email) DO UPDATE SET
			sealed_secret = excluded.sealed_secret,
			updated_at = excluded.updated_at
		RETURNING `+userColumns,
		user.ID,
		user.Email,
		user.SealedSecret,
		formatTime(user.CreatedAt),
		formatTime(user.UpdatedAt),
		nullTimeString(user.LastLoginAt),
	)

	stored, err := scanUser(row)
	if isUniqueViolation(err) {
		return store.ErrAlreadyExists.WithMessagef("user %q already exists", user.ID)
	}
	if err != nil {
		return err
	}
	*user = *stored
	return nil
}

// GetUser retrieves a user by ID.
// Returns store.ErrNotFound if the user does not exist.
func (s *Store) GetUser(ctx context.Context, id string) (*domain.User, error) {
	u, err := scanUser(s.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound.WithMessage("user not found")
	}
	return u, err
}

// GetUserByEmail retrieves a user by normalized email.
// Returns store.ErrNotFound if no user is enrolled with that email.
func (s *Store) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	u, err := scanUser(s.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE email = ?`, email))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound.WithMessage("user not found")
	}
	return u, err
}

// TouchUserLogin records a successful login.
// Returns store.ErrNotFound if the user does not exist.
func (s *Store) TouchUserLogin(ctx context.Context, id string, at time.Time) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE users SET last_login_at = ? WHERE id = ?`, formatTime(at), id)
	if err != nil {
		return err
	}
	return requireAffected(result, store.ErrNotFound.WithMessage("user not found"))
}
