package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/nudgely/auth-service/internal/auth/domain"
)

type UserRepository struct {
	db PgxPool
}

func NewUserRepository(db PgxPool) *UserRepository {
	return &UserRepository{db: db}
}

const userColumns = `id, email, password_hash, status, failed_login_attempts, locked_until, email_verified_at, created_at, updated_at`

func scanUser(row pgx.Row) (*domain.User, error) {
	var user domain.User
	var passwordHash *string
	err := row.Scan(&user.ID, &user.Email, &passwordHash, &user.Status,
		&user.FailedLoginAttempts, &user.LockedUntil, &user.EmailVerifiedAt,
		&user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if passwordHash != nil {
		user.PasswordHash = *passwordHash
	}
	return &user, nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := `
		SELECT ` + userColumns + `
		FROM users
		WHERE email = $1
		LIMIT 1;
	`
	user, err := scanUser(r.db.QueryRow(ctx, query, email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}

	return user, nil
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	query := `
		SELECT ` + userColumns + `
		FROM users
		WHERE id = $1
		LIMIT 1;
	`
	user, err := scanUser(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user by id: %w", err)
	}

	return user, nil
}

func (r *UserRepository) Create(ctx context.Context, user *domain.User) error {
	var passwordHash *string
	if user.PasswordHash != "" {
		passwordHash = &user.PasswordHash
	}

	_, err := r.db.Exec(ctx, `
        INSERT INTO users (id, email, password_hash, status, failed_login_attempts, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
    `, user.ID, user.Email, passwordHash, user.Status, user.FailedLoginAttempts, user.CreatedAt, user.UpdatedAt)

	return err
}

func (r *UserRepository) UpdatePassword(ctx context.Context, userID, passwordHash string) error {
	_, err := r.db.Exec(ctx, `
		UPDATE users SET password_hash = $2, updated_at = now()
		WHERE id = $1
	`, userID, passwordHash)

	return err
}

func (r *UserRepository) MarkEmailVerified(ctx context.Context, userID string, verifiedAt time.Time) error {
	_, err := r.db.Exec(ctx, `
		UPDATE users SET email_verified_at = $2, status = 'ACTIVE', updated_at = now()
		WHERE id = $1
	`, userID, verifiedAt)

	return err
}

// RecordLoginFailure serializes concurrent failures on the same account with
// a row lock, so two racing bad logins cannot both observe attempt 4 and
// skip the lockout.
func (r *UserRepository) RecordLoginFailure(ctx context.Context, userID string, threshold int, lockFor time.Duration) (*domain.User, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var attempts int
	var lockedUntil *time.Time

	row := tx.QueryRow(ctx, `
		SELECT failed_login_attempts, locked_until
		FROM users
		WHERE id = $1
		FOR UPDATE
	`, userID)
	if err := row.Scan(&attempts, &lockedUntil); err != nil {
		return nil, fmt.Errorf("failed to lock user row: %w", err)
	}

	now := time.Now()
	if lockedUntil == nil || !lockedUntil.After(now) {
		attempts++
		if attempts >= threshold {
			until := now.Add(lockFor)
			lockedUntil = &until
		}
	}
	// Failures during an active lockout neither extend nor reset it.

	user, err := scanUser(tx.QueryRow(ctx, `
		UPDATE users
		SET failed_login_attempts = $2, locked_until = $3, updated_at = now()
		WHERE id = $1
		RETURNING `+userColumns, userID, attempts, lockedUntil))
	if err != nil {
		return nil, fmt.Errorf("failed to record login failure: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit login failure: %w", err)
	}

	return user, nil
}

func (r *UserRepository) ResetLoginFailures(ctx context.Context, userID string) error {
	_, err := r.db.Exec(ctx, `
		UPDATE users SET failed_login_attempts = 0, locked_until = NULL, updated_at = now()
		WHERE id = $1
	`, userID)

	return err
}
