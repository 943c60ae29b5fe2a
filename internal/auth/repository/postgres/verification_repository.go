package postgres

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/nudgely/auth-service/internal/auth/domain"
)

type VerificationCodeRepository struct {
	db PgxPool
}

func NewVerificationCodeRepository(db PgxPool) *VerificationCodeRepository {
	return &VerificationCodeRepository{db: db}
}

const verificationColumns = `id, user_id, email, purpose, code_hash, expires_at, attempts, max_attempts, consumed_at, superseded_at, created_at`

func scanVerificationCode(row pgx.Row) (*domain.VerificationCode, error) {
	var v domain.VerificationCode
	var userID *string
	err := row.Scan(&v.ID, &userID, &v.Email, &v.Purpose, &v.CodeHash,
		&v.ExpiresAt, &v.Attempts, &v.MaxAttempts, &v.ConsumedAt,
		&v.SupersededAt, &v.CreatedAt)
	if err != nil {
		return nil, err
	}
	if userID != nil {
		v.UserID = *userID
	}
	return &v, nil
}

func (r *VerificationCodeRepository) Create(ctx context.Context, code *domain.VerificationCode) error {
	var userID *string
	if code.UserID != "" {
		userID = &code.UserID
	}

	query := `INSERT INTO verification_codes (id, user_id, email, purpose, code_hash, expires_at, attempts, max_attempts, created_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.db.Exec(ctx, query,
		code.ID, userID, code.Email, code.Purpose, code.CodeHash,
		code.ExpiresAt, code.Attempts, code.MaxAttempts, code.CreatedAt)
	return err
}

func (r *VerificationCodeRepository) SupersedeActive(ctx context.Context, email, purpose string, at time.Time) error {
	_, err := r.db.Exec(ctx, `
		UPDATE verification_codes SET superseded_at = $3
		WHERE email = $1 AND purpose = $2 AND consumed_at IS NULL AND superseded_at IS NULL
	`, email, purpose, at)
	return err
}

// ConsumeAttempt runs the whole verify attempt under a row lock. Ordering is
// deliberate: exhaustion is checked before expiry and before the candidate is
// compared at all, so a correct guess against an exhausted code still fails
// and attempts cannot be laundered by waiting out the expiry.
func (r *VerificationCodeRepository) ConsumeAttempt(ctx context.Context, email, purpose, candidateHash string, now time.Time) (*domain.VerificationCode, domain.AttemptOutcome, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, domain.AttemptNotFound, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	code, err := scanVerificationCode(tx.QueryRow(ctx, `
		SELECT `+verificationColumns+`
		FROM verification_codes
		WHERE email = $1 AND purpose = $2 AND consumed_at IS NULL AND superseded_at IS NULL
		ORDER BY created_at DESC
		LIMIT 1
		FOR UPDATE
	`, email, purpose))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.AttemptNotFound, nil
		}
		return nil, domain.AttemptNotFound, fmt.Errorf("failed to lock verification code: %w", err)
	}

	if code.Exhausted() {
		return code, domain.AttemptExhausted, tx.Commit(ctx)
	}

	if code.Expired(now) {
		return code, domain.AttemptExpired, tx.Commit(ctx)
	}

	if subtle.ConstantTimeCompare([]byte(code.CodeHash), []byte(candidateHash)) == 1 {
		if _, err := tx.Exec(ctx, `
			UPDATE verification_codes SET consumed_at = $2
			WHERE id = $1
		`, code.ID, now); err != nil {
			return nil, domain.AttemptNotFound, fmt.Errorf("failed to consume verification code: %w", err)
		}
		consumed := now
		code.ConsumedAt = &consumed
		return code, domain.AttemptMatched, tx.Commit(ctx)
	}

	if _, err := tx.Exec(ctx, `
		UPDATE verification_codes SET attempts = attempts + 1
		WHERE id = $1
	`, code.ID); err != nil {
		return nil, domain.AttemptNotFound, fmt.Errorf("failed to count verification attempt: %w", err)
	}
	code.Attempts++

	return code, domain.AttemptMismatch, tx.Commit(ctx)
}
