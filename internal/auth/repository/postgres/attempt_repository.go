package postgres

import (
	"context"

	"github.com/nudgely/auth-service/internal/auth/domain"
)

type LoginAttemptRepository struct {
	db PgxPool
}

func NewLoginAttemptRepository(db PgxPool) *LoginAttemptRepository {
	return &LoginAttemptRepository{db: db}
}

func (r *LoginAttemptRepository) Record(ctx context.Context, attempt *domain.LoginAttempt) error {
	var userID *string
	if attempt.UserID != "" {
		userID = &attempt.UserID
	}
	var reason *string
	if attempt.FailureReason != "" {
		reason = &attempt.FailureReason
	}

	_, err := r.db.Exec(ctx, `
		INSERT INTO login_attempts (id, email, user_id, successful, failure_reason, ip_address, user_agent, attempt_time)
		VALUES (gen_random_uuid(), $1, $2, $3, $4, $5, $6, now())
	`, attempt.Email, userID, attempt.Successful, reason, attempt.IPAddress, attempt.UserAgent)
	return err
}
