package domain

//go:generate mockgen -destination=../../mocks/mock_repositories.go -package=mocks github.com/nudgely/auth-service/internal/auth/domain UserRepository,SessionRepository,VerificationCodeRepository,LoginAttemptRepository

import (
	"context"
	"time"
)

type UserRepository interface {
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByID(ctx context.Context, id string) (*User, error)
	Create(ctx context.Context, user *User) error
	UpdatePassword(ctx context.Context, userID, passwordHash string) error
	MarkEmailVerified(ctx context.Context, userID string, verifiedAt time.Time) error
	// RecordLoginFailure atomically increments the failure counter and, when
	// the counter reaches threshold, arms the lockout window. It returns the
	// updated user so the caller can see whether this failure was the one
	// that crossed the threshold.
	RecordLoginFailure(ctx context.Context, userID string, threshold int, lockFor time.Duration) (*User, error)
	// ResetLoginFailures zeroes the counter and clears any lockout.
	ResetLoginFailures(ctx context.Context, userID string) error
}

type SessionRepository interface {
	Create(ctx context.Context, session *Session) error
	GetByID(ctx context.Context, id string) (*Session, error)
	ListActiveByUser(ctx context.Context, userID string) ([]*Session, error)
	// AdvanceGeneration is a compare-and-increment: it succeeds only when the
	// stored generation equals expectedGeneration and the session is not
	// revoked. A miss returns (nil, nil); the caller disambiguates.
	AdvanceGeneration(ctx context.Context, sessionID string, expectedGeneration int, ip, userAgent string) (*Session, error)
	Revoke(ctx context.Context, sessionID string) error
	RevokeAllByUser(ctx context.Context, userID string) error
	RevokeFamily(ctx context.Context, tokenFamily string) error
}

// AttemptOutcome classifies a single verification attempt against a code.
type AttemptOutcome int

const (
	AttemptNotFound AttemptOutcome = iota
	AttemptMatched
	AttemptMismatch
	AttemptExpired
	AttemptExhausted
)

type VerificationCodeRepository interface {
	Create(ctx context.Context, code *VerificationCode) error
	// SupersedeActive retires any live code for the same target and purpose.
	SupersedeActive(ctx context.Context, email, purpose string, at time.Time) error
	// ConsumeAttempt runs one verify attempt atomically: it locks the newest
	// live code for the target, increments its attempt counter on a mismatch,
	// and marks it consumed on a match. An exhausted code reports
	// AttemptExhausted without comparing the candidate.
	ConsumeAttempt(ctx context.Context, email, purpose, candidateHash string, now time.Time) (*VerificationCode, AttemptOutcome, error)
}

type LoginAttemptRepository interface {
	Record(ctx context.Context, attempt *LoginAttempt) error
}
