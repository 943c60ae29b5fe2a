package service

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"github.com/google/uuid"
	"github.com/nudgely/auth-service/internal/auth/domain"
	autherror "github.com/nudgely/auth-service/internal/errors"
	"github.com/nudgely/auth-service/pkg/constant"
)

// VerificationGuard issues and checks one-time codes with bounded attempts.
// Only the SHA-256 hash is persisted; the plaintext is returned once for
// delivery.
type VerificationGuard struct {
	codes domain.VerificationCodeRepository
}

func NewVerificationGuard(codes domain.VerificationCodeRepository) *VerificationGuard {
	return &VerificationGuard{codes: codes}
}

// Issue supersedes any live code for the same target and purpose and stores
// a fresh one, returning its plaintext.
func (g *VerificationGuard) Issue(ctx context.Context, userID, email, purpose string, ttl time.Duration) (string, error) {
	now := time.Now()

	if err := g.codes.SupersedeActive(ctx, email, purpose, now); err != nil {
		return "", fmt.Errorf("failed to supersede verification codes: %w", err)
	}

	plaintext, err := generateCode(constant.VerificationCodeLength)
	if err != nil {
		return "", err
	}

	code := &domain.VerificationCode{
		ID:          uuid.NewString(),
		UserID:      userID,
		Email:       email,
		Purpose:     purpose,
		CodeHash:    HashToken(plaintext),
		ExpiresAt:   now.Add(ttl),
		Attempts:    0,
		MaxAttempts: constant.MaxVerificationAttempts,
		CreatedAt:   now,
	}
	if err := g.codes.Create(ctx, code); err != nil {
		return "", fmt.Errorf("failed to store verification code: %w", err)
	}

	return plaintext, nil
}

// Verify checks a candidate against the live code for the target. Every
// mismatch burns an attempt; an exhausted code fails even for the correct
// candidate.
func (g *VerificationGuard) Verify(ctx context.Context, email, purpose, candidate string) (*domain.VerificationCode, error) {
	code, outcome, err := g.codes.ConsumeAttempt(ctx, email, purpose, HashToken(candidate), time.Now())
	if err != nil {
		return nil, err
	}

	switch outcome {
	case domain.AttemptMatched:
		return code, nil
	case domain.AttemptExhausted:
		return nil, autherror.ErrVerificationAttemptsExceeded
	case domain.AttemptExpired:
		return nil, autherror.ErrVerificationCodeExpired
	default:
		return nil, autherror.ErrVerificationCodeInvalid
	}
}

func generateCode(digits int) (string, error) {
	max := big.NewInt(1)
	for i := 0; i < digits; i++ {
		max.Mul(max, big.NewInt(10))
	}
	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		return "", fmt.Errorf("failed to generate verification code: %w", err)
	}
	return fmt.Sprintf("%0*d", digits, n), nil
}
