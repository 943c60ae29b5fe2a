package service

import (
	"context"

	"github.com/nudgely/auth-service/internal/auth/dto"
	autherror "github.com/nudgely/auth-service/internal/errors"
	"github.com/nudgely/auth-service/pkg/constant"
)

// ForgotPassword issues a reset code. An unknown email succeeds silently so
// the endpoint cannot be used to probe for accounts.
func (s *UserService) ForgotPassword(ctx context.Context, input dto.ForgotPasswordInput) error {
	user, err := s.users.GetByEmail(ctx, input.Email)
	if err != nil {
		return err
	}
	if user == nil {
		return nil
	}

	code, err := s.guard.Issue(ctx, user.ID, user.Email, constant.PurposePasswordReset, constant.PasswordResetCodeTTL)
	if err != nil {
		return err
	}
	s.deliverResetCode(user.Email, code)

	return nil
}

// ResetPassword consumes a reset code, replaces the password and revokes
// every session: a reset usually means the old credential leaked.
func (s *UserService) ResetPassword(ctx context.Context, input dto.ResetPasswordInput) error {
	code, err := s.guard.Verify(ctx, input.Email, constant.PurposePasswordReset, input.Code)
	if err != nil {
		return err
	}

	hashedPassword, err := s.hasher.Hash(input.NewPassword)
	if err != nil {
		return err
	}

	if err := s.users.UpdatePassword(ctx, code.UserID, hashedPassword); err != nil {
		return err
	}

	// A fresh credential also clears any lockout left by the attacker's
	// guessing.
	if err := s.users.ResetLoginFailures(ctx, code.UserID); err != nil {
		return err
	}

	return s.sessions.RevokeAllByUser(ctx, code.UserID)
}

// ChangePassword swaps the password for an authenticated user and revokes
// every other session, keeping the one making the change.
func (s *UserService) ChangePassword(ctx context.Context, userID, currentSessionID string, input dto.ChangePasswordInput) error {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if user == nil {
		return autherror.ErrUnauthenticated
	}

	if user.PasswordHash == "" || !s.hasher.Verify(input.CurrentPassword, user.PasswordHash) {
		return autherror.ErrInvalidCredentials
	}

	hashedPassword, err := s.hasher.Hash(input.NewPassword)
	if err != nil {
		return err
	}

	if err := s.users.UpdatePassword(ctx, userID, hashedPassword); err != nil {
		return err
	}

	sessions, err := s.sessions.ListActiveByUser(ctx, userID)
	if err != nil {
		return err
	}
	for _, session := range sessions {
		if session.ID == currentSessionID {
			continue
		}
		if err := s.sessions.Revoke(ctx, session.ID); err != nil {
			return err
		}
	}

	return nil
}
