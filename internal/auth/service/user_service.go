package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/nudgely/auth-service/config"
	"github.com/nudgely/auth-service/internal/auth/domain"
	"github.com/nudgely/auth-service/internal/auth/dto"
	autherror "github.com/nudgely/auth-service/internal/errors"
	"github.com/nudgely/auth-service/pkg/constant"
)

// UserService composes the token codec, session store, lockout policy,
// verification guard and attempt ledger into the public auth operations.
type UserService struct {
	users        domain.UserRepository
	sessions     domain.SessionRepository
	attempts     domain.LoginAttemptRepository
	tokenService TokenGenerator
	guard        *VerificationGuard
	lockout      *LockoutPolicy
	hasher       PasswordHasher
	mailer       EmailSender
	profiles     ProfileVerifier
	cfg          *config.Config
}

func NewUserService(
	users domain.UserRepository,
	sessions domain.SessionRepository,
	attempts domain.LoginAttemptRepository,
	tokenService TokenGenerator,
	guard *VerificationGuard,
	lockout *LockoutPolicy,
	hasher PasswordHasher,
	mailer EmailSender,
	profiles ProfileVerifier,
	cfg *config.Config,
) *UserService {
	return &UserService{
		users:        users,
		sessions:     sessions,
		attempts:     attempts,
		tokenService: tokenService,
		guard:        guard,
		lockout:      lockout,
		hasher:       hasher,
		mailer:       mailer,
		profiles:     profiles,
		cfg:          cfg,
	}
}

func (s *UserService) Register(ctx context.Context, input dto.RegisterInput) (*dto.UserOutput, error) {
	existingUser, err := s.users.GetByEmail(ctx, input.Email)
	if err != nil {
		return nil, err
	}
	if existingUser != nil {
		return nil, autherror.ErrEmailAlreadyInUse
	}

	hashedPassword, err := s.hasher.Hash(input.Password)
	if err != nil {
		return nil, err
	}

	now := time.Now()

	user := &domain.User{
		ID:           uuid.NewString(),
		Email:        input.Email,
		PasswordHash: hashedPassword,
		Status:       constant.UserStatusPendingVerification,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	code, err := s.guard.Issue(ctx, user.ID, user.Email, constant.PurposeEmailVerify, constant.EmailVerifyCodeTTL)
	if err != nil {
		return nil, err
	}
	s.deliverVerificationCode(user.Email, code)

	return &dto.UserOutput{ID: user.ID, Email: user.Email}, nil
}

func (s *UserService) VerifyEmail(ctx context.Context, input dto.VerifyEmailInput) error {
	code, err := s.guard.Verify(ctx, input.Email, constant.PurposeEmailVerify, input.Code)
	if err != nil {
		return err
	}

	return s.users.MarkEmailVerified(ctx, code.UserID, time.Now())
}

// ResendVerification reissues the email-verify code. An unknown or already
// verified email succeeds silently so the endpoint cannot be used to probe
// for accounts.
func (s *UserService) ResendVerification(ctx context.Context, input dto.ResendVerificationInput) error {
	user, err := s.users.GetByEmail(ctx, input.Email)
	if err != nil {
		return err
	}
	if user == nil || user.Status != constant.UserStatusPendingVerification {
		return nil
	}

	code, err := s.guard.Issue(ctx, user.ID, user.Email, constant.PurposeEmailVerify, constant.EmailVerifyCodeTTL)
	if err != nil {
		return err
	}
	s.deliverVerificationCode(user.Email, code)

	return nil
}

func (s *UserService) Login(ctx context.Context, input dto.LoginInput) (*dto.TokenResponse, error) {
	user, err := s.users.GetByEmail(ctx, input.Email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		s.recordAttempt(ctx, input.Email, "", false, constant.FailureReasonUserNotFound, input.IPAddress, input.UserAgent)
		return nil, autherror.ErrInvalidCredentials
	}

	// A locked account rejects every attempt, correct password or not, and
	// attempts during the window leave the counter alone.
	if s.lockout.IsLocked(user) {
		s.recordAttempt(ctx, input.Email, user.ID, false, constant.FailureReasonAccountLocked, input.IPAddress, input.UserAgent)
		return nil, autherror.ErrAccountLocked
	}

	if user.PasswordHash == "" || !s.hasher.Verify(input.Password, user.PasswordHash) {
		locked, lockErr := s.lockout.RecordFailure(ctx, user.ID)
		if lockErr != nil {
			return nil, lockErr
		}
		s.recordAttempt(ctx, input.Email, user.ID, false, constant.FailureReasonWrongPassword, input.IPAddress, input.UserAgent)
		if locked {
			return nil, autherror.ErrAccountLocked
		}
		return nil, autherror.ErrInvalidCredentials
	}

	if user.Status == constant.UserStatusPendingVerification {
		s.recordAttempt(ctx, input.Email, user.ID, false, constant.FailureReasonEmailNotVerified, input.IPAddress, input.UserAgent)
		return nil, autherror.ErrEmailNotVerified
	}
	if user.Status == constant.UserStatusSuspended {
		s.recordAttempt(ctx, input.Email, user.ID, false, constant.FailureReasonAccountSuspended, input.IPAddress, input.UserAgent)
		return nil, autherror.ErrInvalidCredentials
	}

	if err := s.lockout.RecordSuccess(ctx, user.ID); err != nil {
		return nil, err
	}

	response, err := s.openSession(ctx, user, input.IPAddress, input.UserAgent)
	if err != nil {
		return nil, err
	}

	s.recordAttempt(ctx, input.Email, user.ID, true, "", input.IPAddress, input.UserAgent)

	return response, nil
}

// LoginWithOAuth exchanges a verified provider token for a session. An
// unknown email becomes a fresh passwordless account.
func (s *UserService) LoginWithOAuth(ctx context.Context, input dto.OAuthLoginInput) (*dto.TokenResponse, error) {
	if s.profiles == nil {
		return nil, autherror.ErrOAuthTokenInvalid.WithMessage("no oauth provider configured")
	}

	profile, err := s.profiles.Verify(ctx, input.ProviderToken)
	if err != nil {
		var typed *autherror.Error
		if !errors.As(err, &typed) {
			err = autherror.ErrOAuthTokenInvalid
		}
		s.recordAttempt(ctx, "", "", false, constant.FailureReasonOAuthInvalid, input.IPAddress, input.UserAgent)
		return nil, err
	}

	user, err := s.users.GetByEmail(ctx, profile.Email)
	if err != nil {
		return nil, err
	}

	if user == nil {
		now := time.Now()
		user = &domain.User{
			ID:        uuid.NewString(),
			Email:     profile.Email,
			Status:    constant.UserStatusPendingVerification,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := s.users.Create(ctx, user); err != nil {
			return nil, err
		}
	}

	if s.lockout.IsLocked(user) {
		s.recordAttempt(ctx, profile.Email, user.ID, false, constant.FailureReasonAccountLocked, input.IPAddress, input.UserAgent)
		return nil, autherror.ErrAccountLocked
	}
	if user.Status == constant.UserStatusSuspended {
		s.recordAttempt(ctx, profile.Email, user.ID, false, constant.FailureReasonAccountSuspended, input.IPAddress, input.UserAgent)
		return nil, autherror.ErrInvalidCredentials
	}

	if user.Status == constant.UserStatusPendingVerification {
		if !profile.EmailVerified {
			s.recordAttempt(ctx, profile.Email, user.ID, false, constant.FailureReasonEmailNotVerified, input.IPAddress, input.UserAgent)
			return nil, autherror.ErrEmailNotVerified
		}
		// The provider vouched for the address, so activate in place.
		if err := s.users.MarkEmailVerified(ctx, user.ID, time.Now()); err != nil {
			return nil, err
		}
	}

	response, err := s.openSession(ctx, user, input.IPAddress, input.UserAgent)
	if err != nil {
		return nil, err
	}

	s.recordAttempt(ctx, profile.Email, user.ID, true, "", input.IPAddress, input.UserAgent)

	return response, nil
}

// Refresh rotates the refresh token. The generation compare-and-increment is
// a single conditional UPDATE, so of two concurrent refreshes with the same
// token exactly one can win; the loser lands in the reuse branch.
func (s *UserService) Refresh(ctx context.Context, input dto.RefreshInput) (*dto.TokenResponse, error) {
	claims, err := s.tokenService.Verify(input.RefreshToken, constant.TokenTypeRefresh)
	if err != nil {
		return nil, err
	}

	session, err := s.sessions.GetByID(ctx, claims.SessionID)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, autherror.ErrSessionNotFound
	}
	if session.Revoked() {
		return nil, autherror.ErrSessionRevoked
	}
	if session.TokenFamily != claims.TokenFamily {
		// A signed token naming a different family than its session is
		// inconsistent state. Fail closed and kill both lineages.
		return nil, s.detectReuse(ctx, session, claims)
	}

	advanced, err := s.sessions.AdvanceGeneration(ctx, session.ID, claims.Generation, input.IPAddress, input.UserAgent)
	if err != nil {
		return nil, err
	}
	if advanced == nil {
		// The stored generation moved past (or never matched) the one in
		// this token: either an old token replayed, or we lost the race to
		// a concurrent refresh of the same token. Both mean reuse.
		current, refetchErr := s.sessions.GetByID(ctx, session.ID)
		if refetchErr == nil && current != nil && current.Revoked() {
			return nil, autherror.ErrSessionRevoked
		}
		return nil, s.detectReuse(ctx, session, claims)
	}

	pair, err := s.tokenService.IssuePair(claims.UserID, claims.Email, advanced.ID, advanced.TokenFamily, advanced.Generation)
	if err != nil {
		return nil, fmt.Errorf("failed to generate new tokens: %w", err)
	}

	return &dto.TokenResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		ExpiresIn:    pair.ExpiresIn,
		User:         dto.UserOutput{ID: claims.UserID, Email: claims.Email},
	}, nil
}

// detectReuse revokes the whole token family and reports the typed reuse
// error. This is the one place where error handling has write consequences.
func (s *UserService) detectReuse(ctx context.Context, session *domain.Session, claims *JWTCustomClaims) error {
	slog.Warn("refresh token reuse detected",
		"session_id", session.ID,
		"user_id", session.UserID,
		"presented_generation", claims.Generation,
		"current_generation", session.Generation)

	if err := s.sessions.RevokeFamily(ctx, session.TokenFamily); err != nil {
		slog.Error("failed to revoke token family after reuse", "token_family", session.TokenFamily, "error", err)
	}
	if claims.TokenFamily != session.TokenFamily {
		if err := s.sessions.RevokeFamily(ctx, claims.TokenFamily); err != nil {
			slog.Error("failed to revoke token family after reuse", "token_family", claims.TokenFamily, "error", err)
		}
	}

	return autherror.ErrTokenReuseDetected
}

// Authenticate resolves a bearer access token to its claims, rejecting
// tokens whose session has since been revoked.
func (s *UserService) Authenticate(ctx context.Context, accessToken string) (*JWTCustomClaims, error) {
	claims, err := s.tokenService.Verify(accessToken, constant.TokenTypeAccess)
	if err != nil {
		return nil, err
	}

	session, err := s.sessions.GetByID(ctx, claims.SessionID)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, autherror.ErrSessionNotFound
	}
	if session.Revoked() {
		return nil, autherror.ErrSessionRevoked
	}

	return claims, nil
}

func (s *UserService) Logout(ctx context.Context, sessionID string) error {
	return s.sessions.Revoke(ctx, sessionID)
}

func (s *UserService) ListSessions(ctx context.Context, userID, currentSessionID string) ([]dto.SessionOutput, error) {
	sessions, err := s.sessions.ListActiveByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	outputs := make([]dto.SessionOutput, 0, len(sessions))
	for _, session := range sessions {
		outputs = append(outputs, dto.SessionOutput{
			ID:         session.ID,
			IPAddress:  session.IPAddress,
			UserAgent:  session.UserAgent,
			CreatedAt:  session.CreatedAt,
			LastUsedAt: session.LastUsedAt,
			Current:    session.ID == currentSessionID,
		})
	}

	return outputs, nil
}

func (s *UserService) RevokeSession(ctx context.Context, userID, sessionID string) error {
	session, err := s.sessions.GetByID(ctx, sessionID)
	if err != nil {
		return err
	}
	if session == nil || session.UserID != userID {
		return autherror.ErrSessionNotFound
	}

	return s.sessions.Revoke(ctx, sessionID)
}

// openSession creates a fresh session lineage and issues its first pair.
func (s *UserService) openSession(ctx context.Context, user *domain.User, ip, userAgent string) (*dto.TokenResponse, error) {
	family, err := s.tokenService.NewTokenFamily()
	if err != nil {
		return nil, err
	}

	now := time.Now()
	session := &domain.Session{
		ID:          uuid.NewString(),
		UserID:      user.ID,
		TokenFamily: family,
		Generation:  constant.InitialGeneration,
		IPAddress:   ip,
		UserAgent:   userAgent,
		CreatedAt:   now,
		LastUsedAt:  now,
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, err
	}

	pair, err := s.tokenService.IssuePair(user.ID, user.Email, session.ID, family, session.Generation)
	if err != nil {
		return nil, err
	}

	return &dto.TokenResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		ExpiresIn:    pair.ExpiresIn,
		User:         dto.UserOutput{ID: user.ID, Email: user.Email},
	}, nil
}

// recordAttempt appends to the ledger; a write failure is logged and never
// fails the auth operation itself.
func (s *UserService) recordAttempt(ctx context.Context, email, userID string, success bool, reason, ip, userAgent string) {
	attempt := &domain.LoginAttempt{
		Email:         email,
		UserID:        userID,
		Successful:    success,
		FailureReason: reason,
		IPAddress:     ip,
		UserAgent:     userAgent,
	}
	if err := s.attempts.Record(ctx, attempt); err != nil {
		slog.Warn("failed to record login attempt", "email", email, "error", err)
	}
}

func (s *UserService) deliverVerificationCode(email, code string) {
	go func() {
		if err := s.mailer.SendVerificationCode(context.Background(), email, code); err != nil {
			slog.Warn("failed to send verification email", "email", email, "error", err)
		}
	}()
}

func (s *UserService) deliverResetCode(email, code string) {
	go func() {
		if err := s.mailer.SendPasswordResetCode(context.Background(), email, code); err != nil {
			slog.Warn("failed to send password reset email", "email", email, "error", err)
		}
	}()
}
