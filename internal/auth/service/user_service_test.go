package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/nudgely/auth-service/config"
	"github.com/nudgely/auth-service/internal/auth/domain"
	"github.com/nudgely/auth-service/internal/auth/dto"
	"github.com/nudgely/auth-service/internal/auth/service"
	autherror "github.com/nudgely/auth-service/internal/errors"
	"github.com/nudgely/auth-service/internal/mocks"
	"github.com/nudgely/auth-service/pkg/constant"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type serviceMocks struct {
	users    *mocks.MockUserRepository
	sessions *mocks.MockSessionRepository
	attempts *mocks.MockLoginAttemptRepository
	codes    *mocks.MockVerificationCodeRepository
	token    *mocks.MockTokenGenerator
	mailer   *mocks.MockEmailSender
	profiles *mocks.MockProfileVerifier
}

func newTestService(t *testing.T) (*service.UserService, *serviceMocks) {
	t.Helper()
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)

	m := &serviceMocks{
		users:    mocks.NewMockUserRepository(ctrl),
		sessions: mocks.NewMockSessionRepository(ctrl),
		attempts: mocks.NewMockLoginAttemptRepository(ctrl),
		codes:    mocks.NewMockVerificationCodeRepository(ctrl),
		token:    mocks.NewMockTokenGenerator(ctrl),
		mailer:   mocks.NewMockEmailSender(ctrl),
		profiles: mocks.NewMockProfileVerifier(ctrl),
	}

	// Email delivery runs on its own goroutine; the test may finish first.
	m.mailer.EXPECT().SendVerificationCode(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
	m.mailer.EXPECT().SendPasswordResetCode(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil).AnyTimes()

	guard := service.NewVerificationGuard(m.codes)
	lockout := service.NewLockoutPolicy(m.users, constant.MaxFailedLogins, constant.DefaultLockoutDuration)

	s := service.NewUserService(m.users, m.sessions, m.attempts, m.token,
		guard, lockout, service.NewBcryptHasher(), m.mailer, m.profiles, &config.Config{})

	return s, m
}

func hashPassword(t *testing.T, plaintext string) string {
	t.Helper()
	hashed, err := bcrypt.GenerateFromPassword([]byte(plaintext), bcrypt.MinCost)
	require.NoError(t, err)
	return string(hashed)
}

func activeUser(t *testing.T, password string) *domain.User {
	t.Helper()
	return &domain.User{
		ID:           "user-123",
		Email:        "test@example.com",
		PasswordHash: hashPassword(t, password),
		Status:       constant.UserStatusActive,
	}
}

func TestUserService_Register_Success(t *testing.T) {
	s, m := newTestService(t)
	ctx := context.Background()

	input := dto.RegisterInput{Email: "test@example.com", Password: "password123"}

	m.users.EXPECT().GetByEmail(gomock.Any(), input.Email).Return(nil, nil)
	m.users.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, user *domain.User) error {
			assert.Equal(t, input.Email, user.Email)
			assert.Equal(t, constant.UserStatusPendingVerification, user.Status)
			assert.NotEmpty(t, user.PasswordHash)
			return nil
		})
	m.codes.EXPECT().SupersedeActive(gomock.Any(), input.Email, constant.PurposeEmailVerify, gomock.Any()).Return(nil)
	m.codes.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, code *domain.VerificationCode) error {
			assert.Equal(t, constant.PurposeEmailVerify, code.Purpose)
			assert.Equal(t, constant.MaxVerificationAttempts, code.MaxAttempts)
			assert.NotEmpty(t, code.CodeHash)
			return nil
		})

	user, err := s.Register(ctx, input)

	require.NoError(t, err)
	assert.Equal(t, input.Email, user.Email)
	assert.NotEmpty(t, user.ID)
}

func TestUserService_Register_EmailAlreadyExists(t *testing.T) {
	s, m := newTestService(t)

	input := dto.RegisterInput{Email: "test@example.com", Password: "password123"}
	m.users.EXPECT().GetByEmail(gomock.Any(), input.Email).Return(&domain.User{ID: "existing"}, nil)

	user, err := s.Register(context.Background(), input)

	assert.ErrorIs(t, err, autherror.ErrEmailAlreadyInUse)
	assert.Nil(t, user)
}

func TestUserService_VerifyEmail_Success(t *testing.T) {
	s, m := newTestService(t)

	code := &domain.VerificationCode{ID: "code-1", UserID: "user-123"}
	m.codes.EXPECT().ConsumeAttempt(gomock.Any(), "test@example.com", constant.PurposeEmailVerify, gomock.Any(), gomock.Any()).
		Return(code, domain.AttemptMatched, nil)
	m.users.EXPECT().MarkEmailVerified(gomock.Any(), "user-123", gomock.Any()).Return(nil)

	err := s.VerifyEmail(context.Background(), dto.VerifyEmailInput{Email: "test@example.com", Code: "123456"})
	assert.NoError(t, err)
}

func TestUserService_VerifyEmail_Exhausted(t *testing.T) {
	s, m := newTestService(t)

	// Even the correct code fails once attempts are spent.
	m.codes.EXPECT().ConsumeAttempt(gomock.Any(), "test@example.com", constant.PurposeEmailVerify, gomock.Any(), gomock.Any()).
		Return(&domain.VerificationCode{Attempts: 5, MaxAttempts: 5}, domain.AttemptExhausted, nil)

	err := s.VerifyEmail(context.Background(), dto.VerifyEmailInput{Email: "test@example.com", Code: "123456"})
	assert.ErrorIs(t, err, autherror.ErrVerificationAttemptsExceeded)
}

func TestUserService_VerifyEmail_WrongCode(t *testing.T) {
	s, m := newTestService(t)

	m.codes.EXPECT().ConsumeAttempt(gomock.Any(), "test@example.com", constant.PurposeEmailVerify, gomock.Any(), gomock.Any()).
		Return(&domain.VerificationCode{Attempts: 1, MaxAttempts: 5}, domain.AttemptMismatch, nil)

	err := s.VerifyEmail(context.Background(), dto.VerifyEmailInput{Email: "test@example.com", Code: "000000"})
	assert.ErrorIs(t, err, autherror.ErrVerificationCodeInvalid)
}

func TestUserService_Login_Success(t *testing.T) {
	s, m := newTestService(t)

	user := activeUser(t, "password123")
	input := dto.LoginInput{Email: user.Email, Password: "password123", IPAddress: "10.0.0.1", UserAgent: "test-agent"}

	m.users.EXPECT().GetByEmail(gomock.Any(), user.Email).Return(user, nil)
	m.users.EXPECT().ResetLoginFailures(gomock.Any(), user.ID).Return(nil)
	m.token.EXPECT().NewTokenFamily().Return("fam-1", nil)
	m.sessions.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, session *domain.Session) error {
			assert.Equal(t, user.ID, session.UserID)
			assert.Equal(t, "fam-1", session.TokenFamily)
			assert.Equal(t, constant.InitialGeneration, session.Generation)
			assert.Equal(t, "10.0.0.1", session.IPAddress)
			return nil
		})
	m.token.EXPECT().IssuePair(user.ID, user.Email, gomock.Any(), "fam-1", constant.InitialGeneration).
		Return(&service.TokenPair{AccessToken: "access", RefreshToken: "refresh", ExpiresIn: 900}, nil)
	m.attempts.EXPECT().Record(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, attempt *domain.LoginAttempt) error {
			assert.True(t, attempt.Successful)
			return nil
		})

	resp, err := s.Login(context.Background(), input)

	require.NoError(t, err)
	assert.Equal(t, "access", resp.AccessToken)
	assert.Equal(t, "refresh", resp.RefreshToken)
	assert.Equal(t, 900, resp.ExpiresIn)
	assert.Equal(t, user.ID, resp.User.ID)
}

func TestUserService_Login_UnknownUser(t *testing.T) {
	s, m := newTestService(t)

	m.users.EXPECT().GetByEmail(gomock.Any(), "nobody@example.com").Return(nil, nil)
	m.attempts.EXPECT().Record(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, attempt *domain.LoginAttempt) error {
			assert.False(t, attempt.Successful)
			assert.Equal(t, constant.FailureReasonUserNotFound, attempt.FailureReason)
			return nil
		})

	_, err := s.Login(context.Background(), dto.LoginInput{Email: "nobody@example.com", Password: "x"})
	assert.ErrorIs(t, err, autherror.ErrInvalidCredentials)
}

func TestUserService_Login_WrongPassword(t *testing.T) {
	s, m := newTestService(t)

	user := activeUser(t, "password123")

	m.users.EXPECT().GetByEmail(gomock.Any(), user.Email).Return(user, nil)
	m.users.EXPECT().RecordLoginFailure(gomock.Any(), user.ID, constant.MaxFailedLogins, constant.DefaultLockoutDuration).
		Return(&domain.User{ID: user.ID, FailedLoginAttempts: 1}, nil)
	m.attempts.EXPECT().Record(gomock.Any(), gomock.Any()).Return(nil)

	_, err := s.Login(context.Background(), dto.LoginInput{Email: user.Email, Password: "wrong"})
	assert.ErrorIs(t, err, autherror.ErrInvalidCredentials)
}

func TestUserService_Login_FifthFailureLocks(t *testing.T) {
	s, m := newTestService(t)

	user := activeUser(t, "password123")
	lockedUntil := time.Now().Add(constant.DefaultLockoutDuration)

	m.users.EXPECT().GetByEmail(gomock.Any(), user.Email).Return(user, nil)
	m.users.EXPECT().RecordLoginFailure(gomock.Any(), user.ID, constant.MaxFailedLogins, constant.DefaultLockoutDuration).
		Return(&domain.User{ID: user.ID, FailedLoginAttempts: 5, LockedUntil: &lockedUntil}, nil)
	m.attempts.EXPECT().Record(gomock.Any(), gomock.Any()).Return(nil)

	// The attempt that crosses the threshold reports locked, not unauthorized.
	_, err := s.Login(context.Background(), dto.LoginInput{Email: user.Email, Password: "wrong"})
	assert.ErrorIs(t, err, autherror.ErrAccountLocked)
}

func TestUserService_Login_LockedRejectsCorrectPassword(t *testing.T) {
	s, m := newTestService(t)

	user := activeUser(t, "password123")
	lockedUntil := time.Now().Add(10 * time.Minute)
	user.LockedUntil = &lockedUntil
	user.FailedLoginAttempts = 5

	// No RecordLoginFailure expectation: attempts during lockout must not
	// touch the counter.
	m.users.EXPECT().GetByEmail(gomock.Any(), user.Email).Return(user, nil)
	m.attempts.EXPECT().Record(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, attempt *domain.LoginAttempt) error {
			assert.Equal(t, constant.FailureReasonAccountLocked, attempt.FailureReason)
			return nil
		})

	_, err := s.Login(context.Background(), dto.LoginInput{Email: user.Email, Password: "password123"})
	assert.ErrorIs(t, err, autherror.ErrAccountLocked)
}

func TestUserService_Login_PendingVerification(t *testing.T) {
	s, m := newTestService(t)

	user := activeUser(t, "password123")
	user.Status = constant.UserStatusPendingVerification

	m.users.EXPECT().GetByEmail(gomock.Any(), user.Email).Return(user, nil)
	m.attempts.EXPECT().Record(gomock.Any(), gomock.Any()).Return(nil)

	_, err := s.Login(context.Background(), dto.LoginInput{Email: user.Email, Password: "password123"})
	assert.ErrorIs(t, err, autherror.ErrEmailNotVerified)
}

func refreshClaims(sessionID, family string, generation int) *service.JWTCustomClaims {
	return &service.JWTCustomClaims{
		UserID:      "user-123",
		Email:       "test@example.com",
		TokenType:   constant.TokenTypeRefresh,
		SessionID:   sessionID,
		TokenFamily: family,
		Generation:  generation,
	}
}

func TestUserService_Refresh_Success(t *testing.T) {
	s, m := newTestService(t)

	session := &domain.Session{ID: "session-1", UserID: "user-123", TokenFamily: "fam-1", Generation: 3}
	advanced := &domain.Session{ID: "session-1", UserID: "user-123", TokenFamily: "fam-1", Generation: 4}

	m.token.EXPECT().Verify("refresh-token", constant.TokenTypeRefresh).
		Return(refreshClaims("session-1", "fam-1", 3), nil)
	m.sessions.EXPECT().GetByID(gomock.Any(), "session-1").Return(session, nil)
	m.sessions.EXPECT().AdvanceGeneration(gomock.Any(), "session-1", 3, "10.0.0.1", "test-agent").Return(advanced, nil)
	m.token.EXPECT().IssuePair("user-123", "test@example.com", "session-1", "fam-1", 4).
		Return(&service.TokenPair{AccessToken: "new-access", RefreshToken: "new-refresh", ExpiresIn: 900}, nil)

	resp, err := s.Refresh(context.Background(), dto.RefreshInput{
		RefreshToken: "refresh-token", IPAddress: "10.0.0.1", UserAgent: "test-agent",
	})

	require.NoError(t, err)
	assert.Equal(t, "new-access", resp.AccessToken)
	assert.Equal(t, "new-refresh", resp.RefreshToken)
}

func TestUserService_Refresh_ReuseRevokesFamily(t *testing.T) {
	s, m := newTestService(t)

	// Stored generation has moved past the presented token.
	session := &domain.Session{ID: "session-1", UserID: "user-123", TokenFamily: "fam-1", Generation: 5}

	m.token.EXPECT().Verify("stale-token", constant.TokenTypeRefresh).
		Return(refreshClaims("session-1", "fam-1", 3), nil)
	m.sessions.EXPECT().GetByID(gomock.Any(), "session-1").Return(session, nil)
	m.sessions.EXPECT().AdvanceGeneration(gomock.Any(), "session-1", 3, gomock.Any(), gomock.Any()).Return(nil, nil)
	m.sessions.EXPECT().GetByID(gomock.Any(), "session-1").Return(session, nil)
	m.sessions.EXPECT().RevokeFamily(gomock.Any(), "fam-1").Return(nil)

	_, err := s.Refresh(context.Background(), dto.RefreshInput{RefreshToken: "stale-token"})
	assert.ErrorIs(t, err, autherror.ErrTokenReuseDetected)
}

func TestUserService_Refresh_FutureGenerationFailsClosed(t *testing.T) {
	s, m := newTestService(t)

	// A generation ahead of the store is forged or inconsistent state.
	session := &domain.Session{ID: "session-1", UserID: "user-123", TokenFamily: "fam-1", Generation: 2}

	m.token.EXPECT().Verify("future-token", constant.TokenTypeRefresh).
		Return(refreshClaims("session-1", "fam-1", 9), nil)
	m.sessions.EXPECT().GetByID(gomock.Any(), "session-1").Return(session, nil)
	m.sessions.EXPECT().AdvanceGeneration(gomock.Any(), "session-1", 9, gomock.Any(), gomock.Any()).Return(nil, nil)
	m.sessions.EXPECT().GetByID(gomock.Any(), "session-1").Return(session, nil)
	m.sessions.EXPECT().RevokeFamily(gomock.Any(), "fam-1").Return(nil)

	_, err := s.Refresh(context.Background(), dto.RefreshInput{RefreshToken: "future-token"})
	assert.ErrorIs(t, err, autherror.ErrTokenReuseDetected)
}

func TestUserService_Refresh_RevokedSession(t *testing.T) {
	s, m := newTestService(t)

	revokedAt := time.Now()
	session := &domain.Session{ID: "session-1", UserID: "user-123", TokenFamily: "fam-1", Generation: 3, RevokedAt: &revokedAt}

	m.token.EXPECT().Verify("refresh-token", constant.TokenTypeRefresh).
		Return(refreshClaims("session-1", "fam-1", 3), nil)
	m.sessions.EXPECT().GetByID(gomock.Any(), "session-1").Return(session, nil)

	_, err := s.Refresh(context.Background(), dto.RefreshInput{RefreshToken: "refresh-token"})
	assert.ErrorIs(t, err, autherror.ErrSessionRevoked)
}

func TestUserService_Refresh_SessionNotFound(t *testing.T) {
	s, m := newTestService(t)

	m.token.EXPECT().Verify("refresh-token", constant.TokenTypeRefresh).
		Return(refreshClaims("session-gone", "fam-1", 1), nil)
	m.sessions.EXPECT().GetByID(gomock.Any(), "session-gone").Return(nil, nil)

	_, err := s.Refresh(context.Background(), dto.RefreshInput{RefreshToken: "refresh-token"})
	assert.ErrorIs(t, err, autherror.ErrSessionNotFound)
}

func TestUserService_Refresh_InvalidToken(t *testing.T) {
	s, m := newTestService(t)

	m.token.EXPECT().Verify("bad-token", constant.TokenTypeRefresh).
		Return(nil, autherror.ErrTokenMalformed)

	_, err := s.Refresh(context.Background(), dto.RefreshInput{RefreshToken: "bad-token"})
	assert.ErrorIs(t, err, autherror.ErrTokenMalformed)
}

func TestUserService_Authenticate_RevokedSessionRejected(t *testing.T) {
	s, m := newTestService(t)

	revokedAt := time.Now()
	session := &domain.Session{ID: "session-1", UserID: "user-123", RevokedAt: &revokedAt}

	m.token.EXPECT().Verify("access-token", constant.TokenTypeAccess).
		Return(&service.JWTCustomClaims{UserID: "user-123", TokenType: constant.TokenTypeAccess, SessionID: "session-1"}, nil)
	m.sessions.EXPECT().GetByID(gomock.Any(), "session-1").Return(session, nil)

	// A pre-logout access token dies with its session.
	_, err := s.Authenticate(context.Background(), "access-token")
	assert.ErrorIs(t, err, autherror.ErrSessionRevoked)
}

func TestUserService_Logout(t *testing.T) {
	s, m := newTestService(t)

	m.sessions.EXPECT().Revoke(gomock.Any(), "session-1").Return(nil)

	assert.NoError(t, s.Logout(context.Background(), "session-1"))
}

func TestUserService_ListSessions_MarksCurrent(t *testing.T) {
	s, m := newTestService(t)

	m.sessions.EXPECT().ListActiveByUser(gomock.Any(), "user-123").Return([]*domain.Session{
		{ID: "session-1", UserID: "user-123"},
		{ID: "session-2", UserID: "user-123"},
	}, nil)

	sessions, err := s.ListSessions(context.Background(), "user-123", "session-2")

	require.NoError(t, err)
	require.Len(t, sessions, 2)
	assert.False(t, sessions[0].Current)
	assert.True(t, sessions[1].Current)
}

func TestUserService_RevokeSession_WrongOwner(t *testing.T) {
	s, m := newTestService(t)

	m.sessions.EXPECT().GetByID(gomock.Any(), "session-1").
		Return(&domain.Session{ID: "session-1", UserID: "someone-else"}, nil)

	err := s.RevokeSession(context.Background(), "user-123", "session-1")
	assert.ErrorIs(t, err, autherror.ErrSessionNotFound)
}

func TestUserService_ForgotPassword_UnknownEmailIsSilent(t *testing.T) {
	s, m := newTestService(t)

	m.users.EXPECT().GetByEmail(gomock.Any(), "nobody@example.com").Return(nil, nil)

	err := s.ForgotPassword(context.Background(), dto.ForgotPasswordInput{Email: "nobody@example.com"})
	assert.NoError(t, err)
}

func TestUserService_ResetPassword_Success(t *testing.T) {
	s, m := newTestService(t)

	code := &domain.VerificationCode{ID: "code-1", UserID: "user-123"}
	m.codes.EXPECT().ConsumeAttempt(gomock.Any(), "test@example.com", constant.PurposePasswordReset, gomock.Any(), gomock.Any()).
		Return(code, domain.AttemptMatched, nil)
	m.users.EXPECT().UpdatePassword(gomock.Any(), "user-123", gomock.Any()).Return(nil)
	m.users.EXPECT().ResetLoginFailures(gomock.Any(), "user-123").Return(nil)
	m.sessions.EXPECT().RevokeAllByUser(gomock.Any(), "user-123").Return(nil)

	err := s.ResetPassword(context.Background(), dto.ResetPasswordInput{
		Email: "test@example.com", Code: "123456", NewPassword: "new-password-1",
	})
	assert.NoError(t, err)
}

func TestUserService_ChangePassword_WrongCurrent(t *testing.T) {
	s, m := newTestService(t)

	user := activeUser(t, "password123")
	m.users.EXPECT().GetByID(gomock.Any(), user.ID).Return(user, nil)

	err := s.ChangePassword(context.Background(), user.ID, "session-1", dto.ChangePasswordInput{
		CurrentPassword: "wrong", NewPassword: "new-password-1",
	})
	assert.ErrorIs(t, err, autherror.ErrInvalidCredentials)
}

func TestUserService_ChangePassword_RevokesOtherSessions(t *testing.T) {
	s, m := newTestService(t)

	user := activeUser(t, "password123")
	m.users.EXPECT().GetByID(gomock.Any(), user.ID).Return(user, nil)
	m.users.EXPECT().UpdatePassword(gomock.Any(), user.ID, gomock.Any()).Return(nil)
	m.sessions.EXPECT().ListActiveByUser(gomock.Any(), user.ID).Return([]*domain.Session{
		{ID: "session-1", UserID: user.ID},
		{ID: "session-2", UserID: user.ID},
		{ID: "session-3", UserID: user.ID},
	}, nil)
	m.sessions.EXPECT().Revoke(gomock.Any(), "session-2").Return(nil)
	m.sessions.EXPECT().Revoke(gomock.Any(), "session-3").Return(nil)

	err := s.ChangePassword(context.Background(), user.ID, "session-1", dto.ChangePasswordInput{
		CurrentPassword: "password123", NewPassword: "new-password-1",
	})
	assert.NoError(t, err)
}

func TestUserService_LoginWithOAuth_NewUser(t *testing.T) {
	s, m := newTestService(t)

	profile := &service.OAuthProfile{ExternalID: "ext-1", Email: "new@example.com", EmailVerified: true}

	m.profiles.EXPECT().Verify(gomock.Any(), "provider-token").Return(profile, nil)
	m.users.EXPECT().GetByEmail(gomock.Any(), profile.Email).Return(nil, nil)
	m.users.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, user *domain.User) error {
			assert.Empty(t, user.PasswordHash)
			return nil
		})
	m.users.EXPECT().MarkEmailVerified(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)
	m.token.EXPECT().NewTokenFamily().Return("fam-1", nil)
	m.sessions.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil)
	m.token.EXPECT().IssuePair(gomock.Any(), profile.Email, gomock.Any(), "fam-1", constant.InitialGeneration).
		Return(&service.TokenPair{AccessToken: "access", RefreshToken: "refresh", ExpiresIn: 900}, nil)
	m.attempts.EXPECT().Record(gomock.Any(), gomock.Any()).Return(nil)

	resp, err := s.LoginWithOAuth(context.Background(), dto.OAuthLoginInput{ProviderToken: "provider-token"})

	require.NoError(t, err)
	assert.Equal(t, "access", resp.AccessToken)
}

func TestUserService_LoginWithOAuth_InvalidProviderToken(t *testing.T) {
	s, m := newTestService(t)

	m.profiles.EXPECT().Verify(gomock.Any(), "bad-token").Return(nil, autherror.ErrOAuthTokenExpired)
	m.attempts.EXPECT().Record(gomock.Any(), gomock.Any()).Return(nil)

	_, err := s.LoginWithOAuth(context.Background(), dto.OAuthLoginInput{ProviderToken: "bad-token"})
	assert.ErrorIs(t, err, autherror.ErrOAuthTokenExpired)
}
