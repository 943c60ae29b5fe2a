package constant

import "time"

const (
	// MaxFailedLogins consecutive failures lock the account.
	MaxFailedLogins = 5

	// DefaultLockoutDuration is fixed from the failure that crosses the threshold.
	DefaultLockoutDuration = 15 * time.Minute

	// MaxVerificationAttempts bounds guesses against a single code.
	MaxVerificationAttempts = 5

	VerificationCodeLength = 6

	EmailVerifyCodeTTL   = 24 * time.Hour
	PasswordResetCodeTTL = 15 * time.Minute

	// TokenFamilyBytes is the entropy of a session's token family identifier.
	TokenFamilyBytes = 16

	InitialGeneration = 1
)

const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

const (
	PurposeEmailVerify   = "EMAIL_VERIFY"
	PurposePasswordReset = "PASSWORD_RESET"
)

const (
	UserStatusPendingVerification = "PENDING_VERIFICATION"
	UserStatusActive              = "ACTIVE"
	UserStatusSuspended           = "SUSPENDED"
)

// Failure reasons recorded in the login attempt ledger.
const (
	FailureReasonWrongPassword    = "WRONG_PASSWORD"
	FailureReasonUserNotFound     = "USER_NOT_FOUND"
	FailureReasonAccountLocked    = "ACCOUNT_LOCKED"
	FailureReasonAccountSuspended = "ACCOUNT_SUSPENDED"
	FailureReasonEmailNotVerified = "EMAIL_NOT_VERIFIED"
	FailureReasonOAuthInvalid     = "OAUTH_TOKEN_INVALID"
)
