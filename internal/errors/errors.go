package errors

import "fmt"

// Error is a typed authentication failure with a stable code and an
// HTTP-style status. Callers branch on the sentinel values below rather
// than matching message strings.
type Error struct {
	Code    string
	Status  int
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// WithMessage returns a copy carrying a more specific message but the same
// code and status, so errors.Is still matches the sentinel.
func (e *Error) WithMessage(format string, args ...any) *Error {
	return &Error{Code: e.Code, Status: e.Status, Message: fmt.Sprintf(format, args...)}
}

var (
	ErrUnauthenticated              = &Error{Code: "AUTH_UNAUTHENTICATED", Status: 401, Message: "missing or invalid access token"}
	ErrTokenExpired                 = &Error{Code: "TOKEN_EXPIRED", Status: 401, Message: "token expired"}
	ErrTokenMalformed               = &Error{Code: "TOKEN_MALFORMED", Status: 401, Message: "token malformed"}
	ErrTokenWrongType               = &Error{Code: "TOKEN_WRONG_TYPE", Status: 401, Message: "token type mismatch"}
	ErrSessionNotFound              = &Error{Code: "SESSION_NOT_FOUND", Status: 401, Message: "session not found"}
	ErrSessionRevoked               = &Error{Code: "SESSION_REVOKED", Status: 401, Message: "session revoked"}
	ErrTokenReuseDetected           = &Error{Code: "SESSION_TOKEN_REUSE", Status: 401, Message: "refresh token reuse detected"}
	ErrAccountLocked                = &Error{Code: "ACCOUNT_LOCKED", Status: 423, Message: "account temporarily locked"}
	ErrInvalidCredentials           = &Error{Code: "CREDENTIALS_INVALID", Status: 401, Message: "invalid credentials"}
	ErrEmailAlreadyInUse            = &Error{Code: "EMAIL_ALREADY_IN_USE", Status: 409, Message: "email already in use"}
	ErrEmailNotVerified             = &Error{Code: "EMAIL_NOT_VERIFIED", Status: 403, Message: "email not verified"}
	ErrVerificationCodeInvalid      = &Error{Code: "VERIFICATION_CODE_INVALID", Status: 401, Message: "verification code invalid"}
	ErrVerificationCodeExpired      = &Error{Code: "VERIFICATION_CODE_EXPIRED", Status: 401, Message: "verification code expired"}
	ErrVerificationAttemptsExceeded = &Error{Code: "VERIFICATION_ATTEMPTS_EXCEEDED", Status: 429, Message: "too many verification attempts"}
	ErrOAuthTokenInvalid            = &Error{Code: "OAUTH_TOKEN_INVALID", Status: 401, Message: "provider token invalid"}
	ErrOAuthTokenExpired            = &Error{Code: "OAUTH_TOKEN_EXPIRED", Status: 401, Message: "provider token expired"}
)
