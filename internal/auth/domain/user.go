package domain

import "time"

type User struct {
	ID                  string
	Email               string
	PasswordHash        string // empty for OAuth-only accounts
	Status              string
	FailedLoginAttempts int
	LockedUntil         *time.Time
	EmailVerifiedAt     *time.Time
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// Locked reports whether the account is inside a lockout window.
func (u *User) Locked(now time.Time) bool {
	return u.LockedUntil != nil && u.LockedUntil.After(now)
}
