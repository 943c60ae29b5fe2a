package domain

import "time"

// VerificationCode is a single-use, bounded-attempt secret. Only the SHA-256
// hash of the code is stored; the plaintext leaves the service exactly once,
// inside the delivery email.
type VerificationCode struct {
	ID           string
	UserID       string
	Email        string
	Purpose      string
	CodeHash     string
	ExpiresAt    time.Time
	Attempts     int
	MaxAttempts  int
	ConsumedAt   *time.Time
	SupersededAt *time.Time
	CreatedAt    time.Time
}

func (v *VerificationCode) Expired(now time.Time) bool {
	return now.After(v.ExpiresAt)
}

func (v *VerificationCode) Exhausted() bool {
	return v.Attempts >= v.MaxAttempts
}
