package domain

import "time"

// LoginAttempt is an immutable audit row; the ledger is append-only and is
// maintained independently of the lockout counters.
type LoginAttempt struct {
	ID            string
	Email         string
	UserID        string
	Successful    bool
	FailureReason string
	IPAddress     string
	UserAgent     string
	AttemptTime   time.Time
}
