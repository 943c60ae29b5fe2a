package domain

import "time"

// Session is one authenticated device/client lineage. TokenFamily is fixed
// for the lifetime of the lineage; Generation identifies which refresh token
// in the family is currently valid.
type Session struct {
	ID          string
	UserID      string
	TokenFamily string
	Generation  int
	IPAddress   string
	UserAgent   string
	CreatedAt   time.Time
	LastUsedAt  time.Time
	RevokedAt   *time.Time
}

func (s *Session) Revoked() bool {
	return s.RevokedAt != nil
}
