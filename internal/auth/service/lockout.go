package service

import (
	"context"
	"time"

	"github.com/nudgely/auth-service/internal/auth/domain"
)

// LockoutPolicy turns consecutive login failures into a temporary block.
// The counters live on the user row; the repository serializes updates with
// a row lock so racing failures cannot slip past the threshold.
type LockoutPolicy struct {
	users     domain.UserRepository
	threshold int
	duration  time.Duration
}

func NewLockoutPolicy(users domain.UserRepository, threshold int, duration time.Duration) *LockoutPolicy {
	return &LockoutPolicy{
		users:     users,
		threshold: threshold,
		duration:  duration,
	}
}

func (p *LockoutPolicy) IsLocked(user *domain.User) bool {
	return user.Locked(time.Now())
}

// RecordFailure counts one failed attempt and reports whether the account is
// now locked. The failure that crosses the threshold reports locked itself,
// so the caller can answer 423 instead of 401 on that attempt.
func (p *LockoutPolicy) RecordFailure(ctx context.Context, userID string) (bool, error) {
	user, err := p.users.RecordLoginFailure(ctx, userID, p.threshold, p.duration)
	if err != nil {
		return false, err
	}
	return user.Locked(time.Now()), nil
}

func (p *LockoutPolicy) RecordSuccess(ctx context.Context, userID string) error {
	return p.users.ResetLoginFailures(ctx, userID)
}
