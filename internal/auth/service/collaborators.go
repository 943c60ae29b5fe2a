package service

//go:generate mockgen -destination=../../mocks/mock_collaborators.go -package=mocks github.com/nudgely/auth-service/internal/auth/service EmailSender,ProfileVerifier

import "context"

type EmailSender interface {
	SendVerificationCode(ctx context.Context, email, code string) error
	SendPasswordResetCode(ctx context.Context, email, code string) error
}

// OAuthProfile is what a provider token resolves to.
type OAuthProfile struct {
	ExternalID    string
	Email         string
	EmailVerified bool
	Name          string
	Picture       string
}

// ProfileVerifier validates a provider-issued token and returns the profile
// it attests to. Implementations are provider-specific and external to this
// service.
type ProfileVerifier interface {
	Verify(ctx context.Context, providerToken string) (*OAuthProfile, error)
}
