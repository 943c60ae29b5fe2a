package mailer

import (
	"context"
	"fmt"

	"github.com/nudgely/auth-service/config"
	"github.com/wneessen/go-mail"
)

// SMTPMailer delivers verification and reset codes over SMTP. Callers treat
// delivery as fire-and-forget; errors are theirs to log.
type SMTPMailer struct {
	cfg config.SMTPConfig
}

func NewSMTPMailer(cfg config.SMTPConfig) *SMTPMailer {
	return &SMTPMailer{cfg: cfg}
}

func (m *SMTPMailer) SendVerificationCode(ctx context.Context, email, code string) error {
	subject := "Verify your Nudgely account"
	body := fmt.Sprintf("Your verification code is %s. It expires in 24 hours.", code)
	return m.send(ctx, email, subject, body)
}

func (m *SMTPMailer) SendPasswordResetCode(ctx context.Context, email, code string) error {
	subject := "Reset your Nudgely password"
	body := fmt.Sprintf("Your password reset code is %s. It expires in 15 minutes.", code)
	return m.send(ctx, email, subject, body)
}

func (m *SMTPMailer) send(ctx context.Context, to, subject, body string) error {
	msg := mail.NewMsg()
	if err := msg.From(m.cfg.From); err != nil {
		return fmt.Errorf("invalid from address: %w", err)
	}
	if err := msg.To(to); err != nil {
		return fmt.Errorf("invalid recipient address: %w", err)
	}
	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextPlain, body)

	opts := []mail.Option{
		mail.WithPort(m.cfg.Port),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(m.cfg.Username),
		mail.WithPassword(m.cfg.Password),
	}

	client, err := mail.NewClient(m.cfg.Host, opts...)
	if err != nil {
		return fmt.Errorf("failed to create mail client: %w", err)
	}

	return client.DialAndSendWithContext(ctx, msg)
}
