package mailer

import (
	"context"
	"fmt"
	"log"
	"time"

	mail "github.com/wneessen/go-mail"
)

// Mailer delivers transactional email. Delivery is best-effort: callers treat
// failures as retryable and never couple them to user-visible state.
type Mailer interface {
	SendVerificationEmail(ctx context.Context, to, username, otp string) error
}

// SMTPConfig holds SMTP connection details.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	Timeout  time.Duration
}

// SMTPMailer sends email over SMTP.
type SMTPMailer struct {
	cfg SMTPConfig
}

// NewSMTPMailer creates a new SMTPMailer.
func NewSMTPMailer(cfg SMTPConfig) *SMTPMailer {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	return &SMTPMailer{cfg: cfg}
}

// SendVerificationEmail renders and delivers the one-time-code email.
func (m *SMTPMailer) SendVerificationEmail(ctx context.Context, to, username, otp string) error {
	htmlBody, textBody, err := RenderVerificationEmail(username, otp)
	if err != nil {
		return fmt.Errorf("failed to render verification email: %w", err)
	}

	msg := mail.NewMsg()
	if err := msg.From(m.cfg.From); err != nil {
		return fmt.Errorf("invalid from address: %w", err)
	}
	if err := msg.To(to); err != nil {
		return fmt.Errorf("invalid to address: %w", err)
	}
	msg.Subject("Your verification code")
	msg.SetBodyString(mail.TypeTextPlain, textBody)
	msg.AddAlternativeString(mail.TypeTextHTML, htmlBody)

	client, err := mail.NewClient(m.cfg.Host,
		mail.WithPort(m.cfg.Port),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(m.cfg.Username),
		mail.WithPassword(m.cfg.Password),
		mail.WithTimeout(m.cfg.Timeout),
	)
	if err != nil {
		return fmt.Errorf("failed to create SMTP client: %w", err)
	}

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("failed to send verification email to %s: %w", to, err)
	}
	return nil
}

// LogMailer writes email to the process log instead of sending it. Used when
// no SMTP host is configured, typically in local development.
type LogMailer struct{}

// NewLogMailer creates a new LogMailer.
func NewLogMailer() *LogMailer {
	return &LogMailer{}
}

// SendVerificationEmail logs the verification code instead of delivering it.
func (m *LogMailer) SendVerificationEmail(_ context.Context, to, username, otp string) error {
	log.Printf("[mail] verification code for %s <%s>: %s", username, to, otp)
	return nil
}
