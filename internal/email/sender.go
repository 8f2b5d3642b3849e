package email

import (
	"context"
	"fmt"

	"gopkg.in/gomail.v2"

	"github.com/jwalitptl/clinic-api/internal/config"
	apperrors "github.com/jwalitptl/clinic-api/pkg/errors"
)

// ErrNotConfigured is returned by every send when no SMTP host is set.
var ErrNotConfigured = &apperrors.AppError{
	Code:    apperrors.ErrUpstream,
	Message: "email provider is not configured",
}

// Message is one outgoing email. At least one of HTML and Text is set.
type Message struct {
	To      []string
	Subject string
	HTML    string
	Text    string
}

// Sender delivers messages to an email provider.
type Sender interface {
	Send(ctx context.Context, msg *Message) error
	Configured() bool
}

type smtpSender struct {
	dialer   *gomail.Dialer
	from     string
	fromName string
}

// NewSMTPSender returns a gomail-backed sender, or a sender that always
// fails with ErrNotConfigured when cfg has no host.
func NewSMTPSender(cfg config.EmailConfig) Sender {
	if cfg.Host == "" {
		return unconfigured{}
	}
	return &smtpSender{
		dialer:   gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:     cfg.From,
		fromName: cfg.FromName,
	}
}

func (s *smtpSender) Configured() bool { return true }

func (s *smtpSender) Send(ctx context.Context, msg *Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m := gomail.NewMessage()
	m.SetAddressHeader("From", s.from, s.fromName)
	m.SetHeader("To", msg.To...)
	m.SetHeader("Subject", msg.Subject)

	text := msg.Text
	if text == "" {
		text = defaultText
	}
	m.SetBody("text/plain", text)
	if msg.HTML != "" {
		m.AddAlternative("text/html", msg.HTML)
	}

	if err := s.dialer.DialAndSend(m); err != nil {
		return apperrors.Upstream("email provider", fmt.Errorf("smtp send to %v: %w", msg.To, err))
	}
	return nil
}

type unconfigured struct{}

func (unconfigured) Configured() bool { return false }

func (unconfigured) Send(context.Context, *Message) error { return ErrNotConfigured }
