package email

import (
	"context"
	"errors"
	"net/textproto"

	"github.com/jwalitptl/clinic-api/internal/config"
	"github.com/jwalitptl/clinic-api/pkg/circuitbreaker"
	apperrors "github.com/jwalitptl/clinic-api/pkg/errors"
)

type breakerSender struct {
	next Sender
	cb   *circuitbreaker.CircuitBreaker
}

// providerReplies are SMTP replies that mean the provider itself is
// unusable rather than one message or recipient being refused.
var providerReplies = map[int]bool{
	421: true, // service not available
	454: true, // TLS not available
	530: true, // authentication required
	534: true, // authentication mechanism too weak
	535: true, // authentication failed
}

// IsProviderFailure reports whether err means the provider is down or
// misconfigured. Recipient and message rejections (550 mailbox
// unavailable, 452 too many recipients, ...) and cancelled sends are not.
func IsProviderFailure(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var reply *textproto.Error
	if errors.As(err, &reply) {
		return providerReplies[reply.Code]
	}
	return true
}

// WithBreaker stops dialing the provider after repeated provider failures
// so a sweep against a dead SMTP server fails fast. Only errors for which
// IsProviderFailure holds count towards opening it.
func WithBreaker(next Sender, settings circuitbreaker.Settings) Sender {
	if !next.Configured() {
		return next
	}
	settings.IsFailure = IsProviderFailure
	return &breakerSender{next: next, cb: circuitbreaker.NewCircuitBreaker(settings)}
}

func (b *breakerSender) Configured() bool { return true }

func (b *breakerSender) Send(ctx context.Context, msg *Message) error {
	err := b.cb.Execute(func() error { return b.next.Send(ctx, msg) })
	if errors.Is(err, circuitbreaker.ErrOpen) {
		return apperrors.Upstream("email provider", err)
	}
	return err
}

// NewSender is the SMTP sender behind a breaker configured from cfg.
func NewSender(cfg config.EmailConfig) Sender {
	return WithBreaker(NewSMTPSender(cfg), circuitbreaker.Settings{
		Name:        "smtp",
		MaxFailures: cfg.BreakerFailures,
		Timeout:     cfg.BreakerTimeout,
	})
}
