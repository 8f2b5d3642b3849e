package email

import (
	"context"

	"github.com/jwalitptl/clinic-api/pkg/metrics"
)

// Service renders the canned templates and hands them to a Sender.
type Service struct {
	sender  Sender
	metrics *metrics.Metrics
}

func NewService(sender Sender, m *metrics.Metrics) *Service {
	if m == nil {
		m = metrics.Noop()
	}
	return &Service{sender: sender, metrics: m}
}

// Configured reports whether the underlying provider can send.
func (s *Service) Configured() bool {
	return s.sender.Configured()
}

func (s *Service) SendAppointmentConfirmation(ctx context.Context, d AppointmentData) error {
	return s.sendBuilt(ctx, TemplateConfirmation, func() (*Message, error) { return ConfirmationMessage(d) })
}

func (s *Service) SendAppointmentReminder(ctx context.Context, d AppointmentData) error {
	return s.sendBuilt(ctx, TemplateReminder, func() (*Message, error) { return ReminderMessage(d) })
}

func (s *Service) SendAppointmentCancellation(ctx context.Context, d AppointmentData) error {
	return s.sendBuilt(ctx, TemplateCancellation, func() (*Message, error) { return CancellationMessage(d) })
}

func (s *Service) SendWelcome(ctx context.Context, d WelcomeData) error {
	return s.sendBuilt(ctx, TemplateWelcome, func() (*Message, error) { return WelcomeMessage(d) })
}

// Send delivers a caller-built message.
func (s *Service) Send(ctx context.Context, msg *Message) error {
	return s.sendBuilt(ctx, TemplateGeneric, func() (*Message, error) { return msg, nil })
}

func (s *Service) sendBuilt(ctx context.Context, name string, build func() (*Message, error)) error {
	msg, err := build()
	if err == nil {
		err = s.sender.Send(ctx, msg)
	}
	s.metrics.EmailSends.WithLabelValues(name, metrics.Outcome(err)).Inc()
	return err
}
