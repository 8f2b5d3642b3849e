package email

import (
	"context"
	"encoding/json"
	"fmt"

	apperrors "github.com/jwalitptl/clinic-api/pkg/errors"
	"github.com/jwalitptl/clinic-api/pkg/validator"
)

// Request is one variant of the POST /email payload.
type Request interface {
	Type() string
	Dispatch(ctx context.Context, s *Service) error
}

type envelope struct {
	Type string `json:"type"`
}

// Recipients accepts either a single address or a list of addresses.
type Recipients []string

func (r *Recipients) UnmarshalJSON(b []byte) error {
	var one string
	if err := json.Unmarshal(b, &one); err == nil {
		*r = Recipients{one}
		return nil
	}
	var many []string
	if err := json.Unmarshal(b, &many); err != nil {
		return fmt.Errorf("to must be an address or a list of addresses")
	}
	*r = many
	return nil
}

type ConfirmationRequest struct{ AppointmentData }

func (ConfirmationRequest) Type() string { return TemplateConfirmation }

func (r ConfirmationRequest) Dispatch(ctx context.Context, s *Service) error {
	return s.SendAppointmentConfirmation(ctx, r.AppointmentData)
}

type ReminderRequest struct{ AppointmentData }

func (ReminderRequest) Type() string { return TemplateReminder }

func (r ReminderRequest) Dispatch(ctx context.Context, s *Service) error {
	return s.SendAppointmentReminder(ctx, r.AppointmentData)
}

type CancellationRequest struct{ AppointmentData }

func (CancellationRequest) Type() string { return TemplateCancellation }

func (r CancellationRequest) Dispatch(ctx context.Context, s *Service) error {
	return s.SendAppointmentCancellation(ctx, r.AppointmentData)
}

type WelcomeRequest struct{ WelcomeData }

func (WelcomeRequest) Type() string { return TemplateWelcome }

func (r WelcomeRequest) Dispatch(ctx context.Context, s *Service) error {
	return s.SendWelcome(ctx, r.WelcomeData)
}

type GenericRequest struct {
	To      Recipients `json:"to" validate:"required,min=1,dive,email"`
	Subject string     `json:"subject" validate:"required,max=255"`
	HTML    string     `json:"html" validate:"required_without=Text"`
	Text    string     `json:"text"`
}

func (GenericRequest) Type() string { return TemplateGeneric }

func (r GenericRequest) Dispatch(ctx context.Context, s *Service) error {
	return s.Send(ctx, &Message{To: r.To, Subject: r.Subject, HTML: r.HTML, Text: r.Text})
}

// ParseRequest decodes body into the variant named by its "type" field and
// validates it. Unknown types and invalid fields are Validation errors.
func ParseRequest(body []byte) (Request, error) {
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, apperrors.BadRequest("invalid request body", err)
	}

	var req Request
	switch env.Type {
	case TemplateConfirmation:
		req = &ConfirmationRequest{}
	case TemplateReminder:
		req = &ReminderRequest{}
	case TemplateCancellation:
		req = &CancellationRequest{}
	case TemplateWelcome:
		req = &WelcomeRequest{}
	case TemplateGeneric:
		req = &GenericRequest{}
	default:
		return nil, apperrors.BadRequest("invalid email type", nil)
	}

	if err := json.Unmarshal(body, req); err != nil {
		return nil, apperrors.BadRequest("invalid request body", err)
	}
	if err := validator.Validate(req); err != nil {
		return nil, apperrors.Validation("invalid email request", validator.Fields(err))
	}
	return req, nil
}
