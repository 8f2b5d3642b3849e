package email

import (
	"bytes"
	"fmt"
	"html/template"
)

// Template names, also used as metric labels.
const (
	TemplateConfirmation = "appointment-confirmation"
	TemplateReminder     = "appointment-reminder"
	TemplateCancellation = "appointment-cancellation"
	TemplateWelcome      = "welcome"
	TemplateGeneric      = "generic"
)

const defaultText = "This message was sent by the clinic scheduling system."

// AppointmentData fills the three appointment templates. Date and Time
// are already formatted for display.
type AppointmentData struct {
	To            string `json:"to" validate:"required,email"`
	PatientName   string `json:"patient_name" validate:"required"`
	DoctorName    string `json:"doctor_name" validate:"required"`
	Date          string `json:"appointment_date" validate:"required"`
	Time          string `json:"appointment_time" validate:"required"`
	ClinicName    string `json:"clinic_name" validate:"required"`
	ClinicAddress string `json:"clinic_address,omitempty"`
	Reason        string `json:"reason,omitempty"`
}

type WelcomeData struct {
	To         string `json:"to" validate:"required,email"`
	UserName   string `json:"user_name" validate:"required"`
	ClinicName string `json:"clinic_name,omitempty"`
}

const layout = `{{define "layout"}}<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
  <h2 style="color: {{.Color}};">{{.Title}}</h2>
  {{template "body" .Data}}
</div>{{end}}`

const detailsBlock = `{{define "details"}}<div style="background-color: #f3f4f6; padding: 20px; border-radius: 8px; margin: 20px 0;">
    <p><strong>Doctor:</strong> {{.DoctorName}}</p>
    <p><strong>Date:</strong> {{.Date}}</p>
    <p><strong>Time:</strong> {{.Time}}</p>
    <p><strong>Clinic:</strong> {{.ClinicName}}</p>
    {{- if .ClinicAddress}}
    <p><strong>Address:</strong> {{.ClinicAddress}}</p>
    {{- end}}
    {{- if .Reason}}
    <p><strong>Reason:</strong> {{.Reason}}</p>
    {{- end}}
  </div>{{end}}`

var bodies = map[string]string{
	TemplateConfirmation: `{{define "body"}}<p>Hello <strong>{{.PatientName}}</strong>,</p>
  <p>Your appointment has been confirmed.</p>
  {{template "details" .}}
  <p>Please arrive 15 minutes early. Contact us if you need to reschedule or cancel.</p>
  <p>Kind regards,<br>{{.ClinicName}}</p>{{end}}`,

	TemplateReminder: `{{define "body"}}<p>Hello <strong>{{.PatientName}}</strong>,</p>
  <p>This is a reminder of your upcoming appointment:</p>
  {{template "details" .}}
  <p>Please arrive 15 minutes early.</p>
  <p>Kind regards,<br>{{.ClinicName}}</p>{{end}}`,

	TemplateCancellation: `{{define "body"}}<p>Hello <strong>{{.PatientName}}</strong>,</p>
  <p>Your appointment has been cancelled:</p>
  {{template "details" .}}
  <p>Please contact us to book a new time.</p>
  <p>Kind regards,<br>{{.ClinicName}}</p>{{end}}`,

	TemplateWelcome: `{{define "body"}}<p>Hello <strong>{{.UserName}}</strong>,</p>
  <p>Welcome to our appointment system!</p>
  {{- if .ClinicName}}
  <p>You have been registered at <strong>{{.ClinicName}}</strong>.</p>
  {{- end}}
  <ul>
    <li>Book appointments online</li>
    <li>See your upcoming appointments</li>
    <li>Receive reminders by email</li>
  </ul>
  <p>If you have any questions, just reply to this email.</p>{{end}}`,
}

type frame struct {
	Color string
	Title string
	Data  interface{}
}

var templates = mustParse()

func mustParse() map[string]*template.Template {
	out := make(map[string]*template.Template, len(bodies))
	for name, body := range bodies {
		t := template.Must(template.New(name).Parse(layout))
		template.Must(t.Parse(detailsBlock))
		out[name] = template.Must(t.Parse(body))
	}
	return out
}

func render(name, color, title string, data interface{}) (string, error) {
	var buf bytes.Buffer
	err := templates[name].ExecuteTemplate(&buf, "layout", frame{Color: color, Title: title, Data: data})
	if err != nil {
		return "", fmt.Errorf("failed to render %s email: %w", name, err)
	}
	return buf.String(), nil
}

// ConfirmationMessage builds the appointment confirmation email.
func ConfirmationMessage(d AppointmentData) (*Message, error) {
	html, err := render(TemplateConfirmation, "#2563eb", "Appointment confirmed", d)
	if err != nil {
		return nil, err
	}
	return &Message{
		To:      []string{d.To},
		Subject: "Appointment confirmed - " + d.ClinicName,
		HTML:    html,
	}, nil
}

// ReminderMessage builds the appointment reminder email.
func ReminderMessage(d AppointmentData) (*Message, error) {
	html, err := render(TemplateReminder, "#f59e0b", "Appointment reminder", d)
	if err != nil {
		return nil, err
	}
	return &Message{
		To:      []string{d.To},
		Subject: "Reminder: upcoming appointment - " + d.ClinicName,
		HTML:    html,
	}, nil
}

// CancellationMessage builds the appointment cancellation email.
func CancellationMessage(d AppointmentData) (*Message, error) {
	html, err := render(TemplateCancellation, "#dc2626", "Appointment cancelled", d)
	if err != nil {
		return nil, err
	}
	return &Message{
		To:      []string{d.To},
		Subject: "Appointment cancelled - " + d.ClinicName,
		HTML:    html,
	}, nil
}

// WelcomeMessage builds the welcome email.
func WelcomeMessage(d WelcomeData) (*Message, error) {
	html, err := render(TemplateWelcome, "#059669", "Welcome!", d)
	if err != nil {
		return nil, err
	}
	return &Message{
		To:      []string{d.To},
		Subject: "Welcome to the appointment system!",
		HTML:    html,
	}, nil
}
