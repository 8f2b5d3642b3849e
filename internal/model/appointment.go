package model

import (
	"time"

	"github.com/google/uuid"
)

type Appointment struct {
	Base
	ClinicID  uuid.UUID `db:"clinic_id" json:"clinic_id"`
	DoctorID  uuid.UUID `db:"doctor_id" json:"doctor_id"`
	PatientID uuid.UUID `db:"patient_id" json:"patient_id"`
	Date      time.Time `db:"date" json:"date"`
}

// AppointmentDetails is an appointment joined with its patient, doctor and
// clinic, as needed to address a reminder.
type AppointmentDetails struct {
	AppointmentID uuid.UUID `db:"appointment_id" json:"appointment_id"`
	Date          time.Time `db:"date" json:"date"`
	PatientName   string    `db:"patient_name" json:"patient_name"`
	PatientEmail  string    `db:"patient_email" json:"patient_email"`
	DoctorName    string    `db:"doctor_name" json:"doctor_name"`
	Specialty     string    `db:"doctor_specialty" json:"doctor_specialty"`
	ClinicName    string    `db:"clinic_name" json:"clinic_name"`
}

// TimeWindow is an appointment time range, half-open [Start, End) unless
// the exclusivity flags say otherwise.
type TimeWindow struct {
	Start          time.Time
	End            time.Time
	StartExclusive bool
	EndInclusive   bool
}

// Contains reports whether t falls within the window.
func (w TimeWindow) Contains(t time.Time) bool {
	if w.StartExclusive {
		if !t.After(w.Start) {
			return false
		}
	} else if t.Before(w.Start) {
		return false
	}
	if w.EndInclusive {
		return !t.After(w.End)
	}
	return t.Before(w.End)
}
