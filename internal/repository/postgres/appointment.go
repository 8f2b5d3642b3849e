package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/jwalitptl/clinic-api/internal/model"
	"github.com/jwalitptl/clinic-api/internal/repository"
)

type appointmentRepository struct {
	BaseRepository
}

func NewAppointmentRepository(db *sqlx.DB) repository.AppointmentRepository {
	return &appointmentRepository{NewBaseRepository(db)}
}

func (r *appointmentRepository) List(ctx context.Context, clinicID uuid.UUID) ([]*model.Appointment, error) {
	query := `
		SELECT id, clinic_id, doctor_id, patient_id, date, created_at, updated_at
		FROM appointments
		WHERE clinic_id = $1
		ORDER BY date
	`
	appointments := []*model.Appointment{}
	if err := r.db.SelectContext(ctx, &appointments, query, clinicID); err != nil {
		return nil, fmt.Errorf("failed to list appointments: %w", err)
	}
	return appointments, nil
}

func (r *appointmentRepository) ListWithDetails(ctx context.Context, window model.TimeWindow) ([]*model.AppointmentDetails, error) {
	lower, upper := ">=", "<"
	if window.StartExclusive {
		lower = ">"
	}
	if window.EndInclusive {
		upper = "<="
	}

	query := fmt.Sprintf(`
		SELECT
			a.id AS appointment_id,
			a.date,
			p.name AS patient_name,
			p.email AS patient_email,
			d.name AS doctor_name,
			d.specialty AS doctor_specialty,
			c.name AS clinic_name
		FROM appointments a
		JOIN patients p ON p.id = a.patient_id AND p.clinic_id = a.clinic_id
		JOIN doctors d ON d.id = a.doctor_id AND d.clinic_id = a.clinic_id
		JOIN clinics c ON c.id = a.clinic_id
		WHERE a.date %s $1 AND a.date %s $2
		ORDER BY a.date
	`, lower, upper)

	details := []*model.AppointmentDetails{}
	if err := r.db.SelectContext(ctx, &details, query, window.Start, window.End); err != nil {
		return nil, fmt.Errorf("failed to list appointments for window: %w", err)
	}
	return details, nil
}
