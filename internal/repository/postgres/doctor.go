package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/jwalitptl/clinic-api/internal/model"
	"github.com/jwalitptl/clinic-api/internal/repository"
)

const doctorColumns = `
	id, clinic_id, name, specialty, avatar_image_url,
	available_from_week_day, available_to_week_day,
	available_from_time, available_to_time,
	appointment_price_in_cents, created_at, updated_at
`

type doctorRepository struct {
	BaseRepository
}

func NewDoctorRepository(db *sqlx.DB) repository.DoctorRepository {
	return &doctorRepository{NewBaseRepository(db)}
}

func (r *doctorRepository) Create(ctx context.Context, doctor *model.Doctor) error {
	query := `
		INSERT INTO doctors (
			id, clinic_id, name, specialty, avatar_image_url,
			available_from_week_day, available_to_week_day,
			available_from_time, available_to_time,
			appointment_price_in_cents, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	doctor.ID = uuid.New()
	doctor.CreatedAt = time.Now()

	_, err := r.db.ExecContext(ctx, query,
		doctor.ID,
		doctor.ClinicID,
		doctor.Name,
		doctor.Specialty,
		doctor.AvatarImageURL,
		doctor.AvailableFromWeekDay,
		doctor.AvailableToWeekDay,
		doctor.AvailableFromTime,
		doctor.AvailableToTime,
		doctor.AppointmentPriceInCents,
		doctor.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create doctor: %w", err)
	}
	return nil
}

func (r *doctorRepository) Get(ctx context.Context, id, clinicID uuid.UUID) (*model.Doctor, error) {
	query := `SELECT ` + doctorColumns + ` FROM doctors WHERE id = $1 AND clinic_id = $2`

	var doctor model.Doctor
	if err := r.db.GetContext(ctx, &doctor, query, id, clinicID); err != nil {
		return nil, getError("doctor", err)
	}
	return &doctor, nil
}

// Update writes doctor and scans the stored row back into it.
func (r *doctorRepository) Update(ctx context.Context, doctor *model.Doctor) error {
	query := `
		UPDATE doctors
		SET name = $1, specialty = $2, avatar_image_url = $3,
			available_from_week_day = $4, available_to_week_day = $5,
			available_from_time = $6, available_to_time = $7,
			appointment_price_in_cents = $8, updated_at = $9
		WHERE id = $10 AND clinic_id = $11
		RETURNING ` + doctorColumns

	err := r.db.GetContext(ctx, doctor, query,
		doctor.Name,
		doctor.Specialty,
		doctor.AvatarImageURL,
		doctor.AvailableFromWeekDay,
		doctor.AvailableToWeekDay,
		doctor.AvailableFromTime,
		doctor.AvailableToTime,
		doctor.AppointmentPriceInCents,
		time.Now(),
		doctor.ID,
		doctor.ClinicID,
	)
	if err != nil {
		return updateError("doctor", err)
	}
	return nil
}

func (r *doctorRepository) Delete(ctx context.Context, id, clinicID uuid.UUID) error {
	query := `DELETE FROM doctors WHERE id = $1 AND clinic_id = $2`

	result, err := r.db.ExecContext(ctx, query, id, clinicID)
	if err != nil {
		return fmt.Errorf("failed to delete doctor: %w", err)
	}
	return expectRows("doctor", result)
}

func (r *doctorRepository) List(ctx context.Context, clinicID uuid.UUID) ([]*model.Doctor, error) {
	query := `SELECT ` + doctorColumns + ` FROM doctors WHERE clinic_id = $1 ORDER BY name`

	doctors := []*model.Doctor{}
	if err := r.db.SelectContext(ctx, &doctors, query, clinicID); err != nil {
		return nil, fmt.Errorf("failed to list doctors: %w", err)
	}
	return doctors, nil
}
