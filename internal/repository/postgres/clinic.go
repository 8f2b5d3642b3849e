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

type clinicRepository struct {
	BaseRepository
}

func NewClinicRepository(db *sqlx.DB) repository.ClinicRepository {
	return &clinicRepository{NewBaseRepository(db)}
}

func (r *clinicRepository) Create(ctx context.Context, clinic *model.Clinic) error {
	query := `
		INSERT INTO clinics (id, name, logo, created_at)
		VALUES ($1, $2, $3, $4)
	`
	clinic.ID = uuid.New()
	clinic.CreatedAt = time.Now()

	_, err := r.db.ExecContext(ctx, query,
		clinic.ID,
		clinic.Name,
		clinic.Logo,
		clinic.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create clinic: %w", err)
	}
	return nil
}

func (r *clinicRepository) Get(ctx context.Context, id uuid.UUID) (*model.Clinic, error) {
	query := `
		SELECT id, name, logo, created_at, updated_at
		FROM clinics
		WHERE id = $1
	`
	var clinic model.Clinic
	if err := r.db.GetContext(ctx, &clinic, query, id); err != nil {
		return nil, getError("clinic", err)
	}
	return &clinic, nil
}

func (r *clinicRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*model.UserClinic, error) {
	query := `
		SELECT
			c.id, c.name, c.logo, c.created_at, c.updated_at,
			uc.created_at AS joined_at
		FROM users_to_clinics uc
		JOIN clinics c ON c.id = uc.clinic_id
		WHERE uc.user_id = $1
		ORDER BY uc.created_at
	`
	clinics := []*model.UserClinic{}
	if err := r.db.SelectContext(ctx, &clinics, query, userID); err != nil {
		return nil, fmt.Errorf("failed to list user clinics: %w", err)
	}
	return clinics, nil
}
