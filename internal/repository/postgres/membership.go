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

type membershipRepository struct {
	BaseRepository
}

func NewMembershipRepository(db *sqlx.DB) repository.MembershipRepository {
	return &membershipRepository{NewBaseRepository(db)}
}

func (r *membershipRepository) Create(ctx context.Context, m *model.Membership) error {
	query := `
		INSERT INTO users_to_clinics (user_id, clinic_id, created_at)
		VALUES ($1, $2, $3)
	`
	m.CreatedAt = time.Now()

	if _, err := r.db.ExecContext(ctx, query, m.UserID, m.ClinicID, m.CreatedAt); err != nil {
		return fmt.Errorf("failed to create membership: %w", err)
	}
	return nil
}

func (r *membershipRepository) Exists(ctx context.Context, userID, clinicID uuid.UUID) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM users_to_clinics
			WHERE user_id = $1 AND clinic_id = $2
		)
	`
	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, userID, clinicID); err != nil {
		return false, fmt.Errorf("failed to check membership: %w", err)
	}
	return exists, nil
}
