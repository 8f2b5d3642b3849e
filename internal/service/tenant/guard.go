package tenant

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/jwalitptl/clinic-api/internal/model"
	"github.com/jwalitptl/clinic-api/internal/repository"
	apperrors "github.com/jwalitptl/clinic-api/pkg/errors"
)

// Authorizer decides whether a session may act within a clinic.
type Authorizer interface {
	Authorize(ctx context.Context, sess *model.Session, clinicID uuid.UUID) error
}

// Guard is the single enforcement point for clinic access. It only checks
// membership; statements on clinic data must still filter by clinic_id.
type Guard struct {
	memberships repository.MembershipRepository
}

func NewGuard(memberships repository.MembershipRepository) *Guard {
	return &Guard{memberships: memberships}
}

// Authorize returns an Unauthorized error when sess is nil and a Forbidden
// error when the session's user is not a member of clinicID.
func (g *Guard) Authorize(ctx context.Context, sess *model.Session, clinicID uuid.UUID) error {
	if sess == nil {
		return apperrors.Unauthorized(nil)
	}

	ok, err := g.memberships.Exists(ctx, sess.UserID, clinicID)
	if err != nil {
		return fmt.Errorf("failed to authorize clinic access: %w", err)
	}
	if !ok {
		return apperrors.Forbidden("clinic not found or access denied", nil)
	}
	return nil
}
