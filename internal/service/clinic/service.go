package clinic

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/jwalitptl/clinic-api/internal/clinicctx"
	"github.com/jwalitptl/clinic-api/internal/model"
	"github.com/jwalitptl/clinic-api/internal/repository"
	"github.com/jwalitptl/clinic-api/internal/service/tenant"
	apperrors "github.com/jwalitptl/clinic-api/pkg/errors"
)

type Service struct {
	clinics      repository.ClinicRepository
	memberships  repository.MembershipRepository
	appointments repository.AppointmentRepository
	guard        tenant.Authorizer
	selections   clinicctx.Store
}

func NewService(clinics repository.ClinicRepository, memberships repository.MembershipRepository,
	appointments repository.AppointmentRepository, guard tenant.Authorizer, selections clinicctx.Store) *Service {
	return &Service{
		clinics:      clinics,
		memberships:  memberships,
		appointments: appointments,
		guard:        guard,
		selections:   selections,
	}
}

// CreateClinic onboards a clinic and makes the caller its first member.
// The two inserts are independent statements.
func (s *Service) CreateClinic(ctx context.Context, sess *model.Session, req *model.CreateClinicRequest) (*model.Clinic, error) {
	if sess == nil {
		return nil, apperrors.Unauthorized(nil)
	}

	clinic := &model.Clinic{Name: req.Name, Logo: req.Logo}
	if err := s.clinics.Create(ctx, clinic); err != nil {
		return nil, err
	}

	if err := s.memberships.Create(ctx, &model.Membership{UserID: sess.UserID, ClinicID: clinic.ID}); err != nil {
		return nil, err
	}

	log.Info().
		Str("clinic_id", clinic.ID.String()).
		Str("user_id", sess.UserID.String()).
		Msg("clinic created")
	return clinic, nil
}

func (s *Service) GetClinic(ctx context.Context, sess *model.Session, clinicID uuid.UUID) (*model.Clinic, error) {
	if err := s.guard.Authorize(ctx, sess, clinicID); err != nil {
		return nil, err
	}
	return s.clinics.Get(ctx, clinicID)
}

// ListUserClinics returns the caller's clinics with their join date.
func (s *Service) ListUserClinics(ctx context.Context, sess *model.Session) ([]*model.UserClinic, error) {
	if sess == nil {
		return nil, apperrors.Unauthorized(nil)
	}
	return s.clinics.ListByUser(ctx, sess.UserID)
}

func (s *Service) ListAppointments(ctx context.Context, sess *model.Session, clinicID uuid.UUID) ([]*model.Appointment, error) {
	if err := s.guard.Authorize(ctx, sess, clinicID); err != nil {
		return nil, err
	}
	return s.appointments.List(ctx, clinicID)
}

// Context loads the caller's clinic context, restoring the persisted
// active clinic.
func (s *Service) Context(ctx context.Context, sess *model.Session) (*clinicctx.Context, error) {
	clinics, err := s.ListUserClinics(ctx, sess)
	if err != nil {
		return nil, err
	}

	cc := clinicctx.New(sess.UserID, s.selections)
	if err := cc.Load(ctx, deref(clinics)); err != nil {
		log.Warn().Err(err).Str("user_id", sess.UserID.String()).Msg("failed to persist active clinic")
	}
	return cc, nil
}

// SetActiveClinic selects clinicID for the caller. Selecting a clinic the
// caller does not belong to is Forbidden.
func (s *Service) SetActiveClinic(ctx context.Context, sess *model.Session, clinicID uuid.UUID) (clinicctx.Snapshot, error) {
	cc, err := s.Context(ctx, sess)
	if err != nil {
		return clinicctx.Snapshot{}, err
	}

	if err := cc.SetActive(ctx, clinicID); err != nil {
		if errors.Is(err, clinicctx.ErrUnknownClinic) {
			return clinicctx.Snapshot{}, apperrors.Forbidden("clinic not found or access denied", err)
		}
		return clinicctx.Snapshot{}, fmt.Errorf("failed to set active clinic: %w", err)
	}
	return cc.Snapshot(), nil
}

func deref(in []*model.UserClinic) []model.UserClinic {
	out := make([]model.UserClinic, 0, len(in))
	for _, c := range in {
		out = append(out, *c)
	}
	return out
}
