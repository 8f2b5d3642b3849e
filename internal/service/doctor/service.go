package doctor

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/jwalitptl/clinic-api/internal/model"
	"github.com/jwalitptl/clinic-api/internal/repository"
	"github.com/jwalitptl/clinic-api/internal/service/tenant"
	apperrors "github.com/jwalitptl/clinic-api/pkg/errors"
	"github.com/jwalitptl/clinic-api/pkg/validator"
)

type Service struct {
	repo  repository.DoctorRepository
	guard tenant.Authorizer
}

func NewService(repo repository.DoctorRepository, guard tenant.Authorizer) *Service {
	return &Service{repo: repo, guard: guard}
}

func (s *Service) CreateDoctor(ctx context.Context, sess *model.Session, clinicID uuid.UUID, req *model.DoctorRequest) (*model.Doctor, error) {
	if err := s.guard.Authorize(ctx, sess, clinicID); err != nil {
		return nil, err
	}
	if err := validateAvailability(req); err != nil {
		return nil, err
	}

	doctor := &model.Doctor{ClinicID: clinicID}
	req.Apply(doctor)
	if err := s.repo.Create(ctx, doctor); err != nil {
		return nil, err
	}

	log.Info().
		Str("clinic_id", clinicID.String()).
		Str("doctor_id", doctor.ID.String()).
		Msg("doctor created")
	return doctor, nil
}

func (s *Service) GetDoctor(ctx context.Context, sess *model.Session, clinicID, id uuid.UUID) (*model.Doctor, error) {
	if err := s.guard.Authorize(ctx, sess, clinicID); err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, id, clinicID)
}

// UpdateDoctor overwrites the doctor's fields. The statement is scoped to
// clinicID, so an id from another clinic is NotFound.
func (s *Service) UpdateDoctor(ctx context.Context, sess *model.Session, clinicID, id uuid.UUID, req *model.DoctorRequest) (*model.Doctor, error) {
	if err := s.guard.Authorize(ctx, sess, clinicID); err != nil {
		return nil, err
	}
	if err := validateAvailability(req); err != nil {
		return nil, err
	}

	doctor := &model.Doctor{ClinicID: clinicID}
	doctor.ID = id
	req.Apply(doctor)
	if err := s.repo.Update(ctx, doctor); err != nil {
		return nil, err
	}
	return doctor, nil
}

func (s *Service) DeleteDoctor(ctx context.Context, sess *model.Session, clinicID, id uuid.UUID) error {
	if err := s.guard.Authorize(ctx, sess, clinicID); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id, clinicID)
}

func (s *Service) ListDoctors(ctx context.Context, sess *model.Session, clinicID uuid.UUID) ([]*model.Doctor, error) {
	if err := s.guard.Authorize(ctx, sess, clinicID); err != nil {
		return nil, err
	}
	return s.repo.List(ctx, clinicID)
}

// validateAvailability checks that the daily window ends after it starts.
// Clock strings are zero-padded, so lexical order is time order.
func validateAvailability(req *model.DoctorRequest) error {
	from, to := normalizeClock(req.AvailableFromTime), normalizeClock(req.AvailableToTime)
	if to <= from {
		return apperrors.Validation("invalid availability", []validator.FieldError{{
			Field:   "available_to_time",
			Message: "must be after available_from_time",
		}})
	}
	return nil
}

func normalizeClock(s string) string {
	if len(s) == len("15:04") {
		return s + ":00"
	}
	return s
}
