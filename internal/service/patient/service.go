package patient

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/jwalitptl/clinic-api/internal/email"
	"github.com/jwalitptl/clinic-api/internal/model"
	"github.com/jwalitptl/clinic-api/internal/repository"
	"github.com/jwalitptl/clinic-api/internal/service/tenant"
)

const welcomeTimeout = 30 * time.Second

// WelcomeSender sends the welcome email to a new patient.
type WelcomeSender interface {
	SendWelcome(ctx context.Context, d email.WelcomeData) error
}

type Service struct {
	repo    repository.PatientRepository
	clinics repository.ClinicRepository
	guard   tenant.Authorizer
	mailer  WelcomeSender
	wg      sync.WaitGroup
}

func NewService(repo repository.PatientRepository, clinics repository.ClinicRepository,
	guard tenant.Authorizer, mailer WelcomeSender) *Service {
	return &Service{
		repo:    repo,
		clinics: clinics,
		guard:   guard,
		mailer:  mailer,
	}
}

// CreatePatient persists the patient and then sends a welcome email in the
// background. A failed email is logged and never undoes the insert.
func (s *Service) CreatePatient(ctx context.Context, sess *model.Session, clinicID uuid.UUID, req *model.PatientRequest) (*model.Patient, error) {
	if err := s.guard.Authorize(ctx, sess, clinicID); err != nil {
		return nil, err
	}

	patient := &model.Patient{ClinicID: clinicID}
	req.Apply(patient)
	if err := s.repo.Create(ctx, patient); err != nil {
		return nil, fmt.Errorf("failed to create patient: %w", err)
	}

	s.wg.Add(1)
	go func(p model.Patient) {
		defer s.wg.Done()
		s.sendWelcome(context.WithoutCancel(ctx), p)
	}(*patient)

	return patient, nil
}

func (s *Service) sendWelcome(ctx context.Context, p model.Patient) {
	ctx, cancel := context.WithTimeout(ctx, welcomeTimeout)
	defer cancel()

	data := email.WelcomeData{To: p.Email, UserName: p.Name}
	if clinic, err := s.clinics.Get(ctx, p.ClinicID); err == nil {
		data.ClinicName = clinic.Name
	}

	if err := s.mailer.SendWelcome(ctx, data); err != nil {
		log.Error().
			Err(err).
			Str("patient_id", p.ID.String()).
			Str("clinic_id", p.ClinicID.String()).
			Str("email", p.Email).
			Msg("failed to send welcome email")
		return
	}
	log.Debug().Str("patient_id", p.ID.String()).Msg("welcome email sent")
}

// Wait blocks until all background welcome emails have finished.
func (s *Service) Wait() {
	s.wg.Wait()
}

func (s *Service) GetPatient(ctx context.Context, sess *model.Session, clinicID, id uuid.UUID) (*model.Patient, error) {
	if err := s.guard.Authorize(ctx, sess, clinicID); err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, id, clinicID)
}

func (s *Service) UpdatePatient(ctx context.Context, sess *model.Session, clinicID, id uuid.UUID, req *model.PatientRequest) (*model.Patient, error) {
	if err := s.guard.Authorize(ctx, sess, clinicID); err != nil {
		return nil, err
	}

	patient := &model.Patient{ClinicID: clinicID}
	patient.ID = id
	req.Apply(patient)
	if err := s.repo.Update(ctx, patient); err != nil {
		return nil, fmt.Errorf("failed to update patient: %w", err)
	}
	return patient, nil
}

func (s *Service) DeletePatient(ctx context.Context, sess *model.Session, clinicID, id uuid.UUID) error {
	if err := s.guard.Authorize(ctx, sess, clinicID); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id, clinicID); err != nil {
		return fmt.Errorf("failed to delete patient: %w", err)
	}
	return nil
}

func (s *Service) ListPatients(ctx context.Context, sess *model.Session, clinicID uuid.UUID) ([]*model.Patient, error) {
	if err := s.guard.Authorize(ctx, sess, clinicID); err != nil {
		return nil, err
	}
	patients, err := s.repo.List(ctx, clinicID)
	if err != nil {
		return nil, fmt.Errorf("failed to list patients: %w", err)
	}
	return patients, nil
}
