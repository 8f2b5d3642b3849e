package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/clinic-api/internal/model"
)

// All repository interfaces in one file
type (
	UserRepository interface {
		Create(ctx context.Context, user *model.User) error
		Get(ctx context.Context, id uuid.UUID) (*model.User, error)
		GetByEmail(ctx context.Context, email string) (*model.User, error)
	}

	// SessionRepository stores identity-provider sessions
	SessionRepository interface {
		Create(ctx context.Context, session *model.Session) error
		Get(ctx context.Context, id uuid.UUID) (*model.Session, error)
		Delete(ctx context.Context, id uuid.UUID) error
		DeleteExpired(ctx context.Context, before time.Time) (int64, error)
	}

	ClinicRepository interface {
		Create(ctx context.Context, clinic *model.Clinic) error
		Get(ctx context.Context, id uuid.UUID) (*model.Clinic, error)
		ListByUser(ctx context.Context, userID uuid.UUID) ([]*model.UserClinic, error)
	}

	MembershipRepository interface {
		Create(ctx context.Context, membership *model.Membership) error
		Exists(ctx context.Context, userID, clinicID uuid.UUID) (bool, error)
	}

	// DoctorRepository scopes every statement to a clinic. A row whose
	// clinic_id differs from the one given is treated as absent.
	DoctorRepository interface {
		Create(ctx context.Context, doctor *model.Doctor) error
		Get(ctx context.Context, id, clinicID uuid.UUID) (*model.Doctor, error)
		Update(ctx context.Context, doctor *model.Doctor) error
		Delete(ctx context.Context, id, clinicID uuid.UUID) error
		List(ctx context.Context, clinicID uuid.UUID) ([]*model.Doctor, error)
	}

	// PatientRepository has the same clinic scoping as DoctorRepository.
	PatientRepository interface {
		Create(ctx context.Context, patient *model.Patient) error
		Get(ctx context.Context, id, clinicID uuid.UUID) (*model.Patient, error)
		Update(ctx context.Context, patient *model.Patient) error
		Delete(ctx context.Context, id, clinicID uuid.UUID) error
		List(ctx context.Context, clinicID uuid.UUID) ([]*model.Patient, error)
	}

	AppointmentRepository interface {
		List(ctx context.Context, clinicID uuid.UUID) ([]*model.Appointment, error)
		// ListWithDetails returns appointments inside window joined with
		// their patient, doctor and clinic, ordered by date.
		ListWithDetails(ctx context.Context, window model.TimeWindow) ([]*model.AppointmentDetails, error)
	}
)
