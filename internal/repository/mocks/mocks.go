// Package mocks provides testify mocks of the repository interfaces.
package mocks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/jwalitptl/clinic-api/internal/model"
)

type UserRepository struct{ mock.Mock }

func (m *UserRepository) Create(ctx context.Context, user *model.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *UserRepository) Get(ctx context.Context, id uuid.UUID) (*model.User, error) {
	args := m.Called(ctx, id)
	user, _ := args.Get(0).(*model.User)
	return user, args.Error(1)
}

func (m *UserRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	args := m.Called(ctx, email)
	user, _ := args.Get(0).(*model.User)
	return user, args.Error(1)
}

type SessionRepository struct{ mock.Mock }

func (m *SessionRepository) Create(ctx context.Context, session *model.Session) error {
	return m.Called(ctx, session).Error(0)
}

func (m *SessionRepository) Get(ctx context.Context, id uuid.UUID) (*model.Session, error) {
	args := m.Called(ctx, id)
	sess, _ := args.Get(0).(*model.Session)
	return sess, args.Error(1)
}

func (m *SessionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *SessionRepository) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	args := m.Called(ctx, before)
	return args.Get(0).(int64), args.Error(1)
}

type ClinicRepository struct{ mock.Mock }

func (m *ClinicRepository) Create(ctx context.Context, clinic *model.Clinic) error {
	return m.Called(ctx, clinic).Error(0)
}

func (m *ClinicRepository) Get(ctx context.Context, id uuid.UUID) (*model.Clinic, error) {
	args := m.Called(ctx, id)
	clinic, _ := args.Get(0).(*model.Clinic)
	return clinic, args.Error(1)
}

func (m *ClinicRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*model.UserClinic, error) {
	args := m.Called(ctx, userID)
	clinics, _ := args.Get(0).([]*model.UserClinic)
	return clinics, args.Error(1)
}

type MembershipRepository struct{ mock.Mock }

func (m *MembershipRepository) Create(ctx context.Context, membership *model.Membership) error {
	return m.Called(ctx, membership).Error(0)
}

func (m *MembershipRepository) Exists(ctx context.Context, userID, clinicID uuid.UUID) (bool, error) {
	args := m.Called(ctx, userID, clinicID)
	return args.Bool(0), args.Error(1)
}

type DoctorRepository struct{ mock.Mock }

func (m *DoctorRepository) Create(ctx context.Context, doctor *model.Doctor) error {
	return m.Called(ctx, doctor).Error(0)
}

func (m *DoctorRepository) Get(ctx context.Context, id, clinicID uuid.UUID) (*model.Doctor, error) {
	args := m.Called(ctx, id, clinicID)
	doctor, _ := args.Get(0).(*model.Doctor)
	return doctor, args.Error(1)
}

func (m *DoctorRepository) Update(ctx context.Context, doctor *model.Doctor) error {
	return m.Called(ctx, doctor).Error(0)
}

func (m *DoctorRepository) Delete(ctx context.Context, id, clinicID uuid.UUID) error {
	return m.Called(ctx, id, clinicID).Error(0)
}

func (m *DoctorRepository) List(ctx context.Context, clinicID uuid.UUID) ([]*model.Doctor, error) {
	args := m.Called(ctx, clinicID)
	doctors, _ := args.Get(0).([]*model.Doctor)
	return doctors, args.Error(1)
}

type PatientRepository struct{ mock.Mock }

func (m *PatientRepository) Create(ctx context.Context, patient *model.Patient) error {
	return m.Called(ctx, patient).Error(0)
}

func (m *PatientRepository) Get(ctx context.Context, id, clinicID uuid.UUID) (*model.Patient, error) {
	args := m.Called(ctx, id, clinicID)
	patient, _ := args.Get(0).(*model.Patient)
	return patient, args.Error(1)
}

func (m *PatientRepository) Update(ctx context.Context, patient *model.Patient) error {
	return m.Called(ctx, patient).Error(0)
}

func (m *PatientRepository) Delete(ctx context.Context, id, clinicID uuid.UUID) error {
	return m.Called(ctx, id, clinicID).Error(0)
}

func (m *PatientRepository) List(ctx context.Context, clinicID uuid.UUID) ([]*model.Patient, error) {
	args := m.Called(ctx, clinicID)
	patients, _ := args.Get(0).([]*model.Patient)
	return patients, args.Error(1)
}

type AppointmentRepository struct{ mock.Mock }

func (m *AppointmentRepository) List(ctx context.Context, clinicID uuid.UUID) ([]*model.Appointment, error) {
	args := m.Called(ctx, clinicID)
	appointments, _ := args.Get(0).([]*model.Appointment)
	return appointments, args.Error(1)
}

func (m *AppointmentRepository) ListWithDetails(ctx context.Context, window model.TimeWindow) ([]*model.AppointmentDetails, error) {
	args := m.Called(ctx, window)
	details, _ := args.Get(0).([]*model.AppointmentDetails)
	return details, args.Error(1)
}
