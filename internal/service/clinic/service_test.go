package clinic

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/clinic-api/internal/clinicctx"
	"github.com/jwalitptl/clinic-api/internal/model"
	"github.com/jwalitptl/clinic-api/internal/repository/mocks"
	"github.com/jwalitptl/clinic-api/internal/service/tenant"
	apperrors "github.com/jwalitptl/clinic-api/pkg/errors"
)

type fixture struct {
	clinics      *mocks.ClinicRepository
	memberships  *mocks.MembershipRepository
	appointments *mocks.AppointmentRepository
	store        *clinicctx.MemoryStore
	svc          *Service
}

func newFixture() *fixture {
	f := &fixture{
		clinics:      new(mocks.ClinicRepository),
		memberships:  new(mocks.MembershipRepository),
		appointments: new(mocks.AppointmentRepository),
		store:        clinicctx.NewMemoryStore(time.Hour),
	}
	f.svc = NewService(f.clinics, f.memberships, f.appointments, tenant.NewGuard(f.memberships), f.store)
	return f
}

func TestCreateClinicAddsMembership(t *testing.T) {
	f := newFixture()
	sess := &model.Session{UserID: uuid.New()}
	clinicID := uuid.New()

	f.clinics.On("Create", mock.Anything, mock.AnythingOfType("*model.Clinic")).
		Run(func(args mock.Arguments) { args.Get(1).(*model.Clinic).ID = clinicID }).
		Return(nil)
	f.memberships.On("Create", mock.Anything, &model.Membership{UserID: sess.UserID, ClinicID: clinicID}).Return(nil)

	clinic, err := f.svc.CreateClinic(context.Background(), sess, &model.CreateClinicRequest{Name: "Main"})
	require.NoError(t, err)
	assert.Equal(t, clinicID, clinic.ID)
	f.memberships.AssertExpectations(t)
}

func TestCreateClinicMembershipFailureSurfaces(t *testing.T) {
	f := newFixture()
	sess := &model.Session{UserID: uuid.New()}

	f.clinics.On("Create", mock.Anything, mock.Anything).Return(nil)
	f.memberships.On("Create", mock.Anything, mock.Anything).Return(errors.New("insert failed"))

	_, err := f.svc.CreateClinic(context.Background(), sess, &model.CreateClinicRequest{Name: "Main"})
	assert.EqualError(t, err, "insert failed")
}

func TestCreateClinicRequiresSession(t *testing.T) {
	f := newFixture()
	_, err := f.svc.CreateClinic(context.Background(), nil, &model.CreateClinicRequest{Name: "Main"})
	assert.Equal(t, apperrors.ErrUnauthorized, apperrors.CodeOf(err))
	f.clinics.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestGetClinicForbiddenWithoutMembership(t *testing.T) {
	f := newFixture()
	sess := &model.Session{UserID: uuid.New()}
	clinicID := uuid.New()
	f.memberships.On("Exists", mock.Anything, sess.UserID, clinicID).Return(false, nil)

	_, err := f.svc.GetClinic(context.Background(), sess, clinicID)
	assert.Equal(t, apperrors.ErrForbidden, apperrors.CodeOf(err))
	f.clinics.AssertNotCalled(t, "Get", mock.Anything, mock.Anything)
}

func TestSetActiveClinic(t *testing.T) {
	f := newFixture()
	sess := &model.Session{UserID: uuid.New()}
	a := &model.UserClinic{ID: uuid.New(), Name: "A"}
	b := &model.UserClinic{ID: uuid.New(), Name: "B"}
	f.clinics.On("ListByUser", mock.Anything, sess.UserID).Return([]*model.UserClinic{a, b}, nil)

	snap, err := f.svc.SetActiveClinic(context.Background(), sess, b.ID)
	require.NoError(t, err)
	require.NotNil(t, snap.ActiveClinic)
	assert.Equal(t, b.ID, snap.ActiveClinic.ID)

	cc, err := f.svc.Context(context.Background(), sess)
	require.NoError(t, err)
	assert.Equal(t, b.ID, cc.Active().ID)

	_, err = f.svc.SetActiveClinic(context.Background(), sess, uuid.New())
	assert.Equal(t, apperrors.ErrForbidden, apperrors.CodeOf(err))
}
