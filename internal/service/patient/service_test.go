package patient

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/clinic-api/internal/email"
	"github.com/jwalitptl/clinic-api/internal/model"
	"github.com/jwalitptl/clinic-api/internal/repository/mocks"
	"github.com/jwalitptl/clinic-api/internal/service/tenant"
	apperrors "github.com/jwalitptl/clinic-api/pkg/errors"
)

type stubMailer struct {
	mu   sync.Mutex
	sent []email.WelcomeData
	err  error
}

func (m *stubMailer) SendWelcome(_ context.Context, d email.WelcomeData) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, d)
	return m.err
}

type fixture struct {
	repo        *mocks.PatientRepository
	clinics     *mocks.ClinicRepository
	memberships *mocks.MembershipRepository
	mailer      *stubMailer
	svc         *Service
}

func newFixture(mailErr error) *fixture {
	f := &fixture{
		repo:        new(mocks.PatientRepository),
		clinics:     new(mocks.ClinicRepository),
		memberships: new(mocks.MembershipRepository),
		mailer:      &stubMailer{err: mailErr},
	}
	f.svc = NewService(f.repo, f.clinics, tenant.NewGuard(f.memberships), f.mailer)
	return f
}

func request() *model.PatientRequest {
	return &model.PatientRequest{Name: "Ann", Email: "a@b.com", Phone: "555-0100", Sex: model.SexFemale}
}

func TestCreatePatientSurvivesWelcomeFailure(t *testing.T) {
	f := newFixture(errors.New("provider down"))
	sess := &model.Session{UserID: uuid.New()}
	clinicID := uuid.New()

	f.memberships.On("Exists", mock.Anything, sess.UserID, clinicID).Return(true, nil)
	f.repo.On("Create", mock.Anything, mock.MatchedBy(func(p *model.Patient) bool {
		return p.ClinicID == clinicID && p.Email == "a@b.com"
	})).Run(func(args mock.Arguments) {
		args.Get(1).(*model.Patient).ID = uuid.New()
	}).Return(nil)
	f.clinics.On("Get", mock.Anything, clinicID).
		Return(&model.Clinic{Base: model.Base{ID: clinicID}, Name: "C1"}, nil)

	patient, err := f.svc.CreatePatient(context.Background(), sess, clinicID, request())
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, patient.ID)

	f.svc.Wait()
	f.repo.AssertNumberOfCalls(t, "Create", 1)
	f.repo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything, mock.Anything)
	require.Len(t, f.mailer.sent, 1)
	assert.Equal(t, email.WelcomeData{To: "a@b.com", UserName: "Ann", ClinicName: "C1"}, f.mailer.sent[0])
}

func TestCreatePatientWelcomeWithoutClinicName(t *testing.T) {
	f := newFixture(nil)
	sess := &model.Session{UserID: uuid.New()}
	clinicID := uuid.New()

	f.memberships.On("Exists", mock.Anything, sess.UserID, clinicID).Return(true, nil)
	f.repo.On("Create", mock.Anything, mock.Anything).Return(nil)
	f.clinics.On("Get", mock.Anything, clinicID).Return(nil, errors.New("db down"))

	_, err := f.svc.CreatePatient(context.Background(), sess, clinicID, request())
	require.NoError(t, err)

	f.svc.Wait()
	require.Len(t, f.mailer.sent, 1)
	assert.Empty(t, f.mailer.sent[0].ClinicName)
}

func TestCreatePatientInsertFailureSendsNothing(t *testing.T) {
	f := newFixture(nil)
	sess := &model.Session{UserID: uuid.New()}
	clinicID := uuid.New()

	f.memberships.On("Exists", mock.Anything, sess.UserID, clinicID).Return(true, nil)
	f.repo.On("Create", mock.Anything, mock.Anything).Return(errors.New("insert failed"))

	_, err := f.svc.CreatePatient(context.Background(), sess, clinicID, request())
	require.Error(t, err)

	f.svc.Wait()
	assert.Empty(t, f.mailer.sent)
}

func TestPatientActionsWithoutMembershipDoNotTouchRepository(t *testing.T) {
	f := newFixture(nil)
	sess := &model.Session{UserID: uuid.New()}
	clinicID, id := uuid.New(), uuid.New()
	f.memberships.On("Exists", mock.Anything, sess.UserID, clinicID).Return(false, nil)

	ctx := context.Background()
	_, err := f.svc.CreatePatient(ctx, sess, clinicID, request())
	assert.Equal(t, apperrors.ErrForbidden, apperrors.CodeOf(err))
	_, err = f.svc.UpdatePatient(ctx, sess, clinicID, id, request())
	assert.Equal(t, apperrors.ErrForbidden, apperrors.CodeOf(err))
	assert.Equal(t, apperrors.ErrForbidden, apperrors.CodeOf(f.svc.DeletePatient(ctx, sess, clinicID, id)))
	_, err = f.svc.GetPatient(ctx, sess, clinicID, id)
	assert.Equal(t, apperrors.ErrForbidden, apperrors.CodeOf(err))

	assert.Empty(t, f.repo.Calls)
	assert.Empty(t, f.mailer.sent)
}

func TestDeletePatientOtherClinicIsNotFound(t *testing.T) {
	f := newFixture(nil)
	sess := &model.Session{UserID: uuid.New()}
	clinicID, id := uuid.New(), uuid.New()

	f.memberships.On("Exists", mock.Anything, sess.UserID, clinicID).Return(true, nil)
	f.repo.On("Delete", mock.Anything, id, clinicID).Return(apperrors.NotFound("patient", nil))

	err := f.svc.DeletePatient(context.Background(), sess, clinicID, id)
	assert.Equal(t, apperrors.ErrNotFound, apperrors.CodeOf(err))
}
