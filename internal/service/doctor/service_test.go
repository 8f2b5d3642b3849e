package doctor

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/clinic-api/internal/model"
	"github.com/jwalitptl/clinic-api/internal/repository/mocks"
	"github.com/jwalitptl/clinic-api/internal/service/tenant"
	apperrors "github.com/jwalitptl/clinic-api/pkg/errors"
)

func intPtr(i int) *int { return &i }

func validRequest() *model.DoctorRequest {
	return &model.DoctorRequest{
		Name:                    "Dr. Who",
		Specialty:               "Cardiology",
		AvailableFromWeekDay:    intPtr(1),
		AvailableToWeekDay:      intPtr(5),
		AvailableFromTime:       "08:00",
		AvailableToTime:         "17:30:00",
		AppointmentPriceInCents: intPtr(20000),
	}
}

func setup() (*Service, *mocks.DoctorRepository, *mocks.MembershipRepository) {
	repo := new(mocks.DoctorRepository)
	memberships := new(mocks.MembershipRepository)
	return NewService(repo, tenant.NewGuard(memberships)), repo, memberships
}

func TestCreateDoctorScopesToClinic(t *testing.T) {
	svc, repo, memberships := setup()
	sess := &model.Session{UserID: uuid.New()}
	clinicID := uuid.New()

	memberships.On("Exists", mock.Anything, sess.UserID, clinicID).Return(true, nil)
	repo.On("Create", mock.Anything, mock.MatchedBy(func(d *model.Doctor) bool {
		return d.ClinicID == clinicID && d.AppointmentPriceInCents == 20000
	})).Return(nil)

	doctor, err := svc.CreateDoctor(context.Background(), sess, clinicID, validRequest())
	require.NoError(t, err)
	assert.Equal(t, clinicID, doctor.ClinicID)
	repo.AssertExpectations(t)
}

func TestDoctorActionsWithoutMembershipDoNotTouchRepository(t *testing.T) {
	svc, repo, memberships := setup()
	sess := &model.Session{UserID: uuid.New()}
	clinicID, id := uuid.New(), uuid.New()
	memberships.On("Exists", mock.Anything, sess.UserID, clinicID).Return(false, nil)

	ctx := context.Background()
	_, err := svc.CreateDoctor(ctx, sess, clinicID, validRequest())
	assert.Equal(t, apperrors.ErrForbidden, apperrors.CodeOf(err))
	_, err = svc.UpdateDoctor(ctx, sess, clinicID, id, validRequest())
	assert.Equal(t, apperrors.ErrForbidden, apperrors.CodeOf(err))
	err = svc.DeleteDoctor(ctx, sess, clinicID, id)
	assert.Equal(t, apperrors.ErrForbidden, apperrors.CodeOf(err))
	_, err = svc.ListDoctors(ctx, sess, clinicID)
	assert.Equal(t, apperrors.ErrForbidden, apperrors.CodeOf(err))

	_, err = svc.GetDoctor(ctx, nil, clinicID, id)
	assert.Equal(t, apperrors.ErrUnauthorized, apperrors.CodeOf(err))

	assert.Empty(t, repo.Calls)
}

func TestUpdateDoctorInOtherClinicIsNotFound(t *testing.T) {
	svc, repo, memberships := setup()
	sess := &model.Session{UserID: uuid.New()}
	clinicID, id := uuid.New(), uuid.New()

	memberships.On("Exists", mock.Anything, sess.UserID, clinicID).Return(true, nil)
	repo.On("Update", mock.Anything, mock.MatchedBy(func(d *model.Doctor) bool {
		return d.ID == id && d.ClinicID == clinicID
	})).Return(apperrors.NotFound("doctor", nil))

	_, err := svc.UpdateDoctor(context.Background(), sess, clinicID, id, validRequest())
	assert.Equal(t, apperrors.ErrNotFound, apperrors.CodeOf(err))
}

func TestCreateDoctorRejectsInvertedAvailability(t *testing.T) {
	svc, repo, memberships := setup()
	sess := &model.Session{UserID: uuid.New()}
	clinicID := uuid.New()
	memberships.On("Exists", mock.Anything, sess.UserID, clinicID).Return(true, nil)

	req := validRequest()
	req.AvailableFromTime = "18:00"
	req.AvailableToTime = "09:00"

	_, err := svc.CreateDoctor(context.Background(), sess, clinicID, req)
	assert.Equal(t, apperrors.ErrBadRequest, apperrors.CodeOf(err))
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}
