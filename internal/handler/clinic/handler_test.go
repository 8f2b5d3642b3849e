package clinic

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/jwalitptl/clinic-api/internal/middleware"
	"github.com/jwalitptl/clinic-api/internal/model"
	apperrors "github.com/jwalitptl/clinic-api/pkg/errors"
)

type mockService struct{ mock.Mock }

func (m *mockService) CreateClinic(ctx context.Context, sess *model.Session, req *model.CreateClinicRequest) (*model.Clinic, error) {
	args := m.Called(ctx, sess, req)
	c, _ := args.Get(0).(*model.Clinic)
	return c, args.Error(1)
}

func (m *mockService) GetClinic(ctx context.Context, sess *model.Session, clinicID uuid.UUID) (*model.Clinic, error) {
	args := m.Called(ctx, sess, clinicID)
	c, _ := args.Get(0).(*model.Clinic)
	return c, args.Error(1)
}

func (m *mockService) ListUserClinics(ctx context.Context, sess *model.Session) ([]*model.UserClinic, error) {
	args := m.Called(ctx, sess)
	c, _ := args.Get(0).([]*model.UserClinic)
	return c, args.Error(1)
}

func (m *mockService) ListAppointments(ctx context.Context, sess *model.Session, clinicID uuid.UUID) ([]*model.Appointment, error) {
	args := m.Called(ctx, sess, clinicID)
	a, _ := args.Get(0).([]*model.Appointment)
	return a, args.Error(1)
}

func setup() (*gin.Engine, *mockService, *model.Session) {
	gin.SetMode(gin.TestMode)
	middleware.RegisterValidation()

	sess := &model.Session{UserID: uuid.New()}
	svc := new(mockService)
	e := gin.New()
	api := e.Group("/api/v1", func(c *gin.Context) { c.Set(middleware.ContextSession, sess) })
	NewHandler(svc).RegisterRoutes(api)
	return e, svc, sess
}

func do(e *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	e.ServeHTTP(w, req)
	return w
}

func TestCreateClinic(t *testing.T) {
	e, svc, sess := setup()
	svc.On("CreateClinic", mock.Anything, sess, &model.CreateClinicRequest{Name: "Downtown"}).
		Return(&model.Clinic{Base: model.Base{ID: uuid.New()}, Name: "Downtown"}, nil)

	w := do(e, http.MethodPost, "/api/v1/clinics", `{"name":"Downtown"}`)
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), `"name":"Downtown"`)
}

func TestCreateClinicRequiresName(t *testing.T) {
	e, _, _ := setup()

	w := do(e, http.MethodPost, "/api/v1/clinics", `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), `"field":"name"`)
}

func TestListClinicsIncludesJoinedAt(t *testing.T) {
	e, svc, sess := setup()
	joined := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	svc.On("ListUserClinics", mock.Anything, sess).
		Return([]*model.UserClinic{{ID: uuid.New(), Name: "Downtown", JoinedAt: joined}}, nil)

	w := do(e, http.MethodGet, "/api/v1/clinics", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"joined_at":"2024-01-02T03:04:05Z"`)
}

func TestGetClinicForbidden(t *testing.T) {
	e, svc, _ := setup()
	clinicID := uuid.New()
	svc.On("GetClinic", mock.Anything, mock.Anything, clinicID).
		Return(nil, apperrors.Forbidden("clinic not found or access denied", nil))

	w := do(e, http.MethodGet, "/api/v1/clinics/"+clinicID.String(), "")
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestListAppointments(t *testing.T) {
	e, svc, _ := setup()
	clinicID := uuid.New()
	svc.On("ListAppointments", mock.Anything, mock.Anything, clinicID).
		Return([]*model.Appointment{{ClinicID: clinicID}}, nil)

	w := do(e, http.MethodGet, "/api/v1/clinics/"+clinicID.String()+"/appointments", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), clinicID.String())
}
