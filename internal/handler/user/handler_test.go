package user

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/jwalitptl/clinic-api/internal/clinicctx"
	"github.com/jwalitptl/clinic-api/internal/middleware"
	"github.com/jwalitptl/clinic-api/internal/model"
	apperrors "github.com/jwalitptl/clinic-api/pkg/errors"
)

type mockService struct{ mock.Mock }

func (m *mockService) Context(ctx context.Context, sess *model.Session) (*clinicctx.Context, error) {
	args := m.Called(ctx, sess)
	c, _ := args.Get(0).(*clinicctx.Context)
	return c, args.Error(1)
}

func (m *mockService) SetActiveClinic(ctx context.Context, sess *model.Session, clinicID uuid.UUID) (clinicctx.Snapshot, error) {
	args := m.Called(ctx, sess, clinicID)
	return args.Get(0).(clinicctx.Snapshot), args.Error(1)
}

func setup() (*gin.Engine, *mockService, *model.Session) {
	gin.SetMode(gin.TestMode)
	middleware.RegisterValidation()

	sess := &model.Session{UserID: uuid.New(), User: &model.User{Name: "Ann"}}
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

func TestGetClinicContext(t *testing.T) {
	e, svc, sess := setup()
	first := model.UserClinic{ID: uuid.New(), Name: "First"}

	cc := clinicctx.New(sess.UserID, clinicctx.NewMemoryStore(0))
	assert.NoError(t, cc.Load(context.Background(), []model.UserClinic{first}))
	svc.On("Context", mock.Anything, sess).Return(cc, nil)

	w := do(e, http.MethodGet, "/api/v1/me/clinics", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"active_clinic":{"id":"`+first.ID.String())
}

func TestSetActiveClinicForbidden(t *testing.T) {
	e, svc, _ := setup()
	clinicID := uuid.New()
	svc.On("SetActiveClinic", mock.Anything, mock.Anything, clinicID).
		Return(clinicctx.Snapshot{}, apperrors.Forbidden("clinic not found or access denied", nil))

	w := do(e, http.MethodPut, "/api/v1/me/active-clinic", `{"clinic_id":"`+clinicID.String()+`"}`)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestSetActiveClinicRequiresID(t *testing.T) {
	e, _, _ := setup()

	w := do(e, http.MethodPut, "/api/v1/me/active-clinic", `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetMe(t *testing.T) {
	e, _, _ := setup()

	w := do(e, http.MethodGet, "/api/v1/me", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"name":"Ann"`)
}
