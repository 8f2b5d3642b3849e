package patient

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/jwalitptl/clinic-api/internal/handler"
	"github.com/jwalitptl/clinic-api/internal/middleware"
	"github.com/jwalitptl/clinic-api/internal/model"
	"github.com/jwalitptl/clinic-api/pkg/httputil"
)

type PatientServicer interface {
	CreatePatient(ctx context.Context, sess *model.Session, clinicID uuid.UUID, req *model.PatientRequest) (*model.Patient, error)
	GetPatient(ctx context.Context, sess *model.Session, clinicID, id uuid.UUID) (*model.Patient, error)
	UpdatePatient(ctx context.Context, sess *model.Session, clinicID, id uuid.UUID, req *model.PatientRequest) (*model.Patient, error)
	DeletePatient(ctx context.Context, sess *model.Session, clinicID, id uuid.UUID) error
	ListPatients(ctx context.Context, sess *model.Session, clinicID uuid.UUID) ([]*model.Patient, error)
}

type Handler struct {
	service PatientServicer
}

func NewHandler(service PatientServicer) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	patients := r.Group("/clinics/:clinicId/patients")
	{
		patients.POST("", h.CreatePatient)
		patients.GET("", h.ListPatients)
		patients.GET("/:id", h.GetPatient)
		patients.PUT("/:id", h.UpdatePatient)
		patients.DELETE("/:id", h.DeletePatient)
	}
}

func (h *Handler) CreatePatient(c *gin.Context) {
	clinicID, ok := handler.UUIDParam(c, "clinicId")
	if !ok {
		return
	}
	var req model.PatientRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	patient, err := h.service.CreatePatient(c.Request.Context(), middleware.Session(c), clinicID, &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithCreated(c, patient)
}

func (h *Handler) GetPatient(c *gin.Context) {
	clinicID, id, ok := ids(c)
	if !ok {
		return
	}

	patient, err := h.service.GetPatient(c.Request.Context(), middleware.Session(c), clinicID, id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, patient)
}

func (h *Handler) UpdatePatient(c *gin.Context) {
	clinicID, id, ok := ids(c)
	if !ok {
		return
	}
	var req model.PatientRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	patient, err := h.service.UpdatePatient(c.Request.Context(), middleware.Session(c), clinicID, id, &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, patient)
}

func (h *Handler) DeletePatient(c *gin.Context) {
	clinicID, id, ok := ids(c)
	if !ok {
		return
	}

	if err := h.service.DeletePatient(c.Request.Context(), middleware.Session(c), clinicID, id); err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *Handler) ListPatients(c *gin.Context) {
	clinicID, ok := handler.UUIDParam(c, "clinicId")
	if !ok {
		return
	}

	patients, err := h.service.ListPatients(c.Request.Context(), middleware.Session(c), clinicID)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, patients)
}

func ids(c *gin.Context) (clinicID, id uuid.UUID, ok bool) {
	if clinicID, ok = handler.UUIDParam(c, "clinicId"); !ok {
		return
	}
	id, ok = handler.UUIDParam(c, "id")
	return
}
