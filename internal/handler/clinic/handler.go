package clinic

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/jwalitptl/clinic-api/internal/handler"
	"github.com/jwalitptl/clinic-api/internal/middleware"
	"github.com/jwalitptl/clinic-api/internal/model"
	"github.com/jwalitptl/clinic-api/pkg/httputil"
)

type ClinicServicer interface {
	CreateClinic(ctx context.Context, sess *model.Session, req *model.CreateClinicRequest) (*model.Clinic, error)
	GetClinic(ctx context.Context, sess *model.Session, clinicID uuid.UUID) (*model.Clinic, error)
	ListUserClinics(ctx context.Context, sess *model.Session) ([]*model.UserClinic, error)
	ListAppointments(ctx context.Context, sess *model.Session, clinicID uuid.UUID) ([]*model.Appointment, error)
}

type Handler struct {
	service ClinicServicer
}

func NewHandler(service ClinicServicer) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	clinics := r.Group("/clinics")
	{
		clinics.POST("", h.CreateClinic)
		clinics.GET("", h.ListClinics)
		clinics.GET("/:clinicId", h.GetClinic)
		clinics.GET("/:clinicId/appointments", h.ListAppointments)
	}
}

func (h *Handler) CreateClinic(c *gin.Context) {
	var req model.CreateClinicRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	clinic, err := h.service.CreateClinic(c.Request.Context(), middleware.Session(c), &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithCreated(c, clinic)
}

func (h *Handler) ListClinics(c *gin.Context) {
	clinics, err := h.service.ListUserClinics(c.Request.Context(), middleware.Session(c))
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, clinics)
}

func (h *Handler) GetClinic(c *gin.Context) {
	clinicID, ok := handler.UUIDParam(c, "clinicId")
	if !ok {
		return
	}

	clinic, err := h.service.GetClinic(c.Request.Context(), middleware.Session(c), clinicID)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, clinic)
}

func (h *Handler) ListAppointments(c *gin.Context) {
	clinicID, ok := handler.UUIDParam(c, "clinicId")
	if !ok {
		return
	}

	appointments, err := h.service.ListAppointments(c.Request.Context(), middleware.Session(c), clinicID)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, appointments)
}
