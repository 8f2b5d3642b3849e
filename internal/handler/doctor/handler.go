package doctor

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

type DoctorServicer interface {
	CreateDoctor(ctx context.Context, sess *model.Session, clinicID uuid.UUID, req *model.DoctorRequest) (*model.Doctor, error)
	GetDoctor(ctx context.Context, sess *model.Session, clinicID, id uuid.UUID) (*model.Doctor, error)
	UpdateDoctor(ctx context.Context, sess *model.Session, clinicID, id uuid.UUID, req *model.DoctorRequest) (*model.Doctor, error)
	DeleteDoctor(ctx context.Context, sess *model.Session, clinicID, id uuid.UUID) error
	ListDoctors(ctx context.Context, sess *model.Session, clinicID uuid.UUID) ([]*model.Doctor, error)
}

type Handler struct {
	service DoctorServicer
}

func NewHandler(service DoctorServicer) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	doctors := r.Group("/clinics/:clinicId/doctors")
	{
		doctors.POST("", h.CreateDoctor)
		doctors.GET("", h.ListDoctors)
		doctors.GET("/:id", h.GetDoctor)
		doctors.PUT("/:id", h.UpdateDoctor)
		doctors.DELETE("/:id", h.DeleteDoctor)
	}
}

func (h *Handler) CreateDoctor(c *gin.Context) {
	clinicID, ok := handler.UUIDParam(c, "clinicId")
	if !ok {
		return
	}
	var req model.DoctorRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	doctor, err := h.service.CreateDoctor(c.Request.Context(), middleware.Session(c), clinicID, &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithCreated(c, doctor)
}

func (h *Handler) GetDoctor(c *gin.Context) {
	clinicID, id, ok := ids(c)
	if !ok {
		return
	}

	doctor, err := h.service.GetDoctor(c.Request.Context(), middleware.Session(c), clinicID, id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, doctor)
}

func (h *Handler) UpdateDoctor(c *gin.Context) {
	clinicID, id, ok := ids(c)
	if !ok {
		return
	}
	var req model.DoctorRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	doctor, err := h.service.UpdateDoctor(c.Request.Context(), middleware.Session(c), clinicID, id, &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, doctor)
}

func (h *Handler) DeleteDoctor(c *gin.Context) {
	clinicID, id, ok := ids(c)
	if !ok {
		return
	}

	if err := h.service.DeleteDoctor(c.Request.Context(), middleware.Session(c), clinicID, id); err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *Handler) ListDoctors(c *gin.Context) {
	clinicID, ok := handler.UUIDParam(c, "clinicId")
	if !ok {
		return
	}

	doctors, err := h.service.ListDoctors(c.Request.Context(), middleware.Session(c), clinicID)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, doctors)
}

func ids(c *gin.Context) (clinicID, id uuid.UUID, ok bool) {
	if clinicID, ok = handler.UUIDParam(c, "clinicId"); !ok {
		return
	}
	id, ok = handler.UUIDParam(c, "id")
	return
}
