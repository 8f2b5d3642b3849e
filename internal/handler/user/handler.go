package user

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/jwalitptl/clinic-api/internal/clinicctx"
	"github.com/jwalitptl/clinic-api/internal/handler"
	"github.com/jwalitptl/clinic-api/internal/middleware"
	"github.com/jwalitptl/clinic-api/internal/model"
	"github.com/jwalitptl/clinic-api/pkg/httputil"
)

// ContextService serves the caller's clinic context.
type ContextService interface {
	Context(ctx context.Context, sess *model.Session) (*clinicctx.Context, error)
	SetActiveClinic(ctx context.Context, sess *model.Session, clinicID uuid.UUID) (clinicctx.Snapshot, error)
}

type Handler struct {
	service ContextService
}

func NewHandler(service ContextService) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	me := r.Group("/me")
	{
		me.GET("", h.GetMe)
		me.GET("/clinics", h.GetClinicContext)
		me.PUT("/active-clinic", h.SetActiveClinic)
	}
}

type setActiveClinicRequest struct {
	ClinicID uuid.UUID `json:"clinic_id" binding:"required"`
}

func (h *Handler) GetMe(c *gin.Context) {
	httputil.RespondWithSuccess(c, middleware.Session(c).User)
}

func (h *Handler) GetClinicContext(c *gin.Context) {
	cc, err := h.service.Context(c.Request.Context(), middleware.Session(c))
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, cc.Snapshot())
}

func (h *Handler) SetActiveClinic(c *gin.Context) {
	var req setActiveClinicRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	snapshot, err := h.service.SetActiveClinic(c.Request.Context(), middleware.Session(c), req.ClinicID)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, snapshot)
}
