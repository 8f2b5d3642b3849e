package email

import (
	"io"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/jwalitptl/clinic-api/internal/email"
	apperrors "github.com/jwalitptl/clinic-api/pkg/errors"
	"github.com/jwalitptl/clinic-api/pkg/httputil"
)

type Handler struct {
	service *email.Service
	trigger gin.HandlerFunc
}

func NewHandler(service *email.Service, trigger gin.HandlerFunc) *Handler {
	return &Handler{service: service, trigger: trigger}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	emails := r.Group("/email")
	{
		emails.POST("", h.trigger, h.Send)
		emails.GET("", h.Status)
	}
}

// Send dispatches one email described by a {type, ...} body.
func (h *Handler) Send(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest("failed to read request body", err))
		return
	}

	req, err := email.ParseRequest(body)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	if err := req.Dispatch(c.Request.Context(), h.service); err != nil {
		log.Error().Err(err).Str("type", req.Type()).Msg("failed to send email")
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, gin.H{"type": req.Type(), "sent": true})
}

func (h *Handler) Status(c *gin.Context) {
	httputil.RespondWithSuccess(c, gin.H{
		"configured": h.service.Configured(),
		"types": []string{
			email.TemplateConfirmation,
			email.TemplateReminder,
			email.TemplateCancellation,
			email.TemplateWelcome,
			email.TemplateGeneric,
		},
	})
}
