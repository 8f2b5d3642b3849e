package reminder

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/clinic-api/internal/handler"
	"github.com/jwalitptl/clinic-api/internal/service/reminder"
	apperrors "github.com/jwalitptl/clinic-api/pkg/errors"
	"github.com/jwalitptl/clinic-api/pkg/httputil"
)

// sweepTimeout bounds a triggered sweep. The sweep is detached from the
// request deadline so queued sends are not cancelled by it.
const sweepTimeout = 10 * time.Minute

type ReminderServicer interface {
	Run(ctx context.Context, kind reminder.Kind, hoursAhead int) (*reminder.Summary, error)
	DefaultHoursAhead() int
}

type Handler struct {
	service      ReminderServicer
	trigger      gin.HandlerFunc
	sweepTimeout time.Duration
}

// NewHandler guards the trigger with the given middleware, usually the
// shared secret check.
func NewHandler(service ReminderServicer, trigger gin.HandlerFunc) *Handler {
	return &Handler{service: service, trigger: trigger, sweepTimeout: sweepTimeout}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	reminders := r.Group("/reminders")
	{
		reminders.POST("", h.trigger, h.Trigger)
		reminders.GET("", h.Describe)
	}
}

// triggerRequest accepts hoursAhead as well as hours_ahead; schedulers
// written against the JavaScript route send the camel-case name.
type triggerRequest struct {
	Type            reminder.Kind `json:"type" binding:"required,oneof=tomorrow same-day"`
	HoursAhead      int           `json:"hours_ahead" binding:"omitempty,min=1,max=24"`
	HoursAheadCamel int           `json:"hoursAhead" binding:"omitempty,min=1,max=24"`
}

func (r *triggerRequest) hours() (int, error) {
	switch {
	case r.HoursAheadCamel == 0:
		return r.HoursAhead, nil
	case r.HoursAhead == 0 || r.HoursAhead == r.HoursAheadCamel:
		return r.HoursAheadCamel, nil
	default:
		return 0, apperrors.BadRequest("hours_ahead and hoursAhead disagree", nil)
	}
}

func (h *Handler) Trigger(c *gin.Context) {
	var req triggerRequest
	if !handler.BindJSON(c, &req) {
		return
	}
	hours, err := req.hours()
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(c.Request.Context()), h.sweepTimeout)
	defer cancel()

	summary, err := h.service.Run(ctx, req.Type, hours)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, summary)
}

func (h *Handler) Describe(c *gin.Context) {
	httputil.RespondWithSuccess(c, gin.H{
		"endpoint": "POST " + c.FullPath(),
		"types": gin.H{
			string(reminder.KindTomorrow): "reminds every appointment on the next calendar day",
			string(reminder.KindSameDay):  "reminds appointments from now until hours_ahead hours later, within today",
		},
		"hours_ahead": gin.H{
			"default": h.service.DefaultHoursAhead(),
			"min":     1,
			"max":     24,
		},
	})
}
