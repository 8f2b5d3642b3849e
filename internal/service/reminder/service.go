package reminder

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/sourcegraph/conc/iter"

	"github.com/jwalitptl/clinic-api/internal/email"
	"github.com/jwalitptl/clinic-api/internal/model"
	"github.com/jwalitptl/clinic-api/internal/repository"
	apperrors "github.com/jwalitptl/clinic-api/pkg/errors"
	"github.com/jwalitptl/clinic-api/pkg/metrics"
)

type Kind string

const (
	KindTomorrow Kind = "tomorrow"
	KindSameDay  Kind = "same-day"
)

const (
	dateLayout = "02/01/2006"
	timeLayout = "15:04"

	maxHoursAhead = 24
)

// Sender sends one reminder email.
type Sender interface {
	SendAppointmentReminder(ctx context.Context, d email.AppointmentData) error
}

// Result is the outcome of one appointment's reminder.
type Result struct {
	AppointmentID uuid.UUID `json:"appointment_id"`
	Email         string    `json:"email"`
	Success       bool      `json:"success"`
	Error         string    `json:"error,omitempty"`
}

// Summary aggregates a sweep. Every appointment found produces exactly one
// Result.
type Summary struct {
	Total      int      `json:"total"`
	Successful int      `json:"successful"`
	Failed     int      `json:"failed"`
	Results    []Result `json:"results"`
}

type Config struct {
	Location          *time.Location
	Concurrency       int
	DefaultHoursAhead int
}

type Service struct {
	repo    repository.AppointmentRepository
	sender  Sender
	metrics *metrics.Metrics
	cfg     Config
	now     func() time.Time
}

func NewService(repo repository.AppointmentRepository, sender Sender, m *metrics.Metrics, cfg Config) *Service {
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 8
	}
	if cfg.DefaultHoursAhead <= 0 {
		cfg.DefaultHoursAhead = 2
	}
	if m == nil {
		m = metrics.Noop()
	}
	return &Service{repo: repo, sender: sender, metrics: m, cfg: cfg, now: time.Now}
}

// DefaultHoursAhead is used when a same-day sweep does not name one.
func (s *Service) DefaultHoursAhead() int {
	return s.cfg.DefaultHoursAhead
}

// TomorrowWindow covers the whole next calendar day in loc:
// [start of tomorrow, start of the day after).
func TomorrowWindow(now time.Time, loc *time.Location) model.TimeWindow {
	start := startOfDay(now.In(loc)).AddDate(0, 0, 1)
	return model.TimeWindow{Start: start, End: start.AddDate(0, 0, 1)}
}

// SameDayWindow covers (now, now+hours], cut off at the start of tomorrow
// in loc so it never leaves today.
func SameDayWindow(now time.Time, hours int, loc *time.Location) model.TimeWindow {
	end := now.Add(time.Duration(hours) * time.Hour)
	w := model.TimeWindow{Start: now, End: end, StartExclusive: true, EndInclusive: true}

	tomorrow := startOfDay(now.In(loc)).AddDate(0, 0, 1)
	if !end.Before(tomorrow) {
		w.End = tomorrow
		w.EndInclusive = false
	}
	return w
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// Run dispatches to the sweep named by kind. hoursAhead is only used by
// same-day sweeps; zero selects the default.
func (s *Service) Run(ctx context.Context, kind Kind, hoursAhead int) (*Summary, error) {
	switch kind {
	case KindTomorrow:
		return s.SendTomorrow(ctx)
	case KindSameDay:
		return s.SendSameDay(ctx, hoursAhead)
	default:
		return nil, apperrors.BadRequest(fmt.Sprintf("invalid reminder type %q", kind), nil)
	}
}

func (s *Service) SendTomorrow(ctx context.Context) (*Summary, error) {
	return s.sweep(ctx, KindTomorrow, TomorrowWindow(s.now(), s.cfg.Location))
}

func (s *Service) SendSameDay(ctx context.Context, hoursAhead int) (*Summary, error) {
	if hoursAhead == 0 {
		hoursAhead = s.cfg.DefaultHoursAhead
	}
	if hoursAhead < 1 || hoursAhead > maxHoursAhead {
		return nil, apperrors.BadRequest(fmt.Sprintf("hours_ahead must be between 1 and %d", maxHoursAhead), nil)
	}
	return s.sweep(ctx, KindSameDay, SameDayWindow(s.now(), hoursAhead, s.cfg.Location))
}

func (s *Service) sweep(ctx context.Context, kind Kind, window model.TimeWindow) (*Summary, error) {
	started := time.Now()
	defer func() {
		s.metrics.ReminderSweepTime.WithLabelValues(string(kind)).Observe(time.Since(started).Seconds())
	}()

	appointments, err := s.repo.ListWithDetails(ctx, window)
	if err != nil {
		s.metrics.ReminderSweeps.WithLabelValues(string(kind), "error").Inc()
		return nil, fmt.Errorf("failed to load appointments for %s reminders: %w", kind, err)
	}

	log.Info().
		Str("type", string(kind)).
		Time("from", window.Start).
		Time("to", window.End).
		Int("appointments", len(appointments)).
		Msg("sending appointment reminders")

	mapper := iter.Mapper[*model.AppointmentDetails, Result]{MaxGoroutines: s.cfg.Concurrency}
	results := mapper.Map(appointments, func(a **model.AppointmentDetails) Result {
		return s.remind(ctx, kind, *a)
	})

	summary := &Summary{Total: len(results), Results: results}
	for _, r := range results {
		if r.Success {
			summary.Successful++
		} else {
			summary.Failed++
		}
	}

	s.metrics.ReminderSweeps.WithLabelValues(string(kind), "success").Inc()
	log.Info().
		Str("type", string(kind)).
		Int("total", summary.Total).
		Int("successful", summary.Successful).
		Int("failed", summary.Failed).
		Msg("appointment reminders finished")

	return summary, nil
}

// remind sends one reminder. Errors are recorded in the Result, never
// returned, so one failure cannot stop its siblings.
func (s *Service) remind(ctx context.Context, kind Kind, a *model.AppointmentDetails) Result {
	local := a.Date.In(s.cfg.Location)
	err := s.sender.SendAppointmentReminder(ctx, email.AppointmentData{
		To:          a.PatientEmail,
		PatientName: a.PatientName,
		DoctorName:  a.DoctorName,
		Date:        local.Format(dateLayout),
		Time:        local.Format(timeLayout),
		ClinicName:  a.ClinicName,
	})
	s.metrics.RemindersSent.WithLabelValues(string(kind), metrics.Outcome(err)).Inc()

	res := Result{AppointmentID: a.AppointmentID, Email: a.PatientEmail, Success: err == nil}
	if err != nil {
		res.Error = err.Error()
		log.Warn().
			Err(err).
			Str("type", string(kind)).
			Str("appointment_id", a.AppointmentID.String()).
			Str("email", a.PatientEmail).
			Msg("failed to send reminder")
	}
	return res
}
