package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"

	"github.com/jwalitptl/clinic-api/internal/service/reminder"
)

type ReminderRunner interface {
	Run(ctx context.Context, kind reminder.Kind, hoursAhead int) (*reminder.Summary, error)
}

type SessionPurger interface {
	PurgeExpired(ctx context.Context) (int64, error)
}

// Schedule holds cron specs. An empty spec disables that job.
type Schedule struct {
	Tomorrow string
	SameDay  string
	Cleanup  string
}

// Scheduler runs the reminder sweeps and session cleanup on cron
// schedules in the reminder timezone.
type Scheduler struct {
	cron       *cron.Cron
	reminders  ReminderRunner
	sessions   SessionPurger
	jobTimeout time.Duration
	ctx        context.Context
}

func NewScheduler(reminders ReminderRunner, sessions SessionPurger, schedule Schedule,
	loc *time.Location, logger cron.Logger) (*Scheduler, error) {
	if loc == nil {
		loc = time.Local
	}

	s := &Scheduler{
		cron: cron.New(
			cron.WithLocation(loc),
			cron.WithLogger(logger),
			cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)),
		),
		reminders:  reminders,
		sessions:   sessions,
		jobTimeout: 10 * time.Minute,
		ctx:        context.Background(),
	}

	jobs := []struct {
		name string
		spec string
		fn   func(context.Context) error
	}{
		{"tomorrow reminders", schedule.Tomorrow, s.SendTomorrow},
		{"same-day reminders", schedule.SameDay, s.SendSameDay},
		{"session cleanup", schedule.Cleanup, s.CleanupSessions},
	}
	for _, j := range jobs {
		if j.spec == "" {
			continue
		}
		if _, err := s.cron.AddFunc(j.spec, func() { s.run(j.name, j.fn) }); err != nil {
			return nil, fmt.Errorf("invalid schedule %q for %s: %w", j.spec, j.name, err)
		}
	}
	return s, nil
}

// Start runs the scheduler until ctx is cancelled, then waits for running
// jobs to finish.
func (s *Scheduler) Start(ctx context.Context) {
	s.ctx = ctx
	s.cron.Start()
	log.Info().Int("jobs", len(s.cron.Entries())).Msg("scheduler started")

	<-ctx.Done()
	<-s.cron.Stop().Done()
	log.Info().Msg("scheduler stopped")
}

func (s *Scheduler) run(name string, fn func(context.Context) error) {
	// running jobs finish even when shutdown starts
	ctx, cancel := context.WithTimeout(context.WithoutCancel(s.ctx), s.jobTimeout)
	defer cancel()

	start := time.Now()
	if err := fn(ctx); err != nil {
		log.Error().Err(err).Str("job", name).Dur("duration", time.Since(start)).Msg("scheduled job failed")
		return
	}
	log.Info().Str("job", name).Dur("duration", time.Since(start)).Msg("scheduled job finished")
}

func (s *Scheduler) SendTomorrow(ctx context.Context) error {
	return s.sweep(ctx, reminder.KindTomorrow)
}

// SendSameDay uses the configured default window.
func (s *Scheduler) SendSameDay(ctx context.Context) error {
	return s.sweep(ctx, reminder.KindSameDay)
}

func (s *Scheduler) sweep(ctx context.Context, kind reminder.Kind) error {
	summary, err := s.reminders.Run(ctx, kind, 0)
	if err != nil {
		return err
	}
	if summary.Failed > 0 {
		log.Warn().
			Str("type", string(kind)).
			Int("failed", summary.Failed).
			Int("total", summary.Total).
			Msg("some reminders were not sent")
	}
	return nil
}

func (s *Scheduler) CleanupSessions(ctx context.Context) error {
	rows, err := s.sessions.PurgeExpired(ctx)
	if err != nil {
		return fmt.Errorf("failed to purge expired sessions: %w", err)
	}
	log.Info().Int64("sessions", rows).Msg("purged expired sessions")
	return nil
}
