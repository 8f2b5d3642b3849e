package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds all application metrics
type Metrics struct {
	// Reminder sweep metrics
	RemindersSent     *prometheus.CounterVec
	ReminderSweeps    *prometheus.CounterVec
	ReminderSweepTime *prometheus.HistogramVec
	EmailSends        *prometheus.CounterVec
	FileUploads       *prometheus.CounterVec
}

// NewMetrics creates all application metrics and registers them with reg.
// A nil reg leaves them unregistered.
func NewMetrics(namespace string, reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		RemindersSent: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reminders_sent_total",
			Help:      "Reminder emails attempted, by sweep type and outcome",
		}, []string{"type", "status"}),
		ReminderSweeps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reminder_sweeps_total",
			Help:      "Reminder sweeps run, by sweep type and outcome",
		}, []string{"type", "status"}),
		ReminderSweepTime: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "reminder_sweep_duration_seconds",
			Help:      "Time spent running a reminder sweep",
			Buckets:   []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60},
		}, []string{"type"}),
		EmailSends: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "email_sends_total",
			Help:      "Emails handed to the provider, by template and outcome",
		}, []string{"template", "status"}),
		FileUploads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "file_uploads_total",
			Help:      "File upload attempts, by outcome",
		}, []string{"status"}),
	}

	if reg != nil {
		reg.MustRegister(
			m.RemindersSent,
			m.ReminderSweeps,
			m.ReminderSweepTime,
			m.EmailSends,
			m.FileUploads,
		)
	}

	return m
}

// Noop returns unregistered metrics, for tests and tools.
func Noop() *Metrics {
	return NewMetrics("test", nil)
}

func status(ok bool) string {
	if ok {
		return "success"
	}
	return "error"
}

// Outcome converts an error into the "success"/"error" label value.
func Outcome(err error) string {
	return status(err == nil)
}
