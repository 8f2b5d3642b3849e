package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/jwalitptl/clinic-api/internal/service/reminder"
)

type fakeRunner struct {
	kinds []reminder.Kind
	hours []int
	err   error
}

func (f *fakeRunner) Run(_ context.Context, kind reminder.Kind, hoursAhead int) (*reminder.Summary, error) {
	f.kinds = append(f.kinds, kind)
	f.hours = append(f.hours, hoursAhead)
	if f.err != nil {
		return nil, f.err
	}
	return &reminder.Summary{Total: 2, Successful: 1, Failed: 1}, nil
}

type fakePurger struct {
	calls int
}

func (f *fakePurger) PurgeExpired(context.Context) (int64, error) {
	f.calls++
	return 3, nil
}

func TestSchedulerJobs(t *testing.T) {
	runner, purger := &fakeRunner{}, &fakePurger{}
	s, err := NewScheduler(runner, purger, Schedule{
		Tomorrow: "0 18 * * *",
		SameDay:  "0 * * * *",
		Cleanup:  "@daily",
	}, time.UTC, NewCronLogger(zap.NewNop()))
	require.NoError(t, err)
	assert.Len(t, s.cron.Entries(), 3)

	ctx := context.Background()
	require.NoError(t, s.SendTomorrow(ctx))
	require.NoError(t, s.SendSameDay(ctx))
	require.NoError(t, s.CleanupSessions(ctx))

	assert.Equal(t, []reminder.Kind{reminder.KindTomorrow, reminder.KindSameDay}, runner.kinds)
	assert.Equal(t, []int{0, 0}, runner.hours)
	assert.Equal(t, 1, purger.calls)
}

func TestSchedulerSkipsEmptySpecs(t *testing.T) {
	s, err := NewScheduler(&fakeRunner{}, &fakePurger{}, Schedule{Cleanup: "@hourly"}, nil, NewCronLogger(zap.NewNop()))
	require.NoError(t, err)
	assert.Len(t, s.cron.Entries(), 1)
}

func TestSchedulerRejectsBadSpec(t *testing.T) {
	_, err := NewScheduler(&fakeRunner{}, &fakePurger{}, Schedule{Tomorrow: "every evening"}, time.UTC, NewCronLogger(zap.NewNop()))
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "tomorrow reminders")
}

func TestSweepErrorPropagates(t *testing.T) {
	s, err := NewScheduler(&fakeRunner{err: errors.New("db down")}, &fakePurger{}, Schedule{}, time.UTC, NewCronLogger(zap.NewNop()))
	require.NoError(t, err)
	assert.Error(t, s.SendTomorrow(context.Background()))
}

func TestStartStopsOnCancel(t *testing.T) {
	s, err := NewScheduler(&fakeRunner{}, &fakePurger{}, Schedule{Cleanup: "@hourly"}, time.UTC, NewCronLogger(zap.NewNop()))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Start(ctx)
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("scheduler did not stop")
	}
}

func TestCronLoggerWritesErrors(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := NewCronLogger(zap.New(core))

	l.Info("schedule", "entry", 1)
	l.Error(errors.New("boom"), "panic", "job", "x")

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, zapcore.ErrorLevel, entries[1].Level)
	assert.Equal(t, "boom", entries[1].ContextMap()["error"].(string))
}
