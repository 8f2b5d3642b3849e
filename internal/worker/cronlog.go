package worker

import (
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

type zapCronLogger struct {
	log *zap.SugaredLogger
}

// NewCronLogger adapts a zap logger to cron's logging interface.
func NewCronLogger(l *zap.Logger) cron.Logger {
	return zapCronLogger{log: l.Sugar().Named("cron")}
}

func (z zapCronLogger) Info(msg string, keysAndValues ...interface{}) {
	z.log.Debugw(msg, keysAndValues...)
}

func (z zapCronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	z.log.Errorw(msg, append(keysAndValues, "error", err)...)
}
