package logging

import (
	"go.uber.org/zap"
)

// TemporalAdapter satisfies the Temporal SDK's log.Logger interface so the
// Temporal client and worker log through the shared zap core.
type TemporalAdapter struct {
	sugar *zap.SugaredLogger
}

// NewTemporalAdapter wraps a Logger for use as a Temporal SDK logger.
func NewTemporalAdapter(l *Logger) *TemporalAdapter {
	// Skip one frame so caller info points at SDK call sites, not the adapter.
	return &TemporalAdapter{
		sugar: l.zap.WithOptions(zap.AddCallerSkip(1)).Sugar(),
	}
}

func (a *TemporalAdapter) Debug(msg string, keyvals ...interface{}) {
	a.sugar.Debugw(msg, keyvals...)
}

func (a *TemporalAdapter) Info(msg string, keyvals ...interface{}) {
	a.sugar.Infow(msg, keyvals...)
}

func (a *TemporalAdapter) Warn(msg string, keyvals ...interface{}) {
	a.sugar.Warnw(msg, keyvals...)
}

func (a *TemporalAdapter) Error(msg string, keyvals ...interface{}) {
	a.sugar.Errorw(msg, keyvals...)
}
