package provider

import (
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

var logger atomic.Pointer[zap.Logger]

func init() {
	logger.Store(zap.NewNop())
}

// SetLogger replaces the logger used by the provider helpers below.
func SetLogger(l *zap.Logger) {
	if l == nil {
		l = zap.NewNop()
	}
	logger.Store(l.Named("provider"))
}

// Logger returns the provider logger.
func Logger() *zap.Logger {
	return logger.Load()
}

// LogRequest logs an API request being made.
func LogRequest(provider, operation, model string) {
	Logger().Info("request",
		zap.String("provider", provider),
		zap.String("operation", operation),
		zap.String("model", model))
}

// LogResponse logs an API response received.
func LogResponse(provider string, duration time.Duration, textLen, sourceCount int) {
	Logger().Info("response",
		zap.String("provider", provider),
		zap.Duration("duration", duration),
		zap.Int("text_len", textLen),
		zap.Int("sources", sourceCount))
}

// LogError logs an error from an API operation.
func LogError(provider, operation string, err error) {
	Logger().Warn("error",
		zap.String("provider", provider),
		zap.String("operation", operation),
		zap.Error(err))
}

// LogTransform logs how a raw payload was normalized into a snapshot.
func LogTransform(provider string, constituencies, sources int, duration time.Duration) {
	Logger().Debug("transformed",
		zap.String("provider", provider),
		zap.Int("constituencies", constituencies),
		zap.Int("sources", sources),
		zap.Duration("duration", duration))
}

// LogDegraded logs that a response was replaced by the degraded snapshot.
func LogDegraded(provider string, reason error) {
	Logger().Warn("degraded snapshot",
		zap.String("provider", provider),
		zap.Error(reason))
}
