package security

import (
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// EventType represents the type of audited event
type EventType string

const (
	EventUploadAccepted     EventType = "upload_accepted"
	EventUploadRejected     EventType = "upload_rejected"
	EventRateLimitTriggered EventType = "rate_limit_triggered"
	EventValidationFailed   EventType = "validation_failed"
)

// AuditLogger provides structured logging for upload and abuse events,
// separate from the application logger so the stream can be shipped to a
// different sink.
type AuditLogger struct {
	zapLogger   *zap.Logger
	serviceName string
}

var defaultLogger *AuditLogger

// InitAuditLogger initializes the audit logger with Zap
func InitAuditLogger(serviceName string) *AuditLogger {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	config.EncoderConfig.LevelKey = "level"
	config.EncoderConfig.MessageKey = "message"
	config.OutputPaths = []string{"stdout"}
	config.ErrorOutputPaths = []string{"stderr"}

	logger, err := config.Build()
	if err != nil {
		// Fallback to a basic logger if config fails
		logger, _ = zap.NewProduction()
	}

	defaultLogger = &AuditLogger{
		zapLogger:   logger,
		serviceName: serviceName,
	}
	return defaultLogger
}

// Default returns the initialized audit logger, or a no-op stand-in when
// InitAuditLogger was never called (tests).
func Default() *AuditLogger {
	if defaultLogger == nil {
		defaultLogger = &AuditLogger{zapLogger: zap.NewNop()}
	}
	return defaultLogger
}

func (l *AuditLogger) LogEvent(event EventType, fields ...zap.Field) {
	base := []zap.Field{
		zap.String("service", l.serviceName),
		zap.String("event", string(event)),
		zap.Time("at", time.Now()),
	}
	l.zapLogger.Info(string(event), append(base, fields...)...)
}

func (l *AuditLogger) Sync() {
	_ = l.zapLogger.Sync()
}
