package helpers

import (
	"sjmori/vacancywatcher/logger"
)

// LoggerInterface defines the logging surface components depend on,
// so tests can substitute a recording logger.
type LoggerInterface interface {
	LogError(component string, err error)
	LogInfo(format string, args ...interface{})
}

// StandardLogger implements LoggerInterface on top of the zerolog logger
type StandardLogger struct{}

// NewStandardLogger creates a new standard logger
func NewStandardLogger() *StandardLogger {
	return &StandardLogger{}
}

// LogError logs an error for a component
func (l *StandardLogger) LogError(component string, err error) {
	logger.LogError(component, err, "component error")
}

// LogInfo logs an info message
func (l *StandardLogger) LogInfo(format string, args ...interface{}) {
	logger.Info(format, args...)
}
