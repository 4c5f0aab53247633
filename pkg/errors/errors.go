package errors

import (
	"fmt"
	"time"
)

// ErrorType represents the type of error
type ErrorType string

const (
	// ErrorTypeNavigation represents calendar navigation failures
	ErrorTypeNavigation ErrorType = "navigation"
	// ErrorTypeRendering represents browser rendering errors
	ErrorTypeRendering ErrorType = "rendering"
	// ErrorTypeParsing represents HTML parsing errors
	ErrorTypeParsing ErrorType = "parsing"
	// ErrorTypeDiscovery represents listing-crawl errors
	ErrorTypeDiscovery ErrorType = "discovery"
	// ErrorTypeRateLimit represents rate limiting errors
	ErrorTypeRateLimit ErrorType = "rate_limit"
	// ErrorTypeNotification represents notification delivery errors
	ErrorTypeNotification ErrorType = "notification"
	// ErrorTypeHistory represents run-history store errors
	ErrorTypeHistory ErrorType = "history"
	// ErrorTypePublisher represents publisher-related errors
	ErrorTypePublisher ErrorType = "publisher"
	// ErrorTypeValidation represents validation errors
	ErrorTypeValidation ErrorType = "validation"
)

// CheckError represents an availability-check error with its origin
type CheckError struct {
	Type      ErrorType
	Component string
	Message   string
	Err       error
	Time      time.Time
}

// Error implements the error interface
func (e *CheckError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %s - %v", e.Type, e.Component, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Type, e.Component, e.Message)
}

// Unwrap returns the underlying error
func (e *CheckError) Unwrap() error {
	return e.Err
}

// IsRetryable returns true if the error is retryable
func (e *CheckError) IsRetryable() bool {
	switch e.Type {
	case ErrorTypeNavigation, ErrorTypeRendering, ErrorTypeNotification:
		return true
	case ErrorTypeRateLimit:
		return false
	case ErrorTypeParsing:
		return false
	default:
		return false
	}
}

// New creates a new CheckError
func New(errType ErrorType, component, message string, err error) *CheckError {
	return &CheckError{
		Type:      errType,
		Component: component,
		Message:   message,
		Err:       err,
		Time:      time.Now(),
	}
}

// NewRendering creates a new rendering error
func NewRendering(component, message string, err error) *CheckError {
	return New(ErrorTypeRendering, component, message, err)
}

// NewParsing creates a new parsing error
func NewParsing(component, message string, err error) *CheckError {
	return New(ErrorTypeParsing, component, message, err)
}

// NewDiscovery creates a new discovery error
func NewDiscovery(component, message string, err error) *CheckError {
	return New(ErrorTypeDiscovery, component, message, err)
}

// NewRateLimit creates a new rate limit error
func NewRateLimit(component string, duration time.Duration) *CheckError {
	message := fmt.Sprintf("rate limited for %v", duration)
	return New(ErrorTypeRateLimit, component, message, nil)
}

// NewNotification creates a new notification error
func NewNotification(component, message string, err error) *CheckError {
	return New(ErrorTypeNotification, component, message, err)
}

// NewHistory creates a new history store error
func NewHistory(component, message string, err error) *CheckError {
	return New(ErrorTypeHistory, component, message, err)
}

// NewPublisher creates a new publisher error
func NewPublisher(component, message string, err error) *CheckError {
	return New(ErrorTypePublisher, component, message, err)
}

// NewValidation creates a new validation error
func NewValidation(component, message string) *CheckError {
	return New(ErrorTypeValidation, component, message, nil)
}
