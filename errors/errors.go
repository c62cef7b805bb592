// Package errors provides the error handling system for the Guardian AI adapter.
// It includes structured error types, request ID tracking for correlation,
// and integrated logging with Uber's zap logger.
//
// The package is used throughout the Guardian codebase to provide consistent
// error handling and reporting:
//
//   - Typed errors so callers can branch with errors.Is instead of matching strings
//   - Request ID tracking for error correlation across log lines
//   - Integrated logging with zap
//
// For most cases, use one of the constructors in types.go:
//
//	err := errors.NewProviderError(requestID, "generate failed", dispatchErr)
package errors

import (
	"fmt"

	"go.uber.org/zap"
)

// DefaultLogger is the default zap logger instance used throughout the package.
// It is initialized to a production configuration but can be overridden using SetLogger.
var DefaultLogger *zap.Logger

func init() {
	var err error
	DefaultLogger, err = zap.NewProduction()
	if err != nil {
		DefaultLogger = zap.NewNop()
	}
}

// SetLogger allows setting a custom zap logger instance.
// If nil is provided, the function will do nothing to prevent
// accidentally disabling logging.
func SetLogger(logger *zap.Logger) {
	if logger != nil {
		DefaultLogger = logger
	}
}

// ErrorType represents different categories of errors that can occur
// in the Guardian system. Each type corresponds to a specific kind of
// failure and drives how callers react to it.
type ErrorType string

const (
	// ConfigError represents configuration-related errors
	ConfigError ErrorType = "config_error"

	// InitError represents failures to construct the inference capability
	InitError ErrorType = "init_error"

	// ProviderError represents errors from the inference backend
	ProviderError ErrorType = "provider_error"

	// RateLimitError represents rate limiting errors
	RateLimitError ErrorType = "rate_limit_error"

	// ValidationError represents input validation failures
	ValidationError ErrorType = "validation_error"

	// InternalError represents unexpected internal errors
	InternalError ErrorType = "internal_error"
)

// GuardianError is our custom error type that implements the error interface
// and provides additional context about the error. It keeps the underlying
// cause accessible for error chains while exposing a stable type for
// callers to match on.
type GuardianError struct {
	// Type categorizes the error for caller handling
	Type ErrorType `json:"type"`

	// Message is a human-readable error description
	Message string `json:"message"`

	// RequestID links the error to a specific request
	RequestID string `json:"request_id"`

	// Details contains additional error context
	Details map[string]interface{} `json:"details,omitempty"`

	// err is the underlying error (not exposed in JSON)
	err error
}

// Error implements the error interface. It returns a string that
// combines the error type, message, and underlying error (if any).
func (e *GuardianError) Error() string {
	if e.err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Type, e.Message, e.err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the underlying error, implementing the unwrap
// interface for error chains.
func (e *GuardianError) Unwrap() error {
	return e.err
}

// Is implements error matching for errors.Is, allowing type-based
// error matching while ignoring other fields.
func (e *GuardianError) Is(target error) bool {
	t, ok := target.(*GuardianError)
	if !ok {
		return false
	}
	return e.Type == t.Type
}
