package errors

import "errors"

// NewError creates a new GuardianError with the given parameters.
// It is a general-purpose constructor that allows full control over
// the error's fields. For most cases, you should use one of the
// specialized constructors below.
//
// Example:
//
//	err := NewError(InternalError, "unexpected state", "req_123", nil, cause)
func NewError(errType ErrorType, message string, requestID string, details map[string]interface{}, err error) *GuardianError {
	return &GuardianError{
		Type:      errType,
		Message:   message,
		RequestID: requestID,
		Details:   details,
		err:       err,
	}
}

// NewConfigError creates a configuration error with appropriate defaults.
// Use this for any configuration loading or validation failures, such as:
//   - Unreadable or malformed YAML
//   - Out-of-range values (e.g. a negative rate limit)
//   - Missing required settings
func NewConfigError(message string, details map[string]interface{}, err error) *GuardianError {
	return &GuardianError{
		Type:    ConfigError,
		Message: message,
		Details: details,
		err:     err,
	}
}

// NewInitError creates an initialization error with appropriate defaults.
// Use this when the inference capability cannot be constructed, such as:
//   - Missing credentials
//   - Unreachable backend at client construction
//
// Initialization failures are fatal: they must be surfaced to the caller,
// never worked around with a degraded client.
func NewInitError(message string, err error) *GuardianError {
	return &GuardianError{
		Type:    InitError,
		Message: message,
		err:     err,
		Details: map[string]interface{}{
			"suggestion": "Check credentials and model configuration",
		},
	}
}

// NewProviderError creates a provider error with appropriate defaults.
// Use this when the inference backend fails during a generate call, such as:
//   - Backend API errors
//   - Model unavailability
//   - Request timeouts
func NewProviderError(requestID string, message string, err error) *GuardianError {
	return &GuardianError{
		Type:      ProviderError,
		Message:   message,
		RequestID: requestID,
		err:       err,
	}
}

// NewValidationError creates a validation error with appropriate defaults.
// Use this for any input validation failures, such as:
//   - Empty prompts
//   - Malformed conversation history entries
func NewValidationError(requestID, message string, validationDetails map[string]interface{}) *GuardianError {
	return &GuardianError{
		Type:      ValidationError,
		Message:   message,
		RequestID: requestID,
		Details:   validationDetails,
	}
}

// NewInternalError creates an internal error with appropriate defaults.
// Use this for unexpected errors that are not covered by other error types.
func NewInternalError(requestID string, err error) *GuardianError {
	return &GuardianError{
		Type:      InternalError,
		Message:   "An internal error occurred",
		RequestID: requestID,
		err:       err,
	}
}

// As is a wrapper around errors.As for better error type assertion
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
