// Package apperrors defines application-level error types.
package apperrors

import (
	"fmt"
)

// ValidationError indicates request or filter validation failed.
type ValidationError struct {
	Field   string   // Field that failed validation
	Message string   // Error message
	Details []string // Additional details
}

func (e *ValidationError) Error() string {
	if len(e.Details) == 0 {
		return fmt.Sprintf("invalid request: %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("invalid request: %s: %s (%d issues)", e.Field, e.Message, len(e.Details))
}

// NewValidationError creates a new request validation error.
func NewValidationError(field, message string, details ...string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
		Details: details,
	}
}

// ExecutionError indicates a run could not complete (not a document failure).
type ExecutionError struct {
	Cause   error
	Path    string
	Message string
}

func (e *ExecutionError) Error() string {
	target := e.Path
	if target == "" {
		target = "run"
	}
	if e.Cause != nil {
		return fmt.Sprintf("execution failed for %s: %s: %v", target, e.Message, e.Cause)
	}
	return fmt.Sprintf("execution failed for %s: %s", target, e.Message)
}

func (e *ExecutionError) Unwrap() error {
	return e.Cause
}

// NewExecutionError creates a new execution error.
func NewExecutionError(path, message string, cause error) *ExecutionError {
	return &ExecutionError{
		Path:    path,
		Message: message,
		Cause:   cause,
	}
}

// ConfigurationError indicates system config or setup issue.
type ConfigurationError struct {
	Cause   error
	Aspect  string
	Message string
}

func (e *ConfigurationError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("configuration error (%s): %s: %v", e.Aspect, e.Message, e.Cause)
	}
	return fmt.Sprintf("configuration error (%s): %s", e.Aspect, e.Message)
}

func (e *ConfigurationError) Unwrap() error {
	return e.Cause
}

// NewConfigurationError creates a new configuration error.
func NewConfigurationError(aspect, message string, cause error) *ConfigurationError {
	return &ConfigurationError{
		Aspect:  aspect,
		Message: message,
		Cause:   cause,
	}
}
