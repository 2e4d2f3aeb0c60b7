package utils

import (
	"errors"
	"fmt"
	"net/http"
)

// Error kinds carried in CustomError.Kind and echoed as the "error" field of responses
const (
	KindNotFound            = "not_found"
	KindValidation          = "validation_failed"
	KindAnalysisUnavailable = "analysis_unavailable"
	KindUnexpected          = "unexpected_error"
)

// CustomError represents a custom application error
type CustomError struct {
	Code    int    `json:"code"`
	Kind    string `json:"kind"`
	Message string `json:"message"`
	Detail  string `json:"detail,omitempty"`
	cause   error
}

func (e *CustomError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s: %s", e.Message, e.Detail)
	}
	return e.Message
}

func (e *CustomError) Unwrap() error {
	return e.cause
}

// NewNotFoundError reports a missing entity, e.g. NewNotFoundError("Resume")
func NewNotFoundError(entity string) *CustomError {
	return &CustomError{
		Code:    http.StatusNotFound,
		Kind:    KindNotFound,
		Message: entity + " not found",
	}
}

func NewValidationError(detail string) *CustomError {
	return &CustomError{
		Code:    http.StatusBadRequest,
		Kind:    KindValidation,
		Message: "Validation failed",
		Detail:  detail,
	}
}

// NewAnalysisUnavailableError wraps the cause of a failed analysis call
func NewAnalysisUnavailableError(cause error) *CustomError {
	detail := ""
	if cause != nil {
		detail = cause.Error()
	}
	return &CustomError{
		Code:    http.StatusInternalServerError,
		Kind:    KindAnalysisUnavailable,
		Message: "Analysis unavailable",
		Detail:  detail,
		cause:   cause,
	}
}

// NewUnexpectedError hides the cause behind a generic message
func NewUnexpectedError(cause error) *CustomError {
	return &CustomError{
		Code:    http.StatusInternalServerError,
		Kind:    KindUnexpected,
		Message: "Unexpected error",
		cause:   cause,
	}
}

// AsCustomError unwraps err into a CustomError, treating anything else as unexpected
func AsCustomError(err error) *CustomError {
	var ce *CustomError
	if errors.As(err, &ce) {
		return ce
	}
	return NewUnexpectedError(err)
}

