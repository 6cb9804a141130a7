package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// AppError provides a structured error that can be rendered to API consumers.
type AppError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	StatusCode int    `json:"-"`
	Internal   error  `json:"-"`
}

func (e *AppError) Error() string {
	if e == nil {
		return "<nil>"
	}

	if e.Internal != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Internal)
	}

	return e.Message
}

// Unwrap exposes the internal error for errors.Is / errors.As compatibility.
func (e *AppError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Internal
}

// WithInternal returns a copy of the AppError with an attached internal error.
func (e *AppError) WithInternal(err error) *AppError {
	if e == nil {
		return nil
	}

	cpy := *e
	cpy.Internal = err
	return &cpy
}

// WithMessage returns a copy of the AppError carrying a more specific message.
func (e *AppError) WithMessage(message string) *AppError {
	if e == nil {
		return nil
	}

	cpy := *e
	cpy.Message = message
	return &cpy
}

// Common errors exposed to the rest of the application.
var (
	ErrUnauthorized = &AppError{
		Code:       "UNAUTHORIZED",
		Message:    "Authentication required",
		StatusCode: http.StatusUnauthorized,
	}

	ErrInvalidPassword = &AppError{
		Code:       "INVALID_PASSWORD",
		Message:    "Invalid password",
		StatusCode: http.StatusUnauthorized,
	}

	ErrNotFound = &AppError{
		Code:       "NOT_FOUND",
		Message:    "Resource not found",
		StatusCode: http.StatusNotFound,
	}

	ErrBadRequest = &AppError{
		Code:       "BAD_REQUEST",
		Message:    "Invalid request",
		StatusCode: http.StatusBadRequest,
	}

	ErrInternalServer = &AppError{
		Code:       "INTERNAL_SERVER_ERROR",
		Message:    "Internal server error",
		StatusCode: http.StatusInternalServerError,
	}

	// ErrExchangeBusy signals that an import or export is already running.
	// A second bulk operation is rejected rather than queued.
	ErrExchangeBusy = &AppError{
		Code:       "EXCHANGE_BUSY",
		Message:    "Another import or export is in progress, try again later",
		StatusCode: http.StatusConflict,
	}

	// ErrSourceUnavailable signals an import payload that could not be read
	// at all; decoding never started.
	ErrSourceUnavailable = &AppError{
		Code:       "EXCHANGE_SOURCE",
		Message:    "Import source could not be read",
		StatusCode: http.StatusBadRequest,
	}

	// ErrMalformedDocument signals a structurally invalid export document.
	ErrMalformedDocument = &AppError{
		Code:       "EXCHANGE_MALFORMED",
		Message:    "Export document is malformed",
		StatusCode: http.StatusBadRequest,
	}

	// ErrParseIncomplete signals a legacy dump scan that failed mid-stream.
	ErrParseIncomplete = &AppError{
		Code:       "EXCHANGE_PARSE",
		Message:    "Legacy dump could not be parsed",
		StatusCode: http.StatusBadRequest,
	}

	// ErrConstraintViolation signals a failed bulk insert; the transaction
	// has been rolled back and the store is unchanged.
	ErrConstraintViolation = &AppError{
		Code:       "EXCHANGE_CONSTRAINT",
		Message:    "Imported data violates referential integrity",
		StatusCode: http.StatusConflict,
	}
)

// New builds a new application error with the provided metadata.
func New(code, message string, statusCode int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		StatusCode: statusCode,
	}
}

// Wrap turns any error into an AppError while keeping the original error for logging.
func Wrap(err error, message string) *AppError {
	return &AppError{
		Code:       "INTERNAL_ERROR",
		Message:    message,
		StatusCode: http.StatusInternalServerError,
		Internal:   err,
	}
}

// FromError converts a generic error into an AppError, defaulting to ErrInternalServer.
func FromError(err error) *AppError {
	if err == nil {
		return nil
	}

	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}

	return ErrInternalServer.WithInternal(err)
}

// NewBadRequest wraps validation errors with a helpful message.
func NewBadRequest(message string) *AppError {
	return &AppError{
		Code:       ErrBadRequest.Code,
		Message:    message,
		StatusCode: ErrBadRequest.StatusCode,
	}
}
