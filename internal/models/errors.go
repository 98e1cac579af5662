package models

import (
	"fmt"
	"log/slog"

	"github.com/gofiber/fiber/v2"
)

// Error codes returned in API responses.
const (
	CodeNotFound      = "NOT_FOUND"
	CodeValidation    = "VALIDATION_ERROR"
	CodeUnauthorized  = "UNAUTHORIZED"
	CodeForbidden     = "FORBIDDEN"
	CodeInternalError = "INTERNAL_ERROR"
)

// ErrorResponse represents a standardized API error response
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// AppError represents a custom application error
type AppError struct {
	Code    string
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewNotFoundError reports a missing (or deliberately invisible) resource.
func NewNotFoundError(resource string) *AppError {
	return &AppError{
		Code:    CodeNotFound,
		Message: fmt.Sprintf("%s not found", resource),
	}
}

func NewValidationError(message string) *AppError {
	return &AppError{
		Code:    CodeValidation,
		Message: message,
	}
}

func NewUnauthorizedError(message string) *AppError {
	return &AppError{
		Code:    CodeUnauthorized,
		Message: message,
	}
}

func NewForbiddenError(message string) *AppError {
	return &AppError{
		Code:    CodeForbidden,
		Message: message,
	}
}

func NewInternalError(err error) *AppError {
	return &AppError{
		Code:    CodeInternalError,
		Message: "Internal server error",
		Err:     err,
	}
}

// errorLogger receives the internal detail of server errors. Overridable in tests.
var errorLogger = slog.Default()

// SetErrorLogger routes internal error detail to the given logger.
func SetErrorLogger(l *slog.Logger) {
	if l != nil {
		errorLogger = l
	}
}

// RespondWithError writes a standardized error response.
//
// Internal errors are logged with their full detail and surfaced to the client
// as a generic message only; the wrapped cause never reaches the response body.
func RespondWithError(c *fiber.Ctx, status int, err error) error {
	if appErr, ok := err.(*AppError); ok {
		if appErr.Code == CodeInternalError {
			errorLogger.Error("internal error",
				slog.String("path", c.Path()),
				slog.String("method", c.Method()),
				slog.String("error", appErr.Error()),
			)
			return c.Status(status).JSON(ErrorResponse{
				Error: "Internal server error",
				Code:  CodeInternalError,
			})
		}
		return c.Status(status).JSON(ErrorResponse{
			Error: appErr.Message,
			Code:  appErr.Code,
		})
	}

	if status >= fiber.StatusInternalServerError {
		errorLogger.Error("internal error",
			slog.String("path", c.Path()),
			slog.String("method", c.Method()),
			slog.String("error", err.Error()),
		)
		return c.Status(status).JSON(ErrorResponse{
			Error: "Internal server error",
			Code:  CodeInternalError,
		})
	}

	return c.Status(status).JSON(ErrorResponse{Error: err.Error()})
}
