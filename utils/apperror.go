package utils

import (
	"errors"
	"net/http"

	"medbook/validation"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Error codes carried by AppError.
const (
	CodeInvalid      = "invalid"
	CodeUnauthorized = "unauthorized"
	CodeForbidden    = "forbidden"
	CodeNotFound     = "not_found"
	CodeConflict     = "conflict"
	CodeInvalidState = "invalid_state"
	CodeUnavailable  = "unavailable"
)

// AppError is a service error whose message is safe to show to the caller.
type AppError struct {
	Code    string
	Message string
}

func (e *AppError) Error() string {
	return e.Code + ": " + e.Message
}

func NewAppError(code, message string) *AppError {
	return &AppError{Code: code, Message: message}
}

func (e *AppError) HTTPStatus() int {
	switch e.Code {
	case CodeInvalid:
		return http.StatusBadRequest
	case CodeUnauthorized:
		return http.StatusUnauthorized
	case CodeForbidden:
		return http.StatusForbidden
	case CodeNotFound:
		return http.StatusNotFound
	case CodeConflict, CodeInvalidState, CodeUnavailable:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// RespondError answers with the status and message of an AppError, a 400
// for field errors, or a 500 carrying fallback for anything else.
func RespondError(c *gin.Context, err error, fallback string) {
	var appErr *AppError
	var fieldErrs validation.FieldErrors
	if errors.As(err, &fieldErrs) {
		JSONValidationError(c, err)
		return
	}
	if errors.As(err, &appErr) {
		JSONError(c, appErr.HTTPStatus(), appErr.Message)
		return
	}
	GetLogger().Error(fallback, zap.Error(err), zap.String("path", c.Request.URL.Path))
	JSONError(c, http.StatusInternalServerError, fallback)
}
