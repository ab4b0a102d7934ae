package utils

import (
	"errors"
	"net/http"

	"medbook/validation"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Envelope is the shape of every JSON response.
type Envelope struct {
	Status  string            `json:"status"`
	Message string            `json:"message,omitempty"`
	Data    any               `json:"data,omitempty"`
	Errors  map[string]string `json:"errors,omitempty"`
}

// ErrorHandler recovers panics into a 500 response.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				GetLogger().Error("Unhandled panic", zap.Any("error", err), zap.String("path", c.Request.URL.Path))
				c.AbortWithStatusJSON(http.StatusInternalServerError, Envelope{
					Status:  "error",
					Message: "Internal Server Error",
				})
			}
		}()
		c.Next()
	}
}

// JSONOK sends a success envelope.
func JSONOK(c *gin.Context, status int, message string, data any) {
	c.JSON(status, Envelope{Status: "success", Message: message, Data: data})
}

// JSONError sends a standardized JSON error response
func JSONError(c *gin.Context, status int, message string) {
	GetLogger().Warn(message, zap.Int("status", status), zap.String("path", c.Request.URL.Path))
	c.AbortWithStatusJSON(status, Envelope{Status: "error", Message: message})
}

// JSONValidationError answers 400 with per-field messages when err carries them.
func JSONValidationError(c *gin.Context, err error) {
	var fe validation.FieldErrors
	if errors.As(err, &fe) {
		c.AbortWithStatusJSON(http.StatusBadRequest, Envelope{
			Status:  "error",
			Message: "Validation failed",
			Errors:  fe,
		})
		return
	}
	JSONError(c, http.StatusBadRequest, "Invalid request: "+err.Error())
}
