package handlers

import (
	"medbook/utils"
	"medbook/validation"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// getLogger retrieves a Zap logger from the Gin context or falls back to the global one.
func getLogger(c *gin.Context) *zap.Logger {
	if l, exists := c.Get("logger"); exists {
		if logger, ok := l.(*zap.Logger); ok {
			return logger
		}
	}
	return utils.GetLogger()
}

// bindJSON decodes and validates the request body. It answers 400 and
// returns false on failure.
func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		getLogger(c).Debug("Malformed request body", zap.String("path", c.Request.URL.Path), zap.Error(err))
		utils.JSONError(c, 400, "Invalid request body")
		return false
	}
	if err := validation.Struct(dst); err != nil {
		utils.JSONValidationError(c, err)
		return false
	}
	return true
}
