package handlers

import (
	"net/http"

	"medbook/services/admin"
	"medbook/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AdminHandler serves the back-office dashboard.
type AdminHandler struct {
	Service admin.AdminService
}

func NewAdminHandler(svc admin.AdminService) *AdminHandler {
	return &AdminHandler{Service: svc}
}

// GetStatsHandler handles GET /admin/stats.
func (ah *AdminHandler) GetStatsHandler(c *gin.Context) {
	st, err := ah.Service.Stats(c.Request.Context())
	if err != nil {
		zap.L().Error("Failed to compute stats", zap.Error(err))
		utils.JSONError(c, http.StatusInternalServerError, "Failed to fetch stats")
		return
	}
	utils.JSONOK(c, http.StatusOK, "", st)
}
