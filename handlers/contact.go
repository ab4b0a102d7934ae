package handlers

import (
	"net/http"

	"medbook/models"
	"medbook/services/contact"
	"medbook/utils"

	"github.com/gin-gonic/gin"
)

type ContactHandler struct {
	Service contact.ContactService
}

func NewContactHandler(svc contact.ContactService) *ContactHandler {
	return &ContactHandler{Service: svc}
}

// SubmitContactHandler handles POST /contacts.
func (h *ContactHandler) SubmitContactHandler(c *gin.Context) {
	var req models.ContactRequest
	if !bindJSON(c, &req) {
		return
	}
	if _, err := h.Service.Submit(c.Request.Context(), req); err != nil {
		utils.RespondError(c, err, "Failed to send message")
		return
	}
	utils.JSONOK(c, http.StatusCreated, "Thank you, we will get back to you soon", nil)
}

// ListContactsHandler handles GET /contacts (admin).
func (h *ContactHandler) ListContactsHandler(c *gin.Context) {
	page, limit := utils.PageParams(c.Query("page"), c.Query("limit"))
	res, err := h.Service.List(c.Request.Context(), page, limit)
	if err != nil {
		utils.RespondError(c, err, "Failed to fetch messages")
		return
	}
	utils.JSONOK(c, http.StatusOK, "", res)
}
