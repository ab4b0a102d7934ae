package handlers

import (
	"net/http"

	"medbook/middleware"
	"medbook/models"
	"medbook/services/booking"
	"medbook/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type BookingHandler struct {
	Service booking.BookingService
}

func NewBookingHandler(svc booking.BookingService) *BookingHandler {
	return &BookingHandler{Service: svc}
}

func listQuery(c *gin.Context) booking.ListQuery {
	page, limit := utils.PageParams(c.Query("page"), c.Query("limit"))
	return booking.ListQuery{
		Status: c.Query("status"),
		Search: c.Query("q"),
		Page:   page,
		Limit:  limit,
	}
}

// CreateBookingHandler handles POST /bookings. The patient comes from the
// token; the amount from the schedule.
func (h *BookingHandler) CreateBookingHandler(c *gin.Context) {
	var req models.CreateBookingRequest
	if !bindJSON(c, &req) {
		return
	}
	actor := middleware.ActorFrom(c)
	view, err := h.Service.Create(c.Request.Context(), actor, req)
	if err != nil {
		utils.RespondError(c, err, "Failed to create booking")
		return
	}
	getLogger(c).Info("Booking created",
		zap.String("bookingId", view.ID),
		zap.String("scheduleId", view.ScheduleID),
		zap.String("userId", actor.UserID))
	utils.JSONOK(c, http.StatusCreated, "Booking created", view)
}

// ListUserBookingsHandler handles GET /bookings/user/:userId.
func (h *BookingHandler) ListUserBookingsHandler(c *gin.Context) {
	res, err := h.Service.ListForUser(c.Request.Context(), middleware.ActorFrom(c), c.Param("userId"), listQuery(c))
	if err != nil {
		utils.RespondError(c, err, "Failed to fetch bookings")
		return
	}
	utils.JSONOK(c, http.StatusOK, "", res)
}

// GetBookingDetailHandler handles GET /bookings/user/:userId/detail?bookingId=.
func (h *BookingHandler) GetBookingDetailHandler(c *gin.Context) {
	bookingID := c.Query("bookingId")
	if bookingID == "" {
		utils.JSONError(c, http.StatusBadRequest, "bookingId is required")
		return
	}
	view, err := h.Service.GetForUser(c.Request.Context(), middleware.ActorFrom(c), c.Param("userId"), bookingID)
	if err != nil {
		utils.RespondError(c, err, "Failed to fetch booking")
		return
	}
	utils.JSONOK(c, http.StatusOK, "", view)
}

// UpdateBookingDetailHandler handles PUT /bookings/user/:userId/detail?bookingId=.
// The body shape decides between a schedule change and a refund request.
func (h *BookingHandler) UpdateBookingDetailHandler(c *gin.Context) {
	bookingID := c.Query("bookingId")
	if bookingID == "" {
		utils.JSONError(c, http.StatusBadRequest, "bookingId is required")
		return
	}
	var req models.UpdateBookingRequest
	if !bindJSON(c, &req) {
		return
	}
	view, err := h.Service.UpdateDetail(c.Request.Context(), middleware.ActorFrom(c), c.Param("userId"), bookingID, req)
	if err != nil {
		utils.RespondError(c, err, "Failed to update booking")
		return
	}
	utils.JSONOK(c, http.StatusOK, "Booking updated", view)
}

// DeleteBookingHandler handles DELETE /bookings/:id.
func (h *BookingHandler) DeleteBookingHandler(c *gin.Context) {
	id := c.Param("id")
	if err := h.Service.Delete(c.Request.Context(), middleware.ActorFrom(c), id); err != nil {
		utils.RespondError(c, err, "Failed to delete booking")
		return
	}
	getLogger(c).Info("Booking deleted", zap.String("bookingId", id))
	utils.JSONOK(c, http.StatusOK, "Booking deleted", nil)
}

// ListAllBookingsHandler handles GET /bookings (admin).
func (h *BookingHandler) ListAllBookingsHandler(c *gin.Context) {
	res, err := h.Service.ListAll(c.Request.Context(), listQuery(c))
	if err != nil {
		utils.RespondError(c, err, "Failed to fetch bookings")
		return
	}
	utils.JSONOK(c, http.StatusOK, "", res)
}

// UpdateBookingStatusHandler handles PUT /bookings/:id/status (admin).
func (h *BookingHandler) UpdateBookingStatusHandler(c *gin.Context) {
	var req models.BookingStatusRequest
	if !bindJSON(c, &req) {
		return
	}
	view, err := h.Service.SetStatus(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		utils.RespondError(c, err, "Failed to update booking status")
		return
	}
	utils.JSONOK(c, http.StatusOK, "Booking status updated", view)
}

// MyBookingsHandler handles GET /doctors/me/bookings for the doctor dashboard.
func (h *BookingHandler) MyBookingsHandler(c *gin.Context) {
	res, err := h.Service.ListForDoctorUser(c.Request.Context(), middleware.ActorFrom(c).UserID, listQuery(c))
	if err != nil {
		utils.RespondError(c, err, "Failed to fetch bookings")
		return
	}
	utils.JSONOK(c, http.StatusOK, "", res)
}
