package handlers

import (
	"net/http"

	"medbook/middleware"
	"medbook/models"
	"medbook/services/schedule"
	"medbook/utils"

	"github.com/gin-gonic/gin"
)

type ScheduleHandler struct {
	Service schedule.ScheduleService
}

func NewScheduleHandler(svc schedule.ScheduleService) *ScheduleHandler {
	return &ScheduleHandler{Service: svc}
}

// ListSchedulesHandler handles GET /schedules?doctorId=&dateSchedule=&specialtyId=&available=.
func (h *ScheduleHandler) ListSchedulesHandler(c *gin.Context) {
	q := schedule.Query{
		DoctorID:     c.Query("doctorId"),
		SpecialtyID:  c.Query("specialtyId"),
		DateSchedule: c.Query("dateSchedule"),
		Available:    c.Query("available") == "true",
	}
	rows, err := h.Service.List(c.Request.Context(), q)
	if err != nil {
		utils.RespondError(c, err, "Failed to fetch schedules")
		return
	}
	utils.JSONOK(c, http.StatusOK, "", rows)
}

func (h *ScheduleHandler) GetScheduleHandler(c *gin.Context) {
	sc, err := h.Service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		utils.RespondError(c, err, "Failed to fetch schedule")
		return
	}
	utils.JSONOK(c, http.StatusOK, "", sc)
}

func (h *ScheduleHandler) CreateScheduleHandler(c *gin.Context) {
	var req models.ScheduleRequest
	if !bindJSON(c, &req) {
		return
	}
	sc, err := h.Service.Create(c.Request.Context(), req)
	if err != nil {
		utils.RespondError(c, err, "Failed to create schedule")
		return
	}
	utils.JSONOK(c, http.StatusCreated, "Schedule created", sc)
}

func (h *ScheduleHandler) UpdateScheduleHandler(c *gin.Context) {
	var req models.ScheduleRequest
	if !bindJSON(c, &req) {
		return
	}
	sc, err := h.Service.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		utils.RespondError(c, err, "Failed to update schedule")
		return
	}
	utils.JSONOK(c, http.StatusOK, "Schedule updated", sc)
}

func (h *ScheduleHandler) DeleteScheduleHandler(c *gin.Context) {
	if err := h.Service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		utils.RespondError(c, err, "Failed to delete schedule")
		return
	}
	utils.JSONOK(c, http.StatusOK, "Schedule deleted", nil)
}

// MySchedulesHandler handles GET /doctors/me/schedules?date= for the doctor dashboard.
func (h *ScheduleHandler) MySchedulesHandler(c *gin.Context) {
	rows, err := h.Service.ForDoctorUser(c.Request.Context(), middleware.ActorFrom(c).UserID, c.Query("date"))
	if err != nil {
		utils.RespondError(c, err, "Failed to fetch schedules")
		return
	}
	utils.JSONOK(c, http.StatusOK, "", rows)
}
