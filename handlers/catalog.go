package handlers

import (
	"net/http"

	"medbook/models"
	"medbook/services/catalog"
	"medbook/utils"

	"github.com/gin-gonic/gin"
)

// CatalogHandler serves specialties, clinics and doctors.
type CatalogHandler struct {
	Service catalog.CatalogService
}

func NewCatalogHandler(svc catalog.CatalogService) *CatalogHandler {
	return &CatalogHandler{Service: svc}
}

func (h *CatalogHandler) ListSpecialtiesHandler(c *gin.Context) {
	rows, err := h.Service.ListSpecialties(c.Request.Context())
	if err != nil {
		utils.RespondError(c, err, "Failed to fetch specialties")
		return
	}
	utils.JSONOK(c, http.StatusOK, "", rows)
}

func (h *CatalogHandler) GetSpecialtyHandler(c *gin.Context) {
	sp, err := h.Service.GetSpecialty(c.Request.Context(), c.Param("id"))
	if err != nil {
		utils.RespondError(c, err, "Failed to fetch specialty")
		return
	}
	utils.JSONOK(c, http.StatusOK, "", sp)
}

func (h *CatalogHandler) CreateSpecialtyHandler(c *gin.Context) {
	var req models.SpecialtyRequest
	if !bindJSON(c, &req) {
		return
	}
	sp, err := h.Service.CreateSpecialty(c.Request.Context(), req)
	if err != nil {
		utils.RespondError(c, err, "Failed to create specialty")
		return
	}
	utils.JSONOK(c, http.StatusCreated, "Specialty created", sp)
}

func (h *CatalogHandler) UpdateSpecialtyHandler(c *gin.Context) {
	var req models.SpecialtyRequest
	if !bindJSON(c, &req) {
		return
	}
	sp, err := h.Service.UpdateSpecialty(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		utils.RespondError(c, err, "Failed to update specialty")
		return
	}
	utils.JSONOK(c, http.StatusOK, "Specialty updated", sp)
}

func (h *CatalogHandler) DeleteSpecialtyHandler(c *gin.Context) {
	if err := h.Service.DeleteSpecialty(c.Request.Context(), c.Param("id")); err != nil {
		utils.RespondError(c, err, "Failed to delete specialty")
		return
	}
	utils.JSONOK(c, http.StatusOK, "Specialty deleted", nil)
}

// ListClinicsHandler handles GET /clinics?specialtyId=.
func (h *CatalogHandler) ListClinicsHandler(c *gin.Context) {
	rows, err := h.Service.ListClinics(c.Request.Context(), c.Query("specialtyId"))
	if err != nil {
		utils.RespondError(c, err, "Failed to fetch clinics")
		return
	}
	utils.JSONOK(c, http.StatusOK, "", rows)
}

func (h *CatalogHandler) GetClinicHandler(c *gin.Context) {
	cl, err := h.Service.GetClinic(c.Request.Context(), c.Param("id"))
	if err != nil {
		utils.RespondError(c, err, "Failed to fetch clinic")
		return
	}
	utils.JSONOK(c, http.StatusOK, "", cl)
}

func (h *CatalogHandler) CreateClinicHandler(c *gin.Context) {
	var req models.ClinicRequest
	if !bindJSON(c, &req) {
		return
	}
	cl, err := h.Service.CreateClinic(c.Request.Context(), req)
	if err != nil {
		utils.RespondError(c, err, "Failed to create clinic")
		return
	}
	utils.JSONOK(c, http.StatusCreated, "Clinic created", cl)
}

func (h *CatalogHandler) UpdateClinicHandler(c *gin.Context) {
	var req models.ClinicRequest
	if !bindJSON(c, &req) {
		return
	}
	cl, err := h.Service.UpdateClinic(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		utils.RespondError(c, err, "Failed to update clinic")
		return
	}
	utils.JSONOK(c, http.StatusOK, "Clinic updated", cl)
}

func (h *CatalogHandler) DeleteClinicHandler(c *gin.Context) {
	if err := h.Service.DeleteClinic(c.Request.Context(), c.Param("id")); err != nil {
		utils.RespondError(c, err, "Failed to delete clinic")
		return
	}
	utils.JSONOK(c, http.StatusOK, "Clinic deleted", nil)
}

// ListDoctorsHandler handles GET /doctors?specialtyId=&clinicId=&q=&page=&limit=.
// Inactive doctors are hidden unless includeInactive=true.
func (h *CatalogHandler) ListDoctorsHandler(c *gin.Context) {
	page, limit := utils.PageParams(c.Query("page"), c.Query("limit"))
	filter := models.DoctorFilter{
		SpecialtyID: c.Query("specialtyId"),
		ClinicID:    c.Query("clinicId"),
		Query:       c.Query("q"),
		ActiveOnly:  c.Query("includeInactive") != "true",
	}
	res, err := h.Service.ListDoctors(c.Request.Context(), filter, page, limit)
	if err != nil {
		utils.RespondError(c, err, "Failed to fetch doctors")
		return
	}
	utils.JSONOK(c, http.StatusOK, "", res)
}

// GetDoctorHandler handles GET /doctors/:id, where id may be an "id-name" slug.
func (h *CatalogHandler) GetDoctorHandler(c *gin.Context) {
	d, err := h.Service.GetDoctor(c.Request.Context(), c.Param("id"))
	if err != nil {
		utils.RespondError(c, err, "Failed to fetch doctor")
		return
	}
	utils.JSONOK(c, http.StatusOK, "", d)
}

func (h *CatalogHandler) CreateDoctorHandler(c *gin.Context) {
	var req models.DoctorRequest
	if !bindJSON(c, &req) {
		return
	}
	d, err := h.Service.CreateDoctor(c.Request.Context(), req)
	if err != nil {
		utils.RespondError(c, err, "Failed to create doctor")
		return
	}
	utils.JSONOK(c, http.StatusCreated, "Doctor created", d)
}

func (h *CatalogHandler) UpdateDoctorHandler(c *gin.Context) {
	var req models.DoctorRequest
	if !bindJSON(c, &req) {
		return
	}
	d, err := h.Service.UpdateDoctor(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		utils.RespondError(c, err, "Failed to update doctor")
		return
	}
	utils.JSONOK(c, http.StatusOK, "Doctor updated", d)
}

func (h *CatalogHandler) DeleteDoctorHandler(c *gin.Context) {
	if err := h.Service.DeleteDoctor(c.Request.Context(), c.Param("id")); err != nil {
		utils.RespondError(c, err, "Failed to delete doctor")
		return
	}
	utils.JSONOK(c, http.StatusOK, "Doctor deleted", nil)
}
