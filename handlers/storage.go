package handlers

import (
	"errors"
	"mime/multipart"
	"net/http"
	"strings"

	"medbook/services/catalog"
	"medbook/services/storage"
	"medbook/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// maxImageSize caps uploaded images at 5 MiB.
const maxImageSize = 5 << 20

// allowedImageTypes defines permitted content types for uploads.
var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
	"image/gif":  true,
}

// StorageHandler uploads doctor and specialty images.
type StorageHandler struct {
	StorageSvc storage.StorageService
	Catalog    catalog.CatalogService
}

func NewStorageHandler(svc storage.StorageService, cat catalog.CatalogService) *StorageHandler {
	return &StorageHandler{StorageSvc: svc, Catalog: cat}
}

// UploadDoctorImageHandler handles POST /images/uploads?doctorId=.
func (h *StorageHandler) UploadDoctorImageHandler(c *gin.Context) {
	doctorID := c.Query("doctorId")
	if doctorID == "" {
		utils.JSONError(c, http.StatusBadRequest, "doctorId is required")
		return
	}
	// Fail before uploading anything for an unknown doctor.
	if _, err := h.Catalog.GetDoctor(c.Request.Context(), doctorID); err != nil {
		utils.RespondError(c, err, "Failed to fetch doctor")
		return
	}
	url, ok := h.upload(c, storage.FolderDoctors, doctorID)
	if !ok {
		return
	}
	d, err := h.Catalog.SetDoctorImage(c.Request.Context(), doctorID, url)
	if err != nil {
		utils.RespondError(c, err, "Failed to save doctor image")
		return
	}
	utils.JSONOK(c, http.StatusOK, "Image uploaded", d)
}

// UploadSpecialtyImageHandler handles POST /images/specialty-upload?specialtyId=.
func (h *StorageHandler) UploadSpecialtyImageHandler(c *gin.Context) {
	specialtyID := c.Query("specialtyId")
	if specialtyID == "" {
		utils.JSONError(c, http.StatusBadRequest, "specialtyId is required")
		return
	}
	if _, err := h.Catalog.GetSpecialty(c.Request.Context(), specialtyID); err != nil {
		utils.RespondError(c, err, "Failed to fetch specialty")
		return
	}
	url, ok := h.upload(c, storage.FolderSpecialties, specialtyID)
	if !ok {
		return
	}
	sp, err := h.Catalog.SetSpecialtyImage(c.Request.Context(), specialtyID, url)
	if err != nil {
		utils.RespondError(c, err, "Failed to save specialty image")
		return
	}
	utils.JSONOK(c, http.StatusOK, "Image uploaded", sp)
}

// upload stores the multipart "file" field and returns its URL.
func (h *StorageHandler) upload(c *gin.Context, folder, publicID string) (string, bool) {
	logger := getLogger(c)
	fileHeader, err := c.FormFile("file")
	if err != nil {
		utils.JSONError(c, http.StatusBadRequest, "file not provided")
		return "", false
	}
	if err := checkImage(fileHeader); err != nil {
		utils.JSONError(c, http.StatusBadRequest, err.Error())
		return "", false
	}

	f, err := fileHeader.Open()
	if err != nil {
		logger.Error("Failed to open uploaded file", zap.Error(err))
		utils.JSONError(c, http.StatusInternalServerError, "Failed to read file")
		return "", false
	}
	defer f.Close()

	url, err := h.StorageSvc.UploadImage(c.Request.Context(), f, folder, publicID)
	if errors.Is(err, storage.ErrUnavailable) {
		utils.JSONError(c, http.StatusServiceUnavailable, "Image storage is not configured")
		return "", false
	}
	if err != nil {
		logger.Error("Failed to upload image", zap.String("folder", folder), zap.Error(err))
		utils.JSONError(c, http.StatusBadGateway, "Failed to upload image")
		return "", false
	}
	return url, true
}

func checkImage(fh *multipart.FileHeader) error {
	if fh.Size > maxImageSize {
		return errors.New("file is larger than 5 MB")
	}
	ct := strings.ToLower(fh.Header.Get("Content-Type"))
	if !allowedImageTypes[ct] {
		return errors.New("file must be a JPEG, PNG, WEBP or GIF image")
	}
	return nil
}
