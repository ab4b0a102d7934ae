package storage

import (
	"context"
	"errors"
	"fmt"
	"io"

	"medbook/utils"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"go.uber.org/zap"
)

// Folders images are uploaded into.
const (
	FolderDoctors     = "medbook/doctors"
	FolderSpecialties = "medbook/specialties"
)

// ErrUnavailable is returned when no storage backend is configured.
var ErrUnavailable = errors.New("file storage is not configured")

// StorageService stores uploaded images and returns their public URL.
type StorageService interface {
	UploadImage(ctx context.Context, file io.Reader, folder, publicID string) (string, error)
	DeleteFile(ctx context.Context, publicID string) error
}

// StorageServiceImpl stores files on Cloudinary.
type StorageServiceImpl struct {
	cld *cloudinary.Cloudinary
}

func NewStorageService(cld *cloudinary.Cloudinary) StorageService {
	if cld == nil {
		return unavailable{}
	}
	return &StorageServiceImpl{cld: cld}
}

// UploadImage uploads into folder and returns the secure URL.
func (s *StorageServiceImpl) UploadImage(ctx context.Context, file io.Reader, folder, publicID string) (string, error) {
	params := uploader.UploadParams{
		Folder:       folder,
		PublicID:     publicID,
		ResourceType: "image",
	}
	result, err := s.cld.Upload.Upload(ctx, file, params)
	if err != nil {
		return "", fmt.Errorf("failed to upload file: %w", err)
	}
	if result.Error.Message != "" {
		return "", fmt.Errorf("cloudinary rejected upload: %s", result.Error.Message)
	}
	if result.SecureURL == "" {
		return "", errors.New("cloudinary returned no URL")
	}
	utils.GetLogger().Info("Uploaded image", zap.String("folder", folder), zap.String("publicId", result.PublicID))
	return result.SecureURL, nil
}

// DeleteFile deletes a file from Cloudinary given its public ID.
func (s *StorageServiceImpl) DeleteFile(ctx context.Context, publicID string) error {
	if _, err := s.cld.Upload.Destroy(ctx, uploader.DestroyParams{PublicID: publicID}); err != nil {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

type unavailable struct{}

func (unavailable) UploadImage(context.Context, io.Reader, string, string) (string, error) {
	return "", ErrUnavailable
}

func (unavailable) DeleteFile(context.Context, string) error { return ErrUnavailable }
