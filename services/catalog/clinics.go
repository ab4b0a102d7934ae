package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"medbook/database/repository"
	"medbook/models"
	"medbook/utils"

	"github.com/google/uuid"
)

func (s *DefaultCatalogService) ListClinics(ctx context.Context, specialtyID string) ([]models.Clinic, error) {
	list, err := s.Clinics.List(ctx, specialtyID)
	if err != nil {
		return nil, fmt.Errorf("failed to list clinics: %w", err)
	}
	return list, nil
}

func (s *DefaultCatalogService) GetClinic(ctx context.Context, id string) (*models.Clinic, error) {
	c, err := s.Clinics.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, utils.NewAppError(utils.CodeNotFound, "Clinic not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get clinic: %w", err)
	}
	return c, nil
}

func (s *DefaultCatalogService) CreateClinic(ctx context.Context, req models.ClinicRequest) (*models.Clinic, error) {
	if err := s.checkSpecialty(ctx, req.SpecialtyID); err != nil {
		return nil, err
	}
	c := models.Clinic{ID: uuid.New().String()}
	applyClinic(&c, req)
	if err := s.Clinics.Create(ctx, &c); err != nil {
		return nil, fmt.Errorf("failed to create clinic: %w", err)
	}
	return &c, nil
}

func (s *DefaultCatalogService) UpdateClinic(ctx context.Context, id string, req models.ClinicRequest) (*models.Clinic, error) {
	c, err := s.GetClinic(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.checkSpecialty(ctx, req.SpecialtyID); err != nil {
		return nil, err
	}
	applyClinic(c, req)
	if err := s.Clinics.Update(ctx, c); err != nil {
		return nil, fmt.Errorf("failed to update clinic: %w", err)
	}
	return c, nil
}

// DeleteClinic refuses while doctors still practise at the clinic.
func (s *DefaultCatalogService) DeleteClinic(ctx context.Context, id string) error {
	if _, err := s.GetClinic(ctx, id); err != nil {
		return err
	}
	_, total, err := s.Doctors.List(ctx, models.DoctorFilter{ClinicID: id}, 1, 1)
	if err != nil {
		return fmt.Errorf("failed to check clinic doctors: %w", err)
	}
	if total > 0 {
		return utils.NewAppError(utils.CodeConflict, "Clinic still has doctors")
	}
	if err := s.Clinics.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete clinic: %w", err)
	}
	return nil
}

func (s *DefaultCatalogService) checkSpecialty(ctx context.Context, id string) error {
	if id == "" {
		return nil
	}
	if _, err := s.Specialties.GetByID(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return utils.NewAppError(utils.CodeInvalid, "Specialty does not exist")
		}
		return fmt.Errorf("failed to check specialty: %w", err)
	}
	return nil
}

func applyClinic(c *models.Clinic, req models.ClinicRequest) {
	c.Name = strings.TrimSpace(req.Name)
	c.Address = strings.TrimSpace(req.Address)
	c.PhoneNumber = req.PhoneNumber
	c.Description = utils.SanitizeHTML(req.Description)
	c.SpecialtyID = req.SpecialtyID
	if req.Image != "" {
		c.Image = req.Image
	}
}
