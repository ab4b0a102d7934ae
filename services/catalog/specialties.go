package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"medbook/database/repository"
	"medbook/models"
	"medbook/utils"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ListSpecialties serves from the cache when possible. Cache failures only log.
func (s *DefaultCatalogService) ListSpecialties(ctx context.Context) ([]models.Specialty, error) {
	logger := utils.GetLogger()

	if s.Cache != nil {
		raw, found, err := s.Cache.Get(ctx, specialtyCacheKey)
		if err != nil {
			logger.Warn("Specialty cache read failed", zap.Error(err))
		} else if found {
			var cached []models.Specialty
			if err := json.Unmarshal(raw, &cached); err == nil {
				return cached, nil
			}
			logger.Warn("Discarding malformed specialty cache entry")
		}
	}

	list, err := s.Specialties.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list specialties: %w", err)
	}

	if s.Cache != nil {
		if raw, err := json.Marshal(list); err == nil {
			if err := s.Cache.Set(ctx, specialtyCacheKey, raw, SpecialtyCacheTTL); err != nil {
				logger.Warn("Specialty cache write failed", zap.Error(err))
			}
		}
	}
	return list, nil
}

func (s *DefaultCatalogService) invalidateSpecialties(ctx context.Context) {
	if s.Cache == nil {
		return
	}
	if err := s.Cache.Delete(ctx, specialtyCacheKey); err != nil {
		utils.GetLogger().Warn("Specialty cache invalidation failed", zap.Error(err))
	}
}

func (s *DefaultCatalogService) GetSpecialty(ctx context.Context, id string) (*models.Specialty, error) {
	sp, err := s.Specialties.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, utils.NewAppError(utils.CodeNotFound, "Specialty not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get specialty: %w", err)
	}
	return sp, nil
}

func (s *DefaultCatalogService) CreateSpecialty(ctx context.Context, req models.SpecialtyRequest) (*models.Specialty, error) {
	sp := models.Specialty{
		ID:          uuid.New().String(),
		Name:        strings.TrimSpace(req.Name),
		Description: utils.SanitizeHTML(req.Description),
		Image:       req.Image,
	}
	if err := s.Specialties.Create(ctx, &sp); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, utils.NewAppError(utils.CodeConflict, "A specialty with this name already exists")
		}
		return nil, fmt.Errorf("failed to create specialty: %w", err)
	}
	s.invalidateSpecialties(ctx)
	return &sp, nil
}

func (s *DefaultCatalogService) UpdateSpecialty(ctx context.Context, id string, req models.SpecialtyRequest) (*models.Specialty, error) {
	sp, err := s.GetSpecialty(ctx, id)
	if err != nil {
		return nil, err
	}
	sp.Name = strings.TrimSpace(req.Name)
	sp.Description = utils.SanitizeHTML(req.Description)
	if req.Image != "" {
		sp.Image = req.Image
	}
	return sp, s.saveSpecialty(ctx, sp)
}

func (s *DefaultCatalogService) SetSpecialtyImage(ctx context.Context, id, url string) (*models.Specialty, error) {
	sp, err := s.GetSpecialty(ctx, id)
	if err != nil {
		return nil, err
	}
	sp.Image = url
	return sp, s.saveSpecialty(ctx, sp)
}

func (s *DefaultCatalogService) saveSpecialty(ctx context.Context, sp *models.Specialty) error {
	if err := s.Specialties.Update(ctx, sp); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return utils.NewAppError(utils.CodeConflict, "A specialty with this name already exists")
		}
		return fmt.Errorf("failed to update specialty: %w", err)
	}
	s.invalidateSpecialties(ctx)
	return nil
}

// DeleteSpecialty refuses while doctors still belong to the specialty.
func (s *DefaultCatalogService) DeleteSpecialty(ctx context.Context, id string) error {
	if _, err := s.GetSpecialty(ctx, id); err != nil {
		return err
	}
	ids, err := s.Doctors.IDsBySpecialty(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to check specialty doctors: %w", err)
	}
	if len(ids) > 0 {
		return utils.NewAppError(utils.CodeConflict, "Specialty still has doctors")
	}
	if err := s.Specialties.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete specialty: %w", err)
	}
	s.invalidateSpecialties(ctx)
	return nil
}
