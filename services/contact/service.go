package contact

import (
	"context"
	"fmt"
	"strings"

	contactRepo "medbook/database/repository/contact"
	"medbook/models"
	"medbook/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type ContactService interface {
	Submit(ctx context.Context, req models.ContactRequest) (*models.ContactMessage, error)
	List(ctx context.Context, page, limit int) (utils.Page[models.ContactMessage], error)
}

type DefaultContactService struct {
	Repo contactRepo.ContactRepository
}

func (s *DefaultContactService) Submit(ctx context.Context, req models.ContactRequest) (*models.ContactMessage, error) {
	msg := models.ContactMessage{
		ID:          uuid.New().String(),
		Fullname:    strings.TrimSpace(req.Fullname),
		Email:       strings.ToLower(strings.TrimSpace(req.Email)),
		PhoneNumber: req.PhoneNumber,
		Subject:     strings.TrimSpace(req.Subject),
		// Plain text only.
		Message: utils.StripHTML(req.Message),
	}
	if err := s.Repo.Create(ctx, &msg); err != nil {
		return nil, fmt.Errorf("failed to store contact message: %w", err)
	}
	utils.GetLogger().Info("Contact message received", zap.String("id", msg.ID), zap.String("email", msg.Email))
	return &msg, nil
}

func (s *DefaultContactService) List(ctx context.Context, page, limit int) (utils.Page[models.ContactMessage], error) {
	rows, total, err := s.Repo.List(ctx, page, limit)
	if err != nil {
		return utils.Page[models.ContactMessage]{}, fmt.Errorf("failed to list contact messages: %w", err)
	}
	return utils.PageOf(rows, total, page, limit), nil
}
