// File: database/repository/contact/contact.go
package contactRepo

import (
	"context"
	"fmt"
	"time"

	"medbook/database/repository"
	"medbook/models"
	"medbook/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ContactRepository stores contact form messages.
type ContactRepository interface {
	Create(ctx context.Context, m *models.ContactMessage) error
	List(ctx context.Context, page, limit int) ([]models.ContactMessage, int64, error)
}

type mongoContactRepo struct {
	coll *mongo.Collection
}

func NewMongoContactRepo(db *mongo.Database) ContactRepository {
	return &mongoContactRepo{coll: db.Collection("contacts")}
}

func (r *mongoContactRepo) Create(ctx context.Context, m *models.ContactMessage) error {
	ctx, cancel := repository.WithTimeout(ctx)
	defer cancel()

	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now()
	}
	if _, err := r.coll.InsertOne(ctx, m); err != nil {
		return fmt.Errorf("failed to store contact message: %w", err)
	}
	return nil
}

func (r *mongoContactRepo) List(ctx context.Context, page, limit int) ([]models.ContactMessage, int64, error) {
	ctx, cancel := repository.WithTimeout(ctx)
	defer cancel()

	total, err := r.coll.CountDocuments(ctx, bson.M{})
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count contact messages: %w", err)
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetSkip(int64(utils.Offset(page, limit))).
		SetLimit(int64(limit))
	cursor, err := r.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query contact messages: %w", err)
	}
	defer cursor.Close(ctx)

	out := []models.ContactMessage{}
	if err := cursor.All(ctx, &out); err != nil {
		return nil, 0, fmt.Errorf("failed to decode contact messages: %w", err)
	}
	return out, total, nil
}
