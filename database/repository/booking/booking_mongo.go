// File: database/repository/booking/booking_mongo.go
package bookingRepo

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
	"go.uber.org/zap"
)

type MongoBookingRepo struct {
	coll   *mongo.Collection
	logger *zap.Logger
}

func NewMongoBookingRepo(db *mongo.Database, logger *zap.Logger) BookingRepository {
	repo := &MongoBookingRepo{coll: db.Collection("bookings"), logger: logger}
	repo.ensureIndexes()
	return repo
}

func (r *MongoBookingRepo) ensureIndexes() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := r.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "schedule_id", Value: 1}}},
		{Keys: bson.D{{Key: "status", Value: 1}}},
	})
	if err != nil {
		r.logger.Warn("booking indexes not created", zap.Error(err))
	}
}

func (r *MongoBookingRepo) Create(ctx context.Context, b *models.Booking) error {
	ctx, cancel := repository.WithTimeout(ctx)
	defer cancel()

	now := time.Now()
	if b.CreatedAt.IsZero() {
		b.CreatedAt = now
	}
	b.UpdatedAt = now
	if _, err := r.coll.InsertOne(ctx, b); err != nil {
		return fmt.Errorf("insert booking failed: %w", repository.MongoErr(err))
	}
	return nil
}

func (r *MongoBookingRepo) GetByID(ctx context.Context, id string) (*models.Booking, error) {
	ctx, cancel := repository.WithTimeout(ctx)
	defer cancel()

	var b models.Booking
	if err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&b); err != nil {
		return nil, repository.MongoErr(err)
	}
	return &b, nil
}

func buildFilter(f models.BookingFilter) bson.M {
	query := bson.M{}
	if f.UserID != "" {
		query["user_id"] = f.UserID
	} else if f.UserIDs != nil {
		query["user_id"] = bson.M{"$in": f.UserIDs}
	}
	if f.ScheduleIDs != nil {
		query["schedule_id"] = bson.M{"$in": f.ScheduleIDs}
	}
	if f.Status != "" {
		query["status"] = f.Status
	}
	return query
}

func (r *MongoBookingRepo) List(ctx context.Context, filter models.BookingFilter, page, limit int) ([]models.Booking, int64, error) {
	ctx, cancel := repository.WithTimeout(ctx)
	defer cancel()

	query := buildFilter(filter)
	total, err := r.coll.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count bookings: %w", err)
	}

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	if limit > 0 {
		opts.SetSkip(int64(utils.Offset(page, limit))).SetLimit(int64(limit))
	}
	cursor, err := r.coll.Find(ctx, query, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query bookings: %w", err)
	}
	defer cursor.Close(ctx)

	out := []models.Booking{}
	if err := cursor.All(ctx, &out); err != nil {
		return nil, 0, fmt.Errorf("failed to decode bookings: %w", err)
	}
	return out, total, nil
}

func (r *MongoBookingRepo) UpdateIfStatus(ctx context.Context, b *models.Booking, expected string) error {
	ctx, cancel := repository.WithTimeout(ctx)
	defer cancel()

	b.UpdatedAt = time.Now()
	res, err := r.coll.ReplaceOne(ctx, bson.M{"id": b.ID, "status": expected}, b)
	if err != nil {
		return fmt.Errorf("failed to update booking %s: %w", b.ID, err)
	}
	if res.MatchedCount == 0 {
		return r.missOrConflict(ctx, b.ID)
	}
	return nil
}

func (r *MongoBookingRepo) DeleteIfStatus(ctx context.Context, id, expected string) error {
	ctx, cancel := repository.WithTimeout(ctx)
	defer cancel()

	res, err := r.coll.DeleteOne(ctx, bson.M{"id": id, "status": expected})
	if err != nil {
		return fmt.Errorf("failed to delete booking %s: %w", id, err)
	}
	if res.DeletedCount == 0 {
		return r.missOrConflict(ctx, id)
	}
	return nil
}

func (r *MongoBookingRepo) missOrConflict(ctx context.Context, id string) error {
	n, err := r.coll.CountDocuments(ctx, bson.M{"id": id})
	if err != nil {
		return fmt.Errorf("failed to check booking %s: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("booking %s: %w", id, repository.ErrNotFound)
	}
	return fmt.Errorf("booking %s: %w", id, repository.ErrConflict)
}
