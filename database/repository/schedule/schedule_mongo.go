// File: database/repository/schedule/schedule_mongo.go
package scheduleRepo

import (
	"context"
	"fmt"
	"time"

	"medbook/database/repository"
	"medbook/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

type mongoScheduleRepo struct {
	coll   *mongo.Collection
	logger *zap.Logger
}

// NewMongoScheduleRepo constructs a MongoDB ScheduleRepository.
func NewMongoScheduleRepo(db *mongo.Database, logger *zap.Logger) ScheduleRepository {
	repo := &mongoScheduleRepo{
		coll:   db.Collection("schedules"),
		logger: logger,
	}
	if err := repo.EnsureIndexes(); err != nil {
		logger.Warn("schedule indexes not created", zap.Error(err))
	}
	return repo
}

// EnsureIndexes creates the indexes the schedule queries rely on.
func (r *mongoScheduleRepo) EnsureIndexes() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	indexModels := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "id", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("unique_id"),
		},
		// Primary query pattern: one doctor's day.
		{
			Keys:    bson.D{{Key: "doctor_id", Value: 1}, {Key: "date_schedule", Value: 1}, {Key: "start_time", Value: 1}},
			Options: options.Index().SetName("doctor_date_start_idx"),
		},
		{
			Keys:    bson.D{{Key: "date_schedule", Value: 1}, {Key: "active", Value: 1}},
			Options: options.Index().SetName("date_active_idx"),
		},
	}
	if _, err := r.coll.Indexes().CreateMany(ctx, indexModels); err != nil {
		return fmt.Errorf("failed to create schedule indexes: %w", err)
	}
	return nil
}

func (r *mongoScheduleRepo) Create(ctx context.Context, s *models.Schedule) error {
	ctx, cancel := repository.WithTimeout(ctx)
	defer cancel()

	now := time.Now()
	s.CreatedAt, s.UpdatedAt = now, now
	if _, err := r.coll.InsertOne(ctx, s); err != nil {
		return fmt.Errorf("failed to create schedule: %w", repository.MongoErr(err))
	}
	return nil
}

func (r *mongoScheduleRepo) Update(ctx context.Context, s *models.Schedule) error {
	ctx, cancel := repository.WithTimeout(ctx)
	defer cancel()

	s.UpdatedAt = time.Now()
	// number_booked is owned by ReserveSeat/ReleaseSeat and never overwritten here.
	filter := bson.M{"id": s.ID, "number_booked": bson.M{"$lte": s.BookingLimit}}
	update := bson.M{"$set": bson.M{
		"doctor_id":     s.DoctorID,
		"date_schedule": s.DateSchedule,
		"start_time":    s.StartTime,
		"end_time":      s.EndTime,
		"booking_limit": s.BookingLimit,
		"price":         s.Price,
		"active":        s.Active,
		"updated_at":    s.UpdatedAt,
	}}
	res, err := r.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to update schedule %s: %w", s.ID, err)
	}
	if res.MatchedCount == 0 {
		return r.missOrConflict(ctx, s.ID)
	}
	return nil
}

func (r *mongoScheduleRepo) Delete(ctx context.Context, id string) error {
	ctx, cancel := repository.WithTimeout(ctx)
	defer cancel()

	res, err := r.coll.DeleteOne(ctx, bson.M{"id": id, "number_booked": 0})
	if err != nil {
		return fmt.Errorf("failed to delete schedule %s: %w", id, err)
	}
	if res.DeletedCount == 0 {
		return r.missOrConflict(ctx, id)
	}
	return nil
}

// missOrConflict tells a missing schedule apart from a failed condition.
func (r *mongoScheduleRepo) missOrConflict(ctx context.Context, id string) error {
	n, err := r.coll.CountDocuments(ctx, bson.M{"id": id})
	if err != nil {
		return fmt.Errorf("failed to check schedule %s: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("schedule %s: %w", id, repository.ErrNotFound)
	}
	return fmt.Errorf("schedule %s: %w", id, repository.ErrConflict)
}

func (r *mongoScheduleRepo) GetByID(ctx context.Context, id string) (*models.Schedule, error) {
	ctx, cancel := repository.WithTimeout(ctx)
	defer cancel()

	var s models.Schedule
	if err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&s); err != nil {
		return nil, repository.MongoErr(err)
	}
	return &s, nil
}

func (r *mongoScheduleRepo) GetByIDs(ctx context.Context, ids []string) (map[string]models.Schedule, error) {
	out := make(map[string]models.Schedule, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	list, err := r.find(ctx, bson.M{"id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	for _, s := range list {
		out[s.ID] = s
	}
	return out, nil
}

func (r *mongoScheduleRepo) List(ctx context.Context, filter models.ScheduleFilter) ([]models.Schedule, error) {
	query := bson.M{}
	if filter.DoctorID != "" {
		query["doctor_id"] = filter.DoctorID
	} else if filter.DoctorIDs != nil {
		query["doctor_id"] = bson.M{"$in": filter.DoctorIDs}
	}
	if filter.DateSchedule != "" {
		query["date_schedule"] = filter.DateSchedule
	}
	if filter.ActiveOnly {
		query["active"] = true
	}
	return r.find(ctx, query)
}

func (r *mongoScheduleRepo) find(ctx context.Context, query bson.M) ([]models.Schedule, error) {
	ctx, cancel := repository.WithTimeout(ctx)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "date_schedule", Value: 1}, {Key: "start_time", Value: 1}})
	cursor, err := r.coll.Find(ctx, query, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query schedules: %w", err)
	}
	defer cursor.Close(ctx)

	out := []models.Schedule{}
	if err := cursor.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("failed to decode schedules: %w", err)
	}
	return out, nil
}

func (r *mongoScheduleRepo) Count(ctx context.Context) (int64, error) {
	ctx, cancel := repository.WithTimeout(ctx)
	defer cancel()
	return r.coll.CountDocuments(ctx, bson.M{})
}
