// File: database/repository/catalog/mongo.go
package catalogRepo

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"medbook/database/repository"
	"medbook/models"
	"medbook/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// --- Specialties ---

type mongoSpecialtyRepo struct {
	coll *mongo.Collection
}

func NewMongoSpecialtyRepo(db *mongo.Database, logger *zap.Logger) SpecialtyRepository {
	r := &mongoSpecialtyRepo{coll: db.Collection("specialties")}
	ensureIndexes(r.coll, logger,
		mongo.IndexModel{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		mongo.IndexModel{Keys: bson.D{{Key: "name", Value: 1}}, Options: options.Index().SetUnique(true)},
	)
	return r
}

func (r *mongoSpecialtyRepo) Create(ctx context.Context, s *models.Specialty) error {
	now := time.Now()
	s.CreatedAt, s.UpdatedAt = now, now
	return insert(ctx, r.coll, "specialty", s)
}

func (r *mongoSpecialtyRepo) Update(ctx context.Context, s *models.Specialty) error {
	s.UpdatedAt = time.Now()
	return replace(ctx, r.coll, "specialty", s.ID, s)
}

func (r *mongoSpecialtyRepo) Delete(ctx context.Context, id string) error {
	return deleteByID(ctx, r.coll, "specialty", id)
}

func (r *mongoSpecialtyRepo) GetByID(ctx context.Context, id string) (*models.Specialty, error) {
	var s models.Specialty
	if err := findOne(ctx, r.coll, bson.M{"id": id}, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *mongoSpecialtyRepo) List(ctx context.Context) ([]models.Specialty, error) {
	out := []models.Specialty{}
	err := findAll(ctx, r.coll, bson.M{}, options.Find().SetSort(bson.D{{Key: "name", Value: 1}}), &out)
	return out, err
}

func (r *mongoSpecialtyRepo) Count(ctx context.Context) (int64, error) {
	return count(ctx, r.coll, bson.M{})
}

// --- Clinics ---

type mongoClinicRepo struct {
	coll *mongo.Collection
}

func NewMongoClinicRepo(db *mongo.Database, logger *zap.Logger) ClinicRepository {
	r := &mongoClinicRepo{coll: db.Collection("clinics")}
	ensureIndexes(r.coll, logger,
		mongo.IndexModel{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		mongo.IndexModel{Keys: bson.D{{Key: "specialty_id", Value: 1}}},
	)
	return r
}

func (r *mongoClinicRepo) Create(ctx context.Context, c *models.Clinic) error {
	now := time.Now()
	c.CreatedAt, c.UpdatedAt = now, now
	return insert(ctx, r.coll, "clinic", c)
}

func (r *mongoClinicRepo) Update(ctx context.Context, c *models.Clinic) error {
	c.UpdatedAt = time.Now()
	return replace(ctx, r.coll, "clinic", c.ID, c)
}

func (r *mongoClinicRepo) Delete(ctx context.Context, id string) error {
	return deleteByID(ctx, r.coll, "clinic", id)
}

func (r *mongoClinicRepo) GetByID(ctx context.Context, id string) (*models.Clinic, error) {
	var c models.Clinic
	if err := findOne(ctx, r.coll, bson.M{"id": id}, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *mongoClinicRepo) List(ctx context.Context, specialtyID string) ([]models.Clinic, error) {
	filter := bson.M{}
	if specialtyID != "" {
		filter["specialty_id"] = specialtyID
	}
	out := []models.Clinic{}
	err := findAll(ctx, r.coll, filter, options.Find().SetSort(bson.D{{Key: "name", Value: 1}}), &out)
	return out, err
}

func (r *mongoClinicRepo) Count(ctx context.Context) (int64, error) {
	return count(ctx, r.coll, bson.M{})
}

// --- Doctors ---

type mongoDoctorRepo struct {
	coll  *mongo.Collection
	users *mongo.Collection
}

func NewMongoDoctorRepo(db *mongo.Database, logger *zap.Logger) DoctorRepository {
	r := &mongoDoctorRepo{coll: db.Collection("doctors"), users: db.Collection("users")}
	ensureIndexes(r.coll, logger,
		mongo.IndexModel{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		mongo.IndexModel{Keys: bson.D{{Key: "user_id", Value: 1}}, Options: options.Index().SetUnique(true)},
		mongo.IndexModel{Keys: bson.D{{Key: "specialty_id", Value: 1}, {Key: "clinic_id", Value: 1}}},
	)
	return r
}

func (r *mongoDoctorRepo) Create(ctx context.Context, d *models.Doctor) error {
	now := time.Now()
	d.CreatedAt, d.UpdatedAt = now, now
	return insert(ctx, r.coll, "doctor", d)
}

func (r *mongoDoctorRepo) Update(ctx context.Context, d *models.Doctor) error {
	d.UpdatedAt = time.Now()
	return replace(ctx, r.coll, "doctor", d.ID, d)
}

func (r *mongoDoctorRepo) Delete(ctx context.Context, id string) error {
	return deleteByID(ctx, r.coll, "doctor", id)
}

func (r *mongoDoctorRepo) GetByID(ctx context.Context, id string) (*models.Doctor, error) {
	var d models.Doctor
	if err := findOne(ctx, r.coll, bson.M{"id": id}, &d); err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *mongoDoctorRepo) GetByUserID(ctx context.Context, userID string) (*models.Doctor, error) {
	var d models.Doctor
	if err := findOne(ctx, r.coll, bson.M{"user_id": userID}, &d); err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *mongoDoctorRepo) GetByIDs(ctx context.Context, ids []string) (map[string]models.Doctor, error) {
	out := make(map[string]models.Doctor, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var docs []models.Doctor
	if err := findAll(ctx, r.coll, bson.M{"id": bson.M{"$in": ids}}, nil, &docs); err != nil {
		return nil, err
	}
	for _, d := range docs {
		out[d.ID] = d
	}
	return out, nil
}

func (r *mongoDoctorRepo) List(ctx context.Context, filter models.DoctorFilter, page, limit int) ([]models.Doctor, int64, error) {
	query := bson.M{}
	if filter.SpecialtyID != "" {
		query["specialty_id"] = filter.SpecialtyID
	}
	if filter.ClinicID != "" {
		query["clinic_id"] = filter.ClinicID
	}
	if filter.ActiveOnly {
		query["active"] = true
	}
	if filter.Query != "" {
		// Doctor names live on the user document.
		userIDs, err := r.matchingUserIDs(ctx, filter.Query)
		if err != nil {
			return nil, 0, err
		}
		query["user_id"] = bson.M{"$in": userIDs}
	}

	total, err := count(ctx, r.coll, query)
	if err != nil {
		return nil, 0, err
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetSkip(int64(utils.Offset(page, limit))).
		SetLimit(int64(limit))
	out := []models.Doctor{}
	if err := findAll(ctx, r.coll, query, opts, &out); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func (r *mongoDoctorRepo) matchingUserIDs(ctx context.Context, q string) ([]string, error) {
	ctx, cancel := repository.WithTimeout(ctx)
	defer cancel()

	pattern := bson.M{"$regex": regexp.QuoteMeta(q), "$options": "i"}
	values, err := r.users.Distinct(ctx, "id", bson.M{"role": models.RoleDoctor, "fullname": pattern})
	if err != nil {
		return nil, fmt.Errorf("failed to search doctor names: %w", err)
	}
	ids := make([]string, 0, len(values))
	for _, v := range values {
		if s, ok := v.(string); ok {
			ids = append(ids, s)
		}
	}
	return ids, nil
}

func (r *mongoDoctorRepo) IDsBySpecialty(ctx context.Context, specialtyID string) ([]string, error) {
	ctx, cancel := repository.WithTimeout(ctx)
	defer cancel()

	values, err := r.coll.Distinct(ctx, "id", bson.M{"specialty_id": specialtyID})
	if err != nil {
		return nil, fmt.Errorf("failed to list doctors of specialty %s: %w", specialtyID, err)
	}
	ids := make([]string, 0, len(values))
	for _, v := range values {
		if s, ok := v.(string); ok {
			ids = append(ids, s)
		}
	}
	return ids, nil
}

func (r *mongoDoctorRepo) Count(ctx context.Context) (int64, error) {
	return count(ctx, r.coll, bson.M{})
}
