package repository

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
)

var (
	// ErrNotFound is returned when no record matches.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned when a unique field is already taken.
	ErrDuplicate = errors.New("record already exists")
	// ErrScheduleFull is returned when a seat cannot be reserved.
	ErrScheduleFull = errors.New("schedule is full or inactive")
	// ErrConflict is returned when a conditional write matched nothing because
	// the record changed underneath it.
	ErrConflict = errors.New("record was modified concurrently")
)

// DefaultTimeout bounds a single repository round trip.
const DefaultTimeout = 5 * time.Second

// WithTimeout derives a bounded context for one repository call.
func WithTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, DefaultTimeout)
}

// MongoErr maps driver errors onto the repository sentinels.
func MongoErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return ErrNotFound
	case mongo.IsDuplicateKeyError(err):
		return ErrDuplicate
	default:
		return err
	}
}
