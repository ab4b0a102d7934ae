package scheduleRepo

import (
	"context"
	"fmt"
	"time"

	"medbook/database/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
)

// ReserveSeat increments number_booked in a single conditional update, so
// two patients racing for the last seat cannot both win.
func (r *mongoScheduleRepo) ReserveSeat(ctx context.Context, id string) error {
	ctx, cancel := repository.WithTimeout(ctx)
	defer cancel()

	filter := bson.M{
		"id":     id,
		"active": true,
		"$expr":  bson.M{"$lt": bson.A{"$number_booked", "$booking_limit"}},
	}
	update := bson.M{
		"$inc": bson.M{"number_booked": 1},
		"$set": bson.M{"updated_at": time.Now()},
	}

	res, err := r.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to reserve seat on schedule %s: %w", id, err)
	}
	if res.MatchedCount == 0 {
		n, err := r.coll.CountDocuments(ctx, bson.M{"id": id})
		if err != nil {
			return fmt.Errorf("failed to check schedule %s: %w", id, err)
		}
		if n == 0 {
			return fmt.Errorf("schedule %s: %w", id, repository.ErrNotFound)
		}
		return fmt.Errorf("schedule %s: %w", id, repository.ErrScheduleFull)
	}
	return nil
}

func (r *mongoScheduleRepo) ReleaseSeat(ctx context.Context, id string) error {
	ctx, cancel := repository.WithTimeout(ctx)
	defer cancel()

	filter := bson.M{"id": id, "number_booked": bson.M{"$gt": 0}}
	update := bson.M{
		"$inc": bson.M{"number_booked": -1},
		"$set": bson.M{"updated_at": time.Now()},
	}

	res, err := r.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to release seat on schedule %s: %w", id, err)
	}
	if res.MatchedCount == 0 {
		r.logger.Warn("release on schedule with no booked seats", zap.String("scheduleId", id))
	}
	return nil
}
