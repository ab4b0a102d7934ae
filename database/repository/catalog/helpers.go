package catalogRepo

import (
	"context"
	"fmt"
	"time"

	"medbook/database/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

func ensureIndexes(coll *mongo.Collection, logger *zap.Logger, models ...mongo.IndexModel) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if _, err := coll.Indexes().CreateMany(ctx, models); err != nil {
		logger.Warn("failed to create indexes", zap.String("collection", coll.Name()), zap.Error(err))
	}
}

func insert(ctx context.Context, coll *mongo.Collection, kind string, doc any) error {
	ctx, cancel := repository.WithTimeout(ctx)
	defer cancel()
	if _, err := coll.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("failed to create %s: %w", kind, repository.MongoErr(err))
	}
	return nil
}

func replace(ctx context.Context, coll *mongo.Collection, kind, id string, doc any) error {
	ctx, cancel := repository.WithTimeout(ctx)
	defer cancel()
	res, err := coll.ReplaceOne(ctx, bson.M{"id": id}, doc)
	if err != nil {
		return fmt.Errorf("failed to update %s %s: %w", kind, id, repository.MongoErr(err))
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("%s %s: %w", kind, id, repository.ErrNotFound)
	}
	return nil
}

func deleteByID(ctx context.Context, coll *mongo.Collection, kind, id string) error {
	ctx, cancel := repository.WithTimeout(ctx)
	defer cancel()
	res, err := coll.DeleteOne(ctx, bson.M{"id": id})
	if err != nil {
		return fmt.Errorf("failed to delete %s %s: %w", kind, id, err)
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("%s %s: %w", kind, id, repository.ErrNotFound)
	}
	return nil
}

func findOne(ctx context.Context, coll *mongo.Collection, filter bson.M, out any) error {
	ctx, cancel := repository.WithTimeout(ctx)
	defer cancel()
	return repository.MongoErr(coll.FindOne(ctx, filter).Decode(out))
}

func findAll(ctx context.Context, coll *mongo.Collection, filter bson.M, opts *options.FindOptions, out any) error {
	ctx, cancel := repository.WithTimeout(ctx)
	defer cancel()
	var findOpts []*options.FindOptions
	if opts != nil {
		findOpts = append(findOpts, opts)
	}
	cursor, err := coll.Find(ctx, filter, findOpts...)
	if err != nil {
		return fmt.Errorf("failed to query %s: %w", coll.Name(), err)
	}
	if err := cursor.All(ctx, out); err != nil {
		return fmt.Errorf("failed to decode %s: %w", coll.Name(), err)
	}
	return nil
}

func count(ctx context.Context, coll *mongo.Collection, filter bson.M) (int64, error) {
	ctx, cancel := repository.WithTimeout(ctx)
	defer cancel()
	return coll.CountDocuments(ctx, filter)
}
