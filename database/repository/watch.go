package repository

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// WatchCollection emits the whole collection once, then again after every
// batch of change-stream events, until ctx ends or the stream fails.
// The stream is opened before the first read so no change is missed.
func WatchCollection[T any](ctx context.Context, coll *mongo.Collection, sort bson.D, emit func([]T)) error {
	stream, err := coll.Watch(ctx, mongo.Pipeline{})
	if err != nil {
		return fmt.Errorf("failed to open change stream on %s: %w", coll.Name(), err)
	}
	defer stream.Close(context.Background())

	if err := emitAll(ctx, coll, sort, emit); err != nil {
		return err
	}
	for stream.Next(ctx) {
		// Coalesce whatever else is already buffered into one reload.
		for stream.TryNext(ctx) {
		}
		if err := stream.Err(); err != nil {
			break
		}
		if err := emitAll(ctx, coll, sort, emit); err != nil {
			return err
		}
	}
	if err := stream.Err(); err != nil {
		return fmt.Errorf("change stream on %s failed: %w", coll.Name(), err)
	}
	return ctx.Err()
}

func emitAll[T any](ctx context.Context, coll *mongo.Collection, sort bson.D, emit func([]T)) error {
	findCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	cursor, err := coll.Find(findCtx, bson.M{}, options.Find().SetSort(sort))
	if err != nil {
		return fmt.Errorf("failed to load %s: %w", coll.Name(), err)
	}
	defer cursor.Close(findCtx)

	items := []T{}
	if err := cursor.All(findCtx, &items); err != nil {
		return fmt.Errorf("failed to decode %s: %w", coll.Name(), err)
	}
	emit(items)
	return nil
}
