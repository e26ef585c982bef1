package userRepo

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"fixit/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ListProviders runs the directory query server side.
func (r *MongoUserRepo) ListProviders(ctx context.Context, filter models.ProviderFilter) ([]models.Actor, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	query := bson.M{"role": models.RoleProvider}
	if filter.Category != "" {
		query["serviceCategory"] = filter.Category
	}
	if filter.City != "" {
		query["city"] = primitive.Regex{Pattern: "^" + regexp.QuoteMeta(filter.City) + "$", Options: "i"}
	}
	if filter.AvailableOnly {
		query["availability"] = true
	}
	if q := strings.TrimSpace(filter.Query); q != "" {
		rx := primitive.Regex{Pattern: regexp.QuoteMeta(q), Options: "i"}
		query["$or"] = bson.A{
			bson.M{"displayName": rx},
			bson.M{"description": rx},
			bson.M{"skills": rx},
		}
	}

	opts := options.Find().SetSort(bson.D{
		{Key: "rating", Value: -1},
		{Key: "completedJobCount", Value: -1},
	})
	cursor, err := r.coll.Find(ctx, query, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list providers: %w", err)
	}
	defer cursor.Close(ctx)

	providers := []models.Actor{}
	if err := cursor.All(ctx, &providers); err != nil {
		return nil, fmt.Errorf("failed to decode providers: %w", err)
	}
	return providers, nil
}
