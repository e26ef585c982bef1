package userRepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"fixit/database/repository"
	"fixit/models"
	"fixit/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// MongoUserRepo implements UserRepository using MongoDB.
type MongoUserRepo struct {
	coll *mongo.Collection
}

// NewMongoUserRepo creates a new instance of UserRepository using MongoDB.
func NewMongoUserRepo(db *mongo.Database) UserRepository {
	repo := &MongoUserRepo{coll: db.Collection("actors")}

	if err := repo.ensureIndexes(); err != nil {
		utils.GetLogger().Warn("actors: failed to create indexes", zap.Error(err))
	}
	return repo
}

// newContext creates a context with the given timeout.
func newContext(timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), timeout)
}

func (r *MongoUserRepo) findOne(ctx context.Context, filter bson.M) (*models.Actor, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var actor models.Actor
	if err := r.coll.FindOne(ctx, filter).Decode(&actor); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &actor, nil
}

// GetByID retrieves an actor by its unique ID.
func (r *MongoUserRepo) GetByID(ctx context.Context, id string) (*models.Actor, error) {
	actor, err := r.findOne(ctx, bson.M{"id": id})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch actor with id %s: %w", id, err)
	}
	return actor, nil
}

// GetByEmail retrieves an actor by its email address.
func (r *MongoUserRepo) GetByEmail(ctx context.Context, email string) (*models.Actor, error) {
	actor, err := r.findOne(ctx, bson.M{"email": email})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch actor with email %s: %w", email, err)
	}
	return actor, nil
}

// Create inserts a new actor document.
func (r *MongoUserRepo) Create(ctx context.Context, actor *models.Actor) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	now := time.Now().UTC()
	actor.CreatedAt = now
	actor.UpdatedAt = now

	if _, err := r.coll.InsertOne(ctx, actor); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("failed to create actor: %w", repository.ErrDuplicate)
		}
		return fmt.Errorf("failed to create actor: %w", err)
	}
	return nil
}

// ApplyPatch sets the non-nil patch fields and returns the updated document.
func (r *MongoUserRepo) ApplyPatch(ctx context.Context, id string, patch models.ProfilePatch) (*models.Actor, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	// Apply onto a scratch actor so trimming rules live in one place.
	var scratch models.Actor
	patch.Apply(&scratch)

	setFields := bson.M{"updatedAt": time.Now().UTC()}
	if patch.DisplayName != nil {
		setFields["displayName"] = scratch.DisplayName
	}
	if patch.Phone != nil {
		setFields["phone"] = scratch.Phone
	}
	if patch.City != nil {
		setFields["city"] = scratch.City
	}
	if patch.AvatarURL != nil {
		setFields["avatarUrl"] = scratch.AvatarURL
	}
	if patch.FCMToken != nil {
		setFields["fcmToken"] = scratch.FCMToken
	}
	if patch.ServiceCategory != nil {
		setFields["serviceCategory"] = scratch.ServiceCategory
	}
	if patch.HourlyRate != nil {
		setFields["hourlyRate"] = scratch.HourlyRate
	}
	if patch.Availability != nil {
		setFields["availability"] = scratch.Availability
	}
	if patch.ExperienceYears != nil {
		setFields["experienceYears"] = scratch.ExperienceYears
	}
	if patch.Description != nil {
		setFields["description"] = scratch.Description
	}
	if patch.Skills != nil {
		setFields["skills"] = scratch.Skills
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var updated models.Actor
	err := r.coll.FindOneAndUpdate(ctx, bson.M{"id": id}, bson.M{"$set": setFields}, opts).Decode(&updated)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("actor with id %s: %w", id, repository.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to update actor with id %s: %w", id, err)
	}
	return &updated, nil
}

// SetSession records the active token hash and, on sign-in, the login time.
func (r *MongoUserRepo) SetSession(ctx context.Context, id, tokenHash string, loginAt *time.Time) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	setFields := bson.M{"tokenHash": tokenHash}
	if loginAt != nil {
		setFields["lastLoginAt"] = *loginAt
	}
	result, err := r.coll.UpdateOne(ctx, bson.M{"id": id}, bson.M{"$set": setFields})
	if err != nil {
		return fmt.Errorf("failed to update session for actor %s: %w", id, err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("actor with id %s: %w", id, repository.ErrNotFound)
	}
	return nil
}
