package conversationRepo

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

// maxAppendAttempts bounds the sequence CAS loop under contention.
const maxAppendAttempts = 16

// MongoConversationRepo implements ConversationRepository using MongoDB.
type MongoConversationRepo struct {
	coll *mongo.Collection
}

func NewMongoConversationRepo(db *mongo.Database) ConversationRepository {
	repo := &MongoConversationRepo{coll: db.Collection("conversations")}
	if err := repo.ensureIndexes(); err != nil {
		utils.GetLogger().Warn("conversations: failed to create indexes", zap.Error(err))
	}
	return repo
}

func (r *MongoConversationRepo) ensureIndexes() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := r.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "customerId", Value: 1}, {Key: "providerId", Value: 1}}, Options: options.Index().SetUnique(true)},
	})
	if err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}
	return nil
}

// CreateIfAbsent upserts with $setOnInsert so concurrent creators converge on one document.
func (r *MongoConversationRepo) CreateIfAbsent(ctx context.Context, conv *models.Conversation) (*models.Conversation, bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	onInsert := bson.M{
		"customerId":         conv.CustomerID,
		"providerId":         conv.ProviderID,
		"customerName":       conv.CustomerName,
		"providerName":       conv.ProviderName,
		"messages":           bson.A{},
		"lastMessagePreview": "",
		"unread":             bson.M{conv.CustomerID: 0, conv.ProviderID: 0},
		"nextSeq":            int64(1),
		"createdAt":          conv.CreatedAt,
	}
	opts := options.Update().SetUpsert(true)

	var created bool
	for attempt := 0; attempt < 2; attempt++ {
		res, err := r.coll.UpdateOne(ctx, bson.M{"id": conv.ID}, bson.M{"$setOnInsert": onInsert}, opts)
		if err == nil {
			created = res.UpsertedCount > 0
			break
		}
		// Two upserts racing on a unique index: the loser retries and matches.
		if !mongo.IsDuplicateKeyError(err) || attempt == 1 {
			return nil, false, fmt.Errorf("error creating conversation %s: %w", conv.ID, err)
		}
	}

	stored, err := r.GetByID(ctx, conv.ID)
	if err != nil {
		return nil, false, err
	}
	return stored, created, nil
}

func (r *MongoConversationRepo) GetByID(ctx context.Context, id string) (*models.Conversation, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var conv models.Conversation
	if err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&conv); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("conversation %s: %w", id, repository.ErrNotFound)
		}
		return nil, fmt.Errorf("error fetching conversation %s: %w", id, err)
	}
	return &conv, nil
}

// AppendMessage claims nextSeq with a compare-and-swap so the push, preview
// and unread bump land in one single-document write.
func (r *MongoConversationRepo) AppendMessage(ctx context.Context, id string, msg models.Message, recipientID string) (*models.Message, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	seqOpts := options.FindOne().SetProjection(bson.M{"nextSeq": 1})
	for attempt := 0; attempt < maxAppendAttempts; attempt++ {
		var current struct {
			NextSeq int64 `bson:"nextSeq"`
		}
		if err := r.coll.FindOne(ctx, bson.M{"id": id}, seqOpts).Decode(&current); err != nil {
			if errors.Is(err, mongo.ErrNoDocuments) {
				return nil, fmt.Errorf("conversation %s: %w", id, repository.ErrNotFound)
			}
			return nil, fmt.Errorf("error reading sequence of conversation %s: %w", id, err)
		}

		msg.Seq = current.NextSeq
		update := bson.M{
			"$push": bson.M{"messages": msg},
			"$set": bson.M{
				"lastMessagePreview": msg.Text,
				"lastMessageAt":      msg.SentAt,
			},
			"$inc": bson.M{
				"nextSeq":              1,
				"unread." + recipientID: 1,
			},
		}
		res, err := r.coll.UpdateOne(ctx, bson.M{"id": id, "nextSeq": current.NextSeq}, update)
		if err != nil {
			return nil, fmt.Errorf("error appending message to conversation %s: %w", id, err)
		}
		if res.MatchedCount == 1 {
			return &msg, nil
		}
	}
	return nil, fmt.Errorf("conversation %s append contended: %w", id, repository.ErrConflict)
}

func (r *MongoConversationRepo) ResetUnread(ctx context.Context, id, readerID string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	res, err := r.coll.UpdateOne(ctx, bson.M{"id": id}, bson.M{"$set": bson.M{"unread." + readerID: 0}})
	if err != nil {
		return fmt.Errorf("error marking conversation %s read: %w", id, err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("conversation %s: %w", id, repository.ErrNotFound)
	}
	return nil
}

func (r *MongoConversationRepo) Watch(ctx context.Context, emit func([]models.Conversation)) error {
	return repository.WatchCollection(ctx, r.coll, bson.D{{Key: "createdAt", Value: -1}}, emit)
}
