package mongodb

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/Ismail-Mert-Eksi/GuvenOto/internal/platform/logger"
)

// CounterRepository keeps one sequence document per category, keyed by _id.
type CounterRepository struct {
	collection *mongo.Collection
	logger     *logger.Logger
}

func NewCounterRepository(db *mongo.Database, log *logger.Logger) *CounterRepository {
	return &CounterRepository{
		collection: db.Collection(CounterCollection),
		logger:     log.Named("CounterRepository"),
	}
}

// Increment advances the counter in a single findAndModify. A missing counter
// is created holding baseline+1.
func (r *CounterRepository) Increment(ctx context.Context, name string, baseline int64) (int64, error) {
	update := mongo.Pipeline{
		{{Key: "$set", Value: bson.D{
			{Key: "seq", Value: bson.D{{Key: "$add", Value: bson.A{
				bson.D{{Key: "$ifNull", Value: bson.A{"$seq", baseline}}},
				1,
			}}}},
		}}},
	}
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var doc counterDocument
	err := r.collection.FindOneAndUpdate(ctx, bson.M{"_id": name}, update, opts).Decode(&doc)
	if mongo.IsDuplicateKeyError(err) {
		// Two first-time upserts raced on _id; the loser now finds the document.
		err = r.collection.FindOneAndUpdate(ctx, bson.M{"_id": name}, update, opts).Decode(&doc)
	}
	if err != nil {
		r.logger.Error("Failed to increment counter", zap.String("name", name), zap.Error(err))
		return 0, fmt.Errorf("counter increment failed: %w", err)
	}
	return doc.Seq, nil
}
