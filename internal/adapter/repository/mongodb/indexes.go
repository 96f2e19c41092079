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

func listingIndexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		{Keys: bson.D{{Key: "listing_number", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "listed_at", Value: -1}, {Key: "_id", Value: -1}}},
		{Keys: bson.D{{Key: "price", Value: 1}}},
		{Keys: bson.D{{Key: "brand", Value: 1}}},
		{Keys: bson.D{{Key: "category", Value: 1}, {Key: "brand", Value: 1}, {Key: "series", Value: 1}, {Key: "model", Value: 1}}},
		{Keys: bson.D{{Key: "year", Value: 1}}},
		{Keys: bson.D{{Key: "mileage", Value: 1}}},
		{Keys: bson.D{{Key: "urgent", Value: 1}}},
	}
}

// EnsureIndexes creates the listing indexes on both listing collections.
func EnsureIndexes(ctx context.Context, db *mongo.Database, log *logger.Logger) error {
	for _, name := range []string{VehicleCollection, SparePartCollection} {
		created, err := db.Collection(name).Indexes().CreateMany(ctx, listingIndexes())
		if err != nil {
			log.Error("Failed to create indexes", zap.String("collection", name), zap.Error(err))
			return fmt.Errorf("create indexes for %s: %w", name, err)
		}
		log.Info("Ensured indexes", zap.String("collection", name), zap.Strings("indexes", created))
	}
	return nil
}
