package mongodb

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/Ismail-Mert-Eksi/GuvenOto/internal/listing/domain"
	"github.com/Ismail-Mert-Eksi/GuvenOto/internal/platform/logger"
)

// ListingRepository implements domain.ListingRepository for one listing kind.
type ListingRepository struct {
	collection *mongo.Collection
	kind       domain.Kind
	logger     *logger.Logger
}

func CollectionFor(kind domain.Kind) string {
	if kind == domain.KindSparePart {
		return SparePartCollection
	}
	return VehicleCollection
}

func NewListingRepository(db *mongo.Database, kind domain.Kind, log *logger.Logger) *ListingRepository {
	return &ListingRepository{
		collection: db.Collection(CollectionFor(kind)),
		kind:       kind,
		logger:     log.Named("ListingRepository").With(zap.String("kind", string(kind))),
	}
}

func (r *ListingRepository) Create(ctx context.Context, listing *domain.Listing) error {
	doc, err := toListingDocument(listing)
	if err != nil {
		return err
	}
	if doc.ID.IsZero() {
		doc.ID = primitive.NewObjectID()
	}
	doc.Kind = string(r.kind)

	if _, err := r.collection.InsertOne(ctx, doc); err != nil {
		r.logger.Error("Failed to insert listing", zap.String("listing_number", doc.ListingNumber), zap.Error(err))
		return fmt.Errorf("db insert failed: %w", err)
	}
	listing.ID = doc.ID.Hex()
	listing.Kind = r.kind
	return nil
}

// Update rewrites the mutable fields. The listing number, view count and
// creation time are never written here.
func (r *ListingRepository) Update(ctx context.Context, listing *domain.Listing) error {
	doc, err := toListingDocument(listing)
	if err != nil {
		return domain.ErrNotFound
	}

	set := bson.M{
		"title":             doc.Title,
		"description":       doc.Description,
		"category":          doc.Category,
		"brand":             doc.Brand,
		"series":            doc.Series,
		"model":             doc.Model,
		"price":             doc.Price,
		"year":              doc.Year,
		"mileage":           doc.Mileage,
		"color":             doc.Color,
		"body_type":         doc.BodyType,
		"fuel_type":         doc.FuelType,
		"transmission_type": doc.TransmissionType,
		"engine_volume":     doc.EngineVolume,
		"engine_power":      doc.EnginePower,
		"urgent":            doc.Urgent,
		"classic":           doc.Classic,
		"modified":          doc.Modified,
		"images":            doc.Images,
		"listed_at":         doc.ListedAt,
		"updated_at":        doc.UpdatedAt,
	}

	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": doc.ID}, bson.M{"$set": set})
	if err != nil {
		r.logger.Error("Failed to update listing", zap.String("id", listing.ID), zap.Error(err))
		return fmt.Errorf("db update failed: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *ListingRepository) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrNotFound
	}
	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		r.logger.Error("Failed to delete listing", zap.String("id", id), zap.Error(err))
		return fmt.Errorf("db delete failed: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *ListingRepository) FindByID(ctx context.Context, id string) (*domain.Listing, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrNotFound
	}
	return r.findOne(r.collection.FindOne(ctx, bson.M{"_id": oid}))
}

func (r *ListingRepository) IncrementViews(ctx context.Context, listingNumber string) (*domain.Listing, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	res := r.collection.FindOneAndUpdate(ctx,
		bson.M{"listing_number": listingNumber},
		bson.M{"$inc": bson.M{"view_count": 1}},
		opts,
	)
	return r.findOne(res)
}

func (r *ListingRepository) findOne(res *mongo.SingleResult) (*domain.Listing, error) {
	var doc listingDocument
	if err := res.Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrNotFound
		}
		r.logger.Error("Failed to read listing", zap.Error(err))
		return nil, fmt.Errorf("db findone failed: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *ListingRepository) Find(ctx context.Context, q domain.ListingQuery) ([]*domain.Listing, int64, error) {
	filter, err := buildFilter(q.Clauses)
	if err != nil {
		return nil, 0, err
	}
	sort, err := buildSort(q.Sort)
	if err != nil {
		return nil, 0, err
	}

	total, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		r.logger.Error("Failed to count listings", zap.Error(err))
		return nil, 0, fmt.Errorf("db count failed: %w", err)
	}

	opts := options.Find().
		SetSort(sort).
		SetSkip(q.Skip()).
		SetLimit(int64(q.Limit))

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		r.logger.Error("Failed to find listings", zap.Error(err))
		return nil, 0, fmt.Errorf("db find failed: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []listingDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, 0, fmt.Errorf("db cursor decode failed: %w", err)
	}

	listings := make([]*domain.Listing, 0, len(docs))
	for i := range docs {
		listings = append(listings, docs[i].toDomain())
	}
	return listings, total, nil
}

type valueCountDocument struct {
	Value interface{} `bson:"_id"`
	Count int64       `bson:"count"`
}

type hierarchyCountDocument struct {
	ID struct {
		Brand  interface{} `bson:"brand"`
		Series interface{} `bson:"series"`
		Model  interface{} `bson:"model"`
	} `bson:"_id"`
	Count int64 `bson:"count"`
}

func (r *ListingRepository) CountByField(ctx context.Context, field, category string) ([]domain.ValueCount, error) {
	f, err := bsonField(field)
	if err != nil {
		return nil, err
	}

	pipeline := r.scoped(category, bson.D{{Key: "$group", Value: bson.D{
		{Key: "_id", Value: "$" + f},
		{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
	}}})

	var docs []valueCountDocument
	if err := r.aggregate(ctx, pipeline, &docs); err != nil {
		return nil, err
	}

	out := make([]domain.ValueCount, 0, len(docs))
	for _, d := range docs {
		out = append(out, domain.ValueCount{Value: groupKey(d.Value), Count: d.Count})
	}
	return out, nil
}

func (r *ListingRepository) CountHierarchy(ctx context.Context, category string) ([]domain.HierarchyCount, error) {
	pipeline := r.scoped(category, bson.D{{Key: "$group", Value: bson.D{
		{Key: "_id", Value: bson.D{
			{Key: "brand", Value: "$brand"},
			{Key: "series", Value: "$series"},
			{Key: "model", Value: "$model"},
		}},
		{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
	}}})

	var docs []hierarchyCountDocument
	if err := r.aggregate(ctx, pipeline, &docs); err != nil {
		return nil, err
	}

	out := make([]domain.HierarchyCount, 0, len(docs))
	for _, d := range docs {
		out = append(out, domain.HierarchyCount{
			Brand:  groupKey(d.ID.Brand),
			Series: groupKey(d.ID.Series),
			Model:  groupKey(d.ID.Model),
			Count:  d.Count,
		})
	}
	return out, nil
}

func (r *ListingRepository) scoped(category string, stages ...bson.D) mongo.Pipeline {
	pipeline := mongo.Pipeline{}
	if category != "" {
		pipeline = append(pipeline, bson.D{{Key: "$match", Value: categoryScope(category)}})
	}
	return append(pipeline, stages...)
}

func (r *ListingRepository) aggregate(ctx context.Context, pipeline mongo.Pipeline, out interface{}) error {
	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		r.logger.Error("Aggregation failed", zap.Error(err))
		return fmt.Errorf("db aggregate failed: %w", err)
	}
	defer cursor.Close(ctx)
	if err := cursor.All(ctx, out); err != nil {
		return fmt.Errorf("db aggregate decode failed: %w", err)
	}
	return nil
}

// groupKey renders a grouped value. Missing and null values become "".
func groupKey(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	default:
		return fmt.Sprint(t)
	}
}
