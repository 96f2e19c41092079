package mongodb

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/Ismail-Mert-Eksi/GuvenOto/internal/listing/domain"
)

func fp(v float64) *float64 { return &v }

func TestBuildFilter_Empty(t *testing.T) {
	filter, err := buildFilter(nil)
	require.NoError(t, err)
	assert.Equal(t, bson.M{}, filter)
}

func TestBuildFilter_Clauses(t *testing.T) {
	filter, err := buildFilter([]domain.Clause{
		domain.Substring{Field: domain.FieldBrand, Value: "b.m.w"},
		domain.Multiselect{Field: domain.FieldFuelType, Values: []string{"Benzin", "Dizel"}},
		domain.Range{Field: domain.FieldPrice, Min: fp(1000)},
		domain.Range{Field: domain.FieldYear, Min: fp(2010), Max: fp(2020)},
		domain.Boolean{Field: domain.FieldUrgent},
		domain.Keyword{Fields: []string{domain.FieldListingNumber, domain.FieldModel}, Value: "ARC-(1)"},
	})
	require.NoError(t, err)

	want := bson.M{"$and": bson.A{
		bson.M{"brand": primitive.Regex{Pattern: `b\.m\.w`, Options: "i"}},
		bson.M{"fuel_type": bson.M{"$in": bson.A{
			primitive.Regex{Pattern: "Benzin", Options: "i"},
			primitive.Regex{Pattern: "Dizel", Options: "i"},
		}}},
		bson.M{"price": bson.M{"$gte": 1000.0}},
		bson.M{"year": bson.M{"$gte": 2010.0, "$lte": 2020.0}},
		bson.M{"urgent": true},
		bson.M{"$or": bson.A{
			bson.M{"listing_number": primitive.Regex{Pattern: `ARC-\(1\)`, Options: "i"}},
			bson.M{"model": primitive.Regex{Pattern: `ARC-\(1\)`, Options: "i"}},
		}},
	}}
	assert.Equal(t, want, filter)
}

func TestBuildFilter_OpenRangeIsSkipped(t *testing.T) {
	filter, err := buildFilter([]domain.Clause{domain.Range{Field: domain.FieldMileage}})
	require.NoError(t, err)
	assert.Equal(t, bson.M{}, filter)
}

func TestBuildFilter_UnknownField(t *testing.T) {
	_, err := buildFilter([]domain.Clause{domain.Substring{Field: "$where", Value: "1"}})
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
}

func TestBuildSort(t *testing.T) {
	s, err := buildSort(domain.Sort{Field: domain.FieldPrice, Direction: domain.SortAsc})
	require.NoError(t, err)
	assert.Equal(t, bson.D{{Key: "price", Value: 1}, {Key: "_id", Value: 1}}, s)

	s, err = buildSort(domain.DefaultSort)
	require.NoError(t, err)
	assert.Equal(t, bson.D{{Key: "listed_at", Value: -1}, {Key: "_id", Value: -1}}, s)

	_, err = buildSort(domain.Sort{Field: "password", Direction: domain.SortAsc})
	assert.Error(t, err)
}

func TestCategoryScope(t *testing.T) {
	assert.Equal(t, bson.M{}, categoryScope(""))
	assert.Equal(t, bson.M{"category": primitive.Regex{Pattern: `^Arazi\+SUV$`, Options: "i"}}, categoryScope("Arazi+SUV"))
}

func TestGroupKey(t *testing.T) {
	assert.Equal(t, "", groupKey(nil))
	assert.Equal(t, "BMW", groupKey("BMW"))
	assert.Equal(t, "150", groupKey(int32(150)))
}

func TestListingDocumentRoundTrip(t *testing.T) {
	price := 450000.0
	year := 2019
	now := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	l := &domain.Listing{
		ID:            primitive.NewObjectID().Hex(),
		Kind:          domain.KindVehicle,
		ListingNumber: "ARC-000042",
		Title:         "Sahibinden",
		Brand:         "Renault",
		Price:         &price,
		Year:          &year,
		Urgent:        true,
		ViewCount:     3,
		Images:        []domain.Image{{URL: "http://x/y.jpg", ImageID: "cars/y.jpg"}},
		ListedAt:      now,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	doc, err := toListingDocument(l)
	require.NoError(t, err)
	assert.Equal(t, l, doc.toDomain())

	_, err = toListingDocument(&domain.Listing{ID: "not-hex"})
	assert.Error(t, err)
}
