package mongodb

import (
	"fmt"
	"regexp"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/Ismail-Mert-Eksi/GuvenOto/internal/listing/domain"
)

var bsonFields = map[string]string{
	domain.FieldListingNumber:    "listing_number",
	domain.FieldTitle:            "title",
	domain.FieldCategory:         "category",
	domain.FieldBrand:            "brand",
	domain.FieldSeries:           "series",
	domain.FieldModel:            "model",
	domain.FieldPrice:            "price",
	domain.FieldYear:             "year",
	domain.FieldMileage:          "mileage",
	domain.FieldColor:            "color",
	domain.FieldBodyType:         "body_type",
	domain.FieldFuelType:         "fuel_type",
	domain.FieldTransmissionType: "transmission_type",
	domain.FieldEngineVolume:     "engine_volume",
	domain.FieldEnginePower:      "engine_power",
	domain.FieldUrgent:           "urgent",
	domain.FieldClassic:          "classic",
	domain.FieldModified:         "modified",
	domain.FieldViewCount:        "view_count",
	domain.FieldListedAt:         "listed_at",
	domain.FieldCreatedAt:        "created_at",
}

func bsonField(field string) (string, error) {
	f, ok := bsonFields[field]
	if !ok {
		return "", fmt.Errorf("%w: unknown listing field %q", domain.ErrInvalidArgument, field)
	}
	return f, nil
}

// containsRegex matches value literally anywhere, ignoring case.
func containsRegex(value string) primitive.Regex {
	return primitive.Regex{Pattern: regexp.QuoteMeta(value), Options: "i"}
}

func exactRegex(value string) primitive.Regex {
	return primitive.Regex{Pattern: "^" + regexp.QuoteMeta(value) + "$", Options: "i"}
}

// categoryScope restricts to a category, matched whole and ignoring case.
func categoryScope(category string) bson.M {
	if category == "" {
		return bson.M{}
	}
	return bson.M{bsonFields[domain.FieldCategory]: exactRegex(category)}
}

// buildFilter AND-s the translation of every clause.
func buildFilter(clauses []domain.Clause) (bson.M, error) {
	parts := make(bson.A, 0, len(clauses))
	for _, c := range clauses {
		part, err := clauseFilter(c)
		if err != nil {
			return nil, err
		}
		if part != nil {
			parts = append(parts, part)
		}
	}
	if len(parts) == 0 {
		return bson.M{}, nil
	}
	return bson.M{"$and": parts}, nil
}

func clauseFilter(c domain.Clause) (bson.M, error) {
	switch c := c.(type) {
	case domain.Substring:
		f, err := bsonField(c.Field)
		if err != nil {
			return nil, err
		}
		return bson.M{f: containsRegex(c.Value)}, nil

	case domain.Multiselect:
		f, err := bsonField(c.Field)
		if err != nil {
			return nil, err
		}
		alts := make(bson.A, 0, len(c.Values))
		for _, v := range c.Values {
			alts = append(alts, containsRegex(v))
		}
		return bson.M{f: bson.M{"$in": alts}}, nil

	case domain.Range:
		f, err := bsonField(c.Field)
		if err != nil {
			return nil, err
		}
		cond := bson.M{}
		if c.Min != nil {
			cond["$gte"] = *c.Min
		}
		if c.Max != nil {
			cond["$lte"] = *c.Max
		}
		if len(cond) == 0 {
			return nil, nil
		}
		return bson.M{f: cond}, nil

	case domain.Boolean:
		f, err := bsonField(c.Field)
		if err != nil {
			return nil, err
		}
		return bson.M{f: true}, nil

	case domain.Keyword:
		or := make(bson.A, 0, len(c.Fields))
		for _, field := range c.Fields {
			f, err := bsonField(field)
			if err != nil {
				return nil, err
			}
			or = append(or, bson.M{f: containsRegex(c.Value)})
		}
		if len(or) == 0 {
			return nil, nil
		}
		return bson.M{"$or": or}, nil

	default:
		return nil, fmt.Errorf("%w: unsupported clause %T", domain.ErrInvalidArgument, c)
	}
}

// buildSort orders by the requested field with _id as a stable tie-breaker.
func buildSort(s domain.Sort) (bson.D, error) {
	f, err := bsonField(s.Field)
	if err != nil {
		return nil, err
	}
	dir := int(s.Direction)
	if dir != 1 && dir != -1 {
		dir = -1
	}
	return bson.D{{Key: f, Value: dir}, {Key: "_id", Value: dir}}, nil
}
