package query

import (
	"slices"

	"github.com/Ismail-Mert-Eksi/GuvenOto/internal/listing/domain"
)

// Schema lists the parameters a listing kind understands.
type Schema struct {
	// Text keys become Substring clauses, or Multiselect when repeated.
	Text []string
	// Lists are Text keys whose values never hold a comma, so "a,b" reads as two values.
	Lists []string
	// Ranges are read from <field>Min and <field>Max.
	Ranges        []string
	Booleans      []string
	KeywordFields []string
	SortFields    []string
}

var VehicleSchema = Schema{
	Text: []string{
		domain.FieldCategory,
		domain.FieldBrand,
		domain.FieldSeries,
		domain.FieldModel,
		domain.FieldColor,
		domain.FieldBodyType,
		domain.FieldFuelType,
		domain.FieldTransmissionType,
		domain.FieldEngineVolume,
		domain.FieldEnginePower,
	},
	Lists: []string{
		domain.FieldColor,
		domain.FieldBodyType,
		domain.FieldFuelType,
		domain.FieldTransmissionType,
	},
	Ranges:   []string{domain.FieldPrice, domain.FieldYear, domain.FieldMileage},
	Booleans: []string{domain.FieldUrgent, domain.FieldClassic, domain.FieldModified},
	KeywordFields: []string{
		domain.FieldListingNumber,
		domain.FieldBrand,
		domain.FieldSeries,
		domain.FieldModel,
	},
	SortFields: []string{
		domain.FieldListedAt,
		domain.FieldPrice,
		domain.FieldListingNumber,
		domain.FieldYear,
		domain.FieldMileage,
		domain.FieldViewCount,
		domain.FieldCreatedAt,
	},
}

var SparePartSchema = Schema{
	Text:          []string{domain.FieldBrand},
	Ranges:        []string{domain.FieldPrice},
	KeywordFields: []string{domain.FieldListingNumber, domain.FieldTitle, domain.FieldBrand},
	SortFields:    []string{domain.FieldListedAt, domain.FieldPrice, domain.FieldListingNumber},
}

func SchemaFor(kind domain.Kind) Schema {
	if kind == domain.KindSparePart {
		return SparePartSchema
	}
	return VehicleSchema
}

func (s Schema) sortable(field string) bool {
	return slices.Contains(s.SortFields, field)
}

func (s Schema) list(field string) bool {
	return slices.Contains(s.Lists, field)
}
