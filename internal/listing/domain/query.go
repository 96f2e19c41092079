package domain

import "math"

// Listing field names shared by the query builder and store translations.
const (
	FieldListingNumber    = "listingNumber"
	FieldTitle            = "title"
	FieldCategory         = "category"
	FieldBrand            = "brand"
	FieldSeries           = "series"
	FieldModel            = "model"
	FieldPrice            = "price"
	FieldYear             = "year"
	FieldMileage          = "mileage"
	FieldColor            = "color"
	FieldBodyType         = "bodyType"
	FieldFuelType         = "fuelType"
	FieldTransmissionType = "transmissionType"
	FieldEngineVolume     = "engineVolume"
	FieldEnginePower      = "enginePower"
	FieldUrgent           = "urgent"
	FieldClassic          = "classic"
	FieldModified         = "modified"
	FieldViewCount        = "viewCount"
	FieldListedAt         = "listedAt"
	FieldCreatedAt        = "createdAt"
)

// Clause is one resolved filter term. All clauses of a query are AND-ed.
type Clause interface {
	clause()
}

// Substring matches Field case-insensitively containing Value.
type Substring struct {
	Field string
	Value string
}

// Range bounds Field inclusively. A nil bound is open.
type Range struct {
	Field string
	Min   *float64
	Max   *float64
}

// Multiselect matches when Field contains any of Values.
type Multiselect struct {
	Field  string
	Values []string
}

// Boolean requires Field to be true.
type Boolean struct {
	Field string
}

// Keyword matches when any of Fields contains Value.
type Keyword struct {
	Fields []string
	Value  string
}

func (Substring) clause()   {}
func (Range) clause()       {}
func (Multiselect) clause() {}
func (Boolean) clause()     {}
func (Keyword) clause()     {}

type SortDirection int

const (
	SortAsc  SortDirection = 1
	SortDesc SortDirection = -1
)

func (d SortDirection) String() string {
	if d == SortAsc {
		return "asc"
	}
	return "desc"
}

type Sort struct {
	Field     string
	Direction SortDirection
}

var DefaultSort = Sort{Field: FieldListedAt, Direction: SortDesc}

const (
	DefaultPageLimit = 10
	MaxPageLimit     = 100
)

type ListingQuery struct {
	Clauses []Clause
	Sort    Sort
	Page    int
	Limit   int
}

func (q ListingQuery) Skip() int64 {
	if q.Page < 1 {
		return 0
	}
	return int64(q.Page-1) * int64(q.Limit)
}

// IgnoredParam reports a request parameter that did not become part of a query.
type IgnoredParam struct {
	Key    string `json:"key"`
	Value  string `json:"value"`
	Reason string `json:"reason"`
}

type ListingPage struct {
	Data       []*Listing     `json:"data"`
	Total      int64          `json:"total"`
	Page       int            `json:"page"`
	Limit      int            `json:"limit"`
	TotalPages int            `json:"totalPages"`
	Ignored    []IgnoredParam `json:"ignored"`
}

func TotalPages(total int64, limit int) int {
	if total <= 0 || limit <= 0 {
		return 0
	}
	return int(math.Ceil(float64(total) / float64(limit)))
}
