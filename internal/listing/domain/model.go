package domain

import "time"

type Kind string

const (
	KindVehicle   Kind = "vehicle"
	KindSparePart Kind = "sparepart"
)

// CounterName is the sequence category a kind allocates listing numbers from.
func (k Kind) CounterName() string {
	switch k {
	case KindVehicle:
		return "car"
	case KindSparePart:
		return "sparepart"
	default:
		return string(k)
	}
}

// Image is a stored asset. ImageID is the handle the image store deletes by.
type Image struct {
	URL     string `json:"url"`
	ImageID string `json:"imageId"`
}

type Listing struct {
	ID            string `json:"id"`
	Kind          Kind   `json:"kind"`
	ListingNumber string `json:"listingNumber"`

	Title       string `json:"title"`
	Description string `json:"description"`

	Category string `json:"category,omitempty"`
	Brand    string `json:"brand"`
	Series   string `json:"series,omitempty"`
	Model    string `json:"model,omitempty"`

	// Price is nil when the seller did not give one ("ask for price").
	Price   *float64 `json:"price"`
	Year    *int     `json:"year,omitempty"`
	Mileage *int     `json:"mileage,omitempty"`

	Color            string `json:"color,omitempty"`
	BodyType         string `json:"bodyType,omitempty"`
	FuelType         string `json:"fuelType,omitempty"`
	TransmissionType string `json:"transmissionType,omitempty"`
	EngineVolume     string `json:"engineVolume,omitempty"`
	EnginePower      string `json:"enginePower,omitempty"`

	Urgent   bool `json:"urgent"`
	Classic  bool `json:"classic"`
	Modified bool `json:"modified"`

	ViewCount int64   `json:"viewCount"`
	Images    []Image `json:"images"`

	ListedAt  time.Time `json:"listedAt"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// HasImage reports whether an image with the given store handle is attached.
func (l *Listing) HasImage(imageID string) bool {
	for _, img := range l.Images {
		if img.ImageID == imageID {
			return true
		}
	}
	return false
}

// ListingInput carries raw, partially present listing fields. A nil pointer means
// the field was not submitted. Numeric fields stay textual until validated.
type ListingInput struct {
	Title       *string
	Description *string

	Category *string
	Brand    *string
	Series   *string
	Model    *string

	Price   *string
	Year    *string
	Mileage *string

	Color            *string
	BodyType         *string
	FuelType         *string
	TransmissionType *string
	EngineVolume     *string
	EnginePower      *string

	Urgent   *bool
	Classic  *bool
	Modified *bool
}

// Upload is an image file received from a client, not yet in the image store.
type Upload struct {
	FileName string
	Data     []byte
}

// ValueCount is one raw group of a field's stored values.
type ValueCount struct {
	Value string
	Count int64
}

type HierarchyCount struct {
	Brand  string
	Series string
	Model  string
	Count  int64
}

// Event is published on listing lifecycle changes.
type Event struct {
	Type          string    `json:"type"`
	Kind          Kind      `json:"kind"`
	ID            string    `json:"id"`
	ListingNumber string    `json:"listingNumber"`
	OccurredAt    time.Time `json:"occurredAt"`
}

const (
	EventListingCreated = "listing.created"
	EventListingUpdated = "listing.updated"
	EventListingDeleted = "listing.deleted"
)
