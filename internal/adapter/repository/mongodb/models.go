package mongodb

import (
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/Ismail-Mert-Eksi/GuvenOto/internal/listing/domain"
)

type imageDocument struct {
	URL     string `bson:"url"`
	ImageID string `bson:"image_id"`
}

// listingDocument stores both listing kinds. Vehicle-only fields stay empty for
// spare parts.
type listingDocument struct {
	ID            primitive.ObjectID `bson:"_id,omitempty"`
	Kind          string             `bson:"kind"`
	ListingNumber string             `bson:"listing_number"`

	Title       string `bson:"title"`
	Description string `bson:"description"`

	Category string `bson:"category"`
	Brand    string `bson:"brand"`
	Series   string `bson:"series"`
	Model    string `bson:"model"`

	Price   *float64 `bson:"price"`
	Year    *int     `bson:"year"`
	Mileage *int     `bson:"mileage"`

	Color            string `bson:"color"`
	BodyType         string `bson:"body_type"`
	FuelType         string `bson:"fuel_type"`
	TransmissionType string `bson:"transmission_type"`
	EngineVolume     string `bson:"engine_volume"`
	EnginePower      string `bson:"engine_power"`

	Urgent   bool `bson:"urgent"`
	Classic  bool `bson:"classic"`
	Modified bool `bson:"modified"`

	ViewCount int64           `bson:"view_count"`
	Images    []imageDocument `bson:"images"`

	ListedAt  time.Time `bson:"listed_at"`
	CreatedAt time.Time `bson:"created_at"`
	UpdatedAt time.Time `bson:"updated_at"`
}

type counterDocument struct {
	Name string `bson:"_id"`
	Seq  int64  `bson:"seq"`
}

func toListingDocument(l *domain.Listing) (*listingDocument, error) {
	var id primitive.ObjectID
	if l.ID != "" {
		oid, err := primitive.ObjectIDFromHex(l.ID)
		if err != nil {
			return nil, fmt.Errorf("toListingDocument: invalid id %q: %w", l.ID, err)
		}
		id = oid
	}

	images := make([]imageDocument, 0, len(l.Images))
	for _, img := range l.Images {
		images = append(images, imageDocument{URL: img.URL, ImageID: img.ImageID})
	}

	return &listingDocument{
		ID:               id,
		Kind:             string(l.Kind),
		ListingNumber:    l.ListingNumber,
		Title:            l.Title,
		Description:      l.Description,
		Category:         l.Category,
		Brand:            l.Brand,
		Series:           l.Series,
		Model:            l.Model,
		Price:            l.Price,
		Year:             l.Year,
		Mileage:          l.Mileage,
		Color:            l.Color,
		BodyType:         l.BodyType,
		FuelType:         l.FuelType,
		TransmissionType: l.TransmissionType,
		EngineVolume:     l.EngineVolume,
		EnginePower:      l.EnginePower,
		Urgent:           l.Urgent,
		Classic:          l.Classic,
		Modified:         l.Modified,
		ViewCount:        l.ViewCount,
		Images:           images,
		ListedAt:         l.ListedAt,
		CreatedAt:        l.CreatedAt,
		UpdatedAt:        l.UpdatedAt,
	}, nil
}

func (d *listingDocument) toDomain() *domain.Listing {
	images := make([]domain.Image, 0, len(d.Images))
	for _, img := range d.Images {
		images = append(images, domain.Image{URL: img.URL, ImageID: img.ImageID})
	}

	return &domain.Listing{
		ID:               d.ID.Hex(),
		Kind:             domain.Kind(d.Kind),
		ListingNumber:    d.ListingNumber,
		Title:            d.Title,
		Description:      d.Description,
		Category:         d.Category,
		Brand:            d.Brand,
		Series:           d.Series,
		Model:            d.Model,
		Price:            d.Price,
		Year:             d.Year,
		Mileage:          d.Mileage,
		Color:            d.Color,
		BodyType:         d.BodyType,
		FuelType:         d.FuelType,
		TransmissionType: d.TransmissionType,
		EngineVolume:     d.EngineVolume,
		EnginePower:      d.EnginePower,
		Urgent:           d.Urgent,
		Classic:          d.Classic,
		Modified:         d.Modified,
		ViewCount:        d.ViewCount,
		Images:           images,
		ListedAt:         d.ListedAt,
		CreatedAt:        d.CreatedAt,
		UpdatedAt:        d.UpdatedAt,
	}
}
