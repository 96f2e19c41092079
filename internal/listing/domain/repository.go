package domain

import (
	"context"
	"time"
)

type ListingRepository interface {
	Create(ctx context.Context, listing *Listing) error
	Update(ctx context.Context, listing *Listing) error
	Delete(ctx context.Context, id string) error
	FindByID(ctx context.Context, id string) (*Listing, error)
	// IncrementViews atomically adds one view and returns the updated listing.
	IncrementViews(ctx context.Context, listingNumber string) (*Listing, error)
	Find(ctx context.Context, query ListingQuery) ([]*Listing, int64, error)
	// CountByField groups listings by the raw value of field.
	CountByField(ctx context.Context, field, category string) ([]ValueCount, error)
	CountHierarchy(ctx context.Context, category string) ([]HierarchyCount, error)
}

type CounterRepository interface {
	// Increment atomically advances the named counter and returns the new value.
	// A counter that does not exist yet starts from baseline.
	Increment(ctx context.Context, name string, baseline int64) (int64, error)
}

type ImageStore interface {
	Upload(ctx context.Context, data []byte, fileName, folder string) (Image, error)
	Delete(ctx context.Context, imageID string) error
}

type Sanitizer interface {
	Sanitize(html string) string
}

type FacetCache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Invalidate(ctx context.Context) error
}

type EventPublisher interface {
	Publish(ctx context.Context, subject string, event Event) error
}

type Notifier interface {
	NotifyListingCreated(listing *Listing) error
}
