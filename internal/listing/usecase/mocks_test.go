package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/Ismail-Mert-Eksi/GuvenOto/internal/listing/domain"
)

type MockListingRepository struct{ mock.Mock }

func (m *MockListingRepository) Create(ctx context.Context, l *domain.Listing) error {
	args := m.Called(ctx, l)
	return args.Error(0)
}
func (m *MockListingRepository) Update(ctx context.Context, l *domain.Listing) error {
	args := m.Called(ctx, l)
	return args.Error(0)
}
func (m *MockListingRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
func (m *MockListingRepository) FindByID(ctx context.Context, id string) (*domain.Listing, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Listing), args.Error(1)
}
func (m *MockListingRepository) IncrementViews(ctx context.Context, listingNumber string) (*domain.Listing, error) {
	args := m.Called(ctx, listingNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Listing), args.Error(1)
}
func (m *MockListingRepository) Find(ctx context.Context, q domain.ListingQuery) ([]*domain.Listing, int64, error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]*domain.Listing), args.Get(1).(int64), args.Error(2)
}
func (m *MockListingRepository) CountByField(ctx context.Context, field, category string) ([]domain.ValueCount, error) {
	args := m.Called(ctx, field, category)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ValueCount), args.Error(1)
}
func (m *MockListingRepository) CountHierarchy(ctx context.Context, category string) ([]domain.HierarchyCount, error) {
	args := m.Called(ctx, category)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.HierarchyCount), args.Error(1)
}

type MockCounterRepository struct{ mock.Mock }

func (m *MockCounterRepository) Increment(ctx context.Context, name string, baseline int64) (int64, error) {
	args := m.Called(ctx, name, baseline)
	return args.Get(0).(int64), args.Error(1)
}

type MockImageStore struct{ mock.Mock }

func (m *MockImageStore) Upload(ctx context.Context, data []byte, fileName, folder string) (domain.Image, error) {
	args := m.Called(ctx, data, fileName, folder)
	return args.Get(0).(domain.Image), args.Error(1)
}
func (m *MockImageStore) Delete(ctx context.Context, imageID string) error {
	args := m.Called(ctx, imageID)
	return args.Error(0)
}

type MockPublisher struct{ mock.Mock }

func (m *MockPublisher) Publish(ctx context.Context, subject string, event domain.Event) error {
	args := m.Called(ctx, subject, event)
	return args.Error(0)
}

type MockNotifier struct{ mock.Mock }

func (m *MockNotifier) NotifyListingCreated(l *domain.Listing) error {
	args := m.Called(l)
	return args.Error(0)
}

type MockFacetCache struct{ mock.Mock }

func (m *MockFacetCache) Get(ctx context.Context, key string) ([]byte, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}
func (m *MockFacetCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	args := m.Called(ctx, key, value, ttl)
	return args.Error(0)
}
func (m *MockFacetCache) Invalidate(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// passthroughSanitizer leaves HTML untouched.
type passthroughSanitizer struct{}

func (passthroughSanitizer) Sanitize(html string) string { return html }

// memoryCounters is a concurrency-safe counter store.
type memoryCounters struct {
	mu   sync.Mutex
	seqs map[string]int64
}

func (c *memoryCounters) Increment(_ context.Context, name string, baseline int64) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.seqs == nil {
		c.seqs = make(map[string]int64)
	}
	if _, ok := c.seqs[name]; !ok {
		c.seqs[name] = baseline
	}
	c.seqs[name]++
	return c.seqs[name], nil
}

// memoryListings stores listings in a map keyed by id.
type memoryListings struct {
	mu       sync.Mutex
	listings map[string]*domain.Listing
}

func newMemoryListings(ls ...*domain.Listing) *memoryListings {
	m := &memoryListings{listings: make(map[string]*domain.Listing)}
	for _, l := range ls {
		m.listings[l.ID] = l
	}
	return m
}

func (m *memoryListings) Create(_ context.Context, l *domain.Listing) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	l.ID = fmt.Sprintf("id-%d", len(m.listings)+1)
	cp := *l
	m.listings[l.ID] = &cp
	return nil
}

func (m *memoryListings) Update(_ context.Context, l *domain.Listing) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.listings[l.ID]; !ok {
		return domain.ErrNotFound
	}
	cp := *l
	m.listings[l.ID] = &cp
	return nil
}

func (m *memoryListings) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.listings, id)
	return nil
}

func (m *memoryListings) FindByID(_ context.Context, id string) (*domain.Listing, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.listings[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *l
	return &cp, nil
}

func (m *memoryListings) IncrementViews(_ context.Context, listingNumber string) (*domain.Listing, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, l := range m.listings {
		if l.ListingNumber == listingNumber {
			l.ViewCount++
			cp := *l
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *memoryListings) Find(context.Context, domain.ListingQuery) ([]*domain.Listing, int64, error) {
	return nil, 0, nil
}

func (m *memoryListings) CountByField(_ context.Context, field, _ string) ([]domain.ValueCount, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	counts := make(map[string]int64)
	for _, l := range m.listings {
		switch field {
		case domain.FieldBrand:
			counts[l.Brand]++
		case domain.FieldColor:
			counts[l.Color]++
		default:
			return nil, fmt.Errorf("memoryListings: field %q not supported", field)
		}
	}
	out := make([]domain.ValueCount, 0, len(counts))
	for v, n := range counts {
		out = append(out, domain.ValueCount{Value: v, Count: n})
	}
	return out, nil
}

// CountHierarchy groups by exact brand, series and model like the store does.
func (m *memoryListings) CountHierarchy(context.Context, string) ([]domain.HierarchyCount, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	type key struct{ brand, series, model string }
	counts := make(map[key]int64)
	for _, l := range m.listings {
		counts[key{l.Brand, l.Series, l.Model}]++
	}
	out := make([]domain.HierarchyCount, 0, len(counts))
	for k, n := range counts {
		out = append(out, domain.HierarchyCount{Brand: k.brand, Series: k.series, Model: k.model, Count: n})
	}
	return out, nil
}
