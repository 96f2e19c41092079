package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Ismail-Mert-Eksi/GuvenOto/internal/listing/domain"
	"github.com/Ismail-Mert-Eksi/GuvenOto/internal/listing/textnorm"
	"github.com/Ismail-Mert-Eksi/GuvenOto/internal/platform/logger"
)

func TestCanonicalize(t *testing.T) {
	t.Run("most frequent spelling wins", func(t *testing.T) {
		got := canonicalize([]domain.ValueCount{
			{Value: "Bmw", Count: 3},
			{Value: "BMW", Count: 1},
			{Value: "Audi", Count: 2},
		}, true)
		assert.Equal(t, []NameCount{{Name: "Audi", Count: 2}, {Name: "Bmw", Count: 4}}, got)
	})

	t.Run("ties go to the smallest spelling", func(t *testing.T) {
		input := []domain.ValueCount{
			{Value: "bmw", Count: 1},
			{Value: "Bmw", Count: 2},
			{Value: "BMW", Count: 2},
		}
		for i := 0; i < 25; i++ {
			got := canonicalize(input, true)
			require.Len(t, got, 1)
			assert.Equal(t, NameCount{Name: "BMW", Count: 5}, got[0])
		}
	})

	t.Run("padded spellings count as one", func(t *testing.T) {
		got := canonicalize([]domain.ValueCount{
			{Value: " BMW", Count: 1},
			{Value: "BMW ", Count: 1},
			{Value: "Bmw", Count: 2},
		}, true)
		assert.Equal(t, []NameCount{{Name: "BMW", Count: 4}}, got)
	})

	t.Run("turkish variants merge", func(t *testing.T) {
		got := canonicalize([]domain.ValueCount{
			{Value: "Kırmızı", Count: 4},
			{Value: "KIRMIZI", Count: 1},
			{Value: "kirmizi", Count: 1},
		}, false)
		assert.Equal(t, []NameCount{{Name: "Kırmızı", Count: 6}}, got)
	})

	t.Run("blank values", func(t *testing.T) {
		input := []domain.ValueCount{
			{Value: "", Count: 2},
			{Value: "  ", Count: 1},
			{Value: "Fiat", Count: 1},
		}
		assert.Equal(t, []NameCount{{Name: "Fiat", Count: 1}}, canonicalize(input, false))

		kept := canonicalize(input, true)
		require.Len(t, kept, 2)
		assert.Equal(t, NameCount{Name: "", Count: 3}, kept[0])
	})
}

func TestCanonicalize_CountConservation(t *testing.T) {
	input := []domain.ValueCount{
		{Value: "Renault", Count: 7},
		{Value: "RENAULT", Count: 2},
		{Value: "Şahin", Count: 1},
		{Value: "SAHIN", Count: 3},
		{Value: "", Count: 4},
		{Value: "Toyota", Count: 5},
	}
	var want int64
	for _, vc := range input {
		want += vc.Count
	}

	var got int64
	for _, nc := range canonicalize(input, true) {
		got += nc.Count
	}
	assert.Equal(t, want, got)
}

func TestFacetUsecase_BrandCounts(t *testing.T) {
	ctx := context.Background()
	repo := new(MockListingRepository)
	uc := NewFacetUsecase(repo, nil, 0, logger.NewNop())

	repo.On("CountByField", ctx, domain.FieldBrand, "Otomobil").Return([]domain.ValueCount{
		{Value: "Volkswagen", Count: 2},
		{Value: "Bmw", Count: 1},
		{Value: "BMW", Count: 1},
	}, nil).Once()

	got, err := uc.BrandCounts(ctx, " Otomobil ")
	require.NoError(t, err)
	assert.Equal(t, []NameCount{{Name: "BMW", Count: 2}, {Name: "Volkswagen", Count: 2}}, got)
	repo.AssertExpectations(t)
}

func TestFacetUsecase_BrandCounts_StoreFailure(t *testing.T) {
	ctx := context.Background()
	repo := new(MockListingRepository)
	uc := NewFacetUsecase(repo, nil, 0, logger.NewNop())

	repo.On("CountByField", ctx, domain.FieldBrand, "").Return(nil, errors.New("connection reset")).Once()

	_, err := uc.BrandCounts(ctx, "")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrUpstreamFailure)
}

func TestFacetUsecase_SeriesAndModels(t *testing.T) {
	ctx := context.Background()
	rows := []domain.HierarchyCount{
		{Brand: "BMW", Series: "3 Serisi", Model: "320i", Count: 2},
		{Brand: "bmw", Series: "3 serisi", Model: "318d", Count: 1},
		{Brand: "Bmw", Series: "5 Serisi", Model: "520d", Count: 1},
		{Brand: "Bmw", Series: "", Model: "", Count: 3},
		{Brand: "Audi", Series: "A4", Model: "2.0 TDI", Count: 1},
	}

	t.Run("series narrowed by brand", func(t *testing.T) {
		repo := new(MockListingRepository)
		uc := NewFacetUsecase(repo, nil, 0, logger.NewNop())
		repo.On("CountHierarchy", ctx, "").Return(rows, nil).Once()

		got, err := uc.SeriesFor(ctx, "BMW", "")
		require.NoError(t, err)
		assert.Equal(t, []string{"3 Serisi", "5 Serisi"}, got)
		repo.AssertExpectations(t)
	})

	t.Run("models narrowed by brand and series", func(t *testing.T) {
		repo := new(MockListingRepository)
		uc := NewFacetUsecase(repo, nil, 0, logger.NewNop())
		repo.On("CountHierarchy", ctx, "Otomobil").Return(rows, nil).Once()

		got, err := uc.ModelsFor(ctx, "bmw", "3 SERİSİ", "Otomobil")
		require.NoError(t, err)
		assert.Equal(t, []string{"318d", "320i"}, got)
	})

	t.Run("missing arguments", func(t *testing.T) {
		repo := new(MockListingRepository)
		uc := NewFacetUsecase(repo, nil, 0, logger.NewNop())

		_, err := uc.SeriesFor(ctx, "  ", "")
		assert.ErrorIs(t, err, domain.ErrInvalidArgument)

		_, err = uc.ModelsFor(ctx, "BMW", "", "")
		assert.ErrorIs(t, err, domain.ErrInvalidArgument)

		_, err = uc.ModelsFor(ctx, "", "3 Serisi", "")
		assert.ErrorIs(t, err, domain.ErrInvalidArgument)

		repo.AssertNotCalled(t, "CountHierarchy", mock.Anything, mock.Anything)
	})
}

func TestFacetUsecase_Distinct(t *testing.T) {
	ctx := context.Background()
	repo := new(MockListingRepository)
	uc := NewFacetUsecase(repo, nil, 0, logger.NewNop())

	repo.On("CountByField", ctx, domain.FieldFuelType, "").Return([]domain.ValueCount{
		{Value: "Dizel", Count: 4},
		{Value: "DİZEL", Count: 1},
		{Value: "Benzin", Count: 2},
		{Value: "", Count: 5},
	}, nil).Once()

	got, err := uc.Distinct(ctx, domain.FieldFuelType, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"Benzin", "Dizel"}, got)

	_, err = uc.Distinct(ctx, "price", "")
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
	repo.AssertExpectations(t)
}

func TestFacetUsecase_Hierarchy(t *testing.T) {
	ctx := context.Background()
	repo := new(MockListingRepository)
	uc := NewFacetUsecase(repo, nil, 0, logger.NewNop())

	repo.On("CountHierarchy", ctx, "").Return([]domain.HierarchyCount{
		{Brand: "Fiat", Series: "Egea", Model: "1.3 Multijet", Count: 2},
		{Brand: "FIAT", Series: "", Model: "", Count: 1},
		{Brand: "Fiat", Series: "Egea", Model: "", Count: 1},
	}, nil).Once()

	got, err := uc.Hierarchy(ctx, "")
	require.NoError(t, err)
	require.Len(t, got, 1)

	fiat := got[0]
	assert.Equal(t, "Fiat", fiat.Name)
	assert.Equal(t, int64(4), fiat.Count)
	require.Len(t, fiat.Series, 2)
	assert.Equal(t, SeriesNode{
		Name:  "Egea",
		Count: 3,
		Models: []NameCount{
			{Name: "1.3 Multijet", Count: 2},
			{Name: unnamedModel, Count: 1},
		},
	}, fiat.Series[0])
	assert.Equal(t, unnamedSeries, fiat.Series[1].Name)
}

func TestFacetUsecase_Cache(t *testing.T) {
	ctx := context.Background()
	ttl := 5 * time.Minute

	t.Run("hit skips the store", func(t *testing.T) {
		repo := new(MockListingRepository)
		cache := new(MockFacetCache)
		uc := NewFacetUsecase(repo, cache, ttl, logger.NewNop())

		raw, _ := json.Marshal([]NameCount{{Name: "Opel", Count: 9}})
		cache.On("Get", ctx, "brand-counts:").Return(raw, nil).Once()

		got, err := uc.BrandCounts(ctx, "")
		require.NoError(t, err)
		assert.Equal(t, []NameCount{{Name: "Opel", Count: 9}}, got)
		repo.AssertNotCalled(t, "CountByField", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("miss loads and stores", func(t *testing.T) {
		repo := new(MockListingRepository)
		cache := new(MockFacetCache)
		uc := NewFacetUsecase(repo, cache, ttl, logger.NewNop())

		cache.On("Get", ctx, "distinct:color:").Return(nil, domain.ErrCacheMiss).Once()
		repo.On("CountByField", ctx, domain.FieldColor, "").Return([]domain.ValueCount{{Value: "Beyaz", Count: 1}}, nil).Once()
		cache.On("Set", ctx, "distinct:color:", []byte(`["Beyaz"]`), ttl).Return(nil).Once()

		got, err := uc.Distinct(ctx, domain.FieldColor, "")
		require.NoError(t, err)
		assert.Equal(t, []string{"Beyaz"}, got)
		cache.AssertExpectations(t)
		repo.AssertExpectations(t)
	})

	t.Run("broken cache falls through", func(t *testing.T) {
		repo := new(MockListingRepository)
		cache := new(MockFacetCache)
		uc := NewFacetUsecase(repo, cache, ttl, logger.NewNop())

		cache.On("Get", ctx, "brand-counts:").Return(nil, errors.New("redis down")).Once()
		repo.On("CountByField", ctx, domain.FieldBrand, "").Return([]domain.ValueCount{{Value: "Opel", Count: 1}}, nil).Once()
		cache.On("Set", ctx, "brand-counts:", mock.Anything, ttl).Return(errors.New("redis down")).Once()

		got, err := uc.BrandCounts(ctx, "")
		require.NoError(t, err)
		assert.Len(t, got, 1)
	})

	t.Run("invalidate", func(t *testing.T) {
		cache := new(MockFacetCache)
		uc := NewFacetUsecase(new(MockListingRepository), cache, ttl, logger.NewNop())
		cache.On("Invalidate", ctx).Return(nil).Once()

		uc.Invalidate(ctx)
		cache.AssertExpectations(t)
	})
}

func TestFacetNarrowingConsistency(t *testing.T) {
	ctx := context.Background()
	listings := []*domain.Listing{
		{ID: "1", Brand: "Renault", Series: "Clio", Model: "1.5 dCi"},
		{ID: "2", Brand: "RENAULT", Series: "CLIO", Model: "1.0 TCe"},
		{ID: "3", Brand: "renault", Series: "Megane", Model: "1.3 TCe"},
		{ID: "4", Brand: "Hyundai", Series: "i20", Model: "1.4 MPI"},
		{ID: "5", Brand: "Hyundai", Series: "İ20", Model: "1.4 mpi"},
	}
	uc := NewFacetUsecase(newMemoryListings(listings...), nil, 0, logger.NewNop())

	for _, l := range listings {
		series, err := uc.SeriesFor(ctx, l.Brand, "")
		require.NoError(t, err)
		assert.True(t, containsNormalized(series, l.Series), "series %q missing for brand %q: %v", l.Series, l.Brand, series)

		models, err := uc.ModelsFor(ctx, l.Brand, l.Series, "")
		require.NoError(t, err)
		assert.True(t, containsNormalized(models, l.Model), "model %q missing: %v", l.Model, models)
	}
}

func containsNormalized(values []string, want string) bool {
	for _, v := range values {
		if textnorm.Equal(v, want) {
			return true
		}
	}
	return false
}
