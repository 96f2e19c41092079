package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Ismail-Mert-Eksi/GuvenOto/internal/listing/domain"
	"github.com/Ismail-Mert-Eksi/GuvenOto/internal/listing/textnorm"
	"github.com/Ismail-Mert-Eksi/GuvenOto/internal/platform/logger"
)

const (
	unnamedSeries = "Genel"
	unnamedModel  = "Bilinmeyen"
)

// Fields with a distinct-values lookup.
var distinctFields = map[string]bool{
	domain.FieldBrand:            true,
	domain.FieldColor:            true,
	domain.FieldBodyType:         true,
	domain.FieldFuelType:         true,
	domain.FieldTransmissionType: true,
}

type NameCount struct {
	Name  string `json:"name"`
	Count int64  `json:"count"`
}

type SeriesNode struct {
	Name   string      `json:"name"`
	Count  int64       `json:"count"`
	Models []NameCount `json:"models"`
}

type BrandNode struct {
	Name   string       `json:"name"`
	Count  int64        `json:"count"`
	Series []SeriesNode `json:"series"`
}

// FacetUsecase computes facet values over vehicle listings. Results are cached
// when a cache is configured and dropped on every vehicle write.
type FacetUsecase struct {
	repo   domain.ListingRepository
	cache  domain.FacetCache
	ttl    time.Duration
	logger *logger.Logger
}

// NewFacetUsecase builds the resolver. cache may be nil.
func NewFacetUsecase(repo domain.ListingRepository, cache domain.FacetCache, ttl time.Duration, log *logger.Logger) *FacetUsecase {
	return &FacetUsecase{
		repo:   repo,
		cache:  cache,
		ttl:    ttl,
		logger: log.Named("FacetUsecase"),
	}
}

func (uc *FacetUsecase) BrandCounts(ctx context.Context, category string) ([]NameCount, error) {
	category = strings.TrimSpace(category)
	return cached(ctx, uc, "brand-counts:"+category, func() ([]NameCount, error) {
		values, err := uc.repo.CountByField(ctx, domain.FieldBrand, category)
		if err != nil {
			return nil, uc.storeErr("BrandCounts", err)
		}
		return canonicalize(values, true), nil
	})
}

func (uc *FacetUsecase) SeriesFor(ctx context.Context, brand, category string) ([]string, error) {
	brand = strings.TrimSpace(brand)
	if brand == "" {
		return nil, fmt.Errorf("%w: brand is required", domain.ErrInvalidArgument)
	}
	category = strings.TrimSpace(category)
	normBrand := textnorm.Normalize(brand)

	return cached(ctx, uc, "series:"+category+":"+normBrand, func() ([]string, error) {
		rows, err := uc.repo.CountHierarchy(ctx, category)
		if err != nil {
			return nil, uc.storeErr("SeriesFor", err)
		}
		var values []domain.ValueCount
		for _, r := range rows {
			if textnorm.Normalize(r.Brand) == normBrand {
				values = append(values, domain.ValueCount{Value: r.Series, Count: r.Count})
			}
		}
		return names(canonicalize(values, false)), nil
	})
}

func (uc *FacetUsecase) ModelsFor(ctx context.Context, brand, series, category string) ([]string, error) {
	brand, series = strings.TrimSpace(brand), strings.TrimSpace(series)
	if brand == "" || series == "" {
		return nil, fmt.Errorf("%w: brand and series are required", domain.ErrInvalidArgument)
	}
	category = strings.TrimSpace(category)
	normBrand, normSeries := textnorm.Normalize(brand), textnorm.Normalize(series)

	return cached(ctx, uc, "models:"+category+":"+normBrand+":"+normSeries, func() ([]string, error) {
		rows, err := uc.repo.CountHierarchy(ctx, category)
		if err != nil {
			return nil, uc.storeErr("ModelsFor", err)
		}
		var values []domain.ValueCount
		for _, r := range rows {
			if textnorm.Normalize(r.Brand) == normBrand && textnorm.Normalize(r.Series) == normSeries {
				values = append(values, domain.ValueCount{Value: r.Model, Count: r.Count})
			}
		}
		return names(canonicalize(values, false)), nil
	})
}

// Distinct lists the canonical values of a single facet field.
func (uc *FacetUsecase) Distinct(ctx context.Context, field, category string) ([]string, error) {
	if !distinctFields[field] {
		return nil, fmt.Errorf("%w: unsupported facet %q", domain.ErrInvalidArgument, field)
	}
	category = strings.TrimSpace(category)

	return cached(ctx, uc, "distinct:"+field+":"+category, func() ([]string, error) {
		values, err := uc.repo.CountByField(ctx, field, category)
		if err != nil {
			return nil, uc.storeErr("Distinct", err)
		}
		return names(canonicalize(values, false)), nil
	})
}

// Hierarchy returns the brand, series and model tree with counts.
func (uc *FacetUsecase) Hierarchy(ctx context.Context, category string) ([]BrandNode, error) {
	category = strings.TrimSpace(category)

	return cached(ctx, uc, "hierarchy:"+category, func() ([]BrandNode, error) {
		rows, err := uc.repo.CountHierarchy(ctx, category)
		if err != nil {
			return nil, uc.storeErr("Hierarchy", err)
		}
		return buildHierarchy(rows), nil
	})
}

func buildHierarchy(rows []domain.HierarchyCount) []BrandNode {
	root := newFacetGroup("")
	for _, r := range rows {
		b := root.child(r.Brand)
		b.add(r.Brand, r.Count)
		s := b.child(r.Series)
		s.add(r.Series, r.Count)
		m := s.child(r.Model)
		m.add(r.Model, r.Count)
	}

	brands := make([]BrandNode, 0, len(root.children))
	for _, b := range root.sortedChildren(true, "") {
		node := BrandNode{Name: b.canonical(), Count: b.total, Series: []SeriesNode{}}
		for _, s := range b.sortedChildren(false, unnamedSeries) {
			sn := SeriesNode{Name: s.display(unnamedSeries), Count: s.total, Models: []NameCount{}}
			for _, m := range s.sortedChildren(false, unnamedModel) {
				sn.Models = append(sn.Models, NameCount{Name: m.display(unnamedModel), Count: m.total})
			}
			node.Series = append(node.Series, sn)
		}
		brands = append(brands, node)
	}
	return brands
}

// Invalidate drops every cached facet result.
func (uc *FacetUsecase) Invalidate(ctx context.Context) {
	if uc.cache == nil {
		return
	}
	if err := uc.cache.Invalidate(ctx); err != nil {
		uc.logger.Warn("FacetUsecase.Invalidate: failed to clear facet cache", zap.Error(err))
	}
}

func (uc *FacetUsecase) storeErr(op string, err error) error {
	uc.logger.Error("FacetUsecase."+op+": store query failed", zap.Error(err))
	return fmt.Errorf("%w: %s: %w", domain.ErrUpstreamFailure, op, err)
}

// cached serves key from the facet cache or computes and stores it. Cache
// failures fall through to load.
func cached[T any](ctx context.Context, uc *FacetUsecase, key string, load func() (T, error)) (T, error) {
	if uc.cache != nil {
		raw, err := uc.cache.Get(ctx, key)
		switch {
		case err == nil:
			var v T
			if jsonErr := json.Unmarshal(raw, &v); jsonErr == nil {
				return v, nil
			}
			uc.logger.Warn("FacetUsecase: corrupt cache entry", zap.String("key", key))
		case !errors.Is(err, domain.ErrCacheMiss):
			uc.logger.Warn("FacetUsecase: cache read failed", zap.String("key", key), zap.Error(err))
		}
	}

	v, err := load()
	if err != nil {
		return v, err
	}

	if uc.cache != nil {
		if raw, jsonErr := json.Marshal(v); jsonErr == nil {
			if setErr := uc.cache.Set(ctx, key, raw, uc.ttl); setErr != nil {
				uc.logger.Warn("FacetUsecase: cache write failed", zap.String("key", key), zap.Error(setErr))
			}
		}
	}
	return v, nil
}
