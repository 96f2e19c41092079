package usecase

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Ismail-Mert-Eksi/GuvenOto/internal/listing/domain"
	"github.com/Ismail-Mert-Eksi/GuvenOto/internal/listing/query"
	"github.com/Ismail-Mert-Eksi/GuvenOto/internal/platform/logger"
)

const (
	MaxDescriptionLength = 100000
	minVehicleYear       = 1900
)

// FacetInvalidator is notified after writes that change facet values.
type FacetInvalidator interface {
	Invalidate(ctx context.Context)
}

// ListingUsecase manages the lifecycle of one listing kind.
type ListingUsecase struct {
	kind        domain.Kind
	repo        domain.ListingRepository
	sequence    *SequenceAllocator
	images      domain.ImageStore
	sanitizer   domain.Sanitizer
	publisher   domain.EventPublisher
	notifier    domain.Notifier
	facets      FacetInvalidator
	imageFolder string
	maxImages   int
	now         func() time.Time
	logger      *logger.Logger
}

type Option func(*ListingUsecase)

func WithImageFolder(folder string) Option {
	return func(uc *ListingUsecase) { uc.imageFolder = folder }
}

func WithMaxImages(n int) Option {
	return func(uc *ListingUsecase) { uc.maxImages = n }
}

func WithPublisher(p domain.EventPublisher) Option {
	return func(uc *ListingUsecase) { uc.publisher = p }
}

func WithNotifier(n domain.Notifier) Option {
	return func(uc *ListingUsecase) { uc.notifier = n }
}

func WithFacetInvalidator(f FacetInvalidator) Option {
	return func(uc *ListingUsecase) { uc.facets = f }
}

func WithClock(now func() time.Time) Option {
	return func(uc *ListingUsecase) { uc.now = now }
}

func NewListingUsecase(
	kind domain.Kind,
	repo domain.ListingRepository,
	sequence *SequenceAllocator,
	images domain.ImageStore,
	sanitizer domain.Sanitizer,
	log *logger.Logger,
	opts ...Option,
) *ListingUsecase {
	uc := &ListingUsecase{
		kind:        kind,
		repo:        repo,
		sequence:    sequence,
		images:      images,
		sanitizer:   sanitizer,
		imageFolder: string(kind),
		maxImages:   10,
		now:         time.Now,
		logger:      log.Named("ListingUsecase").With(zap.String("kind", string(kind))),
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

func (uc *ListingUsecase) Kind() domain.Kind { return uc.kind }

// Create validates the input, stores the uploaded images, assigns a listing
// number and persists the listing.
func (uc *ListingUsecase) Create(ctx context.Context, in domain.ListingInput, uploads []domain.Upload) (*domain.Listing, error) {
	if len(uploads) == 0 {
		return nil, fmt.Errorf("%w: at least one image is required", domain.ErrValidationFailed)
	}
	if err := uc.checkUploadCount(len(uploads)); err != nil {
		return nil, err
	}

	l := &domain.Listing{Kind: uc.kind}
	if err := uc.apply(l, in); err != nil {
		return nil, err
	}
	if err := uc.validateRequired(l); err != nil {
		return nil, err
	}

	images, err := uc.uploadImages(ctx, uploads)
	if err != nil {
		return nil, err
	}
	l.Images = images

	number, err := uc.sequence.NextID(ctx, uc.kind.CounterName())
	if err != nil {
		uc.discardImages(ctx, images)
		return nil, err
	}
	l.ListingNumber = number

	now := uc.now().UTC()
	l.ListedAt, l.CreatedAt, l.UpdatedAt = now, now, now

	if err := uc.repo.Create(ctx, l); err != nil {
		uc.discardImages(ctx, images)
		return nil, uc.storeErr("Create", err)
	}

	uc.logger.Info("ListingUsecase.Create: listing created",
		zap.String("id", l.ID),
		zap.String("listing_number", l.ListingNumber),
		zap.Int("images", len(l.Images)),
	)
	uc.afterWrite(ctx, domain.EventListingCreated, l)
	if uc.notifier != nil {
		if err := uc.notifier.NotifyListingCreated(l); err != nil {
			uc.logger.Warn("ListingUsecase.Create: notification failed", zap.String("listing_number", l.ListingNumber), zap.Error(err))
		}
	}
	return l, nil
}

// Update merges in, drops the listed images and appends the new uploads. The
// listing number never changes. Dropped assets are deleted only once the record
// no longer references them.
func (uc *ListingUsecase) Update(ctx context.Context, id string, in domain.ListingInput, imagesToRemove []string, uploads []domain.Upload) (*domain.Listing, error) {
	if err := uc.checkUploadCount(len(uploads)); err != nil {
		return nil, err
	}

	l, err := uc.repo.FindByID(ctx, id)
	if err != nil {
		return nil, uc.storeErr("Update", err)
	}

	if err := uc.apply(l, in); err != nil {
		return nil, err
	}
	if err := uc.validateRequired(l); err != nil {
		return nil, err
	}

	var removed []string
	if len(imagesToRemove) > 0 {
		remove := make(map[string]bool, len(imagesToRemove))
		for _, imageID := range imagesToRemove {
			if l.HasImage(imageID) {
				remove[imageID] = true
			} else {
				uc.logger.Debug("ListingUsecase.Update: ignoring image not attached to listing",
					zap.String("id", id), zap.String("image_id", imageID))
			}
		}
		kept := make([]domain.Image, 0, len(l.Images))
		for _, img := range l.Images {
			if remove[img.ImageID] {
				removed = append(removed, img.ImageID)
				continue
			}
			kept = append(kept, img)
		}
		l.Images = kept
	}

	uploaded, err := uc.uploadImages(ctx, uploads)
	if err != nil {
		return nil, err
	}
	for _, img := range uploaded {
		if l.HasImage(img.ImageID) {
			continue
		}
		l.Images = append(l.Images, img)
	}

	l.UpdatedAt = uc.now().UTC()
	if err := uc.repo.Update(ctx, l); err != nil {
		uc.discardImages(ctx, uploaded)
		return nil, uc.storeErr("Update", err)
	}
	uc.removeImages(ctx, removed)

	uc.logger.Info("ListingUsecase.Update: listing updated",
		zap.String("id", l.ID),
		zap.String("listing_number", l.ListingNumber),
	)
	uc.afterWrite(ctx, domain.EventListingUpdated, l)
	return l, nil
}

// Delete removes the listing's images, best effort, and then the listing.
func (uc *ListingUsecase) Delete(ctx context.Context, id string) error {
	l, err := uc.repo.FindByID(ctx, id)
	if err != nil {
		return uc.storeErr("Delete", err)
	}

	uc.discardImages(ctx, l.Images)

	if err := uc.repo.Delete(ctx, id); err != nil {
		return uc.storeErr("Delete", err)
	}

	uc.logger.Info("ListingUsecase.Delete: listing deleted",
		zap.String("id", id),
		zap.String("listing_number", l.ListingNumber),
	)
	uc.afterWrite(ctx, domain.EventListingDeleted, l)
	return nil
}

// GetByID is the administrative read and leaves the view count alone.
func (uc *ListingUsecase) GetByID(ctx context.Context, id string) (*domain.Listing, error) {
	l, err := uc.repo.FindByID(ctx, id)
	if err != nil {
		return nil, uc.storeErr("GetByID", err)
	}
	return l, nil
}

// GetByNumber is the public detail read. It counts one view.
func (uc *ListingUsecase) GetByNumber(ctx context.Context, listingNumber string) (*domain.Listing, error) {
	listingNumber = strings.TrimSpace(listingNumber)
	if listingNumber == "" {
		return nil, fmt.Errorf("%w: listing number is required", domain.ErrInvalidArgument)
	}
	l, err := uc.repo.IncrementViews(ctx, listingNumber)
	if err != nil {
		return nil, uc.storeErr("GetByNumber", err)
	}
	return l, nil
}

// Search resolves params for this kind and returns one page of results.
func (uc *ListingUsecase) Search(ctx context.Context, params url.Values) (*domain.ListingPage, error) {
	q, ignored := query.Build(params, query.SchemaFor(uc.kind))
	if len(ignored) > 0 {
		uc.logger.Debug("ListingUsecase.Search: ignored parameters", zap.Any("ignored", ignored))
	}

	data, total, err := uc.repo.Find(ctx, q)
	if err != nil {
		return nil, uc.storeErr("Search", err)
	}
	if data == nil {
		data = []*domain.Listing{}
	}
	if ignored == nil {
		ignored = []domain.IgnoredParam{}
	}
	return &domain.ListingPage{
		Data:       data,
		Total:      total,
		Page:       q.Page,
		Limit:      q.Limit,
		TotalPages: domain.TotalPages(total, q.Limit),
		Ignored:    ignored,
	}, nil
}

func (uc *ListingUsecase) apply(l *domain.Listing, in domain.ListingInput) error {
	setText(&l.Title, in.Title)
	setText(&l.Brand, in.Brand)

	if in.Description != nil {
		clean := strings.TrimSpace(uc.sanitizer.Sanitize(*in.Description))
		if utf8.RuneCountInString(clean) > MaxDescriptionLength {
			return fmt.Errorf("%w: description exceeds %d characters", domain.ErrPayloadTooLarge, MaxDescriptionLength)
		}
		l.Description = clean
	}

	if in.Price != nil {
		price, err := domain.NormalizePrice(*in.Price)
		if err != nil {
			return err
		}
		l.Price = price
	}

	if uc.kind != domain.KindVehicle {
		return nil
	}

	setText(&l.Category, in.Category)
	setText(&l.Series, in.Series)
	setText(&l.Model, in.Model)
	setText(&l.Color, in.Color)
	setText(&l.BodyType, in.BodyType)
	setText(&l.FuelType, in.FuelType)
	setText(&l.TransmissionType, in.TransmissionType)
	setText(&l.EngineVolume, in.EngineVolume)
	setText(&l.EnginePower, in.EnginePower)
	setBool(&l.Urgent, in.Urgent)
	setBool(&l.Classic, in.Classic)
	setBool(&l.Modified, in.Modified)

	if in.Year != nil {
		year, err := uc.parseYear(*in.Year)
		if err != nil {
			return err
		}
		l.Year = year
	}
	if in.Mileage != nil {
		mileage, err := parseMileage(*in.Mileage)
		if err != nil {
			return err
		}
		l.Mileage = mileage
	}
	return nil
}

func (uc *ListingUsecase) validateRequired(l *domain.Listing) error {
	var missing []string
	if l.Title == "" {
		missing = append(missing, domain.FieldTitle)
	}
	switch uc.kind {
	case domain.KindVehicle:
		if l.Brand == "" {
			missing = append(missing, domain.FieldBrand)
		}
	case domain.KindSparePart:
		if l.Description == "" {
			missing = append(missing, "description")
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing required fields: %s", domain.ErrValidationFailed, strings.Join(missing, ", "))
	}
	return nil
}

func (uc *ListingUsecase) parseYear(raw string) (*int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	year, err := strconv.Atoi(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: year must be an integer", domain.ErrValidationFailed)
	}
	if maxYear := uc.now().Year(); year < minVehicleYear || year > maxYear {
		return nil, fmt.Errorf("%w: year must be between %d and %d", domain.ErrValidationFailed, minVehicleYear, maxYear)
	}
	return &year, nil
}

func parseMileage(raw string) (*int, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	v, ok := domain.ParseNumber(raw)
	if !ok || v < 0 {
		return nil, fmt.Errorf("%w: mileage must be a non-negative number", domain.ErrValidationFailed)
	}
	mileage := int(math.Round(v))
	return &mileage, nil
}

func (uc *ListingUsecase) checkUploadCount(n int) error {
	if uc.maxImages > 0 && n > uc.maxImages {
		return fmt.Errorf("%w: at most %d images per request", domain.ErrValidationFailed, uc.maxImages)
	}
	return nil
}

// uploadImages stores uploads in parallel and keeps their order. On failure the
// images that did get stored are removed again.
func (uc *ListingUsecase) uploadImages(ctx context.Context, uploads []domain.Upload) ([]domain.Image, error) {
	if len(uploads) == 0 {
		return nil, nil
	}

	images := make([]domain.Image, len(uploads))
	g, gctx := errgroup.WithContext(ctx)
	for i, up := range uploads {
		g.Go(func() error {
			img, err := uc.images.Upload(gctx, up.Data, up.FileName, uc.imageFolder)
			if err != nil {
				return fmt.Errorf("upload %q: %w", up.FileName, err)
			}
			images[i] = img
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		uc.logger.Error("ListingUsecase.uploadImages: image upload failed", zap.Error(err))
		var stored []domain.Image
		for _, img := range images {
			if img.ImageID != "" {
				stored = append(stored, img)
			}
		}
		uc.discardImages(ctx, stored)
		return nil, fmt.Errorf("%w: image upload: %w", domain.ErrUpstreamFailure, err)
	}
	return images, nil
}

func (uc *ListingUsecase) discardImages(ctx context.Context, images []domain.Image) {
	ids := make([]string, 0, len(images))
	for _, img := range images {
		ids = append(ids, img.ImageID)
	}
	uc.removeImages(ctx, ids)
}

// removeImages deletes each asset independently; failures are logged and skipped.
func (uc *ListingUsecase) removeImages(ctx context.Context, imageIDs []string) {
	ctx = context.WithoutCancel(ctx)
	for _, imageID := range imageIDs {
		if imageID == "" {
			continue
		}
		if err := uc.images.Delete(ctx, imageID); err != nil {
			uc.logger.Warn("ListingUsecase: image delete failed, skipping",
				zap.String("image_id", imageID), zap.Error(err))
		}
	}
}

func (uc *ListingUsecase) afterWrite(ctx context.Context, eventType string, l *domain.Listing) {
	if uc.kind == domain.KindVehicle && uc.facets != nil {
		uc.facets.Invalidate(ctx)
	}
	if uc.publisher == nil {
		return
	}
	event := domain.Event{
		Type:          eventType,
		Kind:          uc.kind,
		ID:            l.ID,
		ListingNumber: l.ListingNumber,
		OccurredAt:    uc.now().UTC(),
	}
	if err := uc.publisher.Publish(ctx, eventType, event); err != nil {
		uc.logger.Warn("ListingUsecase: event publish failed",
			zap.String("event", eventType), zap.String("listing_number", l.ListingNumber), zap.Error(err))
	}
}

func (uc *ListingUsecase) storeErr(op string, err error) error {
	if errors.Is(err, domain.ErrNotFound) {
		return err
	}
	uc.logger.Error("ListingUsecase."+op+": store call failed", zap.Error(err))
	return fmt.Errorf("%w: %s: %w", domain.ErrUpstreamFailure, strings.ToLower(op), err)
}

func setText(dst *string, src *string) {
	if src != nil {
		*dst = strings.TrimSpace(*src)
	}
}

func setBool(dst *bool, src *bool) {
	if src != nil {
		*dst = *src
	}
}
