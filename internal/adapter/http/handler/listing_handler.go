package handler

import (
	"context"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/Ismail-Mert-Eksi/GuvenOto/internal/listing/domain"
	"github.com/Ismail-Mert-Eksi/GuvenOto/internal/platform/logger"
	"github.com/Ismail-Mert-Eksi/GuvenOto/internal/platform/metrics"
)

// ListingService is the lifecycle API of one listing kind.
type ListingService interface {
	Kind() domain.Kind
	Create(ctx context.Context, in domain.ListingInput, uploads []domain.Upload) (*domain.Listing, error)
	Update(ctx context.Context, id string, in domain.ListingInput, imagesToRemove []string, uploads []domain.Upload) (*domain.Listing, error)
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*domain.Listing, error)
	GetByNumber(ctx context.Context, listingNumber string) (*domain.Listing, error)
	Search(ctx context.Context, params url.Values) (*domain.ListingPage, error)
}

type ListingHandler struct {
	svc       ListingService
	maxImages int
	metrics   *metrics.MetricsManager
	logger    *logger.Logger
}

func NewListingHandler(svc ListingService, maxImages int, m *metrics.MetricsManager, log *logger.Logger) *ListingHandler {
	return &ListingHandler{
		svc:       svc,
		maxImages: maxImages,
		metrics:   m,
		logger:    log.Named("ListingHandler").With(zap.String("kind", string(svc.Kind()))),
	}
}

func (h *ListingHandler) kind() string { return string(h.svc.Kind()) }

// HandleSearch serves one page of listings matching the query string.
func (h *ListingHandler) HandleSearch(w http.ResponseWriter, r *http.Request) {
	page, err := h.svc.Search(r.Context(), r.URL.Query())
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, page)
}

// HandleGetByNumber is the public detail page and counts a view.
func (h *ListingHandler) HandleGetByNumber(w http.ResponseWriter, r *http.Request) {
	l, err := h.svc.GetByNumber(r.Context(), chi.URLParam(r, "number"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	h.metrics.ListingViews.WithLabelValues(h.kind()).Inc()
	writeJSON(w, h.logger, http.StatusOK, l)
}

func (h *ListingHandler) HandleGetByID(w http.ResponseWriter, r *http.Request) {
	l, err := h.svc.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, l)
}

func (h *ListingHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	form, err := parseListingForm(w, r, h.maxImages)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	l, err := h.svc.Create(r.Context(), form.Input, form.Uploads)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	h.metrics.ListingsCreated.WithLabelValues(h.kind()).Inc()
	writeJSON(w, h.logger, http.StatusCreated, l)
}

// HandleUpdate accepts multipart (with new images) or JSON. A listingNumber in
// the body is never read.
func (h *ListingHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	form, err := parseListingForm(w, r, h.maxImages)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	l, err := h.svc.Update(r.Context(), id, form.Input, form.ImagesToRemove, form.Uploads)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	h.metrics.ListingsUpdated.WithLabelValues(h.kind()).Inc()
	writeJSON(w, h.logger, http.StatusOK, l)
}

func (h *ListingHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, h.logger, err)
		return
	}
	h.metrics.ListingsDeleted.WithLabelValues(h.kind()).Inc()
	w.WriteHeader(http.StatusNoContent)
}
