package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Ismail-Mert-Eksi/GuvenOto/internal/listing/usecase"
	"github.com/Ismail-Mert-Eksi/GuvenOto/internal/platform/logger"
)

type FacetService interface {
	BrandCounts(ctx context.Context, category string) ([]usecase.NameCount, error)
	SeriesFor(ctx context.Context, brand, category string) ([]string, error)
	ModelsFor(ctx context.Context, brand, series, category string) ([]string, error)
	Distinct(ctx context.Context, field, category string) ([]string, error)
	Hierarchy(ctx context.Context, category string) ([]usecase.BrandNode, error)
}

type FacetHandler struct {
	svc    FacetService
	logger *logger.Logger
}

func NewFacetHandler(svc FacetService, log *logger.Logger) *FacetHandler {
	return &FacetHandler{svc: svc, logger: log.Named("FacetHandler")}
}

func (h *FacetHandler) HandleBrandCounts(w http.ResponseWriter, r *http.Request) {
	counts, err := h.svc.BrandCounts(r.Context(), r.URL.Query().Get("category"))
	respond(w, h.logger, counts, err)
}

func (h *FacetHandler) HandleSeries(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	series, err := h.svc.SeriesFor(r.Context(), q.Get("brand"), q.Get("category"))
	respond(w, h.logger, series, err)
}

func (h *FacetHandler) HandleModels(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	models, err := h.svc.ModelsFor(r.Context(), q.Get("brand"), q.Get("series"), q.Get("category"))
	respond(w, h.logger, models, err)
}

func (h *FacetHandler) HandleDistinct(w http.ResponseWriter, r *http.Request) {
	values, err := h.svc.Distinct(r.Context(), chi.URLParam(r, "field"), r.URL.Query().Get("category"))
	respond(w, h.logger, values, err)
}

func (h *FacetHandler) HandleHierarchy(w http.ResponseWriter, r *http.Request) {
	tree, err := h.svc.Hierarchy(r.Context(), r.URL.Query().Get("category"))
	respond(w, h.logger, tree, err)
}

// respond writes items as a JSON array; nil becomes [].
func respond[T any](w http.ResponseWriter, log *logger.Logger, items []T, err error) {
	if err != nil {
		writeError(w, log, err)
		return
	}
	if items == nil {
		items = []T{}
	}
	writeJSON(w, log, http.StatusOK, items)
}
