package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/Ismail-Mert-Eksi/GuvenOto/internal/adapter/http/handler"
	"github.com/Ismail-Mert-Eksi/GuvenOto/internal/adapter/http/middleware"
	"github.com/Ismail-Mert-Eksi/GuvenOto/internal/platform/logger"
	"github.com/Ismail-Mert-Eksi/GuvenOto/internal/platform/metrics"
)

type Handlers struct {
	Vehicles   *handler.ListingHandler
	SpareParts *handler.ListingHandler
	Facets     *handler.FacetHandler
}

func New(h Handlers, jwtSecret string, m *metrics.MetricsManager, log *logger.Logger) *chi.Mux {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.Logger(log))
	r.Use(middleware.Metrics(m))
	r.Use(chimw.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok"))
	})

	admin := middleware.AdminAuth(jwtSecret, log)
	SetupListingRoutes(r, "/api/listings", h.Vehicles, admin)
	SetupListingRoutes(r, "/api/spare-parts", h.SpareParts, admin)
	SetupFacetRoutes(r, h.Facets)
	return r
}

// SetupListingRoutes mounts the public reads and the admin-only writes of one
// listing kind under prefix.
func SetupListingRoutes(mux *chi.Mux, prefix string, h *handler.ListingHandler, admin func(http.Handler) http.Handler) {
	mux.Route(prefix, func(r chi.Router) {
		r.Get("/", h.HandleSearch)
		r.Get("/by-number/{number}", h.HandleGetByNumber)
		r.Get("/{id}", h.HandleGetByID)

		r.Group(func(r chi.Router) {
			r.Use(admin)
			r.Post("/", h.HandleCreate)
			r.Put("/{id}", h.HandleUpdate)
			r.Delete("/{id}", h.HandleDelete)
		})
	})
}

func SetupFacetRoutes(mux *chi.Mux, h *handler.FacetHandler) {
	mux.Route("/api/facets", func(r chi.Router) {
		r.Get("/brand-counts", h.HandleBrandCounts)
		r.Get("/series", h.HandleSeries)
		r.Get("/models", h.HandleModels)
		r.Get("/hierarchy", h.HandleHierarchy)
		r.Get("/distinct/{field}", h.HandleDistinct)
	})
}
