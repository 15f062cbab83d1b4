// Package v1 exposes the character service over HTTP.
package v1

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	charservice "github.com/litforge/progression-api/internal/services/character"
)

// RouterConfig contains the dependencies needed to construct the HTTP
// router.
type RouterConfig struct {
	// Service handles all character operations (required).
	Service charservice.Service

	// CORSOrigins overrides the allowed CORS origins. Defaults to
	// localhost.
	CORSOrigins []string

	// DisableLogging disables the request logger middleware, useful in
	// tests and benchmarks.
	DisableLogging bool
}

// NewRouter constructs the HTTP router with all middleware and routes.
// The function is pure: no goroutines, no listeners, safe to hand to
// httptest.NewServer.
func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	if !cfg.DisableLogging {
		r.Use(middleware.Logger)
	}
	r.Use(middleware.Recoverer)

	corsOrigins := cfg.CORSOrigins
	if corsOrigins == nil {
		corsOrigins = []string{"http://localhost:*", "http://127.0.0.1:*"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: corsOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"*"},
	}))

	h := &handler{svc: cfg.Service}

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/v1/characters", func(r chi.Router) {
		r.Post("/", h.createCharacter)
		r.Get("/", h.listCharacters)

		r.Route("/{name}", func(r chi.Router) {
			r.Get("/", h.getCharacter)
			r.Delete("/", h.deleteCharacter)

			r.Post("/stats/{stat}", h.updateStat)
			r.Post("/initial-stat", h.setInitialStat)
			r.Get("/energy", h.getEnergy)
			r.Post("/experience", h.addExperience)

			r.Route("/arts", func(r chi.Router) {
				r.Post("/", h.addArt)
				r.Get("/", h.listArts)
				r.Put("/{art}", h.updateArt)
				r.Delete("/{art}", h.removeArt)
				r.Get("/{art}/boost", h.calculateArt)
			})

			r.Route("/traits", func(r chi.Router) {
				r.Post("/", h.addTrait)
				r.Get("/", h.listTraits)
				r.Delete("/{trait}", h.removeTrait)
				r.Post("/{trait}/experience", h.addTraitExperience)
			})

			r.Route("/chapters", func(r chi.Router) {
				r.Post("/", h.addChapter)
				r.Route("/{chapter}", func(r chi.Router) {
					r.Delete("/", h.removeChapter)
					r.Post("/checkpoints", h.saveCheckpoint)
					r.Patch("/checkpoints/{checkpoint}", h.updateCheckpoint)
					r.Delete("/checkpoints/{checkpoint}", h.removeCheckpoint)
					r.Post("/checkpoints/{checkpoint}/restore", h.restoreCheckpoint)
				})
			})
		})
	})

	return r
}
