package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/MikeSquared-Agency/Frontier/internal/cloudcache"
	"github.com/MikeSquared-Agency/Frontier/internal/config"
	"github.com/MikeSquared-Agency/Frontier/internal/hermes"
	"github.com/MikeSquared-Agency/Frontier/internal/store"
)

func NewRouter(s store.Store, h hermes.Client, reg Registrar, clouds *cloudcache.Cache, cfg *config.Config, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.RequestID)
	r.Use(RequestLogger(logger))
	r.Use(RateLimitMiddleware(cfg.Server.RateLimitPerMin))

	synth := NewCloudsHandler(cloudcache.Synth{Logger: logger}, cfg.Cloud)
	tasks := NewTasksHandler(s, h, reg, clouds, cfg.Cloud, logger)
	decide := NewDecideHandler(s, logger)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/clouds", synth.Create)
		r.Get("/shapes", synth.Shapes)

		r.Get("/tasks", tasks.List)
		r.Get("/tasks/{id}", tasks.Get)
		r.Get("/tasks/{id}/events", tasks.Events)
		r.Get("/tasks/{id}/solutions", tasks.Solutions)
		r.Get("/tasks/{id}/solutions/{solutionID}", tasks.Solution)
		r.Get("/tasks/{id}/cloud", tasks.Cloud)
		r.Get("/tasks/{id}/summary", tasks.Summary)

		r.Post("/tasks/{id}/decide/ahp", decide.AHP)
		r.Post("/tasks/{id}/decide/topsis", decide.TOPSIS)

		r.Group(func(r chi.Router) {
			r.Use(AdminAuthMiddleware(cfg.Server.AdminToken))
			r.Post("/tasks", tasks.Create)
			r.Delete("/tasks/{id}", tasks.Delete)
		})
	})

	return r
}

func NewMetricsRouter() http.Handler {
	r := chi.NewRouter()
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.Handler())
	return r
}
