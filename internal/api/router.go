package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/YenerCenger/Company-Discovery-Agent/internal/dispatch"
)

func NewRouter(dispatcher *dispatch.Dispatcher) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	h := NewHandlers(dispatcher)

	r.Get("/health", h.HealthHandler)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/process-all", h.ProcessAllHandler)
		r.Post("/process-job/{jobID}", h.ProcessJobHandler)
		r.Post("/process-company/{companyID}", h.ProcessCompanyHandler)
		r.Get("/pending-jobs", h.PendingJobsHandler)
		r.Get("/status/{videoID}", h.StatusHandler)
	})

	return r
}
