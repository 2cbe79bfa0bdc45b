package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimid "github.com/go-chi/chi/v5/middleware"

	"github.com/iac-studio/dashboard/internal/api/handlers"
	mw "github.com/iac-studio/dashboard/internal/api/middleware"
)

type Dependencies struct {
	ProjectsHandler *handlers.ProjectsHandler
	SessionsHandler *handlers.SessionsHandler
	HealthHandler   *handlers.HealthHandler
	RateLimitRPS    float64
	RateLimitBurst  int
}

func NewRouter(dep Dependencies) http.Handler {
	r := chi.NewRouter()

	// Built-in middleware
	r.Use(mw.RequestID)
	r.Use(mw.Recovery)
	r.Use(mw.Logging)
	r.Use(mw.CORS)
	r.Use(mw.RateLimit(dep.RateLimitRPS, dep.RateLimitBurst))
	r.Use(chimid.Compress(5))

	// Health endpoints
	r.Get("/healthz", dep.HealthHandler.Liveness)
	r.Get("/readyz", dep.HealthHandler.Readiness)

	r.Route("/api/v1", func(api chi.Router) {
		api.Use(mw.Auth)

		api.Get("/credentials", dep.ProjectsHandler.Credentials)

		// Projects
		api.Route("/projects", func(pr chi.Router) {
			pr.Get("/", dep.ProjectsHandler.List)
			pr.Get("/{id}", dep.ProjectsHandler.Get)
			pr.Post("/{id}/refresh", dep.ProjectsHandler.Refresh)
			pr.Put("/{id}/credential", dep.ProjectsHandler.AssignCredential)
		})

		// Workflow sessions
		api.Route("/sessions", func(sr chi.Router) {
			sh := dep.SessionsHandler
			sr.Post("/", sh.Open)
			sr.Route("/{sid}", func(s chi.Router) {
				s.Get("/", sh.Get)
				s.Delete("/", sh.Close)
				s.Post("/refresh", sh.Refresh)

				s.Post("/details", sh.SubmitDetails)
				s.Post("/continue", sh.Continue)
				s.Post("/back", sh.Back)
				s.Post("/messages", sh.Send)
				s.Post("/recommendations/step", sh.ToRecommendations)

				s.Post("/recommendations", sh.Generate)
				s.Post("/recommendations/{rid}/toggle", sh.Toggle)
				s.Post("/provision", sh.Provision)

				s.Post("/resources/retry-failed", sh.RetryFailed)
				s.Post("/resources/{rid}/retry", sh.Retry)

				s.Post("/delete", sh.PreviewDeletion)
				s.Post("/delete/confirm", sh.ConfirmDeletion)
				s.Post("/delete/cancel", sh.CancelDeletion)
			})
		})
	})

	return r
}
