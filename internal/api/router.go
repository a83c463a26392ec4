package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimid "github.com/go-chi/chi/v5/middleware"

	"github.com/screencraft/engine/internal/api/handlers"
	mw "github.com/screencraft/engine/internal/api/middleware"
)

type Dependencies struct {
	HMACSecret         []byte
	AuthHandler        *handlers.AuthHandler
	ProjectsHandler    *handlers.ProjectsHandler
	GenerationsHandler *handlers.GenerationsHandler
	CreditsHandler     *handlers.CreditsHandler
}

func NewRouter(dep Dependencies) http.Handler {
	r := chi.NewRouter()

	// Built-in middleware
	r.Use(mw.RequestID)
	r.Use(mw.Recovery)
	r.Use(mw.Logging)
	r.Use(mw.CORS)
	r.Use(mw.RateLimit(10, 20))
	r.Use(chimid.Compress(5))

	// Health endpoints
	hh := handlers.NewHealthHandler()
	r.Get("/healthz", hh.Liveness)
	r.Get("/readyz", hh.Readiness)

	r.Route("/api/v1", func(api chi.Router) {
		// Auth routes (public)
		api.Route("/auth", func(ar chi.Router) {
			ar.Post("/register", dep.AuthHandler.Register)
			ar.Post("/login", dep.AuthHandler.Login)
			ar.Post("/logout", dep.AuthHandler.Logout)
			ar.Post("/refresh", dep.AuthHandler.Refresh)
		})

		// Protected routes
		api.Group(func(protected chi.Router) {
			protected.Use(mw.Auth(dep.HMACSecret))

			// Projects and their canvas
			protected.Route("/projects", func(pr chi.Router) {
				pr.Get("/", dep.ProjectsHandler.List)
				pr.Post("/", dep.ProjectsHandler.Create)
				pr.Get("/{id}", dep.ProjectsHandler.Get)
				pr.Put("/{id}", dep.ProjectsHandler.Update)
				pr.Delete("/{id}", dep.ProjectsHandler.Delete)
				pr.Get("/{id}/canvas", dep.ProjectsHandler.GetCanvas)
				pr.Post("/{id}/generations", dep.GenerationsHandler.Create)
				pr.Get("/{id}/generations", dep.GenerationsHandler.ListByProject)
			})

			// Generation runs
			protected.Route("/generations", func(gr chi.Router) {
				gr.Get("/{id}", dep.GenerationsHandler.Get)
			})

			// Credits
			protected.Route("/credits", func(cr chi.Router) {
				cr.Get("/balance", dep.CreditsHandler.Balance)
				cr.Get("/usage", dep.CreditsHandler.Usage)
			})
		})
	})

	return r
}
