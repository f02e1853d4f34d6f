package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/atal/internal/httpserver/deps"
	"github.com/MrSnakeDoc/atal/internal/httpserver/handlers"
	"github.com/MrSnakeDoc/atal/internal/httpserver/mw"
)

func init() { Register("projects", registerProjects) }

func registerProjects(r chi.Router, d deps.Deps) {
	r.Route("/api/projects", func(r chi.Router) {
		r.Use(mw.EnforceHost(d.AllowedHosts, d.Logger))
		r.Get("/", handlers.ListProjects(d))
		r.Get("/{id}", handlers.GetProject(d))

		writes := r.With(writeLimit(d, "projects"))
		writes.Post("/", handlers.SaveProject(d))
		writes.Patch("/{id}", handlers.UpdateProject(d))
		writes.Delete("/{id}", handlers.DeleteProject(d))
	})
}
