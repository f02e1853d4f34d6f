package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/atal/internal/httpserver/deps"
	"github.com/MrSnakeDoc/atal/internal/httpserver/handlers"
	"github.com/MrSnakeDoc/atal/internal/httpserver/mw"
)

func init() { Register("components", registerComponents) }

func registerComponents(r chi.Router, d deps.Deps) {
	r.Route("/api/components", func(r chi.Router) {
		r.Use(mw.EnforceHost(d.AllowedHosts, d.Logger))
		r.Get("/", handlers.ListComponents(d))
		r.Get("/{id}", handlers.GetComponent(d))

		writes := r.With(writeLimit(d, "components"))
		writes.Post("/", handlers.CreateComponent(d))
		writes.Put("/{id}", handlers.UpdateComponent(d))
		writes.Delete("/{id}", handlers.DeleteComponent(d))
	})
}
