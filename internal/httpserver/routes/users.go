package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/atal/internal/httpserver/deps"
	"github.com/MrSnakeDoc/atal/internal/httpserver/handlers"
	"github.com/MrSnakeDoc/atal/internal/httpserver/mw"
)

func init() { Register("users", registerUsers) }

func registerUsers(r chi.Router, d deps.Deps) {
	r.Route("/api/users", func(r chi.Router) {
		r.Use(mw.EnforceHost(d.AllowedHosts, d.Logger))
		r.Get("/{id}", handlers.GetUser(d))

		writes := r.With(writeLimit(d, "users"))
		writes.Post("/", handlers.CreateUser(d))
		writes.Post("/ensure", handlers.EnsureUser(d))
		writes.Patch("/{id}", handlers.UpdateUser(d))
	})
}
