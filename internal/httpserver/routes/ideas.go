package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/atal/internal/httpserver/deps"
	"github.com/MrSnakeDoc/atal/internal/httpserver/handlers"
	"github.com/MrSnakeDoc/atal/internal/httpserver/mw"
)

func init() { Register("ideas", registerIdeas) }

func registerIdeas(r chi.Router, d deps.Deps) {
	r.With(mw.EnforceHost(d.AllowedHosts, d.Logger)).Post("/api/ideas/generate", handlers.GenerateIdeas(d))
}
