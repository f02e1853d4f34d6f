package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/atal/internal/httpserver/deps"
	"github.com/MrSnakeDoc/atal/internal/httpserver/handlers"
	"github.com/MrSnakeDoc/atal/internal/httpserver/mw"
)

func init() { Register("readyz", registerReadyz) }

// Readiness reveals the active store, so it sits behind the admin CIDRs.
func registerReadyz(r chi.Router, d deps.Deps) {
	r.With(mw.AllowOnlyCIDRS(d.AllowedCIDRS, d.TrustProxy, d.Logger)).Get("/readyz", handlers.Readyz(d))
}
