package routes

import (
	"cmp"
	"fmt"
	"net/http"
	"slices"

	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/atal/internal/httpserver/deps"
	"github.com/MrSnakeDoc/atal/internal/logger"
)

type (
	Registrar  func(r chi.Router, d deps.Deps)
	Middleware = func(http.Handler) http.Handler
)

// family is one group of routes, e.g. "components" or "status".
type family struct {
	name string
	reg  Registrar
}

var registry []family

// Register adds a route family. Families build their own middleware
// chains from deps. It is called from init; registering a name twice panics.
func Register(name string, reg Registrar) {
	for _, f := range registry {
		if f.name == name {
			panic(fmt.Sprintf("routes: family %q registered twice", name))
		}
	}
	registry = append(registry, family{name: name, reg: reg})
}

// RegisterAll mounts every family on r in name order, so the route table
// does not depend on file init order. Called once from httpserver.New.
func RegisterAll(r chi.Router, d deps.Deps) {
	families := slices.Clone(registry)
	slices.SortFunc(families, func(a, b family) int {
		return cmp.Compare(a.name, b.name)
	})
	for _, f := range families {
		f.reg(r, d)
		if d.Logger != nil {
			d.Logger.Debug("routes registered", logger.String("family", f.name))
		}
	}
}
