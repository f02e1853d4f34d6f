package handlers

import (
	"net/http"

	"github.com/MrSnakeDoc/atal/internal/httpserver/deps"
)

type readyzResponse struct {
	Ready bool   `json:"ready"`
	Mode  string `json:"mode,omitempty"`
}

// Readyz serves GET /readyz. The local store answers every call Redis
// cannot, so once the dispatcher is wired the service is ready in every
// mode; mode tells operators where traffic currently goes.
func Readyz(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if d.Data == nil {
			writeJSON(w, http.StatusServiceUnavailable, readyzResponse{})
			return
		}
		writeJSON(w, http.StatusOK, readyzResponse{
			Ready: true,
			Mode:  determineMode(d.Data.ConnectionStatus()),
		})
	}
}
