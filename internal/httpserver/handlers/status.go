package handlers

import (
	"net/http"

	"github.com/MrSnakeDoc/atal/internal/httpserver/deps"
	"github.com/MrSnakeDoc/atal/internal/hybrid"
)

type statusResponse struct {
	Mode string `json:"mode"`
	hybrid.ConnectionStatus
}

// Status serves GET /api/status from the memoized flag; it never touches
// the network.
func Status(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		st := d.Data.ConnectionStatus()
		writeJSON(w, http.StatusOK, statusResponse{
			Mode:             determineMode(st),
			ConnectionStatus: st,
		})
	}
}

// Probe serves POST /api/status/probe and runs a fresh reachability check.
func Probe(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		d.Data.ForceConnectionCheck(r.Context())
		st := d.Data.ConnectionStatus()
		writeJSON(w, http.StatusOK, statusResponse{
			Mode:             determineMode(st),
			ConnectionStatus: st,
		})
	}
}

// InitDefaults serves POST /api/init.
func InitDefaults(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res, err := d.Data.InitializeDefaultData(r.Context())
		if err != nil {
			writeError(w, r, d, err)
			return
		}
		setSource(w, res.Source)
		writeJSON(w, http.StatusOK, map[string]bool{"seeded": res.Value})
	}
}

func determineMode(st hybrid.ConnectionStatus) string {
	switch {
	case !st.RemoteConfigured:
		return "local-only"
	case !st.Online:
		return "offline" // requests are served by the local store
	default:
		return "remote"
	}
}
