package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/MrSnakeDoc/atal/internal/domain"
	"github.com/MrSnakeDoc/atal/internal/httpserver/deps"
	"github.com/MrSnakeDoc/atal/internal/httpserver/mw"
	"github.com/MrSnakeDoc/atal/internal/hybrid"
	"github.com/MrSnakeDoc/atal/internal/logger"
)

// SourceHeader tells the client which store served the response.
const SourceHeader = mw.SourceHeader

const maxBodyBytes = 1 << 20

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

func setSource(w http.ResponseWriter, src hybrid.Source) {
	if src != "" {
		w.Header().Set(SourceHeader, string(src))
	}
}

// writeResult writes a dispatcher result with its source header.
func writeResult[T any](w http.ResponseWriter, status int, res hybrid.Result[T]) {
	setSource(w, res.Source)
	writeJSON(w, status, res.Value)
}

// writeError maps dispatcher errors to HTTP statuses.
func writeError(w http.ResponseWriter, r *http.Request, d deps.Deps, err error) {
	var unavailable *hybrid.UnavailableError
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrValidation):
		status = http.StatusBadRequest
	case errors.As(err, &unavailable):
		status = http.StatusServiceUnavailable
	case domain.IsNotFound(err):
		status = http.StatusNotFound
	case domain.IsConfiguration(err):
		status = http.StatusBadGateway
	}

	if status >= http.StatusInternalServerError {
		d.Logger.Error("request failed",
			logger.String("method", r.Method),
			logger.String("path", r.URL.Path),
			logger.Error(err))
	}
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

// decodeJSON reads a bounded JSON body into dst.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("%w: invalid JSON body: %v", domain.ErrValidation, err)
	}
	return nil
}
