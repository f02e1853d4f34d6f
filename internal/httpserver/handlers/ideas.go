package handlers

import (
	"net/http"

	"github.com/MrSnakeDoc/atal/internal/domain"
	"github.com/MrSnakeDoc/atal/internal/httpserver/deps"
)

func GenerateIdeas(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req domain.GenerateRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, r, d, err)
			return
		}
		res, err := d.Data.GenerateProjectIdeas(r.Context(), req)
		if err != nil {
			writeError(w, r, d, err)
			return
		}
		writeResult(w, http.StatusOK, res)
	}
}
