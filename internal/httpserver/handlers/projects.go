package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/atal/internal/domain"
	"github.com/MrSnakeDoc/atal/internal/httpserver/deps"
)

// ListProjects serves GET /api/projects?user_id=.
func ListProjects(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res, err := d.Data.GetProjects(r.Context(), r.URL.Query().Get("user_id"))
		if err != nil {
			writeError(w, r, d, err)
			return
		}
		writeResult(w, http.StatusOK, res)
	}
}

func GetProject(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res, err := d.Data.GetProject(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, r, d, err)
			return
		}
		writeResult(w, http.StatusOK, res)
	}
}

func SaveProject(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var p domain.Project
		if err := decodeJSON(w, r, &p); err != nil {
			writeError(w, r, d, err)
			return
		}
		res, err := d.Data.SaveProject(r.Context(), p)
		if err != nil {
			writeError(w, r, d, err)
			return
		}
		writeResult(w, http.StatusCreated, res)
	}
}

func UpdateProject(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var patch domain.ProjectPatch
		if err := decodeJSON(w, r, &patch); err != nil {
			writeError(w, r, d, err)
			return
		}
		res, err := d.Data.UpdateProject(r.Context(), chi.URLParam(r, "id"), patch)
		if err != nil {
			writeError(w, r, d, err)
			return
		}
		writeResult(w, http.StatusOK, res)
	}
}

func DeleteProject(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res, err := d.Data.DeleteProject(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, r, d, err)
			return
		}
		setSource(w, res.Source)
		w.WriteHeader(http.StatusNoContent)
	}
}
