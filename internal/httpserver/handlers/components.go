package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/atal/internal/domain"
	"github.com/MrSnakeDoc/atal/internal/httpserver/deps"
)

// ListComponents serves GET /api/components?category=&search=.
func ListComponents(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		res, err := d.Data.GetComponents(r.Context(), domain.ComponentFilter{
			Category: q.Get("category"),
			Search:   q.Get("search"),
		})
		if err != nil {
			writeError(w, r, d, err)
			return
		}
		writeResult(w, http.StatusOK, res)
	}
}

func GetComponent(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res, err := d.Data.GetComponent(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, r, d, err)
			return
		}
		writeResult(w, http.StatusOK, res)
	}
}

func CreateComponent(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in domain.ComponentInput
		if err := decodeJSON(w, r, &in); err != nil {
			writeError(w, r, d, err)
			return
		}
		res, err := d.Data.CreateComponent(r.Context(), in)
		if err != nil {
			writeError(w, r, d, err)
			return
		}
		writeResult(w, http.StatusCreated, res)
	}
}

func UpdateComponent(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in domain.ComponentInput
		if err := decodeJSON(w, r, &in); err != nil {
			writeError(w, r, d, err)
			return
		}
		res, err := d.Data.UpdateComponent(r.Context(), chi.URLParam(r, "id"), in)
		if err != nil {
			writeError(w, r, d, err)
			return
		}
		writeResult(w, http.StatusOK, res)
	}
}

func DeleteComponent(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res, err := d.Data.DeleteComponent(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, r, d, err)
			return
		}
		setSource(w, res.Source)
		w.WriteHeader(http.StatusNoContent)
	}
}
