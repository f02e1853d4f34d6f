package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/atal/internal/domain"
	"github.com/MrSnakeDoc/atal/internal/httpserver/deps"
)

func GetUser(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res, err := d.Data.GetUser(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, r, d, err)
			return
		}
		writeResult(w, http.StatusOK, res)
	}
}

func CreateUser(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var u domain.User
		if err := decodeJSON(w, r, &u); err != nil {
			writeError(w, r, d, err)
			return
		}
		res, err := d.Data.CreateUser(r.Context(), u)
		if err != nil {
			writeError(w, r, d, err)
			return
		}
		writeResult(w, http.StatusCreated, res)
	}
}

func UpdateUser(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var patch domain.UserPatch
		if err := decodeJSON(w, r, &patch); err != nil {
			writeError(w, r, d, err)
			return
		}
		res, err := d.Data.UpdateUser(r.Context(), chi.URLParam(r, "id"), patch)
		if err != nil {
			writeError(w, r, d, err)
			return
		}
		writeResult(w, http.StatusOK, res)
	}
}

// EnsureUser serves POST /api/users/ensure: look up the user by id and
// provision it from the body on first sign-in.
func EnsureUser(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var u domain.User
		if err := decodeJSON(w, r, &u); err != nil {
			writeError(w, r, d, err)
			return
		}
		res, err := d.Data.EnsureUser(r.Context(), u)
		if err != nil {
			writeError(w, r, d, err)
			return
		}
		writeResult(w, http.StatusOK, res)
	}
}
