package role

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ziadkadry99/bizmate/internal/errs"
)

// RegisterRoutes mounts role endpoints under /api/roles.
func RegisterRoutes(r chi.Router, store *Store) {
	r.Route("/api/roles", func(r chi.Router) {
		r.Get("/", handleList(store))
		r.Get("/{id}", handleGet(store))
	})
}

func handleList(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		companyID := r.URL.Query().Get("company_id")
		roles, err := store.ListByCompany(r.Context(), companyID)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, roles)
	}
}

func handleGet(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		role, err := store.Get(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			status := http.StatusInternalServerError
			if errs.IsNotFound(err) {
				status = http.StatusNotFound
			}
			http.Error(w, err.Error(), status)
			return
		}
		writeJSON(w, http.StatusOK, role)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
