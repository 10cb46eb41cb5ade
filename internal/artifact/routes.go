package artifact

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/ziadkadry99/bizmate/internal/errs"
)

// RegisterRoutes mounts artifact endpoints under /api/artifacts.
func RegisterRoutes(r chi.Router, store *Store) {
	r.Route("/api/artifacts", func(r chi.Router) {
		r.Get("/", handleQuery(store))
		r.Get("/{id}", handleGetByID(store))
		r.Delete("/{id}", handleDelete(store))
		r.Get("/types/{type}/latest", handleLatest(store))
		r.Get("/types/{type}/history", handleHistory(store))
	})
}

func handleQuery(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()

		filter := QueryFilter{
			CompanyID:   q.Get("company_id"),
			Type:        q.Get("type"),
			CreatedBy:   q.Get("created_by"),
			ActedAsRole: q.Get("role"),
			Descending:  q.Get("order") == "desc",
		}
		if v := q.Get("order_by"); v != "" {
			filter.OrderBy = OrderBy(v)
		}
		if v := q.Get("limit"); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				filter.Limit = n
			}
		}
		if v := q.Get("offset"); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				filter.Offset = n
			}
		}

		artifacts, err := store.Query(r.Context(), filter)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		writeJSON(w, http.StatusOK, artifacts)
	}
}

func handleGetByID(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		a, err := store.GetByID(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			status := http.StatusInternalServerError
			if errs.IsNotFound(err) {
				status = http.StatusNotFound
			}
			http.Error(w, err.Error(), status)
			return
		}
		writeJSON(w, http.StatusOK, a)
	}
}

func handleDelete(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor := r.URL.Query().Get("actor")
		err := store.Delete(r.Context(), chi.URLParam(r, "id"), actor)
		if err != nil {
			status := http.StatusInternalServerError
			if errs.IsNotFound(err) {
				status = http.StatusNotFound
			}
			http.Error(w, err.Error(), status)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func handleLatest(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		companyID := r.URL.Query().Get("company_id")
		a, err := store.LatestByType(r.Context(), companyID, chi.URLParam(r, "type"))
		if err != nil {
			status := http.StatusInternalServerError
			if errs.IsNotFound(err) {
				status = http.StatusNotFound
			}
			http.Error(w, err.Error(), status)
			return
		}
		writeJSON(w, http.StatusOK, a)
	}
}

func handleHistory(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		companyID := r.URL.Query().Get("company_id")
		history, err := store.History(r.Context(), companyID, chi.URLParam(r, "type"))
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, history)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
