// Package server exposes the engine over HTTP for the external
// dashboard: read endpoints per feature, run/approval endpoints, and a
// live change-log feed over websocket.
package server

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/ziadkadry99/bizmate/internal/artifact"
	"github.com/ziadkadry99/bizmate/internal/changelog"
	"github.com/ziadkadry99/bizmate/internal/company"
	"github.com/ziadkadry99/bizmate/internal/contextengine"
	"github.com/ziadkadry99/bizmate/internal/errs"
	"github.com/ziadkadry99/bizmate/internal/role"
	"github.com/ziadkadry99/bizmate/internal/runner"
)

// Config holds server configuration.
type Config struct {
	Addr     string
	AllowAll bool // allow all CORS origins (dev mode)
}

// Server serves the engine's HTTP API.
type Server struct {
	cfg        Config
	companies  *company.Store
	roles      *role.Store
	artifacts  *artifact.Store
	changes    *changelog.Store
	engine     *contextengine.Engine
	runner     *runner.Runner
	router     chi.Router
	httpServer *http.Server
}

// New creates a server with all dependencies.
func New(cfg Config, companies *company.Store, roles *role.Store, artifacts *artifact.Store, changes *changelog.Store, engine *contextengine.Engine, run *runner.Runner) *Server {
	s := &Server{
		cfg:       cfg,
		companies: companies,
		roles:     roles,
		artifacts: artifacts,
		changes:   changes,
		engine:    engine,
		runner:    run,
	}
	s.router = s.buildRouter()
	return s
}

// buildRouter creates and configures the chi router with all routes.
func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(120 * time.Second))

	corsOpts := cors.Options{
		AllowedOrigins:   []string{"http://localhost:*", "http://127.0.0.1:*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}
	if s.cfg.AllowAll {
		corsOpts.AllowedOrigins = []string{"*"}
	}
	r.Use(cors.Handler(corsOpts))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	artifact.RegisterRoutes(r, s.artifacts)
	role.RegisterRoutes(r, s.roles)
	changelog.RegisterRoutes(r, s.changes)

	r.Get("/api/company", s.handleGetCompany)
	r.Get("/api/session", s.handleGetSession)
	r.Post("/api/session/role", s.handleSwitchRole)
	r.Post("/api/session/focus", s.handleSetFocus)
	r.Post("/api/run", s.handleRun)
	r.Post("/api/plans/{id}/approve", s.handleApprove)
	r.Post("/api/plans/{id}/reject", s.handleReject)
	r.Post("/api/plans/{id}/resubmit", s.handleResubmit)
	r.Get("/ws/changelog", s.handleChangeFeed)

	return r
}

// Router returns the chi router, exposed for tests.
func (s *Server) Router() chi.Router { return s.router }

// Start begins listening on the configured address.
func (s *Server) Start() error {
	s.httpServer = &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      120 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	log.Printf("bizmate server listening on %s", s.cfg.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer != nil {
		return s.httpServer.Shutdown(ctx)
	}
	return nil
}

func (s *Server) handleGetCompany(w http.ResponseWriter, r *http.Request) {
	comp, err := s.companies.GetAny(r.Context())
	if err != nil {
		status := http.StatusInternalServerError
		if errs.IsNotFound(err) {
			status = http.StatusNotFound
		}
		http.Error(w, err.Error(), status)
		return
	}
	writeJSON(w, http.StatusOK, comp)
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sess, err := s.engine.EnsureSession(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, sess)
}

func (s *Server) handleSwitchRole(w http.ResponseWriter, r *http.Request) {
	var req struct {
		RoleID string `json:"role_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.RoleID == "" {
		http.Error(w, "role_id is required", http.StatusBadRequest)
		return
	}

	sess, err := s.engine.SwitchRole(r.Context(), req.RoleID)
	if err != nil {
		status := http.StatusInternalServerError
		switch {
		case errs.IsNotFound(err):
			status = http.StatusNotFound
		case errs.IsPermission(err):
			status = http.StatusForbidden
		}
		http.Error(w, err.Error(), status)
		return
	}
	writeJSON(w, http.StatusOK, sess)
}

func (s *Server) handleSetFocus(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Focus string `json:"focus"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}

	sess, err := s.engine.SetFocus(r.Context(), req.Focus)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, sess)
}

func (s *Server) handleRun(w http.ResponseWriter, r *http.Request) {
	var req struct {
		RecipeID string            `json:"recipe_id"`
		Inputs   map[string]string `json:"inputs"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.RecipeID == "" {
		http.Error(w, "recipe_id is required", http.StatusBadRequest)
		return
	}

	result, err := s.runner.Run(r.Context(), req.RecipeID, req.Inputs, runner.Options{})
	if err != nil {
		status := http.StatusInternalServerError
		if errs.IsNotFound(err) {
			status = http.StatusNotFound
		}
		http.Error(w, err.Error(), status)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleApprove(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ApproverRoleID string `json:"approver_role_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ApproverRoleID == "" {
		http.Error(w, "approver_role_id is required", http.StatusBadRequest)
		return
	}

	result, err := s.runner.Approve(r.Context(), chi.URLParam(r, "id"), req.ApproverRoleID)
	if err != nil {
		status := http.StatusInternalServerError
		switch {
		case errs.IsNotFound(err):
			status = http.StatusNotFound
		case errs.IsPermission(err):
			status = http.StatusForbidden
		}
		http.Error(w, err.Error(), status)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleReject(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ApproverRoleID string `json:"approver_role_id"`
		Reason         string `json:"reason"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ApproverRoleID == "" {
		http.Error(w, "approver_role_id is required", http.StatusBadRequest)
		return
	}

	err := s.runner.Reject(r.Context(), chi.URLParam(r, "id"), req.ApproverRoleID, req.Reason)
	if err != nil {
		status := http.StatusInternalServerError
		switch {
		case errs.IsNotFound(err):
			status = http.StatusNotFound
		case errs.IsPermission(err):
			status = http.StatusForbidden
		}
		http.Error(w, err.Error(), status)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleResubmit(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Inputs map[string]string `json:"inputs"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}

	err := s.runner.Resubmit(r.Context(), chi.URLParam(r, "id"), req.Inputs)
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

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
