package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ziadkadry99/bizmate/internal/artifact"
	"github.com/ziadkadry99/bizmate/internal/changelog"
	"github.com/ziadkadry99/bizmate/internal/company"
	"github.com/ziadkadry99/bizmate/internal/contextengine"
	"github.com/ziadkadry99/bizmate/internal/db"
	"github.com/ziadkadry99/bizmate/internal/llm"
	"github.com/ziadkadry99/bizmate/internal/recipe"
	"github.com/ziadkadry99/bizmate/internal/role"
	"github.com/ziadkadry99/bizmate/internal/runner"
	"github.com/ziadkadry99/bizmate/internal/session"
	"github.com/ziadkadry99/bizmate/internal/synthesis"
)

type staticCompleter struct {
	content string
}

func (c *staticCompleter) Complete(ctx context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
	return &llm.CompletionResponse{Content: c.content}, nil
}

func setupServer(t *testing.T) (*Server, *role.Store, *contextengine.Engine) {
	t.Helper()
	database, err := db.OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	companies := company.NewStore(database)
	roles := role.NewStore(database)
	sessions := session.NewStore(database)
	changes := changelog.NewStore(database)
	artifacts := artifact.NewStore(database)
	engine := contextengine.New(companies, roles, sessions, changes, "Acme Anvils", "operator")

	deps := &recipe.Deps{
		Companies: companies,
		Artifacts: artifacts,
		Changes:   changes,
		Synth: synthesis.NewRepairer(
			&staticCompleter{content: `{"priorities": ["ship"], "rationale": "because"}`},
			synthesis.DefaultRetryPolicy,
		),
	}
	run := runner.New(recipe.DefaultRegistry(), engine, roles, deps)

	srv := New(Config{Addr: ":0"}, companies, roles, artifacts, changes, engine, run)

	if _, err := engine.EnsureSession(context.Background()); err != nil {
		t.Fatalf("EnsureSession: %v", err)
	}
	return srv, roles, engine
}

func doJSON(t *testing.T, srv *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encoding body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	return rec
}

func TestHealthz(t *testing.T) {
	srv, _, _ := setupServer(t)

	rec := doJSON(t, srv, http.MethodGet, "/healthz", nil)
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
}

func TestGetCompany(t *testing.T) {
	srv, _, _ := setupServer(t)

	rec := doJSON(t, srv, http.MethodGet, "/api/company", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body)
	}

	var comp company.Company
	if err := json.NewDecoder(rec.Body).Decode(&comp); err != nil {
		t.Fatalf("decoding: %v", err)
	}
	if comp.Name != "Acme Anvils" {
		t.Errorf("Name = %q", comp.Name)
	}
}

func TestGetSessionAndRoles(t *testing.T) {
	srv, _, _ := setupServer(t)

	rec := doJSON(t, srv, http.MethodGet, "/api/session", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("session status = %d", rec.Code)
	}
	var sess session.Session
	if err := json.NewDecoder(rec.Body).Decode(&sess); err != nil {
		t.Fatalf("decoding session: %v", err)
	}
	if sess.ActingAs == "" {
		t.Error("session has no acting role")
	}

	rec = doJSON(t, srv, http.MethodGet, "/api/roles?company_id="+sess.CompanyID, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("roles status = %d", rec.Code)
	}
	var roles []role.Role
	if err := json.NewDecoder(rec.Body).Decode(&roles); err != nil {
		t.Fatalf("decoding roles: %v", err)
	}
	if len(roles) != 4 {
		t.Errorf("got %d roles, want 4", len(roles))
	}
}

func TestSwitchRole(t *testing.T) {
	srv, roles, engine := setupServer(t)
	ctx := context.Background()

	sess, err := engine.EnsureSession(ctx)
	if err != nil {
		t.Fatalf("EnsureSession: %v", err)
	}
	companyRoles, err := roles.ListByCompany(ctx, sess.CompanyID)
	if err != nil {
		t.Fatalf("ListByCompany: %v", err)
	}
	var ops *role.Role
	for _, r := range companyRoles {
		if r.Title == "Operations Manager" {
			ops = r
		}
	}

	rec := doJSON(t, srv, http.MethodPost, "/api/session/role", map[string]string{"role_id": ops.ID})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body)
	}

	rec = doJSON(t, srv, http.MethodPost, "/api/session/role", map[string]string{"role_id": "missing"})
	if rec.Code != http.StatusNotFound {
		t.Errorf("missing role status = %d, want 404", rec.Code)
	}

	// A role from another company is forbidden, not missing.
	foreign := &role.Role{CompanyID: "other-co", Title: "Intruder"}
	if err := roles.Create(ctx, foreign); err != nil {
		t.Fatalf("Create: %v", err)
	}
	rec = doJSON(t, srv, http.MethodPost, "/api/session/role", map[string]string{"role_id": foreign.ID})
	if rec.Code != http.StatusForbidden {
		t.Errorf("foreign role status = %d, want 403", rec.Code)
	}
}

func TestRunReadRecipe(t *testing.T) {
	srv, _, _ := setupServer(t)

	rec := doJSON(t, srv, http.MethodPost, "/api/run", map[string]any{"recipe_id": "company-brief"})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body)
	}

	var result runner.Result
	if err := json.NewDecoder(rec.Body).Decode(&result); err != nil {
		t.Fatalf("decoding: %v", err)
	}
	if !result.Success || result.PendingApproval {
		t.Errorf("result = %+v", result)
	}
	if result.Artifact == nil || result.Artifact.Type != artifact.TypeCompanyBrief {
		t.Errorf("artifact = %+v", result.Artifact)
	}
}

func TestRunUnknownRecipe(t *testing.T) {
	srv, _, _ := setupServer(t)

	rec := doJSON(t, srv, http.MethodPost, "/api/run", map[string]any{"recipe_id": "nope"})
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestApprovalFlowOverHTTP(t *testing.T) {
	srv, roles, engine := setupServer(t)
	ctx := context.Background()

	sess, err := engine.EnsureSession(ctx)
	if err != nil {
		t.Fatalf("EnsureSession: %v", err)
	}
	companyRoles, err := roles.ListByCompany(ctx, sess.CompanyID)
	if err != nil {
		t.Fatalf("ListByCompany: %v", err)
	}
	var ops, ceo *role.Role
	for _, r := range companyRoles {
		switch r.Title {
		case "Operations Manager":
			ops = r
		case "CEO":
			ceo = r
		}
	}

	if _, err := engine.SwitchRole(ctx, ops.ID); err != nil {
		t.Fatalf("SwitchRole: %v", err)
	}

	rec := doJSON(t, srv, http.MethodPost, "/api/run", map[string]any{"recipe_id": "weekly-priorities"})
	if rec.Code != http.StatusOK {
		t.Fatalf("run status = %d, body = %s", rec.Code, rec.Body)
	}
	var pending runner.Result
	if err := json.NewDecoder(rec.Body).Decode(&pending); err != nil {
		t.Fatalf("decoding: %v", err)
	}
	if !pending.PendingApproval {
		t.Fatalf("result = %+v, want pending approval", pending)
	}

	// Approval by a non-designated role is forbidden.
	rec = doJSON(t, srv, http.MethodPost, "/api/plans/"+pending.Artifact.ID+"/approve",
		map[string]string{"approver_role_id": ops.ID})
	if rec.Code != http.StatusForbidden {
		t.Errorf("self-approval status = %d, want 403", rec.Code)
	}

	rec = doJSON(t, srv, http.MethodPost, "/api/plans/"+pending.Artifact.ID+"/approve",
		map[string]string{"approver_role_id": ceo.ID})
	if rec.Code != http.StatusOK {
		t.Fatalf("approve status = %d, body = %s", rec.Code, rec.Body)
	}
	var result runner.Result
	if err := json.NewDecoder(rec.Body).Decode(&result); err != nil {
		t.Fatalf("decoding: %v", err)
	}
	if !result.Success {
		t.Errorf("approved run failed: %s", result.Error)
	}
}
