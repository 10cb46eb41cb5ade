package mcp

import (
	"context"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

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

// echoCompleter returns the same content on every call.
type echoCompleter struct {
	content string
}

func (c *echoCompleter) Complete(_ context.Context, _ llm.CompletionRequest) (*llm.CompletionResponse, error) {
	return &llm.CompletionResponse{Content: c.content}, nil
}

func setupMCP(t *testing.T) *Server {
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
	registry := recipe.DefaultRegistry()

	deps := &recipe.Deps{
		Companies: companies,
		Artifacts: artifacts,
		Changes:   changes,
		Synth: synthesis.NewRepairer(
			&echoCompleter{content: `{"priorities": ["ship"], "rationale": "because"}`},
			synthesis.DefaultRetryPolicy,
		),
	}
	run := runner.New(registry, engine, roles, deps)

	return NewServer(companies, roles, artifacts, changes, engine, registry, run)
}

func textContent(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	if len(result.Content) == 0 {
		t.Fatal("result has no content")
	}
	tc, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("content is %T, want text", result.Content[0])
	}
	return tc.Text
}

func TestToolDefinitions(t *testing.T) {
	// Verify tool names and descriptions are populated.
	tests := []struct {
		name     string
		tool     mcp.Tool
		wantName string
	}{
		{"list_recipes", listRecipesTool, "list_recipes"},
		{"run_recipe", runRecipeTool, "run_recipe"},
		{"get_company", getCompanyTool, "get_company"},
		{"list_roles", listRolesTool, "list_roles"},
		{"switch_role", switchRoleTool, "switch_role"},
		{"set_focus", setFocusTool, "set_focus"},
		{"get_artifact", getArtifactTool, "get_artifact"},
		{"approve_plan", approvePlanTool, "approve_plan"},
		{"reject_plan", rejectPlanTool, "reject_plan"},
		{"query_changelog", queryChangelogTool, "query_changelog"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.tool.Name != tt.wantName {
				t.Errorf("tool name = %q, want %q", tt.tool.Name, tt.wantName)
			}
			if tt.tool.Description == "" {
				t.Error("tool description should not be empty")
			}
		})
	}
}

func TestNewServer(t *testing.T) {
	srv := setupMCP(t)

	if srv == nil {
		t.Fatal("NewServer returned nil")
	}
	if srv.mcp == nil {
		t.Fatal("MCP server not initialized")
	}
	if srv.engine == nil || srv.runner == nil || srv.registry == nil {
		t.Error("dependencies not set")
	}
}

func TestHandleListRecipes(t *testing.T) {
	srv := setupMCP(t)

	result, err := srv.handleListRecipes(context.Background(), mcp.CallToolRequest{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.IsError {
		t.Fatalf("unexpected tool error: %v", result.Content)
	}

	text := textContent(t, result)
	for _, id := range []string{"business-snapshot", "company-brief", "weekly-priorities"} {
		if !strings.Contains(text, id) {
			t.Errorf("listing does not mention %q:\n%s", id, text)
		}
	}
}

func TestHandleGetCompany(t *testing.T) {
	srv := setupMCP(t)

	result, err := srv.handleGetCompany(context.Background(), mcp.CallToolRequest{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.IsError {
		t.Fatalf("unexpected tool error: %v", result.Content)
	}
	if !strings.Contains(textContent(t, result), "Acme Anvils") {
		t.Error("company JSON missing bootstrapped name")
	}
}

func TestHandleRunRecipe(t *testing.T) {
	srv := setupMCP(t)
	ctx := context.Background()

	t.Run("read recipe", func(t *testing.T) {
		req := mcp.CallToolRequest{}
		req.Params.Arguments = map[string]any{
			"recipe_id": "company-brief",
		}

		result, err := srv.handleRunRecipe(ctx, req)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result.IsError {
			t.Fatalf("unexpected tool error: %v", result.Content)
		}
		if !strings.Contains(textContent(t, result), "Recipe completed.") {
			t.Errorf("result text = %q", textContent(t, result))
		}
	})

	t.Run("missing recipe_id", func(t *testing.T) {
		req := mcp.CallToolRequest{}
		req.Params.Arguments = map[string]any{}

		result, err := srv.handleRunRecipe(ctx, req)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !result.IsError {
			t.Error("expected error for missing recipe_id")
		}
	})

	t.Run("unknown recipe", func(t *testing.T) {
		req := mcp.CallToolRequest{}
		req.Params.Arguments = map[string]any{
			"recipe_id": "nope",
		}

		result, err := srv.handleRunRecipe(ctx, req)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !result.IsError {
			t.Error("expected error for unknown recipe")
		}
	})
}

func TestHandleSwitchRole(t *testing.T) {
	srv := setupMCP(t)
	ctx := context.Background()

	sess, err := srv.engine.EnsureSession(ctx)
	if err != nil {
		t.Fatalf("EnsureSession: %v", err)
	}
	roles, err := srv.roles.ListByCompany(ctx, sess.CompanyID)
	if err != nil {
		t.Fatalf("ListByCompany: %v", err)
	}
	var ops *role.Role
	for _, r := range roles {
		if r.Title == "Operations Manager" {
			ops = r
		}
	}

	t.Run("valid role", func(t *testing.T) {
		req := mcp.CallToolRequest{}
		req.Params.Arguments = map[string]any{
			"role_id": ops.ID,
		}

		result, err := srv.handleSwitchRole(ctx, req)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result.IsError {
			t.Fatalf("unexpected tool error: %v", result.Content)
		}
	})

	t.Run("unknown role", func(t *testing.T) {
		req := mcp.CallToolRequest{}
		req.Params.Arguments = map[string]any{
			"role_id": "missing",
		}

		result, err := srv.handleSwitchRole(ctx, req)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !result.IsError {
			t.Error("expected error for unknown role")
		}
	})
}

func TestHandleGetArtifact(t *testing.T) {
	srv := setupMCP(t)
	ctx := context.Background()

	t.Run("no id or type", func(t *testing.T) {
		req := mcp.CallToolRequest{}
		req.Params.Arguments = map[string]any{}

		result, err := srv.handleGetArtifact(ctx, req)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !result.IsError {
			t.Error("expected error when neither id nor type given")
		}
	})

	t.Run("latest by type after run", func(t *testing.T) {
		req := mcp.CallToolRequest{}
		req.Params.Arguments = map[string]any{
			"recipe_id": "company-brief",
		}
		if _, err := srv.handleRunRecipe(ctx, req); err != nil {
			t.Fatalf("running recipe: %v", err)
		}

		req = mcp.CallToolRequest{}
		req.Params.Arguments = map[string]any{
			"type": artifact.TypeCompanyBrief,
		}

		result, err := srv.handleGetArtifact(ctx, req)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result.IsError {
			t.Fatalf("unexpected tool error: %v", result.Content)
		}
		if !strings.Contains(textContent(t, result), artifact.TypeCompanyBrief) {
			t.Error("artifact JSON missing type")
		}
	})

	t.Run("missing type", func(t *testing.T) {
		req := mcp.CallToolRequest{}
		req.Params.Arguments = map[string]any{
			"type": "plan",
		}

		result, err := srv.handleGetArtifact(ctx, req)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !result.IsError {
			t.Error("expected error when no artifact of type exists")
		}
	})
}
