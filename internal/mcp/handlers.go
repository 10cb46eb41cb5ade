package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/ziadkadry99/bizmate/internal/artifact"
	"github.com/ziadkadry99/bizmate/internal/changelog"
	"github.com/ziadkadry99/bizmate/internal/errs"
	"github.com/ziadkadry99/bizmate/internal/runner"
)

// handleListRecipes lists the registry contents.
func (s *Server) handleListRecipes(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var sb strings.Builder
	for _, def := range s.registry.List() {
		sb.WriteString(fmt.Sprintf("%s — %s\n", def.ID, def.Title))
		sb.WriteString(fmt.Sprintf("  classification: %s\n", def.Classification))
		if len(def.RequiredInputs) > 0 {
			sb.WriteString(fmt.Sprintf("  required inputs: %s\n", strings.Join(def.RequiredInputs, ", ")))
		}
		sb.WriteString(fmt.Sprintf("  %s\n", def.Description))
	}
	return mcp.NewToolResultText(sb.String()), nil
}

// handleRunRecipe runs a recipe through the full permission and
// approval pipeline.
func (s *Server) handleRunRecipe(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	recipeID, err := request.RequireString("recipe_id")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: recipe_id"), nil
	}

	inputs := map[string]string{}
	if raw, ok := request.GetArguments()["inputs"].(map[string]any); ok {
		for k, v := range raw {
			inputs[k] = fmt.Sprintf("%v", v)
		}
	}

	result, err := s.runner.Run(ctx, recipeID, inputs, runner.Options{})
	if err != nil {
		if errs.IsNotFound(err) {
			return mcp.NewToolResultError(fmt.Sprintf("unknown recipe %q", recipeID)), nil
		}
		return mcp.NewToolResultError(fmt.Sprintf("run failed: %v", err)), nil
	}

	return mcp.NewToolResultText(formatResult(result)), nil
}

// handleGetCompany returns the company profile as JSON.
func (s *Server) handleGetCompany(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if _, err := s.engine.EnsureSession(ctx); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("session bootstrap failed: %v", err)), nil
	}
	comp, err := s.companies.GetAny(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("loading company: %v", err)), nil
	}
	return jsonResult(comp)
}

// handleListRoles lists the company's roles.
func (s *Server) handleListRoles(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sess, err := s.engine.EnsureSession(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("session bootstrap failed: %v", err)), nil
	}
	roles, err := s.roles.ListByCompany(ctx, sess.CompanyID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("listing roles: %v", err)), nil
	}

	var sb strings.Builder
	for _, r := range roles {
		acting := ""
		if r.ID == sess.ActingAs {
			acting = " (acting)"
		}
		sb.WriteString(fmt.Sprintf("%s — %s%s\n", r.ID, r.Title, acting))
		if len(r.DecisionScope) > 0 {
			scopes := make([]string, len(r.DecisionScope))
			for i, sc := range r.DecisionScope {
				scopes[i] = string(sc)
			}
			sb.WriteString(fmt.Sprintf("  decision scope: %s\n", strings.Join(scopes, ", ")))
		}
		if len(r.RecipesAllowed) > 0 {
			sb.WriteString(fmt.Sprintf("  allowed recipes: %s\n", strings.Join(r.RecipesAllowed, ", ")))
		}
	}
	return mcp.NewToolResultText(sb.String()), nil
}

// handleSwitchRole changes the session's acting role.
func (s *Server) handleSwitchRole(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	roleID, err := request.RequireString("role_id")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: role_id"), nil
	}

	sess, err := s.engine.SwitchRole(ctx, roleID)
	if err != nil {
		switch {
		case errs.IsNotFound(err):
			return mcp.NewToolResultError(fmt.Sprintf("no role with id %q", roleID)), nil
		case errs.IsPermission(err):
			return mcp.NewToolResultError(err.Error()), nil
		}
		return mcp.NewToolResultError(fmt.Sprintf("switching role: %v", err)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Now acting as role %s.", sess.ActingAs)), nil
}

// handleSetFocus updates the session focus.
func (s *Server) handleSetFocus(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	focus, err := request.RequireString("focus")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: focus"), nil
	}
	if _, err := s.engine.SetFocus(ctx, focus); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("setting focus: %v", err)), nil
	}
	return mcp.NewToolResultText("Focus updated."), nil
}

// handleGetArtifact fetches an artifact by id or the latest of a type.
func (s *Server) handleGetArtifact(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := request.GetString("id", "")
	typ := request.GetString("type", "")
	if id == "" && typ == "" {
		return mcp.NewToolResultError("either id or type is required"), nil
	}

	var (
		art *artifact.Artifact
		err error
	)
	if id != "" {
		art, err = s.artifacts.GetByID(ctx, id)
	} else {
		sess, serr := s.engine.EnsureSession(ctx)
		if serr != nil {
			return mcp.NewToolResultError(fmt.Sprintf("session bootstrap failed: %v", serr)), nil
		}
		art, err = s.artifacts.LatestByType(ctx, sess.CompanyID, typ)
	}
	if err != nil {
		if errs.IsNotFound(err) {
			return mcp.NewToolResultError("no matching artifact found"), nil
		}
		return mcp.NewToolResultError(fmt.Sprintf("loading artifact: %v", err)), nil
	}
	return jsonResult(art)
}

// handleApprovePlan approves and executes a pending plan.
func (s *Server) handleApprovePlan(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	planID, err := request.RequireString("plan_id")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: plan_id"), nil
	}
	approverID, err := request.RequireString("approver_role_id")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: approver_role_id"), nil
	}

	result, err := s.runner.Approve(ctx, planID, approverID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("approval failed: %v", err)), nil
	}
	return mcp.NewToolResultText(formatResult(result)), nil
}

// handleRejectPlan rejects a pending plan.
func (s *Server) handleRejectPlan(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	planID, err := request.RequireString("plan_id")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: plan_id"), nil
	}
	approverID, err := request.RequireString("approver_role_id")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: approver_role_id"), nil
	}
	reason := request.GetString("reason", "")

	if err := s.runner.Reject(ctx, planID, approverID, reason); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("rejection failed: %v", err)), nil
	}
	return mcp.NewToolResultText("Plan rejected."), nil
}

// handleQueryChangelog queries the audit trail.
func (s *Server) handleQueryChangelog(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	limit := request.GetInt("limit", 20)
	if limit <= 0 {
		limit = 20
	}

	entries, err := s.changes.Query(ctx, changelog.QueryFilter{
		EntityType: changelog.EntityType(request.GetString("entity_type", "")),
		EntityID:   request.GetString("entity_id", ""),
		Action:     changelog.Action(request.GetString("action", "")),
		Limit:      limit,
	})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("querying change log: %v", err)), nil
	}
	if len(entries) == 0 {
		return mcp.NewToolResultText("No change log entries match."), nil
	}

	var sb strings.Builder
	for _, e := range entries {
		sb.WriteString(fmt.Sprintf("%s  %s %s/%s by %s\n", e.CreatedAt.Format("2006-01-02 15:04:05"), e.Action, e.EntityType, e.EntityID, e.ActorID))
		if e.Diff != "" && e.Diff != "{}" {
			sb.WriteString(fmt.Sprintf("  %s\n", e.Diff))
		}
	}
	return mcp.NewToolResultText(sb.String()), nil
}

// formatResult renders a runner result as agent-readable text.
func formatResult(result *runner.Result) string {
	var sb strings.Builder

	switch {
	case result.PendingApproval:
		sb.WriteString("Approval required. A plan was created and is awaiting a decision.\n")
	case result.Success:
		sb.WriteString("Recipe completed.\n")
	default:
		sb.WriteString(fmt.Sprintf("Recipe failed: %s\n", result.Error))
	}

	if result.Artifact != nil {
		sb.WriteString(fmt.Sprintf("\nArtifact %s (type %s, version %d):\n", result.Artifact.ID, result.Artifact.Type, result.Artifact.Version))
		if pretty, err := json.MarshalIndent(json.RawMessage(result.Artifact.Data), "", "  "); err == nil {
			sb.Write(pretty)
			sb.WriteString("\n")
		}
	}

	if len(result.Suggestions) > 0 {
		sb.WriteString("\nSuggested next steps:\n")
		for _, sug := range result.Suggestions {
			sb.WriteString(fmt.Sprintf("- %s (%.0f%%): %s\n", sug.RecipeID, sug.Confidence*100, sug.Reason))
		}
	}
	return sb.String()
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	payload, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("encoding result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(payload)), nil
}
