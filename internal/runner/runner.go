// Package runner orchestrates a single recipe execution: context
// assembly, the approval gate, body invocation, and suggestion ranking.
package runner

import (
	"context"
	"fmt"
	"time"

	"github.com/ziadkadry99/bizmate/internal/artifact"
	"github.com/ziadkadry99/bizmate/internal/contextengine"
	"github.com/ziadkadry99/bizmate/internal/errs"
	"github.com/ziadkadry99/bizmate/internal/permission"
	"github.com/ziadkadry99/bizmate/internal/recipe"
	"github.com/ziadkadry99/bizmate/internal/role"
)

// Result is the outcome of one runner invocation. Failures carry a
// single human-readable error string; no partial artifacts are ever
// returned as successful.
type Result struct {
	Success         bool                `json:"success"`
	Error           string              `json:"error,omitempty"`
	Artifact        *artifact.Artifact  `json:"artifact,omitempty"`
	Suggestions     []recipe.Suggestion `json:"suggestions,omitempty"`
	PendingApproval bool                `json:"pending_approval,omitempty"`
}

// Options tunes a single run.
type Options struct {
	// BypassApproval skips the approval gate. Testing hook; approved
	// plan execution bypasses the gate internally instead.
	BypassApproval bool
}

// Runner executes recipes against the engine's stores.
type Runner struct {
	registry *recipe.Registry
	engine   *contextengine.Engine
	roles    *role.Store
	deps     *recipe.Deps
}

// New creates a Runner.
func New(registry *recipe.Registry, engine *contextengine.Engine, roles *role.Store, deps *recipe.Deps) *Runner {
	return &Runner{registry: registry, engine: engine, roles: roles, deps: deps}
}

// Run executes a recipe end to end. Unknown recipe ids and missing
// referenced state return an error; permission denials and recipe body
// failures are reported in the Result.
func (r *Runner) Run(ctx context.Context, recipeID string, inputs map[string]string, opts Options) (*Result, error) {
	def, err := r.registry.Get(recipeID)
	if err != nil {
		return nil, err
	}

	rc, err := r.engine.BuildContext(ctx, recipeID)
	if err != nil {
		if errs.IsPermission(err) {
			return &Result{Success: false, Error: err.Error()}, nil
		}
		return nil, err
	}

	if err := def.ValidateInputs(inputs); err != nil {
		return &Result{Success: false, Error: err.Error()}, nil
	}

	if !opts.BypassApproval && def.Classification != permission.ClassificationRead {
		companyRoles, err := r.roles.ListByCompany(ctx, rc.Company.ID)
		if err != nil {
			return nil, err
		}
		resolution := permission.ResolveApprover(rc.Role, companyRoles, recipeID, def.Classification)
		if resolution.Required && !resolution.CanSelfApprove {
			return r.createPendingPlan(ctx, def, rc, inputs, resolution)
		}
	}

	return r.invoke(ctx, def, rc, inputs), nil
}

// invoke runs the recipe body, capturing failures into the result shape.
func (r *Runner) invoke(ctx context.Context, def *recipe.Definition, rc *contextengine.RecipeContext, inputs map[string]string) *Result {
	out, err := def.Run(ctx, rc, inputs, r.deps)
	if err != nil {
		return &Result{Success: false, Error: err.Error()}
	}
	return &Result{
		Success:     true,
		Artifact:    out.Artifact,
		Suggestions: recipe.RankSuggestions(out.Suggestions),
	}
}

// createPendingPlan persists a pending plan artifact wrapping the
// requested run instead of executing the recipe body.
func (r *Runner) createPendingPlan(ctx context.Context, def *recipe.Definition, rc *contextengine.RecipeContext, inputs map[string]string, resolution permission.ApprovalResolution) (*Result, error) {
	plan := &artifact.Plan{
		RecipeID: def.ID,
		Status:   artifact.StatusPending,
		Inputs:   inputs,
		Body: artifact.PlanBody{
			Summary: fmt.Sprintf("Run recipe %q as %s", def.ID, rc.Role.Title),
			Steps: []string{
				fmt.Sprintf("Execute recipe %q with the submitted inputs", def.ID),
				"Persist the resulting artifact",
			},
			Impact:     []string{fmt.Sprintf("%s-classified change to company state", def.Classification)},
			Reversible: def.Classification == permission.ClassificationWrite,
		},
		Approval: artifact.ApprovalRecord{
			ApproverRoles: resolution.ApproverRoleIDs,
			RequestedAt:   time.Now().UTC(),
		},
	}

	art := &artifact.Artifact{
		CompanyID:   rc.Company.ID,
		Type:        artifact.TypePlan,
		CreatedBy:   rc.Session.ActingAs,
		ActedAsRole: rc.Role.ID,
	}
	if err := art.SetData(plan); err != nil {
		return nil, err
	}
	if err := r.deps.Artifacts.Save(ctx, art); err != nil {
		return nil, err
	}

	return &Result{
		Success:         true,
		Artifact:        art,
		PendingApproval: true,
		Suggestions: []recipe.Suggestion{{
			RecipeID:   def.ID,
			Reason:     "Ask a designated approver to review this plan",
			Confidence: 0.95,
		}},
	}, nil
}
