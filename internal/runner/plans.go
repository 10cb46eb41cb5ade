package runner

import (
	"context"
	"fmt"
	"time"

	"github.com/ziadkadry99/bizmate/internal/artifact"
	"github.com/ziadkadry99/bizmate/internal/errs"
	"github.com/ziadkadry99/bizmate/internal/permission"
	"github.com/ziadkadry99/bizmate/internal/role"
)

// loadPlan fetches a plan artifact and decodes its payload.
func (r *Runner) loadPlan(ctx context.Context, planArtifactID string) (*artifact.Artifact, *artifact.Plan, error) {
	art, err := r.deps.Artifacts.GetByID(ctx, planArtifactID)
	if err != nil {
		return nil, nil, err
	}
	plan, err := art.Plan()
	if err != nil {
		return nil, nil, err
	}
	return art, plan, nil
}

// resolveForPlan recomputes the approval policy for a stored plan. The
// policy depends only on the requester's role and the recipe
// classification, never on the plan body, so a synthesized plan cannot
// name its own approver.
func (r *Runner) resolveForPlan(ctx context.Context, art *artifact.Artifact, plan *artifact.Plan) (*role.Role, permission.ApprovalResolution, error) {
	def, err := r.registry.Get(plan.RecipeID)
	if err != nil {
		return nil, permission.ApprovalResolution{}, err
	}

	requester, err := r.roles.Get(ctx, art.ActedAsRole)
	if err != nil {
		return nil, permission.ApprovalResolution{}, err
	}

	companyRoles, err := r.roles.ListByCompany(ctx, art.CompanyID)
	if err != nil {
		return nil, permission.ApprovalResolution{}, err
	}

	resolution := permission.ResolveApprover(requester, companyRoles, plan.RecipeID, def.Classification)
	return requester, resolution, nil
}

// Approve records an approval decision by the given role and executes
// the plan's recipe. The approver must be designated by the recomputed
// policy.
func (r *Runner) Approve(ctx context.Context, planArtifactID, approverRoleID string) (*Result, error) {
	art, plan, err := r.loadPlan(ctx, planArtifactID)
	if err != nil {
		return nil, err
	}

	requester, resolution, err := r.resolveForPlan(ctx, art, plan)
	if err != nil {
		return nil, err
	}

	approver, err := r.roles.Get(ctx, approverRoleID)
	if err != nil {
		return nil, err
	}

	if !resolution.CanApprove(approverRoleID) {
		return nil, &errs.PermissionError{
			RoleTitle: approver.Title,
			RecipeID:  plan.RecipeID,
			Reason:    fmt.Sprintf("is not a designated approver for this plan (requested by %s)", requester.Title),
		}
	}

	if err := plan.Transition(artifact.StatusApproved); err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	plan.Approval.DecidedAt = &now
	plan.Approval.DecidedBy = approverRoleID
	plan.Approval.Decision = "approved"

	if err := art.SetData(plan); err != nil {
		return nil, err
	}
	if err := r.deps.Artifacts.Update(ctx, art, approverRoleID); err != nil {
		return nil, err
	}

	return r.executeApproved(ctx, art, plan)
}

// Reject records a rejection with a reason. Terminal for the plan.
func (r *Runner) Reject(ctx context.Context, planArtifactID, approverRoleID, reason string) error {
	art, plan, err := r.loadPlan(ctx, planArtifactID)
	if err != nil {
		return err
	}

	_, resolution, err := r.resolveForPlan(ctx, art, plan)
	if err != nil {
		return err
	}

	approver, err := r.roles.Get(ctx, approverRoleID)
	if err != nil {
		return err
	}

	if !resolution.CanApprove(approverRoleID) {
		return &errs.PermissionError{
			RoleTitle: approver.Title,
			RecipeID:  plan.RecipeID,
			Reason:    "is not a designated approver for this plan",
		}
	}

	if err := plan.Transition(artifact.StatusRejected); err != nil {
		return err
	}
	now := time.Now().UTC()
	plan.Approval.DecidedAt = &now
	plan.Approval.DecidedBy = approverRoleID
	plan.Approval.Decision = "rejected"
	plan.Approval.RejectionReason = reason

	if err := art.SetData(plan); err != nil {
		return err
	}
	return r.deps.Artifacts.Update(ctx, art, approverRoleID)
}

// Resubmit pulls a pending plan back to draft, applies edited inputs,
// and submits it again with a fresh approval request.
func (r *Runner) Resubmit(ctx context.Context, planArtifactID string, inputs map[string]string) error {
	art, plan, err := r.loadPlan(ctx, planArtifactID)
	if err != nil {
		return err
	}

	if err := plan.Transition(artifact.StatusDraft); err != nil {
		return err
	}
	if inputs != nil {
		plan.Inputs = inputs
	}
	if err := plan.Transition(artifact.StatusPending); err != nil {
		return err
	}
	plan.Approval.RequestedAt = time.Now().UTC()
	plan.Approval.DecidedAt = nil
	plan.Approval.DecidedBy = ""
	plan.Approval.Decision = ""
	plan.Approval.RejectionReason = ""

	if err := art.SetData(plan); err != nil {
		return err
	}
	return r.deps.Artifacts.Update(ctx, art, art.ActedAsRole)
}

// executeApproved runs the recipe body of an approved plan under the
// requester's role and records the execution outcome on the plan.
func (r *Runner) executeApproved(ctx context.Context, art *artifact.Artifact, plan *artifact.Plan) (*Result, error) {
	def, err := r.registry.Get(plan.RecipeID)
	if err != nil {
		return nil, err
	}

	rc, err := r.engine.ContextForRole(ctx, art.ActedAsRole)
	if err != nil {
		return nil, err
	}

	plan.Execution = &artifact.ExecutionRecord{StartedAt: time.Now().UTC()}

	result := r.invoke(ctx, def, rc, plan.Inputs)

	now := time.Now().UTC()
	plan.Execution.EndedAt = &now
	if result.Success {
		if result.Artifact != nil {
			plan.Execution.Result = fmt.Sprintf("artifact %s (%s v%d)", result.Artifact.ID, result.Artifact.Type, result.Artifact.Version)
		}
		if err := plan.Transition(artifact.StatusCompleted); err != nil {
			return nil, err
		}
	} else {
		plan.Execution.Error = result.Error
		if err := plan.Transition(artifact.StatusFailed); err != nil {
			return nil, err
		}
	}

	if err := art.SetData(plan); err != nil {
		return nil, err
	}
	if err := r.deps.Artifacts.Update(ctx, art, plan.Approval.DecidedBy); err != nil {
		return nil, err
	}
	return result, nil
}
