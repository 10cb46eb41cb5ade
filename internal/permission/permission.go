// Package permission holds the pure decision logic for recipe
// authority: whether a role may run a recipe, whether a run needs
// approval, and who may give it. Nothing here touches storage or the
// submitted plan — approvers are computed from role policy alone, so a
// recipe's own output can never name its approver.
package permission

import (
	"github.com/ziadkadry99/bizmate/internal/role"
)

// Classification describes a recipe's effect class.
type Classification string

const (
	ClassificationRead    Classification = "read"
	ClassificationWrite   Classification = "write"
	ClassificationExecute Classification = "execute"
)

// ApprovalResolution is the policy-computed answer to "does this run
// need approval, and who may give it."
type ApprovalResolution struct {
	Required       bool
	CanSelfApprove bool
	// ApproverRoleIDs lists the roles that may approve. When the actor
	// can self-approve it contains only the actor's own role.
	ApproverRoleIDs []string
}

// CanRunRecipe reports whether the role's grants cover the recipe id.
func CanRunRecipe(r *role.Role, recipeID string) bool {
	return r.AllowsRecipe(recipeID)
}

// ResolveApprover computes the approval policy for the acting role
// running the given recipe. companyRoles must be the full role list of
// the acting role's company; roles of other companies are ignored.
func ResolveApprover(acting *role.Role, companyRoles []*role.Role, recipeID string, class Classification) ApprovalResolution {
	// Reads never require approval, whatever the role's grants say.
	if class == ClassificationRead {
		return ApprovalResolution{}
	}

	if !acting.NeedsApproval(recipeID) {
		return ApprovalResolution{}
	}

	// Strategy authority may self-approve.
	if acting.HasScope(role.ScopeStrategy) {
		return ApprovalResolution{
			Required:        true,
			CanSelfApprove:  true,
			ApproverRoleIDs: []string{acting.ID},
		}
	}

	var approvers []string
	for _, r := range companyRoles {
		if r.ID == acting.ID || r.CompanyID != acting.CompanyID {
			continue
		}
		if r.HasScope(role.ScopeStrategy) || len(r.ScopesNotIn(acting)) > 0 {
			approvers = append(approvers, r.ID)
		}
	}

	return ApprovalResolution{
		Required:        true,
		ApproverRoleIDs: approvers,
	}
}

// CanApprove reports whether the given role id is a designated approver
// under the resolution.
func (r ApprovalResolution) CanApprove(roleID string) bool {
	for _, id := range r.ApproverRoleIDs {
		if id == roleID {
			return true
		}
	}
	return false
}
