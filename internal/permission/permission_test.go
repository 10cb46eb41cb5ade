package permission

import (
	"testing"

	"github.com/ziadkadry99/bizmate/internal/role"
)

func makeRole(id string, scopes []role.DecisionScope, allowed, approval []string) *role.Role {
	return &role.Role{
		ID:                     id,
		CompanyID:              "co-1",
		Title:                  id,
		DecisionScope:          scopes,
		RecipesAllowed:         allowed,
		RecipesRequireApproval: approval,
	}
}

func TestCanRunRecipe(t *testing.T) {
	tests := []struct {
		name    string
		allowed []string
		recipe  string
		want    bool
	}{
		{"wildcard grants everything", []string{role.Wildcard}, "business-snapshot", true},
		{"exact match", []string{"company-brief"}, "company-brief", true},
		{"no grant", []string{"company-brief"}, "business-snapshot", false},
		{"glob grant", []string{"weekly-*"}, "weekly-priorities", true},
		{"glob non-match", []string{"weekly-*"}, "company-brief", false},
		{"empty grants", nil, "company-brief", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := makeRole("r", nil, tt.allowed, nil)
			if got := CanRunRecipe(r, tt.recipe); got != tt.want {
				t.Errorf("CanRunRecipe = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestReadsNeverRequireApproval(t *testing.T) {
	acting := makeRole("ops", []role.DecisionScope{role.ScopeProcess}, []string{role.Wildcard}, []string{role.Wildcard})

	res := ResolveApprover(acting, nil, "company-brief", ClassificationRead)
	if res.Required {
		t.Error("read recipe required approval")
	}
}

func TestNoApprovalGrantMeansNoApproval(t *testing.T) {
	acting := makeRole("ceo", []role.DecisionScope{role.ScopeStrategy}, []string{role.Wildcard}, nil)

	res := ResolveApprover(acting, nil, "weekly-priorities", ClassificationExecute)
	if res.Required {
		t.Error("run without an approval grant required approval")
	}
}

func TestStrategyScopeSelfApproves(t *testing.T) {
	acting := makeRole("ceo", []role.DecisionScope{role.ScopeStrategy}, []string{role.Wildcard}, []string{role.Wildcard})
	other := makeRole("ops", []role.DecisionScope{role.ScopeProcess}, []string{role.Wildcard}, nil)

	res := ResolveApprover(acting, []*role.Role{acting, other}, "weekly-priorities", ClassificationExecute)
	if !res.Required {
		t.Fatal("approval not required")
	}
	if !res.CanSelfApprove {
		t.Error("strategy scope cannot self-approve")
	}
	if len(res.ApproverRoleIDs) != 1 || res.ApproverRoleIDs[0] != "ceo" {
		t.Errorf("ApproverRoleIDs = %v, want [ceo]", res.ApproverRoleIDs)
	}
}

func TestApproversHaveAuthorityActorLacks(t *testing.T) {
	acting := makeRole("ops", []role.DecisionScope{role.ScopeProcess, role.ScopeVendors}, []string{role.Wildcard}, []string{role.Wildcard})
	ceo := makeRole("ceo", []role.DecisionScope{role.ScopeStrategy}, []string{role.Wildcard}, nil)
	builder := makeRole("builder", []role.DecisionScope{role.ScopeTechnical, role.ScopeProcess}, []string{role.Wildcard}, nil)
	peer := makeRole("peer", []role.DecisionScope{role.ScopeProcess}, []string{role.Wildcard}, nil)

	res := ResolveApprover(acting, []*role.Role{acting, ceo, builder, peer}, "weekly-priorities", ClassificationWrite)
	if !res.Required {
		t.Fatal("approval not required")
	}
	if res.CanSelfApprove {
		t.Error("non-strategy role can self-approve")
	}

	// ceo has strategy; builder has technical which ops lacks; peer has
	// nothing ops lacks.
	if !res.CanApprove("ceo") {
		t.Error("ceo not an approver")
	}
	if !res.CanApprove("builder") {
		t.Error("builder not an approver")
	}
	if res.CanApprove("peer") {
		t.Error("peer with no extra authority is an approver")
	}
	if res.CanApprove("ops") {
		t.Error("actor is its own approver without strategy scope")
	}
}

func TestOtherCompanyRolesIgnored(t *testing.T) {
	acting := makeRole("ops", []role.DecisionScope{role.ScopeProcess}, []string{role.Wildcard}, []string{role.Wildcard})
	foreign := makeRole("foreign-ceo", []role.DecisionScope{role.ScopeStrategy}, []string{role.Wildcard}, nil)
	foreign.CompanyID = "co-2"

	res := ResolveApprover(acting, []*role.Role{acting, foreign}, "weekly-priorities", ClassificationWrite)
	if res.CanApprove("foreign-ceo") {
		t.Error("role from another company is an approver")
	}
	if len(res.ApproverRoleIDs) != 0 {
		t.Errorf("ApproverRoleIDs = %v, want empty", res.ApproverRoleIDs)
	}
}
