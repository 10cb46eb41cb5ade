package artifact

import (
	"fmt"
	"time"
)

// PlanStatus is a plan's lifecycle state.
type PlanStatus string

const (
	StatusDraft     PlanStatus = "draft"
	StatusPending   PlanStatus = "pending"
	StatusApproved  PlanStatus = "approved"
	StatusRejected  PlanStatus = "rejected"
	StatusCompleted PlanStatus = "completed"
	StatusFailed    PlanStatus = "failed"
)

// transitions is the full set of legal status moves. rejected,
// completed, and failed are terminal.
var transitions = map[PlanStatus][]PlanStatus{
	StatusDraft:    {StatusPending},
	StatusPending:  {StatusApproved, StatusRejected, StatusDraft},
	StatusApproved: {StatusCompleted, StatusFailed},
}

// CanTransition reports whether moving from s to next is legal.
func (s PlanStatus) CanTransition(next PlanStatus) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Plan is the payload of a plan artifact: a proposed-but-not-yet-
// executed recipe run awaiting approval.
type Plan struct {
	RecipeID string            `json:"recipe_id"`
	Status   PlanStatus        `json:"status"`
	Inputs   map[string]string `json:"inputs"`

	Body      PlanBody         `json:"body"`
	Approval  ApprovalRecord   `json:"approval"`
	Execution *ExecutionRecord `json:"execution,omitempty"`
}

// PlanBody describes what the plan would do.
type PlanBody struct {
	Summary    string   `json:"summary"`
	Steps      []string `json:"steps"`
	Impact     []string `json:"impact"`
	Reversible bool     `json:"reversible"`
}

// ApprovalRecord tracks who may approve the plan and what they decided.
// ApproverRoles is computed by the permission resolver, never taken
// from the plan body itself.
type ApprovalRecord struct {
	ApproverRoles   []string   `json:"approver_roles"`
	RequestedAt     time.Time  `json:"requested_at"`
	DecidedAt       *time.Time `json:"decided_at,omitempty"`
	DecidedBy       string     `json:"decided_by,omitempty"`
	Decision        string     `json:"decision,omitempty"`
	RejectionReason string     `json:"rejection_reason,omitempty"`
}

// ExecutionRecord tracks the downstream run of an approved plan.
type ExecutionRecord struct {
	StartedAt time.Time  `json:"started_at"`
	EndedAt   *time.Time `json:"ended_at,omitempty"`
	Result    string     `json:"result,omitempty"`
	Error     string     `json:"error,omitempty"`
}

// Transition moves the plan to the next status, failing loudly on any
// move outside the lifecycle state machine.
func (p *Plan) Transition(next PlanStatus) error {
	if !p.Status.CanTransition(next) {
		return fmt.Errorf("illegal plan transition %q -> %q", p.Status, next)
	}
	p.Status = next
	return nil
}
