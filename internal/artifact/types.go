package artifact

import (
	"encoding/json"
	"fmt"
	"time"
)

// Known artifact types. The payload is a tagged union keyed by Type;
// unknown types keep an opaque JSON payload.
const (
	TypeBusinessSnapshot = "business-snapshot"
	TypePlan             = "plan"
	TypeCompanyBrief     = "company-brief"
)

// Artifact is the generic envelope every recipe output is persisted in.
// Version is scoped to (company, type): it starts at 1 and strictly
// increases by 1 per new artifact of that type.
type Artifact struct {
	ID          string          `json:"id"`
	CompanyID   string          `json:"company_id"`
	Type        string          `json:"type"`
	Version     int             `json:"version"`
	Data        json.RawMessage `json:"data"`
	CreatedBy   string          `json:"created_by"`
	ActedAsRole string          `json:"acted_as_role"`
	CreatedAt   time.Time       `json:"created_at"`
}

// SetData marshals a typed payload into the envelope.
func (a *Artifact) SetData(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshalling artifact payload: %w", err)
	}
	a.Data = data
	return nil
}

// Snapshot decodes the payload of a business-snapshot artifact.
func (a *Artifact) Snapshot() (*BusinessSnapshot, error) {
	if a.Type != TypeBusinessSnapshot {
		return nil, fmt.Errorf("artifact %s is %q, not a business snapshot", a.ID, a.Type)
	}
	var snap BusinessSnapshot
	if err := json.Unmarshal(a.Data, &snap); err != nil {
		return nil, fmt.Errorf("decoding business snapshot: %w", err)
	}
	return &snap, nil
}

// Plan decodes the payload of a plan artifact.
func (a *Artifact) Plan() (*Plan, error) {
	if a.Type != TypePlan {
		return nil, fmt.Errorf("artifact %s is %q, not a plan", a.ID, a.Type)
	}
	var p Plan
	if err := json.Unmarshal(a.Data, &p); err != nil {
		return nil, fmt.Errorf("decoding plan: %w", err)
	}
	return &p, nil
}

// BusinessSnapshot is the payload of a business-snapshot artifact:
// the raw operator inputs plus the synthesized fields.
type BusinessSnapshot struct {
	Inputs map[string]string `json:"inputs"`

	OneLiner            string   `json:"one_liner"`
	BusinessModel       string   `json:"business_model"`
	ValueProposition    string   `json:"value_proposition"`
	RevenueModel        string   `json:"revenue_model"`
	CostStructure       string   `json:"cost_structure"`
	StrategicPriorities []string `json:"strategic_priorities"`
	IdentifiedRisks     []string `json:"identified_risks"`
	RecommendedFocus    string   `json:"recommended_focus"`

	ContextSummary string `json:"context_summary"`
}
