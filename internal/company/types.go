package company

import "time"

// Company is the singular source of truth for a deployment. v1 keeps
// exactly one row; recipes that own company-level fields mutate it, and
// it is never deleted.
type Company struct {
	ID             string         `json:"id"`
	Name           string         `json:"name"`
	Description    string         `json:"description"`
	BusinessModel  string         `json:"business_model"`
	Goals          []string       `json:"goals"`
	Constraints    []string       `json:"constraints"`
	Systems        []string       `json:"systems"`
	Metrics        map[string]any `json:"metrics"`
	ContextSummary string         `json:"context_summary"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
}
