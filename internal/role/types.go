package role

import (
	"time"

	"github.com/bmatcuk/doublestar/v4"
)

// DecisionScope is an enumerated authority domain a role may decide in.
type DecisionScope string

const (
	ScopeStrategy  DecisionScope = "strategy"
	ScopeProcess   DecisionScope = "process"
	ScopeVendors   DecisionScope = "vendors"
	ScopeHiring    DecisionScope = "hiring"
	ScopeTechnical DecisionScope = "technical"
	ScopeFinancial DecisionScope = "financial"
)

// Visibility is an enumerated data scope a role may see.
type Visibility string

const (
	VisibilityAll         Visibility = "all"
	VisibilityOps         Visibility = "ops"
	VisibilitySales       Visibility = "sales"
	VisibilityEngineering Visibility = "engineering"
	VisibilitySupport     Visibility = "support"
	VisibilityFinance     Visibility = "finance"
)

// LanguageMode controls the register the assistant answers in.
type LanguageMode string

const (
	LangExecutive LanguageMode = "executive"
	LangOperator  LanguageMode = "operator"
	LangBuilder   LanguageMode = "builder"
)

// Wildcard grants every recipe when present in a grant list.
const Wildcard = "*"

// Role is a lens over the company belonging to exactly one Company.
type Role struct {
	ID                     string          `json:"id"`
	CompanyID              string          `json:"company_id"`
	Title                  string          `json:"title"`
	Responsibilities       string          `json:"responsibilities"`
	DecisionScope          []DecisionScope `json:"decision_scope"`
	Visibility             []Visibility    `json:"visibility"`
	RecipesAllowed         []string        `json:"recipes_allowed"`
	RecipesRequireApproval []string        `json:"recipes_require_approval"`
	LanguageMode           LanguageMode    `json:"language_mode"`
	IsCustom               bool            `json:"is_custom"`
	CreatedAt              time.Time       `json:"created_at"`
}

// HasScope reports whether the role holds the given authority domain.
func (r *Role) HasScope(scope DecisionScope) bool {
	for _, s := range r.DecisionScope {
		if s == scope {
			return true
		}
	}
	return false
}

// CanSee reports whether the role's visibility covers the given data scope.
func (r *Role) CanSee(v Visibility) bool {
	for _, have := range r.Visibility {
		if have == VisibilityAll || have == v {
			return true
		}
	}
	return false
}

// AllowsRecipe reports whether the role may run the given recipe id.
// Grants are exact ids, the wildcard, or glob patterns.
func (r *Role) AllowsRecipe(recipeID string) bool {
	return matchGrant(r.RecipesAllowed, recipeID)
}

// NeedsApproval reports whether the role's grants flag the recipe id as
// requiring approval.
func (r *Role) NeedsApproval(recipeID string) bool {
	return matchGrant(r.RecipesRequireApproval, recipeID)
}

// ScopesNotIn returns the authority domains this role holds that other lacks.
func (r *Role) ScopesNotIn(other *Role) []DecisionScope {
	var extra []DecisionScope
	for _, s := range r.DecisionScope {
		if !other.HasScope(s) {
			extra = append(extra, s)
		}
	}
	return extra
}

func matchGrant(grants []string, recipeID string) bool {
	for _, g := range grants {
		if g == Wildcard || g == recipeID {
			return true
		}
		if ok, err := doublestar.Match(g, recipeID); err == nil && ok {
			return true
		}
	}
	return false
}
