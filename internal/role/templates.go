package role

// Templates returns the four built-in roles for a company. They are
// seeded once per company; if any role already exists for the company
// the seed is skipped entirely.
func Templates(companyID string) []*Role {
	return []*Role{
		{
			CompanyID:        companyID,
			Title:            "CEO",
			Responsibilities: "Owns strategy, fundraising, and final calls on direction.",
			DecisionScope: []DecisionScope{
				ScopeStrategy, ScopeProcess, ScopeVendors,
				ScopeHiring, ScopeTechnical, ScopeFinancial,
			},
			Visibility:             []Visibility{VisibilityAll},
			RecipesAllowed:         []string{Wildcard},
			RecipesRequireApproval: []string{},
			LanguageMode:           LangExecutive,
		},
		{
			CompanyID:        companyID,
			Title:            "Operations Manager",
			Responsibilities: "Runs day-to-day operations, vendors, and internal process.",
			DecisionScope:    []DecisionScope{ScopeProcess, ScopeVendors},
			Visibility:       []Visibility{VisibilityOps, VisibilitySales, VisibilitySupport},
			RecipesAllowed:   []string{Wildcard},
			// Anything that takes effect outside a read needs sign-off.
			RecipesRequireApproval: []string{Wildcard},
			LanguageMode:           LangOperator,
		},
		{
			CompanyID:        companyID,
			Title:            "Technical Builder",
			Responsibilities: "Builds and maintains the product and internal tooling.",
			DecisionScope:    []DecisionScope{ScopeTechnical, ScopeProcess},
			Visibility:       []Visibility{VisibilityEngineering, VisibilityOps},
			RecipesAllowed:   []string{Wildcard},
			RecipesRequireApproval: []string{Wildcard},
			LanguageMode:           LangBuilder,
		},
		{
			CompanyID:        companyID,
			Title:            "External Consultant",
			Responsibilities: "Advises on strategy and process without execution authority.",
			DecisionScope:    []DecisionScope{},
			Visibility:       []Visibility{VisibilityOps},
			RecipesAllowed:   []string{"company-brief", "business-snapshot"},
			RecipesRequireApproval: []string{Wildcard},
			LanguageMode:           LangOperator,
		},
	}
}
