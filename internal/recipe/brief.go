package recipe

import (
	"context"
	"fmt"
	"strings"

	"github.com/ziadkadry99/bizmate/internal/artifact"
	"github.com/ziadkadry99/bizmate/internal/contextengine"
	"github.com/ziadkadry99/bizmate/internal/permission"
)

// briefPayload is the payload of a company-brief artifact.
type briefPayload struct {
	Content string `json:"content"`
}

// CompanyBrief returns the read-only recipe that renders the current
// company state as a text brief. No LLM call, no approval, ever.
func CompanyBrief() *Definition {
	return &Definition{
		ID:             "company-brief",
		Title:          "Company Brief",
		Description:    "Render the current company profile, goals, and constraints as a brief.",
		Classification: permission.ClassificationRead,
		Run:            runCompanyBrief,
	}
}

func runCompanyBrief(ctx context.Context, rc *contextengine.RecipeContext, inputs map[string]string, deps *Deps) (*Output, error) {
	comp := rc.Company

	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", comp.Name)
	if comp.Description != "" {
		fmt.Fprintf(&b, "%s\n\n", comp.Description)
	}
	if comp.BusinessModel != "" {
		fmt.Fprintf(&b, "Business model: %s\n", comp.BusinessModel)
	}
	if len(comp.Goals) > 0 {
		b.WriteString("\nGoals:\n")
		for _, g := range comp.Goals {
			fmt.Fprintf(&b, "- %s\n", g)
		}
	}
	if len(comp.Constraints) > 0 {
		b.WriteString("\nConstraints:\n")
		for _, c := range comp.Constraints {
			fmt.Fprintf(&b, "- %s\n", c)
		}
	}
	if len(comp.Systems) > 0 {
		b.WriteString("\nConnected systems:\n")
		for _, s := range comp.Systems {
			fmt.Fprintf(&b, "- %s\n", s)
		}
	}
	if rc.Session.CurrentFocus != "" {
		fmt.Fprintf(&b, "\nCurrent focus: %s\n", rc.Session.CurrentFocus)
	}

	art := &artifact.Artifact{
		CompanyID:   comp.ID,
		Type:        artifact.TypeCompanyBrief,
		CreatedBy:   rc.Session.ActingAs,
		ActedAsRole: rc.Role.ID,
	}
	if err := art.SetData(briefPayload{Content: b.String()}); err != nil {
		return nil, err
	}
	if err := deps.Artifacts.Save(ctx, art); err != nil {
		return nil, err
	}

	suggestions := []Suggestion{
		{RecipeID: "weekly-priorities", Reason: "Plan the week against these goals", Confidence: 0.6},
	}
	if comp.ContextSummary == "" {
		suggestions = append(suggestions, Suggestion{
			RecipeID:   "business-snapshot",
			Reason:     "No business snapshot yet; grounding will be thin until one exists",
			Confidence: 0.85,
		})
	}

	return &Output{Artifact: art, Suggestions: suggestions}, nil
}
