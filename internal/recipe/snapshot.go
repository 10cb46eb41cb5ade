package recipe

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ziadkadry99/bizmate/internal/artifact"
	"github.com/ziadkadry99/bizmate/internal/changelog"
	"github.com/ziadkadry99/bizmate/internal/contextengine"
	"github.com/ziadkadry99/bizmate/internal/llm"
	"github.com/ziadkadry99/bizmate/internal/permission"
	"github.com/ziadkadry99/bizmate/internal/synthesis"
)

// snapshotSchema is the strict output contract for the snapshot
// synthesis call.
var snapshotSchema = synthesis.ObjectSchema{
	Name: "business_snapshot",
	Fields: map[string]synthesis.FieldSpec{
		"one_liner":            {Type: synthesis.FieldString, Required: true, MaxLen: 200},
		"business_model":       {Type: synthesis.FieldString, Required: true, MaxLen: 500},
		"value_proposition":    {Type: synthesis.FieldString, Required: true, MaxLen: 500},
		"revenue_model":        {Type: synthesis.FieldString, Required: true, MaxLen: 500},
		"cost_structure":       {Type: synthesis.FieldString, Required: true, MaxLen: 500},
		"strategic_priorities": {Type: synthesis.FieldStringArray, Required: true, MaxItems: 3},
		"identified_risks":     {Type: synthesis.FieldStringArray, Required: true, MaxItems: 3},
		"recommended_focus":    {Type: synthesis.FieldString, Required: true, MaxLen: 500},
	},
}

// BusinessSnapshot returns the recipe that synthesizes the canonical
// company profile from operator answers and refreshes the company's
// context summary.
func BusinessSnapshot() *Definition {
	return &Definition{
		ID:             "business-snapshot",
		Title:          "Business Snapshot",
		Description:    "Synthesize a structured snapshot of the business and refresh the grounding summary.",
		Classification: permission.ClassificationWrite,
		RequiredInputs: []string{
			"company_name", "user_role", "business_description",
			"products_services", "current_goals",
		},
		Run: runBusinessSnapshot,
	}
}

func runBusinessSnapshot(ctx context.Context, rc *contextengine.RecipeContext, inputs map[string]string, deps *Deps) (*Output, error) {
	var prompt strings.Builder
	prompt.WriteString("Synthesize a business snapshot from these operator answers:\n\n")
	fmt.Fprintf(&prompt, "Company name: %s\n", inputs["company_name"])
	fmt.Fprintf(&prompt, "Answering as: %s\n", inputs["user_role"])
	fmt.Fprintf(&prompt, "What the business does: %s\n", inputs["business_description"])
	fmt.Fprintf(&prompt, "Products and services: %s\n", inputs["products_services"])
	fmt.Fprintf(&prompt, "Current goals: %s\n", inputs["current_goals"])

	req := llm.CompletionRequest{
		Messages: []llm.Message{
			{Role: llm.RoleSystem, Content: rc.Grounding + "\n" + snapshotSchema.Describe()},
			{Role: llm.RoleUser, Content: prompt.String()},
		},
	}

	obj, err := deps.Synth.Synthesize(ctx, req, snapshotSchema)
	if err != nil {
		return nil, err
	}

	snap := &artifact.BusinessSnapshot{
		Inputs:              inputs,
		OneLiner:            stringField(obj, "one_liner"),
		BusinessModel:       stringField(obj, "business_model"),
		ValueProposition:    stringField(obj, "value_proposition"),
		RevenueModel:        stringField(obj, "revenue_model"),
		CostStructure:       stringField(obj, "cost_structure"),
		StrategicPriorities: sliceField(obj, "strategic_priorities"),
		IdentifiedRisks:     sliceField(obj, "identified_risks"),
		RecommendedFocus:    stringField(obj, "recommended_focus"),
	}
	snap.ContextSummary = deriveContextSummary(inputs["company_name"], snap)

	// Dual write: company profile first, artifact second. The two
	// statements are deliberately not atomic with each other.
	comp := rc.Company
	comp.Name = inputs["company_name"]
	comp.Description = snap.OneLiner
	comp.BusinessModel = snap.BusinessModel
	comp.Goals = snap.StrategicPriorities
	comp.ContextSummary = snap.ContextSummary
	if err := deps.Companies.Update(ctx, comp); err != nil {
		return nil, err
	}

	diff, _ := json.Marshal(map[string]string{"context_summary": snap.ContextSummary})
	err = deps.Changes.Append(ctx, changelog.Entry{
		CompanyID:  comp.ID,
		EntityType: changelog.EntityCompany,
		EntityID:   comp.ID,
		Action:     changelog.ActionUpdate,
		Diff:       string(diff),
		ActorID:    rc.Session.ActingAs,
	})
	if err != nil {
		return nil, err
	}

	art := &artifact.Artifact{
		CompanyID:   comp.ID,
		Type:        artifact.TypeBusinessSnapshot,
		CreatedBy:   inputs["user_role"],
		ActedAsRole: rc.Role.ID,
	}
	if err := art.SetData(snap); err != nil {
		return nil, err
	}
	if err := deps.Artifacts.Save(ctx, art); err != nil {
		return nil, err
	}

	return &Output{
		Artifact: art,
		Suggestions: []Suggestion{
			{RecipeID: "weekly-priorities", Reason: "Turn the snapshot into this week's priorities", Confidence: 0.9},
			{RecipeID: "company-brief", Reason: "Review the refreshed company brief", Confidence: 0.7},
		},
	}, nil
}

// deriveContextSummary renders the canonical grounding summary from the
// synthesized snapshot. Regenerated on every snapshot run.
func deriveContextSummary(name string, snap *artifact.BusinessSnapshot) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %s\n", name, snap.OneLiner)
	fmt.Fprintf(&b, "Business model: %s\n", snap.BusinessModel)
	fmt.Fprintf(&b, "Value proposition: %s\n", snap.ValueProposition)
	if len(snap.StrategicPriorities) > 0 {
		fmt.Fprintf(&b, "Strategic priorities: %s\n", strings.Join(snap.StrategicPriorities, "; "))
	}
	if len(snap.IdentifiedRisks) > 0 {
		fmt.Fprintf(&b, "Key risks: %s\n", strings.Join(snap.IdentifiedRisks, "; "))
	}
	fmt.Fprintf(&b, "Recommended focus: %s", snap.RecommendedFocus)
	return b.String()
}

func stringField(obj map[string]any, key string) string {
	s, _ := obj[key].(string)
	return s
}

func sliceField(obj map[string]any, key string) []string {
	s, _ := obj[key].([]string)
	return s
}
