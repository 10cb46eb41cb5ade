package recipe

import (
	"context"
	"fmt"
	"strings"

	"github.com/ziadkadry99/bizmate/internal/artifact"
	"github.com/ziadkadry99/bizmate/internal/contextengine"
	"github.com/ziadkadry99/bizmate/internal/llm"
	"github.com/ziadkadry99/bizmate/internal/permission"
	"github.com/ziadkadry99/bizmate/internal/synthesis"
)

var prioritiesSchema = synthesis.ObjectSchema{
	Name: "weekly_priorities",
	Fields: map[string]synthesis.FieldSpec{
		"priorities": {Type: synthesis.FieldStringArray, Required: true, MaxItems: 5},
		"rationale":  {Type: synthesis.FieldString, Required: true, MaxLen: 1000},
	},
}

// prioritiesPayload is the payload of a weekly-priorities artifact.
type prioritiesPayload struct {
	Priorities []string `json:"priorities"`
	Rationale  string   `json:"rationale"`
}

// WeeklyPriorities returns the recipe that proposes a ranked weekly
// priority list from the company goals and the session focus.
func WeeklyPriorities() *Definition {
	return &Definition{
		ID:             "weekly-priorities",
		Title:          "Weekly Priorities",
		Description:    "Propose this week's priorities from company goals and current focus.",
		Classification: permission.ClassificationExecute,
		Run:            runWeeklyPriorities,
	}
}

func runWeeklyPriorities(ctx context.Context, rc *contextengine.RecipeContext, inputs map[string]string, deps *Deps) (*Output, error) {
	var prompt strings.Builder
	prompt.WriteString("Propose a ranked priority list for the coming week.\n")
	if len(rc.Company.Goals) > 0 {
		fmt.Fprintf(&prompt, "Company goals: %s\n", strings.Join(rc.Company.Goals, "; "))
	}
	if extra := inputs["notes"]; extra != "" {
		fmt.Fprintf(&prompt, "Operator notes: %s\n", extra)
	}

	req := llm.CompletionRequest{
		Messages: []llm.Message{
			{Role: llm.RoleSystem, Content: rc.Grounding + "\n" + prioritiesSchema.Describe()},
			{Role: llm.RoleUser, Content: prompt.String()},
		},
	}

	obj, err := deps.Synth.Synthesize(ctx, req, prioritiesSchema)
	if err != nil {
		return nil, err
	}

	payload := prioritiesPayload{
		Priorities: sliceField(obj, "priorities"),
		Rationale:  stringField(obj, "rationale"),
	}

	art := &artifact.Artifact{
		CompanyID:   rc.Company.ID,
		Type:        "weekly-priorities",
		CreatedBy:   rc.Session.ActingAs,
		ActedAsRole: rc.Role.ID,
	}
	if err := art.SetData(payload); err != nil {
		return nil, err
	}
	if err := deps.Artifacts.Save(ctx, art); err != nil {
		return nil, err
	}

	return &Output{
		Artifact: art,
		Suggestions: []Suggestion{
			{RecipeID: "company-brief", Reason: "Sanity-check the priorities against the brief", Confidence: 0.6},
		},
	}, nil
}
