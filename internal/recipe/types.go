package recipe

import (
	"context"
	"sort"

	"github.com/ziadkadry99/bizmate/internal/artifact"
	"github.com/ziadkadry99/bizmate/internal/changelog"
	"github.com/ziadkadry99/bizmate/internal/company"
	"github.com/ziadkadry99/bizmate/internal/contextengine"
	"github.com/ziadkadry99/bizmate/internal/errs"
	"github.com/ziadkadry99/bizmate/internal/permission"
	"github.com/ziadkadry99/bizmate/internal/synthesis"
)

// Deps carries everything a recipe body may need.
type Deps struct {
	Companies *company.Store
	Artifacts *artifact.Store
	Changes   *changelog.Store
	Synth     *synthesis.Repairer
}

// Suggestion is a ranked follow-up the assistant proposes after a run.
type Suggestion struct {
	RecipeID   string  `json:"recipe_id"`
	Reason     string  `json:"reason"`
	Confidence float64 `json:"confidence"`
}

// RankSuggestions orders suggestions by descending confidence and caps
// the list at three entries.
func RankSuggestions(suggestions []Suggestion) []Suggestion {
	sort.SliceStable(suggestions, func(i, j int) bool {
		return suggestions[i].Confidence > suggestions[j].Confidence
	})
	if len(suggestions) > 3 {
		suggestions = suggestions[:3]
	}
	return suggestions
}

// Output is what a recipe body produces: the artifact it persisted and
// its follow-up suggestions.
type Output struct {
	Artifact    *artifact.Artifact
	Suggestions []Suggestion
}

// RunFunc is the body of a recipe.
type RunFunc func(ctx context.Context, rc *contextengine.RecipeContext, inputs map[string]string, deps *Deps) (*Output, error)

// Definition describes a registered recipe.
type Definition struct {
	ID             string
	Title          string
	Description    string
	Classification permission.Classification
	RequiredInputs []string
	Run            RunFunc
}

// ValidateInputs checks that every required input is present and
// non-empty, returning a ValidationError naming the missing fields.
func (d *Definition) ValidateInputs(inputs map[string]string) error {
	var missing []string
	for _, field := range d.RequiredInputs {
		if inputs[field] == "" {
			missing = append(missing, field)
		}
	}
	if len(missing) > 0 {
		return &errs.ValidationError{Fields: missing}
	}
	return nil
}
