package synthesis

import (
	"context"
	"fmt"
	"strings"

	"github.com/ziadkadry99/bizmate/internal/errs"
	"github.com/ziadkadry99/bizmate/internal/llm"
)

// Completer is the slice of the LLM surface the repairer needs.
type Completer interface {
	Complete(ctx context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error)
}

// RetryPolicy bounds the repair loop independently of the validator,
// so the policy is testable without a live model.
type RetryPolicy struct {
	// MaxAttempts is the number of repair round-trips after the first
	// response fails validation.
	MaxAttempts int
}

// DefaultRetryPolicy allows two repair round-trips.
var DefaultRetryPolicy = RetryPolicy{MaxAttempts: 2}

// Attempt captures one validation failure for diagnostics.
type Attempt struct {
	Raw    string
	Errors []string
}

// Repairer drives the synthesize-validate-repair loop.
type Repairer struct {
	completer Completer
	policy    RetryPolicy
}

// NewRepairer creates a Repairer. A zero-value policy falls back to the
// default budget.
func NewRepairer(completer Completer, policy RetryPolicy) *Repairer {
	if policy.MaxAttempts == 0 {
		policy = DefaultRetryPolicy
	}
	return &Repairer{completer: completer, policy: policy}
}

// Synthesize sends the request, validates the response against the
// schema, and issues bounded repair round-trips on hard validation
// failures. It returns the validated object or a terminal
// errs.SynthesisError naming the last validation errors; it never
// returns a partially valid structure.
func (r *Repairer) Synthesize(ctx context.Context, req llm.CompletionRequest, schema ObjectSchema) (map[string]any, error) {
	req.JSONMode = true

	resp, err := r.completer.Complete(ctx, req)
	if err != nil {
		return nil, err
	}

	obj, validationErrs := ValidateCandidate(resp.Content, schema)
	if len(validationErrs) == 0 {
		return obj, nil
	}

	attempts := []Attempt{{Raw: resp.Content, Errors: validationErrs}}

	for len(attempts) <= r.policy.MaxAttempts {
		last := attempts[len(attempts)-1]

		repairReq := req
		repairReq.Messages = append(append([]llm.Message{}, req.Messages...),
			llm.Message{Role: llm.RoleAssistant, Content: last.Raw},
			llm.Message{Role: llm.RoleUser, Content: repairPrompt(last.Errors, schema)},
		)

		resp, err := r.completer.Complete(ctx, repairReq)
		if err != nil {
			return nil, err
		}

		obj, validationErrs := ValidateCandidate(resp.Content, schema)
		if len(validationErrs) == 0 {
			return obj, nil
		}
		attempts = append(attempts, Attempt{Raw: resp.Content, Errors: validationErrs})
	}

	final := attempts[len(attempts)-1]
	return nil, &errs.SynthesisError{
		Attempts: r.policy.MaxAttempts,
		Errors:   final.Errors,
	}
}

// repairPrompt asks the model to fix its previous output, restating the
// specific validation errors and the exact schema.
func repairPrompt(validationErrs []string, schema ObjectSchema) string {
	var b strings.Builder
	b.WriteString("Your previous response failed validation:\n")
	for _, e := range validationErrs {
		fmt.Fprintf(&b, "- %s\n", e)
	}
	b.WriteString("\n")
	b.WriteString(schema.Describe())
	b.WriteString("\nRespond again with only the corrected JSON object.")
	return b.String()
}
