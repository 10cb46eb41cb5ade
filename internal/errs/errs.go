// Package errs defines the error taxonomy shared across the engine.
// Callers match with errors.As or the Is* helpers; storage-integrity
// failures are deliberately not represented here and propagate raw.
package errs

import (
	"errors"
	"fmt"
	"strings"
)

// NotFoundError reports a missing company, role, artifact, or session
// reference. It indicates state corruption or a stale identifier and is
// fatal to the current operation.
type NotFoundError struct {
	Entity string
	ID     string
}

func (e *NotFoundError) Error() string {
	if e.ID == "" {
		return fmt.Sprintf("%s not found", e.Entity)
	}
	return fmt.Sprintf("%s %q not found", e.Entity, e.ID)
}

// PermissionError reports that a role lacks the authority to run or
// approve something. It is always surfaced, never downgraded.
type PermissionError struct {
	RoleTitle string
	RecipeID  string
	Reason    string
}

func (e *PermissionError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("role %q: %s", e.RoleTitle, e.Reason)
	}
	return fmt.Sprintf("role %q is not allowed to run recipe %q", e.RoleTitle, e.RecipeID)
}

// ValidationError reports missing or malformed recipe inputs. Locally
// recoverable: the caller can fix the named fields and retry.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("missing required inputs: %s", strings.Join(e.Fields, ", "))
}

// SynthesisError reports that LLM output remained invalid after the
// repair budget was exhausted. Terminal for the invocation.
type SynthesisError struct {
	Attempts int
	Errors   []string
}

func (e *SynthesisError) Error() string {
	return fmt.Sprintf("synthesis failed after %d repair attempt(s): %s",
		e.Attempts, strings.Join(e.Errors, "; "))
}

// TransportKind classifies failures from the LLM collaborator.
type TransportKind string

const (
	TransportQuota         TransportKind = "quota"
	TransportContextWindow TransportKind = "context_window"
	TransportTimeout       TransportKind = "timeout"
	TransportShape         TransportKind = "shape"
	TransportGeneric       TransportKind = "transport"
)

// TransportError reports a failure talking to the LLM collaborator,
// classified so callers can distinguish user-retryable cases (quota)
// from non-retryable ones (shape).
type TransportError struct {
	Kind TransportKind
	Err  error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("llm %s failure: %v", e.Kind, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// Retryable reports whether the user can reasonably retry the call.
func (e *TransportError) Retryable() bool {
	switch e.Kind {
	case TransportQuota, TransportTimeout, TransportGeneric:
		return true
	}
	return false
}

func IsNotFound(err error) bool {
	var e *NotFoundError
	return errors.As(err, &e)
}

func IsPermission(err error) bool {
	var e *PermissionError
	return errors.As(err, &e)
}

func IsValidation(err error) bool {
	var e *ValidationError
	return errors.As(err, &e)
}

func IsSynthesis(err error) bool {
	var e *SynthesisError
	return errors.As(err, &e)
}

func IsTransport(err error) bool {
	var e *TransportError
	return errors.As(err, &e)
}
