// Package contextengine assembles the grounded context every recipe
// runs under: the company profile, the acting role, and the session.
// It owns the lazy first-use bootstrap and the permission gate on
// recipe invocation.
package contextengine

import (
	"context"
	"fmt"
	"strings"

	"github.com/ziadkadry99/bizmate/internal/changelog"
	"github.com/ziadkadry99/bizmate/internal/company"
	"github.com/ziadkadry99/bizmate/internal/errs"
	"github.com/ziadkadry99/bizmate/internal/permission"
	"github.com/ziadkadry99/bizmate/internal/role"
	"github.com/ziadkadry99/bizmate/internal/session"
)

// RecipeContext is everything a recipe body needs: the loaded company,
// the acting role, the session, and the grounding text injected into
// every LLM call the recipe makes.
type RecipeContext struct {
	Company   *company.Company
	Role      *role.Role
	Session   *session.Session
	Grounding string
}

// Engine builds recipe contexts and manages the session.
type Engine struct {
	companies *company.Store
	roles     *role.Store
	sessions  *session.Store
	changes   *changelog.Store

	defaultCompanyName string
	operatorID         string
}

// New creates an Engine.
func New(companies *company.Store, roles *role.Store, sessions *session.Store, changes *changelog.Store, defaultCompanyName, operatorID string) *Engine {
	return &Engine{
		companies:          companies,
		roles:              roles,
		sessions:           sessions,
		changes:            changes,
		defaultCompanyName: defaultCompanyName,
		operatorID:         operatorID,
	}
}

// EnsureSession returns the current session, bootstrapping the
// deployment on first use: create the company from the configured
// default name, seed the built-in roles, and select CEO as the acting
// role with confidence 1.0.
func (e *Engine) EnsureSession(ctx context.Context) (*session.Session, error) {
	sess, err := e.sessions.Get(ctx)
	if err == nil {
		return sess, nil
	}
	if !errs.IsNotFound(err) {
		return nil, err
	}

	comp, err := e.companies.GetAny(ctx)
	if errs.IsNotFound(err) {
		comp = &company.Company{Name: e.defaultCompanyName}
		if err := e.companies.Create(ctx, comp); err != nil {
			return nil, err
		}
		logErr := e.changes.Append(ctx, changelog.Entry{
			CompanyID:  comp.ID,
			EntityType: changelog.EntityCompany,
			EntityID:   comp.ID,
			Action:     changelog.ActionCreate,
			ActorID:    e.operatorID,
		})
		if logErr != nil {
			return nil, logErr
		}
	} else if err != nil {
		return nil, err
	}

	roles, err := e.roles.SeedTemplates(ctx, comp.ID)
	if err != nil {
		return nil, err
	}

	ceo := roles[0]
	for _, r := range roles {
		if r.Title == "CEO" {
			ceo = r
			break
		}
	}

	sess = &session.Session{
		CompanyID:  comp.ID,
		ActingAs:   ceo.ID,
		Confidence: 1.0,
	}
	if err := e.sessions.Put(ctx, sess); err != nil {
		return nil, err
	}
	return sess, nil
}

// BuildContext loads the session's company and acting role, enforces
// that the role may run the recipe, and assembles the grounding block.
func (e *Engine) BuildContext(ctx context.Context, recipeID string) (*RecipeContext, error) {
	sess, err := e.EnsureSession(ctx)
	if err != nil {
		return nil, err
	}

	comp, err := e.companies.Get(ctx, sess.CompanyID)
	if err != nil {
		return nil, err
	}

	acting, err := e.roles.Get(ctx, sess.ActingAs)
	if err != nil {
		return nil, err
	}

	if acting.CompanyID != comp.ID {
		return nil, &errs.NotFoundError{Entity: "role for company", ID: acting.ID}
	}

	if !permission.CanRunRecipe(acting, recipeID) {
		return nil, &errs.PermissionError{RoleTitle: acting.Title, RecipeID: recipeID}
	}

	return &RecipeContext{
		Company:   comp,
		Role:      acting,
		Session:   sess,
		Grounding: Grounding(comp, acting, sess),
	}, nil
}

// ContextForRole assembles a context with an explicit acting role and
// no recipe permission gate. Used when executing an approved plan: the
// requester already passed the gate at submission time.
func (e *Engine) ContextForRole(ctx context.Context, roleID string) (*RecipeContext, error) {
	sess, err := e.EnsureSession(ctx)
	if err != nil {
		return nil, err
	}

	comp, err := e.companies.Get(ctx, sess.CompanyID)
	if err != nil {
		return nil, err
	}

	acting, err := e.roles.Get(ctx, roleID)
	if err != nil {
		return nil, err
	}

	return &RecipeContext{
		Company:   comp,
		Role:      acting,
		Session:   sess,
		Grounding: Grounding(comp, acting, sess),
	}, nil
}

// SwitchRole changes the acting role. The target must belong to the
// session's company; on success the confidence resets to 1.0.
func (e *Engine) SwitchRole(ctx context.Context, roleID string) (*session.Session, error) {
	sess, err := e.EnsureSession(ctx)
	if err != nil {
		return nil, err
	}

	target, err := e.roles.Get(ctx, roleID)
	if err != nil {
		return nil, err
	}

	if target.CompanyID != sess.CompanyID {
		return nil, &errs.PermissionError{
			RoleTitle: target.Title,
			Reason:    "belongs to a different company than the current session",
		}
	}

	sess.ActingAs = target.ID
	sess.Confidence = 1.0
	if err := e.sessions.Put(ctx, sess); err != nil {
		return nil, err
	}
	return sess, nil
}

// SetFocus overwrites the session's current focus text.
func (e *Engine) SetFocus(ctx context.Context, focus string) (*session.Session, error) {
	sess, err := e.EnsureSession(ctx)
	if err != nil {
		return nil, err
	}
	sess.CurrentFocus = focus
	if err := e.sessions.Put(ctx, sess); err != nil {
		return nil, err
	}
	return sess, nil
}

// Grounding renders the fixed-format grounding block injected into
// every LLM call a recipe makes. Downstream prompt compatibility
// depends on this exact ordering and content.
func Grounding(comp *company.Company, acting *role.Role, sess *session.Session) string {
	summary := comp.ContextSummary
	if summary == "" {
		summary = comp.Name
	}

	scopes := make([]string, 0, len(acting.DecisionScope))
	for _, s := range acting.DecisionScope {
		scopes = append(scopes, string(s))
	}
	scopeLine := strings.Join(scopes, ", ")
	if scopeLine == "" {
		scopeLine = "none"
	}

	focus := sess.CurrentFocus
	if focus == "" {
		focus = "None set"
	}

	return fmt.Sprintf(`## Company Context
%s

## Acting Role
Title: %s
Responsibilities: %s
Decision scope: %s

## Current Focus
%s
`, summary, acting.Title, acting.Responsibilities, scopeLine, focus)
}
