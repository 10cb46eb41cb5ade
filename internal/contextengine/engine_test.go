package contextengine

import (
	"context"
	"testing"

	"github.com/ziadkadry99/bizmate/internal/changelog"
	"github.com/ziadkadry99/bizmate/internal/company"
	"github.com/ziadkadry99/bizmate/internal/db"
	"github.com/ziadkadry99/bizmate/internal/errs"
	"github.com/ziadkadry99/bizmate/internal/role"
	"github.com/ziadkadry99/bizmate/internal/session"
)

type fixture struct {
	engine    *Engine
	companies *company.Store
	roles     *role.Store
	sessions  *session.Store
	changes   *changelog.Store
}

func setup(t *testing.T) *fixture {
	t.Helper()
	database, err := db.OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	f := &fixture{
		companies: company.NewStore(database),
		roles:     role.NewStore(database),
		sessions:  session.NewStore(database),
		changes:   changelog.NewStore(database),
	}
	f.engine = New(f.companies, f.roles, f.sessions, f.changes, "Acme Anvils", "operator")
	return f
}

func TestEnsureSessionBootstraps(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	sess, err := f.engine.EnsureSession(ctx)
	if err != nil {
		t.Fatalf("EnsureSession: %v", err)
	}

	comp, err := f.companies.Get(ctx, sess.CompanyID)
	if err != nil {
		t.Fatalf("Get company: %v", err)
	}
	if comp.Name != "Acme Anvils" {
		t.Errorf("company name = %q", comp.Name)
	}

	roles, err := f.roles.ListByCompany(ctx, comp.ID)
	if err != nil {
		t.Fatalf("ListByCompany: %v", err)
	}
	if len(roles) != 4 {
		t.Errorf("seeded %d roles, want 4", len(roles))
	}

	acting, err := f.roles.Get(ctx, sess.ActingAs)
	if err != nil {
		t.Fatalf("Get role: %v", err)
	}
	if acting.Title != "CEO" {
		t.Errorf("acting role = %q, want CEO", acting.Title)
	}
	if sess.Confidence != 1.0 {
		t.Errorf("confidence = %v, want 1.0", sess.Confidence)
	}

	// Bootstrap is audited.
	entries, err := f.changes.Query(ctx, changelog.QueryFilter{
		EntityType: changelog.EntityCompany,
		EntityID:   comp.ID,
		Action:     changelog.ActionCreate,
	})
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("got %d company create entries, want 1", len(entries))
	}
}

func TestEnsureSessionIsIdempotent(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	first, err := f.engine.EnsureSession(ctx)
	if err != nil {
		t.Fatalf("EnsureSession: %v", err)
	}
	second, err := f.engine.EnsureSession(ctx)
	if err != nil {
		t.Fatalf("EnsureSession again: %v", err)
	}
	if first.CompanyID != second.CompanyID || first.ActingAs != second.ActingAs {
		t.Errorf("sessions differ: %+v vs %+v", first, second)
	}

	n, err := f.roles.CountByCompany(ctx, first.CompanyID)
	if err != nil {
		t.Fatalf("CountByCompany: %v", err)
	}
	if n != 4 {
		t.Errorf("company has %d roles after repeat bootstrap, want 4", n)
	}
}

func TestBuildContextDeniesUngrantedRecipe(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	sess, err := f.engine.EnsureSession(ctx)
	if err != nil {
		t.Fatalf("EnsureSession: %v", err)
	}

	var consultant *role.Role
	roles, err := f.roles.ListByCompany(ctx, sess.CompanyID)
	if err != nil {
		t.Fatalf("ListByCompany: %v", err)
	}
	for _, r := range roles {
		if r.Title == "External Consultant" {
			consultant = r
		}
	}
	if consultant == nil {
		t.Fatal("consultant template not seeded")
	}
	if _, err := f.engine.SwitchRole(ctx, consultant.ID); err != nil {
		t.Fatalf("SwitchRole: %v", err)
	}

	_, err = f.engine.BuildContext(ctx, "weekly-priorities")
	if !errs.IsPermission(err) {
		t.Fatalf("error = %v, want PermissionError", err)
	}

	// The granted read recipe still works.
	rc, err := f.engine.BuildContext(ctx, "company-brief")
	if err != nil {
		t.Fatalf("BuildContext: %v", err)
	}
	if rc.Role.ID != consultant.ID {
		t.Errorf("context role = %s, want consultant", rc.Role.ID)
	}
}

func TestSwitchRoleRejectsOtherCompany(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	if _, err := f.engine.EnsureSession(ctx); err != nil {
		t.Fatalf("EnsureSession: %v", err)
	}

	foreign := &role.Role{CompanyID: "other-co", Title: "Intruder"}
	if err := f.roles.Create(ctx, foreign); err != nil {
		t.Fatalf("Create: %v", err)
	}

	_, err := f.engine.SwitchRole(ctx, foreign.ID)
	if !errs.IsPermission(err) {
		t.Fatalf("error = %v, want PermissionError", err)
	}
}

func TestSwitchRoleResetsConfidence(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	sess, err := f.engine.EnsureSession(ctx)
	if err != nil {
		t.Fatalf("EnsureSession: %v", err)
	}

	sess.Confidence = 0.4
	if err := f.sessions.Put(ctx, sess); err != nil {
		t.Fatalf("Put: %v", err)
	}

	roles, err := f.roles.ListByCompany(ctx, sess.CompanyID)
	if err != nil {
		t.Fatalf("ListByCompany: %v", err)
	}
	var ops *role.Role
	for _, r := range roles {
		if r.Title == "Operations Manager" {
			ops = r
		}
	}

	switched, err := f.engine.SwitchRole(ctx, ops.ID)
	if err != nil {
		t.Fatalf("SwitchRole: %v", err)
	}
	if switched.ActingAs != ops.ID {
		t.Errorf("ActingAs = %s, want %s", switched.ActingAs, ops.ID)
	}
	if switched.Confidence != 1.0 {
		t.Errorf("confidence = %v, want 1.0 after switch", switched.Confidence)
	}
}

func TestSetFocusAppearsInGrounding(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	if _, err := f.engine.EnsureSession(ctx); err != nil {
		t.Fatalf("EnsureSession: %v", err)
	}
	if _, err := f.engine.SetFocus(ctx, "Q3 vendor renegotiation"); err != nil {
		t.Fatalf("SetFocus: %v", err)
	}

	rc, err := f.engine.BuildContext(ctx, "company-brief")
	if err != nil {
		t.Fatalf("BuildContext: %v", err)
	}

	want := `## Company Context
Acme Anvils

## Acting Role
Title: CEO
Responsibilities: Owns strategy, fundraising, and final calls on direction.
Decision scope: strategy, process, vendors, hiring, technical, financial

## Current Focus
Q3 vendor renegotiation
`
	if rc.Grounding != want {
		t.Errorf("grounding mismatch:\ngot:\n%s\nwant:\n%s", rc.Grounding, want)
	}
}

func TestGroundingFallbacks(t *testing.T) {
	comp := &company.Company{Name: "Acme"}
	acting := &role.Role{Title: "Advisor", Responsibilities: "Advises."}
	sess := &session.Session{}

	got := Grounding(comp, acting, sess)

	want := `## Company Context
Acme

## Acting Role
Title: Advisor
Responsibilities: Advises.
Decision scope: none

## Current Focus
None set
`
	if got != want {
		t.Errorf("grounding mismatch:\ngot:\n%s\nwant:\n%s", got, want)
	}
}

func TestContextForRoleSkipsPermissionGate(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	sess, err := f.engine.EnsureSession(ctx)
	if err != nil {
		t.Fatalf("EnsureSession: %v", err)
	}

	roles, err := f.roles.ListByCompany(ctx, sess.CompanyID)
	if err != nil {
		t.Fatalf("ListByCompany: %v", err)
	}
	var consultant *role.Role
	for _, r := range roles {
		if r.Title == "External Consultant" {
			consultant = r
		}
	}

	// Consultant cannot run weekly-priorities, but an explicit-role
	// context builds regardless of recipe grants.
	rc, err := f.engine.ContextForRole(ctx, consultant.ID)
	if err != nil {
		t.Fatalf("ContextForRole: %v", err)
	}
	if rc.Role.ID != consultant.ID {
		t.Errorf("context role = %s, want consultant", rc.Role.ID)
	}
}
