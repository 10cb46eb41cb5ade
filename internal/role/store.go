package role

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ziadkadry99/bizmate/internal/db"
	"github.com/ziadkadry99/bizmate/internal/errs"
)

// Store provides CRUD operations for roles.
type Store struct {
	db *db.DB
}

// NewStore creates a role store backed by the given database.
func NewStore(d *db.DB) *Store {
	return &Store{db: d}
}

// Create inserts a new role. If r.ID is empty a UUID is generated.
func (s *Store) Create(ctx context.Context, r *Role) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if r.LanguageMode == "" {
		r.LanguageMode = LangOperator
	}
	r.CreatedAt = time.Now().UTC()

	scope, vis, allowed, approval, err := marshalSets(r)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO roles (id, company_id, title, responsibilities, decision_scope, visibility, recipes_allowed, recipes_require_approval, language_mode, is_custom, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.CompanyID, r.Title, r.Responsibilities, scope, vis, allowed, approval,
		string(r.LanguageMode), boolToInt(r.IsCustom), r.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("creating role: %w", err)
	}
	return nil
}

// Get retrieves a role by ID.
func (s *Store) Get(ctx context.Context, id string) (*Role, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, company_id, title, responsibilities, decision_scope, visibility, recipes_allowed, recipes_require_approval, language_mode, is_custom, created_at
		 FROM roles WHERE id = ?`, id)

	r, err := scanRole(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &errs.NotFoundError{Entity: "role", ID: id}
	}
	if err != nil {
		return nil, fmt.Errorf("getting role: %w", err)
	}
	return r, nil
}

// ListByCompany returns all roles belonging to a company.
func (s *Store) ListByCompany(ctx context.Context, companyID string) ([]*Role, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, company_id, title, responsibilities, decision_scope, visibility, recipes_allowed, recipes_require_approval, language_mode, is_custom, created_at
		 FROM roles WHERE company_id = ? ORDER BY created_at, title`, companyID)
	if err != nil {
		return nil, fmt.Errorf("listing roles: %w", err)
	}
	defer rows.Close()

	var roles []*Role
	for rows.Next() {
		r, err := scanRole(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning role: %w", err)
		}
		roles = append(roles, r)
	}
	return roles, rows.Err()
}

// CountByCompany returns the number of roles a company has.
func (s *Store) CountByCompany(ctx context.Context, companyID string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM roles WHERE company_id = ?`, companyID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("counting roles: %w", err)
	}
	return n, nil
}

// SeedTemplates inserts the built-in role templates for a company,
// unless the company already has any role.
func (s *Store) SeedTemplates(ctx context.Context, companyID string) ([]*Role, error) {
	n, err := s.CountByCompany(ctx, companyID)
	if err != nil {
		return nil, err
	}
	if n > 0 {
		return s.ListByCompany(ctx, companyID)
	}

	templates := Templates(companyID)
	for _, r := range templates {
		if err := s.Create(ctx, r); err != nil {
			return nil, err
		}
	}
	return templates, nil
}

func marshalSets(r *Role) (scope, vis, allowed, approval string, err error) {
	b, err := json.Marshal(r.DecisionScope)
	if err != nil {
		return "", "", "", "", fmt.Errorf("marshalling decision scope: %w", err)
	}
	scope = string(b)

	b, err = json.Marshal(r.Visibility)
	if err != nil {
		return "", "", "", "", fmt.Errorf("marshalling visibility: %w", err)
	}
	vis = string(b)

	b, err = json.Marshal(r.RecipesAllowed)
	if err != nil {
		return "", "", "", "", fmt.Errorf("marshalling recipes allowed: %w", err)
	}
	allowed = string(b)

	b, err = json.Marshal(r.RecipesRequireApproval)
	if err != nil {
		return "", "", "", "", fmt.Errorf("marshalling approval grants: %w", err)
	}
	approval = string(b)
	return scope, vis, allowed, approval, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// scanner is implemented by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanRole(sc scanner) (*Role, error) {
	var (
		r                            Role
		scope, vis, allowed, approvals string
		lang                         string
		isCustom                     int
	)
	err := sc.Scan(&r.ID, &r.CompanyID, &r.Title, &r.Responsibilities,
		&scope, &vis, &allowed, &approvals, &lang, &isCustom, &r.CreatedAt)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(scope), &r.DecisionScope); err != nil {
		r.DecisionScope = nil
	}
	if err := json.Unmarshal([]byte(vis), &r.Visibility); err != nil {
		r.Visibility = nil
	}
	if err := json.Unmarshal([]byte(allowed), &r.RecipesAllowed); err != nil {
		r.RecipesAllowed = nil
	}
	if err := json.Unmarshal([]byte(approvals), &r.RecipesRequireApproval); err != nil {
		r.RecipesRequireApproval = nil
	}
	r.LanguageMode = LanguageMode(lang)
	r.IsCustom = isCustom != 0
	return &r, nil
}
