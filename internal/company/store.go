package company

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

// Store provides CRUD operations for the company profile.
type Store struct {
	db *db.DB
}

// NewStore creates a company store backed by the given database.
func NewStore(d *db.DB) *Store {
	return &Store{db: d}
}

// Create inserts a new company. If c.ID is empty a UUID is generated.
func (s *Store) Create(ctx context.Context, c *Company) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	c.CreatedAt = now
	c.UpdatedAt = now

	goals, constraints, systems, metrics, err := marshalFields(c)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO company (id, name, description, business_model, goals, constraints, systems, metrics, context_summary, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.Name, c.Description, c.BusinessModel, goals, constraints, systems, metrics, c.ContextSummary, c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("creating company: %w", err)
	}
	return nil
}

// Get retrieves a company by ID.
func (s *Store) Get(ctx context.Context, id string) (*Company, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, description, business_model, goals, constraints, systems, metrics, context_summary, created_at, updated_at
		 FROM company WHERE id = ?`, id)

	c, err := scanCompany(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &errs.NotFoundError{Entity: "company", ID: id}
	}
	if err != nil {
		return nil, fmt.Errorf("getting company: %w", err)
	}
	return c, nil
}

// GetAny returns the first company row, or a NotFoundError when the
// deployment has none yet.
func (s *Store) GetAny(ctx context.Context) (*Company, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, description, business_model, goals, constraints, systems, metrics, context_summary, created_at, updated_at
		 FROM company ORDER BY created_at LIMIT 1`)

	c, err := scanCompany(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &errs.NotFoundError{Entity: "company"}
	}
	if err != nil {
		return nil, fmt.Errorf("getting company: %w", err)
	}
	return c, nil
}

// Update persists changed company fields. An update for a nonexistent
// id is a data-integrity bug and propagates as a raw error.
func (s *Store) Update(ctx context.Context, c *Company) error {
	c.UpdatedAt = time.Now().UTC()

	goals, constraints, systems, metrics, err := marshalFields(c)
	if err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE company SET name=?, description=?, business_model=?, goals=?, constraints=?, systems=?, metrics=?, context_summary=?, updated_at=?
		 WHERE id=?`,
		c.Name, c.Description, c.BusinessModel, goals, constraints, systems, metrics, c.ContextSummary, c.UpdatedAt, c.ID,
	)
	if err != nil {
		return fmt.Errorf("updating company: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return fmt.Errorf("updating company %s: %w", c.ID, sql.ErrNoRows)
	}
	return nil
}

func marshalFields(c *Company) (goals, constraints, systems, metrics string, err error) {
	g, err := json.Marshal(emptyIfNil(c.Goals))
	if err != nil {
		return "", "", "", "", fmt.Errorf("marshalling goals: %w", err)
	}
	cs, err := json.Marshal(emptyIfNil(c.Constraints))
	if err != nil {
		return "", "", "", "", fmt.Errorf("marshalling constraints: %w", err)
	}
	sy, err := json.Marshal(emptyIfNil(c.Systems))
	if err != nil {
		return "", "", "", "", fmt.Errorf("marshalling systems: %w", err)
	}
	m := c.Metrics
	if m == nil {
		m = map[string]any{}
	}
	me, err := json.Marshal(m)
	if err != nil {
		return "", "", "", "", fmt.Errorf("marshalling metrics: %w", err)
	}
	return string(g), string(cs), string(sy), string(me), nil
}

func emptyIfNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// scanner is implemented by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanCompany(sc scanner) (*Company, error) {
	var (
		c                                  Company
		goals, constraints, systems, mets string
	)
	err := sc.Scan(&c.ID, &c.Name, &c.Description, &c.BusinessModel,
		&goals, &constraints, &systems, &mets, &c.ContextSummary,
		&c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(goals), &c.Goals); err != nil {
		c.Goals = nil
	}
	if err := json.Unmarshal([]byte(constraints), &c.Constraints); err != nil {
		c.Constraints = nil
	}
	if err := json.Unmarshal([]byte(systems), &c.Systems); err != nil {
		c.Systems = nil
	}
	if err := json.Unmarshal([]byte(mets), &c.Metrics); err != nil {
		c.Metrics = nil
	}
	return &c, nil
}
