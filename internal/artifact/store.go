package artifact

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ziadkadry99/bizmate/internal/changelog"
	"github.com/ziadkadry99/bizmate/internal/db"
	"github.com/ziadkadry99/bizmate/internal/errs"
)

// Store is the versioned, append-mostly persistence layer for recipe
// outputs. Every write also appends a change log entry in the same
// transaction, so version allocation, the insert, and the audit row
// commit together.
type Store struct {
	db *db.DB
}

// NewStore creates an artifact store backed by the given database.
func NewStore(d *db.DB) *Store {
	return &Store{db: d}
}

// NextVersion returns the version the next artifact of this (company,
// type) pair would receive: current maximum plus one, or 1 if none
// exist. Save allocates its own version inside a transaction; this
// read is advisory.
func (s *Store) NextVersion(ctx context.Context, companyID, artifactType string) (int, error) {
	var max int
	err := s.db.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(version), 0) FROM artifacts WHERE company_id = ? AND type = ?`,
		companyID, artifactType).Scan(&max)
	if err != nil {
		return 0, fmt.Errorf("reading max artifact version: %w", err)
	}
	return max + 1, nil
}

// Save allocates the next version for (company, type), inserts the
// artifact, and appends a create change log entry, all in one
// transaction.
func (s *Store) Save(ctx context.Context, a *Artifact) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if len(a.Data) == 0 {
		a.Data = []byte("{}")
	}
	a.CreatedAt = time.Now().UTC()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning artifact transaction: %w", err)
	}
	defer tx.Rollback()

	var max int
	err = tx.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(version), 0) FROM artifacts WHERE company_id = ? AND type = ?`,
		a.CompanyID, a.Type).Scan(&max)
	if err != nil {
		return fmt.Errorf("allocating artifact version: %w", err)
	}
	a.Version = max + 1

	_, err = tx.ExecContext(ctx,
		`INSERT INTO artifacts (id, company_id, type, version, data, created_by, acted_as_role, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.CompanyID, a.Type, a.Version, string(a.Data), a.CreatedBy, a.ActedAsRole, a.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("inserting artifact: %w", err)
	}

	err = changelog.AppendTx(ctx, tx, changelog.Entry{
		CompanyID:  a.CompanyID,
		EntityType: changelog.EntityArtifact,
		EntityID:   a.ID,
		Action:     changelog.ActionCreate,
		Diff:       string(a.Data),
		ActorID:    a.CreatedBy,
	})
	if err != nil {
		return err
	}

	return tx.Commit()
}

// Update overwrites an artifact's payload in place (same version) and
// appends an update change log entry. Used for plan status changes.
func (s *Store) Update(ctx context.Context, a *Artifact, actorID string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning artifact transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`UPDATE artifacts SET data = ? WHERE id = ?`, string(a.Data), a.ID)
	if err != nil {
		return fmt.Errorf("updating artifact: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return fmt.Errorf("updating artifact %s: %w", a.ID, sql.ErrNoRows)
	}

	err = changelog.AppendTx(ctx, tx, changelog.Entry{
		CompanyID:  a.CompanyID,
		EntityType: changelog.EntityArtifact,
		EntityID:   a.ID,
		Action:     changelog.ActionUpdate,
		Diff:       string(a.Data),
		ActorID:    actorID,
	})
	if err != nil {
		return err
	}

	return tx.Commit()
}

// Delete hard-deletes an artifact and appends a delete change log
// entry. There is no tombstone.
func (s *Store) Delete(ctx context.Context, id, actorID string) error {
	a, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning artifact transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM artifacts WHERE id = ?`, id); err != nil {
		return fmt.Errorf("deleting artifact: %w", err)
	}

	err = changelog.AppendTx(ctx, tx, changelog.Entry{
		CompanyID:  a.CompanyID,
		EntityType: changelog.EntityArtifact,
		EntityID:   a.ID,
		Action:     changelog.ActionDelete,
		Diff:       string(a.Data),
		ActorID:    actorID,
	})
	if err != nil {
		return err
	}

	return tx.Commit()
}

// GetByID retrieves an artifact by id.
func (s *Store) GetByID(ctx context.Context, id string) (*Artifact, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, company_id, type, version, data, created_by, acted_as_role, created_at
		 FROM artifacts WHERE id = ?`, id)

	a, err := scanArtifact(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &errs.NotFoundError{Entity: "artifact", ID: id}
	}
	if err != nil {
		return nil, fmt.Errorf("getting artifact: %w", err)
	}
	return a, nil
}

// LatestByType returns the highest-version artifact of a type for a
// company, or a NotFoundError when none exist.
func (s *Store) LatestByType(ctx context.Context, companyID, artifactType string) (*Artifact, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, company_id, type, version, data, created_by, acted_as_role, created_at
		 FROM artifacts WHERE company_id = ? AND type = ?
		 ORDER BY version DESC LIMIT 1`, companyID, artifactType)

	a, err := scanArtifact(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &errs.NotFoundError{Entity: "artifact", ID: artifactType}
	}
	if err != nil {
		return nil, fmt.Errorf("getting latest artifact: %w", err)
	}
	return a, nil
}

// History returns every version of a type for a company, oldest first.
func (s *Store) History(ctx context.Context, companyID, artifactType string) ([]*Artifact, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, company_id, type, version, data, created_by, acted_as_role, created_at
		 FROM artifacts WHERE company_id = ? AND type = ?
		 ORDER BY version`, companyID, artifactType)
	if err != nil {
		return nil, fmt.Errorf("querying artifact history: %w", err)
	}
	defer rows.Close()
	return collect(rows)
}

// OrderBy selects the sort column for Query.
type OrderBy string

const (
	OrderByCreatedAt OrderBy = "created_at"
	OrderByVersion   OrderBy = "version"
)

// QueryFilter controls which artifacts Query returns.
type QueryFilter struct {
	CompanyID   string
	Type        string
	CreatedBy   string
	ActedAsRole string
	OrderBy     OrderBy
	Descending  bool
	Limit       int
	Offset      int
}

// Query returns artifacts matching the filter.
func (s *Store) Query(ctx context.Context, filter QueryFilter) ([]*Artifact, error) {
	var (
		clauses []string
		args    []any
	)

	if filter.CompanyID != "" {
		clauses = append(clauses, "company_id = ?")
		args = append(args, filter.CompanyID)
	}
	if filter.Type != "" {
		clauses = append(clauses, "type = ?")
		args = append(args, filter.Type)
	}
	if filter.CreatedBy != "" {
		clauses = append(clauses, "created_by = ?")
		args = append(args, filter.CreatedBy)
	}
	if filter.ActedAsRole != "" {
		clauses = append(clauses, "acted_as_role = ?")
		args = append(args, filter.ActedAsRole)
	}

	query := "SELECT id, company_id, type, version, data, created_by, acted_as_role, created_at FROM artifacts"
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}

	order := filter.OrderBy
	if order != OrderByVersion {
		order = OrderByCreatedAt
	}
	query += " ORDER BY " + string(order)
	if filter.Descending {
		query += " DESC"
	}

	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", filter.Limit)
	}
	if filter.Offset > 0 {
		query += fmt.Sprintf(" OFFSET %d", filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying artifacts: %w", err)
	}
	defer rows.Close()
	return collect(rows)
}

// scanner is implemented by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanArtifact(sc scanner) (*Artifact, error) {
	var (
		a    Artifact
		data string
	)
	err := sc.Scan(&a.ID, &a.CompanyID, &a.Type, &a.Version, &data,
		&a.CreatedBy, &a.ActedAsRole, &a.CreatedAt)
	if err != nil {
		return nil, err
	}
	a.Data = []byte(data)
	return &a, nil
}

func collect(rows *sql.Rows) ([]*Artifact, error) {
	var artifacts []*Artifact
	for rows.Next() {
		a, err := scanArtifact(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning artifact: %w", err)
		}
		artifacts = append(artifacts, a)
	}
	return artifacts, rows.Err()
}
