package changelog

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ziadkadry99/bizmate/internal/db"
)

// Store provides append and query operations for the change log.
type Store struct {
	db *db.DB
}

// NewStore creates a Store backed by the given database.
func NewStore(d *db.DB) *Store {
	return &Store{db: d}
}

// Append inserts a new entry and prunes the oldest rows beyond the
// per-entity cap. If entry.ID is empty a UUID is generated.
func (s *Store) Append(ctx context.Context, entry Entry) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning change log transaction: %w", err)
	}
	defer tx.Rollback()

	if err := appendTx(ctx, tx, entry); err != nil {
		return err
	}
	return tx.Commit()
}

// AppendTx inserts an entry inside an existing transaction, so callers
// can make the audit row atomic with the write it records.
func AppendTx(ctx context.Context, tx *sql.Tx, entry Entry) error {
	return appendTx(ctx, tx, entry)
}

func appendTx(ctx context.Context, tx *sql.Tx, entry Entry) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.Diff == "" {
		entry.Diff = "{}"
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	_, err := tx.ExecContext(ctx,
		`INSERT INTO change_log (id, company_id, entity_type, entity_id, action, diff, actor_id, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.ID, entry.CompanyID, string(entry.EntityType), entry.EntityID,
		string(entry.Action), entry.Diff, entry.ActorID, entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("inserting change log entry: %w", err)
	}

	// Prune beyond the cap, oldest first. rowid breaks created_at ties.
	_, err = tx.ExecContext(ctx,
		`DELETE FROM change_log
		 WHERE entity_type = ? AND entity_id = ?
		   AND id NOT IN (
		     SELECT id FROM change_log
		     WHERE entity_type = ? AND entity_id = ?
		     ORDER BY created_at DESC, rowid DESC
		     LIMIT ?
		   )`,
		string(entry.EntityType), entry.EntityID,
		string(entry.EntityType), entry.EntityID,
		MaxEntriesPerEntity,
	)
	if err != nil {
		return fmt.Errorf("pruning change log: %w", err)
	}
	return nil
}

// QueryFilter controls which entries are returned by Query.
type QueryFilter struct {
	CompanyID  string
	EntityType EntityType
	EntityID   string
	Action     Action
	ActorID    string
	Since      *time.Time
	Limit      int
	Offset     int
}

// Query returns entries matching the filter, newest first.
func (s *Store) Query(ctx context.Context, filter QueryFilter) ([]Entry, error) {
	var (
		clauses []string
		args    []any
	)

	if filter.CompanyID != "" {
		clauses = append(clauses, "company_id = ?")
		args = append(args, filter.CompanyID)
	}
	if filter.EntityType != "" {
		clauses = append(clauses, "entity_type = ?")
		args = append(args, string(filter.EntityType))
	}
	if filter.EntityID != "" {
		clauses = append(clauses, "entity_id = ?")
		args = append(args, filter.EntityID)
	}
	if filter.Action != "" {
		clauses = append(clauses, "action = ?")
		args = append(args, string(filter.Action))
	}
	if filter.ActorID != "" {
		clauses = append(clauses, "actor_id = ?")
		args = append(args, filter.ActorID)
	}
	if filter.Since != nil {
		clauses = append(clauses, "created_at >= ?")
		args = append(args, filter.Since.UTC())
	}

	query := "SELECT id, company_id, entity_type, entity_id, action, diff, actor_id, created_at FROM change_log"
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += " ORDER BY created_at DESC, rowid DESC"

	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", filter.Limit)
	}
	if filter.Offset > 0 {
		query += fmt.Sprintf(" OFFSET %d", filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying change log: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			e                  Entry
			entityType, action string
		)
		if err := rows.Scan(&e.ID, &e.CompanyID, &entityType, &e.EntityID, &action, &e.Diff, &e.ActorID, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning change log entry: %w", err)
		}
		e.EntityType = EntityType(entityType)
		e.Action = Action(action)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// CountForEntity returns how many entries an entity currently has.
func (s *Store) CountForEntity(ctx context.Context, entityType EntityType, entityID string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM change_log WHERE entity_type = ? AND entity_id = ?`,
		string(entityType), entityID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("counting change log entries: %w", err)
	}
	return n, nil
}
