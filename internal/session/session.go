// Package session persists the single mutable session record for a
// deployment: which company is loaded, which role is acting, and the
// operator's current focus. The row is created lazily and overwritten
// in place; there is no history.
package session

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/ziadkadry99/bizmate/internal/db"
	"github.com/ziadkadry99/bizmate/internal/errs"
)

// fixedID keys the single session row.
const fixedID = "default"

// Session is the current operating context.
type Session struct {
	CompanyID    string    `json:"company_id"`
	ActingAs     string    `json:"acting_as"`
	Confidence   float64   `json:"confidence"`
	CurrentFocus string    `json:"current_focus"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Store persists the session row.
type Store struct {
	db *db.DB
}

// NewStore creates a session store backed by the given database.
func NewStore(d *db.DB) *Store {
	return &Store{db: d}
}

// Get returns the current session, or a NotFoundError if none exists yet.
func (s *Store) Get(ctx context.Context) (*Session, error) {
	var sess Session
	err := s.db.QueryRowContext(ctx,
		`SELECT company_id, acting_as, confidence, current_focus, updated_at
		 FROM session WHERE id = ?`, fixedID,
	).Scan(&sess.CompanyID, &sess.ActingAs, &sess.Confidence, &sess.CurrentFocus, &sess.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &errs.NotFoundError{Entity: "session"}
	}
	if err != nil {
		return nil, fmt.Errorf("getting session: %w", err)
	}
	return &sess, nil
}

// Put overwrites the session row, creating it on first use.
func (s *Store) Put(ctx context.Context, sess *Session) error {
	if sess.Confidence < 0 || sess.Confidence > 1 {
		return fmt.Errorf("confidence %v out of range [0,1]", sess.Confidence)
	}
	sess.UpdatedAt = time.Now().UTC()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO session (id, company_id, acting_as, confidence, current_focus, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   company_id=excluded.company_id,
		   acting_as=excluded.acting_as,
		   confidence=excluded.confidence,
		   current_focus=excluded.current_focus,
		   updated_at=excluded.updated_at`,
		fixedID, sess.CompanyID, sess.ActingAs, sess.Confidence, sess.CurrentFocus, sess.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("saving session: %w", err)
	}
	return nil
}
