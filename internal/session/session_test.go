package session

import (
	"context"
	"testing"

	"github.com/ziadkadry99/bizmate/internal/db"
	"github.com/ziadkadry99/bizmate/internal/errs"
)

func setupStore(t *testing.T) *Store {
	t.Helper()
	database, err := db.OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	t.Cleanup(func() { database.Close() })
	return NewStore(database)
}

func TestGetBeforePut(t *testing.T) {
	store := setupStore(t)

	_, err := store.Get(context.Background())
	if !errs.IsNotFound(err) {
		t.Errorf("error = %v, want NotFoundError", err)
	}
}

func TestPutOverwritesSingleRow(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	first := &Session{CompanyID: "co-1", ActingAs: "role-ceo", Confidence: 1.0}
	if err := store.Put(ctx, first); err != nil {
		t.Fatalf("Put: %v", err)
	}

	second := &Session{CompanyID: "co-1", ActingAs: "role-ops", Confidence: 0.8, CurrentFocus: "vendors"}
	if err := store.Put(ctx, second); err != nil {
		t.Fatalf("Put again: %v", err)
	}

	got, err := store.Get(ctx)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.ActingAs != "role-ops" {
		t.Errorf("ActingAs = %q, want role-ops", got.ActingAs)
	}
	if got.Confidence != 0.8 {
		t.Errorf("Confidence = %v, want 0.8", got.Confidence)
	}
	if got.CurrentFocus != "vendors" {
		t.Errorf("CurrentFocus = %q", got.CurrentFocus)
	}
	if got.UpdatedAt.IsZero() {
		t.Error("UpdatedAt not set")
	}
}

func TestPutRejectsOutOfRangeConfidence(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	for _, confidence := range []float64{-0.1, 1.1} {
		sess := &Session{CompanyID: "co-1", ActingAs: "role-ceo", Confidence: confidence}
		if err := store.Put(ctx, sess); err == nil {
			t.Errorf("Put accepted confidence %v", confidence)
		}
	}
}
