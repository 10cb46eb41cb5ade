package company

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

func TestCreateAndGet(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	c := &Company{
		Name:          "Acme Anvils",
		Description:   "Heavy things, delivered fast",
		BusinessModel: "Direct-to-consumer hardware",
		Goals:         []string{"double revenue"},
		Constraints:   []string{"two-person team"},
		Systems:       []string{"stripe", "shopify"},
		Metrics:       map[string]any{"mrr": 12000.0},
	}
	if err := store.Create(ctx, c); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if c.ID == "" {
		t.Fatal("Create did not generate an id")
	}

	got, err := store.Get(ctx, c.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Name != "Acme Anvils" {
		t.Errorf("Name = %q", got.Name)
	}
	if len(got.Goals) != 1 || got.Goals[0] != "double revenue" {
		t.Errorf("Goals = %v", got.Goals)
	}
	if len(got.Systems) != 2 {
		t.Errorf("Systems = %v", got.Systems)
	}
	if got.Metrics["mrr"] != 12000.0 {
		t.Errorf("Metrics = %v", got.Metrics)
	}
}

func TestGetAny(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	if _, err := store.GetAny(ctx); !errs.IsNotFound(err) {
		t.Errorf("GetAny on empty store = %v, want NotFoundError", err)
	}

	c := &Company{Name: "Acme"}
	if err := store.Create(ctx, c); err != nil {
		t.Fatalf("Create: %v", err)
	}

	got, err := store.GetAny(ctx)
	if err != nil {
		t.Fatalf("GetAny: %v", err)
	}
	if got.ID != c.ID {
		t.Errorf("GetAny = %s, want %s", got.ID, c.ID)
	}
}

func TestUpdate(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	c := &Company{Name: "Acme"}
	if err := store.Create(ctx, c); err != nil {
		t.Fatalf("Create: %v", err)
	}

	c.ContextSummary = "Acme: anvils for coyotes"
	c.Goals = []string{"expand catalog"}
	if err := store.Update(ctx, c); err != nil {
		t.Fatalf("Update: %v", err)
	}

	got, err := store.Get(ctx, c.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.ContextSummary != "Acme: anvils for coyotes" {
		t.Errorf("ContextSummary = %q", got.ContextSummary)
	}
	if !got.UpdatedAt.After(got.CreatedAt) && !got.UpdatedAt.Equal(got.CreatedAt) {
		t.Errorf("UpdatedAt %v before CreatedAt %v", got.UpdatedAt, got.CreatedAt)
	}
}

func TestUpdateMissingCompany(t *testing.T) {
	store := setupStore(t)

	c := &Company{ID: "nope", Name: "Ghost"}
	if err := store.Update(context.Background(), c); err == nil {
		t.Fatal("Update of missing company succeeded")
	}
}
