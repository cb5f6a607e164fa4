package db

import (
	"context"
	"testing"
)

func TestMigrateIsIdempotent(t *testing.T) {
	database := NewTestDB(t)
	ctx := context.Background()

	if err := Migrate(ctx, database); err != nil {
		t.Fatalf("second Migrate: %v", err)
	}

	var count int
	err := database.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?`, "inventory_transactions",
	).Scan(&count)
	if err != nil {
		t.Fatalf("querying sqlite_master: %v", err)
	}
	if count != 1 {
		t.Errorf("expected inventory_transactions table, got count %d", count)
	}
}

func TestNegativeQuantityRejectedBySchema(t *testing.T) {
	database := NewTestDB(t)
	ctx := context.Background()

	if _, err := database.ExecContext(ctx, `INSERT INTO dorms (name) VALUES (?)`, "Dom A"); err != nil {
		t.Fatalf("inserting dorm: %v", err)
	}
	_, err := database.ExecContext(ctx,
		`INSERT INTO items (dorm_id, name, quantity) VALUES (?, ?, ?)`, 1, "Mattress", -1)
	if err == nil {
		t.Error("expected CHECK constraint to reject negative quantity")
	}
}

func TestOpenMemory(t *testing.T) {
	database, err := Open(":memory:")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer database.Close()

	if database.Dialect != SQLite {
		t.Errorf("expected sqlite dialect, got %q", database.Dialect)
	}
	if err := Migrate(context.Background(), database); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
}

func TestOpenDriverRejectsUnknown(t *testing.T) {
	if _, err := OpenDriver("mysql", "x"); err == nil {
		t.Error("expected error for unknown driver")
	}

	database, err := OpenDriver("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("OpenDriver: %v", err)
	}
	defer database.Close()
	if database.Dialect != SQLite {
		t.Errorf("expected sqlite dialect, got %q", database.Dialect)
	}
}
