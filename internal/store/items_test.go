package store

import (
	"context"
	"testing"

	"github.com/erazemk/dijaskidom/internal/db"
	"github.com/erazemk/dijaskidom/internal/model"
)

func TestCreateAndGetItem(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	dorm, _ := CreateDorm(ctx, database, "Dom A", "")
	item, err := CreateItem(ctx, database, dorm.ID, "Mattress", "90x200", "")
	if err != nil {
		t.Fatalf("CreateItem: %v", err)
	}
	if item.Name != "Mattress" {
		t.Errorf("expected name 'Mattress', got %q", item.Name)
	}
	if item.Unit != model.DefaultUnit {
		t.Errorf("expected default unit, got %q", item.Unit)
	}
	if item.Quantity != 0 {
		t.Errorf("expected empty central store, got %d", item.Quantity)
	}
	if item.DormID != dorm.ID {
		t.Errorf("expected dorm %d, got %d", dorm.ID, item.DormID)
	}
}

func TestListItemsScopedToDorm(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	dormA, _ := CreateDorm(ctx, database, "Dom A", "")
	dormB, _ := CreateDorm(ctx, database, "Dom B", "")
	CreateItem(ctx, database, dormA.ID, "Chair", "", "")
	CreateItem(ctx, database, dormA.ID, "Desk", "", "")
	CreateItem(ctx, database, dormB.ID, "Chair", "", "")

	items, err := ListItems(ctx, database, dormA.ID)
	if err != nil {
		t.Fatalf("ListItems: %v", err)
	}
	if len(items) != 2 {
		t.Errorf("expected 2 items in dorm A, got %d", len(items))
	}
}

func TestUpdateItemKeepsQuantity(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	dorm, _ := CreateDorm(ctx, database, "Dom A", "")
	item, _ := CreateItem(ctx, database, dorm.ID, "Lamp", "", "")
	database.ExecContext(ctx, `UPDATE items SET quantity = 7 WHERE id = ?`, item.ID)

	if err := UpdateItem(ctx, database, item.ID, "Desk lamp", "LED", "pcs"); err != nil {
		t.Fatalf("UpdateItem: %v", err)
	}

	got, _ := GetItem(ctx, database, item.ID)
	if got.Name != "Desk lamp" || got.Description != "LED" {
		t.Errorf("metadata not updated: %+v", got)
	}
	if got.Quantity != 7 {
		t.Errorf("expected quantity to stay 7, got %d", got.Quantity)
	}
}

func TestGetMissingItem(t *testing.T) {
	database := db.NewTestDB(t)

	got, err := GetItem(context.Background(), database, 42)
	if err != nil {
		t.Fatalf("GetItem: %v", err)
	}
	if got != nil {
		t.Error("expected nil for missing item")
	}
}
