package store

import (
	"context"
	"testing"

	"github.com/erazemk/dijaskidom/internal/db"
	"github.com/erazemk/dijaskidom/internal/model"
)

type fixture struct {
	dorm  *model.Dorm
	block *model.Block
	room  *model.Room
	item  *model.Item
	user  *model.User
}

func newFixture(t *testing.T, database *db.DB) fixture {
	t.Helper()
	ctx := context.Background()

	var f fixture
	var err error
	if f.dorm, err = CreateDorm(ctx, database, "Dom", ""); err != nil {
		t.Fatalf("CreateDorm: %v", err)
	}
	if f.block, err = CreateBlock(ctx, database, f.dorm.ID, "A"); err != nil {
		t.Fatalf("CreateBlock: %v", err)
	}
	if f.room, err = CreateRoom(ctx, database, f.block.ID, "A1", 2); err != nil {
		t.Fatalf("CreateRoom: %v", err)
	}
	if f.item, err = CreateItem(ctx, database, f.dorm.ID, "Pillow", "", ""); err != nil {
		t.Fatalf("CreateItem: %v", err)
	}
	if f.user, err = CreateUser(ctx, database, "warden", "hash", model.RoleManager, nil); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	return f
}

func TestInsertAndGetTransaction(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	f := newFixture(t, database)

	id, err := InsertTransaction(ctx, database, &model.Transaction{
		ItemID:      f.item.ID,
		DormID:      f.dorm.ID,
		Type:        model.TxAssign,
		Quantity:    4,
		ToBlockID:   &f.block.ID,
		ToRoomID:    &f.room.ID,
		Reference:   "PO-17",
		PerformedBy: f.user.ID,
	})
	if err != nil {
		t.Fatalf("InsertTransaction: %v", err)
	}

	got, err := GetTransaction(ctx, database, id)
	if err != nil {
		t.Fatalf("GetTransaction: %v", err)
	}
	if got.Type != model.TxAssign || got.Quantity != 4 {
		t.Errorf("unexpected transaction: %+v", got)
	}
	if got.FromRoomID != nil || got.FromBlockID != nil {
		t.Errorf("expected no source location, got %v/%v", got.FromBlockID, got.FromRoomID)
	}
	if got.ToRoomID == nil || *got.ToRoomID != f.room.ID {
		t.Errorf("expected to_room_id %d, got %v", f.room.ID, got.ToRoomID)
	}
	if got.Reference != "PO-17" || got.Note != "" {
		t.Errorf("unexpected reference/note: %q/%q", got.Reference, got.Note)
	}
	if got.ItemName != "Pillow" || got.PerformedByName != "warden" {
		t.Errorf("unexpected joined fields: %q/%q", got.ItemName, got.PerformedByName)
	}
}

func TestInsertTransactionRejectsZeroQuantity(t *testing.T) {
	database := db.NewTestDB(t)
	f := newFixture(t, database)

	_, err := InsertTransaction(context.Background(), database, &model.Transaction{
		ItemID: f.item.ID, DormID: f.dorm.ID, Type: model.TxReceive, Quantity: 0, PerformedBy: f.user.ID,
	})
	if err == nil {
		t.Error("expected CHECK constraint to reject zero quantity")
	}
}

func TestListTransactionsFiltered(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	f := newFixture(t, database)

	records := []*model.Transaction{
		{Type: model.TxReceive, Quantity: 10},
		{Type: model.TxAssign, Quantity: 3, ToBlockID: &f.block.ID, ToRoomID: &f.room.ID},
		{Type: model.TxUnassign, Quantity: 1, FromBlockID: &f.block.ID, FromRoomID: &f.room.ID},
	}
	for _, r := range records {
		r.ItemID, r.DormID, r.PerformedBy = f.item.ID, f.dorm.ID, f.user.ID
		if _, err := InsertTransaction(ctx, database, r); err != nil {
			t.Fatalf("InsertTransaction: %v", err)
		}
	}

	all, _ := ListTransactions(ctx, database, model.TransactionFilter{DormID: f.dorm.ID})
	if len(all) != 3 {
		t.Errorf("expected 3 transactions, got %d", len(all))
	}

	byRoom, _ := ListTransactions(ctx, database, model.TransactionFilter{RoomID: f.room.ID})
	if len(byRoom) != 2 {
		t.Errorf("expected 2 transactions touching the room, got %d", len(byRoom))
	}

	byType, _ := ListTransactions(ctx, database, model.TransactionFilter{Type: model.TxReceive})
	if len(byType) != 1 {
		t.Errorf("expected 1 receive, got %d", len(byType))
	}

	limited, _ := ListTransactions(ctx, database, model.TransactionFilter{Limit: 2})
	if len(limited) != 2 {
		t.Errorf("expected 2 with limit, got %d", len(limited))
	}
	if limited[0].Type != model.TxUnassign {
		t.Errorf("expected newest first, got %s", limited[0].Type)
	}

	history, _ := GetItemHistory(ctx, database, f.item.ID)
	if len(history) != 3 {
		t.Errorf("expected 3 history entries, got %d", len(history))
	}
}

func TestStockQueries(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	f := newFixture(t, database)

	qty, err := GetStockQuantity(ctx, database, f.item.ID, f.room.ID)
	if err != nil {
		t.Fatalf("GetStockQuantity: %v", err)
	}
	if qty != 0 {
		t.Errorf("expected absent row to read as 0, got %d", qty)
	}

	_, err = database.ExecContext(ctx,
		`INSERT INTO inventory_stock (item_id, dorm_id, block_id, room_id, quantity) VALUES (?, ?, ?, ?, ?)`,
		f.item.ID, f.dorm.ID, f.block.ID, f.room.ID, 6)
	if err != nil {
		t.Fatalf("inserting stock: %v", err)
	}

	qty, _ = GetStockQuantity(ctx, database, f.item.ID, f.room.ID)
	if qty != 6 {
		t.Errorf("expected 6, got %d", qty)
	}

	dist, _ := GetItemDistribution(ctx, database, f.item.ID)
	if len(dist) != 1 || dist[0].RoomNumber != "A1" || dist[0].BlockName != "A" {
		t.Errorf("unexpected distribution: %+v", dist)
	}

	roomStock, _ := GetRoomStock(ctx, database, f.room.ID)
	if len(roomStock) != 1 || roomStock[0].ItemName != "Pillow" {
		t.Errorf("unexpected room stock: %+v", roomStock)
	}
}
