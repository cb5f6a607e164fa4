package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"

	"github.com/erazemk/dijaskidom/internal/db"
	"github.com/erazemk/dijaskidom/internal/model"
)

// MaxQuantity bounds every balance and every single movement. It matches the
// 32-bit INTEGER quantity columns of the PostgreSQL schema.
const MaxQuantity = math.MaxInt32

// lockItem locks an item's central balance and returns it.
func lockItem(ctx context.Context, tx *db.Tx, itemID, dormID int64) (int, error) {
	var qty int
	err := tx.QueryRowContext(ctx,
		`SELECT quantity FROM items WHERE id = ? AND dorm_id = ?`+tx.Dialect.ForUpdate(),
		itemID, dormID,
	).Scan(&qty)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, notFoundf("item %d not found in dorm %d", itemID, dormID)
	}
	if err != nil {
		return 0, fmt.Errorf("locking item: %w", err)
	}
	return qty, nil
}

// requireItem checks that an item belongs to a dorm without locking it.
func requireItem(ctx context.Context, tx *db.Tx, itemID, dormID int64) error {
	var id int64
	err := tx.QueryRowContext(ctx,
		`SELECT id FROM items WHERE id = ? AND dorm_id = ?`, itemID, dormID,
	).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return notFoundf("item %d not found in dorm %d", itemID, dormID)
	}
	if err != nil {
		return fmt.Errorf("looking up item: %w", err)
	}
	return nil
}

// adjustCentral applies the central-store effect of one typ movement of qty
// to the locked balance have and writes the result.
func adjustCentral(ctx context.Context, tx *db.Tx, itemID int64, have int, typ model.TransactionType, qty int) error {
	delta := typ.CentralDelta() * qty
	switch {
	case delta > 0 && have > MaxQuantity-delta:
		return invalidf("central quantity of item %d would exceed %d", itemID, MaxQuantity)
	case have+delta < 0:
		return &InsufficientError{Location: LocationCentral, ItemID: itemID, Available: have, Requested: qty}
	}
	return setItemQuantity(ctx, tx, itemID, have+delta)
}

func setItemQuantity(ctx context.Context, tx *db.Tx, itemID int64, qty int) error {
	_, err := tx.ExecContext(ctx,
		`UPDATE items SET quantity = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		qty, itemID,
	)
	if err != nil {
		return fmt.Errorf("updating item quantity: %w", err)
	}
	return nil
}

type stockRow struct {
	blockID  int64
	quantity int
}

// lockStock locks the (item, room) allocation. It returns nil when the room
// never held the item.
func lockStock(ctx context.Context, tx *db.Tx, itemID, roomID int64) (*stockRow, error) {
	var row stockRow
	err := tx.QueryRowContext(ctx,
		`SELECT block_id, quantity FROM inventory_stock WHERE item_id = ? AND room_id = ?`+tx.Dialect.ForUpdate(),
		itemID, roomID,
	).Scan(&row.blockID, &row.quantity)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("locking room stock: %w", err)
	}
	return &row, nil
}

// adjustRoomStock applies delta to an item's allocation in a room and
// returns the room's block. The row is created on the first positive
// delta. A result below zero fails with *InsufficientError and nothing is
// written.
func adjustRoomStock(ctx context.Context, tx *db.Tx, itemID, dormID int64, room roomRef, delta int) (int64, error) {
	row, err := lockStock(ctx, tx, itemID, room.id)
	if err != nil {
		return 0, err
	}

	if row == nil {
		if delta < 0 {
			return 0, &InsufficientError{Location: LocationRoom, ItemID: itemID, RoomID: room.id, Available: 0, Requested: -delta}
		}
		if room.err != nil {
			return 0, room.err
		}
		_, err := tx.ExecContext(ctx,
			`INSERT INTO inventory_stock (item_id, dorm_id, block_id, room_id, quantity)
			 VALUES (?, ?, ?, ?, 0)
			 ON CONFLICT (item_id, room_id) DO NOTHING`,
			itemID, dormID, room.loc.BlockID, room.id,
		)
		if err != nil {
			return 0, fmt.Errorf("creating room stock: %w", err)
		}
		// Another transaction may have created the row first; take its lock.
		if row, err = lockStock(ctx, tx, itemID, room.id); err != nil {
			return 0, err
		}
		if row == nil {
			return 0, fmt.Errorf("room stock for item %d in room %d missing after insert", itemID, room.id)
		}
	}

	if delta > 0 && row.quantity > MaxQuantity-delta {
		return 0, invalidf("allocation of item %d in room %d would exceed %d", itemID, room.id, MaxQuantity)
	}
	next := row.quantity + delta
	if next < 0 {
		return 0, &InsufficientError{Location: LocationRoom, ItemID: itemID, RoomID: room.id, Available: row.quantity, Requested: -delta}
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE inventory_stock SET quantity = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE item_id = ? AND room_id = ?`,
		next, itemID, room.id,
	)
	if err != nil {
		return 0, fmt.Errorf("updating room stock: %w", err)
	}
	return row.blockID, nil
}
