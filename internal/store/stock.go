package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/erazemk/dijaskidom/internal/db"
	"github.com/erazemk/dijaskidom/internal/model"
)

const stockSelect = `SELECT s.item_id, s.dorm_id, s.block_id, s.room_id, s.quantity, s.updated_at,
        i.name AS item_name, r.number AS room_number, b.name AS block_name
 FROM inventory_stock s
 JOIN items i ON i.id = s.item_id
 JOIN rooms r ON r.id = s.room_id
 JOIN blocks b ON b.id = s.block_id`

// GetItemDistribution returns the room allocations of an item. Rooms whose
// allocation dropped to zero are omitted.
func GetItemDistribution(ctx context.Context, database *db.DB, itemID int64) ([]model.Stock, error) {
	rows, err := database.QueryContext(ctx,
		stockSelect+` WHERE s.item_id = ? AND s.quantity > 0 ORDER BY b.name, r.number`, itemID,
	)
	if err != nil {
		return nil, fmt.Errorf("getting item distribution: %w", err)
	}
	defer rows.Close()

	return scanStock(rows)
}

// GetRoomStock returns every item allocated to a room.
func GetRoomStock(ctx context.Context, database *db.DB, roomID int64) ([]model.Stock, error) {
	rows, err := database.QueryContext(ctx,
		stockSelect+` WHERE s.room_id = ? AND s.quantity > 0 ORDER BY i.name`, roomID,
	)
	if err != nil {
		return nil, fmt.Errorf("getting room stock: %w", err)
	}
	defer rows.Close()

	return scanStock(rows)
}

// GetStockQuantity returns the allocation of an item in a room. A room that
// never received the item has an allocation of zero.
func GetStockQuantity(ctx context.Context, q db.Querier, itemID, roomID int64) (int, error) {
	var qty int
	err := q.QueryRowContext(ctx,
		`SELECT quantity FROM inventory_stock WHERE item_id = ? AND room_id = ?`,
		itemID, roomID,
	).Scan(&qty)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("getting stock quantity: %w", err)
	}
	return qty, nil
}

func scanStock(rows *sql.Rows) ([]model.Stock, error) {
	var stock []model.Stock
	for rows.Next() {
		var s model.Stock
		if err := rows.Scan(&s.ItemID, &s.DormID, &s.BlockID, &s.RoomID, &s.Quantity, &s.UpdatedAt,
			&s.ItemName, &s.RoomNumber, &s.BlockName); err != nil {
			return nil, fmt.Errorf("scanning stock: %w", err)
		}
		stock = append(stock, s)
	}
	return stock, rows.Err()
}
