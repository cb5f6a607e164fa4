package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/erazemk/dijaskidom/internal/db"
	"github.com/erazemk/dijaskidom/internal/model"
)

const transactionSelect = `SELECT t.id, t.item_id, t.dorm_id, t.type, t.quantity,
        t.from_block_id, t.from_room_id, t.to_block_id, t.to_room_id,
        t.reference, t.note, t.performed_by, t.created_at,
        i.name AS item_name, COALESCE(u.username, '') AS performed_by_name
 FROM inventory_transactions t
 JOIN items i ON i.id = t.item_id
 LEFT JOIN users u ON u.id = t.performed_by`

// InsertTransaction appends a ledger record and returns its ID. It is the
// only write path into inventory_transactions; records are never updated.
func InsertTransaction(ctx context.Context, q db.Querier, t *model.Transaction) (int64, error) {
	var id int64
	err := q.QueryRowContext(ctx,
		`INSERT INTO inventory_transactions
		     (item_id, dorm_id, type, quantity, from_block_id, from_room_id, to_block_id, to_room_id,
		      reference, note, performed_by)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 RETURNING id`,
		t.ItemID, t.DormID, string(t.Type), t.Quantity,
		t.FromBlockID, t.FromRoomID, t.ToBlockID, t.ToRoomID,
		nullString(t.Reference), nullString(t.Note), t.PerformedBy,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("recording transaction: %w", err)
	}
	return id, nil
}

// GetTransaction returns a transaction by ID.
func GetTransaction(ctx context.Context, q db.Querier, id int64) (*model.Transaction, error) {
	row := q.QueryRowContext(ctx, transactionSelect+` WHERE t.id = ?`, id)
	t, err := scanTransaction(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting transaction: %w", err)
	}
	return t, nil
}

// ListTransactions returns transactions matching the filter, newest first.
func ListTransactions(ctx context.Context, database *db.DB, f model.TransactionFilter) ([]model.Transaction, error) {
	var where []string
	var args []any

	if f.DormID > 0 {
		where = append(where, `t.dorm_id = ?`)
		args = append(args, f.DormID)
	}
	if f.ItemID > 0 {
		where = append(where, `t.item_id = ?`)
		args = append(args, f.ItemID)
	}
	if f.RoomID > 0 {
		where = append(where, `(t.from_room_id = ? OR t.to_room_id = ?)`)
		args = append(args, f.RoomID, f.RoomID)
	}
	if f.Type != "" {
		where = append(where, `t.type = ?`)
		args = append(args, string(f.Type))
	}

	query := transactionSelect
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, ` AND `)
	}
	query += ` ORDER BY t.created_at DESC, t.id DESC`
	if f.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, f.Limit)
	}

	rows, err := database.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing transactions: %w", err)
	}
	defer rows.Close()

	var txs []model.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning transaction: %w", err)
		}
		txs = append(txs, *t)
	}
	return txs, rows.Err()
}

// GetItemHistory returns the ledger history of an item.
func GetItemHistory(ctx context.Context, database *db.DB, itemID int64) ([]model.Transaction, error) {
	return ListTransactions(ctx, database, model.TransactionFilter{ItemID: itemID})
}

func scanTransaction(row rowScanner) (*model.Transaction, error) {
	t := &model.Transaction{}
	var typ string
	var reference, note sql.NullString
	if err := row.Scan(&t.ID, &t.ItemID, &t.DormID, &typ, &t.Quantity,
		&t.FromBlockID, &t.FromRoomID, &t.ToBlockID, &t.ToRoomID,
		&reference, &note, &t.PerformedBy, &t.CreatedAt,
		&t.ItemName, &t.PerformedByName); err != nil {
		return nil, err
	}
	t.Type = model.TransactionType(typ)
	t.Reference = reference.String
	t.Note = note.String
	return t, nil
}
