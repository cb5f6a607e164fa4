package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/erazemk/dijaskidom/internal/db"
	"github.com/erazemk/dijaskidom/internal/model"
)

const itemColumns = `id, dorm_id, name, description, unit, quantity, created_at, updated_at`

// CreateItem creates a new item definition with an empty central store.
// Stock only enters the store through the ledger.
func CreateItem(ctx context.Context, database *db.DB, dormID int64, name, description, unit string) (*model.Item, error) {
	if unit == "" {
		unit = model.DefaultUnit
	}

	var id int64
	err := database.QueryRowContext(ctx,
		`INSERT INTO items (dorm_id, name, description, unit) VALUES (?, ?, ?, ?) RETURNING id`,
		dormID, name, nullString(description), unit,
	).Scan(&id)
	if err != nil {
		return nil, fmt.Errorf("creating item: %w", err)
	}

	return GetItem(ctx, database, id)
}

// GetItem returns an item by ID.
func GetItem(ctx context.Context, database *db.DB, id int64) (*model.Item, error) {
	row := database.QueryRowContext(ctx,
		`SELECT `+itemColumns+` FROM items WHERE id = ?`, id,
	)
	item, err := scanItem(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting item: %w", err)
	}
	return item, nil
}

// ListItems returns the items of a dorm ordered by name.
func ListItems(ctx context.Context, database *db.DB, dormID int64) ([]model.Item, error) {
	rows, err := database.QueryContext(ctx,
		`SELECT `+itemColumns+` FROM items WHERE dorm_id = ? ORDER BY name`, dormID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing items: %w", err)
	}
	defer rows.Close()

	var items []model.Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning item: %w", err)
		}
		items = append(items, *item)
	}
	return items, rows.Err()
}

// UpdateItem updates an item's metadata. The quantity is owned by the ledger
// and cannot be changed here.
func UpdateItem(ctx context.Context, database *db.DB, id int64, name, description, unit string) error {
	if unit == "" {
		unit = model.DefaultUnit
	}
	_, err := database.ExecContext(ctx,
		`UPDATE items SET name = ?, description = ?, unit = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ?`,
		name, nullString(description), unit, id,
	)
	if err != nil {
		return fmt.Errorf("updating item: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanItem(row rowScanner) (*model.Item, error) {
	item := &model.Item{}
	var description sql.NullString
	if err := row.Scan(&item.ID, &item.DormID, &item.Name, &description, &item.Unit,
		&item.Quantity, &item.CreatedAt, &item.UpdatedAt); err != nil {
		return nil, err
	}
	item.Description = description.String
	return item, nil
}
