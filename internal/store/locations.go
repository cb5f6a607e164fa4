package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/erazemk/dijaskidom/internal/db"
	"github.com/erazemk/dijaskidom/internal/model"
)

// CreateDorm creates a new dorm.
func CreateDorm(ctx context.Context, database *db.DB, name, address string) (*model.Dorm, error) {
	var id int64
	err := database.QueryRowContext(ctx,
		`INSERT INTO dorms (name, address) VALUES (?, ?) RETURNING id`,
		name, nullString(address),
	).Scan(&id)
	if err != nil {
		return nil, fmt.Errorf("creating dorm: %w", err)
	}
	return GetDorm(ctx, database, id)
}

// GetDorm returns a dorm by ID.
func GetDorm(ctx context.Context, database *db.DB, id int64) (*model.Dorm, error) {
	d := &model.Dorm{}
	var address sql.NullString
	err := database.QueryRowContext(ctx,
		`SELECT id, name, address, created_at FROM dorms WHERE id = ?`, id,
	).Scan(&d.ID, &d.Name, &address, &d.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting dorm: %w", err)
	}
	d.Address = address.String
	return d, nil
}

// ListDorms returns all dorms ordered by name.
func ListDorms(ctx context.Context, database *db.DB) ([]model.Dorm, error) {
	rows, err := database.QueryContext(ctx,
		`SELECT id, name, address, created_at FROM dorms ORDER BY name`,
	)
	if err != nil {
		return nil, fmt.Errorf("listing dorms: %w", err)
	}
	defer rows.Close()

	var dorms []model.Dorm
	for rows.Next() {
		var d model.Dorm
		var address sql.NullString
		if err := rows.Scan(&d.ID, &d.Name, &address, &d.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning dorm: %w", err)
		}
		d.Address = address.String
		dorms = append(dorms, d)
	}
	return dorms, rows.Err()
}

// CreateBlock creates a block in a dorm.
func CreateBlock(ctx context.Context, database *db.DB, dormID int64, name string) (*model.Block, error) {
	var id int64
	err := database.QueryRowContext(ctx,
		`INSERT INTO blocks (dorm_id, name) VALUES (?, ?) RETURNING id`,
		dormID, name,
	).Scan(&id)
	if err != nil {
		return nil, fmt.Errorf("creating block: %w", err)
	}
	return GetBlock(ctx, database, id)
}

// GetBlock returns a block by ID.
func GetBlock(ctx context.Context, database *db.DB, id int64) (*model.Block, error) {
	b := &model.Block{}
	err := database.QueryRowContext(ctx,
		`SELECT id, dorm_id, name, created_at FROM blocks WHERE id = ?`, id,
	).Scan(&b.ID, &b.DormID, &b.Name, &b.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting block: %w", err)
	}
	return b, nil
}

// ListBlocks returns the blocks of a dorm.
func ListBlocks(ctx context.Context, database *db.DB, dormID int64) ([]model.Block, error) {
	rows, err := database.QueryContext(ctx,
		`SELECT id, dorm_id, name, created_at FROM blocks WHERE dorm_id = ? ORDER BY name`, dormID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing blocks: %w", err)
	}
	defer rows.Close()

	var blocks []model.Block
	for rows.Next() {
		var b model.Block
		if err := rows.Scan(&b.ID, &b.DormID, &b.Name, &b.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning block: %w", err)
		}
		blocks = append(blocks, b)
	}
	return blocks, rows.Err()
}

// CreateRoom creates a room in a block.
func CreateRoom(ctx context.Context, database *db.DB, blockID int64, number string, capacity int) (*model.Room, error) {
	if capacity < 0 {
		return nil, fmt.Errorf("capacity must not be negative")
	}

	var id int64
	err := database.QueryRowContext(ctx,
		`INSERT INTO rooms (block_id, number, capacity) VALUES (?, ?, ?) RETURNING id`,
		blockID, number, capacity,
	).Scan(&id)
	if err != nil {
		return nil, fmt.Errorf("creating room: %w", err)
	}
	return GetRoom(ctx, database, id)
}

// GetRoom returns a room by ID, with its block name and dorm joined in.
func GetRoom(ctx context.Context, database *db.DB, id int64) (*model.Room, error) {
	r := &model.Room{}
	err := database.QueryRowContext(ctx,
		`SELECT r.id, r.block_id, r.number, r.capacity, r.created_at, b.dorm_id, b.name
		 FROM rooms r
		 JOIN blocks b ON b.id = r.block_id
		 WHERE r.id = ?`, id,
	).Scan(&r.ID, &r.BlockID, &r.Number, &r.Capacity, &r.CreatedAt, &r.DormID, &r.BlockName)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting room: %w", err)
	}
	return r, nil
}

// ListRooms returns the rooms of a block.
func ListRooms(ctx context.Context, database *db.DB, blockID int64) ([]model.Room, error) {
	rows, err := database.QueryContext(ctx,
		`SELECT r.id, r.block_id, r.number, r.capacity, r.created_at, b.dorm_id, b.name
		 FROM rooms r
		 JOIN blocks b ON b.id = r.block_id
		 WHERE r.block_id = ?
		 ORDER BY r.number`, blockID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing rooms: %w", err)
	}
	defer rows.Close()

	var rooms []model.Room
	for rows.Next() {
		var r model.Room
		if err := rows.Scan(&r.ID, &r.BlockID, &r.Number, &r.Capacity, &r.CreatedAt, &r.DormID, &r.BlockName); err != nil {
			return nil, fmt.Errorf("scanning room: %w", err)
		}
		rooms = append(rooms, r)
	}
	return rooms, rows.Err()
}

// RoomDirectory resolves rooms to their block and dorm using the rooms and
// blocks tables.
type RoomDirectory struct {
	DB *db.DB
}

// LookupRoom returns the location of a room, or nil if the room does not exist.
func (d RoomDirectory) LookupRoom(ctx context.Context, roomID int64) (*model.RoomLocation, error) {
	loc := &model.RoomLocation{RoomID: roomID}
	err := d.DB.QueryRowContext(ctx,
		`SELECT r.block_id, b.dorm_id
		 FROM rooms r
		 JOIN blocks b ON b.id = r.block_id
		 WHERE r.id = ?`, roomID,
	).Scan(&loc.BlockID, &loc.DormID)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("looking up room: %w", err)
	}
	return loc, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
