package model

import "time"

// Item is an inventory item definition owned by a dorm. Quantity is the
// central store balance; room allocations live in Stock.
type Item struct {
	ID          int64     `json:"id"`
	DormID      int64     `json:"dorm_id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Unit        string    `json:"unit"`
	Quantity    int       `json:"quantity"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// DefaultUnit is used when an item is created without a unit.
const DefaultUnit = "pcs"

// Stock is the allocation of an item to a single room.
type Stock struct {
	ItemID    int64     `json:"item_id"`
	DormID    int64     `json:"dorm_id"`
	BlockID   int64     `json:"block_id"`
	RoomID    int64     `json:"room_id"`
	Quantity  int       `json:"quantity"`
	UpdatedAt time.Time `json:"updated_at"`

	// Joined fields (not always populated).
	ItemName   string `json:"item_name,omitempty"`
	RoomNumber string `json:"room_number,omitempty"`
	BlockName  string `json:"block_name,omitempty"`
}
