package model

import "time"

// Dorm is a dormitory. Items and their stock are always scoped to one dorm.
type Dorm struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Address   string    `json:"address,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Block is a building or wing of a dorm.
type Block struct {
	ID        int64     `json:"id"`
	DormID    int64     `json:"dorm_id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// Room belongs to exactly one block.
type Room struct {
	ID        int64     `json:"id"`
	BlockID   int64     `json:"block_id"`
	Number    string    `json:"number"`
	Capacity  int       `json:"capacity"`
	CreatedAt time.Time `json:"created_at"`

	// Joined fields (not always populated).
	DormID    int64  `json:"dorm_id,omitempty"`
	BlockName string `json:"block_name,omitempty"`
}

// RoomLocation is the resolved position of a room in the dorm hierarchy.
type RoomLocation struct {
	RoomID  int64 `json:"room_id"`
	BlockID int64 `json:"block_id"`
	DormID  int64 `json:"dorm_id"`
}
