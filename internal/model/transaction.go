package model

import "time"

// TransactionType names the kind of ledger operation. The direction of a
// movement is carried by the type; Transaction.Quantity is always positive.
type TransactionType string

// Transaction types.
const (
	TxReceive         TransactionType = "receive"
	TxAssign          TransactionType = "assign"
	TxTransfer        TransactionType = "transfer"
	TxDemolishCentral TransactionType = "demolish_central"
	TxDemolishRoom    TransactionType = "demolish_room"
	TxUnassign        TransactionType = "unassign"
)

// TransactionTypes lists every type in a stable order.
var TransactionTypes = []TransactionType{
	TxReceive, TxAssign, TxTransfer, TxDemolishCentral, TxDemolishRoom, TxUnassign,
}

// Valid reports whether t is a known transaction type.
func (t TransactionType) Valid() bool {
	for _, known := range TransactionTypes {
		if t == known {
			return true
		}
	}
	return false
}

// CentralDelta returns the signed effect of one unit of t on the central store.
func (t TransactionType) CentralDelta() int {
	switch t {
	case TxReceive, TxUnassign:
		return 1
	case TxAssign, TxDemolishCentral:
		return -1
	}
	return 0
}

// Transaction is an immutable ledger record.
type Transaction struct {
	ID          int64           `json:"id"`
	ItemID      int64           `json:"item_id"`
	DormID      int64           `json:"dorm_id"`
	Type        TransactionType `json:"type"`
	Quantity    int             `json:"quantity"`
	FromBlockID *int64          `json:"from_block_id,omitempty"`
	FromRoomID  *int64          `json:"from_room_id,omitempty"`
	ToBlockID   *int64          `json:"to_block_id,omitempty"`
	ToRoomID    *int64          `json:"to_room_id,omitempty"`
	Reference   string          `json:"reference,omitempty"`
	Note        string          `json:"note,omitempty"`
	PerformedBy int64           `json:"performed_by"`
	CreatedAt   time.Time       `json:"created_at"`

	// Joined fields (not always populated).
	ItemName        string `json:"item_name,omitempty"`
	PerformedByName string `json:"performed_by_name,omitempty"`
}

// TransactionFilter narrows a transaction history query. Zero values match all.
type TransactionFilter struct {
	DormID int64
	ItemID int64
	RoomID int64
	Type   TransactionType
	Limit  int
}
