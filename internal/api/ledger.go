package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/erazemk/dijaskidom/internal/ledger"
	"github.com/erazemk/dijaskidom/internal/model"
)

// LedgerHandler exposes the six ledger operations. The acting user is taken
// from the token and passed to the ledger explicitly.
type LedgerHandler struct {
	Ledger *ledger.Ledger
}

// Quantity carries no validate tag: the ledger owns that check so every
// caller gets the same error.
type ledgerRequest struct {
	ItemID     int64  `json:"item_id" validate:"required,gt=0"`
	DormID     int64  `json:"dorm_id" validate:"required,gt=0"`
	RoomID     int64  `json:"room_id"`
	FromRoomID int64  `json:"from_room_id"`
	ToRoomID   int64  `json:"to_room_id"`
	Quantity   int    `json:"quantity"`
	Reference  string `json:"reference" validate:"max=200"`
	Note       string `json:"note" validate:"max=2000"`
	Reason     string `json:"reason" validate:"max=2000"`
}

func (req ledgerRequest) memo() ledger.Memo {
	return ledger.Memo{Reference: req.Reference, Note: req.Note}
}

type ledgerOp func(ctx context.Context, by int64, req ledgerRequest) (*model.Transaction, error)

// Receive handles POST /api/ledger/receive.
func (h *LedgerHandler) Receive(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, func(ctx context.Context, by int64, req ledgerRequest) (*model.Transaction, error) {
		return h.Ledger.Receive(ctx, by, req.ItemID, req.DormID, req.Quantity, req.memo())
	})
}

// Assign handles POST /api/ledger/assign.
func (h *LedgerHandler) Assign(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, func(ctx context.Context, by int64, req ledgerRequest) (*model.Transaction, error) {
		return h.Ledger.AssignToRoom(ctx, by, req.ItemID, req.DormID, req.RoomID, req.Quantity, req.memo())
	})
}

// Transfer handles POST /api/ledger/transfer.
func (h *LedgerHandler) Transfer(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, func(ctx context.Context, by int64, req ledgerRequest) (*model.Transaction, error) {
		return h.Ledger.TransferRoomToRoom(ctx, by, req.ItemID, req.DormID, req.FromRoomID, req.ToRoomID, req.Quantity, req.memo())
	})
}

// DemolishCentral handles POST /api/ledger/demolish-central.
func (h *LedgerHandler) DemolishCentral(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, func(ctx context.Context, by int64, req ledgerRequest) (*model.Transaction, error) {
		return h.Ledger.DemolishCentral(ctx, by, req.ItemID, req.DormID, req.Quantity, req.Reason)
	})
}

// DemolishRoom handles POST /api/ledger/demolish-room.
func (h *LedgerHandler) DemolishRoom(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, func(ctx context.Context, by int64, req ledgerRequest) (*model.Transaction, error) {
		return h.Ledger.DemolishRoom(ctx, by, req.ItemID, req.DormID, req.RoomID, req.Quantity, req.Reason)
	})
}

// Unassign handles POST /api/ledger/unassign.
func (h *LedgerHandler) Unassign(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, func(ctx context.Context, by int64, req ledgerRequest) (*model.Transaction, error) {
		return h.Ledger.UnassignFromRoom(ctx, by, req.ItemID, req.DormID, req.RoomID, req.Quantity, req.memo())
	})
}

func (h *LedgerHandler) serve(w http.ResponseWriter, r *http.Request, op ledgerOp) {
	claims := GetClaims(r.Context())
	if claims == nil {
		jsonError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	var req ledgerRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}

	if !canAccessDorm(claims, req.DormID) {
		jsonError(w, http.StatusForbidden, "no access to this dorm")
		return
	}

	t, err := op(r.Context(), claims.UserID, req)
	if err != nil {
		writeLedgerError(w, err)
		return
	}

	jsonResponse(w, http.StatusCreated, t)
}

// writeLedgerError maps ledger errors to status codes. Internal errors are
// logged and never shown to the client.
func writeLedgerError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ledger.ErrInvalidArgument):
		jsonError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, ledger.ErrNotFound):
		jsonError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, ledger.ErrInsufficientBalance):
		jsonError(w, http.StatusConflict, err.Error())
	default:
		slog.Error("ledger operation failed", "error", err)
		jsonError(w, http.StatusInternalServerError, "internal error")
	}
}
