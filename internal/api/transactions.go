package api

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/erazemk/dijaskidom/internal/db"
	"github.com/erazemk/dijaskidom/internal/model"
	"github.com/erazemk/dijaskidom/internal/store"
)

// maxTransactionLimit caps a single history page.
const maxTransactionLimit = 1000

// TransactionsHandler serves the ledger history.
type TransactionsHandler struct {
	DB *db.DB
}

// List handles GET /api/transactions?dorm_id&item_id&room_id&type&limit.
func (h *TransactionsHandler) List(w http.ResponseWriter, r *http.Request) {
	var f model.TransactionFilter
	var err error

	if f.DormID, err = queryID(r, "dorm_id"); err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}
	if f.ItemID, err = queryID(r, "item_id"); err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}
	if f.RoomID, err = queryID(r, "room_id"); err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}

	if typ := model.TransactionType(r.URL.Query().Get("type")); typ != "" {
		if !typ.Valid() {
			jsonError(w, http.StatusBadRequest, "invalid type")
			return
		}
		f.Type = typ
	}

	f.Limit = 100
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			jsonError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		f.Limit = min(n, maxTransactionLimit)
	}

	txs, err := store.ListTransactions(r.Context(), h.DB, f)
	if err != nil {
		slog.Error("failed to list transactions", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to list transactions")
		return
	}
	if txs == nil {
		txs = []model.Transaction{}
	}
	jsonResponse(w, http.StatusOK, txs)
}
