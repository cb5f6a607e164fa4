package api

import (
	"log/slog"
	"net/http"

	"github.com/erazemk/dijaskidom/internal/db"
	"github.com/erazemk/dijaskidom/internal/model"
	"github.com/erazemk/dijaskidom/internal/store"
)

// ItemsHandler handles item definitions. Quantities are read-only here;
// they change only through the ledger endpoints.
type ItemsHandler struct {
	DB *db.DB
}

type createItemRequest struct {
	Name        string `json:"name" validate:"required,max=200"`
	Description string `json:"description" validate:"max=2000"`
	Unit        string `json:"unit" validate:"max=20"`
}

type updateItemRequest = createItemRequest

type itemResponse struct {
	*model.Item
	Distribution []model.Stock `json:"distribution"`
	Allocated    int           `json:"allocated"`
}

// List handles GET /api/dorms/{id}/items.
func (h *ItemsHandler) List(w http.ResponseWriter, r *http.Request) {
	dormID, err := pathID(r, "id")
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid dorm id")
		return
	}

	items, err := store.ListItems(r.Context(), h.DB, dormID)
	if err != nil {
		slog.Error("failed to list items", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to list items")
		return
	}
	if items == nil {
		items = []model.Item{}
	}
	jsonResponse(w, http.StatusOK, items)
}

// Create handles POST /api/dorms/{id}/items. New items start with an empty
// central store.
func (h *ItemsHandler) Create(w http.ResponseWriter, r *http.Request) {
	dormID, err := pathID(r, "id")
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid dorm id")
		return
	}

	claims := GetClaims(r.Context())
	if !canAccessDorm(claims, dormID) {
		jsonError(w, http.StatusForbidden, "no access to this dorm")
		return
	}

	var req createItemRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}

	dorm, err := store.GetDorm(r.Context(), h.DB, dormID)
	if err != nil {
		slog.Error("failed to get dorm", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to get dorm")
		return
	}
	if dorm == nil {
		jsonError(w, http.StatusNotFound, "dorm not found")
		return
	}

	item, err := store.CreateItem(r.Context(), h.DB, dormID, req.Name, req.Description, req.Unit)
	if err != nil {
		slog.Error("failed to create item", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to create item")
		return
	}

	slog.Info("item created", "user", claims.Username, "dorm", dorm.Name, "item", item.Name)
	jsonResponse(w, http.StatusCreated, item)
}

// Get handles GET /api/items/{id}. The response includes the item's room
// distribution.
func (h *ItemsHandler) Get(w http.ResponseWriter, r *http.Request) {
	item, ok := h.item(w, r)
	if !ok {
		return
	}

	dist, err := store.GetItemDistribution(r.Context(), h.DB, item.ID)
	if err != nil {
		slog.Error("failed to get item distribution", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to get item distribution")
		return
	}
	if dist == nil {
		dist = []model.Stock{}
	}

	resp := itemResponse{Item: item, Distribution: dist}
	for _, s := range dist {
		resp.Allocated += s.Quantity
	}
	jsonResponse(w, http.StatusOK, resp)
}

// Update handles PUT /api/items/{id}.
func (h *ItemsHandler) Update(w http.ResponseWriter, r *http.Request) {
	item, ok := h.item(w, r)
	if !ok {
		return
	}

	claims := GetClaims(r.Context())
	if !canAccessDorm(claims, item.DormID) {
		jsonError(w, http.StatusForbidden, "no access to this dorm")
		return
	}

	var req updateItemRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := store.UpdateItem(r.Context(), h.DB, item.ID, req.Name, req.Description, req.Unit); err != nil {
		slog.Error("failed to update item", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to update item")
		return
	}

	updated, err := store.GetItem(r.Context(), h.DB, item.ID)
	if err != nil || updated == nil {
		jsonError(w, http.StatusInternalServerError, "failed to get item")
		return
	}

	slog.Info("item updated", "user", claims.Username, "item", updated.Name)
	jsonResponse(w, http.StatusOK, updated)
}

// GetHistory handles GET /api/items/{id}/transactions.
func (h *ItemsHandler) GetHistory(w http.ResponseWriter, r *http.Request) {
	item, ok := h.item(w, r)
	if !ok {
		return
	}

	history, err := store.GetItemHistory(r.Context(), h.DB, item.ID)
	if err != nil {
		slog.Error("failed to get item history", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to get item history")
		return
	}
	if history == nil {
		history = []model.Transaction{}
	}
	jsonResponse(w, http.StatusOK, history)
}

func (h *ItemsHandler) item(w http.ResponseWriter, r *http.Request) (*model.Item, bool) {
	id, err := pathID(r, "id")
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid item id")
		return nil, false
	}
	item, err := store.GetItem(r.Context(), h.DB, id)
	if err != nil {
		slog.Error("failed to get item", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to get item")
		return nil, false
	}
	if item == nil {
		jsonError(w, http.StatusNotFound, "item not found")
		return nil, false
	}
	return item, true
}
