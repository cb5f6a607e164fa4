package api

import (
	"log/slog"
	"net/http"

	"github.com/erazemk/dijaskidom/internal/db"
	"github.com/erazemk/dijaskidom/internal/model"
	"github.com/erazemk/dijaskidom/internal/store"
)

// LocationsHandler handles dorms, blocks and rooms.
type LocationsHandler struct {
	DB *db.DB
}

type createDormRequest struct {
	Name    string `json:"name" validate:"required,max=200"`
	Address string `json:"address" validate:"max=500"`
}

type createBlockRequest struct {
	Name string `json:"name" validate:"required,max=100"`
}

type createRoomRequest struct {
	Number   string `json:"number" validate:"required,max=50"`
	Capacity int    `json:"capacity" validate:"gte=0"`
}

// ListDorms handles GET /api/dorms.
func (h *LocationsHandler) ListDorms(w http.ResponseWriter, r *http.Request) {
	dorms, err := store.ListDorms(r.Context(), h.DB)
	if err != nil {
		slog.Error("failed to list dorms", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to list dorms")
		return
	}
	if dorms == nil {
		dorms = []model.Dorm{}
	}
	jsonResponse(w, http.StatusOK, dorms)
}

// CreateDorm handles POST /api/dorms.
func (h *LocationsHandler) CreateDorm(w http.ResponseWriter, r *http.Request) {
	var req createDormRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}

	dorm, err := store.CreateDorm(r.Context(), h.DB, req.Name, req.Address)
	if err != nil {
		slog.Error("failed to create dorm", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to create dorm")
		return
	}

	slog.Info("dorm created", "user", GetClaims(r.Context()).Username, "dorm", dorm.Name)
	jsonResponse(w, http.StatusCreated, dorm)
}

// GetDorm handles GET /api/dorms/{id}.
func (h *LocationsHandler) GetDorm(w http.ResponseWriter, r *http.Request) {
	dorm, ok := h.dorm(w, r)
	if !ok {
		return
	}
	jsonResponse(w, http.StatusOK, dorm)
}

// ListBlocks handles GET /api/dorms/{id}/blocks.
func (h *LocationsHandler) ListBlocks(w http.ResponseWriter, r *http.Request) {
	dorm, ok := h.dorm(w, r)
	if !ok {
		return
	}

	blocks, err := store.ListBlocks(r.Context(), h.DB, dorm.ID)
	if err != nil {
		slog.Error("failed to list blocks", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to list blocks")
		return
	}
	if blocks == nil {
		blocks = []model.Block{}
	}
	jsonResponse(w, http.StatusOK, blocks)
}

// CreateBlock handles POST /api/dorms/{id}/blocks.
func (h *LocationsHandler) CreateBlock(w http.ResponseWriter, r *http.Request) {
	dorm, ok := h.dorm(w, r)
	if !ok {
		return
	}

	claims := GetClaims(r.Context())
	if !canAccessDorm(claims, dorm.ID) {
		jsonError(w, http.StatusForbidden, "no access to this dorm")
		return
	}

	var req createBlockRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}

	block, err := store.CreateBlock(r.Context(), h.DB, dorm.ID, req.Name)
	if err != nil {
		slog.Error("failed to create block", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to create block")
		return
	}

	slog.Info("block created", "user", claims.Username, "dorm", dorm.Name, "block", block.Name)
	jsonResponse(w, http.StatusCreated, block)
}

// ListRooms handles GET /api/blocks/{id}/rooms.
func (h *LocationsHandler) ListRooms(w http.ResponseWriter, r *http.Request) {
	block, ok := h.block(w, r)
	if !ok {
		return
	}

	rooms, err := store.ListRooms(r.Context(), h.DB, block.ID)
	if err != nil {
		slog.Error("failed to list rooms", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to list rooms")
		return
	}
	if rooms == nil {
		rooms = []model.Room{}
	}
	jsonResponse(w, http.StatusOK, rooms)
}

// CreateRoom handles POST /api/blocks/{id}/rooms.
func (h *LocationsHandler) CreateRoom(w http.ResponseWriter, r *http.Request) {
	block, ok := h.block(w, r)
	if !ok {
		return
	}

	claims := GetClaims(r.Context())
	if !canAccessDorm(claims, block.DormID) {
		jsonError(w, http.StatusForbidden, "no access to this dorm")
		return
	}

	var req createRoomRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}

	room, err := store.CreateRoom(r.Context(), h.DB, block.ID, req.Number, req.Capacity)
	if err != nil {
		slog.Error("failed to create room", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to create room")
		return
	}

	slog.Info("room created", "user", claims.Username, "block", block.Name, "room", room.Number)
	jsonResponse(w, http.StatusCreated, room)
}

// GetRoomStock handles GET /api/rooms/{id}/stock.
func (h *LocationsHandler) GetRoomStock(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid room id")
		return
	}

	room, err := store.GetRoom(r.Context(), h.DB, id)
	if err != nil {
		slog.Error("failed to get room", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to get room")
		return
	}
	if room == nil {
		jsonError(w, http.StatusNotFound, "room not found")
		return
	}

	stock, err := store.GetRoomStock(r.Context(), h.DB, id)
	if err != nil {
		slog.Error("failed to get room stock", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to get room stock")
		return
	}
	if stock == nil {
		stock = []model.Stock{}
	}
	jsonResponse(w, http.StatusOK, map[string]any{"room": room, "stock": stock})
}

func (h *LocationsHandler) dorm(w http.ResponseWriter, r *http.Request) (*model.Dorm, bool) {
	id, err := pathID(r, "id")
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid dorm id")
		return nil, false
	}
	dorm, err := store.GetDorm(r.Context(), h.DB, id)
	if err != nil {
		slog.Error("failed to get dorm", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to get dorm")
		return nil, false
	}
	if dorm == nil {
		jsonError(w, http.StatusNotFound, "dorm not found")
		return nil, false
	}
	return dorm, true
}

func (h *LocationsHandler) block(w http.ResponseWriter, r *http.Request) (*model.Block, bool) {
	id, err := pathID(r, "id")
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid block id")
		return nil, false
	}
	block, err := store.GetBlock(r.Context(), h.DB, id)
	if err != nil {
		slog.Error("failed to get block", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to get block")
		return nil, false
	}
	if block == nil {
		jsonError(w, http.StatusNotFound, "block not found")
		return nil, false
	}
	return block, true
}
