package api

import (
	"net/http"

	"github.com/erazemk/dijaskidom/internal/db"
	"github.com/erazemk/dijaskidom/internal/ledger"
	"github.com/erazemk/dijaskidom/internal/model"
)

// NewRouter creates the API router with all endpoints registered.
func NewRouter(database *db.DB, l *ledger.Ledger, jwtSecret string) *http.ServeMux {
	mux := http.NewServeMux()

	authHandler := &AuthHandler{DB: database, JWTSecret: jwtSecret}
	usersHandler := &UsersHandler{DB: database}
	locationsHandler := &LocationsHandler{DB: database}
	itemsHandler := &ItemsHandler{DB: database}
	ledgerHandler := &LedgerHandler{Ledger: l}
	transactionsHandler := &TransactionsHandler{DB: database}

	authMW := AuthMiddleware(jwtSecret, database)
	requireAdmin := RequireRole(model.RoleAdmin)
	requireManager := RequireRole(model.RoleManager)

	// Public: login.
	mux.HandleFunc("POST /api/auth/login", authHandler.Login)

	// Authenticated routes.
	mux.Handle("PUT /api/auth/password", authMW(http.HandlerFunc(authHandler.ChangePassword)))
	mux.Handle("POST /api/auth/logout", authMW(http.HandlerFunc(authHandler.Logout)))

	// Users (admin only).
	mux.Handle("GET /api/users", authMW(requireAdmin(http.HandlerFunc(usersHandler.List))))
	mux.Handle("POST /api/users", authMW(requireAdmin(http.HandlerFunc(usersHandler.Create))))
	mux.Handle("GET /api/users/{id}", authMW(requireAdmin(http.HandlerFunc(usersHandler.Get))))
	mux.Handle("PUT /api/users/{id}", authMW(requireAdmin(http.HandlerFunc(usersHandler.Update))))
	mux.Handle("PUT /api/users/{id}/password", authMW(requireAdmin(http.HandlerFunc(usersHandler.ResetPassword))))
	mux.Handle("DELETE /api/users/{id}", authMW(requireAdmin(http.HandlerFunc(usersHandler.Delete))))

	// Locations: read (all roles), dorms written by admins, blocks and rooms by managers.
	mux.Handle("GET /api/dorms", authMW(http.HandlerFunc(locationsHandler.ListDorms)))
	mux.Handle("POST /api/dorms", authMW(requireAdmin(http.HandlerFunc(locationsHandler.CreateDorm))))
	mux.Handle("GET /api/dorms/{id}", authMW(http.HandlerFunc(locationsHandler.GetDorm)))
	mux.Handle("GET /api/dorms/{id}/blocks", authMW(http.HandlerFunc(locationsHandler.ListBlocks)))
	mux.Handle("POST /api/dorms/{id}/blocks", authMW(requireManager(http.HandlerFunc(locationsHandler.CreateBlock))))
	mux.Handle("GET /api/blocks/{id}/rooms", authMW(http.HandlerFunc(locationsHandler.ListRooms)))
	mux.Handle("POST /api/blocks/{id}/rooms", authMW(requireManager(http.HandlerFunc(locationsHandler.CreateRoom))))
	mux.Handle("GET /api/rooms/{id}/stock", authMW(http.HandlerFunc(locationsHandler.GetRoomStock)))

	// Items: read (all roles), write (manager+).
	mux.Handle("GET /api/dorms/{id}/items", authMW(http.HandlerFunc(itemsHandler.List)))
	mux.Handle("POST /api/dorms/{id}/items", authMW(requireManager(http.HandlerFunc(itemsHandler.Create))))
	mux.Handle("GET /api/items/{id}", authMW(http.HandlerFunc(itemsHandler.Get)))
	mux.Handle("PUT /api/items/{id}", authMW(requireManager(http.HandlerFunc(itemsHandler.Update))))
	mux.Handle("GET /api/items/{id}/transactions", authMW(http.HandlerFunc(itemsHandler.GetHistory)))

	// Ledger operations (manager+).
	mux.Handle("POST /api/ledger/receive", authMW(requireManager(http.HandlerFunc(ledgerHandler.Receive))))
	mux.Handle("POST /api/ledger/assign", authMW(requireManager(http.HandlerFunc(ledgerHandler.Assign))))
	mux.Handle("POST /api/ledger/transfer", authMW(requireManager(http.HandlerFunc(ledgerHandler.Transfer))))
	mux.Handle("POST /api/ledger/demolish-central", authMW(requireManager(http.HandlerFunc(ledgerHandler.DemolishCentral))))
	mux.Handle("POST /api/ledger/demolish-room", authMW(requireManager(http.HandlerFunc(ledgerHandler.DemolishRoom))))
	mux.Handle("POST /api/ledger/unassign", authMW(requireManager(http.HandlerFunc(ledgerHandler.Unassign))))

	// Transaction history (all roles).
	mux.Handle("GET /api/transactions", authMW(http.HandlerFunc(transactionsHandler.List)))

	return mux
}
