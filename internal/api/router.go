package api

import (
	"database/sql"
	"net/http"

	"github.com/lmoreira/acervo/internal/advisor"
	"github.com/lmoreira/acervo/internal/inventory"
)

// NewRouter creates the API router with all endpoints registered.
func NewRouter(tracker *inventory.Tracker, db *sql.DB, adv advisor.Advisor, sessionSecret string) http.Handler {
	mux := http.NewServeMux()

	itemsHandler := &ItemsHandler{Tracker: tracker, DB: db, Advisor: adv}
	imagesHandler := &ImagesHandler{DB: db}
	transactionsHandler := &TransactionsHandler{Tracker: tracker}
	importHandler := &ImportHandler{Tracker: tracker}
	sessionHandler := &SessionHandler{DB: db, Secret: sessionSecret}

	modeMW := ModeMiddleware(sessionSecret)
	requireAdmin := RequireAdmin

	// Catalog and circulation (open to everyone).
	mux.HandleFunc("GET /api/items", itemsHandler.List)
	mux.HandleFunc("GET /api/items/{id}", itemsHandler.Get)
	mux.HandleFunc("POST /api/items/{id}/withdraw", itemsHandler.Withdraw)
	mux.HandleFunc("POST /api/items/{id}/return", itemsHandler.Return)
	mux.HandleFunc("POST /api/items/{id}/defect", itemsHandler.ReportDefect)
	mux.HandleFunc("GET /api/items/{id}/suggestions", itemsHandler.Suggestions)
	mux.HandleFunc("GET /api/images/{id}", imagesHandler.Get)

	// Ledger and dashboard.
	mux.HandleFunc("GET /api/transactions", transactionsHandler.List)
	mux.HandleFunc("GET /api/stats", transactionsHandler.Stats)

	// Session mode.
	mux.HandleFunc("GET /api/mode", sessionHandler.Get)
	mux.HandleFunc("POST /api/mode", sessionHandler.Unlock)
	mux.HandleFunc("DELETE /api/mode", sessionHandler.Lock)

	// Management (admin mode only).
	mux.Handle("POST /api/items", requireAdmin(http.HandlerFunc(itemsHandler.Create)))
	mux.Handle("PUT /api/items/{id}", requireAdmin(http.HandlerFunc(itemsHandler.Update)))
	mux.Handle("POST /api/items/{id}/repair", requireAdmin(http.HandlerFunc(itemsHandler.Repair)))
	mux.Handle("POST /api/items/{id}/images", requireAdmin(http.HandlerFunc(itemsHandler.UploadImage)))
	mux.Handle("POST /api/import", requireAdmin(http.HandlerFunc(importHandler.Import)))

	return modeMW(mux)
}
