package api

import (
	"net/http"
	"strconv"

	"github.com/lmoreira/acervo/internal/importer"
	"github.com/lmoreira/acervo/internal/inventory"
	"github.com/lmoreira/acervo/internal/model"
)

// TransactionsHandler serves the circulation ledger and summary stats.
type TransactionsHandler struct {
	Tracker *inventory.Tracker
}

// List handles GET /api/transactions?sort=&dir=. Without parameters the
// ledger comes back newest first.
func (h *TransactionsHandler) List(w http.ResponseWriter, r *http.Request) {
	entries := h.Tracker.Transactions()

	if key := r.URL.Query().Get("sort"); key != "" {
		ascending := r.URL.Query().Get("dir") != "desc"
		entries = inventory.SortTransactions(entries, key, ascending)
	}

	if entries == nil {
		entries = []model.Transaction{}
	}
	jsonResponse(w, http.StatusOK, entries)
}

// Stats handles GET /api/stats.
func (h *TransactionsHandler) Stats(w http.ResponseWriter, r *http.Request) {
	recent := 5
	if s := r.URL.Query().Get("recent"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n >= 0 {
			recent = n
		}
	}
	jsonResponse(w, http.StatusOK, h.Tracker.Stats(recent))
}

// ImportHandler ingests inventory spreadsheets.
type ImportHandler struct {
	Tracker *inventory.Tracker
}

// Import handles POST /api/import with a multipart "file" field.
func (h *ImportHandler) Import(w http.ResponseWriter, r *http.Request) {
	// Limit to 10 MB.
	r.Body = http.MaxBytesReader(w, r.Body, 10<<20)

	if err := r.ParseMultipartForm(10 << 20); err != nil {
		jsonError(w, http.StatusBadRequest, "file too large or invalid multipart form")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		jsonError(w, http.StatusBadRequest, "spreadsheet file required")
		return
	}
	defer file.Close()

	drafts, err := importer.Parse(header.Filename, file)
	if err != nil {
		inventoryError(w, err)
		return
	}

	added, err := h.Tracker.ImportItems(r.Context(), drafts)
	if err != nil {
		inventoryError(w, err)
		return
	}
	jsonResponse(w, http.StatusCreated, map[string]any{
		"imported": len(added),
		"items":    added,
	})
}
