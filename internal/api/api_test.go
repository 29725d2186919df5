package api

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/lmoreira/acervo/internal/db"
	"github.com/lmoreira/acervo/internal/inventory"
	"github.com/lmoreira/acervo/internal/model"
	"github.com/lmoreira/acervo/internal/snapshot"
)

const testSecret = "test-secret"

type fakeAdvisor struct {
	text string
	err  error
}

func (f fakeAdvisor) Suggest(context.Context, string, string) (string, error) {
	return f.text, f.err
}

func setupTestServer(t *testing.T) (*httptest.Server, *http.Cookie) {
	t.Helper()

	database := db.NewTestDB(t)
	tracker, err := inventory.New(context.Background(), snapshot.NewSQLiteStore(database))
	if err != nil {
		t.Fatalf("creating tracker: %v", err)
	}

	// Known admin passphrase.
	hash, _ := bcrypt.GenerateFromPassword([]byte("passphrase"), bcrypt.MinCost)
	if _, err := database.Exec(
		`INSERT INTO settings (key, value) VALUES ('admin_passphrase_hash', ?)`, string(hash),
	); err != nil {
		t.Fatalf("seeding passphrase: %v", err)
	}

	router := NewRouter(tracker, database, fakeAdvisor{text: "1. Atividade"}, testSecret)
	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	// Unlock admin mode to get the mode cookie.
	body, _ := json.Marshal(map[string]string{"passphrase": "passphrase"})
	resp, err := http.Post(server.URL+"/api/mode", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("unlock request: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("unlock failed: %d", resp.StatusCode)
	}

	var adminCookie *http.Cookie
	for _, cookie := range resp.Cookies() {
		if cookie.Name == ModeCookie {
			adminCookie = cookie
		}
	}
	if adminCookie == nil {
		t.Fatal("no mode cookie from unlock")
	}

	return server, adminCookie
}

func doJSON(t *testing.T, method, url string, cookie *http.Cookie, body any) *http.Response {
	t.Helper()

	var bodyReader *bytes.Reader
	if body != nil {
		data, _ := json.Marshal(body)
		bodyReader = bytes.NewReader(data)
	} else {
		bodyReader = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, url, bodyReader)
	if err != nil {
		t.Fatalf("building request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if cookie != nil {
		req.AddCookie(cookie)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	return resp
}

func TestUnlockWrongPassphrase(t *testing.T) {
	server, _ := setupTestServer(t)

	resp := doJSON(t, "POST", server.URL+"/api/mode", nil, map[string]string{"passphrase": "wrong"})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("expected 401 for wrong passphrase, got %d", resp.StatusCode)
	}
}

func TestModeDefaultsToTeacher(t *testing.T) {
	server, _ := setupTestServer(t)

	resp := doJSON(t, "GET", server.URL+"/api/mode", nil, nil)
	defer resp.Body.Close()

	var mode map[string]string
	json.NewDecoder(resp.Body).Decode(&mode)
	if mode["mode"] != "teacher" {
		t.Errorf("expected teacher mode without cookie, got %q", mode["mode"])
	}
}

func TestAdminEndpointsRequireAdminMode(t *testing.T) {
	server, _ := setupTestServer(t)

	resp := doJSON(t, "POST", server.URL+"/api/items", nil, map[string]string{
		"name": "Lupa", "category": "Ciências",
	})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusForbidden {
		t.Errorf("expected 403 without admin cookie, got %d", resp.StatusCode)
	}
}

func TestCirculationFlow(t *testing.T) {
	server, _ := setupTestServer(t)

	// Withdraw seed item 1.
	resp := doJSON(t, "POST", server.URL+"/api/items/1/withdraw", nil, map[string]string{
		"teacherName": "Prof. Silva",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("withdraw: expected 200, got %d", resp.StatusCode)
	}
	var result struct {
		Item        model.Item        `json:"item"`
		Transaction model.Transaction `json:"transaction"`
	}
	json.NewDecoder(resp.Body).Decode(&result)
	resp.Body.Close()

	if result.Item.Status != model.StatusLoaned || result.Item.CurrentBorrower != "Prof. Silva" {
		t.Errorf("unexpected item after withdraw: %+v", result.Item)
	}
	if result.Transaction.Type != model.TypeWithdrawal {
		t.Errorf("expected retirada entry, got %+v", result.Transaction)
	}

	// Withdrawing again conflicts.
	resp = doJSON(t, "POST", server.URL+"/api/items/1/withdraw", nil, map[string]string{
		"teacherName": "Prof. Souza",
	})
	if resp.StatusCode != http.StatusConflict {
		t.Errorf("expected 409 for double withdraw, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	// Return it.
	resp = doJSON(t, "POST", server.URL+"/api/items/1/return", nil, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("return: expected 200, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	// Ledger has two entries, newest first.
	resp = doJSON(t, "GET", server.URL+"/api/transactions", nil, nil)
	var entries []model.Transaction
	json.NewDecoder(resp.Body).Decode(&entries)
	resp.Body.Close()

	if len(entries) != 2 {
		t.Fatalf("expected 2 ledger entries, got %d", len(entries))
	}
	if entries[0].Type != model.TypeReturn || entries[1].Type != model.TypeWithdrawal {
		t.Errorf("ledger not newest first: %+v", entries)
	}
}

func TestWithdrawValidation(t *testing.T) {
	server, _ := setupTestServer(t)

	resp := doJSON(t, "POST", server.URL+"/api/items/1/withdraw", nil, map[string]string{
		"teacherName": "   ",
	})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("expected 400 for blank borrower, got %d", resp.StatusCode)
	}
}

func TestWithdrawUnknownItem(t *testing.T) {
	server, _ := setupTestServer(t)

	resp := doJSON(t, "POST", server.URL+"/api/items/nope/withdraw", nil, map[string]string{
		"teacherName": "Prof. Silva",
	})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("expected 404, got %d", resp.StatusCode)
	}
}

func TestMaintenanceFlow(t *testing.T) {
	server, adminCookie := setupTestServer(t)

	resp := doJSON(t, "POST", server.URL+"/api/items/1/defect", nil, map[string]any{
		"description": "motor queimado",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("defect: expected 200, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	// The item leaves the browsable catalog.
	resp = doJSON(t, "GET", server.URL+"/api/items", nil, nil)
	var items []model.Item
	json.NewDecoder(resp.Body).Decode(&items)
	resp.Body.Close()
	for _, item := range items {
		if item.ID == "1" {
			t.Error("maintenance item still browsable")
		}
	}

	// And shows up in the maintenance view.
	resp = doJSON(t, "GET", server.URL+"/api/items?view=manutencao", nil, nil)
	json.NewDecoder(resp.Body).Decode(&items)
	resp.Body.Close()
	found := false
	for _, item := range items {
		if item.ID == "1" {
			found = true
		}
	}
	if !found {
		t.Error("item missing from maintenance view")
	}

	// Repair requires admin mode.
	resp = doJSON(t, "POST", server.URL+"/api/items/1/repair", nil, nil)
	if resp.StatusCode != http.StatusForbidden {
		t.Errorf("expected 403 for teacher repair, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	resp = doJSON(t, "POST", server.URL+"/api/items/1/repair", adminCookie, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("repair: expected 200, got %d", resp.StatusCode)
	}
	var result struct {
		Item model.Item `json:"item"`
	}
	json.NewDecoder(resp.Body).Decode(&result)
	resp.Body.Close()
	if result.Item.Status != model.StatusAvailable || result.Item.DefectDescription != "" {
		t.Errorf("unexpected item after repair: %+v", result.Item)
	}
}

func TestItemsCRUD(t *testing.T) {
	server, adminCookie := setupTestServer(t)

	resp := doJSON(t, "POST", server.URL+"/api/items", adminCookie, map[string]any{
		"name":     "Globo Terrestre",
		"category": "Geografia",
		"quantity": 2,
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create: expected 201, got %d", resp.StatusCode)
	}
	var created model.Item
	json.NewDecoder(resp.Body).Decode(&created)
	resp.Body.Close()
	if created.ID == "" || created.Status != model.StatusAvailable {
		t.Errorf("unexpected created item: %+v", created)
	}

	resp = doJSON(t, "PUT", server.URL+"/api/items/"+created.ID, adminCookie, map[string]any{
		"name":     "Globo Terrestre Político",
		"category": "Geografia",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("update: expected 200, got %d", resp.StatusCode)
	}
	var updated model.Item
	json.NewDecoder(resp.Body).Decode(&updated)
	resp.Body.Close()
	if updated.Name != "Globo Terrestre Político" {
		t.Errorf("update not applied: %+v", updated)
	}

	resp = doJSON(t, "GET", server.URL+"/api/items/"+created.ID, nil, nil)
	if resp.StatusCode != http.StatusOK {
		t.Errorf("get: expected 200, got %d", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestTransactionsSorting(t *testing.T) {
	server, _ := setupTestServer(t)

	doJSON(t, "POST", server.URL+"/api/items/1/withdraw", nil, map[string]string{"teacherName": "Zilda"}).Body.Close()
	doJSON(t, "POST", server.URL+"/api/items/3/withdraw", nil, map[string]string{"teacherName": "Ana"}).Body.Close()

	resp := doJSON(t, "GET", server.URL+"/api/transactions?sort=teacherName&dir=asc", nil, nil)
	var entries []model.Transaction
	json.NewDecoder(resp.Body).Decode(&entries)
	resp.Body.Close()

	if len(entries) != 2 || entries[0].TeacherName != "Ana" || entries[1].TeacherName != "Zilda" {
		t.Errorf("unexpected sorted ledger: %+v", entries)
	}
}

func TestStatsEndpoint(t *testing.T) {
	server, _ := setupTestServer(t)

	resp := doJSON(t, "GET", server.URL+"/api/stats", nil, nil)
	defer resp.Body.Close()

	var stats model.Stats
	json.NewDecoder(resp.Body).Decode(&stats)
	if stats.TotalItems != 4 {
		t.Errorf("expected 4 total items, got %d", stats.TotalItems)
	}
}

func TestSuggestionsEndpoint(t *testing.T) {
	server, _ := setupTestServer(t)

	resp := doJSON(t, "GET", server.URL+"/api/items/1/suggestions", nil, nil)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var result map[string]string
	json.NewDecoder(resp.Body).Decode(&result)
	if result["suggestions"] != "1. Atividade" {
		t.Errorf("unexpected suggestions: %q", result["suggestions"])
	}
}

func TestImportEndpoint(t *testing.T) {
	server, adminCookie := setupTestServer(t)

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, _ := writer.CreateFormFile("file", "inventario.csv")
	part.Write([]byte("Nome,Categoria\nLupa,Ciências\nFlauta,Música\n"))
	writer.Close()

	req, _ := http.NewRequest("POST", server.URL+"/api/import", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.AddCookie(adminCookie)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("import request: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}
	var result struct {
		Imported int `json:"imported"`
	}
	json.NewDecoder(resp.Body).Decode(&result)
	if result.Imported != 2 {
		t.Errorf("expected 2 imported, got %d", result.Imported)
	}
}

func TestImportRejectsBadDataset(t *testing.T) {
	server, adminCookie := setupTestServer(t)

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, _ := writer.CreateFormFile("file", "precos.csv")
	part.Write([]byte("Preço,Fornecedor\n10,Loja X\n"))
	writer.Close()

	req, _ := http.NewRequest("POST", server.URL+"/api/import", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.AddCookie(adminCookie)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("import request: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("expected 400 for dataset without name column, got %d", resp.StatusCode)
	}
}
