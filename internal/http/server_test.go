package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"carteira/internal/analytics"
	"carteira/internal/services"
	"carteira/internal/storage/memory"
)

const testOwner = "owner-1"

func newTestServer(t *testing.T) *Server {
	t.Helper()
	store := memory.New()
	ledger := services.NewLedger(store, nil)
	wallets := services.NewWallets(store, nil)
	catalog := services.NewCatalog(store)
	scheduler := services.NewScheduler(store, ledger)
	importer := services.NewImporter(store, ledger)
	return NewServer(":0", ledger, wallets, catalog, scheduler, importer, analytics.DefaultPolicy())
}

func doJSON(t *testing.T, srv *Server, method, path string, payload any) *httptest.ResponseRecorder {
	t.Helper()
	var body *bytes.Buffer
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("marshal payload: %v", err)
		}
		body = bytes.NewBuffer(b)
	} else {
		body = &bytes.Buffer{}
	}
	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(ownerHeader, testOwner)
	rec := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
	return v
}

func createWallet(t *testing.T, srv *Server, name string) walletView {
	t.Helper()
	rec := doJSON(t, srv, http.MethodPost, "/wallets", map[string]any{
		"name": name,
		"type": "checking",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create wallet: status %d body %s", rec.Code, rec.Body)
	}
	return decode[walletView](t, rec)
}

func createCategory(t *testing.T, srv *Server, name, flow string) categoryView {
	t.Helper()
	rec := doJSON(t, srv, http.MethodPost, "/categories", map[string]any{
		"name": name,
		"flow": flow,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create category: status %d body %s", rec.Code, rec.Body)
	}
	return decode[categoryView](t, rec)
}

func TestTransactionLifecycle(t *testing.T) {
	srv := newTestServer(t)
	w := createWallet(t, srv, "Conta Corrente")
	cat := createCategory(t, srv, "Alimentação", "expense")

	rec := doJSON(t, srv, http.MethodPost, "/transactions", map[string]any{
		"description":  "mercado",
		"amount_cents": 4550,
		"type":         "expense",
		"date":         "2025-06-10",
		"wallet_id":    w.ID,
		"category_id":  cat.ID,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create transaction: status %d body %s", rec.Code, rec.Body)
	}
	tx := decode[transactionView](t, rec)
	if tx.Status != "completed" {
		t.Errorf("status = %s, want completed default", tx.Status)
	}

	rec = doJSON(t, srv, http.MethodGet, "/wallets/"+w.ID, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("get wallet: status %d", rec.Code)
	}
	if got := decode[walletView](t, rec); got.Balance != -4550 {
		t.Errorf("wallet balance = %d, want -4550", got.Balance)
	}

	rec = doJSON(t, srv, http.MethodDelete, "/transactions/"+tx.ID, nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete transaction: status %d", rec.Code)
	}
	rec = doJSON(t, srv, http.MethodGet, "/wallets/"+w.ID, nil)
	if got := decode[walletView](t, rec); got.Balance != 0 {
		t.Errorf("wallet balance after delete = %d, want 0", got.Balance)
	}
}

func TestSettleEndpoint(t *testing.T) {
	srv := newTestServer(t)
	w := createWallet(t, srv, "Conta")
	cat := createCategory(t, srv, "Contas", "expense")

	rec := doJSON(t, srv, http.MethodPost, "/transactions", map[string]any{
		"description":  "fatura",
		"amount_cents": 9900,
		"type":         "expense",
		"status":       "pending",
		"date":         "2025-06-20",
		"wallet_id":    w.ID,
		"category_id":  cat.ID,
	})
	tx := decode[transactionView](t, rec)

	rec = doJSON(t, srv, http.MethodPost, "/transactions/"+tx.ID+"/settle", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("settle: status %d body %s", rec.Code, rec.Body)
	}
	if got := decode[transactionView](t, rec); got.Status != "completed" {
		t.Errorf("settled status = %s", got.Status)
	}

	// Settling again is a validation failure.
	rec = doJSON(t, srv, http.MethodPost, "/transactions/"+tx.ID+"/settle", nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("double settle: status %d, want 400", rec.Code)
	}
}

func TestErrorMapping(t *testing.T) {
	srv := newTestServer(t)
	w := createWallet(t, srv, "Conta")

	t.Run("missing owner header is 400", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/wallets", nil)
		rec := httptest.NewRecorder()
		srv.Handler.ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", rec.Code)
		}
	})

	t.Run("unknown transaction is 404", func(t *testing.T) {
		rec := doJSON(t, srv, http.MethodGet, "/transactions/ghost", nil)
		if rec.Code != http.StatusNotFound {
			t.Errorf("status = %d, want 404", rec.Code)
		}
		if body := decode[errorBody](t, rec); body.Kind != "not_found" {
			t.Errorf("kind = %s, want not_found", body.Kind)
		}
	})

	t.Run("validation failure is 400", func(t *testing.T) {
		rec := doJSON(t, srv, http.MethodPost, "/transactions", map[string]any{
			"description":  "",
			"amount_cents": 100,
			"type":         "expense",
			"date":         "2025-06-10",
			"wallet_id":    w.ID,
		})
		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", rec.Code)
		}
	})

	t.Run("direct balance write is 400", func(t *testing.T) {
		rec := doJSON(t, srv, http.MethodPatch, "/wallets/"+w.ID, map[string]any{
			"balance_cents": 999999,
		})
		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", rec.Code)
		}
	})

	t.Run("deleting a wallet with history is 409", func(t *testing.T) {
		cat := createCategory(t, srv, "Renda", "income")
		rec := doJSON(t, srv, http.MethodPost, "/transactions", map[string]any{
			"description":  "salário",
			"amount_cents": 100000,
			"type":         "income",
			"date":         "2025-06-01",
			"wallet_id":    w.ID,
			"category_id":  cat.ID,
		})
		if rec.Code != http.StatusCreated {
			t.Fatalf("seed income: status %d body %s", rec.Code, rec.Body)
		}
		rec = doJSON(t, srv, http.MethodDelete, "/wallets/"+w.ID, nil)
		if rec.Code != http.StatusConflict {
			t.Errorf("status = %d, want 409", rec.Code)
		}
	})
}

func TestAnalyticsEndpoints(t *testing.T) {
	srv := newTestServer(t)
	w := createWallet(t, srv, "Conta")
	inc := createCategory(t, srv, "Renda", "income")
	exp := createCategory(t, srv, "Mercado", "expense")

	seed := []map[string]any{
		{"description": "salário", "amount_cents": 500000, "type": "income", "date": "2025-06-05", "wallet_id": w.ID, "category_id": inc.ID},
		{"description": "mercado", "amount_cents": 120000, "type": "expense", "date": "2025-06-10", "wallet_id": w.ID, "category_id": exp.ID},
	}
	for _, s := range seed {
		if rec := doJSON(t, srv, http.MethodPost, "/transactions", s); rec.Code != http.StatusCreated {
			t.Fatalf("seed transaction: status %d body %s", rec.Code, rec.Body)
		}
	}

	rec := doJSON(t, srv, http.MethodGet, "/analytics/cashflow?ref=2025-06-30", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("cashflow: status %d", rec.Code)
	}
	flow := decode[analytics.CashFlowResult](t, rec)
	if flow.Income.Cents != 500000 || flow.Expense.Cents != 120000 {
		t.Errorf("cashflow = %+v", flow)
	}

	rec = doJSON(t, srv, http.MethodGet, "/analytics/health?ref=2025-06-30", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("health: status %d", rec.Code)
	}
	health := decode[analytics.HealthResult](t, rec)
	if health.Diagnosis != analytics.DiagnosisHealthy {
		t.Errorf("diagnosis = %s, want %s", health.Diagnosis, analytics.DiagnosisHealthy)
	}

	rec = doJSON(t, srv, http.MethodGet, "/analytics/report?ref=2025-06-30", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("report: status %d", rec.Code)
	}

	t.Run("bad ref date is 400", func(t *testing.T) {
		rec := doJSON(t, srv, http.MethodGet, "/analytics/cashflow?ref=junho", nil)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", rec.Code)
		}
	})
}

func TestImportEndpoint(t *testing.T) {
	srv := newTestServer(t)
	w := createWallet(t, srv, "Conta")
	cat := createCategory(t, srv, "Importados", "expense")

	statement := map[string]any{
		"format": "json",
		"content": `{"transactions": [
			{"description": "UBER", "amount": -23.90, "date": "2025-06-08"},
			{"description": "PADARIA", "amount": -8.00, "date": "2025-06-09"}
		]}`,
		"wallet_id":           w.ID,
		"default_category_id": cat.ID,
	}

	rec := doJSON(t, srv, http.MethodPost, "/imports", statement)
	if rec.Code != http.StatusOK {
		t.Fatalf("import: status %d body %s", rec.Code, rec.Body)
	}
	res := decode[services.ImportResult](t, rec)
	if res.Imported != 2 || res.Skipped != 0 {
		t.Errorf("import result = %+v, want 2 imported", res)
	}

	// The same statement again is pure duplicates.
	rec = doJSON(t, srv, http.MethodPost, "/imports", statement)
	if rec.Code != http.StatusConflict {
		t.Errorf("duplicate import: status %d, want 409", rec.Code)
	}
}

func TestHealthEndpoints(t *testing.T) {
	srv := newTestServer(t)
	for _, path := range []string{"/healthz", "/readyz"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rec := httptest.NewRecorder()
		srv.Handler.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Errorf("%s: status %d, want 200", path, rec.Code)
		}
	}
}
