package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"gastos/internal/core"
	"gastos/internal/storage"
)

type fakeStore struct {
	txs        []core.Transaction
	accounts   []core.Account
	categories []core.Category
	deletedAcc []int64
	accInUse   bool
}

func (f *fakeStore) ListTransactions(ctx context.Context) ([]core.Transaction, error) {
	return f.txs, nil
}

func (f *fakeStore) ListAccounts(ctx context.Context) ([]core.Account, error) {
	return f.accounts, nil
}

func (f *fakeStore) CreateAccount(ctx context.Context, name, accountType string) (core.Account, error) {
	a := core.Account{ID: int64(len(f.accounts) + 1), Name: name, Type: accountType}
	f.accounts = append(f.accounts, a)
	return a, nil
}

func (f *fakeStore) DeleteAccount(ctx context.Context, id int64) error {
	if f.accInUse {
		return storage.ErrAccountInUse
	}
	for _, a := range f.accounts {
		if a.ID == id {
			f.deletedAcc = append(f.deletedAcc, id)
			return nil
		}
	}
	return storage.ErrNotFound
}

func (f *fakeStore) ListCategories(ctx context.Context) ([]core.Category, error) {
	return f.categories, nil
}

func (f *fakeStore) CreateCategory(ctx context.Context, name, kind string) (core.Category, error) {
	c := core.Category{ID: int64(len(f.categories) + 1), Name: name, Kind: core.TxType(kind)}
	f.categories = append(f.categories, c)
	return c, nil
}

type fakeWriter struct {
	created []storage.TransactionInput
	deleted []int64
	nextID  int64
}

func (f *fakeWriter) CreateTransaction(ctx context.Context, in storage.TransactionInput) (core.Transaction, error) {
	f.created = append(f.created, in)
	f.nextID++
	return core.Transaction{
		ID:          f.nextID,
		Date:        in.Date,
		Description: in.Description,
		Amount:      core.NormalizedAmount(in.Type, in.AmountCents),
		Type:        in.Type,
		Category:    in.Category,
		Account:     in.Account,
	}, nil
}

func (f *fakeWriter) DeleteTransaction(ctx context.Context, id int64) error {
	for _, d := range f.deleted {
		if d == id {
			return storage.ErrNotFound
		}
	}
	if id > f.nextID {
		return storage.ErrNotFound
	}
	f.deleted = append(f.deleted, id)
	return nil
}

func newTestServer(store *fakeStore, writer *fakeWriter, secret string) *Server {
	return NewServer(":0", store, writer, secret)
}

func do(t *testing.T, srv *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rr := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rr, req)
	return rr
}

func TestHealthEndpoints(t *testing.T) {
	srv := newTestServer(&fakeStore{}, &fakeWriter{}, "")
	for _, path := range []string{"/healthz", "/readyz"} {
		rr := do(t, srv, http.MethodGet, path, "")
		if rr.Code != http.StatusOK {
			t.Errorf("%s status = %d", path, rr.Code)
		}
	}
}

func TestCreateTransaction(t *testing.T) {
	writer := &fakeWriter{}
	srv := newTestServer(&fakeStore{}, writer, "")

	rr := do(t, srv, http.MethodPost, "/api/transactions",
		`{"date":"2025-03-09","description":"Mercado","amount":"120,50","type":"EXPENSE","category":"Mercado","account":"Conta Corrente"}`)
	if rr.Code != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", rr.Code, rr.Body.String())
	}

	var resp transactionResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.AmountCents != -12050 {
		t.Errorf("amountCents = %d, want -12050 (sign from type)", resp.AmountCents)
	}
	if len(writer.created) != 1 || writer.created[0].AmountCents != 12050 {
		t.Errorf("writer input = %+v", writer.created)
	}
}

func TestCreateTransactionDefaults(t *testing.T) {
	writer := &fakeWriter{}
	srv := newTestServer(&fakeStore{}, writer, "")

	rr := do(t, srv, http.MethodPost, "/api/transactions",
		`{"date":"2025-03-09","amount":"10","type":"EXPENSE"}`)
	if rr.Code != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", rr.Code, rr.Body.String())
	}

	got := writer.created[0]
	if got.Description != core.DefaultDescription {
		t.Errorf("description = %q", got.Description)
	}
	if got.Category != core.DefaultCategory {
		t.Errorf("category = %q", got.Category)
	}
	if got.Account != core.DefaultAccount {
		t.Errorf("account = %q", got.Account)
	}
}

func TestCreateTransactionValidation(t *testing.T) {
	srv := newTestServer(&fakeStore{}, &fakeWriter{}, "")

	tests := []struct {
		name string
		body string
		want int
	}{
		{"malformed json", `{`, http.StatusBadRequest},
		{"unknown field", `{"date":"2025-03-09","amount":"10","type":"EXPENSE","bogus":1}`, http.StatusBadRequest},
		{"bad date", `{"date":"09/03/2025","amount":"10","type":"EXPENSE"}`, http.StatusUnprocessableEntity},
		{"bad type", `{"date":"2025-03-09","amount":"10","type":"TRANSFER"}`, http.StatusUnprocessableEntity},
		{"bad amount", `{"date":"2025-03-09","amount":"abc","type":"EXPENSE"}`, http.StatusUnprocessableEntity},
		{"signed amount", `{"date":"2025-03-09","amount":"-10","type":"EXPENSE"}`, http.StatusUnprocessableEntity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := do(t, srv, http.MethodPost, "/api/transactions", tt.body)
			if rr.Code != tt.want {
				t.Errorf("status = %d, want %d (body %s)", rr.Code, tt.want, rr.Body.String())
			}
		})
	}
}

func TestListTransactionsFiltersMonth(t *testing.T) {
	store := &fakeStore{txs: []core.Transaction{
		{ID: 1, Date: core.NewDate(2025, 3, 5), Description: "mercado", Amount: core.Money{Cents: -100}, Type: core.Expense},
		{ID: 2, Date: core.NewDate(2025, 2, 5), Description: "fevereiro", Amount: core.Money{Cents: -200}, Type: core.Expense},
	}}
	srv := newTestServer(store, &fakeWriter{}, "")

	rr := do(t, srv, http.MethodGet, "/api/transactions?year=2025&month=3", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	var out []transactionResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(out) != 1 || out[0].ID != 1 {
		t.Errorf("unexpected listing: %+v", out)
	}
}

func TestListTransactionsRejectsBadParams(t *testing.T) {
	srv := newTestServer(&fakeStore{}, &fakeWriter{}, "")
	for _, path := range []string{
		"/api/transactions?month=13",
		"/api/transactions?year=abc",
		"/api/transactions?type=WEIRD",
	} {
		rr := do(t, srv, http.MethodGet, path, "")
		if rr.Code != http.StatusBadRequest {
			t.Errorf("%s status = %d, want 400", path, rr.Code)
		}
	}
}

func TestDeleteTransaction(t *testing.T) {
	writer := &fakeWriter{nextID: 5}
	srv := newTestServer(&fakeStore{}, writer, "")

	rr := do(t, srv, http.MethodDelete, "/api/transactions/3", "")
	if rr.Code != http.StatusNoContent {
		t.Fatalf("status = %d", rr.Code)
	}

	rr = do(t, srv, http.MethodDelete, "/api/transactions/99", "")
	if rr.Code != http.StatusNotFound {
		t.Errorf("missing id status = %d, want 404", rr.Code)
	}

	rr = do(t, srv, http.MethodDelete, "/api/transactions/zero", "")
	if rr.Code != http.StatusBadRequest {
		t.Errorf("bad id status = %d, want 400", rr.Code)
	}
}

func TestDeleteAccountConflict(t *testing.T) {
	store := &fakeStore{
		accounts: []core.Account{{ID: 1, Name: "Conta Corrente", Type: "corrente"}},
		accInUse: true,
	}
	srv := newTestServer(store, &fakeWriter{}, "")

	rr := do(t, srv, http.MethodDelete, "/api/accounts/1", "")
	if rr.Code != http.StatusConflict {
		t.Errorf("status = %d, want 409", rr.Code)
	}
}

func TestDashboardReportShape(t *testing.T) {
	store := &fakeStore{txs: []core.Transaction{
		{ID: 1, Date: core.NewDate(2025, 3, 5), Description: "mercado", Amount: core.Money{Cents: -5000}, Type: core.Expense, Category: "Mercado"},
		{ID: 2, Date: core.NewDate(2025, 3, 10), Description: "salário", Amount: core.Money{Cents: 300000}, Type: core.Income, Category: "Salário"},
	}}
	srv := newTestServer(store, &fakeWriter{}, "")

	rr := do(t, srv, http.MethodGet, "/api/dashboard?year=2025&month=3", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}

	var report map[string]json.RawMessage
	if err := json.Unmarshal(rr.Body.Bytes(), &report); err != nil {
		t.Fatalf("decode: %v", err)
	}
	for _, key := range []string{
		"totals", "dailyBalanceSeries", "sixMonthBars", "topCategories",
		"topPlaces", "weekdayHistogram", "monthComparison", "projection",
		"recurringExpenses", "highlights", "insights",
	} {
		if _, ok := report[key]; !ok {
			t.Errorf("report missing %q", key)
		}
	}
}

func TestWebhookSecret(t *testing.T) {
	payload := `{"date":"2025-03-09","description":"Hook","amount":"10","type":"INCOME"}`

	t.Run("not configured", func(t *testing.T) {
		srv := newTestServer(&fakeStore{}, &fakeWriter{}, "")
		rr := do(t, srv, http.MethodPost, "/api/hook/transactions", payload)
		if rr.Code != http.StatusNotFound {
			t.Errorf("status = %d, want 404", rr.Code)
		}
	})

	t.Run("wrong secret", func(t *testing.T) {
		srv := newTestServer(&fakeStore{}, &fakeWriter{}, "s3cret")
		req := httptest.NewRequest(http.MethodPost, "/api/hook/transactions", strings.NewReader(payload))
		req.Header.Set("X-Webhook-Secret", "nope")
		rr := httptest.NewRecorder()
		srv.Handler.ServeHTTP(rr, req)
		if rr.Code != http.StatusUnauthorized {
			t.Errorf("status = %d, want 401", rr.Code)
		}
	})

	t.Run("valid secret", func(t *testing.T) {
		writer := &fakeWriter{}
		srv := newTestServer(&fakeStore{}, writer, "s3cret")
		req := httptest.NewRequest(http.MethodPost, "/api/hook/transactions", strings.NewReader(payload))
		req.Header.Set("X-Webhook-Secret", "s3cret")
		rr := httptest.NewRecorder()
		srv.Handler.ServeHTTP(rr, req)
		if rr.Code != http.StatusCreated {
			t.Errorf("status = %d, want 201 (body %s)", rr.Code, rr.Body.String())
		}
		if len(writer.created) != 1 {
			t.Errorf("created = %d, want 1", len(writer.created))
		}
	})
}

func TestRequestIDHeader(t *testing.T) {
	srv := newTestServer(&fakeStore{}, &fakeWriter{}, "")
	rr := do(t, srv, http.MethodGet, "/api/accounts", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	if rr.Header().Get("X-Request-ID") == "" {
		t.Error("missing X-Request-ID header")
	}
	if rr.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Error("missing security headers")
	}
}
