package http

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"gastos/internal/analytics"
	"gastos/internal/core"
	"gastos/internal/storage"
)

type transactionRequest struct {
	Date        string `json:"date"`
	Description string `json:"description"`
	Amount      string `json:"amount"`
	Type        string `json:"type"`
	Category    string `json:"category"`
	Account     string `json:"account"`
}

type transactionResponse struct {
	ID          int64  `json:"id"`
	Date        string `json:"date"`
	Description string `json:"description"`
	AmountCents int64  `json:"amountCents"`
	Amount      string `json:"amount"`
	Type        string `json:"type"`
	Category    string `json:"category"`
	Account     string `json:"account"`
	CreatedAt   string `json:"createdAt,omitempty"`
}

func toTransactionResponse(tx core.Transaction) transactionResponse {
	createdAt := ""
	if !tx.CreatedAt.IsZero() {
		createdAt = tx.CreatedAt.UTC().Format(time.RFC3339)
	}
	return transactionResponse{
		ID:          tx.ID,
		Date:        tx.Date.String(),
		Description: tx.Description,
		AmountCents: tx.Amount.Cents,
		Amount:      core.FormatBRL(tx.Amount.Cents),
		Type:        string(tx.Type),
		Category:    tx.Category,
		Account:     tx.Account,
		CreatedAt:   createdAt,
	}
}

// handleListTransactions lists the transactions of one month, newest first.
// Defaults to the current month; q and type narrow the listing.
func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	period, filters, err := periodFromQuery(r, time.Now().UTC())
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	txs, err := s.store.ListTransactions(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "List transactions error", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list transactions")
		return
	}

	filtered := analytics.FilterPeriod(txs, period, filters)
	out := make([]transactionResponse, 0, len(filtered))
	for _, tx := range filtered {
		out = append(out, toTransactionResponse(tx))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	s.createTransaction(w, r)
}

// handleWebhook accepts the same payload as transaction creation, guarded
// by a shared secret for external automations.
func (s *Server) handleWebhook(w http.ResponseWriter, r *http.Request) {
	if s.webhookSecret == "" {
		writeError(w, http.StatusNotFound, "webhook not configured")
		return
	}
	if r.Header.Get("X-Webhook-Secret") != s.webhookSecret {
		slog.WarnContext(r.Context(), "Webhook secret mismatch")
		writeError(w, http.StatusUnauthorized, "invalid webhook secret")
		return
	}
	s.createTransaction(w, r)
}

func (s *Server) createTransaction(w http.ResponseWriter, r *http.Request) {
	var req transactionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	input, err := buildTransactionInput(req)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	tx, err := s.writer.CreateTransaction(r.Context(), input)
	if err != nil {
		slog.ErrorContext(r.Context(), "Create transaction error", "error", err,
			"description", input.Description, "amount_cents", input.AmountCents)
		writeError(w, http.StatusInternalServerError, "failed to save transaction")
		return
	}

	writeJSON(w, http.StatusCreated, toTransactionResponse(tx))
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "invalid transaction id")
		return
	}

	if err := s.writer.DeleteTransaction(r.Context(), id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusNotFound, "transaction not found")
			return
		}
		slog.ErrorContext(r.Context(), "Delete transaction error", "error", err, "id", id)
		writeError(w, http.StatusInternalServerError, "failed to delete transaction")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// buildTransactionInput validates the payload and applies the domain
// defaults for missing description, category and account.
func buildTransactionInput(req transactionRequest) (storage.TransactionInput, error) {
	date, err := core.ParseDate(req.Date)
	if err != nil {
		return storage.TransactionInput{}, err
	}

	txType := core.TxType(req.Type)
	if !txType.Valid() {
		return storage.TransactionInput{}, core.ErrInvalidType
	}

	cents, err := core.ParseDecimalToCents(req.Amount)
	if err != nil {
		return storage.TransactionInput{}, err
	}

	description := sanitizeInput(req.Description)
	if description == "" {
		description = core.DefaultDescription
	}
	category := sanitizeInput(req.Category)
	if category == "" {
		category = core.DefaultCategory
	}
	account := sanitizeInput(req.Account)
	if account == "" {
		account = core.DefaultAccount
	}

	return storage.TransactionInput{
		Date:        date,
		Description: description,
		AmountCents: cents,
		Type:        txType,
		Category:    category,
		Account:     account,
	}, nil
}

// periodFromQuery parses year, month, q and type query parameters,
// defaulting to the month of the given reference time.
func periodFromQuery(r *http.Request, now time.Time) (analytics.Period, analytics.Filters, error) {
	period := analytics.Period{Year: now.Year(), Month: int(now.Month())}

	if v := r.URL.Query().Get("year"); v != "" {
		y, err := strconv.Atoi(v)
		if err != nil || y < 1900 || y > 3000 {
			return analytics.Period{}, analytics.Filters{}, errors.New("invalid year")
		}
		period.Year = y
	}
	if v := r.URL.Query().Get("month"); v != "" {
		m, err := strconv.Atoi(v)
		if err != nil || m < 1 || m > 12 {
			return analytics.Period{}, analytics.Filters{}, errors.New("invalid month")
		}
		period.Month = m
	}

	filters := analytics.Filters{
		Query: sanitizeInput(r.URL.Query().Get("q")),
	}
	switch v := r.URL.Query().Get("type"); v {
	case "", string(analytics.FilterAll):
		filters.Type = analytics.FilterAll
	case string(analytics.FilterIncome), string(analytics.FilterExpense):
		filters.Type = analytics.TypeFilter(v)
	default:
		return analytics.Period{}, analytics.Filters{}, errors.New("invalid type filter")
	}

	return period, filters, nil
}
