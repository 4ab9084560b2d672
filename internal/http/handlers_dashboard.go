package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"gastos/internal/analytics"
)

// handleDashboard computes the full monthly report for the requested period.
// The whole history is loaded so running balances and six-month bars can be
// seeded correctly.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	now := time.Now().UTC()
	period, filters, err := periodFromQuery(r, now)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	txs, err := s.store.ListTransactions(ctx)
	if err != nil {
		slog.ErrorContext(r.Context(), "Dashboard load error", "error", err,
			"year", period.Year, "month", period.Month)
		writeError(w, http.StatusInternalServerError, "failed to load transactions")
		return
	}

	report := analytics.Compute(txs, period, filters, now)
	writeJSON(w, http.StatusOK, report)
}
