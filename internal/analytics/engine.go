// Package analytics derives dashboard metrics from a transaction list.
//
// Every function here is pure: the engine performs no I/O, keeps no state
// between calls and recomputes everything from the full history on each
// invocation. The clock is an explicit input so results stay deterministic.
package analytics

import (
	"sort"
	"strings"
	"time"

	"gastos/internal/core"
)

const (
	FilterAll     TypeFilter = "ALL"
	FilterIncome  TypeFilter = "INCOME"
	FilterExpense TypeFilter = "EXPENSE"
)

type (
	// TypeFilter restricts the period listing by transaction type.
	TypeFilter string

	// Period is the calendar month/year aggregation window.
	Period struct {
		Year  int
		Month int // 1-12
	}

	// Filters narrows the period listing; zero value passes everything.
	Filters struct {
		Query string
		Type  TypeFilter
	}

	// Totals are the period sums under the sign convention
	// (expense <= 0, income >= 0).
	Totals struct {
		IncomeCents     int64 `json:"incomeCents"`
		ExpenseCents    int64 `json:"expenseCents"`
		BalanceCents    int64 `json:"balanceCents"`
		ExpenseAbsCents int64 `json:"expenseAbsCents"`
		Count           int   `json:"count"`
	}

	// Report is the full metric bundle for one period.
	Report struct {
		Totals             Totals             `json:"totals"`
		DailyBalanceSeries []DailyPoint       `json:"dailyBalanceSeries"`
		SixMonthBars       []MonthBar         `json:"sixMonthBars"`
		TopCategories      []RankedTotal      `json:"topCategories"`
		TopPlaces          []RankedTotal      `json:"topPlaces"`
		WeekdayHistogram   [7]int64           `json:"weekdayHistogram"`
		MonthComparison    MonthComparison    `json:"monthComparison"`
		Projection         Projection         `json:"projection"`
		RecurringExpenses  []RecurringExpense `json:"recurringExpenses"`
		Highlights         Highlights         `json:"highlights"`
		Insights           []string           `json:"insights"`
	}
)

// Start returns the first instant of the period (UTC midnight).
func (p Period) Start() time.Time {
	return time.Date(p.Year, time.Month(p.Month), 1, 0, 0, 0, 0, time.UTC)
}

// End returns the first instant of the next period. The period interval
// is half-open: [Start, End).
func (p Period) End() time.Time {
	return p.Start().AddDate(0, 1, 0)
}

// Days returns the number of calendar days in the period.
func (p Period) Days() int {
	return time.Date(p.Year, time.Month(p.Month)+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// Previous returns the preceding calendar month, wrapping the year.
func (p Period) Previous() Period {
	if p.Month == 1 {
		return Period{Year: p.Year - 1, Month: 12}
	}
	return Period{Year: p.Year, Month: p.Month - 1}
}

// Contains reports whether the date falls inside the period.
func (p Period) Contains(d core.Date) bool {
	t := d.Time
	return !t.Before(p.Start()) && t.Before(p.End())
}

// Compute runs every aggregation over the full history and returns the
// metric bundle for the selected period. The input slice is never
// mutated and may arrive in any order. now anchors the projection and
// the recurring-expense window.
func Compute(txs []core.Transaction, period Period, filters Filters, now time.Time) Report {
	filtered := FilterPeriod(txs, period, filters)
	totals := SumTotals(filtered)

	r := Report{
		Totals:             totals,
		DailyBalanceSeries: DailyBalance(txs, period),
		SixMonthBars:       SixMonthBars(txs, period),
		TopCategories:      TopCategories(filtered, 6),
		TopPlaces:          TopPlaces(filtered, 8),
		WeekdayHistogram:   WeekdayHistogram(filtered),
		MonthComparison:    CompareWithPrevious(txs, period, totals),
		Projection:         Project(totals, period, now),
		RecurringExpenses:  RecurringExpenses(txs, now, 6),
		Highlights:         ComputeHighlights(filtered),
	}
	r.Insights = Insights(r, period)
	return r
}

// FilterPeriod returns the transactions belonging to the period that
// match the filters, sorted descending by date. The sort is stable, so
// same-day transactions keep their original relative order.
func FilterPeriod(txs []core.Transaction, period Period, filters Filters) []core.Transaction {
	query := strings.ToLower(strings.TrimSpace(filters.Query))

	out := make([]core.Transaction, 0, len(txs))
	for _, tx := range txs {
		if !period.Contains(tx.Date) {
			continue
		}
		if query != "" && !strings.Contains(strings.ToLower(tx.Description), query) {
			continue
		}
		if filters.Type != "" && filters.Type != FilterAll && string(tx.Type) != string(filters.Type) {
			continue
		}
		out = append(out, tx)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date.After(out[j].Date.Time)
	})
	return out
}

// SumTotals computes the period totals from an already filtered list.
func SumTotals(filtered []core.Transaction) Totals {
	t := Totals{Count: len(filtered)}
	for _, tx := range filtered {
		switch tx.Type {
		case core.Income:
			t.IncomeCents += tx.Amount.Cents
		case core.Expense:
			t.ExpenseCents += tx.Amount.Cents
		}
	}
	t.BalanceCents = t.IncomeCents + t.ExpenseCents
	t.ExpenseAbsCents = t.ExpenseCents
	if t.ExpenseAbsCents < 0 {
		t.ExpenseAbsCents = -t.ExpenseAbsCents
	}
	return t
}

// divRound divides with half-away-from-zero rounding. Callers guarantee
// a non-zero divisor.
func divRound(num, den int64) int64 {
	if den == 0 {
		return 0
	}
	half := den / 2
	if (num < 0) != (den < 0) {
		return (num - half) / den
	}
	return (num + half) / den
}
