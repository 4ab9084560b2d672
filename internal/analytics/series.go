package analytics

import (
	"fmt"
	"time"

	"gastos/internal/core"
)

type (
	// DailyPoint is one day of the running-balance line.
	DailyPoint struct {
		Day          int    `json:"day"`
		Label        string `json:"label"`
		BalanceCents int64  `json:"balanceCents"`
	}

	// MonthBar is one bucket of the income/expense bar chart.
	MonthBar struct {
		Year            int    `json:"year"`
		Month           int    `json:"month"`
		Label           string `json:"label"`
		IncomeCents     int64  `json:"incomeCents"`
		ExpenseAbsCents int64  `json:"expenseAbsCents"`
	}
)

// DailyBalance builds the cumulative balance series for the period: one
// point per calendar day, seeded with the net of all history before the
// period start. A month with no transactions still yields a flat line at
// the carried-over balance.
//
// Short-circuit: when the entire history is empty the series is empty
// too, mirroring the dashboard's "no data" state. The cut is on the full
// history, not on the period.
func DailyBalance(txs []core.Transaction, period Period) []DailyPoint {
	if len(txs) == 0 {
		return nil
	}

	start := period.Start()
	var carried int64
	dailyNet := make(map[int]int64)
	for _, tx := range txs {
		if tx.Date.Before(start) {
			carried += tx.Amount.Cents
			continue
		}
		if period.Contains(tx.Date) {
			dailyNet[tx.Date.Day()] += tx.Amount.Cents
		}
	}

	days := period.Days()
	series := make([]DailyPoint, 0, days)
	running := carried
	for d := 1; d <= days; d++ {
		running += dailyNet[d]
		series = append(series, DailyPoint{
			Day:          d,
			Label:        fmt.Sprintf("%02d", d),
			BalanceCents: running,
		})
	}
	return series
}

// SixMonthBars aggregates income and absolute expense per calendar month
// over all history, then emits the 6 consecutive months ending at the
// selected period. Months without data yield zero buckets, never gaps.
func SixMonthBars(txs []core.Transaction, period Period) []MonthBar {
	type net struct{ income, expense int64 }
	agg := make(map[Period]net)
	for _, tx := range txs {
		key := Period{Year: tx.Date.Year(), Month: tx.Date.Month()}
		cur := agg[key]
		if tx.Type == core.Income {
			cur.income += tx.Amount.Cents
		} else {
			cur.expense += tx.Amount.Cents
		}
		agg[key] = cur
	}

	anchor := period.Start()
	bars := make([]MonthBar, 0, 6)
	for i := 5; i >= 0; i-- {
		m := anchor.AddDate(0, -i, 0)
		key := Period{Year: m.Year(), Month: int(m.Month())}
		cur := agg[key]
		expenseAbs := cur.expense
		if expenseAbs < 0 {
			expenseAbs = -expenseAbs
		}
		bars = append(bars, MonthBar{
			Year:            key.Year,
			Month:           key.Month,
			Label:           fmt.Sprintf("%02d/%02d", key.Month, key.Year%100),
			IncomeCents:     cur.income,
			ExpenseAbsCents: expenseAbs,
		})
	}
	return bars
}

type (
	// MonthComparison contrasts the period totals with the previous
	// calendar month. Percentages are nil when the previous base is not
	// strictly positive: no division by zero, no fabricated deltas.
	MonthComparison struct {
		PrevYear            int      `json:"prevYear"`
		PrevMonth           int      `json:"prevMonth"`
		PrevIncomeCents     int64    `json:"prevIncomeCents"`
		PrevExpenseAbsCents int64    `json:"prevExpenseAbsCents"`
		IncomePct           *float64 `json:"incomePct"`
		ExpensePct          *float64 `json:"expensePct"`
	}

	// Projection extrapolates the period balance to month end. Only the
	// live month uses partial elapsed days; past and future periods are
	// treated as complete.
	Projection struct {
		DaysInMonth           int   `json:"daysInMonth"`
		DaysElapsed           int   `json:"daysElapsed"`
		LiveMonth             bool  `json:"liveMonth"`
		AvgDailyExpenseCents  int64 `json:"avgDailyExpenseCents"`
		NetPerDayCents        int64 `json:"netPerDayCents"`
		ProjectedBalanceCents int64 `json:"projectedBalanceCents"`
	}
)

// CompareWithPrevious recomputes totals for the previous calendar month
// from the full history and derives percentage deltas against the
// current period totals.
func CompareWithPrevious(txs []core.Transaction, period Period, current Totals) MonthComparison {
	prev := period.Previous()
	prevTotals := SumTotals(FilterPeriod(txs, prev, Filters{}))

	cmp := MonthComparison{
		PrevYear:            prev.Year,
		PrevMonth:           prev.Month,
		PrevIncomeCents:     prevTotals.IncomeCents,
		PrevExpenseAbsCents: prevTotals.ExpenseAbsCents,
	}
	if prevTotals.IncomeCents > 0 {
		pct := float64(current.IncomeCents-prevTotals.IncomeCents) / float64(prevTotals.IncomeCents) * 100
		cmp.IncomePct = &pct
	}
	if prevTotals.ExpenseAbsCents > 0 {
		pct := float64(current.ExpenseAbsCents-prevTotals.ExpenseAbsCents) / float64(prevTotals.ExpenseAbsCents) * 100
		cmp.ExpensePct = &pct
	}
	return cmp
}

// Project derives the end-of-month balance projection. The projected
// balance is computed in integer cents from the elapsed net, so the
// reported NetPerDayCents is a rounded display value, not the factor.
func Project(totals Totals, period Period, now time.Time) Projection {
	daysInMonth := period.Days()
	live := period.Year == now.UTC().Year() && period.Month == int(now.UTC().Month())
	daysElapsed := daysInMonth
	if live {
		daysElapsed = now.UTC().Day()
	}

	p := Projection{
		DaysInMonth: daysInMonth,
		DaysElapsed: daysElapsed,
		LiveMonth:   live,
	}
	if daysElapsed <= 0 {
		// day-of-month is always >= 1, kept as a structural guard
		p.ProjectedBalanceCents = totals.BalanceCents
		return p
	}
	remaining := daysInMonth - daysElapsed
	if remaining < 0 {
		remaining = 0
	}
	p.AvgDailyExpenseCents = divRound(totals.ExpenseAbsCents, int64(daysElapsed))
	p.NetPerDayCents = divRound(totals.BalanceCents, int64(daysElapsed))
	p.ProjectedBalanceCents = totals.BalanceCents + divRound(totals.BalanceCents*int64(remaining), int64(daysElapsed))
	return p
}
