package analytics

import (
	"sort"
	"strings"
	"time"

	"gastos/internal/core"
)

type (
	// RankedTotal is one ranking row: a grouping key and its summed
	// absolute expense.
	RankedTotal struct {
		Name       string `json:"name"`
		TotalCents int64  `json:"totalCents"`
	}

	// RecurringExpense is a description group that repeated at least 3
	// times within the trailing 6 months.
	RecurringExpense struct {
		Name       string `json:"name"`
		Count      int    `json:"count"`
		AvgCents   int64  `json:"avgCents"`
		TotalCents int64  `json:"totalCents"`
	}

	// DayTotal is the summed absolute expense of one calendar day.
	DayTotal struct {
		Date       string `json:"date"`
		TotalCents int64  `json:"totalCents"`
	}

	// TopExpense is one of the largest individual expenses of the period.
	TopExpense struct {
		ID          int64  `json:"id"`
		Date        string `json:"date"`
		Description string `json:"description"`
		Category    string `json:"category"`
		AmountAbs   int64  `json:"amountAbsCents"`
	}

	// Highlights collects the period standouts.
	Highlights struct {
		PriciestDay *DayTotal    `json:"priciestDay"`
		TopExpenses []TopExpense `json:"topExpenses"`
	}
)

// TopCategories ranks the period's expenses by category name, absent
// categories grouped under "Outros". Ties are broken alphabetically so
// the ranking does not depend on input order.
func TopCategories(filtered []core.Transaction, limit int) []RankedTotal {
	return rankBy(filtered, limit, func(tx core.Transaction) string {
		if name := strings.TrimSpace(tx.Category); name != "" {
			return name
		}
		return core.DefaultCategory
	})
}

// TopPlaces ranks the period's expenses by trimmed description, empty
// descriptions grouped under "Sem descrição".
func TopPlaces(filtered []core.Transaction, limit int) []RankedTotal {
	return rankBy(filtered, limit, func(tx core.Transaction) string {
		if name := strings.TrimSpace(tx.Description); name != "" {
			return name
		}
		return core.DefaultDescription
	})
}

func rankBy(filtered []core.Transaction, limit int, keyOf func(core.Transaction) string) []RankedTotal {
	sums := make(map[string]int64)
	for _, tx := range filtered {
		if tx.Type != core.Expense {
			continue
		}
		sums[keyOf(tx)] += tx.Amount.Abs()
	}

	out := make([]RankedTotal, 0, len(sums))
	for name, total := range sums {
		out = append(out, RankedTotal{Name: name, TotalCents: total})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].TotalCents != out[j].TotalCents {
			return out[i].TotalCents > out[j].TotalCents
		}
		return out[i].Name < out[j].Name
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

// WeekdayHistogram sums absolute expense per day of week. Buckets follow
// time.Weekday numbering: 0 is Sunday.
func WeekdayHistogram(filtered []core.Transaction) [7]int64 {
	var buckets [7]int64
	for _, tx := range filtered {
		if tx.Type != core.Expense {
			continue
		}
		buckets[int(tx.Date.Weekday())] += tx.Amount.Abs()
	}
	return buckets
}

// RecurringExpenses detects repeated spending over the trailing 6 months
// from now, regardless of the selected period. Descriptions are grouped
// after trimming and lowercasing; groups need at least 3 occurrences to
// qualify. The ranking is by total spend, surfacing the costliest
// recurring burden rather than the priciest single instance.
func RecurringExpenses(txs []core.Transaction, now time.Time, limit int) []RecurringExpense {
	threshold := now.AddDate(0, -6, 0)

	type group struct {
		name  string
		total int64
		count int
	}
	groups := make(map[string]*group)
	for _, tx := range txs {
		if tx.Type != core.Expense {
			continue
		}
		if tx.Date.Before(threshold) {
			continue
		}
		name := strings.TrimSpace(tx.Description)
		if name == "" {
			name = core.DefaultDescription
		}
		key := strings.ToLower(name)
		g, ok := groups[key]
		if !ok {
			g = &group{name: name}
			groups[key] = g
		}
		g.total += tx.Amount.Abs()
		g.count++
	}

	out := make([]RecurringExpense, 0, len(groups))
	for _, g := range groups {
		if g.count < 3 {
			continue
		}
		out = append(out, RecurringExpense{
			Name:       g.name,
			Count:      g.count,
			AvgCents:   divRound(g.total, int64(g.count)),
			TotalCents: g.total,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].TotalCents != out[j].TotalCents {
			return out[i].TotalCents > out[j].TotalCents
		}
		return out[i].Name < out[j].Name
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

// ComputeHighlights finds the priciest calendar day and the top 3
// individual expenses of the period-filtered list. Day ties keep the
// first day encountered; expense ties keep the original relative order.
func ComputeHighlights(filtered []core.Transaction) Highlights {
	var h Highlights

	byDay := make(map[string]int64)
	var dayOrder []string
	expenses := make([]core.Transaction, 0, len(filtered))
	for _, tx := range filtered {
		if tx.Type != core.Expense {
			continue
		}
		expenses = append(expenses, tx)
		key := tx.Date.String()
		if _, seen := byDay[key]; !seen {
			dayOrder = append(dayOrder, key)
		}
		byDay[key] += tx.Amount.Abs()
	}
	if len(expenses) == 0 {
		return h
	}

	for _, day := range dayOrder {
		if h.PriciestDay == nil || byDay[day] > h.PriciestDay.TotalCents {
			h.PriciestDay = &DayTotal{Date: day, TotalCents: byDay[day]}
		}
	}

	sort.SliceStable(expenses, func(i, j int) bool {
		return expenses[i].Amount.Abs() > expenses[j].Amount.Abs()
	})
	if len(expenses) > 3 {
		expenses = expenses[:3]
	}
	h.TopExpenses = make([]TopExpense, 0, len(expenses))
	for _, tx := range expenses {
		h.TopExpenses = append(h.TopExpenses, TopExpense{
			ID:          tx.ID,
			Date:        tx.Date.String(),
			Description: tx.Description,
			Category:    tx.Category,
			AmountAbs:   tx.Amount.Abs(),
		})
	}
	return h
}
