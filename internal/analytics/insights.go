package analytics

import (
	"fmt"
	"time"

	"gastos/internal/core"
)

// Insights turns the computed aggregates into an ordered list of
// human-readable sentences. Sentences are emitted only when the backing
// metric is defined; when none applies a single fallback line is
// returned, so the list is never empty.
func Insights(r Report, period Period) []string {
	var out []string

	if len(r.TopCategories) > 0 && r.Totals.ExpenseAbsCents > 0 {
		out = append(out, fmt.Sprintf(
			"Sua categoria com maior gasto foi %s, somando %s em %02d/%d.",
			r.TopCategories[0].Name,
			core.FormatBRL(r.Totals.ExpenseAbsCents),
			period.Month, period.Year,
		))
	}
	if len(r.TopPlaces) > 0 && r.Totals.ExpenseAbsCents > 0 {
		out = append(out, fmt.Sprintf(
			"Você gastou mais em %q neste mês.", r.TopPlaces[0].Name,
		))
	}
	if r.Highlights.PriciestDay != nil {
		out = append(out, fmt.Sprintf(
			"Seu dia mais caro foi %s, com %s em despesas.",
			brDate(r.Highlights.PriciestDay.Date),
			core.FormatBRL(r.Highlights.PriciestDay.TotalCents),
		))
	}
	if pct := r.MonthComparison.IncomePct; pct != nil {
		direction := "positivamente"
		if *pct < 0 {
			direction = "negativamente"
		}
		out = append(out, fmt.Sprintf(
			"Suas receitas variaram %s em %.1f%% em relação a %02d/%d.",
			direction, *pct, r.MonthComparison.PrevMonth, r.MonthComparison.PrevYear,
		))
	}
	if pct := r.MonthComparison.ExpensePct; pct != nil {
		direction := "para cima"
		if *pct < 0 {
			direction = "para baixo"
		}
		out = append(out, fmt.Sprintf(
			"Suas despesas variaram %s em %.1f%% em relação ao mês anterior.",
			direction, *pct,
		))
	}
	if r.Projection.LiveMonth && r.Projection.ProjectedBalanceCents != r.Totals.BalanceCents {
		out = append(out, fmt.Sprintf(
			"Se mantiver o ritmo atual, você deve terminar o mês com saldo próximo de %s.",
			core.FormatBRL(r.Projection.ProjectedBalanceCents),
		))
	}

	if len(out) == 0 {
		out = append(out, "Registre mais lançamentos para ver um resumo inteligente do mês.")
	}
	return out
}

// brDate reformats a YYYY-MM-DD date as DD/MM/YYYY.
func brDate(iso string) string {
	t, err := time.Parse("2006-01-02", iso)
	if err != nil {
		return iso
	}
	return t.Format("02/01/2006")
}
