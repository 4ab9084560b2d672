package analytics

import (
	"strings"
	"testing"
	"time"

	"gastos/internal/core"
)

func TestInsightsFallbackWhenEmpty(t *testing.T) {
	got := Insights(Report{}, Period{Year: 2025, Month: 3})
	if len(got) != 1 {
		t.Fatalf("got %d sentences, want 1 fallback", len(got))
	}
	if !strings.Contains(got[0], "Registre mais lançamentos") {
		t.Errorf("unexpected fallback: %q", got[0])
	}
}

func TestInsightsSentences(t *testing.T) {
	txs := []core.Transaction{
		tx(1, "2025-02-10", "salário", 400000, core.Income, "Salário"),
		tx(2, "2025-02-12", "mercado", -100000, core.Expense, "Mercado"),
		tx(3, "2025-03-01", "salário", 500000, core.Income, "Salário"),
		tx(4, "2025-03-08", "mercado central", -120000, core.Expense, "Mercado"),
		tx(5, "2025-03-15", "uber", -20000, core.Expense, "Transporte"),
	}
	period := Period{Year: 2025, Month: 3}
	now := time.Date(2025, 3, 20, 0, 0, 0, 0, time.UTC)

	r := Compute(txs, period, Filters{}, now)

	var joined string
	for _, s := range r.Insights {
		joined += s + "\n"
	}

	for _, want := range []string{
		"Sua categoria com maior gasto foi Mercado",
		"em 03/2025",
		"mercado central",
		"Seu dia mais caro foi 08/03/2025",
		"Suas receitas variaram positivamente em 25.0%",
		"Suas despesas variaram para cima em 40.0%",
	} {
		if !strings.Contains(joined, want) {
			t.Errorf("insights missing %q in:\n%s", want, joined)
		}
	}
}

func TestBRDate(t *testing.T) {
	if got := brDate("2025-03-08"); got != "08/03/2025" {
		t.Errorf("brDate = %q", got)
	}
	// Unparseable input passes through untouched
	if got := brDate("whenever"); got != "whenever" {
		t.Errorf("brDate fallback = %q", got)
	}
}
