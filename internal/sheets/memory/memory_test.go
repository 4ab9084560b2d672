package memory

import (
	"context"
	"testing"

	ports "gastos/internal/sheets"
)

func row(id int64) ports.MirrorRow {
	return ports.MirrorRow{
		ID:          id,
		Date:        "2025-03-09",
		Description: "Mercado",
		Amount:      "-120,50",
		Type:        "EXPENSE",
		Account:     "Conta Corrente",
		Category:    "Mercado",
	}
}

func TestStoreAppendAndFind(t *testing.T) {
	s := New()
	ctx := context.Background()

	ref, err := s.Append(ctx, row(1))
	if err != nil || ref != "mem!A1:H1" {
		t.Fatalf("append: ref=%q err=%v", ref, err)
	}
	if _, err := s.Append(ctx, row(2)); err != nil {
		t.Fatalf("append second: %v", err)
	}

	n, err := s.FindRowByID(ctx, 2)
	if err != nil || n != 2 {
		t.Errorf("find id 2: row=%d err=%v", n, err)
	}
	n, err = s.FindRowByID(ctx, 99)
	if err != nil || n != 0 {
		t.Errorf("find absent id: row=%d err=%v", n, err)
	}
}

func TestStoreDelete(t *testing.T) {
	s := New()
	ctx := context.Background()
	for id := int64(1); id <= 3; id++ {
		if _, err := s.Append(ctx, row(id)); err != nil {
			t.Fatalf("append %d: %v", id, err)
		}
	}

	deleted, err := s.DeleteByID(ctx, 2)
	if err != nil || !deleted {
		t.Fatalf("delete: deleted=%v err=%v", deleted, err)
	}

	// Rows shift up like in a real sheet
	n, _ := s.FindRowByID(ctx, 3)
	if n != 2 {
		t.Errorf("id 3 now at row %d, want 2", n)
	}

	deleted, err = s.DeleteByID(ctx, 2)
	if err != nil || deleted {
		t.Errorf("second delete: deleted=%v err=%v", deleted, err)
	}
}
