package memory

import (
	"context"
	"fmt"
	"sync"

	ports "gastos/internal/sheets"
)

// Store is an in-memory mirror used in tests and local runs without
// Google credentials. Rows keep insertion order like a real sheet.
type Store struct {
	mu   sync.Mutex
	rows []ports.MirrorRow
}

func New() *Store {
	return &Store{}
}

var _ ports.Mirror = (*Store)(nil)

func (s *Store) Append(_ context.Context, row ports.MirrorRow) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows = append(s.rows, row)
	return fmt.Sprintf("mem!A%d:H%d", len(s.rows), len(s.rows)), nil
}

func (s *Store) FindRowByID(_ context.Context, id int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, row := range s.rows {
		if row.ID == id {
			return int64(i + 1), nil
		}
	}
	return 0, nil
}

func (s *Store) DeleteByID(_ context.Context, id int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, row := range s.rows {
		if row.ID == id {
			s.rows = append(s.rows[:i], s.rows[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

// Rows returns a copy of the stored rows in sheet order.
func (s *Store) Rows() []ports.MirrorRow {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]ports.MirrorRow(nil), s.rows...)
}
