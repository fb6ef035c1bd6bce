package memory

import (
	"context"
	"fmt"
	"sync"

	"mealbook/internal/rowstore"
)

// Store is an in-memory row store used by tests and local development. It
// mimics the spreadsheet's behavior: Clear blanks a row in place, so row
// indices stay stable across deletes.
type Store struct {
	mu     sync.Mutex
	tables map[string][][]string
}

var _ rowstore.Store = (*Store)(nil)

func New() *Store {
	return &Store{tables: make(map[string][][]string)}
}

// Seed replaces a table's rows wholesale.
func (s *Store) Seed(table string, rows [][]string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := make([][]string, len(rows))
	for i, r := range rows {
		copied[i] = append([]string(nil), r...)
	}
	s.tables[table] = copied
}

func (s *Store) Get(_ context.Context, table string) ([][]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rows := s.tables[table]
	out := make([][]string, len(rows))
	for i, r := range rows {
		out[i] = append([]string(nil), r...)
	}
	return out, nil
}

func (s *Store) Append(_ context.Context, table string, rows [][]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range rows {
		s.tables[table] = append(s.tables[table], append([]string(nil), r...))
	}
	return nil
}

func (s *Store) Update(_ context.Context, table string, rowIndex int, row []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rows := s.tables[table]
	if rowIndex < 0 || rowIndex >= len(rows) {
		return fmt.Errorf("update %s row %d: out of range", table, rowIndex)
	}
	rows[rowIndex] = append([]string(nil), row...)
	return nil
}

func (s *Store) Clear(_ context.Context, table string, rowIndex int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rows := s.tables[table]
	if rowIndex < 0 || rowIndex >= len(rows) {
		return fmt.Errorf("clear %s row %d: out of range", table, rowIndex)
	}
	rows[rowIndex] = []string{}
	return nil
}
