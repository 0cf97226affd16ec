package memory

import (
	"context"
	"fmt"
	"sync"

	"tally/internal/core"
)

// Store is an in-process export target used in tests and local setups
// where no spreadsheet is configured.
type Store struct {
	mu    sync.Mutex
	items []core.Transaction
}

func New() *Store {
	return &Store{}
}

// Append stores the transaction and returns a synthetic row reference.
func (s *Store) Append(_ context.Context, tx core.Transaction) (string, error) {
	if err := tx.Validate(); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = append(s.items, tx)
	return fmt.Sprintf("mem:%d", len(s.items)), nil
}

// Delete removes the first stored row matching the transaction's date,
// description and amount. A missing row is not an error.
func (s *Store) Delete(_ context.Context, tx core.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, item := range s.items {
		if item.Date.Equal(tx.Date) && item.Description == tx.Description && item.Amount.Cmp(tx.Amount) == 0 {
			s.items = append(s.items[:i], s.items[i+1:]...)
			return nil
		}
	}
	return nil
}

// Items returns a snapshot of the stored rows.
func (s *Store) Items() []core.Transaction {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Transaction(nil), s.items...)
}
