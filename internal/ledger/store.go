package ledger

import "sync"

// Store persists accepted transactions. Implementations must preserve commit
// order in List.
type Store interface {
	Save(tx Transaction) error
	List() ([]Transaction, error)
}

// MemoryStore is the default in-process store: a mutex-guarded append-only
// slice, copied on read so callers cannot mutate internal state.
type MemoryStore struct {
	mu  sync.Mutex
	txs []Transaction
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Save(tx Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.txs = append(s.txs, tx)
	return nil
}

func (s *MemoryStore) List() ([]Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Transaction, len(s.txs))
	copy(out, s.txs)
	return out, nil
}

var _ Store = (*MemoryStore)(nil)
