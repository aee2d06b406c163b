package storage

import "sync"

// MemoryStore is an in-memory Store. Transactions stage writes in a journal
// and apply them only on success, so a failed Update leaves the base map
// untouched.
type MemoryStore struct {
	mu   sync.Mutex
	data map[Key][]byte
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[Key][]byte)}
}

var _ Store = (*MemoryStore)(nil)

type memoryTx struct {
	base    map[Key][]byte
	writes  map[Key][]byte
	deletes map[Key]struct{}
}

func (t *memoryTx) Get(key Key) ([]byte, bool, error) {
	if _, gone := t.deletes[key]; gone {
		return nil, false, nil
	}
	if v, ok := t.writes[key]; ok {
		return append([]byte(nil), v...), true, nil
	}
	v, ok := t.base[key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), v...), true, nil
}

func (t *memoryTx) Set(key Key, value []byte) error {
	delete(t.deletes, key)
	t.writes[key] = append([]byte(nil), value...)
	return nil
}

func (t *memoryTx) Remove(key Key) error {
	delete(t.writes, key)
	t.deletes[key] = struct{}{}
	return nil
}

func (t *memoryTx) Has(key Key) (bool, error) {
	_, ok, err := t.Get(key)
	return ok, err
}

// View runs fn over a read-only snapshot.
func (s *MemoryStore) View(fn func(Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	tx := &memoryTx{
		base:    s.data,
		writes:  make(map[Key][]byte),
		deletes: make(map[Key]struct{}),
	}
	return fn(tx)
}

// Update runs fn in a read-write transaction, applying the journal only when
// fn succeeds.
func (s *MemoryStore) Update(fn func(Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	tx := &memoryTx{
		base:    s.data,
		writes:  make(map[Key][]byte),
		deletes: make(map[Key]struct{}),
	}
	if err := fn(tx); err != nil {
		return err
	}
	for k := range tx.deletes {
		delete(s.data, k)
	}
	for k, v := range tx.writes {
		s.data[k] = v
	}
	return nil
}

// Close is a no-op for the in-memory store.
func (s *MemoryStore) Close() error { return nil }

// Len reports the number of stored keys. Test helper.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.data)
}
