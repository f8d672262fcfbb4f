package session

import (
	"context"
	"sync"

	"github.com/pkg/errors"
)

// ErrNoRecord is returned by Storage.Load when nothing is persisted under the key.
var ErrNoRecord = errors.New("no persisted session")

// Storage persists session records by key.
type Storage interface {
	// Load returns ErrNoRecord if key holds nothing.
	Load(ctx context.Context, key string) (Record, error)
	Save(ctx context.Context, key string, rec Record) error
	// Delete is a no-op if key holds nothing.
	Delete(ctx context.Context, key string) error
}

// MemoryStorage keeps records in process memory.
type MemoryStorage struct {
	mutex sync.RWMutex
	table map[string]Record
}

var _ Storage = (*MemoryStorage)(nil)

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{table: make(map[string]Record)}
}

func (s *MemoryStorage) Load(_ context.Context, key string) (Record, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	if rec, ok := s.table[key]; ok {
		return rec, nil
	}
	return Record{}, ErrNoRecord
}

func (s *MemoryStorage) Save(_ context.Context, key string, rec Record) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.table[key] = rec
	return nil
}

func (s *MemoryStorage) Delete(_ context.Context, key string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	delete(s.table, key)
	return nil
}

// Len returns the number of persisted records.
func (s *MemoryStorage) Len() int {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return len(s.table)
}
