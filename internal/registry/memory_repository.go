package registry

import (
    "context"
    "sync"
)

type memoryRepository struct {
    mu      sync.RWMutex
    records map[string]Record
}

// NewMemoryRepository builds an in-memory registry store for testing.
func NewMemoryRepository() Repository {
    return &memoryRepository{records: make(map[string]Record)}
}

func (r *memoryRepository) Load(_ context.Context) (map[string]Record, error) {
    r.mu.RLock()
    defer r.mu.RUnlock()
    return cloneRecords(r.records), nil
}

func (r *memoryRepository) Save(_ context.Context, records map[string]Record) error {
    r.mu.Lock()
    defer r.mu.Unlock()
    r.records = cloneRecords(records)
    return nil
}

func (r *memoryRepository) Clear(_ context.Context) error {
    r.mu.Lock()
    defer r.mu.Unlock()
    r.records = make(map[string]Record)
    return nil
}
