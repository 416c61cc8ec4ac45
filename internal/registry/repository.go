package registry

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ucid-labs/ucid/internal/kvstore"
)

// StorageSuffix names the registry entry inside the namespace.
const StorageSuffix = "blockchain_wallets"

// Repository loads and saves the whole UID to Record mapping.
type Repository interface {
	Load(ctx context.Context) (map[string]Record, error)
	Save(ctx context.Context, records map[string]Record) error
	Clear(ctx context.Context) error
}

// StoreRepository keeps the mapping as one JSON document in a kvstore.
type StoreRepository struct {
	store kvstore.Store
	key   string
}

// NewStoreRepository builds a repository writing under "<namespace>_blockchain_wallets".
func NewStoreRepository(store kvstore.Store, namespace string) *StoreRepository {
	return &StoreRepository{store: store, key: kvstore.Key(namespace, StorageSuffix)}
}

// Key returns the storage key holding the mapping.
func (r *StoreRepository) Key() string {
	return r.key
}

// Load decodes the stored mapping. A missing entry yields an empty mapping.
func (r *StoreRepository) Load(ctx context.Context) (map[string]Record, error) {
	raw, ok, err := r.store.Get(ctx, r.key)
	if err != nil {
		return nil, err
	}
	records := make(map[string]Record)
	if !ok || raw == "" {
		return records, nil
	}
	if err := json.Unmarshal([]byte(raw), &records); err != nil {
		return nil, fmt.Errorf("decode %s: %w", r.key, err)
	}
	return records, nil
}

// Save replaces the stored mapping.
func (r *StoreRepository) Save(ctx context.Context, records map[string]Record) error {
	payload, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("encode %s: %w", r.key, err)
	}
	return r.store.Set(ctx, r.key, string(payload))
}

// Clear removes the stored mapping.
func (r *StoreRepository) Clear(ctx context.Context) error {
	return r.store.Remove(ctx, r.key)
}
