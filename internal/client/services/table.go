package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/keydesk/internal/client/client"
	"github.com/dmitrijs2005/keydesk/internal/client/models"
)

// KeyTable is the key listing as last confirmed by the backend. Mutations go
// to the backend first; the rows change only when the call succeeds.
type KeyTable struct {
	svc KeyService

	mu     sync.RWMutex
	rows   []models.APIKey
	loaded bool
}

func NewKeyTable(svc KeyService) *KeyTable {
	return &KeyTable{svc: svc}
}

// Refresh replaces the rows with a fresh listing.
func (t *KeyTable) Refresh(ctx context.Context) error {
	keys, err := t.svc.List(ctx)
	if err != nil {
		return err
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.rows = append([]models.APIKey(nil), keys...)
	t.loaded = true
	return nil
}

// Loaded reports whether Refresh has succeeded at least once.
func (t *KeyTable) Loaded() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.loaded
}

// Rows returns a copy of the rows.
func (t *KeyTable) Rows() []models.APIKey {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return append([]models.APIKey(nil), t.rows...)
}

func (t *KeyTable) Get(id int64) (models.APIKey, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	for _, k := range t.rows {
		if k.ID == id {
			return k, true
		}
	}
	return models.APIKey{}, false
}

// Counts returns the number of keys and of active keys.
func (t *KeyTable) Counts() (total, active int) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	for _, k := range t.rows {
		if k.IsActive {
			active++
		}
	}
	return len(t.rows), active
}

// Create adds the confirmed key at the top of the table.
func (t *KeyTable) Create(ctx context.Context, req models.CreateKeyRequest) (models.APIKey, error) {
	k, err := t.svc.Create(ctx, req)
	if err != nil {
		return models.APIKey{}, err
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.rows = append([]models.APIKey{k}, t.rows...)
	return k, nil
}

// Toggle flips is_active of a listed key and nothing else.
func (t *KeyTable) Toggle(ctx context.Context, id int64) (models.APIKey, error) {
	k, ok := t.Get(id)
	if !ok {
		return models.APIKey{}, unknownKey(id)
	}
	return t.SetActive(ctx, id, !k.IsActive)
}

func (t *KeyTable) SetActive(ctx context.Context, id int64, active bool) (models.APIKey, error) {
	return t.Update(ctx, id, models.KeyUpdate{IsActive: &active})
}

func (t *KeyTable) Update(ctx context.Context, id int64, upd models.KeyUpdate) (models.APIKey, error) {
	k, err := t.svc.Update(ctx, id, upd)
	if err != nil {
		return models.APIKey{}, err
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	for i := range t.rows {
		if t.rows[i].ID == k.ID {
			t.rows[i] = k
		}
	}
	return k, nil
}

func (t *KeyTable) Delete(ctx context.Context, id int64) error {
	if err := t.svc.Delete(ctx, id); err != nil {
		return err
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	rows := t.rows[:0]
	for _, k := range t.rows {
		if k.ID != id {
			rows = append(rows, k)
		}
	}
	t.rows = rows
	return nil
}

// Clear forgets the rows, e.g. after logout.
func (t *KeyTable) Clear() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.rows = nil
	t.loaded = false
}

func unknownKey(id int64) error {
	return client.Invalid("id", fmt.Sprintf("No key with id %d in the table; run keys to refresh", id))
}
