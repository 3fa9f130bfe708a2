package session

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/stampcard/internal/client/store"
	"github.com/dmitrijs2005/stampcard/internal/models"
)

// Keeper loads and saves the singleton session.
type Keeper interface {
	Load(ctx context.Context) (models.Session, error)
	Save(ctx context.Context, s models.Session) error
}

// StoreKeeper persists the session through the record store, so it survives a
// restart.
type StoreKeeper struct {
	store store.RecordStore
}

func NewStoreKeeper(s store.RecordStore) *StoreKeeper {
	return &StoreKeeper{store: s}
}

func (k *StoreKeeper) Load(ctx context.Context) (models.Session, error) {
	return k.store.GetSession(ctx)
}

func (k *StoreKeeper) Save(ctx context.Context, s models.Session) error {
	return k.store.PutSession(ctx, s)
}

// MemoryKeeper holds the session in process memory only.
type MemoryKeeper struct {
	mu sync.Mutex
	s  models.Session
}

func NewMemoryKeeper() *MemoryKeeper {
	return &MemoryKeeper{}
}

func (k *MemoryKeeper) Load(ctx context.Context) (models.Session, error) {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.s, nil
}

func (k *MemoryKeeper) Save(ctx context.Context, s models.Session) error {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.s = s
	return nil
}
