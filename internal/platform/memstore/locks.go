package memstore

import (
	"context"
	"fmt"
	"sync"

	"github.com/palabras/palabras-api/internal/store"
)

// keyLocks is a set of exclusive locks keyed by string.
type keyLocks struct {
	mu   sync.Mutex
	held map[string]chan struct{}
}

func newKeyLocks() *keyLocks {
	return &keyLocks{held: make(map[string]chan struct{})}
}

// acquire blocks until key is free or ctx is done.
func (k *keyLocks) acquire(ctx context.Context, key string) error {
	for {
		k.mu.Lock()
		ch, busy := k.held[key]
		if !busy {
			k.held[key] = make(chan struct{})
			k.mu.Unlock()
			return nil
		}
		k.mu.Unlock()

		select {
		case <-ch:
		case <-ctx.Done():
			return fmt.Errorf("%w: waiting for lock %s: %v", store.ErrConflict, key, ctx.Err())
		}
	}
}

func (k *keyLocks) release(key string) {
	k.mu.Lock()
	defer k.mu.Unlock()
	if ch, ok := k.held[key]; ok {
		delete(k.held, key)
		close(ch)
	}
}
