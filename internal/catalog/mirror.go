package catalog

import (
	"context"
	"sync"

	"github.com/ameliecafe/storefront/internal/model"
)

// Mirror holds a read-only local copy of the catalog, replaced wholesale on
// every snapshot from its subscription. Loading reports true only until the
// first snapshot lands and never flips back while the mirror runs.
type Mirror struct {
	sub *Subscription

	mu       sync.RWMutex
	products []model.Product
	loaded   bool
}

// NewMirror creates a mirror fed by sub. Call Run to start consuming.
func NewMirror(sub *Subscription) *Mirror {
	return &Mirror{sub: sub}
}

// Run consumes snapshots until the subscription closes or ctx is cancelled.
// It always releases the subscription on the way out.
func (m *Mirror) Run(ctx context.Context) {
	defer m.sub.Close()

	for {
		select {
		case <-ctx.Done():
			return
		case snapshot, ok := <-m.sub.Snapshots():
			if !ok {
				return
			}
			m.mu.Lock()
			m.products = snapshot
			m.loaded = true
			m.mu.Unlock()
		}
	}
}

// Products returns the latest snapshot. The slice must not be mutated.
func (m *Mirror) Products() []model.Product {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.products
}

// Loading reports whether the first snapshot is still pending.
func (m *Mirror) Loading() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return !m.loaded
}
