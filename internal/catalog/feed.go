// Package catalog keeps consumers synchronized with the product collection.
//
// A Feed hands out cancellable subscriptions. Every notification carries the
// full current catalog, never a diff: subscribers replace their local state
// wholesale, so a missed intermediate snapshot can never leave them
// inconsistent. Snapshots are delivered per subscription in the order they
// were published, without coalescing, and a slow subscriber never blocks the
// publisher or other subscribers.
package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	"github.com/ameliecafe/storefront/internal/model"
	"github.com/ameliecafe/storefront/internal/store"
)

// Feed publishes full-catalog snapshots to subscribers whenever the product
// collection changes.
type Feed struct {
	db *sql.DB

	mu     sync.Mutex
	subs   map[*Subscription]struct{}
	closed bool
}

// NewFeed creates a feed backed by the given database.
func NewFeed(db *sql.DB) *Feed {
	return &Feed{
		db:   db,
		subs: make(map[*Subscription]struct{}),
	}
}

// Subscribe registers a new subscription. The current catalog is loaded and
// queued as the first snapshot before Subscribe returns, so the subscriber's
// loading phase ends as soon as it reads from Snapshots. Load, registration,
// and the first enqueue happen under the publish lock: a concurrent Broadcast
// either lands entirely before the initial snapshot is read or is queued
// after it, so a subscriber can never start from a newer state than its next
// notification or settle on a stale one.
func (f *Feed) Subscribe(ctx context.Context) (*Subscription, error) {
	sub := &Subscription{
		out:  make(chan []model.Product),
		wake: make(chan struct{}, 1),
		done: make(chan struct{}),
	}

	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return nil, fmt.Errorf("feed is closed")
	}

	snapshot, err := store.ListProducts(ctx, f.db)
	if err != nil {
		f.mu.Unlock()
		return nil, fmt.Errorf("loading initial snapshot: %w", err)
	}

	f.subs[sub] = struct{}{}
	sub.unregister = func() { f.remove(sub) }
	sub.enqueue(snapshot)
	f.mu.Unlock()

	go sub.pump()

	return sub, nil
}

// Broadcast re-reads the catalog and publishes the resulting snapshot to all
// subscriptions. Call it after every product mutation. Read and fan-out share
// the publish lock, so snapshots are queued in the order they were read from
// the store. A read failure is logged by the caller's error return;
// subscribers simply do not advance until the next successful broadcast.
func (f *Feed) Broadcast(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	snapshot, err := store.ListProducts(ctx, f.db)
	if err != nil {
		return fmt.Errorf("loading snapshot: %w", err)
	}

	for sub := range f.subs {
		sub.enqueue(snapshot)
	}
	return nil
}

// Close shuts down the feed and every open subscription.
func (f *Feed) Close() {
	f.mu.Lock()
	f.closed = true
	subs := make([]*Subscription, 0, len(f.subs))
	for sub := range f.subs {
		subs = append(subs, sub)
	}
	f.mu.Unlock()

	for _, sub := range subs {
		sub.Close()
	}
}

func (f *Feed) remove(sub *Subscription) {
	f.mu.Lock()
	delete(f.subs, sub)
	f.mu.Unlock()
}

// Subscription is one consumer's standing view of the catalog feed.
type Subscription struct {
	out  chan []model.Product
	wake chan struct{}
	done chan struct{}

	mu    sync.Mutex
	queue [][]model.Product

	closeOnce  sync.Once
	unregister func()
}

// Snapshots returns the channel on which full-catalog snapshots arrive.
// The channel is closed when the subscription is closed.
func (s *Subscription) Snapshots() <-chan []model.Product {
	return s.out
}

// Close releases the subscription. It is unconditional and idempotent; after
// it returns no further snapshots are queued and the Snapshots channel is
// drained and closed by the delivery goroutine.
func (s *Subscription) Close() {
	s.closeOnce.Do(func() {
		if s.unregister != nil {
			s.unregister()
		}
		close(s.done)
	})
}

// enqueue appends a snapshot to the in-order delivery queue.
func (s *Subscription) enqueue(snapshot []model.Product) {
	s.mu.Lock()
	s.queue = append(s.queue, snapshot)
	s.mu.Unlock()

	select {
	case s.wake <- struct{}{}:
	default:
	}
}

// pump drains the queue into the out channel, preserving publish order.
func (s *Subscription) pump() {
	defer close(s.out)

	for {
		select {
		case <-s.done:
			return
		case <-s.wake:
		}

		for {
			s.mu.Lock()
			if len(s.queue) == 0 {
				s.mu.Unlock()
				break
			}
			next := s.queue[0]
			s.queue = s.queue[1:]
			s.mu.Unlock()

			select {
			case s.out <- next:
			case <-s.done:
				return
			}
		}
	}
}
