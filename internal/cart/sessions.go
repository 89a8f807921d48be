package cart

import (
	"sync"

	"github.com/google/uuid"
)

// Sessions is the registry of live carts, keyed by the session cookie value.
// Each cart belongs to exactly one browsing session; the registry mutex only
// guards the map and hands out per-session locks so cart operations stay
// serialized within a session.
type Sessions struct {
	mu    sync.Mutex
	carts map[string]*entry
}

type entry struct {
	mu   sync.Mutex
	cart *Cart
}

// NewSessions returns an empty registry.
func NewSessions() *Sessions {
	return &Sessions{carts: make(map[string]*entry)}
}

// NewID issues a fresh session identifier for the cookie.
func (s *Sessions) NewID() string {
	return uuid.NewString()
}

// With runs fn with the session's cart, creating the cart on first use.
// fn runs under the session's lock, so all cart mutations for one session
// execute to completion before the next one starts.
func (s *Sessions) With(sessionID string, fn func(*Cart)) {
	s.mu.Lock()
	e, ok := s.carts[sessionID]
	if !ok {
		e = &entry{cart: New()}
		s.carts[sessionID] = e
	}
	s.mu.Unlock()

	e.mu.Lock()
	defer e.mu.Unlock()
	fn(e.cart)
}

// Drop discards a session's cart, e.g. after checkout.
func (s *Sessions) Drop(sessionID string) {
	s.mu.Lock()
	delete(s.carts, sessionID)
	s.mu.Unlock()
}
