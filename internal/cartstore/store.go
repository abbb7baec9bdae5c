// Package cartstore holds one shopper's cart state: the latest backend
// snapshot, a loading flag spanning in-flight mutations, and the drawer
// visibility flag. It owns no commerce logic; every mutation round-trips
// through the backend and replaces the snapshot wholesale.
package cartstore

import (
	"context"
	"errors"
	"log"
	"sync"

	"github.com/nextagencyio/decoupled-commerce/internal/commerce"
	"github.com/nextagencyio/decoupled-commerce/internal/domain"
	"github.com/nextagencyio/decoupled-commerce/internal/kv"
)

// Backend is the slice of the commerce gateway the store needs. Satisfied by
// *commerce.Client.
type Backend interface {
	CartCreate(ctx context.Context, line commerce.CartLineInput) (*domain.Cart, error)
	CartLinesAdd(ctx context.Context, cartID string, line commerce.CartLineInput) (*domain.Cart, error)
	CartLinesUpdate(ctx context.Context, cartID, lineID string, quantity int) (*domain.Cart, error)
	CartLinesRemove(ctx context.Context, cartID string, lineIDs ...string) (*domain.Cart, error)
	CartFetch(ctx context.Context, cartID string) (*domain.Cart, error)
}

// Snapshot is the read-only view consumers render from. Cart is nil until a
// cart exists; a cart with zero lines is still a cart.
type Snapshot struct {
	Cart       *domain.Cart `json:"cart"`
	Loading    bool         `json:"loading"`
	DrawerOpen bool         `json:"drawerOpen"`
}

// Store is safe for concurrent use. Mutations may overlap; each request is
// stamped with a sequence number when it is issued and a response is applied
// only if its sequence is the highest applied so far, so a stale response
// can never overwrite a fresher snapshot.
type Store struct {
	backend Backend
	persist kv.Store
	logger  *log.Logger

	mu          sync.Mutex
	cart        *domain.Cart
	drawerOpen  bool
	inflight    int
	issuedSeq   uint64
	appliedSeq  uint64
	subscribers []func(Snapshot)
}

func New(backend Backend, persist kv.Store, logger *log.Logger) *Store {
	return &Store{backend: backend, persist: persist, logger: logger}
}

// Snapshot returns the current view. Consumers must treat Cart as read-only.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Store) snapshotLocked() Snapshot {
	return Snapshot{
		Cart:       s.cart,
		Loading:    s.inflight > 0,
		DrawerOpen: s.drawerOpen,
	}
}

// Subscribe registers fn to run after every state change. Callbacks run on
// the mutating goroutine and must not call back into the store.
func (s *Store) Subscribe(fn func(Snapshot)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subscribers = append(s.subscribers, fn)
}

func (s *Store) notify() {
	s.mu.Lock()
	snap := s.snapshotLocked()
	subs := make([]func(Snapshot), len(s.subscribers))
	copy(subs, s.subscribers)
	s.mu.Unlock()
	for _, fn := range subs {
		fn(snap)
	}
}

// begin stamps a new mutation and raises the loading flag. It returns the
// sequence number and the cart identity observed at issue time.
func (s *Store) begin() (seq uint64, cartID string, populated bool) {
	s.mu.Lock()
	s.issuedSeq++
	seq = s.issuedSeq
	s.inflight++
	if s.cart != nil {
		cartID = s.cart.ID
		populated = true
	}
	s.mu.Unlock()
	s.notify()
	return seq, cartID, populated
}

// end clears the loading flag for one mutation. It runs on every exit path
// so the UI is never left stuck disabled.
func (s *Store) end() {
	s.mu.Lock()
	s.inflight--
	s.mu.Unlock()
	s.notify()
}

// apply installs a response snapshot unless a later-issued request has
// already been applied, in which case the stale response is discarded.
func (s *Store) apply(ctx context.Context, seq uint64, cart *domain.Cart, persistID, openDrawer bool) {
	s.mu.Lock()
	if seq <= s.appliedSeq {
		applied := s.appliedSeq
		s.mu.Unlock()
		if s.logger != nil {
			s.logger.Printf("cart: discarding stale response (seq %d, applied %d)", seq, applied)
		}
		return
	}
	s.appliedSeq = seq
	s.cart = cart
	if openDrawer {
		s.drawerOpen = true
	}
	// The persisted id follows the same gate as the snapshot: writing it
	// outside the lock would let a stale response's id land after a fresher
	// one. Both KV impls are single-row ops, so holding the lock is cheap.
	if persistID && cart != nil {
		if err := s.persist.Set(ctx, kv.CartIDKey, cart.ID); err != nil && s.logger != nil {
			s.logger.Printf("cart: persist id: %v", err)
		}
	}
	s.mu.Unlock()
	s.notify()
}

// fail logs a mutation failure and returns it. State is deliberately left
// unchanged: a failed mutation is a no-op apart from the error itself.
func (s *Store) fail(op string, err error) error {
	if s.logger != nil {
		var userErrs *commerce.UserErrorList
		if errors.As(err, &userErrs) {
			s.logger.Printf("cart: %s rejected: %v", op, err)
		} else {
			s.logger.Printf("cart: %s failed: %v", op, err)
		}
	}
	return err
}

// AddToCart adds quantity units of a variant. From empty state it creates
// the cart and persists the backend-assigned identifier; otherwise it adds a
// line to the existing cart. On success the drawer opens.
func (s *Store) AddToCart(ctx context.Context, variantID string, quantity int) error {
	seq, cartID, populated := s.begin()
	defer s.end()

	line := commerce.CartLineInput{MerchandiseID: variantID, Quantity: quantity}

	var (
		cart *domain.Cart
		err  error
	)
	if !populated {
		cart, err = s.backend.CartCreate(ctx, line)
	} else {
		cart, err = s.backend.CartLinesAdd(ctx, cartID, line)
	}
	if err != nil {
		return s.fail("add", err)
	}

	s.apply(ctx, seq, cart, !populated, true)
	return nil
}

// UpdateQuantity sets a line's quantity. Zero routes to RemoveFromCart; the
// update mutation itself is only valid for quantity >= 1. A call with no
// cart present is a no-op.
func (s *Store) UpdateQuantity(ctx context.Context, lineID string, quantity int) error {
	if quantity == 0 {
		return s.RemoveFromCart(ctx, lineID)
	}

	seq, cartID, populated := s.begin()
	defer s.end()
	if !populated {
		return nil
	}

	cart, err := s.backend.CartLinesUpdate(ctx, cartID, lineID, quantity)
	if err != nil {
		return s.fail("update", err)
	}

	s.apply(ctx, seq, cart, false, false)
	return nil
}

// RemoveFromCart removes one line. The resulting cart may have zero lines;
// the identifier stays valid and reusable, so the store stays populated.
func (s *Store) RemoveFromCart(ctx context.Context, lineID string) error {
	seq, cartID, populated := s.begin()
	defer s.end()
	if !populated {
		return nil
	}

	cart, err := s.backend.CartLinesRemove(ctx, cartID, lineID)
	if err != nil {
		return s.fail("remove", err)
	}

	s.apply(ctx, seq, cart, false, false)
	return nil
}

// Rehydrate reconstructs state from the persisted identifier. A cart that is
// gone upstream clears persistence and leaves the store empty; that is the
// expected expiry path, not an error. A transport failure keeps the
// persisted identifier so a later rehydrate can retry.
func (s *Store) Rehydrate(ctx context.Context) error {
	cartID, err := s.persist.Get(ctx, kv.CartIDKey)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil
		}
		return s.fail("rehydrate", err)
	}

	seq, _, _ := s.begin()
	defer s.end()

	cart, err := s.backend.CartFetch(ctx, cartID)
	if err != nil {
		return s.fail("rehydrate", err)
	}
	if cart == nil {
		// Clearing the id is gated like any other outcome: a mutation that
		// raced this rehydrate and persisted a fresh cart must not have it
		// deleted out from under it.
		s.mu.Lock()
		if seq > s.appliedSeq {
			s.appliedSeq = seq
			if err := s.persist.Delete(ctx, kv.CartIDKey); err != nil && s.logger != nil {
				s.logger.Printf("cart: clear stale id: %v", err)
			}
		}
		s.mu.Unlock()
		return nil
	}

	s.apply(ctx, seq, cart, false, false)
	return nil
}

func (s *Store) OpenDrawer() {
	s.mu.Lock()
	s.drawerOpen = true
	s.mu.Unlock()
	s.notify()
}

func (s *Store) CloseDrawer() {
	s.mu.Lock()
	s.drawerOpen = false
	s.mu.Unlock()
	s.notify()
}

func (s *Store) ToggleDrawer() {
	s.mu.Lock()
	s.drawerOpen = !s.drawerOpen
	s.mu.Unlock()
	s.notify()
}
