package cartstore

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/nextagencyio/decoupled-commerce/internal/commerce"
	"github.com/nextagencyio/decoupled-commerce/internal/domain"
	"github.com/nextagencyio/decoupled-commerce/internal/kv"
)

// stubBackend lets each test script the gateway's behavior per operation.
type stubBackend struct {
	create func(line commerce.CartLineInput) (*domain.Cart, error)
	add    func(cartID string, line commerce.CartLineInput) (*domain.Cart, error)
	update func(cartID, lineID string, quantity int) (*domain.Cart, error)
	remove func(cartID string, lineIDs ...string) (*domain.Cart, error)
	fetch  func(cartID string) (*domain.Cart, error)
}

func (s *stubBackend) CartCreate(_ context.Context, line commerce.CartLineInput) (*domain.Cart, error) {
	return s.create(line)
}

func (s *stubBackend) CartLinesAdd(_ context.Context, cartID string, line commerce.CartLineInput) (*domain.Cart, error) {
	return s.add(cartID, line)
}

func (s *stubBackend) CartLinesUpdate(_ context.Context, cartID, lineID string, quantity int) (*domain.Cart, error) {
	return s.update(cartID, lineID, quantity)
}

func (s *stubBackend) CartLinesRemove(_ context.Context, cartID string, lineIDs ...string) (*domain.Cart, error) {
	return s.remove(cartID, lineIDs...)
}

func (s *stubBackend) CartFetch(_ context.Context, cartID string) (*domain.Cart, error) {
	return s.fetch(cartID)
}

// fakeCommerce emulates the authoritative backend: it owns the cart, merges
// quantities for identical merchandise on add, and recomputes totalQuantity
// on every mutation, the way the real storefront API does.
type fakeCommerce struct {
	mu       sync.Mutex
	nextLine int
	cartID   string
	lines    []domain.CartLine
}

func newFakeCommerce() *fakeCommerce {
	return &fakeCommerce{cartID: "gid://cart/1"}
}

func (f *fakeCommerce) snapshot() *domain.Cart {
	total := 0
	lines := make([]domain.CartLine, len(f.lines))
	copy(lines, f.lines)
	for _, l := range lines {
		total += l.Quantity
	}
	cart := &domain.Cart{
		ID:            f.cartID,
		TotalQuantity: total,
		Cost: domain.CartCost{
			Subtotal: domain.Money{Amount: strconv.Itoa(total * 10), CurrencyCode: "USD"},
			Total:    domain.Money{Amount: strconv.Itoa(total * 10), CurrencyCode: "USD"},
		},
		Lines: lines,
	}
	if total > 0 {
		cart.CheckoutURL = "https://checkout.example/" + f.cartID
	}
	return cart
}

func (f *fakeCommerce) addLine(line commerce.CartLineInput) {
	for i := range f.lines {
		if f.lines[i].Merchandise.ID == line.MerchandiseID {
			f.lines[i].Quantity += line.Quantity
			return
		}
	}
	f.nextLine++
	f.lines = append(f.lines, domain.CartLine{
		ID:       fmt.Sprintf("gid://line/%d", f.nextLine),
		Quantity: line.Quantity,
		Merchandise: domain.Merchandise{
			ID:    line.MerchandiseID,
			Price: domain.Money{Amount: "10", CurrencyCode: "USD"},
		},
	})
}

func (f *fakeCommerce) CartCreate(_ context.Context, line commerce.CartLineInput) (*domain.Cart, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lines = nil
	f.addLine(line)
	return f.snapshot(), nil
}

func (f *fakeCommerce) CartLinesAdd(_ context.Context, cartID string, line commerce.CartLineInput) (*domain.Cart, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if cartID != f.cartID {
		return nil, &commerce.UserErrorList{Op: "cartLinesAdd", Errors: []commerce.UserError{{Message: "cart not found"}}}
	}
	f.addLine(line)
	return f.snapshot(), nil
}

func (f *fakeCommerce) CartLinesUpdate(_ context.Context, cartID, lineID string, quantity int) (*domain.Cart, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.lines {
		if f.lines[i].ID == lineID {
			f.lines[i].Quantity = quantity
			return f.snapshot(), nil
		}
	}
	return nil, &commerce.UserErrorList{Op: "cartLinesUpdate", Errors: []commerce.UserError{{Message: "line not found"}}}
}

func (f *fakeCommerce) CartLinesRemove(_ context.Context, cartID string, lineIDs ...string) (*domain.Cart, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, id := range lineIDs {
		for i := range f.lines {
			if f.lines[i].ID == id {
				f.lines = append(f.lines[:i], f.lines[i+1:]...)
				break
			}
		}
	}
	return f.snapshot(), nil
}

func (f *fakeCommerce) CartFetch(_ context.Context, cartID string) (*domain.Cart, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if cartID != f.cartID {
		return nil, nil
	}
	return f.snapshot(), nil
}

func newTestStore(t *testing.T, backend Backend) (*Store, *kv.Memory) {
	t.Helper()
	persist := kv.NewMemory()
	return New(backend, persist, log.New(testWriter{t}, "[cart] ", 0)), persist
}

type testWriter struct{ t *testing.T }

func (w testWriter) Write(p []byte) (int, error) {
	w.t.Log(string(p))
	return len(p), nil
}

func TestAddToCartFromEmpty(t *testing.T) {
	store, persist := newTestStore(t, newFakeCommerce())
	ctx := context.Background()

	require.NoError(t, store.AddToCart(ctx, "gid://v1", 1))

	snap := store.Snapshot()
	require.NotNil(t, snap.Cart)
	require.Equal(t, 1, snap.Cart.TotalQuantity)
	require.Len(t, snap.Cart.Lines, 1)
	require.True(t, snap.DrawerOpen)
	require.False(t, snap.Loading)

	persisted, err := persist.Get(ctx, kv.CartIDKey)
	require.NoError(t, err)
	require.Equal(t, snap.Cart.ID, persisted)
}

func TestAddToCartMergeIsBackendAuthoritative(t *testing.T) {
	store, _ := newTestStore(t, newFakeCommerce())
	ctx := context.Background()

	require.NoError(t, store.AddToCart(ctx, "gid://v1", 2))
	require.NoError(t, store.AddToCart(ctx, "gid://v1", 3))

	snap := store.Snapshot()
	require.Equal(t, 5, snap.Cart.TotalQuantity)
	require.Len(t, snap.Cart.Lines, 1, "backend merged identical merchandise into one line")
	require.Equal(t, 5, snap.Cart.Lines[0].Quantity)
}

func TestUpdateQuantityZeroRoutesToRemove(t *testing.T) {
	ctx := context.Background()

	seed := func(t *testing.T) *Store {
		store, _ := newTestStore(t, newFakeCommerce())
		require.NoError(t, store.AddToCart(ctx, "gid://v1", 2))
		require.NoError(t, store.AddToCart(ctx, "gid://v2", 1))
		return store
	}

	viaUpdate := seed(t)
	viaRemove := seed(t)
	lineID := viaUpdate.Snapshot().Cart.Lines[0].ID

	require.NoError(t, viaUpdate.UpdateQuantity(ctx, lineID, 0))
	require.NoError(t, viaRemove.RemoveFromCart(ctx, lineID))

	require.Equal(t, viaRemove.Snapshot().Cart, viaUpdate.Snapshot().Cart)
	require.Equal(t, 1, viaUpdate.Snapshot().Cart.TotalQuantity)
}

func TestRemoveLastLineStaysPopulated(t *testing.T) {
	store, _ := newTestStore(t, newFakeCommerce())
	ctx := context.Background()

	require.NoError(t, store.AddToCart(ctx, "gid://v1", 1))
	lineID := store.Snapshot().Cart.Lines[0].ID
	require.NoError(t, store.RemoveFromCart(ctx, lineID))

	snap := store.Snapshot()
	require.NotNil(t, snap.Cart, "empty cart keeps its identifier")
	require.Equal(t, 0, snap.Cart.TotalQuantity)
	require.Empty(t, snap.Cart.Lines)
}

func TestUserErrorLeavesSnapshotUntouched(t *testing.T) {
	created := &domain.Cart{ID: "gid://cart/1", TotalQuantity: 1, Lines: []domain.CartLine{{ID: "gid://line/1", Quantity: 1}}}
	backend := &stubBackend{
		create: func(commerce.CartLineInput) (*domain.Cart, error) {
			return created, nil
		},
		add: func(string, commerce.CartLineInput) (*domain.Cart, error) {
			return nil, &commerce.UserErrorList{Op: "cartLinesAdd", Errors: []commerce.UserError{{Message: "sold out"}}}
		},
	}
	store, _ := newTestStore(t, backend)
	ctx := context.Background()

	require.NoError(t, store.AddToCart(ctx, "gid://v1", 1))
	before := store.Snapshot()

	err := store.AddToCart(ctx, "gid://v2", 1)
	var userErrs *commerce.UserErrorList
	require.ErrorAs(t, err, &userErrs)
	require.Equal(t, "sold out", userErrs.Errors[0].Message)

	after := store.Snapshot()
	require.Same(t, before.Cart, after.Cart)
	require.False(t, after.Loading)
	require.True(t, after.DrawerOpen, "drawer state from the first add is untouched")
}

func TestTransportErrorLeavesSnapshotUntouched(t *testing.T) {
	created := &domain.Cart{ID: "gid://cart/1", TotalQuantity: 1, Lines: []domain.CartLine{{ID: "gid://line/1", Quantity: 1}}}
	backend := &stubBackend{
		create: func(commerce.CartLineInput) (*domain.Cart, error) {
			return created, nil
		},
		update: func(string, string, int) (*domain.Cart, error) {
			return nil, &commerce.TransportError{Status: 502, StatusText: "502 Bad Gateway"}
		},
	}
	store, _ := newTestStore(t, backend)
	ctx := context.Background()

	require.NoError(t, store.AddToCart(ctx, "gid://v1", 1))
	before := store.Snapshot()

	err := store.UpdateQuantity(ctx, "gid://line/1", 2)
	var transport *commerce.TransportError
	require.ErrorAs(t, err, &transport)

	after := store.Snapshot()
	require.Same(t, before.Cart, after.Cart)
	require.False(t, after.Loading)
}

func TestCreateUserErrorPersistsNothing(t *testing.T) {
	backend := &stubBackend{
		create: func(commerce.CartLineInput) (*domain.Cart, error) {
			return nil, &commerce.UserErrorList{Op: "cartCreate", Errors: []commerce.UserError{{Message: "invalid merchandise"}}}
		},
	}
	store, persist := newTestStore(t, backend)
	ctx := context.Background()

	err := store.AddToCart(ctx, "gid://bogus", 1)
	var userErrs *commerce.UserErrorList
	require.ErrorAs(t, err, &userErrs)

	snap := store.Snapshot()
	require.Nil(t, snap.Cart)
	require.False(t, snap.DrawerOpen)
	_, err = persist.Get(ctx, kv.CartIDKey)
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRehydratePopulates(t *testing.T) {
	fake := newFakeCommerce()
	fake.addLine(commerce.CartLineInput{MerchandiseID: "gid://v1", Quantity: 2})
	store, persist := newTestStore(t, fake)
	ctx := context.Background()

	require.NoError(t, persist.Set(ctx, kv.CartIDKey, fake.cartID))
	require.NoError(t, store.Rehydrate(ctx))

	snap := store.Snapshot()
	require.NotNil(t, snap.Cart)
	require.Equal(t, 2, snap.Cart.TotalQuantity)
	require.False(t, snap.DrawerOpen, "rehydrate never opens the drawer")
}

func TestRehydrateStaleIDClearsPersistence(t *testing.T) {
	store, persist := newTestStore(t, newFakeCommerce())
	ctx := context.Background()

	require.NoError(t, persist.Set(ctx, kv.CartIDKey, "gid://cart/expired"))
	require.NoError(t, store.Rehydrate(ctx))

	require.Nil(t, store.Snapshot().Cart)
	_, err := persist.Get(ctx, kv.CartIDKey)
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRehydrateWithoutPersistedIDIsNoOp(t *testing.T) {
	backend := &stubBackend{
		fetch: func(string) (*domain.Cart, error) {
			panic("fetch must not be called without a persisted id")
		},
	}
	store, _ := newTestStore(t, backend)

	require.NoError(t, store.Rehydrate(context.Background()))
	require.Nil(t, store.Snapshot().Cart)
}

func TestRehydrateTransportErrorKeepsPersistedID(t *testing.T) {
	backend := &stubBackend{
		fetch: func(string) (*domain.Cart, error) {
			return nil, &commerce.TransportError{Status: 500, StatusText: "500 Internal Server Error"}
		},
	}
	store, persist := newTestStore(t, backend)
	ctx := context.Background()

	require.NoError(t, persist.Set(ctx, kv.CartIDKey, "gid://cart/1"))
	err := store.Rehydrate(ctx)
	var transport *commerce.TransportError
	require.ErrorAs(t, err, &transport)

	persisted, getErr := persist.Get(ctx, kv.CartIDKey)
	require.NoError(t, getErr)
	require.Equal(t, "gid://cart/1", persisted, "the id stays so a later rehydrate can retry")
}

func TestOverlappingCreatesPersistLatestID(t *testing.T) {
	entered := make(chan int, 2)
	release := map[int]chan struct{}{
		1: make(chan struct{}),
		2: make(chan struct{}),
	}
	backend := &stubBackend{
		create: func(line commerce.CartLineInput) (*domain.Cart, error) {
			entered <- line.Quantity
			<-release[line.Quantity]
			return &domain.Cart{
				ID:            fmt.Sprintf("gid://cart/%d", line.Quantity),
				TotalQuantity: line.Quantity,
				Lines:         []domain.CartLine{{ID: "gid://line/1", Quantity: line.Quantity}},
			}, nil
		},
	}
	store, persist := newTestStore(t, backend)
	ctx := context.Background()

	// A double-clicked first add: both mutations observe the empty state and
	// issue a create.
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		_ = store.AddToCart(ctx, "gid://v1", 1)
	}()
	require.Equal(t, 1, <-entered, "create A issued first")

	go func() {
		defer wg.Done()
		_ = store.AddToCart(ctx, "gid://v1", 2)
	}()
	require.Equal(t, 2, <-entered, "create B issued second")

	// Resolve B before A: whichever order the responses land in, the
	// persisted id must match the snapshot the shopper ends up seeing.
	close(release[2])
	close(release[1])
	wg.Wait()

	snap := store.Snapshot()
	require.Equal(t, "gid://cart/2", snap.Cart.ID, "later-issued create wins")
	persisted, err := persist.Get(ctx, kv.CartIDKey)
	require.NoError(t, err)
	require.Equal(t, snap.Cart.ID, persisted, "persisted id never diverges from the snapshot")
}

func TestStaleRehydrateDoesNotClearFreshCartID(t *testing.T) {
	fetchEntered := make(chan struct{})
	fetchRelease := make(chan struct{})
	backend := &stubBackend{
		create: func(line commerce.CartLineInput) (*domain.Cart, error) {
			return &domain.Cart{
				ID:            "gid://cart/new",
				TotalQuantity: line.Quantity,
				Lines:         []domain.CartLine{{ID: "gid://line/1", Quantity: line.Quantity}},
			}, nil
		},
		fetch: func(string) (*domain.Cart, error) {
			close(fetchEntered)
			<-fetchRelease
			return nil, nil // expired upstream
		},
	}
	store, persist := newTestStore(t, backend)
	ctx := context.Background()
	require.NoError(t, persist.Set(ctx, kv.CartIDKey, "gid://cart/expired"))

	done := make(chan error, 1)
	go func() { done <- store.Rehydrate(ctx) }()
	<-fetchEntered

	// While the rehydrate fetch is in flight the shopper adds to cart,
	// creating and persisting a fresh cart.
	require.NoError(t, store.AddToCart(ctx, "gid://v1", 1))

	close(fetchRelease)
	require.NoError(t, <-done)

	persisted, err := persist.Get(ctx, kv.CartIDKey)
	require.NoError(t, err)
	require.Equal(t, "gid://cart/new", persisted, "the stale rehydrate must not delete the id the create just persisted")
	require.Equal(t, "gid://cart/new", store.Snapshot().Cart.ID)
}

func TestOutOfOrderResponseDiscarded(t *testing.T) {
	created := &domain.Cart{ID: "gid://cart/1", TotalQuantity: 1, Lines: []domain.CartLine{{ID: "gid://line/1", Quantity: 1}}}

	entered := make(chan int, 2)
	release := map[int]chan struct{}{
		2: make(chan struct{}),
		3: make(chan struct{}),
	}
	backend := &stubBackend{
		create: func(commerce.CartLineInput) (*domain.Cart, error) {
			return created, nil
		},
		update: func(_, lineID string, quantity int) (*domain.Cart, error) {
			entered <- quantity
			<-release[quantity]
			return &domain.Cart{
				ID:            "gid://cart/1",
				TotalQuantity: quantity,
				Lines:         []domain.CartLine{{ID: lineID, Quantity: quantity}},
			}, nil
		},
	}
	store, _ := newTestStore(t, backend)
	ctx := context.Background()
	require.NoError(t, store.AddToCart(ctx, "gid://v1", 1))

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		_ = store.UpdateQuantity(ctx, "gid://line/1", 2)
	}()
	require.Equal(t, 2, <-entered, "mutation A issued first")

	go func() {
		defer wg.Done()
		_ = store.UpdateQuantity(ctx, "gid://line/1", 3)
	}()
	require.Equal(t, 3, <-entered, "mutation B issued second")

	// Resolve B before A: A's response is the stale one and must be dropped.
	close(release[3])
	close(release[2])
	wg.Wait()

	snap := store.Snapshot()
	require.Equal(t, 3, snap.Cart.TotalQuantity, "later-issued mutation wins regardless of arrival order")
	require.False(t, snap.Loading)
}

func TestLoadingFlagBracketsMutation(t *testing.T) {
	entered := make(chan struct{})
	release := make(chan struct{})
	backend := &stubBackend{
		create: func(commerce.CartLineInput) (*domain.Cart, error) {
			close(entered)
			<-release
			return &domain.Cart{ID: "gid://cart/1", TotalQuantity: 1}, nil
		},
	}
	store, _ := newTestStore(t, backend)

	done := make(chan error, 1)
	go func() {
		done <- store.AddToCart(context.Background(), "gid://v1", 1)
	}()

	select {
	case <-entered:
	case <-time.After(time.Second):
		t.Fatal("backend never reached")
	}
	require.True(t, store.Snapshot().Loading)

	close(release)
	require.NoError(t, <-done)
	require.False(t, store.Snapshot().Loading)
}

func TestDrawerControls(t *testing.T) {
	store, _ := newTestStore(t, newFakeCommerce())

	require.False(t, store.Snapshot().DrawerOpen)
	store.OpenDrawer()
	require.True(t, store.Snapshot().DrawerOpen)
	store.ToggleDrawer()
	require.False(t, store.Snapshot().DrawerOpen)
	store.ToggleDrawer()
	store.CloseDrawer()
	require.False(t, store.Snapshot().DrawerOpen)
}

func TestSubscribeObservesChanges(t *testing.T) {
	store, _ := newTestStore(t, newFakeCommerce())

	var mu sync.Mutex
	var seen []Snapshot
	store.Subscribe(func(s Snapshot) {
		mu.Lock()
		seen = append(seen, s)
		mu.Unlock()
	})

	require.NoError(t, store.AddToCart(context.Background(), "gid://v1", 1))

	mu.Lock()
	defer mu.Unlock()
	require.NotEmpty(t, seen)
	require.True(t, seen[0].Loading, "first notification raises the loading flag")
	last := seen[len(seen)-1]
	require.False(t, last.Loading)
	require.NotNil(t, last.Cart)
}

func TestUpdateWithoutCartIsNoOp(t *testing.T) {
	backend := &stubBackend{
		update: func(string, string, int) (*domain.Cart, error) {
			panic("update must not be called without a cart")
		},
		remove: func(string, ...string) (*domain.Cart, error) {
			panic("remove must not be called without a cart")
		},
	}
	store, _ := newTestStore(t, backend)
	ctx := context.Background()

	require.NoError(t, store.UpdateQuantity(ctx, "gid://line/1", 2))
	require.NoError(t, store.RemoveFromCart(ctx, "gid://line/1"))
	require.Nil(t, store.Snapshot().Cart)
	require.False(t, store.Snapshot().Loading)
}

func TestFailedMutationDoesNotBlockFollowups(t *testing.T) {
	fake := newFakeCommerce()
	store, _ := newTestStore(t, fake)
	ctx := context.Background()

	require.NoError(t, store.AddToCart(ctx, "gid://v1", 1))
	err := store.UpdateQuantity(ctx, "gid://line/999", 2)
	require.Error(t, err)
	require.False(t, errors.Is(err, context.Canceled))

	// The store is usable immediately after a failure.
	require.NoError(t, store.AddToCart(ctx, "gid://v1", 1))
	require.Equal(t, 2, store.Snapshot().Cart.TotalQuantity)
}
