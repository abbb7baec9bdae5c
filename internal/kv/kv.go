// Package kv is the durable key-value boundary the cart store persists its
// identifier through. A Store is scoped to one shopper session; the single
// key in use is CartIDKey.
package kv

import "context"

// CartIDKey is the key under which a session's cart identifier is kept. A
// stored value implies a prior successful cart creation; the value itself is
// always backend-assigned, never generated locally.
const CartIDKey = "cart_id"

// Store is a session-scoped key-value store. Get returns domain.ErrNotFound
// for a missing key. Delete of a missing key is not an error.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}
