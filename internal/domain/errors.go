package domain

import "errors"

var (
	// ErrNotFound indicates the requested entity was not found.
	ErrNotFound = errors.New("not found")

	// ErrCartUnavailable indicates cart operations are disabled, e.g. when
	// running on the embedded demo catalog with no commerce backend.
	ErrCartUnavailable = errors.New("cart unavailable")
)
