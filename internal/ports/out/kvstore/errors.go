package kvstore

import "errors"

var (
	// ErrUnavailable indicates the backing store could not be reached.
	ErrUnavailable = errors.New("kv store unavailable")

	// ErrQuotaExceeded indicates a write was rejected because the value is too large.
	ErrQuotaExceeded = errors.New("kv store quota exceeded")
)
