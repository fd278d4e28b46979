package secmem

import "errors"

var (
	// ErrInvalidSize is returned by Rent for non-positive sizes.
	ErrInvalidSize = errors.New("secmem: rent size must be positive")

	// ErrPoolClosed is returned by Rent after the pool has been torn down.
	ErrPoolClosed = errors.New("secmem: pool is closed")
)

// IsInvalidSize reports whether err is (or wraps) ErrInvalidSize.
func IsInvalidSize(err error) bool { return errors.Is(err, ErrInvalidSize) }

// IsPoolClosed reports whether err is (or wraps) ErrPoolClosed.
func IsPoolClosed(err error) bool { return errors.Is(err, ErrPoolClosed) }
