package mem

import "errors"

var (
	// ErrBadSize indicates a non-positive allocation size.
	ErrBadSize = errors.New("mem: size must be positive")

	// ErrUnknownAddress indicates an address not managed by this arena.
	ErrUnknownAddress = errors.New("mem: address not managed by this arena")

	// ErrClosed indicates an operation on a closed arena.
	ErrClosed = errors.New("mem: arena is closed")

	// ErrNilOwner indicates a reclamation registration with a nil owner.
	ErrNilOwner = errors.New("mem: nil owner")
)
