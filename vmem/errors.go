package vmem

import "errors"

// The three error categories of §7. NoMem is the only one returned from
// the resource-exhaustion path at the public surface; InvalidArg and
// Unimplemented signal a caller contract violation and are likewise
// returned rather than panicking, since a hosted library cannot assume
// its caller wants a crash on a bad argument the way a kernel build's
// debug ASSERT does.
var (
	// ErrNoMem means the arena could not satisfy a request: every
	// freelist search failed, and either there is no import source or
	// the import itself failed.
	ErrNoMem = errors.New("vmem: out of resources")

	// ErrInvalidArg means the caller violated a documented precondition:
	// zero size, phase >= align, maxaddr <= minaddr, or a free() whose
	// size does not match the allocation it targets.
	ErrInvalidArg = errors.New("vmem: invalid argument")

	// ErrUnimplemented means the caller asked for nocross != 0 or
	// NextFit, neither of which this revision implements (§9).
	ErrUnimplemented = errors.New("vmem: unimplemented")
)
