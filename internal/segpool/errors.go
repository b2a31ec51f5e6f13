package segpool

import "errors"

// ErrExhausted is returned by Acquire when the pool has no free records
// and (because the caller passed BOOTSTRAP, or Refill itself failed) no
// more can be brought in. Package vmem turns this into ErrNoMem at its
// public surface.
var ErrExhausted = errors.New("segpool: no free segment records")
