package vmem

import (
	"fmt"

	"github.com/rdmsr/tinyvmem/internal/segtag"
)

// contains reports whether any existing segment overlaps [base, base+size).
func (a *Arena) contains(base, size uint64) bool {
	end := base + size
	for s := a.segHead; s != nil; s = s.Next {
		if base < s.End() && s.Base < end {
			return true
		}
	}
	return false
}

// Add adds the span [base, base+size) to the arena as a non-imported
// span (§4.F). It fails with ErrInvalidArg if the range overlaps an
// existing segment.
func (a *Arena) Add(base, size uint64, flags Flag) (uint64, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.add(base, size, flags)
}

// add is Add's unlocked implementation, also used by Create to lay down
// the initial span and by importSpan to record a freshly imported one.
func (a *Arena) add(base, size uint64, flags Flag) (uint64, error) {
	if size == 0 {
		return 0, fmt.Errorf("%w: span size must be nonzero", ErrInvalidArg)
	}
	if a.contains(base, size) {
		return 0, fmt.Errorf("%w: span [%#x, %#x) overlaps an existing segment", ErrInvalidArg, base, base+size)
	}
	return a.addInternal(base, size, false, flags)
}

func (a *Arena) addInternal(base, size uint64, imported bool, flags Flag) (uint64, error) {
	spanSeg, err := a.acquireSeg(flags)
	if err != nil {
		return 0, err
	}
	freeSeg, err := a.acquireSeg(flags)
	if err != nil {
		a.pool.Release(spanSeg)
		return 0, err
	}

	spanSeg.Kind = segtag.Span
	spanSeg.Imported = imported
	spanSeg.Base = base
	spanSeg.Size = size

	freeSeg.Kind = segtag.Free
	freeSeg.Base = base
	freeSeg.Size = size

	a.appendSpan(spanSeg)
	a.insertAfter(spanSeg, freeSeg)
	a.freelistPush(freeSeg)

	a.total += size
	a.free += size
	if imported {
		a.imported += size
	}

	return base, nil
}

// importSpan asks allocFn for a new span of size resources and records
// it as imported (§4.F). Only allocFn need be set - source is passed
// through to it but may be nil, exactly as the reference vmem_import()
// only guards on vmp->alloc being set and forwards vmp->source (however
// it is set) unconditionally. Any other failure propagates ErrNoMem.
func (a *Arena) importSpan(size uint64, flags Flag) error {
	if a.allocFn == nil {
		return ErrNoMem
	}

	base, ok := a.allocFn(a.source, size, flags)
	if !ok {
		return ErrNoMem
	}

	if _, err := a.addInternal(base, size, true, flags); err != nil {
		if a.freeFn != nil {
			a.freeFn(a.source, base, size)
		}
		return err
	}
	return nil
}

// acquireSeg draws one record from the shared pool, letting the pool
// refill first unless the caller's flags carry the Bootstrap bit.
func (a *Arena) acquireSeg(flags Flag) (*segtag.Segment, error) {
	s, err := a.pool.Acquire(flags.has(Bootstrap))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoMem, err)
	}
	return s, nil
}
