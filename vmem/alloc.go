package vmem

import (
	"fmt"
	"math"

	"github.com/rdmsr/tinyvmem/internal/segtag"
)

// Alloc allocates size resources using the default (unconstrained,
// instant-fit unless flags says otherwise) policy. It is equivalent to
// Xalloc(size, 0, 0, 0, 0, math.MaxUint64, flags) per §6.
func (a *Arena) Alloc(size uint64, flags Flag) (uint64, error) {
	return a.Xalloc(size, 0, 0, 0, 0, math.MaxUint64, flags)
}

// Xalloc allocates size resources at offset phase from an align boundary
// such that the result lies within [minaddr, maxaddr) (§4.C, §4.D).
// align == 0 means "use the arena's quantum". nocross must be 0 in this
// revision (§9); a nonzero value, or the NextFit flag, fails with
// ErrUnimplemented.
func (a *Arena) Xalloc(size, align, phase, nocross, minaddr, maxaddr uint64, flags Flag) (uint64, error) {
	if size == 0 {
		return 0, fmt.Errorf("%w: size must be nonzero", ErrInvalidArg)
	}
	if nocross != 0 {
		return 0, fmt.Errorf("%w: nocross != 0 is not implemented", ErrUnimplemented)
	}
	if flags.has(NextFit) {
		return 0, fmt.Errorf("%w: next-fit is not implemented", ErrUnimplemented)
	}
	if align == 0 {
		align = a.quantum
	}
	if phase >= align {
		return 0, fmt.Errorf("%w: phase must be less than align", ErrInvalidArg)
	}
	if maxaddr <= minaddr {
		return 0, fmt.Errorf("%w: maxaddr must be greater than minaddr", ErrInvalidArg)
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	// Pre-reserve up to two segment records before touching any index,
	// so a mid-operation failure can never leave the arena inconsistent
	// (§4.D "Pre-reservation").
	prefix, err := a.acquireSeg(flags)
	if err != nil {
		return 0, err
	}
	carved, err := a.acquireSeg(flags)
	if err != nil {
		a.pool.Release(prefix)
		return 0, err
	}

	for {
		seg, start, ok := a.findFit(size, align, phase, minaddr, maxaddr, flags)
		if ok {
			return a.carve(seg, start, size, prefix, carved), nil
		}

		if impErr := a.importSpan(size, flags); impErr != nil {
			a.pool.Release(prefix)
			a.pool.Release(carved)
			return 0, ErrNoMem
		}
		// Loop around: the import added a FREE segment the next
		// findFit pass will see.
	}
}

// carve implements the allocate path of §4.D against a FREE segment
// [seg.Base, seg.Base+seg.Size) known to contain [start, start+size).
// prefix and carved are segment records the caller pre-reserved; any
// left unused are returned to the pool here.
func (a *Arena) carve(seg *segtag.Segment, start, size uint64, prefix, carved *segtag.Segment) uint64 {
	a.freelistRemove(seg)

	if start > seg.Base {
		// Split off a FREE prefix [seg.Base, start).
		prefix.Kind = segtag.Free
		prefix.Imported = false
		prefix.Base = seg.Base
		prefix.Size = start - seg.Base
		a.insertBefore(seg, prefix)
		a.freelistPush(prefix)

		seg.Base = start
		seg.Size -= prefix.Size
	} else {
		a.pool.Release(prefix)
	}

	var allocated *segtag.Segment
	if seg.Size != size && seg.Size-size > a.quantum-1 {
		// Split off an ALLOCATED prefix [start, start+size); the slack
		// stays FREE as the remainder of seg.
		carved.Kind = segtag.Allocated
		carved.Imported = false
		carved.Base = seg.Base
		carved.Size = size
		a.insertBefore(seg, carved)
		a.hashInsert(carved)

		seg.Base += size
		seg.Size -= size
		a.freelistPush(seg)

		allocated = carved
	} else {
		// seg itself becomes the allocation; any slack up to quantum-1
		// is charged to the caller.
		seg.Kind = segtag.Allocated
		a.hashInsert(seg)
		a.pool.Release(carved)
		allocated = seg
	}

	a.inUse += allocated.Size
	a.free -= allocated.Size
	return allocated.Base
}
