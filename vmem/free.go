package vmem

import (
	"fmt"

	"github.com/rdmsr/tinyvmem/internal/segtag"
)

// Free returns size resources at addr to the arena. It is equivalent to
// Xfree (§6); size must exactly match what was allocated, since the
// arena has no other record of an allocation's length (§4.E).
func (a *Arena) Free(addr, size uint64) error {
	return a.Xfree(addr, size)
}

// Xfree implements the free path of §4.E: look the allocation up by
// address, coalesce with free neighbors, and - if the coalesced result
// exactly fills an imported span - hand that span back to the source.
func (a *Arena) Xfree(addr, size uint64) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	seg := a.hashFind(addr)
	if seg == nil {
		return fmt.Errorf("%w: no allocated segment at base %#x", ErrInvalidArg, addr)
	}
	if seg.Size != size {
		return fmt.Errorf("%w: freeing %#x with size %d, but allocation size was %d", ErrInvalidArg, addr, size, seg.Size)
	}

	a.hashRemove(seg)

	// Coalesce right.
	if next := seg.Next; next != nil && next.Kind == segtag.Free {
		a.freelistRemove(next)
		a.unlink(next)
		seg.Size += next.Size
		a.pool.Release(next)
	}

	// Coalesce left.
	if prev := seg.Prev; prev != nil && prev.Kind == segtag.Free {
		a.freelistRemove(prev)
		a.unlink(prev)
		seg.Size += prev.Size
		seg.Base = prev.Base
		a.pool.Release(prev)
	}

	seg.Kind = segtag.Free

	// Span release test (§4.E step 6, §9: a segment with no predecessor
	// is treated as "not a span" rather than dereferenced).
	if prev := seg.Prev; prev != nil && prev.Kind == segtag.Span && prev.Imported && prev.Size == seg.Size {
		spanSize := seg.Size
		spanBase := prev.Base

		a.unlink(seg)
		a.pool.Release(seg)
		a.unlink(prev)
		a.pool.Release(prev)

		// §3.2 invariant 5: total and import count only spans currently
		// present, so releasing one shrinks both. The portion of the
		// span that was already free before this call (spanSize-size)
		// leaves with it; only the newly-freed `size` ever became
		// in_use in the first place.
		a.inUse -= size
		a.free -= spanSize - size
		a.total -= spanSize
		a.imported -= spanSize

		if a.freeFn != nil {
			a.freeFn(a.source, spanBase, spanSize)
		}
		return nil
	}

	a.freelistPush(seg)
	a.inUse -= size
	a.free += size
	return nil
}
