package vmem

import "github.com/rdmsr/tinyvmem/internal/segtag"

// alignUp rounds addr up to the nearest multiple of align, which must be
// a power of two (true of every quantum and every alignment this package
// accepts - quanta and alignments are always powers of two in practice,
// matching the original vmem.c's VMEM_ALIGNUP bit trick).
func alignUp(addr, align uint64) uint64 {
	return (addr + align - 1) &^ (align - 1)
}

// segFit is the per-segment fit test of §4.C: given a candidate FREE
// segment, compute the address within it (if any) that satisfies size,
// align, phase, and the [minaddr, maxaddr) window.
func segFit(seg *segtag.Segment, size, align, phase, minaddr, maxaddr uint64) (start uint64, ok bool) {
	lo := seg.Base
	if minaddr > lo {
		lo = minaddr
	}
	hi := seg.End()
	if maxaddr < hi {
		hi = maxaddr
	}
	if lo > hi {
		return 0, false
	}

	// Round lo up to the next address congruent to phase (mod align).
	lo = alignUp(lo-phase, align) + phase
	if lo < seg.Base {
		lo += align
	}

	if lo <= hi && hi-lo >= size {
		return lo, true
	}
	return 0, false
}

// findFit searches the arena's freelists for a FREE segment that can
// satisfy size under the given constraints, per the requested policy. It
// does not import; when this returns false, Xalloc imports a span via
// importSpan and searches again.
func (a *Arena) findFit(size, align, phase, minaddr, maxaddr uint64, flags Flag) (seg *segtag.Segment, start uint64, ok bool) {
	switch flags.policy() {
	case BestFit:
		return a.findFitBest(size, align, phase, minaddr, maxaddr)
	case NextFit:
		// §4.C / §9: mentioned by the paper, not implemented here.
		return nil, 0, false
	default:
		return a.findFitInstant(size, align, phase, minaddr, maxaddr)
	}
}

// findFitInstant scans buckets from ⌊log2 size⌋ upward and takes the
// first segment in the first non-empty bucket that fits. Any segment in
// a strictly larger bucket is guaranteed big enough; only the starting
// bucket may contain segments too small once alignment/phase/window
// constraints are applied, so this is constant time absent an address
// window (§4.C).
func (a *Arena) findFitInstant(size, align, phase, minaddr, maxaddr uint64) (*segtag.Segment, uint64, bool) {
	for i := bucketIndex(size); i < FreelistsN; i++ {
		seg := a.freelists[i].head
		if seg == nil {
			continue
		}
		if start, ok := segFit(seg, size, align, phase, minaddr, maxaddr); ok {
			return seg, start, true
		}
	}
	return nil, 0, false
}

// findFitBest walks every segment in every bucket from ⌊log2 size⌋
// upward, accepting only segments large enough, and takes the first fit
// found in the smallest non-empty qualifying bucket - "best fit in
// expectation" per §4.C, not an exhaustive true best fit.
func (a *Arena) findFitBest(size, align, phase, minaddr, maxaddr uint64) (*segtag.Segment, uint64, bool) {
	for i := bucketIndex(size); i < FreelistsN; i++ {
		for seg := a.freelists[i].head; seg != nil; seg = seg.BktNext {
			if seg.Size < size {
				continue
			}
			if start, ok := segFit(seg, size, align, phase, minaddr, maxaddr); ok {
				return seg, start, true
			}
		}
	}
	return nil, 0, false
}
