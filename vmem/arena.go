// Package vmem implements a general-purpose resource allocator: a vmem
// arena in the sense of Bonwick & Adams' "Magazines and Vmem" paper. An
// arena manages arbitrary integer-identified resources - addresses,
// process IDs, block numbers, whatever the caller's Base/Size pairs mean
// - using boundary-tag segments, power-of-two freelists, and a
// hash-indexed table of allocated segments. Arenas may import spans from
// a parent arena on demand and hand them back once fully drained.
package vmem

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/rdmsr/tinyvmem/internal/segpool"
	"github.com/rdmsr/tinyvmem/internal/segtag"
)

// FreelistsN is the number of power-of-two freelist buckets: one per bit
// of a 64-bit address, per §9 ("this spec fixes it at the address
// bit-width... both are equivalent on 64-bit hosts").
const FreelistsN = 64

// HashBucketsN is the number of buckets in the allocated-segment hash
// table (§3.1: "fixed-size hash table (e.g. 16 buckets)").
const HashBucketsN = 16

// AllocFunc imports size resources from source, returning the base of
// the new span. ok is false on failure (NO_MEM at the source).
type AllocFunc func(source *Arena, size uint64, flags Flag) (base uint64, ok bool)

// FreeFunc returns a span previously handed out by an AllocFunc back to
// source. The arena guarantees addr/size exactly match a prior AllocFunc
// result.
type FreeFunc func(source *Arena, addr, size uint64)

// bucket is one doubly-linked chain of segments threaded through
// Segment.BktNext/BktPrev - a freelist bucket if owned by
// Arena.freelists, or a hash bucket if owned by Arena.hash. Exactly one
// bucket ever holds a given FREE or ALLOCATED segment (spec invariants
// 3 and 4).
type bucket struct {
	head *segtag.Segment
}

func (b *bucket) push(s *segtag.Segment) {
	s.BktPrev = nil
	s.BktNext = b.head
	if b.head != nil {
		b.head.BktPrev = s
	}
	b.head = s
}

func (b *bucket) remove(s *segtag.Segment) {
	if s.BktPrev != nil {
		s.BktPrev.BktNext = s.BktNext
	} else {
		b.head = s.BktNext
	}
	if s.BktNext != nil {
		s.BktNext.BktPrev = s.BktPrev
	}
	s.BktNext, s.BktPrev = nil, nil
}

// Arena owns a namespace of resources: its own freelists, hash table,
// and optionally a source arena it imports spans from.
type Arena struct {
	mu sync.Mutex

	name    string
	quantum uint64

	allocFn   AllocFunc
	freeFn    FreeFunc
	source    *Arena
	qcacheMax uint64

	pool *segpool.Pool
	log  Logger

	segHead, segTail *segtag.Segment // ordered-by-base segment list

	freelists [FreelistsN]bucket
	hash      [HashBucketsN]bucket

	inUse, free, total, imported uint64
}

// Name returns the arena's descriptive name, generated from a random
// UUID at Create time if the caller did not supply one - every arena
// this package creates has a stable identity to log and dump under, even
// the transient children a caller spins up purely to probe an address
// range.
func (a *Arena) Name() string { return a.name }

// Quantum returns the arena's unit of currency.
func (a *Arena) Quantum() uint64 { return a.quantum }

// Stats are the four running counters of spec §3.1/§3.2.
type Stats struct {
	InUse, Free, Total, Imported uint64
}

// Stats reports the arena's current counters.
func (a *Arena) Stats() Stats {
	a.mu.Lock()
	defer a.mu.Unlock()
	return Stats{InUse: a.inUse, Free: a.free, Total: a.total, Imported: a.imported}
}

// Create initializes a new arena. If source is non-nil, the arena has no
// initial span of its own and instead imports spans from source on
// demand via allocFn/freeFn; base/size are ignored in that case, exactly
// as §4.F specifies ("If source == null and size > 0, add an initial
// span"). If name is empty, a random identity is generated so the arena
// always has something to dump and log under.
func Create(name string, base, size, quantum uint64, allocFn AllocFunc, freeFn FreeFunc, source *Arena, qcacheMax uint64, flags Flag) (*Arena, error) {
	if quantum == 0 {
		return nil, fmt.Errorf("%w: quantum must be nonzero", ErrInvalidArg)
	}
	if name == "" {
		name = "vmem-" + uuid.NewString()
	}

	a := &Arena{
		name:      name,
		quantum:   quantum,
		allocFn:   allocFn,
		freeFn:    freeFn,
		source:    source,
		qcacheMax: qcacheMax,
		pool:      segpool.Default(),
		log:       defaultLogger,
	}

	if source == nil && size > 0 {
		if _, err := a.add(base, size, flags); err != nil {
			return nil, err
		}
	}

	return a, nil
}

// SetLogger overrides the logger stored on the arena. Dump writes to the
// io.Writer it is given, not to this logger, and no other path in the
// package writes to it either.
func (a *Arena) SetLogger(l Logger) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if l != nil {
		a.log = l
	}
}

// Destroy releases every segment record the arena owns back to the
// shared pool. It is only valid to call once no ALLOCATED segments
// remain; like the reference implementation's assertion on empty hash
// buckets, this is a contract violation (not a resource error) and
// panics rather than returning ErrNoMem-shaped noise.
func (a *Arena) Destroy() {
	a.mu.Lock()
	defer a.mu.Unlock()

	for _, h := range a.hash {
		if h.head != nil {
			panic("vmem: Destroy called with allocated segments still outstanding")
		}
	}

	for s := a.segHead; s != nil; {
		next := s.Next
		a.pool.Release(s)
		s = next
	}
	a.segHead, a.segTail = nil, nil
	a.freelists = [FreelistsN]bucket{}
	a.hash = [HashBucketsN]bucket{}
}

// --- ordered segment list -------------------------------------------------

// insertAfter links seg immediately after prev in the ordered-by-base
// list (prev == nil means seg becomes the new head).
func (a *Arena) insertAfter(prev, seg *segtag.Segment) {
	if prev == nil {
		seg.Prev = nil
		seg.Next = a.segHead
		if a.segHead != nil {
			a.segHead.Prev = seg
		}
		a.segHead = seg
		if a.segTail == nil {
			a.segTail = seg
		}
		return
	}

	seg.Prev = prev
	seg.Next = prev.Next
	if prev.Next != nil {
		prev.Next.Prev = seg
	} else {
		a.segTail = seg
	}
	prev.Next = seg
}

// insertBefore links seg immediately before next (which must currently
// be in the list).
func (a *Arena) insertBefore(next, seg *segtag.Segment) {
	a.insertAfter(next.Prev, seg)
}

// unlink removes seg from the ordered list only; it does not touch
// whichever bucket seg may also be threaded on.
func (a *Arena) unlink(seg *segtag.Segment) {
	if seg.Prev != nil {
		seg.Prev.Next = seg.Next
	} else {
		a.segHead = seg.Next
	}
	if seg.Next != nil {
		seg.Next.Prev = seg.Prev
	} else {
		a.segTail = seg.Prev
	}
	seg.Next, seg.Prev = nil, nil
}

// appendSpan links a new span marker into the ordered list after the
// last segment whose base is below the span's, keeping the list sorted
// by base even when spans arrive out of address order.
func (a *Arena) appendSpan(seg *segtag.Segment) {
	prev := a.segTail
	for prev != nil && prev.Base >= seg.Base {
		prev = prev.Prev
	}
	a.insertAfter(prev, seg)
}
