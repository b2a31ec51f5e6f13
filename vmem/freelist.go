package vmem

import (
	"math/bits"

	"github.com/rdmsr/tinyvmem/internal/segtag"
)

// bucketIndex returns ⌊log2(size)⌋ (spec §3.2 invariant 3, §4.B): the
// freelist bucket a FREE segment of the given size belongs to. size must
// be > 0.
func bucketIndex(size uint64) int {
	return bits.Len64(size) - 1
}

func (a *Arena) freelistPush(s *segtag.Segment) {
	a.freelists[bucketIndex(s.Size)].push(s)
}

func (a *Arena) freelistRemove(s *segtag.Segment) {
	a.freelists[bucketIndex(s.Size)].remove(s)
}

// murmurFinalizer is the 64-bit mixer spec §4.B calls out as sufficient
// ("MurmurHash3 finalizer is sufficient"), lifted verbatim from the
// original vmem.c's murmur64(): only equality of the hashed base is ever
// relied on, never ordering, so any good mixer works.
func murmurFinalizer(h uint64) uint64 {
	h ^= h >> 33
	h *= 0xff51afd7ed558ccd
	h ^= h >> 33
	h *= 0xc4ceb9fe1a85ec53
	h ^= h >> 33
	return h
}

func hashIndex(base uint64) int {
	return int(murmurFinalizer(base) % HashBucketsN)
}

func (a *Arena) hashInsert(s *segtag.Segment) {
	a.hash[hashIndex(s.Base)].push(s)
}

func (a *Arena) hashRemove(s *segtag.Segment) {
	a.hash[hashIndex(s.Base)].remove(s)
}

// hashFind walks the bucket for addr looking for the allocated segment
// whose base matches exactly.
func (a *Arena) hashFind(addr uint64) *segtag.Segment {
	for s := a.hash[hashIndex(addr)].head; s != nil; s = s.BktNext {
		if s.Base == addr {
			return s
		}
	}
	return nil
}
