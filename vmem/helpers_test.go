package vmem

import "github.com/rdmsr/tinyvmem/internal/segtag"

// newTestSegment builds a standalone FREE segment record for unit tests
// that exercise bucket/list mechanics directly, without going through a
// whole Arena.
func newTestSegment(base, size uint64) *segtag.Segment {
	return &segtag.Segment{Kind: segtag.Free, Base: base, Size: size}
}
