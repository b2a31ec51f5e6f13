package vmem

import (
	"testing"

	"github.com/rdmsr/tinyvmem/internal/segtag"
)

func TestAlignUp(t *testing.T) {
	tests := []struct{ addr, align, want uint64 }{
		{0, 8, 0},
		{1, 8, 8},
		{8, 8, 8},
		{9, 8, 16},
		{0x1000, 0x1000, 0x1000},
		{0x1001, 0x1000, 0x2000},
	}
	for _, tt := range tests {
		if got := alignUp(tt.addr, tt.align); got != tt.want {
			t.Errorf("alignUp(%#x,%#x) = %#x, want %#x", tt.addr, tt.align, got, tt.want)
		}
	}
}

func TestSegFit(t *testing.T) {
	seg := &segtag.Segment{Kind: segtag.Free, Base: 0x1000, Size: 0x1000} // [0x1000, 0x2000)

	tests := []struct {
		name                          string
		size, align, phase           uint64
		minaddr, maxaddr              uint64
		wantStart                     uint64
		wantOK                        bool
	}{
		{"fits exactly", 0x1000, 1, 0, 0, 1 << 63, 0x1000, true},
		{"too big", 0x1001, 1, 0, 0, 1 << 63, 0, false},
		{"aligned subset", 0x100, 0x100, 0, 0, 1 << 63, 0x1000, true},
		{"phase shifts start", 0x100, 0x100, 0x10, 0, 1 << 63, 0x1010, true},
		{"minaddr excludes prefix", 0x100, 1, 0, 0x1800, 1 << 63, 0x1800, true},
		{"minaddr beyond segment", 0x100, 1, 0, 0x2000, 1 << 63, 0, false},
		{"maxaddr truncates window", 0x100, 1, 0, 0, 0x1080, 0, false},
		{"maxaddr just enough", 0x80, 1, 0, 0, 0x1080, 0x1000, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, ok := segFit(seg, tt.size, tt.align, tt.phase, tt.minaddr, tt.maxaddr)
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			if ok && start != tt.wantStart {
				t.Fatalf("start = %#x, want %#x", start, tt.wantStart)
			}
		})
	}
}

func TestFindFitInstantPicksFirstFittingBucket(t *testing.T) {
	var a Arena
	small := newTestSegment(0x1000, 0x10)
	big := newTestSegment(0x2000, 0x1000)
	a.freelistPush(small)
	a.freelistPush(big)

	seg, start, ok := a.findFitInstant(0x800, 1, 0, 0, 1<<63)
	if !ok {
		t.Fatalf("expected a fit")
	}
	if seg != big || start != 0x2000 {
		t.Fatalf("got seg base %#x start %#x, want base %#x start %#x", seg.Base, start, big.Base, uint64(0x2000))
	}
}

func TestFindFitBestSkipsTooSmallInSameBucket(t *testing.T) {
	var a Arena
	tooSmall := newTestSegment(0x1000, 0x180)
	justRight := newTestSegment(0x3000, 0x1f0)
	// Push justRight first so tooSmall sits at the head of the shared
	// bucket and has to be skipped.
	a.freelistPush(justRight)
	a.freelistPush(tooSmall)

	seg, _, ok := a.findFitBest(0x1f0, 1, 0, 0, 1<<63)
	if !ok {
		t.Fatalf("expected a fit")
	}
	if seg != justRight {
		t.Fatalf("got seg base %#x, want %#x", seg.Base, justRight.Base)
	}
}
