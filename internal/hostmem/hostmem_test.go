package hostmem

import (
	"testing"

	"github.com/rdmsr/tinyvmem/vmem"
)

func TestAllocFreeRoundTrip(t *testing.T) {
	src := New()

	base, ok := src.Alloc(nil, 4096, vmem.InstantFit)
	if !ok {
		t.Fatalf("Alloc failed")
	}
	if base == 0 {
		t.Fatalf("Alloc returned a zero base")
	}

	src.Free(nil, base, 4096)
}

func TestAllocRoundsUpToPageSize(t *testing.T) {
	src := New()

	base, ok := src.Alloc(nil, 1, vmem.InstantFit)
	if !ok {
		t.Fatalf("Alloc failed")
	}
	defer src.Free(nil, base, 1)

	src.mu.Lock()
	length := src.spans[base]
	src.mu.Unlock()

	if length != PageSize {
		t.Fatalf("span length = %d, want a single page (%d)", length, PageSize)
	}
}

func TestFreeOfUnknownSpanPanics(t *testing.T) {
	src := New()
	defer func() {
		if recover() == nil {
			t.Fatalf("expected Free of an unknown span to panic")
		}
	}()
	src.Free(nil, 0xdeadbeef, 4096)
}
