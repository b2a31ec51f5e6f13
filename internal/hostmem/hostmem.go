// Package hostmem is the concrete "hosted systems: the host heap"
// backing store §4.A and §4.F describe in the abstract. It supplies a
// vmem.AllocFunc/vmem.FreeFunc pair that imports spans by mmap-ing
// anonymous, zero-filled pages and releases them with munmap, so a root
// arena sourced from hostmem actually imports real OS memory instead of
// a test double standing in for one.
package hostmem

import (
	"fmt"
	"sync"
	"unsafe"

	"github.com/rdmsr/tinyvmem/vmem"
	"golang.org/x/sys/unix"
)

// PageSize is the host's page granularity; every import is rounded up to
// a whole number of pages, mirroring a freestanding kernel build's
// page-granularity allocator (spec §4.A) even though this backing store
// runs hosted.
var PageSize = uint64(unix.Getpagesize())

// Source mmaps anonymous memory on demand and tracks the live mappings
// so Free can munmap the exact region it handed out.
type Source struct {
	mu    sync.Mutex
	spans map[uint64]uint64 // base -> length, as actually mmapped
}

// New returns a ready-to-use Source.
func New() *Source {
	return &Source{spans: make(map[uint64]uint64)}
}

func roundUpPages(size uint64) uint64 {
	if PageSize == 0 {
		return size
	}
	return (size + PageSize - 1) &^ (PageSize - 1)
}

// Alloc satisfies vmem.AllocFunc: it mmaps size bytes (rounded up to a
// whole number of pages) of anonymous, zeroed memory and returns its
// base address. source and flags are accepted for interface
// compatibility; this backing store never blocks, so MayWait and
// MustNotWait make no observable difference here.
func (s *Source) Alloc(source *vmem.Arena, size uint64, flags vmem.Flag) (base uint64, ok bool) {
	length := roundUpPages(size)
	if length == 0 {
		return 0, false
	}

	b, err := unix.Mmap(-1, 0, int(length), unix.PROT_READ|unix.PROT_WRITE, unix.MAP_PRIVATE|unix.MAP_ANON)
	if err != nil {
		return 0, false
	}

	addr := uint64(uintptr(unsafe.Pointer(&b[0])))
	s.mu.Lock()
	s.spans[addr] = length
	s.mu.Unlock()
	return addr, true
}

// Free satisfies vmem.FreeFunc: it munmaps the region previously
// returned by Alloc. addr/size are exactly what Alloc returned/was asked
// for, per the arena's contract with its import callbacks.
func (s *Source) Free(source *vmem.Arena, addr, size uint64) {
	s.mu.Lock()
	length, ok := s.spans[addr]
	if ok {
		delete(s.spans, addr)
	}
	s.mu.Unlock()
	if !ok {
		// Nothing we recognize; a caller violating the AllocFunc/FreeFunc
		// contract is a programming error, not a resource condition.
		panic(fmt.Sprintf("hostmem: Free called on unknown span base %#x", addr))
	}

	b := unsafe.Slice((*byte)(unsafe.Pointer(uintptr(addr))), length)
	if err := unix.Munmap(b); err != nil {
		panic(fmt.Sprintf("hostmem: munmap %#x/%d: %v", addr, length, err))
	}
}
