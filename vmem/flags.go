package vmem

// Flag is the bitmask callers pass to Create, Add, Alloc, Xalloc, and the
// import callbacks (spec §6). Bits not documented here are reserved.
type Flag uint32

const (
	// BestFit selects the best-fit policy (§4.C): walk every segment
	// large enough to satisfy the request and take the first fit in the
	// smallest non-empty bucket.
	BestFit Flag = 1 << 0

	// InstantFit selects the instant-fit policy, the default when no
	// policy bit is set: scan buckets from size's own bucket upward and
	// take the first segment that fits, in constant time absent an
	// address window.
	InstantFit Flag = 1 << 1

	// NextFit selects the next-fit policy. Recognized but unimplemented
	// in this revision (§9); Xalloc returns ErrUnimplemented.
	NextFit Flag = 1 << 2

	// MayWait tells the arena the caller is willing to block on an
	// import or a pool refill.
	MayWait Flag = 1 << 3

	// MustNotWait tells the arena the caller forbids blocking; an import
	// or refill that would otherwise wait instead fails with ErrNoMem.
	MustNotWait Flag = 1 << 4

	// Bootstrap suppresses segment-pool refill: an operation carrying it
	// draws only on the records already in the pool and fails with
	// ErrNoMem once they run out.
	Bootstrap Flag = 1 << 5
)

func (f Flag) has(bit Flag) bool { return f&bit != 0 }

// policy resolves the fit policy implied by f, defaulting to InstantFit
// when neither BestFit nor NextFit is set (§6).
func (f Flag) policy() Flag {
	switch {
	case f.has(BestFit):
		return BestFit
	case f.has(NextFit):
		return NextFit
	default:
		return InstantFit
	}
}
