package vmem

import "github.com/rdmsr/tinyvmem/internal/segpool"

// Bootstrap primes the process-wide segment pool from its static seed
// array (spec §4.A "Bootstrap"). It is idempotent and safe to call from
// multiple goroutines or multiple times; Create calls it implicitly via
// segpool.Default, so most callers never need to call it directly. It is
// exposed because §6 lists bootstrap() as part of the external surface.
func Bootstrap() {
	segpool.Bootstrap()
}
