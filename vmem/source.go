package vmem

// ArenaAllocFunc and ArenaFreeFunc adapt an *Arena to the AllocFunc/
// FreeFunc shape so it can be used as another arena's import source
// (spec §8 scenario 5: "Child arena with source = parent, alloc_cb
// imports from parent"). Pass them to Create as allocFn/freeFn with
// source set to the parent:
//
//	child, _ := vmem.Create("child", 0, 0, quantum,
//	    vmem.ArenaAllocFunc, vmem.ArenaFreeFunc, parent, 0, flags)
func ArenaAllocFunc(source *Arena, size uint64, flags Flag) (uint64, bool) {
	addr, err := source.Alloc(size, flags)
	if err != nil {
		return 0, false
	}
	return addr, true
}

func ArenaFreeFunc(source *Arena, addr, size uint64) {
	// A free callback is invoked only with a span this package itself
	// handed out via ArenaAllocFunc, so a mismatch here is a bug in the
	// caller's bookkeeping, not a resource condition.
	if err := source.Free(addr, size); err != nil {
		panic("vmem: ArenaFreeFunc: " + err.Error())
	}
}
