// Command vmemctl is the CLI demo for the tinyvmem allocator: it creates
// a root arena backed by real mmap'd memory (internal/hostmem) and
// replays a YAML scenario of add/alloc/xalloc/free/dump steps against
// it. Per §1 this is scaffolding, not the core, kept deliberately small.
package main

import (
	"fmt"
	"math"
	"os"

	"github.com/google/uuid"
	"github.com/xyproto/env/v2"

	"github.com/rdmsr/tinyvmem/internal/hostmem"
	"github.com/rdmsr/tinyvmem/vmem"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "vmemctl:", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: vmemctl <scenario.yaml>")
	}
	sc, err := loadScenario(args[0])
	if err != nil {
		return err
	}

	name := sc.Name
	if name == "" {
		name = env.Str("VMEMCTL_NAME", "vmemctl-"+uuid.NewString())
	}
	quantum := sc.Quantum
	if quantum == 0 {
		quantum = uint64(env.Int("VMEMCTL_QUANTUM", 4096))
	}
	initialSize := sc.InitialSize
	if initialSize == 0 {
		initialSize = uint64(env.Int("VMEMCTL_INITIAL_SIZE", 1<<20))
	}

	src := hostmem.New()
	root, err := vmem.Create(name, 0, 0, quantum, src.Alloc, src.Free, nil, 0, vmem.InstantFit)
	if err != nil {
		return fmt.Errorf("creating root arena: %w", err)
	}
	// Seed the root with one real mmap'd span up front, rather than
	// relying solely on on-demand import, so a scenario with no
	// allocations at all still has something to dump.
	base, ok := src.Alloc(nil, initialSize, vmem.InstantFit)
	if !ok {
		return fmt.Errorf("mapping initial span: %w", vmem.ErrNoMem)
	}
	if _, err := root.Add(base, initialSize, vmem.InstantFit); err != nil {
		return fmt.Errorf("adding initial span: %w", err)
	}

	return replay(root, sc)
}

func replay(a *vmem.Arena, sc *Scenario) error {
	results := make(map[string]uint64)

	for i, step := range sc.Steps {
		flags := vmem.InstantFit
		if step.BestFit {
			flags = vmem.BestFit
		} else if step.NextFit {
			flags = vmem.NextFit
		}

		switch step.Op {
		case "add":
			if _, err := a.Add(step.Addr, step.Size, flags); err != nil {
				return fmt.Errorf("step %d (add): %w", i, err)
			}

		case "alloc":
			addr, err := a.Alloc(step.Size, flags)
			if err != nil {
				return fmt.Errorf("step %d (alloc): %w", i, err)
			}
			if step.Label != "" {
				results[step.Label] = addr
			}
			fmt.Printf("alloc(%d) -> %#x\n", step.Size, addr)

		case "xalloc":
			maxaddr := step.MaxAddr
			if maxaddr == 0 {
				maxaddr = math.MaxUint64
			}
			addr, err := a.Xalloc(step.Size, step.Align, step.Phase, 0, step.MinAddr, maxaddr, flags)
			if err != nil {
				return fmt.Errorf("step %d (xalloc): %w", i, err)
			}
			if step.Label != "" {
				results[step.Label] = addr
			}
			fmt.Printf("xalloc(%d) -> %#x\n", step.Size, addr)

		case "free":
			addr := step.Addr
			if step.AddrOf != "" {
				resolved, ok := results[step.AddrOf]
				if !ok {
					return fmt.Errorf("step %d (free): unknown label %q", i, step.AddrOf)
				}
				addr = resolved
			}
			if err := a.Free(addr, step.Size); err != nil {
				return fmt.Errorf("step %d (free): %w", i, err)
			}

		case "dump":
			if err := a.Dump(os.Stdout); err != nil {
				return fmt.Errorf("step %d (dump): %w", i, err)
			}

		default:
			return fmt.Errorf("step %d: unknown op %q", i, step.Op)
		}
	}

	return nil
}
