// Diagnostics (spec §4.G). Advisory only: Dump never mutates the arena
// and never participates in any invariant, matching the original
// vmem_dump()'s read-only walk of segqueue/hashtable/stat.
package vmem

import (
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

const defaultDumpWidth = 100

// Dump writes a human-readable listing of the arena's segments, its
// hash-bucket occupancy, and its four counters to w. Segment lines longer
// than the output width are truncated and end in an ellipsis; the width
// is the terminal's when w is a terminal, and a fixed 100 columns
// otherwise - dump is advisory scaffolding (§1), so this is the one place
// in the package a TTY dependency belongs.
func (a *Arena) Dump(w io.Writer) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	width := defaultDumpWidth
	if f, ok := w.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		if cols, _, err := term.GetSize(int(f.Fd())); err == nil && cols > 20 {
			width = cols
		}
	}

	if _, err := fmt.Fprintf(w, "-- vmem arena %q segments --\n", a.name); err != nil {
		return err
	}

	for s := a.segHead; s != nil; s = s.Next {
		line := fmt.Sprintf("[%#x, %#x) (%s)", s.Base, s.End(), s.Kind)
		if s.Imported {
			line += " (imported)"
		}
		if len(line) > width {
			line = line[:width-1] + "…"
		}
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}

	if _, err := fmt.Fprintln(w, "hash table:"); err != nil {
		return err
	}
	for i, b := range a.hash {
		if b.head == nil {
			continue
		}
		var entries []string
		for s := b.head; s != nil; s = s.BktNext {
			entries = append(entries, fmt.Sprintf("[%#x, %#x)", s.Base, s.End()))
		}
		if _, err := fmt.Fprintf(w, "  bucket %d: %s\n", i, strings.Join(entries, ", ")); err != nil {
			return err
		}
	}

	_, err := fmt.Fprintf(w, "stats: in_use=%d free=%d total=%d import=%d\n", a.inUse, a.free, a.total, a.imported)
	return err
}
