package vmem

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// Scenario 5 (§8): a child arena with source = parent imports spans from
// the parent on demand via ArenaAllocFunc/ArenaFreeFunc, and hands a span
// back to the parent once it is fully freed.
func TestChildArenaImportsFromParentAndReleases(t *testing.T) {
	parent := newTestArena(t, 1<<20)

	child, err := Create("child", 0, 0, 16, ArenaAllocFunc, ArenaFreeFunc, parent, 0, InstantFit)
	require.NoError(t, err)

	parentStatsBefore := parent.Stats()
	require.Zero(t, parentStatsBefore.InUse)

	addr, err := child.Alloc(4096, InstantFit)
	require.NoError(t, err)

	childStats := child.Stats()
	require.EqualValues(t, 4096, childStats.Imported)
	require.EqualValues(t, 4096, childStats.Total)
	require.EqualValues(t, 4096, childStats.InUse)

	parentStats := parent.Stats()
	require.EqualValues(t, 4096, parentStats.InUse)

	require.NoError(t, child.Free(addr, 4096))

	childStats = child.Stats()
	require.Zero(t, childStats.InUse)
	require.Zero(t, childStats.Free)
	require.Zero(t, childStats.Total)
	require.Zero(t, childStats.Imported)

	// The span must have been handed back to the parent: the parent's
	// in_use drops back to zero rather than sitting free.
	parentStats = parent.Stats()
	require.Zero(t, parentStats.InUse)
}

func TestChildArenaImportsMultipleSpansAsNeeded(t *testing.T) {
	parent := newTestArena(t, 1<<20)
	child, err := Create("child", 0, 0, 16, ArenaAllocFunc, ArenaFreeFunc, parent, 0, InstantFit)
	require.NoError(t, err)

	a1, err := child.Alloc(4096, InstantFit)
	require.NoError(t, err)
	a2, err := child.Alloc(4096, InstantFit)
	require.NoError(t, err)

	require.NotEqual(t, a1, a2)
	require.EqualValues(t, 8192, child.Stats().Imported)

	require.NoError(t, child.Free(a1, 4096))
	require.NoError(t, child.Free(a2, 4096))
	require.Zero(t, child.Stats().Imported)
}

func TestArenaWithNoAllocFnFailsClosed(t *testing.T) {
	a, err := Create("leaf", 0, 0, 16, nil, nil, nil, 0, InstantFit)
	require.NoError(t, err)

	_, err = a.Alloc(16, InstantFit)
	require.ErrorIs(t, err, ErrNoMem)
}
