package conntable

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTryReserveDeniesOverlap(t *testing.T) {
	g := NewGate(NewTable())

	require.True(t, g.TryReserve("100", "200"))
	assert.False(t, g.TryReserve("200", "300"), "endpoint mid-handshake must deny")
	assert.False(t, g.TryReserve("300", "100"))
	assert.True(t, g.TryReserve("300", "400"), "disjoint pair must be granted")
}

func TestTryReserveDeniesSelfCall(t *testing.T) {
	g := NewGate(NewTable())
	assert.False(t, g.TryReserve("100", "100"))
}

func TestTryReserveDeniesActiveNumber(t *testing.T) {
	tab := NewTable()
	g := NewGate(tab)

	_, ok := tab.TryCommit("100", "200", 1000)
	require.True(t, ok)

	assert.False(t, g.TryReserve("100", "300"), "number on a call cannot be reserved")
	assert.False(t, g.TryReserve("300", "200"))
}

func TestReleaseIsIdempotent(t *testing.T) {
	g := NewGate(NewTable())

	require.True(t, g.TryReserve("100", "200"))
	g.Release("100", "200")
	g.Release("100", "200")

	assert.False(t, g.IsReserved("100"))
	assert.True(t, g.TryReserve("100", "200"), "released pair must be reservable again")
}

func TestSymmetricReservationSingleWinner(t *testing.T) {
	// A calls B while B calls A; the gate must grant exactly one.
	for i := 0; i < 50; i++ {
		g := NewGate(NewTable())

		var wg sync.WaitGroup
		results := make([]bool, 2)
		wg.Add(2)
		go func() {
			defer wg.Done()
			results[0] = g.TryReserve("100", "200")
		}()
		go func() {
			defer wg.Done()
			results[1] = g.TryReserve("200", "100")
		}()
		wg.Wait()

		wins := 0
		for _, r := range results {
			if r {
				wins++
			}
		}
		require.Equal(t, 1, wins, "iteration %d: exactly one direction must win", i)
	}
}
