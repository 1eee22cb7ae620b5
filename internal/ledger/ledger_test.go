package ledger

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenAndBalance(t *testing.T) {
	l := New()

	_, ok := l.Balance("555-0001")
	assert.False(t, ok, "unknown number should have no balance")

	l.Open("555-0001")
	balance, ok := l.Balance("555-0001")
	require.True(t, ok)
	assert.Equal(t, int64(0), balance, "fresh account should start at zero")

	// Open is idempotent and must not reset an existing balance.
	l.Add("555-0001", 1000)
	l.Open("555-0001")
	balance, _ = l.Balance("555-0001")
	assert.Equal(t, int64(1000), balance)
}

func TestAddUnknownNumber(t *testing.T) {
	l := New()
	_, ok := l.Add("555-0404", 500)
	assert.False(t, ok, "add on an unknown number must apply nothing")
}

func TestConcurrentAddsLoseNoUpdates(t *testing.T) {
	const (
		goroutines = 50
		addsEach   = 20
		amount     = int64(7)
	)

	l := New()
	l.Open("555-0001")

	var wg sync.WaitGroup
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < addsEach; j++ {
				l.Add("555-0001", amount)
			}
		}()
	}
	wg.Wait()

	balance, _ := l.Balance("555-0001")
	assert.Equal(t, int64(goroutines*addsEach)*amount, balance)
}

func TestDebitFloorsAtZero(t *testing.T) {
	l := New()
	l.Open("555-0001")
	l.Add("555-0001", 300)

	charged := l.Debit("555-0001", 1000)
	assert.Equal(t, int64(300), charged, "debit must charge at most the balance")

	balance, _ := l.Balance("555-0001")
	assert.Equal(t, int64(0), balance)

	charged = l.Debit("555-0001", 50)
	assert.Equal(t, int64(0), charged, "debit on an empty account charges nothing")
}

func TestDebitChargesExactlyOnceUnderRace(t *testing.T) {
	l := New()
	l.Open("555-0001")
	l.Add("555-0001", 1000)

	var wg sync.WaitGroup
	charges := make([]int64, 10)
	for i := range charges {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			charges[i] = l.Debit("555-0001", 200)
		}()
	}
	wg.Wait()

	var total int64
	for _, c := range charges {
		total += c
	}
	balance, _ := l.Balance("555-0001")
	assert.Equal(t, int64(1000), total+balance, "charged plus remaining must equal the starting credit")
	assert.GreaterOrEqual(t, balance, int64(0))
}
