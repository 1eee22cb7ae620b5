// Package ledger tracks per-subscriber prepaid credit in milliseconds of
// call time. Balances are single words updated with CAS so concurrent
// purchases and the closing debit of a call never lose an update.
package ledger

import (
	"sync"
	"sync/atomic"
)

type Ledger struct {
	mu       sync.RWMutex
	balances map[string]*atomic.Int64
}

func New() *Ledger {
	return &Ledger{balances: make(map[string]*atomic.Int64)}
}

// Open creates a zero balance for number if one does not exist yet.
func (l *Ledger) Open(number string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.balances[number]; !ok {
		l.balances[number] = &atomic.Int64{}
	}
}

// Balance returns the current balance. ok is false if the number has no
// ledger entry.
func (l *Ledger) Balance(number string) (int64, bool) {
	l.mu.RLock()
	acct, ok := l.balances[number]
	l.mu.RUnlock()
	if !ok {
		return 0, false
	}
	return acct.Load(), true
}

// Add credits the account and returns the new balance. Negative amounts are
// ignored. ok is false if the number has no ledger entry; nothing is applied
// in that case.
func (l *Ledger) Add(number string, amountMs int64) (int64, bool) {
	l.mu.RLock()
	acct, ok := l.balances[number]
	l.mu.RUnlock()
	if !ok {
		return 0, false
	}
	if amountMs <= 0 {
		return acct.Load(), true
	}
	return acct.Add(amountMs), true
}

// Debit charges up to amountMs from the account, flooring the balance at
// zero, and returns the amount actually charged. Unknown numbers and
// non-positive amounts charge nothing.
func (l *Ledger) Debit(number string, amountMs int64) int64 {
	l.mu.RLock()
	acct, ok := l.balances[number]
	l.mu.RUnlock()
	if !ok || amountMs <= 0 {
		return 0
	}
	for {
		cur := acct.Load()
		if cur <= 0 {
			return 0
		}
		charge := amountMs
		if charge > cur {
			charge = cur
		}
		if acct.CompareAndSwap(cur, cur-charge) {
			return charge
		}
	}
}
