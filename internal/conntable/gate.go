package conntable

import "sync"

// Gate is the short-lived reservation registry for call admission. A pair
// must be reserved here before the callee is rung and released once the
// handshake resolves, so no two admission attempts ever touch the same
// endpoint concurrently. One mutex covers both endpoints of every attempt,
// which also rules out deadlock between overlapping pairs.
type Gate struct {
	mu       sync.Mutex
	reserved map[string]struct{}
	table    *Table
}

func NewGate(table *Table) *Gate {
	return &Gate{
		reserved: make(map[string]struct{}),
		table:    table,
	}
}

// TryReserve holds both numbers for an admission handshake. It is granted
// only if neither number is mid-handshake or part of an active session.
// A number cannot call itself.
func (g *Gate) TryReserve(a, b string) bool {
	if a == b {
		return false
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, held := g.reserved[a]; held {
		return false
	}
	if _, held := g.reserved[b]; held {
		return false
	}
	if g.table.IsActive(a) || g.table.IsActive(b) {
		return false
	}
	g.reserved[a] = struct{}{}
	g.reserved[b] = struct{}{}
	return true
}

// Release clears both reservations. Idempotent.
func (g *Gate) Release(a, b string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.reserved, a)
	delete(g.reserved, b)
}

// IsReserved reports whether number is currently mid-handshake.
func (g *Gate) IsReserved(number string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	_, held := g.reserved[number]
	return held
}
