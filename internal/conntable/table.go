// Package conntable holds the two admission-critical structures: the table
// of active call sessions and the reservation gate that serializes the
// handshake preceding a commit. Together they guarantee that a number is
// never part of two calls, or of a call and a handshake, at the same time.
package conntable

import (
	"sync"

	"prepaid-accounting/internal/models"
)

// Table is the set of active call sessions, keyed under both participant
// numbers so either side resolves to the same session.
type Table struct {
	mu       sync.RWMutex
	byNumber map[string]*models.CallSession
}

func NewTable() *Table {
	return &Table{byNumber: make(map[string]*models.CallSession)}
}

// TryCommit installs a new session for the pair. It fails if either number
// is already part of an active session; check and insert happen in one
// critical section.
func (t *Table) TryCommit(caller, callee string, startCredit int64) (*models.CallSession, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, busy := t.byNumber[caller]; busy {
		return nil, false
	}
	if _, busy := t.byNumber[callee]; busy {
		return nil, false
	}
	sess := models.NewCallSession(caller, callee, startCredit)
	t.byNumber[caller] = sess
	t.byNumber[callee] = sess
	return sess, true
}

// Peer returns the other end of number's active call.
func (t *Table) Peer(number string) (string, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	sess, ok := t.byNumber[number]
	if !ok {
		return "", false
	}
	return sess.Peer(number), true
}

// Remove takes the session containing number out of the table and returns
// it. Both keys are cleared in one critical section, so of two racing
// removes exactly one receives the session; the other observes ok == false.
func (t *Table) Remove(number string) (*models.CallSession, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	sess, ok := t.byNumber[number]
	if !ok {
		return nil, false
	}
	delete(t.byNumber, sess.Caller)
	delete(t.byNumber, sess.Callee)
	return sess, true
}

func (t *Table) IsActive(number string) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	_, ok := t.byNumber[number]
	return ok
}

// Sessions returns the distinct active sessions.
func (t *Table) Sessions() []*models.CallSession {
	t.mu.RLock()
	defer t.mu.RUnlock()
	seen := make(map[string]struct{}, len(t.byNumber)/2)
	list := make([]*models.CallSession, 0, len(t.byNumber)/2)
	for _, sess := range t.byNumber {
		if _, dup := seen[sess.ID]; dup {
			continue
		}
		seen[sess.ID] = struct{}{}
		list = append(list, sess)
	}
	return list
}

func (t *Table) Count() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.byNumber) / 2
}
