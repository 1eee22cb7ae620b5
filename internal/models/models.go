package models

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// CallSession represents a committed call between two subscribers.
// It is owned by the connection table while active; once removed it is
// handed to exactly one goroutine for teardown.
type CallSession struct {
	ID          string    `json:"session_id"`
	Caller      string    `json:"caller"`
	Callee      string    `json:"callee"`
	StartTime   time.Time `json:"start_time"`
	StartCredit int64     `json:"start_credit_ms"` // caller balance snapshot at commit

	done   chan struct{}
	cancel sync.Once
}

func NewCallSession(caller, callee string, startCredit int64) *CallSession {
	return &CallSession{
		ID:          uuid.New().String(),
		Caller:      caller,
		Callee:      callee,
		StartTime:   time.Now(),
		StartCredit: startCredit,
		done:        make(chan struct{}),
	}
}

// Cancel stops the session's expiry monitor. Safe to call more than once.
func (s *CallSession) Cancel() {
	s.cancel.Do(func() { close(s.done) })
}

// Done is closed when the session has been cancelled.
func (s *CallSession) Done() <-chan struct{} {
	return s.done
}

// Peer returns the other participant of the session, or "" if number is
// not part of it.
func (s *CallSession) Peer(number string) string {
	switch number {
	case s.Caller:
		return s.Callee
	case s.Callee:
		return s.Caller
	}
	return ""
}

// SubscriberInfo is the management-API view of a subscriber.
type SubscriberInfo struct {
	Number    string `json:"number"`
	BalanceMs int64  `json:"balance_ms"`
	Connected bool   `json:"connected"`
}

// BillingEntry is one row of the billing table snapshot.
type BillingEntry struct {
	From    string `json:"from"`
	To      string `json:"to"`
	TotalMs int64  `json:"total_ms"`
}
