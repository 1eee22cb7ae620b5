package phone

import (
	"sync"
	"time"
)

// ScriptedPhone is an in-process Phone with a fixed accept/reject decision.
// It records every event it receives, which makes it usable both as the
// handset behind API-registered subscribers and as a probe in tests.
type ScriptedPhone struct {
	mu          sync.Mutex
	accept      bool
	answerDelay time.Duration
	incoming    []string
	closed      []string
}

func NewScriptedPhone(accept bool) *ScriptedPhone {
	return &ScriptedPhone{accept: accept}
}

// SetAnswerDelay makes IncomingCall sleep before answering, simulating a
// subscriber who takes a while to pick up.
func (p *ScriptedPhone) SetAnswerDelay(d time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.answerDelay = d
}

// SetAccept changes the scripted decision for subsequent calls.
func (p *ScriptedPhone) SetAccept(accept bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.accept = accept
}

func (p *ScriptedPhone) IncomingCall(from string) bool {
	p.mu.Lock()
	delay := p.answerDelay
	p.mu.Unlock()

	if delay > 0 {
		time.Sleep(delay)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.incoming = append(p.incoming, from)
	return p.accept
}

func (p *ScriptedPhone) ConnectionClosed(peer string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = append(p.closed, peer)
}

// IncomingCalls returns the callers seen so far, in order.
func (p *ScriptedPhone) IncomingCalls() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.incoming...)
}

// ClosedPeers returns the peers whose calls were reported closed, in order.
func (p *ScriptedPhone) ClosedPeers() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.closed...)
}
