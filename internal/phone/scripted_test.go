package phone

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestScriptedDecision(t *testing.T) {
	p := NewScriptedPhone(true)
	assert.True(t, p.IncomingCall("100"))

	p.SetAccept(false)
	assert.False(t, p.IncomingCall("200"))

	assert.Equal(t, []string{"100", "200"}, p.IncomingCalls())
}

func TestScriptedRecordsClosedPeers(t *testing.T) {
	p := NewScriptedPhone(true)
	p.ConnectionClosed("200")
	p.ConnectionClosed("300")
	assert.Equal(t, []string{"200", "300"}, p.ClosedPeers())
}

func TestScriptedAnswerDelay(t *testing.T) {
	p := NewScriptedPhone(true)
	p.SetAnswerDelay(50 * time.Millisecond)

	start := time.Now()
	p.IncomingCall("100")
	assert.GreaterOrEqual(t, time.Since(start), 50*time.Millisecond)
}

func TestRecordedSlicesAreCopies(t *testing.T) {
	p := NewScriptedPhone(true)
	p.IncomingCall("100")

	calls := p.IncomingCalls()
	calls[0] = "mutated"
	assert.Equal(t, []string{"100"}, p.IncomingCalls())
}
