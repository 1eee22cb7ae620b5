// Package engine implements call admission and session lifecycle: the
// connect handshake, explicit disconnects, credit-exhaustion expiry and the
// management API on top of them.
package engine

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"prepaid-accounting/internal/billing"
	"prepaid-accounting/internal/conntable"
	"prepaid-accounting/internal/directory"
	"prepaid-accounting/internal/ledger"
	"prepaid-accounting/internal/models"
	"prepaid-accounting/internal/phone"
	"prepaid-accounting/pkg/logging"
	"prepaid-accounting/pkg/utils"
)

const Version = "1.2.0"

// ErrNotFound is returned when an operation references a number that was
// never registered. Busy, rejected, timed-out and no-credit outcomes are
// not errors; they surface as a false connect result.
var ErrNotFound = errors.New("number not registered")

// Options tune the admission protocol. Zero values fall back to defaults.
type Options struct {
	RingWorkers int           // callback worker pool size
	RingQueue   int           // callback queue depth
	RingTimeout time.Duration // how long a callee may take to answer
	ExpiryTick  time.Duration // credit check interval per active call
}

func (o *Options) withDefaults() Options {
	out := *o
	if out.RingWorkers <= 0 {
		out.RingWorkers = 32
	}
	if out.RingQueue <= 0 {
		out.RingQueue = 256
	}
	if out.RingTimeout <= 0 {
		out.RingTimeout = 5 * time.Second
	}
	if out.ExpiryTick <= 0 {
		out.ExpiryTick = 10 * time.Millisecond
	}
	return out
}

// Coordinator orchestrates the registry, ledger, reservation gate,
// connection table and billing table into the boundary contract of the
// accounting service.
type Coordinator struct {
	directory *directory.Directory
	ledger    *ledger.Ledger
	billing   *billing.Table
	table     *conntable.Table
	gate      *conntable.Gate
	ringer    *ringer
	opts      Options
	log       *logrus.Entry

	mu     sync.Mutex
	closed bool
	wg     sync.WaitGroup // expiry monitors
}

func NewCoordinator(dir *directory.Directory, led *ledger.Ledger, bill *billing.Table, opts Options) *Coordinator {
	opts = opts.withDefaults()
	table := conntable.NewTable()
	return &Coordinator{
		directory: dir,
		ledger:    led,
		billing:   bill,
		table:     table,
		gate:      conntable.NewGate(table),
		ringer:    newRinger(opts.RingWorkers, opts.RingQueue),
		opts:      opts,
		log:       logging.Component("engine"),
	}
}

// Register adds a subscriber. Registering an existing number is a no-op;
// the return value reports whether this call created it.
func (c *Coordinator) Register(number string, ph phone.Phone) bool {
	created := c.directory.Register(number, ph)
	if created {
		utils.RegisteredSubscribers.Inc()
	}
	return created
}

// Purchase credits amountMs of call time and returns the new balance.
func (c *Coordinator) Purchase(number string, amountMs int64) (int64, error) {
	if amountMs < 0 {
		return 0, fmt.Errorf("purchase for %s: amount must be non-negative", number)
	}
	balance, ok := c.ledger.Add(number, amountMs)
	if !ok {
		return 0, fmt.Errorf("purchase for %s: %w", number, ErrNotFound)
	}
	utils.CreditPurchasedMs.Add(float64(amountMs))
	c.log.Debugf("purchase %s +%dms balance=%dms", number, amountMs, balance)
	return balance, nil
}

// RemainingCredit returns the subscriber's balance, or ErrNotFound for an
// unregistered number. A registered number that never purchased reads 0.
func (c *Coordinator) RemainingCredit(number string) (int64, error) {
	balance, ok := c.ledger.Balance(number)
	if !ok {
		return 0, fmt.Errorf("credit of %s: %w", number, ErrNotFound)
	}
	return balance, nil
}

// IsConnected reports whether the number is in an active call, or
// ErrNotFound for an unregistered number.
func (c *Coordinator) IsConnected(number string) (bool, error) {
	if _, ok := c.directory.Lookup(number); !ok {
		return false, fmt.Errorf("connection state of %s: %w", number, ErrNotFound)
	}
	return c.table.IsActive(number), nil
}

// BilledDuration returns the cumulative billed duration for the ordered
// pair, zero when the pair has no call history.
func (c *Coordinator) BilledDuration(from, to string) int64 {
	return c.billing.Get(from, to)
}

// Connect runs the admission protocol for a call from -> to. The boolean
// reports whether a call was established; false covers busy, rejected,
// timed-out and no-credit outcomes. The only error is ErrNotFound for an
// unregistered participant.
func (c *Coordinator) Connect(from, to string) (bool, error) {
	if _, ok := c.directory.Lookup(from); !ok {
		return false, fmt.Errorf("connect %s -> %s: caller: %w", from, to, ErrNotFound)
	}
	callee, ok := c.directory.Lookup(to)
	if !ok {
		return false, fmt.Errorf("connect %s -> %s: callee: %w", from, to, ErrNotFound)
	}

	if c.isClosed() {
		utils.AdmissionResults.WithLabelValues("busy").Inc()
		return false, nil
	}

	if balance, _ := c.ledger.Balance(from); balance <= 0 {
		utils.AdmissionResults.WithLabelValues("no_credit").Inc()
		c.log.Debugf("connect %s -> %s denied: no credit", from, to)
		return false, nil
	}

	// Hold both endpoints for the duration of the handshake. Denial is a
	// normal outcome: one of them is mid-handshake or already on a call.
	if !c.gate.TryReserve(from, to) {
		utils.AdmissionResults.WithLabelValues("busy").Inc()
		return false, nil
	}

	switch c.ringer.ring(callee.Phone, from, c.opts.RingTimeout) {
	case ringAccepted:
	case ringRejected:
		c.gate.Release(from, to)
		utils.AdmissionResults.WithLabelValues("rejected").Inc()
		c.log.Debugf("connect %s -> %s rejected by callee", from, to)
		return false, nil
	case ringTimeout:
		c.gate.Release(from, to)
		utils.AdmissionResults.WithLabelValues("timeout").Inc()
		c.log.Debugf("connect %s -> %s not answered in time", from, to)
		return false, nil
	default: // ringBusy
		c.gate.Release(from, to)
		utils.AdmissionResults.WithLabelValues("busy").Inc()
		return false, nil
	}

	startCredit, _ := c.ledger.Balance(from)
	sess, committed := c.table.TryCommit(from, to, startCredit)
	if !committed {
		// The gate makes this unreachable; kept as a local guard so a
		// lost race degrades to a busy signal instead of a panic.
		c.gate.Release(from, to)
		utils.AdmissionResults.WithLabelValues("busy").Inc()
		return false, nil
	}
	c.startMonitor(sess)
	c.gate.Release(from, to)

	utils.ActiveCalls.Inc()
	utils.AdmissionResults.WithLabelValues("accepted").Inc()
	c.log.Infof("call %s -> %s connected (session %s, credit %dms)", from, to, sess.ID, startCredit)
	return true, nil
}

// Disconnect ends the call the number is part of. It is idempotent and may
// be invoked by either party or by the expiry monitor; whoever wins the
// table remove performs the debit, the billing entry and both closed
// notifications, exactly once.
func (c *Coordinator) Disconnect(number string) {
	sess, ok := c.table.Remove(number)
	if !ok {
		return
	}
	sess.Cancel()

	elapsed := time.Since(sess.StartTime).Milliseconds()
	if elapsed < 0 {
		elapsed = 0
	}
	if elapsed > sess.StartCredit {
		elapsed = sess.StartCredit
	}

	c.ledger.Debit(sess.Caller, elapsed)
	c.billing.Accumulate(sess.Caller, sess.Callee, elapsed)

	if sub, ok := c.directory.Lookup(sess.Caller); ok {
		c.ringer.notifyClosed(sub.Phone, sess.Callee)
	}
	if sub, ok := c.directory.Lookup(sess.Callee); ok {
		c.ringer.notifyClosed(sub.Phone, sess.Caller)
	}

	utils.ActiveCalls.Dec()
	utils.BilledDurationMs.Add(float64(elapsed))
	c.log.Infof("call %s -> %s closed after %dms (session %s)", sess.Caller, sess.Callee, elapsed, sess.ID)
}

// startMonitor watches one session and forces a disconnect the moment its
// connected time reaches the caller's credit snapshot. An explicit
// disconnect cancels the monitor; both paths converge on the idempotent
// table remove, so a race between them tears the call down once.
func (c *Coordinator) startMonitor(sess *models.CallSession) {
	deadline := sess.StartTime.Add(time.Duration(sess.StartCredit) * time.Millisecond)
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		ticker := time.NewTicker(c.opts.ExpiryTick)
		defer ticker.Stop()
		for {
			select {
			case <-sess.Done():
				return
			case now := <-ticker.C:
				if now.Before(deadline) {
					continue
				}
				utils.ForcedDisconnects.Inc()
				c.log.Infof("credit exhausted, disconnecting %s (session %s)", sess.Caller, sess.ID)
				c.Disconnect(sess.Caller)
				return
			}
		}
	}()
}

// ActiveSessions returns the currently connected calls.
func (c *Coordinator) ActiveSessions() []*models.CallSession {
	return c.table.Sessions()
}

// Subscribers returns the management view of every registered number.
func (c *Coordinator) Subscribers() []models.SubscriberInfo {
	numbers := c.directory.Numbers()
	infos := make([]models.SubscriberInfo, 0, len(numbers))
	for _, n := range numbers {
		balance, _ := c.ledger.Balance(n)
		infos = append(infos, models.SubscriberInfo{
			Number:    n,
			BalanceMs: balance,
			Connected: c.table.IsActive(n),
		})
	}
	return infos
}

func (c *Coordinator) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// Close refuses further admissions, tears down all active calls through the
// normal disconnect path (so they are billed and both ends notified) and
// stops the worker pool and expiry monitors.
func (c *Coordinator) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	c.mu.Unlock()

	for _, sess := range c.table.Sessions() {
		c.Disconnect(sess.Caller)
	}
	c.wg.Wait()
	c.ringer.stop()
	c.log.Info("engine closed")
}
