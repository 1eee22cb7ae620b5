package engine

import (
	"sync"
	"time"

	"prepaid-accounting/internal/phone"
)

type ringOutcome int

const (
	ringAccepted ringOutcome = iota
	ringRejected
	ringTimeout
	ringBusy // pool saturated or shutting down
)

// ringer runs subscriber callbacks on a bounded worker pool. Phone
// implementations may block or run arbitrary logic, so they must never
// execute on the admission path itself.
type ringer struct {
	jobs chan func()
	quit chan struct{}
	wg   sync.WaitGroup
}

func newRinger(workers, queue int) *ringer {
	if workers <= 0 {
		workers = 1
	}
	if queue < 0 {
		queue = 0
	}
	r := &ringer{
		jobs: make(chan func(), queue),
		quit: make(chan struct{}),
	}
	for i := 0; i < workers; i++ {
		r.wg.Add(1)
		go r.worker()
	}
	return r
}

func (r *ringer) worker() {
	defer r.wg.Done()
	for {
		// Drain queued work before honouring quit, so notifications
		// enqueued during shutdown still get delivered.
		select {
		case job := <-r.jobs:
			job()
		default:
			select {
			case job := <-r.jobs:
				job()
			case <-r.quit:
				return
			}
		}
	}
}

// ring delivers IncomingCall to the callee and waits up to timeout for the
// decision. The timeout covers both queueing and the callee's answer; an
// undecided call past the deadline counts as not answered.
func (r *ringer) ring(p phone.Phone, from string, timeout time.Duration) ringOutcome {
	reply := make(chan bool, 1)
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case r.jobs <- func() { reply <- p.IncomingCall(from) }:
	case <-r.quit:
		return ringBusy
	case <-timer.C:
		return ringBusy
	}

	select {
	case accepted := <-reply:
		if accepted {
			return ringAccepted
		}
		return ringRejected
	case <-timer.C:
		return ringTimeout
	}
}

// notifyClosed delivers ConnectionClosed off the caller's goroutine. If the
// pool is gone or full the notification is delivered on its own goroutine
// instead; it is never dropped.
func (r *ringer) notifyClosed(p phone.Phone, peer string) {
	job := func() { p.ConnectionClosed(peer) }
	select {
	case <-r.quit:
		go job()
		return
	default:
	}
	select {
	case r.jobs <- job:
	default:
		go job()
	}
}

// stop lets the workers drain outstanding jobs and waits for them to exit.
func (r *ringer) stop() {
	close(r.quit)
	r.wg.Wait()
}
