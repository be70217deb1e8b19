// SPDX-FileCopyrightText: 2020-present Open Networking Foundation <info@opennetworking.org>
//
// SPDX-License-Identifier: Apache-2.0

// Package timer provides the process-wide daemon that drives sampled
// telemetry subscriptions. Callbacks run serially on a single worker, so
// two ticks never overlap; a tick that arrives while the previous callback
// for the same timer is still queued or running is coalesced.
package timer

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/onosproject/onos-lib-go/pkg/logging"
)

var log = logging.GetLogger("timer")

var (
	daemonOnce sync.Once
	daemon     *Daemon
)

// Default returns the process-wide timer daemon, starting it on first use.
func Default() *Daemon {
	daemonOnce.Do(func() {
		daemon = NewDaemon()
	})
	return daemon
}

// Daemon schedules periodic and one-shot callbacks on one worker goroutine.
type Daemon struct {
	work chan func()

	stopOnce sync.Once
	stopped  chan struct{}
}

// NewDaemon creates and starts a daemon. Most callers want Default.
func NewDaemon() *Daemon {
	d := &Daemon{
		work:    make(chan func(), 64),
		stopped: make(chan struct{}),
	}
	go d.run()
	return d
}

func (d *Daemon) run() {
	for {
		select {
		case f := <-d.work:
			f()
		case <-d.stopped:
			return
		}
	}
}

// Stop terminates the worker. Pending callbacks are discarded, and the
// goroutine of every requested timer exits as well.
func (d *Daemon) Stop() {
	d.stopOnce.Do(func() { close(d.stopped) })
}

// Token identifies one requested timer and allows cancelling it.
type Token struct {
	cancelOnce sync.Once
	cancelled  chan struct{}
	// pending is set while a tick of this timer is queued or running, so
	// a slow callback coalesces subsequent ticks instead of piling up.
	pending atomic.Bool
}

// Cancel stops the timer. Best effort: a callback that has already been
// dispatched may still run once.
func (t *Token) Cancel() {
	t.cancelOnce.Do(func() { close(t.cancelled) })
}

// RequestPeriodicTimer schedules callback to run after delay and then every
// period. A zero period makes the timer one-shot. Callback errors are
// logged; the timer keeps running.
func (d *Daemon) RequestPeriodicTimer(delay, period time.Duration, callback func() error) (*Token, error) {
	t := &Token{cancelled: make(chan struct{})}

	go func() {
		first := time.NewTimer(delay)
		defer first.Stop()
		select {
		case <-first.C:
			d.fire(t, callback)
		case <-t.cancelled:
			return
		case <-d.stopped:
			return
		}
		if period <= 0 {
			return
		}
		ticker := time.NewTicker(period)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				d.fire(t, callback)
			case <-t.cancelled:
				return
			case <-d.stopped:
				return
			}
		}
	}()

	return t, nil
}

// fire enqueues one execution of callback unless a previous tick of the
// same timer is still outstanding.
func (d *Daemon) fire(t *Token, callback func() error) {
	if t.pending.Swap(true) {
		// Previous tick not finished yet; coalesce.
		return
	}
	job := func() {
		defer t.pending.Store(false)
		select {
		case <-t.cancelled:
			return
		default:
		}
		if err := callback(); err != nil {
			log.Errorf("timer callback returned error: %v", err)
		}
	}
	select {
	case d.work <- job:
	case <-d.stopped:
		t.pending.Store(false)
	}
}
