// SPDX-FileCopyrightText: 2020-present Open Networking Foundation <info@opennetworking.org>
//
// SPDX-License-Identifier: Apache-2.0

package publisher

import (
	"sync/atomic"

	"github.com/onosproject/switch-agent/pkg/events"
	"github.com/onosproject/switch-agent/pkg/timer"
	"github.com/onosproject/switch-agent/pkg/tree"
)

// SubscriptionHandle binds one leaf handler to one client stream for the
// life of a subscription. The publisher holds the only strong reference;
// event registries observe handles through the registry.Record interface
// and prune them once the handle is closed.
type SubscriptionHandle struct {
	handler tree.Handler
	stream  tree.Stream
	token   *timer.Token
	active  atomic.Bool
}

func newSubscriptionHandle(handler tree.Handler, stream tree.Stream) *SubscriptionHandle {
	h := &SubscriptionHandle{
		handler: handler,
		stream:  stream,
	}
	h.active.Store(true)
	return h
}

// Invoke runs the handler with e against the bound stream. Closed handles
// stay silent.
func (h *SubscriptionHandle) Invoke(e events.Event) error {
	if !h.active.Load() {
		return nil
	}
	return h.handler(e, h.stream)
}

// Active implements registry.Record.
func (h *SubscriptionHandle) Active() bool {
	return h.active.Load()
}

// close tears the subscription down: the timer is cancelled first so no
// further ticks fire, then the handle goes inactive; registries scrub
// their references lazily on the next dispatch.
func (h *SubscriptionHandle) close() {
	if h.token != nil {
		h.token.Cancel()
	}
	h.active.Store(false)
}
