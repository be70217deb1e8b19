// SPDX-FileCopyrightText: 2020-present Open Networking Foundation <info@opennetworking.org>
//
// SPDX-License-Identifier: Apache-2.0

// Package publisher binds client telemetry subscriptions to the schema
// tree, multiplexes backend events onto per-client streams and drives
// sampled subscriptions through the timer daemon.
package publisher

import (
	"fmt"
	"sync"
	"time"

	"github.com/eapache/channels"
	"github.com/onosproject/onos-lib-go/pkg/logging"
	gpb "github.com/openconfig/gnmi/proto/gnmi"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/onosproject/switch-agent/pkg/backend"
	"github.com/onosproject/switch-agent/pkg/events"
	"github.com/onosproject/switch-agent/pkg/registry"
	"github.com/onosproject/switch-agent/pkg/timer"
	"github.com/onosproject/switch-agent/pkg/tree"
)

var log = logging.GetLogger("publisher")

// maxEventDepth bounds the backend event channel. The channel is a ring:
// when it is full the oldest event is dropped. Telemetry is lossy by
// design.
const maxEventDepth = 256

// Frequency describes a periodic subscription: first fire after Delay,
// then every Period.
type Frequency struct {
	Delay  time.Duration
	Period time.Duration
}

// channelWriter is the event sink handed to the backend. Writes after
// close are rejected instead of panicking on the closed ring.
type channelWriter struct {
	mu     sync.Mutex
	ring   *channels.RingChannel
	closed bool
}

// Write implements events.Writer.
func (w *channelWriter) Write(e events.Event) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return false
	}
	if w.ring.Len() >= maxEventDepth {
		eventsDropped.Inc()
		log.Warnf("Event channel full; dropping oldest event")
	}
	w.ring.In() <- e
	return true
}

func (w *channelWriter) close() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.closed {
		w.closed = true
		w.ring.Close()
	}
}

// Publisher owns the parse tree and one strong reference per live
// subscription. A single reader goroutine drains the backend event channel
// and fans each event out through the per-variant registries.
type Publisher struct {
	// mu is held in write mode for mutations and in read mode across
	// event dispatch, which also serializes writes to any single stream.
	mu sync.RWMutex

	backend  backend.Backend
	tree     *tree.ParseTree
	registry *registry.Registry
	timers   *timer.Daemon

	writer  *channelWriter
	handles map[*SubscriptionHandle]struct{}

	// configPushed is the publisher's own subscription to configuration
	// push events; it is registered once at construction.
	configPushed *SubscriptionHandle
}

// New creates a Publisher over the given backend. The registry and timer
// daemon are passed in explicitly so servers control their lifetime.
func New(b backend.Backend, reg *registry.Registry, timers *timer.Daemon) *Publisher {
	p := &Publisher{
		backend:  b,
		tree:     tree.New(b, reg),
		registry: reg,
		timers:   timers,
		handles:  make(map[*SubscriptionHandle]struct{}),
	}
	p.configPushed = newSubscriptionHandle(
		func(e events.Event, stream tree.Stream) error {
			log.Info("Configuration has been pushed")
			return nil
		}, nopStream{})
	if err := reg.Register(&events.ConfigHasBeenPushedEvent{}, p.configPushed); err != nil {
		log.Errorf("Cannot register config-push handler: %v", err)
	}
	return p
}

// nopStream backs publisher-internal handles that never write updates.
type nopStream struct{}

func (nopStream) Send(*gpb.SubscribeResponse) error { return nil }

// Tree returns the parse tree.
func (p *Publisher) Tree() *tree.ParseTree { return p.tree }

// RegisterEventWriter creates the backend event channel, hands its writer
// end to the backend and spawns the event reader. Idempotent.
func (p *Publisher) RegisterEventWriter() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.writer != nil {
		return nil
	}
	ring := channels.NewRingChannel(maxEventDepth)
	w := &channelWriter{ring: ring}
	if err := p.backend.RegisterEventNotifyWriter(w); err != nil {
		w.close()
		return err
	}
	p.writer = w
	go p.readEvents(ring)
	return nil
}

// UnregisterEventWriter detaches from the backend and closes the event
// channel; the reader exits on the closed channel. Safe to call when not
// registered.
func (p *Publisher) UnregisterEventWriter() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.writer == nil {
		return nil
	}
	err := p.backend.UnregisterEventNotifyWriter()
	p.writer.close()
	p.writer = nil
	return err
}

// readEvents drains the event channel until it is closed, dispatching
// every event under the read lock.
func (p *Publisher) readEvents(ring *channels.RingChannel) {
	for raw := range ring.Out() {
		e, ok := raw.(events.Event)
		if !ok {
			log.Errorf("Unexpected value on event channel: %T", raw)
			continue
		}
		p.handleChange(e)
	}
	log.Info("Event channel closed; event reader exiting")
}

func (p *Publisher) handleChange(e events.Event) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	p.registry.Dispatch(e)
	eventsDispatched.Inc()
}

// HandleEvent delivers e to a single subscription handle. Used by the
// timer daemon to drive sampled subscriptions.
func (p *Publisher) HandleEvent(e events.Event, h *SubscriptionHandle) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return h.Invoke(e)
}

// HandlePoll synchronously fetches the current value for the handle's
// subscription. Handler failures are logged, not propagated: a poll is an
// advisory fetch, not an RPC failure.
func (p *Publisher) HandlePoll(h *SubscriptionHandle) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if err := h.Invoke(&events.PollEvent{}); err != nil {
		log.Errorf("Poll handler returned error: %v", err)
	}
	return nil
}

// subscribe validates the request, resolves the path and wraps the
// selected handler and stream in a new handle.
func (p *Publisher) subscribe(path *gpb.Path, stream tree.Stream,
	supported func(*tree.TreeNode) bool, handler func(*tree.TreeNode) tree.Handler) (*tree.TreeNode, *SubscriptionHandle, error) {
	if stream == nil {
		return nil, nil, status.Error(codes.InvalidArgument, "stream is nil")
	}
	if len(path.GetElem()) == 0 {
		return nil, nil, status.Error(codes.InvalidArgument, "path is empty")
	}
	node := p.tree.FindNodeOrNull(path)
	if node == nil {
		return nil, nil, status.Errorf(codes.InvalidArgument, "unsupported path: %s", pathString(path))
	}
	if !supported(node) {
		return nil, nil, status.Errorf(codes.InvalidArgument,
			"not all leaves on path %s support this mode", pathString(path))
	}
	h := newSubscriptionHandle(handler(node), stream)
	p.handles[h] = struct{}{}
	liveSubscriptions.Inc()
	return node, h, nil
}

// SubscribeOnChange binds a change-driven subscription for path and
// registers it with the registries of every event variant the subtree's
// leaves declare interest in.
func (p *Publisher) SubscribeOnChange(path *gpb.Path, stream tree.Stream) (*SubscriptionHandle, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	node, h, err := p.subscribe(path, stream,
		(*tree.TreeNode).AllSubtreeLeavesSupportOnChange,
		(*tree.TreeNode).GetOnChangeHandler)
	if err != nil {
		return nil, err
	}
	if err := node.DoOnChangeRegistration(h); err != nil {
		p.dropHandle(h)
		return nil, err
	}
	return h, nil
}

// SubscribePoll binds a poll-driven subscription for path. No registry
// registration: the handle is only invoked through HandlePoll.
func (p *Publisher) SubscribePoll(path *gpb.Path, stream tree.Stream) (*SubscriptionHandle, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, h, err := p.subscribe(path, stream,
		(*tree.TreeNode).AllSubtreeLeavesSupportOnPoll,
		(*tree.TreeNode).GetOnPollHandler)
	return h, err
}

// SubscribePeriodic binds a sampled subscription for path and arms a
// periodic timer that drives the handle with timer events.
func (p *Publisher) SubscribePeriodic(freq Frequency, path *gpb.Path, stream tree.Stream) (*SubscriptionHandle, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, h, err := p.subscribe(path, stream,
		(*tree.TreeNode).AllSubtreeLeavesSupportOnTimer,
		(*tree.TreeNode).GetOnTimerHandler)
	if err != nil {
		return nil, err
	}
	token, err := p.timers.RequestPeriodicTimer(freq.Delay, freq.Period, func() error {
		return p.HandleEvent(&events.TimerEvent{}, h)
	})
	if err != nil {
		p.dropHandle(h)
		return nil, status.Errorf(codes.Internal, "cannot start timer: %v", err)
	}
	h.token = token
	if err := p.registry.Register(&events.TimerEvent{}, h); err != nil {
		p.dropHandle(h)
		return nil, err
	}
	return h, nil
}

// PollOnce resolves path and invokes its poll handler directly against
// stream, without retaining a subscription.
func (p *Publisher) PollOnce(path *gpb.Path, stream tree.Stream) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if stream == nil {
		return status.Error(codes.InvalidArgument, "stream is nil")
	}
	if len(path.GetElem()) == 0 {
		return status.Error(codes.InvalidArgument, "path is empty")
	}
	node := p.tree.FindNodeOrNull(path)
	if node == nil {
		return status.Errorf(codes.InvalidArgument, "unsupported path: %s", pathString(path))
	}
	if !node.AllSubtreeLeavesSupportOnPoll() {
		return status.Errorf(codes.InvalidArgument,
			"not all leaves on path %s support polling", pathString(path))
	}
	return node.GetOnPollHandler()(&events.PollEvent{}, stream)
}

// UpdateSubscriptionWithTargetSpecificModeSpecification rewrites sub with
// the server-chosen mode of the subscribed path.
func (p *Publisher) UpdateSubscriptionWithTargetSpecificModeSpecification(path *gpb.Path, sub *gpb.Subscription) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if sub == nil {
		return status.Error(codes.InvalidArgument, "subscription is nil")
	}
	if len(path.GetElem()) == 0 {
		return status.Error(codes.InvalidArgument, "path is empty")
	}
	node := p.tree.FindNodeOrNull(path)
	if node == nil {
		return status.Errorf(codes.InvalidArgument, "unsupported path: %s", pathString(path))
	}
	return node.ApplyTargetDefinedModeToSubscription(sub)
}

// SendSyncResponse notifies the client that the initial snapshot is
// complete.
func (p *Publisher) SendSyncResponse(stream tree.Stream) error {
	if stream == nil {
		return status.Error(codes.Internal, "stream is nil")
	}
	resp := &gpb.SubscribeResponse{
		Response: &gpb.SubscribeResponse_SyncResponse{SyncResponse: true},
	}
	if err := stream.Send(resp); err != nil {
		return status.Errorf(codes.Internal, "writing sync response failed: %v", err)
	}
	return nil
}

// UnSubscribe drops the subscription: the handle's timer is cancelled, the
// strong reference released, and registry entries expire on the next
// dispatch.
func (p *Publisher) UnSubscribe(h *SubscriptionHandle) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.dropHandle(h)
}

func (p *Publisher) dropHandle(h *SubscriptionHandle) {
	if _, ok := p.handles[h]; !ok {
		return
	}
	h.close()
	delete(p.handles, h)
	liveSubscriptions.Dec()
}

func pathString(path *gpb.Path) string {
	s := ""
	for _, elem := range path.GetElem() {
		s += "/" + elem.GetName()
		for k, v := range elem.GetKey() {
			s += fmt.Sprintf("[%s=%s]", k, v)
		}
	}
	return s
}
