// SPDX-FileCopyrightText: 2020-present Open Networking Foundation <info@opennetworking.org>
//
// SPDX-License-Identifier: Apache-2.0

package publisher

import (
	"errors"
	"sync"
	"testing"
	"time"

	gpb "github.com/openconfig/gnmi/proto/gnmi"
	"github.com/openconfig/ygot/ygot"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/onosproject/switch-agent/pkg/backend"
	"github.com/onosproject/switch-agent/pkg/events"
	"github.com/onosproject/switch-agent/pkg/registry"
	"github.com/onosproject/switch-agent/pkg/timer"
)

const (
	testNodeID = 3
	testPortID = 3
)

type fakeSwitch struct {
	mu            sync.Mutex
	retrieve      func(req *backend.DataRequest, w backend.ValueWriter) error
	writer        events.Writer
	registers     int
	unregisters   int
	registerError error
}

func (f *fakeSwitch) RetrieveValue(nodeID uint64, req *backend.DataRequest, w backend.ValueWriter) error {
	f.mu.Lock()
	retrieve := f.retrieve
	f.mu.Unlock()
	if retrieve == nil {
		return nil
	}
	return retrieve(req, w)
}

func (f *fakeSwitch) RegisterEventNotifyWriter(w events.Writer) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.registerError != nil {
		return f.registerError
	}
	f.registers++
	f.writer = w
	return nil
}

func (f *fakeSwitch) UnregisterEventNotifyWriter() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.unregisters++
	f.writer = nil
	return nil
}

// emit pushes an event through the registered writer, as the switch would.
func (f *fakeSwitch) emit(e events.Event) bool {
	f.mu.Lock()
	w := f.writer
	f.mu.Unlock()
	if w == nil {
		return false
	}
	return w.Write(e)
}

type fakeStream struct {
	mu        sync.Mutex
	responses []*gpb.SubscribeResponse
	err       error
}

func (f *fakeStream) Send(resp *gpb.SubscribeResponse) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.responses = append(f.responses, resp)
	return nil
}

func (f *fakeStream) updateCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, resp := range f.responses {
		if resp.GetUpdate() != nil {
			n++
		}
	}
	return n
}

func (f *fakeStream) firstValue() *gpb.TypedValue {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, resp := range f.responses {
		if n := resp.GetUpdate(); n != nil && len(n.GetUpdate()) > 0 {
			return n.GetUpdate()[0].GetVal()
		}
	}
	return nil
}

func mustPath(t *testing.T, s string) *gpb.Path {
	t.Helper()
	p, err := ygot.StringToStructuredPath(s)
	require.NoError(t, err)
	return p
}

func newTestPublisher(t *testing.T) (*Publisher, *fakeSwitch) {
	t.Helper()
	sw := &fakeSwitch{}
	d := timer.NewDaemon()
	t.Cleanup(d.Stop)
	p := New(sw, registry.New(), d)
	p.Tree().AddSubtreeInterfaceFromSingleton(
		backend.Port{Name: "interface-1", NodeID: testNodeID, ID: testPortID, SpeedBps: events.SpeedBps25Gb},
		backend.NodeConfig{Queues: []backend.QueueConfig{{ID: 0, Name: "BE1"}}})
	return p, sw
}

func TestSubscribePreconditions(t *testing.T) {
	p, _ := newTestPublisher(t)
	path := mustPath(t, "/interfaces/interface[name=interface-1]/state/oper-status")

	_, err := p.SubscribeOnChange(path, nil)
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	_, err = p.SubscribeOnChange(&gpb.Path{}, &fakeStream{})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	_, err = p.SubscribeOnChange(mustPath(t, "/no/such/path"), &fakeStream{})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	// The name leaf cannot be driven by a timer.
	_, err = p.SubscribePeriodic(Frequency{Delay: time.Millisecond, Period: time.Millisecond},
		mustPath(t, "/interfaces/interface[name=interface-1]/state/name"), &fakeStream{})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}

func TestRegisterEventWriterIsIdempotent(t *testing.T) {
	p, sw := newTestPublisher(t)
	require.NoError(t, p.RegisterEventWriter())
	require.NoError(t, p.RegisterEventWriter())
	assert.Equal(t, 1, sw.registers)

	require.NoError(t, p.UnregisterEventWriter())
}

func TestRegisterEventWriterBackendFailure(t *testing.T) {
	p, sw := newTestPublisher(t)
	sw.registerError = errors.New("sdk not ready")
	assert.Error(t, p.RegisterEventWriter())
}

func TestOnChangeDelivery(t *testing.T) {
	p, sw := newTestPublisher(t)
	require.NoError(t, p.RegisterEventWriter())
	defer func() { require.NoError(t, p.UnregisterEventWriter()) }()

	stream := &fakeStream{}
	h, err := p.SubscribeOnChange(mustPath(t, "/interfaces/interface[name=interface-1]/state/oper-status"), stream)
	require.NoError(t, err)
	require.NotNil(t, h)

	require.True(t, sw.emit(&events.PortOperStateChangedEvent{
		NodeID: testNodeID, PortID: testPortID, State: events.PortStateUp,
	}))

	require.Eventually(t, func() bool { return stream.updateCount() == 1 },
		time.Second, time.Millisecond)
	assert.Equal(t, "UP", stream.firstValue().GetStringVal())

	// At-most-once per event: no further writes show up.
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, 1, stream.updateCount())
}

func TestUnSubscribeStopsDelivery(t *testing.T) {
	p, sw := newTestPublisher(t)
	require.NoError(t, p.RegisterEventWriter())
	defer func() { require.NoError(t, p.UnregisterEventWriter()) }()

	stream := &fakeStream{}
	h, err := p.SubscribeOnChange(mustPath(t, "/interfaces/interface[name=interface-1]/state/oper-status"), stream)
	require.NoError(t, err)

	p.UnSubscribe(h)
	sw.emit(&events.PortOperStateChangedEvent{NodeID: testNodeID, PortID: testPortID, State: events.PortStateUp})

	time.Sleep(20 * time.Millisecond)
	assert.Zero(t, stream.updateCount())
}

func TestChannelTeardownAndRecreation(t *testing.T) {
	p, sw := newTestPublisher(t)
	require.NoError(t, p.RegisterEventWriter())
	require.NoError(t, p.UnregisterEventWriter())

	// The backend saw a matching unregister and the old writer is dead.
	assert.Equal(t, 1, sw.unregisters)
	assert.False(t, sw.emit(&events.PortOperStateChangedEvent{}))

	// A later registration re-creates channel and reader cleanly.
	require.NoError(t, p.RegisterEventWriter())
	defer func() { require.NoError(t, p.UnregisterEventWriter()) }()

	stream := &fakeStream{}
	_, err := p.SubscribeOnChange(mustPath(t, "/interfaces/interface[name=interface-1]/state/oper-status"), stream)
	require.NoError(t, err)

	require.True(t, sw.emit(&events.PortOperStateChangedEvent{
		NodeID: testNodeID, PortID: testPortID, State: events.PortStateDown,
	}))
	require.Eventually(t, func() bool { return stream.updateCount() == 1 },
		time.Second, time.Millisecond)
	assert.Equal(t, "DOWN", stream.firstValue().GetStringVal())
}

func TestSubscribePeriodicDelivers(t *testing.T) {
	p, sw := newTestPublisher(t)
	sw.retrieve = func(req *backend.DataRequest, w backend.ValueWriter) error {
		w.Write(&backend.DataResponse{PortCounters: &events.PortCounters{InOctets: 5}})
		return nil
	}

	stream := &fakeStream{}
	h, err := p.SubscribePeriodic(Frequency{Delay: time.Millisecond, Period: 5 * time.Millisecond},
		mustPath(t, "/interfaces/interface[name=interface-1]/state/counters/in-octets"), stream)
	require.NoError(t, err)
	defer p.UnSubscribe(h)

	require.Eventually(t, func() bool { return stream.updateCount() >= 2 },
		time.Second, time.Millisecond)
	assert.Equal(t, uint64(5), stream.firstValue().GetUintVal())
}

func TestHandlePollSwallowsHandlerErrors(t *testing.T) {
	p, _ := newTestPublisher(t)

	stream := &fakeStream{err: errors.New("client went away")}
	h, err := p.SubscribePoll(mustPath(t, "/interfaces/interface[name=interface-1]/state/name"), stream)
	require.NoError(t, err)

	assert.NoError(t, p.HandlePoll(h))
}

func TestSendSyncResponse(t *testing.T) {
	p, _ := newTestPublisher(t)

	stream := &fakeStream{}
	require.NoError(t, p.SendSyncResponse(stream))
	require.Len(t, stream.responses, 1)
	assert.True(t, stream.responses[0].GetSyncResponse())

	err := p.SendSyncResponse(nil)
	assert.Equal(t, codes.Internal, status.Code(err))

	broken := &fakeStream{err: errors.New("write failed")}
	err = p.SendSyncResponse(broken)
	assert.Equal(t, codes.Internal, status.Code(err))
}

func TestUpdateSubscriptionTargetDefinedMode(t *testing.T) {
	p, _ := newTestPublisher(t)

	sub := &gpb.Subscription{}
	require.NoError(t, p.UpdateSubscriptionWithTargetSpecificModeSpecification(
		mustPath(t, "/interfaces/interface[name=interface-1]/state/counters"), sub))
	assert.Equal(t, gpb.SubscriptionMode_SAMPLE, sub.GetMode())
	assert.Equal(t, uint64(10000), sub.GetSampleInterval())

	sub = &gpb.Subscription{}
	require.NoError(t, p.UpdateSubscriptionWithTargetSpecificModeSpecification(
		mustPath(t, "/interfaces/interface[name=interface-1]/state/oper-status"), sub))
	assert.NotEqual(t, gpb.SubscriptionMode_SAMPLE, sub.GetMode())
}

func TestPollOnce(t *testing.T) {
	p, sw := newTestPublisher(t)
	sw.retrieve = func(req *backend.DataRequest, w backend.ValueWriter) error {
		w.Write(&backend.DataResponse{OperStatus: events.PortStateUp})
		return nil
	}

	stream := &fakeStream{}
	require.NoError(t, p.PollOnce(mustPath(t, "/interfaces/interface[name=interface-1]/state/oper-status"), stream))
	require.Equal(t, 1, stream.updateCount())
	assert.Equal(t, "UP", stream.firstValue().GetStringVal())
}
