// SPDX-FileCopyrightText: 2020-present Open Networking Foundation <info@opennetworking.org>
//
// SPDX-License-Identifier: Apache-2.0

package backend

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/onosproject/switch-agent/pkg/events"
)

type collectingWriter struct {
	mu   sync.Mutex
	seen []events.Event
}

func (w *collectingWriter) Write(e events.Event) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.seen = append(w.seen, e)
	return true
}

func (w *collectingWriter) count() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.seen)
}

func testPort() Port {
	return Port{Name: "port-1", NodeID: 1, ID: 1, SpeedBps: events.SpeedBps25Gb}
}

func TestSimRetrieveValue(t *testing.T) {
	sim := NewSim()
	sim.AddPort(testPort(), NodeConfig{Queues: []QueueConfig{{ID: 0, Name: "BE1"}}})

	var resp *DataResponse
	w := ValueWriterFunc(func(r *DataResponse) bool { resp = r; return true })

	require.NoError(t, sim.RetrieveValue(1, &DataRequest{Field: FieldOperStatus, PortID: 1}, w))
	assert.Equal(t, events.PortStateUp, resp.OperStatus)

	require.NoError(t, sim.RetrieveValue(1, &DataRequest{Field: FieldPortSpeed, PortID: 1}, w))
	assert.Equal(t, events.SpeedBps25Gb, resp.SpeedBps)

	require.NoError(t, sim.RetrieveValue(1, &DataRequest{Field: FieldQueueCounters, PortID: 1, QueueID: 0}, w))
	require.NotNil(t, resp.QueueCounters)

	assert.Error(t, sim.RetrieveValue(1, &DataRequest{Field: FieldOperStatus, PortID: 99}, w))
}

func TestSimAlarmRetrievalNeedsNoPort(t *testing.T) {
	sim := NewSim()

	var resp *DataResponse
	w := ValueWriterFunc(func(r *DataResponse) bool { resp = r; return true })
	require.NoError(t, sim.RetrieveValue(1, &DataRequest{Field: FieldMemoryErrorAlarm}, w))
	require.NotNil(t, resp.Alarm)
	assert.False(t, resp.Alarm.Status)
}

func TestSimEmitsCounterEvents(t *testing.T) {
	sim := NewSim()
	sim.AddPort(testPort(), NodeConfig{Queues: []QueueConfig{{ID: 0, Name: "BE1"}}})

	w := &collectingWriter{}
	require.NoError(t, sim.RegisterEventNotifyWriter(w))

	sim.Start(5 * time.Millisecond)

	require.Eventually(t, func() bool { return w.count() >= 4 },
		time.Second, time.Millisecond)

	sim.Stop()
	require.NoError(t, sim.UnregisterEventNotifyWriter())
	time.Sleep(20 * time.Millisecond)
	n := w.count()
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, n, w.count())
}
