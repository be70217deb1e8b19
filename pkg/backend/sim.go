// SPDX-FileCopyrightText: 2020-present Open Networking Foundation <info@opennetworking.org>
//
// SPDX-License-Identifier: Apache-2.0

package backend

import (
	"fmt"
	"sync"
	"time"

	"github.com/onosproject/onos-lib-go/pkg/logging"

	"github.com/onosproject/switch-agent/pkg/events"
)

var log = logging.GetLogger("backend")

type simPort struct {
	port       Port
	operStatus events.PortState
	adminState events.AdminState
	mac        uint64
	negotiated uint64
	lacpPrio   uint32
	lacpMac    uint64
	counters   events.PortCounters
	queues     map[uint32]*events.QueueCounters
}

// Sim is an in-memory switch backend. It serves retrieval requests from a
// port state table and, while started, emits counter events on the
// registered event writer. The agent binary runs on it until a hardware
// backend is wired in; tests drive it directly.
type Sim struct {
	mu     sync.Mutex
	writer events.Writer
	ports  map[uint32]*simPort

	stopOnce sync.Once
	stopped  chan struct{}
}

// NewSim creates a simulated backend with no ports.
func NewSim() *Sim {
	return &Sim{
		ports:   make(map[uint32]*simPort),
		stopped: make(chan struct{}),
	}
}

// AddPort registers a port and its configured queues.
func (s *Sim) AddPort(port Port, cfg NodeConfig) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sp := &simPort{
		port:       port,
		operStatus: events.PortStateUp,
		adminState: events.AdminStateEnabled,
		mac:        0x000000000000 | uint64(port.ID)<<8,
		negotiated: port.SpeedBps,
		lacpPrio:   1,
		lacpMac:    uint64(port.ID) << 8,
		queues:     make(map[uint32]*events.QueueCounters),
	}
	for _, q := range cfg.Queues {
		sp.queues[q.ID] = &events.QueueCounters{QueueID: q.ID}
	}
	s.ports[port.ID] = sp
}

// RetrieveValue implements Backend. The writer is invoked synchronously
// before returning.
func (s *Sim) RetrieveValue(nodeID uint64, req *DataRequest, w ValueWriter) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	resp := &DataResponse{}
	switch req.Field {
	case FieldMemoryErrorAlarm, FieldFlowProgrammingExceptionAlarm:
		resp.Alarm = &events.Alarm{Severity: events.SeverityCritical}
	default:
		sp, ok := s.ports[req.PortID]
		if !ok {
			return fmt.Errorf("unknown port %d on node %d", req.PortID, nodeID)
		}
		switch req.Field {
		case FieldOperStatus:
			resp.OperStatus = sp.operStatus
		case FieldAdminStatus:
			resp.AdminStatus = sp.adminState
		case FieldMacAddress:
			resp.MacAddress = sp.mac
		case FieldPortSpeed:
			resp.SpeedBps = sp.port.SpeedBps
		case FieldNegotiatedPortSpeed:
			resp.NegotiatedSpeedBps = sp.negotiated
		case FieldLacpSystemPriority:
			resp.LacpSystemPriority = sp.lacpPrio
		case FieldLacpSystemIDMac:
			resp.LacpSystemIDMac = sp.lacpMac
		case FieldPortCounters:
			counters := sp.counters
			resp.PortCounters = &counters
		case FieldQueueCounters:
			q, ok := sp.queues[req.QueueID]
			if !ok {
				return fmt.Errorf("unknown queue %d on port %d", req.QueueID, req.PortID)
			}
			counters := *q
			resp.QueueCounters = &counters
		default:
			return fmt.Errorf("unknown field selector %d", req.Field)
		}
	}
	w.Write(resp)
	return nil
}

// RegisterEventNotifyWriter implements Backend.
func (s *Sim) RegisterEventNotifyWriter(w events.Writer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.writer = w
	return nil
}

// UnregisterEventNotifyWriter implements Backend.
func (s *Sim) UnregisterEventNotifyWriter() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.writer = nil
	return nil
}

// Emit pushes an event into the registered writer, if any.
func (s *Sim) Emit(e events.Event) {
	s.mu.Lock()
	w := s.writer
	s.mu.Unlock()
	if w != nil {
		w.Write(e)
	}
}

// Start begins emitting counter events every period until Stop is called.
func (s *Sim) Start(period time.Duration) {
	go func() {
		ticker := time.NewTicker(period)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				s.tick()
			case <-s.stopped:
				return
			}
		}
	}()
	log.Infof("Simulated backend emitting counters every %s", period)
}

// Stop ends event emission.
func (s *Sim) Stop() {
	s.stopOnce.Do(func() { close(s.stopped) })
}

// tick advances every counter and emits the corresponding events.
func (s *Sim) tick() {
	s.mu.Lock()
	var out []events.Event
	for _, sp := range s.ports {
		sp.counters.InOctets += 64
		sp.counters.OutOctets += 64
		sp.counters.InUnicastPkts++
		sp.counters.OutUnicastPkts++
		out = append(out, &events.PortCountersChangedEvent{
			NodeID:   sp.port.NodeID,
			PortID:   sp.port.ID,
			Counters: sp.counters,
		})
		for _, q := range sp.queues {
			q.TransmitPkts++
			q.TransmitOctets += 64
			out = append(out, &events.PortQosCountersChangedEvent{
				NodeID:   sp.port.NodeID,
				PortID:   sp.port.ID,
				Counters: *q,
			})
		}
	}
	w := s.writer
	s.mu.Unlock()
	if w == nil {
		return
	}
	for _, e := range out {
		w.Write(e)
	}
}
