// SPDX-FileCopyrightText: 2020-present Open Networking Foundation <info@opennetworking.org>
//
// SPDX-License-Identifier: Apache-2.0

package tree

import (
	gpb "github.com/openconfig/gnmi/proto/gnmi"

	"github.com/onosproject/switch-agent/pkg/backend"
	"github.com/onosproject/switch-agent/pkg/events"
)

// queueCounterLeaves maps queue counter leaf names to their accessor.
var queueCounterLeaves = []struct {
	name string
	get  func(c *events.QueueCounters) uint64
}{
	{"transmit-pkts", func(c *events.QueueCounters) uint64 { return c.TransmitPkts }},
	{"transmit-octets", func(c *events.QueueCounters) uint64 { return c.TransmitOctets }},
	{"dropped-pkts", func(c *events.QueueCounters) uint64 { return c.DroppedPkts }},
}

// buildQueueSubtree instantiates the state subtree of one egress queue at
// /qos/interfaces/interface[name=...]/output/queues/queue[name=...], bound
// to the port and queue identity.
func (t *ParseTree) buildQueueSubtree(inst *TreeNode, port backend.Port, q backend.QueueConfig) {
	state := inst.child("state")

	name := state.child("name")
	setUpLeaf(name,
		constFactory(name, strVal(q.Name)),
		changeFactory(name, ignoreChanges),
		false)

	id := state.child("id")
	setUpLeaf(id,
		constFactory(id, uintVal(uint64(q.ID))),
		changeFactory(id, ignoreChanges),
		false)

	for _, leaf := range queueCounterLeaves {
		get := leaf.get
		n := state.child(leaf.name)
		setUpLeaf(n,
			t.retrieveFactory(n,
				backend.DataRequest{
					Field:   backend.FieldQueueCounters,
					NodeID:  port.NodeID,
					PortID:  port.ID,
					QueueID: q.ID,
				},
				func(resp *backend.DataResponse) (*gpb.TypedValue, bool) {
					if resp.QueueCounters == nil {
						return nil, false
					}
					return uintVal(get(resp.QueueCounters)), true
				}),
			changeFactory(n, func(e events.Event) (*gpb.TypedValue, bool) {
				ev, ok := e.(*events.PortQosCountersChangedEvent)
				if !ok || !matchesPort(port, ev.NodeID, ev.PortID) || ev.Counters.QueueID != q.ID {
					return nil, false
				}
				return uintVal(get(&ev.Counters)), true
			}),
			true,
			&events.PortQosCountersChangedEvent{})
	}
}
