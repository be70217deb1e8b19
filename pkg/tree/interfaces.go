// SPDX-FileCopyrightText: 2020-present Open Networking Foundation <info@opennetworking.org>
//
// SPDX-License-Identifier: Apache-2.0

package tree

import (
	gpb "github.com/openconfig/gnmi/proto/gnmi"

	"github.com/onosproject/switch-agent/pkg/backend"
	"github.com/onosproject/switch-agent/pkg/events"
)

// counterSampleIntervalMs is the sample interval the server assigns to
// counter subtrees subscribed in TARGET_DEFINED mode.
const counterSampleIntervalMs = 10000

// portCounterLeaves maps counter leaf names to their accessor.
var portCounterLeaves = []struct {
	name string
	get  func(c *events.PortCounters) uint64
}{
	{"in-octets", func(c *events.PortCounters) uint64 { return c.InOctets }},
	{"out-octets", func(c *events.PortCounters) uint64 { return c.OutOctets }},
	{"in-unicast-pkts", func(c *events.PortCounters) uint64 { return c.InUnicastPkts }},
	{"out-unicast-pkts", func(c *events.PortCounters) uint64 { return c.OutUnicastPkts }},
	{"in-broadcast-pkts", func(c *events.PortCounters) uint64 { return c.InBroadcastPkts }},
	{"out-broadcast-pkts", func(c *events.PortCounters) uint64 { return c.OutBroadcastPkts }},
	{"in-multicast-pkts", func(c *events.PortCounters) uint64 { return c.InMulticastPkts }},
	{"out-multicast-pkts", func(c *events.PortCounters) uint64 { return c.OutMulticastPkts }},
	{"in-discards", func(c *events.PortCounters) uint64 { return c.InDiscards }},
	{"out-discards", func(c *events.PortCounters) uint64 { return c.OutDiscards }},
	{"in-errors", func(c *events.PortCounters) uint64 { return c.InErrors }},
	{"out-errors", func(c *events.PortCounters) uint64 { return c.OutErrors }},
	{"in-fcs-errors", func(c *events.PortCounters) uint64 { return c.InFcsErrors }},
	{"in-unknown-protos", func(c *events.PortCounters) uint64 { return c.InUnknownProtos }},
}

func matchesPort(port backend.Port, nodeID uint64, portID uint32) bool {
	return nodeID == port.NodeID && portID == port.ID
}

// buildInterfaceSubtree instantiates the /interfaces/interface[name=...]
// schema below inst, with every handler bound to port's identity.
func (t *ParseTree) buildInterfaceSubtree(inst *TreeNode, port backend.Port) {
	state := inst.child("state")

	ifindex := state.child("ifindex")
	setUpLeaf(ifindex,
		constFactory(ifindex, uintVal(uint64(port.ID))),
		changeFactory(ifindex, ignoreChanges),
		false)

	name := state.child("name")
	setUpLeaf(name,
		constFactory(name, strVal(port.Name)),
		changeFactory(name, ignoreChanges),
		false)

	operStatus := state.child("oper-status")
	setUpLeaf(operStatus,
		t.retrieveFactory(operStatus,
			backend.DataRequest{Field: backend.FieldOperStatus, NodeID: port.NodeID, PortID: port.ID},
			func(resp *backend.DataResponse) (*gpb.TypedValue, bool) {
				return strVal(resp.OperStatus.String()), true
			}),
		changeFactory(operStatus, func(e events.Event) (*gpb.TypedValue, bool) {
			ev, ok := e.(*events.PortOperStateChangedEvent)
			if !ok || !matchesPort(port, ev.NodeID, ev.PortID) {
				return nil, false
			}
			return strVal(ev.State.String()), true
		}),
		true,
		&events.PortOperStateChangedEvent{})

	adminStatus := state.child("admin-status")
	setUpLeaf(adminStatus,
		t.retrieveFactory(adminStatus,
			backend.DataRequest{Field: backend.FieldAdminStatus, NodeID: port.NodeID, PortID: port.ID},
			func(resp *backend.DataResponse) (*gpb.TypedValue, bool) {
				return strVal(resp.AdminStatus.String()), true
			}),
		changeFactory(adminStatus, func(e events.Event) (*gpb.TypedValue, bool) {
			ev, ok := e.(*events.PortAdminStateChangedEvent)
			if !ok || !matchesPort(port, ev.NodeID, ev.PortID) {
				return nil, false
			}
			return strVal(ev.State.String()), true
		}),
		true,
		&events.PortAdminStateChangedEvent{})

	t.addMacAddressLeaf(state.child("mac-address"), port)

	counters := state.child("counters")
	counters.SetTargetDefinedMode(func(sub *gpb.Subscription) error {
		sub.Mode = gpb.SubscriptionMode_SAMPLE
		sub.SampleInterval = counterSampleIntervalMs
		return nil
	})
	for _, leaf := range portCounterLeaves {
		get := leaf.get
		n := counters.child(leaf.name)
		setUpLeaf(n,
			t.retrieveFactory(n,
				backend.DataRequest{Field: backend.FieldPortCounters, NodeID: port.NodeID, PortID: port.ID},
				func(resp *backend.DataResponse) (*gpb.TypedValue, bool) {
					if resp.PortCounters == nil {
						return nil, false
					}
					return uintVal(get(resp.PortCounters)), true
				}),
			changeFactory(n, func(e events.Event) (*gpb.TypedValue, bool) {
				ev, ok := e.(*events.PortCountersChangedEvent)
				if !ok || !matchesPort(port, ev.NodeID, ev.PortID) {
					return nil, false
				}
				return uintVal(get(&ev.Counters)), true
			}),
			true,
			&events.PortCountersChangedEvent{})
	}

	ethernet := inst.child("ethernet")
	ethState := ethernet.child("state")
	ethConfig := ethernet.child("config")

	t.addMacAddressLeaf(ethState.child("mac-address"), port)
	t.addMacAddressLeaf(ethConfig.child("mac-address"), port)
	t.addPortSpeedLeaf(ethState.child("port-speed"), port)
	t.addPortSpeedLeaf(ethConfig.child("port-speed"), port)
	t.addNegotiatedSpeedLeaf(ethState.child("negotiated-port-speed"), port)
	t.addNegotiatedSpeedLeaf(ethConfig.child("negotiated-port-speed"), port)
}

func (t *ParseTree) addNegotiatedSpeedLeaf(n *TreeNode, port backend.Port) {
	setUpLeaf(n,
		t.retrieveFactory(n,
			backend.DataRequest{Field: backend.FieldNegotiatedPortSpeed, NodeID: port.NodeID, PortID: port.ID},
			func(resp *backend.DataResponse) (*gpb.TypedValue, bool) {
				return strVal(events.SpeedToString(resp.NegotiatedSpeedBps)), true
			}),
		changeFactory(n, func(e events.Event) (*gpb.TypedValue, bool) {
			ev, ok := e.(*events.PortNegotiatedSpeedBpsChangedEvent)
			if !ok || !matchesPort(port, ev.NodeID, ev.PortID) {
				return nil, false
			}
			return strVal(events.SpeedToString(ev.SpeedBps)), true
		}),
		true,
		&events.PortNegotiatedSpeedBpsChangedEvent{})
}

func (t *ParseTree) addMacAddressLeaf(n *TreeNode, port backend.Port) {
	setUpLeaf(n,
		t.retrieveFactory(n,
			backend.DataRequest{Field: backend.FieldMacAddress, NodeID: port.NodeID, PortID: port.ID},
			func(resp *backend.DataResponse) (*gpb.TypedValue, bool) {
				return strVal(events.MacToString(resp.MacAddress)), true
			}),
		changeFactory(n, func(e events.Event) (*gpb.TypedValue, bool) {
			ev, ok := e.(*events.PortMacAddressChangedEvent)
			if !ok || !matchesPort(port, ev.NodeID, ev.PortID) {
				return nil, false
			}
			return strVal(events.MacToString(ev.Mac)), true
		}),
		true,
		&events.PortMacAddressChangedEvent{})
}

func (t *ParseTree) addPortSpeedLeaf(n *TreeNode, port backend.Port) {
	setUpLeaf(n,
		t.retrieveFactory(n,
			backend.DataRequest{Field: backend.FieldPortSpeed, NodeID: port.NodeID, PortID: port.ID},
			func(resp *backend.DataResponse) (*gpb.TypedValue, bool) {
				return strVal(events.SpeedToString(resp.SpeedBps)), true
			}),
		changeFactory(n, func(e events.Event) (*gpb.TypedValue, bool) {
			ev, ok := e.(*events.PortSpeedBpsChangedEvent)
			if !ok || !matchesPort(port, ev.NodeID, ev.PortID) {
				return nil, false
			}
			return strVal(events.SpeedToString(ev.SpeedBps)), true
		}),
		true,
		&events.PortSpeedBpsChangedEvent{})
}
