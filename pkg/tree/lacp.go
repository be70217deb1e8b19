// SPDX-FileCopyrightText: 2020-present Open Networking Foundation <info@opennetworking.org>
//
// SPDX-License-Identifier: Apache-2.0

package tree

import (
	gpb "github.com/openconfig/gnmi/proto/gnmi"

	"github.com/onosproject/switch-agent/pkg/backend"
	"github.com/onosproject/switch-agent/pkg/events"
)

// buildLacpSubtree instantiates /lacp/interfaces/interface[name=...] below
// inst, bound to port's identity.
func (t *ParseTree) buildLacpSubtree(inst *TreeNode, port backend.Port) {
	state := inst.child("state")

	priority := state.child("system-priority")
	setUpLeaf(priority,
		t.retrieveFactory(priority,
			backend.DataRequest{Field: backend.FieldLacpSystemPriority, NodeID: port.NodeID, PortID: port.ID},
			func(resp *backend.DataResponse) (*gpb.TypedValue, bool) {
				return uintVal(uint64(resp.LacpSystemPriority)), true
			}),
		changeFactory(priority, func(e events.Event) (*gpb.TypedValue, bool) {
			ev, ok := e.(*events.PortLacpSystemPriorityChangedEvent)
			if !ok || !matchesPort(port, ev.NodeID, ev.PortID) {
				return nil, false
			}
			return uintVal(uint64(ev.Priority)), true
		}),
		true,
		&events.PortLacpSystemPriorityChangedEvent{})

	systemID := state.child("system-id-mac")
	setUpLeaf(systemID,
		t.retrieveFactory(systemID,
			backend.DataRequest{Field: backend.FieldLacpSystemIDMac, NodeID: port.NodeID, PortID: port.ID},
			func(resp *backend.DataResponse) (*gpb.TypedValue, bool) {
				return strVal(events.MacToString(resp.LacpSystemIDMac)), true
			}),
		changeFactory(systemID, func(e events.Event) (*gpb.TypedValue, bool) {
			ev, ok := e.(*events.PortLacpSystemIDMacChangedEvent)
			if !ok || !matchesPort(port, ev.NodeID, ev.PortID) {
				return nil, false
			}
			return strVal(events.MacToString(ev.Mac)), true
		}),
		true,
		&events.PortLacpSystemIDMacChangedEvent{})
}
