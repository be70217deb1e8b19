// SPDX-FileCopyrightText: 2020-present Open Networking Foundation <info@opennetworking.org>
//
// SPDX-License-Identifier: Apache-2.0

package tree

import (
	gpb "github.com/openconfig/gnmi/proto/gnmi"

	"github.com/onosproject/switch-agent/pkg/backend"
	"github.com/onosproject/switch-agent/pkg/events"
)

// alarmKinds describes the chassis alarms the components subtree exposes.
var alarmKinds = []struct {
	name  string
	field backend.Field
	proto events.Event
	match func(e events.Event) (*events.Alarm, bool)
}{
	{
		name:  "memory-error",
		field: backend.FieldMemoryErrorAlarm,
		proto: &events.MemoryErrorAlarm{},
		match: func(e events.Event) (*events.Alarm, bool) {
			ev, ok := e.(*events.MemoryErrorAlarm)
			if !ok {
				return nil, false
			}
			return &ev.Alarm, true
		},
	},
	{
		name:  "flow-programming-exception",
		field: backend.FieldFlowProgrammingExceptionAlarm,
		proto: &events.FlowProgrammingExceptionAlarm{},
		match: func(e events.Event) (*events.Alarm, bool) {
			ev, ok := e.(*events.FlowProgrammingExceptionAlarm)
			if !ok {
				return nil, false
			}
			return &ev.Alarm, true
		},
	},
}

// alarmLeaves maps alarm leaf names to the projection of the alarm state
// they expose. Note that the alarm description is published on the "info"
// leaf.
var alarmLeaves = []struct {
	name string
	get  func(a *events.Alarm) *gpb.TypedValue
}{
	{"info", func(a *events.Alarm) *gpb.TypedValue { return strVal(a.Description) }},
	{"severity", func(a *events.Alarm) *gpb.TypedValue { return strVal(a.Severity.String()) }},
	{"status", func(a *events.Alarm) *gpb.TypedValue { return boolVal(a.Status) }},
	{"time-created", func(a *events.Alarm) *gpb.TypedValue { return uintVal(a.TimeCreated) }},
}

// buildAlarmsSubtree instantiates /components/component[name=...]/chassis/alarms
// below inst. Each alarm node is an interior node over its four state
// leaves; subscribing the alarm node itself fans out one write per leaf.
func (t *ParseTree) buildAlarmsSubtree(inst *TreeNode) {
	alarms := inst.child("chassis").child("alarms")

	for _, kind := range alarmKinds {
		field, proto, match := kind.field, kind.proto, kind.match
		alarm := alarms.child(kind.name)
		for _, leaf := range alarmLeaves {
			get := leaf.get
			n := alarm.child(leaf.name)
			setUpLeaf(n,
				t.retrieveFactory(n,
					backend.DataRequest{Field: field},
					func(resp *backend.DataResponse) (*gpb.TypedValue, bool) {
						if resp.Alarm == nil {
							return nil, false
						}
						return get(resp.Alarm), true
					}),
				changeFactory(n, func(e events.Event) (*gpb.TypedValue, bool) {
					a, ok := match(e)
					if !ok {
						return nil, false
					}
					return get(a), true
				}),
				false,
				proto)
		}
	}
}
