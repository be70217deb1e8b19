// SPDX-FileCopyrightText: 2020-present Open Networking Foundation <info@opennetworking.org>
//
// SPDX-License-Identifier: Apache-2.0

// Package backend defines the contract between the telemetry layer and the
// switch backend that owns the hardware state. The backend is opaque to the
// rest of the agent; it is accessed solely through value retrieval and the
// event notify writer.
package backend

import (
	"github.com/onosproject/switch-agent/pkg/events"
)

// Field selects which piece of hardware state a DataRequest asks for.
type Field int

// Values of the Field enumeration.
const (
	FieldUnknown Field = iota
	FieldOperStatus
	FieldAdminStatus
	FieldMacAddress
	FieldPortSpeed
	FieldNegotiatedPortSpeed
	FieldLacpSystemPriority
	FieldLacpSystemIDMac
	FieldPortCounters
	FieldQueueCounters
	FieldMemoryErrorAlarm
	FieldFlowProgrammingExceptionAlarm
)

// DataRequest identifies one value to retrieve: the field selector plus the
// node, port and (for queue counters) queue the value belongs to.
type DataRequest struct {
	Field   Field
	NodeID  uint64
	PortID  uint32
	QueueID uint32
}

// DataResponse carries the retrieved value. Only the field matching the
// request is populated.
type DataResponse struct {
	OperStatus         events.PortState
	AdminStatus        events.AdminState
	MacAddress         uint64
	SpeedBps           uint64
	NegotiatedSpeedBps uint64
	LacpSystemPriority uint32
	LacpSystemIDMac    uint64
	PortCounters       *events.PortCounters
	QueueCounters      *events.QueueCounters
	Alarm              *events.Alarm
}

// ValueWriter receives DataResponse messages produced by RetrieveValue.
// Write reports whether the response was accepted; the backend stops
// writing once it returns false.
type ValueWriter interface {
	Write(resp *DataResponse) bool
}

// ValueWriterFunc adapts a function to the ValueWriter interface.
type ValueWriterFunc func(resp *DataResponse) bool

// Write implements ValueWriter.
func (f ValueWriterFunc) Write(resp *DataResponse) bool { return f(resp) }

// Backend is the switch-local value and event provider.
//
// RetrieveValue invokes the writer synchronously, before returning.
// RegisterEventNotifyWriter installs the writer all backend-originated
// events are pushed into; UnregisterEventNotifyWriter removes it.
// Implementations must be safe for concurrent use.
type Backend interface {
	RetrieveValue(nodeID uint64, req *DataRequest, w ValueWriter) error
	RegisterEventNotifyWriter(w events.Writer) error
	UnregisterEventNotifyWriter() error
}

// Port describes one singleton port of the switch.
type Port struct {
	Name     string
	NodeID   uint64
	ID       uint32
	SpeedBps uint64
}

// QueueConfig describes one egress queue configured on a node.
type QueueConfig struct {
	ID   uint32
	Name string
}

// NodeConfig carries the per-node configuration the schema needs when a
// port subtree is instantiated.
type NodeConfig struct {
	Queues []QueueConfig
}

// Chassis describes the chassis component of the switch.
type Chassis struct {
	Name string
}
