// SPDX-FileCopyrightText: 2020-present Open Networking Foundation <info@opennetworking.org>
//
// SPDX-License-Identifier: Apache-2.0

package events

import "fmt"

// PortState is the operational state of a port.
type PortState int32

// Values of the PortState enumeration.
const (
	PortStateUnknown PortState = iota
	PortStateUp
	PortStateDown
	PortStateFailed
)

// String returns the canonical gNMI form of the state.
func (s PortState) String() string {
	switch s {
	case PortStateUp:
		return "UP"
	case PortStateDown:
		return "DOWN"
	case PortStateFailed:
		return "FAILED"
	default:
		return "UNKNOWN"
	}
}

// AdminState is the administrative state of a port.
type AdminState int32

// Values of the AdminState enumeration.
const (
	AdminStateUnknown AdminState = iota
	AdminStateEnabled
	AdminStateDisabled
)

// String returns the canonical gNMI form of the state.
func (s AdminState) String() string {
	switch s {
	case AdminStateEnabled:
		return "UP"
	case AdminStateDisabled:
		return "DOWN"
	default:
		return "UNKNOWN"
	}
}

// Speed values in bits per second for the port speeds the schema knows a
// canonical name for.
const (
	SpeedBps1Gb   uint64 = 1000000000
	SpeedBps10Gb  uint64 = 10000000000
	SpeedBps25Gb  uint64 = 25000000000
	SpeedBps40Gb  uint64 = 40000000000
	SpeedBps50Gb  uint64 = 50000000000
	SpeedBps100Gb uint64 = 100000000000
)

// SpeedToString converts a speed in bps to its canonical enum name.
// Speeds without a name are reported as SPEED_UNKNOWN_<bps>.
func SpeedToString(speedBps uint64) string {
	switch speedBps {
	case SpeedBps1Gb:
		return "SPEED_1GB"
	case SpeedBps10Gb:
		return "SPEED_10GB"
	case SpeedBps25Gb:
		return "SPEED_25GB"
	case SpeedBps40Gb:
		return "SPEED_40GB"
	case SpeedBps50Gb:
		return "SPEED_50GB"
	case SpeedBps100Gb:
		return "SPEED_100GB"
	default:
		return fmt.Sprintf("SPEED_UNKNOWN_%d", speedBps)
	}
}

// MacToString formats the low 48 bits of mac as a colon-separated MAC
// address string.
func MacToString(mac uint64) string {
	return fmt.Sprintf("%02x:%02x:%02x:%02x:%02x:%02x",
		byte(mac>>40), byte(mac>>32), byte(mac>>24),
		byte(mac>>16), byte(mac>>8), byte(mac))
}

// PortCounters carries the full set of per-port packet and octet counters.
type PortCounters struct {
	InOctets         uint64
	OutOctets        uint64
	InUnicastPkts    uint64
	OutUnicastPkts   uint64
	InBroadcastPkts  uint64
	OutBroadcastPkts uint64
	InMulticastPkts  uint64
	OutMulticastPkts uint64
	InDiscards       uint64
	OutDiscards      uint64
	InErrors         uint64
	OutErrors        uint64
	InFcsErrors      uint64
	InUnknownProtos  uint64
}

// QueueCounters carries the per-queue egress counters.
type QueueCounters struct {
	QueueID        uint32
	TransmitPkts   uint64
	TransmitOctets uint64
	DroppedPkts    uint64
}

// PortOperStateChangedEvent reports a change of the operational state of
// a port.
type PortOperStateChangedEvent struct {
	NodeID uint64
	PortID uint32
	State  PortState
}

// Kind implements Event.
func (*PortOperStateChangedEvent) Kind() string { return "port-oper-state" }

// PortAdminStateChangedEvent reports a change of the administrative state
// of a port.
type PortAdminStateChangedEvent struct {
	NodeID uint64
	PortID uint32
	State  AdminState
}

// Kind implements Event.
func (*PortAdminStateChangedEvent) Kind() string { return "port-admin-state" }

// PortSpeedBpsChangedEvent reports a change of the configured port speed.
type PortSpeedBpsChangedEvent struct {
	NodeID   uint64
	PortID   uint32
	SpeedBps uint64
}

// Kind implements Event.
func (*PortSpeedBpsChangedEvent) Kind() string { return "port-speed" }

// PortNegotiatedSpeedBpsChangedEvent reports a change of the negotiated
// port speed.
type PortNegotiatedSpeedBpsChangedEvent struct {
	NodeID   uint64
	PortID   uint32
	SpeedBps uint64
}

// Kind implements Event.
func (*PortNegotiatedSpeedBpsChangedEvent) Kind() string { return "port-negotiated-speed" }

// PortLacpSystemPriorityChangedEvent reports a change of the LACP system
// priority of a port.
type PortLacpSystemPriorityChangedEvent struct {
	NodeID   uint64
	PortID   uint32
	Priority uint32
}

// Kind implements Event.
func (*PortLacpSystemPriorityChangedEvent) Kind() string { return "port-lacp-priority" }

// PortLacpSystemIDMacChangedEvent reports a change of the LACP system ID
// MAC address of a port.
type PortLacpSystemIDMacChangedEvent struct {
	NodeID uint64
	PortID uint32
	Mac    uint64
}

// Kind implements Event.
func (*PortLacpSystemIDMacChangedEvent) Kind() string { return "port-lacp-system-id" }

// PortMacAddressChangedEvent reports a change of the MAC address of a port.
type PortMacAddressChangedEvent struct {
	NodeID uint64
	PortID uint32
	Mac    uint64
}

// Kind implements Event.
func (*PortMacAddressChangedEvent) Kind() string { return "port-mac-address" }

// PortCountersChangedEvent carries a fresh snapshot of the port counters.
type PortCountersChangedEvent struct {
	NodeID   uint64
	PortID   uint32
	Counters PortCounters
}

// Kind implements Event.
func (*PortCountersChangedEvent) Kind() string { return "port-counters" }

// PortQosCountersChangedEvent carries a fresh snapshot of the counters of
// one egress queue of a port.
type PortQosCountersChangedEvent struct {
	NodeID   uint64
	PortID   uint32
	Counters QueueCounters
}

// Kind implements Event.
func (*PortQosCountersChangedEvent) Kind() string { return "port-qos-counters" }
