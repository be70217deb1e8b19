// SPDX-FileCopyrightText: 2020-present Open Networking Foundation <info@opennetworking.org>
//
// SPDX-License-Identifier: Apache-2.0

package events

// Severity classifies how serious an alarm is.
type Severity int32

// Values of the Severity enumeration.
const (
	SeverityUnknown Severity = iota
	SeverityMinor
	SeverityWarning
	SeverityCritical
)

// String returns the canonical gNMI form of the severity.
func (s Severity) String() string {
	switch s {
	case SeverityMinor:
		return "MINOR"
	case SeverityWarning:
		return "WARNING"
	case SeverityCritical:
		return "CRITICAL"
	default:
		return "UNKNOWN"
	}
}

// Alarm is the state shared by all chassis alarms. Status is true while
// the alarm is raised.
type Alarm struct {
	TimeCreated uint64
	Description string
	Severity    Severity
	Status      bool
}

// MemoryErrorAlarm is raised when the chassis detects a memory error.
type MemoryErrorAlarm struct {
	Alarm
}

// NewMemoryErrorAlarm returns a raised critical memory-error alarm.
func NewMemoryErrorAlarm(timeCreated uint64, description string) *MemoryErrorAlarm {
	return &MemoryErrorAlarm{Alarm{
		TimeCreated: timeCreated,
		Description: description,
		Severity:    SeverityCritical,
		Status:      true,
	}}
}

// Kind implements Event.
func (*MemoryErrorAlarm) Kind() string { return "memory-error-alarm" }

// FlowProgrammingExceptionAlarm is raised when programming a flow into the
// forwarding pipeline fails.
type FlowProgrammingExceptionAlarm struct {
	Alarm
}

// NewFlowProgrammingExceptionAlarm returns a raised critical
// flow-programming-exception alarm.
func NewFlowProgrammingExceptionAlarm(timeCreated uint64, description string) *FlowProgrammingExceptionAlarm {
	return &FlowProgrammingExceptionAlarm{Alarm{
		TimeCreated: timeCreated,
		Description: description,
		Severity:    SeverityCritical,
		Status:      true,
	}}
}

// Kind implements Event.
func (*FlowProgrammingExceptionAlarm) Kind() string { return "flow-programming-exception-alarm" }
