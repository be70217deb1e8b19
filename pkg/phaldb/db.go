// SPDX-FileCopyrightText: 2020-present Open Networking Foundation <info@opennetworking.org>
//
// SPDX-License-Identifier: Apache-2.0

// Package phaldb exposes the platform attribute database over a local
// gNMI-shaped service: attribute query, attribute set, and polled
// subscription with server-side lifecycle bound to the client stream.
package phaldb

import (
	"fmt"
	"strings"
	"time"
)

// PathEntry addresses one level of the attribute database. Indexed entries
// select one instance of a repeated group; All selects every instance.
// TerminalGroup stops descent and returns the whole group.
type PathEntry struct {
	Name          string
	Index         int
	Indexed       bool
	All           bool
	TerminalGroup bool
}

// Path addresses an attribute or attribute group in the database.
type Path []PathEntry

// String renders the path in the query form used as attribute map key.
func (p Path) String() string {
	var b strings.Builder
	for i, e := range p {
		if i > 0 {
			b.WriteByte('/')
		}
		b.WriteString(e.Name)
		switch {
		case e.All:
			b.WriteString("[*]")
		case e.Indexed:
			fmt.Fprintf(&b, "[%d]", e.Index)
		}
	}
	return b.String()
}

// ValueMap carries attribute updates keyed by the string form of their
// path. Values are one of the supported scalar kinds.
type ValueMap map[string]interface{}

// Snapshot is a serialized dump of the queried part of the database.
type Snapshot []byte

// SnapshotWriter receives database snapshots produced by a subscription.
// Write reports whether the snapshot was accepted; the database stops
// writing once it returns false.
type SnapshotWriter interface {
	Write(s Snapshot) bool
}

// AttributeDatabase is the platform attribute database the service
// fronts. Implementations must be safe for concurrent use.
type AttributeDatabase interface {
	Get(paths []Path) (Snapshot, error)
	Set(values ValueMap) error
	Subscribe(paths []Path, w SnapshotWriter, pollInterval time.Duration) error
}
