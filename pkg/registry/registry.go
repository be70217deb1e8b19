// SPDX-FileCopyrightText: 2020-present Open Networking Foundation <info@opennetworking.org>
//
// SPDX-License-Identifier: Apache-2.0

// Package registry keeps, per event variant, the set of subscription
// records interested in that variant and fans incoming events out to them.
package registry

import (
	"reflect"
	"sync"

	"github.com/onosproject/onos-lib-go/pkg/logging"

	"github.com/onosproject/switch-agent/pkg/events"
)

var log = logging.GetLogger("registry")

// Record is one registered subscriber. Records are owned by the publisher;
// the registry only observes them. A record that reports Active() == false
// is skipped and lazily removed on the next dispatch, so dropping a
// subscription never requires walking the registries eagerly.
type Record interface {
	Invoke(e events.Event) error
	Active() bool
}

// Registry maps event variants to their subscriber lists. Within one
// variant, records are delivered in registration order.
type Registry struct {
	mu       sync.RWMutex
	handlers map[reflect.Type][]Record
}

// New creates an empty Registry.
func New() *Registry {
	return &Registry{
		handlers: make(map[reflect.Type][]Record),
	}
}

func eventType(e events.Event) reflect.Type {
	t := reflect.TypeOf(e)
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t
}

// Register adds rec to the subscriber list of the variant of proto.
// Registering the same record twice for one variant is a no-op, so a
// subscription that covers many leaves interested in the same variant
// still receives each event exactly once.
func (r *Registry) Register(proto events.Event, rec Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	typ := eventType(proto)
	for _, existing := range r.handlers[typ] {
		if existing == rec {
			return nil
		}
	}
	r.handlers[typ] = append(r.handlers[typ], rec)
	return nil
}

// Unregister removes rec from the subscriber list of the variant of proto.
func (r *Registry) Unregister(proto events.Event, rec Record) {
	r.mu.Lock()
	defer r.mu.Unlock()
	typ := eventType(proto)
	list := r.handlers[typ]
	for i, existing := range list {
		if existing == rec {
			r.handlers[typ] = append(list[:i:i], list[i+1:]...)
			return
		}
	}
}

// Dispatch delivers e to every active record registered for its variant.
// Handler errors are logged and swallowed; one failing subscriber must not
// block the others. Records that are no longer active are pruned.
func (r *Registry) Dispatch(e events.Event) {
	typ := eventType(e)

	r.mu.RLock()
	list := r.handlers[typ]
	snapshot := make([]Record, len(list))
	copy(snapshot, list)
	r.mu.RUnlock()

	stale := false
	for _, rec := range snapshot {
		if !rec.Active() {
			stale = true
			continue
		}
		if err := rec.Invoke(e); err != nil {
			log.Errorf("handler for %s event returned error: %v", e.Kind(), err)
		}
	}
	if stale {
		r.prune(typ)
	}
}

func (r *Registry) prune(typ reflect.Type) {
	r.mu.Lock()
	defer r.mu.Unlock()
	list := r.handlers[typ]
	kept := list[:0]
	for _, rec := range list {
		if rec.Active() {
			kept = append(kept, rec)
		}
	}
	r.handlers[typ] = kept
}

// CountFor returns the number of records registered for the variant of
// proto. Inactive records still pending lazy removal are not counted.
func (r *Registry) CountFor(proto events.Event) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	n := 0
	for _, rec := range r.handlers[eventType(proto)] {
		if rec.Active() {
			n++
		}
	}
	return n
}
