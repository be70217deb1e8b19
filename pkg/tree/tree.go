// SPDX-FileCopyrightText: 2020-present Open Networking Foundation <info@opennetworking.org>
//
// SPDX-License-Identifier: Apache-2.0

package tree

import (
	"fmt"
	"sync"

	"github.com/onosproject/onos-lib-go/pkg/logging"
	gpb "github.com/openconfig/gnmi/proto/gnmi"

	"github.com/onosproject/switch-agent/pkg/backend"
	"github.com/onosproject/switch-agent/pkg/events"
	"github.com/onosproject/switch-agent/pkg/registry"
)

var log = logging.GetLogger("tree")

// ParseTree owns the root of the schema tree and the locked mutators that
// extend it as ports and chassis components are configured.
type ParseTree struct {
	// mu guards schema mutation and any action that traverses the tree.
	mu   sync.Mutex
	root *TreeNode

	backend  backend.Backend
	registry *registry.Registry
}

// New builds the parse tree with the static wildcard schema: the template
// subtrees under interface[name=*], queue[name=*] and component[name=*]
// that every concrete instance added later is mirrored from.
func New(b backend.Backend, reg *registry.Registry) *ParseTree {
	t := &ParseTree{
		backend:  b,
		registry: reg,
	}
	t.root = newNode("", nil, t)

	wildcardPort := backend.Port{Name: wildcardKey}
	t.buildInterfaceSubtree(t.interfaceInstance(wildcardPort.Name), wildcardPort)
	t.buildLacpSubtree(t.lacpInstance(wildcardPort.Name), wildcardPort)
	t.buildQueueSubtree(
		t.queueInstance(wildcardPort.Name, wildcardKey),
		wildcardPort, backend.QueueConfig{Name: wildcardKey})
	t.buildAlarmsSubtree(t.componentInstance(wildcardKey))
	return t
}

// Root returns the immortal root node.
func (t *ParseTree) Root() *TreeNode { return t.root }

// FindNodeOrNull resolves path from the root.
func (t *ParseTree) FindNodeOrNull(path *gpb.Path) *TreeNode {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.root.FindNodeOrNull(path)
}

// interfaceInstance returns /interfaces/interface[name=<name>], creating
// the spine as needed.
func (t *ParseTree) interfaceInstance(name string) *TreeNode {
	return t.root.child("interfaces").keyedChild("interface", "name").instance(name)
}

// lacpInstance returns /lacp/interfaces/interface[name=<name>].
func (t *ParseTree) lacpInstance(name string) *TreeNode {
	return t.root.child("lacp").child("interfaces").keyedChild("interface", "name").instance(name)
}

// queueInstance returns
// /qos/interfaces/interface[name=<ifName>]/output/queues/queue[name=<queueName>].
func (t *ParseTree) queueInstance(ifName, queueName string) *TreeNode {
	return t.root.child("qos").child("interfaces").keyedChild("interface", "name").
		instance(ifName).child("output").child("queues").
		keyedChild("queue", "name").instance(queueName)
}

// componentInstance returns /components/component[name=<name>].
func (t *ParseTree) componentInstance(name string) *TreeNode {
	return t.root.child("components").keyedChild("component", "name").instance(name)
}

// AddSubtreeInterfaceFromSingleton instantiates the full per-port schema
// for the given singleton port: the interfaces, lacp and qos subtrees keyed
// by the port name, with every handler bound to the port's node/port
// identity for backend lookup.
func (t *ParseTree) AddSubtreeInterfaceFromSingleton(port backend.Port, cfg backend.NodeConfig) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.buildInterfaceSubtree(t.interfaceInstance(port.Name), port)
	t.buildLacpSubtree(t.lacpInstance(port.Name), port)
	for _, q := range cfg.Queues {
		t.buildQueueSubtree(t.queueInstance(port.Name, q.Name), port, q)
	}
	log.Infof("Added schema subtrees for interface %s (node %d, port %d)",
		port.Name, port.NodeID, port.ID)
}

// AddSubtreeChassis instantiates the chassis alarms subtree for the named
// chassis component.
func (t *ParseTree) AddSubtreeChassis(chassis backend.Chassis) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.buildAlarmsSubtree(t.componentInstance(chassis.Name))
	log.Infof("Added schema subtree for chassis %s", chassis.Name)
}

// PerformActionForAllNonWildcardNodes resolves subpath beneath every
// concrete instance matching basePath and invokes action on the resolved
// node. The first non-nil error short-circuits.
func (t *ParseTree) PerformActionForAllNonWildcardNodes(
	basePath, subpath *gpb.Path, action func(leaf *TreeNode) error) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	base := t.root.FindNodeOrNull(basePath)
	if base == nil {
		return nil
	}
	for _, inst := range base.sortedChildren() {
		if !inst.isNameAKey {
			continue
		}
		if leaf := inst.FindNodeOrNull(subpath); leaf != nil {
			if err := action(leaf); err != nil {
				return err
			}
		}
	}
	return nil
}

// retrieveFactory builds poll/timer handlers: the handler asks the backend
// for the value identified by req, projects the typed scalar out of the
// response and writes it as a single update on the stream.
func (t *ParseTree) retrieveFactory(node *TreeNode, req backend.DataRequest,
	project func(resp *backend.DataResponse) (*gpb.TypedValue, bool)) HandlerFactory {
	return func() Handler {
		return func(e events.Event, stream Stream) error {
			var val *gpb.TypedValue
			w := backend.ValueWriterFunc(func(resp *backend.DataResponse) bool {
				if v, ok := project(resp); ok {
					val = v
				}
				return true
			})
			r := req
			if err := t.backend.RetrieveValue(req.NodeID, &r, w); err != nil {
				return err
			}
			if val == nil {
				return fmt.Errorf("backend returned no value for %s", node.name)
			}
			return sendUpdate(stream, node.GetPath(), val)
		}
	}
}

// constFactory builds poll/timer handlers for leaves whose value is fixed
// at schema instantiation time, such as the interface name.
func constFactory(node *TreeNode, val *gpb.TypedValue) HandlerFactory {
	return func() Handler {
		return func(e events.Event, stream Stream) error {
			return sendUpdate(stream, node.GetPath(), val)
		}
	}
}

// changeFactory builds change handlers: project returns the typed value
// when the event matches this leaf, and false for any other event, in
// which case the handler stays silent.
func changeFactory(node *TreeNode, project func(e events.Event) (*gpb.TypedValue, bool)) HandlerFactory {
	return func() Handler {
		return func(e events.Event, stream Stream) error {
			val, ok := project(e)
			if !ok {
				return nil
			}
			return sendUpdate(stream, node.GetPath(), val)
		}
	}
}

// ignoreChanges is the projection for leaves that support change delivery
// but have no backing event variant.
func ignoreChanges(events.Event) (*gpb.TypedValue, bool) { return nil, false }

// setUpLeaf wires the handler factories and capability flags of a leaf.
// The timer handler, when enabled, is the poll handler driven by the timer
// daemon. regs lists the event variants the leaf registers for on change
// subscriptions.
func setUpLeaf(n *TreeNode, onPoll, onChange HandlerFactory, withTimer bool, regs ...events.Event) *TreeNode {
	n.onPollFactory = onPoll
	n.supportsOnPoll = onPoll != nil
	n.onChangeFactory = onChange
	n.supportsOnChange = onChange != nil
	if withTimer {
		n.onTimerFactory = onPoll
		n.supportsOnTimer = onPoll != nil
	}
	n.registrations = regs
	return n
}
