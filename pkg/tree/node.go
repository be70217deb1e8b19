// SPDX-FileCopyrightText: 2020-present Open Networking Foundation <info@opennetworking.org>
//
// SPDX-License-Identifier: Apache-2.0

// Package tree implements the schema-driven parse tree the telemetry
// publisher resolves subscription paths against. Nodes mirror the layout
// of the supported management paths; leaves carry the handlers that
// serialize values onto client streams.
package tree

import (
	"sort"

	gpb "github.com/openconfig/gnmi/proto/gnmi"

	"github.com/onosproject/switch-agent/pkg/events"
	"github.com/onosproject/switch-agent/pkg/registry"
)

// wildcardKey is the name of the template instance under a keyed node,
// selected when a path element carries a "*" key or no key at all.
const wildcardKey = "*"

// subtreeWildcard is the path element that stands for the entire subtree
// below the current node.
const subtreeWildcard = "..."

// Stream is the surface of a gNMI subscribe stream the handlers need.
type Stream interface {
	Send(resp *gpb.SubscribeResponse) error
}

// Handler serializes the value carried by (or implied by) an event as a
// typed response on the client stream.
type Handler func(e events.Event, stream Stream) error

// HandlerFactory builds a Handler bound to the identity of its node.
type HandlerFactory func() Handler

// TargetDefinedModeFunc rewrites a subscription whose requested mode is
// TARGET_DEFINED into the mode the server chose for this path.
type TargetDefinedModeFunc func(sub *gpb.Subscription) error

// TreeNode is one node of the parse tree. Interior nodes only route path
// resolution; leaves additionally carry up to three handler factories, one
// per delivery discipline.
type TreeNode struct {
	name     string
	parent   *TreeNode
	children map[string]*TreeNode
	tree     *ParseTree

	// isNameAKey marks instance nodes beneath a keyed node: the node name
	// is the key value and folds into the parent path element.
	isNameAKey bool
	// keyLeafName is set on nodes whose children are keyed instances.
	keyLeafName string

	supportsOnPoll   bool
	supportsOnTimer  bool
	supportsOnChange bool

	onPollFactory   HandlerFactory
	onTimerFactory  HandlerFactory
	onChangeFactory HandlerFactory

	targetDefinedMode TargetDefinedModeFunc

	// registrations lists the event variants this leaf wants delivered
	// when a subscriber asks for change notifications.
	registrations []events.Event
}

func newNode(name string, parent *TreeNode, tree *ParseTree) *TreeNode {
	return &TreeNode{
		name:     name,
		parent:   parent,
		children: make(map[string]*TreeNode),
		tree:     tree,
	}
}

// child returns the named child, creating it if needed.
func (n *TreeNode) child(name string) *TreeNode {
	if c, ok := n.children[name]; ok {
		return c
	}
	c := newNode(name, n, n.tree)
	n.children[name] = c
	return c
}

// keyedChild returns the named child marked as a keyed node whose
// instances are distinguished by the key leaf keyName.
func (n *TreeNode) keyedChild(name, keyName string) *TreeNode {
	c := n.child(name)
	c.keyLeafName = keyName
	return c
}

// instance returns the keyed instance child for the given key value,
// creating it if needed.
func (n *TreeNode) instance(keyValue string) *TreeNode {
	c := n.child(keyValue)
	c.isNameAKey = true
	return c
}

// Name returns the node's element name (for instance nodes, the key value).
func (n *TreeNode) Name() string { return n.name }

// IsLeaf reports whether this node has no children.
func (n *TreeNode) IsLeaf() bool { return len(n.children) == 0 }

// FindNodeOrNull resolves path starting at this node. A "..." element
// makes the current node stand for its whole subtree and resolution stops
// there. At a keyed node, an element key selects the matching instance; a
// "*" key or a missing key selects the wildcard instance. Returns nil when
// the path leads nowhere.
func (n *TreeNode) FindNodeOrNull(path *gpb.Path) *TreeNode {
	node := n
	for _, elem := range path.GetElem() {
		if elem.GetName() == subtreeWildcard {
			return node
		}
		child, ok := node.children[elem.GetName()]
		if !ok && node.keyLeafName != "" {
			// The caller skipped the key of this keyed node; continue
			// resolution inside the wildcard instance.
			if wc, ok := node.children[wildcardKey]; ok {
				child = wc.children[elem.GetName()]
			}
		}
		if child == nil {
			return nil
		}
		node = child
		if keys := elem.GetKey(); len(keys) > 0 {
			if node.keyLeafName == "" {
				return nil
			}
			value, ok := keys[node.keyLeafName]
			if !ok || value == wildcardKey {
				value = wildcardKey
			}
			inst, ok := node.children[value]
			if !ok {
				return nil
			}
			node = inst
		}
	}
	return node
}

// GetPath rebuilds the fully-qualified path of this node by ascending to
// the root. Instance nodes fold into their parent element as a key value.
func (n *TreeNode) GetPath() *gpb.Path {
	var elems []*gpb.PathElem
	node := n
	for node != nil && node.parent != nil {
		if node.isNameAKey {
			parent := node.parent
			elems = append(elems, &gpb.PathElem{
				Name: parent.name,
				Key:  map[string]string{parent.keyLeafName: node.name},
			})
			node = parent.parent
			continue
		}
		elems = append(elems, &gpb.PathElem{Name: node.name})
		node = node.parent
	}
	for i, j := 0, len(elems)-1; i < j; i, j = i+1, j-1 {
		elems[i], elems[j] = elems[j], elems[i]
	}
	return &gpb.Path{Elem: elems}
}

// sortedChildren returns the non-wildcard children ordered by name, so
// subtree traversals are deterministic.
func (n *TreeNode) sortedChildren() []*TreeNode {
	names := make([]string, 0, len(n.children))
	for name := range n.children {
		if name == wildcardKey {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)
	nodes := make([]*TreeNode, 0, len(names))
	for _, name := range names {
		nodes = append(nodes, n.children[name])
	}
	return nodes
}

// AllSubtreeLeavesSupportOnPoll reports whether every leaf below this node
// can serve poll requests.
func (n *TreeNode) AllSubtreeLeavesSupportOnPoll() bool {
	if n.IsLeaf() {
		return n.supportsOnPoll
	}
	for _, c := range n.children {
		if !c.AllSubtreeLeavesSupportOnPoll() {
			return false
		}
	}
	return true
}

// AllSubtreeLeavesSupportOnTimer reports whether every leaf below this
// node can serve sampled subscriptions.
func (n *TreeNode) AllSubtreeLeavesSupportOnTimer() bool {
	if n.IsLeaf() {
		return n.supportsOnTimer
	}
	for _, c := range n.children {
		if !c.AllSubtreeLeavesSupportOnTimer() {
			return false
		}
	}
	return true
}

// AllSubtreeLeavesSupportOnChange reports whether every leaf below this
// node can serve change-driven subscriptions.
func (n *TreeNode) AllSubtreeLeavesSupportOnChange() bool {
	if n.IsLeaf() {
		return n.supportsOnChange
	}
	for _, c := range n.children {
		if !c.AllSubtreeLeavesSupportOnChange() {
			return false
		}
	}
	return true
}

// aggregate builds a handler that walks the non-wildcard subtree in name
// order and invokes the selected handler of every leaf.
func (n *TreeNode) aggregate(get func(*TreeNode) Handler) Handler {
	children := n.sortedChildren()
	return func(e events.Event, stream Stream) error {
		for _, c := range children {
			if err := get(c)(e, stream); err != nil {
				return err
			}
		}
		return nil
	}
}

// GetOnPollHandler returns the poll handler of this node. For interior
// nodes the handler fans out over the subtree leaves.
func (n *TreeNode) GetOnPollHandler() Handler {
	if n.onPollFactory != nil {
		return n.onPollFactory()
	}
	return n.aggregate((*TreeNode).GetOnPollHandler)
}

// GetOnTimerHandler returns the timer handler of this node. For interior
// nodes the handler fans out over the subtree leaves.
func (n *TreeNode) GetOnTimerHandler() Handler {
	if n.onTimerFactory != nil {
		return n.onTimerFactory()
	}
	return n.aggregate((*TreeNode).GetOnTimerHandler)
}

// GetOnChangeHandler returns the change handler of this node. For interior
// nodes the handler fans out over the subtree leaves; leaves whose variant
// does not match the delivered event stay silent.
func (n *TreeNode) GetOnChangeHandler() Handler {
	if n.onChangeFactory != nil {
		return n.onChangeFactory()
	}
	return n.aggregate((*TreeNode).GetOnChangeHandler)
}

// SetTargetDefinedMode installs fn as this node's target-defined-mode
// rewrite and returns the node.
func (n *TreeNode) SetTargetDefinedMode(fn TargetDefinedModeFunc) *TreeNode {
	n.targetDefinedMode = fn
	return n
}

// ApplyTargetDefinedModeToSubscription rewrites sub according to the mode
// the server chose for this path. The default leaves sub untouched.
func (n *TreeNode) ApplyTargetDefinedModeToSubscription(sub *gpb.Subscription) error {
	if n.targetDefinedMode == nil {
		return nil
	}
	return n.targetDefinedMode(sub)
}

// visitLeaves invokes visit on every leaf of this subtree, wildcard
// instances included.
func (n *TreeNode) visitLeaves(visit func(leaf *TreeNode) error) error {
	if n.IsLeaf() {
		return visit(n)
	}
	for _, c := range n.children {
		if err := c.visitLeaves(visit); err != nil {
			return err
		}
	}
	return nil
}

// DoOnChangeRegistration registers rec, for every leaf in this subtree,
// with the registries of all event variants the leaf declared interest
// in. Registration is idempotent per variant, so one subscription covering
// many leaves receives each event once.
func (n *TreeNode) DoOnChangeRegistration(rec registry.Record) error {
	return n.visitLeaves(func(leaf *TreeNode) error {
		for _, proto := range leaf.registrations {
			if err := n.tree.registry.Register(proto, rec); err != nil {
				return err
			}
		}
		return nil
	})
}
