package syntax

import (
	"slices"

	"github.com/gnolang/recast/internal/invariant"
)

/*
Arena-based syntax tree

All nodes of one decompilation unit live in a single slice owned by the Tree
and are addressed by NodeID. Children are stored as ids, and every node keeps
the id of its parent, so detaching or reattaching a subtree only touches the
two parents involved.

Ownership rules:
  - a non-root node has exactly one parent;
  - a node must be detached before it is attached elsewhere;
  - detached nodes stay in the arena and remain valid ids, which lets
    annotations keep a removed subtree around for later reconstruction.
*/

// NodeID addresses a node inside its Tree.
type NodeID int32

// NoNode is the zero value for absent nodes.
const NoNode NodeID = -1

type node struct {
	kind     Kind
	role     Role
	parent   NodeID
	children []NodeID
	name     string
	value    any
	op       int
}

// Tree owns every node of one unit.
type Tree struct {
	nodes []node
	root  NodeID
	// annotations is the per-node side table of out-of-band metadata.
	annotations map[NodeID][]any
}

// NewTree creates an empty tree.
func NewTree() *Tree {
	return &Tree{
		nodes:       make([]node, 0, 64),
		root:        NoNode,
		annotations: make(map[NodeID][]any),
	}
}

// Root returns the root node, or NoNode for an empty tree.
func (t *Tree) Root() NodeID { return t.root }

// SetRoot makes a detached node the root of the tree.
func (t *Tree) SetRoot(id NodeID) {
	t.mustBeDetached(id)
	t.root = id
}

// Len returns the number of nodes ever allocated, attached or not.
func (t *Tree) Len() int { return len(t.nodes) }

func (t *Tree) valid(id NodeID) bool {
	return id >= 0 && int(id) < len(t.nodes)
}

func (t *Tree) at(id NodeID) *node {
	invariant.Precondition(t.valid(id), "node id %d out of range", id)
	return &t.nodes[id]
}

func (t *Tree) alloc(k Kind) NodeID {
	t.nodes = append(t.nodes, node{kind: k, parent: NoNode})
	return NodeID(len(t.nodes) - 1)
}

// New allocates a childless node of kind k. Most callers use the typed
// constructors instead.
func (t *Tree) New(k Kind) NodeID { return t.alloc(k) }

func (t *Tree) mustBeDetached(id NodeID) {
	n := t.at(id)
	invariant.Precondition(n.parent == NoNode && id != t.root,
		"node %d (%s) is already attached", id, n.kind)
}

// Append attaches a detached child as the last child of parent.
func (t *Tree) Append(parent, child NodeID) {
	t.AppendRole(parent, child, defaultRole(t.at(parent).kind, len(t.at(parent).children)))
}

// AppendRole attaches a detached child with an explicit role.
func (t *Tree) AppendRole(parent, child NodeID, role Role) {
	invariant.Precondition(parent != child, "node %d attached to itself", child)
	t.mustBeDetached(child)
	c := t.at(child)
	c.parent = parent
	c.role = role
	p := t.at(parent)
	p.children = append(p.children, child)
}

// Kind returns the variant tag of id.
func (t *Tree) Kind(id NodeID) Kind { return t.at(id).kind }

// KindOf is Kind, except that it returns KindNone for NoNode. Use it on
// children that malformed input may omit.
func (t *Tree) KindOf(id NodeID) Kind {
	if id == NoNode {
		return KindNone
	}
	return t.Kind(id)
}

// Role returns the slot id occupies in its parent.
func (t *Tree) Role(id NodeID) Role { return t.at(id).role }

// SetRole overrides the slot tag of an attached node.
func (t *Tree) SetRole(id NodeID, r Role) { t.at(id).role = r }

// Parent returns the parent of id, or NoNode.
func (t *Tree) Parent(id NodeID) NodeID { return t.at(id).parent }

// Children returns a copy of the child list; it stays valid while the
// tree is mutated.
func (t *Tree) Children(id NodeID) []NodeID {
	return slices.Clone(t.at(id).children)
}

// NumChildren returns the number of children of id.
func (t *Tree) NumChildren(id NodeID) int { return len(t.at(id).children) }

// Child returns the i-th child, or NoNode when out of range.
func (t *Tree) Child(id NodeID, i int) NodeID {
	n := t.at(id)
	if i < 0 || i >= len(n.children) {
		return NoNode
	}
	return n.children[i]
}

// Name returns the identifier, member, or type name payload.
func (t *Tree) Name(id NodeID) string { return t.at(id).name }

// Value returns the literal payload of a primitive.
func (t *Tree) Value(id NodeID) any { return t.at(id).value }

// BinaryOp returns the operator of a binary node.
func (t *Tree) BinaryOp(id NodeID) BinaryOp { return BinaryOp(t.at(id).op) }

// UnaryOp returns the operator of a unary node.
func (t *Tree) UnaryOp(id NodeID) UnaryOp { return UnaryOp(t.at(id).op) }

// AssignOp returns the operator of an assignment node.
func (t *Tree) AssignOp(id NodeID) AssignOp { return AssignOp(t.at(id).op) }

// SetAssignOp changes the operator of an assignment in place.
func (t *Tree) SetAssignOp(id NodeID, op AssignOp) {
	invariant.Precondition(t.Kind(id) == KindAssignment, "node %d is %s, not assignment", id, t.Kind(id))
	t.at(id).op = int(op)
}

// Payload returns the scalar payload used for literal comparison: the
// value of primitives, the operator of operator nodes, the name otherwise.
func (t *Tree) Payload(id NodeID) any {
	n := t.at(id)
	switch n.kind {
	case KindPrimitive:
		return n.value
	case KindBinary:
		return BinaryOp(n.op)
	case KindUnary:
		return UnaryOp(n.op)
	case KindAssignment:
		return AssignOp(n.op)
	}
	return n.name
}

// Target returns the first child of invocations, member accesses and
// indexers.
func (t *Tree) Target(id NodeID) NodeID { return t.Child(id, 0) }

// Args returns the argument children of invocations, indexers and
// object creations.
func (t *Tree) Args(id NodeID) []NodeID {
	n := t.at(id)
	if len(n.children) < 1 {
		return nil
	}
	return slices.Clone(n.children[1:])
}

// Left returns the left operand of binary nodes and assignments.
func (t *Tree) Left(id NodeID) NodeID { return t.Child(id, 0) }

// Right returns the right operand of binary nodes and assignments.
func (t *Tree) Right(id NodeID) NodeID { return t.Child(id, 1) }

// Operand returns the operand of a unary node.
func (t *Tree) Operand(id NodeID) NodeID { return t.Child(id, 0) }

// Elements returns the initializer elements of an array creation.
func (t *Tree) Elements(id NodeID) []NodeID { return t.Children(id) }

// Detach unlinks id from its parent and returns it. Detaching the root
// leaves the tree empty.
func (t *Tree) Detach(id NodeID) NodeID {
	n := t.at(id)
	if id == t.root {
		t.root = NoNode
		return id
	}
	if n.parent == NoNode {
		return id
	}
	p := t.at(n.parent)
	idx := slices.Index(p.children, id)
	invariant.Invariant(idx >= 0, "node %d missing from its parent %d", id, n.parent)
	p.children = slices.Delete(p.children, idx, idx+1)
	n.parent = NoNode
	n.role = RoleNone
	return id
}

// DetachChildren detaches every child of id and returns them in order.
func (t *Tree) DetachChildren(id NodeID) []NodeID {
	children := t.Children(id)
	for _, c := range children {
		t.Detach(c)
	}
	return children
}

// Remove detaches id; the node stays in the arena but is no longer
// reachable from the root.
func (t *Tree) Remove(id NodeID) { t.Detach(id) }

// ReplaceWith puts the detached node repl into the slot of old and
// detaches old. repl inherits the role of old.
func (t *Tree) ReplaceWith(old, repl NodeID) {
	invariant.Precondition(old != repl, "node %d replaced with itself", old)
	t.mustBeDetached(repl)
	o := t.at(old)
	if old == t.root {
		t.root = repl
		return
	}
	invariant.Precondition(o.parent != NoNode, "cannot replace detached node %d", old)
	p := t.at(o.parent)
	idx := slices.Index(p.children, old)
	invariant.Invariant(idx >= 0, "node %d missing from its parent %d", old, o.parent)
	p.children[idx] = repl
	r := t.at(repl)
	r.parent = o.parent
	r.role = o.role
	o.parent = NoNode
	o.role = RoleNone
}

// InTree reports whether id is reachable from the root.
func (t *Tree) InTree(id NodeID) bool {
	for cur := id; cur != NoNode; cur = t.at(cur).parent {
		if cur == t.root {
			return true
		}
	}
	return false
}

// IsStatementSlot reports whether id is the whole expression of an
// expression statement.
func (t *Tree) IsStatementSlot(id NodeID) bool {
	p := t.Parent(id)
	return p != NoNode && t.Kind(p) == KindExpressionStatement
}

// Walk calls fn for id and its descendants in pre-order. Returning false
// skips the children of the current node.
func (t *Tree) Walk(id NodeID, fn func(NodeID) bool) {
	if id == NoNode || !fn(id) {
		return
	}
	for _, c := range t.Children(id) {
		t.Walk(c, fn)
	}
}

// Descendants returns id and every node below it, pre-order.
func (t *Tree) Descendants(id NodeID) []NodeID {
	var out []NodeID
	t.Walk(id, func(n NodeID) bool {
		out = append(out, n)
		return true
	})
	return out
}

// Clone deep-copies the subtree at id into a new detached subtree of the
// same tree, annotations included.
func (t *Tree) Clone(id NodeID) NodeID {
	src := *t.at(id)
	c := t.alloc(src.kind)
	n := t.at(c)
	n.name, n.value, n.op = src.name, src.value, src.op
	t.CopyAnnotations(c, id)
	for _, child := range t.Children(id) {
		t.AppendRole(c, t.Clone(child), t.Role(child))
	}
	return c
}
