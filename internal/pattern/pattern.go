// Package pattern implements declarative tree templates and a structural
// matcher over syntax trees.
//
// A Pattern is a single tagged variant. Match is pure: it never mutates the
// tree, so it is safe to call speculatively from any rewrite rule.
package pattern

import (
	"github.com/gnolang/recast/internal/syntax"
)

// Kind tags the variant of a Pattern.
type Kind int

const (
	_ Kind = iota
	// KindLiteral matches a node of one syntax kind, optionally with an
	// exact payload, and its children positionally.
	KindLiteral
	// KindAny matches any single node.
	KindAny
	// KindChoice tries alternatives in order; the first success wins.
	KindChoice
	// KindOptional matches its sub-pattern or the absence of a node.
	KindOptional
	// KindNamed wraps a sub-pattern and captures what it matched.
	KindNamed
	// KindType matches any node whose kind is in a set.
	KindType
)

// Pattern is a declarative template over syntax trees.
type Pattern struct {
	kind Kind
	name string

	node       syntax.Kind
	payload    any
	anyPayload bool

	// children holds literal children, choice alternatives, or the single
	// sub-pattern of Optional and Named.
	children []Pattern
	kinds    []syntax.Kind
}

// Literal matches a node of kind k whose payload equals payload and whose
// children match children in order. Trailing Optional children may be
// absent.
func Literal(k syntax.Kind, payload any, children ...Pattern) Pattern {
	return Pattern{kind: KindLiteral, node: k, payload: payload, children: children}
}

// Shape is Literal without a payload constraint.
func Shape(k syntax.Kind, children ...Pattern) Pattern {
	return Pattern{kind: KindLiteral, node: k, anyPayload: true, children: children}
}

// Any matches every node.
func Any() Pattern { return Pattern{kind: KindAny} }

// AnyNamed matches every node and captures it under name.
func AnyNamed(name string) Pattern { return Pattern{kind: KindAny, name: name} }

// Choice tries alts in declared order and keeps the first success. It does
// not backtrack into later alternatives once one has matched.
func Choice(alts ...Pattern) Pattern { return Pattern{kind: KindChoice, children: alts} }

// Optional matches p, or succeeds without capturing when no node is there.
func Optional(p Pattern) Pattern { return Pattern{kind: KindOptional, children: []Pattern{p}} }

// Named captures the node matched by p under name, in addition to p's own
// captures.
func Named(name string, p Pattern) Pattern {
	return Pattern{kind: KindNamed, name: name, children: []Pattern{p}}
}

// TypePattern matches nodes whose kind is one of kinds.
func TypePattern(kinds ...syntax.Kind) Pattern { return Pattern{kind: KindType, kinds: kinds} }

// Kind returns the variant tag.
func (p Pattern) Kind() Kind { return p.kind }

// Convenience shapes used by rewrite rules.

// Member matches target.name.
func Member(target Pattern, name string) Pattern {
	return Literal(syntax.KindMemberAccess, name, target)
}

// Invocation matches target(args...).
func Invocation(target Pattern, args ...Pattern) Pattern {
	return Shape(syntax.KindInvocation, append([]Pattern{target}, args...)...)
}

// TypeRef matches a type reference to a simple type named name.
func TypeRef(name string) Pattern {
	return Shape(syntax.KindTypeReference, Literal(syntax.KindSimpleType, name))
}

// TypeOfExpr matches typeof(typ).
func TypeOfExpr(typ Pattern) Pattern {
	return Shape(syntax.KindTypeOf, typ)
}

// Prim matches a primitive literal with value v.
func Prim(v any) Pattern { return Literal(syntax.KindPrimitive, v) }
