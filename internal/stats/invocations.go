package stats

import "github.com/gnolang/recast/internal/syntax"

// InvocationCollector counts resolved calls of static members, labelled
// by the rendered member access, e.g. "SysUtils.IntToStr".
type InvocationCollector struct {
	local
}

func NewInvocationCollector() *InvocationCollector {
	return &InvocationCollector{}
}

// Run counts the static calls under root. The tree is not modified.
func (c *InvocationCollector) Run(t *syntax.Tree, root syntax.NodeID) {
	t.Walk(root, func(id syntax.NodeID) bool {
		if t.Kind(id) != syntax.KindInvocation || t.Symbol(id) == nil {
			return true
		}
		target := t.Target(id)
		if target == syntax.NoNode || t.Kind(target) != syntax.KindMemberAccess {
			return true
		}
		if recv := t.Target(target); recv != syntax.NoNode && t.Kind(recv) == syntax.KindTypeReference {
			c.inc(t.String(target))
		}
		return true
	})
}
