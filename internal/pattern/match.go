package pattern

import (
	"slices"

	"github.com/gnolang/recast/internal/syntax"
)

// Match is the result of matching a pattern against a node.
type Match struct {
	Success  bool
	captures map[string][]syntax.NodeID
}

// Get returns every node captured under name, in match order.
func (m Match) Get(name string) []syntax.NodeID { return m.captures[name] }

// Has reports whether anything was captured under name.
func (m Match) Has(name string) bool { return len(m.captures[name]) > 0 }

// Single returns the only node captured under name, or NoNode when there
// is not exactly one.
func (m Match) Single(name string) syntax.NodeID {
	if nodes := m.captures[name]; len(nodes) == 1 {
		return nodes[0]
	}
	return syntax.NoNode
}

// Match matches p against the node id of t.
func (p Pattern) Match(t *syntax.Tree, id syntax.NodeID) Match {
	ok, caps := match(p, t, id, nil)
	if !ok {
		return Match{}
	}
	return Match{Success: true, captures: caps}
}

// IsMatch is Match(t, id).Success.
func (p Pattern) IsMatch(t *syntax.Tree, id syntax.NodeID) bool {
	ok, _ := match(p, t, id, nil)
	return ok
}

// match returns the captures extended with whatever p captured. The input
// map is never modified, so failed branches leave no trace.
func match(p Pattern, t *syntax.Tree, id syntax.NodeID, caps map[string][]syntax.NodeID) (bool, map[string][]syntax.NodeID) {
	if id == syntax.NoNode {
		return p.kind == KindOptional, caps
	}

	switch p.kind {
	case KindAny:
		if p.name != "" {
			caps = capture(caps, p.name, id)
		}
		return true, caps

	case KindType:
		return slices.Contains(p.kinds, t.Kind(id)), caps

	case KindChoice:
		for _, alt := range p.children {
			if ok, c := match(alt, t, id, caps); ok {
				return true, c
			}
		}
		return false, nil

	case KindOptional:
		return match(p.children[0], t, id, caps)

	case KindNamed:
		ok, c := match(p.children[0], t, id, caps)
		if !ok {
			return false, nil
		}
		return true, capture(c, p.name, id)

	case KindLiteral:
		if t.Kind(id) != p.node {
			return false, nil
		}
		if !p.anyPayload && t.Payload(id) != p.payload {
			return false, nil
		}
		return matchSeq(p.children, t, t.Children(id), caps)
	}
	return false, nil
}

// matchSeq matches children positionally. An Optional that does not match
// the current child is treated as absent and the child is offered to the
// next pattern.
func matchSeq(pats []Pattern, t *syntax.Tree, kids []syntax.NodeID, caps map[string][]syntax.NodeID) (bool, map[string][]syntax.NodeID) {
	if len(pats) == 0 {
		return len(kids) == 0, caps
	}
	p := pats[0]
	if p.kind == KindOptional {
		if len(kids) > 0 {
			if ok, c := match(p.children[0], t, kids[0], caps); ok {
				if ok, c := matchSeq(pats[1:], t, kids[1:], c); ok {
					return true, c
				}
			}
		}
		return matchSeq(pats[1:], t, kids, caps)
	}
	if len(kids) == 0 {
		return false, nil
	}
	ok, c := match(p, t, kids[0], caps)
	if !ok {
		return false, nil
	}
	return matchSeq(pats[1:], t, kids[1:], c)
}

func capture(caps map[string][]syntax.NodeID, name string, id syntax.NodeID) map[string][]syntax.NodeID {
	out := make(map[string][]syntax.NodeID, len(caps)+1)
	for k, v := range caps {
		out[k] = v
	}
	out[name] = append(slices.Clone(out[name]), id)
	return out
}
