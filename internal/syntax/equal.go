package syntax

// Equal reports whether the subtrees at a and b have the same shape and
// payloads. Roles and annotations are ignored.
func (t *Tree) Equal(a, b NodeID) bool {
	if a == b {
		return true
	}
	if a == NoNode || b == NoNode {
		return false
	}
	na, nb := t.at(a), t.at(b)
	if na.kind != nb.kind || na.name != nb.name || na.op != nb.op || na.value != nb.value {
		return false
	}
	if len(na.children) != len(nb.children) {
		return false
	}
	for i := range na.children {
		if !t.Equal(na.children[i], nb.children[i]) {
			return false
		}
	}
	return true
}
