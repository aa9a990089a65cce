package stats

import (
	"strings"

	"github.com/gnolang/recast/internal/syntax"
)

// ConstantCollector counts literal values that are likely to be magic
// numbers or magic strings worth naming.
type ConstantCollector struct {
	local
	freeText bool
}

// ConstantOption configures a ConstantCollector.
type ConstantOption func(*ConstantCollector)

// WithFreeText also counts string literals containing spaces, which are
// skipped as prose by default.
func WithFreeText() ConstantOption {
	return func(c *ConstantCollector) { c.freeText = true }
}

func NewConstantCollector(opts ...ConstantOption) *ConstantCollector {
	c := &ConstantCollector{}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Run counts the literals under root. The tree is not modified.
func (c *ConstantCollector) Run(t *syntax.Tree, root syntax.NodeID) {
	t.Walk(root, func(id syntax.NodeID) bool {
		if t.Kind(id) != syntax.KindPrimitive {
			return true
		}
		if p := t.Parent(id); p != syntax.NoNode && t.Kind(p) == syntax.KindEnumMember {
			return true
		}
		if label, ok := c.label(t.Value(id)); ok {
			c.inc(label)
		}
		return true
	})
}

func (c *ConstantCollector) label(v any) (string, bool) {
	switch x := v.(type) {
	case bool:
		return "", false
	case int32:
		if x == 0 || x == 1 || x == -1 {
			return "", false
		}
	case float64:
		if x == 0 {
			return "", false
		}
	case string:
		if x == "" || strings.ContainsRune(x, '%') || strings.Contains(x, "{0}") {
			return "", false
		}
		if !c.freeText && strings.ContainsRune(x, ' ') {
			return "", false
		}
		return "(string): " + syntax.QuoteLiteral(x), true
	case nil:
		return "", false
	}
	return "(" + syntax.RuntimeTypeName(v) + "): " + syntax.FormatValue(v), true
}
