package rewrite

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/gnolang/recast/internal/invariant"
	"github.com/gnolang/recast/internal/props"
	"github.com/gnolang/recast/internal/syntax"
	tt "github.com/gnolang/recast/internal/types"
)

func propsTable(t *testing.T, entries map[string]string) *props.Table {
	t.Helper()
	b := props.NewBuilder()
	for k, v := range entries {
		require.NoError(t, b.Add(k, v))
	}
	return b.Freeze()
}

func TestRuleTableOrder(t *testing.T) {
	order := Groups()
	last := 0
	for _, r := range RuleNames() {
		idx := slices.Index(order, r[0])
		require.GreaterOrEqual(t, idx, 0, "rule %s has unknown group %s", r[1], r[0])
		assert.GreaterOrEqual(t, idx, last, "rule %s fires out of group order", r[1])
		last = idx
	}
	assert.Equal(t, GroupCompoundAssignment, order[len(order)-1])
}

func TestIndexedPropertyRecovery(t *testing.T) {
	table := propsTable(t, map[string]string{
		"T.set_Foo":                       "SetFoo",
		"Borland.Vcl.Classes.TList.get_Items": "GetItem",
	})

	t.Run("static setter takes receiver from first argument", func(t *testing.T) {
		h := newHarness(table)
		got, diags := h.block(t, func(tr *syntax.Tree) []syntax.NodeID {
			call := tr.Invoke(tr.Ident("set_Foo"), tr.Ident("x"), tr.Ident("v"))
			tr.Annotate(call, symbol("T", "set_Foo", "T", "System.Object"))
			return []syntax.NodeID{call}
		})
		assert.Equal(t, "{\n\tx.SetFoo(v);\n}", got)
		assert.Empty(t, diags)
		assert.Zero(t, h.logs.Len())
	})

	t.Run("instance getter keeps its arguments", func(t *testing.T) {
		got := rewriteExprWith(t, table, func(tr *syntax.Tree) syntax.NodeID {
			return method(tr, tr.Ident("list"), symbol("Borland.Vcl.Classes.TList", "get_Items", "System.Int32"), tr.Ident("i"))
		})
		assert.Equal(t, "list.GetItem(i)", got)
	})

	t.Run("missing entry warns exactly once", func(t *testing.T) {
		h := newHarness(propsTable(t, nil))
		got, diags := h.block(t, func(tr *syntax.Tree) []syntax.NodeID {
			return []syntax.NodeID{
				method(tr, tr.Ident("x"), symbol("T", "set_Foo", "System.Int32", "System.Object"), tr.Ident("i"), tr.Ident("v")),
			}
		})
		assert.Equal(t, "{\n\tx.set_Foo(i, v);\n}", got)

		warnings := h.logs.FilterLevelExact(zap.WarnLevel).All()
		require.Len(t, warnings, 1)
		assert.Equal(t, "T.set_Foo", warnings[0].ContextMap()["key"])
		assert.Equal(t, "SetFoo", warnings[0].ContextMap()["guess"])

		require.Len(t, diags, 1)
		assert.Equal(t, tt.SeverityWarning, diags[0].Severity)
		assert.Equal(t, "T.set_Foo ~?> SetFoo", diags[0].Message)
		assert.Equal(t, "x.set_Foo(i, v)", diags[0].Node)
	})

	t.Run("plural name is trimmed in the guess", func(t *testing.T) {
		assert.Equal(t, "GetItem", guessAccessor("get_Items"))
		assert.Equal(t, "SetStr", guessAccessor("SET_Strss"))
	})

	t.Run("parameter counts gate the rule", func(t *testing.T) {
		got := rewriteExprWith(t, table, func(tr *syntax.Tree) syntax.NodeID {
			return method(tr, tr.Ident("x"), symbol("T", "set_Foo", "System.Object"), tr.Ident("v"))
		})
		assert.Equal(t, "x.set_Foo(v)", got)
	})
}

func rewriteExprWith(t *testing.T, table *props.Table, build func(tr *syntax.Tree) syntax.NodeID) string {
	t.Helper()
	got, _ := newHarness(table).expr(t, build)
	return got
}

// buildUnit builds a unit that exercises every rule group.
func buildUnit(tr *syntax.Tree) syntax.NodeID {
	concat := static(tr, "String", symbol("System.String", "Concat"),
		tr.Prim("n="), sysUtilsCall(tr, "IntToStr", tr.Ident("n")), tr.Ident("suffix"))
	cmp := tr.Binary(sysUtilsCall(tr, "CompareText", tr.Ident("a"), tr.Prim("")), syntax.OpEquality, zero(tr))
	sum := static(tr, "Money", symbol("App.Money", "op_Addition"), tr.Ident("m"), tr.Ident("d"))
	loop := tr.While(tr.Invoke(tr.Ident("ckfinite"), tr.Ident("ok")), tr.Block(
		tr.ExprStmt(tr.Assign(tr.Ident("i"), syntax.AssignPlain, tr.Binary(tr.Ident("i"), syntax.OpAdd, tr.Prim(int32(1))))),
	))
	return tr.Block(
		tr.ExprStmt(tr.Assign(tr.Ident("s"), syntax.AssignPlain, concat)),
		tr.If(cmp, tr.Block(tr.ExprStmt(sysUtilsCall(tr, "FreeAndNil", tr.Ident("o")))), syntax.NoNode),
		tr.ExprStmt(tr.Assign(tr.Ident("m"), syntax.AssignPlain, sum)),
		loop,
		tr.Return(systemCall(tr, "@WStrCopy", tr.Ident("s"), tr.Prim(int32(1)), tr.Ident("k"))),
	)
}

const rewrittenUnit = `{
	s = ("n=" + n.ToString()) + suffix;
	if (String.IsNullOrEmpty(a)) {
	}
	m += d;
	while (ok) {
		i++;
	}
	return s.Substring(0, k);
}`

func TestRunWholeUnit(t *testing.T) {
	tr := syntax.NewTree()
	tr.SetRoot(buildUnit(tr))

	diags, err := NewEngine(nil, nil).Run("unit", tr)
	require.NoError(t, err)
	assert.Empty(t, diags)
	assert.Equal(t, rewrittenUnit, tr.String(tr.Root()))
}

func TestRunIsIdempotent(t *testing.T) {
	tr := syntax.NewTree()
	tr.SetRoot(buildUnit(tr))
	e := NewEngine(nil, nil)

	_, err := e.Run("unit", tr)
	require.NoError(t, err)
	first := tr.String(tr.Root())
	nodes := tr.Len()

	diags, err := e.Run("unit", tr)
	require.NoError(t, err)
	assert.Empty(t, diags)
	assert.Equal(t, first, tr.String(tr.Root()))
	assert.Equal(t, nodes, tr.Len(), "second run must not allocate replacement nodes")
}

func TestDisabledGroup(t *testing.T) {
	rules := map[string]tt.ConfigRule{
		GroupConcatFolding:      {Severity: tt.SeverityOff},
		GroupCompoundAssignment: {Severity: tt.SeverityOff},
	}
	h := newHarness(nil, WithRules(rules))
	got, _ := h.block(t, func(tr *syntax.Tree) []syntax.NodeID {
		concat := static(tr, "String", symbol("System.String", "Concat"), tr.Ident("a"), tr.Ident("b"))
		return []syntax.NodeID{
			tr.Assign(tr.Ident("x"), syntax.AssignPlain, tr.Binary(tr.Ident("x"), syntax.OpAdd, concat)),
		}
	})
	assert.Equal(t, "{\n\tx = x + String.Concat(a, b);\n}", got)
}

func TestConfiguredSeverity(t *testing.T) {
	rules := map[string]tt.ConfigRule{GroupIndexedProperty: {Severity: tt.SeverityInfo}}
	h := newHarness(nil, WithRules(rules))
	_, diags := h.expr(t, func(tr *syntax.Tree) syntax.NodeID {
		return method(tr, tr.Ident("x"), symbol("T", "get_Items", "System.Int32"), tr.Ident("i"))
	})
	require.Len(t, diags, 1)
	assert.Equal(t, tt.SeverityInfo, diags[0].Severity)
	assert.Equal(t, GroupIndexedProperty, diags[0].Rule)
}

const receiverlessSetter = `
kind: block
children:
  - kind: expr
    children:
      - kind: invocation
        symbol: { type: T, name: set_Foo, params: [Int32, String] }
        children:
          - { kind: member, name: set_Foo }
          - { kind: identifier, name: x }
          - { kind: identifier, name: v }
`

func TestReceiverlessAccessorIsMalformed(t *testing.T) {
	trees, err := syntax.Decode(strings.NewReader(receiverlessSetter))
	require.NoError(t, err)
	require.Len(t, trees, 1)
	tr := trees[0]
	before := tr.String(tr.Root())

	h := newHarness(propsTable(t, map[string]string{"T.set_Foo": "SetFoo"}))
	diags, err := h.engine.Run("unit", tr)
	require.NoError(t, err)
	assert.Equal(t, before, tr.String(tr.Root()))
	if assert.Len(t, diags, 1) {
		assert.Equal(t, GroupIndexedProperty, diags[0].Rule)
		assert.Equal(t, tt.SeverityError, diags[0].Severity)
		assert.Contains(t, diags[0].Message, "no receiver")
		assert.Equal(t, "node left unchanged", diags[0].Note)
	}
	assert.Equal(t, 1, h.logs.FilterMessage("malformed idiom").Len())
}

func TestCreateFmtOnEmptyTypeReferenceIsMalformed(t *testing.T) {
	h := newHarness(nil)
	got, diags := h.expr(t, func(tr *syntax.Tree) syntax.NodeID {
		call := tr.Invoke(tr.Member(tr.New(syntax.KindTypeReference), "CreateFmt"),
			tr.Null(), tr.Prim("bad value %s"), tr.ArrayCreate("object", tr.Ident("v")))
		tr.Annotate(call, symbol("Borland.Vcl.Units.SysUtils.EConvertError", "CreateFmt"))
		return call
	})
	assert.Contains(t, got, "CreateFmt(")
	if assert.Len(t, diags, 1) {
		assert.Equal(t, GroupRuntimeIdioms, diags[0].Rule)
		assert.Contains(t, diags[0].Message, "names no type")
	}
}

func TestMissingAssignmentOperandIsMalformed(t *testing.T) {
	tr := syntax.NewTree()
	broken := tr.New(syntax.KindAssignment)
	tr.Append(broken, tr.Ident("x"))
	tr.SetRoot(tr.Block(tr.ExprStmt(broken)))

	diags, err := NewEngine(nil, nil).Run("broken", tr)
	require.NoError(t, err)
	assert.True(t, tr.InTree(broken))
	if assert.Len(t, diags, 1) {
		assert.Equal(t, GroupCompoundAssignment, diags[0].Rule)
		assert.Equal(t, tt.SeverityError, diags[0].Severity)
	}
}

func TestEngineDefectAbortsWithInvariantError(t *testing.T) {
	saved := ruleTable
	t.Cleanup(func() { ruleTable = saved })
	// Replacing a node with itself breaks the tree's ownership rules.
	ruleTable = []rule{{
		group:   GroupOperatorIdioms,
		name:    "self-replace",
		applies: func(*Engine, *site) bool { return true },
		rewrite: func(e *Engine, s *site) error {
			e.t.ReplaceWith(s.id, s.id)
			return nil
		},
	}}

	tr := syntax.NewTree()
	tr.SetRoot(tr.Block(tr.ExprStmt(tr.Invoke(tr.Ident("f")))))

	_, err := NewEngine(nil, nil).Run("broken", tr)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvariant))
	var v *invariant.Violation
	assert.True(t, errors.As(err, &v))
	assert.True(t, strings.HasPrefix(err.Error(), "broken: rewrite invariant violated: "), err.Error())
}

func TestEmptyTree(t *testing.T) {
	diags, err := NewEngine(nil, nil).Run("empty", syntax.NewTree())
	assert.NoError(t, err)
	assert.Empty(t, diags)
}

func TestDistinctTreesInParallel(t *testing.T) {
	table := propsTable(t, map[string]string{"T.set_Foo": "SetFoo"})
	const units = 16

	trees := make([]*syntax.Tree, units)
	for i := range trees {
		tr := syntax.NewTree()
		tr.SetRoot(buildUnit(tr))
		trees[i] = tr
	}

	g, _ := errgroup.WithContext(context.Background())
	for i, tr := range trees {
		g.Go(func() error {
			_, err := NewEngine(nil, table).Run(fmt.Sprintf("unit-%d", i), tr)
			return err
		})
	}
	require.NoError(t, g.Wait())
	for _, tr := range trees {
		assert.Equal(t, rewrittenUnit, tr.String(tr.Root()))
	}
}
