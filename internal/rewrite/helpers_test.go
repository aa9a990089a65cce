package rewrite

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/gnolang/recast/internal/props"
	"github.com/gnolang/recast/internal/syntax"
	tt "github.com/gnolang/recast/internal/types"
)

func symbol(decl, name string, params ...string) *syntax.SymbolRef {
	s := &syntax.SymbolRef{DeclaringType: decl, Name: name}
	for _, p := range params {
		s.Params = append(s.Params, syntax.Param{Type: p})
	}
	return s
}

// static builds short.name(args...) resolved to sym.
func static(tr *syntax.Tree, short string, sym *syntax.SymbolRef, args ...syntax.NodeID) syntax.NodeID {
	id := tr.InvokeStatic(short, sym.Name, args...)
	tr.Annotate(id, sym)
	return id
}

// method builds target.name(args...) resolved to sym.
func method(tr *syntax.Tree, target syntax.NodeID, sym *syntax.SymbolRef, args ...syntax.NodeID) syntax.NodeID {
	id := tr.InvokeMember(target, sym.Name, args...)
	tr.Annotate(id, sym)
	return id
}

func sysUtilsCall(tr *syntax.Tree, name string, args ...syntax.NodeID) syntax.NodeID {
	return static(tr, "SysUtils", symbol(sysUtils, name), args...)
}

func systemCall(tr *syntax.Tree, name string, args ...syntax.NodeID) syntax.NodeID {
	return static(tr, "System", symbol(delphiSystem, name), args...)
}

func zero(tr *syntax.Tree) syntax.NodeID { return tr.Prim(int32(0)) }

type harness struct {
	engine *Engine
	logs   *observer.ObservedLogs
}

func newHarness(table *props.Table, opts ...Option) *harness {
	core, logs := observer.New(zap.DebugLevel)
	return &harness{engine: NewEngine(zap.New(core), table, opts...), logs: logs}
}

// expr rewrites the expression built by build in a return statement and
// renders what ends up in its place.
func (h *harness) expr(t *testing.T, build func(tr *syntax.Tree) syntax.NodeID) (string, []tt.Diagnostic) {
	t.Helper()
	tr := syntax.NewTree()
	ret := tr.Return(build(tr))
	tr.SetRoot(ret)
	diags, err := h.engine.Run(t.Name(), tr)
	require.NoError(t, err)
	return tr.String(tr.Child(ret, 0)), diags
}

// block rewrites the expression statements built by build inside a block
// and renders the block.
func (h *harness) block(t *testing.T, build func(tr *syntax.Tree) []syntax.NodeID) (string, []tt.Diagnostic) {
	t.Helper()
	tr := syntax.NewTree()
	var stmts []syntax.NodeID
	for _, s := range build(tr) {
		if !tr.Kind(s).IsStatement() {
			s = tr.ExprStmt(s)
		}
		stmts = append(stmts, s)
	}
	tr.SetRoot(tr.Block(stmts...))
	diags, err := h.engine.Run(t.Name(), tr)
	require.NoError(t, err)
	return tr.String(tr.Root()), diags
}

func rewriteExpr(t *testing.T, build func(tr *syntax.Tree) syntax.NodeID) string {
	t.Helper()
	got, _ := newHarness(nil).expr(t, build)
	return got
}

func rewriteBlock(t *testing.T, build func(tr *syntax.Tree) []syntax.NodeID) string {
	t.Helper()
	got, _ := newHarness(nil).block(t, build)
	return got
}
