package rewrite

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gnolang/recast/internal/syntax"
)

func TestCompoundAssignment(t *testing.T) {
	tests := []struct {
		name  string
		build func(tr *syntax.Tree) syntax.NodeID
		want  string
	}{
		{
			name: "identifier",
			build: func(tr *syntax.Tree) syntax.NodeID {
				return tr.Assign(tr.Ident("x"), syntax.AssignPlain, tr.Binary(tr.Ident("x"), syntax.OpAdd, tr.Ident("y")))
			},
			want: "x += y;",
		},
		{
			name: "indexer with plain index",
			build: func(tr *syntax.Tree) syntax.NodeID {
				lhs := tr.Indexer(tr.Ident("arr"), tr.Ident("i"))
				rhs := tr.Binary(tr.Indexer(tr.Ident("arr"), tr.Ident("i")), syntax.OpAdd, tr.Ident("y"))
				return tr.Assign(lhs, syntax.AssignPlain, rhs)
			},
			want: "arr[i] += y;",
		},
		{
			name: "member of this",
			build: func(tr *syntax.Tree) syntax.NodeID {
				lhs := tr.Member(tr.This(), "total")
				rhs := tr.Binary(tr.Member(tr.This(), "total"), syntax.OpMultiply, tr.Ident("k"))
				return tr.Assign(lhs, syntax.AssignPlain, rhs)
			},
			want: "this.total *= k;",
		},
		{
			name: "dereference",
			build: func(tr *syntax.Tree) syntax.NodeID {
				lhs := tr.Unary(syntax.OpDereference, tr.Ident("p"))
				rhs := tr.Binary(tr.Unary(syntax.OpDereference, tr.Ident("p")), syntax.OpShiftLeft, tr.Prim(int32(2)))
				return tr.Assign(lhs, syntax.AssignPlain, rhs)
			},
			want: "*p <<= 2;",
		},
		{
			name: "side-effecting receiver",
			build: func(tr *syntax.Tree) syntax.NodeID {
				lhs := tr.Indexer(tr.Invoke(tr.Ident("f")), tr.Ident("i"))
				rhs := tr.Binary(tr.Indexer(tr.Invoke(tr.Ident("f")), tr.Ident("i")), syntax.OpAdd, tr.Ident("y"))
				return tr.Assign(lhs, syntax.AssignPlain, rhs)
			},
			want: "f()[i] = f()[i] + y;",
		},
		{
			name: "side-effecting index",
			build: func(tr *syntax.Tree) syntax.NodeID {
				lhs := tr.Indexer(tr.Ident("arr"), tr.Invoke(tr.Ident("next")))
				rhs := tr.Binary(tr.Indexer(tr.Ident("arr"), tr.Invoke(tr.Ident("next"))), syntax.OpAdd, tr.Ident("y"))
				return tr.Assign(lhs, syntax.AssignPlain, rhs)
			},
			want: "arr[next()] = arr[next()] + y;",
		},
		{
			name: "different target",
			build: func(tr *syntax.Tree) syntax.NodeID {
				return tr.Assign(tr.Ident("x"), syntax.AssignPlain, tr.Binary(tr.Ident("z"), syntax.OpAdd, tr.Ident("y")))
			},
			want: "x = z + y;",
		},
		{
			name: "operand on the right",
			build: func(tr *syntax.Tree) syntax.NodeID {
				return tr.Assign(tr.Ident("x"), syntax.AssignPlain, tr.Binary(tr.Ident("y"), syntax.OpAdd, tr.Ident("x")))
			},
			want: "x = y + x;",
		},
		{
			name: "relational operator has no compound form",
			build: func(tr *syntax.Tree) syntax.NodeID {
				return tr.Assign(tr.Ident("x"), syntax.AssignPlain, tr.Binary(tr.Ident("x"), syntax.OpLessThan, tr.Ident("y")))
			},
			want: "x = x < y;",
		},
		{
			name: "increment statement",
			build: func(tr *syntax.Tree) syntax.NodeID {
				return tr.Assign(tr.Ident("x"), syntax.AssignPlain, tr.Binary(tr.Ident("x"), syntax.OpAdd, tr.Prim(int32(1))))
			},
			want: "x++;",
		},
		{
			name: "decrement statement",
			build: func(tr *syntax.Tree) syntax.NodeID {
				return tr.Assign(tr.Ident("x"), syntax.AssignSubtract, tr.Prim(int32(1)))
			},
			want: "x--;",
		},
		{
			name: "increment inside an expression",
			build: func(tr *syntax.Tree) syntax.NodeID {
				inner := tr.Assign(tr.Ident("x"), syntax.AssignPlain, tr.Binary(tr.Ident("x"), syntax.OpAdd, tr.Prim(int32(1))))
				return tr.Assign(tr.Ident("y"), syntax.AssignPlain, inner)
			},
			want: "y = ++x;",
		},
		{
			name: "long one is not an increment",
			build: func(tr *syntax.Tree) syntax.NodeID {
				return tr.Assign(tr.Ident("x"), syntax.AssignPlain, tr.Binary(tr.Ident("x"), syntax.OpAdd, tr.Prim(int64(1))))
			},
			want: "x += 1L;",
		},
		{
			name: "custom operator keeps compound form",
			build: func(tr *syntax.Tree) syntax.NodeID {
				sum := static(tr, "Money", symbol("App.Money", "op_Addition"), tr.Ident("m"), tr.Prim(int32(1)))
				return tr.Assign(tr.Ident("m"), syntax.AssignPlain, sum)
			},
			want: "m += 1;",
		},
		{
			name: "exception slot assignment is dropped",
			build: func(tr *syntax.Tree) syntax.NodeID {
				return tr.Assign(tr.Member(tr.TypeRefNamed("System"), "ExceptObject"), syntax.AssignPlain, tr.Ident("e"))
			},
			want: "",
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := rewriteBlock(t, func(tr *syntax.Tree) []syntax.NodeID {
				return []syntax.NodeID{tc.build(tr)}
			})
			if tc.want == "" {
				assert.Equal(t, "{\n}", got)
				return
			}
			assert.Equal(t, "{\n\t"+tc.want+"\n}", got)
		})
	}
}

func TestExceptionSlotInsideExpression(t *testing.T) {
	got := rewriteExpr(t, func(tr *syntax.Tree) syntax.NodeID {
		inner := tr.Assign(tr.Member(tr.TypeRefNamed("System"), "ExceptObject"), syntax.AssignPlain, tr.Ident("e"))
		return tr.Assign(tr.Ident("y"), syntax.AssignPlain, inner)
	})
	assert.Equal(t, "y = e", got)
}

func TestIncrementSettingOff(t *testing.T) {
	h := newHarness(nil, WithSettings(Settings{IntroduceIncrementDecrement: false}))
	got, _ := h.block(t, func(tr *syntax.Tree) []syntax.NodeID {
		return []syntax.NodeID{
			tr.Assign(tr.Ident("x"), syntax.AssignPlain, tr.Binary(tr.Ident("x"), syntax.OpAdd, tr.Prim(int32(1)))),
		}
	})
	assert.Equal(t, "{\n\tx += 1;\n}", got)
}

func TestRestoreOriginal(t *testing.T) {
	t.Run("compound", func(t *testing.T) {
		tr := syntax.NewTree()
		assign := tr.Assign(tr.Ident("x"), syntax.AssignPlain, tr.Binary(tr.Ident("x"), syntax.OpAdd, tr.Ident("y")))
		tr.SetRoot(tr.Block(tr.ExprStmt(assign)))

		_, err := NewEngine(nil, nil).Run("unit", tr)
		require.NoError(t, err)
		require.Equal(t, "{\n\tx += y;\n}", tr.String(tr.Root()))

		restore, ok := syntax.Annotation[*RestoreOriginal](tr, assign)
		require.True(t, ok)
		got := restore.Restore(tr, assign)
		assert.Equal(t, assign, got)
		assert.Equal(t, "{\n\tx = x + y;\n}", tr.String(tr.Root()))
		assert.False(t, syntax.HasAnnotation[*RestoreOriginal](tr, assign))
	})

	t.Run("increment", func(t *testing.T) {
		tr := syntax.NewTree()
		stmt := tr.ExprStmt(tr.Assign(tr.Ident("i"), syntax.AssignPlain, tr.Binary(tr.Ident("i"), syntax.OpSubtract, tr.Prim(int32(1)))))
		tr.SetRoot(tr.Block(stmt))

		_, err := NewEngine(nil, nil).Run("unit", tr)
		require.NoError(t, err)
		dec := tr.Child(stmt, 0)
		require.Equal(t, "i--", tr.String(dec))

		restore, ok := syntax.Annotation[*RestoreOriginal](tr, dec)
		require.True(t, ok)
		got := restore.Restore(tr, dec)
		assert.Equal(t, got, tr.Child(stmt, 0))
		assert.Equal(t, "{\n\ti = i - 1;\n}", tr.String(tr.Root()))
	})
}
