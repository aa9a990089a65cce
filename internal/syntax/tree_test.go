package syntax

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gnolang/recast/internal/invariant"
)

func catch(f func()) (err error) {
	defer invariant.Recover(&err)
	f()
	return nil
}

func TestReplaceWithKeepsParentLinks(t *testing.T) {
	tr := NewTree()
	a, b := tr.Ident("a"), tr.Ident("b")
	call := tr.InvokeStatic("String", "Concat", a, b)
	stmt := tr.ExprStmt(call)
	tr.SetRoot(tr.Block(stmt))

	args := tr.Args(call)
	tr.DetachChildren(call)
	sum := tr.Binary(args[0], OpAdd, args[1])
	tr.ReplaceWith(call, sum)

	assert.Equal(t, "a + b;", tr.String(stmt))
	assert.Equal(t, stmt, tr.Parent(sum))
	assert.Equal(t, RoleExpression, tr.Role(sum))
	assert.Equal(t, NoNode, tr.Parent(call))
	assert.False(t, tr.InTree(call))
	assert.True(t, tr.InTree(a))
}

func TestAttachingAttachedNodeIsAViolation(t *testing.T) {
	tr := NewTree()
	x := tr.Ident("x")
	tr.SetRoot(tr.ExprStmt(x))

	err := catch(func() { tr.Unary(OpMinus, x) })
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already attached")

	err = catch(func() { tr.ReplaceWith(tr.Root(), x) })
	require.Error(t, err)
}

func TestReplaceRoot(t *testing.T) {
	tr := NewTree()
	x := tr.Ident("x")
	call := tr.Invoke(tr.Ident("ckfinite"), x)
	tr.SetRoot(call)

	tr.ReplaceWith(call, tr.Detach(x))
	assert.Equal(t, x, tr.Root())
	assert.Equal(t, "x", tr.String(tr.Root()))
}

func TestEqualIgnoresRolesAndAnnotations(t *testing.T) {
	tr := NewTree()
	a := tr.Indexer(tr.Ident("arr"), tr.Ident("i"))
	b := tr.Indexer(tr.Ident("arr"), tr.Ident("i"))
	c := tr.Indexer(tr.Ident("arr"), tr.Ident("j"))
	tr.Annotate(b, &SymbolRef{Name: "get_Item"})

	assert.True(t, tr.Equal(a, b))
	assert.False(t, tr.Equal(a, c))
	assert.False(t, tr.Equal(tr.Prim(int32(1)), tr.Prim(int64(1))))
}

func TestAnnotations(t *testing.T) {
	tr := NewTree()
	n := tr.Ident("x")
	sym := &SymbolRef{DeclaringType: "T", Name: "op_Addition"}
	tr.Annotate(n, sym)
	tr.Annotate(n, LdToken{})

	assert.Same(t, sym, tr.Symbol(n))
	assert.True(t, HasAnnotation[LdToken](tr, n))

	m := tr.Ident("y")
	tr.CopyAnnotations(m, n)
	assert.Same(t, sym, tr.Symbol(m))

	RemoveAnnotations[*SymbolRef](tr, m)
	assert.Nil(t, tr.Symbol(m))
	assert.True(t, HasAnnotation[LdToken](tr, m))
}

func TestCloneIsDetachedCopy(t *testing.T) {
	tr := NewTree()
	orig := tr.Binary(tr.Ident("x"), OpAdd, tr.Prim(int32(1)))
	tr.SetRoot(tr.ExprStmt(orig))

	c := tr.Clone(orig)
	assert.True(t, tr.Equal(orig, c))
	assert.Equal(t, NoNode, tr.Parent(c))
	assert.NotEqual(t, tr.Left(orig), tr.Left(c))
}

func TestSymbolFullName(t *testing.T) {
	s := &SymbolRef{
		DeclaringType: "System.Type",
		Name:          "GetTypeFromHandle",
		Params:        []Param{{Type: "System.RuntimeTypeHandle"}},
		ReturnType:    "System.Type",
	}
	assert.Equal(t, "System.Type System.Type::GetTypeFromHandle(System.RuntimeTypeHandle)", s.FullName())
	assert.Equal(t, "System.Type.GetTypeFromHandle", s.Key())
}

func TestRender(t *testing.T) {
	tr := NewTree()
	tests := []struct {
		name string
		node NodeID
		want string
	}{
		{"nested add", tr.Binary(tr.Binary(tr.Ident("a"), OpAdd, tr.Ident("b")), OpAdd, tr.Ident("c")), "(a + b) + c"},
		{"static call", tr.InvokeStatic("Math", "Abs", tr.Prim(int32(-3))), "Math.Abs(-3)"},
		{"post increment", tr.Unary(OpPostIncrement, tr.Ident("i")), "i++"},
		{"pre decrement", tr.Unary(OpDecrement, tr.Ident("i")), "--i"},
		{"compound", tr.Assign(tr.Ident("x"), AssignAdd, tr.Ident("y")), "x += y"},
		{"cast", tr.Cast(tr.SimpleType("int"), tr.Ident("v")), "(int)v"},
		{"array", tr.ArrayCreate("object", tr.Prim("a"), tr.Prim(int32(2))), `new object[] { "a", 2 }`},
		{"new", tr.ObjectCreate(tr.SimpleType("Exception"), tr.Prim("m")), `new Exception("m")`},
		{"typeof", tr.TypeOf(tr.SimpleType("Foo")), "typeof(Foo)"},
		{"char", tr.Prim(Char('\'')), `'\''`},
		{"long", tr.Prim(int64(5)), "5L"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tr.String(tt.node))
		})
	}
}

func TestQuoteLiteral(t *testing.T) {
	assert.Equal(t, `"hello world"`, QuoteLiteral("hello world"))
	assert.Equal(t, `"a\tb\n\"c\"\\"`, QuoteLiteral("a\tb\n\"c\"\\"))
	assert.Equal(t, `"\u2028"`, QuoteLiteral("\u2028"))
}

func TestRuntimeTypeNameAndFormat(t *testing.T) {
	assert.Equal(t, "Int32", RuntimeTypeName(int32(42)))
	assert.Equal(t, "Double", RuntimeTypeName(1.5))
	assert.Equal(t, "Char", RuntimeTypeName(Char('x')))
	assert.Equal(t, "1.5", FormatValue(1.5))
	assert.Equal(t, "True", FormatValue(true))
}

const sampleUnit = `
kind: block
children:
  - kind: expr
    children:
      - kind: assignment
        op: "="
        children:
          - { kind: identifier, name: x }
          - kind: invocation
            symbol: { type: Borland.Vcl.Units.SysUtils, name: IntToStr, params: [System.Int32], returns: System.String }
            children:
              - kind: member
                name: IntToStr
                children:
                  - kind: typeref
                    children: [ { kind: type, name: SysUtils } ]
              - { kind: primitive, type: Int32, value: "42" }
---
kind: if
children:
  - { kind: identifier, name: ok }
  - { kind: block }
`

func TestDecode(t *testing.T) {
	trees, err := Decode(strings.NewReader(sampleUnit))
	require.NoError(t, err)
	require.Len(t, trees, 2)

	tr := trees[0]
	assert.Equal(t, "{\n\tx = SysUtils.IntToStr(42);\n}", tr.String(tr.Root()))

	var call NodeID = NoNode
	tr.Walk(tr.Root(), func(id NodeID) bool {
		if tr.Kind(id) == KindInvocation {
			call = id
		}
		return true
	})
	require.NotEqual(t, NoNode, call)
	require.NotNil(t, tr.Symbol(call))
	assert.Equal(t, "IntToStr", tr.Symbol(call).Name)
	assert.Equal(t, int32(42), tr.Value(tr.Args(call)[0]))

	cond := trees[1].Child(trees[1].Root(), 0)
	assert.Equal(t, RoleCondition, trees[1].Role(cond))
}

func TestDecodeErrorsCarryPath(t *testing.T) {
	_, err := Decode(strings.NewReader("kind: block\nchildren:\n  - { kind: primitive, type: Int32, value: nope }\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "$.children[0]")

	_, err = Decode(strings.NewReader("kind: bogus\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown node kind")

	assert.NotPanics(t, func() {
		_, err = Decode(strings.NewReader("kind: invocation\nchildren:\n  - { kind: identifier, name: f }\n  - ~\n"))
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "$.children[1]: null node")

	_, err = Build(nil)
	assert.Error(t, err)
}

func TestKindOfAbsentChild(t *testing.T) {
	tr := NewTree()
	m := tr.New(KindMemberAccess)
	assert.Equal(t, KindNone, tr.KindOf(tr.Target(m)))
	assert.Equal(t, KindMemberAccess, tr.KindOf(m))
	assert.Equal(t, "none", KindNone.String())
	assert.NotPanics(t, func() { _ = tr.String(m) })
}
