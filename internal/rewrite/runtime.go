package rewrite

import (
	"fmt"
	"slices"
	"strings"

	"github.com/gnolang/recast/internal/pattern"
	"github.com/gnolang/recast/internal/syntax"
)

// Declaring types of the foreign runtime library.
const (
	sysUtils     = "Borland.Vcl.Units.SysUtils"
	delphiSystem = "Borland.Delphi.Units.System"
	vclUnits     = "Borland.Vcl.Units"
)

// idiom is one entry of the foreign-runtime catalogue.
type idiom struct {
	name string
	// decl is the declaring type, or a namespace prefix when prefix is
	// set. Empty matches every declaring type.
	decl    string
	prefix  bool
	members []string
	// arity is the exact argument count, or -1 for any.
	arity int
	// when optionally checks the surrounding context.
	when    func(e *Engine, s *site) bool
	rewrite func(e *Engine, s *site) error
}

func (i *idiom) matches(e *Engine, s *site) bool {
	switch {
	case i.decl == "":
	case i.prefix:
		if !strings.HasPrefix(s.sym.DeclaringType, i.decl) {
			return false
		}
	case s.sym.DeclaringType != i.decl:
		return false
	}
	if !slices.Contains(i.members, s.sym.Name) {
		return false
	}
	if i.arity >= 0 && len(s.args) != i.arity {
		return false
	}
	return i.when == nil || i.when(e, s)
}

var runtimeIdioms = []idiom{
	{name: "format", decl: sysUtils, members: []string{"Format"}, arity: 2, rewrite: (*Engine).rewriteFormat},
	{
		name: "compare-text", decl: sysUtils, members: []string{"CompareText", "AnsiCompareText"}, arity: 2,
		when:    (*Engine).inStringComparison,
		rewrite: func(e *Engine, s *site) error { return e.rewriteStringComparison(s, true) },
	},
	{name: "same-text", decl: sysUtils, members: []string{"SameText", "AnsiSameText"}, arity: 2, rewrite: (*Engine).rewriteSameText},
	{name: "to-string", decl: sysUtils, members: []string{"IntToStr", "FloatToStr"}, arity: 1, rewrite: memberCall("ToString")},
	{name: "to-upper", decl: sysUtils, members: []string{"UpperCase", "AnsiUpperCase"}, arity: 1, rewrite: memberCall("ToUpper")},
	{name: "to-lower", decl: sysUtils, members: []string{"LowerCase", "AnsiLowerCase"}, arity: 1, rewrite: memberCall("ToLower")},
	{name: "trim", decl: sysUtils, members: []string{"Trim"}, arity: 1, rewrite: memberCall("Trim")},

	{
		name: "wstr-compare", decl: delphiSystem, members: []string{"@WStrCmp"}, arity: 2,
		when:    (*Engine).inStringComparison,
		rewrite: func(e *Engine, s *site) error { return e.rewriteStringComparison(s, false) },
	},
	{name: "wstr-copy", decl: delphiSystem, members: []string{"@WStrCopy"}, arity: 3, rewrite: (*Engine).rewriteCopy},
	{
		name: "string-conversion", decl: delphiSystem, arity: 1,
		members: []string{"@WStrFromWChar", "@WStrFromLStr", "@LStrFromWStr"},
		rewrite: (*Engine).toArgument,
	},
	{name: "pos", decl: delphiSystem, members: []string{"Pos", "AnsiPos"}, arity: 2, rewrite: (*Engine).rewritePos},
	{name: "assert", decl: delphiSystem, members: []string{"@Assert"}, arity: -1, rewrite: (*Engine).rewriteAssert},

	{name: "var-to-str", decl: vclUnits, prefix: true, members: []string{"VarToStr"}, arity: 1, rewrite: memberCall("ToString")},
	{name: "variant-null", decl: vclUnits, prefix: true, members: []string{"Null"}, arity: 0, rewrite: (*Engine).toNull},
	{name: "var-is-null", decl: vclUnits, prefix: true, members: []string{"VarIsNull"}, arity: 1, rewrite: (*Engine).toNullComparison},

	{
		name: "runtime-helper", arity: -1,
		members: []string{"FreeAndNil", "@GetMetaFromObject", "RunClassConstructor", "@AddFinalization", "GetMetaFromHandle"},
		rewrite: (*Engine).removeCallStatement,
	},
	{name: "create-fmt", members: []string{"CreateFmt"}, arity: -1, rewrite: (*Engine).rewriteCreateFmt},
}

func (e *Engine) findIdiom(s *site) *idiom {
	if s.sym == nil {
		return nil
	}
	for i := range runtimeIdioms {
		if runtimeIdioms[i].matches(e, s) {
			return &runtimeIdioms[i]
		}
	}
	return nil
}

func (e *Engine) isRuntimeIdiom(s *site) bool {
	s.idiom = e.findIdiom(s)
	return s.idiom != nil
}

func (e *Engine) rewriteRuntimeIdiom(s *site) error {
	if err := s.idiom.rewrite(e, s); err != nil {
		return fmt.Errorf("%s: %w", s.idiom.name, err)
	}
	return nil
}

// memberCall rewrites Unit.F(x) to x.name().
func memberCall(name string) func(e *Engine, s *site) error {
	return func(e *Engine, s *site) error {
		e.t.ReplaceWith(s.id, e.t.InvokeMember(e.t.Detach(s.args[0]), name))
		return nil
	}
}

func (e *Engine) toNull(s *site) error {
	e.t.ReplaceWith(s.id, e.t.Null())
	return nil
}

func (e *Engine) toNullComparison(s *site) error {
	e.t.ReplaceWith(s.id, e.t.Binary(e.t.Detach(s.args[0]), syntax.OpEquality, e.t.Null()))
	return nil
}

// removeCallStatement drops helper calls that have no counterpart in the
// target runtime. They only ever appear as whole statements.
func (e *Engine) removeCallStatement(s *site) error {
	if !e.t.IsStatementSlot(s.id) {
		return malformed("%s used as a value", s.sym.Name)
	}
	e.removeStatement(e.t.Parent(s.id))
	return nil
}

func (e *Engine) rewriteAssert(s *site) error {
	if len(s.args) == 0 {
		return malformed("@Assert without a message")
	}
	if !e.t.IsStatementSlot(s.id) {
		return malformed("@Assert used as a value")
	}
	msg := e.t.Detach(s.args[0])
	throw := e.t.Throw(e.t.ObjectCreate(e.t.SimpleType("Exception"), msg))
	e.t.ReplaceWith(e.t.Parent(s.id), throw)
	return nil
}

// string comparisons

var zeroInt = pattern.Prim(int32(0))

// zeroComparison returns the binary node when s is the left operand of
// "s op 0" for one of ops.
func (e *Engine) zeroComparison(s *site, ops ...syntax.BinaryOp) (syntax.NodeID, bool) {
	p := e.t.Parent(s.id)
	if p == syntax.NoNode || e.t.Kind(p) != syntax.KindBinary || e.t.Left(p) != s.id {
		return syntax.NoNode, false
	}
	if !slices.Contains(ops, e.t.BinaryOp(p)) || !zeroInt.IsMatch(e.t, e.t.Right(p)) {
		return syntax.NoNode, false
	}
	return p, true
}

func (e *Engine) inStringComparison(s *site) bool {
	_, ok := e.zeroComparison(s, syntax.OpEquality, syntax.OpInEquality, syntax.OpGreaterThan)
	return ok
}

// nullOrEmpty matches the operands that stand for an empty string.
var nullOrEmpty = pattern.Choice(
	pattern.Shape(syntax.KindNull),
	pattern.Prim(""),
	pattern.Invocation(pattern.Member(pattern.TypeRef("Variants"), "Null")),
)

// orderOperands puts the empty-string sentinel on the right, or failing
// that keeps a literal out of the receiver position.
func (e *Engine) orderOperands(fst, snd syntax.NodeID) (syntax.NodeID, syntax.NodeID, bool) {
	switch {
	case nullOrEmpty.IsMatch(e.t, snd):
		return fst, snd, true
	case nullOrEmpty.IsMatch(e.t, fst):
		return snd, fst, true
	case e.isLiteral(fst) && !e.isLiteral(snd):
		return snd, fst, false
	}
	return fst, snd, false
}

func (e *Engine) equals(fst, snd syntax.NodeID, ignoreCase bool) syntax.NodeID {
	if !ignoreCase {
		return e.t.InvokeMember(fst, "Equals", snd)
	}
	cmp := e.t.Member(e.t.TypeRefNamed("StringComparison"), "OrdinalIgnoreCase")
	return e.t.InvokeMember(fst, "Equals", snd, cmp)
}

func (e *Engine) isNullOrEmptyCall(arg syntax.NodeID) syntax.NodeID {
	return e.t.InvokeStatic("String", "IsNullOrEmpty", arg)
}

// rewriteStringComparison folds "Compare(a, b) op 0" into one equality
// test. ignoreCase selects the case-insensitive comparer.
//
// "Compare(a, b) > 0" becomes "!a.Equals(b)". That is not an ordering
// test; callers in the decompiled code only use it as "differs".
func (e *Engine) rewriteStringComparison(s *site, ignoreCase bool) error {
	cmpNode, _ := e.zeroComparison(s, syntax.OpEquality, syntax.OpInEquality, syntax.OpGreaterThan)
	args := e.detach(s.args)
	fst, snd, sentinel := e.orderOperands(args[0], args[1])

	var out syntax.NodeID
	switch e.t.BinaryOp(cmpNode) {
	case syntax.OpEquality:
		switch {
		case sentinel:
			out = e.isNullOrEmptyCall(fst)
		case ignoreCase:
			out = e.equals(fst, snd, true)
		default:
			out = e.t.Binary(fst, syntax.OpEquality, snd)
		}
	case syntax.OpInEquality:
		if sentinel {
			out = e.t.Not(e.isNullOrEmptyCall(fst))
		} else {
			out = e.t.Not(e.equals(fst, snd, ignoreCase))
		}
	case syntax.OpGreaterThan:
		out = e.t.Not(e.equals(fst, snd, ignoreCase))
	}
	e.t.ReplaceWith(cmpNode, out)
	return nil
}

func (e *Engine) rewriteSameText(s *site) error {
	args := e.detach(s.args)
	fst, snd, _ := e.orderOperands(args[0], args[1])
	e.t.ReplaceWith(s.id, e.equals(fst, snd, true))
	return nil
}

// substrings

// rewritePos turns the one-based Pos(sub, s) into s.Contains(sub) under a
// "> 0" test and into s.IndexOf(sub) + 1 elsewhere.
func (e *Engine) rewritePos(s *site) error {
	if cmpNode, ok := e.zeroComparison(s, syntax.OpGreaterThan); ok {
		args := e.detach(s.args)
		e.t.ReplaceWith(cmpNode, e.t.InvokeMember(args[1], "Contains", args[0]))
		return nil
	}
	args := e.detach(s.args)
	indexOf := e.t.InvokeMember(args[1], "IndexOf", args[0])
	e.t.ReplaceWith(s.id, e.t.Binary(indexOf, syntax.OpAdd, e.t.Prim(int32(1))))
	return nil
}

// rewriteCopy turns the one-based Copy(s, index, count) into
// s.Substring(index - 1, count).
func (e *Engine) rewriteCopy(s *site) error {
	args := e.detach(s.args)
	start := e.decrement(args[1])
	e.t.ReplaceWith(s.id, e.t.InvokeMember(args[0], "Substring", start, args[2]))
	return nil
}

// decrement returns an expression for id - 1, folding into an existing
// integer literal or trailing "+ k" / "- k" instead of stacking another
// subtraction. id must be detached.
func (e *Engine) decrement(id syntax.NodeID) syntax.NodeID {
	t := e.t
	if v, ok := t.Value(id).(int32); ok && t.Kind(id) == syntax.KindPrimitive {
		return t.Prim(v - 1)
	}
	if t.Kind(id) == syntax.KindBinary {
		k, ok := t.Value(t.Right(id)).(int32)
		if ok && t.Kind(t.Right(id)) == syntax.KindPrimitive {
			switch t.BinaryOp(id) {
			case syntax.OpAdd:
				left := t.Detach(t.Left(id))
				if k == 1 {
					return left
				}
				return t.Binary(left, syntax.OpAdd, t.Prim(k-1))
			case syntax.OpSubtract:
				return t.Binary(t.Detach(t.Left(id)), syntax.OpSubtract, t.Prim(k+1))
			}
		}
	}
	return t.Binary(id, syntax.OpSubtract, t.Prim(int32(1)))
}

// formatted strings

// formatCall builds String.Format(format, items...) from an already
// converted format string and the elements of array.
func (e *Engine) formatCall(format string, array syntax.NodeID) syntax.NodeID {
	items := e.detach(e.t.Elements(array))
	return e.t.InvokeStatic("String", "Format", append([]syntax.NodeID{e.t.Prim(format)}, items...)...)
}

// rewriteFormat turns Format('%s=%d', [a, b]) into
// String.Format("{0}={1}", a, b).
func (e *Engine) rewriteFormat(s *site) error {
	format, ok := e.stringLiteral(s.args[0])
	if !ok {
		return malformed("format string is %s, not a string literal", e.t.Kind(s.args[0]))
	}
	if e.t.Kind(s.args[1]) != syntax.KindArrayCreate {
		return malformed("format arguments are %s, not an array", e.t.Kind(s.args[1]))
	}
	converted, err := positionalFormat(format)
	if err != nil {
		return malformed("%v", err)
	}
	e.t.ReplaceWith(s.id, e.formatCall(converted, s.args[1]))
	return nil
}

// rewriteCreateFmt turns E.CreateFmt(x, fmt, [args]) into
// new E(String.Format(fmt', args...)).
func (e *Engine) rewriteCreateFmt(s *site) error {
	target := e.t.Target(s.id)
	if e.t.KindOf(target) != syntax.KindMemberAccess || e.t.KindOf(e.t.Target(target)) != syntax.KindTypeReference {
		return malformed("CreateFmt is not called on a type")
	}
	typ := e.t.Child(e.t.Target(target), 0)
	if typ == syntax.NoNode {
		return malformed("CreateFmt type reference names no type")
	}
	if len(s.args) != 3 {
		return malformed("CreateFmt expects 3 arguments, got %d", len(s.args))
	}
	format, ok := e.stringLiteral(s.args[1])
	if !ok {
		return malformed("CreateFmt format is %s, not a string literal", e.t.Kind(s.args[1]))
	}
	if e.t.Kind(s.args[2]) != syntax.KindArrayCreate {
		return malformed("CreateFmt arguments are %s, not an array", e.t.Kind(s.args[2]))
	}
	converted, err := positionalFormat(format)
	if err != nil {
		return malformed("%v", err)
	}
	call := e.formatCall(converted, s.args[2])
	e.t.ReplaceWith(s.id, e.t.ObjectCreate(e.t.Detach(typ), call))
	return nil
}
