package rewrite

import (
	"strings"

	"go.uber.org/zap"

	"github.com/gnolang/recast/internal/pattern"
	"github.com/gnolang/recast/internal/syntax"
	tt "github.com/gnolang/recast/internal/types"
)

// rule is one entry of the ordered rule table. applies must not mutate
// the tree; rewrite performs exactly one replace or remove, or returns an
// error wrapping ErrMalformedIdiom before touching anything.
type rule struct {
	group   string
	name    string
	applies func(e *Engine, s *site) bool
	rewrite func(e *Engine, s *site) error
}

// ruleTable is tried top to bottom; the first rule that applies wins.
var ruleTable = []rule{
	{GroupUnresolvedFinite, "ckfinite", (*Engine).isFiniteCheck, (*Engine).unwrapFiniteCheck},

	{GroupConcatFolding, "string-concat", (*Engine).isConcat, (*Engine).foldConcat},

	{GroupIndexedProperty, "indexed-setter", (*Engine).isIndexedSetter, (*Engine).recoverIndexedProperty},
	{GroupIndexedProperty, "indexed-getter", (*Engine).isIndexedGetter, (*Engine).recoverIndexedProperty},

	{GroupRuntimeIdioms, "runtime-idiom", (*Engine).isRuntimeIdiom, (*Engine).rewriteRuntimeIdiom},

	{GroupHandleIdioms, "type-handle", (*Engine).isTypeHandleRoundTrip, (*Engine).collapseTypeHandle},
	{GroupHandleIdioms, "field-handle", (*Engine).isFieldHandleRoundTrip, (*Engine).collapseFieldHandle},
	{GroupHandleIdioms, "field-handle-typed", (*Engine).isTypedFieldHandleRoundTrip, (*Engine).collapseTypedFieldHandle},
	{GroupHandleIdioms, "method-handle", (*Engine).isMethodHandleRoundTrip, (*Engine).collapseMethodHandle},

	{GroupOperatorIdioms, "binary-operator", (*Engine).isBinaryOperator, (*Engine).toBinary},
	{GroupOperatorIdioms, "unary-operator", (*Engine).isUnaryOperator, (*Engine).toUnary},
	{GroupOperatorIdioms, "explicit-conversion", (*Engine).isExplicitConversion, (*Engine).toCast},
	{GroupOperatorIdioms, "implicit-conversion", (*Engine).isImplicitConversion, (*Engine).toArgument},
	{GroupOperatorIdioms, "true-operator", (*Engine).isTrueOperatorGuard, (*Engine).toArgument},
}

// RuleNames returns the group and name of every rule in firing order.
func RuleNames() [][2]string {
	out := make([][2]string, len(ruleTable))
	for i, r := range ruleTable {
		out[i] = [2]string{r.group, r.name}
	}
	return out
}

// helpers shared by the rules

func (e *Engine) detach(ids []syntax.NodeID) []syntax.NodeID {
	for _, id := range ids {
		e.t.Detach(id)
	}
	return ids
}

// removeStatement drops stmt from its block. Statements in single-statement
// slots are replaced by an empty block so sibling slots keep their meaning.
func (e *Engine) removeStatement(stmt syntax.NodeID) {
	if p := e.t.Parent(stmt); p != syntax.NoNode && e.t.Kind(p) == syntax.KindBlock {
		e.t.Remove(stmt)
		return
	}
	e.t.ReplaceWith(stmt, e.t.Block())
}

func (e *Engine) isLiteral(id syntax.NodeID) bool {
	return e.t.Kind(id) == syntax.KindPrimitive
}

func (e *Engine) stringLiteral(id syntax.NodeID) (string, bool) {
	if !e.isLiteral(id) {
		return "", false
	}
	s, ok := e.t.Value(id).(string)
	return s, ok
}

// group 1: unresolved finiteness check

// finiteMarker is the reserved identifier the decoder emits for an
// unresolved ckfinite instruction.
const finiteMarker = "ckfinite"

var finiteCheck = pattern.Literal(syntax.KindIdentifier, finiteMarker)

func (e *Engine) isFiniteCheck(s *site) bool {
	return s.kind == syntax.KindInvocation && s.sym == nil &&
		finiteCheck.IsMatch(e.t, e.t.Target(s.id))
}

func (e *Engine) unwrapFiniteCheck(s *site) error {
	if len(s.args) != 1 {
		return malformed("%s expects one argument, got %d", finiteMarker, len(s.args))
	}
	e.t.ReplaceWith(s.id, e.t.Detach(s.args[0]))
	return nil
}

// group 2: string concatenation

func (e *Engine) isConcat(s *site) bool {
	if !s.named("Concat") || s.sym.DeclaringType != "System.String" {
		return false
	}
	switch len(s.args) {
	case 0:
		return false
	case 1:
		return e.t.Kind(s.args[0]) == syntax.KindArrayCreate
	}
	return true
}

func (e *Engine) foldConcat(s *site) error {
	parts := s.args
	if len(parts) == 1 {
		parts = e.t.Elements(parts[0])
		if len(parts) == 0 {
			return malformed("String.Concat of an empty array")
		}
	}
	e.detach(parts)
	expr := parts[0]
	for _, p := range parts[1:] {
		expr = e.t.Binary(expr, syntax.OpAdd, p)
	}
	e.t.ReplaceWith(s.id, expr)
	return nil
}

// group 3: indexed properties

func hasPrefixFold(s, prefix string) bool {
	return len(s) >= len(prefix) && strings.EqualFold(s[:len(prefix)], prefix)
}

func (e *Engine) isIndexedSetter(s *site) bool {
	return s.kind == syntax.KindInvocation && s.sym != nil &&
		len(s.sym.Params) > 1 && hasPrefixFold(s.sym.Name, "set_")
}

func (e *Engine) isIndexedGetter(s *site) bool {
	return s.kind == syntax.KindInvocation && s.sym != nil &&
		len(s.sym.Params) == 1 && hasPrefixFold(s.sym.Name, "get_")
}

// guessAccessor synthesizes "SetItem" from "set_Items".
func guessAccessor(name string) string {
	verb := "Get"
	if hasPrefixFold(name, "set_") {
		verb = "Set"
	}
	return verb + strings.TrimRight(name[4:], "s")
}

// recoverIndexedProperty rewrites obj.set_Items(i, v) to obj.SetItem(i, v)
// when the table knows the accessor. Static accessors and unqualified
// calls take their receiver from the first argument.
func (e *Engine) recoverIndexedProperty(s *site) error {
	key := s.sym.Key()
	name, ok := e.props.Lookup(key)
	if !ok {
		guess := guessAccessor(s.sym.Name)
		e.logger.Warn("no recovered name for indexed property",
			zap.String("unit", e.unit),
			zap.String("rule", GroupIndexedProperty),
			zap.String("key", key),
			zap.String("guess", guess),
		)
		e.report(GroupIndexedProperty, tt.SeverityWarning, s.id,
			key+" ~?> "+guess, "call left unchanged")
		return nil
	}

	target := e.t.Target(s.id)
	args := s.args
	var receiver syntax.NodeID
	switch kind := e.t.KindOf(target); {
	case kind == syntax.KindMemberAccess && e.t.Target(target) == syntax.NoNode:
		return malformed("accessor %s has no receiver", key)
	case kind == syntax.KindMemberAccess &&
		e.t.Kind(e.t.Target(target)) != syntax.KindTypeReference:
		receiver = e.t.Target(target)
	case kind == syntax.KindMemberAccess, kind == syntax.KindIdentifier:
		if len(args) == 0 {
			return malformed("static accessor %s has no receiver argument", key)
		}
		receiver, args = args[0], args[1:]
	default:
		return malformed("accessor %s called through %s", key, e.t.KindOf(target))
	}

	e.t.Detach(receiver)
	e.detach(args)
	e.t.ReplaceWith(s.id, e.t.InvokeMember(receiver, name, args...))
	return nil
}

// group 6: compiler-synthesized operators

var binaryOperators = map[string]syntax.BinaryOp{
	"op_Addition":           syntax.OpAdd,
	"op_Subtraction":        syntax.OpSubtract,
	"op_Multiply":           syntax.OpMultiply,
	"op_Division":           syntax.OpDivide,
	"op_Modulus":            syntax.OpModulus,
	"op_BitwiseAnd":         syntax.OpBitwiseAnd,
	"op_BitwiseOr":          syntax.OpBitwiseOr,
	"op_ExclusiveOr":        syntax.OpExclusiveOr,
	"op_LeftShift":          syntax.OpShiftLeft,
	"op_RightShift":         syntax.OpShiftRight,
	"op_Equality":           syntax.OpEquality,
	"op_Inequality":         syntax.OpInEquality,
	"op_LessThan":           syntax.OpLessThan,
	"op_LessThanOrEqual":    syntax.OpLessThanOrEqual,
	"op_GreaterThan":        syntax.OpGreaterThan,
	"op_GreaterThanOrEqual": syntax.OpGreaterThanOrEqual,
}

var unaryOperators = map[string]syntax.UnaryOp{
	"op_LogicalNot":     syntax.OpNot,
	"op_OnesComplement": syntax.OpBitNot,
	"op_UnaryNegation":  syntax.OpMinus,
	"op_UnaryPlus":      syntax.OpPlus,
	"op_Increment":      syntax.OpIncrement,
	"op_Decrement":      syntax.OpDecrement,
}

func (e *Engine) isBinaryOperator(s *site) bool {
	if s.sym == nil || len(s.args) != 2 {
		return false
	}
	_, ok := binaryOperators[s.sym.Name]
	return ok
}

func (e *Engine) toBinary(s *site) error {
	args := e.detach(s.args)
	expr := e.t.Binary(args[0], binaryOperators[s.sym.Name], args[1])
	e.t.Annotate(expr, s.sym)
	e.t.ReplaceWith(s.id, expr)
	return nil
}

func (e *Engine) isUnaryOperator(s *site) bool {
	if s.sym == nil || len(s.args) != 1 {
		return false
	}
	_, ok := unaryOperators[s.sym.Name]
	return ok
}

func (e *Engine) toUnary(s *site) error {
	expr := e.t.Unary(unaryOperators[s.sym.Name], e.t.Detach(s.args[0]))
	e.t.Annotate(expr, s.sym)
	e.t.ReplaceWith(s.id, expr)
	return nil
}

func (e *Engine) isExplicitConversion(s *site) bool {
	return s.named("op_Explicit") && len(s.args) == 1
}

func (e *Engine) toCast(s *site) error {
	if s.sym.ReturnType == "" {
		return malformed("op_Explicit on %s has no return type", s.sym.DeclaringType)
	}
	expr := e.t.Cast(e.t.SimpleType(typeName(s.sym.ReturnType)), e.t.Detach(s.args[0]))
	e.t.Annotate(expr, s.sym)
	e.t.ReplaceWith(s.id, expr)
	return nil
}

func (e *Engine) isImplicitConversion(s *site) bool {
	return s.named("op_Implicit") && len(s.args) == 1
}

// isTrueOperatorGuard only fires in condition slots, where the runtime
// inserts op_True to test a user-defined truth value.
func (e *Engine) isTrueOperatorGuard(s *site) bool {
	return s.named("op_True") && len(s.args) == 1 && e.t.Role(s.id) == syntax.RoleCondition
}

func (e *Engine) toArgument(s *site) error {
	e.t.ReplaceWith(s.id, e.t.Detach(s.args[0]))
	return nil
}

var builtinTypes = map[string]string{
	"System.Boolean": "bool",
	"System.Byte":    "byte",
	"System.SByte":   "sbyte",
	"System.Char":    "char",
	"System.Int16":   "short",
	"System.UInt16":  "ushort",
	"System.Int32":   "int",
	"System.UInt32":  "uint",
	"System.Int64":   "long",
	"System.UInt64":  "ulong",
	"System.Single":  "float",
	"System.Double":  "double",
	"System.Decimal": "decimal",
	"System.String":  "string",
	"System.Object":  "object",
}

// typeName renders a fully qualified metadata type name the way it is
// written in source: keywords for built-in types, the short name otherwise.
func typeName(full string) string {
	if kw, ok := builtinTypes[full]; ok {
		return kw
	}
	if i := strings.LastIndexByte(full, '.'); i >= 0 {
		return full[i+1:]
	}
	return full
}
