package rewrite

import (
	"github.com/gnolang/recast/internal/pattern"
	"github.com/gnolang/recast/internal/syntax"
)

// Full names of the reflection entry points that take a runtime handle.
const (
	getTypeFromHandle       = "System.Type System.Type::GetTypeFromHandle(System.RuntimeTypeHandle)"
	getFieldFromHandle      = "System.Reflection.FieldInfo System.Reflection.FieldInfo::GetFieldFromHandle(System.RuntimeFieldHandle)"
	getFieldFromHandleTyped = "System.Reflection.FieldInfo System.Reflection.FieldInfo::GetFieldFromHandle(System.RuntimeFieldHandle,System.RuntimeTypeHandle)"
)

var (
	// typeof(T).TypeHandle or __reftype(x).TypeHandle
	typeHandleOfTypeOf = pattern.Member(pattern.Choice(
		pattern.TypeOfExpr(pattern.Any()),
		pattern.Shape(syntax.KindRefType, pattern.Any()),
	), "TypeHandle")

	fieldHandle = pattern.Member(pattern.AnyNamed("token"), "FieldHandle")

	typeHandle = pattern.Member(pattern.Named("typeof", pattern.TypeOfExpr(pattern.AnyNamed("type"))), "TypeHandle")

	// (MethodInfo)MethodBase.GetMethodFromHandle(ldtoken(m).MethodHandle[, typeof(T).TypeHandle])
	methodOfHandle = pattern.Shape(syntax.KindCast,
		pattern.Choice(
			pattern.Literal(syntax.KindSimpleType, "MethodInfo"),
			pattern.Literal(syntax.KindSimpleType, "ConstructorInfo"),
			pattern.Literal(syntax.KindSimpleType, "System.Reflection.MethodInfo"),
			pattern.Literal(syntax.KindSimpleType, "System.Reflection.ConstructorInfo"),
		),
		pattern.Invocation(
			pattern.Member(pattern.Shape(syntax.KindTypeReference, pattern.Choice(
				pattern.Literal(syntax.KindSimpleType, "MethodBase"),
				pattern.Literal(syntax.KindSimpleType, "System.Reflection.MethodBase"),
			)), "GetMethodFromHandle"),
			pattern.Member(pattern.Named("ldtoken", pattern.Invocation(
				pattern.Literal(syntax.KindIdentifier, "ldtoken"),
				pattern.Named("method", pattern.TypePattern(syntax.KindIdentifier, syntax.KindMemberAccess)),
			)), "MethodHandle"),
			pattern.Optional(pattern.Member(pattern.TypeOfExpr(pattern.AnyNamed("declaringType")), "TypeHandle")),
		),
	)
)

func (e *Engine) fullName(s *site) string {
	if s.sym == nil {
		return ""
	}
	return s.sym.FullName()
}

func (e *Engine) isLdToken(id syntax.NodeID) bool {
	return id != syntax.NoNode && syntax.HasAnnotation[syntax.LdToken](e.t, id)
}

func (e *Engine) isTypeHandleRoundTrip(s *site) bool {
	return e.fullName(s) == getTypeFromHandle && len(s.args) == 1 &&
		typeHandleOfTypeOf.IsMatch(e.t, s.args[0])
}

// collapseTypeHandle turns Type.GetTypeFromHandle(typeof(T).TypeHandle)
// back into typeof(T).
func (e *Engine) collapseTypeHandle(s *site) error {
	e.t.ReplaceWith(s.id, e.t.Detach(e.t.Target(s.args[0])))
	return nil
}

func (e *Engine) isFieldHandleRoundTrip(s *site) bool {
	if e.fullName(s) != getFieldFromHandle || len(s.args) != 1 {
		return false
	}
	s.match = fieldHandle.Match(e.t, s.args[0])
	return s.match.Success && e.isLdToken(s.match.Single("token"))
}

// collapseFieldHandle turns FieldInfo.GetFieldFromHandle(ldtoken(f).FieldHandle)
// into the ldtoken node itself.
func (e *Engine) collapseFieldHandle(s *site) error {
	e.t.ReplaceWith(s.id, e.t.Detach(s.match.Single("token")))
	return nil
}

func (e *Engine) isTypedFieldHandleRoundTrip(s *site) bool {
	if e.fullName(s) != getFieldFromHandleTyped || len(s.args) != 2 {
		return false
	}
	m := fieldHandle.Match(e.t, s.args[0])
	if !m.Success || !e.isLdToken(m.Single("token")) {
		return false
	}
	tm := typeHandle.Match(e.t, s.args[1])
	if !tm.Success {
		return false
	}
	s.match = m
	s.match2 = tm
	return true
}

// collapseTypedFieldHandle handles the generic-type form of the field
// round trip. The token argument is rewritten to T.f, carrying the field
// reference, before the ldtoken node replaces the call.
func (e *Engine) collapseTypedFieldHandle(s *site) error {
	token := s.match.Single("token")
	if e.t.Kind(token) != syntax.KindInvocation || len(e.t.Args(token)) != 1 {
		return malformed("ldtoken node has %d arguments", len(e.t.Args(token)))
	}
	oldArg := e.t.Args(token)[0]
	field, ok := syntax.Annotation[*syntax.FieldRef](e.t, oldArg)
	if !ok {
		return malformed("field token carries no field reference")
	}

	declType := e.t.Detach(s.match2.Single("type"))
	member := e.t.Member(e.t.TypeRef(declType), field.Name)
	e.t.Annotate(member, field)
	e.t.ReplaceWith(oldArg, member)
	e.t.ReplaceWith(s.id, e.t.Detach(token))
	return nil
}

func (e *Engine) isMethodHandleRoundTrip(s *site) bool {
	if s.kind != syntax.KindCast {
		return false
	}
	s.match = methodOfHandle.Match(e.t, s.id)
	return s.match.Success && e.isLdToken(s.match.Single("ldtoken"))
}

// collapseMethodHandle turns the methodof idiom back into its ldtoken
// node. With a declaring type present the token becomes T.m(params...).
func (e *Engine) collapseMethodHandle(s *site) error {
	token := s.match.Single("ldtoken")
	if s.match.Has("declaringType") {
		methodNode := s.match.Single("method")
		method := e.t.Symbol(methodNode)
		if method == nil {
			return malformed("method token carries no method reference")
		}
		declType := e.t.Detach(s.match.Single("declaringType"))
		params := make([]syntax.NodeID, 0, len(method.Params))
		for _, p := range method.Params {
			params = append(params, e.t.TypeRefNamed(typeName(p.Type)))
		}
		call := e.t.InvokeMember(e.t.TypeRef(declType), method.Name, params...)
		e.t.Annotate(call, method)
		e.t.ReplaceWith(methodNode, call)
	}
	e.t.ReplaceWith(s.id, e.t.Detach(token))
	return nil
}
