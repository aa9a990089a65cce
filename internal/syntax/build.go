package syntax

// Typed constructors. Every node handed in as a child must be detached.

func (t *Tree) withChildren(k Kind, children ...NodeID) NodeID {
	id := t.alloc(k)
	for _, c := range children {
		t.Append(id, c)
	}
	return id
}

// Ident creates an identifier expression.
func (t *Tree) Ident(name string) NodeID {
	id := t.alloc(KindIdentifier)
	t.at(id).name = name
	return id
}

// SimpleType creates a named type node.
func (t *Tree) SimpleType(name string) NodeID {
	id := t.alloc(KindSimpleType)
	t.at(id).name = name
	return id
}

// TypeRef creates a type reference expression wrapping a type node.
func (t *Tree) TypeRef(typ NodeID) NodeID {
	return t.withChildren(KindTypeReference, typ)
}

// TypeRefNamed is TypeRef(SimpleType(name)).
func (t *Tree) TypeRefNamed(name string) NodeID {
	return t.TypeRef(t.SimpleType(name))
}

// Member creates target.name.
func (t *Tree) Member(target NodeID, name string) NodeID {
	id := t.withChildren(KindMemberAccess, target)
	t.at(id).name = name
	return id
}

// Invoke creates target(args...).
func (t *Tree) Invoke(target NodeID, args ...NodeID) NodeID {
	return t.withChildren(KindInvocation, append([]NodeID{target}, args...)...)
}

// InvokeMember creates target.name(args...).
func (t *Tree) InvokeMember(target NodeID, name string, args ...NodeID) NodeID {
	return t.Invoke(t.Member(target, name), args...)
}

// InvokeStatic creates typeName.name(args...).
func (t *Tree) InvokeStatic(typeName, name string, args ...NodeID) NodeID {
	return t.InvokeMember(t.TypeRefNamed(typeName), name, args...)
}

// Prim creates a primitive literal.
func (t *Tree) Prim(v any) NodeID {
	id := t.alloc(KindPrimitive)
	t.at(id).value = v
	return id
}

// Null creates the null literal.
func (t *Tree) Null() NodeID { return t.alloc(KindNull) }

// This creates the this reference.
func (t *Tree) This() NodeID { return t.alloc(KindThis) }

// Base creates the base reference.
func (t *Tree) Base() NodeID { return t.alloc(KindBase) }

// Binary creates left op right.
func (t *Tree) Binary(left NodeID, op BinaryOp, right NodeID) NodeID {
	id := t.withChildren(KindBinary, left, right)
	t.at(id).op = int(op)
	return id
}

// Unary creates op operand.
func (t *Tree) Unary(op UnaryOp, operand NodeID) NodeID {
	id := t.withChildren(KindUnary, operand)
	t.at(id).op = int(op)
	return id
}

// Not creates !operand.
func (t *Tree) Not(operand NodeID) NodeID { return t.Unary(OpNot, operand) }

// Assign creates left op right.
func (t *Tree) Assign(left NodeID, op AssignOp, right NodeID) NodeID {
	id := t.withChildren(KindAssignment, left, right)
	t.at(id).op = int(op)
	return id
}

// ArrayCreate creates new elemType[] { elems... }.
func (t *Tree) ArrayCreate(elemType string, elems ...NodeID) NodeID {
	id := t.withChildren(KindArrayCreate, elems...)
	t.at(id).name = elemType
	return id
}

// ObjectCreate creates new typ(args...).
func (t *Tree) ObjectCreate(typ NodeID, args ...NodeID) NodeID {
	return t.withChildren(KindObjectCreate, append([]NodeID{typ}, args...)...)
}

// Cast creates (typ)expr.
func (t *Tree) Cast(typ, expr NodeID) NodeID {
	return t.withChildren(KindCast, typ, expr)
}

// TypeOf creates typeof(typ).
func (t *Tree) TypeOf(typ NodeID) NodeID {
	return t.withChildren(KindTypeOf, typ)
}

// RefType creates __reftype(expr).
func (t *Tree) RefType(expr NodeID) NodeID {
	return t.withChildren(KindRefType, expr)
}

// Indexer creates target[args...].
func (t *Tree) Indexer(target NodeID, args ...NodeID) NodeID {
	return t.withChildren(KindIndexer, append([]NodeID{target}, args...)...)
}

// ExprStmt wraps expr into a statement.
func (t *Tree) ExprStmt(expr NodeID) NodeID {
	return t.withChildren(KindExpressionStatement, expr)
}

// Throw creates throw expr;.
func (t *Tree) Throw(expr NodeID) NodeID {
	return t.withChildren(KindThrow, expr)
}

// Return creates return expr;. expr may be NoNode.
func (t *Tree) Return(expr NodeID) NodeID {
	if expr == NoNode {
		return t.alloc(KindReturn)
	}
	return t.withChildren(KindReturn, expr)
}

// Block creates { stmts... }.
func (t *Tree) Block(stmts ...NodeID) NodeID {
	return t.withChildren(KindBlock, stmts...)
}

// If creates if (cond) then [else els]. els may be NoNode.
func (t *Tree) If(cond, then, els NodeID) NodeID {
	if els == NoNode {
		return t.withChildren(KindIf, cond, then)
	}
	return t.withChildren(KindIf, cond, then, els)
}

// While creates while (cond) body.
func (t *Tree) While(cond, body NodeID) NodeID {
	return t.withChildren(KindWhile, cond, body)
}

// EnumMember creates name = init.
func (t *Tree) EnumMember(name string, init NodeID) NodeID {
	id := t.withChildren(KindEnumMember, init)
	t.at(id).name = name
	return id
}
