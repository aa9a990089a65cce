package syntax

import (
	"fmt"
	"strconv"
	"strings"
)

// Char is a UTF-16 character literal; it is distinct from int32 so that
// character constants keep their runtime type.
type Char rune

// RuntimeTypeName returns the runtime type name of a primitive payload,
// e.g. "Int32" for int32 and "String" for string.
func RuntimeTypeName(v any) string {
	switch v.(type) {
	case int8:
		return "SByte"
	case uint8:
		return "Byte"
	case int16:
		return "Int16"
	case uint16:
		return "UInt16"
	case int32:
		return "Int32"
	case uint32:
		return "UInt32"
	case int64:
		return "Int64"
	case uint64:
		return "UInt64"
	case float32:
		return "Single"
	case float64:
		return "Double"
	case bool:
		return "Boolean"
	case string:
		return "String"
	case Char:
		return "Char"
	}
	return fmt.Sprintf("%T", v)
}

// FormatValue renders a primitive payload the way the runtime's own
// ToString does: invariant digits, no quotes, no suffixes.
func FormatValue(v any) string {
	switch x := v.(type) {
	case float32:
		return strconv.FormatFloat(float64(x), 'G', -1, 32)
	case float64:
		return strconv.FormatFloat(x, 'G', -1, 64)
	case bool:
		if x {
			return "True"
		}
		return "False"
	case Char:
		return string(rune(x))
	case string:
		return x
	}
	return fmt.Sprint(v)
}

// QuoteLiteral renders s as a double-quoted source literal with the escapes
// the target language's code generator emits.
func QuoteLiteral(s string) string {
	var sb strings.Builder
	sb.Grow(len(s) + 2)
	sb.WriteByte('"')
	for _, r := range s {
		switch r {
		case '\r':
			sb.WriteString(`\r`)
		case '\t':
			sb.WriteString(`\t`)
		case '"':
			sb.WriteString(`\"`)
		case '\'':
			sb.WriteString(`\'`)
		case '\\':
			sb.WriteString(`\\`)
		case 0:
			sb.WriteString(`\0`)
		case '\n':
			sb.WriteString(`\n`)
		case '\u2028', '\u2029':
			fmt.Fprintf(&sb, `\u%04X`, r)
		default:
			sb.WriteRune(r)
		}
	}
	sb.WriteByte('"')
	return sb.String()
}

func literal(v any) string {
	switch x := v.(type) {
	case string:
		return QuoteLiteral(x)
	case Char:
		q := QuoteLiteral(string(rune(x)))
		return "'" + q[1:len(q)-1] + "'"
	case bool:
		return strconv.FormatBool(x)
	case float32:
		return FormatValue(x) + "f"
	case int64:
		return FormatValue(x) + "L"
	case uint32:
		return FormatValue(x) + "U"
	case uint64:
		return FormatValue(x) + "UL"
	}
	return FormatValue(v)
}

// String renders the subtree at id as source text.
func (t *Tree) String(id NodeID) string {
	if id == NoNode {
		return ""
	}
	p := printer{t: t}
	p.node(id)
	return p.sb.String()
}

type printer struct {
	t      *Tree
	sb     strings.Builder
	indent int
}

func (p *printer) write(s string) { p.sb.WriteString(s) }

func (p *printer) newline() {
	p.sb.WriteByte('\n')
	p.sb.WriteString(strings.Repeat("\t", p.indent))
}

func (p *printer) list(ids []NodeID) {
	for i, id := range ids {
		if i > 0 {
			p.write(", ")
		}
		p.node(id)
	}
}

// operand renders a child of an operator, parenthesized when it is itself
// an operator expression.
func (p *printer) operand(id NodeID) {
	switch p.t.KindOf(id) {
	case KindBinary, KindAssignment, KindCast:
		p.write("(")
		p.node(id)
		p.write(")")
	default:
		p.node(id)
	}
}

func (p *printer) node(id NodeID) {
	t := p.t
	switch t.KindOf(id) {
	case KindNone:
	case KindIdentifier, KindSimpleType:
		p.write(t.Name(id))
	case KindTypeReference:
		p.node(t.Child(id, 0))
	case KindMemberAccess:
		p.operand(t.Target(id))
		p.write("." + t.Name(id))
	case KindInvocation:
		p.node(t.Target(id))
		p.write("(")
		p.list(t.Args(id))
		p.write(")")
	case KindIndexer:
		p.operand(t.Target(id))
		p.write("[")
		p.list(t.Args(id))
		p.write("]")
	case KindPrimitive:
		p.write(literal(t.Value(id)))
	case KindNull:
		p.write("null")
	case KindThis:
		p.write("this")
	case KindBase:
		p.write("base")
	case KindBinary:
		p.operand(t.Left(id))
		p.write(" " + t.BinaryOp(id).String() + " ")
		p.operand(t.Right(id))
	case KindUnary:
		op := t.UnaryOp(id)
		if op.IsPostfix() {
			p.operand(t.Operand(id))
			p.write(strings.TrimPrefix(op.String(), "post"))
			return
		}
		p.write(op.String())
		p.operand(t.Operand(id))
	case KindAssignment:
		p.node(t.Left(id))
		p.write(" " + t.AssignOp(id).String() + " ")
		p.node(t.Right(id))
	case KindArrayCreate:
		p.write("new " + t.Name(id) + "[] { ")
		p.list(t.Elements(id))
		p.write(" }")
	case KindObjectCreate:
		p.write("new ")
		p.node(t.Child(id, 0))
		p.write("(")
		p.list(t.Args(id))
		p.write(")")
	case KindCast:
		p.write("(")
		p.node(t.Child(id, 0))
		p.write(")")
		p.operand(t.Child(id, 1))
	case KindTypeOf:
		p.write("typeof(")
		p.node(t.Child(id, 0))
		p.write(")")
	case KindRefType:
		p.write("__reftype(")
		p.node(t.Child(id, 0))
		p.write(")")
	case KindExpressionStatement:
		p.node(t.Child(id, 0))
		p.write(";")
	case KindThrow:
		p.write("throw ")
		p.node(t.Child(id, 0))
		p.write(";")
	case KindReturn:
		p.write("return")
		if e := t.Child(id, 0); e != NoNode {
			p.write(" ")
			p.node(e)
		}
		p.write(";")
	case KindBlock:
		p.write("{")
		p.indent++
		for _, s := range t.Children(id) {
			p.newline()
			p.node(s)
		}
		p.indent--
		p.newline()
		p.write("}")
	case KindIf:
		p.write("if (")
		p.node(t.Child(id, 0))
		p.write(") ")
		p.node(t.Child(id, 1))
		if els := t.Child(id, 2); els != NoNode {
			p.write(" else ")
			p.node(els)
		}
	case KindWhile:
		p.write("while (")
		p.node(t.Child(id, 0))
		p.write(") ")
		p.node(t.Child(id, 1))
	case KindEnumMember:
		p.write(t.Name(id) + " = ")
		p.node(t.Child(id, 0))
	default:
		p.write("/* " + t.Kind(id).String() + " */")
	}
}
