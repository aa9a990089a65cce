package syntax

import "fmt"

// Kind is the variant tag of a node.
type Kind int

const (
	// KindNone is reported for absent nodes by Tree.KindOf.
	KindNone Kind = iota
	KindInvocation
	KindMemberAccess
	KindIdentifier
	KindTypeReference
	KindSimpleType
	KindPrimitive
	KindNull
	KindThis
	KindBase
	KindBinary
	KindUnary
	KindAssignment
	KindArrayCreate
	KindObjectCreate
	KindCast
	KindTypeOf
	KindRefType
	KindIndexer
	KindExpressionStatement
	KindThrow
	KindBlock
	KindIf
	KindWhile
	KindReturn
	KindEnumMember
)

var kindNames = map[Kind]string{
	KindInvocation:          "invocation",
	KindMemberAccess:        "member",
	KindIdentifier:          "identifier",
	KindTypeReference:       "typeref",
	KindSimpleType:          "type",
	KindPrimitive:           "primitive",
	KindNull:                "null",
	KindThis:                "this",
	KindBase:                "base",
	KindBinary:              "binary",
	KindUnary:               "unary",
	KindAssignment:          "assignment",
	KindArrayCreate:         "array",
	KindObjectCreate:        "new",
	KindCast:                "cast",
	KindTypeOf:              "typeof",
	KindRefType:             "reftype",
	KindIndexer:             "indexer",
	KindExpressionStatement: "expr",
	KindThrow:               "throw",
	KindBlock:               "block",
	KindIf:                  "if",
	KindWhile:               "while",
	KindReturn:              "return",
	KindEnumMember:          "enummember",
}

func (k Kind) String() string {
	if k == KindNone {
		return "none"
	}
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// ParseKind is the inverse of Kind.String.
func ParseKind(s string) (Kind, error) {
	for k, name := range kindNames {
		if name == s {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown node kind %q", s)
}

// IsStatement reports whether nodes of this kind occupy statement slots.
func (k Kind) IsStatement() bool {
	switch k {
	case KindExpressionStatement, KindThrow, KindBlock, KindIf, KindWhile, KindReturn:
		return true
	}
	return false
}

// Role is the semantic slot a node occupies in its parent.
type Role int

const (
	RoleNone Role = iota
	RoleTarget
	RoleArgument
	RoleLeft
	RoleRight
	RoleOperand
	RoleType
	RoleExpression
	RoleCondition
	RoleStatement
	RoleElement
	RoleEmbedded
	RoleInitializer
)

var roleNames = map[Role]string{
	RoleNone:        "none",
	RoleTarget:      "target",
	RoleArgument:    "argument",
	RoleLeft:        "left",
	RoleRight:       "right",
	RoleOperand:     "operand",
	RoleType:        "type",
	RoleExpression:  "expression",
	RoleCondition:   "condition",
	RoleStatement:   "statement",
	RoleElement:     "element",
	RoleEmbedded:    "embedded",
	RoleInitializer: "initializer",
}

func (r Role) String() string {
	if s, ok := roleNames[r]; ok {
		return s
	}
	return fmt.Sprintf("role(%d)", int(r))
}

// ParseRole is the inverse of Role.String.
func ParseRole(s string) (Role, error) {
	for r, name := range roleNames {
		if name == s {
			return r, nil
		}
	}
	return RoleNone, fmt.Errorf("unknown role %q", s)
}

// defaultRole is the role a child at index i gets in a parent of kind k.
func defaultRole(k Kind, i int) Role {
	switch k {
	case KindInvocation, KindIndexer:
		if i == 0 {
			return RoleTarget
		}
		return RoleArgument
	case KindMemberAccess:
		return RoleTarget
	case KindBinary, KindAssignment:
		if i == 0 {
			return RoleLeft
		}
		return RoleRight
	case KindUnary:
		return RoleOperand
	case KindTypeReference, KindTypeOf:
		return RoleType
	case KindObjectCreate:
		if i == 0 {
			return RoleType
		}
		return RoleArgument
	case KindCast:
		if i == 0 {
			return RoleType
		}
		return RoleExpression
	case KindRefType:
		return RoleArgument
	case KindArrayCreate:
		return RoleElement
	case KindExpressionStatement, KindThrow, KindReturn:
		return RoleExpression
	case KindBlock:
		return RoleStatement
	case KindIf, KindWhile:
		if i == 0 {
			return RoleCondition
		}
		return RoleEmbedded
	case KindEnumMember:
		return RoleInitializer
	}
	return RoleNone
}

// BinaryOp is the operator of a binary expression.
type BinaryOp int

const (
	_ BinaryOp = iota
	OpAdd
	OpSubtract
	OpMultiply
	OpDivide
	OpModulus
	OpBitwiseAnd
	OpBitwiseOr
	OpExclusiveOr
	OpShiftLeft
	OpShiftRight
	OpEquality
	OpInEquality
	OpLessThan
	OpLessThanOrEqual
	OpGreaterThan
	OpGreaterThanOrEqual
	OpConditionalAnd
	OpConditionalOr
)

var binaryOpSymbols = map[BinaryOp]string{
	OpAdd:                "+",
	OpSubtract:           "-",
	OpMultiply:           "*",
	OpDivide:             "/",
	OpModulus:            "%",
	OpBitwiseAnd:         "&",
	OpBitwiseOr:          "|",
	OpExclusiveOr:        "^",
	OpShiftLeft:          "<<",
	OpShiftRight:         ">>",
	OpEquality:           "==",
	OpInEquality:         "!=",
	OpLessThan:           "<",
	OpLessThanOrEqual:    "<=",
	OpGreaterThan:        ">",
	OpGreaterThanOrEqual: ">=",
	OpConditionalAnd:     "&&",
	OpConditionalOr:      "||",
}

func (op BinaryOp) String() string {
	if s, ok := binaryOpSymbols[op]; ok {
		return s
	}
	return "?"
}

// ParseBinaryOp maps an operator symbol back to its BinaryOp.
func ParseBinaryOp(s string) (BinaryOp, error) {
	for op, sym := range binaryOpSymbols {
		if sym == s {
			return op, nil
		}
	}
	return 0, fmt.Errorf("unknown binary operator %q", s)
}

// UnaryOp is the operator of a unary expression.
type UnaryOp int

const (
	_ UnaryOp = iota
	OpNot
	OpBitNot
	OpMinus
	OpPlus
	OpIncrement
	OpDecrement
	OpPostIncrement
	OpPostDecrement
	OpDereference
	OpAddressOf
)

var unaryOpSymbols = map[UnaryOp]string{
	OpNot:           "!",
	OpBitNot:        "~",
	OpMinus:         "-",
	OpPlus:          "+",
	OpIncrement:     "++",
	OpDecrement:     "--",
	OpPostIncrement: "post++",
	OpPostDecrement: "post--",
	OpDereference:   "*",
	OpAddressOf:     "&",
}

func (op UnaryOp) String() string {
	if s, ok := unaryOpSymbols[op]; ok {
		return s
	}
	return "?"
}

// IsPostfix reports whether the operator is written after its operand.
func (op UnaryOp) IsPostfix() bool {
	return op == OpPostIncrement || op == OpPostDecrement
}

// ParseUnaryOp maps an operator symbol back to its UnaryOp.
func ParseUnaryOp(s string) (UnaryOp, error) {
	for op, sym := range unaryOpSymbols {
		if sym == s {
			return op, nil
		}
	}
	return 0, fmt.Errorf("unknown unary operator %q", s)
}

// AssignOp is the operator of an assignment.
type AssignOp int

const (
	_ AssignOp = iota
	AssignPlain
	AssignAdd
	AssignSubtract
	AssignMultiply
	AssignDivide
	AssignModulus
	AssignShiftLeft
	AssignShiftRight
	AssignBitwiseAnd
	AssignBitwiseOr
	AssignExclusiveOr
)

var assignOpSymbols = map[AssignOp]string{
	AssignPlain:       "=",
	AssignAdd:         "+=",
	AssignSubtract:    "-=",
	AssignMultiply:    "*=",
	AssignDivide:      "/=",
	AssignModulus:     "%=",
	AssignShiftLeft:   "<<=",
	AssignShiftRight:  ">>=",
	AssignBitwiseAnd:  "&=",
	AssignBitwiseOr:   "|=",
	AssignExclusiveOr: "^=",
}

func (op AssignOp) String() string {
	if s, ok := assignOpSymbols[op]; ok {
		return s
	}
	return "?"
}

// ParseAssignOp maps an operator symbol back to its AssignOp.
func ParseAssignOp(s string) (AssignOp, error) {
	for op, sym := range assignOpSymbols {
		if sym == s {
			return op, nil
		}
	}
	return 0, fmt.Errorf("unknown assignment operator %q", s)
}

// CompoundOf returns the compound assignment operator for op, or
// AssignPlain when op has no compound form (relational and logical ones).
func CompoundOf(op BinaryOp) AssignOp {
	switch op {
	case OpAdd:
		return AssignAdd
	case OpSubtract:
		return AssignSubtract
	case OpMultiply:
		return AssignMultiply
	case OpDivide:
		return AssignDivide
	case OpModulus:
		return AssignModulus
	case OpShiftLeft:
		return AssignShiftLeft
	case OpShiftRight:
		return AssignShiftRight
	case OpBitwiseAnd:
		return AssignBitwiseAnd
	case OpBitwiseOr:
		return AssignBitwiseOr
	case OpExclusiveOr:
		return AssignExclusiveOr
	}
	return AssignPlain
}

// BinaryOf is the inverse of CompoundOf for compound operators.
func BinaryOf(op AssignOp) (BinaryOp, bool) {
	for b := OpAdd; b <= OpShiftRight; b++ {
		if CompoundOf(b) == op {
			return b, true
		}
	}
	return 0, false
}
