package syntax

import (
	"errors"
	"fmt"
	"io"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Document is the YAML form of one node. Upstream stages that cannot link
// against this package hand trees over in this form.
type Document struct {
	Kind     string      `yaml:"kind"`
	Name     string      `yaml:"name,omitempty"`
	Op       string      `yaml:"op,omitempty"`
	Type     string      `yaml:"type,omitempty"`
	Value    string      `yaml:"value,omitempty"`
	Role     string      `yaml:"role,omitempty"`
	Symbol   *SymbolDoc  `yaml:"symbol,omitempty"`
	Field    *FieldDoc   `yaml:"field,omitempty"`
	LdToken  bool        `yaml:"ldtoken,omitempty"`
	Children []*Document `yaml:"children,omitempty"`
}

// SymbolDoc is the YAML form of a SymbolRef.
type SymbolDoc struct {
	Type    string   `yaml:"type"`
	Name    string   `yaml:"name"`
	Params  []string `yaml:"params,omitempty"`
	Returns string   `yaml:"returns,omitempty"`
}

// FieldDoc is the YAML form of a FieldRef.
type FieldDoc struct {
	Type      string `yaml:"type"`
	Name      string `yaml:"name"`
	FieldType string `yaml:"field_type,omitempty"`
}

// Decode reads every YAML document from r and builds one tree per
// document.
func Decode(r io.Reader) ([]*Tree, error) {
	dec := yaml.NewDecoder(r)
	var trees []*Tree
	for i := 0; ; i++ {
		var doc Document
		err := dec.Decode(&doc)
		if errors.Is(err, io.EOF) {
			return trees, nil
		}
		if err != nil {
			return nil, fmt.Errorf("document %d: %w", i, err)
		}
		t, err := Build(&doc)
		if err != nil {
			return nil, fmt.Errorf("document %d: %w", i, err)
		}
		trees = append(trees, t)
	}
}

// Build creates a tree whose root is doc.
func Build(doc *Document) (*Tree, error) {
	if doc == nil {
		return nil, errors.New("$: null node")
	}
	t := NewTree()
	root, err := t.build(doc, "$")
	if err != nil {
		return nil, err
	}
	t.SetRoot(root)
	return t, nil
}

func (t *Tree) build(doc *Document, path string) (NodeID, error) {
	kind, err := ParseKind(doc.Kind)
	if err != nil {
		return NoNode, fmt.Errorf("%s: %w", path, err)
	}
	id := t.alloc(kind)
	n := t.at(id)
	n.name = doc.Name

	switch kind {
	case KindBinary:
		op, err := ParseBinaryOp(doc.Op)
		if err != nil {
			return NoNode, fmt.Errorf("%s: %w", path, err)
		}
		n.op = int(op)
	case KindUnary:
		op, err := ParseUnaryOp(doc.Op)
		if err != nil {
			return NoNode, fmt.Errorf("%s: %w", path, err)
		}
		n.op = int(op)
	case KindAssignment:
		opText := doc.Op
		if opText == "" {
			opText = "="
		}
		op, err := ParseAssignOp(opText)
		if err != nil {
			return NoNode, fmt.Errorf("%s: %w", path, err)
		}
		n.op = int(op)
	case KindPrimitive:
		v, err := ParseValue(doc.Type, doc.Value)
		if err != nil {
			return NoNode, fmt.Errorf("%s: %w", path, err)
		}
		n.value = v
	}

	if s := doc.Symbol; s != nil {
		sym := &SymbolRef{DeclaringType: s.Type, Name: s.Name, ReturnType: s.Returns}
		for _, p := range s.Params {
			sym.Params = append(sym.Params, Param{Type: p})
		}
		t.Annotate(id, sym)
	}
	if f := doc.Field; f != nil {
		t.Annotate(id, &FieldRef{DeclaringType: f.Type, Name: f.Name, FieldType: f.FieldType})
	}
	if doc.LdToken {
		t.Annotate(id, LdToken{})
	}

	for i, cd := range doc.Children {
		if cd == nil {
			return NoNode, fmt.Errorf("%s.children[%d]: null node", path, i)
		}
		c, err := t.build(cd, fmt.Sprintf("%s.children[%d]", path, i))
		if err != nil {
			return NoNode, err
		}
		role := defaultRole(kind, i)
		if cd.Role != "" {
			if role, err = ParseRole(cd.Role); err != nil {
				return NoNode, fmt.Errorf("%s.children[%d]: %w", path, i, err)
			}
		}
		t.AppendRole(id, c, role)
	}
	return id, nil
}

// ParseValue converts the textual value of a primitive according to its
// runtime type name.
func ParseValue(typeName, text string) (any, error) {
	switch typeName {
	case "String", "string", "":
		return text, nil
	case "Boolean":
		return strconv.ParseBool(text)
	case "Char":
		r := []rune(text)
		if len(r) != 1 {
			return nil, fmt.Errorf("char literal %q must be one character", text)
		}
		return Char(r[0]), nil
	case "Double":
		return strconv.ParseFloat(text, 64)
	case "Single":
		f, err := strconv.ParseFloat(text, 32)
		return float32(f), err
	}

	bits, signed, ok := intLayout(typeName)
	if !ok {
		return nil, fmt.Errorf("unknown primitive type %q", typeName)
	}
	if signed {
		v, err := strconv.ParseInt(text, 0, bits)
		if err != nil {
			return nil, err
		}
		switch bits {
		case 8:
			return int8(v), nil
		case 16:
			return int16(v), nil
		case 32:
			return int32(v), nil
		}
		return v, nil
	}
	v, err := strconv.ParseUint(text, 0, bits)
	if err != nil {
		return nil, err
	}
	switch bits {
	case 8:
		return uint8(v), nil
	case 16:
		return uint16(v), nil
	case 32:
		return uint32(v), nil
	}
	return v, nil
}

func intLayout(typeName string) (bits int, signed bool, ok bool) {
	switch typeName {
	case "SByte":
		return 8, true, true
	case "Byte":
		return 8, false, true
	case "Int16":
		return 16, true, true
	case "UInt16":
		return 16, false, true
	case "Int32":
		return 32, true, true
	case "UInt32":
		return 32, false, true
	case "Int64":
		return 64, true, true
	case "UInt64":
		return 64, false, true
	}
	return 0, false, false
}
