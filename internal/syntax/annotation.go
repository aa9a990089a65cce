package syntax

import (
	"slices"
	"strings"
)

// Annotate attaches v to id. Several annotations of distinct types may
// coexist on one node.
func (t *Tree) Annotate(id NodeID, v any) {
	t.at(id)
	t.annotations[id] = append(t.annotations[id], v)
}

// Annotations returns a copy of every annotation on id.
func (t *Tree) Annotations(id NodeID) []any {
	return slices.Clone(t.annotations[id])
}

// CopyAnnotations appends the annotations of src to dst.
func (t *Tree) CopyAnnotations(dst, src NodeID) {
	if anns := t.annotations[src]; len(anns) > 0 {
		t.annotations[dst] = append(t.annotations[dst], anns...)
	}
}

// Annotation returns the first annotation of type T on id.
func Annotation[T any](t *Tree, id NodeID) (T, bool) {
	for _, a := range t.annotations[id] {
		if v, ok := a.(T); ok {
			return v, true
		}
	}
	var zero T
	return zero, false
}

// HasAnnotation reports whether id carries an annotation of type T.
func HasAnnotation[T any](t *Tree, id NodeID) bool {
	_, ok := Annotation[T](t, id)
	return ok
}

// RemoveAnnotations drops every annotation of type T from id.
func RemoveAnnotations[T any](t *Tree, id NodeID) {
	anns := slices.DeleteFunc(t.annotations[id], func(a any) bool {
		_, ok := a.(T)
		return ok
	})
	if len(anns) == 0 {
		delete(t.annotations, id)
		return
	}
	t.annotations[id] = anns
}

// Symbol returns the resolved call target of id, or nil.
func (t *Tree) Symbol(id NodeID) *SymbolRef {
	s, _ := Annotation[*SymbolRef](t, id)
	return s
}

// Param is one entry of a method's parameter signature.
type Param struct {
	Name string
	Type string
}

// SymbolRef is the resolved identity of a call target. It is attached by
// the decoder and never mutated afterwards; rewrites only re-attach it.
type SymbolRef struct {
	DeclaringType string
	Name          string
	Params        []Param
	ReturnType    string
}

// Key is the declaring type and member name joined by a dot, the key
// format of the eliminated-property table.
func (s *SymbolRef) Key() string {
	return s.DeclaringType + "." + s.Name
}

// FullName renders "Ret Decl::Name(P1,P2)".
func (s *SymbolRef) FullName() string {
	var sb strings.Builder
	sb.WriteString(s.ReturnType)
	sb.WriteByte(' ')
	sb.WriteString(s.DeclaringType)
	sb.WriteString("::")
	sb.WriteString(s.Name)
	sb.WriteByte('(')
	for i, p := range s.Params {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(p.Type)
	}
	sb.WriteByte(')')
	return sb.String()
}

// FieldRef is the resolved identity of a field.
type FieldRef struct {
	DeclaringType string
	Name          string
	FieldType     string
}

// LdToken marks the node that loads a metadata token (ldtoken).
type LdToken struct{}
