package rewrite

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/gnolang/recast/internal/invariant"
	"github.com/gnolang/recast/internal/pattern"
	"github.com/gnolang/recast/internal/syntax"
	tt "github.com/gnolang/recast/internal/types"
)

// RestoreOriginal is attached to a folded compound assignment or
// increment. It keeps the binary expression the fold removed so a later
// pass can rebuild "x = x op y" when overflow-checked semantics require it.
type RestoreOriginal struct {
	Binary syntax.NodeID
}

// Restore rebuilds the plain assignment from expr, which must be the node
// carrying r. An attached expr is replaced in the tree; the returned id is
// the rebuilt assignment.
func (r *RestoreOriginal) Restore(t *syntax.Tree, expr syntax.NodeID) syntax.NodeID {
	syntax.RemoveAnnotations[*RestoreOriginal](t, expr)

	assign := expr
	switch t.Kind(expr) {
	case syntax.KindAssignment:
		t.SetAssignOp(expr, syntax.AssignPlain)
	case syntax.KindUnary:
		operand := t.Detach(t.Operand(expr))
		assign = t.Assign(operand, syntax.AssignPlain, t.Prim(int32(1)))
		if t.Parent(expr) != syntax.NoNode || t.Root() == expr {
			t.ReplaceWith(expr, assign)
		}
	default:
		invariant.Unreachable("restore annotation on %s node", t.Kind(expr))
	}

	invariant.Invariant(t.NumChildren(r.Binary) == 1,
		"folded binary %d has %d children", r.Binary, t.NumChildren(r.Binary))
	t.Append(r.Binary, t.Detach(t.Right(assign)))
	t.Append(assign, r.Binary)
	return assign
}

var one = pattern.Prim(int32(1))

// foldAssignments runs the compound-assignment sub-pass over the subtree
// at id, children first.
func (e *Engine) foldAssignments(id syntax.NodeID) {
	for _, c := range e.t.Children(id) {
		e.foldAssignments(c)
	}
	if e.t.InTree(id) && e.t.Kind(id) == syntax.KindAssignment {
		e.foldAssignment(id)
	}
}

func (e *Engine) foldAssignment(id syntax.NodeID) {
	t := e.t
	if n := t.NumChildren(id); n != 2 {
		e.logger.Error("malformed assignment",
			zap.String("unit", e.unit),
			zap.Int("operands", n),
		)
		e.report(GroupCompoundAssignment, tt.SeverityError, id,
			fmt.Sprintf("assignment has %d operands, want 2", n), "node left unchanged")
		return
	}
	left, right := t.Left(id), t.Right(id)

	// x = x op y  =>  x op= y
	if t.AssignOp(id) == syntax.AssignPlain && t.Kind(right) == syntax.KindBinary &&
		e.canCompound(left) && t.Equal(left, t.Left(right)) {
		if op := syntax.CompoundOf(t.BinaryOp(right)); op != syntax.AssignPlain {
			t.SetAssignOp(id, op)
			t.CopyAnnotations(id, right)
			t.Detach(right)
			t.Append(id, t.Detach(t.Right(right)))
			t.Annotate(id, &RestoreOriginal{Binary: right})
		}
	}

	// x += 1  =>  x++ (or ++x inside an expression)
	op := t.AssignOp(id)
	if e.settings.IntroduceIncrementDecrement &&
		(op == syntax.AssignAdd || op == syntax.AssignSubtract) &&
		one.IsMatch(t, t.Right(id)) && t.Symbol(id) == nil {
		var uop syntax.UnaryOp
		switch {
		case t.IsStatementSlot(id) && op == syntax.AssignAdd:
			uop = syntax.OpPostIncrement
		case t.IsStatementSlot(id):
			uop = syntax.OpPostDecrement
		case op == syntax.AssignAdd:
			uop = syntax.OpIncrement
		default:
			uop = syntax.OpDecrement
		}
		u := t.Unary(uop, t.Detach(t.Left(id)))
		t.CopyAnnotations(u, id)
		t.ReplaceWith(id, u)
		return
	}

	// ExceptObject is maintained by the runtime; assigning it is a no-op.
	if l := t.Left(id); t.Kind(l) == syntax.KindMemberAccess && t.Name(l) == "ExceptObject" {
		if t.IsStatementSlot(id) {
			e.removeStatement(t.Parent(id))
			return
		}
		t.ReplaceWith(id, t.Detach(t.Right(id)))
	}
}

// canCompound reports whether left may be evaluated twice without
// observable difference.
func (e *Engine) canCompound(left syntax.NodeID) bool {
	t := e.t
	switch t.KindOf(left) {
	case syntax.KindMemberAccess:
		return e.sideEffectFree(t.Target(left))
	case syntax.KindIndexer:
		if !e.sideEffectFree(t.Target(left)) {
			return false
		}
		for _, a := range t.Args(left) {
			if !e.sideEffectFree(a) {
				return false
			}
		}
		return true
	case syntax.KindUnary:
		return t.UnaryOp(left) == syntax.OpDereference && e.sideEffectFree(t.Operand(left))
	}
	return e.sideEffectFree(left)
}

func (e *Engine) sideEffectFree(id syntax.NodeID) bool {
	switch e.t.KindOf(id) {
	case syntax.KindThis, syntax.KindBase, syntax.KindIdentifier, syntax.KindTypeReference, syntax.KindPrimitive:
		return true
	}
	return false
}
