package canon

import (
	"testing"

	"github.com/minij/mjc/pkg/names"
	"github.com/minij/mjc/pkg/tree"
)

// assertNoESeq walks a canonicalized statement list and fails if any ESeq
// survived (spec.md §4.3 invariant 1).
func assertNoESeq(t *testing.T, stmts []tree.Stm) {
	t.Helper()
	for _, s := range stmts {
		walkStm(t, s)
	}
}

func walkStm(t *testing.T, s tree.Stm) {
	t.Helper()
	switch n := s.(type) {
	case *tree.Move:
		walkExp(t, n.Dst)
		if call, ok := n.Src.(*tree.Call); ok {
			for _, a := range call.Args {
				walkExp(t, a)
			}
			walkExp(t, call.Fn)
			return
		}
		walkExp(t, n.Src)
	case *tree.Jump:
		walkExp(t, n.Target)
	case *tree.CJump:
		walkExp(t, n.Left)
		walkExp(t, n.Right)
	case *tree.LabelStm:
	case *tree.Seq:
		for _, sub := range n.Stmts {
			walkStm(t, sub)
		}
	}
}

func walkExp(t *testing.T, e tree.Exp) {
	t.Helper()
	switch n := e.(type) {
	case *tree.ESeq:
		t.Fatalf("canonical form must not contain an ESeq, found %#v", n)
	case *tree.Mem:
		walkExp(t, n.Addr)
	case *tree.BinOpExp:
		walkExp(t, n.Left)
		walkExp(t, n.Right)
	case *tree.Call:
		t.Fatalf("a bare Call may only appear as a Move's RHS, found one embedded in an expression: %#v", n)
	}
}

func TestFunctionEliminatesESeq(t *testing.T) {
	names.Reset()
	t1 := names.NewTemp()
	// (t1 := 5; t1) + 1, built directly with an ESeq to force canonization
	// to flatten it.
	inner := &tree.ESeq{
		Stmts: []tree.Stm{&tree.Move{Dst: &tree.TempExp{Temp: t1}, Src: &tree.Const{Value: 5}}},
		Exp:   &tree.TempExp{Temp: t1},
	}
	fn := &tree.Function{
		Name:       names.NamedLabel("Lf"),
		ParamCount: 0,
		Body: []tree.Stm{
			&tree.Move{Dst: &tree.TempExp{Temp: names.NewTemp()}, Src: &tree.BinOpExp{Op: tree.PLUS, Left: inner, Right: &tree.Const{Value: 1}}},
		},
		ReturnTemp: names.NewTemp(),
	}

	got := Function(fn)
	assertNoESeq(t, got.Body)
}

func TestFunctionHoistsNestedCall(t *testing.T) {
	names.Reset()
	fnLabel := names.NamedLabel("Lhelper")
	// Move(t, BinOp(Call(fnLabel), 1)) — the Call is not the direct RHS of
	// the Move, so canonization must hoist it into its own Move-Call first.
	fn := &tree.Function{
		Name:       names.NamedLabel("Lg"),
		ParamCount: 0,
		Body: []tree.Stm{
			&tree.Move{
				Dst: &tree.TempExp{Temp: names.NewTemp()},
				Src: &tree.BinOpExp{
					Op:   tree.PLUS,
					Left: &tree.Call{Fn: &tree.Name{Label: fnLabel}},
					Right: &tree.Const{Value: 1},
				},
			},
		},
		ReturnTemp: names.NewTemp(),
	}

	got := Function(fn)
	assertNoESeq(t, got.Body)

	foundMoveCall := false
	for _, s := range got.Body {
		if m, ok := s.(*tree.Move); ok {
			if _, ok := m.Src.(*tree.Call); ok {
				foundMoveCall = true
			}
		}
	}
	if !foundMoveCall {
		t.Fatalf("expected the hoisted call to surface as a Move(Temp, Call), got %#v", got.Body)
	}
}

func TestFunctionPreservesFunctionMetadata(t *testing.T) {
	names.Reset()
	retTemp := names.NewTemp()
	raise := names.NewLabel()
	fn := &tree.Function{
		Name:       names.NamedLabel("Lmain"),
		ParamCount: 3,
		Body:       nil,
		ReturnTemp: retTemp,
		RaiseLabel: raise,
	}
	got := Function(fn)
	if !got.Name.Equal(fn.Name) || got.ParamCount != fn.ParamCount || got.ReturnTemp != fn.ReturnTemp || !got.RaiseLabel.Equal(fn.RaiseLabel) {
		t.Fatalf("Function must preserve Name/ParamCount/ReturnTemp/RaiseLabel unchanged, got %#v", got)
	}
}
