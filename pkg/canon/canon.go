// Package canon implements the canonizer (spec.md §4.3): it rewrites a
// Tree-IR function so that no expression contains an ESeq, every Call
// appears only as the immediate RHS of a Move into a Temp or Mem, and
// argument/operand evaluation order is witnessed by statement sequence
// rather than implicit tree shape.
//
// The core operation is over "effect-expression" pairs (stmts, exp): a
// statement prefix that must run before exp's value is read. combine and
// reorder implement spec.md §4.3's commutativity heuristic: a statement
// commutes with an expression that is a Const or Name, so two
// effect-expressions can be concatenated without staging through a temp
// only when the second's statements cannot observe a side effect hidden
// in the first's value.
package canon

import (
	"github.com/minij/mjc/pkg/names"
	"github.com/minij/mjc/pkg/tree"
)

// Function canonizes fn's body into a single flat, canonical statement
// sequence. fn's Body slice is consumed; the result owns a fresh slice.
func Function(fn *tree.Function) *tree.Function {
	return &tree.Function{
		Name:       fn.Name,
		ParamCount: fn.ParamCount,
		Body:       stmtList(fn.Body),
		ReturnTemp: fn.ReturnTemp,
		RaiseLabel: fn.RaiseLabel,
	}
}

// commute reports whether it is safe to move stmts ahead of an
// already-computed value e without changing observable behavior: either
// there are no statements to reorder past, or e is a Const/Name (neither
// of which can alias memory a statement might write, nor read memory a
// statement might have just written).
func commute(stmts []tree.Stm, e tree.Exp) bool {
	if len(stmts) == 0 {
		return true
	}
	switch e.(type) {
	case *tree.Const, *tree.Name:
		return true
	default:
		return false
	}
}

// reorder canonizes each expression in list left to right, producing one
// statement prefix and a parallel list of values, staging a value through
// a fresh temp whenever a later element's statements might not commute
// with it. Any Call appearing anywhere in list (not just at the head) is
// forced into "any other Call occurrence" handling: assigned to a fresh
// temp as an extra statement, since only canonStm's Move-Call rule is
// permitted to leave a Call as a bare expression.
func reorder(list []tree.Exp) ([]tree.Stm, []tree.Exp) {
	if len(list) == 0 {
		return nil, nil
	}
	headStmts, headExp := expr(list[0])
	tailStmts, tailExps := reorder(list[1:])

	if commute(tailStmts, headExp) {
		stmts := append(append([]tree.Stm{}, headStmts...), tailStmts...)
		exps := append([]tree.Exp{headExp}, tailExps...)
		return stmts, exps
	}

	t := names.NewTemp()
	stmts := append(append([]tree.Stm{}, headStmts...), &tree.Move{Dst: &tree.TempExp{Temp: t}, Src: headExp})
	stmts = append(stmts, tailStmts...)
	exps := append([]tree.Exp{&tree.TempExp{Temp: t}}, tailExps...)
	return stmts, exps
}

// expr canonizes a single expression into an effect-expression pair.
func expr(e tree.Exp) ([]tree.Stm, tree.Exp) {
	switch n := e.(type) {
	case *tree.Const, *tree.Name, *tree.TempExp, *tree.Param:
		return nil, e

	case *tree.Mem:
		s, a := expr(n.Addr)
		return s, &tree.Mem{Addr: a}

	case *tree.BinOpExp:
		stmts, exps := reorder([]tree.Exp{n.Left, n.Right})
		return stmts, &tree.BinOpExp{Op: n.Op, Left: exps[0], Right: exps[1]}

	case *tree.Call:
		// Any Call not already consumed by canonStm's Move-Call rule: it
		// becomes the RHS of a synthetic Move into a fresh temp, which is
		// then the expression's value (spec.md §4.3).
		stmts, exps := reorder(append([]tree.Exp{n.Fn}, n.Args...))
		t := names.NewTemp()
		newCall := &tree.Call{Fn: exps[0], Args: exps[1:]}
		stmts = append(stmts, &tree.Move{Dst: &tree.TempExp{Temp: t}, Src: newCall})
		return stmts, &tree.TempExp{Temp: t}

	case *tree.ESeq:
		s1 := stmtList(n.Stmts)
		s2, e2 := expr(n.Exp)
		return append(s1, s2...), e2
	}
	panic("canon: unhandled expression type")
}

// stmtList canonizes a sequence of statements, flattening any nested Seq
// and concatenating each statement's canonical expansion.
func stmtList(stmts []tree.Stm) []tree.Stm {
	var out []tree.Stm
	for _, s := range stmts {
		out = append(out, stmt(s)...)
	}
	return out
}

// stmt canonizes one statement into a flat slice of canonical statements.
func stmt(s tree.Stm) []tree.Stm {
	switch n := s.(type) {
	case *tree.Move:
		if call, ok := n.Src.(*tree.Call); ok {
			return moveCall(n.Dst, call)
		}
		switch dst := n.Dst.(type) {
		case *tree.Mem:
			stmts, exps := reorder([]tree.Exp{dst.Addr, n.Src})
			return append(stmts, &tree.Move{Dst: &tree.Mem{Addr: exps[0]}, Src: exps[1]})
		default: // *tree.TempExp or *tree.Param
			s1, e1 := expr(n.Src)
			return append(s1, &tree.Move{Dst: dst, Src: e1})
		}

	case *tree.Jump:
		s1, e1 := expr(n.Target)
		return append(s1, &tree.Jump{Target: e1, Labels: n.Labels})

	case *tree.CJump:
		stmts, exps := reorder([]tree.Exp{n.Left, n.Right})
		return append(stmts, &tree.CJump{Rel: n.Rel, Left: exps[0], Right: exps[1], LTrue: n.LTrue, LFalse: n.LFalse})

	case *tree.LabelStm:
		return []tree.Stm{n}

	case *tree.Seq:
		return stmtList(n.Stmts)
	}
	panic("canon: unhandled statement type")
}

// moveCall canonizes Move(dst, Call(...)): the one form spec.md §4.3
// permits to keep a Call as a bare RHS. A Mem destination's address is
// reordered together with the call's function and arguments, address
// first, so its statements run first and its value is staged through a
// temp whenever the call's argument statements might write memory the
// address reads (spec.md §4.3: "canonize a and src independently,
// combine, and rebuild the store"). A Param destination is not a legal
// Call parent (spec.md §3 invariant), so it is staged through a fresh temp.
func moveCall(dst tree.Exp, call *tree.Call) []tree.Stm {
	if d, ok := dst.(*tree.Mem); ok {
		stmts, exps := reorder(append([]tree.Exp{d.Addr, call.Fn}, call.Args...))
		newCall := &tree.Call{Fn: exps[1], Args: exps[2:]}
		return append(stmts, &tree.Move{Dst: &tree.Mem{Addr: exps[0]}, Src: newCall})
	}

	callStmts, callExps := reorder(append([]tree.Exp{call.Fn}, call.Args...))
	newCall := &tree.Call{Fn: callExps[0], Args: callExps[1:]}

	switch d := dst.(type) {
	case *tree.Param:
		t := names.NewTemp()
		stmts := append(append([]tree.Stm{}, callStmts...), &tree.Move{Dst: &tree.TempExp{Temp: t}, Src: newCall})
		return append(stmts, &tree.Move{Dst: d, Src: &tree.TempExp{Temp: t}})

	default: // *tree.TempExp
		return append(callStmts, &tree.Move{Dst: dst, Src: newCall})
	}
}
