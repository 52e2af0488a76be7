package translate

import (
	"github.com/minij/mjc/pkg/ast"
	"github.com/minij/mjc/pkg/compileerr"
	"github.com/minij/mjc/pkg/names"
	"github.com/minij/mjc/pkg/tree"
	"github.com/minij/mjc/pkg/x86"
)

// translateExpr lowers e to a Tree expression. The returned statement
// slice (possibly empty) must run, in order, before the expression is
// evaluated; translateExpr never returns a bare *tree.ESeq — callers that
// need the split use the returned pair directly.
func (ctx *fnCtx) translateExpr(e ast.Expression) ([]tree.Stm, tree.Exp, error) {
	switch n := e.(type) {
	case *ast.IntLiteral:
		return nil, &tree.Const{Value: n.Value}, nil

	case *ast.BoolLiteral:
		v := int32(0)
		if n.Value {
			v = 1
		}
		return nil, &tree.Const{Value: v}, nil

	case *ast.ThisExpr:
		return nil, &tree.Param{Index: 0}, nil

	case *ast.Identifier:
		if n.FieldOwner != "" {
			off, err := ctx.fieldOffset(n.FieldOwner, n.Name)
			if err != nil {
				return nil, nil, err
			}
			return nil, &tree.Mem{Addr: fieldAddr(&tree.Param{Index: 0}, off)}, nil
		}
		b, ok := ctx.scope[n.Name]
		if !ok {
			return nil, nil, compileerr.At(n.P, "undefined identifier %q", n.Name)
		}
		if b.isParam {
			return nil, &tree.Param{Index: b.param}, nil
		}
		return nil, &tree.TempExp{Temp: b.temp}, nil

	case *ast.NewObjectExpr:
		fields, err := ctx.symtab.FieldsOf(n.ClassName)
		if err != nil {
			return nil, nil, err
		}
		size := int32(1+fields.Len()) * tree.WordSize
		return nil, &tree.Call{Fn: &tree.Name{Label: x86.LHalloc}, Args: []tree.Exp{&tree.Const{Value: size}}}, nil

	case *ast.NewArrayExpr:
		lenStmts, lenExp, err := ctx.translateExpr(n.Length)
		if err != nil {
			return nil, nil, err
		}
		nTemp := names.NewTemp()
		ptrTemp := names.NewTemp()
		size := &tree.BinOpExp{
			Op:    tree.PLUS,
			Left:  &tree.BinOpExp{Op: tree.MUL, Left: &tree.TempExp{Temp: nTemp}, Right: &tree.Const{Value: tree.WordSize}},
			Right: &tree.Const{Value: tree.WordSize},
		}
		stmts := append([]tree.Stm{}, lenStmts...)
		stmts = append(stmts,
			&tree.Move{Dst: &tree.TempExp{Temp: nTemp}, Src: lenExp},
			&tree.Move{Dst: &tree.TempExp{Temp: ptrTemp}, Src: &tree.Call{Fn: &tree.Name{Label: x86.LHalloc}, Args: []tree.Exp{size}}},
			&tree.Move{Dst: &tree.Mem{Addr: &tree.TempExp{Temp: ptrTemp}}, Src: &tree.TempExp{Temp: nTemp}},
		)
		return stmts, &tree.TempExp{Temp: ptrTemp}, nil

	case *ast.ArrayAccessExpr:
		return ctx.translateArrayAccess(n)

	case *ast.ArrayLengthExpr:
		arrStmts, arrExp, err := ctx.translateExpr(n.Array)
		if err != nil {
			return nil, nil, err
		}
		return arrStmts, &tree.Mem{Addr: arrExp}, nil

	case *ast.FieldAccessExpr:
		recvStmts, recvExp, err := ctx.translateExpr(n.Receiver)
		if err != nil {
			return nil, nil, err
		}
		off, err := ctx.fieldOffset(n.ReceiverClass, n.FieldName)
		if err != nil {
			return nil, nil, err
		}
		return recvStmts, &tree.Mem{Addr: fieldAddr(recvExp, off)}, nil

	case *ast.MethodCallExpr:
		return ctx.translateMethodCall(n)

	case *ast.NotExpr:
		return ctx.materializeBool(n)

	case *ast.ReadExpr:
		return nil, &tree.Call{Fn: &tree.Name{Label: x86.LRead}}, nil

	case *ast.BinaryExpr:
		switch n.Op {
		case ast.OpAdd, ast.OpSub, ast.OpMul:
			return ctx.translateArith(n)
		case ast.OpLess, ast.OpAnd:
			return ctx.materializeBool(n)
		default:
			compileerr.Internal("unknown BinOp %v", n.Op)
		}
	}
	compileerr.Internal("unhandled expression type %T", e)
	return nil, nil, nil
}

func (ctx *fnCtx) translateArith(n *ast.BinaryExpr) ([]tree.Stm, tree.Exp, error) {
	lStmts, lExp, err := ctx.translateExpr(n.Left)
	if err != nil {
		return nil, nil, err
	}
	rStmts, rExp, err := ctx.translateExpr(n.Right)
	if err != nil {
		return nil, nil, err
	}
	var op tree.BinOp
	switch n.Op {
	case ast.OpAdd:
		op = tree.PLUS
	case ast.OpSub:
		op = tree.MINUS
	case ast.OpMul:
		op = tree.MUL
	}
	stmts := append(append([]tree.Stm{}, lStmts...), rStmts...)
	return stmts, &tree.BinOpExp{Op: op, Left: lExp, Right: rExp}, nil
}

// materializeBool lowers any boolean-valued AST node used in value
// position (as opposed to directly as an if/while condition) by
// initializing a fresh temp to 0, running the condition code, and setting
// the temp to 1 on the taken branch (spec.md §4.2: "materialize into a
// fresh temp initialized to 0, jump to a label that sets it to 1, fall
// through").
func (ctx *fnCtx) materializeBool(e ast.Expression) ([]tree.Stm, tree.Exp, error) {
	t := names.NewTemp()
	lTrue := names.NewLabel()
	lEnd := names.NewLabel()

	condStmts, err := ctx.translateCond(e, lTrue, lEnd)
	if err != nil {
		return nil, nil, err
	}

	stmts := []tree.Stm{&tree.Move{Dst: &tree.TempExp{Temp: t}, Src: &tree.Const{Value: 0}}}
	stmts = append(stmts, condStmts...)
	stmts = append(stmts,
		&tree.LabelStm{Label: lTrue},
		&tree.Move{Dst: &tree.TempExp{Temp: t}, Src: &tree.Const{Value: 1}},
		&tree.LabelStm{Label: lEnd},
	)
	return stmts, &tree.TempExp{Temp: t}, nil
}

// translateCond compiles e for control flow only: it emits no value, just
// jumps to lTrue or lFalse (spec.md §4.2's "condition" compilation mode).
// This is what lets `a && b` skip evaluating b entirely when a is false.
func (ctx *fnCtx) translateCond(e ast.Expression, lTrue, lFalse names.Label) ([]tree.Stm, error) {
	switch n := e.(type) {
	case *ast.BoolLiteral:
		if n.Value {
			return []tree.Stm{tree.JumpToLabel(lTrue)}, nil
		}
		return []tree.Stm{tree.JumpToLabel(lFalse)}, nil

	case *ast.NotExpr:
		return ctx.translateCond(n.Operand, lFalse, lTrue)

	case *ast.BinaryExpr:
		switch n.Op {
		case ast.OpAnd:
			mid := names.NewLabel()
			left, err := ctx.translateCond(n.Left, mid, lFalse)
			if err != nil {
				return nil, err
			}
			right, err := ctx.translateCond(n.Right, lTrue, lFalse)
			if err != nil {
				return nil, err
			}
			stmts := append(left, &tree.LabelStm{Label: mid})
			return append(stmts, right...), nil

		case ast.OpLess:
			lStmts, lExp, err := ctx.translateExpr(n.Left)
			if err != nil {
				return nil, err
			}
			rStmts, rExp, err := ctx.translateExpr(n.Right)
			if err != nil {
				return nil, err
			}
			stmts := append(append([]tree.Stm{}, lStmts...), rStmts...)
			return append(stmts, &tree.CJump{Rel: tree.LT, Left: lExp, Right: rExp, LTrue: lTrue, LFalse: lFalse}), nil
		}
	}

	// Any other boolean-valued expression (identifier, field, call
	// result): evaluate it and compare against zero.
	stmts, exp, err := ctx.translateExpr(e)
	if err != nil {
		return nil, err
	}
	return append(stmts, &tree.CJump{Rel: tree.NE, Left: exp, Right: &tree.Const{Value: 0}, LTrue: lTrue, LFalse: lFalse}), nil
}

// translateArrayAccess emits the bounds check from spec.md §4.2: a
// non-constant index is checked against both 0 and the length slot; a
// nonnegative constant index elides the lower-bound check entirely.
func (ctx *fnCtx) translateArrayAccess(n *ast.ArrayAccessExpr) ([]tree.Stm, tree.Exp, error) {
	arrStmts, arrExp, err := ctx.translateExpr(n.Array)
	if err != nil {
		return nil, nil, err
	}
	arrTemp := names.NewTemp()
	stmts := append([]tree.Stm{}, arrStmts...)
	stmts = append(stmts, &tree.Move{Dst: &tree.TempExp{Temp: arrTemp}, Src: arrExp})
	arr := tree.Exp(&tree.TempExp{Temp: arrTemp})

	okLabel := names.NewLabel()

	if lit, ok := n.Index.(*ast.IntLiteral); ok && lit.Value >= 0 {
		stmts = append(stmts, &tree.CJump{
			Rel: tree.GE, Left: &tree.Const{Value: lit.Value}, Right: &tree.Mem{Addr: arr},
			LTrue: ctx.raiseLabel, LFalse: okLabel,
		})
		stmts = append(stmts, &tree.LabelStm{Label: okLabel})
		addr := fieldAddr(arr, (lit.Value+1)*tree.WordSize)
		return stmts, &tree.Mem{Addr: addr}, nil
	}

	idxStmts, idxExp, err := ctx.translateExpr(n.Index)
	if err != nil {
		return nil, nil, err
	}
	idxTemp := names.NewTemp()
	stmts = append(stmts, idxStmts...)
	stmts = append(stmts, &tree.Move{Dst: &tree.TempExp{Temp: idxTemp}, Src: idxExp})
	idx := tree.Exp(&tree.TempExp{Temp: idxTemp})

	checkUpper := names.NewLabel()
	stmts = append(stmts,
		&tree.CJump{Rel: tree.LT, Left: idx, Right: &tree.Const{Value: 0}, LTrue: ctx.raiseLabel, LFalse: checkUpper},
		&tree.LabelStm{Label: checkUpper},
		&tree.CJump{Rel: tree.GE, Left: idx, Right: &tree.Mem{Addr: arr}, LTrue: ctx.raiseLabel, LFalse: okLabel},
		&tree.LabelStm{Label: okLabel},
	)
	addr := &tree.BinOpExp{Op: tree.PLUS, Left: arr, Right: &tree.BinOpExp{Op: tree.MUL, Left: idx, Right: &tree.Const{Value: tree.WordSize}}}
	addr2 := &tree.BinOpExp{Op: tree.PLUS, Left: addr, Right: &tree.Const{Value: tree.WordSize}}
	return stmts, &tree.Mem{Addr: addr2}, nil
}

func (ctx *fnCtx) translateMethodCall(n *ast.MethodCallExpr) ([]tree.Stm, tree.Exp, error) {
	sig, err := ctx.symtab.MethodSignature(n.ReceiverClass, n.MethodName)
	if err != nil {
		return nil, nil, err
	}
	recvStmts, recvExp, err := ctx.translateExpr(n.Receiver)
	if err != nil {
		return nil, nil, err
	}
	stmts := append([]tree.Stm{}, recvStmts...)
	args := []tree.Exp{recvExp}
	for _, a := range n.Args {
		aStmts, aExp, err := ctx.translateExpr(a)
		if err != nil {
			return nil, nil, err
		}
		stmts = append(stmts, aStmts...)
		args = append(args, aExp)
	}
	return stmts, &tree.Call{Fn: &tree.Name{Label: names.NamedLabel(sig.Mangled())}, Args: args}, nil
}
