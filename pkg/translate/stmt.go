package translate

import (
	"github.com/minij/mjc/pkg/ast"
	"github.com/minij/mjc/pkg/compileerr"
	"github.com/minij/mjc/pkg/names"
	"github.com/minij/mjc/pkg/tree"
	"github.com/minij/mjc/pkg/x86"
)

func (ctx *fnCtx) translateStmt(s ast.Statement) ([]tree.Stm, error) {
	switch n := s.(type) {
	case *ast.BlockStmt:
		var out []tree.Stm
		for _, sub := range n.Stmts {
			stmts, err := ctx.translateStmt(sub)
			if err != nil {
				return nil, err
			}
			out = append(out, stmts...)
		}
		return out, nil

	case *ast.AssignStmt:
		valStmts, valExp, err := ctx.translateExpr(n.Value)
		if err != nil {
			return nil, err
		}
		var dst tree.Exp
		if n.FieldOwner != "" {
			off, err := ctx.fieldOffset(n.FieldOwner, n.Name)
			if err != nil {
				return nil, err
			}
			dst = &tree.Mem{Addr: fieldAddr(&tree.Param{Index: 0}, off)}
		} else {
			b, ok := ctx.scope[n.Name]
			if !ok {
				return nil, compileerr.At(n.P, "undefined identifier %q", n.Name)
			}
			if b.isParam {
				dst = &tree.Param{Index: b.param}
			} else {
				dst = &tree.TempExp{Temp: b.temp}
			}
		}
		return append(valStmts, &tree.Move{Dst: dst, Src: valExp}), nil

	case *ast.ArrayAssignStmt:
		return ctx.translateArrayAssign(n)

	case *ast.IfStmt:
		lTrue := names.NewLabel()
		lFalse := names.NewLabel()
		lEnd := names.NewLabel()
		cond, err := ctx.translateCond(n.Cond, lTrue, lFalse)
		if err != nil {
			return nil, err
		}
		thenStmts, err := ctx.translateStmt(n.Then)
		if err != nil {
			return nil, err
		}
		out := append([]tree.Stm{}, cond...)
		out = append(out, &tree.LabelStm{Label: lTrue})
		out = append(out, thenStmts...)
		out = append(out, tree.JumpToLabel(lEnd), &tree.LabelStm{Label: lFalse})
		if n.Else != nil {
			elseStmts, err := ctx.translateStmt(n.Else)
			if err != nil {
				return nil, err
			}
			out = append(out, elseStmts...)
		}
		out = append(out, &tree.LabelStm{Label: lEnd})
		return out, nil

	case *ast.WhileStmt:
		lTest := names.NewLabel()
		lBody := names.NewLabel()
		lEnd := names.NewLabel()
		cond, err := ctx.translateCond(n.Cond, lBody, lEnd)
		if err != nil {
			return nil, err
		}
		bodyStmts, err := ctx.translateStmt(n.Body)
		if err != nil {
			return nil, err
		}
		out := []tree.Stm{&tree.LabelStm{Label: lTest}}
		out = append(out, cond...)
		out = append(out, &tree.LabelStm{Label: lBody})
		out = append(out, bodyStmts...)
		out = append(out, tree.JumpToLabel(lTest), &tree.LabelStm{Label: lEnd})
		return out, nil

	case *ast.PrintStmt:
		argStmts, argExp, err := ctx.translateExpr(n.Arg)
		if err != nil {
			return nil, err
		}
		discard := names.NewTemp()
		out := append([]tree.Stm{}, argStmts...)
		out = append(out, &tree.Move{
			Dst: &tree.TempExp{Temp: discard},
			Src: &tree.Call{Fn: &tree.Name{Label: x86.LPrintlnInt}, Args: []tree.Exp{argExp}},
		})
		return out, nil

	case *ast.WriteStmt:
		argStmts, argExp, err := ctx.translateExpr(n.Arg)
		if err != nil {
			return nil, err
		}
		discard := names.NewTemp()
		out := append([]tree.Stm{}, argStmts...)
		out = append(out, &tree.Move{
			Dst: &tree.TempExp{Temp: discard},
			Src: &tree.Call{Fn: &tree.Name{Label: x86.LWrite}, Args: []tree.Exp{argExp}},
		})
		return out, nil
	}
	compileerr.Internal("unhandled statement type %T", s)
	return nil, nil
}

func (ctx *fnCtx) translateArrayAssign(n *ast.ArrayAssignStmt) ([]tree.Stm, error) {
	arrStmts, arrExp, err := ctx.translateExpr(n.Array)
	if err != nil {
		return nil, err
	}
	arrTemp := names.NewTemp()
	stmts := append([]tree.Stm{}, arrStmts...)
	stmts = append(stmts, &tree.Move{Dst: &tree.TempExp{Temp: arrTemp}, Src: arrExp})
	arr := tree.Exp(&tree.TempExp{Temp: arrTemp})

	valStmts, valExp, err := ctx.translateExpr(n.Value)
	if err != nil {
		return nil, err
	}

	okLabel := names.NewLabel()
	var addr tree.Exp

	if lit, ok := n.Index.(*ast.IntLiteral); ok && lit.Value >= 0 {
		stmts = append(stmts,
			&tree.CJump{Rel: tree.GE, Left: &tree.Const{Value: lit.Value}, Right: &tree.Mem{Addr: arr}, LTrue: ctx.raiseLabel, LFalse: okLabel},
			&tree.LabelStm{Label: okLabel},
		)
		addr = fieldAddr(arr, (lit.Value+1)*tree.WordSize)
	} else {
		idxStmts, idxExp, err := ctx.translateExpr(n.Index)
		if err != nil {
			return nil, err
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
		base := &tree.BinOpExp{Op: tree.PLUS, Left: arr, Right: &tree.BinOpExp{Op: tree.MUL, Left: idx, Right: &tree.Const{Value: tree.WordSize}}}
		addr = &tree.BinOpExp{Op: tree.PLUS, Left: base, Right: &tree.Const{Value: tree.WordSize}}
	}

	stmts = append(stmts, valStmts...)
	stmts = append(stmts, &tree.Move{Dst: &tree.Mem{Addr: addr}, Src: valExp})
	return stmts, nil
}
