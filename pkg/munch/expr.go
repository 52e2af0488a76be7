package munch

import (
	"github.com/minij/mjc/pkg/compileerr"
	"github.com/minij/mjc/pkg/tree"
	"github.com/minij/mjc/pkg/x86"
)

// lexp munches an addressable destination: a Temp's pseudo-register, a
// Param's frame-relative slot, or a Mem's resolved address. Every
// canonical Move.Dst is one of these three shapes (spec.md §3 invariant).
func (m *muncher) lexp(e tree.Exp) x86.Operand {
	switch n := e.(type) {
	case *tree.TempExp:
		return x86.Reg{Register: x86.FromTemp(n.Temp)}
	case *tree.Param:
		return x86.Mem{Base: &x86.RegEBP, Disp: 2*tree.WordSize + n.Index*tree.WordSize}
	case *tree.Mem:
		return m.addressOf(n.Addr)
	}
	compileerr.Internal("munch: %T is not an addressable destination", e)
	panic("unreachable")
}

// exp munches e into some operand — a register, memory location, or
// immediate — holding its value (spec.md §4.5).
func (m *muncher) exp(e tree.Exp) x86.Operand {
	switch n := e.(type) {
	case *tree.Const:
		return x86.Imm{Value: n.Value}
	case *tree.TempExp, *tree.Param, *tree.Mem:
		return m.lexp(e)
	case *tree.BinOpExp:
		return m.binop(n)
	case *tree.Call:
		return m.call(n)
	case *tree.Name:
		compileerr.Internal("munch: a bare Name may only appear as a Jump/Call target")
	}
	compileerr.Internal("munch: unhandled expression %T", e)
	panic("unreachable")
}

// binop munches every Tree BinOp. DIV is the one irregular case — it
// needs the dividend in EAX and its sign-extension in EDX before IDIV;
// everything else follows the generic MOV t,a; OP t,b pattern into a
// fresh pseudo-register (spec.md §4.5).
func (m *muncher) binop(n *tree.BinOpExp) x86.Operand {
	if n.Op == tree.DIV {
		return m.div(n.Left, n.Right)
	}

	aOp := m.exp(n.Left)
	t := m.fresh()
	m.emit(&x86.BinaryInstr{Op: x86.MOV, Dst: x86.Reg{Register: t}, Src: aOp})
	bOp := m.exp(n.Right)
	m.emit(&x86.BinaryInstr{Op: binOpcode(n.Op), Dst: x86.Reg{Register: t}, Src: bOp})
	return x86.Reg{Register: t}
}

func binOpcode(op tree.BinOp) x86.BinaryOp {
	switch op {
	case tree.PLUS:
		return x86.ADD
	case tree.MINUS:
		return x86.SUB
	case tree.MUL:
		return x86.IMUL
	case tree.AND:
		return x86.AND
	case tree.OR:
		return x86.OR
	case tree.XOR:
		return x86.XOR
	case tree.LSHIFT:
		return x86.SHL
	case tree.RSHIFT:
		return x86.SHR
	case tree.ARSHIFT:
		return x86.SAR
	default:
		compileerr.Internal("munch: unhandled BinOp %v", op)
		panic("unreachable")
	}
}

// div emits IDIV's mandatory setup: EAX holds the dividend, EDX its
// sign, obtained without a dedicated sign-extend opcode by copying EAX
// into EDX and arithmetic-shifting right by 31 (spec.md §4.5) — every
// bit of EDX becomes the sign bit of EAX. IDIV's operand may not be an
// immediate, so a constant divisor is staged through a fresh temp.
func (m *muncher) div(left, right tree.Exp) x86.Operand {
	aOp := m.exp(left)
	m.emit(&x86.BinaryInstr{Op: x86.MOV, Dst: x86.Reg{Register: x86.RegEAX}, Src: aOp})
	m.emit(&x86.BinaryInstr{Op: x86.MOV, Dst: x86.Reg{Register: x86.RegEDX}, Src: x86.Reg{Register: x86.RegEAX}})
	m.emit(&x86.BinaryInstr{Op: x86.SAR, Dst: x86.Reg{Register: x86.RegEDX}, Src: x86.Imm{Value: 31}})

	bOp := m.exp(right)
	if _, isImm := bOp.(x86.Imm); isImm {
		t := m.fresh()
		m.emit(&x86.BinaryInstr{Op: x86.MOV, Dst: x86.Reg{Register: t}, Src: bOp})
		bOp = x86.Reg{Register: t}
	}
	m.emit(&x86.UnaryInstr{Op: x86.IDIV, Src: bOp})

	result := m.fresh()
	m.emit(&x86.BinaryInstr{Op: x86.MOV, Dst: x86.Reg{Register: result}, Src: x86.Reg{Register: x86.RegEAX}})
	return x86.Reg{Register: result}
}

// call munches a Call appearing outside the Move-destination fast path
// (canonical trees keep every Call as a Move's source, so this is reached
// when non-canonical, hand-built trees feed the muncher directly in
// tests): push args right-to-left, CALL, collect EAX, clean up the
// stack.
func (m *muncher) call(n *tree.Call) x86.Operand {
	fn, ok := n.Fn.(*tree.Name)
	if !ok {
		compileerr.Internal("munch: Call target is not a Name")
	}
	for i := len(n.Args) - 1; i >= 0; i-- {
		argOp := m.exp(n.Args[i])
		m.emit(&x86.UnaryInstr{Op: x86.PUSH, Src: argOp})
	}
	m.emit(&x86.CallInstr{Target: fn.Label})
	t := m.fresh()
	m.emit(&x86.BinaryInstr{Op: x86.MOV, Dst: x86.Reg{Register: t}, Src: x86.Reg{Register: x86.RegEAX}})
	if len(n.Args) > 0 {
		m.emit(&x86.BinaryInstr{Op: x86.ADD, Dst: x86.Reg{Register: x86.RegESP}, Src: x86.Imm{Value: int32(len(n.Args)) * tree.WordSize}})
	}
	return x86.Reg{Register: t}
}

// addressOf resolves a Mem's address expression to an x86.Mem operand.
// It first tries the linear-combination recognizer, which produces
// addressing with zero extra instructions for the base/index/scale/disp
// shapes array indexing and field access actually generate; anything it
// can't fold (an arbitrary expression tree) is munched into a register
// and used as a bare base.
func (m *muncher) addressOf(addr tree.Exp) x86.Mem {
	if lc, ok := linearCombo(addr); ok {
		if mem, ok := lc.asMem(); ok {
			return mem
		}
	}
	op := m.exp(addr)
	if r, ok := op.(x86.Reg); ok {
		return x86.Mem{Base: &r.Register}
	}
	t := m.fresh()
	m.emit(&x86.BinaryInstr{Op: x86.MOV, Dst: x86.Reg{Register: t}, Src: op})
	return x86.Mem{Base: &t}
}
