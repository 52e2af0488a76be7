// Package munch implements the maximal-munch instruction selector
// (spec.md §4.5): a recursive-descent walk over a canonical, traced
// Tree function that emits pseudo-x86 instructions over an unbounded
// supply of virtual registers, one per fresh Temp.
package munch

import (
	"github.com/minij/mjc/pkg/compileerr"
	"github.com/minij/mjc/pkg/names"
	"github.com/minij/mjc/pkg/tree"
	"github.com/minij/mjc/pkg/x86"
)

// calleeSaveSlotBytes is the fixed frame space the prologue reserves for
// EBX/ESI/EDI, at EBP-4/-8/-12. Register allocation's spill rewrite grows
// the frame beyond this base one word at a time (spec.md §4.10).
const calleeSaveSlotBytes = 3 * tree.WordSize

type muncher struct {
	out []x86.Instr
}

func (m *muncher) emit(i x86.Instr) { m.out = append(m.out, i) }

func (m *muncher) fresh() x86.Register { return x86.FromTemp(names.NewTemp()) }

// Function munches fn's already-canonical, already-traced body into a
// pseudo-x86 Function, wrapping it with the standard cdecl prologue and
// epilogue (spec.md §4.5 "function framing", §6 ABI).
func Function(fn *tree.Function) *x86.Function {
	m := &muncher{}

	m.emit(&x86.UnaryInstr{Op: x86.PUSH, Src: x86.Reg{Register: x86.RegEBP}})
	m.emit(&x86.BinaryInstr{Op: x86.MOV, Dst: x86.Reg{Register: x86.RegEBP}, Src: x86.Reg{Register: x86.RegESP}})
	m.emit(&x86.BinaryInstr{Op: x86.SUB, Dst: x86.Reg{Register: x86.RegESP}, Src: x86.FrameSizeOperand{}})

	ebxSlot := x86.Mem{Base: &x86.RegEBP, Disp: -tree.WordSize}
	esiSlot := x86.Mem{Base: &x86.RegEBP, Disp: -2 * tree.WordSize}
	ediSlot := x86.Mem{Base: &x86.RegEBP, Disp: -3 * tree.WordSize}
	m.emit(&x86.BinaryInstr{Op: x86.MOV, Dst: ebxSlot, Src: x86.Reg{Register: x86.RegEBX}})
	m.emit(&x86.BinaryInstr{Op: x86.MOV, Dst: esiSlot, Src: x86.Reg{Register: x86.RegESI}})
	m.emit(&x86.BinaryInstr{Op: x86.MOV, Dst: ediSlot, Src: x86.Reg{Register: x86.RegEDI}})

	for _, s := range fn.Body {
		m.stm(s)
	}

	m.emit(&x86.BinaryInstr{Op: x86.MOV, Dst: x86.Reg{Register: x86.RegEBX}, Src: ebxSlot})
	m.emit(&x86.BinaryInstr{Op: x86.MOV, Dst: x86.Reg{Register: x86.RegESI}, Src: esiSlot})
	m.emit(&x86.BinaryInstr{Op: x86.MOV, Dst: x86.Reg{Register: x86.RegEDI}, Src: ediSlot})
	m.emit(&x86.BinaryInstr{Op: x86.MOV, Dst: x86.Reg{Register: x86.RegEAX}, Src: x86.Reg{Register: x86.FromTemp(fn.ReturnTemp)}})
	m.emit(&x86.BinaryInstr{Op: x86.MOV, Dst: x86.Reg{Register: x86.RegESP}, Src: x86.Reg{Register: x86.RegEBP}})
	m.emit(&x86.UnaryInstr{Op: x86.POP, Src: x86.Reg{Register: x86.RegEBP}})
	m.emit(&x86.RetInstr{})

	return &x86.Function{Name: fn.Name, Body: m.out, FrameSize: uint32(calleeSaveSlotBytes)}
}

func (m *muncher) stm(s tree.Stm) {
	switch n := s.(type) {
	case *tree.Move:
		m.move(n)
	case *tree.Jump:
		name, ok := n.Target.(*tree.Name)
		if !ok {
			compileerr.Internal("munch: Jump to a non-Name target is unreachable in a traced program")
		}
		m.emit(&x86.JmpInstr{Target: name.Label})
	case *tree.CJump:
		m.cjump(n)
	case *tree.LabelStm:
		m.emit(&x86.LabelInstr{Label: n.Label})
	case *tree.Seq:
		for _, sub := range n.Stmts {
			m.stm(sub)
		}
	default:
		compileerr.Internal("munch: unhandled statement %T", s)
	}
}

// move handles the three destination-shaped Move rules plus the two
// fast paths spec.md §4.5 calls out explicitly: zeroing via XOR and a
// Call folded directly into its destination.
func (m *muncher) move(n *tree.Move) {
	if call, ok := n.Src.(*tree.Call); ok {
		m.moveCall(n.Dst, call)
		return
	}

	if c, ok := n.Src.(*tree.Const); ok && c.Value == 0 {
		if r, ok := m.tryReg(n.Dst); ok {
			m.emit(&x86.BinaryInstr{Op: x86.XOR, Dst: x86.Reg{Register: r}, Src: x86.Reg{Register: r}})
			return
		}
	}

	if _, dstIsMem := n.Dst.(*tree.Mem); dstIsMem {
		if _, srcIsMem := n.Src.(*tree.Mem); srcIsMem {
			t := m.fresh()
			srcOp := m.exp(n.Src)
			m.emit(&x86.BinaryInstr{Op: x86.MOV, Dst: x86.Reg{Register: t}, Src: srcOp})
			dstOp := m.lexp(n.Dst)
			m.emit(&x86.BinaryInstr{Op: x86.MOV, Dst: dstOp, Src: x86.Reg{Register: t}})
			return
		}
	}

	dstOp := m.lexp(n.Dst)
	srcOp := m.exp(n.Src)
	m.emit(&x86.BinaryInstr{Op: x86.MOV, Dst: dstOp, Src: srcOp})
}

// tryReg reports whether e addresses a plain register directly (a Temp
// or, after allocation-agnostic pseudo addressing, nothing else — Mem
// and Param destinations are memory, so the XOR-zeroing fast path does
// not apply to them).
func (m *muncher) tryReg(e tree.Exp) (x86.Register, bool) {
	if t, ok := e.(*tree.TempExp); ok {
		return x86.FromTemp(t.Temp), true
	}
	return x86.Register{}, false
}

// moveCall munches Call(Name(f), args) -> push args right-to-left; CALL
// f; MOV dst, EAX; ADD ESP, 4*|args|, folding the "store result" step
// directly into dst instead of staging it through an intermediate temp
// (spec.md §4.5).
func (m *muncher) moveCall(dst tree.Exp, call *tree.Call) {
	fn, ok := call.Fn.(*tree.Name)
	if !ok {
		compileerr.Internal("munch: Call target is not a Name")
	}
	for i := len(call.Args) - 1; i >= 0; i-- {
		argOp := m.exp(call.Args[i])
		m.emit(&x86.UnaryInstr{Op: x86.PUSH, Src: argOp})
	}
	m.emit(&x86.CallInstr{Target: fn.Label})
	dstOp := m.lexp(dst)
	m.emit(&x86.BinaryInstr{Op: x86.MOV, Dst: dstOp, Src: x86.Reg{Register: x86.RegEAX}})
	if len(call.Args) > 0 {
		m.emit(&x86.BinaryInstr{Op: x86.ADD, Dst: x86.Reg{Register: x86.RegESP}, Src: x86.Imm{Value: int32(len(call.Args)) * tree.WordSize}})
	}
}

// cjump stages operands so CMP's restrictions are met (it cannot read
// an immediate destination, nor two memory operands), emits CMP, then a
// single conditional jump to LTrue — the tracer guarantees fall-through
// to LFalse (spec.md §4.5).
func (m *muncher) cjump(n *tree.CJump) {
	aOp := m.exp(n.Left)
	bOp := m.exp(n.Right)

	if _, isImm := aOp.(x86.Imm); isImm {
		t := m.fresh()
		m.emit(&x86.BinaryInstr{Op: x86.MOV, Dst: x86.Reg{Register: t}, Src: aOp})
		aOp = x86.Reg{Register: t}
	} else if _, aMem := aOp.(x86.Mem); aMem {
		if _, bMem := bOp.(x86.Mem); bMem {
			t := m.fresh()
			m.emit(&x86.BinaryInstr{Op: x86.MOV, Dst: x86.Reg{Register: t}, Src: aOp})
			aOp = x86.Reg{Register: t}
		}
	}

	m.emit(&x86.BinaryInstr{Op: x86.CMP, Dst: aOp, Src: bOp})
	m.emit(&x86.JInstr{Cond: relToCond(n.Rel), Target: n.LTrue})
}

func relToCond(r tree.RelOp) x86.Cond {
	switch r {
	case tree.EQ:
		return x86.CondE
	case tree.NE:
		return x86.CondNE
	case tree.LT:
		return x86.CondL
	case tree.LE:
		return x86.CondLE
	case tree.GT:
		return x86.CondG
	case tree.GE:
		return x86.CondGE
	case tree.ULT:
		return x86.CondB
	case tree.ULE:
		return x86.CondBE
	case tree.UGT:
		return x86.CondA
	case tree.UGE:
		return x86.CondAE
	default:
		compileerr.Internal("munch: unknown RelOp %v", r)
		panic("unreachable")
	}
}
