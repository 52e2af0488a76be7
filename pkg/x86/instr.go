package x86

import "github.com/minij/mjc/pkg/names"

// UnaryOp is a one-operand pseudo-x86 instruction opcode.
type UnaryOp int

const (
	PUSH UnaryOp = iota
	POP
	NEG
	NOT
	INC
	DEC
	IDIV
)

// BinaryOp is a two-operand pseudo-x86 instruction opcode.
type BinaryOp int

const (
	MOV BinaryOp = iota
	ADD
	SUB
	SHL
	SHR
	SAL
	SAR
	AND
	OR
	XOR
	TEST
	CMP
	LEA
	IMUL
)

// Cond is a conditional-jump suffix. The set named in spec.md §3 only
// lists the signed conditions plus Z; tree.RelOp also carries the four
// unsigned comparisons (ULT/ULE/UGT/UGE — used nowhere by the current
// MiniJava translator, which never needs unsigned comparison, but part
// of the Tree IR's general relational-op surface and so reachable from
// a hand-built tree.CJump). CondB/CondBE/CondA/CondAE round the set out
// rather than leaving the muncher unable to render them.
type Cond int

const (
	CondE Cond = iota
	CondNE
	CondL
	CondLE
	CondG
	CondGE
	CondZ
	CondB
	CondBE
	CondA
	CondAE
)

// Instr is one pseudo-x86 instruction.
type Instr interface {
	instrNode()
}

type (
	UnaryInstr struct {
		Op  UnaryOp
		Src Operand
	}

	BinaryInstr struct {
		Op       BinaryOp
		Dst, Src Operand
	}

	LabelInstr struct{ Label names.Label }

	CallInstr struct{ Target names.Label }

	JmpInstr struct{ Target names.Label }

	JInstr struct {
		Cond   Cond
		Target names.Label
	}

	RetInstr struct{}
)

func (*UnaryInstr) instrNode()  {}
func (*BinaryInstr) instrNode() {}
func (*LabelInstr) instrNode()  {}
func (*CallInstr) instrNode()   {}
func (*JmpInstr) instrNode()    {}
func (*JInstr) instrNode()      {}
func (*RetInstr) instrNode()    {}

func sameReg(a, b Register) bool { return a.id == b.id }

func containsReg(regs []Register, r Register) bool {
	for _, x := range regs {
		if sameReg(x, r) {
			return true
		}
	}
	return false
}

// Uses returns the registers i reads. See spec.md §4.5 for the special
// cases (IDIV, CALL, RET, the XOR r,r zeroing idiom, and MOV/LEA's
// asymmetric treatment of their destination operand).
func Uses(i Instr) []Register {
	switch n := i.(type) {
	case *UnaryInstr:
		switch n.Op {
		case PUSH:
			return regsOf(n.Src)
		case POP:
			return nil
		case IDIV:
			return append([]Register{RegEAX, RegEDX}, regsOf(n.Src)...)
		default: // NEG, NOT, INC, DEC: read-modify-write
			return regsOf(n.Src)
		}

	case *BinaryInstr:
		switch n.Op {
		case MOV:
			uses := regsOf(n.Src)
			if _, dstIsReg := n.Dst.(Reg); !dstIsReg {
				uses = append(uses, regsOf(n.Dst)...)
			}
			return uses
		case LEA:
			return regsOf(n.Src)
		case CMP, TEST:
			return append(regsOf(n.Dst), regsOf(n.Src)...)
		case XOR:
			if dr, ok := n.Dst.(Reg); ok {
				if sr, ok2 := n.Src.(Reg); ok2 && sameReg(dr.Register, sr.Register) {
					return nil
				}
			}
			return append(regsOf(n.Dst), regsOf(n.Src)...)
		default: // ADD, SUB, SHL, SHR, SAL, SAR, AND, OR, IMUL: read-modify-write dst
			return append(regsOf(n.Dst), regsOf(n.Src)...)
		}

	case *CallInstr:
		return nil

	case *RetInstr:
		return append(append([]Register{}, CalleeSaved...), RegEAX)
	}
	return nil
}

// Defs returns the registers i writes.
func Defs(i Instr) []Register {
	switch n := i.(type) {
	case *UnaryInstr:
		switch n.Op {
		case PUSH:
			return nil
		case POP:
			return regsOf(n.Src)
		case IDIV:
			return []Register{RegEAX, RegEDX}
		default: // NEG, NOT, INC, DEC
			if _, ok := n.Src.(Reg); ok {
				return regsOf(n.Src)
			}
			return nil
		}

	case *BinaryInstr:
		switch n.Op {
		case CMP, TEST:
			return nil
		case LEA, MOV:
			if r, ok := n.Dst.(Reg); ok {
				return []Register{r.Register}
			}
			return nil
		default:
			if r, ok := n.Dst.(Reg); ok {
				return []Register{r.Register}
			}
			return nil
		}

	case *CallInstr:
		return append(append([]Register{}, CallerSaved...), RegEAX)
	}
	return nil
}

// Jumps returns the labels i may transfer control to.
func Jumps(i Instr) []names.Label {
	switch n := i.(type) {
	case *JmpInstr:
		return []names.Label{n.Target}
	case *JInstr:
		return []names.Label{n.Target}
	}
	return nil
}

// IsFallThrough reports whether control may reach the next instruction in
// program order. Per spec.md §4.5 this is true for everything except an
// unconditional JMP — a conditional J is fall-through because the tracer
// guarantees its false branch is the very next statement.
func IsFallThrough(i Instr) bool {
	_, isJmp := i.(*JmpInstr)
	return !isJmp
}

// IsMoveBetweenTemps returns the (dst, src) register pair iff i is a
// register-to-register MOV.
func IsMoveBetweenTemps(i Instr) (dst, src Register, ok bool) {
	b, isBinary := i.(*BinaryInstr)
	if !isBinary || b.Op != MOV {
		return Register{}, Register{}, false
	}
	d, dok := b.Dst.(Reg)
	s, sok := b.Src.(Reg)
	if !dok || !sok {
		return Register{}, Register{}, false
	}
	return d.Register, s.Register, true
}
