package x86

import "fmt"

// Scale is a memory operand's index multiplier.
type Scale int32

// Operand is a pseudo-x86 operand (spec.md §3).
type Operand interface {
	operandNode()
	String() string
}

// Imm is an immediate integer.
type Imm struct{ Value int32 }

func (Imm) operandNode()     {}
func (i Imm) String() string { return fmt.Sprintf("%d", i.Value) }

// Reg wraps a register as an operand.
type Reg struct{ Register Register }

func (Reg) operandNode()     {}
func (r Reg) String() string { return r.Register.String() }

// Mem is a memory operand in one of the four shapes spec.md §3 allows:
// base only, index*scale only, base+index*scale, each optionally with a
// displacement. A nil Base/Index means that component is absent.
type Mem struct {
	Base  *Register
	Index *Register
	Scale Scale // only meaningful when Index != nil; one of 1,2,4,8
	Disp  int32
}

func (Mem) operandNode() {}

func (m Mem) String() string {
	inner := ""
	if m.Base != nil {
		inner = m.Base.String()
	}
	if m.Index != nil {
		if inner != "" {
			inner += " + "
		}
		inner += fmt.Sprintf("%s*%d", m.Index.String(), m.Scale)
	}
	if m.Disp != 0 || inner == "" {
		if inner != "" {
			if m.Disp >= 0 {
				inner += fmt.Sprintf(" + %d", m.Disp)
			} else {
				inner += fmt.Sprintf(" - %d", -m.Disp)
			}
		} else {
			inner = fmt.Sprintf("%d", m.Disp)
		}
	}
	return "DWORD PTR [" + inner + "]"
}

// FrameSizeOperand is a late-bound symbolic constant, resolved to the
// function's final stack-frame size only when the assembly emitter knows
// it (after every spill round). It appears nowhere except as the source
// of the prologue's `SUB ESP, FrameSize` (spec.md §3 invariant).
type FrameSizeOperand struct{}

func (FrameSizeOperand) operandNode()     {}
func (FrameSizeOperand) String() string   { return "FrameSize" }

// regsOf returns the registers an operand references when it is read as
// an address or value: a Reg contributes itself; a Mem contributes its
// base/index; an Imm or FrameSizeOperand contributes nothing.
func regsOf(op Operand) []Register {
	switch o := op.(type) {
	case Reg:
		return []Register{o.Register}
	case Mem:
		var regs []Register
		if o.Base != nil {
			regs = append(regs, *o.Base)
		}
		if o.Index != nil {
			regs = append(regs, *o.Index)
		}
		return regs
	default:
		return nil
	}
}
