// Package emit renders an allocated pseudo-x86 Function as Intel-syntax
// GNU assembler text (spec.md §4.11, §6 ABI). By the time a Function
// reaches here every register operand satisfies IsMachineReg — emission
// is pure formatting, no further instruction selection or allocation
// decisions.
package emit

import (
	"fmt"
	"strings"

	"github.com/minij/mjc/pkg/x86"
)

// Program renders every function in fns, preceded by the standard
// directives and a .global for each function label.
func Program(fns []*x86.Function) string {
	var b strings.Builder
	b.WriteString(".intel_syntax noprefix\n")
	for _, fn := range fns {
		fmt.Fprintf(&b, ".global %s\n", fn.Name.String())
	}
	b.WriteString("\n")
	for i, fn := range fns {
		if i > 0 {
			b.WriteString("\n")
		}
		Function(&b, fn)
	}
	return b.String()
}

// Function renders one function's body, resolving FrameSizeOperand to
// fn.FrameSize wherever it appears.
func Function(b *strings.Builder, fn *x86.Function) {
	fmt.Fprintf(b, "%s:\n", fn.Name.String())
	for _, instr := range fn.Body {
		writeInstr(b, instr, fn.FrameSize)
	}
}

func writeInstr(b *strings.Builder, instr x86.Instr, frameSize uint32) {
	switch n := instr.(type) {
	case *x86.LabelInstr:
		fmt.Fprintf(b, "%s:\n", n.Label.String())
	case *x86.UnaryInstr:
		fmt.Fprintf(b, "    %s %s\n", unaryMnemonic(n.Op), operandString(n.Src, frameSize))
	case *x86.BinaryInstr:
		fmt.Fprintf(b, "    %s %s, %s\n", binaryMnemonic(n.Op), operandString(n.Dst, frameSize), operandString(n.Src, frameSize))
	case *x86.CallInstr:
		fmt.Fprintf(b, "    call %s\n", n.Target.String())
	case *x86.JmpInstr:
		fmt.Fprintf(b, "    jmp %s\n", n.Target.String())
	case *x86.JInstr:
		fmt.Fprintf(b, "    %s %s\n", jMnemonic(n.Cond), n.Target.String())
	case *x86.RetInstr:
		b.WriteString("    ret\n")
	}
}

func operandString(op x86.Operand, frameSize uint32) string {
	if _, ok := op.(x86.FrameSizeOperand); ok {
		return fmt.Sprintf("%d", frameSize)
	}
	return op.String()
}

func unaryMnemonic(op x86.UnaryOp) string {
	switch op {
	case x86.PUSH:
		return "push"
	case x86.POP:
		return "pop"
	case x86.NEG:
		return "neg"
	case x86.NOT:
		return "not"
	case x86.INC:
		return "inc"
	case x86.DEC:
		return "dec"
	case x86.IDIV:
		return "idiv"
	default:
		panic("emit: unknown UnaryOp")
	}
}

func binaryMnemonic(op x86.BinaryOp) string {
	switch op {
	case x86.MOV:
		return "mov"
	case x86.ADD:
		return "add"
	case x86.SUB:
		return "sub"
	case x86.SHL:
		return "shl"
	case x86.SHR:
		return "shr"
	case x86.SAL:
		return "sal"
	case x86.SAR:
		return "sar"
	case x86.AND:
		return "and"
	case x86.OR:
		return "or"
	case x86.XOR:
		return "xor"
	case x86.TEST:
		return "test"
	case x86.CMP:
		return "cmp"
	case x86.LEA:
		return "lea"
	case x86.IMUL:
		return "imul"
	default:
		panic("emit: unknown BinaryOp")
	}
}

// jMnemonic renders a conditional jump's mnemonic. Cond.G is "jg", not
// "jge" — the two are easy to transpose (G and GE differ by one letter
// and sit next to each other in the Cond enum) so this is spelled out
// explicitly rather than derived from a shared table with CondGE.
func jMnemonic(c x86.Cond) string {
	switch c {
	case x86.CondE:
		return "je"
	case x86.CondNE:
		return "jne"
	case x86.CondL:
		return "jl"
	case x86.CondLE:
		return "jle"
	case x86.CondG:
		return "jg"
	case x86.CondGE:
		return "jge"
	case x86.CondZ:
		return "jz"
	case x86.CondB:
		return "jb"
	case x86.CondBE:
		return "jbe"
	case x86.CondA:
		return "ja"
	case x86.CondAE:
		return "jae"
	default:
		panic("emit: unknown Cond")
	}
}
