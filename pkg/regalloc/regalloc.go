// Package regalloc implements Chaitin-style graph-coloring register
// allocation (spec.md §4.9-4.10): build the interference graph,
// simplify/spill worklists down to a coloring stack, select colors back
// off the stack, and — if any node proves an actual spill — rewrite the
// function to route it through a fresh stack slot and start over.
package regalloc

import (
	"github.com/minij/mjc/pkg/flow"
	"github.com/minij/mjc/pkg/x86"
)

// K is the number of allocatable general-purpose registers (spec.md
// §4.9): EAX, EBX, ECX, EDX, ESI, EDI. EBP and ESP are reserved for the
// frame and never participate.
const K = 6

// Allocate colors every pseudo-register in fn's body with one of the K
// machine registers, inserting spill code and re-running the pipeline as
// many times as needed until no spill is actual (spec.md §4.10).
func Allocate(fn *x86.Function) *x86.Function {
	cur := fn
	for {
		g := flow.Build(cur.Body)
		live := flow.Analyze(g)
		ig := flow.BuildInterference(g, live)

		coloring, spilled := color(ig)
		if len(spilled) == 0 {
			return &x86.Function{Name: cur.Name, Body: applyColoring(cur.Body, coloring), FrameSize: cur.FrameSize}
		}
		cur = rewriteSpills(cur, spilled)
	}
}

// applyColoring replaces every pseudo-register operand with its
// assigned machine register and drops any MOV r, r that becomes trivial
// once both sides land on the same machine register (spec.md §4.9 step 4).
func applyColoring(body []x86.Instr, coloring map[x86.Register]x86.Register) []x86.Instr {
	out := make([]x86.Instr, 0, len(body))
	for _, instr := range body {
		mapped := mapInstr(instr, coloring)
		if dst, src, ok := x86.IsMoveBetweenTemps(mapped); ok && dst.ID() == src.ID() {
			continue
		}
		out = append(out, mapped)
	}
	return out
}

func mapReg(r x86.Register, coloring map[x86.Register]x86.Register) x86.Register {
	if r.IsMachine() {
		return r
	}
	if c, ok := coloring[r]; ok {
		return c
	}
	return r
}

func mapOperand(op x86.Operand, coloring map[x86.Register]x86.Register) x86.Operand {
	switch o := op.(type) {
	case x86.Reg:
		return x86.Reg{Register: mapReg(o.Register, coloring)}
	case x86.Mem:
		m := o
		if o.Base != nil {
			b := mapReg(*o.Base, coloring)
			m.Base = &b
		}
		if o.Index != nil {
			idx := mapReg(*o.Index, coloring)
			m.Index = &idx
		}
		return m
	default:
		return op
	}
}

func mapInstr(instr x86.Instr, coloring map[x86.Register]x86.Register) x86.Instr {
	switch n := instr.(type) {
	case *x86.UnaryInstr:
		return &x86.UnaryInstr{Op: n.Op, Src: mapOperand(n.Src, coloring)}
	case *x86.BinaryInstr:
		return &x86.BinaryInstr{Op: n.Op, Dst: mapOperand(n.Dst, coloring), Src: mapOperand(n.Src, coloring)}
	default:
		return instr
	}
}
