// Package flow builds the control-flow graph over a pseudo-x86
// instruction list and runs backward liveness dataflow to a fixed point
// (spec.md §4.6-4.7). Register sets are kept as sorted slices via
// golang.org/x/exp/slices so iteration order — and therefore every
// derived structure, down to the interference graph's edge order — is
// deterministic across runs.
package flow

import (
	"golang.org/x/exp/slices"

	"github.com/minij/mjc/pkg/names"
	"github.com/minij/mjc/pkg/x86"
)

// Graph is the control-flow graph over instruction indices: Succ[i] is
// every index control may transfer to directly after executing
// instruction i.
type Graph struct {
	Instrs []x86.Instr
	Succ   [][]int
	Pred   [][]int
	labels map[names.Label]int // keyed on Label equality, not its printed form — spec.md §9's open question about named/fresh labels rendering the same string
}

// Build indexes every LabelInstr's position, then derives successors
// from IsFallThrough and Jumps for each instruction (spec.md §4.6).
func Build(instrs []x86.Instr) *Graph {
	g := &Graph{
		Instrs: instrs,
		Succ:   make([][]int, len(instrs)),
		Pred:   make([][]int, len(instrs)),
		labels: make(map[names.Label]int),
	}
	for i, instr := range instrs {
		if l, ok := instr.(*x86.LabelInstr); ok {
			g.labels[l.Label] = i
		}
	}
	for i, instr := range instrs {
		var succ []int
		if x86.IsFallThrough(instr) && i+1 < len(instrs) {
			succ = append(succ, i+1)
		}
		for _, target := range x86.Jumps(instr) {
			if idx, ok := g.labels[target]; ok {
				succ = append(succ, idx)
			}
		}
		g.Succ[i] = succ
	}
	for i, succs := range g.Succ {
		for _, s := range succs {
			g.Pred[s] = append(g.Pred[s], i)
		}
	}
	return g
}

// regSet is a register set kept sorted by ID for deterministic
// iteration and comparison.
type regSet []x86.Register

func (s regSet) contains(r x86.Register) bool {
	_, found := slices.BinarySearchFunc(s, r, cmpReg)
	return found
}

func cmpReg(a, b x86.Register) int {
	switch {
	case a.ID() < b.ID():
		return -1
	case a.ID() > b.ID():
		return 1
	default:
		return 0
	}
}

func newRegSet(rs []x86.Register) regSet {
	s := append(regSet{}, rs...)
	slices.SortFunc(s, cmpReg)
	return slices.CompactFunc(s, func(a, b x86.Register) bool { return a.ID() == b.ID() })
}

func unionRegSets(a, b regSet) regSet {
	out := append(append(regSet{}, a...), b...)
	slices.SortFunc(out, cmpReg)
	return slices.CompactFunc(out, func(x, y x86.Register) bool { return x.ID() == y.ID() })
}

func diffRegSets(a, b regSet) regSet {
	var out regSet
	for _, r := range a {
		if !b.contains(r) {
			out = append(out, r)
		}
	}
	return out
}

func equalRegSets(a, b regSet) bool {
	return slices.EqualFunc(a, b, func(x, y x86.Register) bool { return x.ID() == y.ID() })
}

// Liveness holds, for every instruction index, the registers live
// immediately before (In) and immediately after (Out) it.
type Liveness struct {
	In, Out []regSet
}

// Analyze runs the standard backward liveness equations
// (in[i] = use[i] U (out[i] - def[i]); out[i] = U succ in[s]) to a fixed
// point (spec.md §4.7). ESP/EBP do appear in Uses/Defs (RET, the frame
// setup, EBP-based memory operands) and so in liveness sets;
// BuildInterference is what leaves them out of the graph.
func Analyze(g *Graph) *Liveness {
	n := len(g.Instrs)
	use := make([]regSet, n)
	def := make([]regSet, n)
	for i, instr := range g.Instrs {
		use[i] = newRegSet(x86.Uses(instr))
		def[i] = newRegSet(x86.Defs(instr))
	}

	in := make([]regSet, n)
	out := make([]regSet, n)

	changed := true
	for changed {
		changed = false
		for i := n - 1; i >= 0; i-- {
			var newOut regSet
			for _, s := range g.Succ[i] {
				newOut = unionRegSets(newOut, in[s])
			}
			newIn := unionRegSets(use[i], diffRegSets(newOut, def[i]))

			if !equalRegSets(newIn, in[i]) || !equalRegSets(newOut, out[i]) {
				changed = true
			}
			in[i] = newIn
			out[i] = newOut
		}
	}

	return &Liveness{In: in, Out: out}
}
