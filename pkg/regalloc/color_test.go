package regalloc

import (
	"testing"

	"github.com/minij/mjc/pkg/flow"
	"github.com/minij/mjc/pkg/x86"
)

// buildClique constructs a program where nodes[0..n-1] are all
// simultaneously live, and so form a complete interference graph: each
// MOV defines one node while every previously-defined node is still live
// (it's consumed later by the summation chain), so Build/Analyze/
// BuildInterference connects every node to every earlier one at its own
// definition point. The body has no RET, whose fixed uses would make every
// node interfere with EAX/EBX/ESI/EDI as well.
func buildClique(nodes []x86.Register) *flow.Interference {
	var body []x86.Instr
	for _, n := range nodes {
		body = append(body, &x86.BinaryInstr{Op: x86.MOV, Dst: x86.Reg{Register: n}, Src: x86.Imm{Value: 0}})
	}
	acc := nodes[len(nodes)-1]
	for i := 0; i < len(nodes)-1; i++ {
		body = append(body, &x86.BinaryInstr{Op: x86.ADD, Dst: x86.Reg{Register: acc}, Src: x86.Reg{Register: nodes[i]}})
	}
	g := flow.Build(body)
	live := flow.Analyze(g)
	return flow.BuildInterference(g, live)
}

func TestColorNeverAssignsSameColorToAdjacentNodes(t *testing.T) {
	nodes := make([]x86.Register, 7)
	for i := range nodes {
		nodes[i] = pseudo(int64(i + 1))
	}
	ig := buildClique(nodes)

	coloring, spilled := color(ig)
	for a, ca := range coloring {
		for b, cb := range coloring {
			if a.ID() == b.ID() {
				continue
			}
			if ig.Interferes(a, b) && ca.ID() == cb.ID() {
				t.Fatalf("color() assigned the same machine register %v to interfering pseudo-registers %v and %v", ca, a, b)
			}
		}
	}
	// A 7-clique exceeds K=6: at least one node must come back as an
	// actual spill.
	if len(spilled) == 0 {
		t.Fatalf("expected at least one actual spill from a 7-clique with K=%d", K)
	}
}

func TestColorTrianglePacksIntoThreeColors(t *testing.T) {
	a, b, c := pseudo(1), pseudo(2), pseudo(3)
	ig := buildClique([]x86.Register{a, b, c})

	coloring, spilled := color(ig)
	if len(spilled) != 0 {
		t.Fatalf("a 3-clique must fit within K=%d colors without spilling, got spills %v", K, spilled)
	}
	if coloring[a].ID() == coloring[b].ID() || coloring[b].ID() == coloring[c].ID() || coloring[a].ID() == coloring[c].ID() {
		t.Fatalf("a fully-connected triangle must receive three distinct colors, got %v", coloring)
	}
}
