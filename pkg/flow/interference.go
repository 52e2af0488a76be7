package flow

import (
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"github.com/minij/mjc/pkg/x86"
)

// Interference is an undirected graph over registers: an edge means the
// two may not share a physical register. Adj is kept as sorted slices so
// every consumer (the allocator's worklists, tests comparing graphs)
// sees a deterministic neighbor order.
type Interference struct {
	Adj map[x86.Register]regSet
}

func newInterference() *Interference {
	return &Interference{Adj: make(map[x86.Register]regSet)}
}

func (ig *Interference) addNode(r x86.Register) {
	if _, ok := ig.Adj[r]; !ok {
		ig.Adj[r] = nil
	}
}

func (ig *Interference) addEdge(a, b x86.Register) {
	if a.ID() == b.ID() {
		return
	}
	ig.addNode(a)
	ig.addNode(b)
	if !ig.Adj[a].contains(b) {
		ig.Adj[a] = append(ig.Adj[a], b)
		slices.SortFunc(ig.Adj[a], cmpReg)
	}
	if !ig.Adj[b].contains(a) {
		ig.Adj[b] = append(ig.Adj[b], a)
		slices.SortFunc(ig.Adj[b], cmpReg)
	}
}

// Degree returns len(Adj[r]), the interference count the allocator's
// low/high-degree worklist split is keyed on.
func (ig *Interference) Degree(r x86.Register) int { return len(ig.Adj[r]) }

// Nodes returns every register in the graph, sorted by ID.
func (ig *Interference) Nodes() []x86.Register {
	ns := maps.Keys(ig.Adj)
	slices.SortFunc(ns, cmpReg)
	return ns
}

func (ig *Interference) Interferes(a, b x86.Register) bool {
	return ig.Adj[a].contains(b)
}

// BuildInterference constructs the interference graph from liveness
// (spec.md §4.8): for every instruction, each register it defines
// interferes with every register in its Out set, except that a
// register-to-register MOV does not make its own dst and src interfere
// with each other (so they may receive the same color). EBP/ESP are
// excluded entirely — they are never allocation candidates.
func BuildInterference(g *Graph, live *Liveness) *Interference {
	ig := newInterference()

	for i, instr := range g.Instrs {
		defs := newRegSet(x86.Defs(instr))
		moveDst, moveSrc, isMove := x86.IsMoveBetweenTemps(instr)

		for _, d := range defs {
			if x86.IsExcludedFromAllocation(d) {
				continue
			}
			ig.addNode(d)
			for _, o := range live.Out[i] {
				if x86.IsExcludedFromAllocation(o) {
					continue
				}
				if isMove && ((d.ID() == moveDst.ID() && o.ID() == moveSrc.ID()) ||
					(d.ID() == moveSrc.ID() && o.ID() == moveDst.ID())) {
					continue
				}
				ig.addEdge(d, o)
			}
		}
		for _, o := range live.Out[i] {
			if !x86.IsExcludedFromAllocation(o) {
				ig.addNode(o)
			}
		}
	}

	return ig
}
