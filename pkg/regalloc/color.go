package regalloc

import (
	"github.com/minij/mjc/pkg/flow"
	"github.com/minij/mjc/pkg/x86"
)

// color runs simplify/spill/select over ig (spec.md §4.9). It returns an
// assignment for every pseudo-register it could color and the list of
// pseudo-registers that came off the selection stack with no machine
// register free — the actual spills the caller must rewrite around.
// Machine registers already present in the graph (EAX et al., from
// CALL/IDIV's fixed uses) are pre-colored to themselves and never pushed
// through simplify/spill/select; they only constrain their neighbors.
func color(ig *flow.Interference) (map[x86.Register]x86.Register, []x86.Register) {
	allNodes := ig.Nodes()

	var pseudo []x86.Register
	adj := map[x86.Register][]x86.Register{}
	degree := map[x86.Register]int{}
	for _, n := range allNodes {
		if n.IsMachine() {
			continue
		}
		pseudo = append(pseudo, n)
		var ns []x86.Register
		for _, m := range ig.Adj[n] {
			ns = append(ns, m)
		}
		adj[n] = ns
		degree[n] = len(ns)
	}

	removed := map[x86.Register]bool{}
	var stack []x86.Register

	remaining := len(pseudo)
	for remaining > 0 {
		progressed := false
		for _, n := range pseudo {
			if removed[n] {
				continue
			}
			if degree[n] < K {
				removeNode(n, adj, degree, removed)
				stack = append(stack, n)
				remaining--
				progressed = true
				break
			}
		}
		if progressed {
			continue
		}
		// No low-degree node remains: pick the highest-degree survivor as
		// an optimistic spill candidate — it still gets a selection
		// attempt, and only becomes an actual spill if select can't find
		// it a free color.
		victim, ok := highestDegreeSurvivor(pseudo, degree, removed)
		if !ok {
			break
		}
		removeNode(victim, adj, degree, removed)
		stack = append(stack, victim)
		remaining--
	}

	coloring := map[x86.Register]x86.Register{}
	var actualSpills []x86.Register
	for i := len(stack) - 1; i >= 0; i-- {
		n := stack[i]
		used := map[int64]bool{}
		for _, nb := range adj[n] {
			if nb.IsMachine() {
				used[nb.ID()] = true
				continue
			}
			if c, ok := coloring[nb]; ok {
				used[c.ID()] = true
			}
		}
		assigned := false
		for _, candidate := range x86.GeneralPurpose {
			if !used[candidate.ID()] {
				coloring[n] = candidate
				assigned = true
				break
			}
		}
		if !assigned {
			actualSpills = append(actualSpills, n)
		}
	}
	return coloring, actualSpills
}

func removeNode(n x86.Register, adj map[x86.Register][]x86.Register, degree map[x86.Register]int, removed map[x86.Register]bool) {
	removed[n] = true
	for _, nb := range adj[n] {
		if _, tracked := degree[nb]; tracked && !removed[nb] {
			degree[nb]--
		}
	}
}

func highestDegreeSurvivor(pseudo []x86.Register, degree map[x86.Register]int, removed map[x86.Register]bool) (x86.Register, bool) {
	best := x86.Register{}
	bestDeg := -1
	found := false
	for _, n := range pseudo {
		if removed[n] {
			continue
		}
		if degree[n] > bestDeg {
			best, bestDeg, found = n, degree[n], true
		}
	}
	return best, found
}
