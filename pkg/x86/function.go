package x86

import "github.com/minij/mjc/pkg/names"

// Function is one pseudo-x86 (pre-allocation) or fully allocated machine
// function. FrameSize starts at the three callee-save slots the prologue
// always reserves and grows by WordSize for every spill slot introduced
// during register allocation (spec.md §3, §4.10).
type Function struct {
	Name      names.Label
	Body      []Instr
	FrameSize uint32
}
