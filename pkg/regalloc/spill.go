package regalloc

import (
	"github.com/minij/mjc/pkg/names"
	"github.com/minij/mjc/pkg/tree"
	"github.com/minij/mjc/pkg/x86"
)

// rewriteSpills gives each register in spilled its own stack slot below
// the existing frame and rewrites every instruction that touches one: a
// load into a fresh temp before the instruction if the register is
// read, the instruction itself with that occurrence renamed to the
// fresh temp, and a store back to the slot after if the register is
// written (spec.md §4.10). A register used and defined by the same
// instruction — the common read-modify-write case — gets one fresh temp
// shared by both the load and the store, so the computed value round
// trips through memory correctly.
func rewriteSpills(fn *x86.Function, spilled []x86.Register) *x86.Function {
	frameSize := fn.FrameSize
	slots := make(map[x86.Register]x86.Mem, len(spilled))
	for _, r := range spilled {
		frameSize += tree.WordSize
		disp := -int32(frameSize)
		slots[r] = x86.Mem{Base: &x86.RegEBP, Disp: disp}
	}

	var out []x86.Instr
	for _, instr := range fn.Body {
		uses := x86.Uses(instr)
		defs := x86.Defs(instr)

		fresh := map[x86.Register]x86.Register{}
		touched := func(set []x86.Register) []x86.Register {
			var hit []x86.Register
			for _, r := range set {
				if _, isSpilled := slots[r]; isSpilled {
					if _, seen := fresh[r]; !seen {
						fresh[r] = x86.FromTemp(names.NewTemp())
					}
					hit = append(hit, r)
				}
			}
			return hit
		}
		usedSpilled := touched(uses)
		definedSpilled := touched(defs)

		for _, r := range usedSpilled {
			out = append(out, &x86.BinaryInstr{Op: x86.MOV, Dst: x86.Reg{Register: fresh[r]}, Src: slots[r]})
		}
		out = append(out, mapInstr(instr, fresh))
		for _, r := range definedSpilled {
			out = append(out, &x86.BinaryInstr{Op: x86.MOV, Dst: slots[r], Src: x86.Reg{Register: fresh[r]}})
		}
	}

	return &x86.Function{Name: fn.Name, Body: out, FrameSize: frameSize}
}
