package x86

import (
	"fmt"

	"github.com/minij/mjc/pkg/names"
)

// Register is a pseudo-x86 register handle (spec.md §3): either one of the
// eight machine registers (id 0..7) or a pseudo-register derived from a
// Temp (id = 8 + Temp.id).
type Register struct{ id int64 }

const (
	EAX = 0
	EBX = 1
	ECX = 2
	EDX = 3
	ESI = 4
	EDI = 5
	EBP = 6
	ESP = 7
)

var (
	RegEAX = Register{EAX}
	RegEBX = Register{EBX}
	RegECX = Register{ECX}
	RegEDX = Register{EDX}
	RegESI = Register{ESI}
	RegEDI = Register{EDI}
	RegEBP = Register{EBP}
	RegESP = Register{ESP}
)

var machineNames = [...]string{"EAX", "EBX", "ECX", "EDX", "ESI", "EDI", "EBP", "ESP"}

// FromTemp derives the pseudo-register naming a given Temp.
func FromTemp(t names.Temp) Register { return Register{id: 8 + t.ID()} }

// MachineReg constructs the Register for one of the 8 machine register ids.
func MachineReg(id int) Register { return Register{id: int64(id)} }

// IsMachine reports whether r denotes one of the 8 hardware registers
// (spec.md §3 invariant: "every operand register satisfies IsMachineReg"
// after allocation).
func (r Register) IsMachine() bool { return r.id >= 0 && r.id < 8 }

// ID returns the raw identity, for sorted deterministic iteration.
func (r Register) ID() int64 { return r.id }

func (r Register) String() string {
	if r.IsMachine() {
		return machineNames[r.id]
	}
	return fmt.Sprintf("v%d", r.id-8)
}

// GeneralPurpose is the allocatable register set (spec.md §4.9): K=6,
// excluding EBP and ESP which are reserved for the frame.
var GeneralPurpose = []Register{RegEAX, RegEBX, RegECX, RegEDX, RegESI, RegEDI}

// CallerSaved must be assumed clobbered across a CALL (spec.md §6 ABI).
var CallerSaved = []Register{RegEAX, RegECX, RegEDX}

// CalleeSaved must be preserved by the callee across its body (spec.md §6
// ABI); the prologue/epilogue save and restore exactly these three beyond
// EBP itself.
var CalleeSaved = []Register{RegEBX, RegESI, RegEDI, RegEBP}

// IsExcludedFromAllocation reports whether r is ESP or EBP, which never
// participate in interference (spec.md §4.8): they are not candidates for
// coloring and are never defined by ordinary instructions.
func IsExcludedFromAllocation(r Register) bool {
	return r.IsMachine() && (r.id == ESP || r.id == EBP)
}
