package x86

import "github.com/minij/mjc/pkg/names"

// Runtime import labels (spec.md §6). The backend only ever references
// these by name; their bodies are supplied by the external runtime at
// link time. All five are cdecl.
var (
	LHalloc     = names.NamedLabel("L_halloc")     // L_halloc(size) -> ptr
	LPrintlnInt = names.NamedLabel("L_println_int") // L_println_int(x)
	LRead       = names.NamedLabel("L_read")        // L_read() -> int
	LWrite      = names.NamedLabel("L_write")       // L_write(x)
	LRaise      = names.NamedLabel("L_raise")       // L_raise(code) -> never returns
)

// MainLabel is the exported program entry point (spec.md §6).
var MainLabel = names.NamedLabel("Lmain")
