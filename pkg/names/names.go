// Package names provides the fresh-identifier generators used throughout
// the backend: Temp (pseudo-registers and anonymous label backing) and
// Label (code addresses, fresh or named).
package names

import (
	"fmt"
	"sync/atomic"
)

// Temp is an opaque pseudo-register identity. Two Temps are equal iff their
// ids are equal, regardless of whether they were produced by NewTemp or
// FixedTemp.
type Temp struct {
	id int64
}

// counter backs NewTemp. Go has no portable thread-local storage; per the
// design notes this is a single process-wide monotonic counter instead of a
// true per-thread cell. Tests call Reset between compilation units to get
// deterministic numbering; a single `mjc` run starts from zero and does not
// call it.
var tempCounter int64
var labelCounter int64

// NewTemp returns a fresh Temp, distinct from every previously generated
// fresh Temp and every FixedTemp constructed so far in this process unless
// Reset has intervened.
func NewTemp() Temp {
	return Temp{id: atomic.AddInt64(&tempCounter, 1)}
}

// FixedTemp constructs a Temp with a caller-supplied id, so tests can name
// temps with predictable ids; it advances NewTemp's counter to at least id
// so later fresh Temps do not reuse it. Machine registers are not Temps:
// pkg/x86 numbers them 0-7 as Registers of its own.
func FixedTemp(id int64) Temp {
	for {
		cur := atomic.LoadInt64(&tempCounter)
		if cur >= id || atomic.CompareAndSwapInt64(&tempCounter, cur, id) {
			break
		}
	}
	return Temp{id: id}
}

// ID returns the underlying identity, primarily for sorting temps into a
// deterministic iteration order (spec.md §5).
func (t Temp) ID() int64 { return t.id }

func (t Temp) String() string { return fmt.Sprintf("t%d", t.id) }

// Label is either a fresh anonymous label, backed by a Temp, or a named
// label, backed by a string. Two Labels are equal iff they are both named
// with the same string, or both fresh with the same backing Temp.
type Label struct {
	name    string
	temp    Temp
	isNamed bool
}

// NewLabel returns a fresh anonymous label, rendered "L<id>".
func NewLabel() Label {
	return Label{temp: Temp{id: atomic.AddInt64(&labelCounter, 1)}}
}

// NamedLabel wraps a literal string as a label, rendered verbatim. Used for
// function entry points (Lmain, LClass$method) and runtime imports
// (L_halloc, L_raise, ...).
func NamedLabel(name string) Label {
	return Label{name: name, isNamed: true}
}

// String renders the label's assembler text.
func (l Label) String() string {
	if l.isNamed {
		return l.name
	}
	return fmt.Sprintf("L%d", l.temp.id)
}

// Equal reports whether two labels denote the same code address.
func (l Label) Equal(other Label) bool {
	if l.isNamed != other.isNamed {
		return false
	}
	if l.isNamed {
		return l.name == other.name
	}
	return l.temp.id == other.temp.id
}

// IsNamed reports whether this label was constructed via NamedLabel.
func (l Label) IsNamed() bool { return l.isNamed }

// Reset zeroes both counters. Exists solely so tests (and, if ever needed,
// a single-process batch compiler driving multiple independent
// compilation units) can reproduce deterministic fresh-name numbering; it
// must not be called concurrently with any in-flight Temp/Label
// generation.
func Reset() {
	atomic.StoreInt64(&tempCounter, 0)
	atomic.StoreInt64(&labelCounter, 0)
}
