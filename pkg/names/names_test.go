package names

import "testing"

func TestNewTempDistinct(t *testing.T) {
	Reset()
	a := NewTemp()
	b := NewTemp()
	if a.ID() == b.ID() {
		t.Fatalf("expected distinct ids, got %d twice", a.ID())
	}
}

func TestResetReproducesNumbering(t *testing.T) {
	Reset()
	a := NewTemp()
	Reset()
	b := NewTemp()
	if a.ID() != b.ID() {
		t.Fatalf("expected Reset to reproduce numbering: %d != %d", a.ID(), b.ID())
	}
}

func TestFixedTempEqualityById(t *testing.T) {
	a := FixedTemp(7)
	b := FixedTemp(7)
	if a != b {
		t.Fatalf("expected FixedTemp(7) == FixedTemp(7)")
	}
	c := FixedTemp(8)
	if a == c {
		t.Fatalf("expected FixedTemp(7) != FixedTemp(8)")
	}
}

func TestLabelEqualNamed(t *testing.T) {
	a := NamedLabel("Lmain")
	b := NamedLabel("Lmain")
	if !a.Equal(b) {
		t.Fatalf("expected two NamedLabel(%q) to be equal", "Lmain")
	}
	if !a.IsNamed() {
		t.Fatalf("expected NamedLabel to report IsNamed() true")
	}
}

func TestLabelEqualFresh(t *testing.T) {
	Reset()
	a := NewLabel()
	b := NewLabel()
	if a.Equal(b) {
		t.Fatalf("expected two distinct fresh labels to not be equal")
	}
	if a.Equal(a) == false {
		t.Fatalf("expected a label to equal itself")
	}
}

// A fresh label and a named label must never compare equal even when one
// happens to render the same string as the other (spec.md §9's open
// question about Label string collisions) — Equal compares structurally,
// not via String().
func TestLabelEqualDoesNotCollideOnRenderedForm(t *testing.T) {
	Reset()
	fresh := NewLabel() // renders "L1"
	named := NamedLabel(fresh.String())
	if fresh.Equal(named) {
		t.Fatalf("fresh label and a named label with the same rendered text must not be Equal")
	}
}

func TestLabelAsMapKey(t *testing.T) {
	Reset()
	m := map[Label]int{}
	a := NewLabel()
	b := NamedLabel("Lmain")
	m[a] = 1
	m[b] = 2
	if m[a] != 1 || m[b] != 2 {
		t.Fatalf("Label must be usable as a map key with value semantics")
	}
}
