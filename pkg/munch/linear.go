package munch

import (
	"github.com/minij/mjc/pkg/names"
	"github.com/minij/mjc/pkg/tree"
	"github.com/minij/mjc/pkg/x86"
)

// lincomb is a symbolic const + sum(coeff*temp) value, the intermediate
// form the addressing-mode recognizer folds a Tree address expression
// into before deciding whether it fits x86's base+index*scale+disp shape
// (spec.md §4.5, "linear-combination recognizer").
type lincomb struct {
	constant int32
	coeffs   map[names.Temp]int32
}

func constLC(v int32) *lincomb { return &lincomb{constant: v} }

func tempLC(t names.Temp) *lincomb {
	return &lincomb{coeffs: map[names.Temp]int32{t: 1}}
}

func (l *lincomb) isPureConst() bool { return len(l.coeffs) == 0 }

func addLC(a, b *lincomb) *lincomb {
	out := &lincomb{constant: a.constant + b.constant, coeffs: map[names.Temp]int32{}}
	for t, c := range a.coeffs {
		out.coeffs[t] += c
	}
	for t, c := range b.coeffs {
		out.coeffs[t] += c
	}
	return out
}

func negLC(a *lincomb) *lincomb { return scaleLC(a, -1) }

func scaleLC(a *lincomb, k int32) *lincomb {
	out := &lincomb{constant: a.constant * k, coeffs: map[names.Temp]int32{}}
	for t, c := range a.coeffs {
		out.coeffs[t] = c * k
	}
	return out
}

// linearCombo attempts to fold e into a lincomb. It succeeds only for
// Const, Temp, and PLUS/MINUS/MUL trees built from those — exactly the
// shapes array-index and field-offset arithmetic produces. Anything else
// (Mem, Call, Param, Name, other ops, or a MUL of two non-constant
// operands) fails, and the caller falls back to ordinary instruction
// munching for the address.
func linearCombo(e tree.Exp) (*lincomb, bool) {
	switch n := e.(type) {
	case *tree.Const:
		return constLC(n.Value), true
	case *tree.TempExp:
		return tempLC(n.Temp), true
	case *tree.BinOpExp:
		switch n.Op {
		case tree.PLUS:
			l, ok1 := linearCombo(n.Left)
			r, ok2 := linearCombo(n.Right)
			if ok1 && ok2 {
				return addLC(l, r), true
			}
		case tree.MINUS:
			l, ok1 := linearCombo(n.Left)
			r, ok2 := linearCombo(n.Right)
			if ok1 && ok2 {
				return addLC(l, negLC(r)), true
			}
		case tree.MUL:
			l, ok1 := linearCombo(n.Left)
			r, ok2 := linearCombo(n.Right)
			if ok1 && ok2 {
				if l.isPureConst() {
					return scaleLC(r, l.constant), true
				}
				if r.isPureConst() {
					return scaleLC(l, r.constant), true
				}
			}
		}
	}
	return nil, false
}

// asMem converts a legal lincomb to a Mem operand, iff it fits the
// base(+index*scale) shape: at most one temp with coefficient 1 (base),
// at most one more temp with coefficient in {1,2,4,8} (index*scale).
func (l *lincomb) asMem() (x86.Mem, bool) {
	type tc struct {
		t names.Temp
		c int32
	}
	var terms []tc
	for t, c := range l.coeffs {
		if c != 0 {
			terms = append(terms, tc{t, c})
		}
	}
	switch len(terms) {
	case 0:
		return x86.Mem{Disp: l.constant}, true
	case 1:
		r := x86.FromTemp(terms[0].t)
		switch terms[0].c {
		case 1:
			return x86.Mem{Base: &r, Disp: l.constant}, true
		case 2, 4, 8:
			return x86.Mem{Index: &r, Scale: x86.Scale(terms[0].c), Disp: l.constant}, true
		default:
			return x86.Mem{}, false
		}
	case 2:
		a, b := terms[0], terms[1]
		if a.c != 1 {
			a, b = b, a
		}
		if a.c == 1 && (b.c == 1 || b.c == 2 || b.c == 4 || b.c == 8) {
			base, idx := x86.FromTemp(a.t), x86.FromTemp(b.t)
			return x86.Mem{Base: &base, Index: &idx, Scale: x86.Scale(b.c), Disp: l.constant}, true
		}
		return x86.Mem{}, false
	default:
		return x86.Mem{}, false
	}
}
