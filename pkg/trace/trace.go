// Package trace implements the tracer (spec.md §4.4): it decomposes a
// canonical function body into basic blocks and re-emits them in an order
// that establishes the fall-through invariant every CJump relies on —
// immediately followed by a Label for its false branch — while dropping
// redundant unconditional jumps that scheduling happens to make
// unnecessary.
package trace

import (
	"github.com/minij/mjc/pkg/names"
	"github.com/minij/mjc/pkg/tree"
)

// Block is one basic block: straight-line code ending in exactly one
// control transfer. Transfer is nil only for the function's synthetic
// trailing block, which has no code after it.
type Block struct {
	Label    names.Label
	Body     []tree.Stm
	Transfer tree.Stm // *tree.Jump, *tree.CJump, or nil
}

// Function traces fn's (already canonical) body, returning a new Function
// whose Body satisfies: every CJump is immediately followed by the Label
// of its false branch.
func Function(fn *tree.Function) *tree.Function {
	start := names.NewLabel()
	end := names.NewLabel()

	wrapped := make([]tree.Stm, 0, len(fn.Body)+2)
	wrapped = append(wrapped, &tree.LabelStm{Label: start})
	wrapped = append(wrapped, fn.Body...)
	wrapped = append(wrapped, &tree.LabelStm{Label: end})

	blocks := buildBlocks(wrapped)
	body := schedule(blocks, start, end)

	return &tree.Function{
		Name:       fn.Name,
		ParamCount: fn.ParamCount,
		Body:       body,
		ReturnTemp: fn.ReturnTemp,
		RaiseLabel: fn.RaiseLabel,
	}
}

// buildBlocks scans a statement list already wrapped with start/end
// labels, starting a new block at every Label and ending one at every
// Jump/CJump. A Label encountered while a block is still open (no
// Jump/CJump seen since the last Label) means that block would otherwise
// fall through into the new one; a synthetic Jump is inserted to make the
// transfer explicit.
func buildBlocks(stmts []tree.Stm) map[names.Label]*Block {
	blocks := make(map[names.Label]*Block)

	var curLabel names.Label
	var curBody []tree.Stm
	open := false

	closeWith := func(transfer tree.Stm) {
		blocks[curLabel] = &Block{Label: curLabel, Body: curBody, Transfer: transfer}
		curBody = nil
		open = false
	}

	for _, s := range stmts {
		switch n := s.(type) {
		case *tree.LabelStm:
			if open {
				closeWith(tree.JumpToLabel(n.Label))
			}
			curLabel = n.Label
			curBody = nil
			open = true
		case *tree.Jump:
			closeWith(n)
		case *tree.CJump:
			closeWith(n)
		default:
			curBody = append(curBody, s)
		}
	}
	if open {
		// Only the synthetic end label should ever reach here with no
		// terminating jump: it is the last label in the wrapped body and
		// has nothing after it.
		blocks[curLabel] = &Block{Label: curLabel, Body: curBody, Transfer: nil}
	}
	return blocks
}

// schedule runs the LIFO worklist algorithm of spec.md §4.4 step 2-5.
func schedule(blocks map[names.Label]*Block, start, end names.Label) []tree.Stm {
	var worklist []names.Label
	push := func(l names.Label) { worklist = append(worklist, l) }
	pop := func() names.Label {
		l := worklist[len(worklist)-1]
		worklist = worklist[:len(worklist)-1]
		return l
	}

	added := map[names.Label]bool{end: true}
	push(start)

	var out []tree.Stm

	dropTrailingJumpTo := func(l names.Label) {
		if len(out) == 0 {
			return
		}
		jmp, ok := out[len(out)-1].(*tree.Jump)
		if !ok {
			return
		}
		target, ok := jmp.Target.(*tree.Name)
		if !ok || !target.Label.Equal(l) {
			return
		}
		out = out[:len(out)-1]
	}

	for len(worklist) > 0 {
		l := pop()
		if added[l] {
			continue
		}
		added[l] = true

		blk, ok := blocks[l]
		if !ok {
			continue // a label referenced only as an overapproximation, never defined here
		}

		dropTrailingJumpTo(l)
		out = append(out, &tree.LabelStm{Label: l})
		out = append(out, blk.Body...)

		switch t := blk.Transfer.(type) {
		case nil:
			// trailing synthetic block: nothing to schedule after it
		case *tree.Jump:
			for i := len(t.Labels) - 1; i >= 0; i-- {
				push(t.Labels[i])
			}
			out = append(out, t)
		case *tree.CJump:
			switch {
			case !added[t.LFalse]:
				push(t.LTrue)
				push(t.LFalse)
				out = append(out, t)
			case !added[t.LTrue]:
				push(t.LFalse)
				push(t.LTrue)
				out = append(out, &tree.CJump{Rel: t.Rel.Negate(), Left: t.Left, Right: t.Right, LTrue: t.LFalse, LFalse: t.LTrue})
			default:
				dummy := names.NewLabel()
				out = append(out, &tree.CJump{Rel: t.Rel, Left: t.Left, Right: t.Right, LTrue: t.LTrue, LFalse: dummy})
				out = append(out, &tree.LabelStm{Label: dummy})
				out = append(out, tree.JumpToLabel(t.LFalse))
			}
		}
	}

	out = append(out, &tree.LabelStm{Label: end})
	return out
}
