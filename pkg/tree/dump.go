package tree

import (
	"fmt"
	"strings"
)

// Dump renders fn as an indented s-expression-ish text form, used by the
// compiler's --dump-tree/--dump-canon debug flags. It is diagnostic
// output only; nothing in the pipeline parses it back.
func Dump(fn *Function) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s(%d params):\n", fn.Name.String(), fn.ParamCount)
	for _, s := range fn.Body {
		dumpStm(&b, s, 1)
	}
	return b.String()
}

func indent(b *strings.Builder, depth int) {
	b.WriteString(strings.Repeat("  ", depth))
}

func dumpStm(b *strings.Builder, s Stm, depth int) {
	indent(b, depth)
	switch n := s.(type) {
	case *Move:
		fmt.Fprintf(b, "MOVE %s <- %s\n", dumpExp(n.Dst), dumpExp(n.Src))
	case *Jump:
		fmt.Fprintf(b, "JUMP %s\n", dumpExp(n.Target))
	case *CJump:
		fmt.Fprintf(b, "CJUMP %s %s %s -> %s, %s\n", dumpExp(n.Left), n.Rel, dumpExp(n.Right), n.LTrue, n.LFalse)
	case *LabelStm:
		fmt.Fprintf(b, "LABEL %s\n", n.Label)
	case *Seq:
		b.WriteString("SEQ\n")
		for _, sub := range n.Stmts {
			dumpStm(b, sub, depth+1)
		}
	}
}

func dumpExp(e Exp) string {
	switch n := e.(type) {
	case *Const:
		return fmt.Sprintf("%d", n.Value)
	case *Name:
		return n.Label.String()
	case *TempExp:
		return n.Temp.String()
	case *Param:
		return fmt.Sprintf("param[%d]", n.Index)
	case *Mem:
		return fmt.Sprintf("MEM(%s)", dumpExp(n.Addr))
	case *BinOpExp:
		return fmt.Sprintf("(%s %s %s)", dumpExp(n.Left), n.Op, dumpExp(n.Right))
	case *Call:
		args := make([]string, len(n.Args))
		for i, a := range n.Args {
			args[i] = dumpExp(a)
		}
		return fmt.Sprintf("CALL(%s, [%s])", dumpExp(n.Fn), strings.Join(args, ", "))
	case *ESeq:
		return fmt.Sprintf("ESEQ(%d stms, %s)", len(n.Stmts), dumpExp(n.Exp))
	default:
		return "?"
	}
}
