// Package translate lowers the typed source AST (pkg/ast) into the Tree IR
// (pkg/tree), per spec.md §4.2. It is the largest single stage of the
// pipeline: it encodes object and array layout, emits array-bounds checks
// that target a per-method raise block, and compiles short-circuit
// booleans through the two-label "condition" mode rather than by
// materializing intermediate values.
package translate

import (
	"github.com/minij/mjc/pkg/ast"
	"github.com/minij/mjc/pkg/compileerr"
	"github.com/minij/mjc/pkg/names"
	"github.com/minij/mjc/pkg/tree"
	"github.com/minij/mjc/pkg/x86"
)

// Program is the Tree-IR translation unit: every method of every class,
// plus the synthesized Lmain entry point.
type Program struct {
	Functions []*tree.Function
}

// Translate lowers an entire program. The only errors it returns are
// lookup failures that indicate the symbol table disagrees with the AST
// (a front-end bug, not a user error) — a well-typed program never
// triggers one, matching spec.md §7's "the backend proper is total".
func Translate(prog *ast.Program, symtab *ast.SymbolTable) (*Program, error) {
	out := &Program{}

	mainFn, err := translateMain(prog.Main)
	if err != nil {
		return nil, err
	}
	out.Functions = append(out.Functions, mainFn)

	for _, class := range prog.Classes {
		for _, m := range class.Methods {
			fn, err := translateMethod(symtab, class, m)
			if err != nil {
				return nil, err
			}
			out.Functions = append(out.Functions, fn)
		}
	}
	return out, nil
}

// binding describes how a name resolves inside the current method: to a
// local's Temp, to a parameter index, or (handled separately, via
// FieldOwner on the AST node) to a field of `this`.
type binding struct {
	isParam bool
	param   int32
	temp    names.Temp
}

// fnCtx carries everything a single method's translation needs: the
// symbol table, the enclosing class (for field offset lookups), the
// current raise block's label, and the name-resolution scope.
type fnCtx struct {
	symtab     *ast.SymbolTable
	class      string
	raiseLabel names.Label
	scope      map[string]binding
}

func translateMain(main *ast.MainClass) (*tree.Function, error) {
	raise := names.NamedLabel("Lmain$raise")
	funcEnd := names.NewLabel()
	ctx := &fnCtx{scope: map[string]binding{}, raiseLabel: raise}

	body, err := ctx.translateStmt(main.Body)
	if err != nil {
		return nil, err
	}

	retTemp := names.NewTemp()
	discard := names.NewTemp()

	all := append([]tree.Stm{}, body...)
	all = append(all,
		&tree.Move{Dst: &tree.TempExp{Temp: retTemp}, Src: &tree.Const{Value: 0}},
		tree.JumpToLabel(funcEnd),
		&tree.LabelStm{Label: raise},
		&tree.Move{Dst: &tree.TempExp{Temp: discard}, Src: &tree.Call{Fn: &tree.Name{Label: x86.LRaise}, Args: []tree.Exp{&tree.Const{Value: 1}}}},
		tree.JumpToLabel(raise),
		&tree.LabelStm{Label: funcEnd},
	)

	return &tree.Function{
		Name:       x86.MainLabel,
		ParamCount: 0,
		Body:       all,
		ReturnTemp: retTemp,
		RaiseLabel: raise,
	}, nil
}

func translateMethod(symtab *ast.SymbolTable, class *ast.ClassDecl, m *ast.MethodDecl) (*tree.Function, error) {
	raise := names.NamedLabel(m.RaiseLabel())
	funcEnd := names.NewLabel()
	ctx := &fnCtx{symtab: symtab, class: class.Name, raiseLabel: raise, scope: map[string]binding{}}

	// this is always parameter 0.
	ctx.scope["this"] = binding{isParam: true, param: 0}
	for i := 0; i < m.Params.Len(); i++ {
		ctx.scope[m.Params.At(i).Name] = binding{isParam: true, param: int32(i + 1)}
	}
	for i := 0; i < m.Locals.Len(); i++ {
		ctx.scope[m.Locals.At(i).Name] = binding{temp: names.NewTemp()}
	}

	var body []tree.Stm
	for _, s := range m.Body {
		stmts, err := ctx.translateStmt(s)
		if err != nil {
			return nil, err
		}
		body = append(body, stmts...)
	}

	retStmts, retExp, err := ctx.translateExpr(m.ReturnExpr)
	if err != nil {
		return nil, err
	}
	retTemp := names.NewTemp()
	discard := names.NewTemp()

	all := append([]tree.Stm{}, body...)
	all = append(all, retStmts...)
	all = append(all,
		&tree.Move{Dst: &tree.TempExp{Temp: retTemp}, Src: retExp},
		tree.JumpToLabel(funcEnd),
		&tree.LabelStm{Label: raise},
		&tree.Move{Dst: &tree.TempExp{Temp: discard}, Src: &tree.Call{Fn: &tree.Name{Label: x86.LRaise}, Args: []tree.Exp{&tree.Const{Value: 1}}}},
		tree.JumpToLabel(raise),
		&tree.LabelStm{Label: funcEnd},
	)

	return &tree.Function{
		Name:       names.NamedLabel(m.Mangled()),
		ParamCount: uint32(1 + m.Params.Len()),
		Body:       all,
		ReturnTemp: retTemp,
		RaiseLabel: raise,
	}, nil
}

// split extracts an effect-expression pair out of e: if e is an ESeq, its
// statement prefix and final expression; otherwise (nil, e).
func split(e tree.Exp) ([]tree.Stm, tree.Exp) {
	if seq, ok := e.(*tree.ESeq); ok {
		return seq.Stmts, seq.Exp
	}
	return nil, e
}

// fieldOffset returns the byte offset of a field from the object pointer:
// (index+1)*WordSize, leaving slot 0 for the (unconsulted) class id
// (spec.md §4.2).
func (ctx *fnCtx) fieldOffset(className, fieldName string) (int32, error) {
	fields, err := ctx.symtab.FieldsOf(className)
	if err != nil {
		return 0, err
	}
	_, pos, ok := fields.Lookup(fieldName)
	if !ok {
		return 0, compileerr.New("class %q has no field %q", className, fieldName)
	}
	return int32(pos+1) * tree.WordSize, nil
}

func fieldAddr(base tree.Exp, offset int32) tree.Exp {
	if offset == 0 {
		return base
	}
	return &tree.BinOpExp{Op: tree.PLUS, Left: base, Right: &tree.Const{Value: offset}}
}
