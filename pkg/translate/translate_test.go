package translate

import (
	"testing"

	"github.com/minij/mjc/pkg/ast"
	"github.com/minij/mjc/pkg/names"
	"github.com/minij/mjc/pkg/tree"
	"github.com/minij/mjc/pkg/x86"
)

// lastSix returns a function's final six statements, which both
// translateMain and translateMethod always append in the same shape:
// set ReturnTemp, jump past the raise block, the raise block itself,
// then the function-end label (spec.md §4.2's per-function epilogue).
func lastSix(body []tree.Stm) []tree.Stm {
	if len(body) < 6 {
		return body
	}
	return body[len(body)-6:]
}

func checkEpilogueShape(t *testing.T, fn *tree.Function) {
	t.Helper()
	tail := lastSix(fn.Body)
	if len(tail) != 6 {
		t.Fatalf("function body too short for an epilogue: %d statements", len(fn.Body))
	}
	if _, ok := tail[0].(*tree.Move); !ok {
		t.Fatalf("expected Move(ReturnTemp, ...) first in the epilogue, got %#v", tail[0])
	}
	if _, ok := tail[1].(*tree.Jump); !ok {
		t.Fatalf("expected a Jump to funcEnd, got %#v", tail[1])
	}
	raiseLabel, ok := tail[2].(*tree.LabelStm)
	if !ok || raiseLabel.Label != fn.RaiseLabel {
		t.Fatalf("expected the raise block's label, got %#v", tail[2])
	}
	raiseMove, ok := tail[3].(*tree.Move)
	if !ok {
		t.Fatalf("expected Move(discard, Call(L_raise, 1)) in the raise block, got %#v", tail[3])
	}
	call, ok := raiseMove.Src.(*tree.Call)
	if !ok || call.Fn.(*tree.Name).Label != x86.LRaise {
		t.Fatalf("expected the raise block to call L_raise, got %#v", raiseMove.Src)
	}
	if _, ok := tail[4].(*tree.Jump); !ok {
		t.Fatalf("expected a trailing (unreachable) jump back to the raise label, got %#v", tail[4])
	}
	if _, ok := tail[5].(*tree.LabelStm); !ok {
		t.Fatalf("expected the funcEnd label last, got %#v", tail[5])
	}
}

func TestTranslateMainProducesEpilogueShape(t *testing.T) {
	prog := &ast.Program{
		Main: &ast.MainClass{
			Name: "Main",
			Body: &ast.PrintStmt{Arg: &ast.IntLiteral{Value: 42}},
		},
	}
	symtab, err := ast.NewSymbolTable(prog)
	if err != nil {
		t.Fatalf("NewSymbolTable: %v", err)
	}
	out, err := Translate(prog, symtab)
	if err != nil {
		t.Fatalf("Translate: %v", err)
	}
	if len(out.Functions) != 1 {
		t.Fatalf("expected exactly one function for a Main class with no other classes, got %d", len(out.Functions))
	}
	fn := out.Functions[0]
	if fn.Name != x86.MainLabel {
		t.Fatalf("expected the entry point named %v, got %v", x86.MainLabel, fn.Name)
	}
	if fn.ParamCount != 0 {
		t.Fatalf("ParamCount = %d, want 0 for Main", fn.ParamCount)
	}
	checkEpilogueShape(t, fn)

	foundCall := false
	for _, s := range fn.Body {
		mv, ok := s.(*tree.Move)
		if !ok {
			continue
		}
		call, ok := mv.Src.(*tree.Call)
		if !ok {
			continue
		}
		if call.Fn.(*tree.Name).Label == x86.LPrintlnInt {
			foundCall = true
		}
	}
	if !foundCall {
		t.Fatalf("expected a call to L_println_int somewhere in Lmain's body")
	}
}

func TestTranslateWriteCallsLWriteWithItsArgument(t *testing.T) {
	prog := &ast.Program{
		Main: &ast.MainClass{
			Name: "Main",
			Body: &ast.WriteStmt{Arg: &ast.IntLiteral{Value: 65}},
		},
	}
	symtab, err := ast.NewSymbolTable(prog)
	if err != nil {
		t.Fatalf("NewSymbolTable: %v", err)
	}
	out, err := Translate(prog, symtab)
	if err != nil {
		t.Fatalf("Translate: %v", err)
	}
	fn := out.Functions[0]

	found := false
	for _, s := range fn.Body {
		mv, ok := s.(*tree.Move)
		if !ok {
			continue
		}
		call, ok := mv.Src.(*tree.Call)
		if !ok {
			continue
		}
		if call.Fn.(*tree.Name).Label == x86.LWrite {
			found = true
			if len(call.Args) != 1 {
				t.Fatalf("expected L_write to be called with exactly one argument, got %d", len(call.Args))
			}
		}
	}
	if !found {
		t.Fatalf("expected a call to L_write somewhere in Lmain's body")
	}
}

func TestTranslateReadLowersToZeroArgCall(t *testing.T) {
	ctx := &fnCtx{scope: map[string]binding{}}
	stmts, exp, err := ctx.translateExpr(&ast.ReadExpr{})
	if err != nil {
		t.Fatalf("translateExpr: %v", err)
	}
	if len(stmts) != 0 {
		t.Fatalf("expected ReadExpr to produce no statement prefix, got %d", len(stmts))
	}
	call, ok := exp.(*tree.Call)
	if !ok {
		t.Fatalf("expected a *tree.Call, got %#v", exp)
	}
	if call.Fn.(*tree.Name).Label != x86.LRead {
		t.Fatalf("expected the call target to be L_read, got %v", call.Fn)
	}
	if len(call.Args) != 0 {
		t.Fatalf("expected L_read to take no arguments, got %d", len(call.Args))
	}
}

func counterClass() *ast.ClassDecl {
	fields := ast.NewOrderedFields()
	fields.Add("value", ast.IntType{})

	getParams := ast.NewOrderedFields()
	getLocals := ast.NewOrderedFields()
	get := &ast.MethodDecl{
		Owner:      "Counter",
		Name:       "get",
		ReturnType: ast.IntType{},
		Params:     getParams,
		Locals:     getLocals,
		ReturnExpr: &ast.Identifier{Name: "value", FieldOwner: "Counter"},
	}

	addParams := ast.NewOrderedFields()
	addParams.Add("n", ast.IntType{})
	addLocals := ast.NewOrderedFields()
	add := &ast.MethodDecl{
		Owner:      "Counter",
		Name:       "add",
		ReturnType: ast.IntType{},
		Params:     addParams,
		Locals:     addLocals,
		ReturnExpr: &ast.BinaryExpr{
			Op:    ast.OpAdd,
			Left:  &ast.Identifier{Name: "value", FieldOwner: "Counter"},
			Right: &ast.Identifier{Name: "n"},
		},
	}

	return &ast.ClassDecl{
		Name:    "Counter",
		Fields:  fields,
		Methods: []*ast.MethodDecl{get, add},
	}
}

func programWithCounter() *ast.Program {
	return &ast.Program{
		Main:    &ast.MainClass{Name: "Main", Body: &ast.BlockStmt{}},
		Classes: []*ast.ClassDecl{counterClass()},
	}
}

func TestTranslateMethodParamCountIncludesThis(t *testing.T) {
	prog := programWithCounter()
	symtab, err := ast.NewSymbolTable(prog)
	if err != nil {
		t.Fatalf("NewSymbolTable: %v", err)
	}
	out, err := Translate(prog, symtab)
	if err != nil {
		t.Fatalf("Translate: %v", err)
	}

	var get, add *tree.Function
	for _, fn := range out.Functions {
		switch fn.Name {
		case names.NamedLabel("LCounter$get"):
			get = fn
		case names.NamedLabel("LCounter$add"):
			add = fn
		}
	}
	if get == nil || add == nil {
		t.Fatalf("expected both LCounter$get and LCounter$add among %v", funcNames(out.Functions))
	}
	if get.ParamCount != 1 {
		t.Fatalf("get.ParamCount = %d, want 1 (this only)", get.ParamCount)
	}
	if add.ParamCount != 2 {
		t.Fatalf("add.ParamCount = %d, want 2 (this + n)", add.ParamCount)
	}
	checkEpilogueShape(t, get)
	checkEpilogueShape(t, add)
}

func funcNames(fns []*tree.Function) []names.Label {
	out := make([]names.Label, len(fns))
	for i, fn := range fns {
		out[i] = fn.Name
	}
	return out
}

func TestFieldOffsetSkipsClassIdSlot(t *testing.T) {
	prog := programWithCounter()
	symtab, err := ast.NewSymbolTable(prog)
	if err != nil {
		t.Fatalf("NewSymbolTable: %v", err)
	}
	ctx := &fnCtx{symtab: symtab, class: "Counter"}
	off, err := ctx.fieldOffset("Counter", "value")
	if err != nil {
		t.Fatalf("fieldOffset: %v", err)
	}
	if off != tree.WordSize {
		t.Fatalf("fieldOffset(value) = %d, want %d (slot 0 reserved for the class id)", off, tree.WordSize)
	}
}

func TestTranslateMethodReturnUsesFieldAndParam(t *testing.T) {
	prog := programWithCounter()
	symtab, err := ast.NewSymbolTable(prog)
	if err != nil {
		t.Fatalf("NewSymbolTable: %v", err)
	}
	out, err := Translate(prog, symtab)
	if err != nil {
		t.Fatalf("Translate: %v", err)
	}
	var add *tree.Function
	for _, fn := range out.Functions {
		if fn.Name == names.NamedLabel("LCounter$add") {
			add = fn
		}
	}
	if add == nil {
		t.Fatalf("missing LCounter$add")
	}
	tail := lastSix(add.Body)
	retMove, ok := tail[0].(*tree.Move)
	if !ok {
		t.Fatalf("expected the return Move first, got %#v", tail[0])
	}
	bin, ok := retMove.Src.(*tree.BinOpExp)
	if !ok || bin.Op != tree.PLUS {
		t.Fatalf("expected the return value to be value + n, got %#v", retMove.Src)
	}
	if _, ok := bin.Left.(*tree.Mem); !ok {
		t.Fatalf("expected the field access to lower to a Mem read, got %#v", bin.Left)
	}
	param, ok := bin.Right.(*tree.Param)
	if !ok || param.Index != 1 {
		t.Fatalf("expected n to resolve to Param{Index:1}, got %#v", bin.Right)
	}
}

func arrayAccessCtx() (*fnCtx, names.Temp, names.Label) {
	arrTemp := names.NewTemp()
	idxTemp := names.NewTemp()
	raise := names.NewLabel()
	ctx := &fnCtx{
		scope: map[string]binding{
			"arr": {temp: arrTemp},
			"i":   {temp: idxTemp},
		},
		raiseLabel: raise,
	}
	return ctx, idxTemp, raise
}

func countCJumps(stmts []tree.Stm) (lt, ge int) {
	for _, s := range stmts {
		cj, ok := s.(*tree.CJump)
		if !ok {
			continue
		}
		switch cj.Rel {
		case tree.LT:
			lt++
		case tree.GE:
			ge++
		}
	}
	return
}

func TestArrayAccessConstantIndexElidesLowerBoundCheck(t *testing.T) {
	ctx, _, raise := arrayAccessCtx()
	stmts, _, err := ctx.translateExpr(&ast.ArrayAccessExpr{
		Array: &ast.Identifier{Name: "arr"},
		Index: &ast.IntLiteral{Value: 2},
	})
	if err != nil {
		t.Fatalf("translateExpr: %v", err)
	}
	lt, ge := countCJumps(stmts)
	if lt != 0 {
		t.Fatalf("a nonnegative constant index must elide the lower-bound check, found %d LT checks", lt)
	}
	if ge != 1 {
		t.Fatalf("expected exactly one upper-bound check, found %d", ge)
	}
	for _, s := range stmts {
		if cj, ok := s.(*tree.CJump); ok && cj.LTrue != raise {
			t.Fatalf("bounds-check failure must jump to the raise label, got %v", cj.LTrue)
		}
	}
}

func TestArrayAccessNonConstantIndexChecksBothBounds(t *testing.T) {
	ctx, _, raise := arrayAccessCtx()
	stmts, _, err := ctx.translateExpr(&ast.ArrayAccessExpr{
		Array: &ast.Identifier{Name: "arr"},
		Index: &ast.Identifier{Name: "i"},
	})
	if err != nil {
		t.Fatalf("translateExpr: %v", err)
	}
	lt, ge := countCJumps(stmts)
	if lt != 1 || ge != 1 {
		t.Fatalf("expected one lower-bound and one upper-bound check, got lt=%d ge=%d", lt, ge)
	}
	for _, s := range stmts {
		if cj, ok := s.(*tree.CJump); ok && cj.LTrue != raise {
			t.Fatalf("both bounds checks must jump to the raise label on failure, got %v", cj.LTrue)
		}
	}
}

func TestTranslateCondShortCircuitAndSharesMidLabel(t *testing.T) {
	aTemp, bTemp := names.NewTemp(), names.NewTemp()
	ctx := &fnCtx{scope: map[string]binding{
		"a": {temp: aTemp},
		"b": {temp: bTemp},
	}}
	lTrue, lFalse := names.NewLabel(), names.NewLabel()

	stmts, err := ctx.translateCond(&ast.BinaryExpr{
		Op:    ast.OpAnd,
		Left:  &ast.Identifier{Name: "a"},
		Right: &ast.Identifier{Name: "b"},
	}, lTrue, lFalse)
	if err != nil {
		t.Fatalf("translateCond: %v", err)
	}

	var labels []names.Label
	var cjumps []*tree.CJump
	for _, s := range stmts {
		switch n := s.(type) {
		case *tree.LabelStm:
			labels = append(labels, n.Label)
		case *tree.CJump:
			cjumps = append(cjumps, n)
		}
	}
	if len(labels) != 1 {
		t.Fatalf("expected exactly one mid label between the two operands, got %d", len(labels))
	}
	if len(cjumps) != 2 {
		t.Fatalf("expected one CJump per operand, got %d", len(cjumps))
	}
	mid := labels[0]
	if cjumps[0].LTrue != mid || cjumps[0].LFalse != lFalse {
		t.Fatalf("evaluating the left operand false must skip straight to lFalse, not fall through to the right operand: %#v", cjumps[0])
	}
	if cjumps[1].LTrue != lTrue || cjumps[1].LFalse != lFalse {
		t.Fatalf("evaluating the right operand must decide the overall result: %#v", cjumps[1])
	}
}

func TestTranslateCondNotSwapsBranches(t *testing.T) {
	aTemp := names.NewTemp()
	ctx := &fnCtx{scope: map[string]binding{"a": {temp: aTemp}}}
	lTrue, lFalse := names.NewLabel(), names.NewLabel()

	stmts, err := ctx.translateCond(&ast.NotExpr{Operand: &ast.Identifier{Name: "a"}}, lTrue, lFalse)
	if err != nil {
		t.Fatalf("translateCond: %v", err)
	}
	if len(stmts) != 1 {
		t.Fatalf("expected a single CJump for !a, got %d statements", len(stmts))
	}
	cj, ok := stmts[0].(*tree.CJump)
	if !ok {
		t.Fatalf("expected a CJump, got %#v", stmts[0])
	}
	if cj.LTrue != lFalse || cj.LFalse != lTrue {
		t.Fatalf("NotExpr must swap the true/false targets passed to its operand, got LTrue=%v LFalse=%v", cj.LTrue, cj.LFalse)
	}
}
