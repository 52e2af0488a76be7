package ast

import (
	"strings"
	"testing"
)

func TestDecodeMinimalProgram(t *testing.T) {
	src := `{
		"main": {
			"name": "Main",
			"arg": "a",
			"body": {"kind": "print", "arg": {"kind": "intLiteral", "intValue": 42}}
		},
		"classes": []
	}`
	prog, err := Decode([]byte(src))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if prog.Main.Name != "Main" {
		t.Fatalf("Main.Name = %q, want %q", prog.Main.Name, "Main")
	}
	print, ok := prog.Main.Body.(*PrintStmt)
	if !ok {
		t.Fatalf("expected a PrintStmt body, got %T", prog.Main.Body)
	}
	lit, ok := print.Arg.(*IntLiteral)
	if !ok || lit.Value != 42 {
		t.Fatalf("expected println(42), got %#v", print.Arg)
	}
}

func TestDecodeReadAndWrite(t *testing.T) {
	src := `{"kind": "write", "arg": {"kind": "read"}}`
	got, err := decodeStmt([]byte(src))
	if err != nil {
		t.Fatalf("decodeStmt: %v", err)
	}
	write, ok := got.(*WriteStmt)
	if !ok {
		t.Fatalf("expected *WriteStmt, got %T", got)
	}
	if _, ok := write.Arg.(*ReadExpr); !ok {
		t.Fatalf("expected write's argument to be a ReadExpr, got %#v", write.Arg)
	}
}

func TestDecodeClassWithFieldsAndMethod(t *testing.T) {
	src := `{
		"main": {"name": "Main", "body": {"kind": "block", "stmts": []}},
		"classes": [{
			"name": "Counter",
			"extends": "",
			"fields": [{"name": "value", "type": {"kind": "int"}}],
			"methods": [{
				"name": "get",
				"returnType": {"kind": "int"},
				"params": [{"name": "n", "type": {"kind": "int"}}],
				"locals": [],
				"body": [
					{"kind": "assign", "name": "value", "fieldOwner": "Counter",
					 "value": {"kind": "identifier", "name": "n"}}
				],
				"returnExpr": {"kind": "identifier", "name": "value", "fieldOwner": "Counter"},
				"throwsIOException": false
			}]
		}]
	}`
	prog, err := Decode([]byte(src))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(prog.Classes) != 1 {
		t.Fatalf("expected one class, got %d", len(prog.Classes))
	}
	class := prog.Classes[0]
	if class.Name != "Counter" {
		t.Fatalf("class.Name = %q, want %q", class.Name, "Counter")
	}
	if class.Fields.Len() != 1 {
		t.Fatalf("expected one field, got %d", class.Fields.Len())
	}
	field, _, ok := class.Fields.Lookup("value")
	if !ok {
		t.Fatalf("expected a field named value")
	}
	if _, isInt := field.Type.(IntType); !isInt {
		t.Fatalf("expected field value to be IntType, got %T", field.Type)
	}

	if len(class.Methods) != 1 {
		t.Fatalf("expected one method, got %d", len(class.Methods))
	}
	m := class.Methods[0]
	if m.Owner != "Counter" {
		t.Fatalf("method.Owner = %q, want %q (owner is threaded through, not read off the JSON)", m.Owner, "Counter")
	}
	if m.Params.Len() != 1 {
		t.Fatalf("expected one param, got %d", m.Params.Len())
	}
	if len(m.Body) != 1 {
		t.Fatalf("expected one body statement, got %d", len(m.Body))
	}
	assign, ok := m.Body[0].(*AssignStmt)
	if !ok || assign.FieldOwner != "Counter" || assign.Name != "value" {
		t.Fatalf("expected an assignment to the value field, got %#v", m.Body[0])
	}
	ret, ok := m.ReturnExpr.(*Identifier)
	if !ok || ret.FieldOwner != "Counter" {
		t.Fatalf("expected the return expression to read the value field, got %#v", m.ReturnExpr)
	}
}

func TestDecodeLiteralThisAndNewObjectKinds(t *testing.T) {
	cases := []struct {
		name  string
		json  string
		check func(t *testing.T, got Expression)
	}{
		{"intLiteral", `{"kind":"intLiteral","intValue":7}`, func(t *testing.T, got Expression) {
			lit, ok := got.(*IntLiteral)
			if !ok || lit.Value != 7 {
				t.Fatalf("expected IntLiteral{7}, got %#v", got)
			}
		}},
		{"boolLiteral", `{"kind":"boolLiteral","boolValue":true}`, func(t *testing.T, got Expression) {
			lit, ok := got.(*BoolLiteral)
			if !ok || !lit.Value {
				t.Fatalf("expected BoolLiteral{true}, got %#v", got)
			}
		}},
		{"this", `{"kind":"this"}`, func(t *testing.T, got Expression) {
			if _, ok := got.(*ThisExpr); !ok {
				t.Fatalf("expected *ThisExpr, got %#v", got)
			}
		}},
		{"newObject", `{"kind":"newObject","className":"Foo"}`, func(t *testing.T, got Expression) {
			n, ok := got.(*NewObjectExpr)
			if !ok || n.ClassName != "Foo" {
				t.Fatalf("expected NewObjectExpr{ClassName: Foo}, got %#v", got)
			}
		}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got, err := decodeExpr([]byte(c.json))
			if err != nil {
				t.Fatalf("decodeExpr(%s): %v", c.name, err)
			}
			c.check(t, got)
		})
	}
}

func TestDecodeBinaryAndArrayExpressions(t *testing.T) {
	src := `{
		"kind": "arrayAccess",
		"array": {"kind": "identifier", "name": "arr"},
		"index": {"kind": "binary", "op": "+",
			"left": {"kind": "intLiteral", "intValue": 1},
			"right": {"kind": "intLiteral", "intValue": 2}}
	}`
	got, err := decodeExpr([]byte(src))
	if err != nil {
		t.Fatalf("decodeExpr: %v", err)
	}
	access, ok := got.(*ArrayAccessExpr)
	if !ok {
		t.Fatalf("expected *ArrayAccessExpr, got %T", got)
	}
	bin, ok := access.Index.(*BinaryExpr)
	if !ok || bin.Op != OpAdd {
		t.Fatalf("expected the index to decode to an OpAdd binary expression, got %#v", access.Index)
	}
}

func TestDecodeUnknownStatementKindFails(t *testing.T) {
	_, err := decodeStmt([]byte(`{"kind": "gotoFortranStyle"}`))
	if err == nil {
		t.Fatalf("expected an error for an unrecognized statement kind")
	}
	if !strings.Contains(err.Error(), "gotoFortranStyle") {
		t.Fatalf("expected the error to name the offending kind, got %v", err)
	}
}

func TestDecodeUnknownTypeKindFails(t *testing.T) {
	_, err := decodeType([]byte(`{"kind": "float"}`))
	if err == nil {
		t.Fatalf("expected an error for an unrecognized type kind")
	}
}

func TestDecodeUnknownOperatorFails(t *testing.T) {
	_, err := decodeBinOp("%")
	if err == nil {
		t.Fatalf("expected an error for an unsupported operator")
	}
}

func TestDecodeMalformedJSONFails(t *testing.T) {
	_, err := Decode([]byte(`{not valid json`))
	if err == nil {
		t.Fatalf("expected a decode error for malformed JSON")
	}
}

func TestDecodeIfWithoutElseLeavesElseNil(t *testing.T) {
	src := `{
		"kind": "if",
		"cond": {"kind": "boolLiteral", "boolValue": true},
		"then": {"kind": "block", "stmts": []}
	}`
	got, err := decodeStmt([]byte(src))
	if err != nil {
		t.Fatalf("decodeStmt: %v", err)
	}
	ifStmt, ok := got.(*IfStmt)
	if !ok {
		t.Fatalf("expected *IfStmt, got %T", got)
	}
	if ifStmt.Else != nil {
		t.Fatalf("expected a nil Else for an if without an else branch, got %#v", ifStmt.Else)
	}
}
