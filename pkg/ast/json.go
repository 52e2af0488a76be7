package ast

import (
	"encoding/json"
	"fmt"
)

// Decode parses the JSON form of a typed program that an external
// front end (lexer, parser, type checker) would hand the backend
// (spec.md §1: "treated as an external producer that yields a typed
// abstract syntax tree together with a symbol table"). The schema
// mirrors the Node variants in this package one-for-one, tagging each
// polymorphic Statement/Expression/Type with a "kind" discriminator.
func Decode(data []byte) (*Program, error) {
	var raw programJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("ast: decode program: %w", err)
	}
	return raw.toProgram()
}

type posJSON struct {
	Line   int `json:"line"`
	Column int `json:"col"`
}

func (p posJSON) toPos() Position { return Position{Line: p.Line, Column: p.Column} }

type programJSON struct {
	Main    mainClassJSON  `json:"main"`
	Classes []classDeclJSON `json:"classes"`
	Pos     posJSON         `json:"pos"`
}

type mainClassJSON struct {
	Name string          `json:"name"`
	Arg  string          `json:"arg"`
	Body json.RawMessage `json:"body"`
	Pos  posJSON         `json:"pos"`
}

type fieldJSON struct {
	Name string          `json:"name"`
	Type json.RawMessage `json:"type"`
}

type classDeclJSON struct {
	Name    string          `json:"name"`
	Extends string          `json:"extends"`
	Fields  []fieldJSON     `json:"fields"`
	Methods []methodDeclJSON `json:"methods"`
	Pos     posJSON         `json:"pos"`
}

type methodDeclJSON struct {
	Name              string            `json:"name"`
	ReturnType        json.RawMessage   `json:"returnType"`
	Params            []fieldJSON       `json:"params"`
	Locals            []fieldJSON       `json:"locals"`
	Body              []json.RawMessage `json:"body"`
	ReturnExpr        json.RawMessage   `json:"returnExpr"`
	ThrowsIOException bool              `json:"throwsIOException"`
	Pos               posJSON           `json:"pos"`
}

func (p programJSON) toProgram() (*Program, error) {
	mainBody, err := decodeStmt(p.Main.Body)
	if err != nil {
		return nil, fmt.Errorf("ast: main class %q: %w", p.Main.Name, err)
	}
	prog := &Program{
		Main: &MainClass{Name: p.Main.Name, Arg: p.Main.Arg, Body: mainBody, P: p.Main.Pos.toPos()},
		P:    p.Pos.toPos(),
	}
	for _, c := range p.Classes {
		cd, err := c.toClassDecl()
		if err != nil {
			return nil, err
		}
		prog.Classes = append(prog.Classes, cd)
	}
	return prog, nil
}

func (c classDeclJSON) toClassDecl() (*ClassDecl, error) {
	cd := &ClassDecl{Name: c.Name, Extends: c.Extends, Fields: NewOrderedFields(), P: c.Pos.toPos()}
	for _, f := range c.Fields {
		typ, err := decodeType(f.Type)
		if err != nil {
			return nil, fmt.Errorf("ast: class %q field %q: %w", c.Name, f.Name, err)
		}
		if _, err := cd.Fields.Add(f.Name, typ); err != nil {
			return nil, fmt.Errorf("ast: class %q: %w", c.Name, err)
		}
	}
	for _, m := range c.Methods {
		md, err := m.toMethodDecl(cd)
		if err != nil {
			return nil, fmt.Errorf("ast: class %q: %w", c.Name, err)
		}
		cd.Methods = append(cd.Methods, md)
	}
	return cd, nil
}

func (m methodDeclJSON) toMethodDecl(owner *ClassDecl) (*MethodDecl, error) {
	retType, err := decodeType(m.ReturnType)
	if err != nil {
		return nil, fmt.Errorf("method %q: return type: %w", m.Name, err)
	}
	md := &MethodDecl{
		Owner:             owner.Name,
		Name:              m.Name,
		ReturnType:        retType,
		Params:            NewOrderedFields(),
		Locals:            NewOrderedFields(),
		ThrowsIOException: m.ThrowsIOException,
		P:                 m.Pos.toPos(),
	}
	for _, p := range m.Params {
		typ, err := decodeType(p.Type)
		if err != nil {
			return nil, fmt.Errorf("method %q param %q: %w", m.Name, p.Name, err)
		}
		if _, err := md.Params.Add(p.Name, typ); err != nil {
			return nil, fmt.Errorf("method %q: %w", m.Name, err)
		}
	}
	for _, l := range m.Locals {
		typ, err := decodeType(l.Type)
		if err != nil {
			return nil, fmt.Errorf("method %q local %q: %w", m.Name, l.Name, err)
		}
		if _, err := md.Locals.Add(l.Name, typ); err != nil {
			return nil, fmt.Errorf("method %q: %w", m.Name, err)
		}
	}
	for _, raw := range m.Body {
		s, err := decodeStmt(raw)
		if err != nil {
			return nil, fmt.Errorf("method %q: %w", m.Name, err)
		}
		md.Body = append(md.Body, s)
	}
	retExpr, err := decodeExpr(m.ReturnExpr)
	if err != nil {
		return nil, fmt.Errorf("method %q: return expr: %w", m.Name, err)
	}
	md.ReturnExpr = retExpr
	return md, nil
}

type typeJSON struct {
	Kind string `json:"kind"`
	Name string `json:"name,omitempty"`
}

func decodeType(data json.RawMessage) (Type, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("missing type")
	}
	var t typeJSON
	if err := json.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("type: %w", err)
	}
	switch t.Kind {
	case "int":
		return IntType{}, nil
	case "bool":
		return BoolType{}, nil
	case "intArray":
		return IntArrayType{}, nil
	case "class":
		return ClassType{Name: t.Name}, nil
	default:
		return nil, fmt.Errorf("unknown type kind %q", t.Kind)
	}
}

type nodeJSON struct {
	Kind string `json:"kind"`
	Pos  posJSON `json:"pos"`

	// Statement fields
	Stmts      []json.RawMessage `json:"stmts,omitempty"`
	Name       string            `json:"name,omitempty"`
	FieldOwner string            `json:"fieldOwner,omitempty"`
	Value      json.RawMessage   `json:"value,omitempty"`
	Array      json.RawMessage   `json:"array,omitempty"`
	Index      json.RawMessage   `json:"index,omitempty"`
	Cond       json.RawMessage   `json:"cond,omitempty"`
	Then       json.RawMessage   `json:"then,omitempty"`
	Else       json.RawMessage   `json:"else,omitempty"`
	Body       json.RawMessage   `json:"body,omitempty"`
	Arg        json.RawMessage   `json:"arg,omitempty"`

	// Expression fields
	IntValue     int32             `json:"intValue,omitempty"`
	BoolValue    bool              `json:"boolValue,omitempty"`
	ClassName    string            `json:"className,omitempty"`
	Length       json.RawMessage   `json:"length,omitempty"`
	Receiver     json.RawMessage   `json:"receiver,omitempty"`
	ReceiverType string            `json:"receiverClass,omitempty"`
	FieldName    string            `json:"fieldName,omitempty"`
	MethodName   string            `json:"methodName,omitempty"`
	Args         []json.RawMessage `json:"args,omitempty"`
	Op           string            `json:"op,omitempty"`
	Left         json.RawMessage   `json:"left,omitempty"`
	Right        json.RawMessage   `json:"right,omitempty"`
	Operand      json.RawMessage   `json:"operand,omitempty"`
}

func decodeStmt(data json.RawMessage) (Statement, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("missing statement")
	}
	var n nodeJSON
	if err := json.Unmarshal(data, &n); err != nil {
		return nil, fmt.Errorf("statement: %w", err)
	}
	pos := n.Pos.toPos()
	switch n.Kind {
	case "block":
		var stmts []Statement
		for _, raw := range n.Stmts {
			s, err := decodeStmt(raw)
			if err != nil {
				return nil, err
			}
			stmts = append(stmts, s)
		}
		return &BlockStmt{Stmts: stmts, P: pos}, nil
	case "assign":
		v, err := decodeExpr(n.Value)
		if err != nil {
			return nil, err
		}
		return &AssignStmt{Name: n.Name, FieldOwner: n.FieldOwner, Value: v, P: pos}, nil
	case "arrayAssign":
		arr, err := decodeExpr(n.Array)
		if err != nil {
			return nil, err
		}
		idx, err := decodeExpr(n.Index)
		if err != nil {
			return nil, err
		}
		v, err := decodeExpr(n.Value)
		if err != nil {
			return nil, err
		}
		return &ArrayAssignStmt{Array: arr, Index: idx, Value: v, P: pos}, nil
	case "if":
		cond, err := decodeExpr(n.Cond)
		if err != nil {
			return nil, err
		}
		thenS, err := decodeStmt(n.Then)
		if err != nil {
			return nil, err
		}
		var elseS Statement
		if len(n.Else) > 0 {
			elseS, err = decodeStmt(n.Else)
			if err != nil {
				return nil, err
			}
		}
		return &IfStmt{Cond: cond, Then: thenS, Else: elseS, P: pos}, nil
	case "while":
		cond, err := decodeExpr(n.Cond)
		if err != nil {
			return nil, err
		}
		body, err := decodeStmt(n.Body)
		if err != nil {
			return nil, err
		}
		return &WhileStmt{Cond: cond, Body: body, P: pos}, nil
	case "print":
		arg, err := decodeExpr(n.Arg)
		if err != nil {
			return nil, err
		}
		return &PrintStmt{Arg: arg, P: pos}, nil
	case "write":
		arg, err := decodeExpr(n.Arg)
		if err != nil {
			return nil, err
		}
		return &WriteStmt{Arg: arg, P: pos}, nil
	default:
		return nil, fmt.Errorf("unknown statement kind %q", n.Kind)
	}
}

func decodeExpr(data json.RawMessage) (Expression, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("missing expression")
	}
	var n nodeJSON
	if err := json.Unmarshal(data, &n); err != nil {
		return nil, fmt.Errorf("expression: %w", err)
	}
	pos := n.Pos.toPos()
	switch n.Kind {
	case "intLiteral":
		return &IntLiteral{Value: n.IntValue, P: pos}, nil
	case "boolLiteral":
		return &BoolLiteral{Value: n.BoolValue, P: pos}, nil
	case "identifier":
		return &Identifier{Name: n.Name, FieldOwner: n.FieldOwner, P: pos}, nil
	case "this":
		return &ThisExpr{P: pos}, nil
	case "newObject":
		return &NewObjectExpr{ClassName: n.ClassName, P: pos}, nil
	case "newArray":
		length, err := decodeExpr(n.Length)
		if err != nil {
			return nil, err
		}
		return &NewArrayExpr{Length: length, P: pos}, nil
	case "arrayAccess":
		arr, err := decodeExpr(n.Array)
		if err != nil {
			return nil, err
		}
		idx, err := decodeExpr(n.Index)
		if err != nil {
			return nil, err
		}
		return &ArrayAccessExpr{Array: arr, Index: idx, P: pos}, nil
	case "arrayLength":
		arr, err := decodeExpr(n.Array)
		if err != nil {
			return nil, err
		}
		return &ArrayLengthExpr{Array: arr, P: pos}, nil
	case "fieldAccess":
		recv, err := decodeExpr(n.Receiver)
		if err != nil {
			return nil, err
		}
		return &FieldAccessExpr{Receiver: recv, FieldName: n.FieldName, ReceiverClass: n.ReceiverType, P: pos}, nil
	case "methodCall":
		recv, err := decodeExpr(n.Receiver)
		if err != nil {
			return nil, err
		}
		var args []Expression
		for _, raw := range n.Args {
			a, err := decodeExpr(raw)
			if err != nil {
				return nil, err
			}
			args = append(args, a)
		}
		return &MethodCallExpr{Receiver: recv, ReceiverClass: n.ReceiverType, MethodName: n.MethodName, Args: args, P: pos}, nil
	case "binary":
		left, err := decodeExpr(n.Left)
		if err != nil {
			return nil, err
		}
		right, err := decodeExpr(n.Right)
		if err != nil {
			return nil, err
		}
		op, err := decodeBinOp(n.Op)
		if err != nil {
			return nil, err
		}
		return &BinaryExpr{Op: op, Left: left, Right: right, P: pos}, nil
	case "not":
		operand, err := decodeExpr(n.Operand)
		if err != nil {
			return nil, err
		}
		return &NotExpr{Operand: operand, P: pos}, nil
	case "read":
		return &ReadExpr{P: pos}, nil
	default:
		return nil, fmt.Errorf("unknown expression kind %q", n.Kind)
	}
}

func decodeBinOp(op string) (BinOp, error) {
	switch op {
	case "+":
		return OpAdd, nil
	case "-":
		return OpSub, nil
	case "*":
		return OpMul, nil
	case "<":
		return OpLess, nil
	case "&&":
		return OpAnd, nil
	default:
		return 0, fmt.Errorf("unknown binary operator %q", op)
	}
}
