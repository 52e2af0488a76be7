// Package ast defines the typed source-level AST and symbol table that the
// front end (lexer, parser, type checker — out of scope for this backend)
// is assumed to hand to the translator. Nodes are immutable once built; the
// backend only ever reads them.
package ast

import "fmt"

// Position marks a 1-based line/column in a source file, used for
// diagnostics only; the backend proper never fails on a well-typed
// program (spec.md §7), so Position mostly flows through unused except in
// the compileerr package.
type Position struct {
	Line   int
	Column int
}

func (p Position) String() string { return fmt.Sprintf("%d:%d", p.Line, p.Column) }

// Node is the root of every AST type.
type Node interface {
	Pos() Position
}

// Statement is any executable construct inside a method body.
type Statement interface {
	Node
	stmtNode()
}

// Expression is any value-producing construct.
type Expression interface {
	Node
	exprNode()
}

// Program is the root of a compilation unit: a distinguished main class
// plus zero or more auxiliary classes.
type Program struct {
	Main    *MainClass
	Classes []*ClassDecl
	P       Position
}

func (n *Program) Pos() Position { return n.P }

// MainClass models `class Main { public static void main(String[] a) { ... } }`.
// Its single statement is lowered directly into Lmain.
type MainClass struct {
	Name string
	Arg  string // the String[] parameter name, unused by the backend
	Body Statement
	P    Position
}

func (n *MainClass) Pos() Position { return n.P }

// ClassDecl declares a class with an ordered field list and a set of
// methods. Single inheritance only (spec.md Non-goals exclude multi-class
// inheritance); Extends is empty for a root class.
type ClassDecl struct {
	Name    string
	Extends string
	Fields  *OrderedFields
	Methods []*MethodDecl
	P       Position
}

func (n *ClassDecl) Pos() Position { return n.P }

// MethodDecl declares one method. ThrowsIOException is carried from the
// decoded input only; the translator does not read it, and nothing in the
// translated IR records it (spec.md §6).
type MethodDecl struct {
	Owner             string
	Name              string
	ReturnType        Type
	Params            *OrderedFields
	Locals            *OrderedFields
	Body              []Statement
	ReturnExpr        Expression
	ThrowsIOException bool
	P                 Position
}

func (n *MethodDecl) Pos() Position { return n.P }

// Mangled returns the L<class>$<method> label name (spec.md §6).
func (m *MethodDecl) Mangled() string {
	return "L" + m.Owner + "$" + m.Name
}

// RaiseLabel returns the per-method out-of-bounds raise block label.
func (m *MethodDecl) RaiseLabel() string {
	return m.Mangled() + "$raise"
}
