package ast

// Type is a source-level type: int, boolean, int[], or a class name.
type Type interface {
	typeNode()
	String() string
}

type IntType struct{}

func (IntType) typeNode()      {}
func (IntType) String() string { return "int" }

type BoolType struct{}

func (BoolType) typeNode()      {}
func (BoolType) String() string { return "boolean" }

type IntArrayType struct{}

func (IntArrayType) typeNode()      {}
func (IntArrayType) String() string { return "int[]" }

// ClassType names a user-defined class; field and method lookups go
// through the SymbolTable, not through this node.
type ClassType struct {
	Name string
}

func (ClassType) typeNode()        {}
func (c ClassType) String() string { return c.Name }
