package ast

import "fmt"

// SymbolTable is the one lookup surface spec.md §6 requires of the front
// end: given a class name, yield its field list (for offset computation)
// and, given a class and method name, its signature (for call-site arity
// and return type). It is built once from a Program and is read-only from
// the translator's point of view.
type SymbolTable struct {
	classes map[string]*ClassDecl
	order   []string
}

// NewSymbolTable indexes every class in prog by name. Returns an error if
// two classes share a name.
func NewSymbolTable(prog *Program) (*SymbolTable, error) {
	st := &SymbolTable{classes: make(map[string]*ClassDecl)}
	for _, c := range prog.Classes {
		if _, exists := st.classes[c.Name]; exists {
			return nil, fmt.Errorf("duplicate class %q", c.Name)
		}
		st.classes[c.Name] = c
		st.order = append(st.order, c.Name)
	}
	return st, nil
}

// FieldsOf returns the ordered field list of a class, or an error if the
// class is unknown.
func (st *SymbolTable) FieldsOf(className string) (*OrderedFields, error) {
	c, ok := st.classes[className]
	if !ok {
		return nil, fmt.Errorf("undefined class %q", className)
	}
	return c.Fields, nil
}

// ClassOf returns the class declaration itself.
func (st *SymbolTable) ClassOf(className string) (*ClassDecl, error) {
	c, ok := st.classes[className]
	if !ok {
		return nil, fmt.Errorf("undefined class %q", className)
	}
	return c, nil
}

// MethodSignature resolves a method statically from the declared class
// name of the receiver — there is no dynamic dispatch (spec.md §4.2: the
// class-id slot is reserved but never consulted).
func (st *SymbolTable) MethodSignature(className, methodName string) (*MethodDecl, error) {
	c, ok := st.classes[className]
	if !ok {
		return nil, fmt.Errorf("undefined class %q", className)
	}
	for _, m := range c.Methods {
		if m.Name == methodName {
			return m, nil
		}
	}
	return nil, fmt.Errorf("class %q has no method %q", className, methodName)
}

// ClassNames returns class names in declaration order, for deterministic
// iteration (e.g. emitting every method of every class in source order).
func (st *SymbolTable) ClassNames() []string { return st.order }
