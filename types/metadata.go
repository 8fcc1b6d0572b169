package types

import (
	"fmt"
	"strings"
)

// Class describes a test class loaded from the target assembly.
// Name is the fully-qualified name including namespace. Nested holds
// nested classes in declaration order; RunClass folds over them
// left-to-right.
type Class struct {
	Name   string
	Nested []*Class
}

// Method identifies a test method by declaring class and signature.
// For a generic method GenericArity is the number of type parameters and
// TypeArgs, when present, names the concrete instantiation. An open generic
// definition has GenericArity > 0 and no TypeArgs.
type Method struct {
	ClassName    string
	Name         string
	GenericArity int
	TypeArgs     []string
}

// Equal reports whether two methods denote the same method identity,
// including the concrete instantiation for generic methods.
func (m Method) Equal(other Method) bool {
	if m.ClassName != other.ClassName || m.Name != other.Name || m.GenericArity != other.GenericArity {
		return false
	}
	if len(m.TypeArgs) != len(other.TypeArgs) {
		return false
	}
	for i := range m.TypeArgs {
		if m.TypeArgs[i] != other.TypeArgs[i] {
			return false
		}
	}
	return true
}

// IsGenericDefinition reports whether the method is an open generic
// definition rather than a concrete instantiation.
func (m Method) IsGenericDefinition() bool {
	return m.GenericArity > 0 && len(m.TypeArgs) == 0
}

// Definition returns the open generic definition of the method.
// For non-generic methods it returns the method unchanged.
func (m Method) Definition() Method {
	m.TypeArgs = nil
	return m
}

// String implements the Stringer interface for Method
func (m Method) String() string {
	name := m.ClassName + "." + m.Name
	if len(m.TypeArgs) > 0 {
		name += "<" + strings.Join(m.TypeArgs, ",") + ">"
	} else if m.GenericArity > 0 {
		name += fmt.Sprintf("<arity %d>", m.GenericArity)
	}
	return name
}
