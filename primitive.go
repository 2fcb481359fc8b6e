package builtins

import (
	"github.com/broady/builtins/name"
)

// PrimitiveType is one of the eight primitive value types.
type PrimitiveType int

const (
	Boolean PrimitiveType = iota
	Char
	Byte
	Short
	Int
	Float
	Long
	Double
)

var primitiveTypeNames = [...]string{
	Boolean: "Boolean",
	Char:    "Char",
	Byte:    "Byte",
	Short:   "Short",
	Int:     "Int",
	Float:   "Float",
	Long:    "Long",
	Double:  "Double",
}

// PrimitiveTypes returns every primitive type in declaration order.
func PrimitiveTypes() []PrimitiveType {
	return []PrimitiveType{Boolean, Char, Byte, Short, Int, Float, Long, Double}
}

// String returns the simple class name, e.g. "Int".
func (p PrimitiveType) String() string {
	if !p.valid() {
		return "unknown"
	}
	return primitiveTypeNames[p]
}

func (p PrimitiveType) valid() bool {
	return p >= Boolean && p <= Double
}

// TypeName returns the simple name of the primitive class.
func (p PrimitiveType) TypeName() name.Name {
	return name.Identifier(p.String())
}

// ArrayTypeName returns the simple name of the matching array class, such
// as IntArray.
func (p PrimitiveType) ArrayTypeName() name.Name {
	return name.Identifier(p.String() + "Array")
}

// TypeFqName returns kotlin.<TypeName>.
func (p PrimitiveType) TypeFqName() name.FqName {
	return BuiltInsPackageFqName.Child(p.TypeName())
}

// ArrayTypeFqName returns kotlin.<ArrayTypeName>.
func (p PrimitiveType) ArrayTypeFqName() name.FqName {
	return BuiltInsPackageFqName.Child(p.ArrayTypeName())
}

// IsNumber reports whether p is one of the number types. Char counts as a
// number; Boolean does not.
func (p PrimitiveType) IsNumber() bool {
	return p.valid() && p != Boolean
}
