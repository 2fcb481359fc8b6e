package builtins

import (
	"log/slog"

	"github.com/broady/builtins/contract"
	"github.com/broady/builtins/descriptor"
)

// primitiveTables maps each primitive type to its class and array type, and
// primitive classes to array types and back. Lookups by type go through
// the head class, so only non-null types without arguments match.
type primitiveTables struct {
	types      [Double + 1]*descriptor.Type
	arrayTypes [Double + 1]*descriptor.Type

	arrayByPrimitive map[descriptor.ClassDescriptor]*descriptor.Type
	primitiveByArray map[descriptor.ClassDescriptor]*descriptor.Type
}

func (b *Builtins) makePrimitiveTables() *primitiveTables {
	t := &primitiveTables{
		arrayByPrimitive: make(map[descriptor.ClassDescriptor]*descriptor.Type, len(primitiveTypeNames)),
		primitiveByArray: make(map[descriptor.ClassDescriptor]*descriptor.Type, len(primitiveTypeNames)),
	}
	for _, p := range PrimitiveTypes() {
		class := b.ClassByName(p.TypeName())
		arrayClass := b.ClassByName(p.ArrayTypeName())
		typ := class.DefaultType()
		arrayType := arrayClass.DefaultType()

		t.types[p] = typ
		t.arrayTypes[p] = arrayType
		t.arrayByPrimitive[class] = arrayType
		t.primitiveByArray[arrayClass] = typ
	}
	b.logger.Debug("populated primitive tables", slog.Int("count", len(t.types)))
	return t
}

func tableKey(t *descriptor.Type) descriptor.ClassDescriptor {
	if t == nil || t.IsMarkedNullable() || len(t.Arguments()) > 0 {
		return nil
	}
	return t.Class()
}

// PrimitiveTypeOf returns the type of primitive p, such as Int.
func (b *Builtins) PrimitiveTypeOf(p PrimitiveType) *descriptor.Type {
	contract.Check(p.valid(), contract.CodeInvalidArgument, "unknown primitive type %d", int(p))
	return b.primitives.types[p]
}

// PrimitiveArrayType returns the array type of primitive p, such as
// IntArray.
func (b *Builtins) PrimitiveArrayType(p PrimitiveType) *descriptor.Type {
	contract.Check(p.valid(), contract.CodeInvalidArgument, "unknown primitive type %d", int(p))
	return b.primitives.arrayTypes[p]
}

// PrimitiveArrayTypeByPrimitiveType returns IntArray for Int and so on, or
// nil if t is not a non-null primitive type.
func (b *Builtins) PrimitiveArrayTypeByPrimitiveType(t *descriptor.Type) *descriptor.Type {
	return b.primitives.arrayByPrimitive[tableKey(t)]
}

// PrimitiveTypeByPrimitiveArrayType returns Int for IntArray and so on, or
// nil if t is not a non-null primitive array type.
func (b *Builtins) PrimitiveTypeByPrimitiveArrayType(t *descriptor.Type) *descriptor.Type {
	return b.primitives.primitiveByArray[tableKey(t)]
}

// ArrayElementType returns the element type of an array type: the argument
// of Array<T>, or the primitive type of a primitive array, nullable or not.
// The element type of Array<*> is Any?. It panics if t is not an array type.
func (b *Builtins) ArrayElementType(t *descriptor.Type) *descriptor.Type {
	if IsArray(t) {
		args := t.Arguments()
		contract.Check(len(args) == 1, contract.CodeArgumentCount, "array type %s must have one argument", t)
		return args[0].ProjectedType()
	}
	elem := b.primitives.primitiveByArray[tableKey(t.MakeNotNullable())]
	if elem == nil {
		contract.FailAbout(contract.CodeNotArray, t, "not array: %s")
	}
	return elem
}

// ArrayType returns Array<arg> with the given projection variance.
func (b *Builtins) ArrayType(v descriptor.Variance, arg *descriptor.Type) *descriptor.Type {
	return descriptor.NewType(b.Array(), []descriptor.TypeProjection{descriptor.NewProjection(v, arg)}, false)
}

// EnumType returns Enum<arg>.
func (b *Builtins) EnumType(arg *descriptor.Type) *descriptor.Type {
	return descriptor.NewType(b.Enum(), []descriptor.TypeProjection{descriptor.NewProjection(descriptor.Invariant, arg)}, false)
}
