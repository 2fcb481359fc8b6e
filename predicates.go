package builtins

import (
	"github.com/broady/builtins/descriptor"
	"github.com/broady/builtins/name"
)

// classFqNameEquals compares the simple name first so that the qualified
// name is only built for likely matches.
func classFqNameEquals(c descriptor.Classifier, fq name.FqName) bool {
	return c.Name() == fq.ShortName() && descriptor.FqNameOf(c) == fq
}

func isConstructedFromGivenClass(t *descriptor.Type, fq name.FqName) bool {
	cd := t.Class()
	return cd != nil && classFqNameEquals(cd, fq)
}

func isNotNullConstructedFromGivenClass(t *descriptor.Type, fq name.FqName) bool {
	return !t.IsMarkedNullable() && isConstructedFromGivenClass(t, fq)
}

func primitiveOfClass(c descriptor.Classifier) (PrimitiveType, bool) {
	if c == nil {
		return 0, false
	}
	return PrimitiveTypeByFqName(descriptor.FqNameOf(c))
}

func primitiveArrayOfClass(c descriptor.Classifier) (PrimitiveType, bool) {
	if c == nil {
		return 0, false
	}
	return PrimitiveTypeByArrayClassFqName(descriptor.FqNameOf(c))
}

// PrimitiveFqName returns the qualified name of the class of p.
func PrimitiveFqName(p PrimitiveType) name.FqName {
	return p.TypeFqName()
}

// IsArray reports whether t is Array<T> or Array<T>?.
func IsArray(t *descriptor.Type) bool {
	return isConstructedFromGivenClass(t, Names.Array)
}

// IsArrayOrPrimitiveArray reports whether c is Array or one of the
// primitive array classes.
func IsArrayOrPrimitiveArray(c descriptor.ClassDescriptor) bool {
	if classFqNameEquals(c, Names.Array) {
		return true
	}
	_, ok := primitiveArrayOfClass(c)
	return ok
}

// IsPrimitiveArray reports whether the head of t is a primitive array
// class. Nullability is ignored.
func IsPrimitiveArray(t *descriptor.Type) bool {
	_, ok := primitiveArrayOfClass(t.Classifier())
	return ok
}

// IsPrimitiveArrayFqName reports whether fq names a primitive array class.
func IsPrimitiveArrayFqName(fq name.FqName) bool {
	_, ok := PrimitiveTypeByArrayClassFqName(fq)
	return ok
}

// IsPrimitiveType reports whether t is a non-null primitive type.
func IsPrimitiveType(t *descriptor.Type) bool {
	cd := t.Class()
	return !t.IsMarkedNullable() && cd != nil && IsPrimitiveClass(cd)
}

// IsPrimitiveClass reports whether c is one of the primitive classes.
func IsPrimitiveClass(c descriptor.ClassDescriptor) bool {
	_, ok := primitiveOfClass(c)
	return ok
}

// IsSpecialClassWithNoSupertypes reports whether c is Any or Nothing.
func IsSpecialClassWithNoSupertypes(c descriptor.ClassDescriptor) bool {
	return classFqNameEquals(c, Names.Any) || classFqNameEquals(c, Names.Nothing)
}

// IsAnyClass reports whether c is Any.
func IsAnyClass(c descriptor.ClassDescriptor) bool {
	return classFqNameEquals(c, Names.Any)
}

// IsBooleanClass reports whether c is Boolean.
func IsBooleanClass(c descriptor.ClassDescriptor) bool {
	return classFqNameEquals(c, Names.Boolean)
}

// IsKClass reports whether c is kotlin.reflect.KClass.
func IsKClass(c descriptor.ClassDescriptor) bool {
	return classFqNameEquals(c, Names.KClass)
}

// IsCloneable reports whether c is Cloneable.
func IsCloneable(c descriptor.ClassDescriptor) bool {
	return classFqNameEquals(c, Names.Cloneable)
}

// IsNonPrimitiveArray reports whether c is the generic Array class.
func IsNonPrimitiveArray(c descriptor.ClassDescriptor) bool {
	return classFqNameEquals(c, Names.Array)
}

// IsAny reports whether t is a non-null Any.
func IsAny(t *descriptor.Type) bool {
	return isNotNullConstructedFromGivenClass(t, Names.Any)
}

// IsBoolean reports whether t is a non-null Boolean.
func IsBoolean(t *descriptor.Type) bool {
	return isNotNullConstructedFromGivenClass(t, Names.Boolean)
}

// IsChar reports whether t is a non-null Char.
func IsChar(t *descriptor.Type) bool {
	return isNotNullConstructedFromGivenClass(t, Names.Char)
}

// IsInt reports whether t is a non-null Int.
func IsInt(t *descriptor.Type) bool {
	return isNotNullConstructedFromGivenClass(t, Names.Int)
}

// IsByte reports whether t is a non-null Byte.
func IsByte(t *descriptor.Type) bool {
	return isNotNullConstructedFromGivenClass(t, Names.Byte)
}

// IsLong reports whether t is a non-null Long.
func IsLong(t *descriptor.Type) bool {
	return isNotNullConstructedFromGivenClass(t, Names.Long)
}

// IsShort reports whether t is a non-null Short.
func IsShort(t *descriptor.Type) bool {
	return isNotNullConstructedFromGivenClass(t, Names.Short)
}

// IsFloat reports whether t is a non-null Float.
func IsFloat(t *descriptor.Type) bool {
	return isNotNullConstructedFromGivenClass(t, Names.Float)
}

// IsDouble reports whether t is a non-null Double.
func IsDouble(t *descriptor.Type) bool {
	return isNotNullConstructedFromGivenClass(t, Names.Double)
}

// IsUnit reports whether t is a non-null Unit.
func IsUnit(t *descriptor.Type) bool {
	return isNotNullConstructedFromGivenClass(t, Names.Unit)
}

// IsBooleanOrNullableBoolean reports whether t is Boolean or Boolean?.
func IsBooleanOrNullableBoolean(t *descriptor.Type) bool {
	return isConstructedFromGivenClass(t, Names.Boolean)
}

// IsNothing reports whether t is Nothing.
func IsNothing(t *descriptor.Type) bool {
	return IsNothingOrNullableNothing(t) && !t.IsMarkedNullable()
}

// IsNullableNothing reports whether t is Nothing?.
func IsNullableNothing(t *descriptor.Type) bool {
	return IsNothingOrNullableNothing(t) && t.IsMarkedNullable()
}

// IsNothingOrNullableNothing reports whether t is Nothing or Nothing?.
func IsNothingOrNullableNothing(t *descriptor.Type) bool {
	return isConstructedFromGivenClass(t, Names.Nothing)
}

// IsAnyOrNullableAny reports whether t is Any or Any?.
func IsAnyOrNullableAny(t *descriptor.Type) bool {
	return isConstructedFromGivenClass(t, Names.Any)
}

// IsNullableAny reports whether t is Any?.
func IsNullableAny(t *descriptor.Type) bool {
	return IsAnyOrNullableAny(t) && t.IsMarkedNullable()
}

// IsDefaultBound reports whether t is Any?, the implicit bound of a type
// parameter.
func IsDefaultBound(t *descriptor.Type) bool {
	return IsNullableAny(t)
}

// IsUnitOrNullableUnit reports whether t is Unit or Unit?.
func IsUnitOrNullableUnit(t *descriptor.Type) bool {
	return isConstructedFromGivenClass(t, Names.Unit)
}

// IsString reports whether t is a non-null String. A nil t is not.
func IsString(t *descriptor.Type) bool {
	return t != nil && isNotNullConstructedFromGivenClass(t, Names.String)
}

// IsStringOrNullableString reports whether t is String or String?. A nil t is not.
func IsStringOrNullableString(t *descriptor.Type) bool {
	return t != nil && isConstructedFromGivenClass(t, Names.String)
}

// IsCharSequenceOrNullableCharSequence reports whether t is CharSequence or CharSequence?. A nil t is not.
func IsCharSequenceOrNullableCharSequence(t *descriptor.Type) bool {
	return t != nil && isConstructedFromGivenClass(t, Names.CharSequence)
}

// IsCollectionOrNullableCollection reports whether t is Collection or Collection?.
func IsCollectionOrNullableCollection(t *descriptor.Type) bool {
	return isConstructedFromGivenClass(t, Names.Collection)
}

// IsListOrNullableList reports whether t is List or List?.
func IsListOrNullableList(t *descriptor.Type) bool {
	return isConstructedFromGivenClass(t, Names.List)
}

// IsSetOrNullableSet reports whether t is Set or Set?.
func IsSetOrNullableSet(t *descriptor.Type) bool {
	return isConstructedFromGivenClass(t, Names.Set)
}

// IsMapOrNullableMap reports whether t is Map or Map?.
func IsMapOrNullableMap(t *descriptor.Type) bool {
	return isConstructedFromGivenClass(t, Names.Map)
}

// IsIterableOrNullableIterable reports whether t is Iterable or Iterable?.
func IsIterableOrNullableIterable(t *descriptor.Type) bool {
	return isConstructedFromGivenClass(t, Names.Iterable)
}

// IsSuppressAnnotation reports whether a is @Suppress.
func IsSuppressAnnotation(a descriptor.Annotation) bool {
	return a.Class == Names.Suppress
}
