package descriptor

// ClassKind identifies the category of a class declaration.
type ClassKind int

const (
	KindClass ClassKind = iota
	KindInterface
	KindEnumClass
	KindEnumEntry
	KindAnnotationClass
	KindObject
)

// String returns the keyword form of the class kind.
func (k ClassKind) String() string {
	switch k {
	case KindClass:
		return "class"
	case KindInterface:
		return "interface"
	case KindEnumClass:
		return "enum class"
	case KindEnumEntry:
		return "enum entry"
	case KindAnnotationClass:
		return "annotation class"
	case KindObject:
		return "object"
	default:
		return "unknown"
	}
}

// IsSingleton reports whether declarations of this kind have exactly one
// instance.
func (k ClassKind) IsSingleton() bool {
	return k == KindObject || k == KindEnumEntry
}

// Modality controls whether a declaration can be overridden or extended.
type Modality int

const (
	Final Modality = iota
	Sealed
	Open
	Abstract
)

// String returns the keyword form of the modality.
func (m Modality) String() string {
	switch m {
	case Final:
		return "final"
	case Sealed:
		return "sealed"
	case Open:
		return "open"
	case Abstract:
		return "abstract"
	default:
		return "unknown"
	}
}

// Visibility controls where a declaration can be referenced from.
type Visibility int

const (
	Public Visibility = iota
	Protected
	Internal
	Private
)

// String returns the keyword form of the visibility.
func (v Visibility) String() string {
	switch v {
	case Public:
		return "public"
	case Protected:
		return "protected"
	case Internal:
		return "internal"
	case Private:
		return "private"
	default:
		return "unknown"
	}
}

// Variance is the declaration-site or use-site variance of a type argument.
type Variance int

const (
	Invariant Variance = iota
	In
	Out
)

// String returns the keyword form of the variance; Invariant is "".
func (v Variance) String() string {
	switch v {
	case In:
		return "in"
	case Out:
		return "out"
	default:
		return ""
	}
}

// UseSiteTarget is the element an annotation written on a property applies to.
type UseSiteTarget int

const (
	TargetNone UseSiteTarget = iota
	TargetField
	TargetProperty
	TargetGetter
	TargetSetter
	TargetParam
)

// String returns the prefix used in source, such as "get".
func (t UseSiteTarget) String() string {
	switch t {
	case TargetField:
		return "field"
	case TargetProperty:
		return "property"
	case TargetGetter:
		return "get"
	case TargetSetter:
		return "set"
	case TargetParam:
		return "param"
	default:
		return ""
	}
}
