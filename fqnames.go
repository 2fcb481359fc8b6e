package builtins

import (
	"strconv"

	"github.com/hashicorp/go-set/v3"

	"github.com/broady/builtins/name"
)

// BuiltInsModuleName is the name of the module holding the built-in
// declarations.
var BuiltInsModuleName = name.Special("<built-ins module>")

// Names of the built-in packages.
var (
	BuiltInsPackageName = name.Identifier("kotlin")

	BuiltInsPackageFqName    = name.TopLevel(BuiltInsPackageName)
	AnnotationPackageFqName  = BuiltInsPackageFqName.ChildString("annotation")
	CollectionsPackageFqName = BuiltInsPackageFqName.ChildString("collections")
	RangesPackageFqName      = BuiltInsPackageFqName.ChildString("ranges")
	ReflectPackageFqName     = BuiltInsPackageFqName.ChildString("reflect")
	InternalPackageFqName    = BuiltInsPackageFqName.ChildString("internal")
)

var builtInsPackages = []name.FqName{
	BuiltInsPackageFqName,
	CollectionsPackageFqName,
	RangesPackageFqName,
	AnnotationPackageFqName,
	ReflectPackageFqName,
	InternalPackageFqName,
}

var builtInsPackageSet = set.From(builtInsPackages)

// BuiltInsPackages returns the packages whose declarations are provided by
// the built-ins module, core package first.
func BuiltInsPackages() []name.FqName {
	return append([]name.FqName(nil), builtInsPackages...)
}

// IsBuiltInsPackageFqName reports whether fq is one of BuiltInsPackages.
func IsBuiltInsPackageFqName(fq name.FqName) bool {
	return builtInsPackageSet.Contains(fq)
}

// FqNames holds the qualified names of the well-known built-in classes.
type FqNames struct {
	Any          name.FqName
	Nothing      name.FqName
	Cloneable    name.FqName
	Suppress     name.FqName
	Unit         name.FqName
	CharSequence name.FqName
	String       name.FqName
	Array        name.FqName

	Boolean name.FqName
	Char    name.FqName
	Byte    name.FqName
	Short   name.FqName
	Int     name.FqName
	Long    name.FqName
	Float   name.FqName
	Double  name.FqName
	Number  name.FqName

	Enum name.FqName

	Throwable  name.FqName
	Comparable name.FqName

	Deprecated            name.FqName
	DeprecationLevel      name.FqName
	ExtensionFunctionType name.FqName
	Annotation            name.FqName
	Target                name.FqName
	AnnotationTarget      name.FqName
	AnnotationRetention   name.FqName
	Retention             name.FqName
	Repeatable            name.FqName
	MustBeDocumented      name.FqName
	UnsafeVariance        name.FqName

	Iterator            name.FqName
	Iterable            name.FqName
	Collection          name.FqName
	List                name.FqName
	ListIterator        name.FqName
	Set                 name.FqName
	Map                 name.FqName
	MapEntry            name.FqName
	MutableIterator     name.FqName
	MutableIterable     name.FqName
	MutableCollection   name.FqName
	MutableList         name.FqName
	MutableListIterator name.FqName
	MutableSet          name.FqName
	MutableMap          name.FqName
	MutableMapEntry     name.FqName

	KClass            name.FqName
	KCallable         name.FqName
	KProperty         name.FqName
	KProperty0        name.FqName
	KProperty1        name.FqName
	KProperty2        name.FqName
	KMutableProperty0 name.FqName
	KMutableProperty1 name.FqName
	KMutableProperty2 name.FqName

	fqNameToPrimitiveType           map[name.FqName]PrimitiveType
	arrayClassFqNameToPrimitiveType map[name.FqName]PrimitiveType
}

// Names is the table of well-known qualified names.
var Names = newFqNames()

func newFqNames() *FqNames {
	core := BuiltInsPackageFqName.ChildString
	collections := CollectionsPackageFqName.ChildString
	annotation := AnnotationPackageFqName.ChildString
	reflect := ReflectPackageFqName.ChildString

	n := &FqNames{
		Any:          core("Any"),
		Nothing:      core("Nothing"),
		Cloneable:    core("Cloneable"),
		Suppress:     core("Suppress"),
		Unit:         core("Unit"),
		CharSequence: core("CharSequence"),
		String:       core("String"),
		Array:        core("Array"),

		Boolean: core("Boolean"),
		Char:    core("Char"),
		Byte:    core("Byte"),
		Short:   core("Short"),
		Int:     core("Int"),
		Long:    core("Long"),
		Float:   core("Float"),
		Double:  core("Double"),
		Number:  core("Number"),

		Enum: core("Enum"),

		Throwable:  core("Throwable"),
		Comparable: core("Comparable"),

		Deprecated:            core("Deprecated"),
		DeprecationLevel:      core("DeprecationLevel"),
		ExtensionFunctionType: core("ExtensionFunctionType"),
		Annotation:            core("Annotation"),
		Target:                annotation("Target"),
		AnnotationTarget:      annotation("AnnotationTarget"),
		AnnotationRetention:   annotation("AnnotationRetention"),
		Retention:             annotation("Retention"),
		Repeatable:            annotation("Repeatable"),
		MustBeDocumented:      annotation("MustBeDocumented"),
		UnsafeVariance:        core("UnsafeVariance"),

		Iterator:            collections("Iterator"),
		Iterable:            collections("Iterable"),
		Collection:          collections("Collection"),
		List:                collections("List"),
		ListIterator:        collections("ListIterator"),
		Set:                 collections("Set"),
		Map:                 collections("Map"),
		MutableIterator:     collections("MutableIterator"),
		MutableIterable:     collections("MutableIterable"),
		MutableCollection:   collections("MutableCollection"),
		MutableList:         collections("MutableList"),
		MutableListIterator: collections("MutableListIterator"),
		MutableSet:          collections("MutableSet"),
		MutableMap:          collections("MutableMap"),

		KClass:            reflect("KClass"),
		KCallable:         reflect("KCallable"),
		KProperty:         reflect("KProperty"),
		KProperty0:        reflect("KProperty0"),
		KProperty1:        reflect("KProperty1"),
		KProperty2:        reflect("KProperty2"),
		KMutableProperty0: reflect("KMutableProperty0"),
		KMutableProperty1: reflect("KMutableProperty1"),
		KMutableProperty2: reflect("KMutableProperty2"),

		fqNameToPrimitiveType:           make(map[name.FqName]PrimitiveType, 8),
		arrayClassFqNameToPrimitiveType: make(map[name.FqName]PrimitiveType, 8),
	}
	n.MapEntry = n.Map.ChildString("Entry")
	n.MutableMapEntry = n.MutableMap.ChildString("MutableEntry")

	for _, p := range PrimitiveTypes() {
		n.fqNameToPrimitiveType[p.TypeFqName()] = p
		n.arrayClassFqNameToPrimitiveType[p.ArrayTypeFqName()] = p
	}
	return n
}

// All returns every well-known class name in the table.
func (n *FqNames) All() []name.FqName {
	return []name.FqName{
		n.Any, n.Nothing, n.Cloneable, n.Suppress, n.Unit, n.CharSequence, n.String, n.Array,
		n.Boolean, n.Char, n.Byte, n.Short, n.Int, n.Long, n.Float, n.Double, n.Number,
		n.Enum, n.Throwable, n.Comparable,
		n.Deprecated, n.DeprecationLevel, n.ExtensionFunctionType, n.Annotation,
		n.Target, n.AnnotationTarget, n.AnnotationRetention, n.Retention, n.Repeatable, n.MustBeDocumented,
		n.UnsafeVariance,
		n.Iterator, n.Iterable, n.Collection, n.List, n.ListIterator, n.Set, n.Map, n.MapEntry,
		n.MutableIterator, n.MutableIterable, n.MutableCollection, n.MutableList, n.MutableListIterator,
		n.MutableSet, n.MutableMap, n.MutableMapEntry,
		n.KClass, n.KCallable, n.KProperty, n.KProperty0, n.KProperty1, n.KProperty2,
		n.KMutableProperty0, n.KMutableProperty1, n.KMutableProperty2,
	}
}

// PrimitiveTypeByFqName returns the primitive type whose class is fq.
func PrimitiveTypeByFqName(fq name.FqName) (PrimitiveType, bool) {
	p, ok := Names.fqNameToPrimitiveType[fq]
	return p, ok
}

// PrimitiveTypeByArrayClassFqName returns the primitive type whose array
// class is fq.
func PrimitiveTypeByArrayClassFqName(fq name.FqName) (PrimitiveType, bool) {
	p, ok := Names.arrayClassFqNameToPrimitiveType[fq]
	return p, ok
}

// FunctionName returns the simple name of the function interface taking
// parameterCount parameters, e.g. Function2.
func FunctionName(parameterCount int) string {
	return "Function" + strconv.Itoa(parameterCount)
}

// FunctionFqName returns kotlin.FunctionN for parameterCount.
func FunctionFqName(parameterCount int) name.FqName {
	return BuiltInsPackageFqName.ChildString(FunctionName(parameterCount))
}
