// Package builtins is the registry of the well-known built-in classes of the
// language: Any, Nothing, the primitive types and their arrays, the
// collection interfaces, the annotation classes and the FunctionN family.
//
// A registry is created once with New and is immutable afterwards. Classes
// are resolved lazily from the package fragments supplied by the configured
// provider, so creating a registry only loads package metadata; class
// bodies are deserialized on first use.
//
// The package also holds the pure classification predicates (IsInt,
// IsArray, IsDeprecated and so on), which only compare qualified names and
// therefore work on any descriptor graph.
package builtins

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/broady/builtins/contract"
	"github.com/broady/builtins/descriptor"
	"github.com/broady/builtins/metadata"
	"github.com/broady/builtins/name"
	"github.com/broady/builtins/resource"
	"github.com/broady/builtins/storage"
)

// SubtypeChecker decides whether one type is a subtype of another.
type SubtypeChecker interface {
	IsSubtypeOf(sub, super *descriptor.Type) bool
}

// ProviderParams is passed to a ProviderFactory.
type ProviderParams struct {
	// Module is the built-ins module. Fragments returned by the provider
	// must be contained in it.
	Module *descriptor.Module

	StorageManager storage.Manager

	// Packages are the built-in package names to serve.
	Packages []name.FqName

	Loader resource.Loader
	Logger *slog.Logger
}

// ProviderFactory creates the package fragment provider of the built-ins
// module.
type ProviderFactory func(ctx context.Context, p ProviderParams) (descriptor.PackageFragmentProvider, error)

// Config configures New.
type Config struct {
	// Logger receives debug records about fragment resolution and class
	// loading.
	// Default: slog.Default()
	Logger *slog.Logger

	// StorageManager creates the locks of every lazy value in the graph.
	// Use storage.NoLocks() only when the registry is confined to one
	// goroutine.
	// Default: storage.LockBased()
	StorageManager storage.Manager

	// Loader opens the serialized package files. A loader other than the
	// default is wrapped in a resource.CachingLoader unless it already is
	// one; pass the same CachingLoader to several registries to share reads.
	// Default: metadata.DefaultLoader(), the embedded bundle.
	Loader resource.Loader

	// Provider creates the fragment provider of the built-ins module.
	// Default: MetadataProvider
	Provider ProviderFactory

	// SubtypeChecker is used by IsBooleanOrSubtype.
	// Default: descriptor.NominalSubtypeChecker with Nothing as the bottom type.
	SubtypeChecker SubtypeChecker

	// ModuleName names the built-ins module. It must be a special name.
	// Default: BuiltInsModuleName
	ModuleName name.Name
}

// applyConfigDefaults applies default values to Config.
func applyConfigDefaults(cfg *Config) *Config {
	// Make a copy to avoid mutating the input
	var result Config
	if cfg != nil {
		result = *cfg
	}

	if result.Logger == nil {
		result.Logger = slog.Default()
	}
	if result.StorageManager == nil {
		result.StorageManager = storage.LockBased()
	}
	switch result.Loader.(type) {
	case nil:
		result.Loader = metadata.DefaultLoader()
	case *resource.CachingLoader:
	default:
		result.Loader = resource.NewCachingLoader(result.Loader)
	}
	if result.Provider == nil {
		result.Provider = MetadataProvider
	}
	if result.SubtypeChecker == nil {
		result.SubtypeChecker = descriptor.NominalSubtypeChecker{IsBottom: IsNothingOrNullableNothing}
	}
	if result.ModuleName.IsZero() {
		result.ModuleName = BuiltInsModuleName
	}

	return &result
}

// MetadataProvider is the default ProviderFactory. It deserializes the
// packages from metadata files read through p.Loader.
func MetadataProvider(ctx context.Context, p ProviderParams) (descriptor.PackageFragmentProvider, error) {
	return metadata.New(ctx, metadata.Params{
		Module:          p.Module,
		StorageManager:  p.StorageManager,
		Packages:        p.Packages,
		Loader:          p.Loader,
		Logger:          p.Logger,
		FunctionPackage: BuiltInsPackageFqName,
		DefaultBound:    "kotlin/Any?",
	})
}

// Builtins is the registry of built-in classes.
// It is safe for concurrent use.
type Builtins struct {
	logger   *slog.Logger
	subtypes SubtypeChecker
	module   *descriptor.Module

	core        descriptor.PackageFragment
	collections descriptor.PackageFragment
	ranges      descriptor.PackageFragment
	annotation  descriptor.PackageFragment

	fragments []descriptor.PackageFragment
	byPackage map[name.FqName]descriptor.PackageFragment

	primitives *primitiveTables
}

// New creates the built-ins module and its registry.
//
// The provider must supply exactly one fragment for each of the kotlin,
// kotlin.collections, kotlin.ranges and kotlin.annotation packages, and the
// core package must declare every primitive class and primitive array
// class. Otherwise New returns a *contract.Error and no registry.
func New(ctx context.Context, cfg *Config) (*Builtins, error) {
	cfg = applyConfigDefaults(cfg)

	var b *Builtins
	var buildErr error
	err := contract.Recover(func() {
		b, buildErr = build(ctx, cfg)
	})
	if err != nil {
		cfg.Logger.Debug("built-ins construction failed", slog.Any("error", err))
		return nil, err
	}
	if buildErr != nil {
		return nil, buildErr
	}
	return b, nil
}

func build(ctx context.Context, cfg *Config) (*Builtins, error) {
	module := descriptor.NewModule(cfg.ModuleName)

	provider, err := cfg.Provider(ctx, ProviderParams{
		Module:         module,
		StorageManager: cfg.StorageManager,
		Packages:       BuiltInsPackages(),
		Loader:         cfg.Loader,
		Logger:         cfg.Logger,
	})
	if err != nil {
		return nil, fmt.Errorf("create built-ins package provider: %w", err)
	}
	module.Initialize(provider)
	module.SetDependencies(module)

	b := &Builtins{
		logger:    cfg.Logger,
		subtypes:  cfg.SubtypeChecker,
		module:    module,
		byPackage: make(map[name.FqName]descriptor.PackageFragment, 4),
	}
	b.core = b.createPackage(provider, BuiltInsPackageFqName)
	b.collections = b.createPackage(provider, CollectionsPackageFqName)
	b.ranges = b.createPackage(provider, RangesPackageFqName)
	b.annotation = b.createPackage(provider, AnnotationPackageFqName)

	b.primitives = b.makePrimitiveTables()
	return b, nil
}

func (b *Builtins) createPackage(provider descriptor.PackageFragmentProvider, fq name.FqName) descriptor.PackageFragment {
	fragments := provider.PackageFragments(fq)
	if len(fragments) != 1 {
		panic(contract.Errorf(contract.CodeFragmentCount,
			"expected exactly one fragment for built-in package %s, got %d", fq, len(fragments)).
			WithDetail("package", fq.String()).
			WithDetail("count", len(fragments)))
	}
	f := fragments[0]
	b.byPackage[fq] = f
	b.fragments = append(b.fragments, f)
	b.logger.Debug("resolved built-ins package fragment", slog.String("package", fq.String()))
	return f
}

// Module returns the built-ins module.
func (b *Builtins) Module() *descriptor.Module {
	return b.module
}

// PackageFragments returns the fragments of the four registry packages,
// core package first.
func (b *Builtins) PackageFragments() []descriptor.PackageFragment {
	return append([]descriptor.PackageFragment(nil), b.fragments...)
}

// CorePackageFragment returns the fragment of package kotlin.
func (b *Builtins) CorePackageFragment() descriptor.PackageFragment {
	return b.core
}

// PackageScope returns the member scope of package kotlin.
func (b *Builtins) PackageScope() descriptor.MemberScope {
	return b.core.MemberScope()
}

// IsBuiltInPackageFragment reports whether f belongs to the built-ins
// module.
func (b *Builtins) IsBuiltInPackageFragment(f descriptor.PackageFragment) bool {
	return f != nil && f.ContainingDeclaration() == descriptor.Declaration(b.module)
}

// IsMemberOfAny reports whether d is declared directly in Any.
func (b *Builtins) IsMemberOfAny(d descriptor.Declaration) bool {
	return d.ContainingDeclaration() == descriptor.Declaration(b.Any())
}

// IsBooleanOrSubtype reports whether t is a subtype of Boolean.
func (b *Builtins) IsBooleanOrSubtype(t *descriptor.Type) bool {
	return b.subtypes.IsSubtypeOf(t, b.BooleanType())
}

// ClassByName returns the class simpleName of package kotlin. It panics if
// there is no such class.
func (b *Builtins) ClassByName(simpleName name.Name) descriptor.ClassDescriptor {
	return b.ClassByNameIn(simpleName, b.core)
}

// FindClassByName returns the class simpleName of package kotlin, or nil.
func (b *Builtins) FindClassByName(simpleName name.Name) descriptor.ClassDescriptor {
	return b.FindClassByNameIn(simpleName, b.core)
}

// ClassByNameIn returns the class simpleName declared in fragment. It panics
// if there is no such class.
func (b *Builtins) ClassByNameIn(simpleName name.Name, fragment descriptor.PackageFragment) descriptor.ClassDescriptor {
	cd := b.FindClassByNameIn(simpleName, fragment)
	if cd == nil {
		contract.FailAbout(contract.CodeMissingBuiltin, fragment.FqName().Child(simpleName), "built-in class %s is not found")
	}
	return cd
}

// FindClassByNameIn returns the class simpleName declared in fragment, or
// nil. It panics if the name denotes a classifier that is not a class.
func (b *Builtins) FindClassByNameIn(simpleName name.Name, fragment descriptor.PackageFragment) descriptor.ClassDescriptor {
	return classifierAsClass(fragment.MemberScope().ClassifierNamed(simpleName), fragment.FqName().Child(simpleName))
}

func classifierAsClass(c descriptor.Classifier, fq name.FqName) descriptor.ClassDescriptor {
	if c == nil {
		return nil
	}
	cd, ok := c.(descriptor.ClassDescriptor)
	if !ok {
		contract.FailAbout(contract.CodeWrongClassifierKind, fq, "must be a class descriptor %s, but was %v", c)
	}
	return cd
}

// ClassByFqName returns the built-in class fq, which may be nested, such as
// kotlin.collections.Map.Entry. It panics if there is no such class.
func (b *Builtins) ClassByFqName(fq name.FqName) descriptor.ClassDescriptor {
	cd := b.FindClassByFqName(fq)
	if cd == nil {
		contract.FailAbout(contract.CodeMissingBuiltin, fq, "can't find built-in class %s")
	}
	return cd
}

// FindClassByFqName returns the built-in class fq, or nil. The parent of fq
// is tried as a registry package first and then as an outer class.
func (b *Builtins) FindClassByFqName(fq name.FqName) descriptor.ClassDescriptor {
	if fq.IsRoot() {
		return nil
	}
	parent := fq.Parent()
	if f, ok := b.byPackage[parent]; ok {
		if cd := b.FindClassByNameIn(fq.ShortName(), f); cd != nil {
			return cd
		}
	}
	outer := b.FindClassByFqName(parent)
	if outer == nil {
		return nil
	}
	return classifierAsClass(outer.UnsubstitutedInnerClassesScope().ClassifierNamed(fq.ShortName()), fq)
}

func (b *Builtins) coreClass(fq name.FqName) descriptor.ClassDescriptor {
	return b.ClassByNameIn(fq.ShortName(), b.core)
}

func (b *Builtins) collectionsClass(fq name.FqName) descriptor.ClassDescriptor {
	return b.ClassByNameIn(fq.ShortName(), b.collections)
}

func (b *Builtins) annotationClass(fq name.FqName) descriptor.ClassDescriptor {
	return b.ClassByNameIn(fq.ShortName(), b.annotation)
}

// Any returns kotlin.Any.
func (b *Builtins) Any() descriptor.ClassDescriptor {
	return b.coreClass(Names.Any)
}

// Nothing returns kotlin.Nothing.
func (b *Builtins) Nothing() descriptor.ClassDescriptor {
	return b.coreClass(Names.Nothing)
}

// Byte returns kotlin.Byte.
func (b *Builtins) Byte() descriptor.ClassDescriptor {
	return b.PrimitiveClass(Byte)
}

// Short returns kotlin.Short.
func (b *Builtins) Short() descriptor.ClassDescriptor {
	return b.PrimitiveClass(Short)
}

// Int returns kotlin.Int.
func (b *Builtins) Int() descriptor.ClassDescriptor {
	return b.PrimitiveClass(Int)
}

// Long returns kotlin.Long.
func (b *Builtins) Long() descriptor.ClassDescriptor {
	return b.PrimitiveClass(Long)
}

// Float returns kotlin.Float.
func (b *Builtins) Float() descriptor.ClassDescriptor {
	return b.PrimitiveClass(Float)
}

// Double returns kotlin.Double.
func (b *Builtins) Double() descriptor.ClassDescriptor {
	return b.PrimitiveClass(Double)
}

// Char returns kotlin.Char.
func (b *Builtins) Char() descriptor.ClassDescriptor {
	return b.PrimitiveClass(Char)
}

// Boolean returns kotlin.Boolean.
func (b *Builtins) Boolean() descriptor.ClassDescriptor {
	return b.PrimitiveClass(Boolean)
}

// Array returns kotlin.Array.
func (b *Builtins) Array() descriptor.ClassDescriptor {
	return b.coreClass(Names.Array)
}

// Number returns kotlin.Number.
func (b *Builtins) Number() descriptor.ClassDescriptor {
	return b.coreClass(Names.Number)
}

// Unit returns kotlin.Unit.
func (b *Builtins) Unit() descriptor.ClassDescriptor {
	return b.coreClass(Names.Unit)
}

// Throwable returns kotlin.Throwable.
func (b *Builtins) Throwable() descriptor.ClassDescriptor {
	return b.coreClass(Names.Throwable)
}

// Cloneable returns kotlin.Cloneable.
func (b *Builtins) Cloneable() descriptor.ClassDescriptor {
	return b.coreClass(Names.Cloneable)
}

// StringClass returns kotlin.String.
func (b *Builtins) StringClass() descriptor.ClassDescriptor {
	return b.coreClass(Names.String)
}

// CharSequence returns kotlin.CharSequence.
func (b *Builtins) CharSequence() descriptor.ClassDescriptor {
	return b.coreClass(Names.CharSequence)
}

// Comparable returns kotlin.Comparable.
func (b *Builtins) Comparable() descriptor.ClassDescriptor {
	return b.coreClass(Names.Comparable)
}

// Enum returns kotlin.Enum.
func (b *Builtins) Enum() descriptor.ClassDescriptor {
	return b.coreClass(Names.Enum)
}

// Annotation returns kotlin.Annotation.
func (b *Builtins) Annotation() descriptor.ClassDescriptor {
	return b.coreClass(Names.Annotation)
}

// PrimitiveClass returns the class of primitive type p.
func (b *Builtins) PrimitiveClass(p PrimitiveType) descriptor.ClassDescriptor {
	return b.ClassByName(p.TypeName())
}

// PrimitiveArrayClass returns the array class of primitive type p, such as
// IntArray.
func (b *Builtins) PrimitiveArrayClass(p PrimitiveType) descriptor.ClassDescriptor {
	return b.ClassByName(p.ArrayTypeName())
}

// Function returns the function interface taking parameterCount parameters.
func (b *Builtins) Function(parameterCount int) descriptor.ClassDescriptor {
	return b.ClassByName(name.Identifier(FunctionName(parameterCount)))
}

// IntegralRanges returns CharRange, IntRange and LongRange.
func (b *Builtins) IntegralRanges() []descriptor.ClassDescriptor {
	return []descriptor.ClassDescriptor{
		b.ClassByNameIn(name.Identifier("CharRange"), b.ranges),
		b.ClassByNameIn(name.Identifier("IntRange"), b.ranges),
		b.ClassByNameIn(name.Identifier("LongRange"), b.ranges),
	}
}

// DeprecatedAnnotation returns the class of @Deprecated.
func (b *Builtins) DeprecatedAnnotation() descriptor.ClassDescriptor {
	return b.coreClass(Names.Deprecated)
}

// DeprecationLevelEnumEntry returns the entry level of DeprecationLevel,
// such as "WARNING", or nil.
func (b *Builtins) DeprecationLevelEnumEntry(level string) descriptor.ClassDescriptor {
	return enumEntry(b.coreClass(Names.DeprecationLevel), level)
}

// TargetAnnotation returns the class of @Target.
func (b *Builtins) TargetAnnotation() descriptor.ClassDescriptor {
	return b.annotationClass(Names.Target)
}

// RetentionAnnotation returns the class of @Retention.
func (b *Builtins) RetentionAnnotation() descriptor.ClassDescriptor {
	return b.annotationClass(Names.Retention)
}

// RepeatableAnnotation returns the class of @Repeatable.
func (b *Builtins) RepeatableAnnotation() descriptor.ClassDescriptor {
	return b.annotationClass(Names.Repeatable)
}

// MustBeDocumentedAnnotation returns the class of @MustBeDocumented.
func (b *Builtins) MustBeDocumentedAnnotation() descriptor.ClassDescriptor {
	return b.annotationClass(Names.MustBeDocumented)
}

// AnnotationTargetEnumEntry returns the entry target of AnnotationTarget,
// such as "CLASS", or nil.
func (b *Builtins) AnnotationTargetEnumEntry(target string) descriptor.ClassDescriptor {
	return enumEntry(b.annotationClass(Names.AnnotationTarget), target)
}

// AnnotationRetentionEnumEntry returns the entry retention of
// AnnotationRetention, such as "RUNTIME", or nil.
func (b *Builtins) AnnotationRetentionEnumEntry(retention string) descriptor.ClassDescriptor {
	return enumEntry(b.annotationClass(Names.AnnotationRetention), retention)
}

func enumEntry(enum descriptor.ClassDescriptor, entryName string) descriptor.ClassDescriptor {
	cd, _ := enum.UnsubstitutedInnerClassesScope().ClassifierNamed(name.Identifier(entryName)).(descriptor.ClassDescriptor)
	return cd
}

// Iterator returns kotlin.collections.Iterator.
func (b *Builtins) Iterator() descriptor.ClassDescriptor {
	return b.collectionsClass(Names.Iterator)
}

// Iterable returns kotlin.collections.Iterable.
func (b *Builtins) Iterable() descriptor.ClassDescriptor {
	return b.collectionsClass(Names.Iterable)
}

// Collection returns kotlin.collections.Collection.
func (b *Builtins) Collection() descriptor.ClassDescriptor {
	return b.collectionsClass(Names.Collection)
}

// List returns kotlin.collections.List.
func (b *Builtins) List() descriptor.ClassDescriptor {
	return b.collectionsClass(Names.List)
}

// Set returns kotlin.collections.Set.
func (b *Builtins) Set() descriptor.ClassDescriptor {
	return b.collectionsClass(Names.Set)
}

// Map returns kotlin.collections.Map.
func (b *Builtins) Map() descriptor.ClassDescriptor {
	return b.collectionsClass(Names.Map)
}

// ListIterator returns kotlin.collections.ListIterator.
func (b *Builtins) ListIterator() descriptor.ClassDescriptor {
	return b.collectionsClass(Names.ListIterator)
}

// MutableIterator returns kotlin.collections.MutableIterator.
func (b *Builtins) MutableIterator() descriptor.ClassDescriptor {
	return b.collectionsClass(Names.MutableIterator)
}

// MutableIterable returns kotlin.collections.MutableIterable.
func (b *Builtins) MutableIterable() descriptor.ClassDescriptor {
	return b.collectionsClass(Names.MutableIterable)
}

// MutableCollection returns kotlin.collections.MutableCollection.
func (b *Builtins) MutableCollection() descriptor.ClassDescriptor {
	return b.collectionsClass(Names.MutableCollection)
}

// MutableList returns kotlin.collections.MutableList.
func (b *Builtins) MutableList() descriptor.ClassDescriptor {
	return b.collectionsClass(Names.MutableList)
}

// MutableListIterator returns kotlin.collections.MutableListIterator.
func (b *Builtins) MutableListIterator() descriptor.ClassDescriptor {
	return b.collectionsClass(Names.MutableListIterator)
}

// MutableSet returns kotlin.collections.MutableSet.
func (b *Builtins) MutableSet() descriptor.ClassDescriptor {
	return b.collectionsClass(Names.MutableSet)
}

// MutableMap returns kotlin.collections.MutableMap.
func (b *Builtins) MutableMap() descriptor.ClassDescriptor {
	return b.collectionsClass(Names.MutableMap)
}

// MapEntry returns Map.Entry.
func (b *Builtins) MapEntry() descriptor.ClassDescriptor {
	return innerClass(b.Map(), Names.MapEntry)
}

// MutableMapEntry returns MutableMap.MutableEntry.
func (b *Builtins) MutableMapEntry() descriptor.ClassDescriptor {
	return innerClass(b.MutableMap(), Names.MutableMapEntry)
}

func innerClass(outer descriptor.ClassDescriptor, fq name.FqName) descriptor.ClassDescriptor {
	cd := classifierAsClass(outer.UnsubstitutedInnerClassesScope().ClassifierNamed(fq.ShortName()), fq)
	if cd == nil {
		contract.FailAbout(contract.CodeMissingBuiltin, fq, "can't find %s")
	}
	return cd
}

// NothingType returns the type Nothing.
func (b *Builtins) NothingType() *descriptor.Type {
	return b.Nothing().DefaultType()
}

// NullableNothingType returns the type Nothing?.
func (b *Builtins) NullableNothingType() *descriptor.Type {
	return b.NothingType().MakeNullable()
}

// AnyType returns the type Any.
func (b *Builtins) AnyType() *descriptor.Type {
	return b.Any().DefaultType()
}

// NullableAnyType returns the type Any?.
func (b *Builtins) NullableAnyType() *descriptor.Type {
	return b.AnyType().MakeNullable()
}

// UnitType returns the type Unit.
func (b *Builtins) UnitType() *descriptor.Type {
	return b.Unit().DefaultType()
}

// StringType returns the type String.
func (b *Builtins) StringType() *descriptor.Type {
	return b.StringClass().DefaultType()
}

// IterableType returns the type Iterable<T> of the unsubstituted class.
func (b *Builtins) IterableType() *descriptor.Type {
	return b.Iterable().DefaultType()
}

// AnnotationType returns the type Annotation.
func (b *Builtins) AnnotationType() *descriptor.Type {
	return b.Annotation().DefaultType()
}

// DefaultBound returns Any?, the bound of an unbounded type parameter.
func (b *Builtins) DefaultBound() *descriptor.Type {
	return b.NullableAnyType()
}

// ByteType returns the type Byte.
func (b *Builtins) ByteType() *descriptor.Type {
	return b.PrimitiveTypeOf(Byte)
}

// ShortType returns the type Short.
func (b *Builtins) ShortType() *descriptor.Type {
	return b.PrimitiveTypeOf(Short)
}

// IntType returns the type Int.
func (b *Builtins) IntType() *descriptor.Type {
	return b.PrimitiveTypeOf(Int)
}

// LongType returns the type Long.
func (b *Builtins) LongType() *descriptor.Type {
	return b.PrimitiveTypeOf(Long)
}

// FloatType returns the type Float.
func (b *Builtins) FloatType() *descriptor.Type {
	return b.PrimitiveTypeOf(Float)
}

// DoubleType returns the type Double.
func (b *Builtins) DoubleType() *descriptor.Type {
	return b.PrimitiveTypeOf(Double)
}

// CharType returns the type Char.
func (b *Builtins) CharType() *descriptor.Type {
	return b.PrimitiveTypeOf(Char)
}

// BooleanType returns the type Boolean.
func (b *Builtins) BooleanType() *descriptor.Type {
	return b.PrimitiveTypeOf(Boolean)
}
