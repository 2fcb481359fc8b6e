// Package descriptor models the declarations of a statically typed, generic,
// nullable-aware object language: classes, their members, the types that
// refer to them, and the substitution of type arguments for type parameters.
//
// Descriptor graphs are self-referential (a class's default type is backed
// by its member scope, which may mention the class again), so every derived
// property is computed lazily and cached once through the storage package.
//
// Class descriptors have two lifecycle phases. NewClass creates a declared
// class whose identity, kind, type parameters and supertypes are known;
// Initialize attaches the member scope and constructors exactly once. The
// component that constructs a class is responsible for initializing it
// before handing it out.
package descriptor

import (
	"github.com/broady/builtins/name"
)

// Declaration is implemented by every named element of a descriptor graph.
type Declaration interface {
	// Name returns the simple name of the declaration.
	Name() name.Name

	// ContainingDeclaration returns the enclosing declaration, or nil for a
	// module.
	ContainingDeclaration() Declaration

	// Annotations returns the annotations written on the declaration.
	// The result may be nil, which is an empty list.
	Annotations() *Annotations
}

// Classifier is a declaration that can be the head of a type: a class or a
// type parameter.
type Classifier interface {
	Declaration

	// DefaultType returns the type formed by applying the classifier to its
	// own type parameters, e.g. List<E> for List.
	DefaultType() *Type
}

// ClassDescriptor describes a class, interface, object, enum class, enum
// entry or annotation class.
//
// It is implemented by *Class and by the views returned from Substitute.
type ClassDescriptor interface {
	Classifier

	Kind() ClassKind
	Modality() Modality
	Visibility() Visibility
	IsInner() bool
	IsData() bool
	IsCompanionObject() bool

	// TypeParameters returns the declared type parameters in order.
	TypeParameters() []*TypeParameter

	// Supertypes returns the direct supertypes.
	Supertypes() []*Type

	// MemberScope returns the member scope specialized to args.
	// It panics if len(args) differs from the number of type parameters.
	// An empty args (or one that maps every parameter to itself) yields the
	// unsubstituted scope.
	MemberScope(args []TypeProjection) MemberScope

	// MemberScopeFor returns the member scope specialized by sub.
	MemberScopeFor(sub TypeSubstitution) MemberScope

	UnsubstitutedMemberScope() MemberScope

	// UnsubstitutedInnerClassesScope exposes only the nested classifiers of
	// the member scope.
	UnsubstitutedInnerClassesScope() MemberScope

	StaticScope() MemberScope
	Constructors() []*Constructor

	// UnsubstitutedPrimaryConstructor returns the primary constructor, or
	// nil if the class has none.
	UnsubstitutedPrimaryConstructor() *Constructor

	// CompanionObject returns the companion object, or nil.
	CompanionObject() ClassDescriptor

	// ThisAsReceiverParameter returns the implicit receiver of members.
	ThisAsReceiverParameter() *ReceiverParameter

	// Substitute returns a view of the class with types rewritten by s, or
	// the receiver itself if s is the identity.
	Substitute(s *TypeSubstitutor) ClassDescriptor

	// Original returns the unsubstituted class; for a *Class, itself.
	Original() ClassDescriptor

	String() string
}

// FqNameOf returns the qualified name of d, built by walking its containing
// declarations up to the enclosing package.
func FqNameOf(d Declaration) name.FqName {
	switch d := d.(type) {
	case nil:
		return name.Root
	case PackageFragment:
		return d.FqName()
	case *Module:
		return name.Root
	}
	return FqNameOf(d.ContainingDeclaration()).Child(d.Name())
}

// OriginalOf returns the declaration d was substituted from, or d itself.
func OriginalOf(d Declaration) Declaration {
	switch d := d.(type) {
	case ClassDescriptor:
		return d.Original()
	case *Function:
		return d.Original()
	case *Constructor:
		return d.Original()
	case *Property:
		return d.Original()
	case *PropertyAccessor:
		return d.Original()
	}
	return d
}

// SameClassifier reports whether a and b denote the same classifier,
// looking through substituted views.
func SameClassifier(a, b Classifier) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a == b || OriginalOf(a) == OriginalOf(b)
}
