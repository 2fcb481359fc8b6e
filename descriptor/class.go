package descriptor

import (
	"sync/atomic"

	"github.com/broady/builtins/contract"
	"github.com/broady/builtins/name"
	"github.com/broady/builtins/storage"
)

// ClassHeader is everything known about a class in its declared phase.
type ClassHeader struct {
	Name              name.Name
	Kind              ClassKind
	Modality          Modality
	Visibility        Visibility
	IsInner           bool
	IsData            bool
	IsCompanionObject bool
	Annotations       *Annotations
	TypeParameters    []TypeParameterSpec

	// Supertypes computes the direct supertypes on first use. It may refer
	// to the class itself (Enum<E> : Comparable<E>). Nil means none.
	Supertypes func(c *Class) []*Type
}

// ClassMembers is attached to a class by Initialize.
type ClassMembers struct {
	// Scope is the unsubstituted member scope. Required.
	Scope MemberScope

	// StaticScope holds static members. Nil means empty.
	StaticScope MemberScope

	// Constructors computes the constructors on first use. Nil means none.
	// At most one may be primary.
	Constructors func() []*Constructor

	// CompanionObject resolves the companion object on first use. Nil or a
	// nil result means none.
	CompanionObject func() ClassDescriptor
}

// Class is an unsubstituted class descriptor.
type Class struct {
	sm          storage.Manager
	container   Declaration
	header      ClassHeader
	typeParams  []*TypeParameter
	supertypes  *storage.Lazy[[]*Type]
	defaultType *storage.Lazy[*Type]
	innerScope  *storage.Lazy[MemberScope]
	receiver    *storage.Lazy[*ReceiverParameter]
	members     atomic.Pointer[classMembers]
}

type classMembers struct {
	scope        MemberScope
	static       MemberScope
	constructors *storage.Lazy[[]*Constructor]
	companion    *storage.Lazy[ClassDescriptor]
}

// NewClass declares a class inside container. The class must be
// initialized before its members are queried.
func NewClass(sm storage.Manager, container Declaration, header ClassHeader) *Class {
	c := &Class{
		sm:        sm,
		container: container,
		header:    header,
	}
	c.typeParams = NewTypeParameters(sm, c, header.TypeParameters)
	c.supertypes = storage.NewLazy(sm, func() []*Type {
		if header.Supertypes == nil {
			return nil
		}
		return header.Supertypes(c)
	}).WithLabel(c.label("supertypes"))
	c.defaultType = storage.NewLazy(sm, func() *Type {
		return newTypeWithScope(c, typeParameterArguments(c.typeParams), false, c.UnsubstitutedMemberScope)
	}).WithLabel(c.label("default type"))
	c.innerScope = storage.NewLazy(sm, func() MemberScope {
		return newInnerClassesScope(c.UnsubstitutedMemberScope())
	}).WithLabel(c.label("inner classes scope"))
	c.receiver = storage.NewLazy(sm, func() *ReceiverParameter {
		return NewReceiverParameter(c, c.DefaultType())
	}).WithLabel(c.label("receiver"))
	return c
}

func (c *Class) label(what string) func() string {
	return func() string { return what + " of " + c.String() }
}

// Initialize attaches the members of the class. It panics if called twice
// or without a scope.
func (c *Class) Initialize(m ClassMembers) {
	contract.Check(m.Scope != nil, contract.CodeUninitialized, "%s initialized without a member scope", c)
	state := &classMembers{
		scope:  m.Scope,
		static: m.StaticScope,
		constructors: storage.NewLazy(c.sm, func() []*Constructor {
			if m.Constructors == nil {
				return nil
			}
			ctors := m.Constructors()
			primaries := 0
			for _, ctor := range ctors {
				if ctor.IsPrimary() {
					primaries++
				}
			}
			contract.Check(primaries <= 1, contract.CodeInvalidMetadata, "%s has %d primary constructors", c, primaries)
			return ctors
		}).WithLabel(c.label("constructors")),
		companion: storage.NewLazy(c.sm, func() ClassDescriptor {
			if m.CompanionObject == nil {
				return nil
			}
			return m.CompanionObject()
		}).WithLabel(c.label("companion object")),
	}
	if state.static == nil {
		state.static = EmptyScope
	}
	if !c.members.CompareAndSwap(nil, state) {
		contract.Fail(contract.CodeAlreadyInitialized, "%s is already initialized", c)
	}
}

// IsInitialized reports whether Initialize has been called.
func (c *Class) IsInitialized() bool {
	return c.members.Load() != nil
}

func (c *Class) initialized(what string) *classMembers {
	m := c.members.Load()
	if m == nil {
		contract.Fail(contract.CodeUninitialized, "%s of %s queried before initialization", what, c)
	}
	return m
}

func (c *Class) Name() name.Name                    { return c.header.Name }
func (c *Class) ContainingDeclaration() Declaration { return c.container }
func (c *Class) Annotations() *Annotations          { return c.header.Annotations }
func (c *Class) Kind() ClassKind                    { return c.header.Kind }
func (c *Class) Modality() Modality                 { return c.header.Modality }
func (c *Class) Visibility() Visibility             { return c.header.Visibility }
func (c *Class) IsInner() bool                      { return c.header.IsInner }
func (c *Class) IsData() bool                       { return c.header.IsData }
func (c *Class) IsCompanionObject() bool            { return c.header.IsCompanionObject }
func (c *Class) TypeParameters() []*TypeParameter   { return c.typeParams }
func (c *Class) Supertypes() []*Type                { return c.supertypes.Get() }

// DefaultType is available in the declared phase; its member scope is read
// only when requested.
func (c *Class) DefaultType() *Type {
	return c.defaultType.Get()
}

func (c *Class) MemberScope(args []TypeProjection) MemberScope {
	contract.Check(len(args) == len(c.typeParams), contract.CodeArgumentCount,
		"%s expects %d type arguments, got %d", c, len(c.typeParams), len(args))
	if len(args) == 0 {
		return c.UnsubstitutedMemberScope()
	}
	return c.MemberScopeFor(NewSubstitution(c.typeParams, args))
}

func (c *Class) MemberScopeFor(sub TypeSubstitution) MemberScope {
	scope := c.UnsubstitutedMemberScope()
	if sub.IsIdentity() {
		return scope
	}
	return NewSubstitutingScope(scope, NewSubstitutor(sub))
}

func (c *Class) UnsubstitutedMemberScope() MemberScope {
	return c.initialized("member scope").scope
}

func (c *Class) UnsubstitutedInnerClassesScope() MemberScope {
	return c.innerScope.Get()
}

func (c *Class) StaticScope() MemberScope {
	return c.initialized("static scope").static
}

func (c *Class) Constructors() []*Constructor {
	return c.initialized("constructors").constructors.Get()
}

func (c *Class) UnsubstitutedPrimaryConstructor() *Constructor {
	return primaryOf(c.Constructors())
}

func (c *Class) CompanionObject() ClassDescriptor {
	return c.initialized("companion object").companion.Get()
}

func (c *Class) ThisAsReceiverParameter() *ReceiverParameter {
	return c.receiver.Get()
}

func (c *Class) Substitute(s *TypeSubstitutor) ClassDescriptor {
	if s.IsIdentity() {
		return c
	}
	return newSubstitutedClass(c, s)
}

func (c *Class) Original() ClassDescriptor { return c }

func (c *Class) String() string {
	return c.header.Kind.String() + " " + FqNameOf(c).String()
}

func primaryOf(ctors []*Constructor) *Constructor {
	for _, ctor := range ctors {
		if ctor.IsPrimary() {
			return ctor
		}
	}
	return nil
}
