package descriptor

import (
	"github.com/broady/builtins/name"
	"github.com/broady/builtins/storage"
)

// substitutedClass is a view of a class whose types are rewritten by a
// substitutor. Structural queries go to the original.
type substitutedClass struct {
	original     *Class
	substitutor  *TypeSubstitutor
	defaultType  *storage.Lazy[*Type]
	supertypes   *storage.Lazy[[]*Type]
	scope        *storage.Lazy[MemberScope]
	constructors *storage.Lazy[[]*Constructor]
	receiver     *storage.Lazy[*ReceiverParameter]
}

func newSubstitutedClass(original *Class, s *TypeSubstitutor) *substitutedClass {
	v := &substitutedClass{original: original, substitutor: s}
	sm := original.sm
	v.defaultType = storage.NewLazy(sm, func() *Type {
		return s.Substitute(original.DefaultType())
	})
	v.supertypes = storage.NewLazy(sm, func() []*Type {
		orig := original.Supertypes()
		out := make([]*Type, len(orig))
		for i, t := range orig {
			out[i] = s.Substitute(t)
		}
		return out
	})
	v.scope = storage.NewLazy(sm, func() MemberScope {
		return NewSubstitutingScope(original.UnsubstitutedMemberScope(), s)
	})
	v.constructors = storage.NewLazy(sm, func() []*Constructor {
		orig := original.Constructors()
		out := make([]*Constructor, len(orig))
		for i, ctor := range orig {
			out[i] = ctor.substitute(v, s)
		}
		return out
	})
	v.receiver = storage.NewLazy(sm, func() *ReceiverParameter {
		return NewReceiverParameter(v, v.DefaultType())
	})
	return v
}

func (v *substitutedClass) Name() name.Name                    { return v.original.Name() }
func (v *substitutedClass) ContainingDeclaration() Declaration { return v.original.ContainingDeclaration() }
func (v *substitutedClass) Annotations() *Annotations          { return v.original.Annotations() }
func (v *substitutedClass) Kind() ClassKind                    { return v.original.Kind() }
func (v *substitutedClass) Modality() Modality                 { return v.original.Modality() }
func (v *substitutedClass) Visibility() Visibility             { return v.original.Visibility() }
func (v *substitutedClass) IsInner() bool                      { return v.original.IsInner() }
func (v *substitutedClass) IsData() bool                       { return v.original.IsData() }
func (v *substitutedClass) IsCompanionObject() bool            { return v.original.IsCompanionObject() }
func (v *substitutedClass) TypeParameters() []*TypeParameter   { return v.original.TypeParameters() }
func (v *substitutedClass) Supertypes() []*Type                { return v.supertypes.Get() }
func (v *substitutedClass) DefaultType() *Type                 { return v.defaultType.Get() }

func (v *substitutedClass) MemberScope(args []TypeProjection) MemberScope {
	return NewSubstitutingScope(v.original.MemberScope(args), v.substitutor)
}

func (v *substitutedClass) MemberScopeFor(sub TypeSubstitution) MemberScope {
	return NewSubstitutingScope(v.original.MemberScopeFor(sub), v.substitutor)
}

func (v *substitutedClass) UnsubstitutedMemberScope() MemberScope {
	return v.scope.Get()
}

func (v *substitutedClass) UnsubstitutedInnerClassesScope() MemberScope {
	return v.original.UnsubstitutedInnerClassesScope()
}

func (v *substitutedClass) StaticScope() MemberScope {
	return v.original.StaticScope()
}

func (v *substitutedClass) Constructors() []*Constructor {
	return v.constructors.Get()
}

func (v *substitutedClass) UnsubstitutedPrimaryConstructor() *Constructor {
	return primaryOf(v.Constructors())
}

func (v *substitutedClass) CompanionObject() ClassDescriptor {
	return v.original.CompanionObject()
}

func (v *substitutedClass) ThisAsReceiverParameter() *ReceiverParameter {
	return v.receiver.Get()
}

// Substitute composes s with the view's own substitution over the same
// original class.
func (v *substitutedClass) Substitute(s *TypeSubstitutor) ClassDescriptor {
	if s.IsIdentity() {
		return v
	}
	return newSubstitutedClass(v.original, v.substitutor.Compose(s))
}

func (v *substitutedClass) Original() ClassDescriptor { return v.original }

func (v *substitutedClass) String() string {
	return v.original.String() + " substituted by " + v.substitutor.String()
}
