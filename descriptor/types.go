package descriptor

import (
	"strings"

	"github.com/broady/builtins/contract"
	"github.com/broady/builtins/storage"
)

// Type is a classifier applied to type arguments, with a nullability flag.
// Types are immutable; the argument slice must not be modified.
type Type struct {
	classifier Classifier
	arguments  []TypeProjection
	nullable   bool
	scope      *storage.Lazy[MemberScope]
}

// NewType returns classifier applied to args. Its member scope is derived
// on first use: for a class, the class's member scope specialized to args.
func NewType(classifier Classifier, args []TypeProjection, nullable bool) *Type {
	t := &Type{
		classifier: classifier,
		arguments:  append([]TypeProjection(nil), args...),
		nullable:   nullable,
	}
	t.scope = storage.NewLazy(storage.LockBased(), t.deriveScope)
	return t
}

// newTypeWithScope returns a type backed by an explicit scope source. The
// scope is not read until MemberScope is called.
func newTypeWithScope(classifier Classifier, args []TypeProjection, nullable bool, scope func() MemberScope) *Type {
	return &Type{
		classifier: classifier,
		arguments:  args,
		nullable:   nullable,
		scope:      storage.NewLazy(storage.LockBased(), scope),
	}
}

func (t *Type) deriveScope() MemberScope {
	switch c := t.classifier.(type) {
	case ClassDescriptor:
		return c.MemberScope(t.arguments)
	case *TypeParameter:
		if bounds := c.UpperBounds(); len(bounds) > 0 {
			return bounds[0].MemberScope()
		}
	}
	return EmptyScope
}

// Classifier returns the head of the type.
func (t *Type) Classifier() Classifier {
	return t.classifier
}

// Class returns the class at the head of the type, or nil if the head is a
// type parameter.
func (t *Type) Class() ClassDescriptor {
	cd, _ := t.classifier.(ClassDescriptor)
	return cd
}

// Arguments returns the type arguments.
func (t *Type) Arguments() []TypeProjection {
	return t.arguments
}

// IsMarkedNullable reports whether the type is written with '?'.
func (t *Type) IsMarkedNullable() bool {
	return t.nullable
}

// MemberScope returns the members visible on values of the type.
func (t *Type) MemberScope() MemberScope {
	return t.scope.Get()
}

// MakeNullable returns the nullable form of t.
func (t *Type) MakeNullable() *Type {
	return t.withNullability(true)
}

// MakeNotNullable returns the non-nullable form of t.
func (t *Type) MakeNotNullable() *Type {
	return t.withNullability(false)
}

func (t *Type) withNullability(nullable bool) *Type {
	if t.nullable == nullable {
		return t
	}
	c := *t
	c.nullable = nullable
	return &c
}

// Equal reports whether t and o are structurally the same type.
func (t *Type) Equal(o *Type) bool {
	if t == o {
		return true
	}
	if t == nil || o == nil {
		return false
	}
	if t.nullable != o.nullable || !SameClassifier(t.classifier, o.classifier) || len(t.arguments) != len(o.arguments) {
		return false
	}
	for i := range t.arguments {
		if !t.arguments[i].Equal(o.arguments[i]) {
			return false
		}
	}
	return true
}

// String renders the type as kotlin.collections.List<kotlin.String>?.
func (t *Type) String() string {
	var b strings.Builder
	t.writeTo(&b)
	return b.String()
}

func (t *Type) writeTo(b *strings.Builder) {
	if tp, ok := t.classifier.(*TypeParameter); ok {
		b.WriteString(tp.Name().String())
	} else {
		b.WriteString(FqNameOf(t.classifier).String())
	}
	if len(t.arguments) > 0 {
		b.WriteByte('<')
		for i, arg := range t.arguments {
			if i > 0 {
				b.WriteString(", ")
			}
			arg.writeTo(b)
		}
		b.WriteByte('>')
	}
	if t.nullable {
		b.WriteByte('?')
	}
}

// TypeProjection is a type argument: a type with use-site variance, or a
// star projection. A star still has a type, the upper bound it projects.
type TypeProjection struct {
	Variance Variance
	Type     *Type
	star     bool
	param    *TypeParameter // projected parameter of a star with no Type
}

// NewProjection returns the projection of t with variance v.
func NewProjection(v Variance, t *Type) TypeProjection {
	return TypeProjection{Variance: v, Type: t}
}

// StarProjection returns '*' projecting the known bound. It panics if
// bound is nil; use StarProjectionOf when the bound is not resolved yet.
func StarProjection(bound *Type) TypeProjection {
	contract.Check(bound != nil, contract.CodeInvalidArgument, "star projection without a bound type")
	return TypeProjection{Variance: Out, Type: bound, star: true}
}

// StarProjectionOf returns '*' in the position of tp. Its type is tp's star
// type, read on first use of ProjectedType.
func StarProjectionOf(tp *TypeParameter) TypeProjection {
	contract.Check(tp != nil, contract.CodeInvalidArgument, "star projection of a nil type parameter")
	return TypeProjection{Variance: Out, star: true, param: tp}
}

// ProjectedType returns the type read through p: the projected type, or
// for a star the bound it stands for.
func (p TypeProjection) ProjectedType() *Type {
	if p.star && p.Type == nil && p.param != nil {
		return p.param.StarType()
	}
	return p.Type
}

// IsStar reports whether p is a star projection.
func (p TypeProjection) IsStar() bool {
	return p.star
}

// Equal reports whether p and o are the same projection.
func (p TypeProjection) Equal(o TypeProjection) bool {
	if p.star || o.star {
		return p.star == o.star
	}
	return p.Variance == o.Variance && p.Type.Equal(o.Type)
}

func (p TypeProjection) String() string {
	var b strings.Builder
	p.writeTo(&b)
	return b.String()
}

func (p TypeProjection) writeTo(b *strings.Builder) {
	if p.star {
		b.WriteByte('*')
		return
	}
	if p.Variance != Invariant {
		b.WriteString(p.Variance.String())
		b.WriteByte(' ')
	}
	p.Type.writeTo(b)
}
