package descriptor

import (
	"github.com/broady/builtins/contract"
	"github.com/broady/builtins/name"
	"github.com/broady/builtins/storage"
)

// TypeParameterSpec declares one type parameter of a class or function.
type TypeParameterSpec struct {
	Name     name.Name
	Variance Variance
	Reified  bool

	// UpperBounds computes the declared bounds on first use. It may refer
	// to the parameter itself (E : Enum<E>). Nil means unbounded.
	UpperBounds func(tp *TypeParameter) []*Type
}

// TypeParameter is a generic parameter of a class or function.
type TypeParameter struct {
	container   Declaration
	name        name.Name
	index       int
	variance    Variance
	reified     bool
	upperBounds *storage.Lazy[[]*Type]
	starType    *storage.Lazy[*Type]
	defaultType *Type
}

// NewTypeParameters creates the type parameters of container from specs.
func NewTypeParameters(sm storage.Manager, container Declaration, specs []TypeParameterSpec) []*TypeParameter {
	if len(specs) == 0 {
		return nil
	}
	tps := make([]*TypeParameter, len(specs))
	for i, spec := range specs {
		tps[i] = newTypeParameter(sm, container, i, spec)
	}
	return tps
}

func newTypeParameter(sm storage.Manager, container Declaration, index int, spec TypeParameterSpec) *TypeParameter {
	tp := &TypeParameter{
		container: container,
		name:      spec.Name,
		index:     index,
		variance:  spec.Variance,
		reified:   spec.Reified,
	}
	tp.defaultType = NewType(tp, nil, false)
	tp.upperBounds = storage.NewLazy(sm, func() []*Type {
		if spec.UpperBounds == nil {
			return nil
		}
		return spec.UpperBounds(tp)
	}).WithLabel(func() string { return "upper bounds of " + tp.String() })
	tp.starType = storage.NewLazy(sm, tp.computeStarType).
		WithLabel(func() string { return "star type of " + tp.String() })
	return tp
}

// computeStarType projects the first bound with every parameter of the
// container replaced by '*', so E : Enum<E> yields Enum<*>.
func (tp *TypeParameter) computeStarType() *Type {
	bounds := tp.UpperBounds()
	if len(bounds) == 0 {
		contract.FailAbout(contract.CodeMissingBuiltin, tp, "type parameter %s has no bound for '*'")
	}
	siblings := []*TypeParameter{tp}
	if g, ok := tp.container.(interface{ TypeParameters() []*TypeParameter }); ok {
		siblings = g.TypeParameters()
	}
	stars := make([]TypeProjection, len(siblings))
	for i, p := range siblings {
		stars[i] = StarProjectionOf(p)
	}
	return NewSubstitutor(NewSubstitution(siblings, stars)).Substitute(bounds[0])
}

func (tp *TypeParameter) Name() name.Name                    { return tp.name }
func (tp *TypeParameter) ContainingDeclaration() Declaration { return tp.container }
func (tp *TypeParameter) Annotations() *Annotations          { return nil }

// Index returns the position of the parameter in its declaration.
func (tp *TypeParameter) Index() int { return tp.index }

func (tp *TypeParameter) Variance() Variance { return tp.variance }
func (tp *TypeParameter) IsReified() bool    { return tp.reified }

// UpperBounds returns the declared bounds; empty means unbounded.
func (tp *TypeParameter) UpperBounds() []*Type {
	return tp.upperBounds.Get()
}

// StarType returns the type that '*' stands for in the position of tp: the
// first bound, with the parameters of tp's declaration star-projected. It
// panics with contract.CodeMissingBuiltin if tp has no bound.
func (tp *TypeParameter) StarType() *Type {
	return tp.starType.Get()
}

// DefaultType returns the type consisting of the parameter alone.
func (tp *TypeParameter) DefaultType() *Type {
	return tp.defaultType
}

func (tp *TypeParameter) String() string {
	return FqNameOf(tp).String()
}

// typeParameterArguments returns each parameter as an invariant argument.
func typeParameterArguments(tps []*TypeParameter) []TypeProjection {
	if len(tps) == 0 {
		return nil
	}
	args := make([]TypeProjection, len(tps))
	for i, tp := range tps {
		args[i] = NewProjection(Invariant, tp.DefaultType())
	}
	return args
}
