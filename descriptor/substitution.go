package descriptor

import (
	"slices"
	"strings"

	"github.com/broady/builtins/contract"
)

// TypeSubstitution maps type parameters to the projections that replace
// them. The zero value is empty.
type TypeSubstitution struct {
	entries map[*TypeParameter]TypeProjection
}

// NewSubstitution maps params[i] to args[i]. It panics if the lengths differ.
func NewSubstitution(params []*TypeParameter, args []TypeProjection) TypeSubstitution {
	contract.Check(len(params) == len(args), contract.CodeArgumentCount,
		"substitution of %d type parameters with %d arguments", len(params), len(args))
	if len(params) == 0 {
		return TypeSubstitution{}
	}
	entries := make(map[*TypeParameter]TypeProjection, len(params))
	for i, p := range params {
		entries[p] = args[i]
	}
	return TypeSubstitution{entries: entries}
}

// Get returns the replacement of p.
func (s TypeSubstitution) Get(p *TypeParameter) (TypeProjection, bool) {
	proj, ok := s.entries[p]
	return proj, ok
}

// Len returns the number of mapped parameters.
func (s TypeSubstitution) Len() int {
	return len(s.entries)
}

// IsEmpty reports whether s maps nothing.
func (s TypeSubstitution) IsEmpty() bool {
	return len(s.entries) == 0
}

// IsIdentity reports whether s is empty or maps every parameter to its own
// non-null default type, invariantly.
func (s TypeSubstitution) IsIdentity() bool {
	for p, proj := range s.entries {
		if proj.star || proj.Variance != Invariant || proj.Type == nil {
			return false
		}
		if proj.Type.nullable || proj.Type.classifier != Classifier(p) {
			return false
		}
	}
	return true
}

// TypeSubstitutor rewrites types by replacing type parameters.
type TypeSubstitutor struct {
	sub TypeSubstitution
}

// EmptySubstitutor rewrites nothing.
var EmptySubstitutor = &TypeSubstitutor{}

// NewSubstitutor returns a substitutor applying sub.
func NewSubstitutor(sub TypeSubstitution) *TypeSubstitutor {
	if sub.IsEmpty() {
		return EmptySubstitutor
	}
	return &TypeSubstitutor{sub: sub}
}

// Substitution returns the underlying substitution.
func (s *TypeSubstitutor) Substitution() TypeSubstitution {
	return s.sub
}

// IsEmpty reports whether s maps nothing.
func (s *TypeSubstitutor) IsEmpty() bool {
	return s == nil || s.sub.IsEmpty()
}

// IsIdentity reports whether s leaves every type unchanged.
func (s *TypeSubstitutor) IsIdentity() bool {
	return s == nil || s.sub.IsIdentity()
}

// Substitute returns t with every mapped type parameter replaced. A nullable
// occurrence T? stays nullable after replacement. A parameter mapped to '*'
// becomes the star's projected type. Unchanged types are returned as is.
func (s *TypeSubstitutor) Substitute(t *Type) *Type {
	if t == nil || s.IsIdentity() {
		return t
	}
	if tp, ok := t.classifier.(*TypeParameter); ok {
		proj, ok := s.sub.Get(tp)
		if !ok {
			return t
		}
		if proj.star {
			st := proj.ProjectedType()
			return st.withNullability(st.nullable || t.nullable)
		}
		if t.nullable {
			return proj.Type.MakeNullable()
		}
		return proj.Type
	}
	if len(t.arguments) == 0 {
		return t
	}
	var positions []*TypeParameter
	if cd, ok := t.classifier.(ClassDescriptor); ok && len(cd.TypeParameters()) == len(t.arguments) {
		positions = cd.TypeParameters()
	}
	var args []TypeProjection
	for i, arg := range t.arguments {
		var position *TypeParameter
		if positions != nil {
			position = positions[i]
		}
		sub := s.substituteArgument(arg, position)
		if args == nil && !sub.sameAs(arg) {
			args = make([]TypeProjection, i, len(t.arguments))
			copy(args, t.arguments)
		}
		if args != nil {
			args = append(args, sub)
		}
	}
	if args == nil {
		return t
	}
	return NewType(t.classifier, args, t.nullable)
}

// SubstituteProjection rewrites a type argument. An invariant use takes the
// replacement's variance; conflicting in/out variances collapse to '*',
// which projects the replaced parameter.
func (s *TypeSubstitutor) SubstituteProjection(p TypeProjection) TypeProjection {
	return s.substituteArgument(p, nil)
}

// substituteArgument is SubstituteProjection for an argument in the
// position of parameter position, which a collapsed '*' projects when known.
func (s *TypeSubstitutor) substituteArgument(p TypeProjection, position *TypeParameter) TypeProjection {
	if p.star || s.IsIdentity() {
		return p
	}
	if tp, ok := p.Type.classifier.(*TypeParameter); ok {
		repl, ok := s.sub.Get(tp)
		if !ok {
			return p
		}
		if repl.star {
			return repl
		}
		replType := repl.Type
		if p.Type.nullable {
			replType = replType.MakeNullable()
		}
		switch {
		case p.Variance == Invariant:
			return NewProjection(repl.Variance, replType)
		case repl.Variance == Invariant || repl.Variance == p.Variance:
			return NewProjection(p.Variance, replType)
		default:
			if position != nil {
				return StarProjectionOf(position)
			}
			return StarProjectionOf(tp)
		}
	}
	return NewProjection(p.Variance, s.Substitute(p.Type))
}

func (p TypeProjection) sameAs(o TypeProjection) bool {
	return p.star == o.star && p.Variance == o.Variance && p.Type == o.Type && p.param == o.param
}

// Compose returns a substitutor equivalent to applying s and then next.
func (s *TypeSubstitutor) Compose(next *TypeSubstitutor) *TypeSubstitutor {
	if next.IsIdentity() {
		return s
	}
	if s.IsEmpty() {
		return next
	}
	entries := make(map[*TypeParameter]TypeProjection, s.sub.Len()+next.sub.Len())
	for p, proj := range s.sub.entries {
		entries[p] = next.SubstituteProjection(proj)
	}
	for p, proj := range next.sub.entries {
		if _, ok := entries[p]; !ok {
			entries[p] = proj
		}
	}
	return &TypeSubstitutor{sub: TypeSubstitution{entries: entries}}
}

func (s *TypeSubstitutor) String() string {
	if s.IsEmpty() {
		return "{}"
	}
	parts := make([]string, 0, s.sub.Len())
	for p, proj := range s.sub.entries {
		parts = append(parts, p.Name().String()+" -> "+proj.String())
	}
	slices.Sort(parts)
	return "{" + strings.Join(parts, ", ") + "}"
}
