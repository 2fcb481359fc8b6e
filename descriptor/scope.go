package descriptor

import (
	"cmp"
	"iter"
	"maps"
	"slices"
	"sync"

	"github.com/broady/builtins/name"
)

// MemberScope looks up the members of a class or package by name.
// Absent members are reported as nil.
type MemberScope interface {
	ClassifierNamed(n name.Name) Classifier
	Functions(n name.Name) []*Function
	Properties(n name.Name) []*Property

	ClassifierNames() []name.Name
	FunctionNames() []name.Name
	PropertyNames() []name.Name
}

type emptyScope struct{}

func (emptyScope) ClassifierNamed(name.Name) Classifier { return nil }
func (emptyScope) Functions(name.Name) []*Function      { return nil }
func (emptyScope) Properties(name.Name) []*Property     { return nil }
func (emptyScope) ClassifierNames() []name.Name         { return nil }
func (emptyScope) FunctionNames() []name.Name           { return nil }
func (emptyScope) PropertyNames() []name.Name           { return nil }

// EmptyScope has no members.
var EmptyScope MemberScope = emptyScope{}

// Scope is a fixed set of declarations.
type Scope struct {
	classifiers map[name.Name]Classifier
	functions   map[name.Name][]*Function
	properties  map[name.Name][]*Property
}

// NewScope returns a scope holding decls. Classifiers, functions and
// properties are indexed; other declarations are ignored. A later classifier
// with the same name replaces an earlier one.
func NewScope(decls ...Declaration) *Scope {
	s := &Scope{
		classifiers: make(map[name.Name]Classifier),
		functions:   make(map[name.Name][]*Function),
		properties:  make(map[name.Name][]*Property),
	}
	for _, d := range decls {
		switch d := d.(type) {
		case *Function:
			s.functions[d.Name()] = append(s.functions[d.Name()], d)
		case *Property:
			s.properties[d.Name()] = append(s.properties[d.Name()], d)
		case Classifier:
			s.classifiers[d.Name()] = d
		}
	}
	return s
}

func (s *Scope) ClassifierNamed(n name.Name) Classifier {
	if c, ok := s.classifiers[n]; ok {
		return c
	}
	return nil
}

func (s *Scope) Functions(n name.Name) []*Function  { return s.functions[n] }
func (s *Scope) Properties(n name.Name) []*Property { return s.properties[n] }
func (s *Scope) ClassifierNames() []name.Name       { return SortedNames(maps.Keys(s.classifiers)) }
func (s *Scope) FunctionNames() []name.Name         { return SortedNames(maps.Keys(s.functions)) }
func (s *Scope) PropertyNames() []name.Name         { return SortedNames(maps.Keys(s.properties)) }

// SortedNames collects names in lexical order.
func SortedNames(seq iter.Seq[name.Name]) []name.Name {
	names := slices.Collect(seq)
	slices.SortFunc(names, func(a, b name.Name) int {
		return cmp.Compare(a.String(), b.String())
	})
	return names
}

// innerClassesScope restricts a member scope to its nested classifiers.
type innerClassesScope struct {
	worker MemberScope
}

func newInnerClassesScope(worker MemberScope) MemberScope {
	return innerClassesScope{worker: worker}
}

func (s innerClassesScope) ClassifierNamed(n name.Name) Classifier {
	c := s.worker.ClassifierNamed(n)
	if cd, ok := c.(ClassDescriptor); ok {
		return cd
	}
	return nil
}

func (innerClassesScope) Functions(name.Name) []*Function  { return nil }
func (innerClassesScope) Properties(name.Name) []*Property { return nil }
func (s innerClassesScope) ClassifierNames() []name.Name   { return s.worker.ClassifierNames() }
func (innerClassesScope) FunctionNames() []name.Name       { return nil }
func (innerClassesScope) PropertyNames() []name.Name       { return nil }

// substitutingScope rewrites the members of another scope. Each member is
// substituted once and the result cached. Classifiers pass through.
type substitutingScope struct {
	worker      MemberScope
	substitutor *TypeSubstitutor

	mu         sync.Mutex
	functions  map[*Function]*Function
	properties map[*Property]*Property
}

// NewSubstitutingScope returns worker with member types rewritten by s, or
// worker itself if s is the identity.
func NewSubstitutingScope(worker MemberScope, s *TypeSubstitutor) MemberScope {
	if s.IsIdentity() {
		return worker
	}
	return &substitutingScope{
		worker:      worker,
		substitutor: s,
		functions:   make(map[*Function]*Function),
		properties:  make(map[*Property]*Property),
	}
}

func (s *substitutingScope) ClassifierNamed(n name.Name) Classifier {
	return s.worker.ClassifierNamed(n)
}

func (s *substitutingScope) Functions(n name.Name) []*Function {
	orig := s.worker.Functions(n)
	if len(orig) == 0 {
		return nil
	}
	out := make([]*Function, len(orig))
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, f := range orig {
		sub, ok := s.functions[f]
		if !ok {
			sub = f.Substitute(s.substitutor)
			s.functions[f] = sub
		}
		out[i] = sub
	}
	return out
}

func (s *substitutingScope) Properties(n name.Name) []*Property {
	orig := s.worker.Properties(n)
	if len(orig) == 0 {
		return nil
	}
	out := make([]*Property, len(orig))
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, p := range orig {
		sub, ok := s.properties[p]
		if !ok {
			sub = p.Substitute(s.substitutor)
			s.properties[p] = sub
		}
		out[i] = sub
	}
	return out
}

func (s *substitutingScope) ClassifierNames() []name.Name { return s.worker.ClassifierNames() }
func (s *substitutingScope) FunctionNames() []name.Name   { return s.worker.FunctionNames() }
func (s *substitutingScope) PropertyNames() []name.Name   { return s.worker.PropertyNames() }
