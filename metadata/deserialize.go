package metadata

import (
	"log/slog"
	"slices"
	"strings"

	"github.com/broady/builtins/contract"
	"github.com/broady/builtins/descriptor"
	"github.com/broady/builtins/name"
	"github.com/broady/builtins/storage"
)

func splitRelative(rel string) []string {
	return strings.Split(rel, ".")
}

// classByID returns the class id, deserializing or synthesizing it on first
// use, or nil if this provider does not know it.
func (p *Provider) classByID(id classID) descriptor.ClassDescriptor {
	if pd, ok := p.packages[id.pkg]; ok {
		if _, ok := pd.classes[id.relative]; ok {
			return p.classes.Get(id)
		}
	}
	if arity, ok := p.functionArity(id); ok {
		return p.functions.Get(arity)
	}
	return nil
}

// deserializeClass declares and initializes class id. Everything that
// refers to other classes (supertypes, bounds, members) is resolved lazily,
// so a class may mention itself or classes that mention it.
func (p *Provider) deserializeClass(id classID) *descriptor.Class {
	pd := p.packages[id.pkg]
	cd := pd.classes[id.relative]
	rec := cd.rec

	var container descriptor.Declaration = pd.fragment
	if rec.Outer != "" {
		container = p.classes.Get(classID{pkg: id.pkg, relative: rec.Outer})
	}

	kind := parseClassKind(rec.Kind)
	c := descriptor.NewClass(p.sm, container, descriptor.ClassHeader{
		Name:              name.Identifier(rec.Name),
		Kind:              kind,
		Modality:          parseModality(rec.Modality, kind),
		Visibility:        parseVisibility(rec.Visibility),
		IsInner:           rec.Inner,
		IsData:            rec.Data,
		IsCompanionObject: rec.Companion,
		Annotations:       annotations(id.pkg, rec.Annotations),
		TypeParameters:    p.typeParameterSpecs(id.pkg, rec.TypeParameters),
		Supertypes: func(c *descriptor.Class) []*descriptor.Type {
			r := resolver{p: p, pkg: id.pkg, params: declarationParams(c)}
			return r.types(rec.Supertypes)
		},
	})
	c.Initialize(descriptor.ClassMembers{
		Scope: p.newDeclScope(c, id.pkg, &cd.members, cd.nested, func(n string) descriptor.Classifier {
			if _, ok := pd.classes[id.relative+"."+n]; !ok {
				return nil
			}
			return p.classes.Get(classID{pkg: id.pkg, relative: id.relative + "." + n})
		}),
		Constructors: func() []*descriptor.Constructor {
			return p.constructors(c, id.pkg, cd.constructors)
		},
		CompanionObject: func() descriptor.ClassDescriptor {
			for _, n := range cd.nested {
				nested := classID{pkg: id.pkg, relative: id.relative + "." + n}
				if pd.classes[nested.relative].rec.Companion {
					return p.classes.Get(nested)
				}
			}
			return nil
		},
	})

	p.logger.Debug("deserialized class", slog.String("class", id.fqName().String()))
	return c
}

func (p *Provider) constructors(c *descriptor.Class, pkg name.FqName, recs []record) []*descriptor.Constructor {
	if len(recs) == 0 {
		return nil
	}
	r := resolver{p: p, pkg: pkg, params: declarationParams(c)}
	ctors := make([]*descriptor.Constructor, len(recs))
	for i, rec := range recs {
		ctors[i] = descriptor.NewConstructor(c, descriptor.ConstructorHeader{
			Primary:         rec.Primary,
			Visibility:      parseVisibility(rec.Visibility),
			Annotations:     annotations(pkg, rec.Annotations),
			ValueParameters: r.valueParameters(rec.Parameters),
		})
	}
	return ctors
}

func (p *Provider) newFunction(container descriptor.Declaration, pkg name.FqName, rec record) *descriptor.Function {
	return descriptor.NewFunction(p.sm, container, descriptor.FunctionHeader{
		Name:           name.Identifier(rec.Name),
		Modality:       parseModality(rec.Modality, containerKind(container)),
		Visibility:     parseVisibility(rec.Visibility),
		Annotations:    annotations(pkg, rec.Annotations),
		TypeParameters: p.typeParameterSpecs(pkg, rec.TypeParameters),
		Signature: func(tps []*descriptor.TypeParameter) descriptor.Signature {
			r := resolver{p: p, pkg: pkg, params: &typeParams{params: tps, parent: declarationParams(container)}}
			sig := descriptor.Signature{
				ValueParameters: r.valueParameters(rec.Parameters),
				ReturnType:      r.typeOf(rec.Returns),
			}
			if rec.Receiver != "" {
				sig.ExtensionReceiver = r.typeOf(rec.Receiver)
			}
			return sig
		},
	})
}

func (p *Provider) newProperty(container descriptor.Declaration, pkg name.FqName, rec record) *descriptor.Property {
	r := resolver{p: p, pkg: pkg, params: declarationParams(container)}
	header := descriptor.PropertyHeader{
		Name:        name.Identifier(rec.Name),
		Type:        r.typeOf(rec.Type),
		Mutable:     rec.Mutable,
		Modality:    parseModality(rec.Modality, containerKind(container)),
		Visibility:  parseVisibility(rec.Visibility),
		Annotations: annotations(pkg, rec.Annotations),
		Getter:      &descriptor.AccessorHeader{Annotations: annotations(pkg, rec.GetterAnnotations)},
	}
	if rec.Mutable {
		header.Setter = &descriptor.AccessorHeader{Annotations: annotations(pkg, rec.SetterAnnotations)}
	}
	return descriptor.NewProperty(container, header)
}

func (p *Provider) typeParameterSpecs(pkg name.FqName, exprs []string) []descriptor.TypeParameterSpec {
	if len(exprs) == 0 {
		return nil
	}
	specs := make([]descriptor.TypeParameterSpec, len(exprs))
	for i, expr := range exprs {
		tp, err := parseTypeParam(expr)
		if err != nil {
			contract.Fail(contract.CodeInvalidMetadata, "%v", err)
		}
		specs[i] = descriptor.TypeParameterSpec{
			Name:     name.Identifier(tp.name),
			Variance: tp.variance,
			Reified:  tp.reified,
		}
		if tp.bound != nil {
			bound := tp.bound
			specs[i].UpperBounds = func(self *descriptor.TypeParameter) []*descriptor.Type {
				r := resolver{p: p, pkg: pkg, params: declarationParams(self.ContainingDeclaration())}
				return []*descriptor.Type{r.resolve(bound)}
			}
		} else {
			specs[i].UpperBounds = p.defaultUpperBounds()
		}
	}
	return specs
}

// defaultUpperBounds returns the bounds source of a parameter declared
// without a bound, or nil if the provider has no default bound.
func (p *Provider) defaultUpperBounds() func(*descriptor.TypeParameter) []*descriptor.Type {
	if p.defaultBound == nil {
		return nil
	}
	return func(*descriptor.TypeParameter) []*descriptor.Type {
		return []*descriptor.Type{p.defaultBound.Get()}
	}
}

// typeParams is the chain of type parameters visible at a declaration,
// innermost first.
type typeParams struct {
	params []*descriptor.TypeParameter
	parent *typeParams
}

func (s *typeParams) lookup(n string) *descriptor.TypeParameter {
	for ; s != nil; s = s.parent {
		for _, tp := range s.params {
			if tp.Name().String() == n {
				return tp
			}
		}
	}
	return nil
}

// declarationParams returns the type parameters visible inside d: its own,
// those of an enclosing function, and those of outer classes of an inner
// class.
func declarationParams(d descriptor.Declaration) *typeParams {
	switch d := d.(type) {
	case *descriptor.Function:
		return &typeParams{params: d.TypeParameters(), parent: declarationParams(d.ContainingDeclaration())}
	case descriptor.ClassDescriptor:
		s := &typeParams{params: d.TypeParameters()}
		if d.IsInner() {
			s.parent = declarationParams(d.ContainingDeclaration())
		}
		return s
	}
	return nil
}

// resolver turns type expressions into types.
type resolver struct {
	p      *Provider
	pkg    name.FqName
	params *typeParams
}

func (r resolver) typeOf(expr string) *descriptor.Type {
	e, err := parseTypeExpr(expr)
	if err != nil {
		contract.Fail(contract.CodeInvalidMetadata, "%v", err)
	}
	return r.resolve(e)
}

func (r resolver) types(exprs []string) []*descriptor.Type {
	if len(exprs) == 0 {
		return nil
	}
	out := make([]*descriptor.Type, len(exprs))
	for i, expr := range exprs {
		out[i] = r.typeOf(expr)
	}
	return out
}

func (r resolver) resolve(e *typeExpr) *descriptor.Type {
	if e.isTypeParameterCandidate() {
		if tp := r.params.lookup(e.names[0]); tp != nil {
			if e.nullable {
				return tp.DefaultType().MakeNullable()
			}
			return tp.DefaultType()
		}
	}

	id := classID{pkg: e.packageName(r.pkg), relative: e.relativeName()}
	cd := r.p.classByID(id)
	if cd == nil {
		contract.FailAbout(contract.CodeInvalidMetadata, id.fqName(), "unresolved class %s")
	}
	tps := cd.TypeParameters()
	contract.Check(len(e.args) == len(tps), contract.CodeInvalidMetadata,
		"%s expects %d type arguments, got %d", id.fqName(), len(tps), len(e.args))

	var args []descriptor.TypeProjection
	if len(e.args) > 0 {
		args = make([]descriptor.TypeProjection, len(e.args))
		for i, a := range e.args {
			if a.star {
				// The star type is read later; it may be the type being
				// resolved.
				args[i] = descriptor.StarProjectionOf(tps[i])
				continue
			}
			args[i] = descriptor.NewProjection(a.variance, r.resolve(a.typ))
		}
	}
	return descriptor.NewType(cd, args, e.nullable)
}

func (r resolver) valueParameters(exprs []string) []descriptor.ValueParameterSpec {
	if len(exprs) == 0 {
		return nil
	}
	specs := make([]descriptor.ValueParameterSpec, len(exprs))
	for i, expr := range exprs {
		vp, err := parseValueParam(expr)
		if err != nil {
			contract.Fail(contract.CodeInvalidMetadata, "%v", err)
		}
		specs[i] = descriptor.ValueParameterSpec{
			Name:       name.Identifier(vp.name),
			Type:       r.resolve(vp.typ),
			HasDefault: vp.hasDefault,
			Vararg:     vp.vararg,
		}
	}
	return specs
}

func annotations(pkg name.FqName, exprs []string) *descriptor.Annotations {
	if len(exprs) == 0 {
		return nil
	}
	anns := make([]descriptor.Annotation, len(exprs))
	for i, expr := range exprs {
		a, err := parseAnnotation(expr)
		if err != nil {
			contract.Fail(contract.CodeInvalidMetadata, "%v", err)
		}
		anns[i] = descriptor.Annotation{
			Class:     classID{pkg: a.class.packageName(pkg), relative: a.class.relativeName()}.fqName(),
			Target:    a.target,
			Arguments: a.args,
		}
	}
	return descriptor.NewAnnotations(anns...)
}

func parseClassKind(s string) descriptor.ClassKind {
	switch s {
	case "interface":
		return descriptor.KindInterface
	case "enum_class":
		return descriptor.KindEnumClass
	case "enum_entry":
		return descriptor.KindEnumEntry
	case "annotation_class":
		return descriptor.KindAnnotationClass
	case "object":
		return descriptor.KindObject
	default:
		return descriptor.KindClass
	}
}

// parseModality defaults to abstract for interfaces and final otherwise.
func parseModality(s string, kind descriptor.ClassKind) descriptor.Modality {
	switch s {
	case "sealed":
		return descriptor.Sealed
	case "open":
		return descriptor.Open
	case "abstract":
		return descriptor.Abstract
	case "final":
		return descriptor.Final
	}
	if kind == descriptor.KindInterface {
		return descriptor.Abstract
	}
	return descriptor.Final
}

// containerKind is the kind whose defaults members of d follow.
func containerKind(d descriptor.Declaration) descriptor.ClassKind {
	if cd, ok := d.(descriptor.ClassDescriptor); ok {
		return cd.Kind()
	}
	return descriptor.KindClass
}

func parseVisibility(s string) descriptor.Visibility {
	switch s {
	case "protected":
		return descriptor.Protected
	case "internal":
		return descriptor.Internal
	case "private":
		return descriptor.Private
	default:
		return descriptor.Public
	}
}

// declScope is the member scope of a package or class. Functions and
// properties are built per name on first lookup.
type declScope struct {
	classifier      func(string) descriptor.Classifier
	classifierNames []name.Name
	functionNames   []name.Name
	propertyNames   []name.Name
	functions       *storage.Memoized[name.Name, []*descriptor.Function]
	properties      *storage.Memoized[name.Name, []*descriptor.Property]
}

func (p *Provider) newDeclScope(container descriptor.Declaration, pkg name.FqName, members *memberIndex, classifierNames []string, classifier func(string) descriptor.Classifier) *declScope {
	return &declScope{
		classifier:      classifier,
		classifierNames: identifiers(classifierNames),
		functionNames:   identifiers(members.functionNames),
		propertyNames:   identifiers(members.propertyNames),
		functions: storage.NewMemoized(p.sm, func(n name.Name) []*descriptor.Function {
			recs := members.functions[n.String()]
			if len(recs) == 0 {
				return nil
			}
			fns := make([]*descriptor.Function, len(recs))
			for i, rec := range recs {
				fns[i] = p.newFunction(container, pkg, rec)
			}
			return fns
		}),
		properties: storage.NewMemoized(p.sm, func(n name.Name) []*descriptor.Property {
			recs := members.properties[n.String()]
			if len(recs) == 0 {
				return nil
			}
			props := make([]*descriptor.Property, len(recs))
			for i, rec := range recs {
				props[i] = p.newProperty(container, pkg, rec)
			}
			return props
		}),
	}
}

func identifiers(names []string) []name.Name {
	if len(names) == 0 {
		return nil
	}
	out := make([]name.Name, len(names))
	for i, n := range names {
		out[i] = name.Identifier(n)
	}
	return out
}

func (s *declScope) ClassifierNamed(n name.Name) descriptor.Classifier {
	if n.IsSpecial() || n.IsZero() {
		return nil
	}
	return s.classifier(n.String())
}

func (s *declScope) Functions(n name.Name) []*descriptor.Function  { return s.functions.Get(n) }
func (s *declScope) Properties(n name.Name) []*descriptor.Property { return s.properties.Get(n) }

func (s *declScope) ClassifierNames() []name.Name { return descriptor.SortedNames(slices.Values(s.classifierNames)) }
func (s *declScope) FunctionNames() []name.Name   { return descriptor.SortedNames(slices.Values(s.functionNames)) }
func (s *declScope) PropertyNames() []name.Name   { return descriptor.SortedNames(slices.Values(s.propertyNames)) }

// packageScope returns the scope of the fragment of pd. In the function
// package, undeclared FunctionN names resolve to synthesized interfaces.
func (p *Provider) packageScope(pd *packageData) descriptor.MemberScope {
	return p.newDeclScope(pd.fragment, pd.fq, &pd.members, pd.topLevel, func(n string) descriptor.Classifier {
		if cd := p.classByID(classID{pkg: pd.fq, relative: n}); cd != nil {
			return cd
		}
		return nil
	})
}
