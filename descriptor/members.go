package descriptor

import (
	"github.com/broady/builtins/name"
	"github.com/broady/builtins/storage"
)

var (
	constructorName = name.Special("<init>")
	receiverName    = name.Special("<this>")
)

// ValueParameterSpec declares one value parameter.
type ValueParameterSpec struct {
	Name       name.Name
	Type       *Type
	HasDefault bool
	Vararg     bool
}

// ValueParameter is a parameter of a function or constructor.
type ValueParameter struct {
	owner      Declaration
	name       name.Name
	index      int
	typ        *Type
	hasDefault bool
	vararg     bool
}

func (p *ValueParameter) Name() name.Name                    { return p.name }
func (p *ValueParameter) ContainingDeclaration() Declaration { return p.owner }
func (p *ValueParameter) Annotations() *Annotations          { return nil }
func (p *ValueParameter) Index() int                         { return p.index }
func (p *ValueParameter) Type() *Type                        { return p.typ }
func (p *ValueParameter) HasDefault() bool                   { return p.hasDefault }
func (p *ValueParameter) IsVararg() bool                     { return p.vararg }

func newValueParameters(owner Declaration, specs []ValueParameterSpec) []*ValueParameter {
	if len(specs) == 0 {
		return nil
	}
	params := make([]*ValueParameter, len(specs))
	for i, spec := range specs {
		params[i] = &ValueParameter{
			owner:      owner,
			name:       spec.Name,
			index:      i,
			typ:        spec.Type,
			hasDefault: spec.HasDefault,
			vararg:     spec.Vararg,
		}
	}
	return params
}

func substituteValueParameters(owner Declaration, params []*ValueParameter, s *TypeSubstitutor) []*ValueParameter {
	if len(params) == 0 {
		return nil
	}
	out := make([]*ValueParameter, len(params))
	for i, p := range params {
		c := *p
		c.owner = owner
		c.typ = s.Substitute(p.typ)
		out[i] = &c
	}
	return out
}

// Signature is the value-level shape of a function.
type Signature struct {
	ValueParameters   []ValueParameterSpec
	ReturnType        *Type
	ExtensionReceiver *Type
}

// FunctionHeader declares a function.
type FunctionHeader struct {
	Name           name.Name
	Modality       Modality
	Visibility     Visibility
	Annotations    *Annotations
	TypeParameters []TypeParameterSpec

	// Signature builds the value parameters and return type once the
	// function's own type parameters exist. Nil means no parameters and no
	// declared return type.
	Signature func(typeParameters []*TypeParameter) Signature
}

// Function is a member or top-level function.
type Function struct {
	container         Declaration
	header            FunctionHeader
	typeParameters    []*TypeParameter
	valueParameters   []*ValueParameter
	returnType        *Type
	extensionReceiver *Type
	original          *Function
}

// NewFunction declares a function inside container.
func NewFunction(sm storage.Manager, container Declaration, header FunctionHeader) *Function {
	f := &Function{container: container, header: header}
	f.original = f
	f.typeParameters = NewTypeParameters(sm, f, header.TypeParameters)
	if header.Signature != nil {
		sig := header.Signature(f.typeParameters)
		f.valueParameters = newValueParameters(f, sig.ValueParameters)
		f.returnType = sig.ReturnType
		f.extensionReceiver = sig.ExtensionReceiver
	}
	return f
}

func (f *Function) Name() name.Name                    { return f.header.Name }
func (f *Function) ContainingDeclaration() Declaration { return f.container }
func (f *Function) Annotations() *Annotations          { return f.header.Annotations }
func (f *Function) Modality() Modality                 { return f.header.Modality }
func (f *Function) Visibility() Visibility             { return f.header.Visibility }
func (f *Function) TypeParameters() []*TypeParameter   { return f.typeParameters }
func (f *Function) ValueParameters() []*ValueParameter { return f.valueParameters }
func (f *Function) ReturnType() *Type                  { return f.returnType }
func (f *Function) ExtensionReceiverType() *Type       { return f.extensionReceiver }
func (f *Function) Original() *Function                { return f.original }

// DispatchReceiverParameter returns the receiver of a member function, or
// nil for a top-level function.
func (f *Function) DispatchReceiverParameter() *ReceiverParameter {
	if cd, ok := f.container.(ClassDescriptor); ok {
		return cd.ThisAsReceiverParameter()
	}
	return nil
}

// Substitute returns a copy of f with parameter and return types rewritten
// by s, or f itself if s is the identity.
func (f *Function) Substitute(s *TypeSubstitutor) *Function {
	if s.IsIdentity() {
		return f
	}
	c := *f
	c.valueParameters = substituteValueParameters(&c, f.valueParameters, s)
	c.returnType = s.Substitute(f.returnType)
	c.extensionReceiver = s.Substitute(f.extensionReceiver)
	return &c
}

func (f *Function) String() string {
	return "fun " + FqNameOf(f).String()
}

// ConstructorHeader declares a constructor.
type ConstructorHeader struct {
	Primary         bool
	Visibility      Visibility
	Annotations     *Annotations
	ValueParameters []ValueParameterSpec
}

// Constructor is a class constructor. Its return type is the default type
// of the constructed class.
type Constructor struct {
	class           ClassDescriptor
	header          ConstructorHeader
	valueParameters []*ValueParameter
	returnType      *Type
	original        *Constructor
}

// NewConstructor declares a constructor of class. The value parameter
// types may mention the class's type parameters.
func NewConstructor(class ClassDescriptor, header ConstructorHeader) *Constructor {
	ctor := &Constructor{class: class, header: header}
	ctor.original = ctor
	ctor.valueParameters = newValueParameters(ctor, header.ValueParameters)
	ctor.returnType = class.DefaultType()
	return ctor
}

func (c *Constructor) Name() name.Name                    { return constructorName }
func (c *Constructor) ContainingDeclaration() Declaration { return c.class }
func (c *Constructor) Annotations() *Annotations          { return c.header.Annotations }
func (c *Constructor) IsPrimary() bool                    { return c.header.Primary }
func (c *Constructor) Visibility() Visibility             { return c.header.Visibility }
func (c *Constructor) ConstructedClass() ClassDescriptor  { return c.class }
func (c *Constructor) ValueParameters() []*ValueParameter { return c.valueParameters }
func (c *Constructor) ReturnType() *Type                  { return c.returnType }
func (c *Constructor) Original() *Constructor             { return c.original }

// Substitute returns a copy of c with types rewritten by s.
func (c *Constructor) Substitute(s *TypeSubstitutor) *Constructor {
	if s.IsIdentity() {
		return c
	}
	return c.substitute(c.class, s)
}

func (c *Constructor) substitute(class ClassDescriptor, s *TypeSubstitutor) *Constructor {
	out := *c
	out.class = class
	out.valueParameters = substituteValueParameters(&out, c.valueParameters, s)
	out.returnType = s.Substitute(c.returnType)
	return &out
}

func (c *Constructor) String() string {
	return "constructor " + FqNameOf(c.class).String()
}

// AccessorHeader declares a property getter or setter.
type AccessorHeader struct {
	Annotations *Annotations
}

// PropertyHeader declares a property.
type PropertyHeader struct {
	Name        name.Name
	Type        *Type
	Mutable     bool
	Modality    Modality
	Visibility  Visibility
	Annotations *Annotations

	// Getter and Setter describe the accessors; nil means absent.
	Getter *AccessorHeader
	Setter *AccessorHeader
}

// Property is a val or var.
type Property struct {
	container Declaration
	header    PropertyHeader
	typ       *Type
	getter    *PropertyAccessor
	setter    *PropertyAccessor
	original  *Property
}

// NewProperty declares a property inside container.
func NewProperty(container Declaration, header PropertyHeader) *Property {
	p := &Property{container: container, header: header, typ: header.Type}
	p.original = p
	if header.Getter != nil {
		p.getter = &PropertyAccessor{property: p, annotations: header.Getter.Annotations}
		p.getter.original = p.getter
	}
	if header.Setter != nil {
		p.setter = &PropertyAccessor{property: p, setter: true, annotations: header.Setter.Annotations}
		p.setter.original = p.setter
	}
	return p
}

func (p *Property) Name() name.Name                    { return p.header.Name }
func (p *Property) ContainingDeclaration() Declaration { return p.container }
func (p *Property) Annotations() *Annotations          { return p.header.Annotations }
func (p *Property) Type() *Type                        { return p.typ }
func (p *Property) IsVar() bool                        { return p.header.Mutable }
func (p *Property) Modality() Modality                 { return p.header.Modality }
func (p *Property) Visibility() Visibility             { return p.header.Visibility }
func (p *Property) Original() *Property                { return p.original }

// Getter returns the getter, or nil.
func (p *Property) Getter() *PropertyAccessor { return p.getter }

// Setter returns the setter, or nil.
func (p *Property) Setter() *PropertyAccessor { return p.setter }

// Substitute returns a copy of p with its type rewritten by s.
func (p *Property) Substitute(s *TypeSubstitutor) *Property {
	if s.IsIdentity() {
		return p
	}
	c := *p
	c.typ = s.Substitute(p.typ)
	if p.getter != nil {
		g := *p.getter
		g.property = &c
		c.getter = &g
	}
	if p.setter != nil {
		st := *p.setter
		st.property = &c
		c.setter = &st
	}
	return &c
}

func (p *Property) String() string {
	if p.header.Mutable {
		return "var " + FqNameOf(p).String()
	}
	return "val " + FqNameOf(p).String()
}

// PropertyAccessor is the getter or setter of a property.
type PropertyAccessor struct {
	property    *Property
	setter      bool
	annotations *Annotations
	original    *PropertyAccessor
}

// Name returns <get-x> or <set-x>.
func (a *PropertyAccessor) Name() name.Name {
	if a.setter {
		return name.Special("<set-" + a.property.Name().String() + ">")
	}
	return name.Special("<get-" + a.property.Name().String() + ">")
}

func (a *PropertyAccessor) ContainingDeclaration() Declaration { return a.property.container }
func (a *PropertyAccessor) Annotations() *Annotations          { return a.annotations }
func (a *PropertyAccessor) Property() *Property                { return a.property }
func (a *PropertyAccessor) IsGetter() bool                     { return !a.setter }
func (a *PropertyAccessor) Original() *PropertyAccessor        { return a.original }

// UseSiteTarget returns the target that property annotations must carry to
// apply to this accessor.
func (a *PropertyAccessor) UseSiteTarget() UseSiteTarget {
	if a.setter {
		return TargetSetter
	}
	return TargetGetter
}

// ReceiverParameter is the implicit 'this' of a class's members.
type ReceiverParameter struct {
	container Declaration
	typ       *Type
}

// NewReceiverParameter returns a receiver of type typ owned by container.
func NewReceiverParameter(container Declaration, typ *Type) *ReceiverParameter {
	return &ReceiverParameter{container: container, typ: typ}
}

func (r *ReceiverParameter) Name() name.Name                    { return receiverName }
func (r *ReceiverParameter) ContainingDeclaration() Declaration { return r.container }
func (r *ReceiverParameter) Annotations() *Annotations          { return nil }
func (r *ReceiverParameter) Type() *Type                        { return r.typ }
