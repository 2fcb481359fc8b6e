// Package descriptortest builds small descriptor graphs by hand for tests.
package descriptortest

import (
	"sync"

	"github.com/hashicorp/go-set/v3"

	"github.com/broady/builtins/descriptor"
	"github.com/broady/builtins/name"
	"github.com/broady/builtins/storage"
)

// Provider serves a fixed set of package fragments.
type Provider struct {
	mu        sync.RWMutex
	fragments map[name.FqName][]descriptor.PackageFragment
}

// NewProvider returns an empty provider.
func NewProvider() *Provider {
	return &Provider{fragments: make(map[name.FqName][]descriptor.PackageFragment)}
}

// Add registers f under its package name. Adding two fragments for one
// package is allowed.
func (p *Provider) Add(f descriptor.PackageFragment) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.fragments[f.FqName()] = append(p.fragments[f.FqName()], f)
}

func (p *Provider) PackageFragments(fq name.FqName) []descriptor.PackageFragment {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return append([]descriptor.PackageFragment(nil), p.fragments[fq]...)
}

func (p *Provider) SubPackagesOf(fq name.FqName, filter func(name.Name) bool) []name.FqName {
	p.mu.RLock()
	defer p.mu.RUnlock()
	subs := set.New[name.FqName](0)
	for pkg := range p.fragments {
		if pkg.IsRoot() || pkg.Parent() != fq {
			continue
		}
		if filter == nil || filter(pkg.ShortName()) {
			subs.Insert(pkg)
		}
	}
	return subs.Slice()
}

// Package is a package fragment whose top-level declarations are added by
// the test before the fragment's scope is first read.
type Package struct {
	SM       storage.Manager
	Module   *descriptor.Module
	Fragment *descriptor.Fragment

	mu    sync.Mutex
	decls []descriptor.Declaration
}

// NewModule returns an initialized module over provider that depends on
// itself.
func NewModule(provider descriptor.PackageFragmentProvider) *descriptor.Module {
	m := descriptor.NewModule(name.Special("<test module>"))
	m.Initialize(provider)
	m.SetDependencies(m)
	return m
}

// NewPackage returns package fq inside module, registered with provider.
func NewPackage(module *descriptor.Module, provider *Provider, fq string) *Package {
	p := &Package{SM: storage.LockBased(), Module: module}
	p.Fragment = descriptor.NewPackageFragment(p.SM, module, name.Parse(fq), func(*descriptor.Fragment) descriptor.MemberScope {
		p.mu.Lock()
		defer p.mu.Unlock()
		return descriptor.NewScope(p.decls...)
	})
	provider.Add(p.Fragment)
	return p
}

// Add appends top-level declarations.
func (p *Package) Add(decls ...descriptor.Declaration) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.decls = append(p.decls, decls...)
}

// Declare adds a declared, uninitialized class named h.Name.
func (p *Package) Declare(h descriptor.ClassHeader) *descriptor.Class {
	c := descriptor.NewClass(p.SM, p.Fragment, h)
	p.Add(c)
	return c
}

// Class adds a final class with the given simple name and members.
func (p *Package) Class(simpleName string, members ...descriptor.Declaration) *descriptor.Class {
	c := p.Declare(descriptor.ClassHeader{Name: name.Identifier(simpleName)})
	c.Initialize(descriptor.ClassMembers{Scope: descriptor.NewScope(members...)})
	return c
}

// Nested declares a class inside outer. The caller adds it to outer's scope.
func Nested(sm storage.Manager, outer descriptor.ClassDescriptor, simpleName string, kind descriptor.ClassKind) *descriptor.Class {
	c := descriptor.NewClass(sm, outer, descriptor.ClassHeader{Name: name.Identifier(simpleName), Kind: kind})
	c.Initialize(descriptor.ClassMembers{Scope: descriptor.EmptyScope})
	return c
}

// Generic declares a class with invariant type parameters named params and
// initializes it with a scope built from members, which receives the class.
func (p *Package) Generic(simpleName string, params []string, members func(c *descriptor.Class) []descriptor.Declaration) *descriptor.Class {
	specs := make([]descriptor.TypeParameterSpec, len(params))
	for i, tp := range params {
		specs[i] = descriptor.TypeParameterSpec{Name: name.Identifier(tp)}
	}
	c := p.Declare(descriptor.ClassHeader{Name: name.Identifier(simpleName), Kind: descriptor.KindInterface, TypeParameters: specs})
	var decls []descriptor.Declaration
	if members != nil {
		decls = members(c)
	}
	c.Initialize(descriptor.ClassMembers{Scope: descriptor.NewScope(decls...)})
	return c
}

// Func returns a member function of owner taking params and returning ret.
func Func(owner descriptor.Declaration, fname string, ret *descriptor.Type, params ...*descriptor.Type) *descriptor.Function {
	return descriptor.NewFunction(storage.NoLocks(), owner, descriptor.FunctionHeader{
		Name: name.Identifier(fname),
		Signature: func([]*descriptor.TypeParameter) descriptor.Signature {
			specs := make([]descriptor.ValueParameterSpec, len(params))
			for i, t := range params {
				specs[i] = descriptor.ValueParameterSpec{Name: name.Identifier("p" + string(rune('0'+i))), Type: t}
			}
			return descriptor.Signature{ValueParameters: specs, ReturnType: ret}
		},
	})
}

// Val returns a read-only property of owner with a getter.
func Val(owner descriptor.Declaration, pname string, t *descriptor.Type) *descriptor.Property {
	return descriptor.NewProperty(owner, descriptor.PropertyHeader{
		Name:   name.Identifier(pname),
		Type:   t,
		Getter: &descriptor.AccessorHeader{},
	})
}
