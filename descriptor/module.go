package descriptor

import (
	"sync"

	"github.com/hashicorp/go-set/v3"

	"github.com/broady/builtins/contract"
	"github.com/broady/builtins/name"
	"github.com/broady/builtins/storage"
)

// PackageFragment is the part of a package contributed by one module.
type PackageFragment interface {
	Declaration

	// FqName returns the package name.
	FqName() name.FqName

	// MemberScope returns the top-level declarations of the fragment.
	MemberScope() MemberScope

	// Module returns the owning module.
	Module() *Module
}

// PackageFragmentProvider supplies package fragments by package name.
// Implementations must be safe for concurrent calls.
type PackageFragmentProvider interface {
	// PackageFragments returns the fragments of package fq; none is a
	// normal result.
	PackageFragments(fq name.FqName) []PackageFragment

	// SubPackagesOf returns the known direct subpackages of fq whose short
	// name passes filter. A nil filter accepts everything.
	SubPackagesOf(fq name.FqName, filter func(name.Name) bool) []name.FqName
}

// CompositeProvider concatenates the results of several providers.
type CompositeProvider []PackageFragmentProvider

func (c CompositeProvider) PackageFragments(fq name.FqName) []PackageFragment {
	var out []PackageFragment
	for _, p := range c {
		out = append(out, p.PackageFragments(fq)...)
	}
	return out
}

func (c CompositeProvider) SubPackagesOf(fq name.FqName, filter func(name.Name) bool) []name.FqName {
	seen := set.New[name.FqName](0)
	var out []name.FqName
	for _, p := range c {
		for _, sub := range p.SubPackagesOf(fq, filter) {
			if seen.Insert(sub) {
				out = append(out, sub)
			}
		}
	}
	return out
}

// Module is a unit of declarations. Its content provider is attached once
// with Initialize and its dependency list once with SetDependencies.
type Module struct {
	name name.Name

	mu        sync.Mutex
	provider  PackageFragmentProvider
	deps      []*Module
	depsSet   bool
	composite PackageFragmentProvider
}

// NewModule creates a module. The name must be special, such as
// "<built-ins module>".
func NewModule(n name.Name) *Module {
	contract.Check(n.IsSpecial(), contract.CodeInvalidName, "module name %q must be special", n)
	return &Module{name: n}
}

func (m *Module) Name() name.Name                    { return m.name }
func (m *Module) ContainingDeclaration() Declaration { return nil }
func (m *Module) Annotations() *Annotations          { return nil }
func (m *Module) String() string                     { return "module " + m.name.String() }

// Initialize attaches the provider of the module's own declarations.
// It panics if called twice.
func (m *Module) Initialize(p PackageFragmentProvider) {
	m.mu.Lock()
	defer m.mu.Unlock()
	contract.Check(m.provider == nil, contract.CodeAlreadyInitialized, "%s is already initialized", m)
	contract.Check(p != nil, contract.CodeUninitialized, "%s initialized with nil provider", m)
	m.provider = p
}

// IsInitialized reports whether Initialize has been called.
func (m *Module) IsInitialized() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.provider != nil
}

// SetDependencies sets the modules whose declarations are visible from m,
// normally including m itself. It panics if called twice.
func (m *Module) SetDependencies(deps ...*Module) {
	m.mu.Lock()
	defer m.mu.Unlock()
	contract.Check(!m.depsSet, contract.CodeAlreadyInitialized, "dependencies of %s are already set", m)
	m.deps = append([]*Module(nil), deps...)
	m.depsSet = true
}

// Dependencies returns the modules set by SetDependencies.
func (m *Module) Dependencies() []*Module {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*Module(nil), m.deps...)
}

func (m *Module) ownProvider() PackageFragmentProvider {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.provider == nil {
		contract.Fail(contract.CodeUninitialized, "%s queried before initialization", m)
	}
	return m.provider
}

// PackageFragmentProvider returns the provider for everything visible from
// the module: the composite of each dependency's own provider.
func (m *Module) PackageFragmentProvider() PackageFragmentProvider {
	m.mu.Lock()
	if m.composite != nil {
		defer m.mu.Unlock()
		return m.composite
	}
	if !m.depsSet {
		m.mu.Unlock()
		contract.Fail(contract.CodeUninitialized, "dependencies of %s are not set", m)
	}
	deps := m.deps
	m.mu.Unlock()

	composite := make(CompositeProvider, 0, len(deps))
	for _, dep := range deps {
		composite = append(composite, dep.ownProvider())
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.composite == nil {
		m.composite = composite
	}
	return m.composite
}

// PackageFragments returns the fragments of package fq visible from m.
func (m *Module) PackageFragments(fq name.FqName) []PackageFragment {
	return m.PackageFragmentProvider().PackageFragments(fq)
}

// Fragment is a package fragment whose scope is computed on first use.
type Fragment struct {
	module *Module
	fq     name.FqName
	scope  *storage.Lazy[MemberScope]
}

// NewPackageFragment returns a fragment of package fq owned by module. The
// scope function receives the fragment so that top-level classes can name
// it as their container.
func NewPackageFragment(sm storage.Manager, module *Module, fq name.FqName, scope func(f *Fragment) MemberScope) *Fragment {
	f := &Fragment{module: module, fq: fq}
	f.scope = storage.NewLazy(sm, func() MemberScope { return scope(f) }).
		WithLabel(func() string { return "member scope of package " + fq.String() })
	return f
}

var rootPackageName = name.Special("<root>")

// Name returns the last segment of the package name, or <root>.
func (f *Fragment) Name() name.Name {
	if f.fq.IsRoot() {
		return rootPackageName
	}
	return f.fq.ShortName()
}

func (f *Fragment) ContainingDeclaration() Declaration { return f.module }
func (f *Fragment) Annotations() *Annotations          { return nil }
func (f *Fragment) FqName() name.FqName                { return f.fq }
func (f *Fragment) MemberScope() MemberScope           { return f.scope.Get() }
func (f *Fragment) Module() *Module                    { return f.module }
func (f *Fragment) String() string                     { return "package " + f.fq.String() + " of " + f.module.String() }
