// Package metadata deserializes built-in declarations from package files
// and serves them as package fragments of a module.
//
// Each package is stored in one file, <package path>/<last segment>.builtins
// (for example kotlin/collections/collections.builtins). Every non-blank
// line that does not start with '#' is a URL-encoded declaration record:
//
//	decl=class&name=List&kind=interface&tp=out E&super=Collection<E>
//	decl=fun&owner=List&name=get&param=index: kotlin/Int&returns=E
//
// Type expressions name classes by package path and dotted class name
// (kotlin/collections/Map.Entry<K, V>?). A name without a package path is a
// type parameter in scope or a class of the current package.
//
// Files are read and validated when the provider is created. Classes are
// deserialized on first lookup, and their members on first use of their
// member scope.
package metadata

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/broady/builtins/descriptor"
	"github.com/broady/builtins/name"
	"github.com/broady/builtins/resource"
	"github.com/broady/builtins/storage"
)

// FileExtension is the extension of package files.
const FileExtension = ".builtins"

// PackagePath returns the resource path of the file of package fq.
func PackagePath(fq name.FqName) string {
	if fq.IsRoot() {
		return "default-package" + FileExtension
	}
	segments := fq.Segments()
	parts := make([]string, len(segments))
	for i, s := range segments {
		parts[i] = s.String()
	}
	return strings.Join(parts, "/") + "/" + parts[len(parts)-1] + FileExtension
}

// Params configures New.
type Params struct {
	// Module owns the fragments. Required.
	Module *descriptor.Module

	// StorageManager creates the locks of lazy values.
	// Default: storage.LockBased()
	StorageManager storage.Manager

	// Packages are the packages to load. A package without a file has no
	// fragment.
	Packages []name.FqName

	// Loader reads package files.
	// Default: DefaultLoader()
	Loader resource.Loader

	// Logger receives debug records.
	// Default: slog.Default()
	Logger *slog.Logger

	// FunctionPackage is the package in which FunctionN interfaces are
	// synthesized on lookup. It must be one of Packages. The root package
	// disables synthesis.
	FunctionPackage name.FqName

	// DefaultBound is the type expression, such as "kotlin/Any?", used as
	// the bound of every type parameter declared without one. It must name
	// its package. Empty leaves such parameters unbounded, and a '*' in
	// their position then has no type.
	DefaultBound string
}

// Provider is a package fragment provider backed by package files.
// It is safe for concurrent use.
type Provider struct {
	module          *descriptor.Module
	sm              storage.Manager
	logger          *slog.Logger
	functionPackage name.FqName
	defaultBound    *storage.Lazy[*descriptor.Type] // nil without Params.DefaultBound

	// Both are fixed by New.
	order    []name.FqName
	packages map[name.FqName]*packageData

	classes   *storage.Memoized[classID, *descriptor.Class]
	functions *storage.Memoized[int, *descriptor.Class]
}

var _ descriptor.PackageFragmentProvider = (*Provider)(nil)

// New loads the files of p.Packages concurrently and returns a provider
// serving them. A malformed file fails the whole provider.
func New(ctx context.Context, p Params) (*Provider, error) {
	if p.Module == nil {
		return nil, errors.New("metadata: module is required")
	}
	if p.StorageManager == nil {
		p.StorageManager = storage.LockBased()
	}
	if p.Loader == nil {
		p.Loader = DefaultLoader()
	}
	if p.Logger == nil {
		p.Logger = slog.Default()
	}
	var defaultBound *typeExpr
	if p.DefaultBound != "" {
		e, err := parseTypeExpr(p.DefaultBound)
		if err != nil {
			return nil, fmt.Errorf("metadata: default bound: %w", err)
		}
		if e.pkg == "" {
			return nil, fmt.Errorf("metadata: default bound %q must name its package", p.DefaultBound)
		}
		defaultBound = e
	}

	loaded := make([]*packageData, len(p.Packages))
	g, gctx := errgroup.WithContext(ctx)
	for i, fq := range p.Packages {
		g.Go(func() error {
			pd, err := loadPackage(gctx, p.Loader, fq)
			if err != nil {
				return err
			}
			loaded[i] = pd
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	prov := &Provider{
		module:          p.Module,
		sm:              p.StorageManager,
		logger:          p.Logger,
		functionPackage: p.FunctionPackage,
		packages:        make(map[name.FqName]*packageData, len(loaded)),
	}
	if defaultBound != nil {
		prov.defaultBound = storage.NewLazy(prov.sm, func() *descriptor.Type {
			return resolver{p: prov, pkg: name.Root}.resolve(defaultBound)
		}).WithLabel(func() string { return "default bound " + p.DefaultBound })
	}
	prov.classes = storage.NewMemoized(prov.sm, prov.deserializeClass)
	prov.functions = storage.NewMemoized(prov.sm, prov.synthesizeFunctionClass)

	for i, pd := range loaded {
		fq := p.Packages[i]
		if pd == nil {
			prov.logger.Debug("no metadata for package", slog.String("package", fq.String()))
			continue
		}
		if _, dup := prov.packages[fq]; dup {
			continue
		}
		pd.fragment = descriptor.NewPackageFragment(prov.sm, prov.module, fq, func(*descriptor.Fragment) descriptor.MemberScope {
			return prov.packageScope(pd)
		})
		prov.packages[fq] = pd
		prov.order = append(prov.order, fq)
		prov.logger.Debug("loaded package metadata",
			slog.String("package", fq.String()),
			slog.Int("classes", len(pd.classes)),
			slog.Int("records", pd.records))
	}
	return prov, nil
}

// loadPackage reads and indexes the file of fq. A missing file yields nil.
func loadPackage(ctx context.Context, loader resource.Loader, fq name.FqName) (*packageData, error) {
	path := PackagePath(fq)
	data, err := resource.ReadAll(ctx, loader, path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load package %s: %w", fq, err)
	}
	records, err := decodeRecords(path, data)
	if err != nil {
		return nil, err
	}
	return indexPackage(fq, path, records)
}

// Packages returns the packages that have a fragment, in load order.
func (p *Provider) Packages() []name.FqName {
	return append([]name.FqName(nil), p.order...)
}

func (p *Provider) PackageFragments(fq name.FqName) []descriptor.PackageFragment {
	pd, ok := p.packages[fq]
	if !ok {
		return nil
	}
	return []descriptor.PackageFragment{pd.fragment}
}

func (p *Provider) SubPackagesOf(fq name.FqName, filter func(name.Name) bool) []name.FqName {
	var out []name.FqName
	for _, pkg := range p.order {
		if pkg.IsRoot() || pkg.Parent() != fq {
			continue
		}
		if filter == nil || filter(pkg.ShortName()) {
			out = append(out, pkg)
		}
	}
	return out
}
