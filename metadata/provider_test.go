package metadata_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync/atomic"
	"testing"

	"golang.org/x/sync/errgroup"

	"github.com/broady/builtins/contract"
	"github.com/broady/builtins/descriptor"
	"github.com/broady/builtins/metadata"
	"github.com/broady/builtins/name"
	"github.com/broady/builtins/resource"
	"github.com/broady/builtins/storage"
)

var (
	kotlin      = name.Parse("kotlin")
	collections = name.Parse("kotlin.collections")
	ranges      = name.Parse("kotlin.ranges")
	annotation  = name.Parse("kotlin.annotation")
	reflect     = name.Parse("kotlin.reflect")
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func expectCode(t *testing.T, want contract.Code, fn func()) *contract.Error {
	t.Helper()
	err := contract.Recover(fn)
	if got := contract.CodeOf(err); got != want {
		t.Fatalf("error = %v, want code %s", err, want)
	}
	var ce *contract.Error
	errors.As(err, &ce)
	return ce
}

// newBundleProvider serves the embedded bundle.
func newBundleProvider(t *testing.T) *metadata.Provider {
	t.Helper()
	module := descriptor.NewModule(name.Special("<test built-ins>"))
	p, err := metadata.New(context.Background(), metadata.Params{
		Module:          module,
		Packages:        []name.FqName{kotlin, collections, ranges, annotation, reflect, name.Parse("kotlin.internal")},
		Logger:          discardLogger(),
		FunctionPackage: kotlin,
		DefaultBound:    "kotlin/Any?",
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	module.Initialize(p)
	module.SetDependencies(module)
	return p
}

// newFileProvider serves the given package files from memory.
func newFileProvider(t *testing.T, files map[string]string, packages ...name.FqName) (*metadata.Provider, error) {
	t.Helper()
	loader := resource.NewMemoryLoader()
	for path, content := range files {
		if err := loader.Add(path, []byte(content)); err != nil {
			t.Fatal(err)
		}
	}
	module := descriptor.NewModule(name.Special("<test built-ins>"))
	p, err := metadata.New(context.Background(), metadata.Params{
		Module:          module,
		StorageManager:  storage.LockBased(),
		Packages:        packages,
		Loader:          loader,
		Logger:          discardLogger(),
		FunctionPackage: kotlin,
	})
	if err != nil {
		return nil, err
	}
	module.Initialize(p)
	module.SetDependencies(module)
	return p, nil
}

func fragmentOf(t *testing.T, p *metadata.Provider, fq name.FqName) descriptor.PackageFragment {
	t.Helper()
	fragments := p.PackageFragments(fq)
	if len(fragments) != 1 {
		t.Fatalf("PackageFragments(%v) returned %d fragments, want 1", fq, len(fragments))
	}
	return fragments[0]
}

func classOf(t *testing.T, p *metadata.Provider, fq name.FqName) descriptor.ClassDescriptor {
	t.Helper()
	c := fragmentOf(t, p, fq.Parent()).MemberScope().ClassifierNamed(fq.ShortName())
	cd, ok := c.(descriptor.ClassDescriptor)
	if !ok {
		t.Fatalf("ClassifierNamed(%v) = %v, want a class", fq, c)
	}
	return cd
}

func typeStrings(types []*descriptor.Type) []string {
	out := make([]string, len(types))
	for i, t := range types {
		out[i] = t.String()
	}
	return out
}

func TestNew_RequiresModule(t *testing.T) {
	if _, err := metadata.New(context.Background(), metadata.Params{}); err == nil {
		t.Error("New() without module succeeded")
	}
}

func TestNew_DefaultBundle(t *testing.T) {
	p := newBundleProvider(t)

	want := []name.FqName{kotlin, collections, ranges, annotation, reflect}
	got := p.Packages()
	if len(got) != len(want) {
		t.Fatalf("Packages() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Packages()[%d] = %v, want %v", i, got[i], want[i])
		}
	}

	if fragments := p.PackageFragments(name.Parse("kotlin.internal")); len(fragments) != 0 {
		t.Errorf("PackageFragments(kotlin.internal) = %v, want none", fragments)
	}

	subs := p.SubPackagesOf(kotlin, nil)
	if len(subs) != 4 {
		t.Errorf("SubPackagesOf(kotlin) = %v, want 4 packages", subs)
	}
	subs = p.SubPackagesOf(kotlin, func(n name.Name) bool { return n.String() == "ranges" })
	if len(subs) != 1 || subs[0] != ranges {
		t.Errorf("SubPackagesOf(kotlin, ranges only) = %v, want [%v]", subs, ranges)
	}
}

func TestProvider_Classes(t *testing.T) {
	p := newBundleProvider(t)

	tests := []struct {
		fq         string
		kind       descriptor.ClassKind
		modality   descriptor.Modality
		params     int
		supertypes []string
	}{
		{"kotlin.Any", descriptor.KindClass, descriptor.Open, 0, []string{}},
		{"kotlin.Nothing", descriptor.KindClass, descriptor.Final, 0, []string{}},
		{"kotlin.Unit", descriptor.KindObject, descriptor.Final, 0, []string{"kotlin.Any"}},
		{"kotlin.Int", descriptor.KindClass, descriptor.Final, 0, []string{"kotlin.Number", "kotlin.Comparable<kotlin.Int>"}},
		{"kotlin.Array", descriptor.KindClass, descriptor.Final, 1, []string{"kotlin.Cloneable"}},
		{"kotlin.Comparable", descriptor.KindInterface, descriptor.Abstract, 1, []string{}},
		{"kotlin.Enum", descriptor.KindClass, descriptor.Abstract, 1, []string{"kotlin.Comparable<E>"}},
		{"kotlin.DeprecationLevel", descriptor.KindEnumClass, descriptor.Final, 0, []string{"kotlin.Enum<kotlin.DeprecationLevel>"}},
		{"kotlin.Deprecated", descriptor.KindAnnotationClass, descriptor.Final, 0, []string{"kotlin.Annotation"}},
		{"kotlin.collections.MutableList", descriptor.KindInterface, descriptor.Abstract, 1,
			[]string{"kotlin.collections.List<E>", "kotlin.collections.MutableCollection<E>"}},
		{"kotlin.ranges.IntRange", descriptor.KindClass, descriptor.Final, 0,
			[]string{"kotlin.ranges.IntProgression", "kotlin.ranges.ClosedRange<kotlin.Int>"}},
		{"kotlin.reflect.KProperty1", descriptor.KindInterface, descriptor.Abstract, 2,
			[]string{"kotlin.reflect.KProperty<V>", "kotlin.Function1<T, V>"}},
	}

	for _, tt := range tests {
		t.Run(tt.fq, func(t *testing.T) {
			c := classOf(t, p, name.Parse(tt.fq))
			if got := descriptor.FqNameOf(c).String(); got != tt.fq {
				t.Errorf("FqNameOf() = %s, want %s", got, tt.fq)
			}
			if c.Kind() != tt.kind {
				t.Errorf("Kind() = %v, want %v", c.Kind(), tt.kind)
			}
			if c.Modality() != tt.modality {
				t.Errorf("Modality() = %v, want %v", c.Modality(), tt.modality)
			}
			if got := len(c.TypeParameters()); got != tt.params {
				t.Errorf("len(TypeParameters()) = %d, want %d", got, tt.params)
			}
			got := typeStrings(c.Supertypes())
			if strings.Join(got, ", ") != strings.Join(tt.supertypes, ", ") {
				t.Errorf("Supertypes() = %v, want %v", got, tt.supertypes)
			}
		})
	}
}

func TestProvider_ClassIdentity(t *testing.T) {
	p := newBundleProvider(t)
	intName := name.Parse("kotlin.Int")

	first := classOf(t, p, intName)
	scope := fragmentOf(t, p, kotlin).MemberScope()
	var g errgroup.Group
	for range 16 {
		g.Go(func() error {
			if got := scope.ClassifierNamed(intName.ShortName()); got != descriptor.Classifier(first) {
				return errors.New("lookup returned a different descriptor")
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		t.Fatal(err)
	}

	// A reference from another class resolves to the same descriptor.
	number := classOf(t, p, name.Parse("kotlin.Number"))
	toInt := number.UnsubstitutedMemberScope().Functions(name.Identifier("toInt"))
	if len(toInt) != 1 {
		t.Fatalf("Number.toInt overloads = %d, want 1", len(toInt))
	}
	if got := toInt[0].ReturnType().Class(); got != first {
		t.Errorf("Number.toInt() returns %v, want the Int descriptor", got)
	}
}

func TestProvider_TypeParameters(t *testing.T) {
	p := newBundleProvider(t)

	enum := classOf(t, p, name.Parse("kotlin.Enum"))
	e := enum.TypeParameters()[0]
	bounds := typeStrings(e.UpperBounds())
	if len(bounds) != 1 || bounds[0] != "kotlin.Enum<E>" {
		t.Errorf("Enum.E bounds = %v, want [kotlin.Enum<E>]", bounds)
	}
	if got := e.UpperBounds()[0].Arguments()[0].Type.Classifier(); got != descriptor.Classifier(e) {
		t.Errorf("bound argument = %v, want E itself", got)
	}

	comparable := classOf(t, p, name.Parse("kotlin.Comparable"))
	if got := comparable.TypeParameters()[0].Variance(); got != descriptor.In {
		t.Errorf("Comparable.T variance = %v, want in", got)
	}

	arrayOf := fragmentOf(t, p, kotlin).MemberScope().Functions(name.Identifier("arrayOf"))
	if len(arrayOf) != 1 {
		t.Fatalf("arrayOf overloads = %d, want 1", len(arrayOf))
	}
	fn := arrayOf[0]
	if !fn.TypeParameters()[0].IsReified() {
		t.Error("arrayOf.T is not reified")
	}
	if got := fn.ReturnType().String(); got != "kotlin.Array<T>" {
		t.Errorf("arrayOf() returns %s, want kotlin.Array<T>", got)
	}
	if got := fn.ReturnType().Arguments()[0].Type.Classifier(); got != descriptor.Classifier(fn.TypeParameters()[0]) {
		t.Errorf("arrayOf return argument = %v, want the function's T", got)
	}
	if vp := fn.ValueParameters()[0]; !vp.IsVararg() {
		t.Error("arrayOf elements is not vararg")
	}
}

func TestProvider_Members(t *testing.T) {
	p := newBundleProvider(t)

	intClass := classOf(t, p, name.Parse("kotlin.Int"))
	scope := intClass.UnsubstitutedMemberScope()
	if got := len(scope.Functions(name.Identifier("plus"))); got != 3 {
		t.Errorf("Int.plus overloads = %d, want 3", got)
	}
	if got := scope.Functions(name.Identifier("missing")); got != nil {
		t.Errorf("Functions(missing) = %v, want nil", got)
	}

	companion := intClass.CompanionObject()
	if companion == nil || !companion.IsCompanionObject() {
		t.Fatalf("Int.CompanionObject() = %v, want a companion object", companion)
	}
	minValue := companion.UnsubstitutedMemberScope().Properties(name.Identifier("MIN_VALUE"))
	if len(minValue) != 1 || minValue[0].Type().Class() != intClass {
		t.Errorf("Int.Companion.MIN_VALUE = %v, want one property of type Int", minValue)
	}

	names := scope.FunctionNames()
	for i := 1; i < len(names); i++ {
		if names[i-1].String() > names[i].String() {
			t.Errorf("FunctionNames() not sorted: %v", names)
			break
		}
	}

	throwable := classOf(t, p, name.Parse("kotlin.Throwable"))
	ctors := throwable.Constructors()
	if len(ctors) != 4 {
		t.Errorf("Throwable constructors = %d, want 4", len(ctors))
	}
	if primary := throwable.UnsubstitutedPrimaryConstructor(); primary == nil || len(primary.ValueParameters()) != 2 {
		t.Errorf("Throwable primary constructor = %v, want two parameters", primary)
	}

	deprecated := classOf(t, p, name.Parse("kotlin.Deprecated"))
	params := deprecated.UnsubstitutedPrimaryConstructor().ValueParameters()
	if len(params) != 3 || params[0].HasDefault() || !params[2].HasDefault() {
		t.Errorf("Deprecated constructor parameters = %v, want message without default and level with one", params)
	}

	plus := fragmentOf(t, p, kotlin).MemberScope().Functions(name.Identifier("plus"))
	if len(plus) != 1 || plus[0].ExtensionReceiverType().String() != "kotlin.String?" {
		t.Errorf("top-level plus = %v, want an extension on kotlin.String?", plus)
	}
}

func TestProvider_NestedClasses(t *testing.T) {
	p := newBundleProvider(t)

	m := classOf(t, p, name.Parse("kotlin.collections.Map"))
	entry, ok := m.UnsubstitutedInnerClassesScope().ClassifierNamed(name.Identifier("Entry")).(descriptor.ClassDescriptor)
	if !ok {
		t.Fatal("Map.Entry not found")
	}
	if got := descriptor.FqNameOf(entry).String(); got != "kotlin.collections.Map.Entry" {
		t.Errorf("FqNameOf(Map.Entry) = %s", got)
	}
	if entry.ContainingDeclaration() != descriptor.Declaration(m) {
		t.Error("Map.Entry is not contained in Map")
	}

	entries := m.UnsubstitutedMemberScope().Properties(name.Identifier("entries"))
	if len(entries) != 1 {
		t.Fatalf("Map.entries = %v", entries)
	}
	if got := entries[0].Type().String(); got != "kotlin.collections.Set<kotlin.collections.Map.Entry<K, V>>" {
		t.Errorf("Map.entries type = %s", got)
	}

	level := classOf(t, p, name.Parse("kotlin.DeprecationLevel"))
	var got []string
	for _, n := range level.UnsubstitutedInnerClassesScope().ClassifierNames() {
		got = append(got, n.String())
	}
	if strings.Join(got, ",") != "ERROR,HIDDEN,WARNING" {
		t.Errorf("DeprecationLevel entries = %v, want ERROR,HIDDEN,WARNING", got)
	}
	warning := level.UnsubstitutedInnerClassesScope().ClassifierNamed(name.Identifier("WARNING")).(descriptor.ClassDescriptor)
	if warning.Kind() != descriptor.KindEnumEntry {
		t.Errorf("WARNING kind = %v, want enum entry", warning.Kind())
	}
}

func TestProvider_FunctionClasses(t *testing.T) {
	p := newBundleProvider(t)
	scope := fragmentOf(t, p, kotlin).MemberScope()

	f2, ok := scope.ClassifierNamed(name.Identifier("Function2")).(descriptor.ClassDescriptor)
	if !ok {
		t.Fatal("Function2 not found")
	}
	if f2.Kind() != descriptor.KindInterface {
		t.Errorf("Function2 kind = %v, want interface", f2.Kind())
	}
	tps := f2.TypeParameters()
	if len(tps) != 3 {
		t.Fatalf("Function2 has %d type parameters, want 3", len(tps))
	}
	wantNames := []string{"P1", "P2", "R"}
	wantVariance := []descriptor.Variance{descriptor.In, descriptor.In, descriptor.Out}
	for i, tp := range tps {
		if tp.Name().String() != wantNames[i] || tp.Variance() != wantVariance[i] {
			t.Errorf("type parameter %d = %v %v, want %v %s", i, tp.Variance(), tp.Name(), wantVariance[i], wantNames[i])
		}
	}
	if got := typeStrings(f2.Supertypes()); len(got) != 1 || got[0] != "kotlin.Function<R>" {
		t.Errorf("Function2 supertypes = %v, want [kotlin.Function<R>]", got)
	}
	invoke := f2.UnsubstitutedMemberScope().Functions(name.Identifier("invoke"))
	if len(invoke) != 1 || len(invoke[0].ValueParameters()) != 2 {
		t.Errorf("Function2.invoke = %v, want one function of two parameters", invoke)
	}

	if again := scope.ClassifierNamed(name.Identifier("Function2")); again != descriptor.Classifier(f2) {
		t.Error("second lookup of Function2 returned a different descriptor")
	}

	f0, ok := scope.ClassifierNamed(name.Identifier("Function0")).(descriptor.ClassDescriptor)
	if !ok || len(f0.TypeParameters()) != 1 {
		t.Errorf("Function0 = %v, want a class with one type parameter", f0)
	}

	for _, n := range []string{"Function02", "Function256", "FunctionX", "Function"} {
		c := scope.ClassifierNamed(name.Identifier(n))
		if n == "Function" {
			if c == nil {
				t.Error("declared Function not found")
			}
			continue
		}
		if c != nil {
			t.Errorf("ClassifierNamed(%s) = %v, want nil", n, c)
		}
	}

	colScope := fragmentOf(t, p, collections).MemberScope()
	if c := colScope.ClassifierNamed(name.Identifier("Function1")); c != nil {
		t.Errorf("kotlin.collections.Function1 = %v, want nil", c)
	}
}

func TestProvider_Annotations(t *testing.T) {
	p := newBundleProvider(t)
	deprecated := name.Parse("kotlin.Deprecated")

	char := classOf(t, p, name.Parse("kotlin.Char"))
	toByte := char.UnsubstitutedMemberScope().Functions(name.Identifier("toByte"))
	if len(toByte) != 1 {
		t.Fatalf("Char.toByte = %v", toByte)
	}
	ann, ok := toByte[0].Annotations().Find(deprecated)
	if !ok {
		t.Fatal("Char.toByte is not annotated with Deprecated")
	}
	if got := ann.Arguments["level"]; got != "WARNING" {
		t.Errorf("level = %q, want WARNING", got)
	}
	if got := ann.Arguments["message"]; got != "Use code property instead" {
		t.Errorf("message = %q", got)
	}

	target := classOf(t, p, deprecated).Annotations()
	if !target.Has(name.Parse("kotlin.annotation.Target")) {
		t.Error("Deprecated is not annotated with kotlin.annotation.Target")
	}
}

func TestProvider_Accessors(t *testing.T) {
	p, err := newFileProvider(t, map[string]string{
		"kotlin/kotlin.builtins": strings.Join([]string{
			"decl=class&name=Any&modality=open",
			"decl=class&name=Int",
			"decl=class&name=Deprecated&kind=annotation_class",
			"decl=property&name=answer&type=Int&getter_ann=Deprecated",
			"decl=property&name=counter&type=Int&mutable=true&setter_ann=Deprecated",
		}, "\n"),
	}, kotlin)
	if err != nil {
		t.Fatal(err)
	}
	scope := fragmentOf(t, p, kotlin).MemberScope()
	deprecated := name.Parse("kotlin.Deprecated")

	answer := scope.Properties(name.Identifier("answer"))[0]
	if answer.IsVar() || answer.Setter() != nil {
		t.Error("val answer has a setter")
	}
	if !answer.Getter().Annotations().Has(deprecated) {
		t.Error("answer getter is not deprecated")
	}
	if answer.Annotations().Has(deprecated) {
		t.Error("answer property itself is deprecated")
	}

	counter := scope.Properties(name.Identifier("counter"))[0]
	if !counter.IsVar() || counter.Setter() == nil {
		t.Fatal("var counter has no setter")
	}
	if counter.Getter().Annotations().Has(deprecated) {
		t.Error("counter getter is deprecated")
	}
	if !counter.Setter().Annotations().Has(deprecated) {
		t.Error("counter setter is not deprecated")
	}
}

func TestNew_InvalidFiles(t *testing.T) {
	tests := []struct {
		name    string
		content string
		line    int
	}{
		{"unknown decl", "decl=typealias&name=A", 1},
		{"unknown key", "decl=class&name=A&colour=red", 1},
		{"missing name", "decl=class&kind=interface", 1},
		{"dotted name", "decl=class&name=A.B", 1},
		{"function without return type", "decl=class&name=A\ndecl=fun&owner=A&name=f", 2},
		{"property without type", "decl=property&name=p", 1},
		{"constructor without owner", "decl=constructor&primary=true", 1},
		{"bad type expression", "decl=class&name=A&super=List<", 1},
		{"bad type parameter", "decl=class&name=A&tp=sealed T", 1},
		{"bad value parameter", "decl=fun&name=f&returns=A&param=x", 1},
		{"bad annotation", "decl=class&name=A&ann=receiver:B", 1},
		{"bad kind", "decl=class&name=A&kind=struct", 1},
		{"receiver on property", "decl=property&name=p&type=A&receiver=A", 1},
		{"malformed query", "# header\n\ndecl=class&name=%zz", 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := newFileProvider(t, map[string]string{"kotlin/kotlin.builtins": tt.content}, kotlin)
			if got := contract.CodeOf(err); got != contract.CodeInvalidMetadata {
				t.Fatalf("New() error = %v, want code %s", err, contract.CodeInvalidMetadata)
			}
			var ce *contract.Error
			errors.As(err, &ce)
			if got := ce.Details["line"]; got != tt.line {
				t.Errorf("line = %v, want %d", got, tt.line)
			}
			if got := ce.Details["path"]; got != "kotlin/kotlin.builtins" {
				t.Errorf("path = %v, want kotlin/kotlin.builtins", got)
			}
		})
	}
}

func TestNew_InvalidStructure(t *testing.T) {
	tests := []struct {
		name    string
		content string
		errMsg  string
	}{
		{"duplicate class", "decl=class&name=A\ndecl=class&name=A", "declared twice"},
		{"undeclared outer", "decl=class&name=B&outer=A", "outer class A"},
		{"undeclared owner", "decl=fun&owner=A&name=f&returns=A", "owner A"},
		{"undeclared constructor owner", "decl=constructor&owner=A", "owner A"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := newFileProvider(t, map[string]string{"kotlin/kotlin.builtins": tt.content}, kotlin)
			if got := contract.CodeOf(err); got != contract.CodeInvalidMetadata {
				t.Fatalf("New() error = %v, want code %s", err, contract.CodeInvalidMetadata)
			}
			if !strings.Contains(err.Error(), tt.errMsg) {
				t.Errorf("New() error = %q, should contain %q", err, tt.errMsg)
			}
		})
	}
}

func TestNew_LoaderError(t *testing.T) {
	boom := errors.New("disk on fire")
	var calls atomic.Int32
	loader := resource.LoaderFunc(func(ctx context.Context, path string) (io.ReadCloser, error) {
		calls.Add(1)
		return nil, boom
	})
	_, err := metadata.New(context.Background(), metadata.Params{
		Module:   descriptor.NewModule(name.Special("<test built-ins>")),
		Packages: []name.FqName{kotlin, collections},
		Loader:   loader,
		Logger:   discardLogger(),
	})
	if !errors.Is(err, boom) {
		t.Errorf("New() error = %v, want %v", err, boom)
	}
	if calls.Load() == 0 {
		t.Error("loader was not called")
	}
}

func TestProvider_LazyResolution(t *testing.T) {
	p, err := newFileProvider(t, map[string]string{
		"kotlin/kotlin.builtins": strings.Join([]string{
			"decl=class&name=Any",
			"decl=class&name=Broken&super=Missing",
			"decl=class&name=Box&tp=T&super=Any",
			"decl=fun&owner=Box&name=wrong&returns=Any<Any>",
			"decl=class&name=Node&tp=T : Node<*>",
		}, "\n"),
	}, kotlin)
	if err != nil {
		t.Fatalf("New() error = %v, want unresolved references to surface lazily", err)
	}

	broken := classOf(t, p, name.Parse("kotlin.Broken"))
	ce := expectCode(t, contract.CodeInvalidMetadata, func() { broken.Supertypes() })
	if !strings.Contains(ce.Message, "kotlin.Missing") {
		t.Errorf("message = %q, should name kotlin.Missing", ce.Message)
	}

	box := classOf(t, p, name.Parse("kotlin.Box"))
	expectCode(t, contract.CodeInvalidMetadata, func() {
		box.UnsubstitutedMemberScope().Functions(name.Identifier("wrong"))
	})

	node := classOf(t, p, name.Parse("kotlin.Node"))
	bound := node.TypeParameters()[0].UpperBounds()
	if len(bound) != 1 || bound[0].String() != "kotlin.Node<*>" {
		t.Fatalf("Node.T bounds = %v, want [kotlin.Node<*>]", bound)
	}
	star := bound[0].Arguments()[0]
	if got := star.ProjectedType(); got != node.TypeParameters()[0].StarType() || got.String() != "kotlin.Node<*>" {
		t.Errorf("Node<*> argument projects %v, want kotlin.Node<*>", got)
	}
}

func TestProvider_StarProjections(t *testing.T) {
	files := map[string]string{
		"kotlin/kotlin.builtins": strings.Join([]string{
			"decl=class&name=Any",
			"decl=class&name=Comparable&kind=interface&tp=in T",
			"decl=class&name=Enum&modality=abstract&tp=E : Enum<E>&super=Comparable<E>",
			"decl=class&name=Box&tp=out T",
			"decl=fun&owner=Box&name=get&returns=T",
			"decl=class&name=Holder",
			"decl=property&owner=Holder&name=anyBox&type=Box<*>",
			"decl=property&owner=Holder&name=someEnum&type=Enum<*>?",
		}, "\n"),
	}
	newProvider := func(t *testing.T, defaultBound string) (*metadata.Provider, error) {
		t.Helper()
		loader := resource.NewMemoryLoader()
		for path, content := range files {
			if err := loader.Add(path, []byte(content)); err != nil {
				t.Fatal(err)
			}
		}
		module := descriptor.NewModule(name.Special("<test built-ins>"))
		p, err := metadata.New(context.Background(), metadata.Params{
			Module:       module,
			Packages:     []name.FqName{kotlin},
			Loader:       loader,
			Logger:       discardLogger(),
			DefaultBound: defaultBound,
		})
		if err != nil {
			return nil, err
		}
		module.Initialize(p)
		module.SetDependencies(module)
		return p, nil
	}
	property := func(t *testing.T, p *metadata.Provider, pname string) *descriptor.Type {
		t.Helper()
		holder := classOf(t, p, name.Parse("kotlin.Holder"))
		return holder.UnsubstitutedMemberScope().Properties(name.Identifier(pname))[0].Type()
	}

	t.Run("default bound", func(t *testing.T) {
		p, err := newProvider(t, "kotlin/Any?")
		if err != nil {
			t.Fatalf("New() error = %v", err)
		}

		box := classOf(t, p, name.Parse("kotlin.Box"))
		if got := typeStrings(box.TypeParameters()[0].UpperBounds()); len(got) != 1 || got[0] != "kotlin.Any?" {
			t.Errorf("Box.T bounds = %v, want [kotlin.Any?]", got)
		}

		anyBox := property(t, p, "anyBox")
		arg := anyBox.Arguments()[0]
		if !arg.IsStar() {
			t.Fatalf("argument of %v is not a star", anyBox)
		}
		if got := arg.ProjectedType().String(); got != "kotlin.Any?" {
			t.Errorf("Box<*> argument projects %s, want kotlin.Any?", got)
		}
		get := anyBox.MemberScope().Functions(name.Identifier("get"))[0]
		if got := get.ReturnType().String(); got != "kotlin.Any?" {
			t.Errorf("Box<*>.get() returns %s, want kotlin.Any?", got)
		}

		someEnum := property(t, p, "someEnum")
		if got := someEnum.String(); got != "kotlin.Enum<*>?" {
			t.Errorf("someEnum type = %s, want kotlin.Enum<*>?", got)
		}
		projected := someEnum.Arguments()[0].ProjectedType()
		if got := projected.String(); got != "kotlin.Enum<*>" {
			t.Errorf("Enum<*> argument projects %s, want kotlin.Enum<*>", got)
		}
		if projected.Arguments()[0].ProjectedType() != projected {
			t.Error("star type of Enum.E is not computed once")
		}
	})

	t.Run("no default bound", func(t *testing.T) {
		p, err := newProvider(t, "")
		if err != nil {
			t.Fatalf("New() error = %v", err)
		}
		box := classOf(t, p, name.Parse("kotlin.Box"))
		if got := box.TypeParameters()[0].UpperBounds(); len(got) != 0 {
			t.Errorf("Box.T bounds = %v, want none", got)
		}
		arg := property(t, p, "anyBox").Arguments()[0]
		ce := expectCode(t, contract.CodeMissingBuiltin, func() { arg.ProjectedType() })
		if ce.Entity != "kotlin.Box.T" {
			t.Errorf("Entity = %q, want kotlin.Box.T", ce.Entity)
		}

		// A bounded parameter still projects its own bound.
		if got := property(t, p, "someEnum").Arguments()[0].ProjectedType().String(); got != "kotlin.Enum<*>" {
			t.Errorf("Enum<*> argument projects %s, want kotlin.Enum<*>", got)
		}
	})

	for _, bad := range []string{"Any?", "kotlin/Any<"} {
		t.Run("invalid "+bad, func(t *testing.T) {
			if _, err := newProvider(t, bad); err == nil {
				t.Errorf("New() with default bound %q succeeded", bad)
			}
		})
	}
}

func TestProvider_InnerClassTypeParameters(t *testing.T) {
	p, err := newFileProvider(t, map[string]string{
		"kotlin/kotlin.builtins": strings.Join([]string{
			"decl=class&name=Outer&tp=T",
			"decl=class&outer=Outer&name=Inner&inner=true",
			"decl=property&owner=Outer.Inner&name=value&type=T",
			"decl=class&outer=Outer&name=Nested",
			"decl=property&owner=Outer.Nested&name=value&type=T",
		}, "\n"),
	}, kotlin)
	if err != nil {
		t.Fatal(err)
	}
	outer := classOf(t, p, name.Parse("kotlin.Outer"))
	inners := outer.UnsubstitutedInnerClassesScope()

	inner := inners.ClassifierNamed(name.Identifier("Inner")).(descriptor.ClassDescriptor)
	value := inner.UnsubstitutedMemberScope().Properties(name.Identifier("value"))[0]
	if value.Type().Classifier() != descriptor.Classifier(outer.TypeParameters()[0]) {
		t.Errorf("Inner.value type = %v, want Outer's T", value.Type())
	}

	nested := inners.ClassifierNamed(name.Identifier("Nested")).(descriptor.ClassDescriptor)
	expectCode(t, contract.CodeInvalidMetadata, func() {
		nested.UnsubstitutedMemberScope().Properties(name.Identifier("value"))
	})
}
