package metadata

import (
	"strings"
	"testing"

	"github.com/broady/builtins/descriptor"
	"github.com/broady/builtins/name"
)

// render prints e back in type expression syntax.
func render(e *typeExpr) string {
	var b strings.Builder
	if e.pkg != "" {
		b.WriteString(e.pkg)
		b.WriteByte('/')
	}
	b.WriteString(e.relativeName())
	if len(e.args) > 0 {
		b.WriteByte('<')
		for i, a := range e.args {
			if i > 0 {
				b.WriteString(", ")
			}
			switch {
			case a.star:
				b.WriteByte('*')
				continue
			case a.variance != descriptor.Invariant:
				b.WriteString(a.variance.String())
				b.WriteByte(' ')
			}
			b.WriteString(render(a.typ))
		}
		b.WriteByte('>')
	}
	if e.nullable {
		b.WriteByte('?')
	}
	return b.String()
}

func TestParseTypeExpr(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "Int", want: "Int"},
		{in: "kotlin/Int?", want: "kotlin/Int?"},
		{in: "kotlin/collections/Map.Entry<K, out V>", want: "kotlin/collections/Map.Entry<K, out V>"},
		{in: "Array<*>", want: "Array<*>"},
		{in: "Comparable<in T>", want: "Comparable<in T>"},
		{in: "Function1<Int,T?>?", want: "Function1<Int, T?>?"},
		{in: " Map< K , V > ", want: "Map<K, V>"},
		{in: "List<List<String>>", want: "List<List<String>>"},
		{in: "inner", want: "inner"},
		{in: "", wantErr: true},
		{in: "List<", wantErr: true},
		{in: "List<Int", wantErr: true},
		{in: "List<>", wantErr: true},
		{in: "kotlin//Int", wantErr: true},
		{in: "1Int", wantErr: true},
		{in: "Map..Entry", wantErr: true},
		{in: "List<Int>x", wantErr: true},
		{in: "Int??", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseTypeExpr(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseTypeExpr(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if err != nil {
				return
			}
			if s := render(got); s != tt.want {
				t.Errorf("parseTypeExpr(%q) = %q, want %q", tt.in, s, tt.want)
			}
		})
	}
}

func TestTypeExpr_Names(t *testing.T) {
	current := name.Parse("kotlin.collections")

	e, err := parseTypeExpr("Map.Entry<K, V>")
	if err != nil {
		t.Fatal(err)
	}
	if got := e.packageName(current); got != current {
		t.Errorf("packageName() = %v, want %v", got, current)
	}
	if got := e.relativeName(); got != "Map.Entry" {
		t.Errorf("relativeName() = %q, want %q", got, "Map.Entry")
	}
	if e.isTypeParameterCandidate() {
		t.Error("isTypeParameterCandidate() = true for a dotted name")
	}

	e, err = parseTypeExpr("kotlin/ranges/IntRange")
	if err != nil {
		t.Fatal(err)
	}
	if got, want := e.packageName(current), name.Parse("kotlin.ranges"); got != want {
		t.Errorf("packageName() = %v, want %v", got, want)
	}

	e, err = parseTypeExpr("T?")
	if err != nil {
		t.Fatal(err)
	}
	if !e.isTypeParameterCandidate() {
		t.Error("isTypeParameterCandidate() = false for T?")
	}
}

func TestParseTypeParam(t *testing.T) {
	tests := []struct {
		in       string
		name     string
		variance descriptor.Variance
		reified  bool
		bound    string
		wantErr  bool
	}{
		{in: "T", name: "T"},
		{in: "out E", name: "E", variance: descriptor.Out},
		{in: "in T", name: "T", variance: descriptor.In},
		{in: "reified T", name: "T", reified: true},
		{in: "E : Enum<E>", name: "E", bound: "Enum<E>"},
		{in: "out reified T : kotlin/Any?", name: "T", variance: descriptor.Out, reified: true, bound: "kotlin/Any?"},
		{in: "", wantErr: true},
		{in: "sealed T", wantErr: true},
		{in: "T : ", wantErr: true},
		{in: "1T", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseTypeParam(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseTypeParam(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if err != nil {
				return
			}
			if got.name != tt.name || got.variance != tt.variance || got.reified != tt.reified {
				t.Errorf("parseTypeParam(%q) = {%s %v %v}, want {%s %v %v}",
					tt.in, got.name, got.variance, got.reified, tt.name, tt.variance, tt.reified)
			}
			var bound string
			if got.bound != nil {
				bound = render(got.bound)
			}
			if bound != tt.bound {
				t.Errorf("parseTypeParam(%q) bound = %q, want %q", tt.in, bound, tt.bound)
			}
		})
	}
}

func TestParseValueParam(t *testing.T) {
	tests := []struct {
		in         string
		name       string
		typ        string
		vararg     bool
		hasDefault bool
		wantErr    bool
	}{
		{in: "index: Int", name: "index", typ: "Int"},
		{in: "vararg elements: T", name: "elements", typ: "T", vararg: true},
		{in: "level: DeprecationLevel =", name: "level", typ: "DeprecationLevel", hasDefault: true},
		{in: "init: Function1<Int, T>", name: "init", typ: "Function1<Int, T>"},
		{in: "other: Any? = null", name: "other", typ: "Any?", hasDefault: true},
		{in: "index", wantErr: true},
		{in: ": Int", wantErr: true},
		{in: "noinline block: Int", wantErr: true},
		{in: "x: List<", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseValueParam(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseValueParam(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if err != nil {
				return
			}
			if got.name != tt.name || render(got.typ) != tt.typ || got.vararg != tt.vararg || got.hasDefault != tt.hasDefault {
				t.Errorf("parseValueParam(%q) = {%s %s %v %v}, want {%s %s %v %v}",
					tt.in, got.name, render(got.typ), got.vararg, got.hasDefault,
					tt.name, tt.typ, tt.vararg, tt.hasDefault)
			}
		})
	}
}

func TestParseAnnotation(t *testing.T) {
	tests := []struct {
		in      string
		class   string
		target  descriptor.UseSiteTarget
		args    map[string]string
		wantErr bool
	}{
		{in: "Deprecated", class: "Deprecated"},
		{in: "kotlin/Deprecated", class: "kotlin/Deprecated"},
		{in: "get:Deprecated", class: "Deprecated", target: descriptor.TargetGetter},
		{in: "set:kotlin/Deprecated", class: "kotlin/Deprecated", target: descriptor.TargetSetter},
		{in: "field:Volatile", class: "Volatile", target: descriptor.TargetField},
		{
			in:    "Deprecated(message=Use code instead, level=ERROR)",
			class: "Deprecated",
			args:  map[string]string{"message": "Use code instead", "level": "ERROR"},
		},
		{
			in:    "kotlin/annotation/Target(allowedTargets=CLASS|FUNCTION)",
			class: "kotlin/annotation/Target",
			args:  map[string]string{"allowedTargets": "CLASS|FUNCTION"},
		},
		{in: "receiver:Deprecated", wantErr: true},
		{in: "Deprecated(message=x", wantErr: true},
		{in: "Deprecated(=x)", wantErr: true},
		{in: "List<Int>", wantErr: true},
		{in: "Deprecated?", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseAnnotation(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseAnnotation(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if err != nil {
				return
			}
			if s := render(got.class); s != tt.class {
				t.Errorf("parseAnnotation(%q) class = %q, want %q", tt.in, s, tt.class)
			}
			if got.target != tt.target {
				t.Errorf("parseAnnotation(%q) target = %v, want %v", tt.in, got.target, tt.target)
			}
			if len(got.args) != len(tt.args) {
				t.Fatalf("parseAnnotation(%q) args = %v, want %v", tt.in, got.args, tt.args)
			}
			for k, v := range tt.args {
				if got.args[k] != v {
					t.Errorf("parseAnnotation(%q) args[%s] = %q, want %q", tt.in, k, got.args[k], v)
				}
			}
		})
	}
}

func TestPackagePath(t *testing.T) {
	tests := []struct {
		fq   name.FqName
		want string
	}{
		{name.Parse("kotlin"), "kotlin/kotlin.builtins"},
		{name.Parse("kotlin.collections"), "kotlin/collections/collections.builtins"},
		{name.Root, "default-package.builtins"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := PackagePath(tt.fq); got != tt.want {
				t.Errorf("PackagePath(%v) = %q, want %q", tt.fq, got, tt.want)
			}
		})
	}
}
