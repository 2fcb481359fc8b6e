package name

import (
	"strings"

	"github.com/broady/builtins/contract"
)

// FqName is a dot-separated qualified name such as "kotlin.collections.List".
// FqName is comparable; two names are equal iff their segment sequences are
// equal. The zero value is the root name.
type FqName struct {
	s string
}

// Root is the empty qualified name.
var Root = FqName{}

// TopLevel returns the single-segment qualified name n.
func TopLevel(n Name) FqName {
	return Root.Child(n)
}

// Parse parses a dot-separated qualified name. The empty string yields Root.
// It panics if any segment is not a valid identifier.
func Parse(s string) FqName {
	if s == "" {
		return Root
	}
	for _, seg := range strings.Split(s, ".") {
		Identifier(seg)
	}
	return FqName{s: s}
}

// IsRoot reports whether f is the root name.
func (f FqName) IsRoot() bool {
	return f.s == ""
}

// Child returns the name f.n.
func (f FqName) Child(n Name) FqName {
	contract.Check(!n.IsZero(), contract.CodeInvalidName, "empty child of %q", f.s)
	if f.IsRoot() {
		return FqName{s: n.value}
	}
	return FqName{s: f.s + "." + n.value}
}

// ChildString is shorthand for f.Child(Identifier(s)).
func (f FqName) ChildString(s string) FqName {
	return f.Child(Identifier(s))
}

// Parent returns f without its last segment. It panics on the root name.
func (f FqName) Parent() FqName {
	contract.Check(!f.IsRoot(), contract.CodeInvalidName, "root name has no parent")
	i := strings.LastIndexByte(f.s, '.')
	if i < 0 {
		return Root
	}
	return FqName{s: f.s[:i]}
}

// ShortName returns the last segment of f. It panics on the root name.
func (f FqName) ShortName() Name {
	contract.Check(!f.IsRoot(), contract.CodeInvalidName, "root name has no short name")
	i := strings.LastIndexByte(f.s, '.')
	return Name{value: f.s[i+1:]}
}

// Segments returns the segments of f, outermost first.
func (f FqName) Segments() []Name {
	if f.IsRoot() {
		return nil
	}
	parts := strings.Split(f.s, ".")
	segs := make([]Name, len(parts))
	for i, p := range parts {
		segs[i] = Name{value: p}
	}
	return segs
}

// StartsWith reports whether prefix is f or one of its ancestors.
func (f FqName) StartsWith(prefix FqName) bool {
	if prefix.IsRoot() {
		return true
	}
	return f.s == prefix.s || strings.HasPrefix(f.s, prefix.s+".")
}

// String returns the dotted form of f; the root name is "".
func (f FqName) String() string {
	return f.s
}
