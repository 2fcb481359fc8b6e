// Package name provides simple and fully qualified declaration names.
package name

import (
	"strings"

	"github.com/broady/builtins/contract"
)

// Name is a simple declaration name: either an identifier such as "Int" or a
// special name such as "<built-ins module>".
// The zero value is an empty, invalid name.
type Name struct {
	value   string
	special bool
}

// Identifier returns the identifier name s.
// It panics if s is empty or contains a '.' or '/' separator.
func Identifier(s string) Name {
	contract.Check(s != "" && !strings.ContainsAny(s, "./"), contract.CodeInvalidName, "invalid identifier %q", s)
	return Name{value: s}
}

// Special returns a special name. s must be enclosed in angle brackets.
func Special(s string) Name {
	contract.Check(len(s) > 2 && s[0] == '<' && s[len(s)-1] == '>', contract.CodeInvalidName, "special name %q must be enclosed in <>", s)
	return Name{value: s, special: true}
}

// String returns the name as written.
func (n Name) String() string {
	return n.value
}

// IsSpecial reports whether n is a special name.
func (n Name) IsSpecial() bool {
	return n.special
}

// IsZero reports whether n is the zero value.
func (n Name) IsZero() bool {
	return n.value == ""
}
