package metadata

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/broady/builtins/descriptor"
	"github.com/broady/builtins/name"
)

// typeExpr is a parsed type expression such as
// kotlin/collections/Map.Entry<K, out V>?.
type typeExpr struct {
	// pkg is the slash-separated package path, or "" for a name relative
	// to the current package or a type parameter.
	pkg      string
	names    []string
	args     []argExpr
	nullable bool
}

type argExpr struct {
	star     bool
	variance descriptor.Variance
	typ      *typeExpr
}

// packageName converts the package path of e, defaulting to current.
func (e *typeExpr) packageName(current name.FqName) name.FqName {
	if e.pkg == "" {
		return current
	}
	return name.Parse(strings.ReplaceAll(e.pkg, "/", "."))
}

// isTypeParameterCandidate reports whether e may name a type parameter.
func (e *typeExpr) isTypeParameterCandidate() bool {
	return e.pkg == "" && len(e.names) == 1 && len(e.args) == 0
}

func (e *typeExpr) relativeName() string {
	return strings.Join(e.names, ".")
}

func parseTypeExpr(s string) (*typeExpr, error) {
	p := &typeParser{s: s}
	t, err := p.parseType()
	if err != nil {
		return nil, err
	}
	p.skipSpace()
	if p.pos != len(p.s) {
		return nil, p.errorf("unexpected %q", p.s[p.pos:])
	}
	return t, nil
}

type typeParser struct {
	s   string
	pos int
}

func (p *typeParser) errorf(format string, args ...any) error {
	return fmt.Errorf("type %q at offset %d: %s", p.s, p.pos, fmt.Sprintf(format, args...))
}

func (p *typeParser) skipSpace() {
	for p.pos < len(p.s) && p.s[p.pos] == ' ' {
		p.pos++
	}
}

func (p *typeParser) consume(c byte) bool {
	if p.pos < len(p.s) && p.s[p.pos] == c {
		p.pos++
		return true
	}
	return false
}

// keyword consumes kw when it is followed by a space.
func (p *typeParser) keyword(kw string) bool {
	if strings.HasPrefix(p.s[p.pos:], kw+" ") {
		p.pos += len(kw) + 1
		return true
	}
	return false
}

func (p *typeParser) scanRef() string {
	start := p.pos
	for p.pos < len(p.s) {
		r, size := utf8.DecodeRuneInString(p.s[p.pos:])
		if r != '/' && r != '.' && !isIdentRune(r) {
			break
		}
		p.pos += size
	}
	return p.s[start:p.pos]
}

func (p *typeParser) parseType() (*typeExpr, error) {
	p.skipSpace()
	ref := p.scanRef()
	if ref == "" {
		return nil, p.errorf("expected type name")
	}
	t := &typeExpr{}
	if i := strings.LastIndexByte(ref, '/'); i >= 0 {
		t.pkg = ref[:i]
		ref = ref[i+1:]
		for _, seg := range strings.Split(t.pkg, "/") {
			if !isIdentifier(seg) {
				return nil, p.errorf("invalid package %q", t.pkg)
			}
		}
	}
	if !validRelativeName(ref) {
		return nil, p.errorf("invalid class name %q", ref)
	}
	t.names = strings.Split(ref, ".")

	if p.consume('<') {
		for {
			arg, err := p.parseArg()
			if err != nil {
				return nil, err
			}
			t.args = append(t.args, arg)
			p.skipSpace()
			if p.consume(',') {
				continue
			}
			if p.consume('>') {
				break
			}
			return nil, p.errorf("expected ',' or '>'")
		}
	}
	t.nullable = p.consume('?')
	return t, nil
}

func (p *typeParser) parseArg() (argExpr, error) {
	p.skipSpace()
	if p.consume('*') {
		return argExpr{star: true}, nil
	}
	variance := descriptor.Invariant
	switch {
	case p.keyword("in"):
		variance = descriptor.In
	case p.keyword("out"):
		variance = descriptor.Out
	}
	t, err := p.parseType()
	if err != nil {
		return argExpr{}, err
	}
	return argExpr{variance: variance, typ: t}, nil
}

func isIdentRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

func isIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		if !isIdentRune(r) || (i == 0 && unicode.IsDigit(r)) {
			return false
		}
	}
	return true
}

// validRelativeName reports whether s is a dotted class name such as
// Map.Entry.
func validRelativeName(s string) bool {
	for _, seg := range strings.Split(s, ".") {
		if !isIdentifier(seg) {
			return false
		}
	}
	return true
}

// typeParamExpr is a parsed declaration such as "out reified T : Any?".
type typeParamExpr struct {
	variance descriptor.Variance
	reified  bool
	name     string
	bound    *typeExpr
}

func parseTypeParam(s string) (typeParamExpr, error) {
	var tp typeParamExpr
	head, bound, hasBound := strings.Cut(s, ":")
	fields := strings.Fields(head)
	if len(fields) == 0 {
		return tp, fmt.Errorf("type parameter %q: missing name", s)
	}
	for _, mod := range fields[:len(fields)-1] {
		switch mod {
		case "in":
			tp.variance = descriptor.In
		case "out":
			tp.variance = descriptor.Out
		case "reified":
			tp.reified = true
		default:
			return tp, fmt.Errorf("type parameter %q: unknown modifier %q", s, mod)
		}
	}
	tp.name = fields[len(fields)-1]
	if !isIdentifier(tp.name) {
		return tp, fmt.Errorf("type parameter %q: invalid name", s)
	}
	if hasBound {
		t, err := parseTypeExpr(strings.TrimSpace(bound))
		if err != nil {
			return tp, err
		}
		tp.bound = t
	}
	return tp, nil
}

// valueParamExpr is a parsed declaration such as "vararg elements: T" or
// "level: DeprecationLevel =" (the trailing '=' marks a default value).
type valueParamExpr struct {
	name       string
	vararg     bool
	hasDefault bool
	typ        *typeExpr
}

func parseValueParam(s string) (valueParamExpr, error) {
	var vp valueParamExpr
	decl, _, hasDefault := strings.Cut(s, "=")
	vp.hasDefault = hasDefault
	head, typ, ok := strings.Cut(decl, ":")
	if !ok {
		return vp, fmt.Errorf("value parameter %q: missing type", s)
	}
	fields := strings.Fields(head)
	switch {
	case len(fields) == 2 && fields[0] == "vararg":
		vp.vararg = true
		vp.name = fields[1]
	case len(fields) == 1:
		vp.name = fields[0]
	default:
		return vp, fmt.Errorf("value parameter %q: invalid declaration", s)
	}
	if !isIdentifier(vp.name) {
		return vp, fmt.Errorf("value parameter %q: invalid name", s)
	}
	t, err := parseTypeExpr(strings.TrimSpace(typ))
	if err != nil {
		return vp, err
	}
	vp.typ = t
	return vp, nil
}

// annotationExpr is a parsed annotation such as
// get:kotlin/Deprecated(level=ERROR).
type annotationExpr struct {
	target descriptor.UseSiteTarget
	class  *typeExpr
	args   map[string]string
}

var useSiteTargets = map[string]descriptor.UseSiteTarget{
	"field":    descriptor.TargetField,
	"property": descriptor.TargetProperty,
	"get":      descriptor.TargetGetter,
	"set":      descriptor.TargetSetter,
	"param":    descriptor.TargetParam,
}

func parseAnnotation(s string) (annotationExpr, error) {
	var a annotationExpr
	if prefix, rest, ok := strings.Cut(s, ":"); ok {
		target, known := useSiteTargets[prefix]
		if !known {
			return a, fmt.Errorf("annotation %q: unknown use-site target %q", s, prefix)
		}
		a.target = target
		s = rest
	}
	ref, args, hasArgs := strings.Cut(s, "(")
	if hasArgs {
		body, ok := strings.CutSuffix(args, ")")
		if !ok {
			return a, fmt.Errorf("annotation %q: unterminated arguments", s)
		}
		a.args = make(map[string]string)
		for _, pair := range strings.Split(body, ",") {
			k, v, ok := strings.Cut(pair, "=")
			k = strings.TrimSpace(k)
			if !ok || !isIdentifier(k) {
				return a, fmt.Errorf("annotation %q: invalid argument %q", s, pair)
			}
			a.args[k] = strings.TrimSpace(v)
		}
	}
	t, err := parseTypeExpr(ref)
	if err != nil {
		return a, err
	}
	if len(t.args) > 0 || t.nullable {
		return a, fmt.Errorf("annotation %q: class name expected", s)
	}
	a.class = t
	return a, nil
}
