package metadata

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/broady/builtins/descriptor"
	"github.com/broady/builtins/name"
)

// MaxFunctionArity is the largest N for which FunctionN is synthesized.
const MaxFunctionArity = 255

var invokeName = name.Identifier("invoke")

// functionArity reports whether id names a FunctionN interface that is
// synthesized rather than declared, and its arity. N is written without
// sign or leading zeros.
func (p *Provider) functionArity(id classID) (int, bool) {
	if p.functionPackage.IsRoot() || id.pkg != p.functionPackage {
		return 0, false
	}
	pd, ok := p.packages[id.pkg]
	if !ok {
		return 0, false
	}
	if _, declared := pd.classes[id.relative]; declared {
		return 0, false
	}
	digits, ok := strings.CutPrefix(id.relative, "Function")
	if !ok || digits == "" {
		return 0, false
	}
	n, err := strconv.Atoi(digits)
	if err != nil || n < 0 || n > MaxFunctionArity || strconv.Itoa(n) != digits {
		return 0, false
	}
	return n, true
}

// synthesizeFunctionClass builds
//
//	interface FunctionN<in P1, ..., in PN, out R> : Function<R> {
//	    fun invoke(p1: P1, ..., pN: PN): R
//	}
//
// in the function package. The supertype is omitted when the package does
// not declare a single-parameter Function.
func (p *Provider) synthesizeFunctionClass(arity int) *descriptor.Class {
	pd := p.packages[p.functionPackage]

	specs := make([]descriptor.TypeParameterSpec, arity+1)
	for i := range arity {
		specs[i] = descriptor.TypeParameterSpec{
			Name:        name.Identifier(fmt.Sprintf("P%d", i+1)),
			Variance:    descriptor.In,
			UpperBounds: p.defaultUpperBounds(),
		}
	}
	specs[arity] = descriptor.TypeParameterSpec{
		Name:        name.Identifier("R"),
		Variance:    descriptor.Out,
		UpperBounds: p.defaultUpperBounds(),
	}

	c := descriptor.NewClass(p.sm, pd.fragment, descriptor.ClassHeader{
		Name:           name.Identifier(fmt.Sprintf("Function%d", arity)),
		Kind:           descriptor.KindInterface,
		Modality:       descriptor.Abstract,
		TypeParameters: specs,
		Supertypes: func(c *descriptor.Class) []*descriptor.Type {
			base := p.classByID(classID{pkg: p.functionPackage, relative: "Function"})
			if base == nil || len(base.TypeParameters()) != 1 {
				return nil
			}
			r := c.TypeParameters()[arity]
			return []*descriptor.Type{
				descriptor.NewType(base, []descriptor.TypeProjection{descriptor.NewProjection(descriptor.Invariant, r.DefaultType())}, false),
			}
		},
	})

	tps := c.TypeParameters()
	invoke := descriptor.NewFunction(p.sm, c, descriptor.FunctionHeader{
		Name:     invokeName,
		Modality: descriptor.Abstract,
		Signature: func([]*descriptor.TypeParameter) descriptor.Signature {
			params := make([]descriptor.ValueParameterSpec, arity)
			for i := range arity {
				params[i] = descriptor.ValueParameterSpec{
					Name: name.Identifier(fmt.Sprintf("p%d", i+1)),
					Type: tps[i].DefaultType(),
				}
			}
			return descriptor.Signature{ValueParameters: params, ReturnType: tps[arity].DefaultType()}
		},
	})
	c.Initialize(descriptor.ClassMembers{Scope: descriptor.NewScope(invoke)})

	p.logger.Debug("synthesized function class", slog.Int("arity", arity))
	return c
}
