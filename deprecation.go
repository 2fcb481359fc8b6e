package builtins

import (
	"github.com/broady/builtins/descriptor"
	"github.com/broady/builtins/name"
)

// IsDeprecated reports whether d is annotated @Deprecated.
//
// An accessor is also deprecated by @get:Deprecated or @set:Deprecated on
// its property. A property without a direct annotation is deprecated when
// its getter is and, for a var, its setter exists and is deprecated too.
func IsDeprecated(d descriptor.Declaration) bool {
	if containsAnnotation(d, Names.Deprecated) {
		return true
	}
	if p, ok := d.(*descriptor.Property); ok {
		getter, setter := p.Getter(), p.Setter()
		return getter != nil && IsDeprecated(getter) &&
			(!p.IsVar() || setter != nil && IsDeprecated(setter))
	}
	return false
}

func containsAnnotation(d descriptor.Declaration, fq name.FqName) bool {
	original := descriptor.OriginalOf(d)
	anns := original.Annotations()
	if anns.Has(fq) {
		return true
	}
	accessor, ok := original.(*descriptor.PropertyAccessor)
	if !ok {
		return false
	}
	target := accessor.UseSiteTarget()
	if _, ok := anns.FindUseSiteTargeted(target, fq); ok {
		return true
	}
	_, ok = accessor.Property().Annotations().FindUseSiteTargeted(target, fq)
	return ok
}
