package descriptor

import "github.com/broady/builtins/name"

// Annotation is one annotation applied to a declaration.
type Annotation struct {
	// Class is the qualified name of the annotation class.
	Class name.FqName

	// Target is the use-site target the annotation was written with, or
	// TargetNone.
	Target UseSiteTarget

	// Arguments holds the annotation's constant arguments by parameter name.
	Arguments map[string]string
}

// Annotations is an immutable list of annotations. A nil *Annotations is an
// empty list.
type Annotations struct {
	list []Annotation
}

// NewAnnotations returns a list holding anns.
func NewAnnotations(anns ...Annotation) *Annotations {
	if len(anns) == 0 {
		return nil
	}
	return &Annotations{list: append([]Annotation(nil), anns...)}
}

// All returns a copy of the annotations.
func (a *Annotations) All() []Annotation {
	if a == nil {
		return nil
	}
	return append([]Annotation(nil), a.list...)
}

// Len returns the number of annotations.
func (a *Annotations) Len() int {
	if a == nil {
		return 0
	}
	return len(a.list)
}

// Find returns the first annotation of class fq written without a use-site
// target.
func (a *Annotations) Find(fq name.FqName) (Annotation, bool) {
	return a.FindUseSiteTargeted(TargetNone, fq)
}

// Has reports whether Find(fq) succeeds.
func (a *Annotations) Has(fq name.FqName) bool {
	_, ok := a.Find(fq)
	return ok
}

// FindUseSiteTargeted returns the first annotation of class fq written with
// the given use-site target.
func (a *Annotations) FindUseSiteTargeted(target UseSiteTarget, fq name.FqName) (Annotation, bool) {
	if a == nil {
		return Annotation{}, false
	}
	for _, ann := range a.list {
		if ann.Target == target && ann.Class == fq {
			return ann, true
		}
	}
	return Annotation{}, false
}
