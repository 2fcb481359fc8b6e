package descriptor

import "github.com/hashicorp/go-set/v3"

// NominalSubtypeChecker decides subtyping by walking declared supertypes.
// Type arguments are not compared.
type NominalSubtypeChecker struct {
	// IsBottom reports whether a type is the bottom type (Nothing), which
	// is a subtype of every type of matching nullability. Nil means no type
	// is bottom.
	IsBottom func(t *Type) bool
}

// IsSubtypeOf reports whether sub is a subtype of super.
func (c NominalSubtypeChecker) IsSubtypeOf(sub, super *Type) bool {
	if sub.nullable && !super.nullable {
		return false
	}
	if c.IsBottom != nil && c.IsBottom(sub) {
		return true
	}
	target := OriginalOf(super.classifier)
	seen := set.New[Declaration](8)
	queue := []*Type{sub}
	for len(queue) > 0 {
		t := queue[0]
		queue = queue[1:]
		head := OriginalOf(t.classifier)
		if head == target {
			return true
		}
		if !seen.Insert(head) {
			continue
		}
		switch cl := t.classifier.(type) {
		case ClassDescriptor:
			queue = append(queue, cl.Supertypes()...)
		case *TypeParameter:
			queue = append(queue, cl.UpperBounds()...)
		}
	}
	return false
}
