package metadata

import (
	"github.com/broady/builtins/contract"
	"github.com/broady/builtins/descriptor"
	"github.com/broady/builtins/name"
)

// classID identifies a class by package and dotted name within it.
type classID struct {
	pkg      name.FqName
	relative string
}

func (id classID) fqName() name.FqName {
	fq := id.pkg
	for _, seg := range splitRelative(id.relative) {
		fq = fq.ChildString(seg)
	}
	return fq
}

// packageData is the indexed content of one package file.
type packageData struct {
	fq       name.FqName
	path     string
	records  int
	fragment *descriptor.Fragment

	classes  map[string]*classData
	topLevel []string
	members  memberIndex
}

type classData struct {
	rec          record
	relative     string
	nested       []string
	members      memberIndex
	constructors []record
}

// memberIndex groups function and property records by name, keeping the
// file order of first appearance.
type memberIndex struct {
	functions     map[string][]record
	properties    map[string][]record
	functionNames []string
	propertyNames []string
}

func (m *memberIndex) add(rec record) {
	switch rec.Decl {
	case declFunction:
		if m.functions == nil {
			m.functions = make(map[string][]record)
		}
		if _, ok := m.functions[rec.Name]; !ok {
			m.functionNames = append(m.functionNames, rec.Name)
		}
		m.functions[rec.Name] = append(m.functions[rec.Name], rec)
	case declProperty:
		if m.properties == nil {
			m.properties = make(map[string][]record)
		}
		if _, ok := m.properties[rec.Name]; !ok {
			m.propertyNames = append(m.propertyNames, rec.Name)
		}
		m.properties[rec.Name] = append(m.properties[rec.Name], rec)
	}
}

func indexPackage(fq name.FqName, path string, records []record) (*packageData, error) {
	pd := &packageData{
		fq:      fq,
		path:    path,
		records: len(records),
		classes: make(map[string]*classData),
	}

	for _, rec := range records {
		if rec.Decl != declClass {
			continue
		}
		rel := rec.Name
		if rec.Outer != "" {
			rel = rec.Outer + "." + rec.Name
		}
		if _, dup := pd.classes[rel]; dup {
			return nil, contract.Errorf(contract.CodeInvalidMetadata, "%s: class %s is declared twice", path, rel)
		}
		pd.classes[rel] = &classData{rec: rec, relative: rel}
	}

	for _, rec := range records {
		switch rec.Decl {
		case declClass:
			if rec.Outer == "" {
				pd.topLevel = append(pd.topLevel, rec.Name)
				continue
			}
			outer, ok := pd.classes[rec.Outer]
			if !ok {
				return nil, contract.Errorf(contract.CodeInvalidMetadata, "%s: outer class %s of %s is not declared", path, rec.Outer, rec.Name)
			}
			outer.nested = append(outer.nested, rec.Name)
		case declConstructor:
			owner, ok := pd.classes[rec.Owner]
			if !ok {
				return nil, contract.Errorf(contract.CodeInvalidMetadata, "%s: owner %s of constructor is not declared", path, rec.Owner)
			}
			owner.constructors = append(owner.constructors, rec)
		default:
			if rec.Owner == "" {
				pd.members.add(rec)
				continue
			}
			owner, ok := pd.classes[rec.Owner]
			if !ok {
				return nil, contract.Errorf(contract.CodeInvalidMetadata, "%s: owner %s of %s is not declared", path, rec.Owner, rec.Name)
			}
			owner.members.add(rec)
		}
	}
	return pd, nil
}
