package project

import "strings"

// DefaultOverridePrefix is prepended to an override's name to form the
// symbol that implements it.
const DefaultOverridePrefix = "override$"

// Language selects the flavour of generated source.
type Language int

const (
	LanguageC Language = iota
	LanguageCXX
)

func (l Language) String() string {
	if l == LanguageCXX {
		return "c++"
	}
	return "c"
}

// LanguageForOutput picks C++ for a ".cpp" destination and C otherwise.
func LanguageForOutput(path string) Language {
	if strings.HasSuffix(path, ".cpp") {
		return LanguageCXX
	}
	return LanguageC
}

// Resource is a named blob embedded into the generated module.
type Resource struct {
	Name string
	Path string
	Data []byte
}

// Definition is everything declared by a project file. It is built in a
// single forward pass and consumed once by the emitter.
type Definition struct {
	// Version is nil when no valid or invalid version directive was seen.
	Version        *Version
	Resources      []Resource
	Conditions     []string
	Imports        []string
	Exports        []string
	Overrides      []string
	OverridePrefix string
	Language       Language

	declared map[Owner]bool
}

// NewDefinition returns an empty definition using the default override prefix.
func NewDefinition() *Definition {
	return &Definition{
		OverridePrefix: DefaultOverridePrefix,
		declared:       make(map[Owner]bool),
	}
}

// Declare appends o to the list of its kind. It returns false, leaving the
// definition unchanged, if o was already declared.
func (d *Definition) Declare(o Owner) bool {
	if d.declared == nil {
		d.declared = make(map[Owner]bool)
	}
	if o.IsGlobal() || d.declared[o] {
		return false
	}
	d.declared[o] = true
	switch o.Kind {
	case KindCondition:
		d.Conditions = append(d.Conditions, o.Name)
	case KindImport:
		d.Imports = append(d.Imports, o.Name)
	case KindExport:
		d.Exports = append(d.Exports, o.Name)
	case KindOverride:
		d.Overrides = append(d.Overrides, o.Name)
	}
	return true
}

// CollidesWith returns the other kinds under which name is already declared.
func (d *Definition) CollidesWith(o Owner) []Kind {
	var kinds []Kind
	for _, k := range LinkKinds {
		if k == o.Kind {
			continue
		}
		if d.declared[Owner{Kind: k, Name: o.Name}] {
			kinds = append(kinds, k)
		}
	}
	return kinds
}

// Names returns the declared names of kind k in declaration order.
func (d *Definition) Names(k Kind) []string {
	switch k {
	case KindCondition:
		return d.Conditions
	case KindImport:
		return d.Imports
	case KindExport:
		return d.Exports
	case KindOverride:
		return d.Overrides
	default:
		return nil
	}
}

// LinkOwners returns every link-slot owner in slot order: conditions,
// imports, exports, overrides.
func (d *Definition) LinkOwners() []Owner {
	owners := make([]Owner, 0, d.SlotCount())
	for _, k := range LinkKinds {
		for _, n := range d.Names(k) {
			owners = append(owners, Owner{Kind: k, Name: n})
		}
	}
	return owners
}

// SlotCount is the number of link slots, excluding the count slot.
func (d *Definition) SlotCount() int {
	return len(d.Conditions) + len(d.Imports) + len(d.Exports) + len(d.Overrides)
}

// OverrideSymbol returns the symbol that implements override name.
func (d *Definition) OverrideSymbol(name string) string {
	return d.OverridePrefix + name
}
