// Package project holds the in-memory definition of a XOVI extension project:
// the declared link symbols, resources, version and the owners that metadata
// can be attributed to.
package project

import "fmt"

// Kind identifies the variant of an Owner.
type Kind int

// Owner kinds. The order of Condition, Import, Export and Override matches
// the order in which link slots are laid out.
const (
	KindGlobal Kind = iota
	KindCondition
	KindImport
	KindExport
	KindOverride
)

// LinkKinds lists the kinds that occupy link slots, in slot order.
var LinkKinds = []Kind{KindCondition, KindImport, KindExport, KindOverride}

// String returns the lowercase directive keyword for the kind.
func (k Kind) String() string {
	switch k {
	case KindGlobal:
		return "global"
	case KindCondition:
		return "condition"
	case KindImport:
		return "import"
	case KindExport:
		return "export"
	case KindOverride:
		return "override"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Tag returns the single-character prefix the loader expects in front of a
// link-table name. Global has no tag and returns 0.
func (k Kind) Tag() byte {
	switch k {
	case KindCondition:
		return 'C'
	case KindImport:
		return 'I'
	case KindExport:
		return 'E'
	case KindOverride:
		return 'O'
	default:
		return 0
	}
}

// Owner is the identity of a directive that metadata can be attached to.
// The zero value is not a valid owner; use Global or one of the constructors.
type Owner struct {
	Kind Kind
	Name string
}

// Global is the owner of project-wide metadata.
var Global = Owner{Kind: KindGlobal}

// Condition returns the owner for condition n.
func Condition(n string) Owner { return Owner{Kind: KindCondition, Name: n} }

// Import returns the owner for import n.
func Import(n string) Owner { return Owner{Kind: KindImport, Name: n} }

// Export returns the owner for export n.
func Export(n string) Owner { return Owner{Kind: KindExport, Name: n} }

// Override returns the owner for override n.
func Override(n string) Owner { return Owner{Kind: KindOverride, Name: n} }

// IsGlobal reports whether o is the Global owner.
func (o Owner) IsGlobal() bool { return o.Kind == KindGlobal }

func (o Owner) String() string {
	if o.IsGlobal() {
		return "global"
	}
	return fmt.Sprintf("%s %s", o.Kind, o.Name)
}

// TaggedName is the link-table name of o: its tag followed by its name.
func (o Owner) TaggedName() string {
	if o.IsGlobal() {
		return ""
	}
	return string(o.Kind.Tag()) + o.Name
}
