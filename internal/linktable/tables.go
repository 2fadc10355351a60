package linktable

import (
	"strings"

	"github.com/leapstack-labs/xovigen/internal/project"
)

// Slot is one link-table entry. Index is its position in the value table,
// which starts at 1 because slot 0 holds the element count.
type Slot struct {
	Index int
	Owner project.Owner
	// Symbol is the symbol the slot resolves to at build time. It is empty
	// for conditions and imports, which the loader fills in.
	Symbol string
}

// TaggedName is the slot's entry in LINKTABLENAMES.
func (s Slot) TaggedName() string { return s.Owner.TaggedName() }

// Resolved reports whether the slot carries a symbol at build time.
func (s Slot) Resolved() bool { return s.Symbol != "" }

// Junction groups the metadata entries of one owner. Entries holds indices
// into Tables.Entries in registration order.
type Junction struct {
	Owner project.Owner
	// Position is the junction's place in the metadata index.
	Position int
	Entries  []int
}

// Tables is the complete, ordered layout handed to the emitter.
type Tables struct {
	Slots []Slot
	// Externs are the resolved symbols that need a declaration, in slot order.
	Externs []string

	Entries       []project.MetadataEntry
	MetadataNames []byte

	// Junctions holds only owners with at least one entry, in index order.
	Junctions []*Junction
	// Index has one element for Global followed by one per slot. An owner
	// without metadata has a nil element.
	Index []*Junction
}

// Build derives the link and metadata tables from a completed definition
// and the metadata registered on b.
func (b *Builder) Build(def *project.Definition) *Tables {
	t := &Tables{
		Entries:       append([]project.MetadataEntry(nil), b.entries...),
		MetadataNames: b.NameTable(),
	}

	owners := append([]project.Owner{project.Global}, def.LinkOwners()...)
	for i, o := range owners {
		if !o.IsGlobal() {
			s := Slot{Index: i, Owner: o}
			switch o.Kind {
			case project.KindExport:
				s.Symbol = o.Name
			case project.KindOverride:
				s.Symbol = def.OverrideSymbol(o.Name)
			}
			if s.Resolved() {
				t.Externs = append(t.Externs, s.Symbol)
			}
			t.Slots = append(t.Slots, s)
		}

		var j *Junction
		if idx := b.byOwner[o]; len(idx) > 0 {
			j = &Junction{Owner: o, Position: i, Entries: append([]int(nil), idx...)}
			t.Junctions = append(t.Junctions, j)
		}
		t.Index = append(t.Index, j)
	}
	return t
}

// Count is the value stored in slot 0 of the value table.
func (t *Tables) Count() int { return len(t.Slots) }

// TaggedNames returns the tagged name of every slot in slot order.
func (t *Tables) TaggedNames() []string {
	names := make([]string, len(t.Slots))
	for i, s := range t.Slots {
		names[i] = s.TaggedName()
	}
	return names
}

// LinkNames returns the contents of LINKTABLENAMES: the tagged names joined
// by NUL and followed by two more NULs.
func (t *Tables) LinkNames() string {
	return strings.Join(t.TaggedNames(), "\x00") + "\x00\x00"
}

// SlotFor returns the slot owned by o.
func (t *Tables) SlotFor(o project.Owner) (Slot, bool) {
	for _, s := range t.Slots {
		if s.Owner == o {
			return s, true
		}
	}
	return Slot{}, false
}

// JunctionFor returns the junction of o, or nil if o has no metadata.
func (t *Tables) JunctionFor(o project.Owner) *Junction {
	for _, j := range t.Junctions {
		if j.Owner == o {
			return j
		}
	}
	return nil
}
