// Package linktable lays out the loader-visible tables of a XOVI extension:
// the link table (names and values), the metadata name table, the metadata
// entries grouped into junctions, and the top-level metadata index.
//
// Metadata entries are registered while the project file is parsed so that
// name-table offsets follow encounter order. Link slots are derived from the
// completed definition by Build.
package linktable

import (
	"github.com/leapstack-labs/xovigen/internal/project"
)

// Builder accumulates metadata entries and assigns their name-table offsets.
type Builder struct {
	offset  int
	names   []byte
	entries []project.MetadataEntry
	byOwner map[project.Owner][]int
}

// NewBuilder returns an empty builder.
func NewBuilder() *Builder {
	return &Builder{byOwner: make(map[project.Owner][]int)}
}

// Offset is the name-table offset the next entry will receive.
func (b *Builder) Offset() int { return b.offset }

// AddMetadata registers a metadata entry for owner and advances the shared
// name-table offset by len(name)+1.
func (b *Builder) AddMetadata(owner project.Owner, name string, v project.Value) project.MetadataEntry {
	e := project.MetadataEntry{
		Owner:  owner,
		Name:   name,
		Offset: b.offset,
		Value:  v,
	}
	b.names = append(b.names, name...)
	b.names = append(b.names, 0)
	b.offset += len(name) + 1

	b.byOwner[owner] = append(b.byOwner[owner], len(b.entries))
	b.entries = append(b.entries, e)
	return e
}

// Entries returns all metadata entries in registration order.
func (b *Builder) Entries() []project.MetadataEntry { return b.entries }

// EntriesFor returns the entries of owner in registration order.
func (b *Builder) EntriesFor(owner project.Owner) []project.MetadataEntry {
	idx := b.byOwner[owner]
	out := make([]project.MetadataEntry, len(idx))
	for i, n := range idx {
		out[i] = b.entries[n]
	}
	return out
}

// NameTable returns the concatenated, NUL-terminated metadata names.
func (b *Builder) NameTable() []byte {
	out := make([]byte, len(b.names))
	copy(out, b.names)
	return out
}
