package emit

import (
	"fmt"
	"strings"

	"github.com/leapstack-labs/xovigen/internal/linktable"
	"github.com/leapstack-labs/xovigen/internal/project"
)

// Module renders the module source: boilerplate, symbol declarations, the
// link table, the version, the metadata tables and the resources.
func (e *Emitter) Module(def *project.Definition, t *linktable.Tables) string {
	var sb strings.Builder
	sb.WriteString(e.moduleBoilerplate())

	for _, sym := range t.Externs {
		fmt.Fprintf(&sb, "extern void %s();\n", sym)
	}

	fmt.Fprintf(&sb, "%s const char *LINKTABLENAMES = \"%s\";\n", section(SectionLink), linkNamesLiteral(t))
	fmt.Fprintf(&sb, "%s const void *LINKTABLEVALUES[] = {%s};\n", section(SectionLink), strings.Join(valueList(t), ", "))
	fmt.Fprintf(&sb, "%s const struct XoViEnvironment *Environment = 0;\n", section(SectionLink))
	if def.Version != nil {
		// const objects have internal linkage in C++ unless declared extern
		sb.WriteString("extern const int EXTENSIONVERSION;\n")
		fmt.Fprintf(&sb, "%s const int EXTENSIONVERSION = %d;\n", section(SectionInfo), def.Version.Encode())
	}

	writeMetadata(&sb, t)
	writeResources(&sb, def.Resources)
	return sb.String()
}

// linkNamesLiteral renders LINKTABLENAMES. Every name starts with its tag
// letter, so a bare \0 separator cannot run into a following digit.
func linkNamesLiteral(t *linktable.Tables) string {
	parts := make([]string, len(t.Slots))
	for i, s := range t.Slots {
		parts[i] = quoteC([]byte(s.TaggedName()))
	}
	return strings.Join(parts, `\0`) + `\0\0`
}

// valueList renders LINKTABLEVALUES: the count followed by one value per
// slot.
func valueList(t *linktable.Tables) []string {
	values := make([]string, 0, t.Count()+1)
	values = append(values, fmt.Sprintf("(void *) %d", t.Count()))
	for _, s := range t.Slots {
		if s.Resolved() {
			values = append(values, "(void *) "+s.Symbol)
		} else {
			values = append(values, "(void *) 0")
		}
	}
	return values
}

// writeMetadata renders the metadata tables. Only the plain name table
// shares the read-only info section with EXTENSIONVERSION: the entry records
// and the index hold pointers that need relocations, so the records get no
// section and the index lives in the writable link section.
func writeMetadata(sb *strings.Builder, t *linktable.Tables) {
	fmt.Fprintf(sb, "%s const char METADATANAMES[] = \"%s\";\n", section(SectionInfo), quoteC(t.MetadataNames))

	for i, e := range t.Entries {
		sb.WriteString(entryRecord(i, e))
	}

	for _, j := range t.Junctions {
		refs := make([]string, 0, len(j.Entries)+1)
		for _, idx := range j.Entries {
			refs = append(refs, "&"+EntrySymbol(idx))
		}
		refs = append(refs, "0")
		fmt.Fprintf(sb, "static const void *%s[] = {%s};\n", JunctionSymbol(j.Position), strings.Join(refs, ", "))
	}

	index := make([]string, 0, len(t.Index)+1)
	for _, j := range t.Index {
		if j == nil {
			index = append(index, "0")
		} else {
			index = append(index, JunctionSymbol(j.Position))
		}
	}
	index = append(index, MetadataSentinel)
	fmt.Fprintf(sb, "%s const void *LINKTABLEMETADATA[] = {%s};\n", section(SectionLink), strings.Join(index, ", "))
}

// entryRecord renders one metadata entry with the layout of
// struct XoviMetadataEntry: the name pointer, the type byte, then the value
// union. Each kind gets its own record type so the value can be initialised
// without designated initialisers.
func entryRecord(i int, e project.MetadataEntry) string {
	name := fmt.Sprintf("METADATANAMES + %d", e.Offset)
	prefix := "static const struct { const char *name; char type; "
	switch e.Value.Kind {
	case project.ValueInt:
		return fmt.Sprintf("%sunion { int i; bool b; } value; } %s = { %s, %d, { %d } };\n",
			prefix, EntrySymbol(i), name, int(e.Value.Kind), e.Value.Int)
	case project.ValueBool:
		b := "false"
		if e.Value.Bool {
			b = "true"
		}
		return fmt.Sprintf("%sunion { bool b; int i; } value; } %s = { %s, %d, { %s } };\n",
			prefix, EntrySymbol(i), name, int(e.Value.Kind), b)
	default:
		return fmt.Sprintf("%sstruct { int sLength; char s[%d]; } value; } %s = { %s, %d, { %d, \"%s\" } };\n",
			prefix, len(e.Value.Str)+1, EntrySymbol(i), name, int(e.Value.Kind), len(e.Value.Str), quoteC(e.Value.Str))
	}
}

func writeResources(sb *strings.Builder, resources []project.Resource) {
	for _, r := range resources {
		fmt.Fprintf(sb, "extern const unsigned char %s[];\nextern const int %s;\n", ResourceSymbol(r.Name), ResourceLengthSymbol(r.Name))
		fmt.Fprintf(sb, "const unsigned char %s[] = {\n    %s\n};\n", ResourceSymbol(r.Name), byteList(r.Data))
		fmt.Fprintf(sb, "const int %s = %d;\n", ResourceLengthSymbol(r.Name), len(r.Data))
	}
}
