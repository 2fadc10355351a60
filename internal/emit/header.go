package emit

import (
	"fmt"
	"strings"

	"github.com/leapstack-labs/xovigen/internal/linktable"
	"github.com/leapstack-labs/xovigen/internal/project"
)

// environmentInterface mirrors the leading members of the loader's
// struct XoViEnvironment.
const environmentInterface = `struct XoViEnvironment {
    char *(*getExtensionDirectory)(const char *family);
    void (*requireExtension)(const char *name, unsigned char major, unsigned char minor, unsigned char patch);
};
extern const struct XoViEnvironment *Environment;
`

// Header renders the header: boilerplate, one macro per import, resource
// declarations, the environment interface and the format version.
func (e *Emitter) Header(def *project.Definition, t *linktable.Tables) string {
	var sb strings.Builder
	sb.WriteString(e.headerBoilerplate())

	sb.WriteString("extern const void *LINKTABLEVALUES[];\n")
	cast := ImportCast(def.Language)
	for _, s := range t.Slots {
		if s.Owner.Kind != project.KindImport {
			continue
		}
		fmt.Fprintf(&sb, "#define %s ((%s) LINKTABLEVALUES[%d])\n", ImportMacroName(s.Owner.Name), cast, s.Index)
	}

	for _, r := range def.Resources {
		fmt.Fprintf(&sb, "extern const unsigned char %s[];\n", ResourceSymbol(r.Name))
		fmt.Fprintf(&sb, "extern const int %s;\n", ResourceLengthSymbol(r.Name))
	}

	sb.WriteString(environmentInterface)
	fmt.Fprintf(&sb, "#define XOVI_VERSION \"%s\"\n", FormatVersion)
	return sb.String()
}
