// Package emit renders laid-out link and metadata tables as C source.
//
// Two artifacts are produced: the module source, which defines the tables
// the loader reads through dlsym, and an optional header that gives the
// extension's own code named access to its imports.
package emit

import (
	_ "embed"
	"fmt"
	"strings"

	"github.com/leapstack-labs/xovigen/internal/project"
)

// FormatVersion is the XOVI API version the generated header targets.
const FormatVersion = "0.2.0"

// Section names recognised by the loader.
const (
	SectionLink = ".xovi"
	SectionInfo = ".xovi_info"
)

// MetadataSentinel terminates LINKTABLEMETADATA. It differs from the null
// reference used for owners without metadata.
const MetadataSentinel = "(const void *) -1"

//go:embed boilerplate/module.txt
var defaultModuleBoilerplate string

//go:embed boilerplate/header.txt
var defaultHeaderBoilerplate string

// DefaultModuleBoilerplate is the text that starts every module source.
func DefaultModuleBoilerplate() string { return defaultModuleBoilerplate }

// DefaultHeaderBoilerplate is the text that starts every header.
func DefaultHeaderBoilerplate() string { return defaultHeaderBoilerplate }

// Emitter renders module sources and headers. The zero value uses the
// embedded boilerplate texts.
type Emitter struct {
	ModuleBoilerplate string
	HeaderBoilerplate string
}

// New returns an emitter using the given boilerplate texts. An empty text
// selects the embedded default.
func New(module, header string) *Emitter {
	return &Emitter{ModuleBoilerplate: module, HeaderBoilerplate: header}
}

func (e *Emitter) moduleBoilerplate() string {
	if e == nil || e.ModuleBoilerplate == "" {
		return defaultModuleBoilerplate
	}
	return e.ModuleBoilerplate
}

func (e *Emitter) headerBoilerplate() string {
	if e == nil || e.HeaderBoilerplate == "" {
		return defaultHeaderBoilerplate
	}
	return e.HeaderBoilerplate
}

// ImportCast is the function-pointer cast applied to import slots. C++
// needs an explicit ellipsis to accept arguments; in C an empty parameter
// list already does.
func ImportCast(lang project.Language) string {
	if lang == project.LanguageCXX {
		return "unsigned long long int(*)(...)"
	}
	return "unsigned long long int(*)()"
}

// ImportMacroName is the identifier the extension uses to call an import.
// Host functions get a '$' sigil; cross-extension imports already contain
// one ("extension$function") and are used as written.
func ImportMacroName(name string) string {
	if strings.Contains(name, "$") {
		return name
	}
	return "$" + name
}

// JunctionSymbol names the junction array at position pos of the metadata
// index.
func JunctionSymbol(pos int) string { return fmt.Sprintf("XOVIJUNCTION%d", pos) }

// EntrySymbol names the i-th metadata entry record.
func EntrySymbol(i int) string { return fmt.Sprintf("XOVIMETADATA%d", i) }

// ResourceSymbol names the byte array holding a resource.
func ResourceSymbol(name string) string { return "r$" + name }

// ResourceLengthSymbol names the length constant of a resource.
func ResourceLengthSymbol(name string) string { return "r$" + name + "$length" }

func section(name string) string {
	return fmt.Sprintf("__attribute__((section(\"%s\")))", name)
}
