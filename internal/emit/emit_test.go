package emit

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/xovigen/internal/linktable"
	"github.com/leapstack-labs/xovigen/internal/project"
)

func fixture(build func(def *project.Definition, b *linktable.Builder)) (*project.Definition, *linktable.Tables) {
	def := project.NewDefinition()
	b := linktable.NewBuilder()
	build(def, b)
	return def, b.Build(def)
}

func TestModule_LinkTable(t *testing.T) {
	def, tables := fixture(func(def *project.Definition, _ *linktable.Builder) {
		def.Declare(project.Import("foo"))
		def.Declare(project.Export("bar"))
		v := project.Version{Major: 1}
		def.Version = &v
	})

	out := New("// head\n", "").Module(def, tables)

	want := `// head
extern void bar();
__attribute__((section(".xovi"))) const char *LINKTABLENAMES = "Ifoo\0Ebar\0\0";
__attribute__((section(".xovi"))) const void *LINKTABLEVALUES[] = {(void *) 2, (void *) 0, (void *) bar};
__attribute__((section(".xovi"))) const struct XoViEnvironment *Environment = 0;
extern const int EXTENSIONVERSION;
__attribute__((section(".xovi_info"))) const int EXTENSIONVERSION = 65536;
__attribute__((section(".xovi_info"))) const char METADATANAMES[] = "";
__attribute__((section(".xovi"))) const void *LINKTABLEMETADATA[] = {0, 0, 0, (const void *) -1};
`
	assert.Equal(t, want, out)
}

func TestModule_NoVersion(t *testing.T) {
	def, tables := fixture(func(def *project.Definition, _ *linktable.Builder) {})

	out := (&Emitter{}).Module(def, tables)

	assert.True(t, strings.HasPrefix(out, DefaultModuleBoilerplate()))
	assert.NotContains(t, out, "EXTENSIONVERSION")
	assert.Contains(t, out, `const char *LINKTABLENAMES = "\0\0";`)
	assert.Contains(t, out, `const void *LINKTABLEVALUES[] = {(void *) 0};`)
	assert.Contains(t, out, `const void *LINKTABLEMETADATA[] = {0, (const void *) -1};`)
}

func TestModule_OverridesAndConditions(t *testing.T) {
	def, tables := fixture(func(def *project.Definition, _ *linktable.Builder) {
		def.Declare(project.Override("strdup"))
		def.Declare(project.Import("fileman$open"))
		def.Declare(project.Condition("fileman$open"))
	})

	out := New("", "").Module(def, tables)

	assert.Contains(t, out, "extern void override$strdup();\n")
	assert.Contains(t, out, `"Cfileman$open\0Ifileman$open\0Ostrdup\0\0"`)
	assert.Contains(t, out, "{(void *) 3, (void *) 0, (void *) 0, (void *) override$strdup}")
}

func TestModule_Metadata(t *testing.T) {
	def, tables := fixture(func(def *project.Definition, b *linktable.Builder) {
		def.Declare(project.Import("foo"))
		def.Declare(project.Export("bar"))
		b.AddMetadata(project.Global, "author", project.StringValue([]byte("a \"b\"\n")))
		b.AddMetadata(project.Export("bar"), "flag", project.BoolValue(true))
		b.AddMetadata(project.Export("bar"), "prio", project.IntValue(-3))
	})

	out := New("", "").Module(def, tables)

	lines := []string{
		`__attribute__((section(".xovi_info"))) const char METADATANAMES[] = "author\000flag\000prio\000";`,
		`static const struct { const char *name; char type; struct { int sLength; char s[7]; } value; } XOVIMETADATA0 = { METADATANAMES + 0, 3, { 6, "a \"b\"\012" } };`,
		`static const struct { const char *name; char type; union { bool b; int i; } value; } XOVIMETADATA1 = { METADATANAMES + 7, 2, { true } };`,
		`static const struct { const char *name; char type; union { int i; bool b; } value; } XOVIMETADATA2 = { METADATANAMES + 12, 1, { -3 } };`,
		`static const void *XOVIJUNCTION0[] = {&XOVIMETADATA0, 0};`,
		`static const void *XOVIJUNCTION2[] = {&XOVIMETADATA1, &XOVIMETADATA2, 0};`,
		`__attribute__((section(".xovi"))) const void *LINKTABLEMETADATA[] = {XOVIJUNCTION0, 0, XOVIJUNCTION2, (const void *) -1};`,
	}
	for _, l := range lines {
		assert.Contains(t, out, l+"\n")
	}

	// entries, then junctions, then the index
	assert.Less(t, strings.Index(out, "XOVIMETADATA2 ="), strings.Index(out, "XOVIJUNCTION0[]"))
	assert.Less(t, strings.Index(out, "XOVIJUNCTION2[]"), strings.Index(out, "LINKTABLEMETADATA"))
}

func TestModule_SectionPlacement(t *testing.T) {
	def, tables := fixture(func(def *project.Definition, b *linktable.Builder) {
		def.Declare(project.Export("bar"))
		b.AddMetadata(project.Global, "author", project.StringValue([]byte("x")))
		b.AddMetadata(project.Export("bar"), "prio", project.IntValue(1))
		v := project.Version{Major: 1}
		def.Version = &v
	})

	out := New("", "").Module(def, tables)

	// the info section only holds plain read-only data; anything holding a
	// pointer must stay out of it
	info := section(SectionInfo)
	for _, line := range strings.Split(out, "\n") {
		if !strings.Contains(line, info) {
			continue
		}
		assert.True(t,
			strings.Contains(line, "const int EXTENSIONVERSION =") || strings.Contains(line, "const char METADATANAMES[] ="),
			"unexpected symbol in %s: %s", SectionInfo, line)
	}
	assert.Contains(t, out, section(SectionLink)+" const void *LINKTABLEMETADATA[] =")
	assert.Contains(t, out, "static const struct { const char *name;")
	assert.NotContains(t, out, "static "+info)
}

func TestModule_ExternalLinkage(t *testing.T) {
	for _, lang := range []project.Language{project.LanguageC, project.LanguageCXX} {
		t.Run(lang.String(), func(t *testing.T) {
			def, tables := fixture(func(def *project.Definition, _ *linktable.Builder) {
				def.Language = lang
				v := project.Version{Major: 1}
				def.Version = &v
				def.Resources = []project.Resource{{Name: "icon", Data: []byte{1}}}
			})

			out := New("", "").Module(def, tables)

			// const definitions must be preceded by an extern declaration
			for _, pair := range [][2]string{
				{"extern const int EXTENSIONVERSION;", "const int EXTENSIONVERSION ="},
				{"extern const unsigned char r$icon[];", "\nconst unsigned char r$icon[] ="},
				{"extern const int r$icon$length;", "\nconst int r$icon$length ="},
			} {
				decl := strings.Index(out, pair[0])
				require.GreaterOrEqual(t, decl, 0, "missing %q", pair[0])
				assert.Less(t, decl, strings.Index(out, pair[1]), "%q must come first", pair[0])
			}
		})
	}
}

func TestModule_Resources(t *testing.T) {
	data := make([]byte, 18)
	for i := range data {
		data[i] = byte(i)
	}
	def, tables := fixture(func(def *project.Definition, _ *linktable.Builder) {
		def.Resources = []project.Resource{
			{Name: "blob", Data: data},
			{Name: "empty"},
		}
	})

	out := New("", "").Module(def, tables)

	assert.Contains(t, out, "extern const unsigned char r$blob[];\nextern const int r$blob$length;\nconst unsigned char r$blob[] = {\n    0x00, 0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08, 0x09, 0x0a, 0x0b, 0x0c, 0x0d, 0x0e, 0x0f,\n    0x10, 0x11\n};\n")
	assert.Contains(t, out, "const int r$blob$length = 18;\n")
	assert.Contains(t, out, "extern const int r$empty$length;\nconst unsigned char r$empty[] = {\n    0\n};\nconst int r$empty$length = 0;\n")
}

func TestHeader(t *testing.T) {
	tests := []struct {
		name string
		lang project.Language
		cast string
	}{
		{name: "c", lang: project.LanguageC, cast: "unsigned long long int(*)()"},
		{name: "c++", lang: project.LanguageCXX, cast: "unsigned long long int(*)(...)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			def, tables := fixture(func(def *project.Definition, _ *linktable.Builder) {
				def.Language = tt.lang
				def.Declare(project.Condition("x"))
				def.Declare(project.Import("foo"))
				def.Declare(project.Import("fileman$open"))
				def.Declare(project.Export("bar"))
				def.Resources = []project.Resource{{Name: "icon", Data: []byte{1}}}
			})

			out := New("", "// hdr\n").Header(def, tables)

			require.True(t, strings.HasPrefix(out, "// hdr\nextern const void *LINKTABLEVALUES[];\n"))
			assert.Contains(t, out, "#define $foo (("+tt.cast+") LINKTABLEVALUES[2])\n")
			assert.Contains(t, out, "#define fileman$open (("+tt.cast+") LINKTABLEVALUES[3])\n")
			assert.NotContains(t, out, "$x")
			assert.NotContains(t, out, "$bar")
			assert.Contains(t, out, "extern const unsigned char r$icon[];\nextern const int r$icon$length;\n")
			assert.Contains(t, out, "char *(*getExtensionDirectory)(const char *family);")
			assert.Contains(t, out, "void (*requireExtension)(const char *name, unsigned char major, unsigned char minor, unsigned char patch);")
			assert.True(t, strings.HasSuffix(out, "#define XOVI_VERSION \"0.2.0\"\n"))
		})
	}
}

func TestHeader_DefaultBoilerplate(t *testing.T) {
	def, tables := fixture(func(*project.Definition, *linktable.Builder) {})
	out := (*Emitter)(nil).Header(def, tables)
	assert.True(t, strings.HasPrefix(out, DefaultHeaderBoilerplate()))
	assert.Contains(t, DefaultHeaderBoilerplate(), "#pragma once")
}

func TestQuoteC(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"plain", "plain"},
		{"a\x00b", `a\000b`},
		{"\x001", `\0001`},
		{`back\slash "q"`, `back\\slash \"q\"`},
		{"??=", `\?\?=`},
		{"\xff\t", `\377\011`},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, quoteC([]byte(tt.in)), "quoteC(%q)", tt.in)
	}
}

func TestImportMacroName(t *testing.T) {
	assert.Equal(t, "$strdup", ImportMacroName("strdup"))
	assert.Equal(t, "fileman$open", ImportMacroName("fileman$open"))
}
