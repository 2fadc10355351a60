package generate

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/xovigen/internal/parser"
	"github.com/leapstack-labs/xovigen/internal/project"
	"github.com/leapstack-labs/xovigen/internal/testutil"
)

func newGenerator(t *testing.T, files map[string]string) (*Generator, afero.Fs) {
	t.Helper()
	fs := testutil.NewMemFs(t, files)
	return New(Config{Fs: fs, Logger: testutil.NewTestLogger(t)}), fs
}

func readFile(t *testing.T, fs afero.Fs, path string) string {
	t.Helper()
	data, err := afero.ReadFile(fs, path)
	require.NoError(t, err)
	return string(data)
}

func TestRun_EndToEnd(t *testing.T) {
	g, fs := newGenerator(t, map[string]string{
		"/ext/ext.xovi": "import foo\nexport bar\nversion 1.0.0\n",
	})

	b, err := g.Run(Request{
		Input:        "/ext/ext.xovi",
		Output:       "/out/ext.c",
		HeaderOutput: "/out/xovi.h",
	})
	require.NoError(t, err)
	assert.Empty(t, b.Warnings)
	assert.Equal(t, 2, b.Tables.Count())

	module := readFile(t, fs, "/out/ext.c")
	assert.Contains(t, module, `const char *LINKTABLENAMES = "Ifoo\0Ebar\0\0";`)
	assert.Contains(t, module, "{(void *) 2, (void *) 0, (void *) bar}")
	assert.Contains(t, module, "EXTENSIONVERSION = 65536;")

	header := readFile(t, fs, "/out/xovi.h")
	assert.Contains(t, header, "#define $foo ((unsigned long long int(*)()) LINKTABLEVALUES[1])")

	// nothing but the two outputs is left in the directory
	entries, err := afero.ReadDir(fs, "/out")
	require.NoError(t, err)
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	assert.ElementsMatch(t, []string{"ext.c", "xovi.h"}, names)
}

func TestRun_MetadataAndResources(t *testing.T) {
	g, fs := newGenerator(t, map[string]string{
		"/ext/ext.xovi": strings.Join([]string{
			"version 0.1.0",
			"resource icon:assets/icon.bin",
			"global-meta",
			"description = :assets/desc.txt",
			"end",
			"export bar",
			"with",
			"flag = true",
			"end",
		}, "\n"),
		"/ext/assets/icon.bin": "\x01\x02",
		"/ext/assets/desc.txt": "hi",
	})

	b, err := g.Run(Request{Input: "/ext/ext.xovi", Output: "/ext/ext.c"})
	require.NoError(t, err)

	assert.Equal(t, []string{"/ext/ext.xovi", "/ext/assets/icon.bin", "/ext/assets/desc.txt"}, b.Files)
	require.Len(t, b.Definition.Resources, 1)
	assert.Equal(t, []byte{1, 2}, b.Definition.Resources[0].Data)
	require.Len(t, b.Tables.Entries, 2)
	assert.Equal(t, project.ValueString, b.Tables.Entries[0].Value.Kind)
	assert.Equal(t, "hi", string(b.Tables.Entries[0].Value.Str))

	module := readFile(t, fs, "/ext/ext.c")
	assert.Contains(t, module, "const unsigned char r$icon[] = {\n    0x01, 0x02\n};")
	assert.Contains(t, module, "LINKTABLEMETADATA[] = {XOVIJUNCTION0, XOVIJUNCTION1, (const void *) -1};")
}

func TestRun_NoHeaderWithoutHeaderOutput(t *testing.T) {
	g, fs := newGenerator(t, map[string]string{
		"/ext.xovi": "import foo\n",
	})

	_, err := g.Run(Request{Input: "/ext.xovi", Output: "/ext.c"})
	require.NoError(t, err)

	assert.True(t, testutil.Exists(t, fs, "/ext.c"))
	entries, err := afero.ReadDir(fs, "/")
	require.NoError(t, err)
	for _, e := range entries {
		assert.False(t, strings.HasSuffix(e.Name(), ".h"), "unexpected header %s", e.Name())
	}
}

func TestRun_ParseErrorWritesNothing(t *testing.T) {
	g, fs := newGenerator(t, map[string]string{
		"/ext.xovi": "import foo\nfoobar\n",
	})

	_, err := g.Run(Request{Input: "/ext.xovi", Output: "/out/ext.c", HeaderOutput: "/out/xovi.h"})
	require.Error(t, err)

	var perr *parser.ParseError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, 2, perr.Position().Line)
	assert.Equal(t, "foobar", perr.Text())

	assert.False(t, testutil.Exists(t, fs, "/out/ext.c"))
	assert.False(t, testutil.Exists(t, fs, "/out/xovi.h"))
}

func TestRun_MissingResourceWritesNothing(t *testing.T) {
	g, fs := newGenerator(t, map[string]string{
		"/ext.xovi": "resource icon:missing.bin\n",
	})

	_, err := g.Run(Request{Input: "/ext.xovi", Output: "/ext.c"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "icon")
	assert.False(t, testutil.Exists(t, fs, "/ext.c"))
}

// failingFs refuses to open files whose name contains reject.
type failingFs struct {
	afero.Fs
	reject string
}

func (f failingFs) OpenFile(name string, flag int, perm os.FileMode) (afero.File, error) {
	if strings.Contains(name, f.reject) {
		return nil, &os.PathError{Op: "open", Path: name, Err: os.ErrPermission}
	}
	return f.Fs.OpenFile(name, flag, perm)
}

func TestRun_FailedWriteRemovesStagedFiles(t *testing.T) {
	g, fs := newGenerator(t, map[string]string{
		"/ext.xovi": "import foo\n",
	})
	// the module is staged first, then staging the header fails
	g.fs = failingFs{Fs: fs, reject: "xovi.h"}

	_, err := g.Run(Request{Input: "/ext.xovi", Output: "/out/ext.c", HeaderOutput: "/out/xovi.h"})
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrPermission)

	entries, err := afero.ReadDir(fs, "/out")
	require.NoError(t, err)
	assert.Empty(t, entries, "staged module must be removed")
}

// failingRenameFs refuses to rename files onto destinations containing reject.
type failingRenameFs struct {
	afero.Fs
	reject string
}

func (f failingRenameFs) Rename(oldname, newname string) error {
	if strings.Contains(newname, f.reject) {
		return &os.LinkError{Op: "rename", Old: oldname, New: newname, Err: os.ErrPermission}
	}
	return f.Fs.Rename(oldname, newname)
}

func TestRun_FailedRenameRestoresOutputs(t *testing.T) {
	g, fs := newGenerator(t, map[string]string{
		"/ext.xovi":   "import foo\n",
		"/out/ext.c":  "// previous module\n",
		"/out/keep.c": "untouched\n",
	})
	// the module is renamed into place first, then the header rename fails
	g.fs = failingRenameFs{Fs: fs, reject: "xovi.h"}

	_, err := g.Run(Request{Input: "/ext.xovi", Output: "/out/ext.c", HeaderOutput: "/out/xovi.h"})
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrPermission)

	assert.Equal(t, "// previous module\n", readFile(t, fs, "/out/ext.c"))
	assert.False(t, testutil.Exists(t, fs, "/out/xovi.h"))

	entries, err := afero.ReadDir(fs, "/out")
	require.NoError(t, err)
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	assert.ElementsMatch(t, []string{"ext.c", "keep.c"}, names)
}

func TestRun_FailedRenameRemovesNewOutputs(t *testing.T) {
	g, fs := newGenerator(t, map[string]string{"/ext.xovi": "import foo\n"})
	g.fs = failingRenameFs{Fs: fs, reject: "xovi.h"}

	_, err := g.Run(Request{Input: "/ext.xovi", Output: "/out/ext.c", HeaderOutput: "/out/xovi.h"})
	require.Error(t, err)

	entries, err := afero.ReadDir(fs, "/out")
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestRun_OutputMode(t *testing.T) {
	dir := t.TempDir()
	fs := afero.NewOsFs()
	input := filepath.Join(dir, "ext.xovi")
	require.NoError(t, afero.WriteFile(fs, input, []byte("import foo\n"), 0o600))

	module := filepath.Join(dir, "ext.c")
	header := filepath.Join(dir, "xovi.h")
	// an existing output keeps its mode
	require.NoError(t, afero.WriteFile(fs, header, []byte("old"), 0o600))
	require.NoError(t, fs.Chmod(header, 0o640))

	g := New(Config{Fs: fs, Logger: testutil.NewTestLogger(t)})
	_, err := g.Run(Request{Input: input, Output: module, HeaderOutput: header})
	require.NoError(t, err)

	info, err := fs.Stat(module)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o644), info.Mode().Perm())

	info, err = fs.Stat(header)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o640), info.Mode().Perm())
	assert.NotEqual(t, "old", readFile(t, fs, header))
}

func TestRun_Deterministic(t *testing.T) {
	src := "import foo\nexport bar\nwith\nprio = 3\nend\nversion 1.2.3\n"
	g, fs := newGenerator(t, map[string]string{"/ext.xovi": src})

	req := Request{Input: "/ext.xovi", Output: "/a.c", HeaderOutput: "/a.h"}
	_, err := g.Run(req)
	require.NoError(t, err)
	first := readFile(t, fs, "/a.c") + readFile(t, fs, "/a.h")

	_, err = g.Run(req)
	require.NoError(t, err)
	assert.Equal(t, first, readFile(t, fs, "/a.c")+readFile(t, fs, "/a.h"))
}

func TestRun_CXXOutput(t *testing.T) {
	g, fs := newGenerator(t, map[string]string{"/ext.xovi": "import foo\n"})

	b, err := g.Run(Request{Input: "/ext.xovi", Output: "/ext.cpp", HeaderOutput: "/ext.h"})
	require.NoError(t, err)
	assert.Equal(t, project.LanguageCXX, b.Definition.Language)
	assert.Contains(t, readFile(t, fs, "/ext.h"), "(unsigned long long int(*)(...))")
}

func TestRun_CustomBoilerplate(t *testing.T) {
	g, fs := newGenerator(t, map[string]string{
		"/ext.xovi":  "import foo\n",
		"/module.bp": "// custom module\n",
		"/header.bp": "// custom header\n",
	})

	_, err := g.Run(Request{
		Input:             "/ext.xovi",
		Output:            "/ext.c",
		HeaderOutput:      "/ext.h",
		ModuleBoilerplate: "/module.bp",
		HeaderBoilerplate: "/header.bp",
	})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(readFile(t, fs, "/ext.c"), "// custom module\n"))
	assert.True(t, strings.HasPrefix(readFile(t, fs, "/ext.h"), "// custom header\n"))
}

func TestRun_MissingInput(t *testing.T) {
	g, _ := newGenerator(t, nil)
	_, err := g.Run(Request{Input: "/nope.xovi", Output: "/ext.c"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read project file")
}

func TestRun_RequiresOutput(t *testing.T) {
	g, _ := newGenerator(t, map[string]string{"/ext.xovi": "import foo\n"})
	_, err := g.Run(Request{Input: "/ext.xovi"})
	require.Error(t, err)
}
