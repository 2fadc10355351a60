// Package generate runs the whole pipeline for one project file: read the
// input, parse it, lay out the tables, render the artifacts and write them.
//
// Nothing is written until every artifact has been rendered, and a failed
// write removes whatever was already staged, so a failing run leaves no
// output behind.
package generate

import (
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/leapstack-labs/xovigen/internal/emit"
	"github.com/leapstack-labs/xovigen/internal/linktable"
	"github.com/leapstack-labs/xovigen/internal/parser"
	"github.com/leapstack-labs/xovigen/internal/project"
)

// Request describes one generator run.
type Request struct {
	// Input is the project file.
	Input string
	// Output is the module source destination. Its suffix picks the
	// language of the import macros.
	Output string
	// HeaderOutput is the header destination; empty means no header.
	HeaderOutput string
	// Architecture selects architecture-specific metadata.
	Architecture string
	// ModuleBoilerplate and HeaderBoilerplate are optional paths to files
	// replacing the embedded boilerplate texts.
	ModuleBoilerplate string
	HeaderBoilerplate string
}

// Config holds the generator's dependencies.
type Config struct {
	Fs     afero.Fs
	Logger *slog.Logger
}

// Generator runs requests against a filesystem.
type Generator struct {
	fs     afero.Fs
	logger *slog.Logger
}

// New creates a generator. A nil filesystem means the OS filesystem.
func New(cfg Config) *Generator {
	fs := cfg.Fs
	if fs == nil {
		fs = afero.NewOsFs()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Generator{fs: fs, logger: logger}
}

// Build is the in-memory outcome of parsing and laying out a project.
type Build struct {
	Definition *project.Definition
	Tables     *linktable.Tables
	Warnings   []*parser.Warning
	// Files are the project file followed by every file it pulled in.
	Files []string
}

// Artifacts are the rendered output texts.
type Artifacts struct {
	Module string
	// Header is empty when no header was requested.
	Header string
}

// Load parses the project file named by req and lays out its tables.
func (g *Generator) Load(req Request) (*Build, error) {
	src, err := afero.ReadFile(g.fs, req.Input)
	if err != nil {
		return nil, fmt.Errorf("failed to read project file: %w", err)
	}

	res, err := parser.Parse(src, parser.Options{
		File:         req.Input,
		BaseDir:      filepath.Dir(req.Input),
		Architecture: req.Architecture,
		Language:     project.LanguageForOutput(req.Output),
		Fs:           g.fs,
		Logger:       g.logger,
	})
	if err != nil {
		return nil, err
	}

	tables := res.Tables()
	g.logger.Debug("laid out link table",
		"slots", tables.Count(),
		"metadata", len(tables.Entries),
		"resources", len(res.Definition.Resources))

	return &Build{
		Definition: res.Definition,
		Tables:     tables,
		Warnings:   res.Warnings,
		Files:      append([]string{req.Input}, res.Files...),
	}, nil
}

// Render produces the artifacts for a loaded build.
func (g *Generator) Render(req Request, b *Build) (*Artifacts, error) {
	moduleText, err := g.readBoilerplate(req.ModuleBoilerplate)
	if err != nil {
		return nil, err
	}
	headerText, err := g.readBoilerplate(req.HeaderBoilerplate)
	if err != nil {
		return nil, err
	}

	e := emit.New(moduleText, headerText)
	a := &Artifacts{Module: e.Module(b.Definition, b.Tables)}
	if req.HeaderOutput != "" {
		a.Header = e.Header(b.Definition, b.Tables)
	}
	return a, nil
}

// Run loads, renders and writes the artifacts of req.
func (g *Generator) Run(req Request) (*Build, error) {
	if req.Output == "" {
		return nil, fmt.Errorf("an output path is required")
	}

	b, err := g.Load(req)
	if err != nil {
		return nil, err
	}
	a, err := g.Render(req, b)
	if err != nil {
		return nil, err
	}

	files := []pendingFile{{path: req.Output, data: a.Module}}
	if req.HeaderOutput != "" {
		files = append(files, pendingFile{path: req.HeaderOutput, data: a.Header})
	}
	if err := g.writeAll(files); err != nil {
		return nil, err
	}

	g.logger.Info("generated module", "output", req.Output, "language", b.Definition.Language.String())
	if req.HeaderOutput != "" {
		g.logger.Info("generated header", "output", req.HeaderOutput)
	}
	return b, nil
}

func (g *Generator) readBoilerplate(path string) (string, error) {
	if path == "" {
		return "", nil
	}
	data, err := afero.ReadFile(g.fs, path)
	if err != nil {
		return "", fmt.Errorf("failed to read boilerplate: %w", err)
	}
	return string(data), nil
}
