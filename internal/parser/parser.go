// Package parser reads XOVI project files.
//
// A project file is processed one line at a time. Everything after a ';' is
// a comment. Outside of a metadata block every line is "<keyword> <argument>":
//
//	import strdup          ; host function, referenced as $strdup
//	import? fileman$open   ; optional cross-extension import
//	export isDuck
//	override strdup        ; implemented by override$strdup
//	resource icon:icon.png
//	version 1.2.0
//
// Metadata blocks attach key/value pairs to the directive above them
// ("with") or to the project itself ("global-meta"), and end with "end":
//
//	with
//	    priority = 10
//	    armv7.fast = true
//	    help = "string literal"
//	    license = :LICENSE
//	end
package parser

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/afero"

	"github.com/leapstack-labs/xovigen/internal/linktable"
	"github.com/leapstack-labs/xovigen/internal/project"
)

// Mode is the state of the line state machine.
type Mode int

const (
	ModeDefault Mode = iota
	ModeMetadata
)

func (m Mode) String() string {
	if m == ModeMetadata {
		return "metadata"
	}
	return "default"
}

// State is carried from one line to the next.
type State struct {
	Mode Mode
	// Attribution is the owner that metadata lines are attached to. Nil
	// means no directive is in focus.
	Attribution *project.Owner
	// BlockStart is where the open metadata block began.
	BlockStart Position
	// VersionSeen is set once a version directive has been processed.
	VersionSeen bool
}

func (s State) attribute(o project.Owner) State {
	s.Attribution = &o
	return s
}

func (s State) clearAttribution() State {
	s.Attribution = nil
	return s
}

// Line is one raw line of input.
type Line struct {
	Pos  Position
	Text string
}

// Options configure a Parser.
type Options struct {
	// File names the input in positions and messages.
	File string
	// BaseDir resolves relative resource and metadata file paths.
	BaseDir string
	// Architecture selects "<arch>.<key>" metadata lines. Empty means no
	// architecture was supplied.
	Architecture string
	// Language is recorded on the resulting definition.
	Language project.Language
	// Fs is used for resource and metadata file reads. Defaults to the OS.
	Fs     afero.Fs
	Logger *slog.Logger
}

// Result is a fully parsed project.
type Result struct {
	Definition *project.Definition
	Builder    *linktable.Builder
	Warnings   []*Warning
	// Files lists the resource and metadata files that were read, resolved
	// against BaseDir, in reading order.
	Files []string
}

// Tables lays out the link and metadata tables of the parsed project.
func (r *Result) Tables() *linktable.Tables {
	return r.Builder.Build(r.Definition)
}

// Parser turns project-file lines into a Definition. A Parser is used for
// a single input.
type Parser struct {
	opts     Options
	fs       afero.Fs
	logger   *slog.Logger
	def      *project.Definition
	builder  *linktable.Builder
	warnings []*Warning
	files    []string
}

// New creates a parser.
func New(opts Options) *Parser {
	fs := opts.Fs
	if fs == nil {
		fs = afero.NewOsFs()
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	def := project.NewDefinition()
	def.Language = opts.Language
	return &Parser{
		opts:    opts,
		fs:      fs,
		logger:  logger,
		def:     def,
		builder: linktable.NewBuilder(),
	}
}

// Parse parses a whole project file. On any fatal error it returns nil and
// the error; no partial result is ever returned.
func Parse(src []byte, opts Options) (*Result, error) {
	p := New(opts)
	st := State{}
	for _, ln := range SplitLines(opts.File, string(src)) {
		var err error
		st, err = p.Step(st, ln)
		if err != nil {
			return nil, err
		}
	}
	return p.Finish(st)
}

// SplitLines breaks src into numbered lines.
func SplitLines(file, src string) []Line {
	raw := strings.Split(src, "\n")
	if n := len(raw); n > 0 && raw[n-1] == "" {
		raw = raw[:n-1]
	}
	lines := make([]Line, len(raw))
	for i, text := range raw {
		lines[i] = Line{
			Pos:  Position{File: file, Line: i + 1},
			Text: strings.TrimSuffix(text, "\r"),
		}
	}
	return lines
}

// stripComment removes everything from the first ';'.
func stripComment(s string) string {
	if i := strings.IndexByte(s, ';'); i >= 0 {
		return s[:i]
	}
	return s
}

// Step processes one line and returns the state for the next one.
func (p *Parser) Step(st State, ln Line) (State, error) {
	body := stripComment(ln.Text)
	tokens := strings.Fields(body)
	if len(tokens) == 0 {
		return st, nil
	}
	if st.Mode == ModeMetadata {
		return p.stepMetadata(st, ln, body, tokens)
	}
	return p.stepDirective(st, ln, tokens)
}

// Finish validates the final state and returns the result.
func (p *Parser) Finish(st State) (*Result, error) {
	if st.Mode == ModeMetadata {
		return nil, NewParseError(st.BlockStart, "", "metadata block is never closed with 'end'")
	}
	if !st.VersionSeen {
		p.warn(Position{File: p.opts.File}, "", "no version defined in the project file")
	}
	return &Result{
		Definition: p.def,
		Builder:    p.builder,
		Warnings:   p.warnings,
		Files:      p.files,
	}, nil
}

func (p *Parser) stepDirective(st State, ln Line, tokens []string) (State, error) {
	keyword := strings.ToLower(tokens[0])

	if keyword == "global-meta" || keyword == "with" {
		if len(tokens) > 2 {
			return st, NewParseError(ln.Pos, ln.Text, "illegal line")
		}
		if len(tokens) == 2 {
			p.warn(ln.Pos, ln.Text, "additional data found after %s", keyword)
		}
		if keyword == "global-meta" {
			st = st.attribute(project.Global)
		} else if st.Attribution == nil {
			return st, NewParseError(ln.Pos, ln.Text, "'with' used without a directive to attach metadata to")
		}
		st.Mode = ModeMetadata
		st.BlockStart = ln.Pos
		return st, nil
	}

	if len(tokens) != 2 {
		return st, NewParseError(ln.Pos, ln.Text, "illegal line")
	}
	arg := tokens[1]

	switch keyword {
	case "import":
		p.declare(ln, project.Import(arg))
		return st.attribute(project.Import(arg)), nil
	case "import?":
		p.declare(ln, project.Import(arg), project.KindCondition)
		p.declare(ln, project.Condition(arg), project.KindImport)
		return st.attribute(project.Import(arg)), nil
	case "condition":
		p.declare(ln, project.Condition(arg))
		return st.attribute(project.Condition(arg)), nil
	case "export":
		p.declare(ln, project.Export(arg))
		return st.attribute(project.Export(arg)), nil
	case "override":
		p.declare(ln, project.Override(arg))
		return st.attribute(project.Override(arg)), nil
	case "resource":
		if err := p.resource(ln, arg); err != nil {
			return st, err
		}
		return st.clearAttribution(), nil
	case "version":
		st = p.version(st, ln, arg)
		return st.clearAttribution(), nil
	case "ns_setoverrideprefix":
		p.def.OverridePrefix = arg
		return st, nil
	default:
		return st, NewParseErrorf(ln.Pos, ln.Text, "unknown directive %q", tokens[0])
	}
}

// declare adds o to the definition, warning about repeats and about names
// already used by another kind. Kinds listed in expected are not reported.
func (p *Parser) declare(ln Line, o project.Owner, expected ...project.Kind) {
	if !p.def.Declare(o) {
		p.warn(ln.Pos, ln.Text, "%s is declared more than once", o)
		return
	}
	for _, k := range p.def.CollidesWith(o) {
		if containsKind(expected, k) {
			continue
		}
		p.warn(ln.Pos, ln.Text, "%s is also declared as %s %s", o, k, o.Name)
	}
}

func containsKind(kinds []project.Kind, k project.Kind) bool {
	for _, c := range kinds {
		if c == k {
			return true
		}
	}
	return false
}

func (p *Parser) resource(ln Line, arg string) error {
	name, path, ok := strings.Cut(arg, ":")
	if !ok || name == "" || path == "" {
		return NewParseError(ln.Pos, ln.Text, "resource must be written as <name>:<path>")
	}
	for _, r := range p.def.Resources {
		if r.Name == name {
			p.warn(ln.Pos, ln.Text, "resource %s is declared more than once", name)
			return nil
		}
	}
	data, err := p.readFile(path)
	if err != nil {
		return fmt.Errorf("%s: failed to read resource %s: %w", ln.Pos, name, err)
	}
	p.def.Resources = append(p.def.Resources, project.Resource{Name: name, Path: path, Data: data})
	p.logger.Debug("loaded resource", "name", name, "path", path, "bytes", len(data))
	return nil
}

func (p *Parser) version(st State, ln Line, arg string) State {
	if st.VersionSeen {
		p.warn(ln.Pos, ln.Text, "more than one version directive in the project file")
		return st
	}
	st.VersionSeen = true
	v, err := project.ParseVersion(arg)
	if err != nil {
		p.warn(ln.Pos, ln.Text, "%v; assuming %s", err, project.DefaultVersion)
		v = project.DefaultVersion
	}
	p.def.Version = &v
	return st
}

func (p *Parser) stepMetadata(st State, ln Line, body string, tokens []string) (State, error) {
	if len(tokens) == 1 && tokens[0] == "end" {
		st.Mode = ModeDefault
		return st, nil
	}
	if st.Attribution == nil {
		return st, NewParseError(ln.Pos, ln.Text, "metadata line outside of a global-meta or with block")
	}

	name, raw, ok := strings.Cut(strings.TrimSpace(body), " = ")
	if !ok {
		return st, NewParseError(ln.Pos, ln.Text, "metadata lines must be written as <name> = <value>")
	}
	name = strings.TrimSpace(name)
	raw = strings.TrimSpace(raw)

	if arch, key, qualified := strings.Cut(name, "."); qualified {
		if p.opts.Architecture == "" {
			return st, NewParseErrorf(ln.Pos, ln.Text, "metadata key is specific to architecture %q but no architecture was given", arch)
		}
		if !strings.EqualFold(arch, p.opts.Architecture) {
			p.logger.Debug("skipping metadata for other architecture", "line", ln.Pos.Line, "arch", arch)
			return st, nil
		}
		name = key
	}

	v, problem, err := p.parseValue(raw)
	if err != nil {
		return st, fmt.Errorf("%s: failed to read metadata %s: %w", ln.Pos, name, err)
	}
	if problem != "" {
		p.warn(ln.Pos, ln.Text, "%s; line skipped", problem)
		return st, nil
	}

	e := p.builder.AddMetadata(*st.Attribution, name, v)
	p.logger.Debug("metadata", "owner", e.Owner.String(), "name", e.Name, "offset", e.Offset, "kind", e.Value.Kind.String())
	return st, nil
}

// parseValue interprets a metadata value. A non-empty problem describes why
// the value cannot be stored.
func (p *Parser) parseValue(raw string) (v project.Value, problem string, err error) {
	switch {
	case raw != "" && isDigits(raw):
		// the loader reads integers as a C int
		n, err := strconv.ParseInt(raw, 10, 32)
		if err != nil {
			return project.Value{}, fmt.Sprintf("metadata value %s is out of range for a 32-bit integer", raw), nil
		}
		return project.IntValue(int32(n)), "", nil
	case strings.EqualFold(raw, "true"):
		return project.BoolValue(true), "", nil
	case strings.EqualFold(raw, "false"):
		return project.BoolValue(false), "", nil
	case strings.HasPrefix(raw, ":"):
		data, err := p.readFile(raw[1:])
		if err != nil {
			return project.Value{}, "", err
		}
		return project.StringValue(data), "", nil
	case len(raw) >= 2 && raw[0] == '"' && raw[len(raw)-1] == '"':
		return project.StringValue([]byte(raw[1 : len(raw)-1])), "", nil
	default:
		return project.Value{}, fmt.Sprintf("cannot interpret metadata value %s", raw), nil
	}
}

func isDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

func (p *Parser) readFile(path string) ([]byte, error) {
	if !filepath.IsAbs(path) && p.opts.BaseDir != "" {
		path = filepath.Join(p.opts.BaseDir, path)
	}
	p.files = append(p.files, path)
	return afero.ReadFile(p.fs, path)
}

func (p *Parser) warn(pos Position, text, format string, args ...any) {
	w := newWarning(pos, text, format, args...)
	p.warnings = append(p.warnings, w)
	p.logger.Warn(w.Message(), "at", pos.String(), "line", text)
}
