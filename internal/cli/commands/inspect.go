package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/leapstack-labs/xovigen/internal/generate"
	"github.com/leapstack-labs/xovigen/internal/linktable"
	"github.com/leapstack-labs/xovigen/internal/project"
)

// Inspect output formats. FormatAuto picks text on a terminal and markdown
// otherwise.
const (
	FormatAuto     = "auto"
	FormatText     = "text"
	FormatMarkdown = "markdown"
	FormatJSON     = "json"
	FormatYAML     = "yaml"
)

// InspectFormats lists the accepted values of inspect's --format flag.
var InspectFormats = []string{FormatAuto, FormatText, FormatMarkdown, FormatJSON, FormatYAML}

// InspectOutput is the report printed by the inspect command.
type InspectOutput struct {
	Input     string         `json:"input" yaml:"input"`
	Version   string         `json:"version,omitempty" yaml:"version,omitempty"`
	Slots     []SlotInfo     `json:"slots" yaml:"slots"`
	Metadata  []MetadataInfo `json:"metadata" yaml:"metadata"`
	Resources []ResourceInfo `json:"resources" yaml:"resources"`
	Warnings  []string       `json:"warnings,omitempty" yaml:"warnings,omitempty"`
	Summary   InspectSummary `json:"summary" yaml:"summary"`
}

// SlotInfo describes one link-table slot.
type SlotInfo struct {
	Index    int    `json:"index" yaml:"index"`
	Kind     string `json:"kind" yaml:"kind"`
	Name     string `json:"name" yaml:"name"`
	Tagged   string `json:"tagged" yaml:"tagged"`
	Value    string `json:"value" yaml:"value"`
	Metadata int    `json:"metadata" yaml:"metadata"`
}

// MetadataInfo describes one metadata entry.
type MetadataInfo struct {
	Index int    `json:"index" yaml:"index"`
	Owner string `json:"owner" yaml:"owner"`
	// Slot is the value-table index of the owner; 0 for global metadata.
	Slot   int    `json:"slot" yaml:"slot"`
	Name   string `json:"name" yaml:"name"`
	Offset int    `json:"offset" yaml:"offset"`
	Type   string `json:"type" yaml:"type"`
	Value  string `json:"value" yaml:"value"`
}

// ResourceInfo describes one embedded resource.
type ResourceInfo struct {
	Name  string `json:"name" yaml:"name"`
	Path  string `json:"path" yaml:"path"`
	Bytes int    `json:"bytes" yaml:"bytes"`
}

// InspectSummary holds the table totals.
type InspectSummary struct {
	Slots     int `json:"slots" yaml:"slots"`
	Metadata  int `json:"metadata" yaml:"metadata"`
	Global    int `json:"global" yaml:"global"`
	Resources int `json:"resources" yaml:"resources"`
}

// NewInspectCommand creates the inspect command.
func NewInspectCommand() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "inspect <input>",
		Short: "Show the link table of a project file",
		Long: `Parse a project file and print the link table it produces, without
writing any output files.

The report lists every slot with its tagged name and value, the metadata
entries with their name-table offsets, and the embedded resources.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInspect(cmd, args[0], format)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", FormatAuto, "Output format (auto|text|markdown|json|yaml)")
	_ = cmd.RegisterFlagCompletionFunc("format", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return InspectFormats, cobra.ShellCompDirectiveNoFileComp
	})

	return cmd
}

func runInspect(cmd *cobra.Command, input, format string) error {
	cctx := NewCommandContext(cmd)

	g := generate.New(generate.Config{Fs: cctx.Fs, Logger: cctx.Logger})
	b, err := g.Load(generate.Request{
		Input:        input,
		Output:       cctx.Cfg.Output,
		Architecture: cctx.Cfg.Architecture,
	})
	if err != nil {
		return err
	}

	out := newInspectOutput(input, b)
	w := cmd.OutOrStdout()

	if format == FormatAuto {
		format = FormatMarkdown
		if isTerminal(w) {
			format = FormatText
		}
	}

	switch format {
	case FormatText:
		return renderInspectText(w, out)
	case FormatMarkdown, "md":
		return renderInspectMarkdown(w, out)
	case FormatJSON:
		return renderInspectJSON(w, out)
	case FormatYAML:
		return renderInspectYAML(w, out)
	default:
		return fmt.Errorf("unknown format %q (expected one of auto, text, markdown, json, yaml)", format)
	}
}

func newInspectOutput(input string, b *generate.Build) *InspectOutput {
	out := &InspectOutput{
		Input:     input,
		Slots:     []SlotInfo{},
		Metadata:  []MetadataInfo{},
		Resources: []ResourceInfo{},
	}
	if b.Definition.Version != nil {
		out.Version = b.Definition.Version.String()
	}

	for _, s := range b.Tables.Slots {
		out.Slots = append(out.Slots, SlotInfo{
			Index:    s.Index,
			Kind:     s.Owner.Kind.String(),
			Name:     s.Owner.Name,
			Tagged:   s.TaggedName(),
			Value:    slotValue(s),
			Metadata: junctionLen(b.Tables.JunctionFor(s.Owner)),
		})
	}

	for i, e := range b.Tables.Entries {
		out.Metadata = append(out.Metadata, MetadataInfo{
			Index:  i,
			Owner:  e.Owner.String(),
			Slot:   ownerSlot(b.Tables, e.Owner),
			Name:   e.Name,
			Offset: e.Offset,
			Type:   e.Value.Kind.String(),
			Value:  e.Value.String(),
		})
	}

	for _, r := range b.Definition.Resources {
		out.Resources = append(out.Resources, ResourceInfo{Name: r.Name, Path: r.Path, Bytes: len(r.Data)})
	}

	for _, w := range b.Warnings {
		out.Warnings = append(out.Warnings, w.String())
	}

	out.Summary = InspectSummary{
		Slots:     len(out.Slots),
		Metadata:  len(out.Metadata),
		Global:    junctionLen(b.Tables.JunctionFor(project.Global)),
		Resources: len(out.Resources),
	}
	return out
}

func slotValue(s linktable.Slot) string {
	if !s.Resolved() {
		return "0"
	}
	return s.Symbol
}

func junctionLen(j *linktable.Junction) int {
	if j == nil {
		return 0
	}
	return len(j.Entries)
}

// isTerminal reports whether w is an interactive terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func ownerSlot(t *linktable.Tables, o project.Owner) int {
	if s, ok := t.SlotFor(o); ok {
		return s.Index
	}
	return 0
}
