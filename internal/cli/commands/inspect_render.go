package commands

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

func renderInspectText(w io.Writer, out *InspectOutput) error {
	_, _ = fmt.Fprintf(w, "%s\n", out.Input)
	if out.Version != "" {
		_, _ = fmt.Fprintf(w, "Version: %s\n", out.Version)
	} else {
		_, _ = fmt.Fprintln(w, "Version: (none)")
	}
	_, _ = fmt.Fprintln(w)

	for _, t := range inspectTables(out) {
		t.SetOutputMirror(w)
		t.SetStyle(table.StyleLight)
		t.Render()
		_, _ = fmt.Fprintln(w)
	}

	_, _ = fmt.Fprintf(w, "(%d slots, %d metadata entries, %d resources)\n",
		out.Summary.Slots, out.Summary.Metadata, out.Summary.Resources)
	return nil
}

func renderInspectMarkdown(w io.Writer, out *InspectOutput) error {
	_, _ = fmt.Fprintf(w, "# %s\n\n", out.Input)
	if out.Version != "" {
		_, _ = fmt.Fprintf(w, "Version: `%s`\n\n", out.Version)
	}
	for _, t := range inspectTables(out) {
		_, _ = fmt.Fprintln(w, t.RenderMarkdown())
		_, _ = fmt.Fprintln(w)
	}
	if len(out.Warnings) > 0 {
		_, _ = fmt.Fprintln(w, "## Warnings")
		_, _ = fmt.Fprintln(w)
		for _, warning := range out.Warnings {
			_, _ = fmt.Fprintf(w, "- %s\n", warning)
		}
	}
	return nil
}

func renderInspectJSON(w io.Writer, out *InspectOutput) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func renderInspectYAML(w io.Writer, out *InspectOutput) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(out); err != nil {
		return err
	}
	return enc.Close()
}

// inspectTables builds the slot, metadata and resource tables. Empty tables
// are left out.
func inspectTables(out *InspectOutput) []table.Writer {
	titleCaser := cases.Title(language.English)
	var tables []table.Writer

	slots := table.NewWriter()
	slots.SetTitle("Link table")
	slots.AppendHeader(table.Row{"#", "Kind", "Name", "Tagged", "Value", "Metadata"})
	for _, s := range out.Slots {
		slots.AppendRow(table.Row{s.Index, titleCaser.String(s.Kind), s.Name, s.Tagged, s.Value, s.Metadata})
	}
	if len(out.Slots) == 0 {
		slots.AppendRow(table.Row{"", "(empty)", "", "", "", ""})
	}
	tables = append(tables, slots)

	if len(out.Metadata) > 0 {
		meta := table.NewWriter()
		meta.SetTitle("Metadata")
		meta.AppendHeader(table.Row{"#", "Owner", "Slot", "Name", "Offset", "Type", "Value"})
		for _, m := range out.Metadata {
			meta.AppendRow(table.Row{m.Index, m.Owner, m.Slot, m.Name, m.Offset, titleCaser.String(m.Type), m.Value})
		}
		tables = append(tables, meta)
	}

	if len(out.Resources) > 0 {
		res := table.NewWriter()
		res.SetTitle("Resources")
		res.AppendHeader(table.Row{"Name", "Path", "Bytes"})
		for _, r := range out.Resources {
			res.AppendRow(table.Row{r.Name, r.Path, r.Bytes})
		}
		tables = append(tables, res)
	}

	return tables
}
