// Package report renders run summaries and column listings for the CLI as a
// text table, JSON or YAML.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"gopkg.in/yaml.v3"
)

// Output formats.
const (
	FormatTable = "table"
	FormatJSON  = "json"
	FormatYAML  = "yaml"
)

// Group is one written output layer.
type Group struct {
	ID       int    `json:"id" yaml:"id"`
	Label    string `json:"label" yaml:"label"`
	Features int    `json:"features" yaml:"features"`
	File     string `json:"file" yaml:"file"`
	Bytes    int64  `json:"bytes" yaml:"bytes"`
}

// Dropped is a group removed because its ranked values summed to zero.
type Dropped struct {
	ID       int    `json:"id" yaml:"id"`
	Label    string `json:"label" yaml:"label"`
	Features int    `json:"features" yaml:"features"`
}

// Summary describes a finished run.
type Summary struct {
	RunID      string        `json:"run_id" yaml:"run_id"`
	Source     string        `json:"source" yaml:"source"`
	OutputDir  string        `json:"output_dir" yaml:"output_dir"`
	N          int           `json:"n" yaml:"n"`
	Attributes []string      `json:"attributes" yaml:"attributes"`
	Features   int           `json:"features" yaml:"features"`
	Groups     []Group       `json:"groups" yaml:"groups"`
	Dropped    []Dropped     `json:"dropped,omitempty" yaml:"dropped,omitempty"`
	Manifest   string        `json:"manifest,omitempty" yaml:"manifest,omitempty"`
	Elapsed    time.Duration `json:"-" yaml:"-"`
	ElapsedMS  int64         `json:"elapsed_ms" yaml:"elapsed_ms"`
}

// Run writes s to w in format.
func Run(w io.Writer, format string, s Summary) error {
	s.ElapsedMS = s.Elapsed.Milliseconds()
	switch format {
	case FormatJSON:
		return renderJSON(w, s)
	case FormatYAML:
		return renderYAML(w, s)
	case FormatTable, "":
		return runTable(w, s)
	default:
		return fmt.Errorf("report: unknown format %q", format)
	}
}

func runTable(w io.Writer, s Summary) error {
	_, _ = fmt.Fprintf(w, "%s: top %d of %s\n", s.Source, s.N, strings.Join(s.Attributes, ", "))

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.Style().Format.Footer = text.FormatDefault
	t.AppendHeader(table.Row{"ID", "Top activities", "Features", "File", "Size"})
	var bytes int64
	written := 0
	for _, g := range s.Groups {
		t.AppendRow(table.Row{g.ID, g.Label, humanize.Comma(int64(g.Features)), g.File, humanize.Bytes(uint64(g.Bytes))})
		bytes += g.Bytes
		written += g.Features
	}
	t.AppendFooter(table.Row{"", fmt.Sprintf("%d groups", len(s.Groups)), humanize.Comma(int64(written)), "", humanize.Bytes(uint64(bytes))})
	t.Render()

	for _, d := range s.Dropped {
		label := d.Label
		if label == "" {
			label = "(no values)"
		}
		_, _ = fmt.Fprintf(w, "dropped group %d %s: %s features sum to zero\n", d.ID, label, humanize.Comma(int64(d.Features)))
	}
	if s.Manifest != "" {
		_, _ = fmt.Fprintf(w, "manifest: %s\n", s.Manifest)
	}
	_, _ = fmt.Fprintf(w, "%s features in %s (run %s)\n",
		humanize.Comma(int64(s.Features)), s.Elapsed.Truncate(time.Millisecond), s.RunID)
	return nil
}

// Column is one attribute of a layer.
type Column struct {
	Name      string `json:"name" yaml:"name"`
	Type      string `json:"type" yaml:"type"`
	Size      int    `json:"size" yaml:"size"`
	Precision int    `json:"precision" yaml:"precision"`
	Numeric   bool   `json:"numeric" yaml:"numeric"`
}

// Layer is the column listing of a shapefile.
type Layer struct {
	Source    string   `json:"source" yaml:"source"`
	ShapeType string   `json:"shape_type" yaml:"shape_type"`
	Features  int      `json:"features" yaml:"features"`
	Encoding  string   `json:"encoding" yaml:"encoding"`
	Columns   []Column `json:"columns" yaml:"columns"`
}

// Columns writes the column listing of l to w in format.
func Columns(w io.Writer, format string, l Layer) error {
	switch format {
	case FormatJSON:
		return renderJSON(w, l)
	case FormatYAML:
		return renderYAML(w, l)
	case FormatTable, "":
	default:
		return fmt.Errorf("report: unknown format %q", format)
	}

	_, _ = fmt.Fprintf(w, "%s: %s, %s features, %s\n", l.Source, l.ShapeType, humanize.Comma(int64(l.Features)), l.Encoding)
	if len(l.Columns) == 0 {
		_, _ = fmt.Fprintln(w, "(0 columns)")
		return nil
	}
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"#", "Name", "Type", "Size", "Rankable"})
	for i, c := range l.Columns {
		size := fmt.Sprint(c.Size)
		if c.Precision > 0 {
			size = fmt.Sprintf("%d.%d", c.Size, c.Precision)
		}
		rankable := ""
		if c.Numeric {
			rankable = "yes"
		}
		t.AppendRow(table.Row{i + 1, c.Name, c.Type, size, rankable})
	}
	t.Render()
	return nil
}

func renderJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func renderYAML(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}
