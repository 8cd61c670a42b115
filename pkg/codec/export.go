package codec

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/aretw0/quire/pkg/core"
)

// Exporter renders a snapshot in one human-facing format.
type Exporter interface {
	Export(s core.Snapshot) ([]byte, error)
}

// ExporterFunc adapts a function to Exporter.
type ExporterFunc func(s core.Snapshot) ([]byte, error)

func (f ExporterFunc) Export(s core.Snapshot) ([]byte, error) { return f(s) }

// DefaultExporters returns the built-in exporters keyed by file extension.
func DefaultExporters() map[string]Exporter {
	return map[string]Exporter{
		".json": ExporterFunc(ExportJSON),
		".yaml": ExporterFunc(ExportYAML),
		".yml":  ExporterFunc(ExportYAML),
		".md":   ExporterFunc(ExportMarkdown),
		".csv":  ExporterFunc(ExportCSV),
	}
}

// ExporterFor picks an exporter by the extension of path (or a bare
// format name such as "md"). Unknown formats fall back to YAML.
func ExporterFor(path string) Exporter {
	ext := strings.ToLower(filepath.Ext(path))
	if ext == "" && path != "" {
		ext = "." + strings.ToLower(path)
	}
	if e, ok := DefaultExporters()[ext]; ok {
		return e
	}
	return ExporterFunc(ExportYAML)
}

// ExportJSON renders an indented JSON document.
func ExportJSON(s core.Snapshot) ([]byte, error) {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to export snapshot: %w", err)
	}
	return append(data, '\n'), nil
}

// pageFrontmatter is the YAML header written above every page.
type pageFrontmatter struct {
	ID        string `yaml:"id"`
	Workspace string `yaml:"workspace"`
	Title     string `yaml:"title"`
	Icon      string `yaml:"icon,omitempty"`
	Template  string `yaml:"template,omitempty"`
	Updated   string `yaml:"updated"`
}

// ExportMarkdown renders every page as a frontmatter block followed by its
// blocks as Markdown. Pages are separated by a blank line.
func ExportMarkdown(s core.Snapshot) ([]byte, error) {
	var buf bytes.Buffer
	for _, ws := range s.Workspaces {
		for _, p := range ws.Pages {
			if buf.Len() > 0 {
				buf.WriteString("\n")
			}
			buf.WriteString("---\n")
			encoder := yaml.NewEncoder(&buf)
			encoder.SetIndent(2)
			fm := pageFrontmatter{
				ID:        p.ID,
				Workspace: ws.Name,
				Title:     p.Title,
				Icon:      p.Icon,
				Template:  p.Template,
				Updated:   p.UpdatedAt.Format("2006-01-02T15:04:05Z07:00"),
			}
			if err := encoder.Encode(fm); err != nil {
				return nil, fmt.Errorf("failed to export page %s: %w", p.ID, err)
			}
			encoder.Close()
			buf.WriteString("---\n")
			fmt.Fprintf(&buf, "# %s\n\n", p.Title)
			writeMarkdownBlocks(&buf, p.Blocks, 0)
		}
	}
	return buf.Bytes(), nil
}

func writeMarkdownBlocks(buf *bytes.Buffer, blocks []core.Block, depth int) {
	indent := strings.Repeat("  ", depth)
	for _, b := range blocks {
		switch b.Type {
		case core.BlockHeading:
			fmt.Fprintf(buf, "%s## %s\n", indent, b.Content)
		case core.BlockTodo:
			fmt.Fprintf(buf, "%s- [ ] %s\n", indent, b.Content)
		case core.BlockQuote:
			fmt.Fprintf(buf, "%s> %s\n", indent, b.Content)
		case core.BlockCode:
			fmt.Fprintf(buf, "%s```\n%s%s\n%s```\n", indent, indent, b.Content, indent)
		default:
			fmt.Fprintf(buf, "%s%s\n", indent, b.Content)
		}
		writeMarkdownBlocks(buf, b.Children, depth+1)
	}
}

// ExportCSV writes one row per block, depth first, with its nesting depth.
func ExportCSV(s core.Snapshot) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write([]string{"workspace", "page", "block", "type", "depth", "content", "comments"}); err != nil {
		return nil, err
	}

	var walk func(ws, page string, blocks []core.Block, depth int) error
	walk = func(ws, page string, blocks []core.Block, depth int) error {
		for _, b := range blocks {
			row := []string{ws, page, b.ID, string(b.Type), fmt.Sprint(depth), b.Content, fmt.Sprint(len(b.Comments))}
			if err := w.Write(row); err != nil {
				return err
			}
			if err := walk(ws, page, b.Children, depth+1); err != nil {
				return err
			}
		}
		return nil
	}
	for _, ws := range s.Workspaces {
		for _, p := range ws.Pages {
			if err := walk(ws.Name, p.Title, p.Blocks, 0); err != nil {
				return nil, fmt.Errorf("failed to export page %s: %w", p.ID, err)
			}
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}
