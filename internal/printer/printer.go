// Package printer renders classified scan results: a flat list, a JSON
// document, or a rendered tree.
package printer

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/disiqueira/gotree/v3"
	"github.com/fatih/color"

	"github.com/treeward/treeward/internal/walker"
)

// Printer renders classified entries to the configured output.
type Printer struct {
	output     io.Writer
	useColors  bool
	jsonOutput bool
	treeOutput bool
	count      int64
	buffered   []walker.Item
}

// New creates a Printer with default settings.
func New() *Printer {
	return &Printer{output: os.Stdout, useColors: true}
}

// WithOutput sets the output destination.
func (p *Printer) WithOutput(w io.Writer) *Printer {
	p.output = w
	return p
}

// WithColors enables or disables colored output.
func (p *Printer) WithColors(enabled bool) *Printer {
	p.useColors = enabled
	return p
}

// WithJSON enables JSON output mode.
func (p *Printer) WithJSON(enabled bool) *Printer {
	p.jsonOutput = enabled
	return p
}

// WithTree enables tree output mode.
func (p *Printer) WithTree(enabled bool) *Printer {
	p.treeOutput = enabled
	return p
}

// PrintItem renders one classified entry. Tree and JSON modes buffer until
// Finalize; list mode prints immediately.
func (p *Printer) PrintItem(item walker.Item) {
	p.count++
	if p.jsonOutput || p.treeOutput {
		p.buffered = append(p.buffered, item)
		return
	}
	fmt.Fprintf(p.output, "%s  %s\n", p.statusTag(item.Status), item.Path)
}

// GetCount returns the number of entries printed or buffered so far.
func (p *Printer) GetCount() int64 {
	return p.count
}

// Finalize flushes buffered output for the tree and JSON modes.
func (p *Printer) Finalize() error {
	switch {
	case p.jsonOutput:
		return p.finalizeJSON()
	case p.treeOutput:
		return p.finalizeTree()
	}
	return nil
}

type jsonEntry struct {
	Path   string `json:"path"`
	IsDir  bool   `json:"is_dir"`
	Status string `json:"status"`
}

func (p *Printer) finalizeJSON() error {
	entries := make([]jsonEntry, 0, len(p.buffered))
	for _, item := range p.buffered {
		entries = append(entries, jsonEntry{
			Path:   item.Path,
			IsDir:  item.IsDir,
			Status: item.Status.String(),
		})
	}
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("printer: encode entries: %w", err)
	}
	_, err = fmt.Fprintf(p.output, "%s\n", data)
	return err
}

// finalizeTree renders the buffered entries as a tree. Entries arrive
// parent before children, so directory nodes exist before their contents.
func (p *Printer) finalizeTree() error {
	root := gotree.New(".")
	dirs := map[string]gotree.Tree{".": root}

	for _, item := range p.buffered {
		parent := dirs[parentPath(item.Path)]
		if parent == nil {
			parent = root
		}
		node := parent.Add(p.statusLetter(item.Status) + " " + basename(item.Path))
		if item.IsDir {
			dirs[item.Path] = node
		}
	}

	_, err := fmt.Fprint(p.output, root.Print())
	return err
}

func parentPath(path string) string {
	i := strings.LastIndexByte(path, '/')
	if i <= 1 { // "./name" has its slash at index 1
		return "."
	}
	return path[:i]
}

func basename(path string) string {
	i := strings.LastIndexByte(path, '/')
	return path[i+1:]
}

func (p *Printer) statusTag(s walker.Status) string {
	tag := fmt.Sprintf("%-8s", s)
	if !p.useColors {
		return tag
	}
	switch s {
	case walker.StatusIgnored:
		return color.RedString(tag)
	case walker.StatusTaken:
		return color.GreenString(tag)
	case walker.StatusTracked:
		return color.BlueString(tag)
	}
	return color.CyanString(tag)
}

func (p *Printer) statusLetter(s walker.Status) string {
	switch s {
	case walker.StatusIgnored:
		return "[I]"
	case walker.StatusTaken:
		return "[T]"
	case walker.StatusTracked:
		return "[=]"
	}
	return "[N]"
}
