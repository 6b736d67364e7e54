package output

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
)

// Printer writes console text and boxed layouts to a writer.
type Printer struct {
	writer     io.Writer
	lineEnding string
	prefix     string
	header     HeaderStyle
	table      TableStyle
	frame      *lipgloss.Style
	testMode   bool
	silent     bool

	// Thread safety for concurrent output
	mu sync.Mutex
}

// NewPrinter creates a new Printer with the given options.
// By default, it writes to os.Stdout with "\n" line endings.
func NewPrinter(options ...Option) *Printer {
	p := &Printer{
		writer:     os.Stdout,
		lineEnding: "\n",
		header:     DefaultHeader,
		table:      DefaultTable,
	}

	for _, opt := range options {
		opt(p)
	}

	return p
}

// Print outputs text without a terminator.
func (p *Printer) Print(text string) {
	p.write(p.prefix + text)
}

// Printf outputs formatted text without a terminator.
func (p *Printer) Printf(format string, args ...interface{}) {
	p.write(p.prefix + fmt.Sprintf(format, args...))
}

// Println outputs text followed by the configured line ending. Embedded
// newlines are normalized so every line gets the prefix and ending.
func (p *Printer) Println(text string) {
	p.Lines(strings.Split(strings.TrimSuffix(text, "\n"), "\n"))
}

// Lines outputs each element as one terminated line.
func (p *Printer) Lines(lines []string) {
	var b strings.Builder
	for _, line := range lines {
		b.WriteString(p.prefix)
		b.WriteString(strings.TrimSuffix(line, "\r"))
		b.WriteString(p.lineEnding)
	}
	p.write(b.String())
}

// Header outputs message as a centered, boxed header. Sections are split on
// SectionSeparator.
func (p *Printer) Header(message string) {
	p.Lines(p.paint(Header(message, p.header)))
}

// Table outputs rows as a boxed grid with an optional title row.
func (p *Printer) Table(rows [][]string, title string) {
	p.Lines(p.paint(Table(rows, title, p.table)))
}

func (p *Printer) paint(lines []string) []string {
	if p.frame == nil || p.testMode {
		return lines
	}
	for i, line := range lines {
		lines[i] = p.frame.Render(line)
	}
	return lines
}

func (p *Printer) write(text string) {
	if p.silent || text == "" {
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	_, _ = io.WriteString(p.writer, text) // Ignore write errors for output operations
}
