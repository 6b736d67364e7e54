package output

import (
	"io"

	"github.com/charmbracelet/lipgloss"
)

// Option is a functional option for configuring Printer instances.
type Option func(*Printer)

// WithWriter configures the printer to write output to the specified writer.
// Default is os.Stdout if not specified.
func WithWriter(writer io.Writer) Option {
	return func(p *Printer) {
		if writer != nil {
			p.writer = writer
		}
	}
}

// WithLineEnding replaces the "\n" terminator written by Println and the
// boxed renderers. Serial terminals usually want "\r\n".
func WithLineEnding(ending string) Option {
	return func(p *Printer) {
		p.lineEnding = ending
	}
}

// WithHeaderStyle overrides the layout used by Header.
func WithHeaderStyle(style HeaderStyle) Option {
	return func(p *Printer) {
		p.header = style
	}
}

// WithFrameStyle colors the rules and edges of headers and tables.
// Ignored in test mode.
func WithFrameStyle(style lipgloss.Style) Option {
	return func(p *Printer) {
		p.frame = &style
	}
}

// TestMode configures the printer for deterministic output in tests.
func TestMode() Option {
	return func(p *Printer) {
		p.testMode = true
	}
}

// Silent configures the printer to suppress all output.
func Silent() Option {
	return func(p *Printer) {
		p.silent = true
	}
}

// WithPrefix adds a prefix to every line written by this printer.
func WithPrefix(prefix string) Option {
	return func(p *Printer) {
		p.prefix = prefix
	}
}
