package output

import (
	"strings"

	"github.com/charmbracelet/x/ansi"
)

// SectionSeparator splits a header message into separately boxed sections.
const SectionSeparator = `\sep`

// Align places a line inside a fixed-width field.
type Align int

const (
	// AlignLeft pads on the right.
	AlignLeft Align = iota
	// AlignCenter splits padding, extra space going right.
	AlignCenter
	// AlignRight pads on the left.
	AlignRight
)

// WrapMode selects how over-long lines are broken.
type WrapMode int

const (
	// WrapWords breaks at spaces and hard-splits words longer than the width.
	WrapWords WrapMode = iota
	// WrapChars breaks every Width cells regardless of words.
	WrapChars
)

// BoxStyle describes how a message is laid out between edge characters.
// A zero Width disables wrapping and alignment.
type BoxStyle struct {
	Edge        string
	Align       Align
	Wrap        WrapMode
	Width       int
	MarginLeft  int
	MarginRight int
}

// HeaderStyle describes a boxed header: rules made of Fill between Cross
// characters, content lines between Edge characters.
type HeaderStyle struct {
	Width int
	Edge  string
	Cross string
	Fill  string
}

// DefaultHeader is the 50 column header used on the console.
var DefaultHeader = HeaderStyle{Width: 50, Edge: "|", Cross: "+", Fill: "-"}

// TableStyle describes a boxed table.
type TableStyle struct {
	MaxColWidth int
	Edge        string
	Cross       string
	Fill        string
}

// DefaultTable is the table layout used on the console.
var DefaultTable = TableStyle{MaxColWidth: 40, Edge: "|", Cross: "+", Fill: "-"}

// Box renders message one output line per element. Input lines are split on
// '\n', trailing '\r' is dropped, and each line is wrapped and aligned.
func Box(message string, style BoxStyle) []string {
	var out []string
	for _, line := range strings.Split(message, "\n") {
		line = strings.TrimSuffix(line, "\r")
		for _, chunk := range wrap(line, style.Width, style.Wrap) {
			out = append(out, boxLine(chunk, style))
		}
	}
	return out
}

// Rule renders a horizontal rule such as "+-----+".
func Rule(width int, fill string, edge string) string {
	if width <= 0 {
		return ""
	}
	if edge == "" {
		return repeatPattern(fill, width)
	}
	e := len(edge)
	if width <= 2*e {
		return edge[:min(width, e)]
	}
	return edge + repeatPattern(fill, width-2*e) + edge
}

// Spacer renders an empty boxed line such as "|     |".
func Spacer(width int, edge string) string {
	return Rule(width, " ", edge)
}

// Header renders message as a boxed, centered header. Each SectionSeparator
// closes one section with a rule.
func Header(message string, style HeaderStyle) []string {
	contentWidth := style.Width
	if style.Edge != "" && style.Width > 2*len(style.Edge) {
		contentWidth = style.Width - 2*len(style.Edge)
	}

	rule := Rule(style.Width, style.Fill, style.Cross)
	out := []string{rule}
	for _, section := range strings.Split(message, SectionSeparator) {
		out = append(out, Box(section, BoxStyle{
			Edge:  style.Edge,
			Align: AlignCenter,
			Wrap:  WrapWords,
			Width: contentWidth,
		})...)
		out = append(out, rule)
	}
	return out
}

// Table renders rows as a boxed grid. Column widths fit the widest cell plus
// one space of margin each side, capped at MaxColWidth; longer cells wrap.
func Table(rows [][]string, header string, style TableStyle) []string {
	if len(rows) == 0 {
		return nil
	}

	cols := 0
	for _, row := range rows {
		cols = max(cols, len(row))
	}
	widths := make([]int, cols)
	for _, row := range rows {
		for c, cell := range row {
			w := ansi.StringWidth(cell) + 2
			if style.MaxColWidth > 0 && w > style.MaxColWidth {
				w = style.MaxColWidth
			}
			widths[c] = max(widths[c], w)
		}
	}

	total := len(style.Edge)
	for _, w := range widths {
		total += w + len(style.Edge)
	}

	divider := style.Cross
	for _, w := range widths {
		divider += repeatPattern(style.Fill, w) + style.Cross
	}

	var out []string
	if header != "" {
		out = append(out, Rule(total, style.Fill, style.Cross))
		out = append(out, Box(header, BoxStyle{
			Edge:  style.Edge,
			Align: AlignCenter,
			Width: total - 2*len(style.Edge),
		})...)
	}
	out = append(out, divider)

	for _, row := range rows {
		blocks := make([][]string, cols)
		height := 0
		for c := 0; c < cols; c++ {
			cell := ""
			if c < len(row) {
				cell = row[c]
			}
			blocks[c] = wrap(cell, widths[c]-2, WrapWords)
			height = max(height, len(blocks[c]))
		}
		for h := 0; h < height; h++ {
			var b strings.Builder
			b.WriteString(style.Edge)
			for c := 0; c < cols; c++ {
				segment := ""
				if h < len(blocks[c]) {
					segment = blocks[c][h]
				}
				b.WriteString(" ")
				b.WriteString(align(segment, widths[c]-2, AlignLeft))
				b.WriteString(" ")
				b.WriteString(style.Edge)
			}
			out = append(out, b.String())
		}
		out = append(out, divider)
	}
	return out
}

func wrap(line string, width int, mode WrapMode) []string {
	if width <= 0 || ansi.StringWidth(line) <= width {
		return []string{line}
	}
	var wrapped string
	switch mode {
	case WrapChars:
		wrapped = ansi.Hardwrap(line, width, true)
	default:
		wrapped = ansi.Wrap(strings.TrimSpace(line), width, "")
	}
	chunks := strings.Split(wrapped, "\n")
	for i := range chunks {
		chunks[i] = strings.TrimRight(chunks[i], " ")
	}
	return chunks
}

func boxLine(content string, style BoxStyle) string {
	var b strings.Builder
	b.WriteString(style.Edge)
	b.WriteString(strings.Repeat(" ", style.MarginLeft))
	if style.Width > 0 {
		b.WriteString(align(content, style.Width, style.Align))
	} else {
		b.WriteString(content)
	}
	b.WriteString(strings.Repeat(" ", style.MarginRight))
	b.WriteString(style.Edge)
	return b.String()
}

func align(s string, width int, a Align) string {
	w := ansi.StringWidth(s)
	if width <= 0 || w >= width {
		return s
	}
	pad := width - w
	switch a {
	case AlignRight:
		return strings.Repeat(" ", pad) + s
	case AlignCenter:
		left := pad / 2
		return strings.Repeat(" ", left) + s + strings.Repeat(" ", pad-left)
	default:
		return s + strings.Repeat(" ", pad)
	}
}

func repeatPattern(pattern string, count int) string {
	if count <= 0 {
		return ""
	}
	if pattern == "" {
		return strings.Repeat(" ", count)
	}
	var b strings.Builder
	b.Grow(count)
	for i := 0; i < count; i++ {
		b.WriteByte(pattern[i%len(pattern)])
	}
	return b.String()
}
