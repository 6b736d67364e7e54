package testutils

import (
	"fmt"
	"sync"
	"time"

	"xeweos/internal/output"
	"xeweos/pkg/ostypes"
)

// FakeConsole implements ostypes.Transport with scripted input and captured
// output. Unscripted prompts return their default as if they timed out.
type FakeConsole struct {
	mu      sync.Mutex
	lines   []string
	yesNo   []bool
	answers []string
	prompts []string
	buffer  *output.CaptureBuffer
	printer *output.Printer
	flushed int
}

var _ ostypes.Transport = (*FakeConsole)(nil)

// NewFakeConsole creates a console with no scripted input.
func NewFakeConsole() *FakeConsole {
	buffer := output.NewCaptureBuffer()
	return &FakeConsole{
		buffer:  buffer,
		printer: output.NewPrinter(output.WithWriter(buffer), output.TestMode()),
	}
}

// Feed queues command lines for HasLine/ReadLine.
func (c *FakeConsole) Feed(lines ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lines = append(c.lines, lines...)
}

// AnswerYesNo queues answers for PromptYesNo.
func (c *FakeConsole) AnswerYesNo(answers ...bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.yesNo = append(c.yesNo, answers...)
}

// AnswerLines queues answers for PromptLine.
func (c *FakeConsole) AnswerLines(answers ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.answers = append(c.answers, answers...)
}

// Prompts returns every prompt shown so far.
func (c *FakeConsole) Prompts() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.prompts...)
}

// Output returns everything printed so far.
func (c *FakeConsole) Output() string {
	return c.buffer.String()
}

// Contains reports whether the output contains text.
func (c *FakeConsole) Contains(text string) bool {
	return c.buffer.Contains(text)
}

// ResetOutput clears captured output.
func (c *FakeConsole) ResetOutput() {
	c.buffer.Reset()
}

// Flushes returns how many times Flush was called.
func (c *FakeConsole) Flushes() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.flushed
}

// HasLine implements ostypes.Transport.
func (c *FakeConsole) HasLine() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.lines) > 0
}

// ReadLine implements ostypes.Transport.
func (c *FakeConsole) ReadLine() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.lines) == 0 {
		return ""
	}
	line := c.lines[0]
	c.lines = c.lines[1:]
	return line
}

// Print implements ostypes.Transport.
func (c *FakeConsole) Print(text string) { c.printer.Print(text) }

// Println implements ostypes.Transport.
func (c *FakeConsole) Println(text string) { c.printer.Println(text) }

// Printf implements ostypes.Transport.
func (c *FakeConsole) Printf(format string, args ...any) { c.printer.Printf(format, args...) }

// PrintHeader implements ostypes.Transport.
func (c *FakeConsole) PrintHeader(text string) { c.printer.Header(text) }

// PrintTable implements ostypes.Transport.
func (c *FakeConsole) PrintTable(rows [][]string, title string) { c.printer.Table(rows, title) }

// PromptYesNo implements ostypes.Transport.
func (c *FakeConsole) PromptYesNo(prompt string, _ time.Duration, def bool) bool {
	c.mu.Lock()
	c.prompts = append(c.prompts, prompt)
	if len(c.yesNo) == 0 {
		c.mu.Unlock()
		c.printer.Println(fmt.Sprintf("%s (y/n): ", prompt))
		c.printer.Println("! Timeout.")
		return def
	}
	answer := c.yesNo[0]
	c.yesNo = c.yesNo[1:]
	c.mu.Unlock()
	c.printer.Println(fmt.Sprintf("%s (y/n): %t", prompt, answer))
	return answer
}

// PromptLine implements ostypes.Transport.
func (c *FakeConsole) PromptLine(prompt string, _ time.Duration, def string) (string, bool) {
	c.mu.Lock()
	c.prompts = append(c.prompts, prompt)
	if len(c.answers) == 0 {
		c.mu.Unlock()
		c.printer.Println(prompt + ": ")
		c.printer.Println("! Timeout.")
		return def, false
	}
	answer := c.answers[0]
	c.answers = c.answers[1:]
	c.mu.Unlock()
	c.printer.Println(prompt + ": " + answer)
	return answer, true
}

// Flush implements ostypes.Transport.
func (c *FakeConsole) Flush() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lines = nil
	c.flushed++
}
