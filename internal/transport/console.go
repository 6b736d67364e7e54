// Package transport implements the line-oriented console every module
// prints to and the command parser reads from.
package transport

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"xeweos/internal/logger"
	"xeweos/internal/output"
	"xeweos/pkg/ostypes"
)

const (
	lineQueueSize = 16
	closeGrace    = time.Second
)

// Console is an ostypes.Transport over a LineSource. A reader goroutine
// moves lines from the source into a bounded queue so HasLine never blocks.
type Console struct {
	source  LineSource
	printer *output.Printer

	lines chan string
	stop  chan struct{}
	done  chan struct{}

	mu      sync.Mutex
	pending *string

	closeOnce sync.Once
}

var _ ostypes.Transport = (*Console)(nil)

// NewConsole starts reading from source. Output goes to printer.
func NewConsole(source LineSource, printer *output.Printer) *Console {
	c := &Console{
		source:  source,
		printer: printer,
		lines:   make(chan string, lineQueueSize),
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
	go c.readLoop()
	return c
}

func (c *Console) readLoop() {
	defer close(c.done)
	for {
		line, err := c.source.ReadLine()
		if err != nil {
			logger.Debug("Console input ended", "error", err)
			return
		}
		select {
		case c.lines <- strings.TrimRight(line, "\r\n"):
		case <-c.stop:
			return
		}
	}
}

// Done is closed once the input source has ended.
func (c *Console) Done() <-chan struct{} {
	return c.done
}

// Close stops the reader goroutine and closes the source.
func (c *Console) Close() error {
	var err error
	c.closeOnce.Do(func() {
		close(c.stop)
		err = c.source.Close()
		select {
		case <-c.done:
		case <-time.After(closeGrace):
			logger.Warn("Console reader did not stop in time")
		}
	})
	return err
}

// HasLine implements ostypes.Transport.
func (c *Console) HasLine() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.pending != nil {
		return true
	}
	select {
	case line := <-c.lines:
		c.pending = &line
		return true
	default:
		return false
	}
}

// ReadLine implements ostypes.Transport.
func (c *Console) ReadLine() string {
	if !c.HasLine() {
		return ""
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	line := *c.pending
	c.pending = nil
	return line
}

// Flush implements ostypes.Transport.
func (c *Console) Flush() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pending = nil
	for {
		select {
		case <-c.lines:
		default:
			return
		}
	}
}

// Print implements ostypes.Transport.
func (c *Console) Print(text string) {
	c.printer.Print(text)
}

// Println implements ostypes.Transport.
func (c *Console) Println(text string) {
	c.printer.Println(text)
}

// Printf implements ostypes.Transport.
func (c *Console) Printf(format string, args ...any) {
	c.printer.Printf(format, args...)
}

// PrintHeader implements ostypes.Transport.
func (c *Console) PrintHeader(text string) {
	c.printer.Header(text)
}

// PrintTable implements ostypes.Transport.
func (c *Console) PrintTable(rows [][]string, title string) {
	c.printer.Table(rows, title)
}

// PromptYesNo implements ostypes.Transport. Answers other than y/yes/n/no
// re-ask until the deadline.
func (c *Console) PromptYesNo(prompt string, timeout time.Duration, def bool) bool {
	deadline := time.Now().Add(timeout)
	for {
		c.printer.Print(prompt + " (y/n): ")
		line, ok := c.waitLine(time.Until(deadline))
		if !ok {
			c.printer.Println("")
			c.printer.Println("! Timeout.")
			return def
		}
		switch strings.ToLower(strings.TrimSpace(line)) {
		case "y", "yes":
			return true
		case "n", "no":
			return false
		}
		c.printer.Println("Please answer y or n.")
	}
}

// PromptLine implements ostypes.Transport.
func (c *Console) PromptLine(prompt string, timeout time.Duration, def string) (string, bool) {
	if def != "" {
		c.printer.Print(fmt.Sprintf("%s [%s]: ", prompt, def))
	} else {
		c.printer.Print(prompt + ": ")
	}
	line, ok := c.waitLine(timeout)
	if !ok {
		c.printer.Println("")
		c.printer.Println("! Timeout.")
		return def, false
	}
	return strings.TrimSpace(line), true
}

func (c *Console) waitLine(timeout time.Duration) (string, bool) {
	c.mu.Lock()
	if c.pending != nil {
		line := *c.pending
		c.pending = nil
		c.mu.Unlock()
		return line, true
	}
	c.mu.Unlock()

	if timeout <= 0 {
		return "", false
	}
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case line := <-c.lines:
		return line, true
	case <-timer.C:
		return "", false
	case <-c.done:
		// drain whatever the reader queued before it stopped
		select {
		case line := <-c.lines:
			return line, true
		default:
			return "", false
		}
	}
}
