package output

import (
	"strings"
	"sync"
)

// CaptureBuffer records everything a Printer writes. The console reader
// goroutine and the loop may write concurrently, so access is locked.
type CaptureBuffer struct {
	mu   sync.Mutex
	text strings.Builder
}

// NewCaptureBuffer returns an empty buffer.
func NewCaptureBuffer() *CaptureBuffer {
	return &CaptureBuffer{}
}

func (c *CaptureBuffer) Write(p []byte) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.text.Write(p)
}

func (c *CaptureBuffer) String() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.text.String()
}

// Len is the number of bytes recorded.
func (c *CaptureBuffer) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.text.Len()
}

// Reset drops the transcript.
func (c *CaptureBuffer) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.text.Reset()
}

// Lines splits the transcript on "\n", ignoring one trailing terminator.
func (c *CaptureBuffer) Lines() []string {
	s := strings.TrimSuffix(c.String(), "\n")
	if s == "" {
		return []string{}
	}
	return strings.Split(s, "\n")
}

// Contains reports whether text appears anywhere in the transcript.
func (c *CaptureBuffer) Contains(text string) bool {
	return strings.Contains(c.String(), text)
}

// CaptureOutput runs fn against a test-mode Printer and returns its output.
func CaptureOutput(fn func(*Printer)) string {
	var buf CaptureBuffer
	fn(NewPrinter(WithWriter(&buf), TestMode()))
	return buf.String()
}
