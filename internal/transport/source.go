package transport

import (
	"bufio"
	"errors"
	"io"

	"github.com/chzyer/readline"
)

// LineSource yields complete input lines. ReadLine blocks until a line
// arrives or the source ends, in which case it returns an error.
type LineSource interface {
	ReadLine() (string, error)
	Close() error
}

// ScannerSource reads newline-terminated lines from any reader, e.g. a pipe
// or a non-interactive stdin.
type ScannerSource struct {
	reader  io.Reader
	scanner *bufio.Scanner
}

// NewScannerSource wraps r. Close closes r when it is an io.Closer.
func NewScannerSource(r io.Reader) *ScannerSource {
	return &ScannerSource{reader: r, scanner: bufio.NewScanner(r)}
}

// ReadLine implements LineSource.
func (s *ScannerSource) ReadLine() (string, error) {
	if s.scanner.Scan() {
		return s.scanner.Text(), nil
	}
	if err := s.scanner.Err(); err != nil {
		return "", err
	}
	return "", io.EOF
}

// Close implements LineSource.
func (s *ScannerSource) Close() error {
	if c, ok := s.reader.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// ReadlineSource reads from an interactive terminal with line editing and
// history.
type ReadlineSource struct {
	rl *readline.Instance
}

// NewReadlineSource opens the controlling terminal for line editing.
func NewReadlineSource(prompt string) (*ReadlineSource, error) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          prompt,
		HistoryLimit:    100,
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return nil, err
	}
	return &ReadlineSource{rl: rl}, nil
}

// Writer returns a writer that redraws the prompt after each write.
func (r *ReadlineSource) Writer() io.Writer {
	return r.rl.Stdout()
}

// ReadLine implements LineSource. Ctrl-C ends the source like Ctrl-D.
func (r *ReadlineSource) ReadLine() (string, error) {
	line, err := r.rl.Readline()
	if errors.Is(err, readline.ErrInterrupt) {
		return "", io.EOF
	}
	return line, err
}

// Close implements LineSource.
func (r *ReadlineSource) Close() error {
	return r.rl.Close()
}
