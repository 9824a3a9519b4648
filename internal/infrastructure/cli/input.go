package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
)

// LineReader feeds input lines to both the REPL and the confirmer.
// A single goroutine owns the underlying scanner.
type LineReader struct {
	lines chan string
}

// NewLineReader starts reading r line by line.
func NewLineReader(r io.Reader) *LineReader {
	lr := &LineReader{lines: make(chan string)}
	go func() {
		defer close(lr.lines)
		scanner := bufio.NewScanner(r)
		scanner.Buffer(make([]byte, 64*1024), 1024*1024)
		for scanner.Scan() {
			lr.lines <- scanner.Text()
		}
	}()
	return lr
}

// Next blocks for the next line. ok is false at end of input or cancellation.
func (lr *LineReader) Next(ctx context.Context) (line string, ok bool) {
	select {
	case <-ctx.Done():
		return "", false
	case line, ok = <-lr.lines:
		return line, ok
	}
}

// Confirmer asks yes/no questions on the terminal.
type Confirmer struct {
	in  *LineReader
	out io.Writer
}

// NewConfirmer creates a terminal confirmer.
func NewConfirmer(in *LineReader, out io.Writer) *Confirmer {
	return &Confirmer{in: in, out: out}
}

// Confirm implements ports.Confirmer. Only an explicit yes approves.
func (c *Confirmer) Confirm(ctx context.Context, prompt string) bool {
	fmt.Fprintf(c.out, "%s [y/N] ", prompt)
	line, ok := c.in.Next(ctx)
	if !ok {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	default:
		return false
	}
}
