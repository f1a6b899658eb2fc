// Package boxui provides the reference console UI the box-add pipeline
// talks to through the UI interface: a leveled message sink plus
// interactive disambiguation prompts.
package boxui

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/cperrin88/boxkeep/pkg/boxurl"
)

// UI is the interface the box-add pipeline uses to surface information and
// ask the operator to disambiguate between candidates. Every implementation
// must scrub embedded credentials from any URL before it reaches the
// operator.
type UI interface {
	Detail(msg string)
	Warn(msg string)
	Ask(prompt string, options []string) (int, error)
}

// ConsoleUI is the reference UI implementation: Detail/Warn write to an
// output stream, Ask reads a 1-based selection from an input stream.
type ConsoleUI struct {
	Out io.Writer
	In  io.Reader
}

// NewConsoleUI returns a ConsoleUI wired to stdout/stdin.
func NewConsoleUI() *ConsoleUI {
	return &ConsoleUI{Out: os.Stdout, In: os.Stdin}
}

// Detail writes an informational message, scrubbing any embedded URL
// credentials first.
func (c *ConsoleUI) Detail(msg string) {
	fmt.Fprintln(c.Out, scrubLine(msg))
}

// Warn writes a warning message, scrubbing any embedded URL credentials
// first.
func (c *ConsoleUI) Warn(msg string) {
	fmt.Fprintln(c.Out, "warning: "+scrubLine(msg))
}

// Ask presents prompt followed by a 1-based numbered menu of options and
// reads the operator's selection, returning its 0-based index.
func (c *ConsoleUI) Ask(prompt string, options []string) (int, error) {
	fmt.Fprintln(c.Out, scrubLine(prompt))
	for i, opt := range options {
		fmt.Fprintf(c.Out, "  %d) %s\n", i+1, scrubLine(opt))
	}
	fmt.Fprint(c.Out, "> ")

	scanner := bufio.NewScanner(c.In)
	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return 0, fmt.Errorf("reading selection: %w", err)
		}
		return 0, fmt.Errorf("no selection provided")
	}

	choice, err := strconv.Atoi(strings.TrimSpace(scanner.Text()))
	if err != nil {
		return 0, fmt.Errorf("invalid selection %q", scanner.Text())
	}
	if choice < 1 || choice > len(options) {
		return 0, fmt.Errorf("selection %d out of range", choice)
	}

	return choice - 1, nil
}

// scrubLine masks the embedded credentials of every whitespace-separated
// field of msg that contains "://", wherever it sits in the message. The
// fields are joined back with single spaces.
func scrubLine(msg string) string {
	fields := strings.Fields(msg)
	for i, field := range fields {
		if strings.Contains(field, "://") {
			fields[i] = boxurl.Scrub(field)
		}
	}
	return strings.Join(fields, " ")
}
