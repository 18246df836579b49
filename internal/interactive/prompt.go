// Package interactive implements stderr prompts answered on stdin.
package interactive

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// Prompter asks yes/no questions on out and reads answers from in.
type Prompter struct {
	in  *bufio.Reader
	out io.Writer
}

// New creates a Prompter reading from in and writing prompts to out.
func New(in io.Reader, out io.Writer) *Prompter {
	return &Prompter{
		in:  bufio.NewReader(in),
		out: out,
	}
}

// Confirm asks a yes/no question and returns the answer. Empty input, EOF,
// and read errors all count as no (safe default). Unrecognized input
// re-prompts.
func (p *Prompter) Confirm(question string) bool {
	fmt.Fprintf(p.out, "[listenspec] %s [y/N]: ", question)

	for {
		line, err := p.in.ReadString('\n')
		if err != nil && line == "" {
			fmt.Fprintln(p.out)
			return false
		}

		line = strings.TrimSpace(strings.ToLower(line))
		if line == "" {
			return false
		}

		switch line[0] {
		case 'y':
			return true
		case 'n':
			return false
		default:
			fmt.Fprintf(p.out, "[listenspec] Invalid choice, try again [y/N]: ")
		}
	}
}
