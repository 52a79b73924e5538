// Package snake holds the interactive prompts of the CLI: confirmations, row
// pickers and the subcommand walk behind --interactive.
package snake

import (
	"io"
	"os"
	"strings"
)

// Prompter runs prompts on a pair of streams. The zero value uses the
// process stdin and stdout.
type Prompter struct {
	In  io.Reader
	Out io.Writer
}

func (p Prompter) stdin() io.ReadCloser {
	if p.In == nil {
		return os.Stdin
	}
	return io.NopCloser(p.In)
}

func (p Prompter) stdout() io.WriteCloser {
	if p.Out == nil {
		return os.Stdout
	}
	return NopCloser(p.Out)
}

func (p Prompter) out() io.Writer {
	if p.Out == nil {
		return os.Stdout
	}
	return p.Out
}

type nopCloser struct {
	io.Writer
}

func (nopCloser) Close() error { return nil }

// NopCloser returns a WriteCloser with a no-op Close method wrapping w.
func NopCloser(w io.Writer) io.WriteCloser {
	return nopCloser{w}
}

// matches is the search rule shared by every select: case and space
// insensitive substring match.
func matches(candidate, input string) bool {
	norm := func(s string) string {
		return strings.ReplaceAll(strings.ToLower(s), " ", "")
	}
	return strings.Contains(norm(candidate), norm(input))
}
