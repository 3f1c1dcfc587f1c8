package genericclioptions

import (
	"bytes"
	"fmt"
	"io"
	"os"
)

// IOStreams bundles the input/output streams a command needs, so tests can
// swap them for buffers without touching the real terminal.
type IOStreams struct {
	In     FdReader
	Out    io.Writer
	ErrOut io.Writer

	Verbose bool
}

// NewDefaultIOStreams returns the default IOStreams (os.Stdin/Stdout/Stderr).
func NewDefaultIOStreams() *IOStreams {
	return &IOStreams{In: os.Stdin, Out: os.Stdout, ErrOut: os.Stderr}
}

// NewTestIOStreams returns IOStreams with mock input and out/err buffers,
// for unit tests.
//
//nolint:revive
func NewTestIOStreams(in *TestFdReader) (iostream *IOStreams, out *bytes.Buffer, errOut *bytes.Buffer) {
	out, errOut = &bytes.Buffer{}, &bytes.Buffer{}

	iostream = &IOStreams{In: in, Out: out, ErrOut: errOut}

	return
}

// NewTestIOStreamsDiscard returns IOStreams with mocked input that discards
// all output.
func NewTestIOStreamsDiscard(in *TestFdReader) *IOStreams {
	return &IOStreams{In: in, Out: io.Discard, ErrOut: io.Discard}
}

// Printf writes an unprefixed formatted message to stdout.
func (s IOStreams) Printf(format string, args ...any) {
	fmt.Fprintf(s.Out, format, args...)
}

// Debugf writes formatted debug output to stderr, only if Verbose is set.
func (s IOStreams) Debugf(format string, args ...any) {
	if s.Verbose {
		fmt.Fprintf(s.ErrOut, "DEBUG "+format, args...)
	}
}

// Infof writes a formatted informational message to stdout.
func (s IOStreams) Infof(format string, args ...any) {
	fmt.Fprintf(s.Out, "INFO "+format, args...)
}

// Warnf writes a formatted warning to stderr.
func (s IOStreams) Warnf(format string, args ...any) {
	fmt.Fprintf(s.ErrOut, "WARN "+format, args...)
}

// Errorf writes a formatted error message to stderr.
func (s IOStreams) Errorf(format string, args ...any) {
	fmt.Fprintf(s.ErrOut, "ERROR "+format, args...)
}
