package genericclioptions

import (
	"errors"
	"fmt"
	"io"

	"github.com/imadenugraha/chacrab/input"
)

// ErrInvalidStdinUsage indicates non-interactive mode is requested without
// piped or redirected input.
var ErrInvalidStdinUsage = errors.New("non-interactive flag can only be used with piped input")

// StdioOptions provides stdin-related CLI helpers, intended to be embedded
// in option structs.
type StdioOptions struct {
	NonInteractive bool

	*IOStreams
}

var _ BaseOptions = &StdioOptions{}

// Complete auto-enables non-interactive mode when piped input is detected.
func (o *StdioOptions) Complete() error {
	if !o.NonInteractive {
		fi, err := o.In.Stat()
		if err != nil {
			return fmt.Errorf("stat input: %w", err)
		}

		if input.IsPipedOrRedirected(fi) {
			o.Debugf("input is piped or redirected; enabling non-interactive mode\n")
			o.NonInteractive = true
		}
	}

	if !o.Verbose {
		o.ErrOut = io.Discard
	}

	return nil
}

// Validate ensures non-interactive mode is only requested with piped input.
func (o *StdioOptions) Validate() error {
	fi, err := o.In.Stat()
	if err != nil {
		return fmt.Errorf("stat input: %w", err)
	}

	if o.NonInteractive && !input.IsPipedOrRedirected(fi) {
		return ErrInvalidStdinUsage
	}

	return nil
}
