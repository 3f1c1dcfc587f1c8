package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/imadenugraha/chacrab/genericclioptions"
	"github.com/imadenugraha/chacrab/randstring"
)

type generateOptions struct {
	*DefaultOptions

	length     int
	minLower   int
	minUpper   int
	minDigits  int
	minSymbols int
}

var _ genericclioptions.CmdOptions = &generateOptions{}

func (*generateOptions) Complete() error { return nil }

func (o *generateOptions) Validate() error {
	if o.length <= 0 {
		return errRequiredFlag("length")
	}

	return nil
}

func (o *generateOptions) Run(_ context.Context, _ ...string) error {
	password, err := randstring.NewWithPolicy(randstring.PasswordPolicy{
		MinLowercase: o.minLower,
		MinUppercase: o.minUpper,
		MinDigits:    o.minDigits,
		MinSymbols:   o.minSymbols,
		MinLength:    o.length,
	})
	if err != nil {
		return err
	}

	o.Printf("%s\n", password)

	return nil
}

// NewCmdGenerate creates the 'generate' command, a standalone password
// generator that does not touch the vault.
func NewCmdGenerate(defaults *DefaultOptions) *cobra.Command {
	o := &generateOptions{DefaultOptions: defaults, length: generatedPasswordLength}

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a random password without storing it",
		RunE: func(cmd *cobra.Command, args []string) error {
			return genericclioptions.ExecuteCommand(cmd.Context(), o, args...)
		},
	}

	cmd.Flags().IntVar(&o.length, "length", generatedPasswordLength, "password length")
	cmd.Flags().IntVar(&o.minLower, "min-lower", 2, "minimum lowercase letters")
	cmd.Flags().IntVar(&o.minUpper, "min-upper", 2, "minimum uppercase letters")
	cmd.Flags().IntVar(&o.minDigits, "min-digits", 2, "minimum digits")
	cmd.Flags().IntVar(&o.minSymbols, "min-symbols", 2, "minimum symbols")

	return cmd
}
