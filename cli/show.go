package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/imadenugraha/chacrab/clipboard"
	"github.com/imadenugraha/chacrab/genericclioptions"
	"github.com/imadenugraha/chacrab/vaultservice"
)

type showOptions struct {
	*DefaultOptions

	idOrPrefix string
	copy       bool
}

var _ genericclioptions.CmdOptions = &showOptions{}

func newShowOptions(d *DefaultOptions) *showOptions { return &showOptions{DefaultOptions: d} }

func (*showOptions) Complete() error { return nil }

func (o *showOptions) Validate() error {
	if len(o.idOrPrefix) == 0 {
		return errRequiredFlag("id")
	}

	return nil
}

func (o *showOptions) Run(ctx context.Context, args ...string) error {
	if len(args) > 0 {
		o.idOrPrefix = args[0]
	}

	repo, session, _, err := openVault(ctx, o.Flags)
	if err != nil {
		return err
	}
	defer repo.Close()

	payload, err := vaultservice.New(repo, session).Reveal(ctx, o.idOrPrefix)
	if err != nil {
		return err
	}
	defer payload.Zero()

	secret := ""

	switch {
	case payload.Password != nil:
		secret = *payload.Password
	case payload.Notes != nil:
		secret = *payload.Notes
	}

	if o.copy {
		if err := clipboard.Copy(secret); err != nil {
			return err
		}

		o.Infof("copied to clipboard\n")

		return nil
	}

	o.Printf("%s\n", secret)

	for k, v := range payload.CustomFields {
		o.Printf("%s: %s\n", k, v)
	}

	return nil
}

// NewCmdShow creates the 'show' command.
func NewCmdShow(defaults *DefaultOptions) *cobra.Command {
	o := newShowOptions(defaults)

	cmd := &cobra.Command{
		Use:   "show [id-or-prefix]",
		Short: "Reveal the decrypted secret of a vault item",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				o.idOrPrefix = args[0]
			}

			return genericclioptions.ExecuteCommand(cmd.Context(), o, args...)
		},
	}

	cmd.Flags().StringVar(&o.idOrPrefix, "id", "", "id or unambiguous id prefix")
	cmd.Flags().BoolVar(&o.copy, "copy", false, "copy the secret to the clipboard instead of printing it")

	return cmd
}
