package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/imadenugraha/chacrab/genericclioptions"
	"github.com/imadenugraha/chacrab/vaultservice"
)

type deleteOptions struct {
	*DefaultOptions

	idOrPrefix string
}

var _ genericclioptions.CmdOptions = &deleteOptions{}

func newDeleteOptions(d *DefaultOptions) *deleteOptions { return &deleteOptions{DefaultOptions: d} }

func (*deleteOptions) Complete() error { return nil }

func (o *deleteOptions) Validate() error {
	if len(o.idOrPrefix) == 0 {
		return errRequiredFlag("id")
	}

	return nil
}

func (o *deleteOptions) Run(ctx context.Context, args ...string) error {
	if len(args) > 0 {
		o.idOrPrefix = args[0]
	}

	repo, session, _, err := openVault(ctx, o.Flags)
	if err != nil {
		return err
	}
	defer repo.Close()

	if err := vaultservice.New(repo, session).Delete(ctx, o.idOrPrefix); err != nil {
		return err
	}

	o.Infof("deleted %s\n", o.idOrPrefix)

	return nil
}

// NewCmdDelete creates the 'delete' command.
func NewCmdDelete(defaults *DefaultOptions) *cobra.Command {
	o := newDeleteOptions(defaults)

	cmd := &cobra.Command{
		Use:   "delete [id-or-prefix]",
		Short: "Tombstone a vault item",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				o.idOrPrefix = args[0]
			}

			return genericclioptions.ExecuteCommand(cmd.Context(), o, args...)
		},
	}

	cmd.Flags().StringVar(&o.idOrPrefix, "id", "", "id or unambiguous id prefix")

	return cmd
}
