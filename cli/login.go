package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/imadenugraha/chacrab/authservice"
	"github.com/imadenugraha/chacrab/cryptoprim"
	"github.com/imadenugraha/chacrab/genericclioptions"
	"github.com/imadenugraha/chacrab/input"
)

type loginOptions struct {
	*DefaultOptions
}

var _ genericclioptions.CmdOptions = &loginOptions{}

func newLoginOptions(d *DefaultOptions) *loginOptions { return &loginOptions{DefaultOptions: d} }

func (*loginOptions) Complete() error { return nil }

func (*loginOptions) Validate() error { return nil }

func (o *loginOptions) Run(ctx context.Context, _ ...string) error {
	repo, session, _, err := openVault(ctx, o.Flags)
	if err != nil {
		return err
	}
	defer repo.Close()

	password, err := input.PromptPassword(o.Out, int(o.In.Fd()))
	if err != nil {
		return err
	}
	defer cryptoprim.Zero(password)

	if err := authservice.New(repo, session).Login(ctx, password); err != nil {
		return err
	}

	o.Infof("logged in\n")

	return nil
}

// NewCmdLogin creates the 'login' command.
func NewCmdLogin(defaults *DefaultOptions) *cobra.Command {
	o := newLoginOptions(defaults)

	return &cobra.Command{
		Use:   "login",
		Short: "Unlock the vault for this session",
		RunE: func(cmd *cobra.Command, args []string) error {
			return genericclioptions.ExecuteCommand(cmd.Context(), o, args...)
		},
	}
}
