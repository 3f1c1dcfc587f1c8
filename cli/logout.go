package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/imadenugraha/chacrab/authservice"
	"github.com/imadenugraha/chacrab/genericclioptions"
)

type logoutOptions struct {
	*DefaultOptions
}

var _ genericclioptions.CmdOptions = &logoutOptions{}

func newLogoutOptions(d *DefaultOptions) *logoutOptions { return &logoutOptions{DefaultOptions: d} }

func (*logoutOptions) Complete() error { return nil }

func (*logoutOptions) Validate() error { return nil }

func (o *logoutOptions) Run(ctx context.Context, _ ...string) error {
	repo, session, _, err := openVault(ctx, o.Flags)
	if err != nil {
		return err
	}
	defer repo.Close()

	if err := authservice.New(repo, session).Logout(ctx); err != nil {
		return err
	}

	o.Infof("logged out\n")

	return nil
}

// NewCmdLogout creates the 'logout' command.
func NewCmdLogout(defaults *DefaultOptions) *cobra.Command {
	o := newLogoutOptions(defaults)

	return &cobra.Command{
		Use:   "logout",
		Short: "Clear the current session key",
		RunE: func(cmd *cobra.Command, args []string) error {
			return genericclioptions.ExecuteCommand(cmd.Context(), o, args...)
		},
	}
}
