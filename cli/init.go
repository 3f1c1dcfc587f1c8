package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/imadenugraha/chacrab/authservice"
	"github.com/imadenugraha/chacrab/config"
	"github.com/imadenugraha/chacrab/cryptoprim"
	"github.com/imadenugraha/chacrab/genericclioptions"
	"github.com/imadenugraha/chacrab/input"
)

const minMasterPasswordLen = 12

type initOptions struct {
	*DefaultOptions
}

var _ genericclioptions.CmdOptions = &initOptions{}

func newInitOptions(d *DefaultOptions) *initOptions { return &initOptions{DefaultOptions: d} }

func (*initOptions) Complete() error { return nil }

func (*initOptions) Validate() error { return nil }

func (o *initOptions) Run(ctx context.Context, _ ...string) error {
	syncCfg, err := o.Flags.ResolveSyncConfig()
	if err != nil {
		return err
	}

	if len(syncCfg.Backend) == 0 {
		syncCfg.Backend = defaultBackend
	}

	if syncCfg.SessionTimeoutSecs == 0 {
		syncCfg.SessionTimeoutSecs = config.DefaultSessionTimeoutSecs
	}

	repo, err := openRepository(ctx, syncCfg.Backend, syncCfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer repo.Close()

	if err := repo.InitSchema(ctx); err != nil {
		return err
	}

	password, err := input.PromptNewPassword(o.Out, int(o.In.Fd()), minMasterPasswordLen)
	if err != nil {
		return err
	}
	defer cryptoprim.Zero(password)

	session := openSessionHolder(profileFor(syncCfg), syncCfg.SessionTimeout())

	auth := authservice.New(repo, session)
	if err := auth.Register(ctx, password); err != nil {
		return err
	}

	path, err := config.Path(o.Flags.ConfigPath)
	if err != nil {
		return err
	}

	if err := config.Save(path, syncCfg); err != nil {
		return err
	}

	o.Infof("vault initialized at %s\n", pathOrURL(syncCfg))

	return nil
}

func pathOrURL(c config.SyncConfig) string {
	if len(c.DatabaseURL) > 0 {
		return c.DatabaseURL
	}

	return fmt.Sprintf("<default %s location>", c.Backend)
}

// NewCmdInit creates the 'init' command.
func NewCmdInit(defaults *DefaultOptions) *cobra.Command {
	o := newInitOptions(defaults)

	return &cobra.Command{
		Use:   "init",
		Short: "Initialize a new vault and register the master password",
		RunE: func(cmd *cobra.Command, args []string) error {
			return genericclioptions.ExecuteCommand(cmd.Context(), o, args...)
		},
	}
}
