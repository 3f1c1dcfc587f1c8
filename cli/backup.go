package cli

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/imadenugraha/chacrab/backup"
	"github.com/imadenugraha/chacrab/chacraberrors"
	"github.com/imadenugraha/chacrab/genericclioptions"
)

type backupExportOptions struct {
	*DefaultOptions

	path string
}

var _ genericclioptions.CmdOptions = &backupExportOptions{}

func (*backupExportOptions) Complete() error { return nil }

func (o *backupExportOptions) Validate() error {
	if len(o.path) == 0 {
		return errRequiredFlag("path")
	}

	return nil
}

func (o *backupExportOptions) Run(ctx context.Context, args ...string) error {
	if len(args) > 0 {
		o.path = args[0]
	}

	repo, session, _, err := openVault(ctx, o.Flags)
	if err != nil {
		return err
	}
	defer repo.Close()

	auth, err := repo.LoadAuth(ctx)
	if err != nil {
		return err
	}

	if auth == nil {
		return chacraberrors.ErrNotRegistered
	}

	data, err := backup.Export(ctx, repo, session, *auth)
	if err != nil {
		return err
	}

	if err := os.WriteFile(o.path, data, 0o600); err != nil {
		return err
	}

	o.Infof("exported backup to %s\n", o.path)

	return nil
}

// NewCmdBackupExport creates the 'backup-export' command.
func NewCmdBackupExport(defaults *DefaultOptions) *cobra.Command {
	o := &backupExportOptions{DefaultOptions: defaults}

	cmd := &cobra.Command{
		Use:   "backup-export [path]",
		Short: "Export an encrypted backup of the entire vault",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				o.path = args[0]
			}

			return genericclioptions.ExecuteCommand(cmd.Context(), o, args...)
		},
	}

	cmd.Flags().StringVar(&o.path, "path", "", "output file path")

	return cmd
}

type backupImportOptions struct {
	*DefaultOptions

	path string
}

var _ genericclioptions.CmdOptions = &backupImportOptions{}

func (*backupImportOptions) Complete() error { return nil }

func (o *backupImportOptions) Validate() error {
	if len(o.path) == 0 {
		return errRequiredFlag("path")
	}

	return nil
}

func (o *backupImportOptions) Run(ctx context.Context, args ...string) error {
	if len(args) > 0 {
		o.path = args[0]
	}

	repo, session, _, err := openVault(ctx, o.Flags)
	if err != nil {
		return err
	}
	defer repo.Close()

	data, err := os.ReadFile(o.path)
	if err != nil {
		return err
	}

	if err := backup.Import(ctx, repo, session, data); err != nil {
		return err
	}

	o.Infof("imported backup from %s\n", o.path)

	return nil
}

// NewCmdBackupImport creates the 'backup-import' command.
func NewCmdBackupImport(defaults *DefaultOptions) *cobra.Command {
	o := &backupImportOptions{DefaultOptions: defaults}

	cmd := &cobra.Command{
		Use:   "backup-import [path]",
		Short: "Import an encrypted vault backup",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				o.path = args[0]
			}

			return genericclioptions.ExecuteCommand(cmd.Context(), o, args...)
		},
	}

	cmd.Flags().StringVar(&o.path, "path", "", "input file path")

	return cmd
}
