package cli

import (
	"context"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/imadenugraha/chacrab/genericclioptions"
	"github.com/imadenugraha/chacrab/syncengine"
)

type syncOptions struct {
	*DefaultOptions
}

var _ genericclioptions.CmdOptions = &syncOptions{}

func (*syncOptions) Complete() error { return nil }

func (*syncOptions) Validate() error { return nil }

func (o *syncOptions) Run(ctx context.Context, _ ...string) error {
	local, _, _, err := openVault(ctx, o.Flags)
	if err != nil {
		return err
	}
	defer local.Close()

	remoteBackend := os.Getenv(envSyncBackend)
	remoteURL := os.Getenv(envSyncDatabaseURL)
	authToken := os.Getenv(envSyncAuthToken)
	requireTLS := true
	if v, err := strconv.ParseBool(os.Getenv(envSyncRequireTLS)); err == nil {
		requireTLS = v
	}

	remote, err := openRepository(ctx, remoteBackend, remoteURL)
	if err != nil {
		return err
	}
	defer remote.Close()

	policy := syncengine.RemotePolicy{
		RemoteKind: remote.Kind(),
		AuthToken:  authToken,
		RequireTLS: requireTLS,
		TLSInUse:   urlUsesTLS(remoteURL),
	}

	if err := policy.Validate(); err != nil {
		return err
	}

	report, err := syncengine.New().Sync(ctx, local, remote)
	if err != nil {
		return err
	}

	o.Infof("uploaded=%d downloaded=%d tombstoned=%d conflicts_resolved=%d replays_rejected=%d\n",
		report.Uploaded, report.Downloaded, report.Tombstoned, report.ConflictsResolved, report.ReplaysRejected)

	return nil
}

// urlUsesTLS reports whether a connection string names a TLS-bearing
// transport, for [syncengine.RemotePolicy.TLSInUse].
func urlUsesTLS(databaseURL string) bool {
	return strings.Contains(databaseURL, "mongodb+srv://") ||
		strings.Contains(databaseURL, "sslmode=require") ||
		strings.Contains(databaseURL, "ssl=true")
}

// NewCmdSync creates the 'sync' command.
func NewCmdSync(defaults *DefaultOptions) *cobra.Command {
	o := &syncOptions{DefaultOptions: defaults}

	return &cobra.Command{
		Use:   "sync",
		Short: "Synchronize with the configured remote (CHACRAB_SYNC_* env vars)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return genericclioptions.ExecuteCommand(cmd.Context(), o, args...)
		},
	}
}
