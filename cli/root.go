// Package cli wires Chacrab's cobra command tree: authentication, vault
// item CRUD, encrypted backup, sync, and local configuration.
package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/imadenugraha/chacrab/config"
	"github.com/imadenugraha/chacrab/genericclioptions"
)

const (
	defaultBackend = "sqlite"
	defaultDBName  = "chacrab.db"

	envSyncBackend     = "CHACRAB_SYNC_BACKEND"
	envSyncDatabaseURL = "CHACRAB_SYNC_DATABASE_URL"
	envSyncAuthToken   = "CHACRAB_SYNC_AUTH_TOKEN"
	envSyncRequireTLS  = "CHACRAB_SYNC_REQUIRE_TLS"
)

// GlobalFlags holds the global CLI options shared by every command.
type GlobalFlags struct {
	Backend            string
	DatabaseURL        string
	JSON               bool
	Quiet              bool
	NoColor            bool
	SessionTimeoutSecs int
	ConfigPath         string
}

// DefaultOptions bundles IO streams and resolved global flags, threaded
// into every subcommand's options struct.
type DefaultOptions struct {
	*genericclioptions.StdioOptions

	Flags *GlobalFlags
}

// SessionTimeout returns the configured session inactivity timeout.
func (f *GlobalFlags) SessionTimeout() time.Duration {
	return time.Duration(f.SessionTimeoutSecs) * time.Second
}

// ResolveSyncConfig merges the persisted sync config, located via
// [config.Path], with global flag overrides; CLI flags take precedence over
// the config file, which takes precedence over defaults.
func (f *GlobalFlags) ResolveSyncConfig() (config.SyncConfig, error) {
	path, err := config.Path(f.ConfigPath)
	if err != nil {
		return config.SyncConfig{}, err
	}

	c, err := config.Load(path)
	if err != nil {
		return config.SyncConfig{}, err
	}

	if c == nil {
		c = &config.SyncConfig{Backend: defaultBackend, SessionTimeoutSecs: config.DefaultSessionTimeoutSecs}
	}

	if len(f.Backend) > 0 {
		c.Backend = f.Backend
	}

	if len(f.DatabaseURL) > 0 {
		c.DatabaseURL = f.DatabaseURL
	}

	if f.SessionTimeoutSecs > 0 {
		c.SessionTimeoutSecs = f.SessionTimeoutSecs
	}

	return *c, nil
}

// NewRootCmd builds the chacrab command tree.
func NewRootCmd() *cobra.Command {
	streams := genericclioptions.NewDefaultIOStreams()
	flags := &GlobalFlags{}

	defaults := &DefaultOptions{
		StdioOptions: &genericclioptions.StdioOptions{IOStreams: streams},
		Flags:        flags,
	}

	root := &cobra.Command{
		Use:           "chacrab",
		Short:         "A zero-knowledge, offline-first password manager",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&flags.Backend, "backend", "", fmt.Sprintf("storage backend: sqlite|postgres|mongo (default %q)", defaultBackend))
	root.PersistentFlags().StringVar(&flags.DatabaseURL, "database-url", "", "backend connection string or file path")
	root.PersistentFlags().BoolVar(&flags.JSON, "json", false, "accepted but not read by any command; output is plain text")
	root.PersistentFlags().BoolVar(&flags.Quiet, "quiet", false, "suppress non-essential output")
	root.PersistentFlags().BoolVar(&flags.NoColor, "no-color", false, "disable ANSI color output")
	root.PersistentFlags().IntVar(&flags.SessionTimeoutSecs, "session-timeout-secs", 0, "session inactivity timeout in seconds")
	root.PersistentFlags().StringVar(&flags.ConfigPath, "config", "", "path to the sync config file")
	root.PersistentFlags().BoolVar(&streams.Verbose, "verbose", false, "enable debug logging")

	root.AddCommand(
		NewCmdInit(defaults),
		NewCmdLogin(defaults),
		NewCmdLogout(defaults),
		NewCmdAddPassword(defaults),
		NewCmdAddNote(defaults),
		NewCmdUpdate(defaults),
		NewCmdList(defaults),
		NewCmdShow(defaults),
		NewCmdDelete(defaults),
		NewCmdBackupExport(defaults),
		NewCmdBackupImport(defaults),
		NewCmdSync(defaults),
		NewCmdConfig(defaults),
		NewCmdGenerate(defaults),
	)

	return root
}
