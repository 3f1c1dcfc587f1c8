package cli

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/imadenugraha/chacrab/config"
	"github.com/imadenugraha/chacrab/repository"
	"github.com/imadenugraha/chacrab/repository/mongo"
	"github.com/imadenugraha/chacrab/repository/postgres"
	"github.com/imadenugraha/chacrab/repository/sqlite"
	"github.com/imadenugraha/chacrab/sessionholder"
	"github.com/imadenugraha/chacrab/sessionholder/daemon"
)

// openRepository dispatches on backend and opens (but does not
// initialize the schema of) the corresponding concrete [repository.Repository].
func openRepository(ctx context.Context, backend, databaseURL string) (repository.Repository, error) {
	switch backend {
	case string(repository.KindEmbedded), "":
		path := databaseURL
		if len(path) == 0 {
			p, err := defaultSQLitePath()
			if err != nil {
				return nil, err
			}

			path = p
		}

		return sqlite.Open(path)
	case string(repository.KindRelational):
		return postgres.Open(databaseURL)
	case string(repository.KindDocument):
		dbName, err := mongoDatabaseName(databaseURL)
		if err != nil {
			return nil, err
		}

		return mongo.Open(ctx, databaseURL, dbName)
	default:
		return nil, fmt.Errorf("unknown backend %q: must be sqlite, postgres, or mongo", backend)
	}
}

func defaultSQLitePath() (string, error) {
	dir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve default database path: %w", err)
	}

	return filepath.Join(dir, ".local", "share", "chacrab", defaultDBName), nil
}

// mongoDatabaseName extracts the database name from a mongodb:// URI's
// path component, since the spec's single --database-url flag must carry
// both the connection target and the database name for the document backend.
func mongoDatabaseName(uri string) (string, error) {
	u, err := url.Parse(uri)
	if err != nil {
		return "", fmt.Errorf("parse mongo database url: %w", err)
	}

	name := strings.TrimPrefix(u.Path, "/")
	if len(name) == 0 {
		return "", fmt.Errorf("mongo database url %q must include a database name in its path", uri)
	}

	return name, nil
}

// openSessionHolder connects to the chacrabd session daemon so a login
// session survives across separate CLI invocations.
func openSessionHolder(profile string, timeout time.Duration) sessionholder.Holder {
	return daemon.NewClient(daemon.SocketPath(), profile, timeout)
}

// profileFor derives a session-daemon profile key from the resolved sync
// config, so distinct backends/database URLs never share one session.
func profileFor(c config.SyncConfig) string {
	return c.Backend + ":" + c.DatabaseURL
}

// openVault resolves the sync config, opens the repository it names, and
// connects to the session daemon — the common setup every command beyond
// 'init' needs.
func openVault(ctx context.Context, flags *GlobalFlags) (repository.Repository, sessionholder.Holder, config.SyncConfig, error) {
	syncCfg, err := flags.ResolveSyncConfig()
	if err != nil {
		return nil, nil, config.SyncConfig{}, err
	}

	if len(syncCfg.Backend) == 0 {
		syncCfg.Backend = defaultBackend
	}

	if syncCfg.SessionTimeoutSecs == 0 {
		syncCfg.SessionTimeoutSecs = config.DefaultSessionTimeoutSecs
	}

	repo, err := openRepository(ctx, syncCfg.Backend, syncCfg.DatabaseURL)
	if err != nil {
		return nil, nil, config.SyncConfig{}, err
	}

	session := openSessionHolder(profileFor(syncCfg), syncCfg.SessionTimeout())

	return repo, session, syncCfg, nil
}
