// Package sqlite is the embedded [repository.Repository] backend: a single
// on-disk SQLite file, no server process, suitable as the offline-first
// default.
package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/ladzaretti/migrate"

	// Package sqlite is a CGo-free port of SQLite/SQLite3.
	_ "modernc.org/sqlite"

	"github.com/imadenugraha/chacrab/chacraberrors"
	"github.com/imadenugraha/chacrab/model"
	"github.com/imadenugraha/chacrab/repository"
)

const pragma = `
PRAGMA journal_mode = WAL;
PRAGMA synchronous = NORMAL;
PRAGMA foreign_keys = ON;
`

//go:embed migrations
var migrationsFS embed.FS

var embeddedMigrations = migrate.EmbeddedMigrations{
	FS:   migrationsFS,
	Path: "migrations",
}

func errf(format string, a ...any) error {
	return fmt.Errorf(format, a...)
}

// Store is the sqlite-backed [repository.Repository].
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the sqlite database file at path. It does
// not apply migrations; call [Store.InitSchema] for that.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errf("sqlite open: %w", err)
	}

	if _, err := db.Exec(pragma); err != nil {
		db.Close()
		return nil, errf("sqlite pragma: %w", err)
	}

	return &Store{db: db}, nil
}

var _ repository.Repository = (*Store)(nil)

func (*Store) Kind() repository.Kind { return repository.KindEmbedded }

func (s *Store) InitSchema(ctx context.Context) error {
	m := migrate.New(s.db, migrate.SQLiteDialect{})

	schema, err := m.CurrentSchemaVersion(ctx)
	if err != nil {
		return repository.BackendError(repository.KindEmbedded, errf("reading schema version: %w", err))
	}

	if schema.Version > repository.CurrentSchemaVersion {
		return chacraberrors.ErrSchemaNewerThanBinary
	}

	if _, err := m.ApplyContext(ctx, embeddedMigrations); err != nil {
		return repository.BackendError(repository.KindEmbedded, errf("applying migrations: %w", err))
	}

	return nil
}

const selectAuth = `
	SELECT salt, verifier, kdf_memory_kib, kdf_iterations, kdf_parallelism
	FROM auth_bootstrap
	WHERE id = 0
`

func (s *Store) LoadAuth(ctx context.Context) (*model.AuthBootstrap, error) {
	var a model.AuthBootstrap

	row := s.db.QueryRowContext(ctx, selectAuth)
	if err := row.Scan(&a.Salt, &a.Verifier, &a.KDFParams.MemoryKiB, &a.KDFParams.Iterations, &a.KDFParams.Parallelism); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}

		return nil, repository.BackendError(repository.KindEmbedded, err)
	}

	return &a, nil
}

const insertAuth = `
	INSERT INTO auth_bootstrap (id, salt, verifier, kdf_memory_kib, kdf_iterations, kdf_parallelism)
	VALUES (0, ?, ?, ?, ?, ?)
`

func (s *Store) SaveAuth(ctx context.Context, auth model.AuthBootstrap) error {
	existing, err := s.LoadAuth(ctx)
	if err != nil {
		return err
	}

	if existing != nil {
		return chacraberrors.ErrAlreadyRegistered
	}

	_, err = s.db.ExecContext(ctx, insertAuth, auth.Salt, auth.Verifier,
		auth.KDFParams.MemoryKiB, auth.KDFParams.Iterations, auth.KDFParams.Parallelism)
	if err != nil {
		return repository.BackendError(repository.KindEmbedded, err)
	}

	return nil
}

const selectItems = `
	SELECT id, kind, title, username, url, ciphertext, nonce, created_at, updated_at, sync_version, deleted
	FROM vault_items
`

func (s *Store) scanItems(rows *sql.Rows) ([]model.VaultItem, error) {
	defer rows.Close()

	var items []model.VaultItem

	for rows.Next() {
		var (
			item                 model.VaultItem
			id                   []byte
			createdAt, updatedAt time.Time
			deleted              int
		)

		if err := rows.Scan(&id, &item.Kind, &item.Title, &item.Username, &item.URL,
			&item.Ciphertext, &item.Nonce, &createdAt, &updatedAt, &item.SyncVersion, &deleted); err != nil {
			return nil, repository.BackendError(repository.KindEmbedded, err)
		}

		parsed, err := uuid.FromBytes(id)
		if err != nil {
			return nil, repository.BackendError(repository.KindEmbedded, err)
		}

		item.ID = parsed
		item.CreatedAt = createdAt
		item.UpdatedAt = updatedAt
		item.Deleted = deleted != 0

		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, repository.BackendError(repository.KindEmbedded, err)
	}

	return items, nil
}

func (s *Store) List(ctx context.Context) ([]model.VaultItem, error) {
	rows, err := s.db.QueryContext(ctx, selectItems+" WHERE deleted = 0 ORDER BY updated_at DESC, id")
	if err != nil {
		return nil, repository.BackendError(repository.KindEmbedded, err)
	}

	return s.scanItems(rows)
}

func (s *Store) ListWithTombstones(ctx context.Context) ([]model.VaultItem, error) {
	rows, err := s.db.QueryContext(ctx, selectItems+" ORDER BY updated_at DESC, id")
	if err != nil {
		return nil, repository.BackendError(repository.KindEmbedded, err)
	}

	return s.scanItems(rows)
}

// Get resolves idOrPrefix against every item including tombstones, so a
// deleted id still matches (callers that must exclude tombstones, like
// vaultservice, check item.Deleted themselves).
func (s *Store) Get(ctx context.Context, idOrPrefix string) (model.VaultItem, error) {
	all, err := s.ListWithTombstones(ctx)
	if err != nil {
		return model.VaultItem{}, err
	}

	ids := make([]uuid.UUID, 0, len(all))
	for _, it := range all {
		ids = append(ids, it.ID)
	}

	id, err := repository.MatchPrefix(ids, idOrPrefix)
	if err != nil {
		return model.VaultItem{}, err
	}

	for _, it := range all {
		if it.ID == id {
			return it, nil
		}
	}

	return model.VaultItem{}, chacraberrors.ErrNotFound
}

const upsertItem = `
	INSERT INTO vault_items (id, kind, title, username, url, ciphertext, nonce, created_at, updated_at, sync_version, deleted)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT (id) DO UPDATE SET
		kind = excluded.kind,
		title = excluded.title,
		username = excluded.username,
		url = excluded.url,
		ciphertext = excluded.ciphertext,
		nonce = excluded.nonce,
		updated_at = excluded.updated_at,
		sync_version = excluded.sync_version,
		deleted = excluded.deleted
`

func (s *Store) Upsert(ctx context.Context, item model.VaultItem) error {
	idb, err := item.ID.MarshalBinary()
	if err != nil {
		return repository.BackendError(repository.KindEmbedded, err)
	}

	deleted := 0
	if item.Deleted {
		deleted = 1
	}

	_, err = s.db.ExecContext(ctx, upsertItem, idb, string(item.Kind), item.Title, item.Username, item.URL,
		item.Ciphertext, item.Nonce, item.CreatedAt, item.UpdatedAt, item.SyncVersion, deleted)
	if err != nil {
		return repository.BackendError(repository.KindEmbedded, err)
	}

	return nil
}

const tombstoneItem = `
	UPDATE vault_items SET
		ciphertext = NULL,
		nonce = NULL,
		updated_at = ?,
		sync_version = sync_version + 1,
		deleted = 1
	WHERE id = ?
`

func (s *Store) Delete(ctx context.Context, id uuid.UUID) (model.VaultItem, error) {
	existing, err := s.Get(ctx, id.String())
	if err != nil {
		return model.VaultItem{}, err
	}

	if existing.Deleted {
		return existing, nil
	}

	idb, err := id.MarshalBinary()
	if err != nil {
		return model.VaultItem{}, repository.BackendError(repository.KindEmbedded, err)
	}

	now := time.Now().UTC()
	if _, err := s.db.ExecContext(ctx, tombstoneItem, now, idb); err != nil {
		return model.VaultItem{}, repository.BackendError(repository.KindEmbedded, err)
	}

	existing.Ciphertext = nil
	existing.Nonce = nil
	existing.Deleted = true
	existing.SyncVersion++
	existing.UpdatedAt = now

	return existing, nil
}

func (s *Store) GetSchemaVersion(ctx context.Context) (int, error) {
	m := migrate.New(s.db, migrate.SQLiteDialect{})

	schema, err := m.CurrentSchemaVersion(ctx)
	if err != nil {
		return 0, repository.BackendError(repository.KindEmbedded, err)
	}

	return schema.Version, nil
}

const setSchemaVersion = `
	INSERT INTO schema_version (id, version, checksum)
	VALUES (0, ?, '')
	ON CONFLICT (id) DO UPDATE SET version = excluded.version
`

func (s *Store) SetSchemaVersion(ctx context.Context, version int) error {
	if _, err := s.db.ExecContext(ctx, setSchemaVersion, version); err != nil {
		return repository.BackendError(repository.KindEmbedded, err)
	}

	return nil
}

func (s *Store) Close() error {
	return s.db.Close()
}
