// Package postgres is the relational [repository.Repository] backend: a
// shared PostgreSQL database, intended as the default sync remote for
// multi-device setups.
package postgres

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/ladzaretti/migrate"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/imadenugraha/chacrab/chacraberrors"
	"github.com/imadenugraha/chacrab/model"
	"github.com/imadenugraha/chacrab/repository"
)

//go:embed migrations
var migrationsFS embed.FS

var embeddedMigrations = migrate.EmbeddedMigrations{
	FS:   migrationsFS,
	Path: "migrations",
}

func errf(format string, a ...any) error {
	return fmt.Errorf(format, a...)
}

// Store is the postgres-backed [repository.Repository].
type Store struct {
	db *sql.DB
}

// Open opens a connection pool against the given DSN. It does not apply
// migrations; call [Store.InitSchema] for that.
func Open(dsn string) (*Store, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, errf("postgres open: %w", err)
	}

	return &Store{db: db}, nil
}

var _ repository.Repository = (*Store)(nil)

func (*Store) Kind() repository.Kind { return repository.KindRelational }

func (s *Store) InitSchema(ctx context.Context) error {
	m := migrate.New(s.db, migrate.PostgreSQLDialect{})

	schema, err := m.CurrentSchemaVersion(ctx)
	if err != nil {
		return repository.BackendError(repository.KindRelational, errf("reading schema version: %w", err))
	}

	if schema.Version > repository.CurrentSchemaVersion {
		return chacraberrors.ErrSchemaNewerThanBinary
	}

	if _, err := m.ApplyContext(ctx, embeddedMigrations); err != nil {
		return repository.BackendError(repository.KindRelational, errf("applying migrations: %w", err))
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

		return nil, repository.BackendError(repository.KindRelational, err)
	}

	return &a, nil
}

const insertAuth = `
	INSERT INTO auth_bootstrap (id, salt, verifier, kdf_memory_kib, kdf_iterations, kdf_parallelism)
	VALUES (0, $1, $2, $3, $4, $5)
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
		return repository.BackendError(repository.KindRelational, err)
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
			id                   uuid.UUID
			createdAt, updatedAt time.Time
		)

		if err := rows.Scan(&id, &item.Kind, &item.Title, &item.Username, &item.URL,
			&item.Ciphertext, &item.Nonce, &createdAt, &updatedAt, &item.SyncVersion, &item.Deleted); err != nil {
			return nil, repository.BackendError(repository.KindRelational, err)
		}

		item.ID = id
		item.CreatedAt = createdAt
		item.UpdatedAt = updatedAt

		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, repository.BackendError(repository.KindRelational, err)
	}

	return items, nil
}

func (s *Store) List(ctx context.Context) ([]model.VaultItem, error) {
	rows, err := s.db.QueryContext(ctx, selectItems+" WHERE deleted = FALSE ORDER BY updated_at DESC, id")
	if err != nil {
		return nil, repository.BackendError(repository.KindRelational, err)
	}

	return s.scanItems(rows)
}

func (s *Store) ListWithTombstones(ctx context.Context) ([]model.VaultItem, error) {
	rows, err := s.db.QueryContext(ctx, selectItems+" ORDER BY updated_at DESC, id")
	if err != nil {
		return nil, repository.BackendError(repository.KindRelational, err)
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
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
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
	_, err := s.db.ExecContext(ctx, upsertItem, item.ID, string(item.Kind), item.Title, item.Username, item.URL,
		item.Ciphertext, item.Nonce, item.CreatedAt, item.UpdatedAt, item.SyncVersion, item.Deleted)
	if err != nil {
		return repository.BackendError(repository.KindRelational, err)
	}

	return nil
}

const tombstoneItem = `
	UPDATE vault_items SET
		ciphertext = NULL,
		nonce = NULL,
		updated_at = $1,
		sync_version = sync_version + 1,
		deleted = TRUE
	WHERE id = $2
`

func (s *Store) Delete(ctx context.Context, id uuid.UUID) (model.VaultItem, error) {
	existing, err := s.Get(ctx, id.String())
	if err != nil {
		return model.VaultItem{}, err
	}

	if existing.Deleted {
		return existing, nil
	}

	now := time.Now().UTC()
	if _, err := s.db.ExecContext(ctx, tombstoneItem, now, id); err != nil {
		return model.VaultItem{}, repository.BackendError(repository.KindRelational, err)
	}

	existing.Ciphertext = nil
	existing.Nonce = nil
	existing.Deleted = true
	existing.SyncVersion++
	existing.UpdatedAt = now

	return existing, nil
}

func (s *Store) GetSchemaVersion(ctx context.Context) (int, error) {
	m := migrate.New(s.db, migrate.PostgreSQLDialect{})

	schema, err := m.CurrentSchemaVersion(ctx)
	if err != nil {
		return 0, repository.BackendError(repository.KindRelational, err)
	}

	return schema.Version, nil
}

const setSchemaVersion = `
	INSERT INTO schema_version (id, version, checksum)
	VALUES (0, $1, '')
	ON CONFLICT (id) DO UPDATE SET version = excluded.version
`

func (s *Store) SetSchemaVersion(ctx context.Context, version int) error {
	if _, err := s.db.ExecContext(ctx, setSchemaVersion, version); err != nil {
		return repository.BackendError(repository.KindRelational, err)
	}

	return nil
}

func (s *Store) Close() error {
	return s.db.Close()
}
