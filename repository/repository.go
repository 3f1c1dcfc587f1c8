// Package repository defines the backend-agnostic contract every concrete
// store (embedded sqlite, relational postgres, document mongo) implements,
// and the invariants that keep them observationally equivalent.
package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/imadenugraha/chacrab/model"
)

// Kind tags which concrete backend variant a [Repository] is, for runtime
// dispatch on backend selection. There is no plugin system: the set of
// variants is closed.
type Kind string

const (
	KindEmbedded   Kind = "sqlite"
	KindRelational Kind = "postgres"
	KindDocument   Kind = "mongo"
)

// CurrentSchemaVersion is the highest schema version this binary knows how
// to read and write. A backend reporting a version greater than this fails
// init_schema with [chacraberrors.ErrSchemaNewerThanBinary].
const CurrentSchemaVersion = 1

// Repository is the uniform, asynchronous-at-the-boundary contract every
// backend variant implements. All three concrete implementations MUST be
// observationally equivalent on every operation; only physical storage
// mapping (columns / document fields / files) may differ, and plaintext
// secret fields must never appear in the persisted schema.
type Repository interface {
	// Kind reports which concrete backend variant this is.
	Kind() Kind

	// InitSchema is idempotent: it ensures tables/collections/files exist
	// and records the schema version, applying forward-only migrations.
	InitSchema(ctx context.Context) error

	// LoadAuth returns the single auth bootstrap, or (nil, nil) before
	// registration.
	LoadAuth(ctx context.Context) (*model.AuthBootstrap, error)

	// SaveAuth persists the auth bootstrap. It fails with
	// [chacraberrors.ErrAlreadyRegistered] if one already exists.
	SaveAuth(ctx context.Context, auth model.AuthBootstrap) error

	// List returns non-tombstoned items ordered by UpdatedAt desc, then ID.
	List(ctx context.Context) ([]model.VaultItem, error)

	// ListWithTombstones returns every item including tombstones; used by
	// the sync engine, backup export, and every backend's Get.
	ListWithTombstones(ctx context.Context) ([]model.VaultItem, error)

	// Get resolves idOrPrefix to exactly one item. idOrPrefix may be a full
	// UUID or an unambiguous lowercase-hex prefix of it.
	// Returns [chacraberrors.ErrNotFound] or [chacraberrors.ErrAmbiguous].
	Get(ctx context.Context, idOrPrefix string) (model.VaultItem, error)

	// Upsert inserts or replaces item by ID, atomically.
	Upsert(ctx context.Context, item model.VaultItem) error

	// Delete replaces the item with a tombstone. Idempotent.
	Delete(ctx context.Context, id uuid.UUID) (model.VaultItem, error)

	// GetSchemaVersion returns the backend's current schema version.
	GetSchemaVersion(ctx context.Context) (int, error)

	// SetSchemaVersion persists the backend's schema version.
	SetSchemaVersion(ctx context.Context, version int) error

	// Close releases any held connections/handles.
	Close() error
}
