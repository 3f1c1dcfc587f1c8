package backup_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/imadenugraha/chacrab/backup"
	"github.com/imadenugraha/chacrab/chacraberrors"
	"github.com/imadenugraha/chacrab/model"
	"github.com/imadenugraha/chacrab/repository"
	"github.com/imadenugraha/chacrab/sessionholder"
)

type memRepo struct {
	items map[uuid.UUID]model.VaultItem
}

var _ repository.Repository = (*memRepo)(nil)

func newMemRepo() *memRepo { return &memRepo{items: map[uuid.UUID]model.VaultItem{}} }

func (*memRepo) Kind() repository.Kind            { return repository.KindEmbedded }
func (*memRepo) InitSchema(context.Context) error { return nil }
func (*memRepo) LoadAuth(context.Context) (*model.AuthBootstrap, error) { return nil, nil }
func (*memRepo) SaveAuth(context.Context, model.AuthBootstrap) error    { return nil }

func (r *memRepo) List(ctx context.Context) ([]model.VaultItem, error) {
	all, _ := r.ListWithTombstones(ctx)

	var out []model.VaultItem
	for _, it := range all {
		if !it.Deleted {
			out = append(out, it)
		}
	}

	return out, nil
}

func (r *memRepo) ListWithTombstones(context.Context) ([]model.VaultItem, error) {
	var out []model.VaultItem
	for _, it := range r.items {
		out = append(out, it)
	}

	return out, nil
}

func (r *memRepo) Get(_ context.Context, idOrPrefix string) (model.VaultItem, error) {
	var ids []uuid.UUID
	for id := range r.items {
		ids = append(ids, id)
	}

	id, err := repository.MatchPrefix(ids, idOrPrefix)
	if err != nil {
		return model.VaultItem{}, err
	}

	return r.items[id], nil
}

func (r *memRepo) Upsert(_ context.Context, item model.VaultItem) error {
	r.items[item.ID] = item
	return nil
}

func (r *memRepo) Delete(_ context.Context, id uuid.UUID) (model.VaultItem, error) {
	item := r.items[id]
	item.Deleted = true
	r.items[id] = item

	return item, nil
}

func (*memRepo) GetSchemaVersion(context.Context) (int, error) { return repository.CurrentSchemaVersion, nil }
func (*memRepo) SetSchemaVersion(context.Context, int) error   { return nil }
func (*memRepo) Close() error                                  { return nil }

func testAuth() model.AuthBootstrap {
	return model.AuthBootstrap{
		Salt:     []byte("0123456789abcdef"),
		Verifier: "$argon2id$v=19$m=65536,t=3,p=1$c2FsdA$aGFzaA",
		KDFParams: model.KDFParams{MemoryKiB: 65536, Iterations: 3, Parallelism: 1},
	}
}

func seedRepo(t *testing.T, repo *memRepo, holder *sessionholder.Memory) uuid.UUID {
	t.Helper()

	now := time.Now().UTC()
	id := uuid.New()

	require.NoError(t, repo.Upsert(t.Context(), model.VaultItem{
		ID:          id,
		Kind:        model.KindPassword,
		Title:       "example.com",
		Ciphertext:  []byte("ciphertext-bytes"),
		Nonce:       make([]byte, 12),
		CreatedAt:   now,
		UpdatedAt:   now,
		SyncVersion: 1,
	}))

	return id
}

func TestExportImport_RoundTrip(t *testing.T) {
	src := newMemRepo()
	holder := sessionholder.NewMemory(time.Minute)
	require.NoError(t, holder.Put(t.Context(), []byte("0123456789abcdef0123456789abcdef")))

	id := seedRepo(t, src, holder)

	data, err := backup.Export(t.Context(), src, holder, testAuth())
	require.NoError(t, err)

	dst := newMemRepo()
	require.NoError(t, backup.Import(t.Context(), dst, holder, data))

	got, err := dst.Get(t.Context(), id.String())
	require.NoError(t, err)
	require.Equal(t, "example.com", got.Title)
}

func TestImport_IsIdempotent(t *testing.T) {
	src := newMemRepo()
	holder := sessionholder.NewMemory(time.Minute)
	require.NoError(t, holder.Put(t.Context(), []byte("0123456789abcdef0123456789abcdef")))

	seedRepo(t, src, holder)

	data, err := backup.Export(t.Context(), src, holder, testAuth())
	require.NoError(t, err)

	dst := newMemRepo()
	require.NoError(t, backup.Import(t.Context(), dst, holder, data))

	before, err := dst.ListWithTombstones(t.Context())
	require.NoError(t, err)

	require.NoError(t, backup.Import(t.Context(), dst, holder, data))

	after, err := dst.ListWithTombstones(t.Context())
	require.NoError(t, err)

	require.Equal(t, before, after)
}

func TestImport_DoesNotResurrectTombstoneOverNewerDelete(t *testing.T) {
	holder := sessionholder.NewMemory(time.Minute)
	require.NoError(t, holder.Put(t.Context(), []byte("0123456789abcdef0123456789abcdef")))

	now := time.Now().UTC()
	id := uuid.New()

	src := newMemRepo()
	require.NoError(t, src.Upsert(t.Context(), model.VaultItem{
		ID:          id,
		Kind:        model.KindPassword,
		Title:       "stale",
		Ciphertext:  []byte("ciphertext-bytes"),
		Nonce:       make([]byte, 12),
		CreatedAt:   now,
		UpdatedAt:   now,
		SyncVersion: 1,
	}))

	data, err := backup.Export(t.Context(), src, holder, testAuth())
	require.NoError(t, err)

	dst := newMemRepo()
	require.NoError(t, dst.Upsert(t.Context(), model.VaultItem{
		ID:          id,
		UpdatedAt:   now.Add(time.Hour),
		SyncVersion: 2,
		Deleted:     true,
	}))

	require.NoError(t, backup.Import(t.Context(), dst, holder, data))

	got, err := dst.Get(t.Context(), id.String())
	require.NoError(t, err)
	require.True(t, got.Deleted)
	require.Equal(t, int64(2), got.SyncVersion)
}

func TestImport_RejectsTamperedChecksum(t *testing.T) {
	src := newMemRepo()
	holder := sessionholder.NewMemory(time.Minute)
	require.NoError(t, holder.Put(t.Context(), []byte("0123456789abcdef0123456789abcdef")))

	seedRepo(t, src, holder)

	data, err := backup.Export(t.Context(), src, holder, testAuth())
	require.NoError(t, err)

	tampered := append([]byte(nil), data...)
	tampered[len(tampered)-1] ^= 0xFF

	err = backup.Import(t.Context(), newMemRepo(), holder, tampered)
	require.ErrorIs(t, err, chacraberrors.ErrIntegrity)
}
