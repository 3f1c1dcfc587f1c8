package vaultservice_test

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/imadenugraha/chacrab/chacraberrors"
	"github.com/imadenugraha/chacrab/model"
	"github.com/imadenugraha/chacrab/repository"
	"github.com/imadenugraha/chacrab/sessionholder"
	"github.com/imadenugraha/chacrab/vaultservice"
)

// memRepo is a minimal in-memory [repository.Repository] sufficient to
// exercise [vaultservice.Service] without a real backend.
type memRepo struct {
	items map[uuid.UUID]model.VaultItem
}

var _ repository.Repository = (*memRepo)(nil)

func newMemRepo() *memRepo { return &memRepo{items: map[uuid.UUID]model.VaultItem{}} }

func (*memRepo) Kind() repository.Kind           { return repository.KindEmbedded }
func (*memRepo) InitSchema(context.Context) error { return nil }
func (*memRepo) LoadAuth(context.Context) (*model.AuthBootstrap, error) { return nil, nil }
func (*memRepo) SaveAuth(context.Context, model.AuthBootstrap) error    { return nil }

func (r *memRepo) List(context.Context) ([]model.VaultItem, error) {
	var out []model.VaultItem

	for _, it := range r.items {
		if !it.Deleted {
			out = append(out, it)
		}
	}

	sort.Slice(out, func(i, j int) bool { return out[i].ID.String() < out[j].ID.String() })

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
	item, ok := r.items[id]
	if !ok {
		return model.VaultItem{}, chacraberrors.ErrNotFound
	}

	item.Ciphertext = nil
	item.Nonce = nil
	item.Deleted = true
	item.SyncVersion++
	item.UpdatedAt = time.Now().UTC()
	r.items[id] = item

	return item, nil
}

func (*memRepo) GetSchemaVersion(context.Context) (int, error) { return repository.CurrentSchemaVersion, nil }
func (*memRepo) SetSchemaVersion(context.Context, int) error   { return nil }
func (*memRepo) Close() error                                  { return nil }

func newServiceWithSession(t *testing.T) (*vaultservice.Service, *sessionholder.Memory) {
	t.Helper()

	holder := sessionholder.NewMemory(time.Minute)
	require.NoError(t, holder.Put(t.Context(), []byte("0123456789abcdef0123456789abcdef")))

	return vaultservice.New(newMemRepo(), holder), holder
}

func TestService_CreatePasswordRevealRoundTrip(t *testing.T) {
	svc, _ := newServiceWithSession(t)

	id, err := svc.CreatePassword(t.Context(), "example.com", "alice", "https://example.com", "p@ss", nil)
	require.NoError(t, err)

	items, err := svc.List(t.Context())
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.Equal(t, id, items[0].ID)

	payload, err := svc.Reveal(t.Context(), id.String())
	require.NoError(t, err)
	require.NotNil(t, payload.Password)
	require.Equal(t, "p@ss", *payload.Password)
}

func TestService_PlaintextNeverInCiphertextBytes(t *testing.T) {
	svc, _ := newServiceWithSession(t)

	id, err := svc.CreatePassword(t.Context(), "ex", "u", "https://e", "p@ss", nil)
	require.NoError(t, err)

	items, err := svc.List(t.Context())
	require.NoError(t, err)

	var found model.VaultItem
	for _, it := range items {
		if it.ID == id {
			found = it
		}
	}

	require.NotContains(t, string(found.Ciphertext), "p@ss")
	require.Len(t, found.Nonce, 12)
}

func TestService_RevealWithoutSessionFails(t *testing.T) {
	repo := newMemRepo()
	holder := sessionholder.NewMemory(time.Minute)
	svc := vaultservice.New(repo, holder)

	require.NoError(t, holder.Put(t.Context(), []byte("0123456789abcdef0123456789abcdef")))

	id, err := svc.CreatePassword(t.Context(), "ex", "u", "https://e", "p@ss", nil)
	require.NoError(t, err)

	require.NoError(t, holder.Clear(t.Context()))

	_, err = svc.Reveal(t.Context(), id.String())
	require.ErrorIs(t, err, chacraberrors.ErrNoSession)
}

func TestService_UpdateBumpsSyncVersionAndReencrypts(t *testing.T) {
	svc, _ := newServiceWithSession(t)

	id, err := svc.CreatePassword(t.Context(), "ex", "u", "https://e", "p@ss", nil)
	require.NoError(t, err)

	newPassword := "new-p@ss"
	err = svc.Update(t.Context(), id.String(), vaultservice.Patch{
		Payload: &model.EncryptedPayload{Password: &newPassword},
	})
	require.NoError(t, err)

	payload, err := svc.Reveal(t.Context(), id.String())
	require.NoError(t, err)
	require.Equal(t, newPassword, *payload.Password)

	items, err := svc.List(t.Context())
	require.NoError(t, err)
	require.Equal(t, int64(2), items[0].SyncVersion)
}

func TestService_DeleteTombstonesAndHidesFromList(t *testing.T) {
	svc, _ := newServiceWithSession(t)

	id, err := svc.CreatePassword(t.Context(), "ex", "u", "https://e", "p@ss", nil)
	require.NoError(t, err)

	require.NoError(t, svc.Delete(t.Context(), id.String()))

	items, err := svc.List(t.Context())
	require.NoError(t, err)
	require.Empty(t, items)

	_, err = svc.Reveal(t.Context(), id.String())
	require.ErrorIs(t, err, chacraberrors.ErrNotFound)
}
