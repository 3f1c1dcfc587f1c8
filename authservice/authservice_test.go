package authservice_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/imadenugraha/chacrab/authservice"
	"github.com/imadenugraha/chacrab/chacraberrors"
	"github.com/imadenugraha/chacrab/model"
	"github.com/imadenugraha/chacrab/repository"
	"github.com/imadenugraha/chacrab/sessionholder"
)

// fakeRepo is a minimal in-memory [repository.Repository] exercising only
// the auth bootstrap half of the contract, enough to unit test
// [authservice.Service] without a real backend.
type fakeRepo struct {
	auth *model.AuthBootstrap
}

var _ repository.Repository = (*fakeRepo)(nil)

func (*fakeRepo) Kind() repository.Kind                    { return repository.KindEmbedded }
func (*fakeRepo) InitSchema(context.Context) error          { return nil }
func (r *fakeRepo) LoadAuth(context.Context) (*model.AuthBootstrap, error) {
	return r.auth, nil
}

func (r *fakeRepo) SaveAuth(_ context.Context, a model.AuthBootstrap) error {
	if r.auth != nil {
		return chacraberrors.ErrAlreadyRegistered
	}

	r.auth = &a

	return nil
}

func (*fakeRepo) List(context.Context) ([]model.VaultItem, error)               { return nil, nil }
func (*fakeRepo) ListWithTombstones(context.Context) ([]model.VaultItem, error) { return nil, nil }
func (*fakeRepo) Get(context.Context, string) (model.VaultItem, error) {
	return model.VaultItem{}, chacraberrors.ErrNotFound
}
func (*fakeRepo) Upsert(context.Context, model.VaultItem) error { return nil }
func (*fakeRepo) Delete(context.Context, uuid.UUID) (model.VaultItem, error) {
	return model.VaultItem{}, chacraberrors.ErrNotFound
}
func (*fakeRepo) GetSchemaVersion(context.Context) (int, error)  { return repository.CurrentSchemaVersion, nil }
func (*fakeRepo) SetSchemaVersion(context.Context, int) error    { return nil }
func (*fakeRepo) Close() error                                   { return nil }

func newService() (*authservice.Service, *fakeRepo, *sessionholder.Memory) {
	repo := &fakeRepo{}
	holder := sessionholder.NewMemory(time.Minute)

	return authservice.New(repo, holder), repo, holder
}

func TestService_RegisterThenLoginSucceeds(t *testing.T) {
	svc, _, holder := newService()

	password := []byte("correct horse battery staple!")
	require.NoError(t, svc.Register(t.Context(), append([]byte(nil), password...)))

	key1, err := holder.Get(t.Context())
	require.NoError(t, err)
	require.NotEmpty(t, key1)

	require.NoError(t, holder.Clear(t.Context()))

	require.NoError(t, svc.Login(t.Context(), append([]byte(nil), password...)))

	key2, err := holder.Get(t.Context())
	require.NoError(t, err)
	require.Equal(t, key1, key2)
}

func TestService_LoginWithWrongPasswordFails(t *testing.T) {
	svc, _, holder := newService()

	require.NoError(t, svc.Register(t.Context(), []byte("correct horse battery staple!")))
	require.NoError(t, holder.Clear(t.Context()))

	err := svc.Login(t.Context(), []byte("wrong"))
	require.ErrorIs(t, err, chacraberrors.ErrBadPassword)

	_, err = holder.Get(t.Context())
	require.ErrorIs(t, err, chacraberrors.ErrNoSession)
}

func TestService_RegisterRejectsWeakPassword(t *testing.T) {
	svc, _, _ := newService()

	err := svc.Register(t.Context(), []byte("short"))
	require.ErrorIs(t, err, chacraberrors.ErrWeakMasterPassword)
}

func TestService_RegisterTwiceFails(t *testing.T) {
	svc, _, _ := newService()

	require.NoError(t, svc.Register(t.Context(), []byte("correct horse battery staple!")))

	err := svc.Register(t.Context(), []byte("another strong password!!"))
	require.ErrorIs(t, err, chacraberrors.ErrAlreadyRegistered)
}

func TestService_LoginBeforeRegisterFails(t *testing.T) {
	svc, _, _ := newService()

	err := svc.Login(t.Context(), []byte("whatever"))
	require.ErrorIs(t, err, chacraberrors.ErrNotRegistered)
}

func TestService_VerifierNeverContainsMasterKey(t *testing.T) {
	svc, repo, holder := newService()

	require.NoError(t, svc.Register(t.Context(), []byte("correct horse battery staple!")))

	key, err := holder.Get(t.Context())
	require.NoError(t, err)
	require.NotContains(t, repo.auth.Verifier, string(key))
}
