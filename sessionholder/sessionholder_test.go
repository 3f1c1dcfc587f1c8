package sessionholder_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/imadenugraha/chacrab/chacraberrors"
	"github.com/imadenugraha/chacrab/sessionholder"
)

func TestMemory_PutGetClear(t *testing.T) {
	m := sessionholder.NewMemory(time.Minute)

	_, err := m.Get(t.Context())
	require.ErrorIs(t, err, chacraberrors.ErrNoSession)

	require.NoError(t, m.Put(t.Context(), []byte("derived-key")))

	got, err := m.Get(t.Context())
	require.NoError(t, err)
	require.Equal(t, []byte("derived-key"), got)

	require.NoError(t, m.Clear(t.Context()))

	_, err = m.Get(t.Context())
	require.ErrorIs(t, err, chacraberrors.ErrNoSession)
}

func TestMemory_ExpiresAfterInactivityTimeout(t *testing.T) {
	m := sessionholder.NewMemory(20 * time.Millisecond)

	require.NoError(t, m.Put(t.Context(), []byte("k")))

	time.Sleep(60 * time.Millisecond)

	_, err := m.Get(t.Context())
	require.ErrorIs(t, err, chacraberrors.ErrNoSession)
}

func TestMemory_GetExtendsDeadline(t *testing.T) {
	m := sessionholder.NewMemory(40 * time.Millisecond)

	require.NoError(t, m.Put(t.Context(), []byte("k")))

	time.Sleep(25 * time.Millisecond)

	_, err := m.Get(t.Context())
	require.NoError(t, err)

	time.Sleep(25 * time.Millisecond)

	_, err = m.Get(t.Context())
	require.NoError(t, err)
}
