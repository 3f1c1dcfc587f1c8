package cryptoprim_test

import (
	"testing"

	"github.com/imadenugraha/chacrab/cryptoprim"
	"github.com/stretchr/testify/require"
)

func TestAEAD_SealOpenRoundTrip(t *testing.T) {
	key, err := cryptoprim.RandBytes(32)
	require.NoError(t, err)

	aead, err := cryptoprim.NewAEAD(key)
	require.NoError(t, err)

	nonce, err := cryptoprim.RandBytes(cryptoprim.NonceSize)
	require.NoError(t, err)

	plaintext := []byte(`{"password":"p@ss","notes":null,"custom_fields":{}}`)
	aad := []byte("record-id:password")

	ciphertext, err := aead.Seal(nonce, plaintext, aad)
	require.NoError(t, err)
	require.NotEqual(t, plaintext, ciphertext)

	got, err := aead.Open(nonce, ciphertext, aad)
	require.NoError(t, err)
	require.Equal(t, plaintext, got)
}

func TestAEAD_OpenRejectsTamperedAAD(t *testing.T) {
	key, _ := cryptoprim.RandBytes(32)
	aead, _ := cryptoprim.NewAEAD(key)
	nonce, _ := cryptoprim.RandBytes(cryptoprim.NonceSize)

	ciphertext, err := aead.Seal(nonce, []byte("secret"), []byte("id-a"))
	require.NoError(t, err)

	_, err = aead.Open(nonce, ciphertext, []byte("id-b"))
	require.Error(t, err)
}

func TestAEAD_NilReceiverIsSafe(t *testing.T) {
	var aead *cryptoprim.AEAD

	_, err := aead.Seal(make([]byte, cryptoprim.NonceSize), []byte("x"), nil)
	require.ErrorIs(t, err, cryptoprim.ErrNilAEAD)

	_, err = aead.Open(make([]byte, cryptoprim.NonceSize), []byte("x"), nil)
	require.ErrorIs(t, err, cryptoprim.ErrNilAEAD)
}

func TestAEAD_RejectsWrongNonceLength(t *testing.T) {
	key, _ := cryptoprim.RandBytes(32)
	aead, _ := cryptoprim.NewAEAD(key)

	_, err := aead.Seal(make([]byte, 11), []byte("x"), nil)
	require.Error(t, err)
}
