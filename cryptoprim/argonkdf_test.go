package cryptoprim_test

import (
	"bytes"
	"testing"

	"github.com/imadenugraha/chacrab/cryptoprim"
	"github.com/stretchr/testify/require"
)

func TestArgon2idKDF_DeriveIsDeterministicForSameParams(t *testing.T) {
	salt, err := cryptoprim.RandBytes(16)
	require.NoError(t, err)

	kdf := cryptoprim.NewArgon2idKDF(cryptoprim.WithSalt(salt))

	k1 := kdf.Derive([]byte("correct horse battery staple!"))
	k2 := kdf.Derive([]byte("correct horse battery staple!"))
	require.True(t, bytes.Equal(k1, k2))

	other := cryptoprim.NewArgon2idKDF(cryptoprim.WithSalt(salt))
	k3 := other.Derive([]byte("wrong"))
	require.False(t, bytes.Equal(k1, k3))
}

func TestArgon2idKDF_ReconstructedFromPHCMatchesOriginal(t *testing.T) {
	salt, err := cryptoprim.RandBytes(16)
	require.NoError(t, err)

	kdf := cryptoprim.NewArgon2idKDF(cryptoprim.WithSalt(salt))
	key := kdf.Derive([]byte("hunter2-hunter2-extra"))

	phc := kdf.PHC()
	phc.Salt = salt
	phc.Hash = key

	decoded, err := cryptoprim.DecodeAragon2idPHC(phc.String())
	require.NoError(t, err)

	reconstructed := cryptoprim.NewArgon2idKDF(
		cryptoprim.WithSalt(decoded.Salt),
		cryptoprim.WithParams(decoded.Argon2Params),
		cryptoprim.WithVersion(decoded.Version),
	)

	require.True(t, bytes.Equal(reconstructed.Derive([]byte("hunter2-hunter2-extra")), decoded.Hash))
}
