// Package cryptoprim implements the cryptographic primitives Chacrab relies
// on: Argon2id key derivation with PHC-encoded verifiers, ChaCha20-Poly1305
// authenticated encryption, SHA-256 integrity hashing, and a CSPRNG helper.
package cryptoprim

import (
	"golang.org/x/crypto/argon2"
)

const DefaultArgon2idVersion = 19

// Argon2Params represents the parameters for the Argon2id KDF.
type Argon2Params struct {
	Memory      uint32 // Memory cost in KiB
	Time        uint32 // Time cost (iterations)
	Parallelism uint8  // Parallelism factor (number of threads)
}

type Argon2idKDF struct {
	phc    Argon2idPHC
	salt   []byte
	keyLen uint32 // keyLen is the length of the derived key in bytes
}

// defaultArgon2idParams are the master-password KDF parameters: 64 MiB
// memory, 3 iterations, single-threaded.
var defaultArgon2idParams = Argon2Params{
	Memory:      64 * 1024,
	Time:        3,
	Parallelism: 1,
}

type Argon2idKDFOpt func(*Argon2idKDF)

// NewArgon2idKDF creates a new [Argon2idKDF] instance with the provided options.
// It uses the following default values:
//   - Memory: 64 MiB (64 * 1024 KiB)
//   - Time: 3 iterations
//   - Parallelism: 1 thread
//   - Key length: 32 bytes
//
// These defaults can be overridden by the available [Argon2idKDFOpt] funcs.
// Login MUST reconstruct the KDF from the stored [Argon2idPHC] via
// [WithPHC] rather than relying on these defaults, since parameters may
// have been persisted under an older default.
func NewArgon2idKDF(opts ...Argon2idKDFOpt) *Argon2idKDF {
	kdf := &Argon2idKDF{
		phc: Argon2idPHC{
			Argon2Params: defaultArgon2idParams,
			Version:      DefaultArgon2idVersion,
		},
		keyLen: 32,
	}

	for _, opt := range opts {
		opt(kdf)
	}

	return kdf
}

func WithSalt(salt []byte) Argon2idKDFOpt {
	return func(kdf *Argon2idKDF) {
		kdf.salt = salt
	}
}

func WithPHC(phc Argon2idPHC) Argon2idKDFOpt {
	return func(kdf *Argon2idKDF) {
		kdf.phc = phc
	}
}

func WithParams(params Argon2Params) Argon2idKDFOpt {
	return func(kdf *Argon2idKDF) {
		kdf.phc.Argon2Params = params
	}
}

func WithVersion(v int) Argon2idKDFOpt {
	return func(kdf *Argon2idKDF) {
		kdf.phc.Version = v
	}
}

func WithKeyLen(n uint32) Argon2idKDFOpt {
	return func(kdf *Argon2idKDF) {
		kdf.keyLen = n
	}
}

func (a *Argon2idKDF) Derive(password []byte) []byte {
	params := a.phc.Argon2Params
	return argon2.IDKey(password, a.salt, params.Time, params.Memory, params.Parallelism, a.keyLen)
}

func (a *Argon2idKDF) PHC() Argon2idPHC {
	return a.phc
}
