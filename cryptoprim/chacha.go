package cryptoprim

import (
	"crypto/cipher"
	"errors"
	"fmt"

	"golang.org/x/crypto/chacha20poly1305"
)

// NonceSize is the required length, in bytes, of every AEAD nonce.
const NonceSize = chacha20poly1305.NonceSize

// ErrNilAEAD indicates an operation was attempted on a nil or zero-value [AEAD].
var ErrNilAEAD = errors.New("chacha20poly1305: nil cipher")

// AEAD wraps a ChaCha20-Poly1305 AEAD cipher keyed with a 256-bit key.
//
// A nil *AEAD is safe to call Seal/Open on; both return [ErrNilAEAD].
type AEAD struct {
	aead cipher.AEAD
}

// NewAEAD constructs an [AEAD] from a 32-byte key.
func NewAEAD(key []byte) (*AEAD, error) {
	aead, err := chacha20poly1305.New(key)
	if err != nil {
		return nil, fmt.Errorf("chacha20poly1305 new: %w", err)
	}

	return &AEAD{aead: aead}, nil
}

// Seal encrypts and authenticates plaintext, binding additionalData if
// provided. nonce must be exactly [NonceSize] bytes.
func (g *AEAD) Seal(nonce, plaintext, additionalData []byte) ([]byte, error) {
	if g == nil || g.aead == nil {
		return nil, ErrNilAEAD
	}

	if len(nonce) != NonceSize {
		return nil, fmt.Errorf("chacha20poly1305 seal: nonce must be %d bytes, got %d", NonceSize, len(nonce))
	}

	return g.aead.Seal(nil, nonce, plaintext, additionalData), nil
}

// Open decrypts and verifies ciphertext, checking additionalData if provided.
func (g *AEAD) Open(nonce, ciphertext, additionalData []byte) ([]byte, error) {
	if g == nil || g.aead == nil {
		return nil, ErrNilAEAD
	}

	if len(nonce) != NonceSize {
		return nil, fmt.Errorf("chacha20poly1305 open: nonce must be %d bytes, got %d", NonceSize, len(nonce))
	}

	pt, err := g.aead.Open(nil, nonce, ciphertext, additionalData)
	if err != nil {
		return nil, fmt.Errorf("chacha20poly1305 open: %w", err)
	}

	return pt, nil
}
