package chacraberrors

import "errors"

// CryptoError sentinels. Deliberately coarse: the design forbids
// distinguishing further to the user (e.g. which byte of a tag mismatched).
var (
	ErrKdf     = errors.New("key derivation failed")
	ErrEncrypt = errors.New("encryption failed")
	ErrDecrypt = errors.New("decryption failed")
)
