package chacraberrors

import "errors"

// DataError sentinels.
var (
	// ErrPayload indicates the decrypted payload bytes were not valid JSON
	// for the [model.EncryptedPayload] schema.
	ErrPayload = errors.New("malformed payload after decryption")
)
