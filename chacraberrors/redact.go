package chacraberrors

import "errors"

// Redact maps err to a short, action-oriented message safe to show a user.
// It never includes raw backend error strings, keys, tokens, ciphertext,
// or plaintext payloads. Unknown errors fall back to a generic message
// unless diagnostic is true, in which case err.Error() is appended — this
// is intended only for an explicit, off-by-default developer mode, and the
// caller remains responsible for ensuring such a mode is never wired to
// shared logs.
func Redact(err error, diagnostic bool) string {
	if err == nil {
		return ""
	}

	switch {
	case errors.Is(err, ErrNoSession):
		return "no active session; run 'chacrab login' first"
	case errors.Is(err, ErrBadPassword):
		return "incorrect master password"
	case errors.Is(err, ErrWeakMasterPassword):
		return "master password is too weak; use at least 12 characters with higher entropy"
	case errors.Is(err, ErrAlreadyRegistered):
		return "vault is already initialized"
	case errors.Is(err, ErrNotRegistered):
		return "vault has not been initialized; run 'chacrab init' first"
	case errors.Is(err, ErrKdf):
		return "key derivation failed"
	case errors.Is(err, ErrEncrypt):
		return "encryption failed"
	case errors.Is(err, ErrDecrypt):
		return "decryption failed: wrong key or corrupted data"
	case errors.Is(err, ErrNotFound):
		return "no matching record"
	case errors.Is(err, ErrAmbiguous):
		return "more than one record matches; use a longer id prefix"
	case errors.Is(err, ErrCorruptNonce):
		return "stored record is corrupt (invalid nonce length)"
	case errors.Is(err, ErrSchemaNewerThanBinary):
		return "database schema is newer than this version of chacrab supports"
	case errors.Is(err, ErrPayload):
		return "stored record payload is corrupt"
	case errors.Is(err, ErrIntegrity):
		return "backup integrity check failed; file is corrupt or tampered"
	case errors.Is(err, ErrUnsupportedVersion):
		return "backup file schema version is not supported"
	case errors.Is(err, ErrBackupDecrypt):
		return "backup decryption failed: wrong master password or corrupted file"
	case errors.Is(err, ErrSyncTransport):
		return "could not reach the remote store"
	case errors.Is(err, ErrSyncConfig):
		return "invalid sync configuration"
	case errors.Is(err, ErrSyncBusy):
		return "a sync is already in progress"
	}

	var be *BackendError
	if errors.As(err, &be) {
		if diagnostic {
			return be.Error() + ": " + be.Err.Error()
		}

		return be.Error()
	}

	if diagnostic {
		return err.Error()
	}

	return "an unexpected error occurred"
}
