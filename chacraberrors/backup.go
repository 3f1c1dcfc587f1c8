package chacraberrors

import "errors"

// BackupError sentinels.
var (
	ErrIntegrity          = errors.New("backup integrity check failed")
	ErrUnsupportedVersion = errors.New("backup schema version is not supported by this binary")
	ErrBackupDecrypt      = errors.New("backup decryption failed")
)
