package chacraberrors

import "errors"

// SyncError sentinels.
var (
	ErrSyncTransport = errors.New("sync transport error")
	ErrSyncConfig    = errors.New("invalid sync configuration")
	ErrSyncBusy      = errors.New("a sync pass is already in progress for this pair")
)
