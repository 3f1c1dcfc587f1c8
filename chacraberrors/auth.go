// Package chacraberrors defines Chacrab's error taxonomy: the abstract
// kinds from the design (auth, crypto, storage, data, backup, sync) as
// flat sentinel values per category, plus the mandatory output redactor.
package chacraberrors

import "errors"

// AuthError sentinels.
var (
	ErrNoSession           = errors.New("no active session; run 'login' first")
	ErrBadPassword         = errors.New("incorrect master password")
	ErrWeakMasterPassword  = errors.New("master password does not meet the minimum strength policy")
	ErrAlreadyRegistered   = errors.New("vault is already registered")
	ErrNotRegistered       = errors.New("vault has not been initialized; run 'init' first")
)
