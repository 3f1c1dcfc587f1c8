package model

import (
	"time"

	"github.com/google/uuid"
)

// SyncState is the slice of a [VaultItem] the sync engine needs per (id,
// store) to decide a merge winner: everything except the ciphertext
// itself.
type SyncState struct {
	ID          uuid.UUID
	SyncVersion int64
	UpdatedAt   time.Time
	Deleted     bool
}

// Compare implements the spec's total order over sync state:
// higher SyncVersion wins; tie broken by higher UpdatedAt; tie broken by
// Deleted (tombstone wins); otherwise equivalent.
//
// Compare returns a positive value if a wins over b, negative if b wins
// over a, and 0 if they are equivalent.
func (a SyncState) Compare(b SyncState) int {
	if a.SyncVersion != b.SyncVersion {
		return int(a.SyncVersion - b.SyncVersion)
	}

	if !a.UpdatedAt.Equal(b.UpdatedAt) {
		if a.UpdatedAt.After(b.UpdatedAt) {
			return 1
		}

		return -1
	}

	if a.Deleted != b.Deleted {
		if a.Deleted {
			return 1
		}

		return -1
	}

	return 0
}

func StateOf(v VaultItem) SyncState {
	return SyncState{
		ID:          v.ID,
		SyncVersion: v.SyncVersion,
		UpdatedAt:   v.UpdatedAt,
		Deleted:     v.Deleted,
	}
}
