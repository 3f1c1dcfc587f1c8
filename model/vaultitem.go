// Package model defines the data shapes shared across Chacrab's core:
// the vault item at rest, its decrypted payload schema, the auth
// bootstrap record, and the sync state the merge engine reasons about.
package model

import (
	"time"

	"github.com/google/uuid"
)

// Kind identifies the shape of a vault item's decrypted payload.
type Kind string

const (
	KindPassword Kind = "password"
	KindNote     Kind = "note"
)

// VaultItem is a record at rest: plaintext metadata plus an
// authenticated-encrypted payload. Ciphertext and Nonce are present iff
// Deleted is false. A tombstone written by a backend's Delete has no
// ciphertext or nonce but keeps the item's Kind, Title, Username, URL and
// CreatedAt; those plaintext metadata fields are not cleared.
type VaultItem struct {
	ID       uuid.UUID
	Kind     Kind
	Title    string
	Username string // optional, non-sensitive
	URL      string // optional, non-sensitive

	Ciphertext []byte
	Nonce      []byte // exactly 12 bytes when present

	CreatedAt time.Time
	UpdatedAt time.Time

	SyncVersion int64
	Deleted     bool
}

// Tombstone reports whether the item represents a deletion marker.
func (v VaultItem) Tombstone() bool { return v.Deleted }

// AdditionalData returns the bytes bound to the record's AEAD operation as
// associated data. Chacrab binds (id, kind) uniformly on every
// encrypt/decrypt, per the spec's defense-in-depth option.
func (v VaultItem) AdditionalData() []byte {
	b := make([]byte, 0, len(v.ID)+1+len(v.Kind))
	b = append(b, v.ID[:]...)
	b = append(b, ':')
	b = append(b, []byte(v.Kind)...)

	return b
}

// EncryptedPayload is the canonical, pre-encryption plaintext schema for a
// vault item. It is serialized to UTF-8 JSON before encryption and
// deserialized after decryption; unknown fields are tolerated on decode.
type EncryptedPayload struct {
	Password      *string           `json:"password"`
	Notes         *string           `json:"notes"`
	CustomFields  map[string]string `json:"custom_fields"`
}

// Zero overwrites every sensitive string the payload holds. Go strings are
// immutable, so this is best-effort: callers should prefer holding secrets
// in []byte and converting only at serialization boundaries where possible.
func (p *EncryptedPayload) Zero() {
	if p == nil {
		return
	}

	if p.Password != nil {
		empty := ""
		p.Password = &empty
	}

	if p.Notes != nil {
		empty := ""
		p.Notes = &empty
	}

	for k := range p.CustomFields {
		p.CustomFields[k] = ""
	}
}
