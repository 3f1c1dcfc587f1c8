// Package vaultservice implements the create/update/reveal/delete
// operations on vault items: the only place encrypted payloads are built
// or opened.
package vaultservice

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/imadenugraha/chacrab/chacraberrors"
	"github.com/imadenugraha/chacrab/cryptoprim"
	"github.com/imadenugraha/chacrab/model"
	"github.com/imadenugraha/chacrab/repository"
	"github.com/imadenugraha/chacrab/sessionholder"
)

// Service wires a [repository.Repository] to a [sessionholder.Holder] to
// implement the vault item lifecycle. It holds no session state itself.
type Service struct {
	repo    repository.Repository
	session sessionholder.Holder
}

func New(repo repository.Repository, session sessionholder.Holder) *Service {
	return &Service{repo: repo, session: session}
}

// Patch describes an update to an existing [model.VaultItem]. Nil fields
// are left unchanged; Payload, if non-nil, replaces the decrypted payload
// wholesale.
type Patch struct {
	Title    *string
	Username *string
	URL      *string
	Payload  *model.EncryptedPayload
}

func (s *Service) seal(ctx context.Context, item *model.VaultItem, payload model.EncryptedPayload) error {
	key, err := s.session.Get(ctx)
	if err != nil {
		return chacraberrors.ErrNoSession
	}
	defer cryptoprim.Zero(key)

	plaintext, err := json.Marshal(payload)
	if err != nil {
		return chacraberrors.ErrPayload
	}
	defer cryptoprim.Zero(plaintext)

	nonce, err := cryptoprim.RandBytes(cryptoprim.NonceSize)
	if err != nil {
		return chacraberrors.ErrEncrypt
	}

	aead, err := cryptoprim.NewAEAD(key)
	if err != nil {
		return chacraberrors.ErrEncrypt
	}

	ciphertext, err := aead.Seal(nonce, plaintext, item.AdditionalData())
	if err != nil {
		return chacraberrors.ErrEncrypt
	}

	item.Ciphertext = ciphertext
	item.Nonce = nonce

	return nil
}

func (s *Service) create(ctx context.Context, kind model.Kind, title, username, url string, payload model.EncryptedPayload) (uuid.UUID, error) {
	now := time.Now().UTC()

	item := model.VaultItem{
		ID:          uuid.New(),
		Kind:        kind,
		Title:       title,
		Username:    username,
		URL:         url,
		CreatedAt:   now,
		UpdatedAt:   now,
		SyncVersion: 1,
	}

	if err := s.seal(ctx, &item, payload); err != nil {
		return uuid.Nil, err
	}

	if err := s.repo.Upsert(ctx, item); err != nil {
		return uuid.Nil, err
	}

	return item.ID, nil
}

// CreatePassword stores a new password item and returns its id.
func (s *Service) CreatePassword(ctx context.Context, title, username, url, password string, customFields map[string]string) (uuid.UUID, error) {
	p := password

	payload := model.EncryptedPayload{Password: &p, CustomFields: customFields}
	defer payload.Zero()

	return s.create(ctx, model.KindPassword, title, username, url, payload)
}

// CreateNote stores a new secure-note item and returns its id.
func (s *Service) CreateNote(ctx context.Context, title, notes string, customFields map[string]string) (uuid.UUID, error) {
	n := notes

	payload := model.EncryptedPayload{Notes: &n, CustomFields: customFields}
	defer payload.Zero()

	return s.create(ctx, model.KindNote, title, "", "", payload)
}

// Update applies patch to the item resolved by idOrPrefix. A non-nil
// Payload re-encrypts the record with a fresh nonce; any plaintext
// metadata fields present on patch are updated in place regardless.
func (s *Service) Update(ctx context.Context, idOrPrefix string, patch Patch) error {
	key, err := s.session.Get(ctx)
	if err != nil {
		return chacraberrors.ErrNoSession
	}

	cryptoprim.Zero(key)

	item, err := s.repo.Get(ctx, idOrPrefix)
	if err != nil {
		return err
	}

	if item.Deleted {
		return chacraberrors.ErrNotFound
	}

	if patch.Title != nil {
		item.Title = *patch.Title
	}

	if patch.Username != nil {
		item.Username = *patch.Username
	}

	if patch.URL != nil {
		item.URL = *patch.URL
	}

	if patch.Payload != nil {
		if err := s.seal(ctx, &item, *patch.Payload); err != nil {
			return err
		}
	}

	item.UpdatedAt = time.Now().UTC()
	item.SyncVersion++

	return s.repo.Upsert(ctx, item)
}

// Reveal decrypts and returns the payload of the item resolved by
// idOrPrefix. Callers must call [model.EncryptedPayload.Zero] on the
// result once finished with it.
func (s *Service) Reveal(ctx context.Context, idOrPrefix string) (model.EncryptedPayload, error) {
	item, err := s.repo.Get(ctx, idOrPrefix)
	if err != nil {
		return model.EncryptedPayload{}, err
	}

	if item.Deleted {
		return model.EncryptedPayload{}, chacraberrors.ErrNotFound
	}

	if len(item.Nonce) != cryptoprim.NonceSize {
		return model.EncryptedPayload{}, chacraberrors.ErrCorruptNonce
	}

	key, err := s.session.Get(ctx)
	if err != nil {
		return model.EncryptedPayload{}, chacraberrors.ErrNoSession
	}
	defer cryptoprim.Zero(key)

	aead, err := cryptoprim.NewAEAD(key)
	if err != nil {
		return model.EncryptedPayload{}, chacraberrors.ErrDecrypt
	}

	plaintext, err := aead.Open(item.Nonce, item.Ciphertext, item.AdditionalData())
	if err != nil {
		return model.EncryptedPayload{}, chacraberrors.ErrDecrypt
	}
	defer cryptoprim.Zero(plaintext)

	var payload model.EncryptedPayload
	if err := json.Unmarshal(plaintext, &payload); err != nil {
		return model.EncryptedPayload{}, chacraberrors.ErrPayload
	}

	return payload, nil
}

// Delete tombstones the item resolved by idOrPrefix.
func (s *Service) Delete(ctx context.Context, idOrPrefix string) error {
	item, err := s.repo.Get(ctx, idOrPrefix)
	if err != nil {
		return err
	}

	_, err = s.repo.Delete(ctx, item.ID)

	return err
}

// List returns non-tombstoned items.
func (s *Service) List(ctx context.Context) ([]model.VaultItem, error) {
	return s.repo.List(ctx)
}
