// Package backup implements the encrypted backup envelope: export
// serializes every record (including tombstones) into an authenticated,
// integrity-checked binary file; import verifies and replays it into a
// repository, idempotently.
package backup

import (
	"bytes"
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/imadenugraha/chacrab/chacraberrors"
	"github.com/imadenugraha/chacrab/cryptoprim"
	"github.com/imadenugraha/chacrab/model"
	"github.com/imadenugraha/chacrab/repository"
	"github.com/imadenugraha/chacrab/sessionholder"
)

// magic identifies a chacrab backup file.
var magic = [4]byte{'C', 'R', 'A', 'B'}

func millisToTime(ms uint64) time.Time {
	return time.UnixMilli(int64(ms)).UTC()
}

// Export enumerates every record (including tombstones) from repo,
// encrypts them with the current session key, and returns the encoded
// envelope bytes ready to write to disk.
func Export(ctx context.Context, repo repository.Repository, session sessionholder.Holder, auth model.AuthBootstrap) ([]byte, error) {
	items, err := repo.ListWithTombstones(ctx)
	if err != nil {
		return nil, err
	}

	plaintext := encodeRecords(items)
	defer cryptoprim.Zero(plaintext)

	key, err := session.Get(ctx)
	if err != nil {
		return nil, chacraberrors.ErrNoSession
	}
	defer cryptoprim.Zero(key)

	nonce, err := cryptoprim.RandBytes(cryptoprim.NonceSize)
	if err != nil {
		return nil, chacraberrors.ErrEncrypt
	}

	aead, err := cryptoprim.NewAEAD(key)
	if err != nil {
		return nil, chacraberrors.ErrEncrypt
	}

	ciphertext, err := aead.Seal(nonce, plaintext, nil)
	if err != nil {
		return nil, chacraberrors.ErrEncrypt
	}

	kdfParamsJSON, err := json.Marshal(auth.KDFParams)
	if err != nil {
		return nil, chacraberrors.ErrPayload
	}

	exportedAt := uint64(time.Now().UTC().UnixMilli())

	var buf bytes.Buffer

	buf.Write(magic[:])

	var schemaVersion [2]byte
	binary.BigEndian.PutUint16(schemaVersion[:], model.SchemaVersion)
	buf.Write(schemaVersion[:])

	var exportedAtB [8]byte
	binary.BigEndian.PutUint64(exportedAtB[:], exportedAt)
	buf.Write(exportedAtB[:])

	var saltLen [2]byte
	binary.BigEndian.PutUint16(saltLen[:], uint16(len(auth.Salt)))
	buf.Write(saltLen[:])
	buf.Write(auth.Salt)

	writeLongStringField(&buf, auth.Verifier)
	writeLongBytesField(&buf, kdfParamsJSON)

	buf.Write(nonce)

	var payloadLen [4]byte
	binary.BigEndian.PutUint32(payloadLen[:], uint32(len(ciphertext)))
	buf.Write(payloadLen[:])
	buf.Write(ciphertext)

	checksum := cryptoprim.Sum256(magic[:], schemaVersion[:], exportedAtB[:], nonce, ciphertext)
	buf.Write(checksum[:])

	return buf.Bytes(), nil
}

func writeLongStringField(buf *bytes.Buffer, s string) {
	var n [4]byte
	binary.BigEndian.PutUint32(n[:], uint32(len(s)))
	buf.Write(n[:])
	buf.WriteString(s)
}

func writeLongBytesField(buf *bytes.Buffer, b []byte) {
	var n [4]byte
	binary.BigEndian.PutUint32(n[:], uint32(len(b)))
	buf.Write(n[:])
	buf.Write(b)
}

// envelope is the parsed, still-encrypted form of a backup file.
type envelope struct {
	schemaVersion uint16
	exportedAt    uint64
	salt          []byte
	verifier      string
	kdfParams     model.KDFParams
	nonce         []byte
	ciphertext    []byte
	checksum      [32]byte

	checksumInput []byte // magic || schemaVersion || exportedAt || nonce || ciphertext, recomputed for verification
}

func parseEnvelope(data []byte) (*envelope, error) {
	r := &byteReader{b: data}

	gotMagic, err := r.readN(4)
	if err != nil || !bytes.Equal(gotMagic, magic[:]) {
		return nil, chacraberrors.ErrIntegrity
	}

	schemaVersionB, err := r.readN(2)
	if err != nil {
		return nil, chacraberrors.ErrIntegrity
	}

	exportedAtB, err := r.readN(8)
	if err != nil {
		return nil, chacraberrors.ErrIntegrity
	}

	saltLenB, err := r.readN(2)
	if err != nil {
		return nil, chacraberrors.ErrIntegrity
	}

	salt, err := r.readN(int(binary.BigEndian.Uint16(saltLenB)))
	if err != nil {
		return nil, chacraberrors.ErrIntegrity
	}

	verifierLenB, err := r.readN(4)
	if err != nil {
		return nil, chacraberrors.ErrIntegrity
	}

	verifierB, err := r.readN(int(binary.BigEndian.Uint32(verifierLenB)))
	if err != nil {
		return nil, chacraberrors.ErrIntegrity
	}

	kdfLenB, err := r.readN(4)
	if err != nil {
		return nil, chacraberrors.ErrIntegrity
	}

	kdfJSON, err := r.readN(int(binary.BigEndian.Uint32(kdfLenB)))
	if err != nil {
		return nil, chacraberrors.ErrIntegrity
	}

	nonce, err := r.readN(cryptoprim.NonceSize)
	if err != nil {
		return nil, chacraberrors.ErrIntegrity
	}

	payloadLenB, err := r.readN(4)
	if err != nil {
		return nil, chacraberrors.ErrIntegrity
	}

	ciphertext, err := r.readN(int(binary.BigEndian.Uint32(payloadLenB)))
	if err != nil {
		return nil, chacraberrors.ErrIntegrity
	}

	checksum, err := r.readN(32)
	if err != nil {
		return nil, chacraberrors.ErrIntegrity
	}

	var kdfParams model.KDFParams
	if err := json.Unmarshal(kdfJSON, &kdfParams); err != nil {
		return nil, chacraberrors.ErrIntegrity
	}

	checksumInput := make([]byte, 0, 4+2+8+len(nonce)+len(ciphertext))
	checksumInput = append(checksumInput, magic[:]...)
	checksumInput = append(checksumInput, schemaVersionB...)
	checksumInput = append(checksumInput, exportedAtB...)
	checksumInput = append(checksumInput, nonce...)
	checksumInput = append(checksumInput, ciphertext...)

	e := &envelope{
		schemaVersion: binary.BigEndian.Uint16(schemaVersionB),
		exportedAt:    binary.BigEndian.Uint64(exportedAtB),
		salt:          append([]byte(nil), salt...),
		verifier:      string(verifierB),
		kdfParams:     kdfParams,
		nonce:         append([]byte(nil), nonce...),
		ciphertext:    append([]byte(nil), ciphertext...),
		checksumInput: checksumInput,
	}

	copy(e.checksum[:], checksum)

	return e, nil
}

// Import parses, verifies, decrypts, and replays data into repo.
// Every record is upserted with last-write-wins semantics by
// [model.SyncState.Compare]; applying the same backup twice is a no-op the
// second time.
func Import(ctx context.Context, repo repository.Repository, session sessionholder.Holder, data []byte) error {
	e, err := parseEnvelope(data)
	if err != nil {
		return err
	}

	want := cryptoprim.Sum256(e.checksumInput)
	if !bytesEqualConstantTime(want[:], e.checksum[:]) {
		return chacraberrors.ErrIntegrity
	}

	if e.schemaVersion > model.SchemaVersion {
		return chacraberrors.ErrUnsupportedVersion
	}

	key, err := session.Get(ctx)
	if err != nil {
		return chacraberrors.ErrNoSession
	}
	defer cryptoprim.Zero(key)

	aead, err := cryptoprim.NewAEAD(key)
	if err != nil {
		return chacraberrors.ErrBackupDecrypt
	}

	plaintext, err := aead.Open(e.nonce, e.ciphertext, nil)
	if err != nil {
		cryptoprim.Zero(plaintext)
		return chacraberrors.ErrBackupDecrypt
	}
	defer cryptoprim.Zero(plaintext)

	records, err := decodeRecords(plaintext)
	if err != nil {
		return chacraberrors.ErrPayload
	}

	for _, incoming := range records {
		existing, err := repo.Get(ctx, incoming.ID.String())

		if err == nil {
			if model.StateOf(existing).Compare(model.StateOf(incoming)) >= 0 {
				continue
			}
		} else if !isNotFound(err) {
			return err
		}

		if err := repo.Upsert(ctx, incoming); err != nil {
			return fmt.Errorf("importing record %s: %w", incoming.ID, err)
		}
	}

	return nil
}

func isNotFound(err error) bool {
	return errors.Is(err, chacraberrors.ErrNotFound)
}

func bytesEqualConstantTime(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}

	var v byte
	for i := range a {
		v |= a[i] ^ b[i]
	}

	return v == 0
}
