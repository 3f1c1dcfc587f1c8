package backup

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"sort"

	"github.com/google/uuid"

	"github.com/imadenugraha/chacrab/model"
)

// encodeRecords serializes items (including tombstones) to the canonical,
// length-prefixed byte sequence that gets encrypted as the envelope
// payload: records sorted by id, each field length-prefixed so decoding
// never has to guess a boundary.
func encodeRecords(items []model.VaultItem) []byte {
	sorted := make([]model.VaultItem, len(items))
	copy(sorted, items)

	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].ID.String() < sorted[j].ID.String()
	})

	var buf bytes.Buffer

	var count [4]byte
	binary.BigEndian.PutUint32(count[:], uint32(len(sorted)))
	buf.Write(count[:])

	for _, item := range sorted {
		buf.Write(item.ID[:])

		writeByteString(&buf, []byte(item.Kind))
		writeShortString(&buf, item.Title)
		writeShortString(&buf, item.Username)
		writeShortString(&buf, item.URL)
		writeLongBytes(&buf, item.Ciphertext)
		writeByteString(&buf, item.Nonce)

		var ts [24]byte
		binary.BigEndian.PutUint64(ts[0:8], uint64(item.CreatedAt.UnixMilli()))
		binary.BigEndian.PutUint64(ts[8:16], uint64(item.UpdatedAt.UnixMilli()))
		binary.BigEndian.PutUint64(ts[16:24], uint64(item.SyncVersion))
		buf.Write(ts[:])

		deleted := byte(0)
		if item.Deleted {
			deleted = 1
		}

		buf.WriteByte(deleted)
	}

	return buf.Bytes()
}

func writeByteString(buf *bytes.Buffer, b []byte) {
	buf.WriteByte(byte(len(b)))
	buf.Write(b)
}

func writeShortString(buf *bytes.Buffer, s string) {
	var n [2]byte
	binary.BigEndian.PutUint16(n[:], uint16(len(s)))
	buf.Write(n[:])
	buf.WriteString(s)
}

func writeLongBytes(buf *bytes.Buffer, b []byte) {
	var n [4]byte
	binary.BigEndian.PutUint32(n[:], uint32(len(b)))
	buf.Write(n[:])
	buf.Write(b)
}

type byteReader struct {
	b   []byte
	off int
}

func (r *byteReader) readN(n int) ([]byte, error) {
	if r.off+n > len(r.b) {
		return nil, fmt.Errorf("unexpected end of record data")
	}

	out := r.b[r.off : r.off+n]
	r.off += n

	return out, nil
}

func (r *byteReader) readByteString() ([]byte, error) {
	lb, err := r.readN(1)
	if err != nil {
		return nil, err
	}

	return r.readN(int(lb[0]))
}

func (r *byteReader) readShortString() (string, error) {
	lb, err := r.readN(2)
	if err != nil {
		return "", err
	}

	n := binary.BigEndian.Uint16(lb)

	s, err := r.readN(int(n))
	if err != nil {
		return "", err
	}

	return string(s), nil
}

func (r *byteReader) readLongBytes() ([]byte, error) {
	lb, err := r.readN(4)
	if err != nil {
		return nil, err
	}

	n := binary.BigEndian.Uint32(lb)

	return r.readN(int(n))
}

// decodeRecords is the inverse of encodeRecords.
func decodeRecords(data []byte) ([]model.VaultItem, error) {
	if len(data) < 4 {
		return nil, fmt.Errorf("record payload too short")
	}

	count := binary.BigEndian.Uint32(data[:4])
	r := &byteReader{b: data, off: 4}

	items := make([]model.VaultItem, 0, count)

	for i := uint32(0); i < count; i++ {
		idb, err := r.readN(16)
		if err != nil {
			return nil, err
		}

		id, err := uuid.FromBytes(idb)
		if err != nil {
			return nil, err
		}

		kindBytes, err := r.readByteString()
		if err != nil {
			return nil, err
		}

		title, err := r.readShortString()
		if err != nil {
			return nil, err
		}

		username, err := r.readShortString()
		if err != nil {
			return nil, err
		}

		url, err := r.readShortString()
		if err != nil {
			return nil, err
		}

		ciphertext, err := r.readLongBytes()
		if err != nil {
			return nil, err
		}

		nonce, err := r.readByteString()
		if err != nil {
			return nil, err
		}

		ts, err := r.readN(24)
		if err != nil {
			return nil, err
		}

		createdAt := binary.BigEndian.Uint64(ts[0:8])
		updatedAt := binary.BigEndian.Uint64(ts[8:16])
		syncVersion := binary.BigEndian.Uint64(ts[16:24])

		deletedB, err := r.readN(1)
		if err != nil {
			return nil, err
		}

		item := model.VaultItem{
			ID:          id,
			Kind:        model.Kind(kindBytes),
			Title:       title,
			Username:    username,
			URL:         url,
			Ciphertext:  append([]byte(nil), ciphertext...),
			Nonce:       append([]byte(nil), nonce...),
			SyncVersion: int64(syncVersion),
			Deleted:     deletedB[0] != 0,
		}

		item.CreatedAt = millisToTime(createdAt)
		item.UpdatedAt = millisToTime(updatedAt)

		items = append(items, item)
	}

	return items, nil
}
