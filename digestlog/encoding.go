package digestlog

import (
	"github.com/ergoplatform/avltree-go/crypto"
	"github.com/ergoplatform/avltree-go/crypto/sign"
	"github.com/ergoplatform/avltree-go/utils"
)

const (
	// EntryIdentifier is the domain separation for log entry records.
	EntryIdentifier = 'D'
	// HeadIdentifier is the domain separation for the head pointer.
	HeadIdentifier = 'H'
)

// An Entry is one link of the digest log: a published tree digest bound
// to a version number and to the hash of the previous entry's
// signature, and signed as a whole.
type Entry struct {
	Version      uint64
	Digest       []byte
	PreviousHash []byte
	Signature    []byte
}

// signedBytes serializes the fields covered by the signature as
// [version, digest, previous hash].
func (e *Entry) signedBytes() []byte {
	buf := make([]byte, 0, 8+len(e.Digest)+len(e.PreviousHash))
	buf = append(buf, utils.ULongToBytes(e.Version)...)
	buf = append(buf, e.Digest...)
	buf = append(buf, e.PreviousHash...)
	return buf
}

// serialize appends the signature to the signed fields, yielding the
// record stored under the entry's KV key.
func (e *Entry) serialize() []byte {
	return append(e.signedBytes(), e.Signature...)
}

// decodeEntry parses a stored record. The digest is the only field
// without a universally fixed size, so the caller supplies its length.
func decodeEntry(buf []byte, digestLength int) (*Entry, error) {
	if len(buf) != 8+digestLength+crypto.HashSizeByte+sign.SignatureSize {
		return nil, ErrCorruptedEntry
	}
	e := new(Entry)
	e.Version = utils.ULongFromBytes(buf[:8])
	buf = buf[8:]
	e.Digest = append([]byte(nil), buf[:digestLength]...)
	buf = buf[digestLength:]
	e.PreviousHash = append([]byte(nil), buf[:crypto.HashSizeByte]...)
	buf = buf[crypto.HashSizeByte:]
	e.Signature = append([]byte(nil), buf...)
	return e, nil
}

func entryKey(version uint64) []byte {
	buf := make([]byte, 0, 1+8)
	buf = append(buf, EntryIdentifier)
	buf = append(buf, utils.ULongToBytes(version)...)
	return buf
}

func headKey() []byte {
	return []byte{HeadIdentifier}
}
