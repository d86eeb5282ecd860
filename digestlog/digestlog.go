// Package digestlog persists the history of published tree digests as
// a hash chain of signed, versioned entries in a key-value store. Each
// entry links to its predecessor through the hash of the predecessor's
// signature, so an auditor holding the signing party's public key can
// check both the integrity and the continuity of the whole history.
package digestlog

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/ergoplatform/avltree-go/crypto"
	"github.com/ergoplatform/avltree-go/crypto/sign"
	"github.com/ergoplatform/avltree-go/storage/kv"
	"github.com/ergoplatform/avltree-go/utils"
)

var (
	// ErrEntryNotFound indicates that no entry with the requested
	// version exists in the log.
	ErrEntryNotFound = errors.New("[digestlog] entry not found")

	// ErrBadDigestLength indicates an appended digest whose length does
	// not match the log's configured digest length.
	ErrBadDigestLength = errors.New("[digestlog] digest length does not match the log")

	// ErrCorruptedEntry indicates a stored record that does not parse
	// as an entry.
	ErrCorruptedEntry = errors.New("[digestlog] corrupted entry record")

	// ErrChainBroken indicates an entry whose previous-hash field does
	// not match its predecessor.
	ErrChainBroken = errors.New("[digestlog] hash chain broken")

	// ErrBadSignature indicates an entry whose signature does not
	// verify under the given public key.
	ErrBadSignature = errors.New("[digestlog] entry signature invalid")
)

const defaultCacheCapacity = 64

// A Log appends signed digest entries to a key-value store and serves
// them back, keeping a bounded cache of recently touched entries. A Log
// is not safe for concurrent use.
type Log struct {
	db           kv.DB
	signKey      sign.PrivateKey
	digestLength int
	head         *Entry

	entries        map[uint64]*Entry
	loadedVersions []uint64 // versions present in entries, oldest first
}

// An Option configures a Log at construction time.
type Option func(*Log)

// WithDigestLength fixes the length in bytes of the digests the log
// accepts. Defaults to the default hasher's digest length.
func WithDigestLength(n int) Option {
	return func(l *Log) { l.digestLength = n }
}

// WithCacheCapacity bounds the number of entries kept in memory.
func WithCacheCapacity(n int) Option {
	return func(l *Log) {
		l.entries = make(map[uint64]*Entry, n)
		l.loadedVersions = make([]uint64, 0, n)
	}
}

// New opens a digest log over db, signing appended entries with
// signKey. If the store already holds a log, its head is loaded and new
// entries continue the existing chain.
func New(db kv.DB, signKey sign.PrivateKey, opts ...Option) (*Log, error) {
	l := &Log{
		db:           db,
		signKey:      signKey,
		digestLength: crypto.HashSizeByte + 1,
	}
	WithCacheCapacity(defaultCacheCapacity)(l)
	for _, opt := range opts {
		opt(l)
	}
	if len(signKey) != sign.PrivateKeySize {
		return nil, fmt.Errorf("[digestlog] signing key must be %d bytes, got %d",
			sign.PrivateKeySize, len(signKey))
	}
	if l.digestLength < 1 {
		return nil, fmt.Errorf("[digestlog] digest length %d is not positive", l.digestLength)
	}
	if cap(l.loadedVersions) < 2 {
		return nil, fmt.Errorf("[digestlog] cache capacity must be at least 2")
	}
	if err := l.loadHead(); err != nil {
		return nil, err
	}
	return l, nil
}

func (l *Log) loadHead() error {
	buf, err := l.db.Get(headKey())
	if err == l.db.ErrNotFound() {
		return nil
	}
	if err != nil {
		return err
	}
	if len(buf) != 8 {
		return ErrCorruptedEntry
	}
	head, err := l.Get(utils.ULongFromBytes(buf))
	if err != nil {
		return err
	}
	l.head = head
	return nil
}

// Append signs a new entry over digest and writes it, together with the
// updated head pointer, in one atomic batch. The first entry gets
// version 0 and a random previous-hash; every later entry links to the
// hash of its predecessor's signature.
func (l *Log) Append(digest []byte) (*Entry, error) {
	if len(digest) != l.digestLength {
		return nil, ErrBadDigestLength
	}

	var version uint64
	var prevHash []byte
	if l.head == nil {
		var err error
		prevHash, err = crypto.MakeRand()
		if err != nil {
			return nil, err
		}
	} else {
		version = l.head.Version + 1
		prevHash = crypto.Digest(l.head.Signature)
	}

	e := &Entry{
		Version:      version,
		Digest:       append([]byte(nil), digest...),
		PreviousHash: prevHash,
	}
	e.Signature = l.signKey.Sign(e.signedBytes())

	wb := l.db.NewBatch()
	wb.Put(entryKey(version), e.serialize())
	wb.Put(headKey(), utils.ULongToBytes(version))
	if err := l.db.Write(wb); err != nil {
		return nil, err
	}

	l.cache(e)
	l.head = e
	return e, nil
}

// Head returns the latest entry, or ErrEntryNotFound for an empty log.
func (l *Log) Head() (*Entry, error) {
	if l.head == nil {
		return nil, ErrEntryNotFound
	}
	return l.head, nil
}

// Get returns the entry with the given version.
func (l *Log) Get(version uint64) (*Entry, error) {
	if e, ok := l.entries[version]; ok {
		return e, nil
	}
	buf, err := l.db.Get(entryKey(version))
	if err == l.db.ErrNotFound() {
		return nil, ErrEntryNotFound
	}
	if err != nil {
		return nil, err
	}
	e, err := decodeEntry(buf, l.digestLength)
	if err != nil {
		return nil, err
	}
	if e.Version != version {
		return nil, ErrCorruptedEntry
	}
	l.cache(e)
	return e, nil
}

// cache inserts an entry, evicting the older half of the cached entries
// when the cache is full.
func (l *Log) cache(e *Entry) {
	if _, ok := l.entries[e.Version]; ok {
		l.entries[e.Version] = e
		return
	}
	if len(l.loadedVersions) == cap(l.loadedVersions) {
		n := cap(l.loadedVersions) / 2
		for i := 0; i < n; i++ {
			delete(l.entries, l.loadedVersions[i])
		}
		l.loadedVersions = append(l.loadedVersions[:0], l.loadedVersions[n:]...)
	}
	l.entries[e.Version] = e
	l.loadedVersions = append(l.loadedVersions, e.Version)
}

// VerifyChain checks the entries with versions in [from, to]: every
// signature must verify under pk, and every entry after the first must
// carry the hash of its predecessor's signature.
func (l *Log) VerifyChain(pk sign.PublicKey, from, to uint64) error {
	var prev *Entry
	for v := from; v <= to; v++ {
		e, err := l.Get(v)
		if err != nil {
			return err
		}
		if !pk.Verify(e.signedBytes(), e.Signature) {
			return ErrBadSignature
		}
		if prev != nil && !bytes.Equal(e.PreviousHash, crypto.Digest(prev.Signature)) {
			return ErrChainBroken
		}
		prev = e
	}
	return nil
}
