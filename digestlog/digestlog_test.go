package digestlog

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ergoplatform/avltree-go/crypto"
	"github.com/ergoplatform/avltree-go/crypto/sign"
	"github.com/ergoplatform/avltree-go/storage/kv"
	"github.com/ergoplatform/avltree-go/storage/kv/leveldbkv"
	"github.com/ergoplatform/avltree-go/utils"
)

func openTestDB(t *testing.T) kv.DB {
	t.Helper()
	db, err := leveldbkv.OpenDB(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

// testDigest fabricates a digest of the log's default length.
func testDigest(i int) []byte {
	d := crypto.Digest(utils.ULongToBytes(uint64(i)))
	return append(d, byte(i))
}

func TestAppendAndGet(t *testing.T) {
	db := openTestDB(t)
	sk := crypto.NewStaticTestSigningKey()
	l, err := New(db, sk)
	require.NoError(t, err)

	var appended []*Entry
	for i := 0; i < 3; i++ {
		e, err := l.Append(testDigest(i))
		require.NoError(t, err)
		appended = append(appended, e)
	}

	require.EqualValues(t, 0, appended[0].Version)
	require.Len(t, appended[0].PreviousHash, crypto.HashSizeByte)
	for i := 1; i < 3; i++ {
		require.EqualValues(t, i, appended[i].Version)
		require.Equal(t, crypto.Digest(appended[i-1].Signature), appended[i].PreviousHash)
	}

	head, err := l.Head()
	require.NoError(t, err)
	require.Equal(t, appended[2], head)

	for i, want := range appended {
		got, err := l.Get(uint64(i))
		require.NoError(t, err)
		require.Equal(t, want.Digest, got.Digest)
		require.Equal(t, want.Signature, got.Signature)
	}
}

func TestEmptyLog(t *testing.T) {
	db := openTestDB(t)
	l, err := New(db, crypto.NewStaticTestSigningKey())
	require.NoError(t, err)

	_, err = l.Head()
	require.Equal(t, ErrEntryNotFound, err)
	_, err = l.Get(0)
	require.Equal(t, ErrEntryNotFound, err)
}

func TestAppendBadDigestLength(t *testing.T) {
	db := openTestDB(t)
	l, err := New(db, crypto.NewStaticTestSigningKey())
	require.NoError(t, err)

	_, err = l.Append(make([]byte, crypto.HashSizeByte))
	require.Equal(t, ErrBadDigestLength, err)

	l16, err := New(db, crypto.NewStaticTestSigningKey(), WithDigestLength(16))
	require.NoError(t, err)
	_, err = l16.Append(make([]byte, 16))
	require.NoError(t, err)
}

func TestNewRejectsBadConfig(t *testing.T) {
	db := openTestDB(t)
	sk := crypto.NewStaticTestSigningKey()

	_, err := New(db, sk[:16])
	require.Error(t, err)
	_, err = New(db, sk, WithDigestLength(0))
	require.Error(t, err)
	_, err = New(db, sk, WithCacheCapacity(1))
	require.Error(t, err)
}

func TestReopenContinuesChain(t *testing.T) {
	db := openTestDB(t)
	sk := crypto.NewStaticTestSigningKey()

	l, err := New(db, sk)
	require.NoError(t, err)
	for i := 0; i < 4; i++ {
		_, err := l.Append(testDigest(i))
		require.NoError(t, err)
	}

	// A new Log over the same store picks up the head and extends the
	// same chain.
	reopened, err := New(db, sk)
	require.NoError(t, err)
	head, err := reopened.Head()
	require.NoError(t, err)
	require.EqualValues(t, 3, head.Version)

	e, err := reopened.Append(testDigest(4))
	require.NoError(t, err)
	require.EqualValues(t, 4, e.Version)
	require.Equal(t, crypto.Digest(head.Signature), e.PreviousHash)

	pk, ok := sk.Public()
	require.True(t, ok)
	require.NoError(t, reopened.VerifyChain(pk, 0, 4))
}

func TestVerifyChain(t *testing.T) {
	db := openTestDB(t)
	sk := crypto.NewStaticTestSigningKey()
	l, err := New(db, sk)
	require.NoError(t, err)
	for i := 0; i < 8; i++ {
		_, err := l.Append(testDigest(i))
		require.NoError(t, err)
	}

	pk, ok := sk.Public()
	require.True(t, ok)
	require.NoError(t, l.VerifyChain(pk, 0, 7))
	require.NoError(t, l.VerifyChain(pk, 3, 5))
	require.Equal(t, ErrEntryNotFound, l.VerifyChain(pk, 5, 8))

	otherKey, err := sign.GenerateKey(nil)
	require.NoError(t, err)
	otherPK, ok := otherKey.Public()
	require.True(t, ok)
	require.Equal(t, ErrBadSignature, l.VerifyChain(otherPK, 0, 7))
}

func TestVerifyChainDetectsRewrite(t *testing.T) {
	db := openTestDB(t)
	sk := crypto.NewStaticTestSigningKey()
	l, err := New(db, sk)
	require.NoError(t, err)
	for i := 0; i < 4; i++ {
		_, err := l.Append(testDigest(i))
		require.NoError(t, err)
	}

	// Rewrite entry 2 with the honest key but a severed link. The
	// signature verifies, the chain does not.
	forged := &Entry{
		Version:      2,
		Digest:       testDigest(9),
		PreviousHash: make([]byte, crypto.HashSizeByte),
	}
	forged.Signature = sk.Sign(forged.signedBytes())
	require.NoError(t, db.Put(entryKey(2), forged.serialize()))

	fresh, err := New(db, sk)
	require.NoError(t, err)
	pk, ok := sk.Public()
	require.True(t, ok)
	require.Equal(t, ErrChainBroken, fresh.VerifyChain(pk, 0, 3))
}

func TestVerifyChainDetectsTampering(t *testing.T) {
	db := openTestDB(t)
	sk := crypto.NewStaticTestSigningKey()
	l, err := New(db, sk)
	require.NoError(t, err)
	for i := 0; i < 4; i++ {
		_, err := l.Append(testDigest(i))
		require.NoError(t, err)
	}

	record, err := db.Get(entryKey(2))
	require.NoError(t, err)
	record[len(record)-1] ^= 0x01
	require.NoError(t, db.Put(entryKey(2), record))

	fresh, err := New(db, sk)
	require.NoError(t, err)
	pk, ok := sk.Public()
	require.True(t, ok)
	require.Equal(t, ErrBadSignature, fresh.VerifyChain(pk, 0, 3))
}

func TestGetCorruptedRecord(t *testing.T) {
	db := openTestDB(t)
	sk := crypto.NewStaticTestSigningKey()
	l, err := New(db, sk)
	require.NoError(t, err)
	for i := 0; i < 3; i++ {
		_, err := l.Append(testDigest(i))
		require.NoError(t, err)
	}

	record, err := db.Get(entryKey(0))
	require.NoError(t, err)
	require.NoError(t, db.Put(entryKey(0), record[:10]))
	// An entry stored under a key that contradicts its version field is
	// corrupt as well.
	record1, err := db.Get(entryKey(1))
	require.NoError(t, err)
	require.NoError(t, db.Put(entryKey(5), record1))

	fresh, err := New(db, sk)
	require.NoError(t, err)
	_, err = fresh.Get(0)
	require.Equal(t, ErrCorruptedEntry, err)
	_, err = fresh.Get(5)
	require.Equal(t, ErrCorruptedEntry, err)
}

func TestCacheEviction(t *testing.T) {
	db := openTestDB(t)
	sk := crypto.NewStaticTestSigningKey()
	l, err := New(db, sk, WithCacheCapacity(4))
	require.NoError(t, err)

	for i := 0; i < 12; i++ {
		_, err := l.Append(testDigest(i))
		require.NoError(t, err)
		require.LessOrEqual(t, len(l.entries), 4)
		require.Equal(t, len(l.entries), len(l.loadedVersions))
	}

	// Evicted entries are still served from the store.
	for i := 0; i < 12; i++ {
		e, err := l.Get(uint64(i))
		require.NoError(t, err)
		require.Equal(t, testDigest(i), e.Digest)
		require.LessOrEqual(t, len(l.entries), 4)
	}
}
