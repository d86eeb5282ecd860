package avltree

import "errors"

var (
	// ErrKeyExists is reported as an operation result when an Insert
	// targets a key that is already present. The batch continues.
	ErrKeyExists = errors.New("[avltree] key already exists")
	// ErrKeyNotFound is reported as an operation result when an Update
	// or Remove targets an absent key. The batch continues.
	ErrKeyNotFound = errors.New("[avltree] key not found")

	// ErrKeyLength rejects a batch containing a key whose length does
	// not match the tree's key length.
	ErrKeyLength = errors.New("[avltree] key length does not match tree parameters")
	// ErrKeyOutOfRange rejects a batch containing a key equal to one of
	// the reserved sentinel keys.
	ErrKeyOutOfRange = errors.New("[avltree] key collides with a sentinel key")
	// ErrValueLength rejects a batch containing a value longer than the
	// maximum, or of the wrong length for a fixed-value-length tree.
	ErrValueLength = errors.New("[avltree] value length does not match tree parameters")
	// ErrTreeTooTall rejects an insert that would grow the tree height
	// beyond what the digest's height byte can carry.
	ErrTreeTooTall = errors.New("[avltree] tree height exceeds one byte")

	// ErrDigestLength rejects a digest of the wrong length for the
	// configured hasher.
	ErrDigestLength = errors.New("[avltree] digest length does not match tree parameters")
	// ErrDigestMismatch aborts verification when the proof's pre-image
	// state does not match the digest the verifier holds.
	ErrDigestMismatch = errors.New("[avltree] proof does not start from the held digest")
	// ErrProofMalformed aborts verification when the proof bytes cannot
	// be parsed.
	ErrProofMalformed = errors.New("[avltree] proof bytes cannot be parsed")
	// ErrProofInvalid aborts verification when a recomputed label or a
	// claimed leaf is inconsistent with the operation outcome.
	ErrProofInvalid = errors.New("[avltree] proof labels do not verify")
	// ErrTooManyOperations aborts verification when a batch exceeds the
	// verifier's configured operation or deletion limits.
	ErrTooManyOperations = errors.New("[avltree] batch exceeds verifier limits")
)
