package avltree

import (
	"bytes"
	"math"
)

// An Operation is a single dictionary operation submitted to a Prover
// batch or replayed by a Verifier. Operations are value types; the key
// and value slices they carry must not be mutated while a batch that
// contains them is in flight.
type Operation interface {
	// Key returns the key the operation targets.
	Key() []byte

	isOperation()
}

// Lookup reads the value stored under a key. An absent key is a normal
// miss, not an error.
type Lookup struct {
	key []byte
}

// NewLookup constructs a Lookup operation for the given key.
func NewLookup(key []byte) Lookup {
	return Lookup{key: key}
}

// Key returns the key the operation targets.
func (op Lookup) Key() []byte { return op.key }

// Insert stores a value under a key that must not be present yet.
type Insert struct {
	key   []byte
	value []byte
}

// NewInsert constructs an Insert operation for the given key and value.
func NewInsert(key, value []byte) Insert {
	return Insert{key: key, value: value}
}

// Key returns the key the operation targets.
func (op Insert) Key() []byte { return op.key }

// Value returns the value the operation carries.
func (op Insert) Value() []byte { return op.value }

// Update replaces the value under a key that must already be present.
type Update struct {
	key   []byte
	value []byte
}

// NewUpdate constructs an Update operation for the given key and value.
func NewUpdate(key, value []byte) Update {
	return Update{key: key, value: value}
}

// Key returns the key the operation targets.
func (op Update) Key() []byte { return op.key }

// Value returns the value the operation carries.
func (op Update) Value() []byte { return op.value }

// InsertOrUpdate stores a value under a key, inserting or updating
// depending on whether the key is present.
type InsertOrUpdate struct {
	key   []byte
	value []byte
}

// NewInsertOrUpdate constructs an InsertOrUpdate operation for the
// given key and value.
func NewInsertOrUpdate(key, value []byte) InsertOrUpdate {
	return InsertOrUpdate{key: key, value: value}
}

// Key returns the key the operation targets.
func (op InsertOrUpdate) Key() []byte { return op.key }

// Value returns the value the operation carries.
func (op InsertOrUpdate) Value() []byte { return op.value }

// Remove deletes a key that must be present.
type Remove struct {
	key []byte
}

// NewRemove constructs a Remove operation for the given key.
func NewRemove(key []byte) Remove {
	return Remove{key: key}
}

// Key returns the key the operation targets.
func (op Remove) Key() []byte { return op.key }

// RemoveIfExists deletes a key if it is present. An absent key is a
// normal miss, not an error.
type RemoveIfExists struct {
	key []byte
}

// NewRemoveIfExists constructs a RemoveIfExists operation for the
// given key.
func NewRemoveIfExists(key []byte) RemoveIfExists {
	return RemoveIfExists{key: key}
}

// Key returns the key the operation targets.
func (op RemoveIfExists) Key() []byte { return op.key }

func (Lookup) isOperation()         {}
func (Insert) isOperation()         {}
func (Update) isOperation()         {}
func (InsertOrUpdate) isOperation() {}
func (Remove) isOperation()         {}
func (RemoveIfExists) isOperation() {}

// An OperationResult reports the outcome of one operation within a
// batch. Value carries the value read by a Lookup hit, or the previous
// value displaced by an Update or Remove. Found reports whether the key
// was present before the operation. Err is nil, ErrKeyExists or
// ErrKeyNotFound; any other failure aborts the whole batch instead.
type OperationResult struct {
	Value []byte
	Found bool
	Err   error
}

// operationValue returns the value an operation carries, or nil for
// operations without one.
func operationValue(op Operation) []byte {
	switch op := op.(type) {
	case Insert:
		return op.Value()
	case Update:
		return op.Value()
	case InsertOrUpdate:
		return op.Value()
	}
	return nil
}

// isDeletion reports whether an operation can shrink the tree. The
// verifier's deletion limit counts these.
func isDeletion(op Operation) bool {
	switch op.(type) {
	case Remove, RemoveIfExists:
		return true
	}
	return false
}

// validateBatch checks every operation against the tree parameters
// before any of them is applied. A failure here rejects the whole batch
// and guarantees the tree was not touched.
func (c *treeContext) validateBatch(ops []Operation) error {
	for _, op := range ops {
		key := op.Key()
		if len(key) != c.keyLength {
			return ErrKeyLength
		}
		if bytes.Equal(key, c.minKey) || bytes.Equal(key, c.maxKey) {
			return ErrKeyOutOfRange
		}
		switch op.(type) {
		case Insert, Update, InsertOrUpdate:
			value := operationValue(op)
			if uint64(len(value)) > math.MaxUint32 {
				return ErrValueLength
			}
			if c.fixedValueLength > 0 && len(value) != c.fixedValueLength {
				return ErrValueLength
			}
		}
	}
	return nil
}
