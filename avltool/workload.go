package avltool

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"math/rand"
	"time"

	"github.com/ergoplatform/avltree-go/application"
	"github.com/ergoplatform/avltree-go/avltree"
	"github.com/ergoplatform/avltree-go/digestlog"
	"github.com/ergoplatform/avltree-go/storage/kv/leveldbkv"
)

// A Workload drives randomized operation batches through a Prover,
// replays every emitted proof on a Verifier holding only the digest,
// and appends each verified digest to the signed history log. Prover
// and verifier must agree on every operation result and on every
// post-batch digest; any divergence aborts the run.
type Workload struct {
	conf   *Config
	logger *application.Logger

	prover   *avltree.Prover
	verifier *avltree.Verifier

	rnd *rand.Rand
	// present lists the keys currently in the dictionary; index maps a
	// key to its position in present.
	present [][]byte
	index   map[string]int
}

// NewWorkload constructs a workload from a loaded configuration.
func NewWorkload(conf *Config, logger *application.Logger) *Workload {
	return &Workload{
		conf:   conf,
		logger: logger,
		rnd:    rand.New(rand.NewSource(conf.Workload.Seed)),
		index:  make(map[string]int),
	}
}

// Run executes the configured number of batches against an initially
// empty dictionary and appends one digest per batch to the history log
// at the configured directory.
func (w *Workload) Run() error {
	opts := []avltree.Option{
		avltree.WithHasher(w.conf.hasher),
		avltree.WithKeyLength(w.conf.KeyLength),
	}
	prover, err := avltree.NewProver(opts...)
	if err != nil {
		return err
	}
	verifier, err := avltree.NewVerifier(prover.Digest(), opts...)
	if err != nil {
		return err
	}
	w.prover, w.verifier = prover, verifier

	db, err := leveldbkv.OpenDB(w.conf.HistoryDirectory)
	if err != nil {
		return err
	}
	defer db.Close()
	log, err := digestlog.New(db, w.conf.signingKey,
		digestlog.WithDigestLength(len(prover.Digest())))
	if err != nil {
		return err
	}
	if _, err := log.Head(); err == digestlog.ErrEntryNotFound {
		if _, err := log.Append(prover.Digest()); err != nil {
			return err
		}
	} else if err != nil {
		return err
	}

	start := time.Now()
	proofBytes := 0
	for b := 0; b < w.conf.Workload.Batches; b++ {
		n, err := w.runBatch(log, b)
		if err != nil {
			return err
		}
		proofBytes += n
	}
	head, err := log.Head()
	if err != nil {
		return err
	}

	w.logger.Info("workload complete",
		"batches", w.conf.Workload.Batches,
		"size", prover.Size(),
		"height", prover.Height(),
		"proof_bytes", proofBytes,
		"head_version", head.Version,
		"digest", hex.EncodeToString(prover.Digest()),
		"elapsed", time.Since(start).String(),
	)
	return nil
}

// runBatch proves, verifies and publishes one batch. It returns the
// proof size in bytes.
func (w *Workload) runBatch(log *digestlog.Log, batch int) (int, error) {
	ops, expectFound := w.randomBatch()

	start := time.Now()
	proverResults, err := w.prover.Perform(ops)
	if err != nil {
		return 0, fmt.Errorf("batch %d rejected by prover: %v", batch, err)
	}
	proof := w.prover.GenerateProof()
	verifierResults, err := w.verifier.Verify(ops, proof)
	if err != nil {
		return 0, fmt.Errorf("batch %d rejected by verifier: %v", batch, err)
	}

	for i := range proverResults {
		p, v := proverResults[i], verifierResults[i]
		if p.Err != nil {
			return 0, fmt.Errorf("batch %d operation %d failed: %v", batch, i, p.Err)
		}
		if p.Found != expectFound[i] {
			return 0, fmt.Errorf("batch %d operation %d: unexpected membership", batch, i)
		}
		if p.Found != v.Found || p.Err != v.Err || !bytes.Equal(p.Value, v.Value) {
			return 0, fmt.Errorf("batch %d operation %d: prover and verifier disagree", batch, i)
		}
	}
	if !bytes.Equal(w.prover.Digest(), w.verifier.Digest()) {
		return 0, fmt.Errorf("batch %d: verifier digest diverged from prover", batch)
	}

	entry, err := log.Append(w.prover.Digest())
	if err != nil {
		return 0, err
	}
	w.logger.Debug("batch verified",
		"batch", batch,
		"ops", len(ops),
		"proof_bytes", len(proof),
		"version", entry.Version,
		"height", w.prover.Height(),
		"elapsed", time.Since(start).String(),
	)
	return len(proof), nil
}

// randomBatch generates a batch mixing all operation kinds, tracking
// dictionary membership so that every operation succeeds. It returns
// the expected Found flag per operation.
func (w *Workload) randomBatch() ([]avltree.Operation, []bool) {
	size := w.conf.Workload.BatchSize
	ops := make([]avltree.Operation, 0, size)
	expectFound := make([]bool, 0, size)

	for i := 0; i < size; i++ {
		roll := w.rnd.Intn(100)
		switch {
		case len(w.present) == 0 || roll < 40:
			ops = append(ops, avltree.NewInsert(w.freshKey(), w.randomValue()))
			expectFound = append(expectFound, false)
		case roll < 55:
			if w.rnd.Intn(2) == 0 {
				ops = append(ops, avltree.NewInsertOrUpdate(w.existingKey(), w.randomValue()))
				expectFound = append(expectFound, true)
			} else {
				ops = append(ops, avltree.NewInsertOrUpdate(w.freshKey(), w.randomValue()))
				expectFound = append(expectFound, false)
			}
		case roll < 65:
			ops = append(ops, avltree.NewUpdate(w.existingKey(), w.randomValue()))
			expectFound = append(expectFound, true)
		case roll < 75:
			ops = append(ops, avltree.NewRemove(w.removedKey()))
			expectFound = append(expectFound, true)
		case roll < 82:
			if w.rnd.Intn(2) == 0 {
				ops = append(ops, avltree.NewRemoveIfExists(w.removedKey()))
				expectFound = append(expectFound, true)
			} else {
				ops = append(ops, avltree.NewRemoveIfExists(w.absentKey()))
				expectFound = append(expectFound, false)
			}
		case roll < 92:
			ops = append(ops, avltree.NewLookup(w.existingKey()))
			expectFound = append(expectFound, true)
		default:
			ops = append(ops, avltree.NewLookup(w.absentKey()))
			expectFound = append(expectFound, false)
		}
	}
	return ops, expectFound
}

func (w *Workload) randomValue() []byte {
	value := make([]byte, w.rnd.Intn(33))
	w.rnd.Read(value)
	return value
}

// freshKey rolls a key that is neither present nor reserved by the
// tree, and marks it present.
func (w *Workload) freshKey() []byte {
	for {
		key := make([]byte, w.conf.KeyLength)
		w.rnd.Read(key)
		if _, ok := w.index[string(key)]; ok || allZero(key) || allMax(key) {
			continue
		}
		w.index[string(key)] = len(w.present)
		w.present = append(w.present, key)
		return key
	}
}

// existingKey picks a random present key.
func (w *Workload) existingKey() []byte {
	return w.present[w.rnd.Intn(len(w.present))]
}

// removedKey picks a random present key and unmarks it.
func (w *Workload) removedKey() []byte {
	i := w.rnd.Intn(len(w.present))
	key := w.present[i]
	last := len(w.present) - 1
	w.present[i] = w.present[last]
	w.index[string(w.present[i])] = i
	w.present = w.present[:last]
	delete(w.index, string(key))
	return key
}

// absentKey rolls a key that is not present, without marking it.
func (w *Workload) absentKey() []byte {
	for {
		key := make([]byte, w.conf.KeyLength)
		w.rnd.Read(key)
		if _, ok := w.index[string(key)]; ok || allZero(key) || allMax(key) {
			continue
		}
		return key
	}
}

func allZero(key []byte) bool {
	for _, b := range key {
		if b != 0x00 {
			return false
		}
	}
	return true
}

func allMax(key []byte) bool {
	for _, b := range key {
		if b != 0xFF {
			return false
		}
	}
	return true
}
