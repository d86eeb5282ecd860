package avltree

import "bytes"

// A Verifier holds nothing but a digest and the tree parameters. Verify
// replays a prover's proof against a batch of operations, recomputing
// every label the operations touch; on success the Verifier advances to
// the digest the prover must have arrived at.
type Verifier struct {
	ctx    *treeContext
	digest []byte
}

// NewVerifier returns a Verifier trusting the given digest. The options
// must match the prover's, plus any batch bounds the verifier wants to
// enforce.
func NewVerifier(digest []byte, opts ...Option) (*Verifier, error) {
	ctx, err := newTreeContext(opts)
	if err != nil {
		return nil, err
	}
	if len(digest) != ctx.digestLength() {
		return nil, ErrDigestLength
	}
	return &Verifier{ctx: ctx, digest: copyBytes(digest)}, nil
}

// Digest returns the digest the Verifier currently trusts.
func (v *Verifier) Digest() []byte {
	return copyBytes(v.digest)
}

// Verify replays ops against proof. On success it returns the same
// results the prover reported and advances the held digest. On any
// error the held digest is left untouched and nothing in the batch is
// trusted, including operations that replayed cleanly before the
// failure.
func (v *Verifier) Verify(ops []Operation, proof []byte) ([]OperationResult, error) {
	if v.ctx.maxOperations > 0 && len(ops) > v.ctx.maxOperations {
		return nil, ErrTooManyOperations
	}
	if v.ctx.maxDeletes > 0 {
		deletes := 0
		for _, op := range ops {
			if isDeletion(op) {
				deletes++
			}
		}
		if deletes > v.ctx.maxDeletes {
			return nil, ErrTooManyOperations
		}
	}
	if err := v.ctx.validateBatch(ops); err != nil {
		return nil, err
	}

	rootLabel := v.digest[:v.ctx.labelLength()]
	height := int(v.digest[len(v.digest)-1])

	inserts := 0
	for _, op := range ops {
		switch op.(type) {
		case Insert, InsertOrUpdate:
			inserts++
		}
	}
	if height+inserts > MaxHeight {
		return nil, ErrTreeTooTall
	}

	r := newProofReader(proof)
	results := make([]OperationResult, 0, len(ops))
	for _, op := range ops {
		seg, err := r.nextSegment()
		if err != nil {
			return nil, err
		}
		res, lbl, h, err := v.replay(op, seg, rootLabel, height)
		if err != nil {
			return nil, err
		}
		if !seg.finished() {
			return nil, ErrProofMalformed
		}
		results = append(results, res)
		rootLabel, height = lbl, h
	}
	if !r.done() {
		return nil, ErrProofMalformed
	}

	d := make([]byte, 0, v.ctx.digestLength())
	d = append(d, rootLabel...)
	d = append(d, byte(height))
	v.digest = d
	return results, nil
}

// replay reconstructs the slice of the tree one segment reveals, checks
// it against the working digest, applies the operation to it and
// returns the operation's result together with the new root label and
// height.
func (v *Verifier) replay(op Operation, seg *segmentReader, rootLabel []byte, height int) (OperationResult, []byte, int, error) {
	var zero OperationResult
	key := op.Key()
	hasher := v.ctx.hasher

	pathLenByte, err := seg.readByte()
	if err != nil {
		return zero, nil, 0, err
	}
	pathLen := int(pathLenByte)
	if pathLen > height {
		return zero, nil, 0, ErrProofInvalid
	}
	dirs, err := seg.readDirections(pathLen)
	if err != nil {
		return zero, nil, 0, err
	}

	path := make([]pathStep, pathLen)
	for i := 0; i < pathLen; i++ {
		balance, err := seg.readBalance()
		if err != nil {
			return zero, nil, 0, err
		}
		siblingLabel, err := seg.readBytes(v.ctx.labelLength())
		if err != nil {
			return zero, nil, 0, err
		}
		n := &internalNode{balance: balance}
		n.setChild(!dirs[i], &labelNode{lbl: siblingLabel})
		path[i] = pathStep{n: n, right: dirs[i]}
		if i > 0 {
			path[i-1].n.setChild(dirs[i-1], n)
		}
	}
	leaf, err := seg.readLeafRecord(v.ctx.keyLength)
	if err != nil {
		return zero, nil, 0, err
	}

	var root node = leaf
	if pathLen > 0 {
		path[pathLen-1].n.setChild(dirs[pathLen-1], leaf)
		root = path[0].n
	}
	if !bytes.Equal(root.label(hasher), rootLabel) {
		return zero, nil, 0, ErrDigestMismatch
	}

	// The revealed leaf must bracket the key: either it holds the key,
	// or the key falls strictly between the leaf and its successor,
	// proving absence.
	found := bytes.Equal(leaf.key, key)
	if !found &&
		!(bytes.Compare(leaf.key, key) < 0 && bytes.Compare(key, leaf.nextLeafKey) < 0) {
		return zero, nil, 0, ErrProofInvalid
	}
	prevValue := copyBytes(leaf.value)

	unchanged := func(res OperationResult) (OperationResult, []byte, int, error) {
		return res, rootLabel, height, nil
	}

	switch op := op.(type) {
	case Lookup:
		if found {
			return unchanged(OperationResult{Value: prevValue, Found: true})
		}
		return unchanged(OperationResult{})

	case Insert:
		if found {
			return unchanged(OperationResult{Found: true, Err: ErrKeyExists})
		}
		return v.replayInsert(path, leaf, key, op.Value(), seg, height)

	case Update:
		if !found {
			return unchanged(OperationResult{Err: ErrKeyNotFound})
		}
		res := OperationResult{Value: prevValue, Found: true}
		return v.replayUpdate(path, leaf, op.Value(), seg, height, res)

	case InsertOrUpdate:
		if !found {
			return v.replayInsert(path, leaf, key, op.Value(), seg, height)
		}
		res := OperationResult{Value: prevValue, Found: true}
		return v.replayUpdate(path, leaf, op.Value(), seg, height, res)

	case Remove:
		if !found {
			return unchanged(OperationResult{Err: ErrKeyNotFound})
		}
		res := OperationResult{Value: prevValue, Found: true}
		return v.replayRemove(path, leaf, seg, height, res)

	case RemoveIfExists:
		if !found {
			return unchanged(OperationResult{})
		}
		res := OperationResult{Value: prevValue, Found: true}
		return v.replayRemove(path, leaf, seg, height, res)
	}
	return zero, nil, 0, ErrProofInvalid
}

// replayInsert mirrors the prover: the bracketing leaf's key is below
// the new key, so the new leaf goes on the right of the fresh internal
// node and the old leaf's successor link is rerouted through it.
func (v *Verifier) replayInsert(path []pathStep, leaf *leafNode, key, value []byte, seg *segmentReader, height int) (OperationResult, []byte, int, error) {
	oldNext := leaf.nextLeafKey
	leaf.nextLeafKey = key
	leaf.lbl = nil

	repl := &internalNode{
		left:  leaf,
		right: &leafNode{key: key, value: value, nextLeafKey: oldNext},
	}
	root, delta, err := v.climb(path, len(path)-1, repl, 1, -1, nil, seg)
	if err != nil {
		return OperationResult{}, nil, 0, err
	}
	return OperationResult{}, root.label(v.ctx.hasher), height + delta, nil
}

func (v *Verifier) replayUpdate(path []pathStep, leaf *leafNode, value []byte, seg *segmentReader, height int, res OperationResult) (OperationResult, []byte, int, error) {
	leaf.value = value
	leaf.lbl = nil
	root, delta, err := v.climb(path, len(path)-1, leaf, 0, -1, nil, seg)
	if err != nil {
		return OperationResult{}, nil, 0, err
	}
	return res, root.label(v.ctx.hasher), height + delta, nil
}

// replayRemove deletes the found leaf. Its parent collapses into the
// sibling subtree and the in-order predecessor, revealed by the spine
// records, takes over the removed leaf's successor link.
func (v *Verifier) replayRemove(path []pathStep, leaf *leafNode, seg *segmentReader, height int, res OperationResult) (OperationResult, []byte, int, error) {
	if len(path) == 0 {
		// A tree of height zero holds only the sentinel.
		return OperationResult{}, nil, 0, ErrProofInvalid
	}
	last := len(path) - 1
	parent := path[last]

	var root node
	var delta int
	if parent.right {
		// The removed leaf was a right child: the predecessor is the
		// rightmost leaf under the sibling, and the collapsed parent's
		// separator names the removed key, so no ancestor needs a fix.
		repl, err := v.replaySpine(seg, parent.n.left.label(v.ctx.hasher), leaf)
		if err != nil {
			return OperationResult{}, nil, 0, err
		}
		root, delta, err = v.climb(path, last-1, repl, -1, -1, nil, seg)
		if err != nil {
			return OperationResult{}, nil, 0, err
		}
	} else {
		// The removed leaf was a left child: the deepest ancestor
		// entered rightward separates the predecessor's subtree from
		// the leaf and must exist, or the leaf would be the sentinel.
		j := last - 1
		for j >= 0 && !path[j].right {
			j--
		}
		if j < 0 {
			return OperationResult{}, nil, 0, ErrProofInvalid
		}
		newSpine, err := v.replaySpine(seg, path[j].n.left.label(v.ctx.hasher), leaf)
		if err != nil {
			return OperationResult{}, nil, 0, err
		}
		root, delta, err = v.climb(path, last-1, parent.n.right, -1, j, newSpine, seg)
		if err != nil {
			return OperationResult{}, nil, 0, err
		}
	}
	return res, root.label(v.ctx.hasher), height + delta, nil
}

// replaySpine reads the spine records describing the rightmost path
// down to the removed leaf's predecessor, checks the reconstruction
// against wantLabel, and returns the subtree with the predecessor's
// successor link rerouted past the removed leaf.
func (v *Verifier) replaySpine(seg *segmentReader, wantLabel []byte, removed *leafNode) (node, error) {
	spineLenByte, err := seg.readByte()
	if err != nil {
		return nil, err
	}
	spineLen := int(spineLenByte)

	chain := make([]*internalNode, spineLen)
	for i := 0; i < spineLen; i++ {
		balance, err := seg.readBalance()
		if err != nil {
			return nil, err
		}
		leftLabel, err := seg.readBytes(v.ctx.labelLength())
		if err != nil {
			return nil, err
		}
		chain[i] = &internalNode{balance: balance, left: &labelNode{lbl: leftLabel}}
		if i > 0 {
			chain[i-1].right = chain[i]
		}
	}
	pred, err := seg.readLeafRecord(v.ctx.keyLength)
	if err != nil {
		return nil, err
	}

	var root node = pred
	if spineLen > 0 {
		chain[spineLen-1].right = pred
		root = chain[0]
	}
	if !bytes.Equal(root.label(v.ctx.hasher), wantLabel) {
		return nil, ErrProofInvalid
	}

	// Only the true predecessor may have its successor link rerouted:
	// it must sit below the removed key and point at it.
	if !bytes.Equal(pred.nextLeafKey, removed.key) ||
		bytes.Compare(pred.key, removed.key) >= 0 {
		return nil, ErrProofInvalid
	}

	pred.nextLeafKey = removed.nextLeafKey
	pred.lbl = nil
	for _, n := range chain {
		n.lbl = nil
	}
	return root, nil
}

// climb relinks the replacement subtree into the parsed path bottom up,
// mirroring the prover's rebalancing. start indexes the deepest
// surviving path entry; spineIdx (or -1) names the entry whose left
// child is replaced by the repaired predecessor spine after a removal.
func (v *Verifier) climb(path []pathStep, start int, repl node, delta int, spineIdx int, newSpine node, seg *segmentReader) (node, int, error) {
	resolve := v.resolver(seg)
	cur := repl
	for i := start; i >= 0; i-- {
		parent := path[i].n
		parent.setChild(path[i].right, cur)
		if i == spineIdx {
			parent.left = newSpine
			parent.lbl = nil
		}
		next, d, err := rebalanceChild(parent, path[i].right, delta, resolve)
		if err != nil {
			return nil, 0, err
		}
		cur, delta = next, d
	}
	return cur, delta, nil
}

// resolver materializes nodes the rebalancing code must look inside.
// Nodes built during this replay are used as they are; a node known
// only by label consumes the next expansion record, which must hash to
// that label.
func (v *Verifier) resolver(seg *segmentReader) resolveFunc {
	return func(n node) (*internalNode, error) {
		switch t := n.(type) {
		case *internalNode:
			return t, nil
		case *labelNode:
			balance, err := seg.readBalance()
			if err != nil {
				return nil, err
			}
			leftLabel, err := seg.readBytes(v.ctx.labelLength())
			if err != nil {
				return nil, err
			}
			rightLabel, err := seg.readBytes(v.ctx.labelLength())
			if err != nil {
				return nil, err
			}
			want := v.ctx.hasher.Digest([]byte{internalPrefix},
				[]byte{byte(balance)}, leftLabel, rightLabel)
			if !bytes.Equal(want, t.lbl) {
				return nil, ErrProofInvalid
			}
			return &internalNode{
				balance: balance,
				left:    &labelNode{lbl: leftLabel},
				right:   &labelNode{lbl: rightLabel},
			}, nil
		}
		// The taller side of an imbalance is never a leaf.
		return nil, ErrProofInvalid
	}
}
