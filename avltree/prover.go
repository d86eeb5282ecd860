package avltree

import "bytes"

// A Prover owns the one live tree and executes batches of operations
// against it, accumulating a proof trace that lets a Verifier holding
// only the previous digest replay the batch. A Prover is not safe for
// concurrent use: callers needing parallelism must serialize access or
// run independent Provers over disjoint key ranges.
type Prover struct {
	ctx    *treeContext
	root   node
	height int
	size   int

	baseRoot   node
	baseHeight int
	baseSize   int

	trace [][]byte // per-operation proof segments since the last commit
}

// pathStep records one internal node visited on the way to a leaf and
// the direction taken there.
type pathStep struct {
	n     *internalNode
	right bool
}

// NewProver returns a Prover over a fresh tree holding only the
// sentinel leaf.
func NewProver(opts ...Option) (*Prover, error) {
	ctx, err := newTreeContext(opts)
	if err != nil {
		return nil, err
	}
	p := &Prover{ctx: ctx}
	p.root = ctx.newSentinel()
	p.commit()
	return p, nil
}

// commit makes the current tree the rollback base and opens a new
// copy-on-write generation, so committed nodes are never mutated in
// place again.
func (p *Prover) commit() {
	p.baseRoot, p.baseHeight, p.baseSize = p.root, p.height, p.size
	p.ctx.gen++
	p.trace = nil
}

// Digest returns the current tree digest: the root label followed by
// the height byte.
func (p *Prover) Digest() []byte {
	return p.ctx.computeDigest(p.root, p.height)
}

// Height returns the number of edges on the longest root-to-leaf path.
func (p *Prover) Height() int {
	return p.height
}

// Size returns the number of stored keys, excluding the sentinel.
func (p *Prover) Size() int {
	return p.size
}

// Lookup reads the value stored under key without recording a proof
// segment. It returns ErrKeyNotFound for an absent key.
func (p *Prover) Lookup(key []byte) ([]byte, error) {
	if len(key) != p.ctx.keyLength {
		return nil, ErrKeyLength
	}
	if bytes.Equal(key, p.ctx.minKey) || bytes.Equal(key, p.ctx.maxKey) {
		return nil, ErrKeyOutOfRange
	}
	n := p.root
	for {
		inode, ok := n.(*internalNode)
		if !ok {
			break
		}
		if bytes.Compare(key, inode.key) < 0 {
			n = inode.left
		} else {
			n = inode.right
		}
	}
	leaf := n.(*leafNode)
	if !bytes.Equal(leaf.key, key) {
		return nil, ErrKeyNotFound
	}
	return copyBytes(leaf.value), nil
}

// Perform applies the operations strictly in order against the evolving
// tree and appends their proof segments to the trace. A validation
// error rejects the whole batch before anything is applied; after that,
// per-operation failures (ErrKeyExists, ErrKeyNotFound) are reported in
// the result list and do not stop the batch.
func (p *Prover) Perform(ops []Operation) ([]OperationResult, error) {
	if err := p.ctx.validateBatch(ops); err != nil {
		return nil, err
	}
	inserts := 0
	for _, op := range ops {
		switch op.(type) {
		case Insert, InsertOrUpdate:
			inserts++
		}
	}
	if p.height+inserts > MaxHeight {
		return nil, ErrTreeTooTall
	}

	results := make([]OperationResult, 0, len(ops))
	for _, op := range ops {
		results = append(results, p.apply(op))
	}
	return results, nil
}

// GenerateProof returns the serialized proof for every operation since
// the last commit, and commits: the current tree becomes the new
// rollback base and the trace is reset.
func (p *Prover) GenerateProof() []byte {
	size := 0
	for _, seg := range p.trace {
		size += len(seg)
	}
	out := make([]byte, 0, size)
	for _, seg := range p.trace {
		out = append(out, seg...)
	}
	p.commit()
	return out
}

// Rollback discards every operation since the last commit, restoring
// the digest byte for byte.
func (p *Prover) Rollback() {
	p.root, p.height, p.size = p.baseRoot, p.baseHeight, p.baseSize
	p.ctx.gen++
	p.trace = nil
}

// apply executes one operation, mutating the tree and emitting its
// proof segment.
func (p *Prover) apply(op Operation) OperationResult {
	w := &segmentWriter{}
	revealed := make(map[node]struct{})
	key := op.Key()

	var path []pathStep
	n := p.root
	for {
		inode, ok := n.(*internalNode)
		if !ok {
			break
		}
		right := bytes.Compare(key, inode.key) >= 0
		sibling := inode.child(!right)
		w.addPathStep(right, inode.balance, sibling.label(p.ctx.hasher))
		path = append(path, pathStep{inode, right})
		n = inode.child(right)
	}
	leaf := n.(*leafNode)
	w.setLeaf(leaf)
	found := bytes.Equal(leaf.key, key)

	var result OperationResult
	switch op := op.(type) {
	case Lookup:
		if found {
			result = OperationResult{Value: copyBytes(leaf.value), Found: true}
		}

	case Insert:
		if found {
			result = OperationResult{Found: true, Err: ErrKeyExists}
		} else {
			p.applyInsert(path, leaf, key, op.Value(), w, revealed)
		}

	case Update:
		if !found {
			result = OperationResult{Err: ErrKeyNotFound}
		} else {
			result = OperationResult{Value: copyBytes(leaf.value), Found: true}
			p.applyUpdate(path, leaf, op.Value(), w, revealed)
		}

	case InsertOrUpdate:
		if found {
			result = OperationResult{Value: copyBytes(leaf.value), Found: true}
			p.applyUpdate(path, leaf, op.Value(), w, revealed)
		} else {
			p.applyInsert(path, leaf, key, op.Value(), w, revealed)
		}

	case Remove:
		if !found {
			result = OperationResult{Err: ErrKeyNotFound}
		} else {
			result = OperationResult{Value: copyBytes(leaf.value), Found: true}
			p.applyRemove(path, leaf, w, revealed)
		}

	case RemoveIfExists:
		if found {
			result = OperationResult{Value: copyBytes(leaf.value), Found: true}
			p.applyRemove(path, leaf, w, revealed)
		}
	}

	p.trace = append(p.trace, w.bytes())
	return result
}

// applyInsert replaces the bracketing leaf with an internal node over
// the old leaf and a fresh leaf holding the new key. The sentinel
// guarantees the bracketing leaf's key is below the new key, so the new
// leaf is always the right child.
func (p *Prover) applyInsert(path []pathStep, leaf *leafNode, key, value []byte, w *segmentWriter, revealed map[node]struct{}) {
	keyCopy := copyBytes(key)
	oldNext := leaf.nextLeafKey

	left := p.ctx.mutableLeaf(leaf)
	left.nextLeafKey = keyCopy
	left.lbl = nil

	right := &leafNode{
		key:         keyCopy,
		value:       copyBytes(value),
		nextLeafKey: oldNext,
		gen:         p.ctx.gen,
	}
	repl := &internalNode{
		key:   keyCopy,
		left:  left,
		right: right,
		gen:   p.ctx.gen,
	}
	revealed[repl] = struct{}{}

	p.climb(path, len(path)-1, repl, 1, -1, nil, nil, w, revealed)
	p.size++
}

// applyUpdate rewrites the leaf value in place; only labels change.
func (p *Prover) applyUpdate(path []pathStep, leaf *leafNode, value []byte, w *segmentWriter, revealed map[node]struct{}) {
	l := p.ctx.mutableLeaf(leaf)
	l.value = copyBytes(value)
	l.lbl = nil
	p.climb(path, len(path)-1, l, 0, -1, nil, nil, w, revealed)
}

// applyRemove deletes the found leaf: its parent is replaced by the
// sibling subtree, the in-order predecessor's nextLeafKey is repaired
// to skip the removed key, and the height change propagates upward.
func (p *Prover) applyRemove(path []pathStep, leaf *leafNode, w *segmentWriter, revealed map[node]struct{}) {
	last := len(path) - 1
	parent := path[last]
	sibling := parent.n.child(!parent.right)

	if parent.right {
		// The removed leaf was a right child: its parent's separator
		// dies with the parent and the predecessor is the rightmost
		// leaf of the sibling subtree.
		repl := p.rebuildSpine(sibling, leaf.nextLeafKey, w, revealed)
		p.climb(path, last-1, repl, -1, -1, nil, nil, w, revealed)
	} else {
		// The removed leaf was a left child: the deepest ancestor
		// entered rightward holds the separator equal to the removed
		// key, and the predecessor lives in that ancestor's left
		// subtree.
		j := last - 1
		for j >= 0 && !path[j].right {
			j--
		}
		newSpine := p.rebuildSpine(path[j].n.left, leaf.nextLeafKey, w, revealed)
		p.climb(path, last-1, sibling, -1, j, newSpine, copyBytes(leaf.nextLeafKey), w, revealed)
	}
	p.size--
}

// rebuildSpine walks the rightmost path under root to the predecessor
// leaf, records it into the proof, and returns a copy of the subtree
// with the predecessor's nextLeafKey replaced by newNext. Heights are
// untouched, so no rebalancing happens inside the spine.
func (p *Prover) rebuildSpine(root node, newNext []byte, w *segmentWriter, revealed map[node]struct{}) node {
	var chain []*internalNode
	n := root
	for {
		inode, ok := n.(*internalNode)
		if !ok {
			break
		}
		w.addSpineNode(inode.balance, inode.left.label(p.ctx.hasher))
		chain = append(chain, inode)
		n = inode.right
	}
	pred := n.(*leafNode)
	w.setPredecessor(pred)

	pl := p.ctx.mutableLeaf(pred)
	pl.nextLeafKey = copyBytes(newNext)
	pl.lbl = nil

	cur := node(pl)
	for i := len(chain) - 1; i >= 0; i-- {
		c := p.ctx.mutableInternal(chain[i])
		c.right = cur
		c.lbl = nil
		revealed[c] = struct{}{}
		cur = c
	}
	return cur
}

// climb relinks the replacement subtree into the recorded path bottom
// up, rebalancing while the height change propagates. start indexes the
// deepest surviving path entry; spineIdx (or -1) names the entry whose
// left child and separator are replaced after a removal of a left-child
// leaf.
func (p *Prover) climb(path []pathStep, start int, repl node, delta int, spineIdx int, newSpine node, newSeparator []byte, w *segmentWriter, revealed map[node]struct{}) {
	resolve := p.resolver(w, revealed)
	cur := repl
	for i := start; i >= 0; i-- {
		parent := p.ctx.mutableInternal(path[i].n)
		revealed[parent] = struct{}{}
		parent.setChild(path[i].right, cur)
		if i == spineIdx {
			parent.left = newSpine
			parent.key = newSeparator
			parent.lbl = nil
		}
		next, d, err := rebalanceChild(parent, path[i].right, delta, resolve)
		if err != nil {
			// resolving against the prover's own tree cannot fail
			panic(err)
		}
		cur, delta = next, d
	}
	p.root = cur
	p.height += delta
}

// resolver reveals off-path nodes touched by rebalancing: the first
// time a node unknown to the verifier is needed, its balance and child
// labels are appended to the segment as an expansion record.
func (p *Prover) resolver(w *segmentWriter, revealed map[node]struct{}) resolveFunc {
	return func(n node) (*internalNode, error) {
		inode := n.(*internalNode)
		if _, ok := revealed[inode]; ok {
			return inode, nil
		}
		w.addExpansion(inode.balance,
			inode.left.label(p.ctx.hasher), inode.right.label(p.ctx.hasher))
		c := p.ctx.mutableInternal(inode)
		revealed[c] = struct{}{}
		return c, nil
	}
}

func copyBytes(b []byte) []byte {
	if b == nil {
		return nil
	}
	return append([]byte(nil), b...)
}
