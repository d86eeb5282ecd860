/*
Package avltree implements an authenticated dictionary backed by an AVL
tree, split into a prover that owns the data and a verifier that owns
nothing but a short digest.

Authenticated Dictionary

Every node of the tree carries a cryptographic label. A leaf's label
binds its key, its value and the key of its in-order successor;
an internal node's label binds its balance factor and the labels of its
children. The digest of the whole tree is the root label followed by a
single byte holding the tree height, so two parties agreeing on a
digest agree on the entire key-value content. Leaves additionally form
an ordered chain through their successor keys, anchored by a permanent
minimum-key sentinel leaf, which lets the tree prove that a key is
absent: the proof exhibits the one leaf whose key range brackets it.

Prover and Verifier

The Prover executes batches of operations (lookups, inserts, updates
and removals) against the live tree and logs, for each operation, the
search path, the reached leaf and whatever off-path nodes rebalancing
had to touch. GenerateProof serializes that log into a compact byte
string. A Verifier holding the previous digest replays the proof
against the declared operations, recomputing every label on the way: if
the replay reaches the same results and labels, the operations are
authentic and the verifier adopts the digest the prover arrived at,
without ever holding the tree. A failed replay leaves the verifier's
digest untouched. The prover can also roll the tree back to the state
of the last emitted proof, discarding a batch whose effects were
rejected downstream.

Tree Shape

The tree is an AVL tree over the leaves: internal nodes keep the
heights of their subtrees within one of each other, so paths, and with
them proofs, stay logarithmic in the number of keys. Internal node keys
only route searches and are never hashed; the verifier reconstructs
paths from recorded direction bits instead. Hash operations are
pluggable through the crypto/hashers registry (see the crypto package);
the default is BLAKE2b-256.
*/
package avltree
