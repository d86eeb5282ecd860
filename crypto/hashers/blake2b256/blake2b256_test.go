package blake2b256

import (
	"bytes"
	"testing"
)

func TestDigest(t *testing.T) {
	h := New()
	if h.Size() != 32 {
		t.Fatal("unexpected hash size")
	}
	d1 := h.Digest([]byte("some"), []byte("data"))
	d2 := h.Digest([]byte("somedata"))
	if len(d1) != h.Size() {
		t.Fatal("digest length does not match Size()")
	}
	if !bytes.Equal(d1, d2) {
		t.Error("digest of split slices should equal digest of their concatenation")
	}
	if bytes.Equal(d1, h.Digest([]byte("otherdata"))) {
		t.Error("distinct inputs should produce distinct digests")
	}
}

func TestDigestDoesNotMutateInput(t *testing.T) {
	h := New()
	m := []byte("input bytes")
	saved := append([]byte{}, m...)
	h.Digest(m)
	if !bytes.Equal(m, saved) {
		t.Error("Digest mutated its input")
	}
}
