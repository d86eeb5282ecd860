package shake128

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
	if len(d1) != h.Size() {
		t.Fatal("digest length does not match Size()")
	}
	if !bytes.Equal(d1, h.Digest([]byte("some"), []byte("data"))) {
		t.Error("digest is not deterministic")
	}
	if bytes.Equal(d1, h.Digest([]byte("other"), []byte("data"))) {
		t.Error("distinct inputs should produce distinct digests")
	}
}
