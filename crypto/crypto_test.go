package crypto

import (
	"bytes"
	"testing"
)

func TestDigest(t *testing.T) {
	msg := []byte("test message")
	d := Digest(msg)
	if len(d) != HashSizeByte {
		t.Fatal("computation of hash failed")
	}
	if bytes.Equal(d, make([]byte, HashSizeByte)) {
		t.Fatal("hash is all zeros")
	}
	if !bytes.Equal(d, Digest(msg)) {
		t.Fatal("hash is not deterministic")
	}
}

func TestMakeRand(t *testing.T) {
	r, err := MakeRand()
	if err != nil {
		t.Fatal(err)
	}
	// check that the PRNG output was hashed:
	if len(r) != HashSizeByte {
		t.Fatal("looks like Digest wasn't called correctly")
	}
	r2, err := MakeRand()
	if err != nil {
		t.Fatal(err)
	}
	if bytes.Equal(r, r2) {
		t.Fatal("MakeRand returned the same bytes twice")
	}
}
