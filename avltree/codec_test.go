package avltree

import (
	"bytes"
	"errors"
	"testing"
)

// TestSegmentLayout pins the wire format: an insert into an empty tree
// reveals only the sentinel leaf, so its segment is fully deterministic.
func TestSegmentLayout(t *testing.T) {
	p := newTestProver(t, WithKeyLength(2))
	if _, err := p.Perform([]Operation{NewInsert([]byte{0x12, 0x34}, []byte{0xAB})}); err != nil {
		t.Fatal(err)
	}
	proof := p.GenerateProof()

	expected := []byte{
		0x00, 0x00, 0x00, 0x09, // body length
		0x00,                   // path length
		0x00, 0x00,             // sentinel key
		0xFF, 0xFF,             // sentinel successor
		0x00, 0x00, 0x00, 0x00, // value length
	}
	if !bytes.Equal(proof, expected) {
		t.Fatalf("segment bytes\n got %x\nwant %x", proof, expected)
	}
}

func TestProofReaderBounds(t *testing.T) {
	for _, buf := range [][]byte{
		{0x00},                      // truncated length prefix
		{0x00, 0x00, 0x00, 0x05},    // body length past the buffer
		{0xFF, 0xFF, 0xFF, 0xFF, 1}, // absurd body length
	} {
		r := newProofReader(buf)
		if _, err := r.nextSegment(); !errors.Is(err, ErrProofMalformed) {
			t.Errorf("buffer %x: %v", buf, err)
		}
	}

	r := newProofReader(nil)
	if !r.done() {
		t.Error("empty proof is not done")
	}
}

func TestReadBalanceAlphabet(t *testing.T) {
	for b, want := range map[byte]int8{0x00: 0, 0x01: 1, 0xFF: -1} {
		s := &segmentReader{buf: []byte{b}}
		got, err := s.readBalance()
		if err != nil {
			t.Fatalf("balance byte %#x: %v", b, err)
		}
		if got != want {
			t.Errorf("balance byte %#x decoded as %d", b, got)
		}
	}
	for _, b := range []byte{0x02, 0x7F, 0x80, 0xFE} {
		s := &segmentReader{buf: []byte{b}}
		if _, err := s.readBalance(); !errors.Is(err, ErrProofMalformed) {
			t.Errorf("balance byte %#x: %v", b, err)
		}
	}
}

func TestReadDirectionsPadding(t *testing.T) {
	s := &segmentReader{buf: []byte{0b10100000}}
	dirs, err := s.readDirections(3)
	if err != nil {
		t.Fatal(err)
	}
	want := []bool{true, false, true}
	for i := range want {
		if dirs[i] != want[i] {
			t.Fatalf("directions decoded as %v", dirs)
		}
	}

	// The same byte with only two significant bits has a stray bit in
	// the padding.
	s = &segmentReader{buf: []byte{0b10100000}}
	if _, err := s.readDirections(2); !errors.Is(err, ErrProofMalformed) {
		t.Errorf("nonzero padding: %v", err)
	}
}

func TestReadLeafRecordTruncated(t *testing.T) {
	w := &segmentWriter{}
	w.setLeaf(&leafNode{
		key:         []byte{1, 2},
		nextLeafKey: []byte{3, 4},
		value:       []byte{5, 6, 7},
	})
	record := w.leaf

	s := &segmentReader{buf: record}
	leaf, err := s.readLeafRecord(2)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(leaf.key, []byte{1, 2}) ||
		!bytes.Equal(leaf.nextLeafKey, []byte{3, 4}) ||
		!bytes.Equal(leaf.value, []byte{5, 6, 7}) {
		t.Fatalf("leaf record decoded as %+v", leaf)
	}
	if !s.finished() {
		t.Error("leaf record left slack")
	}

	for n := 0; n < len(record); n++ {
		s := &segmentReader{buf: record[:n]}
		if _, err := s.readLeafRecord(2); !errors.Is(err, ErrProofMalformed) {
			t.Errorf("prefix of %d bytes: %v", n, err)
		}
	}
}

// TestSegmentSlack rejects proofs whose segment body is longer than its
// records: a correct body length must be consumed exactly.
func TestSegmentSlack(t *testing.T) {
	p := newTestProver(t)
	base := p.Digest()
	ops := []Operation{NewLookup(testKey(1))}
	if _, err := p.Perform(ops); err != nil {
		t.Fatal(err)
	}
	proof := p.GenerateProof()

	// Grow the body by one byte and patch the length prefix.
	padded := append([]byte(nil), proof...)
	padded = append(padded, 0x00)
	padded[3]++

	v := newTestVerifier(t, base)
	if _, err := v.Verify(ops, padded); !errors.Is(err, ErrProofMalformed) {
		t.Errorf("padded segment: %v", err)
	}
}
