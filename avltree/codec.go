package avltree

import (
	"encoding/binary"

	"github.com/ergoplatform/avltree-go/utils"
)

// Proof wire format, per operation and concatenated in submission
// order. All integers are big-endian; balances are two's complement
// bytes restricted to {0xFF, 0x00, 0x01}. For key length K and label
// length L:
//
//	Segment    := bodyLen:u32 Body
//	Body       := pathLen:u8
//	              dirBits:ceil(pathLen/8) bytes   (MSB-first, 1 = right,
//	                                               unused bits zero)
//	              { balance:i8 siblingLabel:[L] }  x pathLen
//	              LeafRecord
//	              Spine                            (removal hits only)
//	              { balance:i8 leftLabel:[L] rightLabel:[L] }  x expansions
//	LeafRecord := key:[K] nextLeafKey:[K] valueLen:u32 value:[valueLen]
//	Spine      := spineLen:u8
//	              { balance:i8 leftLabel:[L] }  x spineLen
//	              LeafRecord                      (predecessor leaf)
//
// Decoding is strict: any slack inside a body, nonzero direction
// padding, an out-of-alphabet balance byte or a truncated record is
// ErrProofMalformed.

// A segmentWriter accumulates the proof segment of one operation and
// assembles it with its length prefix.
type segmentWriter struct {
	dirs       []bool
	path       []byte
	leaf       []byte
	spineCount int
	spine      []byte
	hasSpine   bool
	expansions []byte
}

func (w *segmentWriter) addPathStep(right bool, balance int8, siblingLabel []byte) {
	w.dirs = append(w.dirs, right)
	w.path = append(w.path, byte(balance))
	w.path = append(w.path, siblingLabel...)
}

func appendLeafRecord(buf []byte, l *leafNode) []byte {
	buf = append(buf, l.key...)
	buf = append(buf, l.nextLeafKey...)
	var n [4]byte
	binary.BigEndian.PutUint32(n[:], uint32(len(l.value)))
	buf = append(buf, n[:]...)
	return append(buf, l.value...)
}

func (w *segmentWriter) setLeaf(l *leafNode) {
	w.leaf = appendLeafRecord(nil, l)
}

func (w *segmentWriter) addSpineNode(balance int8, leftLabel []byte) {
	w.hasSpine = true
	w.spineCount++
	w.spine = append(w.spine, byte(balance))
	w.spine = append(w.spine, leftLabel...)
}

func (w *segmentWriter) setPredecessor(l *leafNode) {
	w.hasSpine = true
	w.spine = appendLeafRecord(w.spine, l)
}

func (w *segmentWriter) addExpansion(balance int8, leftLabel, rightLabel []byte) {
	w.expansions = append(w.expansions, byte(balance))
	w.expansions = append(w.expansions, leftLabel...)
	w.expansions = append(w.expansions, rightLabel...)
}

// bytes assembles the length-prefixed segment.
func (w *segmentWriter) bytes() []byte {
	dirBytes := make([]byte, (len(w.dirs)+7)/8)
	for i, right := range w.dirs {
		if right {
			utils.SetNthBit(dirBytes, i)
		}
	}

	bodyLen := 1 + len(dirBytes) + len(w.path) + len(w.leaf) + len(w.expansions)
	if w.hasSpine {
		bodyLen += 1 + len(w.spine)
	}

	out := make([]byte, 0, 4+bodyLen)
	var n [4]byte
	binary.BigEndian.PutUint32(n[:], uint32(bodyLen))
	out = append(out, n[:]...)
	out = append(out, byte(len(w.dirs)))
	out = append(out, dirBytes...)
	out = append(out, w.path...)
	out = append(out, w.leaf...)
	if w.hasSpine {
		out = append(out, byte(w.spineCount))
		out = append(out, w.spine...)
	}
	return append(out, w.expansions...)
}

// A proofReader walks a serialized proof segment by segment.
type proofReader struct {
	buf []byte
	off int
}

func newProofReader(proof []byte) *proofReader {
	return &proofReader{buf: proof}
}

func (r *proofReader) done() bool {
	return r.off == len(r.buf)
}

// nextSegment reads one length-prefixed segment body.
func (r *proofReader) nextSegment() (*segmentReader, error) {
	if len(r.buf)-r.off < 4 {
		return nil, ErrProofMalformed
	}
	bodyLen := int(binary.BigEndian.Uint32(r.buf[r.off:]))
	r.off += 4
	if bodyLen < 0 || len(r.buf)-r.off < bodyLen {
		return nil, ErrProofMalformed
	}
	body := r.buf[r.off : r.off+bodyLen]
	r.off += bodyLen
	return &segmentReader{buf: body}, nil
}

// A segmentReader decodes the records of one operation's segment.
type segmentReader struct {
	buf []byte
	off int
}

func (s *segmentReader) finished() bool {
	return s.off == len(s.buf)
}

func (s *segmentReader) readByte() (byte, error) {
	if len(s.buf)-s.off < 1 {
		return 0, ErrProofMalformed
	}
	b := s.buf[s.off]
	s.off++
	return b, nil
}

func (s *segmentReader) readBytes(n int) ([]byte, error) {
	if n < 0 || len(s.buf)-s.off < n {
		return nil, ErrProofMalformed
	}
	b := s.buf[s.off : s.off+n]
	s.off += n
	return b, nil
}

func (s *segmentReader) readBalance() (int8, error) {
	b, err := s.readByte()
	if err != nil {
		return 0, err
	}
	switch b {
	case 0x00, 0x01, 0xFF:
		return int8(b), nil
	}
	return 0, ErrProofMalformed
}

func (s *segmentReader) readUint32() (uint32, error) {
	b, err := s.readBytes(4)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(b), nil
}

// readDirections reads the packed direction bits for a path of length
// pathLen and rejects nonzero padding bits.
func (s *segmentReader) readDirections(pathLen int) ([]bool, error) {
	raw, err := s.readBytes((pathLen + 7) / 8)
	if err != nil {
		return nil, err
	}
	dirs := make([]bool, pathLen)
	for i := range dirs {
		dirs[i] = utils.GetNthBit(raw, i)
	}
	for i := pathLen; i < 8*len(raw); i++ {
		if utils.GetNthBit(raw, i) {
			return nil, ErrProofMalformed
		}
	}
	return dirs, nil
}

// readLeafRecord decodes a leaf's full content into a fresh leafNode.
func (s *segmentReader) readLeafRecord(keyLength int) (*leafNode, error) {
	key, err := s.readBytes(keyLength)
	if err != nil {
		return nil, err
	}
	next, err := s.readBytes(keyLength)
	if err != nil {
		return nil, err
	}
	valueLen, err := s.readUint32()
	if err != nil {
		return nil, err
	}
	value, err := s.readBytes(int(valueLen))
	if err != nil {
		return nil, err
	}
	return &leafNode{key: key, value: value, nextLeafKey: next}, nil
}
