// Package fingerprint computes a content hash of an operation sequence,
// used to key the section driver's fixed-point memoization cache. It is
// not a cryptographic commitment and carries no format guarantees
// across versions of this module.
package fingerprint

import (
	"encoding/binary"
	"io"

	"github.com/bits-and-blooms/bitset"
	"github.com/latticesurgery/qrw/op"
	"github.com/latticesurgery/qrw/pauli"
	"golang.org/x/crypto/blake2b"
)

// Digest is a fixed-size content hash of an operation sequence.
type Digest [32]byte

// Of hashes ops into a Digest. Two sequences that are structurally
// equal (same Kind/P/A/Phi/Pos/Crot at every position) always hash to
// the same Digest; this is the only property callers may rely on.
func Of(ops []op.Operation) Digest {
	h, err := blake2b.New256(nil)
	if err != nil {
		panic(err) // New256(nil) with no key never fails
	}

	var lenBuf [8]byte
	binary.LittleEndian.PutUint64(lenBuf[:], uint64(len(ops)))
	h.Write(lenBuf[:])

	for _, o := range ops {
		writeOperation(h, o)
	}

	var d Digest
	copy(d[:], h.Sum(nil))
	return d
}

func writeOperation(h io.Writer, o op.Operation) {
	h.Write([]byte{byte(o.Kind)})
	if o.IsRotation() {
		writeRotation(h, o.Rot)
		return
	}
	writeMeasurement(h, o.Meas)
}

func writeRotation(h io.Writer, r op.Rotation) {
	writePauli(h, r.P)
	writeInt64(h, int64(r.A))
}

func writeMeasurement(h io.Writer, m op.Measurement) {
	writePauli(h, m.P)
	if m.Phi {
		h.Write([]byte{1})
	} else {
		h.Write([]byte{0})
	}
	writeInt64(h, int64(m.Pos))
	writeInt64(h, int64(len(m.Crot)))
	for _, c := range m.Crot {
		writeRotation(h, c)
	}
}

func writePauli(h io.Writer, p pauli.Pauli) {
	writeInt64(h, int64(p.Width()))
	writeMask(h, p.X())
	writeMask(h, p.Z())
}

func writeMask(h io.Writer, s *bitset.BitSet) {
	writeInt64(h, int64(s.Count()))
	for i, ok := s.NextSet(0); ok; i, ok = s.NextSet(i + 1) {
		writeInt64(h, int64(i))
	}
}

func writeInt64(h io.Writer, v int64) {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], uint64(v))
	h.Write(buf[:])
}
