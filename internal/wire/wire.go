// Package wire implements an optional binary encoding for an operation
// sequence. It is not needed to run the rewriter itself; it exists so a
// section's input or output can be persisted or shipped over the wire
// without re-deriving it from a higher-level circuit description.
//
// Encode splits a sequence into two independently-derived byte blocks,
// computed concurrently: a bit-packed Pauli mask block, and an
// intcomp-compressed block of structural integers (kind, angle, phi,
// pos, crot-count per operation). The two blocks are wrapped in a cbor
// envelope alongside a small header.
package wire

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/fxamacker/cbor/v2"
	"github.com/icza/bitio"
	"github.com/ronanh/intcomp"
	"golang.org/x/sync/errgroup"

	"github.com/bits-and-blooms/bitset"
	"github.com/latticesurgery/qrw/op"
	"github.com/latticesurgery/qrw/pauli"
)

// formatVersion is bumped whenever the envelope or block layout changes
// incompatibly.
const formatVersion = 1

// ErrEmptySequence is returned by Encode when given a zero-length
// operation sequence; there is no width to record in the envelope.
var ErrEmptySequence = errors.New("wire: cannot encode an empty operation sequence")

// ErrUnsupportedVersion is returned by Decode when the envelope's
// Version field does not match formatVersion.
var ErrUnsupportedVersion = errors.New("wire: unsupported envelope version")

// ErrCorruptEnvelope is returned by Decode when the decoded envelope's
// fields are internally inconsistent (wrong block lengths, truncated
// streams).
var ErrCorruptEnvelope = errors.New("wire: corrupt envelope")

// envelope is the cbor-encoded container. Masks and Meta are computed
// independently so Decode can kick off both block decodes concurrently;
// PauliCount lets decodeMasks run without first inspecting Meta.
type envelope struct {
	Version    int
	Width      uint
	Count      int
	PauliCount int
	Masks      []byte
	Meta       []byte
}

// Encode serializes ops to a self-describing byte slice.
func Encode(ops []op.Operation) ([]byte, error) {
	if len(ops) == 0 {
		return nil, ErrEmptySequence
	}
	width := ops[0].Width()
	paulis := gatherPaulis(ops)

	var masks, meta []byte
	g := new(errgroup.Group)
	g.Go(func() error {
		m, err := encodeMasks(paulis, width)
		if err != nil {
			return err
		}
		masks = m
		return nil
	})
	g.Go(func() error {
		m, err := encodeMeta(ops)
		if err != nil {
			return err
		}
		meta = m
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	env := envelope{
		Version:    formatVersion,
		Width:      width,
		Count:      len(ops),
		PauliCount: len(paulis),
		Masks:      masks,
		Meta:       meta,
	}
	return cbor.Marshal(env)
}

// Decode reverses Encode.
func Decode(data []byte) ([]op.Operation, error) {
	var env envelope
	if err := cbor.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("wire: decoding envelope: %w", err)
	}
	if env.Version != formatVersion {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrUnsupportedVersion, env.Version, formatVersion)
	}
	if env.Count <= 0 || env.Width == 0 || env.PauliCount < env.Count {
		return nil, ErrCorruptEnvelope
	}

	var paulis []pauli.Pauli
	var metaItems []metaItem
	g := new(errgroup.Group)
	g.Go(func() error {
		p, err := decodeMasks(env.Masks, env.Width, env.PauliCount)
		if err != nil {
			return err
		}
		paulis = p
		return nil
	})
	g.Go(func() error {
		m, err := decodeMeta(env.Meta, env.Count)
		if err != nil {
			return err
		}
		metaItems = m
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return rebuild(metaItems, paulis)
}

// gatherPaulis collects every Pauli string referenced by ops, in the
// canonical order rebuild expects back: a rotation contributes its P, a
// measurement contributes its P followed by each Crot[i].P in order.
func gatherPaulis(ops []op.Operation) []pauli.Pauli {
	out := make([]pauli.Pauli, 0, len(ops))
	for _, o := range ops {
		if o.IsRotation() {
			out = append(out, o.Rot.P)
			continue
		}
		out = append(out, o.Meas.P)
		for _, r := range o.Meas.Crot {
			out = append(out, r.P)
		}
	}
	return out
}

// encodeMasks bit-packs each Pauli's X-mask then Z-mask, MSB-first, bit
// index 0 mapping to qubit 0.
func encodeMasks(paulis []pauli.Pauli, width uint) ([]byte, error) {
	var buf bytes.Buffer
	bw := bitio.NewWriter(&buf)
	for _, p := range paulis {
		if p.Width() != width {
			return nil, fmt.Errorf("wire: mixed qubit widths in one sequence: %d vs %d", p.Width(), width)
		}
		if err := writeMask(bw, p.X(), width); err != nil {
			return nil, err
		}
		if err := writeMask(bw, p.Z(), width); err != nil {
			return nil, err
		}
	}
	if err := bw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeMask(bw *bitio.Writer, mask *bitset.BitSet, width uint) error {
	for i := uint(0); i < width; i++ {
		bit := uint64(0)
		if mask.Test(i) {
			bit = 1
		}
		if err := bw.WriteBits(bit, 1); err != nil {
			return err
		}
	}
	return nil
}

func decodeMasks(data []byte, width uint, pauliCount int) ([]pauli.Pauli, error) {
	br := bitio.NewReader(bytes.NewReader(data))
	out := make([]pauli.Pauli, pauliCount)
	for i := 0; i < pauliCount; i++ {
		x := bitset.New(width)
		z := bitset.New(width)
		if err := readMask(br, x, width); err != nil {
			return nil, fmt.Errorf("wire: decoding mask %d: %w", i, err)
		}
		if err := readMask(br, z, width); err != nil {
			return nil, fmt.Errorf("wire: decoding mask %d: %w", i, err)
		}
		p, err := pauli.FromMasks(width, x, z)
		if err != nil {
			return nil, err
		}
		out[i] = p
	}
	return out, nil
}

func readMask(br *bitio.Reader, into *bitset.BitSet, width uint) error {
	for i := uint(0); i < width; i++ {
		bit, err := br.ReadBits(1)
		if err != nil {
			return err
		}
		if bit == 1 {
			into.Set(i)
		}
	}
	return nil
}

// metaItem is the per-operation structural record recovered from the
// Meta block; it carries everything needed to rebuild an Operation
// other than the Pauli strings themselves.
type metaItem struct {
	kind    op.Kind
	angle   int
	phi     bool
	pos     int
	crotLen int
	crotA   []int
}

// metaFieldsPerOp is the number of flattened uint32 values
// encodeMeta/decodeMeta exchange per operation, not counting the
// crot angle tail.
const metaFieldsPerOp = 5

// encodeMeta flattens (kind, angle+2, phi, pos, crot-count) per
// operation, followed by each measurement's crot angle codes (also
// +2-offset), into a single uint32 stream and intcomp-compresses it.
// The +2 offset keeps every value non-negative, as required by
// CompressUint32's delta coding.
func encodeMeta(ops []op.Operation) ([]byte, error) {
	flat := make([]uint32, 0, len(ops)*metaFieldsPerOp)
	for _, o := range ops {
		if o.IsRotation() {
			flat = append(flat, uint32(op.KindRotation), uint32(o.Rot.A+2), 0, 0, 0)
			continue
		}
		phi := uint32(0)
		if o.Meas.Phi {
			phi = 1
		}
		flat = append(flat, uint32(op.KindMeasurement), 0, phi, uint32(o.Meas.Pos), uint32(len(o.Meas.Crot)))
		for _, r := range o.Meas.Crot {
			flat = append(flat, uint32(r.A+2))
		}
	}

	compressed := intcomp.CompressUint32(flat, nil)
	var buf bytes.Buffer
	if err := binary.Write(&buf, binary.LittleEndian, uint64(len(compressed))); err != nil {
		return nil, err
	}
	if err := binary.Write(&buf, binary.LittleEndian, compressed); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func decodeMeta(data []byte, count int) ([]metaItem, error) {
	r := bytes.NewReader(data)
	var length uint64
	if err := binary.Read(r, binary.LittleEndian, &length); err != nil {
		return nil, fmt.Errorf("wire: reading meta length: %w", err)
	}
	compressed := make([]uint32, length)
	if err := binary.Read(r, binary.LittleEndian, compressed); err != nil {
		return nil, fmt.Errorf("wire: reading meta block: %w", err)
	}
	flat := intcomp.UncompressUint32(compressed, nil)

	items := make([]metaItem, count)
	idx := 0
	for i := 0; i < count; i++ {
		if idx+metaFieldsPerOp > len(flat) {
			return nil, ErrCorruptEnvelope
		}
		kind := op.Kind(flat[idx])
		angle := int(flat[idx+1]) - 2
		phi := flat[idx+2] == 1
		pos := int(flat[idx+3])
		crotLen := int(flat[idx+4])
		idx += metaFieldsPerOp

		if idx+crotLen > len(flat) {
			return nil, ErrCorruptEnvelope
		}
		crotA := make([]int, crotLen)
		for j := 0; j < crotLen; j++ {
			crotA[j] = int(flat[idx+j]) - 2
		}
		idx += crotLen

		items[i] = metaItem{kind: kind, angle: angle, phi: phi, pos: pos, crotLen: crotLen, crotA: crotA}
	}
	return items, nil
}

// rebuild zips the decoded structural metadata back up with the
// decoded Pauli strings, in the same order gatherPaulis produced them.
func rebuild(items []metaItem, paulis []pauli.Pauli) ([]op.Operation, error) {
	out := make([]op.Operation, len(items))
	pi := 0
	next := func() (pauli.Pauli, error) {
		if pi >= len(paulis) {
			return pauli.Pauli{}, ErrCorruptEnvelope
		}
		p := paulis[pi]
		pi++
		return p, nil
	}

	for i, it := range items {
		switch it.kind {
		case op.KindRotation:
			p, err := next()
			if err != nil {
				return nil, err
			}
			out[i] = op.NewRotation(op.R(p, it.angle))
		case op.KindMeasurement:
			p, err := next()
			if err != nil {
				return nil, err
			}
			crot := make([]op.Rotation, it.crotLen)
			for j := 0; j < it.crotLen; j++ {
				cp, err := next()
				if err != nil {
					return nil, err
				}
				crot[j] = op.R(cp, it.crotA[j])
			}
			out[i] = op.NewMeasurement(op.Measurement{P: p, Phi: it.phi, Crot: crot, Pos: it.pos})
		default:
			return nil, fmt.Errorf("%w: unknown operation kind %d", ErrCorruptEnvelope, it.kind)
		}
	}
	if pi != len(paulis) {
		return nil, ErrCorruptEnvelope
	}
	return out, nil
}
