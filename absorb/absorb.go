// Package absorb implements the single-qubit trailing rearrangement
// (C8a) and the measurement-absorption pass (C8b): folding Clifford and
// Pauli rotations that sit just before a measurement block into that
// block. Each absorbed rotation rewrites the measurements it crosses and
// is then either deleted (ancilla-only) or moved behind the block.
package absorb

import (
	"github.com/bits-and-blooms/bitset"
	"github.com/latticesurgery/qrw/conjugate"
	"github.com/latticesurgery/qrw/op"
	"github.com/latticesurgery/qrw/pauli"
)

// RearrangeSingleQubit implements C8a. Scanning right-to-left from
// iLast (the last rotation before the measurement block) past any
// already-trailing single-qubit rotations, it bubbles every remaining
// single-qubit rotation rightward through commuting neighbours until it
// either joins the trailing block or is blocked by the first
// non-commuting neighbour. iT is the index of the last T-rotation (or
// one less than the first index under consideration if there is no
// T-prefix). It mutates ops in place and returns the first index of the
// trailing single-qubit block.
func RearrangeSingleQubit(ops []op.Operation, iT, iLast int) int {
	trailStart := iLast + 1
	for i := iLast; i > iT; i-- {
		if i >= trailStart {
			continue
		}
		cur := ops[i]
		if !cur.IsRotation() || !cur.Rot.P.IsSingleQubit() {
			continue
		}

		pos := i
		for pos < trailStart-1 {
			next := ops[pos+1]
			if !next.IsRotation() || !pauli.MustCommutes(cur.Rot.P, next.Rot.P) {
				break
			}
			ops[pos], ops[pos+1] = next, cur
			pos++
		}
		if pos == trailStart-1 {
			trailStart = pos
		}
	}
	return trailStart
}

// Result is the outcome of Absorb.
type Result struct {
	// Ops is the rewritten sequence: any T-prefix untouched, the
	// surviving Clifford/Pauli rotations that were not absorbed, the
	// measurement block (with phases/bases/crot possibly rewritten),
	// then the commuted-through tail.
	Ops []op.Operation
	// CommutedStart is the index within Ops after which the
	// commuted-through tail begins.
	CommutedStart int
}

// Absorb runs C8a then C8b over ops. rotStart is the index of the first
// non-T element (T-prefix, if any, occupies ops[:rotStart] and is
// copied through untouched); ancillaBegin is B, the ancilla boundary -
// qubits [0,B) are data, [B,W) are ancilla. ops[rotStart:] must be
// Clifford/Pauli rotations followed by a contiguous measurement block.
func Absorb(ops []op.Operation, rotStart int, ancillaBegin uint) Result {
	work := append([]op.Operation(nil), ops...)

	measStart := len(work)
	for i := rotStart; i < len(work); i++ {
		if work[i].IsMeasurement() {
			measStart = i
			break
		}
	}
	iLast := measStart - 1
	iT := rotStart - 1

	if iLast > iT {
		RearrangeSingleQubit(work, iT, iLast)
	}

	tailIdx := make([]int, 0, len(work)-measStart)
	for i := measStart; i < len(work); i++ {
		tailIdx = append(tailIdx, i)
	}
	overallMask := overallSupport(work, tailIdx)

	deleted := make(map[int]bool)
	commutedThrough := make(map[int]bool)

loop:
	for i := iLast; i > iT; i-- {
		r := work[i].Rot
		support := r.P.Support()
		action := r.P.BlockAction(ancillaBegin)

		switch action {
		case pauli.Ancilla:
			// act only if every ancilla R touches is measured in the tail
			if !maskSubset(ancillaMask(support, ancillaBegin), overallMask) {
				break loop
			}
		case pauli.Both:
			// act only if none of R's ancilla qubits are measured
			if !maskEmpty(ancillaMask(support, ancillaBegin).Intersection(overallMask)) {
				break loop
			}
		}

		for _, idx := range tailIdx {
			m := work[idx].Meas
			if !pauli.MustCommutes(r.P, m.P) {
				work[idx] = op.NewMeasurement(conjugate.PushMeasurement(r, m))
			} else if len(m.Crot) > 0 {
				work[idx] = op.NewMeasurement(pushCrotOnly(r, m))
			}
		}

		if action == pauli.Ancilla {
			deleted[i] = true
		} else {
			commutedThrough[i] = true
		}
	}

	var kept, commuted []op.Operation
	for i := rotStart; i < measStart; i++ {
		switch {
		case deleted[i]:
		case commutedThrough[i]:
			commuted = append(commuted, work[i])
		default:
			kept = append(kept, work[i])
		}
	}

	result := make([]op.Operation, 0, len(work))
	result = append(result, work[:rotStart]...)
	result = append(result, kept...)
	result = append(result, work[measStart:]...)
	commutedStart := len(result)
	result = append(result, commuted...)

	return Result{Ops: result, CommutedStart: commutedStart}
}

// pushCrotOnly rewrites every classically-controlled rotation inside m
// that anticommutes with a, leaving m's own basis and phase untouched -
// the case where the measurement itself commutes with a but still has
// controlled corrections that do not.
func pushCrotOnly(a op.Rotation, m op.Measurement) op.Measurement {
	out := m.Clone()
	for i, c := range out.Crot {
		if !pauli.MustCommutes(a.P, c.P) {
			out.Crot[i] = conjugate.PushRotation(a, c)
		}
	}
	return out
}

func overallSupport(work []op.Operation, tailIdx []int) *bitset.BitSet {
	if len(tailIdx) == 0 {
		return bitset.New(0)
	}
	w := work[tailIdx[0]].Meas.P.Width()
	mask := bitset.New(w)
	for _, idx := range tailIdx {
		mask.InPlaceUnion(work[idx].Meas.P.Support())
	}
	return mask
}

func ancillaMask(support *bitset.BitSet, ancillaBegin uint) *bitset.BitSet {
	anc := bitset.New(support.Len())
	for i, ok := support.NextSet(ancillaBegin); ok; i, ok = support.NextSet(i + 1) {
		anc.Set(i)
	}
	return anc
}

func maskSubset(a, b *bitset.BitSet) bool {
	return a.Difference(b).None()
}

func maskEmpty(a *bitset.BitSet) bool {
	return a.None()
}
