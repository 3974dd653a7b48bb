// Package layer implements the greedy commuting-layer builder (C7): it
// regroups a flat rotation sequence into an ordered list of layers,
// each an unordered set of mutually-commuting rotations, such that
// concatenating the layers reproduces the input under the commutation
// relation. It is a greedy upper bound on depth reduction, not a
// minimum-layer solver, and a measurement in the input acts as a hard
// barrier past which the builder does not look.
package layer

import (
	"sync"

	"github.com/latticesurgery/qrw/internal/algoutils"
	"github.com/latticesurgery/qrw/internal/fork"
	"github.com/latticesurgery/qrw/op"
	"github.com/latticesurgery/qrw/pauli"
)

// Build regroups the rotation-only prefix of ops into commuting layers
// and returns any trailing elements from the first measurement onward
// untouched. If ops holds no measurement, rest is empty.
func Build(ops []op.Operation) (layers [][]op.Rotation, rest []op.Operation) {
	stop := len(ops)
	for i, o := range ops {
		if o.IsMeasurement() {
			stop = i
			break
		}
	}

	rots := algoutils.MapRange(0, stop, func(i int) op.Rotation { return ops[i].Rot })

	layers = converge(initLayers(rots), fork.MaxWorkers)
	if stop < len(ops) {
		rest = append([]op.Operation(nil), ops[stop:]...)
	}
	return layers, rest
}

// Flatten concatenates layers back into a flat rotation sequence, in
// layer order, preserving each layer's internal order.
func Flatten(layers [][]op.Rotation) []op.Rotation {
	n := 0
	for _, l := range layers {
		n += len(l)
	}
	out := make([]op.Rotation, 0, n)
	for _, l := range layers {
		out = append(out, l...)
	}
	return out
}

func initLayers(rots []op.Rotation) [][]op.Rotation {
	return algoutils.Map(rots, func(r op.Rotation) []op.Rotation { return []op.Rotation{r} })
}

// converge repeatedly slices the layer list into contiguous chunks, one
// per worker, runs each chunk to its own fixed point, and concatenates
// the results; it repeats the whole round until no chunk reports a
// change. Inter-chunk boundaries are only partly optimised by any one
// call - the section driver compensates by re-layering after every
// T-forward pass.
func converge(layers [][]op.Rotation, maxWorkers int) [][]op.Rotation {
	for {
		changed, next := parallelRound(layers, maxWorkers)
		layers = next
		if !changed {
			return layers
		}
	}
}

func parallelRound(layers [][]op.Rotation, maxWorkers int) (bool, [][]op.Rotation) {
	if len(layers) < 2 {
		return false, layers
	}

	ranges := fork.Partition(0, len(layers), maxWorkers, fork.MinChunk)
	if len(ranges) <= 1 {
		return sweepToFixedPoint(layers)
	}

	changes := make([]bool, len(ranges))
	chunks := make([][][]op.Rotation, len(ranges))
	var wg sync.WaitGroup
	wg.Add(len(ranges))
	for i, r := range ranges {
		i, r := i, r
		go func() {
			defer wg.Done()
			c, out := sweepToFixedPoint(layers[r.Begin:r.End])
			changes[i] = c
			chunks[i] = out
		}()
	}
	wg.Wait()

	anyChange := false
	combined := make([][]op.Rotation, 0, len(layers))
	for i, chunk := range chunks {
		anyChange = anyChange || changes[i]
		combined = append(combined, chunk...)
	}
	return anyChange, combined
}

func sweepToFixedPoint(layers [][]op.Rotation) (bool, [][]op.Rotation) {
	cur := layers
	anyChange := false
	for {
		changed, next := sweepOnce(cur)
		cur = next
		if !changed {
			return anyChange, cur
		}
		anyChange = true
	}
}

// sweepOnce performs one left-to-right walk over adjacent layer pairs,
// moving every rotation of L' that commutes with everything already in
// L into L, deleting L' once it is empty. It mutates a private copy of
// the layer list and returns whether anything moved.
func sweepOnce(layers [][]op.Rotation) (bool, [][]op.Rotation) {
	work := make([][]op.Rotation, len(layers))
	copy(work, layers)

	changed := false
	i := 0
	for i < len(work)-1 {
		l := work[i]
		lp := work[i+1]

		var remaining []op.Rotation
		moved := false
		for _, r := range lp {
			if commutesWithAll(r, l) {
				l = append(l, r)
				moved = true
			} else {
				remaining = append(remaining, r)
			}
		}
		if moved {
			changed = true
			work[i] = l
		}

		if len(remaining) == 0 {
			work = append(work[:i+1], work[i+2:]...)
			continue
		}
		work[i+1] = remaining
		i++
	}
	return changed, work
}

func commutesWithAll(r op.Rotation, layer []op.Rotation) bool {
	for _, o := range layer {
		if !pauli.MustCommutes(r.P, o.P) {
			return false
		}
	}
	return true
}
