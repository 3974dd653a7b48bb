// Package tforward implements the T-forward pass (C5): bubbling every
// T-rotation in a range leftward, past every non-T element, by
// repeated adjacent swaps that conjugate the T whenever it anticommutes
// with the element it is crossing. A measurement is opaque - a T never
// crosses one.
package tforward

import (
	"sync"

	"github.com/latticesurgery/qrw/conjugate"
	"github.com/latticesurgery/qrw/internal/fork"
	"github.com/latticesurgery/qrw/op"
	"github.com/latticesurgery/qrw/pauli"
)

// Pass bubbles every T-rotation within [begin,end) of ops as far left as
// it can go, mutating ops in place, and returns the split index: the
// first position in [begin,end) holding a non-T element once the pass
// has converged within the range. It parallelises across up to
// fork.MaxWorkers workers and falls back to a single worker below
// fork.MinChunk elements.
func Pass(ops []op.Operation, begin, end int) int {
	return passWorkers(ops, begin, end, fork.MaxWorkers)
}

// passWorkers is the recursive outer driver described in spec section
// 4.4: split the range across workers, run the serial pass on each
// chunk independently, then re-run on the union of the first chunk's
// split point through the range end with one fewer worker. Each
// recursion only shrinks the window it must re-examine; it terminates
// in a single-worker, fully serial pass.
func passWorkers(ops []op.Operation, begin, end, maxWorkers int) int {
	if end <= begin {
		return begin
	}
	if maxWorkers <= 1 {
		return passSerial(ops, begin, end)
	}

	ranges := fork.Partition(begin, end, maxWorkers, fork.MinChunk)
	if len(ranges) <= 1 {
		return passSerial(ops, begin, end)
	}

	splits := make([]int, len(ranges))
	var wg sync.WaitGroup
	wg.Add(len(ranges))
	for i, r := range ranges {
		i, r := i, r
		go func() {
			defer wg.Done()
			splits[i] = passSerial(ops, r.Begin, r.End)
		}()
	}
	wg.Wait()

	// The first chunk starts at `begin`, so its split point is already
	// the true global split up to the first chunk boundary. Everything
	// from there through the range end may still hold T's that failed to
	// cross an inter-chunk boundary; re-examine that shrinking interior
	// with one fewer worker.
	interiorBegin := splits[0]
	if interiorBegin >= end {
		return interiorBegin
	}
	return passWorkers(ops, interiorBegin, end, maxWorkers-1)
}

// passSerial is the single-worker, deterministic rewrite: find the
// first non-T element, then scan forward bubbling every T left one
// step at a time until it either joins the prefix or is blocked by a
// measurement, at which point the pass halts entirely.
func passSerial(ops []op.Operation, begin, end int) int {
	boundary := begin
	for boundary < end && isT(ops[boundary]) {
		boundary++
	}

	for cursor := boundary; cursor < end; cursor++ {
		switch {
		case ops[cursor].IsMeasurement():
			return boundary
		case isT(ops[cursor]):
			pos := cursor
			for pos > boundary {
				left := ops[pos-1]
				if left.IsMeasurement() {
					break
				}
				t := ops[pos].Rot
				l := left.Rot
				if !pauli.MustCommutes(t.P, l.P) {
					t = conjugate.PushRotation(l, t)
				}
				ops[pos-1], ops[pos] = op.NewRotation(t), left
				pos--
			}
			if pos == boundary {
				boundary++
			} else {
				return boundary
			}
		}
	}

	return boundary
}

func isT(o op.Operation) bool {
	return o.IsRotation() && o.Rot.IsT()
}
