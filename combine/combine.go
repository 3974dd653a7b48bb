// Package combine implements the rotation combiner (C6): the discrete
// angle-arithmetic rules for merging two same-basis rotations, with
// every disallowed case enumerated rather than silently wrapped.
package combine

import "github.com/latticesurgery/qrw/op"

// Combine attempts to merge r1 and r2, applying the rules in order:
//
//  1. both identity -> merged, no rotations returned
//  2. exactly one identity -> merged, the other rotation is returned
//  3. different bases -> refused, both rotations returned unchanged
//  4. angle sum s = a1+a2 (not yet reduced)
//  5. s == 0 -> merged, no rotations returned
//  6. a Pauli (angle 0) combined with a non-Pauli is only ever allowed
//     for the pair {(-2,0),(0,-2)}; every other such pair is refused
//  7. |s| == 3 -> refused (would be 5*pi/8, outside the representable set)
//  8. |s| == 4 -> canonicalised to 0 (merges to a Pauli)
//  9. otherwise a single rotation with angle s on r1's basis
//
// The returned slice has 0 elements (cancellation), 1 element (merge),
// or 2 elements (refusal, r1 and r2 unchanged and in order).
func Combine(r1, r2 op.Rotation) (merged bool, result []op.Rotation) {
	id1, id2 := r1.IsIdentity(), r2.IsIdentity()
	switch {
	case id1 && id2:
		return true, nil
	case id1:
		return true, []op.Rotation{r2}
	case id2:
		return true, []op.Rotation{r1}
	}

	if !r1.P.Equal(r2.P) {
		return false, []op.Rotation{r1, r2}
	}

	s := r1.A + r2.A

	if s == 0 {
		return true, nil
	}

	if r1.A == 0 || r2.A == 0 {
		// One operand is a Pauli gate. The only representable merge of a
		// Pauli with a non-Pauli is Pauli + (-pi/4 Clifford); the sum is
		// always -2 in that case and canonicalises to +2.
		allowed := (r1.A == 0 && r2.A == -2) || (r2.A == 0 && r1.A == -2)
		if !allowed {
			return false, []op.Rotation{r1, r2}
		}
		return true, []op.Rotation{op.R(r1.P, 2)}
	}

	switch s {
	case 3, -3:
		return false, []op.Rotation{r1, r2}
	case 4, -4:
		s = 0
	}

	return true, []op.Rotation{op.R(r1.P, s)}
}
