// Package op defines the two Operation variants the rewriter passes
// operate on: Rotation and Measurement, plus the Operation tagged sum
// that lets a flat sequence mix the two without a class hierarchy or
// runtime downcasts.
package op

import (
	"fmt"

	"github.com/latticesurgery/qrw/pauli"
)

// AngleKind classifies a Rotation's angle code for the conjugation
// engine, which only accepts Pauli (0) or Clifford (±2) left operands.
type AngleKind int

const (
	AnglePauli AngleKind = iota
	AngleClifford
	AngleT
	AngleInvalid
)

// Rotation is exp(-i*(a*pi/8)*P) for an angle code a in {-2,-1,0,1,2}.
// a=0 is a Pauli gate (pi/2), |a|=1 is a T-gate (pi/8), |a|=2 is a
// Clifford (pi/4). The identity is any Rotation whose P is all-I,
// regardless of A.
type Rotation struct {
	P pauli.Pauli
	A int
}

// R constructs a Rotation, panicking if a is outside the representable
// angle set {-2,-1,0,1,2}. Intermediate, not-yet-canonicalised angle
// sums used inside the combiner are plain ints, never wrapped in a
// Rotation, so this constructor can enforce the invariant unconditionally.
func R(p pauli.Pauli, a int) Rotation {
	if a < -2 || a > 2 {
		panic(fmt.Sprintf("op: angle code %d outside representable set {-2,-1,0,1,2}", a))
	}
	return Rotation{P: p, A: a}
}

// IsIdentity reports whether r is the identity rotation (all-I basis).
func (r Rotation) IsIdentity() bool {
	return r.P.IsIdentity()
}

// IsT reports whether r is a T-gate: |A|=1 on a non-identity basis.
func (r Rotation) IsT() bool {
	return !r.IsIdentity() && (r.A == 1 || r.A == -1)
}

// IsClifford reports whether r is a Clifford rotation: |A|=2 on a
// non-identity basis.
func (r Rotation) IsClifford() bool {
	return !r.IsIdentity() && (r.A == 2 || r.A == -2)
}

// IsPauliGate reports whether r is a Pauli (pi/2) gate: A=0 on a
// non-identity basis.
func (r Rotation) IsPauliGate() bool {
	return !r.IsIdentity() && r.A == 0
}

// ConjugationKind classifies r for use as the left operand of a
// conjugation: Pauli or Clifford are legal; a T-gate is AngleT, and the
// identity (which is never pushed) and any other angle are AngleInvalid.
func (r Rotation) ConjugationKind() AngleKind {
	switch {
	case r.IsIdentity():
		return AngleInvalid
	case r.A == 0:
		return AnglePauli
	case r.A == 2 || r.A == -2:
		return AngleClifford
	case r.A == 1 || r.A == -1:
		return AngleT
	default:
		return AngleInvalid
	}
}

// Equal implements invariant 1 of the data model: two Rotations with
// the same (P,A) are equal, and identity rotations compare equal to
// any other identity rotation regardless of A.
func (r Rotation) Equal(o Rotation) bool {
	if r.IsIdentity() && o.IsIdentity() {
		return true
	}
	return r.A == o.A && r.P.Equal(o.P)
}

// Clone returns an independent copy of r.
func (r Rotation) Clone() Rotation {
	return Rotation{P: r.P.Clone(), A: r.A}
}

func (r Rotation) String() string {
	return fmt.Sprintf("R(%d,%s)", r.A, r.P)
}
