/*
Copyright © 2020 ConsenSys

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

// Package pauli implements the Pauli-string primitive: a tensor product
// of single-qubit I/X/Y/Z operators over a fixed qubit width W, encoded
// as two equal-width bitmasks (X-mask, Z-mask). Bit index 0 of each mask
// corresponds to qubit 0.
//
// Commutes is the single hottest predicate in the rewriter; it and every
// other accessor here run in O(W/64) thanks to github.com/bits-and-blooms/bitset's
// word-parallel bitmask representation.
package pauli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/bits-and-blooms/bitset"
)

// ErrMismatchedWidth is returned when two Paulis (or a Pauli's X- and
// Z-masks) do not share the same qubit width W.
var ErrMismatchedWidth = errors.New("pauli: mismatched qubit width")

// ErrUnknownBasisSymbol is returned by FromLetters when a character
// outside {I,X,Y,Z,i,x,y,z} appears in the input.
var ErrUnknownBasisSymbol = errors.New("pauli: unknown basis symbol")

// BlockAction classifies which side of an ancilla boundary a Pauli's
// support touches.
type BlockAction byte

const (
	// Data is a Pauli whose support touches only data qubits.
	Data BlockAction = 'd'
	// Ancilla is a Pauli whose support touches only ancilla qubits
	// (vacuously true for the identity).
	Ancilla BlockAction = 'a'
	// Both is a Pauli whose support touches data and ancilla qubits.
	Both BlockAction = 'b'
)

// Pauli is a tensor product of single-qubit I/X/Y/Z operators over W
// qubits, represented as two W-bit masks. On qubit i: X=0,Z=0 -> I;
// X=1,Z=0 -> X; X=0,Z=1 -> Z; X=1,Z=1 -> Y.
type Pauli struct {
	x, z *bitset.BitSet
	w    uint
}

// New returns the identity Pauli string over w qubits.
func New(w uint) Pauli {
	return Pauli{x: bitset.New(w), z: bitset.New(w), w: w}
}

// FromMasks builds a Pauli from an explicit pair of bitmasks. It fails
// with ErrMismatchedWidth if x and z were constructed with different
// widths (an illegal basis declaration).
func FromMasks(w uint, x, z *bitset.BitSet) (Pauli, error) {
	if x.Len() != w || z.Len() != w {
		return Pauli{}, fmt.Errorf("%w: want %d, got x=%d z=%d", ErrMismatchedWidth, w, x.Len(), z.Len())
	}
	return Pauli{x: x.Clone(), z: z.Clone(), w: w}, nil
}

// FromLetters builds a Pauli from a string of length W over the
// alphabet {I,X,Y,Z} (case-insensitive), qubit 0 first. It is the
// convenience constructor used throughout the tests, e.g. "XYZ".
func FromLetters(s string) (Pauli, error) {
	w := uint(len(s))
	p := New(w)
	for i, r := range s {
		switch r {
		case 'I', 'i':
		case 'X', 'x':
			p.x.Set(uint(i))
		case 'Z', 'z':
			p.z.Set(uint(i))
		case 'Y', 'y':
			p.x.Set(uint(i))
			p.z.Set(uint(i))
		default:
			return Pauli{}, fmt.Errorf("%w: %q at position %d", ErrUnknownBasisSymbol, r, i)
		}
	}
	return p, nil
}

// MustFromLetters is FromLetters, panicking on error; intended for
// table-driven tests and literals, not for parsing untrusted input.
func MustFromLetters(s string) Pauli {
	p, err := FromLetters(s)
	if err != nil {
		panic(err)
	}
	return p
}

// Width returns W, the fixed qubit width this Pauli was built with.
func (p Pauli) Width() uint {
	return p.w
}

// X returns the X-mask. Callers must not mutate the returned BitSet.
func (p Pauli) X() *bitset.BitSet {
	return p.x
}

// Z returns the Z-mask. Callers must not mutate the returned BitSet.
func (p Pauli) Z() *bitset.BitSet {
	return p.z
}

// IsIdentity reports whether p is the all-I string. The zero Pauli
// (no masks) counts as the identity.
func (p Pauli) IsIdentity() bool {
	return (p.x == nil || p.x.None()) && (p.z == nil || p.z.None())
}

// IsSingleQubit reports whether p has support on exactly one qubit.
func (p Pauli) IsSingleQubit() bool {
	return support(p).Count() == 1
}

// support returns X|Z, the set of qubits p acts on nontrivially.
func support(p Pauli) *bitset.BitSet {
	return p.x.Union(p.z)
}

// Support returns X|Z, the set of qubits p acts on nontrivially. It is
// the exported form of support, for passes (such as absorb's ancilla
// and overall-support masks) that need it outside this package.
func (p Pauli) Support() *bitset.BitSet {
	return support(p)
}

// Commutes reports whether p and q commute: two Pauli strings
// anticommute iff popcount(p.X&q.Z) + popcount(p.Z&q.X) is odd.
func Commutes(p, q Pauli) (bool, error) {
	if p.w != q.w {
		return false, fmt.Errorf("%w: %d vs %d", ErrMismatchedWidth, p.w, q.w)
	}
	a := p.x.Intersection(q.z).Count()
	b := p.z.Intersection(q.x).Count()
	return (a+b)%2 == 0, nil
}

// MustCommutes is Commutes, panicking on mismatched width. Conjugation
// callers have already validated widths by construction, so this is the
// idiom used throughout conjugate/tforward/layer/absorb.
func MustCommutes(p, q Pauli) bool {
	c, err := Commutes(p, q)
	if err != nil {
		panic(err)
	}
	return c
}

// BlockAction classifies p's support relative to an ancilla boundary b:
// qubits [0,b) are data, [b,W) are ancilla. The identity classifies as
// Ancilla (vacuously - it has no support to violate the "ancilla only"
// rule).
func (p Pauli) BlockAction(b uint) BlockAction {
	s := support(p)
	if s.None() {
		return Ancilla
	}
	touchesData, touchesAncilla := false, false
	for i, ok := s.NextSet(0); ok; i, ok = s.NextSet(i + 1) {
		if i < b {
			touchesData = true
		} else {
			touchesAncilla = true
		}
		if touchesData && touchesAncilla {
			return Both
		}
	}
	if touchesAncilla {
		return Ancilla
	}
	return Data
}

// Equal reports structural equality of the two Pauli strings: same
// width and same X- and Z-masks. Paulis of different width are never
// equal.
func (p Pauli) Equal(q Pauli) bool {
	return p.w == q.w && p.x.Equal(q.x) && p.z.Equal(q.z)
}

// Clone returns an independent copy of p.
func (p Pauli) Clone() Pauli {
	return Pauli{x: p.x.Clone(), z: p.z.Clone(), w: p.w}
}

// XOR returns the componentwise XOR of p and q's X- and Z-masks
// (P_A ⊕ P_B in the conjugation engine's sign bookkeeping).
func XOR(p, q Pauli) (Pauli, error) {
	if p.w != q.w {
		return Pauli{}, fmt.Errorf("%w: %d vs %d", ErrMismatchedWidth, p.w, q.w)
	}
	return Pauli{x: p.x.SymmetricDifference(q.x), z: p.z.SymmetricDifference(q.z), w: p.w}, nil
}

// MustXOR is XOR, panicking on mismatched width.
func MustXOR(p, q Pauli) Pauli {
	r, err := XOR(p, q)
	if err != nil {
		panic(err)
	}
	return r
}

// String renders p as a letter per qubit (qubit 0 first), e.g. "XYZI".
func (p Pauli) String() string {
	var sb strings.Builder
	sb.Grow(int(p.w))
	for i := uint(0); i < p.w; i++ {
		x, z := p.x.Test(i), p.z.Test(i)
		switch {
		case x && z:
			sb.WriteByte('Y')
		case x:
			sb.WriteByte('X')
		case z:
			sb.WriteByte('Z')
		default:
			sb.WriteByte('I')
		}
	}
	return sb.String()
}
