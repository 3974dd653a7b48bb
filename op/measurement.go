package op

import (
	"fmt"

	"github.com/latticesurgery/qrw/pauli"
)

// Measurement is a projective measurement of the Pauli observable
// Phi*P, optionally followed by the rotations in Crot if the outcome is
// true. Pos is a stable output index preserved only to let callers
// recover the original ordering after the rewriter reorders operations;
// the rewriter itself never reads it.
type Measurement struct {
	P    pauli.Pauli
	Phi  bool
	Crot []Rotation
	Pos  int
}

// Equal implements invariant 2 of the data model: a Measurement's
// identity is (P,Phi,Crot,Pos), except that two all-identity-P
// measurements compare equal regardless of Phi.
func (m Measurement) Equal(o Measurement) bool {
	if m.Pos != o.Pos {
		return false
	}
	if len(m.Crot) != len(o.Crot) {
		return false
	}
	for i := range m.Crot {
		if !m.Crot[i].Equal(o.Crot[i]) {
			return false
		}
	}
	if m.P.IsIdentity() && o.P.IsIdentity() {
		return true
	}
	return m.Phi == o.Phi && m.P.Equal(o.P)
}

// Clone returns an independent copy of m, including its own copy of
// Crot.
func (m Measurement) Clone() Measurement {
	crot := make([]Rotation, len(m.Crot))
	for i, r := range m.Crot {
		crot[i] = r.Clone()
	}
	return Measurement{P: m.P.Clone(), Phi: m.Phi, Crot: crot, Pos: m.Pos}
}

func (m Measurement) String() string {
	sign := '+'
	if !m.Phi {
		sign = '-'
	}
	return fmt.Sprintf("M(%c,%s)", sign, m.P)
}
