package pauli

import "fmt"

// SparseTerm names a single nontrivial qubit in a sparse Pauli
// description: Kind is one of 'X', 'Y', 'Z'.
type SparseTerm struct {
	Qubit int
	Kind  byte
}

// FromSparse builds a width-w Pauli from a list of nontrivial terms,
// mirroring original_source/qarrot-optimizer/src/basis/sbasis.rs's
// sparse representation. It is a convenience constructor only - the
// dense (X,Z) bitmask pair from pauli.go remains the sole runtime
// representation used by the rest of the rewriter.
func FromSparse(w uint, terms []SparseTerm) (Pauli, error) {
	p := New(w)
	for _, t := range terms {
		if t.Qubit < 0 || uint(t.Qubit) >= w {
			return Pauli{}, fmt.Errorf("pauli: sparse term qubit %d out of range [0,%d)", t.Qubit, w)
		}
		i := uint(t.Qubit)
		switch t.Kind {
		case 'X':
			p.x.Set(i)
		case 'Z':
			p.z.Set(i)
		case 'Y':
			p.x.Set(i)
			p.z.Set(i)
		default:
			return Pauli{}, fmt.Errorf("%w: sparse kind %q", ErrUnknownBasisSymbol, t.Kind)
		}
	}
	return p, nil
}

// Sparse returns the nontrivial terms of p in qubit order, the inverse
// of FromSparse.
func (p Pauli) Sparse() []SparseTerm {
	var terms []SparseTerm
	for i := uint(0); i < p.w; i++ {
		x, z := p.x.Test(i), p.z.Test(i)
		switch {
		case x && z:
			terms = append(terms, SparseTerm{int(i), 'Y'})
		case x:
			terms = append(terms, SparseTerm{int(i), 'X'})
		case z:
			terms = append(terms, SparseTerm{int(i), 'Z'})
		}
	}
	return terms
}
