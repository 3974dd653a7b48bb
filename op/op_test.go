package op

import (
	"testing"

	"github.com/latticesurgery/qrw/pauli"
	"github.com/stretchr/testify/require"
)

func TestRotationEqualityIdentityIgnoresAngle(t *testing.T) {
	id := pauli.New(3)
	r1 := R(id, 2)
	r2 := R(id, -1)
	require.True(t, r1.Equal(r2))
}

func TestRotationEqualityRequiresSameAngleAndBasis(t *testing.T) {
	p := pauli.MustFromLetters("XYZ")
	require.True(t, R(p, 1).Equal(R(p, 1)))
	require.False(t, R(p, 1).Equal(R(p, -1)))
	require.False(t, R(p, 1).Equal(R(pauli.MustFromLetters("XYI"), 1)))
}

func TestRConstructorRejectsIllegalAngle(t *testing.T) {
	p := pauli.MustFromLetters("X")
	require.Panics(t, func() { R(p, 3) })
	require.Panics(t, func() { R(p, -4) })
}

func TestIsTIsClassifiedByMagnitudeAndNonIdentity(t *testing.T) {
	p := pauli.MustFromLetters("XYZ")
	id := pauli.New(3)
	require.True(t, R(p, 1).IsT())
	require.True(t, R(p, -1).IsT())
	require.False(t, R(id, 1).IsT(), "a T-gate requires a non-identity basis")
	require.False(t, R(p, 2).IsT())
	require.True(t, R(p, 2).IsClifford())
	require.True(t, R(p, 0).IsPauliGate())
}

func TestConjugationKind(t *testing.T) {
	p := pauli.MustFromLetters("X")
	require.Equal(t, AnglePauli, R(p, 0).ConjugationKind())
	require.Equal(t, AngleClifford, R(p, 2).ConjugationKind())
	require.Equal(t, AngleClifford, R(p, -2).ConjugationKind())
	require.Equal(t, AngleT, R(p, 1).ConjugationKind())
	require.Equal(t, AngleInvalid, R(pauli.New(1), 1).ConjugationKind())
}

func TestMeasurementEqualityIdentityIgnoresPhi(t *testing.T) {
	id := pauli.New(2)
	m1 := Measurement{P: id, Phi: true, Pos: 0}
	m2 := Measurement{P: id, Phi: false, Pos: 0}
	require.True(t, m1.Equal(m2))
}

func TestMeasurementEqualityComparesCrotAndPos(t *testing.T) {
	p := pauli.MustFromLetters("XI")
	m1 := Measurement{P: p, Phi: true, Pos: 0, Crot: []Rotation{R(pauli.MustFromLetters("XI"), 1)}}
	m2 := Measurement{P: p, Phi: true, Pos: 0, Crot: []Rotation{R(pauli.MustFromLetters("XI"), 1)}}
	m3 := Measurement{P: p, Phi: true, Pos: 1, Crot: m1.Crot}
	m4 := Measurement{P: p, Phi: true, Pos: 0, Crot: []Rotation{R(pauli.MustFromLetters("XI"), -1)}}
	require.True(t, m1.Equal(m2))
	require.False(t, m1.Equal(m3), "Pos participates in identity")
	require.False(t, m1.Equal(m4), "Crot participates in identity")
}

func TestOperationTaggedDispatch(t *testing.T) {
	r := NewRotation(R(pauli.MustFromLetters("X"), 1))
	m := NewMeasurement(Measurement{P: pauli.MustFromLetters("Z")})
	require.True(t, r.IsRotation())
	require.False(t, r.IsMeasurement())
	require.True(t, m.IsMeasurement())
	require.False(t, m.IsRotation())
}

func TestOperationWidth(t *testing.T) {
	r := NewRotation(R(pauli.MustFromLetters("XYZ"), 1))
	m := NewMeasurement(Measurement{P: pauli.MustFromLetters("XYZ")})
	require.Equal(t, uint(3), r.Width())
	require.Equal(t, uint(3), m.Width())
}

func TestCloneIsIndependent(t *testing.T) {
	m := Measurement{P: pauli.MustFromLetters("XI"), Crot: []Rotation{R(pauli.MustFromLetters("XI"), 1)}}
	c := m.Clone()
	c.Crot[0].A = -1
	require.Equal(t, 1, m.Crot[0].A, "mutating the clone must not affect the original")
}
