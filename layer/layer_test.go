package layer

import (
	"testing"

	"github.com/latticesurgery/qrw/op"
	"github.com/latticesurgery/qrw/pauli"
	"github.com/stretchr/testify/require"
)

func rot(basis string, a int) op.Rotation {
	return op.R(pauli.MustFromLetters(basis), a)
}

func rotOp(basis string, a int) op.Operation {
	return op.NewRotation(rot(basis, a))
}

func measOp(basis string) op.Operation {
	return op.NewMeasurement(op.Measurement{P: pauli.MustFromLetters(basis), Phi: true})
}

func countRotations(layers [][]op.Rotation) int {
	n := 0
	for _, l := range layers {
		n += len(l)
	}
	return n
}

func TestBuildGroupsAllMutuallyCommutingRotationsIntoOneLayer(t *testing.T) {
	ops := []op.Operation{rotOp("ZI", 1), rotOp("IZ", 1), rotOp("ZI", 2)}
	layers, rest := Build(ops)
	require.Empty(t, rest)
	require.Equal(t, 3, countRotations(layers))
	require.Len(t, layers, 1, "ZI, IZ, ZI all mutually commute (disjoint or identical support)")
}

func TestBuildSeparatesAnticommutingRotationsIntoDistinctLayers(t *testing.T) {
	ops := []op.Operation{rotOp("X", 1), rotOp("Z", 1)}
	layers, rest := Build(ops)
	require.Empty(t, rest)
	require.Len(t, layers, 2)
}

func TestBuildStopsAtMeasurement(t *testing.T) {
	ops := []op.Operation{rotOp("ZI", 1), rotOp("IZ", 1), measOp("XI"), rotOp("ZI", 2)}
	layers, rest := Build(ops)
	require.Equal(t, 2, countRotations(layers))
	require.Len(t, rest, 2)
	require.True(t, rest[0].IsMeasurement())
}

// Property 8 (spec §8): after C7 converges, every pair of rotations
// within the same layer commutes.
func TestPropertyLayerMutualCommutation(t *testing.T) {
	ops := []op.Operation{
		rotOp("XYZ", 1), rotOp("XYZ", -1), rotOp("XIY", 2),
		rotOp("ZZZ", 1), rotOp("XXX", -2), rotOp("IIY", 1),
	}
	layers, _ := Build(ops)
	for _, l := range layers {
		for i := range l {
			for j := range l {
				if i == j {
					continue
				}
				require.True(t, pauli.MustCommutes(l[i].P, l[j].P), "layer element %d,%d must commute", i, j)
			}
		}
	}
}

func TestFlattenPreservesLayerOrderAndContents(t *testing.T) {
	layers := [][]op.Rotation{
		{rot("X", 1), rot("Z", 1)},
		{rot("Y", 2)},
	}
	flat := Flatten(layers)
	require.Equal(t, []op.Rotation{rot("X", 1), rot("Z", 1), rot("Y", 2)}, flat)
}

func TestBuildIsDeterministicGivenSameInputOrder(t *testing.T) {
	ops := []op.Operation{rotOp("X", 1), rotOp("Y", 1), rotOp("Z", -1), rotOp("X", 2)}
	l1, _ := Build(append([]op.Operation(nil), ops...))
	l2, _ := Build(append([]op.Operation(nil), ops...))
	require.Equal(t, l1, l2)
}

func TestBuildEmptyInput(t *testing.T) {
	layers, rest := Build(nil)
	require.Empty(t, layers)
	require.Empty(t, rest)
}

func TestBuildAllMeasurementsProducesNoLayers(t *testing.T) {
	ops := []op.Operation{measOp("XI"), measOp("IX")}
	layers, rest := Build(ops)
	require.Empty(t, layers)
	require.Len(t, rest, 2)
}
