package wire

import (
	"testing"

	"github.com/fxamacker/cbor/v2"
	"github.com/stretchr/testify/require"

	"github.com/latticesurgery/qrw/op"
	"github.com/latticesurgery/qrw/pauli"
)

func TestEncodeDecodeRoundTripsRotationsOnly(t *testing.T) {
	ops := []op.Operation{
		op.NewRotation(op.R(pauli.MustFromLetters("XYZ"), 1)),
		op.NewRotation(op.R(pauli.MustFromLetters("III"), 2)),
		op.NewRotation(op.R(pauli.MustFromLetters("ZZZ"), -1)),
	}
	data, err := Encode(ops)
	require.NoError(t, err)

	got, err := Decode(data)
	require.NoError(t, err)
	require.Len(t, got, len(ops))
	for i := range ops {
		require.True(t, ops[i].IsRotation())
		require.True(t, got[i].IsRotation())
		require.True(t, ops[i].Rot.Equal(got[i].Rot))
	}
}

func TestEncodeDecodeRoundTripsMeasurementWithCrot(t *testing.T) {
	m := op.Measurement{
		P:   pauli.MustFromLetters("XI"),
		Phi: true,
		Pos: 3,
		Crot: []op.Rotation{
			op.R(pauli.MustFromLetters("XI"), 1),
			op.R(pauli.MustFromLetters("IZ"), -2),
		},
	}
	ops := []op.Operation{
		op.NewRotation(op.R(pauli.MustFromLetters("XZ"), 2)),
		op.NewMeasurement(m),
	}

	data, err := Encode(ops)
	require.NoError(t, err)

	got, err := Decode(data)
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.True(t, got[1].IsMeasurement())
	require.True(t, ops[1].Meas.Equal(got[1].Meas))
}

func TestEncodeRejectsEmptySequence(t *testing.T) {
	_, err := Encode(nil)
	require.ErrorIs(t, err, ErrEmptySequence)
}

func TestDecodeRejectsCorruptEnvelope(t *testing.T) {
	_, err := Decode([]byte("not a valid cbor envelope"))
	require.Error(t, err)
}

func TestDecodeRejectsWrongVersion(t *testing.T) {
	env := envelope{Version: formatVersion + 1, Width: 1, Count: 1, PauliCount: 1}
	bad, err := cbor.Marshal(env)
	require.NoError(t, err)
	_, err = Decode(bad)
	require.ErrorIs(t, err, ErrUnsupportedVersion)
}

func TestDecodeRejectsZeroCount(t *testing.T) {
	env := envelope{Version: formatVersion, Width: 1, Count: 0, PauliCount: 0}
	data, err := cbor.Marshal(env)
	require.NoError(t, err)
	_, err = Decode(data)
	require.ErrorIs(t, err, ErrCorruptEnvelope)
}

func TestPropertyRoundTripPreservesOrderAndWidth(t *testing.T) {
	ops := []op.Operation{
		op.NewRotation(op.R(pauli.MustFromLetters("XYZI"), 1)),
		op.NewMeasurement(op.Measurement{P: pauli.MustFromLetters("IIXX"), Phi: false, Pos: 0}),
		op.NewRotation(op.R(pauli.MustFromLetters("ZZZZ"), 0)),
	}
	data, err := Encode(ops)
	require.NoError(t, err)
	got, err := Decode(data)
	require.NoError(t, err)
	require.Len(t, got, len(ops))
	for i := range ops {
		require.Equal(t, ops[i].Width(), got[i].Width())
		require.Equal(t, ops[i].Kind, got[i].Kind)
	}
}
