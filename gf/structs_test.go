package gf

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/robobenklein/gpg-pqcrypt-sub001/utils/buffer"
	"github.com/robobenklein/gpg-pqcrypt-sub001/utils/sampling"
)

func TestPolySerialization(t *testing.T) {

	f, err := NewField(11)
	require.NoError(t, err)

	source := sampling.NewSource([32]byte{'s', 'e', 'r'})

	t.Run("RoundTrip", func(t *testing.T) {
		p := randPoly(f, 31, source)
		buffer.RequireSerializerCorrect(t, p)
	})

	t.Run("ZeroPolynomial", func(t *testing.T) {
		buffer.RequireSerializerCorrect(t, NewPoly(7))
	})

	t.Run("CapacitySurvives", func(t *testing.T) {
		p := NewPoly(15)
		p.SetCoeff(3, 42)
		p.UpdateDegree()
		data, err := p.MarshalBinary()
		require.NoError(t, err)
		q := new(Poly)
		require.NoError(t, q.UnmarshalBinary(data))
		require.Equal(t, p.Size(), q.Size())
		require.Equal(t, p.Degree(), q.Degree())
		require.True(t, p.Equal(q))
	})
}
