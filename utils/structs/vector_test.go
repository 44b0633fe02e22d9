package structs

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestVector(t *testing.T) {

	t.Run("Uint16", func(t *testing.T) {
		v := Vector[uint16]{1, 2, 3, 65535}
		data, err := v.MarshalBinary()
		require.NoError(t, err)
		require.Equal(t, v.BinarySize(), len(data))

		var w Vector[uint16]
		require.NoError(t, w.UnmarshalBinary(data))
		require.True(t, v.Equal(w))
	})

	t.Run("Uint64", func(t *testing.T) {
		v := Vector[uint64]{0, 1 << 63, 42}
		data, err := v.MarshalBinary()
		require.NoError(t, err)

		var w Vector[uint64]
		require.NoError(t, w.UnmarshalBinary(data))
		require.True(t, v.Equal(w))
		require.False(t, v.Equal(w[:2]))
	})

	t.Run("Clone", func(t *testing.T) {
		v := Vector[uint8]{1, 2, 3}
		w := v.Clone()
		w[0] = 9
		require.Equal(t, uint8(1), v[0])
	})

	t.Run("Empty", func(t *testing.T) {
		var v Vector[uint32]
		data, err := v.MarshalBinary()
		require.NoError(t, err)
		var w Vector[uint32]
		require.NoError(t, w.UnmarshalBinary(data))
		require.True(t, v.Equal(w))
	})
}
