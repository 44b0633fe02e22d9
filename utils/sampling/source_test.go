package sampling

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSource(t *testing.T) {

	seed := [32]byte{'s', 'e', 'e', 'd'}

	t.Run("Deterministic", func(t *testing.T) {
		a := NewSource(seed)
		b := NewSource(seed)
		for i := 0; i < 100; i++ {
			require.Equal(t, a.Uint64(), b.Uint64())
		}
		bufA := make([]byte, 257)
		bufB := make([]byte, 257)
		_, err := a.Read(bufA)
		require.NoError(t, err)
		_, err = b.Read(bufB)
		require.NoError(t, err)
		require.Equal(t, bufA, bufB)
	})

	t.Run("Reset", func(t *testing.T) {
		a := NewSource(seed)
		x := a.Uint64()
		a.Uint64()
		a.Reset()
		require.Equal(t, x, a.Uint64())
	})

	t.Run("Child", func(t *testing.T) {
		a := NewSource(seed)
		b := NewSource(seed)
		ca := a.NewSource()
		cb := b.NewSource()
		require.Equal(t, ca.Uint64(), cb.Uint64())
		// The child stream differs from the parent stream.
		a.Reset()
		ca.Reset()
		require.NotEqual(t, a.Uint64(), ca.Uint64())
	})

	t.Run("DistinctSeeds", func(t *testing.T) {
		a := NewSource([32]byte{1})
		b := NewSource([32]byte{2})
		require.NotEqual(t, a.Uint64(), b.Uint64())
	})

	t.Run("FreshSeeds", func(t *testing.T) {
		require.NotEqual(t, NewSeed(), NewSeed())
	})
}
