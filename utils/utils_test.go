package utils

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestUtils(t *testing.T) {

	t.Run("BitsToBytes", func(t *testing.T) {
		require.Equal(t, 0, BitsToBytes(0))
		require.Equal(t, 1, BitsToBytes(1))
		require.Equal(t, 1, BitsToBytes(8))
		require.Equal(t, 2, BitsToBytes(9))
	})

	t.Run("BitsToWords", func(t *testing.T) {
		require.Equal(t, 1, BitsToWords(64))
		require.Equal(t, 2, BitsToWords(65))
		require.Equal(t, 6, BitsToWords(352))
	})

	t.Run("Bits", func(t *testing.T) {
		b := []byte{0b00000101, 0b10000000}
		require.Equal(t, 1, GetBit(b, 0))
		require.Equal(t, 0, GetBit(b, 1))
		require.Equal(t, 1, GetBit(b, 15))
		require.Equal(t, 3, HammingWeight(b, 16))
		require.Equal(t, 2, HammingWeight(b, 8))
		FlipBit(b, 1)
		require.Equal(t, 1, GetBit(b, 1))
	})

	t.Run("AllDistinct", func(t *testing.T) {
		require.True(t, AllDistinct([]int{1, 2, 3}))
		require.False(t, AllDistinct([]int{1, 2, 1}))
		require.True(t, AllDistinct([]uint16{}))
	})
}
