package mat

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/robobenklein/gpg-pqcrypt-sub001/utils/sampling"
)

func randMatrix(rows, cols int, source *sampling.Source) *Matrix {
	m := New(rows, cols)
	for i := range m.Data {
		m.Data[i] = source.Uint64()
	}
	// Clear the slack bits beyond cols in each row.
	if r := cols % WordBits; r != 0 {
		for i := 0; i < rows; i++ {
			row := m.Row(i)
			row[len(row)-1] &= 1<<r - 1
		}
	}
	return m
}

func TestMatrix(t *testing.T) {

	source := sampling.NewSource([32]byte{'m', 'a', 't'})

	t.Run("Accessors", func(t *testing.T) {
		m := New(3, 130)
		m.SetBit(2, 129)
		require.Equal(t, uint64(1), m.Bit(2, 129))
		m.FlipBit(2, 129)
		require.Equal(t, uint64(0), m.Bit(2, 129))
		m.SetBit(0, 5)
		m.RowXor(2, 0)
		require.Equal(t, uint64(1), m.Bit(2, 5))
	})

	t.Run("Echelonize", func(t *testing.T) {
		const rows, cols = 33, 128
		m := randMatrix(rows, cols, source)
		perm, err := m.Echelonize()
		require.NoError(t, err)
		require.Len(t, perm, cols)

		// perm is a permutation of the columns.
		seen := make([]bool, cols)
		for _, p := range perm {
			require.False(t, seen[p])
			seen[p] = true
		}

		// The last rows columns, read through perm, carry the identity.
		for i := 0; i < rows; i++ {
			for j := 0; j < rows; j++ {
				want := uint64(0)
				if i == j {
					want = 1
				}
				require.Equal(t, want, m.Bit(i, perm[cols-rows+j]))
			}
		}
	})

	t.Run("EchelonizePreservesRowSpace", func(t *testing.T) {
		const rows, cols = 9, 40
		m := randMatrix(rows, cols, source)
		orig := New(rows, cols)
		copy(orig.Data, m.Data)

		_, err := m.Echelonize()
		require.NoError(t, err)

		// Row operations only: every vector in the kernel of the
		// original is in the kernel of the reduced matrix.
		for k := 0; k < 50; k++ {
			x := make([]byte, (cols+7)/8)
			if _, err := source.Read(x); err != nil {
				t.Fatal(err)
			}
			inOrig, inRed := true, true
			for i := 0; i < rows; i++ {
				var a, b uint64
				for j := 0; j < cols; j++ {
					bit := uint64(x[j/8]>>(j%8)) & 1
					a ^= bit & orig.Bit(i, j)
					b ^= bit & m.Bit(i, j)
				}
				inOrig = inOrig && a == 0
				inRed = inRed && b == 0
			}
			require.Equal(t, inOrig, inRed)
		}
	})

	t.Run("Singular", func(t *testing.T) {
		m := New(4, 16)
		_, err := m.Echelonize()
		require.ErrorIs(t, err, ErrSingular)

		// Two identical rows cannot both get a pivot.
		m = New(2, 4)
		m.SetBit(0, 0)
		m.SetBit(0, 1)
		m.SetBit(0, 2)
		m.SetBit(0, 3)
		m.SetBit(1, 0)
		m.SetBit(1, 1)
		m.SetBit(1, 2)
		m.SetBit(1, 3)
		_, err = m.Echelonize()
		require.ErrorIs(t, err, ErrSingular)
	})

	t.Run("MulVec", func(t *testing.T) {
		const rows, cols = 16, 70
		m := randMatrix(rows, cols, source)
		x := make([]byte, (rows+7)/8)
		y := make([]byte, (rows+7)/8)
		if _, err := source.Read(x); err != nil {
			t.Fatal(err)
		}
		if _, err := source.Read(y); err != nil {
			t.Fatal(err)
		}
		xy := make([]byte, len(x))
		for i := range x {
			xy[i] = x[i] ^ y[i]
		}

		ax := make([]uint64, m.WordsPerRow)
		ay := make([]uint64, m.WordsPerRow)
		axy := make([]uint64, m.WordsPerRow)
		m.MulVec(ax, x)
		m.MulVec(ay, y)
		m.MulVec(axy, xy)
		for i := range axy {
			require.Equal(t, axy[i], ax[i]^ay[i])
		}
	})
}
