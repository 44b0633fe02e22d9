// Package mat implements dense binary matrices with rows bit-packed
// in 64-bit words, and the row reduction used to put a parity-check
// matrix in systematic form.
package mat

import (
	"errors"

	"github.com/robobenklein/gpg-pqcrypt-sub001/utils"
)

// WordBits is the number of bits per packing word.
const WordBits = 64

// ErrSingular is returned by [Matrix.Echelonize] when the matrix does
// not have full row rank.
var ErrSingular = errors.New("singular matrix")

// Matrix is a binary matrix. Bit j of row i lives at word
// Data[i*WordsPerRow + j/64], bit j%64 (LSB-first within a word).
type Matrix struct {
	Rows, Cols  int
	WordsPerRow int
	Data        []uint64
}

// New allocates a zero rows x cols matrix.
func New(rows, cols int) *Matrix {
	wpr := utils.BitsToWords(cols)
	return &Matrix{
		Rows:        rows,
		Cols:        cols,
		WordsPerRow: wpr,
		Data:        make([]uint64, rows*wpr),
	}
}

// Bit returns entry (i, j).
func (m *Matrix) Bit(i, j int) uint64 {
	return (m.Data[i*m.WordsPerRow+j/WordBits] >> (j % WordBits)) & 1
}

// SetBit sets entry (i, j) to one.
func (m *Matrix) SetBit(i, j int) {
	m.Data[i*m.WordsPerRow+j/WordBits] |= 1 << (j % WordBits)
}

// FlipBit flips entry (i, j).
func (m *Matrix) FlipBit(i, j int) {
	m.Data[i*m.WordsPerRow+j/WordBits] ^= 1 << (j % WordBits)
}

// Row returns the packed words of row i. The slice aliases the matrix.
func (m *Matrix) Row(i int) []uint64 {
	return m.Data[i*m.WordsPerRow : (i+1)*m.WordsPerRow]
}

// RowXor adds (xors) row b into row a.
func (m *Matrix) RowXor(a, b int) {
	ra := m.Row(a)
	rb := m.Row(b)
	for i := range ra {
		ra[i] ^= rb[i]
	}
}

// Echelonize reduces the matrix to systematic form in place, scanning
// pivot columns from the rightmost to the left. It returns the column
// permutation perm, of length Cols, such that the last Rows columns
// (perm[Cols-Rows:]) carry the identity. Columns without a pivot are
// recorded from position Cols-Rows-1 downwards.
//
// ErrSingular is returned when fewer than Rows pivots exist.
func (m *Matrix) Echelonize() ([]int, error) {

	perm := make([]int, m.Cols)
	for i := range perm {
		perm[i] = i
	}

	failcnt := 0
	max := m.Cols - 1

	for i := 0; i < m.Rows; i, max = i+1, max-1 {

		found := false
		for j := i; j < m.Rows; j++ {
			if m.Bit(j, max) != 0 {
				if i != j {
					m.RowXor(i, j)
				}
				found = true
				break
			}
		}

		if !found {
			// More failed columns than free slots means the rank can
			// no longer reach Rows.
			if m.Cols-m.Rows-1-failcnt < 0 {
				return nil, ErrSingular
			}
			perm[m.Cols-m.Rows-1-failcnt] = max
			failcnt++
			if max == 0 {
				return nil, ErrSingular
			}
			i--
			continue
		}

		perm[i+m.Cols-m.Rows] = max
		for j := i + 1; j < m.Rows; j++ {
			if m.Bit(j, max) != 0 {
				m.RowXor(j, i)
			}
		}
		for j := i - 1; j >= 0; j-- {
			if m.Bit(j, max) != 0 {
				m.RowXor(j, i)
			}
		}
	}

	return perm, nil
}

// MulVec computes out = x * M for a bit vector x of length Rows packed
// LSB-first in bytes: the rows of M whose bit is set in x are xored
// together. out must hold WordsPerRow words.
func (m *Matrix) MulVec(out []uint64, x []byte) {
	for i := range out {
		out[i] = 0
	}
	for i := 0; i < m.Rows; i++ {
		if (x[i/8]>>(i%8))&1 != 0 {
			row := m.Row(i)
			for j := range out {
				out[j] ^= row[j]
			}
		}
	}
}
