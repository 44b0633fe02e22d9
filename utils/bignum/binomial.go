// Package bignum implements arbitrary-precision combinatorics helpers
// used by the constant-weight-word parameter selection.
package bignum

import (
	"math/big"

	"github.com/ALTree/bigfloat"
)

const prec = 128

// Binomial returns the binomial coefficient C(n, k) as a [big.Int].
// It returns zero for k < 0 or k > n.
func Binomial(n, k int) *big.Int {
	if k < 0 || k > n {
		return new(big.Int)
	}
	return new(big.Int).Binomial(int64(n), int64(k))
}

// Log2 returns the base-2 logarithm of x with 128 bits of precision.
// x must be strictly positive.
func Log2(x *big.Float) *big.Float {
	num := bigfloat.Log(x.SetPrec(prec))
	den := bigfloat.Log(new(big.Float).SetPrec(prec).SetInt64(2))
	return num.Quo(num, den)
}

// Log2Binomial returns log2(C(n, k)) as a float64. This is the
// self-information of a fixed k-subset of an n-set, i.e. the maximum
// number of bits a constant-weight-word codec over C(n, k) words can
// reversibly carry.
func Log2Binomial(n, k int) float64 {
	b := Binomial(n, k)
	if b.Sign() <= 0 {
		return 0
	}
	f, _ := Log2(new(big.Float).SetPrec(prec).SetInt(b)).Float64()
	return f
}

// Log2Int returns log2(x) as a float64 for a strictly positive x.
func Log2Int(x *big.Int) float64 {
	f, _ := Log2(new(big.Float).SetPrec(prec).SetInt(x)).Float64()
	return f
}
