package bignum

import (
	"math"
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBinomial(t *testing.T) {

	t.Run("Values", func(t *testing.T) {
		require.Equal(t, int64(1), Binomial(10, 0).Int64())
		require.Equal(t, int64(252), Binomial(10, 5).Int64())
		require.Equal(t, int64(0), Binomial(5, 6).Int64())
		require.Equal(t, int64(0), Binomial(5, -1).Int64())

		// Pascal's rule on a large instance.
		a := Binomial(2048, 32)
		b := new(big.Int).Add(Binomial(2047, 31), Binomial(2047, 32))
		require.Equal(t, 0, a.Cmp(b))
	})

	t.Run("Log2", func(t *testing.T) {
		require.InDelta(t, math.Log2(252), Log2Binomial(10, 5), 1e-9)
		require.InDelta(t, 10, Log2Int(big.NewInt(1024)), 1e-9)

		// log2 C(2n, n) ~ 2n - log2(sqrt(pi n)) for large n.
		n := 512
		approx := float64(2*n) - 0.5*math.Log2(math.Pi*float64(n))
		require.InDelta(t, approx, Log2Binomial(2*n, n), 0.01)
	})
}
