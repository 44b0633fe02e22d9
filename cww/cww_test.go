package cww

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/robobenklein/gpg-pqcrypt-sub001/arith"
	"github.com/robobenklein/gpg-pqcrypt-sub001/utils/bignum"
	"github.com/robobenklein/gpg-pqcrypt-sub001/utils/buffer"
	"github.com/robobenklein/gpg-pqcrypt-sub001/utils/sampling"
)

func testString(p *Precomp, op string) string {
	return fmt.Sprintf("m=%d/t=%d/reduc=%d/%s", p.RealM(), p.RealT(), p.ReduceBits(), op)
}

func TestPrecomp(t *testing.T) {

	t.Run("InvalidParameters", func(t *testing.T) {
		_, err := Build(17, 2, 0)
		require.ErrorIs(t, err, ErrInvalidParameters)
		_, err = Build(11, 0, 0)
		require.ErrorIs(t, err, ErrInvalidParameters)
		_, err = Build(5, 20, 1) // complement with reduction
		require.ErrorIs(t, err, ErrInvalidParameters)
		_, err = Build(11, 32, 8) // no room for distinct positions
		require.ErrorIs(t, err, ErrInvalidParameters)
	})

	p, err := Build(11, 32, 0)
	require.NoError(t, err)

	t.Run(testString(p, "Distributions"), func(t *testing.T) {
		const one = 1 << arith.PrecProba
		for s := 1; s <= p.M(); s++ {
			for i := 2; i <= min(p.T(), 1<<(s-1)); i++ {
				if IsLeaf(s, i) {
					continue
				}
				d := p.Distribution(s, i)
				require.Equal(t, 0, d.Min)
				require.Equal(t, i, d.Max)
				require.Len(t, d.Prob, i+1)
				require.Equal(t, uint64(0), d.Prob[0])
				for l := 1; l <= i; l++ {
					require.Greater(t, d.Prob[l], d.Prob[l-1])
				}
				require.Less(t, d.Prob[i], uint64(one))
			}
		}
	})

	t.Run(testString(p, "Leaves"), func(t *testing.T) {
		for s := 1; s <= p.M(); s++ {
			for i := 1; i <= min(p.T(), 1<<(s-1)); i++ {
				if !IsLeaf(s, i) {
					continue
				}
				li := p.Leaf(s, i)
				require.Equal(t, bignum.Binomial(1<<s, i).Uint64(), li.Count)

				// Count factors exactly as 2^DeadBits times the
				// uniform symbol ranges.
				prod := uint64(1) << li.DeadBits
				for _, f := range li.Factors {
					require.LessOrEqual(t, f, uint64(maxUniform))
					prod *= f
				}
				require.Equal(t, li.Count, prod)
			}
		}
	})

	t.Run(testString(p, "ErrorSizeBound"), func(t *testing.T) {
		// The usable length never exceeds the self-information bound.
		require.Positive(t, p.ErrorSize())
		require.LessOrEqual(t, float64(p.ErrorSize()), SelfInfoBound(p.RealM(), p.RealT()))
		require.InDelta(t, bignum.Log2Binomial(1<<p.RealM(), p.RealT()), SelfInfoBound(p.RealM(), p.RealT()), 1e-12)
	})

	t.Run(testString(p, "Serialization"), func(t *testing.T) {
		buffer.RequireSerializerCorrect(t, p)
	})

	t.Run("Search", func(t *testing.T) {
		q, err := Search(11, 32)
		require.NoError(t, err)
		require.Positive(t, q.ErrorSize())

		// A small weight leaves room for reduction.
		q, err = Search(11, 4)
		require.NoError(t, err)
		require.Positive(t, q.ErrorSize())
	})
}

// roundTrip checks CW2B(B2CW(msg)) = msg on the bit window
// [start, start+length) and returns the word.
func roundTrip(t *testing.T, c *Codec, msg []byte, start int) []int {
	t.Helper()

	p := c.Precomp()
	length := p.ErrorSize()
	m, tt := p.RealM(), p.RealT()

	cw := make([]int, tt)
	n, err := c.B2CW(msg, cw, start, length, m, tt)
	require.NoError(t, err)
	require.GreaterOrEqual(t, n, length)

	// The word has exactly t strictly increasing in-range positions.
	for j := 0; j < tt; j++ {
		require.GreaterOrEqual(t, cw[j], 0)
		require.Less(t, cw[j], 1<<m)
		if j > 0 {
			require.Greater(t, cw[j], cw[j-1])
		}
	}

	out := make([]byte, len(msg))
	copy(out, msg) // bits before the window must survive
	n, err = c.CW2B(cw, out, start, length, m, tt)
	require.NoError(t, err)
	require.GreaterOrEqual(t, n, length)

	for b := start; b < start+length; b++ {
		require.Equal(t, (msg[b/8]>>(b%8))&1, (out[b/8]>>(b%8))&1, "bit %d", b)
	}
	for b := 0; b < start; b++ {
		require.Equal(t, (msg[b/8]>>(b%8))&1, (out[b/8]>>(b%8))&1, "prefix bit %d", b)
	}

	return cw
}

func TestCodec(t *testing.T) {

	source := sampling.NewSource([32]byte{'c', 'w', 'w'})

	t.Run("InconsistentPrecomp", func(t *testing.T) {
		p, err := Build(11, 32, 0)
		require.NoError(t, err)
		c := NewCodec(p)
		msg := make([]byte, 64)
		cw := make([]int, 32)
		_, err = c.B2CW(msg, cw, 0, 10, 10, 32)
		require.ErrorIs(t, err, ErrInconsistentPrecomp)
		_, err = c.CW2B(cw, msg, 0, 10, 11, 31)
		require.ErrorIs(t, err, ErrInconsistentPrecomp)
	})

	t.Run("InvalidWord", func(t *testing.T) {
		p, err := Build(11, 32, 0)
		require.NoError(t, err)
		c := NewCodec(p)
		msg := make([]byte, 64)
		cw := make([]int, 32)
		for j := range cw {
			cw[j] = 5 // repeated positions
		}
		_, err = c.CW2B(cw, msg, 0, p.ErrorSize(), 11, 32)
		require.ErrorIs(t, err, ErrInvalidWord)
	})

	for _, tc := range []struct{ m, t, reduc int }{
		{11, 32, 0},
		{10, 50, 0},
		{5, 20, 0}, // complement: 2t > 2^m
		{11, 4, 3}, // reduction
		{8, 10, 0},
	} {
		p, err := Build(tc.m, tc.t, tc.reduc)
		require.NoError(t, err)
		c := NewCodec(p)

		t.Run(testString(p, "RoundTripAligned"), func(t *testing.T) {
			msg := make([]byte, (p.ErrorSize()+7)/8)
			for k := 0; k < 200; k++ {
				if _, err := source.Read(msg); err != nil {
					t.Fatal(err)
				}
				roundTrip(t, c, msg, 0)
			}
		})

		t.Run(testString(p, "RoundTripUnaligned"), func(t *testing.T) {
			for _, start := range []int{1, 5, 8, 13} {
				msg := make([]byte, (start+p.ErrorSize()+7)/8)
				for k := 0; k < 50; k++ {
					if _, err := source.Read(msg); err != nil {
						t.Fatal(err)
					}
					roundTrip(t, c, msg, start)
				}
			}
		})
	}

	t.Run("Exhaustive/m=5/t=2", func(t *testing.T) {
		p, err := Build(5, 2, 0)
		require.NoError(t, err)
		c := NewCodec(p)
		require.Less(t, p.ErrorSize(), 10)

		words := make(map[[2]int]bool)
		msg := make([]byte, 2)
		for v := 0; v < 1<<p.ErrorSize(); v++ {
			msg[0] = byte(v)
			msg[1] = byte(v >> 8)
			cw := roundTrip(t, c, msg, 0)
			// Injectivity over the full input space.
			key := [2]int{cw[0], cw[1]}
			require.False(t, words[key], "value %d collides", v)
			words[key] = true
		}
		require.Len(t, words, 1<<p.ErrorSize())
	})

	t.Run("Fuzz/m=11/t=32", func(t *testing.T) {
		iters := 10000
		if testing.Short() {
			iters = 500
		}
		p, err := Search(11, 32)
		require.NoError(t, err)
		c := NewCodec(p)
		msg := make([]byte, (p.ErrorSize()+7)/8)
		for k := 0; k < iters; k++ {
			if _, err := source.Read(msg); err != nil {
				t.Fatal(err)
			}
			roundTrip(t, c, msg, 0)
		}
	})
}
