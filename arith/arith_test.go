package arith

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/robobenklein/gpg-pqcrypt-sub001/bitbuf"
	"github.com/robobenklein/gpg-pqcrypt-sub001/utils/sampling"
)

// step is one symbol of a test stream: either a symbol coded against a
// distribution or a uniform value.
type step struct {
	dist    Distribution
	symbol  int
	uniform bool
	value   uint64
	n       uint64
}

// randDistribution builds a cumulative distribution over [0, max]
// with every symbol getting at least one quantization unit.
func randDistribution(max int, source *sampling.Source) Distribution {
	const one = 1 << PrecProba
	cum := make([]uint64, max+1)
	for l := 1; l <= max; l++ {
		lo := cum[l-1] + 1
		hi := uint64(one - (max + 1 - l))
		cum[l] = lo + source.Uint64()%(hi-lo+1)
	}
	return Distribution{Min: 0, Max: max, Prob: cum}
}

func randSteps(count int, source *sampling.Source) []step {
	steps := make([]step, count)
	for i := range steps {
		if source.Uint32()&1 == 0 {
			max := int(source.Uint32()%12) + 2
			d := randDistribution(max, source)
			steps[i] = step{dist: d, symbol: int(source.Uint32() % uint32(max+1))}
		} else {
			n := uint64(source.Uint32()%65535) + 2
			steps[i] = step{uniform: true, n: n, value: source.Uint64() % n}
		}
	}
	return steps
}

func TestCoder(t *testing.T) {

	source := sampling.NewSource([32]byte{'a', 'r', 'i', 't', 'h'})

	for trial := 0; trial < 50; trial++ {
		t.Run(fmt.Sprintf("RoundTrip/%d", trial), func(t *testing.T) {

			steps := randSteps(200, source)

			// Generously sized stream buffer.
			msg := make([]byte, 1<<12)
			fin := 8 * len(msg)

			w := bitbuf.NewWriter(msg, fin)
			enc := NewEncoder(w)
			written := 0
			for _, s := range steps {
				if s.uniform {
					written += enc.CodeUniform(s.value, s.n)
				} else {
					written += enc.Code(s.symbol, s.dist)
				}
			}
			written += enc.Finish()
			w.Close()

			r := bitbuf.NewReader(msg, fin)
			dec := NewDecoder(r)
			read := 0
			for _, s := range steps {
				if s.uniform {
					v, n := dec.DecodeUniform(s.n)
					read += n
					require.Equal(t, s.value, v)
				} else {
					sym, n := dec.Decode(s.dist)
					read += n
					require.Equal(t, s.symbol, sym)
				}
			}

			// Encoder and decoder settle the same bits, up to the
			// termination bit.
			require.Equal(t, written, read+1)
		})
	}
}

func TestCoderLockstep(t *testing.T) {

	// The lock footprints of both directions must agree at every
	// symbol: the constant-weight codec derives its buffer
	// reservation decision from them.
	source := sampling.NewSource([32]byte{'l', 'o', 'c', 'k'})

	steps := randSteps(100, source)
	msg := make([]byte, 1<<12)
	fin := 8 * len(msg)

	w := bitbuf.NewWriter(msg, fin)
	enc := NewEncoder(w)
	encLocks := make([]int, len(steps))
	for i, s := range steps {
		if s.uniform {
			enc.CodeUniform(s.value, s.n)
		} else {
			enc.Code(s.symbol, s.dist)
		}
		encLocks[i] = w.Unlocked()
	}
	enc.Finish()
	w.Close()

	r := bitbuf.NewReader(msg, fin)
	dec := NewDecoder(r)
	for i, s := range steps {
		if s.uniform {
			dec.DecodeUniform(s.n)
		} else {
			dec.Decode(s.dist)
		}
		require.Equal(t, encLocks[i], r.Unlocked(), "symbol %d", i)
	}
}

func TestDistribution(t *testing.T) {
	source := sampling.NewSource([32]byte{'d'})
	d := randDistribution(10, source)
	require.Equal(t, uint64(0), d.Proba(0))
	for l := 1; l <= 10; l++ {
		require.Greater(t, d.Proba(l), d.Proba(l-1))
	}
	require.Less(t, d.Proba(10), uint64(1<<PrecProba))
}
