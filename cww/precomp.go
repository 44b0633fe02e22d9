// Package cww implements the constant-weight-word codec: a bijection
// between bit strings and words of length 2^m with exactly t ones,
// built from an arithmetic coder over a tree of precomputed
// binomial-split distributions with leaf-encoded combinatorial
// indices.
package cww

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math"
	"math/big"
	"math/bits"

	"github.com/robobenklein/gpg-pqcrypt-sub001/arith"
	"github.com/robobenklein/gpg-pqcrypt-sub001/utils/bignum"
	"github.com/robobenklein/gpg-pqcrypt-sub001/utils/buffer"
)

var (
	// ErrInvalidParameters is returned when (m, t, reduc) cannot
	// support a codec.
	ErrInvalidParameters = errors.New("invalid constant-weight parameters")

	// ErrInconsistentPrecomp is returned when a codec is driven with
	// parameters other than the ones its precomputation was built for.
	ErrInconsistentPrecomp = errors.New("inconsistent precomputation")

	// ErrShortBuffer is returned when a mapping settles fewer bits
	// than requested.
	ErrShortBuffer = errors.New("short bit buffer")

	// ErrInvalidWord is returned by CW2B when the word is outside the
	// domain of the codec (wrong weight, repeated or out-of-range
	// positions, or positions colliding at the reduced granularity).
	ErrInvalidWord = errors.New("word outside the codec domain")
)

// maxUniform bounds the range of a single uniform symbol fed to the
// arithmetic coder. It must stay well below 2^(PrecInter-2) so that
// every value keeps a nonempty subinterval.
const maxUniform = 1 << 16

// deltaMin is the guaranteed lower bound (exclusive) on the coder
// interval width before each symbol.
const deltaMin = float64(1 << (arith.PrecInter - 2))

// LeafInfo is the precomputation of a leaf (s, i) of the split tree:
// the subset count C(2^s, i), the power-of-two part of it reserved as
// raw tail bits, and the factorization of the odd cofactor into
// uniform symbols.
type LeafInfo struct {
	Count    uint64
	DeadBits int
	Factors  []uint64
}

// IsLeaf reports whether the subproblem of i errors in a window of
// size 2^s is handled by direct combinatorial indexing rather than by
// a recursive split. The thresholds are part of the wire format: both
// directions must agree on them bit for bit.
func IsLeaf(s, i int) bool {
	switch {
	case s < 6:
		return i <= 32
	case s > 16:
		return i <= 1
	case s > 11:
		return i <= 2
	default:
		return leafTable[s-6] >= i
	}
}

var leafTable = [6]int{7, 5, 4, 4, 3, 3}

// Precomp is the per-(m, t, reduc) precomputation of the codec: the
// split distributions of the internal tree nodes, the leaf budgets,
// and the guaranteed bit length. The tree operates at the reduced
// parameters (M, T); RealM and RealT are the advertised word
// parameters, bridged by ReduceBits uniform bits per error position
// and, when 2t > 2^m, by complementing the word.
type Precomp struct {
	m, t         int
	realM, realT int
	reduc        int
	errorSize    int
	lowerBound   float64

	dist [][]arith.Distribution
	leaf [][]LeafInfo
}

// M returns the reduced extension degree the tree operates at.
func (p *Precomp) M() int { return p.m }

// T returns the reduced weight the tree operates at.
func (p *Precomp) T() int { return p.t }

// RealM returns the extension degree of the words of the codec.
func (p *Precomp) RealM() int { return p.realM }

// RealT returns the weight of the words of the codec.
func (p *Precomp) RealT() int { return p.realT }

// ReduceBits returns the number of uniform bits carried per error
// position, RealM - M.
func (p *Precomp) ReduceBits() int { return p.realM - p.m }

// ErrorSize returns the number of bits the codec is guaranteed to
// settle for every weight-RealT word: the usable bit length of the
// mapping.
func (p *Precomp) ErrorSize() int { return p.errorSize }

// LowerBound returns the un-floored worst-case bit bound ErrorSize
// was derived from.
func (p *Precomp) LowerBound() float64 { return p.lowerBound }

// Distribution returns the split distribution of the internal node
// (s, i).
func (p *Precomp) Distribution(s, i int) arith.Distribution {
	return p.dist[s][i]
}

// Leaf returns the leaf precomputation of the node (s, i).
func (p *Precomp) Leaf(s, i int) LeafInfo {
	return p.leaf[s][i]
}

// Build constructs the precomputation for words of length 2^m and
// weight t, with the tree operating at extension degree m - reduc.
//
// reduc must be 0 when 2t > 2^m (the codec then works on the
// complement set), and small enough that t distinct positions exist at
// the reduced granularity.
func Build(m, t, reduc int) (*Precomp, error) {

	if m < 2 || m > 16 || t < 1 || t >= 1<<m {
		return nil, fmt.Errorf("%w: m=%d t=%d", ErrInvalidParameters, m, t)
	}
	if reduc < 0 || reduc >= m {
		return nil, fmt.Errorf("%w: reduc=%d", ErrInvalidParameters, reduc)
	}

	p := &Precomp{realM: m, realT: t, reduc: reduc}

	if 2*t > 1<<m {
		if reduc != 0 {
			return nil, fmt.Errorf("%w: reduc=%d with 2t > 2^m", ErrInvalidParameters, reduc)
		}
		p.m, p.t = m, 1<<m-t
	} else {
		p.m, p.t = m-reduc, t
		if t > 1<<p.m {
			return nil, fmt.Errorf("%w: reduc=%d leaves no room for %d distinct positions", ErrInvalidParameters, reduc, t)
		}
	}

	if err := p.buildTables(); err != nil {
		return nil, err
	}

	p.computeErrorSize()

	return p, nil
}

// Search replicates the parameter tooling heuristic: it builds the
// reduc=0 precomputation, then increases the reduction as long as the
// guaranteed length does not fall below the reduc=0 length minus a
// one-bit loss allowance (no allowance when that length already ends
// on a byte boundary).
func Search(m, t int) (*Precomp, error) {

	const lengthLoss = 1

	p, err := Build(m, t, 0)
	if err != nil {
		return nil, err
	}

	length := p.errorSize
	if i := ((1<<m - t*m) + length) % 8; i <= lengthLoss {
		length -= i
	} else {
		length -= lengthLoss
	}

	for r := 1; float64(r) < float64(m)-math.Log2(float64(t)); r++ {
		q, err := Build(m, t, r)
		if err != nil {
			return nil, err
		}
		if length > q.errorSize {
			break
		}
		p = q
	}

	return p, nil
}

func (p *Precomp) buildTables() error {

	p.dist = make([][]arith.Distribution, p.m+1)
	p.leaf = make([][]LeafInfo, p.m+1)

	for s := 0; s <= p.m; s++ {

		imax := min(p.t, 1<<s)
		p.dist[s] = make([]arith.Distribution, imax+1)
		p.leaf[s] = make([]LeafInfo, imax+1)

		// Only nodes with i at most half the window survive the
		// complement rule.
		for i := 1; i <= imax && 2*i <= 1<<s; i++ {
			if IsLeaf(s, i) {
				p.leaf[s][i] = buildLeaf(s, i)
			} else {
				d, err := buildDistribution(s, i)
				if err != nil {
					return err
				}
				p.dist[s][i] = d
			}
		}
	}

	return nil
}

// buildLeaf splits C(2^s, i) into its 2-adic part, reserved as raw
// tail bits, and the factorization of the odd cofactor into uniform
// symbols of range at most maxUniform. Every prime factor of
// C(2^s, i) is at most 2^s, so the grouping always succeeds.
func buildLeaf(s, i int) LeafInfo {

	c := bignum.Binomial(1<<s, i).Uint64()

	d := bits.TrailingZeros64(c)
	odd := c >> d

	var factors []uint64
	cur := uint64(1)
	for _, q := range factorize(odd) {
		if cur*q <= maxUniform {
			cur *= q
		} else {
			factors = append(factors, cur)
			cur = q
		}
	}
	if cur > 1 {
		factors = append(factors, cur)
	}

	return LeafInfo{Count: c, DeadBits: d, Factors: factors}
}

// factorize returns the prime factors of odd x in ascending order,
// with multiplicity.
func factorize(x uint64) (primes []uint64) {
	for q := uint64(3); q*q <= x; q += 2 {
		for x%q == 0 {
			primes = append(primes, q)
			x /= q
		}
	}
	if x > 1 {
		primes = append(primes, x)
	}
	return
}

// buildDistribution quantizes the hypergeometric split law of the
// internal node (s, i): the probability that l of the i errors fall
// in the left half of a 2^s window. Each symbol keeps a probability
// of at least one quantization unit so that the coder interval never
// collapses.
func buildDistribution(s, i int) (arith.Distribution, error) {

	const one = 1 << arith.PrecProba

	if i+1 > one {
		return arith.Distribution{}, fmt.Errorf("%w: %d split symbols exceed the probability precision", ErrInvalidParameters, i+1)
	}

	h := 1 << (s - 1)
	denom := bignum.Binomial(1<<s, i)

	cum := make([]uint64, i+1)
	acc := new(big.Int)
	tmp := new(big.Int)
	for l := 1; l <= i; l++ {
		// acc = sum_{j < l} C(h, j) C(h, i-j)
		tmp.Mul(bignum.Binomial(h, l-1), bignum.Binomial(h, i-l+1))
		acc.Add(acc, tmp)

		q := new(big.Int).Lsh(acc, arith.PrecProba)
		q.Quo(q, denom)
		v := q.Uint64()

		if v < cum[l-1]+1 {
			v = cum[l-1] + 1
		}
		if ceil := uint64(one - (i + 1 - l)); v > ceil {
			v = ceil
		}
		cum[l] = v
	}

	return arith.Distribution{Min: 0, Max: i, Prob: cum}, nil
}

// SelfInfoBound returns log2 C(2^m, t), the self-information of a
// fixed weight-t word of length 2^m: the maximum number of bits any
// constant-weight-word codec over these words can reversibly carry.
func SelfInfoBound(m, t int) float64 {
	return bignum.Log2Binomial(1<<m, t)
}

// uniformLoss is the worst-case bit shortfall of coding a uniform
// symbol of range n against the ideal log2(n).
func uniformLoss(n uint64) float64 {
	return math.Log2(1 + float64(n)/deltaMin)
}

// computeErrorSize runs a min-plus dynamic program over the split
// tree: for every weight-t word, the number of bits the coder settles
// is at least the tree minimum, minus the two bits of final interval
// residual, plus the termination bit. ErrorSize is the floor of that
// bound plus the raw reduction bits.
func (p *Precomp) computeErrorSize() {

	memo := make([][]float64, p.m+1)
	for s := range memo {
		memo[s] = make([]float64, min(p.t, 1<<s)+1)
		for i := range memo[s] {
			memo[s][i] = -1
		}
	}

	var minBits func(s, i int) float64
	minBits = func(s, i int) float64 {
		if i == 0 {
			return 0
		}
		if i > 1<<s-i {
			return minBits(s, 1<<s-i)
		}
		if memo[s][i] >= 0 {
			return memo[s][i]
		}

		var v float64
		if IsLeaf(s, i) {
			v = p.leafCost(s, i)
		} else {
			d := p.dist[s][i]
			v = math.Inf(1)
			for l := 0; l <= i; l++ {
				var w uint64
				if l < i {
					w = d.Prob[l+1] - d.Prob[l]
				} else {
					w = 1<<arith.PrecProba - d.Prob[i]
				}
				c := float64(arith.PrecProba) - math.Log2(float64(w)+1.0/256)
				c += minBits(s-1, l) + minBits(s-1, i-l)
				if c < v {
					v = c
				}
			}
		}

		memo[s][i] = v
		return v
	}

	bound := minBits(p.m, p.t) - 1
	p.lowerBound = bound + float64(p.reduc*p.realT)

	size := int(math.Floor(bound - 1e-9))
	if selfInfo := math.Floor(SelfInfoBound(p.m, p.t)); float64(size) > selfInfo {
		size = int(selfInfo)
	}
	if size < 0 {
		size = 0
	}
	p.errorSize = size + p.reduc*p.realT
}

// leafCost is the guaranteed bit count of a leaf: the uniform symbols
// of the odd cofactor plus the dead bits, accounted through the
// chunked-uniform path, which settles slightly fewer bits than the
// reserved-tail path.
func (p *Precomp) leafCost(s, i int) (v float64) {

	li := p.leaf[s][i]

	for _, f := range li.Factors {
		v += math.Log2(float64(f)) - uniformLoss(f)
	}

	d := li.DeadBits
	for d > arith.PrecProba {
		v += float64(arith.PrecProba) - uniformLoss(1<<arith.PrecProba)
		d -= arith.PrecProba
	}
	if d > 0 {
		v += float64(d) - uniformLoss(1<<d)
	}

	return
}

// BinarySize returns the serialized size of the object in bytes.
func (p *Precomp) BinarySize() int { return 12 }

// WriteTo writes the object on an io.Writer. Only the construction
// triple is written: the tables are rebuilt on read.
func (p *Precomp) WriteTo(w io.Writer) (n int64, err error) {
	switch w := w.(type) {
	case buffer.Writer:
		var inc int64
		for _, v := range [3]int{p.realM, p.realT, p.reduc} {
			if inc, err = buffer.WriteAsUint32(w, v); err != nil {
				return n + inc, err
			}
			n += inc
		}
		return n, w.Flush()
	default:
		return p.WriteTo(bufio.NewWriter(w))
	}
}

// ReadFrom reads the construction triple from an io.Reader and
// rebuilds the tables.
func (p *Precomp) ReadFrom(r io.Reader) (n int64, err error) {
	var m, t, reduc int
	var inc int64
	for _, v := range [3]*int{&m, &t, &reduc} {
		if inc, err = buffer.ReadAsUint32(r, v); err != nil {
			return n + inc, err
		}
		n += inc
	}
	q, err := Build(m, t, reduc)
	if err != nil {
		return n, err
	}
	*p = *q
	return n, nil
}

// MarshalBinary encodes the object on a newly allocated slice of bytes.
func (p *Precomp) MarshalBinary() ([]byte, error) {
	buf := buffer.NewBufferSize(p.BinarySize())
	_, err := p.WriteTo(buf)
	return buf.Bytes(), err
}

// UnmarshalBinary decodes a slice of bytes generated by MarshalBinary.
func (p *Precomp) UnmarshalBinary(b []byte) error {
	_, err := p.ReadFrom(buffer.NewBuffer(b))
	return err
}
