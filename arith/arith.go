// Package arith implements the integer range coder driving the
// constant-weight-word codec. The coder state is an interval
// [min, max) within [0, 2^PrecInter], plus an underflow counter for
// renormalizations that straddle the half line.
package arith

import (
	"math/bits"

	"github.com/robobenklein/gpg-pqcrypt-sub001/bitbuf"
)

const (
	// PrecTotal is the total precision of the coder in bits.
	PrecTotal = 32
	// PrecInter is the interval precision.
	PrecInter = (2 * PrecTotal) / 3
	// PrecProba is the probability precision: cumulative
	// distributions are scaled so their last entry is 2^PrecProba.
	PrecProba = PrecTotal - PrecInter
)

// Distribution is the cumulative distribution of a symbol in
// [Min, Max]. Prob[i-Min] is the scaled cumulative probability of the
// symbols below i; the (implicit) cumulative above Max is 2^PrecProba.
type Distribution struct {
	Min, Max int
	Prob     []uint64
}

// Proba returns the scaled cumulative probability below symbol i.
func (d Distribution) Proba(i int) uint64 {
	return d.Prob[i-d.Min]
}

// log2 returns the position of the highest set bit plus one.
func log2(x uint64) int {
	return bits.Len64(x)
}

// search returns the symbol index a in [lo, hi) such that
// sprob[a] <= v < sprob[a+1].
func search(v uint64, sprob []uint64, lo, hi int) int {
	for hi-lo > 1 {
		mid := (lo + hi) / 2
		if sprob[mid] > v {
			hi = mid
		} else {
			lo = mid
		}
	}
	return lo
}

// Encoder is the encoding half of the range coder.
type Encoder struct {
	min, max uint64
	pending  int
	Buffer   *bitbuf.Writer
}

// NewEncoder instantiates a new [Encoder] over w.
func NewEncoder(w *bitbuf.Writer) *Encoder {
	return &Encoder{max: 1 << PrecInter, Buffer: w}
}

// adjust renormalizes the interval, emitting the settled leading bits
// and tracking straddles around the half line in the pending counter.
// It returns the number of bits the interval was scaled by.
func (e *Encoder) adjust() int {

	// Number of leading bits shared by every element of [min, max).
	i := PrecInter - log2((e.max-1)^e.min)

	// Largest j with (max-1)-min < 2^(PrecInter-1-j): the interval can
	// be scaled by 2^j and still span at most half the range, which the
	// straddle flip below relies on. Note i <= j+1.
	j := PrecInter - log2(e.max-1-e.min) - 1

	if i > j { // i <= j+1
		i = j
	}
	if i > 0 {
		x := e.min >> (PrecInter - 1)
		e.min &^= 1 << (PrecInter - 1)
		e.Buffer.WriteBit(x)
		e.Buffer.WriteBits(1-x, e.pending)
		e.Buffer.WriteUint(e.min>>(PrecInter-i), i-1)
		e.pending = 0
	}

	e.max = (e.max << j) & lsbOnes(PrecInter)
	if e.max == 0 {
		e.max = 1 << PrecInter
	}
	e.min = (e.min << j) & lsbOnes(PrecInter)

	if j-i > 0 {
		e.max ^= 1 << (PrecInter - 1)
		e.min ^= 1 << (PrecInter - 1)
		e.pending += j - i
	}

	return j
}

// Code encodes symbol i against the cumulative distribution d and
// returns the number of bits settled.
func (e *Encoder) Code(i int, d Distribution) int {

	delta := e.max - e.min

	// Keeps the lock footprint identical to the decoder's.
	e.Buffer.Lock(PrecInter + e.pending)

	if i < d.Max {
		e.max = e.min + ((d.Proba(i+1) * delta) >> PrecProba)
	}
	e.min += (d.Proba(i) * delta) >> PrecProba

	return e.adjust()
}

// CodeUniform encodes i uniformly distributed in [0, n) and returns
// the number of bits settled. n must not exceed 2^(PrecInter-2).
func (e *Encoder) CodeUniform(i, n uint64) int {

	delta := e.max - e.min

	e.Buffer.Lock(PrecInter + e.pending)

	x := i * delta
	e.max = e.min + (x+delta)/n
	e.min += x / n

	return e.adjust()
}

// Finish terminates the stream: a single settled bit determines the
// final interval, followed by the pending straddle bits.
func (e *Encoder) Finish() int {
	if e.min == 0 { // implies pending == 0
		e.Buffer.WriteBit(0)
	} else {
		e.Buffer.WriteBit(1)
		e.Buffer.WriteBits(0, e.pending)
	}
	return 1
}

// Decoder is the decoding half of the range coder.
type Decoder struct {
	min, max uint64
	pending  int
	Buffer   *bitbuf.Reader
}

// NewDecoder instantiates a new [Decoder] over r.
func NewDecoder(r *bitbuf.Reader) *Decoder {
	return &Decoder{max: 1 << PrecInter, Buffer: r}
}

func (dec *Decoder) adjust() int {

	i := PrecInter - log2((dec.max-1)^dec.min)
	j := PrecInter - log2(dec.max-1-dec.min) - 1

	if i > j {
		i = j
	}
	if i > 0 {
		dec.pending = 0
	}

	dec.max = (dec.max << j) & lsbOnes(PrecInter)
	if dec.max == 0 {
		dec.max = 1 << PrecInter
	}
	dec.min = (dec.min << j) & lsbOnes(PrecInter)

	if j-i > 0 {
		dec.max ^= 1 << (PrecInter - 1)
		dec.min ^= 1 << (PrecInter - 1)
		dec.pending += j - i
	}

	return j
}

func (dec *Decoder) lookahead() uint64 {
	v := dec.Buffer.Look(PrecInter)
	if dec.pending > 0 {
		v ^= 1 << (PrecInter - 1)
	}
	return v
}

// Decode decodes a symbol against the cumulative distribution d. It
// returns the symbol and the number of bits consumed.
func (dec *Decoder) Decode(d Distribution) (int, int) {

	delta := dec.max - dec.min
	v := dec.lookahead()

	dec.Buffer.Lock(PrecInter)

	x := ((v - dec.min) << PrecProba) / delta
	i := d.Min + search(x, d.Prob, 0, d.Max-d.Min+1)

	if i < d.Max {
		x = dec.min + ((d.Proba(i+1) * delta) >> PrecProba)
		if v >= x {
			// The truncated interval mapping landed one symbol short.
			i++
			if i < d.Max {
				dec.max = dec.min + ((d.Proba(i+1) * delta) >> PrecProba)
			}
		} else {
			dec.max = x
		}
	}
	dec.min += (d.Proba(i) * delta) >> PrecProba

	r := dec.adjust()
	dec.Buffer.Step(r)

	return i, r
}

// DecodeUniform decodes a symbol uniformly distributed in [0, n). It
// returns the symbol and the number of bits consumed.
func (dec *Decoder) DecodeUniform(n uint64) (uint64, int) {

	delta := dec.max - dec.min
	v := dec.lookahead()

	dec.Buffer.Lock(PrecInter)

	i := ((v - dec.min) * n) / delta

	x := i * delta
	dec.max = dec.min + (x+delta)/n
	if v >= dec.max {
		// max is rounded down, the symbol can land one short.
		i++
		x += delta
		dec.max = dec.min + (x+delta)/n
	}
	dec.min += x / n

	r := dec.adjust()
	dec.Buffer.Step(r)

	return i, r
}

func lsbOnes(i int) uint64 {
	return (uint64(1) << i) - 1
}
