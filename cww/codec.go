package cww

import (
	"fmt"

	"github.com/robobenklein/gpg-pqcrypt-sub001/arith"
	"github.com/robobenklein/gpg-pqcrypt-sub001/bitbuf"
)

// pending is a leaf payload collected during the tree walk: a
// combinatorial index (or, while decoding, the slot it must be
// decoded into) together with its tail budget and uniform factors.
// The walk appends in DFS order; every later phase iterates the
// sequence last-to-first so that both directions see the payloads in
// the same order.
type pending struct {
	elem    []int // decode target slots
	count   int
	sizeLog int // log2 of the leaf window
	pos     int // decode: absolute offset of the leaf window
	bits    int
	value   uint64
	factors []uint64
}

// invEntry records a complement node met while decoding: once the
// leaves below it are resolved, the region holds the complement set
// and must be flipped within its window.
type invEntry struct {
	elem  []int
	count int
	size  int // log2 of the window
	pos   int
}

// Codec maps bit strings to constant-weight words and back, against a
// fixed [Precomp]. It owns the temporary collection buffers, so a
// Codec is not safe for concurrent use.
type Codec struct {
	p    *Precomp
	aux  []int
	cw2  []int
	todo []pending
	inv  []invEntry
}

// NewCodec instantiates a new [Codec] over the precomputation p.
func NewCodec(p *Precomp) *Codec {
	return &Codec{
		p:   p,
		aux: make([]int, p.t+1),
		cw2: make([]int, p.t),
	}
}

// Precomp returns the precomputation of the receiver.
func (c *Codec) Precomp() *Precomp { return c.p }

// encodeRec walks the word top-down, emitting a split symbol per
// internal node and collecting a payload per leaf. cw holds the i
// positions of the current window, relative to the word start but
// with only the s low bits significant.
func (c *Codec) encodeRec(cw []int, i, s int, enc *arith.Encoder) int {

	if i == 0 {
		return 0
	}

	if i > 1<<s-i {
		// Complement rule: encode the positions of the window NOT in
		// cw, keeping the weight at most half the window size.
		cw2 := make([]int, 1<<s-i)
		r := cw[0] &^ (1<<s - 1)
		j, l := 0, 0
		for l < len(cw2) && j < i {
			if cw[j] == r {
				j++
			} else {
				cw2[l] = r
				l++
			}
			r++
		}
		for ; l < len(cw2); l, r = l+1, r+1 {
			cw2[l] = r
		}
		return c.encodeRec(cw2, len(cw2), s, enc)
	}

	if IsLeaf(s, i) {
		mask := 1<<s - 1
		for j := 0; j < i; j++ {
			c.aux[j] = cw[j] & mask
		}
		li := c.p.Leaf(s, i)
		c.todo = append(c.todo, pending{
			count:   i,
			sizeLog: s,
			bits:    li.DeadBits,
			value:   subsetIndex(c.aux[:i]),
			factors: li.Factors,
		})
		return 0
	}

	var l int
	for l = 0; l < i; l++ {
		if cw[l]&(1<<(s-1)) != 0 {
			break
		}
	}
	r := enc.Code(l, c.p.Distribution(s, i))

	r += c.encodeRec(cw[:l], l, s-1, enc)
	r += c.encodeRec(cw[l:], i-l, s-1, enc)

	return r
}

// encode maps the word cw (positions sorted ascending) into the
// arithmetic stream, reserving a tail region for the leaf payloads
// when the space past the coder lock allows it.
func (c *Codec) encode(cw []int, enc *arith.Encoder) int {

	c.todo = c.todo[:0]

	r := c.encodeRec(cw, c.p.t, c.p.m, enc)

	reserved := 0
	for i := range c.todo {
		reserved += c.todo[i].bits
	}

	// Both sides must take the same branch: the lock footprint of the
	// coder calls is what keeps the decision in lockstep.
	accel := enc.Buffer.Unlocked() >= reserved

	if accel {
		enc.Buffer.ShiftEnd(-reserved)
	}

	for i := len(c.todo) - 1; i >= 0; i-- {
		e := &c.todo[i]
		h := e.value >> e.bits
		for _, f := range e.factors {
			r += enc.CodeUniform(h%f, f)
			h /= f
		}
		e.value &= lsbOnes(e.bits)
	}

	if !accel {
		for i := len(c.todo) - 1; i >= 0; i-- {
			e := c.todo[i]
			bits, v := e.bits, e.value
			for bits > arith.PrecProba {
				bits -= arith.PrecProba
				r += enc.CodeUniform(v>>bits, 1<<arith.PrecProba)
				v &= lsbOnes(bits)
			}
			if bits > 0 {
				r += enc.CodeUniform(v, 1<<bits)
			}
		}
	}

	r += enc.Finish()

	if accel {
		enc.Buffer.ShiftEnd(reserved)
		enc.Buffer.SetPosition(enc.Buffer.End() - reserved)
		for i := len(c.todo) - 1; i >= 0; i-- {
			enc.Buffer.WriteUint(c.todo[i].value, c.todo[i].bits)
		}
		r += reserved
	}

	return r
}

// decodeRec mirrors encodeRec: it consumes a split symbol per
// internal node and collects the leaf slots to be filled once the
// payloads are read.
func (c *Codec) decodeRec(cw []int, i, s, x int, dec *arith.Decoder) int {

	if i == 0 {
		return 0
	}

	if i > 1<<s-i {
		c.inv = append(c.inv, invEntry{elem: cw, count: i, size: s, pos: x})
		return c.decodeRec(cw, 1<<s-i, s, x, dec)
	}

	if IsLeaf(s, i) {
		li := c.p.Leaf(s, i)
		c.todo = append(c.todo, pending{
			elem:    cw[:i],
			count:   i,
			sizeLog: s,
			pos:     x,
			bits:    li.DeadBits,
			factors: li.Factors,
		})
		return 0
	}

	l, r := dec.Decode(c.p.Distribution(s, i))

	r += c.decodeRec(cw, l, s-1, x, dec)
	r += c.decodeRec(cw[l:], i-l, s-1, x^1<<(s-1), dec)

	return r
}

// decode maps the arithmetic stream into the word cw, whose positions
// come out sorted ascending.
func (c *Codec) decode(cw []int, dec *arith.Decoder) int {

	c.todo = c.todo[:0]
	c.inv = c.inv[:0]

	r := c.decodeRec(cw, c.p.t, c.p.m, 0, dec)

	reserved := 0
	for i := range c.todo {
		reserved += c.todo[i].bits
	}

	accel := dec.Buffer.Unlocked() >= reserved

	if accel {
		dec.Buffer.ShiftEnd(-reserved)
	}

	for i := len(c.todo) - 1; i >= 0; i-- {
		e := &c.todo[i]
		var h, mult uint64 = 0, 1
		for _, f := range e.factors {
			d, n := dec.DecodeUniform(f)
			r += n
			h += d * mult
			mult *= f
		}
		e.value = h << e.bits
	}

	if accel {
		dec.Buffer.ShiftEnd(reserved)
		dec.Buffer.SetPosition(dec.Buffer.End() - reserved)
		for i := len(c.todo) - 1; i >= 0; i-- {
			e := &c.todo[i]
			e.value ^= dec.Buffer.ReadUint(e.bits)
		}
		r += reserved
	} else {
		for i := len(c.todo) - 1; i >= 0; i-- {
			e := &c.todo[i]
			bits := e.bits
			for bits > arith.PrecProba {
				v, n := dec.DecodeUniform(1 << arith.PrecProba)
				r += n
				bits -= arith.PrecProba
				e.value ^= v << bits
			}
			if bits > 0 {
				v, n := dec.DecodeUniform(1 << bits)
				r += n
				e.value ^= v
			}
		}
	}

	// The coder state is settled: exactly one more bit is pending,
	// its value fully determined by (min, pending), so it is counted
	// without being read.
	r++

	for i := len(c.todo) - 1; i >= 0; i-- {
		e := &c.todo[i]
		subsetFromIndex(e.value, e.count, e.sizeLog, e.elem)
		for j := 0; j < e.count; j++ {
			e.elem[j] ^= e.pos
		}
	}

	// Complement nodes, innermost first: each region holds the
	// positions of its window NOT in the set, sorted ascending.
	for i := len(c.inv) - 1; i >= 0; i-- {
		e := c.inv[i]
		hole := len(e.elem)
		if 1<<e.size-e.count < hole {
			hole = 1<<e.size - e.count
		}
		cw2 := make([]int, hole)
		copy(cw2, e.elem[:hole])
		p := e.pos
		j, k := 0, 0
		for j < e.count && k < hole {
			if cw2[k] == p {
				k++
			} else {
				e.elem[j] = p
				j++
			}
			p++
		}
		for ; j < e.count; j, p = j+1, p+1 {
			e.elem[j] = p
		}
	}

	return r
}

// B2CW reads length bits of msg starting at bit start (LSB-first
// within each byte) and produces the positions of the ones of a word
// of length 2^m and weight t into cw. The boundary bytes of msg are
// massaged in place during the call and restored before returning.
//
// The returned count is the number of bits the mapping settled, at
// least length on success; [ErrShortBuffer] is returned when the
// stream carried fewer than length bits of information.
func (c *Codec) B2CW(msg []byte, cw []int, start, length, m, t int) (int, error) {

	if m != c.p.realM || t != c.p.realT {
		return 0, fmt.Errorf("%w: codec driven at (m,t)=(%d,%d) but built for (%d,%d)",
			ErrInconsistentPrecomp, m, t, c.p.realM, c.p.realT)
	}

	// The internal buffer consumes bits MSB-first within each byte:
	// shift the partial boundary bytes so the first and last useful
	// bits land in place.
	var cs, cd byte
	if start%8 != 0 {
		cs = msg[start/8]
		msg[start/8] >>= start % 8
	}
	end := start + length
	if end%8 != 0 {
		cd = msg[end/8]
		msg[end/8] <<= 8 - end%8
	}

	rd := bitbuf.NewReader(msg, end)
	dec := arith.NewDecoder(rd)

	reduc := c.p.ReduceBits()
	rd.SetPosition(start + reduc*t)

	l := c.decode(c.cw2[:c.p.t], dec)

	if c.p.t == t {
		copy(cw[:t], c.cw2)
	} else {
		// The tree produced the complement set: expand it.
		k := 0
		prev := -1
		for _, x := range c.cw2[:c.p.t] {
			for j := prev + 1; j < x; j++ {
				cw[k] = j
				k++
			}
			prev = x
		}
		for j := prev + 1; j < 1<<c.p.m; j++ {
			cw[k] = j
			k++
		}
	}

	if reduc > 0 {
		// The low bits of each position are raw stream bits.
		rd.SetPosition(start)
		for j := 0; j < t; j++ {
			cw[j] = cw[j]<<reduc ^ int(rd.ReadUint(reduc))
		}
		l += reduc * t
	}

	if start%8 != 0 {
		msg[start/8] = cs
	}
	if end%8 != 0 {
		msg[end/8] = cd
	}

	if l < length {
		return l, fmt.Errorf("%w: %d of %d bits settled", ErrShortBuffer, l, length)
	}
	return l, nil
}

// CW2B is the inverse of [B2CW]: it writes length bits at offset
// start into msg (LSB-first within each byte) from the sorted
// positions cw. Words outside the codec's image fail with
// [ErrInvalidWord] or [ErrShortBuffer].
func (c *Codec) CW2B(cw []int, msg []byte, start, length, m, t int) (int, error) {

	if m != c.p.realM || t != c.p.realT {
		return 0, fmt.Errorf("%w: codec driven at (m,t)=(%d,%d) but built for (%d,%d)",
			ErrInconsistentPrecomp, m, t, c.p.realM, c.p.realT)
	}

	for j := 0; j < t; j++ {
		if cw[j] < 0 || cw[j] >= 1<<m || (j > 0 && cw[j] <= cw[j-1]) {
			return 0, fmt.Errorf("%w: positions not sorted within range", ErrInvalidWord)
		}
	}

	var cs byte
	if start%8 != 0 {
		cs = msg[start/8] & byte(1<<(start%8)-1)
		msg[start/8] = 0
	}
	end := start + length

	w := bitbuf.NewWriter(msg, end)
	enc := arith.NewEncoder(w)
	w.SetPosition(start)

	reduc := c.p.ReduceBits()
	if reduc > 0 {
		mask := uint64(1<<reduc - 1)
		for j := 0; j < t; j++ {
			w.WriteUint(uint64(cw[j])&mask, reduc)
		}
	}

	if c.p.t == t {
		for j := 0; j < t; j++ {
			c.cw2[j] = cw[j] >> reduc
		}
	} else {
		// Contract to the complement set.
		k := 0
		prev := -1
		for j := 0; j < t; j++ {
			x := cw[j] >> reduc
			for i := prev + 1; i < x; i++ {
				c.cw2[k] = i
				k++
			}
			prev = x
		}
		for i := prev + 1; i < 1<<c.p.m; i++ {
			c.cw2[k] = i
			k++
		}
	}

	// Positions must stay distinct at the reduced granularity.
	for j := 1; j < c.p.t; j++ {
		if c.cw2[j] <= c.cw2[j-1] {
			return 0, fmt.Errorf("%w: positions collide at the reduced granularity", ErrInvalidWord)
		}
	}

	l := reduc*t + c.encode(c.cw2[:c.p.t], enc)

	w.Close()

	if start%8 != 0 {
		msg[start/8] <<= start % 8
		msg[start/8] ^= cs
	}
	if end%8 != 0 {
		msg[end/8] >>= 8 - end%8
	}

	if l < length {
		return l, fmt.Errorf("%w: %d of %d bits settled", ErrShortBuffer, l, length)
	}
	return l, nil
}

func lsbOnes(i int) uint64 {
	if i <= 0 {
		return 0
	}
	if i >= 64 {
		return ^uint64(0)
	}
	return 1<<i - 1
}
