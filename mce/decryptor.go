package mce

import (
	"encoding/binary"
	"errors"
	"fmt"
	"sort"

	"github.com/robobenklein/gpg-pqcrypt-sub001/cww"
	"github.com/robobenklein/gpg-pqcrypt-sub001/gf"
	"github.com/robobenklein/gpg-pqcrypt-sub001/utils"
)

// ErrUndecodable is returned when a ciphertext block does not decode
// to a weight-t error pattern: the locator polynomial has the wrong
// degree, the trace recursion misses roots, or the error pattern is
// outside the codec domain.
var ErrUndecodable = errors.New("undecodable ciphertext")

// Decryptor decrypts ciphertext blocks with a secret key. The
// Patterson and Berlekamp-trace scratch polynomials are allocated once
// and reused across calls, so a Decryptor is not safe for concurrent
// use.
type Decryptor struct {
	params Parameters
	sk     *SecretKey
	field  *gf.Field
	codec  *cww.Codec

	c     []uint64 // syndrome accumulator
	e     []int
	res   []gf.Element
	ct    []byte
	trAux []*gf.Poly
	tr    []*gf.Poly
	trSet []bool
}

// NewDecryptor instantiates a new [Decryptor] from a secret key.
func NewDecryptor(params Parameters, sk *SecretKey) (*Decryptor, error) {
	if sk.M != params.M() || sk.T != params.T() {
		return nil, fmt.Errorf("%w: key (m,t)=(%d,%d) does not match parameters (%d,%d)",
			ErrInvalidParameters, sk.M, sk.T, params.M(), params.T())
	}
	field, err := gf.NewField(params.M())
	if err != nil {
		panic(err)
	}
	t := params.T()
	m := params.M()
	dec := &Decryptor{
		params: params,
		sk:     sk,
		field:  field,
		codec:  cww.NewCodec(params.Precomp()),
		c:      make([]uint64, params.WordsPerRow()),
		e:      make([]int, t),
		res:    make([]gf.Element, t),
		ct:     make([]byte, params.CiphertextBytes()),
		trAux:  make([]*gf.Poly, m),
		tr:     make([]*gf.Poly, m),
		trSet:  make([]bool, m),
	}
	for i := 0; i < m; i++ {
		dec.trAux[i] = gf.NewPoly(t - 1)
		dec.tr[i] = gf.NewPoly(t - 1)
	}
	return dec, nil
}

// DecryptBlock decrypts one ciphertext block of CiphertextBytes bytes
// into a plaintext block of CleartextBytes bytes. It fails with
// [ErrUndecodable] when the block is not within distance t of a
// codeword.
func (dec *Decryptor) DecryptBlock(cleartext, ciphertext []byte) error {

	params := dec.params
	dim := params.Dimension()

	if len(ciphertext) < params.CiphertextBytes() {
		return fmt.Errorf("ciphertext: %d bytes needed but %d given", params.CiphertextBytes(), len(ciphertext))
	}
	if len(cleartext) < params.CleartextBytes() {
		return fmt.Errorf("cleartext: %d bytes needed but %d given", params.CleartextBytes(), len(cleartext))
	}

	if err := dec.decode(ciphertext); err != nil {
		return err
	}

	// Correct the errors on a scratch copy and take the head bytes
	// verbatim: the high bits of the boundary byte (bit positions from
	// the dimension on, LSB-first) are the head of the redundancy
	// section, which the codec overwrites from its start offset while
	// keeping the low bits.
	copy(dec.ct, ciphertext[:params.CiphertextBytes()])
	for _, p := range dec.e {
		utils.FlipBit(dec.ct, p)
	}
	copy(cleartext, dec.ct[:utils.BitsToBytes(dim)])

	// Unpack the error pattern into the plaintext tail.
	if _, err := dec.codec.CW2B(dec.e, cleartext, dim, params.ErrorSize(), params.M(), params.T()); err != nil {
		return fmt.Errorf("%w: %s", ErrUndecodable, err)
	}

	return nil
}

// decode runs Patterson decoding on the received word: syndrome,
// key equation by bounded extended Euclid, locator polynomial, and
// Berlekamp-trace root finding. The error positions land in dec.e,
// sorted ascending.
func (dec *Decryptor) decode(ciphertext []byte) error {

	params := dec.params
	f := dec.field
	t := params.T()
	m := params.M()
	g := dec.sk.G

	// Syndrome under the stored column table.
	for i := range dec.c {
		dec.c[i] = 0
	}
	for j := 0; j < params.Length(); j++ {
		if (ciphertext[j/8]>>(j%8))&1 != 0 {
			row := dec.sk.Row(j)
			for k := range dec.c {
				dec.c[k] ^= row[k]
			}
		}
	}

	// Interpret the Codimension bits as a degree-(t-1) polynomial,
	// m bits per coefficient.
	R := gf.NewPoly(t - 1)
	for l := 0; l < t; l++ {
		k := (l * m) / 64
		j := (l * m) % 64
		a := dec.c[k] >> j
		if j+m > 64 {
			a ^= dec.c[k+1] << (64 - j)
		}
		R.SetCoeff(l, gf.Element(a)&gf.Element((1<<m)-1))
	}
	R.UpdateDegree()

	// h = R^(-1) mod g, then h += z.
	aux, h := f.ExtendedEuclid(R, g, 1)
	a := f.Inv(aux.Coeff(0))
	for i := 0; i <= h.Degree(); i++ {
		h.SetCoeff(i, f.Mul(a, h.Coeff(i)))
	}
	h.AddToCoeff(1, 1)
	h.UpdateDegree()

	// S = sqrt(h) mod g through the square-root table.
	S := gf.NewPoly(t - 1)
	for i := 0; i < t; i++ {
		a := f.Sqrt(h.Coeff(i))
		if a == 0 {
			continue
		}
		if i&1 != 0 {
			w := dec.sk.SqrtMod[i]
			for j := 0; j < t; j++ {
				S.AddToCoeff(j, f.Mul(a, w.Coeff(j)))
			}
		} else {
			S.AddToCoeff(i/2, a)
		}
	}
	S.UpdateDegree()

	// Key equation u(z) = S(z) v(z) mod g(z) with bounded degrees.
	u, v := f.ExtendedEuclid(S, g, t/2+1)

	// sigma = u^2 + z v^2.
	sigma := gf.NewPoly(t)
	for i := 0; i <= u.Degree(); i++ {
		sigma.SetCoeff(2*i, f.Square(u.Coeff(i)))
	}
	for i := 0; i <= v.Degree(); i++ {
		sigma.SetCoeff(2*i+1, f.Square(v.Coeff(i)))
	}
	sigma.UpdateDegree()

	if sigma.Degree() != t {
		return fmt.Errorf("%w: locator degree %d", ErrUndecodable, sigma.Degree())
	}

	d := dec.rootsBerl(sigma, dec.res)
	if d != t {
		return fmt.Errorf("%w: %d roots found for weight %d", ErrUndecodable, d, t)
	}

	for i := 0; i < t; i++ {
		dec.e[i] = int(dec.sk.Linv[dec.res[i]])
	}
	sort.Ints(dec.e)

	return nil
}

// rootsBerl finds the roots of sigma by the Berlekamp trace
// recursion, writing them into res and returning their count.
func (dec *Decryptor) rootsBerl(sigma *gf.Poly, res []gf.Element) int {

	f := dec.field
	t := dec.params.T()
	m := dec.params.M()

	sqAux := f.SqModInit(sigma)

	// tr_aux[i] = z^(2^i) mod sigma; tr[0] is the trace polynomial.
	dec.trAux[0].Zero()
	dec.trAux[0].SetCoeff(1, 1)
	dec.trAux[0].SetDegree(1)
	dec.tr[0].Zero()
	dec.tr[0].SetCoeff(1, 1)
	for i := 1; i < m; i++ {
		f.SqMod(dec.trAux[i], dec.trAux[i-1], sqAux, t)
		for j := 0; j < t; j++ {
			dec.tr[0].AddToCoeff(j, dec.trAux[i].Coeff(j))
		}
	}
	dec.tr[0].UpdateDegree()

	dec.trSet[0] = true
	for i := 1; i < m; i++ {
		dec.trSet[i] = false
	}

	return dec.rootsBerlAux(sigma, sigma.Degree(), 0, res)
}

func (dec *Decryptor) rootsBerlAux(sigma *gf.Poly, d, e int, res []gf.Element) int {

	f := dec.field
	t := dec.params.T()
	m := dec.params.M()

	if d == 0 {
		return 0
	}

	if d == 1 {
		res[0] = f.Div(sigma.Coeff(0), sigma.Coeff(1))
		return 1
	}

	if e >= m {
		return 0
	}

	if !dec.trSet[e] {
		// Shifted trace: multiply each tr_aux[i] by (alpha^e)^(2^i)
		// and sum.
		tr := dec.tr[e]
		tr.Zero()
		a := f.Exp(e)
		for i := 0; i < m; i++ {
			for j := 0; j < t; j++ {
				tr.AddToCoeff(j, f.Mul(dec.trAux[i].Coeff(j), a))
			}
			a = f.Square(a)
		}
		tr.UpdateDegree()
		dec.trSet[e] = true
	}

	gcd1 := f.GCDNew(dec.tr[e], sigma)
	gcd2 := f.QuoNew(sigma, gcd1)

	i := gcd1.Degree()

	j := dec.rootsBerlAux(gcd1, i, e+1, res)
	j += dec.rootsBerlAux(gcd2, d-i, e+1, res[j:])

	return j
}

// Decrypt reverses [Encryptor.Encrypt]: it decrypts the blocks,
// strips the length framing and returns the message. Any undecodable
// block is terminal.
func (dec *Decryptor) Decrypt(ct []byte) ([]byte, error) {

	params := dec.params
	cb := params.CiphertextBytes()
	mb := params.MessageBytes()

	if len(ct)%cb != 0 || len(ct) == 0 {
		return nil, fmt.Errorf("ciphertext length %d is not a multiple of the %d-byte block", len(ct), cb)
	}

	blocks := len(ct) / cb
	payload := make([]byte, 0, blocks*mb)
	cleartext := make([]byte, params.CleartextBytes())

	for b := 0; b < blocks; b++ {
		if err := dec.DecryptBlock(cleartext, ct[b*cb:(b+1)*cb]); err != nil {
			return nil, fmt.Errorf("block %d: %w", b, err)
		}
		payload = append(payload, cleartext[:mb]...)
	}

	if len(payload) < 8 {
		return nil, fmt.Errorf("framing: %d payload bytes cannot hold the length prefix", len(payload))
	}
	size := binary.LittleEndian.Uint64(payload)
	if size > uint64(len(payload)-8) {
		return nil, fmt.Errorf("framing: announced length %d exceeds the %d decrypted bytes", size, len(payload)-8)
	}

	return payload[8 : 8+size], nil
}
