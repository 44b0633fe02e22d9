package mce

import (
	"bufio"
	"fmt"
	"io"

	"github.com/robobenklein/gpg-pqcrypt-sub001/gf"
	"github.com/robobenklein/gpg-pqcrypt-sub001/utils"
	"github.com/robobenklein/gpg-pqcrypt-sub001/utils/buffer"
)

// PublicKey is the encryption table: one Codimension-bit column per
// information position, flattened as Dimension rows of packed 64-bit
// words. Encrypting xors together the rows selected by the cleartext
// bits.
type PublicKey struct {
	M, T int
	Rows []uint64
}

// NewPublicKey allocates a zero [PublicKey] for the given parameters.
func NewPublicKey(params Parameters) *PublicKey {
	return &PublicKey{
		M:    params.M(),
		T:    params.T(),
		Rows: make([]uint64, params.Dimension()*params.WordsPerRow()),
	}
}

// Row returns the packed words of row i. The slice aliases the key.
func (pk *PublicKey) Row(i int) []uint64 {
	wpr := utils.BitsToWords(pk.M * pk.T)
	return pk.Rows[i*wpr : (i+1)*wpr]
}

// Equal performs a deep equality test.
func (pk *PublicKey) Equal(other *PublicKey) bool {
	return pk.M == other.M && pk.T == other.T &&
		buffer.EqualAsUint64Slice(pk.Rows, other.Rows)
}

// SecretKey holds everything decryption needs: the column table of
// all positions (for the syndrome), the inverse support, the Goppa
// polynomial and its square-root table.
type SecretKey struct {
	M, T    int
	F       []uint64     // Length rows of WordsPerRow words
	Linv    []gf.Element // inverse support permutation
	G       *gf.Poly     // Goppa polynomial, degree T
	SqrtMod []*gf.Poly   // T polynomials of T coefficients
}

// NewSecretKey allocates a zero [SecretKey] for the given parameters.
func NewSecretKey(params Parameters) *SecretKey {
	sk := &SecretKey{
		M:       params.M(),
		T:       params.T(),
		F:       make([]uint64, params.Length()*params.WordsPerRow()),
		Linv:    make([]gf.Element, params.Length()),
		G:       gf.NewPoly(params.T()),
		SqrtMod: make([]*gf.Poly, params.T()),
	}
	for i := range sk.SqrtMod {
		sk.SqrtMod[i] = gf.NewPoly(params.T() - 1)
	}
	return sk
}

// Row returns the packed syndrome words of position i.
func (sk *SecretKey) Row(i int) []uint64 {
	wpr := utils.BitsToWords(sk.M * sk.T)
	return sk.F[i*wpr : (i+1)*wpr]
}

// Equal performs a deep equality test.
func (sk *SecretKey) Equal(other *SecretKey) bool {
	if sk.M != other.M || sk.T != other.T {
		return false
	}
	if !buffer.EqualAsUint64Slice(sk.F, other.F) {
		return false
	}
	if !buffer.EqualAsUint64Slice(sk.Linv, other.Linv) {
		return false
	}
	if !sk.G.Equal(other.G) {
		return false
	}
	for i := range sk.SqrtMod {
		if !sk.SqrtMod[i].Equal(other.SqrtMod[i]) {
			return false
		}
	}
	return true
}

// BinarySize returns the serialized size of the object in bytes: the
// (m, t) prefix followed by the raw key layout.
func (pk *PublicKey) BinarySize() int {
	length := 1 << pk.M
	wpr := utils.BitsToWords(pk.M * pk.T)
	return 8 + (length-pk.M*pk.T)*wpr*8
}

// WriteTo writes the object on an io.Writer: the parameter pair as two
// little-endian uint32, then the rows as little-endian words.
func (pk *PublicKey) WriteTo(w io.Writer) (n int64, err error) {
	switch w := w.(type) {
	case buffer.Writer:
		var inc int64
		if inc, err = buffer.WriteAsUint32(w, pk.M); err != nil {
			return n + inc, err
		}
		n += inc
		if inc, err = buffer.WriteAsUint32(w, pk.T); err != nil {
			return n + inc, err
		}
		n += inc
		if inc, err = buffer.WriteAsUint64Slice(w, pk.Rows); err != nil {
			return n + inc, err
		}
		return n + inc, w.Flush()
	default:
		return pk.WriteTo(bufio.NewWriter(w))
	}
}

// ReadFrom reads the object from an io.Reader.
func (pk *PublicKey) ReadFrom(r io.Reader) (n int64, err error) {
	var inc int64
	if inc, err = buffer.ReadAsUint32(r, &pk.M); err != nil {
		return n + inc, err
	}
	n += inc
	if inc, err = buffer.ReadAsUint32(r, &pk.T); err != nil {
		return n + inc, err
	}
	n += inc
	if pk.M < MinLogLength || pk.M > MaxLogLength || pk.T < 2 || pk.M*pk.T >= 1<<pk.M {
		return n, fmt.Errorf("%w: (m,t)=(%d,%d)", ErrInvalidParameters, pk.M, pk.T)
	}
	length := 1 << pk.M
	wpr := utils.BitsToWords(pk.M * pk.T)
	size := (length - pk.M*pk.T) * wpr
	if cap(pk.Rows) < size {
		pk.Rows = make([]uint64, size)
	}
	pk.Rows = pk.Rows[:size]
	if inc, err = buffer.ReadAsUint64Slice(r, pk.Rows); err != nil {
		return n + inc, err
	}
	return n + inc, nil
}

// MarshalBinary encodes the object on a newly allocated slice of bytes.
func (pk *PublicKey) MarshalBinary() ([]byte, error) {
	buf := buffer.NewBufferSize(pk.BinarySize())
	_, err := pk.WriteTo(buf)
	return buf.Bytes(), err
}

// UnmarshalBinary decodes a slice of bytes generated by MarshalBinary.
func (pk *PublicKey) UnmarshalBinary(b []byte) error {
	_, err := pk.ReadFrom(buffer.NewBuffer(b))
	return err
}

// BinarySize returns the serialized size of the object in bytes: the
// (m, t) prefix followed by the raw key layout of the column table,
// the inverse support, the generator and the square-root table.
func (sk *SecretKey) BinarySize() int {
	length := 1 << sk.M
	wpr := utils.BitsToWords(sk.M * sk.T)
	return 8 + length*wpr*8 + (length+1+(sk.T+1)*sk.T)*2
}

// WriteTo writes the object on an io.Writer, in the order the
// decryption side consumes it: column table, inverse support,
// generator coefficients, square-root table coefficients.
func (sk *SecretKey) WriteTo(w io.Writer) (n int64, err error) {
	switch w := w.(type) {
	case buffer.Writer:
		var inc int64
		if inc, err = buffer.WriteAsUint32(w, sk.M); err != nil {
			return n + inc, err
		}
		n += inc
		if inc, err = buffer.WriteAsUint32(w, sk.T); err != nil {
			return n + inc, err
		}
		n += inc
		if inc, err = buffer.WriteAsUint64Slice(w, sk.F); err != nil {
			return n + inc, err
		}
		n += inc
		if inc, err = buffer.WriteAsUint16Slice(w, sk.Linv); err != nil {
			return n + inc, err
		}
		n += inc
		for i := 0; i <= sk.T; i++ {
			if inc, err = buffer.WriteAsUint16(w, sk.G.Coeff(i)); err != nil {
				return n + inc, err
			}
			n += inc
		}
		for i := 0; i < sk.T; i++ {
			for j := 0; j < sk.T; j++ {
				if inc, err = buffer.WriteAsUint16(w, sk.SqrtMod[i].Coeff(j)); err != nil {
					return n + inc, err
				}
				n += inc
			}
		}
		return n, w.Flush()
	default:
		return sk.WriteTo(bufio.NewWriter(w))
	}
}

// ReadFrom reads the object from an io.Reader.
func (sk *SecretKey) ReadFrom(r io.Reader) (n int64, err error) {
	var inc int64
	if inc, err = buffer.ReadAsUint32(r, &sk.M); err != nil {
		return n + inc, err
	}
	n += inc
	if inc, err = buffer.ReadAsUint32(r, &sk.T); err != nil {
		return n + inc, err
	}
	n += inc
	if sk.M < MinLogLength || sk.M > MaxLogLength || sk.T < 2 || sk.M*sk.T >= 1<<sk.M {
		return n, fmt.Errorf("%w: (m,t)=(%d,%d)", ErrInvalidParameters, sk.M, sk.T)
	}

	length := 1 << sk.M
	wpr := utils.BitsToWords(sk.M * sk.T)

	if cap(sk.F) < length*wpr {
		sk.F = make([]uint64, length*wpr)
	}
	sk.F = sk.F[:length*wpr]
	if inc, err = buffer.ReadAsUint64Slice(r, sk.F); err != nil {
		return n + inc, err
	}
	n += inc

	if cap(sk.Linv) < length {
		sk.Linv = make([]gf.Element, length)
	}
	sk.Linv = sk.Linv[:length]
	if inc, err = buffer.ReadAsUint16Slice(r, sk.Linv); err != nil {
		return n + inc, err
	}
	n += inc

	coeffs := make([]gf.Element, sk.T+1)
	if inc, err = buffer.ReadAsUint16Slice(r, coeffs); err != nil {
		return n + inc, err
	}
	n += inc
	sk.G = gf.NewPolyFrom(sk.T, coeffs)

	sk.SqrtMod = make([]*gf.Poly, sk.T)
	row := make([]gf.Element, sk.T)
	for i := 0; i < sk.T; i++ {
		if inc, err = buffer.ReadAsUint16Slice(r, row); err != nil {
			return n + inc, err
		}
		n += inc
		q := gf.NewPolyFrom(sk.T-1, row)
		q.UpdateDegree()
		sk.SqrtMod[i] = q
	}

	return n, nil
}

// MarshalBinary encodes the object on a newly allocated slice of bytes.
func (sk *SecretKey) MarshalBinary() ([]byte, error) {
	buf := buffer.NewBufferSize(sk.BinarySize())
	_, err := sk.WriteTo(buf)
	return buf.Bytes(), err
}

// UnmarshalBinary decodes a slice of bytes generated by MarshalBinary.
func (sk *SecretKey) UnmarshalBinary(b []byte) error {
	_, err := sk.ReadFrom(buffer.NewBuffer(b))
	return err
}
