// Package mce implements the McEliece hybrid encryption scheme over
// binary Goppa codes: key generation, block encryption and
// decryption, and the stream framing above them. The plaintext of a
// block carries Dimension information bits folded through the public
// column table plus ErrorSize bits packed into the error pattern by
// the constant-weight-word codec.
package mce

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/robobenklein/gpg-pqcrypt-sub001/cww"
	"github.com/robobenklein/gpg-pqcrypt-sub001/utils"
	"github.com/robobenklein/gpg-pqcrypt-sub001/utils/buffer"
)

// MinLogLength is the smallest supported extension degree.
const MinLogLength = 5

// MaxLogLength is the largest supported extension degree.
const MaxLogLength = 16

// ErrInvalidParameters is returned for parameters outside the
// supported ranges or with m*t >= 2^m.
var ErrInvalidParameters = errors.New("invalid parameters")

// ParametersLiteral is a user-specified parameter set: the extension
// degree m (code length 2^m) and the error-correction capacity t.
// See [NewParametersFromLiteral].
type ParametersLiteral struct {
	M int `json:"m"`
	T int `json:"t"`
}

// Parameters is a validated, immutable parameter set, carrying the
// constant-weight-word precomputation for (m, t).
type Parameters struct {
	m, t    int
	precomp *cww.Precomp
}

// NewParametersFromLiteral instantiates a [Parameters] from a
// [ParametersLiteral]. The empty Parameters and a non-nil error are
// returned if the literal is invalid.
func NewParametersFromLiteral(pl ParametersLiteral) (Parameters, error) {

	if pl.M < MinLogLength || pl.M > MaxLogLength {
		return Parameters{}, fmt.Errorf("%w: m=%d not in [%d, %d]", ErrInvalidParameters, pl.M, MinLogLength, MaxLogLength)
	}
	if pl.T < 2 || pl.M*pl.T >= 1<<pl.M {
		return Parameters{}, fmt.Errorf("%w: error weight t=%d must satisfy 1 < t and m*t < 2^m", ErrInvalidParameters, pl.T)
	}

	precomp, err := cww.Search(pl.M, pl.T)
	if err != nil {
		return Parameters{}, fmt.Errorf("%w: %s", ErrInvalidParameters, err)
	}

	return Parameters{m: pl.M, t: pl.T, precomp: precomp}, nil
}

// M returns the extension degree.
func (p Parameters) M() int { return p.m }

// T returns the error-correction capacity.
func (p Parameters) T() int { return p.t }

// Length returns the code length 2^m, the ciphertext bit length.
func (p Parameters) Length() int { return 1 << p.m }

// Codimension returns m*t, the redundancy bit length.
func (p Parameters) Codimension() int { return p.m * p.t }

// Dimension returns 2^m - m*t, the information bit length.
func (p Parameters) Dimension() int { return p.Length() - p.Codimension() }

// ErrorSize returns the number of plaintext bits carried by the error
// pattern.
func (p Parameters) ErrorSize() int { return p.precomp.ErrorSize() }

// CleartextLength returns Dimension + ErrorSize, the plaintext bit
// length of a block.
func (p Parameters) CleartextLength() int { return p.Dimension() + p.ErrorSize() }

// CleartextBytes returns the byte length of a plaintext block.
func (p Parameters) CleartextBytes() int { return utils.BitsToBytes(p.CleartextLength()) }

// MessageBytes returns the number of message bytes framed into each
// block, CleartextLength/8 rounded down.
func (p Parameters) MessageBytes() int { return p.CleartextLength() / 8 }

// CiphertextBytes returns the byte length of a ciphertext block.
func (p Parameters) CiphertextBytes() int { return utils.BitsToBytes(p.Length()) }

// WordsPerRow returns the number of 64-bit words of a packed
// Codimension-bit row.
func (p Parameters) WordsPerRow() int { return utils.BitsToWords(p.Codimension()) }

// PublicKeyBytes returns the byte length of the raw public key:
// Dimension rows of WordsPerRow words.
func (p Parameters) PublicKeyBytes() int {
	return p.Dimension() * p.WordsPerRow() * 8
}

// SecretKeyBytes returns the byte length of the raw secret key: the
// full column table, the inverse support, the Goppa polynomial and
// the square-root table.
func (p Parameters) SecretKeyBytes() int {
	return p.Length()*p.WordsPerRow()*8 + (p.Length()+1+(p.t+1)*p.t)*2
}

// Precomp returns the constant-weight-word precomputation.
func (p Parameters) Precomp() *cww.Precomp { return p.precomp }

// Equal performs a deep equality test.
func (p Parameters) Equal(other *Parameters) bool {
	return p.m == other.m && p.t == other.t
}

// MarshalJSON encodes the receiver as its literal.
func (p Parameters) MarshalJSON() ([]byte, error) {
	return json.Marshal(ParametersLiteral{M: p.m, T: p.t})
}

// UnmarshalJSON decodes a literal and validates it into the receiver.
func (p *Parameters) UnmarshalJSON(b []byte) error {
	var pl ParametersLiteral
	if err := json.Unmarshal(b, &pl); err != nil {
		return err
	}
	params, err := NewParametersFromLiteral(pl)
	if err != nil {
		return err
	}
	*p = params
	return nil
}

// BinarySize returns the serialized size of the object in bytes.
func (p Parameters) BinarySize() int { return 8 }

// WriteTo writes the parameter pair (m, t) as two little-endian
// uint32 on w. It implements the io.WriterTo interface.
func (p Parameters) WriteTo(w io.Writer) (n int64, err error) {
	switch w := w.(type) {
	case buffer.Writer:
		var inc int64
		if inc, err = buffer.WriteAsUint32(w, p.m); err != nil {
			return n + inc, err
		}
		n += inc
		if inc, err = buffer.WriteAsUint32(w, p.t); err != nil {
			return n + inc, err
		}
		return n + inc, w.Flush()
	default:
		return p.WriteTo(bufio.NewWriter(w))
	}
}

// ReadFrom reads and validates a parameter pair from r. It implements
// the io.ReaderFrom interface.
func (p *Parameters) ReadFrom(r io.Reader) (n int64, err error) {
	var m, t int
	var inc int64
	if inc, err = buffer.ReadAsUint32(r, &m); err != nil {
		return n + inc, err
	}
	n += inc
	if inc, err = buffer.ReadAsUint32(r, &t); err != nil {
		return n + inc, err
	}
	n += inc
	params, err := NewParametersFromLiteral(ParametersLiteral{M: m, T: t})
	if err != nil {
		return n, err
	}
	*p = params
	return n, nil
}

// MarshalBinary encodes the object on a newly allocated slice of bytes.
func (p Parameters) MarshalBinary() ([]byte, error) {
	buf := buffer.NewBufferSize(p.BinarySize())
	_, err := p.WriteTo(buf)
	return buf.Bytes(), err
}

// UnmarshalBinary decodes a slice of bytes generated by MarshalBinary.
func (p *Parameters) UnmarshalBinary(b []byte) error {
	_, err := p.ReadFrom(buffer.NewBuffer(b))
	return err
}
