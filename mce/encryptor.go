package mce

import (
	"encoding/binary"
	"fmt"

	"github.com/robobenklein/gpg-pqcrypt-sub001/cww"
	"github.com/robobenklein/gpg-pqcrypt-sub001/utils"
)

// Encryptor encrypts plaintext blocks under a public key. It owns the
// constant-weight codec scratch, so an Encryptor is not safe for
// concurrent use.
type Encryptor struct {
	params Parameters
	pk     *PublicKey
	codec  *cww.Codec
	cR     []uint64
	e      []int
}

// NewEncryptor instantiates a new [Encryptor] from a public key.
func NewEncryptor(params Parameters, pk *PublicKey) (*Encryptor, error) {
	if pk.M != params.M() || pk.T != params.T() {
		return nil, fmt.Errorf("%w: key (m,t)=(%d,%d) does not match parameters (%d,%d)",
			ErrInvalidParameters, pk.M, pk.T, params.M(), params.T())
	}
	return &Encryptor{
		params: params,
		pk:     pk,
		codec:  cww.NewCodec(params.Precomp()),
		cR:     make([]uint64, params.WordsPerRow()),
		e:      make([]int, params.T()),
	}, nil
}

// EncryptBlock encrypts one plaintext block of CleartextBytes bytes
// into a ciphertext of CiphertextBytes bytes. Bits are numbered
// LSB-first within each byte; the plaintext carries Dimension
// information bits followed by ErrorSize bits packed into the error
// pattern. cleartext is massaged in place around the codec call and
// restored before returning.
func (enc *Encryptor) EncryptBlock(ciphertext, cleartext []byte) error {

	params := enc.params
	dim := params.Dimension()

	if len(cleartext) < params.CleartextBytes() {
		return fmt.Errorf("cleartext: %d bytes needed but %d given", params.CleartextBytes(), len(cleartext))
	}
	if len(ciphertext) < params.CiphertextBytes() {
		return fmt.Errorf("ciphertext: %d bytes needed but %d given", params.CiphertextBytes(), len(ciphertext))
	}

	// Fold the information bits through the column table.
	for i := range enc.cR {
		enc.cR[i] = 0
	}
	for j := 0; j < dim; j++ {
		if (cleartext[j/8]>>(j%8))&1 != 0 {
			row := enc.pk.Row(j)
			for k := range enc.cR {
				enc.cR[k] ^= row[k]
			}
		}
	}

	// Pack the plaintext tail into the error positions.
	if _, err := enc.codec.B2CW(cleartext, enc.e, dim, params.ErrorSize(), params.M(), params.T()); err != nil {
		return fmt.Errorf("encrypt: %w", err)
	}

	enc.concat(ciphertext, cleartext)

	// Flip the t error positions.
	for _, p := range enc.e {
		utils.FlipBit(ciphertext, p)
	}

	return nil
}

// concat assembles head || cR into the ciphertext: the first
// Dimension bits come from the cleartext, the next Codimension bits
// from the redundancy accumulator.
func (enc *Encryptor) concat(ciphertext, cleartext []byte) {

	params := enc.params
	dim := params.Dimension()

	copy(ciphertext[:dim/8], cleartext)

	for i := dim / 8; i < params.CiphertextBytes(); i++ {
		ciphertext[i] = 0
	}
	if dim%8 != 0 {
		ciphertext[dim/8] = cleartext[dim/8] & byte(1<<(dim%8)-1)
	}

	for b := 0; b < params.Codimension(); b++ {
		bit := (enc.cR[b/64] >> (b % 64)) & 1
		p := dim + b
		ciphertext[p/8] |= byte(bit) << (p % 8)
	}
}

// Encrypt frames and encrypts a whole message: an 8-byte
// little-endian length followed by the message bytes, split into
// MessageBytes-sized chunks, one ciphertext block per chunk.
func (enc *Encryptor) Encrypt(msg []byte) ([]byte, error) {

	params := enc.params
	mb := params.MessageBytes()

	payload := make([]byte, 8+len(msg))
	binary.LittleEndian.PutUint64(payload, uint64(len(msg)))
	copy(payload[8:], msg)

	blocks := (len(payload) + mb - 1) / mb
	out := make([]byte, 0, blocks*params.CiphertextBytes())

	cleartext := make([]byte, params.CleartextBytes())
	ciphertext := make([]byte, params.CiphertextBytes())

	for b := 0; b < blocks; b++ {
		for i := range cleartext {
			cleartext[i] = 0
		}
		lo := b * mb
		hi := min(lo+mb, len(payload))
		copy(cleartext, payload[lo:hi])
		if err := enc.EncryptBlock(ciphertext, cleartext); err != nil {
			return nil, fmt.Errorf("block %d: %w", b, err)
		}
		out = append(out, ciphertext...)
	}

	return out, nil
}
