// Package sampling implements a deterministic source of pseudo-random
// bytes expanded from a 32-byte seed with BLAKE2b running in XOF mode.
package sampling

import (
	"crypto/rand"

	"golang.org/x/crypto/blake2b"
)

// Source is a deterministic stream of pseudo-random bytes.
// Two sources instantiated with the same seed produce the same stream.
// A Source is not safe for concurrent use.
type Source struct {
	seed [32]byte
	xof  blake2b.XOF
}

// NewSeed samples a new random 32-byte seed from crypto/rand.
func NewSeed() (seed [32]byte) {
	if _, err := rand.Read(seed[:]); err != nil {
		// crypto/rand never fails on supported platforms.
		panic(err)
	}
	return
}

// NewSource instantiates a new [Source] from the provided seed.
func NewSource(seed [32]byte) *Source {
	xof, err := blake2b.NewXOF(blake2b.OutputLengthUnknown, nil)
	if err != nil {
		// Only fails on invalid key size, which cannot happen here.
		panic(err)
	}
	s := &Source{seed: seed, xof: xof}
	if _, err = s.xof.Write(seed[:]); err != nil {
		panic(err)
	}
	return s
}

// Seed returns the seed the receiver was instantiated with.
func (s *Source) Seed() [32]byte {
	return s.seed
}

// Reset rewinds the receiver to the beginning of its stream.
func (s *Source) Reset() {
	s.xof.Reset()
	if _, err := s.xof.Write(s.seed[:]); err != nil {
		panic(err)
	}
}

// NewSource returns a new [Source] whose seed is drawn from the
// receiver's stream.
func (s *Source) NewSource() *Source {
	var seed [32]byte
	s.mustRead(seed[:])
	return NewSource(seed)
}

// NewSeed returns a new seed drawn from the receiver's stream.
func (s *Source) NewSeed() (seed [32]byte) {
	s.mustRead(seed[:])
	return
}

// Read fills p with bytes from the stream. It never fails.
func (s *Source) Read(p []byte) (n int, err error) {
	s.mustRead(p)
	return len(p), nil
}

// Uint32 returns the next 32 bits of the stream.
func (s *Source) Uint32() uint32 {
	var b [4]byte
	s.mustRead(b[:])
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24
}

// Uint64 returns the next 64 bits of the stream.
func (s *Source) Uint64() uint64 {
	var b [8]byte
	s.mustRead(b[:])
	return uint64(b[0]) | uint64(b[1])<<8 | uint64(b[2])<<16 | uint64(b[3])<<24 |
		uint64(b[4])<<32 | uint64(b[5])<<40 | uint64(b[6])<<48 | uint64(b[7])<<56
}

func (s *Source) mustRead(p []byte) {
	if _, err := s.xof.Read(p); err != nil {
		// The XOF output length is unbounded, reads cannot fail.
		panic(err)
	}
}
