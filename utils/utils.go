// Package utils implements generic helper functions shared across the module.
package utils

import (
	"golang.org/x/exp/constraints"
)

// BitsToBytes returns the number of bytes needed to store nbits bits.
func BitsToBytes[T constraints.Integer](nbits T) T {
	return (nbits + 7) >> 3
}

// BitsToWords returns the number of 64-bit words needed to store nbits bits.
func BitsToWords[T constraints.Integer](nbits T) T {
	return (nbits + 63) >> 6
}

// HammingWeight returns the number of set bits among the first nbits bits
// of b, bits being numbered LSB-first within each byte.
func HammingWeight(b []byte, nbits int) (w int) {
	for j := 0; j < nbits; j++ {
		w += int((b[j>>3] >> (j & 7)) & 1)
	}
	return
}

// GetBit returns bit j of b, LSB-first within each byte.
func GetBit(b []byte, j int) int {
	return int((b[j>>3] >> (j & 7)) & 1)
}

// FlipBit flips bit j of b, LSB-first within each byte.
func FlipBit(b []byte, j int) {
	b[j>>3] ^= 1 << (j & 7)
}

// AllDistinct returns true if all elements of s are distinct.
func AllDistinct[T comparable](s []T) bool {
	seen := make(map[T]struct{}, len(s))
	for _, x := range s {
		if _, ok := seen[x]; ok {
			return false
		}
		seen[x] = struct{}{}
	}
	return true
}
