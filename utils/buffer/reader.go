package buffer

import (
	"io"

	"golang.org/x/exp/constraints"
)

// Reader is the interface a stream must implement for the typed read
// helpers of this package. [bufio.Reader] and [Buffer] both comply.
type Reader interface {
	io.Reader
}

// ReadUint8 reads an uint8 from r into *c.
func ReadUint8(r Reader, c *uint8) (n int64, err error) {
	var buf [1]byte
	nint, err := io.ReadFull(r, buf[:])
	if err != nil {
		return int64(nint), err
	}
	*c = buf[0]
	return int64(nint), nil
}

// ReadUint16 reads a little-endian uint16 from r into *c.
func ReadUint16(r Reader, c *uint16) (n int64, err error) {
	var buf [2]byte
	nint, err := io.ReadFull(r, buf[:])
	if err != nil {
		return int64(nint), err
	}
	*c = uint16(buf[0]) | uint16(buf[1])<<8
	return int64(nint), nil
}

// ReadUint32 reads a little-endian uint32 from r into *c.
func ReadUint32(r Reader, c *uint32) (n int64, err error) {
	var buf [4]byte
	nint, err := io.ReadFull(r, buf[:])
	if err != nil {
		return int64(nint), err
	}
	*c = uint32(buf[0]) | uint32(buf[1])<<8 | uint32(buf[2])<<16 | uint32(buf[3])<<24
	return int64(nint), nil
}

// ReadUint64 reads a little-endian uint64 from r into *c.
func ReadUint64(r Reader, c *uint64) (n int64, err error) {
	var buf [8]byte
	nint, err := io.ReadFull(r, buf[:])
	if err != nil {
		return int64(nint), err
	}
	*c = uint64(buf[0]) | uint64(buf[1])<<8 | uint64(buf[2])<<16 | uint64(buf[3])<<24 |
		uint64(buf[4])<<32 | uint64(buf[5])<<40 | uint64(buf[6])<<48 | uint64(buf[7])<<56
	return int64(nint), nil
}

// ReadAsUint8 reads an uint8 from r into *c.
func ReadAsUint8[T constraints.Integer](r Reader, c *T) (n int64, err error) {
	var v uint8
	if n, err = ReadUint8(r, &v); err != nil {
		return
	}
	*c = T(v)
	return
}

// ReadAsUint16 reads a little-endian uint16 from r into *c.
func ReadAsUint16[T constraints.Integer](r Reader, c *T) (n int64, err error) {
	var v uint16
	if n, err = ReadUint16(r, &v); err != nil {
		return
	}
	*c = T(v)
	return
}

// ReadAsUint32 reads a little-endian uint32 from r into *c.
func ReadAsUint32[T constraints.Integer](r Reader, c *T) (n int64, err error) {
	var v uint32
	if n, err = ReadUint32(r, &v); err != nil {
		return
	}
	*c = T(v)
	return
}

// ReadAsUint64 reads a little-endian uint64 from r into *c.
func ReadAsUint64[T constraints.Integer](r Reader, c *T) (n int64, err error) {
	var v uint64
	if n, err = ReadUint64(r, &v); err != nil {
		return
	}
	*c = T(v)
	return
}

// ReadAsUint8Slice reads len(c) uint8 values from r into c.
func ReadAsUint8Slice[T constraints.Integer](r Reader, c []T) (n int64, err error) {
	var inc int64
	for i := range c {
		if inc, err = ReadAsUint8(r, &c[i]); err != nil {
			return
		}
		n += inc
	}
	return
}

// ReadAsUint16Slice reads len(c) little-endian uint16 values from r into c.
func ReadAsUint16Slice[T constraints.Integer](r Reader, c []T) (n int64, err error) {
	var inc int64
	for i := range c {
		if inc, err = ReadAsUint16(r, &c[i]); err != nil {
			return
		}
		n += inc
	}
	return
}

// ReadAsUint32Slice reads len(c) little-endian uint32 values from r into c.
func ReadAsUint32Slice[T constraints.Integer](r Reader, c []T) (n int64, err error) {
	var inc int64
	for i := range c {
		if inc, err = ReadAsUint32(r, &c[i]); err != nil {
			return
		}
		n += inc
	}
	return
}

// ReadAsUint64Slice reads len(c) little-endian uint64 values from r into c.
func ReadAsUint64Slice[T constraints.Integer](r Reader, c []T) (n int64, err error) {
	var inc int64
	for i := range c {
		if inc, err = ReadAsUint64(r, &c[i]); err != nil {
			return
		}
		n += inc
	}
	return
}

// EqualAsUint64Slice compares two integer slices element-wise.
func EqualAsUint64Slice[T constraints.Integer](a, b []T) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if uint64(a[i]) != uint64(b[i]) {
			return false
		}
	}
	return true
}
