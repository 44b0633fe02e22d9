package buffer

import (
	"io"

	"golang.org/x/exp/constraints"
)

// Writer is the interface a stream must implement for the typed write
// helpers of this package. [bufio.Writer] and [Buffer] both comply.
//
// When writing many values to an io.Writer, wrap it once in a
// bufio.Writer; when writing to a pre-allocated []byte, pass
// NewBuffer(b).
type Writer interface {
	io.Writer
	Flush() error
}

// WriteUint8 writes c on w.
func WriteUint8(w Writer, c uint8) (n int64, err error) {
	nint, err := w.Write([]byte{c})
	return int64(nint), err
}

// WriteUint16 writes c on w in little-endian order.
func WriteUint16(w Writer, c uint16) (n int64, err error) {
	nint, err := w.Write([]byte{byte(c), byte(c >> 8)})
	return int64(nint), err
}

// WriteUint32 writes c on w in little-endian order.
func WriteUint32(w Writer, c uint32) (n int64, err error) {
	nint, err := w.Write([]byte{byte(c), byte(c >> 8), byte(c >> 16), byte(c >> 24)})
	return int64(nint), err
}

// WriteUint64 writes c on w in little-endian order.
func WriteUint64(w Writer, c uint64) (n int64, err error) {
	nint, err := w.Write([]byte{
		byte(c), byte(c >> 8), byte(c >> 16), byte(c >> 24),
		byte(c >> 32), byte(c >> 40), byte(c >> 48), byte(c >> 56),
	})
	return int64(nint), err
}

// WriteAsUint8 writes c as an uint8 on w.
func WriteAsUint8[T constraints.Integer](w Writer, c T) (n int64, err error) {
	return WriteUint8(w, uint8(c))
}

// WriteAsUint16 writes c as an uint16 on w.
func WriteAsUint16[T constraints.Integer](w Writer, c T) (n int64, err error) {
	return WriteUint16(w, uint16(c))
}

// WriteAsUint32 writes c as an uint32 on w.
func WriteAsUint32[T constraints.Integer](w Writer, c T) (n int64, err error) {
	return WriteUint32(w, uint32(c))
}

// WriteAsUint64 writes c as an uint64 on w.
func WriteAsUint64[T constraints.Integer](w Writer, c T) (n int64, err error) {
	return WriteUint64(w, uint64(c))
}

// WriteAsUint8Slice writes the slice c as uint8 values on w.
func WriteAsUint8Slice[T constraints.Integer](w Writer, c []T) (n int64, err error) {
	var inc int64
	for i := range c {
		if inc, err = WriteUint8(w, uint8(c[i])); err != nil {
			return
		}
		n += inc
	}
	return
}

// WriteAsUint16Slice writes the slice c as little-endian uint16 values on w.
func WriteAsUint16Slice[T constraints.Integer](w Writer, c []T) (n int64, err error) {
	var inc int64
	for i := range c {
		if inc, err = WriteUint16(w, uint16(c[i])); err != nil {
			return
		}
		n += inc
	}
	return
}

// WriteAsUint32Slice writes the slice c as little-endian uint32 values on w.
func WriteAsUint32Slice[T constraints.Integer](w Writer, c []T) (n int64, err error) {
	var inc int64
	for i := range c {
		if inc, err = WriteUint32(w, uint32(c[i])); err != nil {
			return
		}
		n += inc
	}
	return
}

// WriteAsUint64Slice writes the slice c as little-endian uint64 values on w.
func WriteAsUint64Slice[T constraints.Integer](w Writer, c []T) (n int64, err error) {
	var inc int64
	for i := range c {
		if inc, err = WriteUint64(w, uint64(c[i])); err != nil {
			return
		}
		n += inc
	}
	return
}
