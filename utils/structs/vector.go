package structs

import (
	"bufio"
	"fmt"
	"io"

	"github.com/robobenklein/gpg-pqcrypt-sub001/utils/buffer"
)

// Vector is a slice of components of type T. T can be an unsigned
// integer of 8, 16, 32 or 64 bits, int, or a struct implementing
// [io.WriterTo], [io.ReaderFrom] and [BinarySizer] depending on the
// method called.
type Vector[T any] []T

// Clone returns a deep copy of the receiver. Struct components must
// implement [Cloner].
func (v Vector[T]) Clone() (vcpy Vector[T]) {
	var t T
	vcpy = make([]T, len(v))
	switch any(t).(type) {
	case uint8, uint16, uint32, uint64, int:
		copy(vcpy, v)
	default:
		if _, ok := any(&t).(Cloner[T]); !ok {
			panic(fmt.Errorf("vector component of type %T does not comply to %T", t, new(Cloner[T])))
		}
		for i := range v {
			vcpy[i] = *any(&v[i]).(Cloner[T]).Clone()
		}
	}
	return
}

// BinarySize returns the serialized size of the object in bytes.
func (v Vector[T]) BinarySize() (size int) {
	var t T
	switch any(t).(type) {
	case uint8:
		return 8 + len(v)
	case uint16:
		return 8 + 2*len(v)
	case uint32:
		return 8 + 4*len(v)
	case uint64, int:
		return 8 + 8*len(v)
	default:
		if _, ok := any(&t).(BinarySizer); !ok {
			panic(fmt.Errorf("vector component of type %T does not comply to %T", t, new(BinarySizer)))
		}
		size = 8
		for i := range v {
			size += any(&v[i]).(BinarySizer).BinarySize()
		}
	}
	return
}

// WriteTo writes the object on an io.Writer. It implements the
// io.WriterTo interface, and writes exactly BinarySize() bytes.
//
// Unless w implements [buffer.Writer], it is wrapped in a bufio.Writer.
func (v Vector[T]) WriteTo(w io.Writer) (n int64, err error) {
	switch w := w.(type) {
	case buffer.Writer:

		var inc int64
		if inc, err = buffer.WriteAsUint64[int](w, len(v)); err != nil {
			return inc, fmt.Errorf("buffer.WriteAsUint64[int]: %w", err)
		}
		n += inc

		var t T
		switch any(t).(type) {
		case uint8:
			inc, err = buffer.WriteAsUint8Slice[uint8](w, []uint8(any(v).(Vector[uint8])))
		case uint16:
			inc, err = buffer.WriteAsUint16Slice[uint16](w, []uint16(any(v).(Vector[uint16])))
		case uint32:
			inc, err = buffer.WriteAsUint32Slice[uint32](w, []uint32(any(v).(Vector[uint32])))
		case uint64:
			inc, err = buffer.WriteAsUint64Slice[uint64](w, []uint64(any(v).(Vector[uint64])))
		case int:
			inc, err = buffer.WriteAsUint64Slice[int](w, []int(any(v).(Vector[int])))
		default:
			if _, ok := any(&t).(io.WriterTo); !ok {
				return n, fmt.Errorf("vector component of type %T does not comply to %T", t, new(io.WriterTo))
			}
			for i := range v {
				if inc, err = any(&v[i]).(io.WriterTo).WriteTo(w); err != nil {
					return n + inc, fmt.Errorf("%T.WriteTo: %w", t, err)
				}
				n += inc
			}
			return n, w.Flush()
		}

		if err != nil {
			return n + inc, fmt.Errorf("write %T slice: %w", t, err)
		}

		return n + inc, w.Flush()

	default:
		return v.WriteTo(bufio.NewWriter(w))
	}
}

// ReadFrom reads the object from an io.Reader. It implements the
// io.ReaderFrom interface.
//
// Unless r implements [buffer.Reader], it is wrapped in a bufio.Reader.
func (v *Vector[T]) ReadFrom(r io.Reader) (n int64, err error) {
	switch r := r.(type) {
	case buffer.Reader:

		var inc int64
		var size int
		if inc, err = buffer.ReadAsUint64[int](r, &size); err != nil {
			return inc, fmt.Errorf("buffer.ReadAsUint64[int]: %w", err)
		}
		n += inc

		if cap(*v) < size {
			*v = make([]T, size)
		}
		*v = (*v)[:size]

		var t T
		switch any(t).(type) {
		case uint8:
			inc, err = buffer.ReadAsUint8Slice[uint8](r, []uint8(any(*v).(Vector[uint8])))
		case uint16:
			inc, err = buffer.ReadAsUint16Slice[uint16](r, []uint16(any(*v).(Vector[uint16])))
		case uint32:
			inc, err = buffer.ReadAsUint32Slice[uint32](r, []uint32(any(*v).(Vector[uint32])))
		case uint64:
			inc, err = buffer.ReadAsUint64Slice[uint64](r, []uint64(any(*v).(Vector[uint64])))
		case int:
			inc, err = buffer.ReadAsUint64Slice[int](r, []int(any(*v).(Vector[int])))
		default:
			if _, ok := any(&t).(io.ReaderFrom); !ok {
				return n, fmt.Errorf("vector component of type %T does not comply to %T", t, new(io.ReaderFrom))
			}
			for i := range *v {
				if inc, err = any(&(*v)[i]).(io.ReaderFrom).ReadFrom(r); err != nil {
					return n + inc, fmt.Errorf("%T.ReadFrom: %w", t, err)
				}
				n += inc
			}
			return n, nil
		}

		if err != nil {
			return n + inc, fmt.Errorf("read %T slice: %w", t, err)
		}

		return n + inc, nil

	default:
		return v.ReadFrom(bufio.NewReader(r))
	}
}

// MarshalBinary encodes the object on a newly allocated slice of bytes.
func (v Vector[T]) MarshalBinary() (p []byte, err error) {
	buf := buffer.NewBufferSize(v.BinarySize())
	_, err = v.WriteTo(buf)
	return buf.Bytes(), err
}

// UnmarshalBinary decodes a slice of bytes generated by MarshalBinary
// or WriteTo on the object.
func (v *Vector[T]) UnmarshalBinary(p []byte) (err error) {
	_, err = v.ReadFrom(buffer.NewBuffer(p))
	return
}

// Equal performs a deep equality test. Struct components must
// implement [Equatable].
func (v Vector[T]) Equal(other Vector[T]) bool {
	if len(v) != len(other) {
		return false
	}
	var t T
	switch any(t).(type) {
	case uint8, uint16, uint32, uint64, int:
		for i := range v {
			if any(v[i]) != any(other[i]) {
				return false
			}
		}
		return true
	default:
		if _, ok := any(&t).(Equatable[T]); !ok {
			panic(fmt.Errorf("vector component of type %T does not comply to %T", t, new(Equatable[T])))
		}
		for i := range v {
			if !any(&v[i]).(Equatable[T]).Equal(&other[i]) {
				return false
			}
		}
		return true
	}
}
