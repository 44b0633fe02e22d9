package gf

import (
	"bufio"
	"io"

	"github.com/robobenklein/gpg-pqcrypt-sub001/utils/buffer"
	"github.com/robobenklein/gpg-pqcrypt-sub001/utils/structs"
)

// BinarySize returns the serialized size of the object in bytes.
func (p *Poly) BinarySize() int {
	return 8 + structs.Vector[uint16](make([]uint16, len(p.coeff))).BinarySize()
}

// WriteTo writes the object on an io.Writer: the degree followed by
// the full coefficient slice, so the capacity survives the round
// trip. It implements the io.WriterTo interface.
//
// Unless w implements [buffer.Writer], it is wrapped in a bufio.Writer.
func (p *Poly) WriteTo(w io.Writer) (n int64, err error) {
	switch w := w.(type) {
	case buffer.Writer:
		var inc int64
		if inc, err = buffer.WriteAsUint64(w, int64(p.deg)); err != nil {
			return n + inc, err
		}
		n += inc
		v := make(structs.Vector[uint16], len(p.coeff))
		for i, c := range p.coeff {
			v[i] = uint16(c)
		}
		if inc, err = v.WriteTo(w); err != nil {
			return n + inc, err
		}
		return n + inc, nil
	default:
		return p.WriteTo(bufio.NewWriter(w))
	}
}

// ReadFrom reads the object from an io.Reader. It implements the
// io.ReaderFrom interface.
func (p *Poly) ReadFrom(r io.Reader) (n int64, err error) {
	var inc int64
	var deg int64
	if inc, err = buffer.ReadAsUint64(r, &deg); err != nil {
		return n + inc, err
	}
	n += inc
	var v structs.Vector[uint16]
	if inc, err = v.ReadFrom(r); err != nil {
		return n + inc, err
	}
	p.coeff = make([]Element, len(v))
	for i, c := range v {
		p.coeff[i] = Element(c)
	}
	p.deg = int(deg)
	return n + inc, nil
}

// MarshalBinary encodes the object on a newly allocated slice of bytes.
func (p *Poly) MarshalBinary() ([]byte, error) {
	buf := buffer.NewBufferSize(p.BinarySize())
	_, err := p.WriteTo(buf)
	return buf.Bytes(), err
}

// UnmarshalBinary decodes a slice of bytes generated by MarshalBinary
// or WriteTo on the object.
func (p *Poly) UnmarshalBinary(b []byte) error {
	_, err := p.ReadFrom(buffer.NewBuffer(b))
	return err
}
