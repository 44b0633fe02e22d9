package buffer

import (
	"bufio"
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBuffer(t *testing.T) {

	t.Run("TypedRoundTrip", func(t *testing.T) {
		b := NewBufferSize(64)

		_, err := WriteUint8(b, 0xAB)
		require.NoError(t, err)
		_, err = WriteUint16(b, 0xBEEF)
		require.NoError(t, err)
		_, err = WriteUint32(b, 0xDEADBEEF)
		require.NoError(t, err)
		_, err = WriteUint64(b, 0x0123456789ABCDEF)
		require.NoError(t, err)

		var v8 uint8
		var v16 uint16
		var v32 uint32
		var v64 uint64
		_, err = ReadUint8(b, &v8)
		require.NoError(t, err)
		_, err = ReadUint16(b, &v16)
		require.NoError(t, err)
		_, err = ReadUint32(b, &v32)
		require.NoError(t, err)
		_, err = ReadUint64(b, &v64)
		require.NoError(t, err)

		require.Equal(t, uint8(0xAB), v8)
		require.Equal(t, uint16(0xBEEF), v16)
		require.Equal(t, uint32(0xDEADBEEF), v32)
		require.Equal(t, uint64(0x0123456789ABCDEF), v64)
	})

	t.Run("LittleEndian", func(t *testing.T) {
		b := NewBufferSize(8)
		_, err := WriteUint32(b, 0x01020304)
		require.NoError(t, err)
		require.Equal(t, []byte{0x04, 0x03, 0x02, 0x01}, b.Bytes())
	})

	t.Run("GenericSlices", func(t *testing.T) {
		b := NewBufferSize(64)
		in := []uint16{1, 2, 65535, 42}
		_, err := WriteAsUint16Slice(b, in)
		require.NoError(t, err)
		out := make([]uint16, len(in))
		_, err = ReadAsUint16Slice(b, out)
		require.NoError(t, err)
		require.True(t, EqualAsUint64Slice(in, out))
	})

	t.Run("BufioCompat", func(t *testing.T) {
		var raw bytes.Buffer
		w := bufio.NewWriter(&raw)
		_, err := WriteAsUint64[int](w, 77)
		require.NoError(t, err)
		require.NoError(t, w.Flush())

		var v int
		_, err = ReadAsUint64(bufio.NewReader(&raw), &v)
		require.NoError(t, err)
		require.Equal(t, 77, v)
	})
}
