package buffer

import (
	"encoding"
	"io"
	"reflect"
	"testing"

	"github.com/stretchr/testify/require"
)

// Serializer is the interface of objects testable with
// [RequireSerializerCorrect].
type Serializer interface {
	io.WriterTo
	io.ReaderFrom
	encoding.BinaryMarshaler
	encoding.BinaryUnmarshaler
	BinarySize() int
}

// RequireSerializerCorrect checks that the binary encoding of x is
// self-consistent: the announced BinarySize matches the bytes actually
// produced, and decoding them into a fresh instance of the same type
// yields an equal object.
func RequireSerializerCorrect(t *testing.T, x Serializer) {
	t.Helper()

	data, err := x.MarshalBinary()
	require.NoError(t, err)
	require.Equal(t, x.BinarySize(), len(data))

	y, ok := reflect.New(reflect.TypeOf(x).Elem()).Interface().(Serializer)
	require.True(t, ok)
	require.NoError(t, y.UnmarshalBinary(data))
	require.Equal(t, x, y)

	n, err := y.(io.WriterTo).WriteTo(NewBufferSize(x.BinarySize()))
	require.NoError(t, err)
	require.Equal(t, int64(len(data)), n)
}
