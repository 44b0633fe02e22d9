package gf

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/robobenklein/gpg-pqcrypt-sub001/utils/sampling"
)

var testDegrees = []int{5, 8, 11}

func testString(m int, op string) string {
	return fmt.Sprintf("m=%d/%s", m, op)
}

func TestField(t *testing.T) {

	_, err := NewField(17)
	require.ErrorIs(t, err, ErrFieldTooLarge)

	_, err = NewField(1)
	require.Error(t, err)

	for _, m := range testDegrees {

		f, err := NewField(m)
		require.NoError(t, err)

		source := sampling.NewSource([32]byte{'g', 'f', byte(m)})

		t.Run(testString(m, "LogExpRoundTrip"), func(t *testing.T) {
			for x := 1; x < f.Cardinality(); x++ {
				require.Equal(t, Element(x), f.Exp(f.Log(Element(x))))
			}
			for i := 0; i < f.Order(); i++ {
				require.Equal(t, i, f.Log(f.Exp(i)))
			}
		})

		t.Run(testString(m, "Inverse"), func(t *testing.T) {
			for x := 1; x < f.Cardinality(); x++ {
				require.Equal(t, Element(1), f.Mul(Element(x), f.Inv(Element(x))))
			}
		})

		t.Run(testString(m, "Distributivity"), func(t *testing.T) {
			for k := 0; k < 1000; k++ {
				x, y, z := f.Rand(source), f.Rand(source), f.Rand(source)
				require.Equal(t, f.Mul(x, y^z), f.Mul(x, y)^f.Mul(x, z))
			}
		})

		t.Run(testString(m, "SquareSqrt"), func(t *testing.T) {
			for x := 0; x < f.Cardinality(); x++ {
				e := Element(x)
				require.Equal(t, f.Mul(e, e), f.Square(e))
				require.Equal(t, e, f.Sqrt(f.Square(e)))
				require.Equal(t, e, f.Square(f.Sqrt(e)))
			}
		})

		t.Run(testString(m, "Pow"), func(t *testing.T) {
			require.Equal(t, Element(1), f.Pow(0, 0))
			require.Equal(t, Element(0), f.Pow(0, 3))
			for k := 0; k < 100; k++ {
				x := f.Rand(source)
				if x == 0 {
					continue
				}
				// x^(2^m - 1) = 1 and x^i by repeated multiplication.
				require.Equal(t, Element(1), f.Pow(x, f.Order()))
				acc := Element(1)
				for i := 0; i < 7; i++ {
					require.Equal(t, acc, f.Pow(x, i))
					acc = f.Mul(acc, x)
				}
			}
		})

		t.Run(testString(m, "Div"), func(t *testing.T) {
			for k := 0; k < 1000; k++ {
				x, y := f.Rand(source), f.Rand(source)
				if y == 0 {
					continue
				}
				require.Equal(t, x, f.Mul(f.Div(x, y), y))
			}
		})
	}
}
