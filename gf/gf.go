// Package gf implements the finite field GF(2^m) for 2 <= m <= 16 and
// polynomials with coefficients in it. Field arithmetic goes through
// log/antilog tables built from a fixed primitive polynomial per
// extension degree.
package gf

import (
	"errors"
	"fmt"

	"github.com/robobenklein/gpg-pqcrypt-sub001/utils/sampling"
)

// MaxExtensionDegree is the largest supported extension degree.
const MaxExtensionDegree = 16

// MinExtensionDegree is the smallest supported extension degree.
const MinExtensionDegree = 2

// ErrFieldTooLarge is returned when instantiating a field with an
// extension degree above [MaxExtensionDegree].
var ErrFieldTooLarge = errors.New("extension degree not implemented")

// Element is an element of GF(2^m), stored as an integer in [0, 2^m).
type Element uint16

// primPoly[m] is the primitive polynomial used to build GF(2^m).
var primPoly = [MaxExtensionDegree + 1]uint32{
	0o1,      // extension degree 0, never used
	0o3,      // extension degree 1, never used
	0o7,      // extension degree 2
	0o13,     // extension degree 3
	0o23,     // extension degree 4
	0o45,     // extension degree 5
	0o103,    // extension degree 6
	0o203,    // extension degree 7
	0o435,    // extension degree 8
	0o1041,   // extension degree 9
	0o2011,   // extension degree 10
	0o4005,   // extension degree 11
	0o10123,  // extension degree 12
	0o20033,  // extension degree 13
	0o42103,  // extension degree 14
	0o100003, // extension degree 15
	0o210013, // extension degree 16
}

// Field holds the log and antilog tables of GF(2^m).
type Field struct {
	m    int
	card int
	ord  int
	exp  []Element
	log  []Element
}

// NewField builds the tables of GF(2^m).
func NewField(m int) (*Field, error) {

	if m > MaxExtensionDegree {
		return nil, fmt.Errorf("%w: m=%d > %d", ErrFieldTooLarge, m, MaxExtensionDegree)
	}

	if m < MinExtensionDegree {
		return nil, fmt.Errorf("invalid extension degree m=%d: must be at least %d", m, MinExtensionDegree)
	}

	f := &Field{
		m:    m,
		card: 1 << m,
		ord:  (1 << m) - 1,
	}

	// exp[i] = alpha^i, with exp[ord] = exp[0] = 1 so that the single
	// step reduction of modQ1 never indexes out of the table.
	f.exp = make([]Element, f.card)
	f.exp[0] = 1
	for i := 1; i < f.ord; i++ {
		v := uint32(f.exp[i-1]) << 1
		if f.exp[i-1]&(1<<(m-1)) != 0 {
			v ^= primPoly[m]
		}
		f.exp[i] = Element(v)
	}
	f.exp[f.ord] = 1

	// log[alpha^i] = i, with log[0] = ord as a sentinel.
	f.log = make([]Element, f.card)
	f.log[0] = Element(f.ord)
	for i := 0; i < f.ord; i++ {
		f.log[f.exp[i]] = Element(i)
	}

	return f, nil
}

// M returns the extension degree of the field.
func (f *Field) M() int { return f.m }

// Cardinality returns 2^m.
func (f *Field) Cardinality() int { return f.card }

// Order returns the multiplicative order 2^m - 1.
func (f *Field) Order() int { return f.ord }

// modQ1 reduces d modulo 2^m - 1 in a single step.
// Valid for 0 <= d and whenever the intermediate sum stays within the
// table, which holds for all the call sites below (sums of two logs,
// doubled logs, and the square-root shift).
func (f *Field) modQ1(d int) int {
	return (d & f.ord) + (d >> f.m)
}

// Add returns x + y. Addition in GF(2^m) is a xor and does not depend
// on the tables.
func Add(x, y Element) Element { return x ^ y }

// Exp returns alpha^i for 0 <= i <= 2^m - 1.
func (f *Field) Exp(i int) Element { return f.exp[i] }

// Log returns i such that x = alpha^i. Log(0) is the sentinel 2^m - 1.
func (f *Field) Log(x Element) int { return int(f.log[x]) }

// Mul returns x * y.
func (f *Field) Mul(x, y Element) Element {
	if x == 0 || y == 0 {
		return 0
	}
	return f.exp[f.modQ1(int(f.log[x])+int(f.log[y]))]
}

// Square returns x * x.
func (f *Field) Square(x Element) Element {
	if x == 0 {
		return 0
	}
	return f.exp[f.modQ1(int(f.log[x])<<1)]
}

// Sqrt returns the square root of x, which always exists in
// characteristic 2.
func (f *Field) Sqrt(x Element) Element {
	if x == 0 {
		return 0
	}
	return f.exp[f.modQ1(int(f.log[x])<<(f.m-1))]
}

// Inv returns the multiplicative inverse of a nonzero x.
func (f *Field) Inv(x Element) Element {
	if x == 0 {
		return 0
	}
	return f.exp[f.ord-int(f.log[x])]
}

// Div returns x / y for a nonzero y.
func (f *Field) Div(x, y Element) Element {
	if x == 0 {
		return 0
	}
	return f.exp[f.modQ1(int(f.log[x])+f.ord-int(f.log[y]))]
}

// Pow returns x^i for i >= 0, with the convention 0^0 = 1.
func (f *Field) Pow(x Element, i int) Element {
	if i == 0 {
		return 1
	}
	if x == 0 {
		return 0
	}
	for i>>f.m != 0 {
		i = (i & f.ord) + (i >> f.m)
	}
	i *= int(f.log[x])
	for i>>f.m != 0 {
		i = (i & f.ord) + (i >> f.m)
	}
	return f.exp[i]
}

// Rand returns a field element drawn uniformly from the source.
func (f *Field) Rand(source *sampling.Source) Element {
	return Element(source.Uint32()) & Element(f.ord)
}
