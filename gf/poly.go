package gf

import (
	"github.com/robobenklein/gpg-pqcrypt-sub001/utils/sampling"
)

// Poly is a polynomial with coefficients in GF(2^m). The coefficient
// slice is the capacity fixed at allocation time; deg tracks the
// actual degree, with deg = -1 for the zero polynomial. Writing past
// the capacity panics: callers size polynomials to the algebraic
// bound of the computation.
type Poly struct {
	deg   int
	coeff []Element
}

// NewPoly allocates a zero polynomial with room for degree d.
func NewPoly(d int) *Poly {
	return &Poly{deg: -1, coeff: make([]Element, d+1)}
}

// NewPolyFrom allocates a polynomial of degree d from the given
// coefficients, which are copied. The degree is not re-tightened.
func NewPolyFrom(d int, coeffs []Element) *Poly {
	p := &Poly{deg: d, coeff: make([]Element, d+1)}
	copy(p.coeff, coeffs)
	return p
}

// Degree returns the degree of the receiver, -1 for the zero polynomial.
func (p *Poly) Degree() int { return p.deg }

// SetDegree sets the degree without inspecting the coefficients.
func (p *Poly) SetDegree(d int) { p.deg = d }

// Size returns the coefficient capacity (maximum degree plus one).
func (p *Poly) Size() int { return len(p.coeff) }

// Coeff returns coefficient i.
func (p *Poly) Coeff(i int) Element { return p.coeff[i] }

// SetCoeff sets coefficient i to a.
func (p *Poly) SetCoeff(i int, a Element) { p.coeff[i] = a }

// AddToCoeff adds a to coefficient i.
func (p *Poly) AddToCoeff(i int, a Element) { p.coeff[i] ^= a }

// Lead returns the leading coefficient.
func (p *Poly) Lead() Element { return p.coeff[p.deg] }

// Zero resets the receiver to the zero polynomial.
func (p *Poly) Zero() {
	for i := range p.coeff {
		p.coeff[i] = 0
	}
	p.deg = -1
}

// Set copies q onto the receiver, up to the receiver's capacity.
func (p *Poly) Set(q *Poly) {
	copy(p.coeff, q.coeff[:q.deg+1])
	for i := q.deg + 1; i < len(p.coeff); i++ {
		p.coeff[i] = 0
	}
	p.deg = q.deg
}

// Clone returns a deep copy of the receiver.
func (p *Poly) Clone() *Poly {
	q := &Poly{deg: p.deg, coeff: make([]Element, len(p.coeff))}
	copy(q.coeff, p.coeff)
	return q
}

// UpdateDegree re-tightens the degree after direct coefficient
// mutation.
func (p *Poly) UpdateDegree() {
	d := len(p.coeff) - 1
	for d >= 0 && p.coeff[d] == 0 {
		d--
	}
	p.deg = d
}

// Equal performs a deep equality test on degree and coefficients.
func (p *Poly) Equal(q *Poly) bool {
	if p.deg != q.deg {
		return false
	}
	for i := 0; i <= p.deg; i++ {
		if p.coeff[i] != q.coeff[i] {
			return false
		}
	}
	return true
}

// EvalPoly evaluates p at a by Horner's rule.
func (f *Field) EvalPoly(p *Poly, a Element) Element {
	if p.deg < 0 {
		return 0
	}
	r := p.coeff[p.deg]
	for i := p.deg - 1; i >= 0; i-- {
		r = f.Mul(r, a) ^ p.coeff[i]
	}
	return r
}

// MulPolyNew returns p * q in a freshly allocated polynomial.
func (f *Field) MulPolyNew(p, q *Poly) *Poly {
	if p.deg < 0 || q.deg < 0 {
		return NewPoly(0)
	}
	r := NewPoly(p.deg + q.deg)
	for i := 0; i <= p.deg; i++ {
		if p.coeff[i] == 0 {
			continue
		}
		for j := 0; j <= q.deg; j++ {
			r.coeff[i+j] ^= f.Mul(p.coeff[i], q.coeff[j])
		}
	}
	r.UpdateDegree()
	return r
}

// Rem reduces p modulo g in place.
func (f *Field) Rem(p, g *Poly) {
	for i := p.deg; i >= g.deg; i-- {
		if p.coeff[i] == 0 {
			continue
		}
		a := f.Div(p.coeff[i], g.Lead())
		for j := 0; j <= g.deg; j++ {
			p.coeff[i-g.deg+j] ^= f.Mul(a, g.coeff[j])
		}
	}
	p.UpdateDegree()
}

// QuoNew returns the quotient of p by d, leaving p untouched.
func (f *Field) QuoNew(p, d *Poly) *Poly {
	if p.deg < d.deg {
		return NewPoly(0)
	}
	rem := p.Clone()
	q := NewPoly(p.deg - d.deg)
	for i := rem.deg; i >= d.deg; i-- {
		if rem.coeff[i] == 0 {
			continue
		}
		a := f.Div(rem.coeff[i], d.Lead())
		q.coeff[i-d.deg] = a
		for j := 0; j <= d.deg; j++ {
			rem.coeff[i-d.deg+j] ^= f.Mul(a, d.coeff[j])
		}
	}
	q.UpdateDegree()
	return q
}

// GCDNew returns the monic-free greatest common divisor of p1 and p2.
func (f *Field) GCDNew(p1, p2 *Poly) *Poly {
	a := p1.Clone()
	b := p2.Clone()
	for b.deg >= 0 {
		f.Rem(a, b)
		a, b = b, a
	}
	return a
}

// ExtendedEuclid runs the extended Euclidean algorithm on p and g,
// stopping as soon as the degree of the running remainder drops below
// limit. It returns the remainder u and the Bezout coefficient v such
// that u(z) = v(z) * p(z) mod g(z).
func (f *Field) ExtendedEuclid(p, g *Poly, limit int) (u, v *Poly) {

	r0 := NewPoly(g.deg)
	r0.Set(g)
	r1 := NewPoly(g.deg)
	r1.Set(p)

	u0 := NewPoly(g.deg)
	u1 := NewPoly(g.deg)
	u1.SetCoeff(0, 1)
	u1.deg = 0

	for r1.deg >= limit {
		// r0 <- r0 mod r1, recording the quotient.
		q := NewPoly(r0.deg - r1.deg)
		for i := r0.deg; i >= r1.deg; i-- {
			if r0.coeff[i] == 0 {
				continue
			}
			a := f.Div(r0.coeff[i], r1.Lead())
			q.coeff[i-r1.deg] = a
			for j := 0; j <= r1.deg; j++ {
				r0.coeff[i-r1.deg+j] ^= f.Mul(a, r1.coeff[j])
			}
		}
		r0.UpdateDegree()
		q.UpdateDegree()

		// u0 <- u0 + q * u1.
		for i := 0; i <= q.deg; i++ {
			if q.coeff[i] == 0 {
				continue
			}
			for j := 0; j <= u1.deg; j++ {
				u0.coeff[i+j] ^= f.Mul(q.coeff[i], u1.coeff[j])
			}
		}
		u0.UpdateDegree()

		r0, r1 = r1, r0
		u0, u1 = u1, u0
	}

	return r1, u1
}

// SqModInit precomputes sq[i] = z^(d+i) mod g for i in [0, d), with
// d the degree of g. The tables feed [Field.SqMod].
func (f *Field) SqModInit(g *Poly) []*Poly {

	d := g.deg
	sq := make([]*Poly, d)

	// z^d mod g = g - z^d, i.e. the low coefficients of the monic g
	// scaled by the inverse of its leading coefficient.
	w := NewPoly(d - 1)
	c := f.Inv(g.Lead())
	for j := 0; j < d; j++ {
		w.coeff[j] = f.Mul(c, g.coeff[j])
	}
	w.UpdateDegree()
	sq[0] = w

	for i := 1; i < d; i++ {
		sq[i] = f.mulZModNew(sq[i-1], g, sq[0])
	}

	return sq
}

// mulZModNew returns (p * z) mod g, using zd = z^deg(g) mod g.
func (f *Field) mulZModNew(p, g, zd *Poly) *Poly {
	d := g.deg
	r := NewPoly(d - 1)
	for j := 0; j < d-1; j++ {
		r.coeff[j+1] = p.coeff[j]
	}
	if d-1 <= p.deg {
		a := p.coeff[d-1]
		if a != 0 {
			for j := 0; j <= zd.deg; j++ {
				r.coeff[j] ^= f.Mul(a, zd.coeff[j])
			}
		}
	}
	r.UpdateDegree()
	return r
}

// SqMod computes res = p(z)^2 mod g by expanding the squared
// coefficients of p against the precomputed sq tables, d being the
// degree of the modulus.
func (f *Field) SqMod(res, p *Poly, sq []*Poly, d int) {

	res.Zero()

	for i := 0; i < d; i++ {
		a := f.Square(p.coeff[i])
		if a == 0 {
			continue
		}
		if 2*i < d {
			res.coeff[2*i] ^= a
		} else {
			w := sq[2*i-d]
			for j := 0; j <= w.deg; j++ {
				res.coeff[j] ^= f.Mul(a, w.coeff[j])
			}
		}
	}

	res.UpdateDegree()
}

// SqrtModInit returns the t polynomials sqrtmod[i] such that
// sqrtmod[i](z)^2 = z^i mod g. A single square root of z modulo g is
// computed by repeated squaring, then lifted to the odd powers.
func (f *Field) SqrtModInit(g *Poly) []*Poly {

	t := g.deg
	sq := f.SqModInit(g)

	// sqrt(z) = z^(2^(m*t - 1)) mod g.
	sz := NewPoly(t - 1)
	if t == 1 {
		// z mod g is a constant.
		sz.SetCoeff(0, f.Div(g.coeff[0], g.coeff[1]))
		sz.UpdateDegree()
	} else {
		sz.SetCoeff(1, 1)
		sz.deg = 1
	}
	buf := NewPoly(t - 1)
	for i := 0; i < f.m*t-1; i++ {
		f.SqMod(buf, sz, sq, t)
		sz, buf = buf, sz
	}

	sqrtmod := make([]*Poly, t)
	for i := 0; i < t; i += 2 {
		p := NewPoly(t - 1)
		p.SetCoeff(i/2, 1)
		p.deg = i / 2
		sqrtmod[i] = p
	}
	for i := 1; i < t; i += 2 {
		// sqrt(z^i) = z^((i-1)/2) * sqrt(z) mod g.
		p := sz.Clone()
		for k := 0; k < (i-1)/2; k++ {
			p = f.mulZModNew(p, g, sq[0])
		}
		sqrtmod[i] = p
	}

	return sqrtmod
}

// SyndromeInit tabulates, for each support element L[i], the
// polynomial 1/(z - L[i]) mod g, the syndrome of a single error in
// position i, computed as F[i] = (g(z) - g(a)) / ((z - a) * g(a))
// with a = L[i].
func (f *Field) SyndromeInit(g *Poly, L []Element) []*Poly {

	t := g.deg
	F := make([]*Poly, len(L))

	for i := range L {
		a := L[i]

		// Synthetic division of g by (z - a): h such that
		// g(z) = (z - a) h(z) + g(a).
		h := NewPoly(t - 1)
		h.coeff[t-1] = g.coeff[t]
		for j := t - 1; j >= 1; j-- {
			h.coeff[j-1] = g.coeff[j] ^ f.Mul(a, h.coeff[j])
		}
		r := g.coeff[0] ^ f.Mul(a, h.coeff[0])

		c := f.Inv(r)
		for j := 0; j < t; j++ {
			h.coeff[j] = f.Mul(c, h.coeff[j])
		}
		h.UpdateDegree()
		F[i] = h
	}

	return F
}

// DegPPF returns the degree of the smallest-degree irreducible factor
// of g. The polynomial is irreducible exactly when the result equals
// its degree.
func (f *Field) DegPPF(g *Poly) int {

	d := g.deg
	sq := f.SqModInit(g)

	u := NewPoly(d - 1)
	if d == 1 {
		u.SetCoeff(0, f.Div(g.coeff[0], g.coeff[1]))
		u.UpdateDegree()
	} else {
		u.SetCoeff(1, 1)
		u.deg = 1
	}
	buf := NewPoly(d - 1)

	for i := 1; 2*i <= d; i++ {
		// u <- u^(2^m) mod g.
		for k := 0; k < f.m; k++ {
			f.SqMod(buf, u, sq, d)
			u, buf = buf, u
		}
		// A factor of degree i divides gcd(u - z, g).
		w := NewPoly(d - 1)
		w.Set(u)
		if d > 1 {
			w.AddToCoeff(1, 1)
		}
		w.UpdateDegree()
		if f.GCDNew(w, g).Degree() > 0 {
			return i
		}
	}

	return d
}

// RandIrredNew draws random monic polynomials of degree t until an
// irreducible one is found.
func (f *Field) RandIrredNew(t int, source *sampling.Source) *Poly {
	for {
		g := NewPoly(t)
		for i := 0; i < t; i++ {
			g.coeff[i] = f.Rand(source)
		}
		g.coeff[t] = 1
		g.deg = t
		if f.DegPPF(g) == t {
			return g
		}
	}
}
