package mce

import (
	"fmt"

	"github.com/robobenklein/gpg-pqcrypt-sub001/gf"
	"github.com/robobenklein/gpg-pqcrypt-sub001/mat"
	"github.com/robobenklein/gpg-pqcrypt-sub001/utils/sampling"
)

// maxKeyGenRetries bounds the internal retries on a rank-deficient
// parity-check matrix. Each retry draws a fresh Goppa polynomial, and
// rank deficiency is rare, so the bound is only a safeguard against a
// stuck randomness source.
const maxKeyGenRetries = 256

// KeyGenerator derives key pairs from a deterministic randomness
// source.
type KeyGenerator struct {
	params Parameters
	source *sampling.Source
	field  *gf.Field
}

// NewKeyGenerator instantiates a new [KeyGenerator] for the given
// parameters, drawing from source.
func NewKeyGenerator(params Parameters, source *sampling.Source) *KeyGenerator {
	field, err := gf.NewField(params.M())
	if err != nil {
		// Parameters are validated, the field degree is in range.
		panic(err)
	}
	return &KeyGenerator{params: params, source: source, field: field}
}

// GenKeyPairNew generates a fresh key pair: a random support
// permutation, a random irreducible Goppa polynomial whose
// parity-check matrix reduces to systematic form, the flattened
// public column table, and the secret decoding tables.
func (kgen *KeyGenerator) GenKeyPairNew() (*PublicKey, *SecretKey, error) {

	params := kgen.params
	f := kgen.field
	n := params.Length()
	t := params.T()
	m := params.M()
	r := params.Codimension()

	// Support permutation by Fisher-Yates.
	L := make([]gf.Element, n)
	for i := range L {
		L[i] = gf.Element(i)
	}
	for i := 0; i < n; i++ {
		j := i + int(kgen.source.Uint32()%uint32(n-i))
		L[i], L[j] = L[j], L[i]
	}

	// Draw Goppa polynomials until the parity-check matrix has full
	// rank.
	var g *gf.Poly
	var H *mat.Matrix
	var perm []int
	for retry := 0; ; retry++ {
		if retry == maxKeyGenRetries {
			return nil, nil, fmt.Errorf("key generation: %w after %d attempts", mat.ErrSingular, retry)
		}
		g = f.RandIrredNew(t, kgen.source)
		H = kgen.parityCheck(L, g)
		var err error
		if perm, err = H.Echelonize(); err == nil {
			break
		}
	}

	// Reorder the support so the last r columns of H are the identity.
	Laux := make([]gf.Element, n)
	for i := 0; i < n; i++ {
		Laux[i] = L[perm[i]]
	}
	copy(L, Laux)

	// The public key is the redundancy part A read through the
	// permutation, one row per information position.
	pk := NewPublicKey(params)
	for i := 0; i < params.Dimension(); i++ {
		row := pk.Row(i)
		for j := 0; j < r; j++ {
			if H.Bit(j, perm[i]) != 0 {
				row[j/64] |= 1 << (j % 64)
			}
		}
	}

	sk := NewSecretKey(params)
	sk.G.Set(g)

	// Column table: the syndrome of each unit vector, flattened into
	// Codimension-bit rows with m bits per coefficient.
	F := f.SyndromeInit(g, L)
	for i := 0; i < n; i++ {
		row := sk.Row(i)
		for l := 0; l < t; l++ {
			k := (l * m) / 64
			j := (l * m) % 64
			c := uint64(F[i].Coeff(l))
			row[k] ^= c << j
			if j+m > 64 {
				row[k+1] ^= c >> (64 - j)
			}
		}
	}

	for i := 0; i < n; i++ {
		sk.Linv[L[i]] = gf.Element(i)
	}

	sqrtmod := f.SqrtModInit(g)
	for i := range sqrtmod {
		sk.SqrtMod[i].Set(sqrtmod[i])
	}

	return pk, sk, nil
}

// parityCheck builds the r x n parity-check matrix of the Goppa code:
// column i is (1/g(L[i])) * (1, L[i], ..., L[i]^(t-1)) with each field
// element expanded into m bits.
func (kgen *KeyGenerator) parityCheck(L []gf.Element, g *gf.Poly) *mat.Matrix {

	params := kgen.params
	f := kgen.field
	n := params.Length()
	t := params.T()
	m := params.M()

	H := mat.New(params.Codimension(), n)

	for i := 0; i < n; i++ {
		x := f.Inv(f.EvalPoly(g, L[i]))
		y := x
		for j := 0; j < t; j++ {
			for k := 0; k < m; k++ {
				if y&(1<<k) != 0 {
					H.SetBit(j*m+k, i)
				}
			}
			y = f.Mul(y, L[i])
		}
	}

	return H
}
