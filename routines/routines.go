// Package routines holds low-level linear-algebra helpers shared by the
// channel, measurement and tomography packages.
package routines

import (
	"math"

	"github.com/go-faster/errors"
	"gonum.org/v1/gonum/mat"
)

// GenerateSingleEntries returns the complete operator basis of a
// dim-dimensional space: dim*dim matrices, each with a single unit entry.
// The matrix for index pair (i, j) comes at position i*dim+j.
func GenerateSingleEntries(dim int) []*mat.CDense {
	out := make([]*mat.CDense, 0, dim*dim)
	for i := 0; i < dim; i++ {
		for j := 0; j < dim; j++ {
			m := mat.NewCDense(dim, dim, nil)
			m.Set(i, j, 1)
			out = append(out, m)
		}
	}
	return out
}

// LeftPseudoInverse computes the Moore-Penrose pseudo-inverse of a via a
// thin SVD. For a full-column-rank a it satisfies pinv(a) * a = I.
func LeftPseudoInverse(a *mat.Dense) (*mat.Dense, error) {
	var svd mat.SVD
	if ok := svd.Factorize(a, mat.SVDThin); !ok {
		return nil, errors.New("SVD factorization failed")
	}
	var u, v mat.Dense
	svd.UTo(&u)
	svd.VTo(&v)
	s := svd.Values(nil)

	r, c := a.Dims()
	larger := r
	if c > larger {
		larger = c
	}
	tol := float64(larger) * eps * s[0]

	// pinv = V * diag(1/s) * U^T, zeroing singular values below tol.
	k := len(s)
	scaled := mat.NewDense(c, k, nil)
	for i := 0; i < c; i++ {
		for j := 0; j < k; j++ {
			if s[j] > tol {
				scaled.Set(i, j, v.At(i, j)/s[j])
			}
		}
	}
	out := mat.NewDense(c, r, nil)
	out.Mul(scaled, u.T())
	return out, nil
}

// Kron returns the Kronecker product of two real matrices.
func Kron(a, b *mat.Dense) *mat.Dense {
	var out mat.Dense
	out.Kronecker(a, b)
	return &out
}

var eps = math.Nextafter(1, 2) - 1
