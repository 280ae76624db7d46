// Package geometry provides distance metrics between quantum states.
// Spectral quantities of a Hermitian operator X + iY are computed through
// its real symmetric embedding [[X, -Y], [Y, X]], whose spectrum is that
// of the operator with every eigenvalue doubled.
package geometry

import (
	"math"

	"github.com/go-faster/errors"
	"gonum.org/v1/gonum/mat"

	"github.com/qst-team/qst-engine/qobj"
)

// DistanceFunc scores how far apart two states are. Larger is farther,
// identical states score zero.
type DistanceFunc func(a, b *qobj.Qobj) float64

// ByName resolves a metric by its configuration key.
func ByName(name string) (DistanceFunc, error) {
	switch name {
	case "hs":
		return HS, nil
	case "trace":
		return Trace, nil
	case "if":
		return Infidelity, nil
	default:
		return nil, errors.Errorf("unknown distance metric: %s", name)
	}
}

// HS is the Hilbert-Schmidt distance sqrt(Tr[(a-b)^2] / 2).
func HS(a, b *qobj.Qobj) float64 {
	dim := a.Size()
	var sum float64
	for r := 0; r < dim; r++ {
		for c := 0; c < dim; c++ {
			d := a.At(r, c) - b.At(r, c)
			sum += real(d)*real(d) + imag(d)*imag(d)
		}
	}
	return math.Sqrt(sum / 2)
}

// Trace is the trace distance 0.5 * sum |eig(a-b)|.
func Trace(a, b *qobj.Qobj) float64 {
	delta := a.Add(b.Scale(-1))
	var sum float64
	for _, v := range hermitianEigenvalues(delta) {
		sum += math.Abs(v)
	}
	// The embedding doubles every eigenvalue.
	return sum / 4
}

// Infidelity is 1 - F(a, b) with the Uhlmann fidelity
// F = (Tr sqrt(sqrt(a) b sqrt(a)))^2.
func Infidelity(a, b *qobj.Qobj) float64 {
	sqrtA := hermitianApply(a, safeSqrt)
	inner := sqrtA.Mul(b).Mul(sqrtA)
	s := hermitianApply(inner, safeSqrt)
	f := real(s.Trace())
	inf := 1 - f*f
	if inf < 0 {
		return 0
	}
	return inf
}

func safeSqrt(v float64) float64 {
	if v <= 0 {
		return 0
	}
	return math.Sqrt(v)
}

// embed maps the Hermitian operator X + iY to [[X, -Y], [Y, X]].
func embed(q *qobj.Qobj) *mat.SymDense {
	n := q.Size()
	out := mat.NewSymDense(2*n, nil)
	for r := 0; r < n; r++ {
		for c := r; c < n; c++ {
			v := q.At(r, c)
			out.SetSym(r, c, real(v))
			out.SetSym(n+r, n+c, real(v))
			out.SetSym(r, n+c, -imag(v))
		}
		for c := 0; c < r; c++ {
			out.SetSym(r, n+c, -imag(q.At(r, c)))
		}
	}
	return out
}

func hermitianEigenvalues(q *qobj.Qobj) []float64 {
	var es mat.EigenSym
	if ok := es.Factorize(embed(q), false); !ok {
		panic("geometry: eigendecomposition failed")
	}
	return es.Values(nil)
}

// hermitianApply evaluates f on the spectrum of q: U f(Lambda) U^H.
func hermitianApply(q *qobj.Qobj, f func(float64) float64) *qobj.Qobj {
	n := q.Size()
	var es mat.EigenSym
	if ok := es.Factorize(embed(q), true); !ok {
		panic("geometry: eigendecomposition failed")
	}
	vals := es.Values(nil)
	var vecs mat.Dense
	es.VectorsTo(&vecs)

	scaled := mat.NewDense(2*n, 2*n, nil)
	for i := 0; i < 2*n; i++ {
		fv := f(vals[i])
		for r := 0; r < 2*n; r++ {
			scaled.Set(r, i, vecs.At(r, i)*fv)
		}
	}
	var full mat.Dense
	full.Mul(scaled, vecs.T())

	// Un-embed: X' is the top-left block, Y' the bottom-left one.
	out := mat.NewCDense(n, n, nil)
	for r := 0; r < n; r++ {
		for c := 0; c < n; c++ {
			out.Set(r, c, complex(full.At(r, c), full.At(n+r, c)))
		}
	}
	res, err := qobj.New(out)
	if err != nil {
		panic(err)
	}
	return res
}
