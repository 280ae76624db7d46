// Package qobj provides the density-operator value type shared by the
// channel and tomography packages. A Qobj is a Hermitian operator on the
// Hilbert space of n qubits, stored as a dense complex matrix together
// with its Bloch-vector coordinate view over the tensor-product Pauli
// basis.
package qobj

import (
	"math/bits"

	"github.com/go-faster/errors"
	"gonum.org/v1/gonum/mat"
)

// Qobj is an operator on a 2^n dimensional space.
// All algebraic methods return new values and leave the receiver untouched.
// Dimension mismatches between operands panic, following the gonum/mat
// convention.
type Qobj struct {
	matrix  *mat.CDense
	nQubits int
}

// New wraps a square complex matrix whose side length is a power of two.
func New(m *mat.CDense) (*Qobj, error) {
	r, c := m.Dims()
	if r != c {
		return nil, errors.Errorf("operator matrix must be square, got %dx%d", r, c)
	}
	n, ok := qubitCountForSide(r)
	if !ok {
		return nil, errors.Errorf("operator side length %d is not a power of 2", r)
	}
	out := mat.NewCDense(r, c, nil)
	out.Copy(m)
	return &Qobj{matrix: out, nQubits: n}, nil
}

// FromBloch reconstructs the operator from its Bloch coordinates
// rho = sum_i b_i sigma_i over the n-qubit Pauli basis. The vector length
// must be a power of 4.
func FromBloch(b []float64) (*Qobj, error) {
	n, ok := qubitCountForBasisSize(len(b))
	if !ok {
		return nil, errors.Errorf("bloch vector length %d is not a power of 4", len(b))
	}
	dim := 1 << n
	out := mat.NewCDense(dim, dim, nil)
	basis := PauliBasis(n)
	for i, coeff := range b {
		if coeff == 0 {
			continue
		}
		p := basis[i]
		for r := 0; r < dim; r++ {
			for c := 0; c < dim; c++ {
				out.Set(r, c, out.At(r, c)+complex(coeff, 0)*p.At(r, c))
			}
		}
	}
	return &Qobj{matrix: out, nQubits: n}, nil
}

// Zeros returns the zero operator on nQubits qubits.
func Zeros(nQubits int) *Qobj {
	dim := 1 << nQubits
	return &Qobj{matrix: mat.NewCDense(dim, dim, nil), nQubits: nQubits}
}

// Identity returns the identity operator on nQubits qubits.
func Identity(nQubits int) *Qobj {
	dim := 1 << nQubits
	m := mat.NewCDense(dim, dim, nil)
	for i := 0; i < dim; i++ {
		m.Set(i, i, 1)
	}
	return &Qobj{matrix: m, nQubits: nQubits}
}

// MaximallyMixed returns I/2^n, the state with all non-fixed Bloch
// coordinates equal to zero.
func MaximallyMixed(nQubits int) *Qobj {
	dim := 1 << nQubits
	m := mat.NewCDense(dim, dim, nil)
	v := complex(1/float64(dim), 0)
	for i := 0; i < dim; i++ {
		m.Set(i, i, v)
	}
	return &Qobj{matrix: m, nQubits: nQubits}
}

// NQubits returns the number of qubits the operator acts on.
func (q *Qobj) NQubits() int { return q.nQubits }

// Size returns the side length 2^n of the matrix.
func (q *Qobj) Size() int { return 1 << q.nQubits }

// At returns the matrix element at (i, j).
func (q *Qobj) At(i, j int) complex128 { return q.matrix.At(i, j) }

// Matrix exposes the underlying matrix. Callers must not mutate it.
func (q *Qobj) Matrix() *mat.CDense { return q.matrix }

// Bloch returns the coordinate vector b_i = Tr(rho sigma_i) / 2^n of
// length 4^n. The first coordinate carries the trace normalization.
func (q *Qobj) Bloch() []float64 {
	basis := PauliBasis(q.nQubits)
	dim := q.Size()
	scale := 1 / float64(dim)
	out := make([]float64, len(basis))
	for i, p := range basis {
		var tr complex128
		for r := 0; r < dim; r++ {
			for c := 0; c < dim; c++ {
				tr += q.matrix.At(r, c) * p.At(c, r)
			}
		}
		out[i] = real(tr) * scale
	}
	return out
}

// Trace returns the matrix trace.
func (q *Qobj) Trace() complex128 {
	var tr complex128
	for i := 0; i < q.Size(); i++ {
		tr += q.matrix.At(i, i)
	}
	return tr
}

// Mul returns the matrix product q * o.
func (q *Qobj) Mul(o *Qobj) *Qobj {
	dim := q.Size()
	if o.Size() != dim {
		panic("qobj: dimension mismatch in Mul")
	}
	out := mat.NewCDense(dim, dim, nil)
	for r := 0; r < dim; r++ {
		for c := 0; c < dim; c++ {
			var sum complex128
			for k := 0; k < dim; k++ {
				sum += q.matrix.At(r, k) * o.matrix.At(k, c)
			}
			out.Set(r, c, sum)
		}
	}
	return &Qobj{matrix: out, nQubits: q.nQubits}
}

// Add returns the elementwise sum q + o.
func (q *Qobj) Add(o *Qobj) *Qobj {
	dim := q.Size()
	if o.Size() != dim {
		panic("qobj: dimension mismatch in Add")
	}
	out := mat.NewCDense(dim, dim, nil)
	for r := 0; r < dim; r++ {
		for c := 0; c < dim; c++ {
			out.Set(r, c, q.matrix.At(r, c)+o.matrix.At(r, c))
		}
	}
	return &Qobj{matrix: out, nQubits: q.nQubits}
}

// Scale returns f * q.
func (q *Qobj) Scale(f complex128) *Qobj {
	dim := q.Size()
	out := mat.NewCDense(dim, dim, nil)
	for r := 0; r < dim; r++ {
		for c := 0; c < dim; c++ {
			out.Set(r, c, f*q.matrix.At(r, c))
		}
	}
	return &Qobj{matrix: out, nQubits: q.nQubits}
}

// Kron returns the tensor product q (x) o. Qubits of q come first, i.e.
// they occupy the most significant bits of the combined index.
func (q *Qobj) Kron(o *Qobj) *Qobj {
	qd, od := q.Size(), o.Size()
	out := mat.NewCDense(qd*od, qd*od, nil)
	for i := 0; i < qd; i++ {
		for j := 0; j < qd; j++ {
			a := q.matrix.At(i, j)
			if a == 0 {
				continue
			}
			for k := 0; k < od; k++ {
				for l := 0; l < od; l++ {
					out.Set(i*od+k, j*od+l, a*o.matrix.At(k, l))
				}
			}
		}
	}
	return &Qobj{matrix: out, nQubits: q.nQubits + o.nQubits}
}

// PartialTrace traces out every qubit not listed in keep and returns the
// reduced operator on the kept qubits. Indices in keep must be ascending
// and within [0, n).
func (q *Qobj) PartialTrace(keep []int) *Qobj {
	n := q.nQubits
	inKeep := make([]bool, n)
	for i, k := range keep {
		if k < 0 || k >= n {
			panic("qobj: partial trace qubit index out of range")
		}
		if i > 0 && keep[i-1] >= k {
			panic("qobj: partial trace indices must be strictly ascending")
		}
		inKeep[k] = true
	}
	traced := make([]int, 0, n-len(keep))
	for i := 0; i < n; i++ {
		if !inKeep[i] {
			traced = append(traced, i)
		}
	}
	dim := q.Size()
	outDim := 1 << len(keep)
	out := mat.NewCDense(outDim, outDim, nil)
	for r := 0; r < dim; r++ {
		for c := 0; c < dim; c++ {
			match := true
			for _, t := range traced {
				if qubitBit(r, t, n) != qubitBit(c, t, n) {
					match = false
					break
				}
			}
			if !match {
				continue
			}
			rk := compressIndex(r, keep, n)
			ck := compressIndex(c, keep, n)
			out.Set(rk, ck, out.At(rk, ck)+q.matrix.At(r, c))
		}
	}
	return &Qobj{matrix: out, nQubits: len(keep)}
}

// T returns the transpose.
func (q *Qobj) T() *Qobj {
	dim := q.Size()
	out := mat.NewCDense(dim, dim, nil)
	for r := 0; r < dim; r++ {
		for c := 0; c < dim; c++ {
			out.Set(r, c, q.matrix.At(c, r))
		}
	}
	return &Qobj{matrix: out, nQubits: q.nQubits}
}

// H returns the adjoint (conjugate transpose).
func (q *Qobj) H() *Qobj {
	dim := q.Size()
	out := mat.NewCDense(dim, dim, nil)
	for r := 0; r < dim; r++ {
		for c := 0; c < dim; c++ {
			v := q.matrix.At(c, r)
			out.Set(r, c, complex(real(v), -imag(v)))
		}
	}
	return &Qobj{matrix: out, nQubits: q.nQubits}
}

// Conj returns the elementwise complex conjugate.
func (q *Qobj) Conj() *Qobj {
	dim := q.Size()
	out := mat.NewCDense(dim, dim, nil)
	for r := 0; r < dim; r++ {
		for c := 0; c < dim; c++ {
			v := q.matrix.At(r, c)
			out.Set(r, c, complex(real(v), -imag(v)))
		}
	}
	return &Qobj{matrix: out, nQubits: q.nQubits}
}

// Copy returns a deep copy.
func (q *Qobj) Copy() *Qobj {
	dim := q.Size()
	out := mat.NewCDense(dim, dim, nil)
	out.Copy(q.matrix)
	return &Qobj{matrix: out, nQubits: q.nQubits}
}

// AlmostEqual reports whether all matrix elements of a and b agree within
// tol in both real and imaginary parts.
func AlmostEqual(a, b *Qobj, tol float64) bool {
	if a.Size() != b.Size() {
		return false
	}
	dim := a.Size()
	for r := 0; r < dim; r++ {
		for c := 0; c < dim; c++ {
			d := a.matrix.At(r, c) - b.matrix.At(r, c)
			if absReal(real(d)) > tol || absReal(imag(d)) > tol {
				return false
			}
		}
	}
	return true
}

func absReal(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}

// qubitBit extracts the bit of qubit q from a basis index. Qubit 0 is the
// most significant bit, matching the Kron ordering.
func qubitBit(idx, q, n int) int {
	return (idx >> (n - 1 - q)) & 1
}

func compressIndex(idx int, keep []int, n int) int {
	out := 0
	for _, q := range keep {
		out = out<<1 | qubitBit(idx, q, n)
	}
	return out
}

func qubitCountForSide(side int) (int, bool) {
	if side < 1 || side&(side-1) != 0 {
		return 0, false
	}
	return bits.TrailingZeros(uint(side)), true
}

func qubitCountForBasisSize(size int) (int, bool) {
	if size < 1 || size&(size-1) != 0 {
		return 0, false
	}
	tz := bits.TrailingZeros(uint(size))
	if tz%2 != 0 {
		return 0, false
	}
	return tz / 2, true
}
